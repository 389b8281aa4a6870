package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/ayusman/mudra/internal/logging"
	"github.com/ayusman/mudra/internal/scene"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "dispatcher.query_radius")
	Value   any    // The invalid value, nil when the message says it all
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d validation errors:\n", len(e))
	for i, err := range e {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, err.Error())
	}
	return sb.String()
}

// ValidFormats returns the list of valid log formats
func ValidFormats() []string {
	return []string{logging.FormatText, logging.FormatJSON}
}

// Validate checks the Config for invalid values and returns all validation
// errors found. It also resolves derived fields such as the point finger.
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validateLogging()...)
	errors = append(errors, c.validateSection("tracking", c.Tracking.Validate())...)
	errors = append(errors, c.validateSection("detectors", c.Detectors.Validate())...)
	errors = append(errors, c.validateDispatcher()...)
	errors = append(errors, c.validateMonitor()...)
	errors = append(errors, c.validateScene()...)

	return errors
}

func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	if !slices.Contains(logging.ValidLevels(), strings.ToUpper(c.Logging.Level)) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.ToLower(strings.Join(logging.ValidLevels(), ", "))),
		})
	}
	if !slices.Contains(ValidFormats(), strings.ToLower(c.Logging.Format)) {
		errors = append(errors, ValidationError{
			Field:   "logging.format",
			Value:   c.Logging.Format,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidFormats(), ", ")),
		})
	}
	return errors
}

// validateSection splits a joined section error into one entry per line.
func (c *Config) validateSection(field string, err error) []ValidationError {
	if err == nil {
		return nil
	}
	var errors []ValidationError
	for _, line := range strings.Split(err.Error(), "\n") {
		errors = append(errors, ValidationError{Field: field, Message: line})
	}
	return errors
}

func (c *Config) validateDispatcher() []ValidationError {
	var errors []ValidationError

	if c.Dispatcher.QueryRadius <= 0 {
		errors = append(errors, ValidationError{
			Field:   "dispatcher.query_radius",
			Value:   c.Dispatcher.QueryRadius,
			Message: "must be positive",
		})
	}
	if c.Dispatcher.ContactTolerance < 0 {
		errors = append(errors, ValidationError{
			Field:   "dispatcher.contact_tolerance",
			Value:   c.Dispatcher.ContactTolerance,
			Message: "must be non-negative",
		})
	}
	if _, err := scene.ParseLayers(c.Dispatcher.Layers); err != nil || len(c.Dispatcher.Layers) == 0 {
		errors = append(errors, ValidationError{
			Field:   "dispatcher.layers",
			Value:   c.Dispatcher.Layers,
			Message: "must name at least one known layer",
		})
	}
	return errors
}

func (c *Config) validateMonitor() []ValidationError {
	var errors []ValidationError

	if c.Monitor.Enabled && c.Monitor.Addr == "" {
		errors = append(errors, ValidationError{
			Field:   "monitor.addr",
			Message: "required when the monitor is enabled",
		})
	}
	if c.Monitor.QueueSize <= 0 {
		errors = append(errors, ValidationError{
			Field:   "monitor.queue_size",
			Value:   c.Monitor.QueueSize,
			Message: "must be positive",
		})
	}
	return errors
}

func (c *Config) validateScene() []ValidationError {
	var errors []ValidationError
	seen := make(map[string]bool)

	for i, obj := range c.Scene.Objects {
		field := fmt.Sprintf("scene.objects[%d]", i)
		if obj.Name == "" {
			errors = append(errors, ValidationError{Field: field + ".name", Message: "is required"})
		} else if seen[obj.Name] {
			errors = append(errors, ValidationError{Field: field + ".name", Value: obj.Name, Message: "is not unique"})
		}
		seen[obj.Name] = true

		if obj.Radius < 0 {
			errors = append(errors, ValidationError{Field: field + ".radius", Value: obj.Radius, Message: "must be non-negative"})
		}
		if obj.Body != nil && obj.Body.Mass < 0 {
			errors = append(errors, ValidationError{Field: field + ".body.mass", Value: obj.Body.Mass, Message: "must be non-negative"})
		}
		if _, err := scene.ParseLayers(obj.Layers); err != nil {
			errors = append(errors, ValidationError{Field: field + ".layers", Value: obj.Layers, Message: err.Error()})
		}

		kinds := make(map[string]bool)
		for j, resp := range obj.Responses {
			rfield := fmt.Sprintf("%s.responses[%d]", field, j)
			cfg, err := resp.Interaction()
			if err != nil {
				errors = append(errors, ValidationError{Field: rfield, Message: err.Error()})
				continue
			}
			if kinds[cfg.Gesture.String()] {
				errors = append(errors, ValidationError{Field: rfield + ".gesture", Value: resp.Gesture, Message: "is bound twice on this object"})
			}
			kinds[cfg.Gesture.String()] = true
		}
	}
	return errors
}
