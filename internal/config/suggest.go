package config

import (
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/ayusman/mudra/internal/effect"
	"github.com/ayusman/mudra/internal/gesture"
)

// suggest returns the candidate closest to name, or "" when none is close
// enough to be a likely typo.
func suggest(name string, candidates []string) string {
	norm := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "_")
	if norm == "" {
		return ""
	}
	limit := max(2, len(norm)/3)

	best, bestDist := "", limit+1
	for _, c := range candidates {
		if d := levenshtein.ComputeDistance(norm, c); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

// withSuggestion appends a "did you mean" hint to err when name is close to a
// known candidate.
func withSuggestion(err error, name string, candidates []string) error {
	if s := suggest(name, candidates); s != "" {
		return fmt.Errorf("%w (did you mean %q?)", err, s)
	}
	return err
}

func gestureNames() []string {
	names := make([]string, len(gesture.Kinds))
	for i, k := range gesture.Kinds {
		names[i] = k.String()
	}
	return names
}

func effectNames() []string {
	names := make([]string, len(effect.Kinds))
	for i, k := range effect.Kinds {
		names[i] = k.String()
	}
	return names
}
