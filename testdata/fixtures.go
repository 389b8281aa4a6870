// Package testdata embeds hand scripts exercising each gesture against the
// default demo scene.
package testdata

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/ayusman/mudra/internal/script"
)

//go:embed scripts/*.yaml
var scriptsFS embed.FS

// LoadScript loads a test script by name, without the .yaml extension.
func LoadScript(name string) (*script.Script, error) {
	data, err := scriptsFS.ReadFile("scripts/" + name + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("load script %s: %w", name, err)
	}

	s, err := script.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse script %s: %w", name, err)
	}
	return s, nil
}

// ScriptNames lists the embedded scripts.
func ScriptNames() ([]string, error) {
	entries, err := fs.ReadDir(scriptsFS, "scripts")
	if err != nil {
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), path.Ext(entry.Name())))
	}
	return names, nil
}
