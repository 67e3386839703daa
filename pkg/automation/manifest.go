package automation

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Manifest is a versioned collection of automation scripts. The built-in
// manifest covers the stock canvas deployment; operators point the daemon
// at a YAML file to override or extend scripts when the remote pages'
// markup drifts.
type Manifest struct {
	Version string    `yaml:"version"`
	Scripts []*Script `yaml:"scripts"`
}

// DefaultManifest returns the built-in scripts.
func DefaultManifest() *Manifest {
	return &Manifest{
		Version: "1",
		Scripts: []*Script{
			{Name: ScriptModelSelect, Version: "1", Source: modelSelectSource},
			{Name: ScriptChatDelete, Version: "1", Source: chatDeleteSource},
		},
	}
}

// LoadManifest reads a YAML manifest from disk and merges it over the
// built-ins: a loaded script replaces the built-in with the same name,
// anything else is added.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script manifest: %w", err)
	}

	var loaded Manifest
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("failed to parse script manifest: %w", err)
	}

	merged := DefaultManifest()
	if loaded.Version != "" {
		merged.Version = loaded.Version
	}
	for _, s := range loaded.Scripts {
		if s.Name == "" {
			return nil, fmt.Errorf("script manifest entry missing name")
		}
		if existing, ok := merged.index(s.Name); ok {
			merged.Scripts[existing] = s
		} else {
			merged.Scripts = append(merged.Scripts, s)
		}
	}
	return merged, nil
}

// Script returns the script with the given name.
func (m *Manifest) Script(name string) (*Script, bool) {
	if i, ok := m.index(name); ok {
		return m.Scripts[i], true
	}
	return nil, false
}

func (m *Manifest) index(name string) (int, bool) {
	for i, s := range m.Scripts {
		if s.Name == name {
			return i, true
		}
	}
	return -1, false
}
