package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Store persists configuration data, keyed by section.
type Store interface {
	// Load loads the configuration from disk.
	Load() error

	// Save saves the configuration to disk.
	Save() error

	// GetSection retrieves configuration data for a specific section.
	GetSection(sectionID string) (map[string]interface{}, error)

	// SetSection stores configuration data for a specific section.
	SetSection(sectionID string, data map[string]interface{}) error
}

// FileStore implements Store using a JSON file.
type FileStore struct {
	path    string
	data    map[string]map[string]interface{}
	mu      sync.RWMutex
	version string
}

// NewFileStore creates a file-based configuration store. If path is empty
// it defaults to ~/.webcanvas/config.json. A missing file is not an error;
// it materializes on the first Save.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		path = filepath.Join(homeDir, ".webcanvas", "config.json")
	}

	store := &FileStore{
		path:    path,
		data:    make(map[string]map[string]interface{}),
		version: "1.0",
	}
	if err := store.Load(); err != nil {
		return nil, err
	}
	return store, nil
}

type fileFormat struct {
	Version  string                            `json:"version"`
	Sections map[string]map[string]interface{} `json:"sections"`
}

// Load reads the configuration file.
func (s *FileStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.data = make(map[string]map[string]interface{})
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var parsed fileFormat
	if err := json.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("failed to decode config file: %w", err)
	}

	if parsed.Version != "" {
		s.version = parsed.Version
	}
	if parsed.Sections != nil {
		s.data = parsed.Sections
	} else {
		s.data = make(map[string]map[string]interface{})
	}
	return nil
}

// Save writes the configuration atomically (temp file plus rename).
func (s *FileStore) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	out, err := json.MarshalIndent(fileFormat{Version: s.version, Sections: s.data}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	tempPath := s.path + ".tmp"
	if err := os.WriteFile(tempPath, out, 0600); err != nil {
		return fmt.Errorf("failed to write config temp file: %w", err)
	}
	if err := os.Rename(tempPath, s.path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to replace config file: %w", err)
	}
	return nil
}

// GetSection retrieves a copy of one section's data. Unknown sections
// yield an empty map.
func (s *FileStore) GetSection(sectionID string) (map[string]interface{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	copyOut := make(map[string]interface{})
	for k, v := range s.data[sectionID] {
		copyOut[k] = v
	}
	return copyOut, nil
}

// SetSection stores a copy of one section's data.
func (s *FileStore) SetSection(sectionID string, data map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copyIn := make(map[string]interface{}, len(data))
	for k, v := range data {
		copyIn[k] = v
	}
	s.data[sectionID] = copyIn
	return nil
}
