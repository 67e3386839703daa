package config

import (
	"fmt"
	"sync"
)

// Section is one named, self-validating group of settings.
type Section interface {
	// ID returns the stable section identifier used as the storage key.
	ID() string

	// Title returns a human-readable section title.
	Title() string

	// Description explains what the section controls.
	Description() string

	// Data returns the current configuration data.
	Data() map[string]interface{}

	// SetData updates the configuration from stored data. Unknown keys
	// are ignored so older builds tolerate newer config files.
	SetData(data map[string]interface{}) error

	// Validate validates the current configuration.
	Validate() error

	// Reset restores the section defaults.
	Reset()
}

// Manager coordinates sections with their backing store.
type Manager struct {
	store    Store
	sections map[string]Section
	order    []string
	mu       sync.RWMutex
}

// NewManager creates a manager over the given store.
func NewManager(store Store) *Manager {
	return &Manager{
		store:    store,
		sections: make(map[string]Section),
	}
}

// Store returns the backing store.
func (m *Manager) Store() Store {
	return m.store
}

// RegisterSection registers a section. Section ids must be unique.
func (m *Manager) RegisterSection(s Section) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sections[s.ID()]; exists {
		return fmt.Errorf("section %q already registered", s.ID())
	}
	m.sections[s.ID()] = s
	m.order = append(m.order, s.ID())
	return nil
}

// GetSection returns a registered section by id.
func (m *Manager) GetSection(id string) (Section, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sections[id]
	return s, ok
}

// GetSections returns all sections in registration order.
func (m *Manager) GetSections() []Section {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sections := make([]Section, 0, len(m.order))
	for _, id := range m.order {
		sections = append(sections, m.sections[id])
	}
	return sections
}

// LoadAll loads the store and feeds each registered section its data,
// validating the result.
func (m *Manager) LoadAll() error {
	if err := m.store.Load(); err != nil {
		return err
	}

	for _, s := range m.GetSections() {
		data, err := m.store.GetSection(s.ID())
		if err != nil {
			return fmt.Errorf("failed to load section %q: %w", s.ID(), err)
		}
		if err := s.SetData(data); err != nil {
			return fmt.Errorf("invalid section %q: %w", s.ID(), err)
		}
		if err := s.Validate(); err != nil {
			return fmt.Errorf("invalid section %q: %w", s.ID(), err)
		}
	}
	return nil
}

// SaveAll writes every section's current data through the store.
func (m *Manager) SaveAll() error {
	for _, s := range m.GetSections() {
		if err := m.store.SetSection(s.ID(), s.Data()); err != nil {
			return fmt.Errorf("failed to stage section %q: %w", s.ID(), err)
		}
	}
	return m.store.Save()
}
