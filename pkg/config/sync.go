package config

import (
	"fmt"
	"sync"
	"time"

	"github.com/entrhq/webcanvas/pkg/geometry"
)

// SectionIDSync is the identifier for the synchronization section.
const SectionIDSync = "sync"

// Trigger kinds accepted by the sync section.
const (
	TriggerTimer = "timer"
	TriggerWatch = "watch"
)

// SyncSection controls the reconciliation engine's timing and matching.
type SyncSection struct {
	mu            sync.RWMutex
	trigger       string
	intervalMS    int
	tolerance     float64
	nodeSelector  string
	selectedClass string
}

// NewSyncSection creates a sync section with default settings.
func NewSyncSection() *SyncSection {
	s := &SyncSection{}
	s.Reset()
	return s
}

// ID returns the section identifier.
func (s *SyncSection) ID() string { return SectionIDSync }

// Title returns the section title.
func (s *SyncSection) Title() string { return "Synchronization" }

// Description returns the section description.
func (s *SyncSection) Description() string {
	return "Controls how often reconciliation passes run and how strictly record geometry must match rendered elements."
}

// Data returns the current configuration data.
func (s *SyncSection) Data() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return map[string]interface{}{
		"trigger":        s.trigger,
		"interval_ms":    s.intervalMS,
		"tolerance":      s.tolerance,
		"node_selector":  s.nodeSelector,
		"selected_class": s.selectedClass,
	}
}

// SetData updates the configuration from stored data.
func (s *SyncSection) SetData(data map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if v, ok := stringValue(data["trigger"]); ok {
		s.trigger = v
	}
	if v, ok := intValue(data["interval_ms"]); ok {
		s.intervalMS = v
	}
	if v, ok := floatValue(data["tolerance"]); ok {
		s.tolerance = v
	}
	if v, ok := stringValue(data["node_selector"]); ok {
		s.nodeSelector = v
	}
	if v, ok := stringValue(data["selected_class"]); ok {
		s.selectedClass = v
	}
	return nil
}

// Validate validates the current configuration.
func (s *SyncSection) Validate() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.trigger != TriggerTimer && s.trigger != TriggerWatch {
		return fmt.Errorf("trigger must be %q or %q, got %q", TriggerTimer, TriggerWatch, s.trigger)
	}
	if s.intervalMS <= 0 {
		return fmt.Errorf("interval_ms must be positive, got %d", s.intervalMS)
	}
	if s.tolerance <= 0 {
		return fmt.Errorf("tolerance must be positive, got %g", s.tolerance)
	}
	return nil
}

// Reset restores default settings.
func (s *SyncSection) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trigger = TriggerTimer
	s.intervalMS = 2000
	s.tolerance = geometry.DefaultTolerance
	s.nodeSelector = ".canvas-node"
	s.selectedClass = "is-selected"
}

// Trigger returns the configured trigger kind.
func (s *SyncSection) Trigger() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.trigger
}

// Interval returns the timer trigger interval.
func (s *SyncSection) Interval() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return time.Duration(s.intervalMS) * time.Millisecond
}

// Tolerance returns the geometry matching tolerance.
func (s *SyncSection) Tolerance() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tolerance
}

// NodeSelector returns the canvas node selector.
func (s *SyncSection) NodeSelector() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nodeSelector
}

// SelectedClass returns the class marking selected nodes.
func (s *SyncSection) SelectedClass() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selectedClass
}
