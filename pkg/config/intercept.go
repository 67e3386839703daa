package config

import (
	"fmt"
	"sync"
	"time"

	"github.com/gobwas/glob"

	"github.com/entrhq/webcanvas/pkg/intercept"
)

// SectionIDIntercept is the identifier for the deletion-intercept section.
const SectionIDIntercept = "intercept"

// InterceptSection controls the deletion interceptor.
type InterceptSection struct {
	mu              sync.RWMutex
	enabled         bool
	marker          string
	patterns        []string
	alternateKey    string
	confirmSelector string
	confirmDelayMS  int
}

// NewInterceptSection creates an intercept section with default settings.
func NewInterceptSection() *InterceptSection {
	s := &InterceptSection{}
	s.Reset()
	return s
}

// ID returns the section identifier.
func (s *InterceptSection) ID() string { return SectionIDIntercept }

// Title returns the section title.
func (s *InterceptSection) Title() string { return "Deletion Intercept" }

// Description returns the section description.
func (s *InterceptSection) Description() string {
	return "Which node addresses have their deletion intercepted, and how the compensating sequence is driven."
}

// Data returns the current configuration data.
func (s *InterceptSection) Data() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	patterns := make([]string, len(s.patterns))
	copy(patterns, s.patterns)
	return map[string]interface{}{
		"enabled":          s.enabled,
		"marker":           s.marker,
		"patterns":         patterns,
		"alternate_key":    s.alternateKey,
		"confirm_selector": s.confirmSelector,
		"confirm_delay_ms": s.confirmDelayMS,
	}
}

// SetData updates the configuration from stored data.
func (s *InterceptSection) SetData(data map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if v, ok := boolValue(data["enabled"]); ok {
		s.enabled = v
	}
	if v, ok := stringValue(data["marker"]); ok {
		s.marker = v
	}
	if v, ok := stringSlice(data["patterns"]); ok {
		s.patterns = v
	}
	if v, ok := stringValue(data["alternate_key"]); ok {
		s.alternateKey = v
	}
	if v, ok := stringValue(data["confirm_selector"]); ok {
		s.confirmSelector = v
	}
	if v, ok := intValue(data["confirm_delay_ms"]); ok {
		s.confirmDelayMS = v
	}
	return nil
}

// Validate validates the current configuration.
func (s *InterceptSection) Validate() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.enabled && s.marker == "" && len(s.patterns) == 0 {
		return fmt.Errorf("intercept enabled with no marker and no patterns")
	}
	for _, p := range s.patterns {
		if _, err := glob.Compile(p); err != nil {
			return fmt.Errorf("invalid pattern %q: %w", p, err)
		}
	}
	if s.confirmDelayMS < 0 {
		return fmt.Errorf("confirm_delay_ms must not be negative, got %d", s.confirmDelayMS)
	}
	return nil
}

// Reset restores default settings.
func (s *InterceptSection) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enabled = true
	s.marker = intercept.DefaultMarker
	s.patterns = nil
	s.alternateKey = intercept.DefaultAlternateKey
	s.confirmSelector = intercept.DefaultConfirmSelector
	s.confirmDelayMS = int(intercept.DefaultConfirmDelay / time.Millisecond)
}

// Enabled reports whether deletion interception is active.
func (s *InterceptSection) Enabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.enabled
}

// Options returns interceptor options carrying the configured values.
func (s *InterceptSection) Options() intercept.Options {
	s.mu.RLock()
	defer s.mu.RUnlock()
	patterns := make([]string, len(s.patterns))
	copy(patterns, s.patterns)
	return intercept.Options{
		Marker:          s.marker,
		Patterns:        patterns,
		AlternateKey:    s.alternateKey,
		ConfirmSelector: s.confirmSelector,
		ConfirmDelay:    time.Duration(s.confirmDelayMS) * time.Millisecond,
	}
}
