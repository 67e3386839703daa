package config

import (
	"fmt"
	"sync"
	"time"

	"github.com/entrhq/webcanvas/pkg/automation"
)

// SectionIDAutomation is the identifier for the automation section.
const SectionIDAutomation = "automation"

// AutomationSection controls script dispatch timing and the script source.
type AutomationSection struct {
	mu              sync.RWMutex
	settleDelayMS   int
	activateDelayMS int
	renderDelayMS   int
	manifestPath    string
}

// NewAutomationSection creates an automation section with default settings.
func NewAutomationSection() *AutomationSection {
	s := &AutomationSection{}
	s.Reset()
	return s
}

// ID returns the section identifier.
func (s *AutomationSection) ID() string { return SectionIDAutomation }

// Title returns the section title.
func (s *AutomationSection) Title() string { return "Automation" }

// Description returns the section description.
func (s *AutomationSection) Description() string {
	return "Delays applied inside automation scripts and after node creation, plus an optional script manifest override."
}

// Data returns the current configuration data.
func (s *AutomationSection) Data() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return map[string]interface{}{
		"settle_delay_ms":   s.settleDelayMS,
		"activate_delay_ms": s.activateDelayMS,
		"render_delay_ms":   s.renderDelayMS,
		"manifest_path":     s.manifestPath,
	}
}

// SetData updates the configuration from stored data.
func (s *AutomationSection) SetData(data map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if v, ok := intValue(data["settle_delay_ms"]); ok {
		s.settleDelayMS = v
	}
	if v, ok := intValue(data["activate_delay_ms"]); ok {
		s.activateDelayMS = v
	}
	if v, ok := intValue(data["render_delay_ms"]); ok {
		s.renderDelayMS = v
	}
	if v, ok := stringValue(data["manifest_path"]); ok {
		s.manifestPath = v
	}
	return nil
}

// Validate validates the current configuration.
func (s *AutomationSection) Validate() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for name, v := range map[string]int{
		"settle_delay_ms":   s.settleDelayMS,
		"activate_delay_ms": s.activateDelayMS,
		"render_delay_ms":   s.renderDelayMS,
	} {
		if v < 0 {
			return fmt.Errorf("%s must not be negative, got %d", name, v)
		}
	}
	return nil
}

// Reset restores default settings.
func (s *AutomationSection) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settleDelayMS = automation.DefaultSettleDelayMS
	s.activateDelayMS = automation.DefaultActivateDelayMS
	s.renderDelayMS = 500
	s.manifestPath = ""
}

// Params returns script parameters carrying the configured delays.
func (s *AutomationSection) Params(ordinal int) automation.Params {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return automation.Params{
		Ordinal:         ordinal,
		SettleDelayMS:   s.settleDelayMS,
		ActivateDelayMS: s.activateDelayMS,
	}
}

// RenderDelay returns the wait between creating a node and dispatching
// automation at its geometry, covering the host's render pipeline.
func (s *AutomationSection) RenderDelay() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return time.Duration(s.renderDelayMS) * time.Millisecond
}

// ManifestPath returns the script manifest override path, empty for
// built-ins only.
func (s *AutomationSection) ManifestPath() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.manifestPath
}
