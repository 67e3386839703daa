package config

import (
	"fmt"
	"sync"

	"github.com/entrhq/webcanvas/pkg/host"
)

// SectionIDBrowser is the identifier for the browser section.
const SectionIDBrowser = "browser"

// BrowserSection controls the hosted browser and which canvas it renders.
type BrowserSection struct {
	mu             sync.RWMutex
	headless       bool
	viewportWidth  int
	viewportHeight int
	canvasURL      string
	documentPath   string
}

// NewBrowserSection creates a browser section with default settings.
func NewBrowserSection() *BrowserSection {
	s := &BrowserSection{}
	s.Reset()
	return s
}

// ID returns the section identifier.
func (s *BrowserSection) ID() string { return SectionIDBrowser }

// Title returns the section title.
func (s *BrowserSection) Title() string { return "Browser" }

// Description returns the section description.
func (s *BrowserSection) Description() string {
	return "The hosted Chromium instance, the canvas application URL it opens, and the canvas document it mirrors."
}

// Data returns the current configuration data.
func (s *BrowserSection) Data() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return map[string]interface{}{
		"headless":        s.headless,
		"viewport_width":  s.viewportWidth,
		"viewport_height": s.viewportHeight,
		"canvas_url":      s.canvasURL,
		"document_path":   s.documentPath,
	}
}

// SetData updates the configuration from stored data.
func (s *BrowserSection) SetData(data map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if v, ok := boolValue(data["headless"]); ok {
		s.headless = v
	}
	if v, ok := intValue(data["viewport_width"]); ok {
		s.viewportWidth = v
	}
	if v, ok := intValue(data["viewport_height"]); ok {
		s.viewportHeight = v
	}
	if v, ok := stringValue(data["canvas_url"]); ok {
		s.canvasURL = v
	}
	if v, ok := stringValue(data["document_path"]); ok {
		s.documentPath = v
	}
	return nil
}

// Validate validates the current configuration.
func (s *BrowserSection) Validate() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.viewportWidth <= 0 || s.viewportHeight <= 0 {
		return fmt.Errorf("viewport must be positive, got %dx%d", s.viewportWidth, s.viewportHeight)
	}
	return nil
}

// Reset restores default settings.
func (s *BrowserSection) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.headless = false
	s.viewportWidth = host.DefaultViewportWidth
	s.viewportHeight = host.DefaultViewportHeight
	s.canvasURL = ""
	s.documentPath = ""
}

// BrowserOptions returns launch options carrying the configured values.
func (s *BrowserSection) BrowserOptions() host.BrowserOptions {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return host.BrowserOptions{
		Headless: s.headless,
		Viewport: &host.Viewport{Width: s.viewportWidth, Height: s.viewportHeight},
	}
}

// CanvasURL returns the canvas application URL.
func (s *BrowserSection) CanvasURL() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.canvasURL
}

// DocumentPath returns the canvas document path.
func (s *BrowserSection) DocumentPath() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.documentPath
}
