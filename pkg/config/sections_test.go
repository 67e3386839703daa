package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncSection(t *testing.T) {
	s := NewSyncSection()

	t.Run("defaults", func(t *testing.T) {
		assert.Equal(t, TriggerTimer, s.Trigger())
		assert.Equal(t, 2*time.Second, s.Interval())
		assert.Equal(t, 0.5, s.Tolerance())
		assert.Equal(t, ".canvas-node", s.NodeSelector())
		assert.Equal(t, "is-selected", s.SelectedClass())
		assert.NoError(t, s.Validate())
	})

	t.Run("validation", func(t *testing.T) {
		tests := []struct {
			name string
			data map[string]interface{}
		}{
			{"unknown trigger", map[string]interface{}{"trigger": "constantly"}},
			{"non-positive interval", map[string]interface{}{"interval_ms": 0}},
			{"non-positive tolerance", map[string]interface{}{"tolerance": -0.5}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				s := NewSyncSection()
				require.NoError(t, s.SetData(tt.data))
				assert.Error(t, s.Validate())
			})
		}
	})

	t.Run("reset restores defaults", func(t *testing.T) {
		require.NoError(t, s.SetData(map[string]interface{}{"trigger": "watch"}))
		s.Reset()
		assert.Equal(t, TriggerTimer, s.Trigger())
	})
}

func TestAutomationSection(t *testing.T) {
	s := NewAutomationSection()

	assert.Equal(t, 500*time.Millisecond, s.RenderDelay())
	assert.Empty(t, s.ManifestPath())
	assert.NoError(t, s.Validate())

	// JSON-decoded numbers arrive as float64.
	require.NoError(t, s.SetData(map[string]interface{}{
		"settle_delay_ms":   float64(50),
		"activate_delay_ms": float64(250),
		"render_delay_ms":   float64(100),
		"manifest_path":     "/etc/webcanvas/scripts.yaml",
	}))
	p := s.Params(1)
	assert.Equal(t, 50, p.SettleDelayMS)
	assert.Equal(t, 250, p.ActivateDelayMS)
	assert.Equal(t, 100*time.Millisecond, s.RenderDelay())
	assert.Equal(t, "/etc/webcanvas/scripts.yaml", s.ManifestPath())

	require.NoError(t, s.SetData(map[string]interface{}{"settle_delay_ms": -1}))
	assert.Error(t, s.Validate())
}

func TestInterceptSection(t *testing.T) {
	s := NewInterceptSection()

	t.Run("defaults", func(t *testing.T) {
		assert.True(t, s.Enabled())
		opts := s.Options()
		assert.Equal(t, "chatgpt.com", opts.Marker)
		assert.Equal(t, "Control+Delete", opts.AlternateKey)
		assert.Equal(t, 500*time.Millisecond, opts.ConfirmDelay)
		assert.NoError(t, s.Validate())
	})

	t.Run("enabled without any predicate is invalid", func(t *testing.T) {
		s := NewInterceptSection()
		require.NoError(t, s.SetData(map[string]interface{}{"marker": ""}))
		assert.Error(t, s.Validate())
	})

	t.Run("bad glob pattern is invalid", func(t *testing.T) {
		s := NewInterceptSection()
		require.NoError(t, s.SetData(map[string]interface{}{"patterns": []interface{}{"[broken"}}))
		assert.Error(t, s.Validate())
	})

	t.Run("disabled section tolerates an empty predicate", func(t *testing.T) {
		s := NewInterceptSection()
		require.NoError(t, s.SetData(map[string]interface{}{"enabled": false, "marker": ""}))
		assert.NoError(t, s.Validate())
	})
}

func TestBrowserSection(t *testing.T) {
	s := NewBrowserSection()

	opts := s.BrowserOptions()
	assert.False(t, opts.Headless)
	require.NotNil(t, opts.Viewport)
	assert.Equal(t, 1440, opts.Viewport.Width)
	assert.Equal(t, 900, opts.Viewport.Height)
	assert.NoError(t, s.Validate())

	require.NoError(t, s.SetData(map[string]interface{}{
		"headless":      true,
		"canvas_url":    "http://localhost:5173",
		"document_path": "/data/boards/main.canvas",
	}))
	assert.True(t, s.BrowserOptions().Headless)
	assert.Equal(t, "http://localhost:5173", s.CanvasURL())
	assert.Equal(t, "/data/boards/main.canvas", s.DocumentPath())

	require.NoError(t, s.SetData(map[string]interface{}{"viewport_width": 0}))
	assert.Error(t, s.Validate())
}
