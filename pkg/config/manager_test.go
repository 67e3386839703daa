package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) (*Manager, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	store, err := NewFileStore(path)
	require.NoError(t, err)
	return NewManager(store), path
}

func TestManager_RegisterSection(t *testing.T) {
	m, _ := newTestManager(t)

	require.NoError(t, m.RegisterSection(NewSyncSection()))
	assert.Error(t, m.RegisterSection(NewSyncSection()), "duplicate ids must be rejected")

	require.NoError(t, m.RegisterSection(NewBrowserSection()))

	sections := m.GetSections()
	require.Len(t, sections, 2)
	assert.Equal(t, SectionIDSync, sections[0].ID(), "registration order is preserved")
	assert.Equal(t, SectionIDBrowser, sections[1].ID())

	_, ok := m.GetSection(SectionIDSync)
	assert.True(t, ok)
	_, ok = m.GetSection("unknown")
	assert.False(t, ok)
}

func TestManager_LoadAll(t *testing.T) {
	t.Run("applies stored data over defaults", func(t *testing.T) {
		m, path := newTestManager(t)
		content := `{
			"version": "1.0",
			"sections": {
				"sync": {"trigger": "watch", "interval_ms": 5000, "tolerance": 1.5}
			}
		}`
		require.NoError(t, os.WriteFile(path, []byte(content), 0600))

		section := NewSyncSection()
		require.NoError(t, m.RegisterSection(section))
		require.NoError(t, m.LoadAll())

		assert.Equal(t, TriggerWatch, section.Trigger())
		assert.Equal(t, 1.5, section.Tolerance())
		// Keys absent from the file keep their defaults.
		assert.Equal(t, ".canvas-node", section.NodeSelector())
	})

	t.Run("rejects invalid stored data", func(t *testing.T) {
		m, path := newTestManager(t)
		content := `{"sections": {"sync": {"trigger": "constantly"}}}`
		require.NoError(t, os.WriteFile(path, []byte(content), 0600))

		require.NoError(t, m.RegisterSection(NewSyncSection()))
		err := m.LoadAll()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sync")
	})

	t.Run("empty store leaves defaults intact", func(t *testing.T) {
		m, _ := newTestManager(t)
		section := NewAutomationSection()
		require.NoError(t, m.RegisterSection(section))
		require.NoError(t, m.LoadAll())

		p := section.Params(3)
		assert.Equal(t, 3, p.Ordinal)
		assert.Equal(t, 200, p.SettleDelayMS)
		assert.Equal(t, 1000, p.ActivateDelayMS)
	})
}

func TestManager_SaveAll(t *testing.T) {
	m, path := newTestManager(t)
	section := NewInterceptSection()
	require.NoError(t, m.RegisterSection(section))

	require.NoError(t, section.SetData(map[string]interface{}{
		"patterns": []string{"https://chat.internal/*"},
	}))
	require.NoError(t, m.SaveAll())

	// A fresh manager over the same file sees the saved values.
	store, err := NewFileStore(path)
	require.NoError(t, err)
	m2 := NewManager(store)
	reloaded := NewInterceptSection()
	require.NoError(t, m2.RegisterSection(reloaded))
	require.NoError(t, m2.LoadAll())

	opts := reloaded.Options()
	assert.Equal(t, []string{"https://chat.internal/*"}, opts.Patterns)
	assert.Equal(t, "chatgpt.com", opts.Marker, "defaults survive the round-trip")
}
