package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore(t *testing.T) {
	t.Run("missing file starts empty", func(t *testing.T) {
		store, err := NewFileStore(filepath.Join(t.TempDir(), "config.json"))
		require.NoError(t, err)

		data, err := store.GetSection("sync")
		require.NoError(t, err)
		assert.Empty(t, data)
	})

	t.Run("save and reload round-trips sections", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "config.json")
		store, err := NewFileStore(path)
		require.NoError(t, err)

		require.NoError(t, store.SetSection("sync", map[string]interface{}{
			"trigger":     "watch",
			"interval_ms": 5000,
		}))
		require.NoError(t, store.Save())

		_, statErr := os.Stat(path + ".tmp")
		assert.True(t, os.IsNotExist(statErr), "temp file must be renamed away")

		reopened, err := NewFileStore(path)
		require.NoError(t, err)
		data, err := reopened.GetSection("sync")
		require.NoError(t, err)
		assert.Equal(t, "watch", data["trigger"])
		// Numbers come back as float64 after the JSON round-trip.
		assert.Equal(t, float64(5000), data["interval_ms"])
	})

	t.Run("corrupt file is an error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.json")
		require.NoError(t, os.WriteFile(path, []byte("{broken"), 0600))

		_, err := NewFileStore(path)
		assert.Error(t, err)
	})

	t.Run("sections are copied on get and set", func(t *testing.T) {
		store, err := NewFileStore(filepath.Join(t.TempDir(), "config.json"))
		require.NoError(t, err)

		original := map[string]interface{}{"marker": "chatgpt.com"}
		require.NoError(t, store.SetSection("intercept", original))
		original["marker"] = "mutated"

		data, err := store.GetSection("intercept")
		require.NoError(t, err)
		assert.Equal(t, "chatgpt.com", data["marker"])

		data["marker"] = "mutated again"
		fresh, err := store.GetSection("intercept")
		require.NoError(t, err)
		assert.Equal(t, "chatgpt.com", fresh["marker"])
	})
}
