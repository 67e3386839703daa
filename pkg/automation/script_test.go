package automation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScript_Render(t *testing.T) {
	script := &Script{
		Name:    "probe",
		Version: "1",
		Source:  "pick({{.Ordinal}}) after {{.SettleDelayMS}}ms then {{.ActivateDelayMS}}ms",
	}

	t.Run("interpolates parameters", func(t *testing.T) {
		out, err := script.Render(Params{Ordinal: 3, SettleDelayMS: 50, ActivateDelayMS: 75})
		require.NoError(t, err)
		assert.Equal(t, "pick(3) after 50ms then 75ms", out)
	})

	t.Run("zero delays use the empirical defaults", func(t *testing.T) {
		out, err := script.Render(Params{Ordinal: 0})
		require.NoError(t, err)
		assert.Equal(t, "pick(0) after 200ms then 1000ms", out)
	})

	t.Run("invalid template fails", func(t *testing.T) {
		bad := &Script{Name: "bad", Source: "{{.Ordinal"}
		_, err := bad.Render(Params{})
		assert.Error(t, err)
	})
}

func TestDefaultManifest(t *testing.T) {
	m := DefaultManifest()

	for _, name := range []string{ScriptModelSelect, ScriptChatDelete} {
		script, ok := m.Script(name)
		require.True(t, ok, "missing built-in %q", name)

		// Built-ins must render with plain parameters.
		out, err := script.Render(Params{Ordinal: 2})
		require.NoError(t, err)
		assert.Contains(t, out, "setTimeout")
		assert.Contains(t, out, "200")
		assert.Contains(t, out, "1000")
	}

	script, _ := m.Script(ScriptModelSelect)
	out, err := script.Render(Params{Ordinal: 2})
	require.NoError(t, err)
	assert.Contains(t, out, "options[2]")

	_, ok := m.Script("unknown")
	assert.False(t, ok)
}

func TestLoadManifest(t *testing.T) {
	t.Run("overrides built-ins and adds new scripts", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "scripts.yaml")
		content := `version: "2"
scripts:
  - name: model-select
    version: "2"
    source: "custom({{.Ordinal}})"
  - name: extra
    version: "1"
    source: "noop()"
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0600))

		m, err := LoadManifest(path)
		require.NoError(t, err)
		assert.Equal(t, "2", m.Version)

		overridden, ok := m.Script(ScriptModelSelect)
		require.True(t, ok)
		out, err := overridden.Render(Params{Ordinal: 7})
		require.NoError(t, err)
		assert.Equal(t, "custom(7)", out)

		_, ok = m.Script("extra")
		assert.True(t, ok)
		_, ok = m.Script(ScriptChatDelete)
		assert.True(t, ok, "untouched built-ins remain")
	})

	t.Run("missing file fails", func(t *testing.T) {
		_, err := LoadManifest(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.Error(t, err)
	})

	t.Run("nameless entry fails", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "scripts.yaml")
		require.NoError(t, os.WriteFile(path, []byte("scripts:\n  - source: x\n"), 0600))
		_, err := LoadManifest(path)
		assert.Error(t, err)
	})

	t.Run("invalid yaml fails", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "scripts.yaml")
		require.NoError(t, os.WriteFile(path, []byte("scripts: ["), 0600))
		_, err := LoadManifest(path)
		assert.Error(t, err)
	})
}
