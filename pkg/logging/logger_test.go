package logging

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping file logging test in short mode")
	}

	logger, err := NewLogger("test-component")
	require.NoError(t, err)
	defer logger.Close()

	assert.NotEmpty(t, logger.SessionID())

	logger.Infof("hello %s", "world")
	logger.Errorf("boom: %v", os.ErrNotExist)

	require.NotNil(t, logger.file)
	data, err := os.ReadFile(logger.file.Name())
	require.NoError(t, err)

	content := string(data)
	assert.Contains(t, content, "[test-component] [INFO] hello world")
	assert.Contains(t, content, "[ERROR] boom:")
}

func TestLoggersShareASession(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping file logging test in short mode")
	}

	a, err := NewLogger("alpha")
	require.NoError(t, err)
	defer a.Close()

	b, err := NewLogger("beta")
	require.NoError(t, err)
	defer b.Close()

	assert.Equal(t, a.SessionID(), b.SessionID())
	assert.True(t, strings.HasSuffix(a.file.Name(), a.SessionID()+"-webcanvas.log"))
}

func TestClose_Idempotent(t *testing.T) {
	logger, err := NewLogger("closer")
	require.NoError(t, err)

	require.NoError(t, logger.Close())
	assert.NoError(t, logger.Close())
}
