package sync

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTickerTrigger_FiresImmediatelyAndPeriodically(t *testing.T) {
	var passes atomic.Int64
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	trigger := &TickerTrigger{Interval: 10 * time.Millisecond}
	go func() {
		_ = trigger.Run(ctx, func(context.Context) {
			passes.Add(1)
		})
		close(done)
	}()

	assert.Eventually(t, func() bool {
		return passes.Load() >= 3
	}, 2*time.Second, 5*time.Millisecond, "expected the initial pass plus ticks")

	cancel()
	<-done
}

func TestTickerTrigger_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	trigger := &TickerTrigger{Interval: time.Hour}
	err := trigger.Run(ctx, func(context.Context) {})
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestWatchTrigger_FiresOnDocumentChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "board.canvas")
	require.NoError(t, os.WriteFile(path, []byte(`{"nodes":[],"edges":[]}`), 0600))

	var passes atomic.Int64
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	trigger := &WatchTrigger{Path: path, Debounce: 20 * time.Millisecond}
	go func() {
		_ = trigger.Run(ctx, func(context.Context) {
			passes.Add(1)
		})
		close(done)
	}()

	// Initial pass fires before any event.
	require.Eventually(t, func() bool {
		return passes.Load() >= 1
	}, 2*time.Second, 10*time.Millisecond)

	// A write to the document fires a debounced pass; a write to an
	// unrelated file does not.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0600))
	require.NoError(t, os.WriteFile(path, []byte(`{"nodes":[],"edges":[],"v":2}`), 0600))

	require.Eventually(t, func() bool {
		return passes.Load() >= 2
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	<-done
}
