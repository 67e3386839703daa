// Package api exposes the daemon's command surface over a local HTTP API:
// create a link node, force an address-refresh pass, dispatch model
// selection, and report status. These are the named commands a host
// application would surface as ribbon actions.
package api

import (
	"context"

	"github.com/entrhq/webcanvas/pkg/automation"
	"github.com/entrhq/webcanvas/pkg/geometry"
	"github.com/entrhq/webcanvas/pkg/sync"
)

// Engine is the reconciliation surface the API drives.
type Engine interface {
	// RunPass executes one reconciliation pass.
	RunPass(ctx context.Context) error

	// Stats returns a snapshot of engine activity.
	Stats() sync.Stats
}

// Dispatcher targets embedded views with automation scripts.
type Dispatcher interface {
	Dispatch(ctx context.Context, target geometry.Rect, scriptName string, p automation.Params) error
}

// Snapshotter optionally supplies page HTML for status reporting.
type Snapshotter interface {
	Content(ctx context.Context) (string, error)
}
