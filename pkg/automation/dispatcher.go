package automation

import (
	"context"
	"fmt"

	"github.com/entrhq/webcanvas/pkg/geometry"
	"github.com/entrhq/webcanvas/pkg/host"
	"github.com/entrhq/webcanvas/pkg/logging"
)

// DispatcherOptions configures a Dispatcher.
type DispatcherOptions struct {
	// Tolerance is the geometry matching tolerance. Zero means
	// geometry.DefaultTolerance.
	Tolerance float64

	// Manifest supplies the scripts. Nil means DefaultManifest.
	Manifest *Manifest

	// Logger receives dispatch diagnostics. Nil creates a component logger.
	Logger *logging.Logger
}

// Dispatcher targets embedded views by geometry and runs automation
// scripts inside them.
type Dispatcher struct {
	surface   host.Surface
	scripts   *Manifest
	tolerance float64
	log       *logging.Logger
}

// NewDispatcher creates a dispatcher over the given surface.
func NewDispatcher(surface host.Surface, opts DispatcherOptions) *Dispatcher {
	if opts.Tolerance == 0 {
		opts.Tolerance = geometry.DefaultTolerance
	}
	if opts.Manifest == nil {
		opts.Manifest = DefaultManifest()
	}
	if opts.Logger == nil {
		opts.Logger, _ = logging.NewLogger("automation")
	}
	return &Dispatcher{
		surface:   surface,
		scripts:   opts.Manifest,
		tolerance: opts.Tolerance,
		log:       opts.Logger,
	}
}

// Dispatch locates the element at target (first match wins; ambiguity is
// not resolved) and schedules the named script inside its embedded view.
//
// The returned error covers targeting only: unknown script, no matching
// element, no executable view. Script execution itself is fire-and-forget —
// it runs once the view signals readiness, and failures are logged, never
// retried.
func (d *Dispatcher) Dispatch(ctx context.Context, target geometry.Rect, scriptName string, p Params) error {
	script, ok := d.scripts.Script(scriptName)
	if !ok {
		return fmt.Errorf("unknown automation script %q", scriptName)
	}
	rendered, err := script.Render(p)
	if err != nil {
		return err
	}

	elements, err := d.surface.Elements(ctx)
	if err != nil {
		return fmt.Errorf("failed to enumerate elements: %w", err)
	}

	var view host.View
	for i, el := range elements {
		rect, err := el.Geometry(ctx)
		if err != nil {
			d.log.Debugf("element %d: geometry unreadable: %v", i, err)
			continue
		}
		if !target.Matches(rect, d.tolerance) {
			continue
		}
		v, ok, err := el.View(ctx)
		if err != nil {
			return fmt.Errorf("failed to resolve embedded view: %w", err)
		}
		if !ok {
			return fmt.Errorf("matched element has no embedded view")
		}
		view = v
		break
	}
	if view == nil {
		return fmt.Errorf("no element matches target geometry (%.0f, %.0f, %.0f, %.0f)",
			target.X, target.Y, target.Width, target.Height)
	}

	// Detach from the caller's deadline: the script waits for view
	// readiness plus its own settle delays, and the caller does not block
	// on any of that.
	execCtx := context.WithoutCancel(ctx)
	go func() {
		if err := view.Execute(execCtx, rendered, true); err != nil {
			d.log.Errorf("script %q dispatch failed: %v", scriptName, err)
		}
	}()

	d.log.Infof("script %q dispatched to view at (%.0f, %.0f)", scriptName, target.X, target.Y)
	return nil
}
