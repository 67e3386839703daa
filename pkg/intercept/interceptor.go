// Package intercept substitutes a compensating deletion sequence for the
// host's default Delete handling on chat-backed canvas nodes.
//
// Deleting a chat node through the host's default path removes the visual
// element but leaves the conversation alive on the remote service. The
// interceptor cancels the default for selected nodes whose address matches
// the chat-domain predicate and instead drives the host's alternate
// removal path plus an in-view deletion script.
//
// The suppression itself happens inside the surface at the capture phase:
// the synchronization engine marks intercept targets on every pass (see
// sync.Options.InterceptPredicate), so by the time the key event reaches
// this package the default has already been cancelled for marked nodes.
// That resolves the historical dual-path ambiguity deterministically: one
// synthetic modifier-augmented key event drives the host-side removal,
// followed by the delayed confirmation click — there is no second direct
// API deletion.
package intercept

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gobwas/glob"

	"github.com/entrhq/webcanvas/pkg/automation"
	"github.com/entrhq/webcanvas/pkg/canvas"
	"github.com/entrhq/webcanvas/pkg/geometry"
	"github.com/entrhq/webcanvas/pkg/host"
	"github.com/entrhq/webcanvas/pkg/logging"
)

// Defaults for the compensating sequence.
const (
	// DefaultMarker is the substring a node address must contain for the
	// interceptor to take over its deletion.
	DefaultMarker = "chatgpt.com"

	// DefaultAlternateKey is the synthetic key press that triggers the
	// host's alternate removal path. Modifier-augmented so the
	// capture-phase suppressor lets it through.
	DefaultAlternateKey = "Control+Delete"

	// DefaultConfirmSelector locates the host's confirmation control.
	DefaultConfirmSelector = ".modal-container button.mod-warning"

	// DefaultConfirmDelay is the wait before looking for the
	// confirmation control, covering the host's modal animation.
	DefaultConfirmDelay = 500 * time.Millisecond

	// deleteKey is the key the interceptor listens for.
	deleteKey = "Delete"
)

// Options configures an Interceptor.
type Options struct {
	// Marker is the address substring predicate. Empty means
	// DefaultMarker.
	Marker string

	// Patterns are optional glob patterns matched against the whole
	// address in addition to the marker substring.
	Patterns []string

	// AlternateKey, ConfirmSelector and ConfirmDelay override the
	// compensating sequence defaults.
	AlternateKey    string
	ConfirmSelector string
	ConfirmDelay    time.Duration

	// Tolerance is the geometry matching tolerance used to map selected
	// elements back to records. Zero means geometry.DefaultTolerance.
	Tolerance float64

	// Logger receives interception diagnostics. Nil creates a component
	// logger.
	Logger *logging.Logger
}

// Interceptor consumes document-level key events and runs the compensating
// deletion sequence for intercepted Delete presses.
type Interceptor struct {
	surface    host.Surface
	store      canvas.Store
	dispatcher *automation.Dispatcher

	marker          string
	patterns        []glob.Glob
	alternateKey    string
	confirmSelector string
	confirmDelay    time.Duration
	tolerance       float64
	log             *logging.Logger
}

// New creates an interceptor. Glob patterns are compiled eagerly so a bad
// pattern fails at startup, not mid-keystroke.
func New(surface host.Surface, store canvas.Store, dispatcher *automation.Dispatcher, opts Options) (*Interceptor, error) {
	if opts.Marker == "" {
		opts.Marker = DefaultMarker
	}
	if opts.AlternateKey == "" {
		opts.AlternateKey = DefaultAlternateKey
	}
	if opts.ConfirmSelector == "" {
		opts.ConfirmSelector = DefaultConfirmSelector
	}
	if opts.ConfirmDelay == 0 {
		opts.ConfirmDelay = DefaultConfirmDelay
	}
	if opts.Tolerance == 0 {
		opts.Tolerance = geometry.DefaultTolerance
	}
	if opts.Logger == nil {
		opts.Logger, _ = logging.NewLogger("intercept")
	}

	patterns := make([]glob.Glob, 0, len(opts.Patterns))
	for _, p := range opts.Patterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid intercept pattern %q: %w", p, err)
		}
		patterns = append(patterns, g)
	}

	return &Interceptor{
		surface:         surface,
		store:           store,
		dispatcher:      dispatcher,
		marker:          opts.Marker,
		patterns:        patterns,
		alternateKey:    opts.AlternateKey,
		confirmSelector: opts.ConfirmSelector,
		confirmDelay:    opts.ConfirmDelay,
		tolerance:       opts.Tolerance,
		log:             opts.Logger,
	}, nil
}

// MatchesAddress reports whether an address falls under the interceptor's
// domain predicate. Also used as the engine's intercept-marking predicate.
func (i *Interceptor) MatchesAddress(address string) bool {
	if address == "" {
		return false
	}
	if strings.Contains(address, i.marker) {
		return true
	}
	for _, g := range i.patterns {
		if g.Match(address) {
			return true
		}
	}
	return false
}

// Run consumes key events until ctx is cancelled or the surface closes its
// event stream.
func (i *Interceptor) Run(ctx context.Context) error {
	events := i.surface.KeyEvents()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			i.handle(ctx, ev)
		}
	}
}

// handle runs the compensating sequence for one intercepted Delete press.
// All guards must hold: genuine press, designated key without modifiers,
// default already cancelled at the capture phase, a live selection, and at
// least one selected record matching the domain predicate. Any guard
// failing means the host's default handling proceeds (or already did)
// unmodified.
func (i *Interceptor) handle(ctx context.Context, ev host.KeyEvent) {
	if !ev.Trusted || ev.Key != deleteKey || ev.HasModifier() || !ev.Suppressed {
		return
	}

	selection, err := i.surface.Selection(ctx)
	if err != nil {
		i.log.Warnf("selection unreadable: %v", err)
		return
	}
	if len(selection) == 0 {
		return
	}

	doc, ok, err := i.store.Active(ctx)
	if err != nil {
		i.log.Warnf("document unreadable: %v", err)
		return
	}
	if !ok {
		return
	}

	targets := i.matchSelection(doc, selection)
	if len(targets) == 0 {
		return
	}

	i.log.Infof("intercepted delete for %d chat node(s)", len(targets))

	// Host-side removal: alternate key path, then the confirmation
	// control once the host's modal has had time to appear.
	if err := i.surface.PressKey(ctx, i.alternateKey); err != nil {
		i.log.Errorf("alternate key dispatch failed: %v", err)
	}

	select {
	case <-ctx.Done():
		return
	case <-time.After(i.confirmDelay):
	}

	clicked, err := i.surface.ClickControl(ctx, i.confirmSelector)
	if err != nil {
		i.log.Errorf("confirmation click failed: %v", err)
	} else if !clicked {
		i.log.Debugf("no confirmation control present")
	}

	// Remote-side removal, per record. One failing dispatch never stops
	// the others.
	for _, rect := range targets {
		if err := i.dispatcher.Dispatch(ctx, rect, automation.ScriptChatDelete, automation.Params{}); err != nil {
			i.log.Errorf("chat delete dispatch failed at (%.0f, %.0f): %v", rect.X, rect.Y, err)
		}
	}
}

// matchSelection maps selected element geometry back to link records and
// keeps the ones whose address satisfies the domain predicate.
func (i *Interceptor) matchSelection(doc *canvas.Document, selection []geometry.Rect) []geometry.Rect {
	var targets []geometry.Rect
	for _, sel := range selection {
		for _, rec := range doc.LinkNodes() {
			if !rec.Rect().Matches(sel, i.tolerance) {
				continue
			}
			if i.MatchesAddress(rec.Address) {
				targets = append(targets, sel)
			}
			break
		}
	}
	return targets
}
