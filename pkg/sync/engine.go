// Package sync reconciles canvas link records with their rendered embedded
// views.
//
// Records and elements share no stable identifier; every pass re-derives
// the association from geometry. A pass reads each matched view's live
// address into its record, pushes a stored address into a freshly seen
// blank view exactly once per record per process lifetime, and rewrites
// the document only when something actually changed.
package sync

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/entrhq/webcanvas/pkg/canvas"
	"github.com/entrhq/webcanvas/pkg/geometry"
	"github.com/entrhq/webcanvas/pkg/host"
	"github.com/entrhq/webcanvas/pkg/logging"
)

// Stats summarizes engine activity for status reporting.
type Stats struct {
	Passes         int64     `json:"passes"`
	Writes         int64     `json:"writes"`
	LastPass       time.Time `json:"last_pass"`
	TrackedRecords int       `json:"tracked_records"`
}

// Options configures an Engine.
type Options struct {
	// Tolerance is the geometry matching tolerance. Zero means
	// geometry.DefaultTolerance.
	Tolerance float64

	// InterceptPredicate, when set, marks every element whose matched
	// record address satisfies it as a deletion-intercept target on the
	// surface. Elements matched to non-satisfying records are unmarked.
	InterceptPredicate func(address string) bool

	// Logger receives pass diagnostics. Nil creates a component logger.
	Logger *logging.Logger
}

// Engine runs reconciliation passes. Passes never overlap: a pass started
// while another is running is skipped, not queued.
type Engine struct {
	store     canvas.Store
	surface   host.Surface
	tolerance float64
	predicate func(string) bool
	log       *logging.Logger

	passMu sync.Mutex // held for the duration of one pass

	mu    sync.Mutex // guards seen and stats
	seen  map[string]bool
	stats Stats
}

// New creates an engine over the given document store and surface.
func New(store canvas.Store, surface host.Surface, opts Options) *Engine {
	if opts.Tolerance == 0 {
		opts.Tolerance = geometry.DefaultTolerance
	}
	if opts.Logger == nil {
		opts.Logger, _ = logging.NewLogger("sync")
	}
	return &Engine{
		store:     store,
		surface:   surface,
		tolerance: opts.Tolerance,
		predicate: opts.InterceptPredicate,
		log:       opts.Logger,
		seen:      make(map[string]bool),
	}
}

// Stats returns a snapshot of engine activity.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stats
}

// RunPass executes one reconciliation pass.
//
// Transient absences (no active document, no rendered elements, no
// geometry match for a record) and parse failures are not errors: the pass
// logs and returns nil, leaving the document untouched, and the condition
// resolves naturally on a later pass. Only a persistence failure is
// returned, so callers can surface it.
func (e *Engine) RunPass(ctx context.Context) error {
	if !e.passMu.TryLock() {
		e.log.Debugf("pass already in progress, skipping")
		return nil
	}
	defer e.passMu.Unlock()

	doc, ok, err := e.store.Active(ctx)
	if err != nil {
		e.log.Warnf("document unreadable, pass aborted: %v", err)
		return nil
	}
	if !ok {
		return nil
	}

	elements, err := e.surface.Elements(ctx)
	if err != nil {
		e.log.Warnf("element enumeration failed, pass aborted: %v", err)
		return nil
	}
	if len(elements) == 0 {
		e.finishPass(doc, false)
		return nil
	}

	// Resolve rendered geometry up front; elements whose style cannot be
	// read drop out of this pass only.
	var candidates []geometry.Rect
	var candidateIdx []int
	for i, el := range elements {
		rect, err := el.Geometry(ctx)
		if err != nil {
			e.log.Debugf("element %d: geometry unreadable: %v", i, err)
			continue
		}
		candidates = append(candidates, rect)
		candidateIdx = append(candidateIdx, i)
	}

	intercepted := make([]bool, len(elements))
	dirty := false

	for _, rec := range doc.LinkNodes() {
		changed, matched := e.reconcileRecord(ctx, rec, elements, candidates, candidateIdx)
		dirty = dirty || changed

		if e.predicate != nil && e.predicate(rec.Address) {
			for _, ci := range matched {
				intercepted[candidateIdx[ci]] = true
			}
		}
	}

	if e.predicate != nil {
		for i, el := range elements {
			if err := el.SetIntercept(ctx, intercepted[i]); err != nil {
				e.log.Debugf("element %d: intercept mark failed: %v", i, err)
			}
		}
	}

	if dirty {
		if err := e.store.Persist(ctx, doc); err != nil {
			e.log.Errorf("document write failed, changes lost: %v", err)
			return fmt.Errorf("failed to persist canvas document: %w", err)
		}
	}
	e.finishPass(doc, dirty)
	return nil
}

// reconcileRecord synchronizes one link record against the rendered
// elements. It returns whether the record changed and which candidate
// indices matched its geometry. Failures here affect only this record.
func (e *Engine) reconcileRecord(ctx context.Context, rec *canvas.Node, elements []host.Element, candidates []geometry.Rect, candidateIdx []int) (changed bool, matched []int) {
	matched = geometry.AllMatches(rec.Rect(), candidates, e.tolerance)
	if len(matched) == 0 {
		// Transient absence: scrolled off-screen or not rendered yet.
		return false, nil
	}

	type liveView struct {
		view    host.View
		address string
	}
	var views []liveView
	for _, ci := range matched {
		el := elements[candidateIdx[ci]]
		view, ok, err := el.View(ctx)
		if err != nil || !ok {
			continue
		}
		addr, err := view.Address(ctx)
		if err != nil {
			e.log.Debugf("record %s: address unreadable: %v", rec.ID, err)
			continue
		}
		views = append(views, liveView{view: view, address: addr})
	}
	if len(views) == 0 {
		return false, matched
	}

	e.mu.Lock()
	firstSight := !e.seen[rec.ID]
	e.seen[rec.ID] = true
	e.mu.Unlock()

	// One-time initialization: the first time this process sees the record
	// with a live view, a stored address is pushed into any view that has
	// not navigated anywhere yet. Happens at most once per record.
	if firstSight && rec.Address != "" {
		pushed := false
		for _, lv := range views {
			if !isBlank(lv.address) {
				continue
			}
			if err := lv.view.Navigate(ctx, rec.Address); err != nil {
				e.log.Warnf("record %s: address push failed: %v", rec.ID, err)
				continue
			}
			pushed = true
		}
		if pushed {
			// The live address settles after navigation; adopt it on a
			// later pass.
			return false, matched
		}
	}

	for _, lv := range views {
		if isBlank(lv.address) {
			continue
		}
		if lv.address != rec.Address {
			rec.Address = lv.address
			rec.LastKnownAddress = lv.address
			return true, matched
		}
		break
	}
	return false, matched
}

func (e *Engine) finishPass(doc *canvas.Document, wrote bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stats.Passes++
	if wrote {
		e.stats.Writes++
	}
	e.stats.LastPass = time.Now()
	e.stats.TrackedRecords = len(doc.LinkNodes())
}

func isBlank(address string) bool {
	return address == "" || address == "about:blank"
}
