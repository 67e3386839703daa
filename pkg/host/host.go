// Package host abstracts the canvas rendering surface this system
// collaborates with: the rendered node elements, their embedded web views,
// the current selection, and document-level key events.
//
// The synchronization engine, automation dispatcher, and deletion
// interceptor all program against these interfaces; the playwright-backed
// implementation in this package is the production surface, and tests
// substitute fakes.
package host

import (
	"context"

	"github.com/entrhq/webcanvas/pkg/geometry"
)

// KeyEvent is a document-level key press forwarded from the surface.
type KeyEvent struct {
	// Key is the DOM key value, e.g. "Delete".
	Key string

	// Trusted is false for synthetically dispatched events.
	Trusted bool

	Alt   bool
	Ctrl  bool
	Shift bool
	Meta  bool

	// Suppressed reports that the surface already cancelled the default
	// handling for this event (capture-phase interception fired).
	Suppressed bool
}

// HasModifier reports whether any modifier key was held.
func (e KeyEvent) HasModifier() bool {
	return e.Alt || e.Ctrl || e.Shift || e.Meta
}

// View is an embedded web page hosted inside a visual element.
type View interface {
	// Address returns the view's current live location.
	Address(ctx context.Context) (string, error)

	// Navigate drives the view to the given address.
	Navigate(ctx context.Context, address string) error

	// Execute runs script inside the view once it signals readiness.
	// userGesture asks the surface to run the script with user activation
	// so the page treats resulting interactions as genuine.
	Execute(ctx context.Context, script string, userGesture bool) error
}

// Element is one rendered canvas node. Elements are ephemeral: the
// rendering layer creates and destroys them freely, so handles are only
// valid within the pass that enumerated them.
type Element interface {
	// Geometry returns the element's rendered position and size in canvas
	// coordinates, recovered from its computed style.
	Geometry(ctx context.Context) (geometry.Rect, error)

	// View resolves the element's embedded view. ok is false when the
	// element hosts no view (or it is not yet attached) — a transient
	// condition, not an error.
	View(ctx context.Context) (View, bool, error)

	// SetIntercept marks or unmarks the element as a deletion-intercept
	// target. Marked elements have their default Delete handling
	// cancelled at the capture phase inside the surface itself.
	SetIntercept(ctx context.Context, on bool) error
}

// Surface is the rendering side of the host collaborator contract.
type Surface interface {
	// Elements enumerates the currently rendered canvas node elements.
	// An empty result is normal (nothing rendered yet).
	Elements(ctx context.Context) ([]Element, error)

	// Selection returns the geometry of every currently selected node.
	Selection(ctx context.Context) ([]geometry.Rect, error)

	// PressKey dispatches a synthetic key press at the document level,
	// e.g. "Control+Delete".
	PressKey(ctx context.Context, key string) error

	// ClickControl activates the control matching selector if present.
	// Returns false when no such control exists.
	ClickControl(ctx context.Context, selector string) (bool, error)

	// KeyEvents streams document-level key presses. The channel is owned
	// by the surface and closes when the surface is torn down.
	KeyEvents() <-chan KeyEvent
}
