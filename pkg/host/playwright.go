package host

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/playwright-community/playwright-go"

	"github.com/entrhq/webcanvas/pkg/geometry"
	"github.com/entrhq/webcanvas/pkg/transform"
)

// Default DOM hooks for the canvas application.
const (
	DefaultNodeSelector  = ".canvas-node"
	DefaultSelectedClass = "is-selected"

	// interceptAttribute marks elements whose default Delete handling is
	// cancelled by the capture-phase listener installed below.
	interceptAttribute = "data-webcanvas-intercept"

	// keyEventBuffer bounds the forwarded key event queue. Events beyond
	// the buffer are dropped rather than blocking the page binding.
	keyEventBuffer = 64
)

// keyForwardScript installs a capture-phase keydown listener on the canvas
// document. Genuine unmodified Delete presses are cancelled before the host
// sees them whenever a selected node carries the intercept attribute; every
// key press is forwarded to the daemon through the exposed binding.
const keyForwardScript = `(() => {
	if (window.__webcanvasHooked) { return; }
	window.__webcanvasHooked = true;
	document.addEventListener('keydown', (ev) => {
		let suppressed = false;
		const unmodified = !ev.altKey && !ev.ctrlKey && !ev.shiftKey && !ev.metaKey;
		if (ev.isTrusted && ev.key === 'Delete' && unmodified) {
			const hit = document.querySelector('%s.%s[%s]');
			if (hit) {
				ev.preventDefault();
				ev.stopImmediatePropagation();
				suppressed = true;
			}
		}
		if (typeof window.__webcanvasKey === 'function') {
			window.__webcanvasKey({
				key: ev.key,
				trusted: ev.isTrusted,
				alt: ev.altKey,
				ctrl: ev.ctrlKey,
				shift: ev.shiftKey,
				meta: ev.metaKey,
				suppressed: suppressed,
			});
		}
	}, true);
})();`

// computedBoxScript reads the style properties geometry is derived from.
const computedBoxScript = `el => {
	const cs = getComputedStyle(el);
	return { transform: cs.transform, width: cs.width, height: cs.height };
}`

// SurfaceOptions configures how the page is interpreted as a canvas surface.
type SurfaceOptions struct {
	// NodeSelector matches rendered canvas node elements.
	NodeSelector string

	// SelectedClass is the class the host adds to selected nodes.
	SelectedClass string
}

// PageSurface implements Surface over a playwright page rendering the
// canvas application.
type PageSurface struct {
	page     playwright.Page
	selector string
	selected string
	events   chan KeyEvent
}

// NewPageSurface attaches to a canvas page: exposes the key-forwarding
// binding, installs the capture-phase listener for future navigations, and
// hooks the currently loaded document.
func NewPageSurface(page playwright.Page, opts SurfaceOptions) (*PageSurface, error) {
	if opts.NodeSelector == "" {
		opts.NodeSelector = DefaultNodeSelector
	}
	if opts.SelectedClass == "" {
		opts.SelectedClass = DefaultSelectedClass
	}

	s := &PageSurface{
		page:     page,
		selector: opts.NodeSelector,
		selected: opts.SelectedClass,
		events:   make(chan KeyEvent, keyEventBuffer),
	}

	err := page.ExposeBinding("__webcanvasKey", func(source *playwright.BindingSource, args ...interface{}) interface{} {
		if len(args) == 0 {
			return nil
		}
		fields, ok := args[0].(map[string]interface{})
		if !ok {
			return nil
		}
		ev := KeyEvent{
			Key:        stringField(fields, "key"),
			Trusted:    boolField(fields, "trusted"),
			Alt:        boolField(fields, "alt"),
			Ctrl:       boolField(fields, "ctrl"),
			Shift:      boolField(fields, "shift"),
			Meta:       boolField(fields, "meta"),
			Suppressed: boolField(fields, "suppressed"),
		}
		select {
		case s.events <- ev:
		default:
			// Queue full; dropping is preferable to stalling the page.
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to expose key binding: %w", err)
	}

	script := s.hookScript()
	if err := page.AddInitScript(playwright.Script{Content: playwright.String(script)}); err != nil {
		return nil, fmt.Errorf("failed to add init script: %w", err)
	}
	// The init script only covers future navigations; hook the document
	// that is already loaded as well.
	if _, err := page.Evaluate(script); err != nil {
		return nil, fmt.Errorf("failed to hook current document: %w", err)
	}

	return s, nil
}

func (s *PageSurface) hookScript() string {
	return fmt.Sprintf(keyForwardScript, s.selector, s.selected, interceptAttribute)
}

// Elements enumerates rendered canvas node elements.
func (s *PageSurface) Elements(ctx context.Context) ([]Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	handles, err := s.page.QuerySelectorAll(s.selector)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate canvas nodes: %w", err)
	}

	elements := make([]Element, 0, len(handles))
	for _, h := range handles {
		elements = append(elements, &pageElement{handle: h})
	}
	return elements, nil
}

// Selection returns the geometry of every selected node.
func (s *PageSurface) Selection(ctx context.Context) ([]geometry.Rect, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	script := fmt.Sprintf(`() => Array.from(document.querySelectorAll('%s.%s')).map(%s)`,
		s.selector, s.selected, computedBoxScript)
	result, err := s.page.Evaluate(script)
	if err != nil {
		return nil, fmt.Errorf("failed to read selection: %w", err)
	}

	boxes, ok := result.([]interface{})
	if !ok {
		return nil, nil
	}
	rects := make([]geometry.Rect, 0, len(boxes))
	for _, b := range boxes {
		fields, ok := b.(map[string]interface{})
		if !ok {
			continue
		}
		rects = append(rects, rectFromComputedBox(fields))
	}
	return rects, nil
}

// PressKey dispatches a synthetic key press at the document level.
func (s *PageSurface) PressKey(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.page.Keyboard().Press(key); err != nil {
		return fmt.Errorf("failed to press %q: %w", key, err)
	}
	return nil
}

// ClickControl activates the control matching selector if present.
func (s *PageSurface) ClickControl(ctx context.Context, selector string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	handle, err := s.page.QuerySelector(selector)
	if err != nil {
		return false, fmt.Errorf("failed to query %q: %w", selector, err)
	}
	if handle == nil {
		return false, nil
	}
	if err := handle.Click(); err != nil {
		return true, fmt.Errorf("failed to click %q: %w", selector, err)
	}
	return true, nil
}

// KeyEvents streams forwarded document-level key presses.
func (s *PageSurface) KeyEvents() <-chan KeyEvent {
	return s.events
}

// Content returns the page's current HTML, for snapshot-based inspection.
func (s *PageSurface) Content(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	content, err := s.page.Content()
	if err != nil {
		return "", fmt.Errorf("failed to read page content: %w", err)
	}
	return content, nil
}

// pageElement wraps one rendered canvas node handle.
type pageElement struct {
	handle playwright.ElementHandle
}

func (e *pageElement) Geometry(ctx context.Context) (geometry.Rect, error) {
	if err := ctx.Err(); err != nil {
		return geometry.Rect{}, err
	}

	result, err := e.handle.Evaluate(computedBoxScript)
	if err != nil {
		return geometry.Rect{}, fmt.Errorf("failed to read computed style: %w", err)
	}
	fields, ok := result.(map[string]interface{})
	if !ok {
		return geometry.Rect{}, fmt.Errorf("unexpected computed style shape: %T", result)
	}
	return rectFromComputedBox(fields), nil
}

func (e *pageElement) View(ctx context.Context) (View, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	handle, err := e.handle.QuerySelector("iframe, webview")
	if err != nil {
		return nil, false, fmt.Errorf("failed to locate embedded view: %w", err)
	}
	if handle == nil {
		return nil, false, nil
	}

	frame, err := handle.ContentFrame()
	if err != nil {
		return nil, false, fmt.Errorf("failed to resolve content frame: %w", err)
	}
	if frame == nil {
		return nil, false, nil
	}
	return &frameView{frame: frame}, true, nil
}

func (e *pageElement) SetIntercept(ctx context.Context, on bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var script string
	if on {
		script = fmt.Sprintf(`el => el.setAttribute('%s', '1')`, interceptAttribute)
	} else {
		script = fmt.Sprintf(`el => el.removeAttribute('%s')`, interceptAttribute)
	}
	if _, err := e.handle.Evaluate(script); err != nil {
		return fmt.Errorf("failed to update intercept mark: %w", err)
	}
	return nil
}

// frameView is an embedded view backed by an iframe's content frame.
type frameView struct {
	frame playwright.Frame
}

func (v *frameView) Address(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return v.frame.URL(), nil
}

func (v *frameView) Navigate(ctx context.Context, address string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := v.frame.Goto(address); err != nil {
		return fmt.Errorf("failed to navigate embedded view: %w", err)
	}
	return nil
}

// Execute waits for the frame to signal readiness and runs the script.
// userGesture is accepted for contract compatibility; driver-evaluated
// script already carries user activation, so no extra handling is needed.
func (v *frameView) Execute(ctx context.Context, script string, userGesture bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := v.frame.WaitForLoadState(playwright.FrameWaitForLoadStateOptions{
		State: playwright.LoadStateDomcontentloaded,
	}); err != nil {
		return fmt.Errorf("embedded view not ready: %w", err)
	}
	if _, err := v.frame.Evaluate(script); err != nil {
		return fmt.Errorf("script execution failed: %w", err)
	}
	return nil
}

// rectFromComputedBox converts a {transform, width, height} style readout
// into canvas geometry. Malformed values degrade to zeros rather than
// failing the pass.
func rectFromComputedBox(fields map[string]interface{}) geometry.Rect {
	off := transform.Parse(stringField(fields, "transform"))
	return geometry.Rect{
		X:      off.X,
		Y:      off.Y,
		Width:  parsePixels(stringField(fields, "width")),
		Height: parsePixels(stringField(fields, "height")),
	}
}

// parsePixels parses a computed length such as "760px".
func parsePixels(value string) float64 {
	value = strings.TrimSuffix(strings.TrimSpace(value), "px")
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	return v
}

func stringField(fields map[string]interface{}, key string) string {
	if v, ok := fields[key].(string); ok {
		return v
	}
	return ""
}

func boolField(fields map[string]interface{}, key string) bool {
	if v, ok := fields[key].(bool); ok {
		return v
	}
	return false
}
