package automation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/webcanvas/pkg/geometry"
	"github.com/entrhq/webcanvas/pkg/host"
)

type scriptedView struct {
	executed chan string
}

func (v *scriptedView) Address(ctx context.Context) (string, error) { return "", nil }

func (v *scriptedView) Navigate(ctx context.Context, address string) error { return nil }

func (v *scriptedView) Execute(ctx context.Context, script string, userGesture bool) error {
	v.executed <- script
	return nil
}

type scriptedElement struct {
	rect    geometry.Rect
	geomErr error
	view    host.View
}

func (e *scriptedElement) Geometry(ctx context.Context) (geometry.Rect, error) {
	return e.rect, e.geomErr
}

func (e *scriptedElement) View(ctx context.Context) (host.View, bool, error) {
	if e.view == nil {
		return nil, false, nil
	}
	return e.view, true, nil
}

func (e *scriptedElement) SetIntercept(ctx context.Context, on bool) error { return nil }

type scriptedSurface struct {
	elements []host.Element
}

func (s *scriptedSurface) Elements(ctx context.Context) ([]host.Element, error) {
	return s.elements, nil
}

func (s *scriptedSurface) Selection(ctx context.Context) ([]geometry.Rect, error) {
	return nil, nil
}

func (s *scriptedSurface) PressKey(ctx context.Context, key string) error { return nil }

func (s *scriptedSurface) ClickControl(ctx context.Context, selector string) (bool, error) {
	return false, nil
}

func (s *scriptedSurface) KeyEvents() <-chan host.KeyEvent { return nil }

func TestDispatcher_Dispatch(t *testing.T) {
	ctx := context.Background()
	target := geometry.Rect{X: 200, Y: -1000, Width: 760, Height: 800}

	t.Run("executes the rendered script in the matched view", func(t *testing.T) {
		view := &scriptedView{executed: make(chan string, 1)}
		surface := &scriptedSurface{elements: []host.Element{
			&scriptedElement{rect: geometry.Rect{X: 0, Y: 0, Width: 10, Height: 10}},
			&scriptedElement{rect: target, view: view},
		}}
		d := NewDispatcher(surface, DispatcherOptions{Manifest: &Manifest{Scripts: []*Script{
			{Name: "probe", Source: "probe({{.Ordinal}})"},
		}}})

		require.NoError(t, d.Dispatch(ctx, target, "probe", Params{Ordinal: 4}))

		select {
		case script := <-view.executed:
			assert.Equal(t, "probe(4)", script)
		case <-time.After(2 * time.Second):
			t.Fatal("script never reached the view")
		}
	})

	t.Run("unknown script", func(t *testing.T) {
		d := NewDispatcher(&scriptedSurface{}, DispatcherOptions{})
		err := d.Dispatch(ctx, target, "nope", Params{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown automation script")
	})

	t.Run("no matching geometry", func(t *testing.T) {
		surface := &scriptedSurface{elements: []host.Element{
			&scriptedElement{rect: geometry.Rect{X: 1, Y: 1, Width: 1, Height: 1}},
		}}
		d := NewDispatcher(surface, DispatcherOptions{})
		err := d.Dispatch(ctx, target, ScriptModelSelect, Params{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no element matches")
	})

	t.Run("matched element without a view", func(t *testing.T) {
		surface := &scriptedSurface{elements: []host.Element{
			&scriptedElement{rect: target},
		}}
		d := NewDispatcher(surface, DispatcherOptions{})
		err := d.Dispatch(ctx, target, ScriptModelSelect, Params{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no embedded view")
	})

	t.Run("unreadable geometry is skipped, not fatal", func(t *testing.T) {
		view := &scriptedView{executed: make(chan string, 1)}
		surface := &scriptedSurface{elements: []host.Element{
			&scriptedElement{geomErr: errors.New("detached")},
			&scriptedElement{rect: target, view: view},
		}}
		d := NewDispatcher(surface, DispatcherOptions{})
		assert.NoError(t, d.Dispatch(ctx, target, ScriptModelSelect, Params{Ordinal: 1}))
	})
}
