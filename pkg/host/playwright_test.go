package host

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/entrhq/webcanvas/pkg/geometry"
)

func TestRectFromComputedBox(t *testing.T) {
	t.Run("computed style fields", func(t *testing.T) {
		rect := rectFromComputedBox(map[string]interface{}{
			"transform": "matrix(1, 0, 0, 1, 200, -1000)",
			"width":     "760px",
			"height":    "800px",
		})
		assert.Equal(t, geometry.Rect{X: 200, Y: -1000, Width: 760, Height: 800}, rect)
	})

	t.Run("missing or non-string fields collapse to zero", func(t *testing.T) {
		rect := rectFromComputedBox(map[string]interface{}{
			"width": 760.0,
		})
		assert.Equal(t, geometry.Rect{}, rect)
	})
}

func TestBoolField(t *testing.T) {
	fields := map[string]interface{}{"trusted": true, "key": "Delete"}

	assert.True(t, boolField(fields, "trusted"))
	assert.False(t, boolField(fields, "absent"))
	assert.False(t, boolField(fields, "key"), "non-bool values read as false")
	assert.Equal(t, "Delete", stringField(fields, "key"))
	assert.Equal(t, "", stringField(fields, "trusted"))
}
