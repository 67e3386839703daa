package canvas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/webcanvas/pkg/geometry"
)

func TestNewNodeID_Unique(t *testing.T) {
	seen := make(map[string]bool)
	prev := ""
	for i := 0; i < 100; i++ {
		id := NewNodeID()
		assert.False(t, seen[id], "duplicate id %q", id)
		assert.Greater(t, id, prev, "ids must be monotonic")
		seen[id] = true
		prev = id
	}
}

func TestAddLinkNode(t *testing.T) {
	doc := &Document{}
	rect := geometry.Rect{X: 200, Y: -1000, Width: 760, Height: 800}

	node := doc.AddLinkNode("https://chatgpt.com", rect)

	require.Len(t, doc.Nodes, 1)
	assert.Same(t, node, doc.Nodes[0])
	assert.NotEmpty(t, node.ID)
	assert.Equal(t, NodeKindLink, node.Kind)
	assert.Equal(t, "https://chatgpt.com", node.Address)
	assert.Equal(t, rect, node.Rect())
	assert.Empty(t, node.LastKnownAddress)
}
