package canvas

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/webcanvas/pkg/geometry"
)

const sampleDocument = `{
	"nodes": [
		{"id": "a1", "kind": "link", "x": 200, "y": -1000, "width": 760, "height": 800, "address": "https://chatgpt.com", "color": "4"},
		{"id": "b2", "kind": "text", "x": 0, "y": 0, "width": 250, "height": 60, "text": "notes"}
	],
	"edges": [
		{"id": "e1", "fromNode": "a1", "toNode": "b2"}
	],
	"metadata": {"zoom": 0.75}
}`

func TestParseDocument(t *testing.T) {
	doc, err := ParseDocument([]byte(sampleDocument))
	require.NoError(t, err)

	require.Len(t, doc.Nodes, 2)
	assert.Equal(t, "a1", doc.Nodes[0].ID)
	assert.Equal(t, NodeKindLink, doc.Nodes[0].Kind)
	assert.Equal(t, "https://chatgpt.com", doc.Nodes[0].Address)
	assert.Equal(t, geometry.Rect{X: 200, Y: -1000, Width: 760, Height: 800}, doc.Nodes[0].Rect())
	require.Len(t, doc.Edges, 1)

	links := doc.LinkNodes()
	require.Len(t, links, 1)
	assert.Equal(t, "a1", links[0].ID)

	assert.Equal(t, doc.Nodes[1], doc.NodeByID("b2"))
	assert.Nil(t, doc.NodeByID("missing"))
}

func TestParseDocument_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "not json", input: "{{{"},
		{name: "nodes not an array", input: `{"nodes": 42}`},
		{name: "node not an object", input: `{"nodes": ["x"]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDocument([]byte(tt.input))
			assert.Error(t, err)
		})
	}
}

func TestDocument_RoundTripPreservesUnknownFields(t *testing.T) {
	doc, err := ParseDocument([]byte(sampleDocument))
	require.NoError(t, err)

	out, err := doc.Marshal()
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(out, &raw))

	// Unknown top-level field survives.
	assert.JSONEq(t, `{"zoom": 0.75}`, string(raw["metadata"]))

	// Unknown node fields survive on both kinds.
	var nodes []map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw["nodes"], &nodes))
	require.Len(t, nodes, 2)
	assert.JSONEq(t, `"4"`, string(nodes[0]["color"]))
	assert.JSONEq(t, `"notes"`, string(nodes[1]["text"]))

	// The text node gained no address fields.
	_, hasAddress := nodes[1]["address"]
	assert.False(t, hasAddress)

	// Edges pass through untouched.
	var edges []map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw["edges"], &edges))
	require.Len(t, edges, 1)
	assert.JSONEq(t, `"a1"`, string(edges[0]["fromNode"]))
}

func TestDocument_MarshalEmpty(t *testing.T) {
	doc := &Document{}
	out, err := doc.Marshal()
	require.NoError(t, err)
	assert.JSONEq(t, `{"nodes": [], "edges": []}`, string(out))
}

func TestDocument_RoundTripAfterMutation(t *testing.T) {
	doc, err := ParseDocument([]byte(sampleDocument))
	require.NoError(t, err)

	doc.Nodes[0].Address = "https://chatgpt.com/c/abc"
	doc.Nodes[0].LastKnownAddress = "https://chatgpt.com/c/abc"

	out, err := doc.Marshal()
	require.NoError(t, err)

	reparsed, err := ParseDocument(out)
	require.NoError(t, err)
	assert.Equal(t, "https://chatgpt.com/c/abc", reparsed.Nodes[0].Address)
	assert.Equal(t, "https://chatgpt.com/c/abc", reparsed.Nodes[0].LastKnownAddress)
	assert.Equal(t, doc.Nodes[0].Rect(), reparsed.Nodes[0].Rect())
}
