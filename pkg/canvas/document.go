// Package canvas models the node-and-edge canvas document and its on-disk
// JSON form.
//
// The document is owned by the host's file layer: every mutation reads the
// whole file, rewrites the whole file. Unknown fields — on the document, on
// individual nodes — must survive a parse/serialize round trip untouched,
// since other tools read and write the same file.
package canvas

import (
	"encoding/json"
	"fmt"

	"github.com/entrhq/webcanvas/pkg/geometry"
)

// NodeKindLink is the discriminator for nodes hosting an embedded web view.
const NodeKindLink = "link"

// Node is one record in the document's node list. Geometry is authoritative:
// it is the only link between a record and its rendered element.
type Node struct {
	ID     string
	Kind   string
	X      float64
	Y      float64
	Width  float64
	Height float64

	// Address is the embedded view's target location. LastKnownAddress
	// trails it as a denormalized cache of the last live location written
	// by a reconciliation pass.
	Address          string
	LastKnownAddress string

	// extra holds fields this package does not interpret.
	extra map[string]json.RawMessage
}

// Rect returns the node's stored geometry.
func (n *Node) Rect() geometry.Rect {
	return geometry.Rect{X: n.X, Y: n.Y, Width: n.Width, Height: n.Height}
}

// UnmarshalJSON decodes a node, keeping unrecognized fields aside so they
// can be written back verbatim.
func (n *Node) UnmarshalJSON(data []byte) error {
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("failed to decode node: %w", err)
	}

	take := func(key string, dst any) error {
		raw, ok := fields[key]
		if !ok {
			return nil
		}
		if err := json.Unmarshal(raw, dst); err != nil {
			return fmt.Errorf("invalid %q field: %w", key, err)
		}
		delete(fields, key)
		return nil
	}

	for key, dst := range map[string]any{
		"id":               &n.ID,
		"kind":             &n.Kind,
		"x":                &n.X,
		"y":                &n.Y,
		"width":            &n.Width,
		"height":           &n.Height,
		"address":          &n.Address,
		"lastKnownAddress": &n.LastKnownAddress,
	} {
		if err := take(key, dst); err != nil {
			return err
		}
	}

	n.extra = fields
	return nil
}

// MarshalJSON encodes the node, merging preserved unknown fields back in.
// Optional address fields are omitted when empty so non-link nodes keep
// their original shape.
func (n *Node) MarshalJSON() ([]byte, error) {
	fields := make(map[string]json.RawMessage, len(n.extra)+8)
	for k, v := range n.extra {
		fields[k] = v
	}

	put := func(key string, v any) error {
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to encode %q field: %w", key, err)
		}
		fields[key] = raw
		return nil
	}

	if err := put("id", n.ID); err != nil {
		return nil, err
	}
	if err := put("kind", n.Kind); err != nil {
		return nil, err
	}
	if err := put("x", n.X); err != nil {
		return nil, err
	}
	if err := put("y", n.Y); err != nil {
		return nil, err
	}
	if err := put("width", n.Width); err != nil {
		return nil, err
	}
	if err := put("height", n.Height); err != nil {
		return nil, err
	}
	if n.Address != "" {
		if err := put("address", n.Address); err != nil {
			return nil, err
		}
	}
	if n.LastKnownAddress != "" {
		if err := put("lastKnownAddress", n.LastKnownAddress); err != nil {
			return nil, err
		}
	}

	return json.Marshal(fields)
}

// Document is the parsed canvas file. Edges are opaque to this system and
// pass through untouched.
type Document struct {
	Nodes []*Node
	Edges []json.RawMessage

	extra map[string]json.RawMessage
}

// ParseDocument decodes canvas JSON. A document missing the nodes or edges
// arrays is still valid (they decode as empty).
func ParseDocument(data []byte) (*Document, error) {
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("failed to parse canvas document: %w", err)
	}

	doc := &Document{}

	if raw, ok := fields["nodes"]; ok {
		if err := json.Unmarshal(raw, &doc.Nodes); err != nil {
			return nil, fmt.Errorf("invalid nodes array: %w", err)
		}
		delete(fields, "nodes")
	}
	if raw, ok := fields["edges"]; ok {
		if err := json.Unmarshal(raw, &doc.Edges); err != nil {
			return nil, fmt.Errorf("invalid edges array: %w", err)
		}
		delete(fields, "edges")
	}

	doc.extra = fields
	return doc, nil
}

// Marshal serializes the document back to JSON, preserving unknown top-level
// fields. Arrays are always present in the output even when empty.
func (d *Document) Marshal() ([]byte, error) {
	fields := make(map[string]json.RawMessage, len(d.extra)+2)
	for k, v := range d.extra {
		fields[k] = v
	}

	nodes := d.Nodes
	if nodes == nil {
		nodes = []*Node{}
	}
	rawNodes, err := json.Marshal(nodes)
	if err != nil {
		return nil, fmt.Errorf("failed to encode nodes: %w", err)
	}
	fields["nodes"] = rawNodes

	edges := d.Edges
	if edges == nil {
		edges = []json.RawMessage{}
	}
	rawEdges, err := json.Marshal(edges)
	if err != nil {
		return nil, fmt.Errorf("failed to encode edges: %w", err)
	}
	fields["edges"] = rawEdges

	return json.MarshalIndent(fields, "", "\t")
}

// LinkNodes returns the link-kind nodes in document order.
func (d *Document) LinkNodes() []*Node {
	var links []*Node
	for _, n := range d.Nodes {
		if n.Kind == NodeKindLink {
			links = append(links, n)
		}
	}
	return links
}

// NodeByID returns the node with the given id, or nil.
func (d *Document) NodeByID(id string) *Node {
	for _, n := range d.Nodes {
		if n.ID == id {
			return n
		}
	}
	return nil
}
