package host

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/entrhq/webcanvas/pkg/geometry"
	"github.com/entrhq/webcanvas/pkg/transform"
)

// SnapshotNode is one canvas node recovered from a static HTML snapshot of
// the page. Snapshots avoid per-element driver round-trips and feed the
// daemon's status reporting; live reconciliation still uses the driver so
// it sees computed (not just inline) style.
type SnapshotNode struct {
	Rect     geometry.Rect `json:"rect"`
	Address  string        `json:"address,omitempty"`
	Selected bool          `json:"selected,omitempty"`
}

// ParseSnapshot extracts canvas nodes from page HTML. nodeClass and
// selectedClass are bare class names (no leading dot). Geometry is read
// from each element's inline style; the embedded view address is the src
// of the first iframe or webview descendant.
func ParseSnapshot(pageHTML, nodeClass, selectedClass string) ([]SnapshotNode, error) {
	doc, err := html.Parse(strings.NewReader(pageHTML))
	if err != nil {
		return nil, fmt.Errorf("failed to parse page snapshot: %w", err)
	}

	var nodes []SnapshotNode
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && hasClass(n, nodeClass) {
			nodes = append(nodes, snapshotNode(n, selectedClass))
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return nodes, nil
}

func snapshotNode(n *html.Node, selectedClass string) SnapshotNode {
	style := attrValue(n, "style")
	off := transform.Parse(styleProperty(style, "transform"))

	return SnapshotNode{
		Rect: geometry.Rect{
			X:      off.X,
			Y:      off.Y,
			Width:  parsePixels(styleProperty(style, "width")),
			Height: parsePixels(styleProperty(style, "height")),
		},
		Address:  findViewSource(n),
		Selected: hasClass(n, selectedClass),
	}
}

// findViewSource locates the src of the first embedded view descendant.
func findViewSource(n *html.Node) string {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			name := strings.ToLower(c.Data)
			if name == "iframe" || name == "webview" {
				return attrValue(c, "src")
			}
		}
		if src := findViewSource(c); src != "" {
			return src
		}
	}
	return ""
}

// styleProperty extracts one property value from an inline style string.
func styleProperty(style, name string) string {
	for _, decl := range strings.Split(style, ";") {
		key, value, found := strings.Cut(decl, ":")
		if !found {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(key), name) {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attrValue(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func attrValue(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}
