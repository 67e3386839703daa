package canvas

import (
	"fmt"
	"sync"
	"time"

	"github.com/entrhq/webcanvas/pkg/geometry"
)

var (
	idMu   sync.Mutex
	lastID int64
)

// NewNodeID returns a unique node id derived from the current time.
// Ids are hex-encoded unix milliseconds; a colliding call within the same
// millisecond is bumped forward so ids stay strictly monotonic within the
// process.
func NewNodeID() string {
	idMu.Lock()
	defer idMu.Unlock()

	now := time.Now().UnixMilli()
	if now <= lastID {
		now = lastID + 1
	}
	lastID = now
	return fmt.Sprintf("%012x", now)
}

// AddLinkNode appends a new link-kind node with the given address and
// geometry and returns it. The caller owns persistence; the rendered
// element for the new node appears only after the host's render pipeline
// catches up, so any dependent visual lookup must be deferred.
func (d *Document) AddLinkNode(address string, r geometry.Rect) *Node {
	node := &Node{
		ID:      NewNodeID(),
		Kind:    NodeKindLink,
		X:       r.X,
		Y:       r.Y,
		Width:   r.Width,
		Height:  r.Height,
		Address: address,
	}
	d.Nodes = append(d.Nodes, node)
	return node
}
