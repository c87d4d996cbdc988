package engine

import (
	"github.com/inamate/inamate/render-go/internal/document"
	"github.com/inamate/inamate/render-go/internal/geom"
)

// HitTestResult contains information about a hit test.
type HitTestResult struct {
	ObjectID string  `json:"objectId"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
}

// HitTest returns the ID of the front-most layer whose bounds contain the page
// point (x, y), or "" when nothing is hit. Groups are never hit themselves.
func HitTest(sc *Scene, x, y float64) string {
	if sc == nil || sc.Root == nil {
		return ""
	}
	return hitTestNode(sc.Root, geom.Pt(x, y))
}

// hitTestNode tests children front to back, the reverse of paint order.
func hitTestNode(node *Node, p geom.Point) string {
	for i := len(node.Children) - 1; i >= 0; i-- {
		if hit := hitTestNode(node.Children[i], p); hit != "" {
			return hit
		}
	}

	if node.Type != document.LayerTypeGroup && !node.Bounds.IsEmpty() && node.Bounds.Contains(p) {
		return node.ID
	}
	return ""
}

// SelectionBounds returns the union of the page-space bounds of the given
// layers. Unknown IDs are ignored.
func SelectionBounds(sc *Scene, ids []string) geom.Rect {
	if sc == nil {
		return geom.Rect{}
	}

	var result geom.Rect
	for _, id := range ids {
		node, ok := sc.NodesByID[id]
		if !ok || node.Bounds.IsEmpty() {
			continue
		}
		result = result.Union(node.Bounds)
	}
	return result
}
