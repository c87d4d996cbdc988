package engine

import (
	"github.com/inamate/inamate/render-go/internal/document"
	"github.com/inamate/inamate/render-go/internal/geom"
	"github.com/inamate/inamate/render-go/internal/scene"
)

// Scene is one page built for drawing: the element tree handed to Draw plus a
// layer index used for hit testing and selection bounds. It is rebuilt from
// the document whenever anything changes; nothing carries over between frames.
type Scene struct {
	PageID   string
	Page     document.Page
	Elements []scene.Element

	Root      *Node
	NodesByID map[string]*Node
}

// Node is the hit-testing view of one visible layer.
type Node struct {
	ID   string
	Type document.LayerType

	// World maps the layer's local space to page space.
	World geom.Matrix2D
	// Bounds is the axis-aligned box of the layer in page space. Group bounds
	// cover their children.
	Bounds geom.Rect

	Parent   *Node
	Children []*Node
}

func newScene(pageID string, page document.Page) *Scene {
	return &Scene{
		PageID:    pageID,
		Page:      page,
		NodesByID: make(map[string]*Node),
	}
}
