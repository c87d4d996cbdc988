// Package scene defines the closed set of drawable elements a producer builds
// for each frame. Elements are immutable once built.
package scene

import (
	"image"

	"github.com/inamate/inamate/render-go/internal/geom"
	"github.com/inamate/inamate/render-go/internal/paint"
	"github.com/inamate/inamate/render-go/internal/path"
)

// Element is one of *Rect, *Path, *Image, *Text or *Group.
type Element interface {
	element()
	// Kind returns the element kind name, used in logs and recordings.
	Kind() string
}

// Rect is a filled or stroked rectangle, optionally rounded.
type Rect struct {
	ID           string
	Rect         geom.Rect
	Paint        paint.Paint
	CornerRadius *float64
}

// Path is an outline already in parent-local coordinates.
type Path struct {
	ID    string
	Path  *path.Path
	Paint paint.Paint
}

// Image draws a decoded image into Rect. Resample selects cubic filtering.
type Image struct {
	ID       string
	Rect     geom.Rect
	Image    ImageHandle
	Paint    paint.Paint
	Resample bool
}

// Text draws a pre-shaped paragraph at the origin of Rect.
type Text struct {
	ID        string
	Rect      geom.Rect
	Paragraph Paragraph
}

// Clip restricts drawing. Exactly one of Rect or Path is used; Rect wins if
// both are set.
type Clip struct {
	Rect *geom.Rect
	Path *path.Path
}

// Group scopes a transform, a clip and optional compositing for its children.
// Children paint in slice order.
type Group struct {
	ID             string
	Transform      *geom.Matrix2D
	Opacity        float64
	Clip           *Clip
	ColorFilter    *paint.ColorFilter
	ImageFilter    *paint.ImageFilter
	BackdropFilter *paint.ImageFilter
	Children       []Element
}

func (*Rect) element()  {}
func (*Path) element()  {}
func (*Image) element() {}
func (*Text) element()  {}
func (*Group) element() {}

func (*Rect) Kind() string  { return "rect" }
func (*Path) Kind() string  { return "path" }
func (*Image) Kind() string { return "image" }
func (*Text) Kind() string  { return "text" }
func (*Group) Kind() string { return "group" }

// NewGroup returns a fully opaque group with no transform or clip.
func NewGroup(children ...Element) *Group {
	return &Group{Opacity: 1, Children: children}
}

// NeedsLayer reports whether the group must be flattened into an offscreen
// layer before compositing.
func (g *Group) NeedsLayer() bool {
	return g.Opacity < 1 || g.ColorFilter != nil || g.ImageFilter != nil || g.BackdropFilter != nil
}

// ImageHandle is a decoded image ready to draw.
type ImageHandle interface {
	ID() string
	Image() image.Image
	Size() (width, height int)
}

// Paragraph is text that has already been shaped into positioned runs.
type Paragraph interface {
	Runs() []TextRun
	Bounds() geom.Rect
}

// TextRun is a single styled run of a shaped paragraph. Origin is the
// baseline start relative to the paragraph origin.
type TextRun struct {
	Text   string      `json:"text"`
	Origin geom.Point  `json:"origin"`
	Size   float64     `json:"size"`
	Color  paint.Color `json:"color"`
}
