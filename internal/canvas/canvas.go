// Package canvas defines the drawing surface the reconciler targets and a
// recording implementation that captures draw calls as JSON commands.
package canvas

import (
	"github.com/inamate/inamate/render-go/internal/geom"
	"github.com/inamate/inamate/render-go/internal/paint"
	"github.com/inamate/inamate/render-go/internal/path"
	"github.com/inamate/inamate/render-go/internal/scene"
)

// Sampling selects the image resampling filter.
type Sampling int

const (
	SamplingLinear Sampling = iota
	SamplingCubic
)

func (s Sampling) String() string {
	if s == SamplingCubic {
		return "cubic"
	}
	return "linear"
}

// LayerPaint describes how a layer is composited when it is restored.
type LayerPaint struct {
	Alpha       float64
	ColorFilter *paint.ColorFilter
	ImageFilter *paint.ImageFilter
}

// Canvas is a stateful 2D drawing surface with a save stack. The save count
// starts at 1; Save and SaveLayer return the count before they were called so
// that RestoreToCount with that value undoes them. Implementations are not
// safe for concurrent use.
type Canvas interface {
	Save() int
	SaveLayer(lp LayerPaint, backdrop *paint.ImageFilter) int
	Restore()
	RestoreToCount(count int)
	SaveCount() int

	ClipRect(r geom.Rect)
	ClipPath(p *path.Path)
	Concat(m geom.Matrix2D)

	DrawRect(r geom.Rect, p paint.Paint) error
	// DrawRRect draws a rounded rectangle given as left, top, right, bottom
	// followed by x/y radii for the top-left, top-right, bottom-right and
	// bottom-left corners.
	DrawRRect(rrect [12]float64, p paint.Paint) error
	DrawPath(pth *path.Path, p paint.Paint) error
	DrawImage(img scene.ImageHandle, dst geom.Rect, p paint.Paint, s Sampling) error
	DrawParagraph(para scene.Paragraph, origin geom.Point) error
}

// Annotator is implemented by canvases that correlate draw calls with the
// element that produced them.
type Annotator interface {
	Annotate(elementID string)
}

// RRect expands bounds into a rounded-rect descriptor with every corner
// radius set to radius.
func RRect(r geom.Rect, radius float64) [12]float64 {
	var out [12]float64
	ltrb := r.LTRB()
	copy(out[:4], ltrb[:])
	for i := 4; i < 12; i++ {
		out[i] = radius
	}
	return out
}
