package engine

import (
	"fmt"
	"log/slog"

	"github.com/inamate/inamate/render-go/internal/canvas"
	"github.com/inamate/inamate/render-go/internal/geom"
	"github.com/inamate/inamate/render-go/internal/scene"
)

// FrameError reports a frame abandoned because the canvas failed mid-draw.
type FrameError struct {
	ElementID string
	Kind      string
	Cause     error
}

func (e *FrameError) Error() string {
	if e.ElementID != "" {
		return fmt.Sprintf("frame aborted at %s %q: %v", e.Kind, e.ElementID, e.Cause)
	}
	return fmt.Sprintf("frame aborted at %s: %v", e.Kind, e.Cause)
}

func (e *FrameError) Unwrap() error { return e.Cause }

// Draw paints elements onto c in slice order, depth first. Each group is
// bracketed by a save and a restore to the save count it started from, so the
// canvas leaves Draw at the save count it entered with, even when the frame
// fails. A canvas error or panic abandons the rest of the frame and is returned
// as a *FrameError.
func Draw(elements []scene.Element, c canvas.Canvas) (err error) {
	d := &drawer{c: c}
	entry := c.SaveCount()

	defer func() {
		if r := recover(); r != nil {
			cause, ok := r.(error)
			if !ok {
				cause = fmt.Errorf("panic: %v", r)
			}
			err = d.frameError(cause)
		}
		if err != nil {
			c.RestoreToCount(entry)
			slog.Error("draw frame", "error", err)
		}
	}()

	for _, el := range elements {
		if err := d.element(el); err != nil {
			return d.frameError(err)
		}
	}
	return nil
}

type drawer struct {
	c       canvas.Canvas
	current scene.Element
}

func (d *drawer) frameError(cause error) *FrameError {
	fe := &FrameError{Kind: "frame", Cause: cause}
	if d.current != nil {
		fe.Kind = d.current.Kind()
		fe.ElementID = elementID(d.current)
	}
	return fe
}

func (d *drawer) annotate(el scene.Element) {
	d.current = el
	if a, ok := d.c.(canvas.Annotator); ok {
		a.Annotate(elementID(el))
	}
}

func (d *drawer) element(el scene.Element) error {
	d.annotate(el)

	switch e := el.(type) {
	case *scene.Rect:
		if e.CornerRadius != nil {
			return d.c.DrawRRect(canvas.RRect(e.Rect, *e.CornerRadius), e.Paint)
		}
		return d.c.DrawRect(e.Rect, e.Paint)
	case *scene.Path:
		return d.c.DrawPath(e.Path, e.Paint)
	case *scene.Image:
		sampling := canvas.SamplingLinear
		if e.Resample {
			sampling = canvas.SamplingCubic
		}
		return d.c.DrawImage(e.Image, e.Rect, e.Paint, sampling)
	case *scene.Text:
		return d.c.DrawParagraph(e.Paragraph, geom.Pt(e.Rect.X, e.Rect.Y))
	case *scene.Group:
		return d.group(e)
	case nil:
		return nil
	default:
		panic(fmt.Sprintf("engine: unhandled element %T", el))
	}
}

func (d *drawer) group(g *scene.Group) error {
	saved := d.c.Save()

	if g.Clip != nil {
		switch {
		case g.Clip.Rect != nil:
			d.c.ClipRect(*g.Clip.Rect)
		case g.Clip.Path != nil:
			d.c.ClipPath(g.Clip.Path)
		}
	}
	if g.Transform != nil {
		d.c.Concat(*g.Transform)
	}
	if g.NeedsLayer() {
		d.c.SaveLayer(canvas.LayerPaint{
			Alpha:       g.Opacity,
			ColorFilter: g.ColorFilter,
			ImageFilter: g.ImageFilter,
		}, g.BackdropFilter)
	}

	for _, child := range g.Children {
		if err := d.element(child); err != nil {
			return err
		}
	}

	d.c.RestoreToCount(saved)
	return nil
}

func elementID(el scene.Element) string {
	switch e := el.(type) {
	case *scene.Rect:
		return e.ID
	case *scene.Path:
		return e.ID
	case *scene.Image:
		return e.ID
	case *scene.Text:
		return e.ID
	case *scene.Group:
		return e.ID
	}
	return ""
}
