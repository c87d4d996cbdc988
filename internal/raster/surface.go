// Package raster draws canvas calls into RGBA pixels on the CPU. Layers,
// clips and filters are composited with explicit coverage masks, and a frame
// only becomes visible once it is presented.
package raster

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"math"

	"github.com/anthonynsimon/bild/clone"
	"github.com/anthonynsimon/bild/imgio"
	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"github.com/inamate/inamate/render-go/internal/canvas"
	"github.com/inamate/inamate/render-go/internal/geom"
	"github.com/inamate/inamate/render-go/internal/paint"
	"github.com/inamate/inamate/render-go/internal/path"
	"github.com/inamate/inamate/render-go/internal/scene"
)

var ErrClosed = errors.New("raster: surface closed")

type layer struct {
	img  *image.RGBA
	lp   canvas.LayerPaint
	clip *image.Alpha // clip in effect when the layer was opened
}

type state struct {
	ctm   geom.Matrix2D
	clip  *image.Alpha
	layer *layer
}

// Surface is a canvas.Canvas drawing into an offscreen RGBA buffer. Call
// Frame (or BeginFrame, draw, Present) to render; Image returns the last
// presented frame. A Surface is not safe for concurrent use.
type Surface struct {
	bounds image.Rectangle
	base   *image.RGBA
	front  *image.RGBA

	layers []*layer
	stack  []state
	ctm    geom.Matrix2D
	clip   *image.Alpha // nil means unclipped
	err    error

	raster *rasterizer
	fonts  *Fonts
	closed bool
}

var _ canvas.Canvas = (*Surface)(nil)

// NewSurface creates a surface of the given pixel size. A nil fonts uses the
// bundled default font.
func NewSurface(width, height int, fonts *Fonts) (*Surface, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid surface size %dx%d", width, height)
	}
	if fonts == nil {
		var err error
		if fonts, err = DefaultFonts(); err != nil {
			return nil, err
		}
	}
	bounds := image.Rect(0, 0, width, height)
	return &Surface{
		bounds: bounds,
		base:   image.NewRGBA(bounds),
		front:  image.NewRGBA(bounds),
		ctm:    geom.Identity(),
		raster: newRasterizer(width, height),
		fonts:  fonts,
	}, nil
}

// Bounds returns the pixel bounds of the surface.
func (s *Surface) Bounds() image.Rectangle { return s.bounds }

// BeginFrame clears the offscreen buffer and resets all canvas state.
func (s *Surface) BeginFrame() {
	clear(s.base.Pix)
	s.layers = nil
	s.stack = nil
	s.ctm = geom.Identity()
	s.clip = nil
	s.err = nil
}

// Present makes the offscreen buffer the visible frame.
func (s *Surface) Present() {
	copy(s.front.Pix, s.base.Pix)
}

// Frame renders one frame with draw and presents it only if draw succeeded.
// On failure the previously presented frame stays visible.
func (s *Surface) Frame(draw func(canvas.Canvas) error) error {
	if s.closed {
		return ErrClosed
	}
	s.BeginFrame()
	if err := draw(s); err != nil {
		return err
	}
	if s.err != nil {
		return s.err
	}
	s.Present()
	return nil
}

// Image returns the last presented frame. The image is owned by the surface.
func (s *Surface) Image() *image.RGBA { return s.front }

// EncodePNG writes the presented frame as PNG.
func (s *Surface) EncodePNG(w io.Writer) error {
	return imgio.PNGEncoder()(w, s.front)
}

// EncodeJPEG writes the presented frame as JPEG.
func (s *Surface) EncodeJPEG(w io.Writer, quality int) error {
	return imgio.JPEGEncoder(quality)(w, s.front)
}

// Close releases the surface. Later draws fail with ErrClosed.
func (s *Surface) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.raster.dc.Close()
}

func (s *Surface) target() *image.RGBA {
	if n := len(s.layers); n > 0 {
		return s.layers[n-1].img
	}
	return s.base
}

// --- save stack ---

func (s *Surface) SaveCount() int { return len(s.stack) + 1 }

func (s *Surface) Save() int {
	before := s.SaveCount()
	s.stack = append(s.stack, state{ctm: s.ctm, clip: s.clip})
	return before
}

func (s *Surface) SaveLayer(lp canvas.LayerPaint, backdrop *paint.ImageFilter) int {
	l := &layer{img: image.NewRGBA(s.bounds), lp: lp, clip: s.clip}
	if backdrop != nil {
		seed := applyImageFilter(clone.AsRGBA(s.target()), backdrop)
		s.composite(l.img, seed, s.clip, 1)
	}

	before := s.SaveCount()
	s.stack = append(s.stack, state{ctm: s.ctm, clip: s.clip, layer: l})
	s.layers = append(s.layers, l)
	return before
}

func (s *Surface) Restore() {
	n := len(s.stack)
	if n == 0 {
		return
	}
	st := s.stack[n-1]
	s.stack = s.stack[:n-1]
	s.ctm, s.clip = st.ctm, st.clip

	if st.layer != nil {
		s.layers = s.layers[:len(s.layers)-1]
		s.flatten(st.layer)
	}
}

func (s *Surface) RestoreToCount(count int) {
	if count < 1 {
		count = 1
	}
	for s.SaveCount() > count {
		s.Restore()
	}
}

// flatten applies a layer's filters and composites it onto the new target.
func (s *Surface) flatten(l *layer) {
	img := l.img
	if l.lp.ColorFilter != nil {
		img = applyColorMatrix(img, l.lp.ColorFilter.Matrix)
	}
	if l.lp.ImageFilter != nil {
		img = applyImageFilter(img, l.lp.ImageFilter)
	}
	s.composite(s.target(), img, l.clip, l.lp.Alpha)
}

// composite draws src over dst through clip scaled by alpha.
func (s *Surface) composite(dst, src *image.RGBA, clip *image.Alpha, alpha float64) {
	if !(alpha > 0) {
		return
	}
	var mask *image.Alpha
	switch {
	case clip != nil && alpha < 1:
		mask = scaleAlpha(clip, alpha)
	case clip != nil:
		mask = clip
	case alpha < 1:
		mask = uniformAlpha(s.bounds, alpha)
	default:
		draw.Draw(dst, s.bounds, src, s.bounds.Min, draw.Over)
		return
	}
	draw.DrawMask(dst, s.bounds, src, s.bounds.Min, mask, s.bounds.Min, draw.Over)
}

// --- clip and transform ---

func (s *Surface) ClipRect(r geom.Rect) {
	if s.ctm.IsAxisAligned() {
		if mask, ok := pixelRectMask(s.ctm.TransformRect(r), s.bounds); ok {
			intersect(mask, s.clip)
			s.clip = mask
			return
		}
	}
	s.ClipPath(path.Rect(r))
}

func (s *Surface) ClipPath(p *path.Path) {
	cov, err := s.raster.coverage(p, s.ctm, paint.Paint{Style: paint.Fill})
	if err != nil {
		s.fail(fmt.Errorf("clip: %w", err))
		cov = image.NewAlpha(s.bounds)
	}
	intersect(cov, s.clip)
	s.clip = cov
}

func (s *Surface) Concat(m geom.Matrix2D) {
	s.ctm = s.ctm.Multiply(m)
}

func (s *Surface) fail(err error) {
	if s.err == nil {
		s.err = err
	}
}

// --- drawing ---

func (s *Surface) ready() error {
	if s.closed {
		return ErrClosed
	}
	return s.err
}

func (s *Surface) fill(p *path.Path, pt paint.Paint) error {
	if err := s.ready(); err != nil {
		return err
	}
	if p.IsEmpty() || !pt.IsVisible() {
		return nil
	}
	cov, err := s.raster.coverage(p, s.ctm, pt)
	if err != nil {
		return err
	}
	intersect(cov, s.clip)
	src := source(pt, s.ctm, s.bounds)
	draw.DrawMask(s.target(), s.bounds, src, s.bounds.Min, cov, s.bounds.Min, draw.Over)
	return nil
}

func (s *Surface) DrawRect(r geom.Rect, p paint.Paint) error {
	return s.fill(path.Rect(r), p)
}

func (s *Surface) DrawRRect(rr [12]float64, p paint.Paint) error {
	r := geom.RectFromLTRB(rr[0], rr[1], rr[2], rr[3])
	return s.fill(path.RoundedRect(r, [4]float64{rr[4], rr[6], rr[8], rr[10]}), p)
}

func (s *Surface) DrawPath(pth *path.Path, p paint.Paint) error {
	return s.fill(pth, p)
}

func aff3(m geom.Matrix2D) f64.Aff3 {
	return f64.Aff3{m[0], m[2], m[4], m[1], m[3], m[5]}
}

// transformInto draws src into the current target through m, honoring the
// clip and an extra alpha.
func (s *Surface) transformInto(src image.Image, m geom.Matrix2D, q draw.Transformer, alpha float64) {
	opts := &draw.Options{}
	if s.clip != nil {
		opts.DstMask = s.clip
	}
	if alpha < 1 {
		opts.SrcMask = image.NewUniform(color.Alpha{A: uint8(clampUnit(alpha)*255 + 0.5)})
	}
	q.Transform(s.target(), aff3(m), src, src.Bounds(), draw.Over, opts)
}

func (s *Surface) DrawImage(img scene.ImageHandle, dst geom.Rect, p paint.Paint, sampling canvas.Sampling) error {
	if err := s.ready(); err != nil {
		return err
	}
	if img == nil || img.Image() == nil {
		return nil
	}
	w, h := img.Size()
	if w == 0 || h == 0 || dst.IsEmpty() {
		return nil
	}

	m := geom.Multiply(
		s.ctm,
		geom.Translate(dst.X, dst.Y),
		geom.Scale(dst.Width/float64(w), dst.Height/float64(h)),
	)
	var q draw.Transformer = draw.ApproxBiLinear
	if sampling == canvas.SamplingCubic {
		q = draw.CatmullRom
	}
	alpha := 1.0
	if p.Shader == nil {
		alpha = p.Color.A
	}
	s.transformInto(img.Image(), m, q, alpha)
	return nil
}

func (s *Surface) DrawParagraph(para scene.Paragraph, origin geom.Point) error {
	if err := s.ready(); err != nil {
		return err
	}
	if para == nil {
		return nil
	}

	scale := math.Sqrt(math.Abs(s.ctm.Determinant()))
	if !(scale > 1e-6) {
		return nil
	}
	img, topLeft := s.fonts.rasterizeParagraph(para, scale)
	if img == nil {
		return nil
	}

	m := geom.Multiply(
		s.ctm,
		geom.Translate(origin.X+topLeft.X, origin.Y+topLeft.Y),
		geom.Scale(1/scale, 1/scale),
	)
	s.transformInto(img, m, draw.ApproxBiLinear, 1)
	return nil
}
