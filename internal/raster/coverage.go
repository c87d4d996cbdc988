package raster

import (
	"fmt"
	"image"
	"math"

	"github.com/gogpu/gg"
	"golang.org/x/image/draw"

	"github.com/inamate/inamate/render-go/internal/geom"
	"github.com/inamate/inamate/render-go/internal/paint"
	"github.com/inamate/inamate/render-go/internal/path"
)

// toGG converts a column-major Matrix2D into gg's row-major matrix.
func toGG(m geom.Matrix2D) gg.Matrix {
	return gg.Matrix{
		A: m[0], B: m[2], C: m[4],
		D: m[1], E: m[3], F: m[5],
	}
}

// ggSink replays a path into a gg context.
type ggSink struct {
	dc *gg.Context
}

func (s ggSink) MoveTo(p geom.Point) { s.dc.MoveTo(p.X, p.Y) }
func (s ggSink) LineTo(p geom.Point) { s.dc.LineTo(p.X, p.Y) }
func (s ggSink) CubicTo(c1, c2, p geom.Point) {
	s.dc.CubicTo(c1.X, c1.Y, c2.X, c2.Y, p.X, p.Y)
}
func (s ggSink) Close() { s.dc.ClosePath() }

var (
	ggCaps = map[paint.LineCap]gg.LineCap{
		paint.CapButt:   gg.LineCapButt,
		paint.CapRound:  gg.LineCapRound,
		paint.CapSquare: gg.LineCapSquare,
	}
	ggJoins = map[paint.LineJoin]gg.LineJoin{
		paint.JoinMiter: gg.LineJoinMiter,
		paint.JoinRound: gg.LineJoinRound,
		paint.JoinBevel: gg.LineJoinBevel,
	}
)

// rasterizer turns paths into device-space coverage masks. It draws the path
// in opaque white on a scratch gg context and keeps the alpha channel.
type rasterizer struct {
	dc *gg.Context
}

func newRasterizer(width, height int) *rasterizer {
	return &rasterizer{dc: gg.NewContext(width, height)}
}

// coverage rasterizes p under ctm, filled or stroked according to pt.
func (r *rasterizer) coverage(p *path.Path, ctm geom.Matrix2D, pt paint.Paint) (*image.Alpha, error) {
	dc := r.dc
	dc.Clear()
	dc.ClearPath()
	dc.SetTransform(toGG(ctm))
	p.Replay(ggSink{dc: dc})
	dc.SetRGBA(1, 1, 1, 1)

	var err error
	if pt.Style == paint.Stroke {
		dc.SetLineWidth(pt.StrokeWidth)
		if c, ok := ggCaps[pt.Cap]; ok {
			dc.SetLineCap(c)
		}
		if j, ok := ggJoins[pt.Join]; ok {
			dc.SetLineJoin(j)
		}
		err = dc.Stroke()
	} else {
		err = dc.Fill()
	}
	dc.Identity()
	if err != nil {
		return nil, fmt.Errorf("rasterize path: %w", err)
	}
	return alphaOf(dc.Image()), nil
}

// alphaOf extracts the alpha channel of img.
func alphaOf(img image.Image) *image.Alpha {
	b := img.Bounds()
	out := image.NewAlpha(b)
	if rgba, ok := img.(*image.RGBA); ok {
		for i, j := 3, 0; i < len(rgba.Pix); i, j = i+4, j+1 {
			out.Pix[j] = rgba.Pix[i]
		}
		return out
	}
	draw.Draw(out, b, img, b.Min, draw.Src)
	return out
}

// intersect multiplies mask by clip in place. A nil clip leaves mask as is.
func intersect(mask, clip *image.Alpha) {
	if clip == nil {
		return
	}
	for i := range mask.Pix {
		mask.Pix[i] = uint8(uint16(mask.Pix[i]) * uint16(clip.Pix[i]) / 255)
	}
}

// pixelRectMask covers a device rectangle whose edges lie on pixel
// boundaries. Any other rectangle needs antialiased coverage and is rejected.
func pixelRectMask(r geom.Rect, bounds image.Rectangle) (*image.Alpha, bool) {
	const eps = 1e-6
	edges := [4]float64{r.X, r.Y, r.X + r.Width, r.Y + r.Height}
	var px [4]int
	for i, v := range edges {
		rounded := math.Round(v)
		if !(math.Abs(v-rounded) <= eps) || math.Abs(rounded) > 1<<24 {
			return nil, false
		}
		px[i] = int(rounded)
	}

	mask := image.NewAlpha(bounds)
	covered := image.Rect(px[0], px[1], px[2], px[3]).Intersect(bounds)
	for y := covered.Min.Y; y < covered.Max.Y; y++ {
		row := mask.Pix[mask.PixOffset(covered.Min.X, y):mask.PixOffset(covered.Max.X, y)]
		for i := range row {
			row[i] = 0xff
		}
	}
	return mask, true
}

// scaleAlpha returns a copy of mask with every value multiplied by a.
func scaleAlpha(mask *image.Alpha, a float64) *image.Alpha {
	out := image.NewAlpha(mask.Rect)
	for i, v := range mask.Pix {
		out.Pix[i] = uint8(float64(v)*a + 0.5)
	}
	return out
}

// uniformAlpha returns a full-surface mask of constant value a.
func uniformAlpha(bounds image.Rectangle, a float64) *image.Alpha {
	out := image.NewAlpha(bounds)
	v := uint8(clampUnit(a)*255 + 0.5)
	for i := range out.Pix {
		out.Pix[i] = v
	}
	return out
}

func clampUnit(v float64) float64 {
	if !(v > 0) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
