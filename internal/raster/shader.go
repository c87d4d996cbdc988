package raster

import (
	"image"
	"image/color"

	"github.com/gogpu/gg"

	"github.com/inamate/inamate/render-go/internal/geom"
	"github.com/inamate/inamate/render-go/internal/paint"
)

var ggExtend = map[paint.TileMode]gg.ExtendMode{
	paint.TileClamp:  gg.ExtendPad,
	paint.TileRepeat: gg.ExtendRepeat,
	paint.TileMirror: gg.ExtendReflect,
}

func toGGColor(c paint.Color) gg.RGBA {
	return gg.RGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

func premultiplied(c paint.Color) color.RGBA {
	c = c.Clamp()
	return color.RGBA{
		R: uint8(c.R*c.A*255 + 0.5),
		G: uint8(c.G*c.A*255 + 0.5),
		B: uint8(c.B*c.A*255 + 0.5),
		A: uint8(c.A*255 + 0.5),
	}
}

// gradientBrush builds a gg brush evaluating s in its unit space.
func gradientBrush(s *paint.Shader) gg.Brush {
	extend := ggExtend[s.Tile]
	switch s.Kind {
	case paint.RadialShader:
		b := gg.NewRadialGradientBrush(s.From.X, s.From.Y, 0, geom.Distance(s.From, s.To))
		for _, stop := range s.Stops {
			b.AddColorStop(stop.Position, toGGColor(stop.Color))
		}
		return b.SetExtend(extend)
	case paint.SweepShader:
		b := gg.NewSweepGradientBrush(s.From.X, s.From.Y, 0)
		for _, stop := range s.Stops {
			b.AddColorStop(stop.Position, toGGColor(stop.Color))
		}
		return b.SetExtend(extend)
	default:
		b := gg.NewLinearGradientBrush(s.From.X, s.From.Y, s.To.X, s.To.Y)
		for _, stop := range s.Stops {
			b.AddColorStop(stop.Position, toGGColor(stop.Color))
		}
		return b.SetExtend(extend)
	}
}

// shaderImage evaluates a gradient at device pixel centers.
type shaderImage struct {
	brush   gg.Brush
	inverse geom.Matrix2D // device -> gradient unit space
	bounds  image.Rectangle
}

func (s *shaderImage) ColorModel() color.Model { return color.RGBAModel }
func (s *shaderImage) Bounds() image.Rectangle { return s.bounds }

func (s *shaderImage) At(x, y int) color.Color {
	u := s.inverse.TransformPoint(geom.Pt(float64(x)+0.5, float64(y)+0.5))
	c := s.brush.ColorAt(u.X, u.Y)
	return premultiplied(paint.Color{R: c.R, G: c.G, B: c.B, A: c.A})
}

// source returns the image a paint composites through a coverage mask.
func source(p paint.Paint, ctm geom.Matrix2D, bounds image.Rectangle) image.Image {
	if p.Shader == nil {
		return image.NewUniform(premultiplied(p.Color))
	}
	if len(p.Shader.Stops) == 0 {
		return image.Transparent
	}
	full := ctm.Multiply(p.Shader.Local)
	if !full.IsInvertible() {
		return image.NewUniform(premultiplied(p.Shader.Stops[0].Color))
	}
	return &shaderImage{
		brush:   gradientBrush(p.Shader),
		inverse: full.Invert(),
		bounds:  bounds,
	}
}
