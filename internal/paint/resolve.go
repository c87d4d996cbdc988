package paint

import (
	"math"
	"sort"

	"github.com/inamate/inamate/render-go/internal/geom"
)

// Resolve turns a style descriptor into a fill paint. local maps the gradient's
// unit space (0..1 across the shape frame) into shape coordinates. Missing
// colors and empty gradients resolve to a transparent paint.
func Resolve(d Descriptor, local geom.Matrix2D) Paint {
	if d.Gradient != nil {
		return resolveGradient(*d.Gradient, local)
	}
	if d.Color != nil {
		return SolidPaint(*d.Color)
	}
	return SolidPaint(Transparent)
}

func resolveGradient(g Gradient, local geom.Matrix2D) Paint {
	stops := SortStops(g.Stops)
	if len(stops) == 0 {
		return SolidPaint(Transparent)
	}

	shader := &Shader{
		Stops: stops,
		From:  g.From,
		To:    g.To,
		Local: local,
		Tile:  TileClamp,
	}

	switch g.Type {
	case Radial:
		shader.Kind = RadialShader
	case Angular:
		normalized, rotation := NormalizeAngularStops(stops)
		shader.Kind = SweepShader
		shader.Stops = normalized
		shader.From = geom.Pt(0.5, 0.5)
		shader.To = geom.Pt(1, 0.5)
		if rotation != 0 {
			shader.Local = local.Multiply(geom.RotateAbout(rotation, 0.5, 0.5))
		}
	default:
		shader.Kind = LinearShader
	}

	return Paint{Style: Fill, Color: stops[0].Color, Shader: shader}
}

// SortStops returns a copy of stops ordered by position. Stops at equal
// positions keep their original order.
func SortStops(stops []Stop) []Stop {
	out := make([]Stop, len(stops))
	copy(out, stops)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Position < out[j].Position
	})
	return out
}

// NormalizeAngularStops maps sorted angular stops onto the closed 0..1 domain
// supported by a clamped sweep shader. It returns the new stops and the extra
// rotation, in radians about the unit center, that the shader must apply.
//
// When neither end is pinned the ramp is rotated so it starts at 0 and the
// first color is repeated at 1. A missing start repeats the last color at 0,
// a missing end repeats the first color at 1.
func NormalizeAngularStops(stops []Stop) ([]Stop, float64) {
	if len(stops) == 0 {
		return nil, 0
	}

	first := stops[0]
	last := stops[len(stops)-1]
	hasStart := first.Position == 0
	hasEnd := last.Position == 1

	out := make([]Stop, 0, len(stops)+1)
	switch {
	case !hasStart && !hasEnd:
		offset := first.Position
		for _, s := range stops {
			out = append(out, Stop{Color: s.Color, Position: s.Position - offset})
		}
		out = append(out, Stop{Color: first.Color, Position: 1})
		return out, offset * 2 * math.Pi
	case !hasStart:
		out = append(out, Stop{Color: last.Color, Position: 0})
		out = append(out, stops...)
	case !hasEnd:
		out = append(out, stops...)
		out = append(out, Stop{Color: first.Color, Position: 1})
	default:
		out = append(out, stops...)
	}
	return out, 0
}

// StrokePaint is a resolved border.
type StrokePaint struct {
	Paint
	Position StrokePosition
}

// ResolveStroke resolves a border to a stroke paint. Inside and outside
// positions are carried as flags; offsetting the outline is left to the caller.
func ResolveStroke(b Border, local geom.Matrix2D) StrokePaint {
	p := Resolve(b.Descriptor, local)
	p.Style = Stroke
	p.StrokeWidth = math.Max(0, b.Thickness)
	p.Cap = b.Cap
	if p.Cap == "" {
		p.Cap = CapButt
	}
	p.Join = b.Join
	if p.Join == "" {
		p.Join = JoinMiter
	}
	return StrokePaint{Paint: p, Position: b.Position}
}
