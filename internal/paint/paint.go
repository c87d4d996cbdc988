package paint

import "github.com/inamate/inamate/render-go/internal/geom"

// Style selects between filling and stroking.
type Style int

const (
	Fill Style = iota
	Stroke
)

// LineCap is the shape at the ends of open strokes.
type LineCap string

const (
	CapButt   LineCap = "butt"
	CapRound  LineCap = "round"
	CapSquare LineCap = "square"
)

// LineJoin is the shape where stroke segments meet.
type LineJoin string

const (
	JoinMiter LineJoin = "miter"
	JoinRound LineJoin = "round"
	JoinBevel LineJoin = "bevel"
)

// ShaderKind identifies a gradient shader.
type ShaderKind int

const (
	LinearShader ShaderKind = iota
	RadialShader
	SweepShader
)

// TileMode controls sampling outside the 0..1 gradient domain.
type TileMode int

const (
	TileClamp TileMode = iota
	TileRepeat
	TileMirror
)

// Shader is a resolved gradient. Geometry is in unit space; Local maps unit
// space into the coordinate space of the shape.
type Shader struct {
	Kind  ShaderKind
	Stops []Stop
	// Linear: From -> To. Radial: center From, radius |To-From|.
	// Sweep: center From, angle 0 along +x.
	From, To geom.Point
	Local    geom.Matrix2D
	Tile     TileMode
}

// Paint is what a canvas needs to draw one shape.
type Paint struct {
	Style  Style
	Color  Color
	Shader *Shader

	StrokeWidth float64
	Cap         LineCap
	Join        LineJoin
}

// IsVisible reports whether drawing with p can change any pixel.
func (p Paint) IsVisible() bool {
	if p.Style == Stroke && !(p.StrokeWidth > 0) {
		return false
	}
	if p.Shader != nil {
		return len(p.Shader.Stops) > 0
	}
	return !p.Color.IsTransparent()
}

// SolidPaint returns a fill paint of color c.
func SolidPaint(c Color) Paint {
	return Paint{Style: Fill, Color: c}
}
