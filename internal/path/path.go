// Package path records vector outlines as a list of drawing operations that any
// canvas backend can replay.
package path

import (
	"encoding/json"
	"fmt"

	"github.com/inamate/inamate/render-go/internal/geom"
)

// Op represents a path drawing operation type.
type Op int

const (
	OpMoveTo  Op = iota // Start new subpath at point (x, y)
	OpLineTo            // Line to point (x, y)
	OpCubicTo           // Cubic curve to (x3, y3) via controls (x1, y1), (x2, y2)
	OpArcTo             // Tangent arc at corner (x1, y1) toward (x2, y2) with radius r
	OpClose             // Close subpath with line to start point
)

// String returns a human-readable representation of the path operation.
func (o Op) String() string {
	switch o {
	case OpMoveTo:
		return "move_to"
	case OpLineTo:
		return "line_to"
	case OpCubicTo:
		return "cubic_to"
	case OpArcTo:
		return "arc_to"
	case OpClose:
		return "close"
	default:
		return fmt.Sprintf("Op(%d)", int(o))
	}
}

// Command is a single path operation with its coordinate arguments.
type Command struct {
	Op   Op        // The operation type
	Args []float64 // MoveTo/LineTo=[x,y], CubicTo=[x1,y1,x2,y2,x3,y3], ArcTo=[x1,y1,x2,y2,r]
}

// Path is a vector outline built with MoveTo, LineTo, CubicTo, ArcTo and Close.
// The zero value is an empty path ready to use.
type Path struct {
	Commands []Command

	start  geom.Point
	cur    geom.Point
	closes int
}

// New creates an empty path.
func New() *Path {
	return &Path{}
}

// MoveTo starts a new subpath at the given point.
func (p *Path) MoveTo(x, y float64) {
	p.Commands = append(p.Commands, Command{Op: OpMoveTo, Args: []float64{x, y}})
	p.start = geom.Pt(x, y)
	p.cur = p.start
}

// LineTo adds a line segment from the current point to (x, y).
func (p *Path) LineTo(x, y float64) {
	p.ensureStarted(x, y)
	p.Commands = append(p.Commands, Command{Op: OpLineTo, Args: []float64{x, y}})
	p.cur = geom.Pt(x, y)
}

// CubicTo adds a cubic bezier curve from the current point to (x3, y3)
// with control points (x1, y1) and (x2, y2).
func (p *Path) CubicTo(x1, y1, x2, y2, x3, y3 float64) {
	p.ensureStarted(x1, y1)
	p.Commands = append(p.Commands, Command{Op: OpCubicTo, Args: []float64{x1, y1, x2, y2, x3, y3}})
	p.cur = geom.Pt(x3, y3)
}

// ArcTo adds an arc of the given radius tangent to the line from the current
// point to (x1, y1) and to the line from (x1, y1) to (x2, y2), preceded by a
// straight line to the first tangent point. Degenerate corners (coincident or
// collinear points, tiny radius) become a line to (x1, y1), like the HTML
// canvas arcTo.
func (p *Path) ArcTo(x1, y1, x2, y2, r float64) {
	p.ensureStarted(x1, y1)
	p.Commands = append(p.Commands, Command{Op: OpArcTo, Args: []float64{x1, y1, x2, y2, r}})
	if arc, ok := TangentArc(p.cur, geom.Pt(x1, y1), geom.Pt(x2, y2), r); ok {
		p.cur = arc.End
	} else {
		p.cur = geom.Pt(x1, y1)
	}
}

// Close closes the current subpath by drawing a line to the starting point.
func (p *Path) Close() {
	if len(p.Commands) == 0 {
		return
	}
	p.Commands = append(p.Commands, Command{Op: OpClose})
	p.cur = p.start
	p.closes++
}

func (p *Path) ensureStarted(x, y float64) {
	if len(p.Commands) == 0 {
		p.MoveTo(x, y)
	}
}

// IsEmpty returns true if the path has no commands.
func (p *Path) IsEmpty() bool {
	return p == nil || len(p.Commands) == 0
}

// CurrentPoint returns the pen position after the last command.
func (p *Path) CurrentPoint() geom.Point {
	return p.cur
}

// StartPoint returns the start of the current subpath.
func (p *Path) StartPoint() geom.Point {
	return p.start
}

// CloseCount returns how many times Close was called.
func (p *Path) CloseCount() int {
	return p.closes
}

// Clear removes all commands from the path.
func (p *Path) Clear() {
	p.Commands = p.Commands[:0]
	p.start, p.cur = geom.Point{}, geom.Point{}
	p.closes = 0
}

// Sink receives a path with arcs already expanded into cubic segments.
type Sink interface {
	MoveTo(p geom.Point)
	LineTo(p geom.Point)
	CubicTo(c1, c2, p geom.Point)
	Close()
}

// Replay feeds the path into sink. ArcTo commands are emitted as an optional
// line to the first tangent point followed by cubic segments, so sinks only
// need to understand lines and cubics.
func (p *Path) Replay(sink Sink) {
	if p == nil {
		return
	}
	var start, cur geom.Point
	for _, cmd := range p.Commands {
		a := cmd.Args
		switch cmd.Op {
		case OpMoveTo:
			start = geom.Pt(a[0], a[1])
			cur = start
			sink.MoveTo(cur)
		case OpLineTo:
			cur = geom.Pt(a[0], a[1])
			sink.LineTo(cur)
		case OpCubicTo:
			cur = geom.Pt(a[4], a[5])
			sink.CubicTo(geom.Pt(a[0], a[1]), geom.Pt(a[2], a[3]), cur)
		case OpArcTo:
			corner := geom.Pt(a[0], a[1])
			arc, ok := TangentArc(cur, corner, geom.Pt(a[2], a[3]), a[4])
			if !ok {
				cur = corner
				sink.LineTo(cur)
				continue
			}
			if !cur.Near(arc.Start, arcTolerance) {
				sink.LineTo(arc.Start)
			}
			for _, c := range arc.Cubics() {
				sink.CubicTo(c[0], c[1], c[2])
			}
			cur = arc.End
		case OpClose:
			cur = start
			sink.Close()
		}
	}
}

// Transform returns a copy of the path mapped through m. Arcs are expanded to
// cubics first since a skewed arc is no longer circular.
func (p *Path) Transform(m geom.Matrix2D) *Path {
	out := New()
	p.Replay(&transformSink{m: m, out: out})
	return out
}

type transformSink struct {
	m   geom.Matrix2D
	out *Path
}

func (s *transformSink) MoveTo(p geom.Point) {
	p = s.m.TransformPoint(p)
	s.out.MoveTo(p.X, p.Y)
}

func (s *transformSink) LineTo(p geom.Point) {
	p = s.m.TransformPoint(p)
	s.out.LineTo(p.X, p.Y)
}

func (s *transformSink) CubicTo(c1, c2, p geom.Point) {
	c1, c2, p = s.m.TransformPoint(c1), s.m.TransformPoint(c2), s.m.TransformPoint(p)
	s.out.CubicTo(c1.X, c1.Y, c2.X, c2.Y, p.X, p.Y)
}

func (s *transformSink) Close() { s.out.Close() }

// Rect returns a closed rectangular path.
func Rect(r geom.Rect) *Path {
	p := New()
	p.MoveTo(r.X, r.Y)
	p.LineTo(r.X+r.Width, r.Y)
	p.LineTo(r.X+r.Width, r.Y+r.Height)
	p.LineTo(r.X, r.Y+r.Height)
	p.Close()
	return p
}

// Ellipse returns a closed ellipse inscribed in r, built from four cubics.
func Ellipse(r geom.Rect) *Path {
	// k = 4 * (sqrt(2) - 1) / 3
	const k = 0.5522847498
	c := r.Center()
	rx, ry := r.Width/2, r.Height/2
	kx, ky := rx*k, ry*k

	p := New()
	p.MoveTo(c.X+rx, c.Y)
	p.CubicTo(c.X+rx, c.Y+ky, c.X+kx, c.Y+ry, c.X, c.Y+ry)
	p.CubicTo(c.X-kx, c.Y+ry, c.X-rx, c.Y+ky, c.X-rx, c.Y)
	p.CubicTo(c.X-rx, c.Y-ky, c.X-kx, c.Y-ry, c.X, c.Y-ry)
	p.CubicTo(c.X+kx, c.Y-ry, c.X+rx, c.Y-ky, c.X+rx, c.Y)
	p.Close()
	return p
}

// MarshalJSON encodes the path in Canvas2D command form:
// ["M", x, y], ["L", x, y], ["C", x1, y1, x2, y2, x, y], ["Z"].
func (p *Path) MarshalJSON() ([]byte, error) {
	sink := &jsonSink{cmds: [][]any{}}
	p.Replay(sink)
	return json.Marshal(sink.cmds)
}

type jsonSink struct {
	cmds [][]any
}

func (s *jsonSink) MoveTo(p geom.Point) { s.cmds = append(s.cmds, []any{"M", p.X, p.Y}) }
func (s *jsonSink) LineTo(p geom.Point) { s.cmds = append(s.cmds, []any{"L", p.X, p.Y}) }
func (s *jsonSink) CubicTo(c1, c2, p geom.Point) {
	s.cmds = append(s.cmds, []any{"C", c1.X, c1.Y, c2.X, c2.Y, p.X, p.Y})
}
func (s *jsonSink) Close() { s.cmds = append(s.cmds, []any{"Z"}) }

// RoundedRect returns a closed rectangle whose corners, clockwise from the
// top-left, are rounded by the given radii. Each radius is clamped to half the
// shorter side.
func RoundedRect(r geom.Rect, radii [4]float64) *Path {
	r = r.Normalize()
	limit := min(r.Width, r.Height) / 2
	for i, v := range radii {
		if !(v > 0) {
			radii[i] = 0
		} else if v > limit {
			radii[i] = limit
		}
	}
	left, top, right, bottom := r.X, r.Y, r.Right(), r.Bottom()

	p := New()
	p.MoveTo(left+radii[0], top)
	p.ArcTo(right, top, right, bottom, radii[1])
	p.ArcTo(right, bottom, left, bottom, radii[2])
	p.ArcTo(left, bottom, left, top, radii[3])
	p.ArcTo(left, top, right, top, radii[0])
	p.Close()
	return p
}
