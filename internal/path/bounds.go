package path

import (
	"math"

	"github.com/inamate/inamate/render-go/internal/geom"
)

// Bounds returns the tight axis-aligned bounding box of the path, including
// cubic extrema. An empty path has zero bounds.
func (p *Path) Bounds() geom.Rect {
	b := &boundsSink{}
	p.Replay(b)
	if !b.any {
		return geom.Rect{}
	}
	return geom.RectFromLTRB(b.minX, b.minY, b.maxX, b.maxY)
}

type boundsSink struct {
	any                    bool
	minX, minY, maxX, maxY float64
	cur                    geom.Point
	start                  geom.Point
}

func (b *boundsSink) add(p geom.Point) {
	if !b.any {
		b.minX, b.maxX = p.X, p.X
		b.minY, b.maxY = p.Y, p.Y
		b.any = true
		return
	}
	b.minX = math.Min(b.minX, p.X)
	b.maxX = math.Max(b.maxX, p.X)
	b.minY = math.Min(b.minY, p.Y)
	b.maxY = math.Max(b.maxY, p.Y)
}

func (b *boundsSink) MoveTo(p geom.Point) {
	b.add(p)
	b.cur, b.start = p, p
}

func (b *boundsSink) LineTo(p geom.Point) {
	b.add(p)
	b.cur = p
}

func (b *boundsSink) CubicTo(c1, c2, p geom.Point) {
	p0 := b.cur
	b.add(p)
	for _, t := range cubicExtrema(p0.X, c1.X, c2.X, p.X) {
		b.add(cubicAt(p0, c1, c2, p, t))
	}
	for _, t := range cubicExtrema(p0.Y, c1.Y, c2.Y, p.Y) {
		b.add(cubicAt(p0, c1, c2, p, t))
	}
	b.cur = p
}

func (b *boundsSink) Close() { b.cur = b.start }

func cubicAt(p0, p1, p2, p3 geom.Point, t float64) geom.Point {
	mt := 1 - t
	a := mt * mt * mt
	bb := 3 * mt * mt * t
	c := 3 * mt * t * t
	d := t * t * t
	return geom.Pt(
		a*p0.X+bb*p1.X+c*p2.X+d*p3.X,
		a*p0.Y+bb*p1.Y+c*p2.Y+d*p3.Y,
	)
}

// cubicExtrema returns the parameters in (0, 1) where the derivative of a
// one-dimensional cubic bezier is zero.
func cubicExtrema(p0, p1, p2, p3 float64) []float64 {
	// B'(t)/3 = a t^2 + b t + c
	a := -p0 + 3*p1 - 3*p2 + p3
	b := 2 * (p0 - 2*p1 + p2)
	c := p1 - p0

	var roots []float64
	keep := func(t float64) {
		if t > 0 && t < 1 {
			roots = append(roots, t)
		}
	}

	const eps = 1e-12
	if math.Abs(a) < eps {
		if math.Abs(b) > eps {
			keep(-c / b)
		}
		return roots
	}

	disc := b*b - 4*a*c
	if disc < 0 {
		return roots
	}
	sq := math.Sqrt(disc)
	keep((-b + sq) / (2 * a))
	keep((-b - sq) / (2 * a))
	return roots
}
