package path

import (
	"math"

	"github.com/inamate/inamate/render-go/internal/geom"
)

const arcTolerance = 1e-9

// Arc is a circular arc tangent to two lines meeting at a corner.
type Arc struct {
	Start      geom.Point // tangent point on the incoming line
	End        geom.Point // tangent point on the outgoing line
	Center     geom.Point
	Radius     float64
	StartAngle float64 // radians
	Sweep      float64 // radians, signed; |Sweep| < Pi
}

// TangentArc computes the arc of radius r tangent to the line p0->p1 and the
// line p1->p2. It reports false for degenerate input (coincident points,
// collinear points, non-positive or NaN radius), where callers fall back to a
// straight line to p1.
func TangentArc(p0, p1, p2 geom.Point, r float64) (Arc, bool) {
	if !(r > arcTolerance) {
		return Arc{}, false
	}

	d0 := p0.Sub(p1)
	d1 := p2.Sub(p1)
	l0, l1 := d0.Len(), d1.Len()
	if !(l0 > arcTolerance) || !(l1 > arcTolerance) {
		return Arc{}, false
	}
	d0 = d0.Mul(1 / l0)
	d1 = d1.Mul(1 / l1)

	cross := d0.Cross(d1)
	if math.Abs(cross) < 1e-12 {
		// Collinear: either a straight run or a full reversal.
		return Arc{}, false
	}

	// Interior angle at the corner.
	a := math.Acos(math.Max(-1, math.Min(1, d0.Dot(d1))))
	d := r / math.Tan(a/2)
	if d > 10000 || math.IsNaN(d) {
		return Arc{}, false
	}

	start := p1.Add(d0.Mul(d))
	end := p1.Add(d1.Mul(d))
	bisector := d0.Add(d1).Normalize()
	center := p1.Add(bisector.Mul(r / math.Sin(a/2)))

	a0 := math.Atan2(start.Y-center.Y, start.X-center.X)
	a1 := math.Atan2(end.Y-center.Y, end.X-center.X)
	sweep := a1 - a0
	for sweep > math.Pi {
		sweep -= 2 * math.Pi
	}
	for sweep <= -math.Pi {
		sweep += 2 * math.Pi
	}

	return Arc{
		Start:      start,
		End:        end,
		Center:     center,
		Radius:     r,
		StartAngle: a0,
		Sweep:      sweep,
	}, true
}

// Cubics approximates the arc with cubic segments of at most 90 degrees each.
// Each entry holds the two control points and the end point of one segment.
func (a Arc) Cubics() [][3]geom.Point {
	n := int(math.Ceil(math.Abs(a.Sweep) / (math.Pi / 2)))
	if n < 1 {
		n = 1
	}
	step := a.Sweep / float64(n)
	k := 4.0 / 3.0 * math.Tan(step/4)

	out := make([][3]geom.Point, 0, n)
	theta := a.StartAngle
	from := a.Start
	for i := 0; i < n; i++ {
		next := theta + step
		to := a.pointAt(next)
		if i == n-1 {
			to = a.End
		}
		c1 := from.Add(geom.Pt(-math.Sin(theta), math.Cos(theta)).Mul(k * a.Radius))
		c2 := to.Sub(geom.Pt(-math.Sin(next), math.Cos(next)).Mul(k * a.Radius))
		out = append(out, [3]geom.Point{c1, c2, to})
		theta = next
		from = to
	}
	return out
}

func (a Arc) pointAt(theta float64) geom.Point {
	return geom.Pt(a.Center.X+a.Radius*math.Cos(theta), a.Center.Y+a.Radius*math.Sin(theta))
}
