package curve

import (
	"math"

	"github.com/inamate/inamate/render-go/internal/geom"
	"github.com/inamate/inamate/render-go/internal/path"
)

// Corner describes how one vertex of the outline is emitted.
type Corner struct {
	Point   geom.Point // vertex scaled into the frame
	Rounded bool
	Radius  float64 // effective rounding radius, 0 when not rounded
	Entry   geom.Point
	Exit    geom.Point

	// CurvedOut is set when the edge leaving this vertex is a cubic segment.
	CurvedOut bool
	// DrawSegment is set when a straight run remains on the edge leaving this
	// vertex after both ends have been trimmed by their roundings. Always true
	// for curved edges.
	DrawSegment bool
}

// EdgeRadius clamps a requested radius so that two roundings on an edge from
// a to b can never overlap.
func EdgeRadius(a, b geom.Point, radius float64) float64 {
	d := geom.Distance(a, b)
	if d <= 2*radius {
		return d / 2
	}
	return radius
}

func scaled(p geom.Point, frame geom.Rect) geom.Point {
	return geom.Pt(frame.X+p.X*frame.Width, frame.Y+p.Y*frame.Height)
}

func isCurved(from, to CurvePoint) bool {
	return from.HasCurveFrom || to.HasCurveTo
}

// Analyze computes the per-vertex rounding of points scaled into frame.
// cornerRadius applies to every vertex whose own CornerRadius is zero.
func Analyze(points []CurvePoint, frame geom.Rect, cornerRadius float64) []Corner {
	n := len(points)
	corners := make([]Corner, n)
	for i, p := range points {
		corners[i].Point = scaled(p.Position, frame)
	}
	if n == 0 {
		return corners
	}

	for i := range points {
		prev := (i - 1 + n) % n
		next := (i + 1) % n
		corners[i].CurvedOut = isCurved(points[i], points[next])

		requested := points[i].CornerRadius
		if !(requested > 0) {
			requested = cornerRadius
		}
		if n < 3 || !(requested > 0) || corners[i].CurvedOut || isCurved(points[prev], points[i]) {
			corners[i].Entry = corners[i].Point
			corners[i].Exit = corners[i].Point
			continue
		}

		p, a, b := corners[prev].Point, corners[i].Point, corners[next].Point
		r := math.Min(EdgeRadius(p, a, requested), EdgeRadius(a, b, requested))
		if !(r > 0) {
			corners[i].Entry = a
			corners[i].Exit = a
			continue
		}

		corners[i].Rounded = true
		corners[i].Radius = r
		corners[i].Entry = a.Add(p.Sub(a).Normalize().Mul(r))
		corners[i].Exit = a.Add(b.Sub(a).Normalize().Mul(r))
	}

	for i := range corners {
		next := (i + 1) % n
		if corners[i].CurvedOut {
			corners[i].DrawSegment = true
			continue
		}
		length := geom.Distance(corners[i].Point, corners[next].Point)
		trimmed := corners[i].Radius + corners[next].Radius
		corners[i].DrawSegment = length-trimmed > 1e-9
	}

	return corners
}

// BuildPath converts a closed list of curve points into an outline inside
// frame. Straight corners are rounded by cornerRadius (or the point's own
// radius when set) using tangent arcs; edges with an active handle on either
// end become cubic segments and are never rounded. The result is always
// closed exactly once unless points is empty.
func BuildPath(points []CurvePoint, frame geom.Rect, cornerRadius float64) *path.Path {
	out := path.New()
	n := len(points)
	if n == 0 {
		return out
	}

	corners := Analyze(points, frame, cornerRadius)

	start := corners[0].Point
	if corners[0].Rounded {
		if arc, ok := path.TangentArc(corners[0].Entry, corners[0].Point, corners[0].Exit, corners[0].Radius); ok {
			start = arc.End
		}
	}
	out.MoveTo(start.X, start.Y)

	for i := 0; i < n && n > 1; i++ {
		next := (i + 1) % n
		cur, nxt := corners[i], corners[next]

		if cur.CurvedOut {
			c1 := cur.Point
			if points[i].HasCurveFrom {
				c1 = scaled(points[i].CurveFrom, frame)
			}
			c2 := nxt.Point
			if points[next].HasCurveTo {
				c2 = scaled(points[next].CurveTo, frame)
			}
			out.CubicTo(c1.X, c1.Y, c2.X, c2.Y, nxt.Point.X, nxt.Point.Y)
			continue
		}

		if !nxt.Rounded {
			out.LineTo(nxt.Point.X, nxt.Point.Y)
			continue
		}

		if cur.DrawSegment {
			entry := nxt.Entry
			if arc, ok := path.TangentArc(nxt.Entry, nxt.Point, nxt.Exit, nxt.Radius); ok {
				entry = arc.Start
			}
			out.LineTo(entry.X, entry.Y)
		}
		// ArcTo touches the edges r/tan(angle/2) from the vertex, past the
		// trim at corners sharper than 90 degrees. The outline then doubles
		// back along the edge, which shows as a spur when stroked.
		out.ArcTo(nxt.Point.X, nxt.Point.Y, nxt.Exit.X, nxt.Exit.Y, nxt.Radius)
	}

	out.Close()
	return out
}
