package geom

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

const eps = 1e-9

func assertPoint(t *testing.T, want, got Point) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, eps, "x")
	assert.InDelta(t, want.Y, got.Y, eps, "y")
}

func TestMultiplyAppliesRightFirst(t *testing.T) {
	m := Translate(10, 0).Multiply(Scale(2, 2))
	assertPoint(t, Pt(12, 2), m.TransformPoint(Pt(1, 1)))

	n := Multiply(Translate(10, 0), Scale(2, 2), Translate(1, 0))
	assertPoint(t, Pt(14, 2), n.TransformPoint(Pt(1, 1)))

	assert.Equal(t, Identity(), Multiply())
}

func TestRotateAbout(t *testing.T) {
	m := RotateAbout(math.Pi/2, 1, 1)
	assertPoint(t, Pt(1, 1), m.TransformPoint(Pt(1, 1)))
	assertPoint(t, Pt(1, 2), m.TransformPoint(Pt(2, 1)))
}

func TestInvert(t *testing.T) {
	m := Multiply(Translate(5, -3), RotateDegrees(30), Scale(2, 0.5))
	p := Pt(7, 11)
	assertPoint(t, p, m.Invert().TransformPoint(m.TransformPoint(p)))
	assert.True(t, m.Multiply(m.Invert()).IsIdentity())

	singular := Scale(0, 1)
	assert.False(t, singular.IsInvertible())
	assert.Equal(t, Identity(), singular.Invert())
}

func TestFromTransformPivotsOnAnchor(t *testing.T) {
	m := FromTransform(10, 20, 2, 3, 90, 5, 6)

	anchor := m.TransformPoint(Pt(5, 6))
	assert.InDelta(t, 15, anchor.X, eps)
	assert.InDelta(t, 26, anchor.Y, eps)

	// One unit right of the anchor scales by 2, then turns to point down.
	right := m.TransformPoint(Pt(6, 6))
	assert.InDelta(t, 15, right.X, eps)
	assert.InDelta(t, 28, right.Y, eps)

	flipped := FromTransform(0, 0, -1, 1, 0, 10, 0).TransformPoint(Pt(0, 0))
	assert.InDelta(t, 20, flipped.X, eps)
}

func TestTransformRect(t *testing.T) {
	r := Rect{Width: 10, Height: 10}
	got := RotateDegrees(45).TransformRect(r)
	d := 10 * math.Sqrt2
	assert.InDelta(t, -d/2, got.X, eps)
	assert.InDelta(t, d, got.Width, eps)
	assert.InDelta(t, d, got.Height, eps)
}

func TestIsAxisAligned(t *testing.T) {
	assert.True(t, Scale(2, 3).IsAxisAligned())
	assert.True(t, RotateDegrees(90).IsAxisAligned())
	assert.False(t, RotateDegrees(30).IsAxisAligned())
}

func TestRect(t *testing.T) {
	r := Rect{X: 10, Y: 10, Width: 20, Height: 10}

	assert.True(t, r.Contains(Pt(10, 10)))
	assert.True(t, r.Contains(Pt(30, 20)))
	assert.False(t, r.Contains(Pt(31, 15)))

	assert.Equal(t, [4]float64{10, 10, 30, 20}, r.LTRB())
	assert.Equal(t, r, RectFromLTRB(10, 10, 30, 20))
	assert.Equal(t, Pt(20, 15), r.Center())
	assert.Equal(t, Rect{X: 12, Y: 12, Width: 16, Height: 6}, r.Inset(2))

	assert.Equal(t, Rect{X: 0, Y: 5, Width: 10, Height: 5}, Rect{X: 10, Y: 10, Width: -10, Height: -5}.Normalize())
}

func TestUnion(t *testing.T) {
	a := Rect{X: 0, Y: 0, Width: 10, Height: 10}
	b := Rect{X: 5, Y: -5, Width: 10, Height: 10}

	assert.Equal(t, Rect{X: 0, Y: -5, Width: 15, Height: 15}, a.Union(b))
	assert.Equal(t, a, Rect{}.Union(a))
	assert.Equal(t, a, a.Union(Rect{}))
}

func TestBoundsOf(t *testing.T) {
	assert.Equal(t, Rect{}, BoundsOf())
	assert.Equal(t, Rect{X: -1, Y: 0, Width: 4, Height: 5}, BoundsOf(Pt(3, 0), Pt(-1, 5), Pt(0, 2)))
}

func TestPointMath(t *testing.T) {
	p, q := Pt(3, 4), Pt(1, 1)
	assert.Equal(t, 5.0, p.Len())
	assert.Equal(t, 5.0, Distance(Pt(0, 0), p))
	assert.Equal(t, Pt(4, 5), p.Add(q))
	assert.Equal(t, Pt(2, 3), p.Sub(q))
	assert.Equal(t, 7.0, p.Dot(q))
	assert.Equal(t, -1.0, p.Cross(q))
	assert.Equal(t, Pt(2, 2.5), p.Lerp(q, 0.5))
	assertPoint(t, Pt(0.6, 0.8), p.Normalize())
	assert.Equal(t, Point{}, Point{}.Normalize())
}

func TestResizeRect(t *testing.T) {
	r := Rect{X: 10, Y: 10, Width: 100, Height: 50}

	tests := []struct {
		dir  Direction
		want Rect
	}{
		{East, Rect{X: 10, Y: 10, Width: 105, Height: 50}},
		{West, Rect{X: 15, Y: 10, Width: 95, Height: 50}},
		{South, Rect{X: 10, Y: 10, Width: 100, Height: 57}},
		{North, Rect{X: 10, Y: 17, Width: 100, Height: 43}},
		{SouthEast, Rect{X: 10, Y: 10, Width: 105, Height: 57}},
		{NorthWest, Rect{X: 15, Y: 17, Width: 95, Height: 43}},
	}
	for _, tt := range tests {
		t.Run(string(tt.dir), func(t *testing.T) {
			assert.Equal(t, tt.want, ResizeRect(r, tt.dir, 5, 7))
		})
	}

	_, err := ParseDirection("up")
	assert.Error(t, err)
	d, err := ParseDirection("sw")
	assert.NoError(t, err)
	assert.Equal(t, SouthWest, d)
}
