package path

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/inamate/render-go/internal/geom"
)

func assertRect(t *testing.T, want, got geom.Rect) {
	t.Helper()
	const eps = 1e-6
	assert.InDelta(t, want.X, got.X, eps, "x")
	assert.InDelta(t, want.Y, got.Y, eps, "y")
	assert.InDelta(t, want.Width, got.Width, eps, "width")
	assert.InDelta(t, want.Height, got.Height, eps, "height")
}

func TestTangentArcRightAngle(t *testing.T) {
	arc, ok := TangentArc(geom.Pt(0, 0), geom.Pt(10, 0), geom.Pt(10, 10), 2)
	require.True(t, ok)

	assert.True(t, arc.Start.Near(geom.Pt(8, 0), 1e-9))
	assert.True(t, arc.End.Near(geom.Pt(10, 2), 1e-9))
	assert.True(t, arc.Center.Near(geom.Pt(8, 2), 1e-9))
	assert.InDelta(t, math.Pi/2, arc.Sweep, 1e-9)

	cubics := arc.Cubics()
	require.Len(t, cubics, 1)
	assert.Equal(t, arc.End, cubics[0][2])
}

func TestTangentArcDegenerate(t *testing.T) {
	tests := []struct {
		name       string
		p0, p1, p2 geom.Point
		r          float64
	}{
		{"zero radius", geom.Pt(0, 0), geom.Pt(10, 0), geom.Pt(10, 10), 0},
		{"nan radius", geom.Pt(0, 0), geom.Pt(10, 0), geom.Pt(10, 10), math.NaN()},
		{"coincident", geom.Pt(10, 0), geom.Pt(10, 0), geom.Pt(10, 10), 2},
		{"collinear", geom.Pt(0, 0), geom.Pt(10, 0), geom.Pt(20, 0), 2},
		{"reversal", geom.Pt(0, 0), geom.Pt(10, 0), geom.Pt(5, 0), 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := TangentArc(tt.p0, tt.p1, tt.p2, tt.r)
			assert.False(t, ok)
		})
	}
}

func TestArcToFallsBackToLine(t *testing.T) {
	p := New()
	p.MoveTo(0, 0)
	p.ArcTo(10, 0, 20, 0, 5)
	assert.Equal(t, geom.Pt(10, 0), p.CurrentPoint())

	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `[["M",0,0],["L",10,0]]`, string(data))
}

func TestCloseCount(t *testing.T) {
	p := New()
	p.Close()
	assert.True(t, p.IsEmpty())
	assert.Equal(t, 0, p.CloseCount())

	p.MoveTo(1, 1)
	p.LineTo(5, 1)
	p.LineTo(5, 5)
	p.Close()
	assert.Equal(t, 1, p.CloseCount())
	assert.Equal(t, geom.Pt(1, 1), p.CurrentPoint())

	p.Clear()
	assert.True(t, p.IsEmpty())
	assert.Equal(t, 0, p.CloseCount())
}

func TestLineToStartsPath(t *testing.T) {
	p := New()
	p.LineTo(3, 4)
	require.Len(t, p.Commands, 2)
	assert.Equal(t, OpMoveTo, p.Commands[0].Op)
	assert.Equal(t, geom.Pt(3, 4), p.StartPoint())
}

func TestRectJSON(t *testing.T) {
	data, err := json.Marshal(Rect(geom.Rect{X: 1, Y: 2, Width: 10, Height: 5}))
	require.NoError(t, err)
	assert.JSONEq(t, `[["M",1,2],["L",11,2],["L",11,7],["L",1,7],["Z"]]`, string(data))
}

func TestBounds(t *testing.T) {
	assert.Equal(t, geom.Rect{}, New().Bounds())

	frame := geom.Rect{X: 10, Y: 20, Width: 100, Height: 50}
	assertRect(t, frame, Rect(frame).Bounds())
	assertRect(t, frame, Ellipse(frame).Bounds())
	assertRect(t, frame, RoundedRect(frame, [4]float64{10, 10, 10, 10}).Bounds())

	// A cubic bulging past its end points.
	p := New()
	p.MoveTo(0, 0)
	p.CubicTo(0, 40, 10, 40, 10, 0)
	b := p.Bounds()
	assert.InDelta(t, 30, b.Height, 1e-9)
}

func TestRoundedRectClampsRadii(t *testing.T) {
	r := geom.Rect{Width: 40, Height: 20}
	p := RoundedRect(r, [4]float64{100, 0, -5, 5})

	assert.Equal(t, 1, p.CloseCount())
	assertRect(t, r, p.Bounds())

	// Top-left radius clamps to half the shorter side.
	assert.Equal(t, []float64{10, 0}, p.Commands[0].Args)
	assert.Equal(t, 10.0, p.Commands[4].Args[4])
}

func TestTransform(t *testing.T) {
	p := RoundedRect(geom.Rect{Width: 10, Height: 10}, [4]float64{2, 2, 2, 2})
	moved := p.Transform(geom.Translate(5, 5))

	assertRect(t, geom.Rect{X: 5, Y: 5, Width: 10, Height: 10}, moved.Bounds())
	assert.Equal(t, 1, moved.CloseCount())
	for _, cmd := range moved.Commands {
		assert.NotEqual(t, OpArcTo, cmd.Op)
	}
}

func TestOpString(t *testing.T) {
	assert.Equal(t, "cubic_to", OpCubicTo.String())
	assert.Equal(t, "Op(42)", Op(42).String())
}
