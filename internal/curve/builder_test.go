package curve

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/inamate/render-go/internal/geom"
	"github.com/inamate/inamate/render-go/internal/path"
)

// traceSink records every segment end point and checks that each subpath ends
// where it started.
type traceSink struct {
	start, cur geom.Point
	points     []geom.Point
	closes     int
	gapAtClose float64
}

func (s *traceSink) MoveTo(p geom.Point) {
	s.start, s.cur = p, p
	s.points = append(s.points, p)
}

func (s *traceSink) LineTo(p geom.Point) {
	s.cur = p
	s.points = append(s.points, p)
}

func (s *traceSink) CubicTo(_, _, p geom.Point) {
	s.cur = p
	s.points = append(s.points, p)
}

func (s *traceSink) Close() {
	s.gapAtClose = math.Max(s.gapAtClose, geom.Distance(s.cur, s.start))
	s.closes++
}

func trace(p *path.Path) *traceSink {
	s := &traceSink{}
	p.Replay(s)
	return s
}

func triangle() []CurvePoint {
	return []CurvePoint{
		StraightPoint(0, 0),
		StraightPoint(1, 0),
		StraightPoint(0.5, 1),
	}
}

func TestEdgeRadius(t *testing.T) {
	assert.Equal(t, 20.0, EdgeRadius(geom.Pt(0, 0), geom.Pt(100, 0), 20))
	assert.Equal(t, 15.0, EdgeRadius(geom.Pt(0, 0), geom.Pt(30, 0), 20))
	assert.Equal(t, 0.0, EdgeRadius(geom.Pt(1, 1), geom.Pt(1, 1), 5))
}

func TestRoundedRectangle(t *testing.T) {
	frame := geom.Rect{Width: 100, Height: 100}
	corners := Analyze(RectanglePoints(), frame, 20)

	require.Len(t, corners, 4)
	for i, c := range corners {
		assert.True(t, c.Rounded, "corner %d", i)
		assert.Equal(t, 20.0, c.Radius, "corner %d", i)
		assert.True(t, c.DrawSegment, "corner %d", i)

		// Straight run left between this corner's exit and the next entry.
		next := corners[(i+1)%len(corners)]
		assert.GreaterOrEqual(t, geom.Distance(c.Exit, next.Entry), 60.0-1e-9)
	}

	p := BuildPath(RectanglePoints(), frame, 20)
	assert.Equal(t, 1, p.CloseCount())

	b := p.Bounds()
	assert.InDelta(t, 0, b.X, 1e-9)
	assert.InDelta(t, 0, b.Y, 1e-9)
	assert.InDelta(t, 100, b.Width, 1e-9)
	assert.InDelta(t, 100, b.Height, 1e-9)

	s := trace(p)
	assert.Equal(t, 1, s.closes)
	assert.Less(t, s.gapAtClose, 1e-9)
	assert.True(t, s.points[0].Near(geom.Pt(20, 0), 1e-9))
}

func TestPerPointRadiusOverridesDefault(t *testing.T) {
	pts := RectanglePoints()
	pts[2].CornerRadius = 5

	corners := Analyze(pts, geom.Rect{Width: 100, Height: 100}, 20)
	assert.Equal(t, 20.0, corners[1].Radius)
	assert.Equal(t, 5.0, corners[2].Radius)
}

func TestSharpRectangle(t *testing.T) {
	p := BuildPath(RectanglePoints(), geom.Rect{X: 10, Y: 10, Width: 50, Height: 30}, 0)

	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `[["M",10,10],["L",60,10],["L",60,40],["L",10,40],["L",10,10],["Z"]]`, string(data))
}

func TestTriangleRadiusClampedToShortestEdge(t *testing.T) {
	side := 30.0
	frame := geom.Rect{Width: side, Height: side * math.Sqrt(3) / 2}
	corners := Analyze(triangle(), frame, 20)

	for i, c := range corners {
		assert.True(t, c.Rounded, "corner %d", i)
		assert.InDelta(t, 15, c.Radius, 1e-9, "corner %d", i)
		assert.False(t, c.DrawSegment, "corner %d", i)
	}

	p := BuildPath(triangle(), frame, 20)
	assert.Equal(t, 1, p.CloseCount())
	assert.Less(t, trace(p).gapAtClose, 1e-6)
}

func TestAcuteCornerArcReachesPastTrim(t *testing.T) {
	side := 30.0
	frame := geom.Rect{Width: side, Height: side * math.Sqrt(3) / 2}
	corners := Analyze(triangle(), frame, 20)
	tangent := 15 * math.Sqrt(3)

	c := corners[1]
	assert.InDelta(t, 15, geom.Distance(c.Entry, c.Point), 1e-9)
	arc, ok := path.TangentArc(c.Entry, c.Point, c.Exit, c.Radius)
	require.True(t, ok)
	assert.InDelta(t, tangent, geom.Distance(arc.Start, c.Point), 1e-9)

	// The first arc leaves the top edge at x=25.98; the next one joins it at
	// x=4.02, so the outline runs backwards between them.
	start := trace(BuildPath(triangle(), frame, 20)).points[0]
	assert.InDelta(t, tangent, start.X, 1e-9)
	assert.InDelta(t, side-tangent, arc.Start.X, 1e-9)
	assert.InDelta(t, 0, arc.Start.Y, 1e-9)
}

func TestCurvedEdgesAreNotRounded(t *testing.T) {
	frame := geom.Rect{Width: 80, Height: 40}
	corners := Analyze(OvalPoints(), frame, 10)
	for _, c := range corners {
		assert.False(t, c.Rounded)
		assert.True(t, c.CurvedOut)
		assert.True(t, c.DrawSegment)
	}

	p := BuildPath(OvalPoints(), frame, 10)
	b := p.Bounds()
	assert.InDelta(t, 80, b.Width, 1e-6)
	assert.InDelta(t, 40, b.Height, 1e-6)

	var cubics int
	for _, cmd := range p.Commands {
		if cmd.Op == path.OpCubicTo {
			cubics++
		}
	}
	assert.Equal(t, 4, cubics)
}

func TestDegenerateInput(t *testing.T) {
	frame := geom.Rect{Width: 10, Height: 10}

	empty := BuildPath(nil, frame, 5)
	assert.True(t, empty.IsEmpty())
	assert.Equal(t, 0, empty.CloseCount())

	single := BuildPath([]CurvePoint{StraightPoint(0.5, 0.5)}, frame, 5)
	assert.Equal(t, 1, single.CloseCount())
	assert.Equal(t, geom.Pt(5, 5), single.StartPoint())

	two := Analyze([]CurvePoint{StraightPoint(0, 0), StraightPoint(1, 1)}, frame, 5)
	for _, c := range two {
		assert.False(t, c.Rounded)
	}
}

func TestPointModeJSON(t *testing.T) {
	data, err := json.Marshal(Mirrored)
	require.NoError(t, err)
	assert.Equal(t, `"mirrored"`, string(data))

	var m PointMode
	require.NoError(t, json.Unmarshal([]byte(`"disconnected"`), &m))
	assert.Equal(t, Disconnected, m)
	require.NoError(t, json.Unmarshal([]byte(`2`), &m))
	assert.Equal(t, Asymmetric, m)

	assert.Error(t, json.Unmarshal([]byte(`"wobbly"`), &m))
	assert.Error(t, json.Unmarshal([]byte(`9`), &m))
}
