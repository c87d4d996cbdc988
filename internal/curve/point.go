// Package curve turns the editable curve points of a shape layer into a closed
// outline, rounding straight corners and emitting cubic segments for curved
// edges.
package curve

import (
	"encoding/json"
	"fmt"

	"github.com/inamate/inamate/render-go/internal/geom"
)

// PointMode describes how the two tangent handles of a point relate. Only the
// difference between Straight and the curved modes matters for building paths.
type PointMode int

const (
	Straight PointMode = iota
	Mirrored
	Asymmetric
	Disconnected
)

var pointModeNames = [...]string{
	Straight:     "straight",
	Mirrored:     "mirrored",
	Asymmetric:   "asymmetric",
	Disconnected: "disconnected",
}

func (m PointMode) String() string {
	if m >= 0 && int(m) < len(pointModeNames) {
		return pointModeNames[m]
	}
	return fmt.Sprintf("PointMode(%d)", int(m))
}

// MarshalJSON encodes the mode by name.
func (m PointMode) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON accepts either the mode name or its number.
func (m *PointMode) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		for i, n := range pointModeNames {
			if n == name {
				*m = PointMode(i)
				return nil
			}
		}
		return fmt.Errorf("unknown point mode %q", name)
	}

	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("decode point mode: %w", err)
	}
	if n < 0 || n >= len(pointModeNames) {
		return fmt.Errorf("unknown point mode %d", n)
	}
	*m = PointMode(n)
	return nil
}

// CurvePoint is one vertex of an editable outline. Positions and handles are
// normalized to the owning frame (0..1).
type CurvePoint struct {
	Position     geom.Point `json:"point"`
	CurveFrom    geom.Point `json:"curveFrom"`
	CurveTo      geom.Point `json:"curveTo"`
	HasCurveFrom bool       `json:"hasCurveFrom"`
	HasCurveTo   bool       `json:"hasCurveTo"`
	Mode         PointMode  `json:"curveMode"`
	CornerRadius float64    `json:"cornerRadius"`
}

// StraightPoint returns a handle-less point at (x, y).
func StraightPoint(x, y float64) CurvePoint {
	p := geom.Pt(x, y)
	return CurvePoint{Position: p, CurveFrom: p, CurveTo: p, Mode: Straight}
}

// RectanglePoints returns the four corners of the unit square, clockwise from
// the top-left, as used by rectangle layers.
func RectanglePoints() []CurvePoint {
	return []CurvePoint{
		StraightPoint(0, 0),
		StraightPoint(1, 0),
		StraightPoint(1, 1),
		StraightPoint(0, 1),
	}
}

// OvalPoints returns the four mirrored points of an ellipse inscribed in the
// unit square.
func OvalPoints() []CurvePoint {
	// Handle offset for a quarter circle of radius 0.5.
	const k = 0.5 * 0.5522847498
	mk := func(x, y, fx, fy, tx, ty float64) CurvePoint {
		return CurvePoint{
			Position:     geom.Pt(x, y),
			CurveFrom:    geom.Pt(fx, fy),
			CurveTo:      geom.Pt(tx, ty),
			HasCurveFrom: true,
			HasCurveTo:   true,
			Mode:         Mirrored,
		}
	}
	return []CurvePoint{
		mk(0.5, 0, 0.5+k, 0, 0.5-k, 0),
		mk(1, 0.5, 1, 0.5+k, 1, 0.5-k),
		mk(0.5, 1, 0.5-k, 1, 0.5+k, 1),
		mk(0, 0.5, 0, 0.5-k, 0, 0.5+k),
	}
}
