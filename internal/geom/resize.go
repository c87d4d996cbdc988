package geom

import "fmt"

// Direction is one of the eight compass handles of a selection box.
type Direction string

const (
	North     Direction = "n"
	NorthEast Direction = "ne"
	East      Direction = "e"
	SouthEast Direction = "se"
	South     Direction = "s"
	SouthWest Direction = "sw"
	West      Direction = "w"
	NorthWest Direction = "nw"
)

// ParseDirection validates a compass direction string.
func ParseDirection(s string) (Direction, error) {
	switch d := Direction(s); d {
	case North, NorthEast, East, SouthEast, South, SouthWest, West, NorthWest:
		return d, nil
	default:
		return "", fmt.Errorf("invalid resize direction %q", s)
	}
}

func (d Direction) hasNorth() bool { return d == North || d == NorthEast || d == NorthWest }
func (d Direction) hasSouth() bool { return d == South || d == SouthEast || d == SouthWest }
func (d Direction) hasEast() bool  { return d == East || d == NorthEast || d == SouthEast }
func (d Direction) hasWest() bool  { return d == West || d == NorthWest || d == SouthWest }

// ResizeRect moves the edges implied by direction by (dx, dy). East and south
// only change the size; west and north also move the origin so the opposite
// edge stays put. Axes the direction does not name are left untouched. The
// result may have negative size mid-drag; callers Normalize when committing.
func ResizeRect(r Rect, d Direction, dx, dy float64) Rect {
	switch {
	case d.hasEast():
		r.Width += dx
	case d.hasWest():
		r.X += dx
		r.Width -= dx
	}

	switch {
	case d.hasSouth():
		r.Height += dy
	case d.hasNorth():
		r.Y += dy
		r.Height -= dy
	}

	return r
}
