package paint

import (
	"encoding/json"
	"fmt"

	"github.com/inamate/inamate/render-go/internal/geom"
)

// GradientType selects the gradient shader.
type GradientType string

const (
	Linear  GradientType = "linear"
	Radial  GradientType = "radial"
	Angular GradientType = "angular"
)

// Stop is one color stop of a gradient. Position is in 0..1.
type Stop struct {
	Color    Color   `json:"color"`
	Position float64 `json:"position"`
}

// Gradient describes a gradient in the unit space of the shape being painted.
// From and To are normalized to the shape frame; angular gradients ignore them
// and sweep around the frame center.
type Gradient struct {
	Type  GradientType `json:"type"`
	Stops []Stop       `json:"stops"`
	From  geom.Point   `json:"from"`
	To    geom.Point   `json:"to"`
}

// Descriptor is a style-level fill description: a solid color or a gradient.
// A descriptor with neither set resolves to a transparent paint.
type Descriptor struct {
	Color    *Color    `json:"color,omitempty"`
	Gradient *Gradient `json:"gradient,omitempty"`
}

// Solid returns a descriptor for a solid color.
func Solid(c Color) Descriptor {
	return Descriptor{Color: &c}
}

// Validate reports malformed gradient types. Missing data is not an error.
func (d Descriptor) Validate() error {
	if d.Gradient == nil {
		return nil
	}
	switch d.Gradient.Type {
	case Linear, Radial, Angular:
		return nil
	default:
		return fmt.Errorf("unknown gradient type %q", d.Gradient.Type)
	}
}

// StrokePosition is where a border sits relative to the outline.
type StrokePosition int

const (
	Center StrokePosition = iota
	Inside
	Outside
)

var strokePositionNames = [...]string{
	Center:  "center",
	Inside:  "inside",
	Outside: "outside",
}

func (p StrokePosition) String() string {
	if p >= 0 && int(p) < len(strokePositionNames) {
		return strokePositionNames[p]
	}
	return fmt.Sprintf("StrokePosition(%d)", int(p))
}

func (p StrokePosition) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

func (p *StrokePosition) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return fmt.Errorf("decode stroke position: %w", err)
	}
	for i, n := range strokePositionNames {
		if n == name {
			*p = StrokePosition(i)
			return nil
		}
	}
	return fmt.Errorf("unknown stroke position %q", name)
}

// Border describes a stroke on a shape.
type Border struct {
	Descriptor
	Thickness float64        `json:"thickness"`
	Position  StrokePosition `json:"position"`
	Cap       LineCap        `json:"cap,omitempty"`
	Join      LineJoin       `json:"join,omitempty"`
}
