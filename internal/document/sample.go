package document

import (
	"encoding/json"
	"math"
	"time"

	"github.com/inamate/inamate/render-go/internal/curve"
	"github.com/inamate/inamate/render-go/internal/geom"
	"github.com/inamate/inamate/render-go/internal/paint"
	"github.com/inamate/inamate/render-go/internal/typeid"
)

func mustJSON(v any) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return data
}

func solidFill(hex string) Fill {
	return Fill{Descriptor: paint.Solid(paint.MustHex(hex)), Enabled: true}
}

// starPoints returns a five-pointed star normalized to the unit square.
func starPoints() []curve.CurvePoint {
	pts := make([]curve.CurvePoint, 0, 10)
	for i := 0; i < 10; i++ {
		r := 0.5
		if i%2 == 1 {
			r = 0.2
		}
		a := -math.Pi/2 + float64(i)*math.Pi/5
		pts = append(pts, curve.StraightPoint(0.5+r*math.Cos(a), 0.5+r*math.Sin(a)))
	}
	return pts
}

// NewSampleDocument returns a one-page document exercising rounded shapes,
// gradients, borders, group opacity, shadows and text.
func NewSampleDocument(projectID string) *Document {
	now := time.Now().UTC().Format(time.RFC3339)

	pageID := typeid.NewPageID()
	rootID := typeid.NewLayerID()
	cardID := typeid.NewLayerID()
	orbID := typeid.NewLayerID()
	starID := typeid.NewLayerID()
	badgeID := typeid.NewLayerID()
	triangleID := typeid.NewLayerID()
	labelID := typeid.NewLayerID()

	rootIDPtr := &rootID
	badgeIDPtr := &badgeID

	triangle := []curve.CurvePoint{
		curve.StraightPoint(0.5, 0),
		curve.StraightPoint(1, 1),
		curve.StraightPoint(0, 1),
	}

	return &Document{
		Project: Project{
			ID:        projectID,
			Name:      "Untitled",
			Version:   1,
			CreatedAt: now,
			UpdatedAt: now,
			Pages:     []string{pageID},
			Assets:    []string{},
		},
		Pages: map[string]Page{
			pageID: {
				ID:         pageID,
				Name:       "Page 1",
				Width:      1280,
				Height:     720,
				Background: "#f4f4f8",
				Root:       rootID,
			},
		},
		Layers: map[string]Layer{
			rootID: {
				ID:       rootID,
				Name:     "Root",
				Type:     LayerTypeGroup,
				Children: []string{cardID, orbID, starID, badgeID},
				Frame:    geom.Rect{Width: 1280, Height: 720},
				Style:    Style{Opacity: 1},
				Visible:  true,
				Data:     json.RawMessage(`{}`),
			},
			cardID: {
				ID:       cardID,
				Name:     "Card",
				Type:     LayerTypeRectangle,
				Parent:   rootIDPtr,
				Children: []string{},
				Frame:    geom.Rect{X: 120, Y: 120, Width: 360, Height: 240},
				Style: Style{
					Opacity: 1,
					Fills: []Fill{{
						Enabled: true,
						Descriptor: paint.Descriptor{Gradient: &paint.Gradient{
							Type: paint.Linear,
							From: geom.Pt(0, 0),
							To:   geom.Pt(1, 1),
							Stops: []paint.Stop{
								{Color: paint.MustHex("#e94560"), Position: 0},
								{Color: paint.MustHex("#533483"), Position: 1},
							},
						}},
					}},
					Borders: []paint.Border{{
						Descriptor: paint.Solid(paint.MustHex("#16213e")),
						Thickness:  4,
						Position:   paint.Inside,
					}},
					Shadows: []Shadow{{Y: 8, Blur: 12, Color: paint.RGBA(0, 0, 0, 0.3), Enabled: true}},
				},
				Visible: true,
				Data:    mustJSON(RectangleData{CornerRadius: 24}),
			},
			orbID: {
				ID:       orbID,
				Name:     "Orb",
				Type:     LayerTypeOval,
				Parent:   rootIDPtr,
				Children: []string{},
				Frame:    geom.Rect{X: 560, Y: 140, Width: 200, Height: 200},
				Style: Style{
					Opacity: 1,
					Fills: []Fill{{
						Enabled: true,
						Descriptor: paint.Descriptor{Gradient: &paint.Gradient{
							Type: paint.Angular,
							Stops: []paint.Stop{
								{Color: paint.MustHex("#0f3460"), Position: 0.2},
								{Color: paint.MustHex("#e94560"), Position: 0.8},
							},
						}},
					}},
				},
				Visible: true,
				Data:    json.RawMessage(`{}`),
			},
			starID: {
				ID:       starID,
				Name:     "Star",
				Type:     LayerTypeShape,
				Parent:   rootIDPtr,
				Children: []string{},
				Frame:    geom.Rect{X: 840, Y: 120, Width: 240, Height: 240},
				Rotation: 12,
				Style: Style{
					Opacity: 1,
					Fills:   []Fill{solidFill("#ffc93c")},
					Borders: []paint.Border{{
						Descriptor: paint.Solid(paint.MustHex("#a06c00")),
						Thickness:  3,
						Position:   paint.Center,
						Join:       paint.JoinRound,
					}},
				},
				Visible: true,
				Data:    mustJSON(ShapeData{Points: starPoints(), CornerRadius: 6}),
			},
			badgeID: {
				ID:       badgeID,
				Name:     "Badge",
				Type:     LayerTypeGroup,
				Parent:   rootIDPtr,
				Children: []string{triangleID, labelID},
				Frame:    geom.Rect{X: 160, Y: 420, Width: 320, Height: 200},
				Style:    Style{Opacity: 0.8},
				Visible:  true,
				Data:     mustJSON(GroupData{ClipsContent: true}),
			},
			triangleID: {
				ID:       triangleID,
				Name:     "Triangle",
				Type:     LayerTypeShape,
				Parent:   badgeIDPtr,
				Children: []string{},
				Frame:    geom.Rect{X: 0, Y: 0, Width: 160, Height: 140},
				Style: Style{
					Opacity: 1,
					Fills:   []Fill{solidFill("#00adb5")},
				},
				Visible: true,
				Data:    mustJSON(ShapeData{Points: triangle, CornerRadius: 16}),
			},
			labelID: {
				ID:       labelID,
				Name:     "Label",
				Type:     LayerTypeText,
				Parent:   badgeIDPtr,
				Children: []string{},
				Frame:    geom.Rect{X: 0, Y: 150, Width: 320, Height: 40},
				Style:    Style{Opacity: 1},
				Visible:  true,
				Data: mustJSON(TextData{
					Text:     "Rendered server side",
					FontSize: 24,
					Color:    paint.MustHex("#222831"),
				}),
			},
		},
		Assets: map[string]Asset{},
	}
}
