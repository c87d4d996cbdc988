package document

import (
	"encoding/json"
	"fmt"

	"github.com/inamate/inamate/render-go/internal/curve"
	"github.com/inamate/inamate/render-go/internal/geom"
	"github.com/inamate/inamate/render-go/internal/paint"
)

// Document is a design file: pages holding trees of layers. Layers are stored
// flat by ID and reference their children by ID.
type Document struct {
	Project Project          `json:"project"`
	Pages   map[string]Page  `json:"pages"`
	Layers  map[string]Layer `json:"layers"`
	Assets  map[string]Asset `json:"assets"`
}

type Project struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Version   int      `json:"version"`
	CreatedAt string   `json:"createdAt"`
	UpdatedAt string   `json:"updatedAt"`
	Pages     []string `json:"pages"`
	Assets    []string `json:"assets"`
}

type Page struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	Background string `json:"background"`
	Root       string `json:"root"`
}

type LayerType string

const (
	LayerTypeGroup     LayerType = "Group"
	LayerTypeRectangle LayerType = "Rectangle"
	LayerTypeOval      LayerType = "Oval"
	LayerTypeShape     LayerType = "Shape"
	LayerTypeImage     LayerType = "Image"
	LayerTypeText      LayerType = "Text"
)

// Fill is one entry of a layer's fill stack.
type Fill struct {
	paint.Descriptor
	Enabled bool `json:"enabled"`
}

// Shadow is a drop shadow behind the layer content.
type Shadow struct {
	X       float64     `json:"x"`
	Y       float64     `json:"y"`
	Blur    float64     `json:"blur"`
	Color   paint.Color `json:"color"`
	Enabled bool        `json:"enabled"`
}

// Blur is a gaussian blur of the layer, or of what is behind it when
// Background is set.
type Blur struct {
	Radius     float64 `json:"radius"`
	Background bool    `json:"background"`
	Enabled    bool    `json:"enabled"`
}

type Style struct {
	Fills      []Fill         `json:"fills,omitempty"`
	Borders    []paint.Border `json:"borders,omitempty"`
	Shadows    []Shadow       `json:"shadows,omitempty"`
	Blur       *Blur          `json:"blur,omitempty"`
	Opacity    float64        `json:"opacity"`
	Saturation *float64       `json:"saturation,omitempty"`
}

type Layer struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Type     LayerType `json:"type"`
	Parent   *string   `json:"parent"`
	Children []string  `json:"children"`

	// Frame is in the parent's coordinate space.
	Frame    geom.Rect `json:"frame"`
	Rotation float64   `json:"rotation"` // degrees about the frame center
	FlipH    bool      `json:"flipH,omitempty"`
	FlipV    bool      `json:"flipV,omitempty"`

	Style   Style           `json:"style"`
	Visible bool            `json:"visible"`
	Locked  bool            `json:"locked"`
	Data    json.RawMessage `json:"data"`
}

// RectangleData is the Data of a Rectangle layer.
type RectangleData struct {
	CornerRadius float64 `json:"cornerRadius"`
}

// ShapeData is the Data of a Shape layer: a closed outline of curve points
// normalized to the layer frame.
type ShapeData struct {
	Points       []curve.CurvePoint `json:"points"`
	CornerRadius float64            `json:"cornerRadius"`
}

// ImageData is the Data of an Image layer.
type ImageData struct {
	AssetID string `json:"assetId"`
}

// TextData is the Data of a Text layer.
type TextData struct {
	Text     string      `json:"text"`
	FontSize float64     `json:"fontSize"`
	Color    paint.Color `json:"color"`
}

// GroupData is the Data of a Group layer.
type GroupData struct {
	ClipsContent bool `json:"clipsContent"`
}

// DecodeData unmarshals the type-specific layer data into v. Empty data
// leaves v untouched.
func (l *Layer) DecodeData(v any) error {
	if len(l.Data) == 0 || string(l.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(l.Data, v); err != nil {
		return fmt.Errorf("decode %s data for layer %s: %w", l.Type, l.ID, err)
	}
	return nil
}

type Asset struct {
	ID     string `json:"id"`
	Type   string `json:"type"`
	Name   string `json:"name"`
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Validate checks that page roots and child references resolve.
func (d *Document) Validate() error {
	for _, id := range d.Project.Pages {
		page, ok := d.Pages[id]
		if !ok {
			return fmt.Errorf("page %s: not found", id)
		}
		if _, ok := d.Layers[page.Root]; !ok {
			return fmt.Errorf("page %s: root layer %s not found", id, page.Root)
		}
	}
	for id, layer := range d.Layers {
		for _, child := range layer.Children {
			if _, ok := d.Layers[child]; !ok {
				return fmt.Errorf("layer %s: child %s not found", id, child)
			}
		}
	}
	return nil
}

// NewEmptyDocument creates an empty document with a single page.
func NewEmptyDocument(projectID, projectName, pageID, rootID string) *Document {
	return &Document{
		Project: Project{
			ID:      projectID,
			Name:    projectName,
			Version: 1,
			Pages:   []string{pageID},
			Assets:  []string{},
		},
		Pages: map[string]Page{
			pageID: {
				ID:         pageID,
				Name:       "Page 1",
				Width:      1280,
				Height:     720,
				Background: "#ffffff",
				Root:       rootID,
			},
		},
		Layers: map[string]Layer{
			rootID: {
				ID:       rootID,
				Type:     LayerTypeGroup,
				Children: []string{},
				Frame:    geom.Rect{Width: 1280, Height: 720},
				Style:    Style{Opacity: 1},
				Visible:  true,
				Data:     json.RawMessage(`{}`),
			},
		},
		Assets: map[string]Asset{},
	}
}
