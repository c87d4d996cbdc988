package raster

import (
	"fmt"
	"image"
	"math"
	"sync"

	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/inamate/inamate/render-go/internal/geom"
	"github.com/inamate/inamate/render-go/internal/scene"
)

// Fonts caches faces of a single font source by pixel size. It is safe for
// concurrent use; paragraphs are rasterized one at a time.
type Fonts struct {
	mu     sync.Mutex
	source *text.FontSource
	faces  map[float64]text.Face
}

// DefaultFonts returns the bundled Go Regular font.
func DefaultFonts() (*Fonts, error) {
	source, err := text.NewFontSource(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("load default font: %w", err)
	}
	return &Fonts{source: source, faces: make(map[float64]text.Face)}, nil
}

// LoadFonts loads a TrueType or OpenType font file. An empty path falls back
// to the default font.
func LoadFonts(path string) (*Fonts, error) {
	if path == "" {
		return DefaultFonts()
	}
	source, err := text.NewFontSourceFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("load font %s: %w", path, err)
	}
	return &Fonts{source: source, faces: make(map[float64]text.Face)}, nil
}

// Face returns a face of the given pixel size, rounded to a quarter pixel.
func (f *Fonts) Face(size float64) text.Face {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.face(size)
}

func (f *Fonts) face(size float64) text.Face {
	size = math.Round(size*4) / 4
	if face, ok := f.faces[size]; ok {
		return face
	}
	face := f.source.Face(size)
	f.faces[size] = face
	return face
}

// rasterizeParagraph draws the runs of para into an image at scale s.
// It returns the image and the paragraph-space position of its top-left
// pixel.
func (f *Fonts) rasterizeParagraph(para scene.Paragraph, s float64) (*image.RGBA, geom.Point) {
	runs := para.Runs()
	if len(runs) == 0 {
		return nil, geom.Point{}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	// Measure in paragraph space, with room for descenders.
	var minX, minY, maxX, maxY float64
	for i, run := range runs {
		w, _ := text.Measure(run.Text, f.face(run.Size*s))
		l, t := run.Origin.X, run.Origin.Y-run.Size
		r, b := run.Origin.X+w/s, run.Origin.Y+run.Size*0.3
		if i == 0 {
			minX, minY, maxX, maxY = l, t, r, b
			continue
		}
		minX, minY = math.Min(minX, l), math.Min(minY, t)
		maxX, maxY = math.Max(maxX, r), math.Max(maxY, b)
	}

	w := int(math.Ceil((maxX - minX) * s))
	h := int(math.Ceil((maxY - minY) * s))
	if w <= 0 || h <= 0 {
		return nil, geom.Point{}
	}

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for _, run := range runs {
		x := (run.Origin.X - minX) * s
		y := (run.Origin.Y - minY) * s
		text.Draw(img, run.Text, f.face(run.Size*s), x, y, premultiplied(run.Color))
	}
	return img, geom.Pt(minX, minY)
}
