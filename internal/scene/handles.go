package scene

import (
	"image"
	"strings"

	"github.com/inamate/inamate/render-go/internal/geom"
	"github.com/inamate/inamate/render-go/internal/paint"
)

// StaticImage is an ImageHandle over an already decoded image.
type StaticImage struct {
	Key string
	Img image.Image
}

func (s *StaticImage) ID() string         { return s.Key }
func (s *StaticImage) Image() image.Image { return s.Img }

func (s *StaticImage) Size() (int, int) {
	if s.Img == nil {
		return 0, 0
	}
	b := s.Img.Bounds()
	return b.Dx(), b.Dy()
}

// Lines is a Paragraph made of explicit line breaks with a uniform line
// height. Glyph advances are estimated from the font size.
type Lines struct {
	runs   []TextRun
	bounds geom.Rect
}

// averageAdvance is the estimated glyph advance as a fraction of font size.
const averageAdvance = 0.55

// NewLines lays text out one line per "\n" with line height 1.2 * size.
func NewLines(text string, size float64, c paint.Color) *Lines {
	p := &Lines{}
	lineHeight := size * 1.2
	for i, line := range strings.Split(text, "\n") {
		run := TextRun{
			Text:   line,
			Origin: geom.Pt(0, size+float64(i)*lineHeight),
			Size:   size,
			Color:  c,
		}
		p.runs = append(p.runs, run)
		p.bounds = p.bounds.Union(geom.Rect{
			X:      0,
			Y:      float64(i) * lineHeight,
			Width:  float64(len([]rune(line))) * size * averageAdvance,
			Height: lineHeight,
		})
	}
	return p
}

func (p *Lines) Runs() []TextRun   { return p.runs }
func (p *Lines) Bounds() geom.Rect { return p.bounds }
