package raster

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/inamate/render-go/internal/canvas"
	"github.com/inamate/inamate/render-go/internal/geom"
	"github.com/inamate/inamate/render-go/internal/paint"
	"github.com/inamate/inamate/render-go/internal/scene"
)

var red = paint.RGBA(1, 0, 0, 1)

func newTestSurface(t *testing.T) *Surface {
	t.Helper()
	s, err := NewSurface(20, 20, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func rgbaAt(img *image.RGBA, x, y int) color.RGBA {
	return img.RGBAAt(x, y)
}

func TestNewSurfaceRejectsEmptySize(t *testing.T) {
	_, err := NewSurface(0, 10, nil)
	assert.Error(t, err)
}

func TestSurfaceFillsRect(t *testing.T) {
	s := newTestSurface(t)
	err := s.Frame(func(c canvas.Canvas) error {
		return c.DrawRect(geom.Rect{X: 0, Y: 0, Width: 10, Height: 10}, paint.SolidPaint(red))
	})
	require.NoError(t, err)

	assert.Equal(t, color.RGBA{R: 255, A: 255}, rgbaAt(s.Image(), 5, 5))
	assert.Equal(t, color.RGBA{}, rgbaAt(s.Image(), 15, 15))
}

func TestSurfaceConcatMovesDrawing(t *testing.T) {
	s := newTestSurface(t)
	require.NoError(t, s.Frame(func(c canvas.Canvas) error {
		c.Concat(geom.Translate(10, 10))
		return c.DrawRect(geom.Rect{Width: 10, Height: 10}, paint.SolidPaint(red))
	}))

	assert.Equal(t, uint8(0), rgbaAt(s.Image(), 5, 5).A)
	assert.Equal(t, uint8(255), rgbaAt(s.Image(), 15, 15).A)
}

func TestSurfaceClipRect(t *testing.T) {
	s := newTestSurface(t)
	require.NoError(t, s.Frame(func(c canvas.Canvas) error {
		saved := c.Save()
		c.ClipRect(geom.Rect{Width: 10, Height: 20})
		err := c.DrawRect(geom.Rect{Width: 20, Height: 20}, paint.SolidPaint(red))
		c.RestoreToCount(saved)
		return err
	}))

	assert.Equal(t, uint8(255), rgbaAt(s.Image(), 4, 10).A)
	assert.Equal(t, uint8(0), rgbaAt(s.Image(), 15, 10).A)
}

func TestSurfaceClipRectUnderTransforms(t *testing.T) {
	tests := []struct {
		name    string
		m       geom.Matrix2D
		clip    geom.Rect
		in, out image.Point
	}{
		{"scaled onto pixels", geom.Scale(2, 2), geom.Rect{X: 1, Y: 1, Width: 3, Height: 3}, image.Pt(3, 3), image.Pt(9, 9)},
		{"mirrored", geom.FromTransform(0, 0, -1, 1, 0, 10, 0), geom.Rect{Width: 5, Height: 20}, image.Pt(17, 5), image.Pt(12, 5)},
		{"fractional edges", geom.Identity(), geom.Rect{X: 0.5, Width: 10, Height: 20}, image.Pt(5, 5), image.Pt(15, 5)},
		{"rotated", geom.RotateDegrees(45), geom.Rect{Width: 30, Height: 30}, image.Pt(2, 15), image.Pt(15, 5)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSurface(t)
			require.NoError(t, s.Frame(func(c canvas.Canvas) error {
				saved := c.Save()
				c.Concat(tt.m)
				c.ClipRect(tt.clip)
				c.Concat(tt.m.Invert())
				err := c.DrawRect(geom.Rect{Width: 20, Height: 20}, paint.SolidPaint(red))
				c.RestoreToCount(saved)
				return err
			}))

			assert.Equal(t, uint8(255), rgbaAt(s.Image(), tt.in.X, tt.in.Y).A)
			assert.Equal(t, uint8(0), rgbaAt(s.Image(), tt.out.X, tt.out.Y).A)
		})
	}
}

func TestSurfaceClipIsRestored(t *testing.T) {
	s := newTestSurface(t)
	require.NoError(t, s.Frame(func(c canvas.Canvas) error {
		saved := c.Save()
		c.ClipRect(geom.Rect{Width: 5, Height: 5})
		c.RestoreToCount(saved)
		return c.DrawRect(geom.Rect{Width: 20, Height: 20}, paint.SolidPaint(red))
	}))

	assert.Equal(t, uint8(255), rgbaAt(s.Image(), 15, 15).A)
}

func TestSurfaceLayerAlpha(t *testing.T) {
	s := newTestSurface(t)
	require.NoError(t, s.Frame(func(c canvas.Canvas) error {
		saved := c.SaveLayer(canvas.LayerPaint{Alpha: 0.5}, nil)
		assert.Equal(t, 1, saved)
		assert.Equal(t, 2, c.SaveCount())
		err := c.DrawRect(geom.Rect{Width: 20, Height: 20}, paint.SolidPaint(red))
		c.RestoreToCount(saved)
		return err
	}))

	px := rgbaAt(s.Image(), 10, 10)
	assert.InDelta(t, 128, int(px.A), 2)
	assert.InDelta(t, 128, int(px.R), 2)
}

func TestSurfaceLayerColorFilter(t *testing.T) {
	s := newTestSurface(t)
	require.NoError(t, s.Frame(func(c canvas.Canvas) error {
		saved := c.SaveLayer(canvas.LayerPaint{
			Alpha:       1,
			ColorFilter: &paint.ColorFilter{Matrix: paint.Saturation(0)},
		}, nil)
		err := c.DrawRect(geom.Rect{Width: 20, Height: 20}, paint.SolidPaint(red))
		c.RestoreToCount(saved)
		return err
	}))

	px := rgbaAt(s.Image(), 10, 10)
	assert.Equal(t, uint8(255), px.A)
	assert.InDelta(t, int(px.R), int(px.G), 1)
	assert.InDelta(t, int(px.G), int(px.B), 1)
}

func TestSurfaceLinearGradient(t *testing.T) {
	s := newTestSurface(t)
	p := paint.Resolve(paint.Descriptor{Gradient: &paint.Gradient{
		Type: paint.Linear,
		Stops: []paint.Stop{
			{Color: paint.RGBA(0, 0, 0, 1), Position: 0},
			{Color: paint.RGBA(1, 1, 1, 1), Position: 1},
		},
		From: geom.Pt(0, 0.5),
		To:   geom.Pt(1, 0.5),
	}}, geom.Scale(20, 20))

	require.NoError(t, s.Frame(func(c canvas.Canvas) error {
		return c.DrawRect(geom.Rect{Width: 20, Height: 20}, p)
	}))

	left, right := rgbaAt(s.Image(), 1, 10), rgbaAt(s.Image(), 18, 10)
	assert.Less(t, left.R, right.R)
	assert.Equal(t, uint8(255), left.A)
}

func TestSurfaceDrawImage(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for i := range src.Pix {
		src.Pix[i] = 255
	}
	s := newTestSurface(t)
	require.NoError(t, s.Frame(func(c canvas.Canvas) error {
		return c.DrawImage(&scene.StaticImage{Key: "img", Img: src},
			geom.Rect{X: 4, Y: 4, Width: 8, Height: 8},
			paint.SolidPaint(paint.White), canvas.SamplingLinear)
	}))

	assert.Equal(t, uint8(255), rgbaAt(s.Image(), 8, 8).A)
	assert.Equal(t, uint8(0), rgbaAt(s.Image(), 16, 16).A)
}

func TestSurfaceFailedFrameKeepsPreviousImage(t *testing.T) {
	s := newTestSurface(t)
	require.NoError(t, s.Frame(func(c canvas.Canvas) error {
		return c.DrawRect(geom.Rect{Width: 20, Height: 20}, paint.SolidPaint(red))
	}))

	boom := errors.New("boom")
	err := s.Frame(func(c canvas.Canvas) error {
		_ = c.DrawRect(geom.Rect{Width: 20, Height: 20}, paint.SolidPaint(paint.Black))
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, color.RGBA{R: 255, A: 255}, rgbaAt(s.Image(), 10, 10))
}

func TestSurfaceRestoreToCountClampsAtOne(t *testing.T) {
	s := newTestSurface(t)
	s.BeginFrame()
	s.Save()
	s.Save()
	s.RestoreToCount(0)
	assert.Equal(t, 1, s.SaveCount())
	s.Restore()
	assert.Equal(t, 1, s.SaveCount())
}

func TestSurfaceClosed(t *testing.T) {
	s, err := NewSurface(4, 4, nil)
	require.NoError(t, err)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	assert.ErrorIs(t, s.Frame(func(canvas.Canvas) error { return nil }), ErrClosed)
	assert.ErrorIs(t, s.DrawRect(geom.Rect{Width: 1, Height: 1}, paint.SolidPaint(red)), ErrClosed)
}

func TestSurfaceEncodePNG(t *testing.T) {
	s := newTestSurface(t)
	require.NoError(t, s.Frame(func(c canvas.Canvas) error {
		return c.DrawRect(geom.Rect{Width: 20, Height: 20}, paint.SolidPaint(red))
	}))

	var buf bytes.Buffer
	require.NoError(t, s.EncodePNG(&buf))
	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 20, 20), img.Bounds())
	r, _, _, a := img.At(5, 5).RGBA()
	assert.Equal(t, uint32(0xffff), r)
	assert.Equal(t, uint32(0xffff), a)
}

func TestSurfaceEncodeJPEG(t *testing.T) {
	s := newTestSurface(t)
	require.NoError(t, s.Frame(func(c canvas.Canvas) error {
		return c.DrawRect(geom.Rect{Width: 20, Height: 20}, paint.SolidPaint(red))
	}))

	var buf bytes.Buffer
	require.NoError(t, s.EncodeJPEG(&buf, 90))
	img, err := jpeg.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 20, 20), img.Bounds())
}

func TestSurfaceDropShadow(t *testing.T) {
	s := newTestSurface(t)
	require.NoError(t, s.Frame(func(c canvas.Canvas) error {
		saved := c.SaveLayer(canvas.LayerPaint{
			Alpha:       1,
			ImageFilter: paint.DropShadow(5, 5, 0, paint.Black),
		}, nil)
		err := c.DrawRect(geom.Rect{Width: 5, Height: 5}, paint.SolidPaint(red))
		c.RestoreToCount(saved)
		return err
	}))

	assert.Equal(t, color.RGBA{R: 255, A: 255}, rgbaAt(s.Image(), 2, 2))
	assert.Equal(t, color.RGBA{A: 255}, rgbaAt(s.Image(), 7, 7))
	assert.Equal(t, uint8(0), rgbaAt(s.Image(), 12, 12).A)
	// Positive offsets move the shadow down, never up.
	assert.Equal(t, uint8(0), rgbaAt(s.Image(), 7, 2).A)
	assert.Equal(t, uint8(0), rgbaAt(s.Image(), 2, 7).A)
}

func TestSurfaceBlurSpreadsEdges(t *testing.T) {
	s := newTestSurface(t)
	require.NoError(t, s.Frame(func(c canvas.Canvas) error {
		saved := c.SaveLayer(canvas.LayerPaint{Alpha: 1, ImageFilter: paint.Blur(2)}, nil)
		err := c.DrawRect(geom.Rect{X: 5, Y: 5, Width: 10, Height: 10}, paint.SolidPaint(red))
		c.RestoreToCount(saved)
		return err
	}))

	edge := rgbaAt(s.Image(), 4, 10).A
	assert.Greater(t, edge, uint8(0))
	assert.Less(t, edge, uint8(255))
}

func TestSurfaceBackdropFilter(t *testing.T) {
	s := newTestSurface(t)
	require.NoError(t, s.Frame(func(c canvas.Canvas) error {
		if err := c.DrawRect(geom.Rect{Width: 10, Height: 20}, paint.SolidPaint(red)); err != nil {
			return err
		}
		saved := c.SaveLayer(canvas.LayerPaint{Alpha: 1}, paint.Blur(2))
		c.RestoreToCount(saved)
		return nil
	}))

	assert.Greater(t, rgbaAt(s.Image(), 10, 10).A, uint8(0))
	assert.Equal(t, uint8(0), rgbaAt(s.Image(), 18, 10).A)
}

func TestSurfaceDrawParagraph(t *testing.T) {
	s := newTestSurface(t)
	require.NoError(t, s.Frame(func(c canvas.Canvas) error {
		return c.DrawParagraph(scene.NewLines("Hi", 14, paint.Black), geom.Pt(1, 1))
	}))

	var inked int
	img := s.Image()
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] > 0 {
			inked++
		}
	}
	assert.Greater(t, inked, 0)
}
