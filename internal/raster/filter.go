package raster

import (
	"image"
	"image/color"
	"math"

	"github.com/anthonynsimon/bild/adjust"
	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/clone"
	"github.com/anthonynsimon/bild/transform"
	"golang.org/x/image/draw"

	"github.com/inamate/inamate/render-go/internal/paint"
)

// applyColorMatrix maps every pixel of img through m. Pixels are
// premultiplied; the matrix operates on straight color.
func applyColorMatrix(img *image.RGBA, m paint.ColorMatrix) *image.RGBA {
	return adjust.Apply(img, func(c color.RGBA) color.RGBA {
		in := paint.Color{A: float64(c.A) / 255}
		if c.A > 0 {
			a := float64(c.A)
			in.R, in.G, in.B = float64(c.R)/a, float64(c.G)/a, float64(c.B)/a
		}
		return premultiplied(m.Apply(in))
	})
}

// applyImageFilter runs the filter chain over img and returns the result.
func applyImageFilter(img *image.RGBA, f *paint.ImageFilter) *image.RGBA {
	for _, step := range f.Chain() {
		switch step.Kind {
		case paint.BlurFilter:
			img = gaussian(img, step.Sigma)
		case paint.DropShadowFilter:
			img = dropShadow(img, step)
		case paint.ColorMatrixFilter:
			img = applyColorMatrix(img, step.Matrix)
		}
	}
	return img
}

func gaussian(img *image.RGBA, sigma float64) *image.RGBA {
	if !(sigma > 0) {
		return img
	}
	return blur.Gaussian(img, sigma)
}

// dropShadow draws img over a blurred, offset copy of its alpha tinted with
// the shadow color.
func dropShadow(img *image.RGBA, f *paint.ImageFilter) *image.RGBA {
	shadow := applyColorMatrix(img, paint.Tint(f.Color))
	shadow = gaussian(shadow, f.Sigma)
	// bild translates with y pointing up.
	shadow = transform.Translate(shadow, int(math.Round(f.Dx)), -int(math.Round(f.Dy)))

	out := clone.AsRGBA(shadow)
	draw.Draw(out, out.Bounds(), img, img.Bounds().Min, draw.Over)
	return out
}
