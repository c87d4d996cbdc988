package paint

// ColorMatrix is a row-major 4x5 matrix applied to non-premultiplied RGBA in
// 0..1: out[row] = m[row*5+0]*r + m[row*5+1]*g + m[row*5+2]*b + m[row*5+3]*a + m[row*5+4].
type ColorMatrix [20]float64

// IdentityColorMatrix leaves colors unchanged.
func IdentityColorMatrix() ColorMatrix {
	return ColorMatrix{
		1, 0, 0, 0, 0,
		0, 1, 0, 0, 0,
		0, 0, 1, 0, 0,
		0, 0, 0, 1, 0,
	}
}

// Apply maps one color through the matrix and clamps the result.
func (m ColorMatrix) Apply(c Color) Color {
	in := [4]float64{c.R, c.G, c.B, c.A}
	var out [4]float64
	for row := 0; row < 4; row++ {
		v := m[row*5+4]
		for col := 0; col < 4; col++ {
			v += m[row*5+col] * in[col]
		}
		out[row] = v
	}
	return Color{out[0], out[1], out[2], out[3]}.Clamp()
}

// Concat returns the matrix applying n first, then m.
func (m ColorMatrix) Concat(n ColorMatrix) ColorMatrix {
	var out ColorMatrix
	for row := 0; row < 4; row++ {
		for col := 0; col < 5; col++ {
			var v float64
			for k := 0; k < 4; k++ {
				v += m[row*5+k] * n[k*5+col]
			}
			if col == 4 {
				v += m[row*5+4]
			}
			out[row*5+col] = v
		}
	}
	return out
}

// Saturation returns a matrix scaling saturation by s (0 = grayscale).
func Saturation(s float64) ColorMatrix {
	const lr, lg, lb = 0.2126, 0.7152, 0.0722
	return ColorMatrix{
		lr*(1-s) + s, lg * (1 - s), lb * (1 - s), 0, 0,
		lr * (1 - s), lg*(1-s) + s, lb * (1 - s), 0, 0,
		lr * (1 - s), lg * (1 - s), lb*(1-s) + s, 0, 0,
		0, 0, 0, 1, 0,
	}
}

// Tint returns a matrix replacing the color channels with c while keeping
// the source alpha scaled by c's alpha.
func Tint(c Color) ColorMatrix {
	return ColorMatrix{
		0, 0, 0, 0, c.R,
		0, 0, 0, 0, c.G,
		0, 0, 0, 0, c.B,
		0, 0, 0, c.A, 0,
	}
}

// ColorFilter transforms every pixel of a layer when it is composited.
type ColorFilter struct {
	Matrix ColorMatrix
}

// FilterKind identifies an image filter.
type FilterKind int

const (
	BlurFilter FilterKind = iota
	DropShadowFilter
	ColorMatrixFilter
)

// ImageFilter operates on the flattened pixels of a layer. Filters chain
// through Input, which is applied first.
type ImageFilter struct {
	Kind FilterKind

	// Blur and drop shadow.
	Sigma float64
	// Drop shadow offset and color.
	Dx, Dy float64
	Color  Color
	// Color matrix filter.
	Matrix ColorMatrix

	Input *ImageFilter
}

// Blur returns a Gaussian blur filter.
func Blur(sigma float64) *ImageFilter {
	return &ImageFilter{Kind: BlurFilter, Sigma: sigma}
}

// DropShadow returns a filter drawing a blurred, offset, tinted copy of the
// layer beneath the layer itself.
func DropShadow(dx, dy, sigma float64, c Color) *ImageFilter {
	return &ImageFilter{Kind: DropShadowFilter, Dx: dx, Dy: dy, Sigma: sigma, Color: c}
}

// ColorMatrixImageFilter returns a filter applying m to every pixel.
func ColorMatrixImageFilter(m ColorMatrix) *ImageFilter {
	return &ImageFilter{Kind: ColorMatrixFilter, Matrix: m}
}

// Then returns a copy of next that runs after f.
func (f *ImageFilter) Then(next *ImageFilter) *ImageFilter {
	if f == nil {
		return next
	}
	if next == nil {
		return f
	}
	out := *next
	if out.Input != nil {
		out.Input = f.Then(out.Input)
	} else {
		out.Input = f
	}
	return &out
}

// Chain returns the filters in application order.
func (f *ImageFilter) Chain() []*ImageFilter {
	if f == nil {
		return nil
	}
	return append(f.Input.Chain(), f)
}
