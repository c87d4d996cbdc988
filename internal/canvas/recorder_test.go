package canvas

import (
	"encoding/json"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/inamate/render-go/internal/geom"
	"github.com/inamate/inamate/render-go/internal/paint"
	"github.com/inamate/inamate/render-go/internal/path"
	"github.com/inamate/inamate/render-go/internal/scene"
)

func TestSaveCount(t *testing.T) {
	r := NewRecorder()
	assert.Equal(t, 1, r.SaveCount())

	assert.Equal(t, 1, r.Save())
	assert.Equal(t, 2, r.SaveLayer(LayerPaint{Alpha: 0.5}, nil))
	assert.Equal(t, 3, r.SaveCount())
	assert.Equal(t, 3, r.MaxDepth())
	assert.Equal(t, 1, r.SaveLayerCount())

	r.RestoreToCount(2)
	assert.Equal(t, 2, r.SaveCount())

	r.RestoreToCount(-4)
	assert.Equal(t, 1, r.SaveCount())

	// Restoring an empty stack records nothing.
	n := len(r.Commands)
	r.Restore()
	assert.Len(t, r.Commands, n)
}

func TestRestoreUndoesConcat(t *testing.T) {
	r := NewRecorder()
	r.Concat(geom.Translate(10, 0))
	saved := r.Save()
	r.Concat(geom.Scale(2, 2))
	assert.Equal(t, geom.Translate(10, 0).Multiply(geom.Scale(2, 2)), r.Transform())

	r.RestoreToCount(saved)
	assert.Equal(t, geom.Translate(10, 0), r.Transform())
}

func TestDrawCommandsCarryTransformAndPaint(t *testing.T) {
	r := NewRecorder()
	r.Concat(geom.Translate(5, 6))
	r.Annotate("rect_1")
	require.NoError(t, r.DrawRect(geom.Rect{Width: 10, Height: 20}, paint.SolidPaint(paint.MustHex("#ff0000"))))

	stroke := paint.Paint{Style: paint.Stroke, Color: paint.Black, StrokeWidth: 2, Cap: paint.CapRound, Join: paint.JoinBevel}
	require.NoError(t, r.DrawRRect(RRect(geom.Rect{Width: 10, Height: 10}, 3), stroke))

	require.Len(t, r.Commands, 3)
	rect := r.Commands[1]
	assert.Equal(t, "rect", rect.Op)
	assert.Equal(t, "rect_1", rect.ObjectID)
	assert.Equal(t, []float64{1, 0, 0, 1, 5, 6}, rect.Transform)
	assert.Equal(t, "#ff0000ff", rect.Fill)
	assert.Empty(t, rect.Stroke)

	rrect := r.Commands[2]
	assert.Equal(t, "rrect", rrect.Op)
	assert.Equal(t, "#000000ff", rrect.Stroke)
	assert.Equal(t, 2.0, rrect.StrokeWidth)
	assert.Equal(t, "round", rrect.LineCap)
	assert.Equal(t, "bevel", rrect.LineJoin)
	assert.Equal(t, []float64{3, 3, 3, 3, 3, 3, 3, 3}, rrect.Radii)
}

func TestGradientRecord(t *testing.T) {
	r := NewRecorder()
	p := paint.Resolve(paint.Descriptor{Gradient: &paint.Gradient{
		Type:  paint.Radial,
		Stops: []paint.Stop{{Color: paint.White, Position: 0}, {Color: paint.Black, Position: 1}},
		From:  geom.Pt(0.5, 0.5),
		To:    geom.Pt(1, 0.5),
	}}, geom.Scale(10, 10))
	require.NoError(t, r.DrawPath(path.Rect(geom.Rect{Width: 10, Height: 10}), p))

	cmd := r.Commands[0]
	require.NotNil(t, cmd.Gradient)
	assert.Empty(t, cmd.Fill)
	assert.Equal(t, "radial", cmd.Gradient.Kind)
	assert.Equal(t, []float64{10, 0, 0, 10, 0, 0}, cmd.Gradient.Matrix)
	assert.Len(t, cmd.Gradient.Stops, 2)
}

func TestSaveLayerRecord(t *testing.T) {
	r := NewRecorder()
	sat := &paint.ColorFilter{Matrix: paint.Saturation(0)}
	r.SaveLayer(LayerPaint{Alpha: 0.5, ColorFilter: sat, ImageFilter: paint.Blur(2).Then(paint.DropShadow(1, 1, 2, paint.Black))}, paint.Blur(8))

	cmd := r.Commands[0]
	assert.Equal(t, "saveLayer", cmd.Op)
	assert.Equal(t, 0.5, cmd.Opacity)
	assert.Equal(t, []string{"blur", "dropShadow"}, cmd.Filters)
	assert.Equal(t, []string{"blur"}, cmd.Backdrop)
	assert.Len(t, cmd.ColorMatrix, 20)
}

func TestImageAndText(t *testing.T) {
	r := NewRecorder()
	img := &scene.StaticImage{Key: "img_1", Img: image.NewRGBA(image.Rect(0, 0, 4, 3))}
	require.NoError(t, r.DrawImage(img, geom.Rect{Width: 8, Height: 6}, paint.SolidPaint(paint.White), SamplingCubic))
	require.NoError(t, r.DrawParagraph(scene.NewLines("hi\nthere", 10, paint.Black), geom.Pt(3, 4)))

	drawn := r.Commands[0]
	assert.Equal(t, "img_1", drawn.ImageAssetID)
	assert.Equal(t, 4.0, drawn.ImageWidth)
	assert.Equal(t, 3.0, drawn.ImageHeight)
	assert.Equal(t, "cubic", drawn.Sampling)

	text := r.Commands[1]
	assert.Equal(t, "text", text.Op)
	assert.Equal(t, []float64{1, 0, 0, 1, 3, 4}, text.Transform)
	require.Len(t, text.Runs, 2)
	assert.Equal(t, "there", text.Runs[1].Text)
}

func TestJSON(t *testing.T) {
	r := NewRecorder()
	data, err := r.JSON()
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))

	r.Save()
	r.ClipRect(geom.Rect{Width: 5, Height: 5})
	r.Restore()
	data, err = r.JSON()
	require.NoError(t, err)

	var out []map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, []string{"save", "clipRect", "restore"}, r.Ops())
	assert.Equal(t, "clipRect", out[1]["op"])
	assert.NotContains(t, out[0], "transform")

	r.Reset()
	assert.Empty(t, r.Commands)
	assert.Equal(t, 1, r.MaxDepth())
}
