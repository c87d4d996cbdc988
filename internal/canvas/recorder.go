package canvas

import (
	"encoding/json"

	"github.com/inamate/inamate/render-go/internal/geom"
	"github.com/inamate/inamate/render-go/internal/paint"
	"github.com/inamate/inamate/render-go/internal/path"
	"github.com/inamate/inamate/render-go/internal/scene"
)

// DrawCommand is a single recorded canvas call. A Canvas2D client replays the
// list in order; state ops ("save", "saveLayer", "restore", "clipRect",
// "clipPath", "concat") mirror the canvas stack and draw ops carry the full
// transform in effect.
type DrawCommand struct {
	Op        string     `json:"op"`
	ObjectID  string     `json:"objectId,omitempty"`
	Transform []float64  `json:"transform,omitempty"` // [a, b, c, d, e, f]
	Path      *path.Path `json:"path,omitempty"`
	Rect      *geom.Rect `json:"rect,omitempty"`
	Radii     []float64  `json:"radii,omitempty"` // 8 corner radii for "rrect"

	Fill        string          `json:"fill,omitempty"`
	Stroke      string          `json:"stroke,omitempty"`
	StrokeWidth float64         `json:"strokeWidth,omitempty"`
	LineCap     string          `json:"lineCap,omitempty"`
	LineJoin    string          `json:"lineJoin,omitempty"`
	Gradient    *GradientRecord `json:"gradient,omitempty"`

	Opacity      float64   `json:"opacity,omitempty"` // layer alpha for "saveLayer"
	ColorMatrix  []float64 `json:"colorMatrix,omitempty"`
	Filters      []string  `json:"filters,omitempty"`
	Backdrop     []string  `json:"backdrop,omitempty"`
	ImageAssetID string    `json:"imageAssetId,omitempty"`
	ImageWidth   float64   `json:"imageWidth,omitempty"`
	ImageHeight  float64   `json:"imageHeight,omitempty"`
	Sampling     string    `json:"sampling,omitempty"`

	Runs []scene.TextRun `json:"runs,omitempty"`
}

// GradientRecord is the serialized form of a gradient shader.
type GradientRecord struct {
	Kind   string       `json:"kind"`
	Stops  []paint.Stop `json:"stops"`
	From   geom.Point   `json:"from"`
	To     geom.Point   `json:"to"`
	Matrix []float64    `json:"matrix"`
}

type recState struct {
	ctm   geom.Matrix2D
	layer bool
}

// Recorder is a Canvas that records every call. It also counts layers and
// tracks the deepest save stack seen, for tests and diagnostics.
type Recorder struct {
	Commands []DrawCommand

	stack    []recState
	ctm      geom.Matrix2D
	objectID string

	saveLayers int
	maxDepth   int
}

// NewRecorder returns an empty recorder with save count 1.
func NewRecorder() *Recorder {
	return &Recorder{ctm: geom.Identity(), maxDepth: 1}
}

func (r *Recorder) Annotate(elementID string) { r.objectID = elementID }

func (r *Recorder) SaveCount() int { return len(r.stack) + 1 }

// SaveLayerCount returns how many layers were opened.
func (r *Recorder) SaveLayerCount() int { return r.saveLayers }

// MaxDepth returns the largest save count reached.
func (r *Recorder) MaxDepth() int { return r.maxDepth }

// Transform returns the current transform.
func (r *Recorder) Transform() geom.Matrix2D { return r.ctm }

func (r *Recorder) push(layer bool) int {
	before := r.SaveCount()
	r.stack = append(r.stack, recState{ctm: r.ctm, layer: layer})
	if c := r.SaveCount(); c > r.maxDepth {
		r.maxDepth = c
	}
	return before
}

func (r *Recorder) Save() int {
	r.Commands = append(r.Commands, DrawCommand{Op: "save"})
	return r.push(false)
}

func (r *Recorder) SaveLayer(lp LayerPaint, backdrop *paint.ImageFilter) int {
	cmd := DrawCommand{
		Op:       "saveLayer",
		Opacity:  lp.Alpha,
		Filters:  filterNames(lp.ImageFilter),
		Backdrop: filterNames(backdrop),
	}
	if lp.ColorFilter != nil {
		cmd.ColorMatrix = append([]float64(nil), lp.ColorFilter.Matrix[:]...)
	}
	r.Commands = append(r.Commands, cmd)
	r.saveLayers++
	return r.push(true)
}

func (r *Recorder) Restore() {
	if len(r.stack) == 0 {
		return
	}
	top := r.stack[len(r.stack)-1]
	r.stack = r.stack[:len(r.stack)-1]
	r.ctm = top.ctm
	r.Commands = append(r.Commands, DrawCommand{Op: "restore"})
}

func (r *Recorder) RestoreToCount(count int) {
	if count < 1 {
		count = 1
	}
	for r.SaveCount() > count {
		r.Restore()
	}
}

func (r *Recorder) ClipRect(rect geom.Rect) {
	rc := rect
	r.Commands = append(r.Commands, DrawCommand{Op: "clipRect", Transform: r.ctm.ToSlice(), Rect: &rc})
}

func (r *Recorder) ClipPath(p *path.Path) {
	r.Commands = append(r.Commands, DrawCommand{Op: "clipPath", Transform: r.ctm.ToSlice(), Path: p})
}

func (r *Recorder) Concat(m geom.Matrix2D) {
	r.ctm = r.ctm.Multiply(m)
	r.Commands = append(r.Commands, DrawCommand{Op: "concat", Transform: m.ToSlice()})
}

func (r *Recorder) draw(op string, p paint.Paint) DrawCommand {
	cmd := DrawCommand{Op: op, ObjectID: r.objectID, Transform: r.ctm.ToSlice()}
	applyPaint(&cmd, p)
	return cmd
}

func (r *Recorder) DrawRect(rect geom.Rect, p paint.Paint) error {
	cmd := r.draw("rect", p)
	rc := rect
	cmd.Rect = &rc
	r.Commands = append(r.Commands, cmd)
	return nil
}

func (r *Recorder) DrawRRect(rrect [12]float64, p paint.Paint) error {
	cmd := r.draw("rrect", p)
	rc := geom.RectFromLTRB(rrect[0], rrect[1], rrect[2], rrect[3])
	cmd.Rect = &rc
	cmd.Radii = append([]float64(nil), rrect[4:]...)
	r.Commands = append(r.Commands, cmd)
	return nil
}

func (r *Recorder) DrawPath(pth *path.Path, p paint.Paint) error {
	cmd := r.draw("path", p)
	cmd.Path = pth
	r.Commands = append(r.Commands, cmd)
	return nil
}

func (r *Recorder) DrawImage(img scene.ImageHandle, dst geom.Rect, p paint.Paint, s Sampling) error {
	cmd := r.draw("image", p)
	rc := dst
	cmd.Rect = &rc
	cmd.Sampling = s.String()
	if img != nil {
		w, h := img.Size()
		cmd.ImageAssetID = img.ID()
		cmd.ImageWidth, cmd.ImageHeight = float64(w), float64(h)
	}
	r.Commands = append(r.Commands, cmd)
	return nil
}

func (r *Recorder) DrawParagraph(para scene.Paragraph, origin geom.Point) error {
	cmd := DrawCommand{
		Op:        "text",
		ObjectID:  r.objectID,
		Transform: r.ctm.Multiply(geom.Translate(origin.X, origin.Y)).ToSlice(),
	}
	if para != nil {
		cmd.Runs = para.Runs()
	}
	r.Commands = append(r.Commands, cmd)
	return nil
}

// Ops returns the op names in recorded order.
func (r *Recorder) Ops() []string {
	ops := make([]string, len(r.Commands))
	for i, c := range r.Commands {
		ops[i] = c.Op
	}
	return ops
}

// JSON serializes the recorded commands.
func (r *Recorder) JSON() ([]byte, error) {
	if r.Commands == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(r.Commands)
}

// Reset clears the recording and the save stack.
func (r *Recorder) Reset() {
	r.Commands = nil
	r.stack = nil
	r.ctm = geom.Identity()
	r.objectID = ""
	r.saveLayers = 0
	r.maxDepth = 1
}

func applyPaint(cmd *DrawCommand, p paint.Paint) {
	var color string
	if p.Shader != nil {
		cmd.Gradient = &GradientRecord{
			Kind:   shaderName(p.Shader.Kind),
			Stops:  p.Shader.Stops,
			From:   p.Shader.From,
			To:     p.Shader.To,
			Matrix: p.Shader.Local.ToSlice(),
		}
	} else {
		color = p.Color.Hex()
	}

	if p.Style == paint.Stroke {
		cmd.Stroke = color
		cmd.StrokeWidth = p.StrokeWidth
		cmd.LineCap = string(p.Cap)
		cmd.LineJoin = string(p.Join)
		return
	}
	cmd.Fill = color
}

func shaderName(k paint.ShaderKind) string {
	switch k {
	case paint.RadialShader:
		return "radial"
	case paint.SweepShader:
		return "sweep"
	default:
		return "linear"
	}
}

func filterNames(f *paint.ImageFilter) []string {
	var names []string
	for _, step := range f.Chain() {
		switch step.Kind {
		case paint.BlurFilter:
			names = append(names, "blur")
		case paint.DropShadowFilter:
			names = append(names, "dropShadow")
		case paint.ColorMatrixFilter:
			names = append(names, "colorMatrix")
		}
	}
	return names
}
