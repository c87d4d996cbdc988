package engine

import (
	"fmt"
	"log/slog"

	"github.com/inamate/inamate/render-go/internal/curve"
	"github.com/inamate/inamate/render-go/internal/document"
	"github.com/inamate/inamate/render-go/internal/geom"
	"github.com/inamate/inamate/render-go/internal/paint"
	"github.com/inamate/inamate/render-go/internal/path"
	"github.com/inamate/inamate/render-go/internal/scene"
)

// ImageSource resolves decoded images by asset ID. It reports false while an
// image is missing or still decoding; such layers are left out of the frame.
type ImageSource interface {
	Image(assetID string) (scene.ImageHandle, bool)
}

// BuildOptions control how a page is turned into scene elements.
type BuildOptions struct {
	// Zoom is the viewport scale. Images are drawn with cubic resampling when
	// magnified.
	Zoom   float64
	Images ImageSource
}

// BuildScene builds the scene for one page of doc. Invisible layers and
// layers whose image is not ready are skipped.
func BuildScene(doc *document.Document, pageID string, opts BuildOptions) (*Scene, error) {
	page, ok := doc.Pages[pageID]
	if !ok {
		return nil, fmt.Errorf("page %s: %w", pageID, ErrPageNotFound)
	}
	sc := newScene(pageID, page)

	pageRect := geom.Rect{Width: float64(page.Width), Height: float64(page.Height)}
	if page.Background != "" {
		bg, err := paint.ParseHex(page.Background)
		if err != nil {
			return nil, fmt.Errorf("page %s background: %w", pageID, err)
		}
		sc.Elements = append(sc.Elements, &scene.Rect{ID: pageID, Rect: pageRect, Paint: paint.SolidPaint(bg)})
	}

	root, ok := doc.Layers[page.Root]
	if !ok {
		return sc, nil
	}

	b := &builder{doc: doc, opts: opts, sc: sc}
	el, node := b.layer(&root, nil, geom.Identity())
	if el != nil {
		sc.Elements = append(sc.Elements, el)
	}
	sc.Root = node
	return sc, nil
}

type builder struct {
	doc  *document.Document
	opts BuildOptions
	sc   *Scene
}

// layerMatrix maps a layer's local space, with its frame at the origin, into
// the parent's space. Rotation and flips pivot on the frame center.
func layerMatrix(l *document.Layer) geom.Matrix2D {
	cx, cy := l.Frame.Width/2, l.Frame.Height/2
	sx, sy := 1.0, 1.0
	if l.FlipH {
		sx = -1
	}
	if l.FlipV {
		sy = -1
	}
	return geom.FromTransform(l.Frame.X, l.Frame.Y, sx, sy, l.Rotation, cx, cy)
}

func (b *builder) layer(l *document.Layer, parent *Node, parentWorld geom.Matrix2D) (scene.Element, *Node) {
	if !l.Visible || !(l.Style.Opacity > 0) {
		return nil, nil
	}

	local := layerMatrix(l)
	world := parentWorld.Multiply(local)
	node := &Node{ID: l.ID, Type: l.Type, World: world, Parent: parent}

	frame := geom.Rect{Width: l.Frame.Width, Height: l.Frame.Height}

	var content []scene.Element
	var err error
	switch l.Type {
	case document.LayerTypeGroup:
		content, err = b.group(l, node, world, frame)
	case document.LayerTypeRectangle:
		content, err = b.rectangle(l, frame)
	case document.LayerTypeOval:
		content = b.shape(l, curve.BuildPath(curve.OvalPoints(), frame, 0), frame)
	case document.LayerTypeShape:
		var data document.ShapeData
		if err = l.DecodeData(&data); err == nil {
			content = b.shape(l, curve.BuildPath(data.Points, frame, data.CornerRadius), frame)
		}
	case document.LayerTypeImage:
		content, err = b.image(l, frame)
	case document.LayerTypeText:
		content, err = b.text(l, frame)
	default:
		err = fmt.Errorf("unknown layer type %q", l.Type)
	}
	if err != nil {
		slog.Warn("skip layer", "layer", l.ID, "error", err)
		return nil, nil
	}
	if len(content) == 0 && l.Type != document.LayerTypeGroup {
		return nil, nil
	}

	if l.Type != document.LayerTypeGroup {
		node.Bounds = world.TransformRect(frame)
	}
	b.sc.NodesByID[l.ID] = node

	g := &scene.Group{
		ID:        l.ID,
		Transform: &local,
		Opacity:   l.Style.Opacity,
		Children:  content,
	}
	applyEffects(g, l.Style)
	return g, node
}

func (b *builder) group(l *document.Layer, node *Node, world geom.Matrix2D, frame geom.Rect) ([]scene.Element, error) {
	var data document.GroupData
	if err := l.DecodeData(&data); err != nil {
		return nil, err
	}

	var children []scene.Element
	for _, childID := range l.Children {
		child, ok := b.doc.Layers[childID]
		if !ok {
			continue
		}
		el, childNode := b.layer(&child, node, world)
		if el == nil {
			continue
		}
		children = append(children, el)
		node.Children = append(node.Children, childNode)
		if !childNode.Bounds.IsEmpty() {
			node.Bounds = node.Bounds.Union(childNode.Bounds)
		}
	}

	if data.ClipsContent && len(children) > 0 {
		clip := frame
		return []scene.Element{&scene.Group{
			ID:       l.ID + "/clip",
			Opacity:  1,
			Clip:     &scene.Clip{Rect: &clip},
			Children: children,
		}}, nil
	}
	return children, nil
}

func (b *builder) rectangle(l *document.Layer, frame geom.Rect) ([]scene.Element, error) {
	var data document.RectangleData
	if err := l.DecodeData(&data); err != nil {
		return nil, err
	}

	outline := curve.BuildPath(curve.RectanglePoints(), frame, data.CornerRadius)
	unit := unitMatrix(frame)

	var out []scene.Element
	out = append(out, outsideBorders(l, outline, unit)...)
	for _, f := range l.Style.Fills {
		if !f.Enabled {
			continue
		}
		r := &scene.Rect{ID: l.ID, Rect: frame, Paint: paint.Resolve(f.Descriptor, unit)}
		if data.CornerRadius > 0 {
			radius := data.CornerRadius
			if half := min(frame.Width, frame.Height) / 2; radius > half {
				radius = half
			}
			r.CornerRadius = &radius
		}
		out = append(out, r)
	}
	out = append(out, borders(l, outline, unit)...)
	return out, nil
}

func (b *builder) shape(l *document.Layer, outline *path.Path, frame geom.Rect) []scene.Element {
	unit := unitMatrix(frame)

	var out []scene.Element
	out = append(out, outsideBorders(l, outline, unit)...)
	for _, f := range l.Style.Fills {
		if !f.Enabled {
			continue
		}
		out = append(out, &scene.Path{ID: l.ID, Path: outline, Paint: paint.Resolve(f.Descriptor, unit)})
	}
	return append(out, borders(l, outline, unit)...)
}

// borders emits center and inside borders. Inside borders are drawn at double
// width clipped to the outline.
func borders(l *document.Layer, outline *path.Path, unit geom.Matrix2D) []scene.Element {
	var out []scene.Element
	for _, border := range l.Style.Borders {
		stroke := paint.ResolveStroke(border, unit)
		switch stroke.Position {
		case paint.Center:
			out = append(out, &scene.Path{ID: l.ID, Path: outline, Paint: stroke.Paint})
		case paint.Inside:
			stroke.StrokeWidth *= 2
			out = append(out, &scene.Group{
				ID:       l.ID + "/border",
				Opacity:  1,
				Clip:     &scene.Clip{Path: outline},
				Children: []scene.Element{&scene.Path{ID: l.ID, Path: outline, Paint: stroke.Paint}},
			})
		}
	}
	return out
}

// outsideBorders emits outside borders at double width beneath the fills,
// which cover the inner half.
func outsideBorders(l *document.Layer, outline *path.Path, unit geom.Matrix2D) []scene.Element {
	var out []scene.Element
	for _, border := range l.Style.Borders {
		stroke := paint.ResolveStroke(border, unit)
		if stroke.Position != paint.Outside {
			continue
		}
		stroke.StrokeWidth *= 2
		out = append(out, &scene.Path{ID: l.ID, Path: outline, Paint: stroke.Paint})
	}
	return out
}

func (b *builder) image(l *document.Layer, frame geom.Rect) ([]scene.Element, error) {
	var data document.ImageData
	if err := l.DecodeData(&data); err != nil {
		return nil, err
	}
	if b.opts.Images == nil {
		return nil, nil
	}
	img, ok := b.opts.Images.Image(data.AssetID)
	if !ok {
		slog.Debug("image not ready", "layer", l.ID, "asset", data.AssetID)
		return nil, nil
	}
	return []scene.Element{&scene.Image{
		ID:       l.ID,
		Rect:     frame,
		Image:    img,
		Paint:    paint.SolidPaint(paint.White),
		Resample: b.opts.Zoom > 1,
	}}, nil
}

func (b *builder) text(l *document.Layer, frame geom.Rect) ([]scene.Element, error) {
	var data document.TextData
	if err := l.DecodeData(&data); err != nil {
		return nil, err
	}
	if data.Text == "" {
		return nil, nil
	}
	size := data.FontSize
	if !(size > 0) {
		size = 14
	}
	return []scene.Element{&scene.Text{
		ID:        l.ID,
		Rect:      frame,
		Paragraph: scene.NewLines(data.Text, size, data.Color),
	}}, nil
}

// unitMatrix maps gradient unit space onto frame.
func unitMatrix(frame geom.Rect) geom.Matrix2D {
	return geom.Multiply(geom.Translate(frame.X, frame.Y), geom.Scale(frame.Width, frame.Height))
}

// applyEffects maps layer effects onto group compositing. Blur and shadow
// radii are converted to gaussian sigmas.
func applyEffects(g *scene.Group, style document.Style) {
	if style.Saturation != nil && *style.Saturation != 1 {
		g.ColorFilter = &paint.ColorFilter{Matrix: paint.Saturation(*style.Saturation)}
	}

	var filter *paint.ImageFilter
	if blur := style.Blur; blur != nil && blur.Enabled && blur.Radius > 0 {
		if blur.Background {
			g.BackdropFilter = paint.Blur(blur.Radius / 2)
		} else {
			filter = paint.Blur(blur.Radius / 2)
		}
	}
	for _, s := range style.Shadows {
		if !s.Enabled {
			continue
		}
		filter = filter.Then(paint.DropShadow(s.X, s.Y, s.Blur/2, s.Color))
	}
	g.ImageFilter = filter
}
