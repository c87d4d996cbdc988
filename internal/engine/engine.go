package engine

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/inamate/inamate/render-go/internal/canvas"
	"github.com/inamate/inamate/render-go/internal/document"
	"github.com/inamate/inamate/render-go/internal/geom"
)

var (
	ErrNoDocument   = errors.New("no document loaded")
	ErrPageNotFound = errors.New("page not found")
)

// Engine owns a loaded document and the view state used to render it: the
// current page, zoom and selection. The scene is rebuilt lazily after any
// change. An Engine is not safe for concurrent use.
type Engine struct {
	doc    *document.Document
	pageID string
	zoom   float64
	images ImageSource

	sc        *Scene
	selection []string
	dirty     bool
}

// New creates an engine resolving images through images, which may be nil.
func New(images ImageSource) *Engine {
	return &Engine{zoom: 1, images: images, dirty: true}
}

// --- Commands ---

// LoadDocument loads a document from JSON and shows its first page.
func (e *Engine) LoadDocument(data []byte) error {
	var doc document.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	if err := doc.Validate(); err != nil {
		return fmt.Errorf("validate document: %w", err)
	}
	e.SetDocument(&doc)
	return nil
}

// SetDocument replaces the document. The current page is kept when it still
// exists, otherwise the first page is shown.
func (e *Engine) SetDocument(doc *document.Document) {
	e.doc = doc
	if _, ok := doc.Pages[e.pageID]; !ok {
		e.pageID = ""
		if len(doc.Project.Pages) > 0 {
			e.pageID = doc.Project.Pages[0]
		}
	}
	e.dirty = true
}

// LoadSampleDocument loads the built-in sample document.
func (e *Engine) LoadSampleDocument(projectID string) {
	e.SetDocument(document.NewSampleDocument(projectID))
}

// SetPage selects the page to render.
func (e *Engine) SetPage(pageID string) error {
	if e.doc == nil {
		return ErrNoDocument
	}
	if _, ok := e.doc.Pages[pageID]; !ok {
		return fmt.Errorf("page %s: %w", pageID, ErrPageNotFound)
	}
	if e.pageID != pageID {
		e.pageID = pageID
		e.selection = nil
		e.dirty = true
	}
	return nil
}

// SetZoom sets the viewport scale. Non-positive values reset it to 1.
func (e *Engine) SetZoom(zoom float64) {
	if !(zoom > 0) {
		zoom = 1
	}
	if e.zoom != zoom {
		e.zoom = zoom
		e.dirty = true
	}
}

// SetSelection sets the selected layer IDs.
func (e *Engine) SetSelection(ids []string) {
	e.selection = ids
}

// Invalidate forces the next render to rebuild the scene, for example after
// an image finished loading.
func (e *Engine) Invalidate() {
	e.dirty = true
}

// --- Queries ---

// Scene returns the scene of the current page, rebuilding it if needed.
func (e *Engine) Scene() (*Scene, error) {
	if e.doc == nil {
		return nil, ErrNoDocument
	}
	if e.dirty || e.sc == nil {
		sc, err := BuildScene(e.doc, e.pageID, BuildOptions{Zoom: e.zoom, Images: e.images})
		if err != nil {
			return nil, err
		}
		e.sc = sc
		e.dirty = false
	}
	return e.sc, nil
}

// Render draws the current page onto c.
func (e *Engine) Render(c canvas.Canvas) error {
	sc, err := e.Scene()
	if err != nil {
		return err
	}
	return Draw(sc.Elements, c)
}

// RenderCommands renders the current page into a recorder and returns the
// draw commands as JSON.
func (e *Engine) RenderCommands() ([]byte, error) {
	rec := canvas.NewRecorder()
	if err := e.Render(rec); err != nil {
		return nil, err
	}
	return rec.JSON()
}

// HitTest returns the front-most layer at page point (x, y), or "".
func (e *Engine) HitTest(x, y float64) string {
	sc, err := e.Scene()
	if err != nil {
		return ""
	}
	return HitTest(sc, x, y)
}

// SelectionBounds returns the page-space bounds of the current selection.
func (e *Engine) SelectionBounds() geom.Rect {
	sc, err := e.Scene()
	if err != nil || len(e.selection) == 0 {
		return geom.Rect{}
	}
	return SelectionBounds(sc, e.selection)
}

// Document returns the loaded document, or nil.
func (e *Engine) Document() *document.Document { return e.doc }

// PageID returns the current page.
func (e *Engine) PageID() string { return e.pageID }

// Zoom returns the viewport scale.
func (e *Engine) Zoom() float64 { return e.zoom }

// Selection returns the selected layer IDs.
func (e *Engine) Selection() []string { return e.selection }
