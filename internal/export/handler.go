// Package export renders document pages to PNG or JPEG.
package export

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"golang.org/x/crypto/blake2b"

	"github.com/inamate/inamate/render-go/internal/auth"
	"github.com/inamate/inamate/render-go/internal/canvas"
	"github.com/inamate/inamate/render-go/internal/document"
	"github.com/inamate/inamate/render-go/internal/engine"
	"github.com/inamate/inamate/render-go/internal/geom"
	"github.com/inamate/inamate/render-go/internal/project"
	"github.com/inamate/inamate/render-go/internal/raster"
)

var ErrTooLarge = errors.New("export too large")

// DocumentSource loads documents by ID. *project.Service implements it.
type DocumentSource interface {
	Document(ctx context.Context, documentID string) (*document.Document, error)
}

// Preloader decodes images before a synchronous render. *asset.Store
// implements it.
type Preloader interface {
	Preload(ctx context.Context, assetIDs []string) error
}

// Options select what to render.
type Options struct {
	PageID  string
	Scale   float64
	Format  string // "png" or "jpg"
	Quality int    // JPEG only
}

type Handler struct {
	docs      DocumentSource
	images    engine.ImageSource
	fonts     *raster.Fonts
	maxPixels int
}

func NewHandler(docs DocumentSource, images engine.ImageSource, fonts *raster.Fonts, maxPixels int) *Handler {
	return &Handler{docs: docs, images: images, fonts: fonts, maxPixels: maxPixels}
}

// Render draws one page of doc and returns the encoded image.
func (h *Handler) Render(doc *document.Document, opts Options) ([]byte, error) {
	eng := engine.New(h.images)
	eng.SetDocument(doc)
	if opts.PageID != "" {
		if err := eng.SetPage(opts.PageID); err != nil {
			return nil, err
		}
	}
	eng.SetZoom(opts.Scale)

	page, ok := doc.Pages[eng.PageID()]
	if !ok {
		return nil, engine.ErrPageNotFound
	}
	w := int(math.Ceil(float64(page.Width) * opts.Scale))
	ht := int(math.Ceil(float64(page.Height) * opts.Scale))
	if w <= 0 || ht <= 0 {
		return nil, fmt.Errorf("page %s has no area", page.ID)
	}
	if h.maxPixels > 0 && w*ht > h.maxPixels {
		return nil, fmt.Errorf("%dx%d: %w", w, ht, ErrTooLarge)
	}

	surface, err := raster.NewSurface(w, ht, h.fonts)
	if err != nil {
		return nil, err
	}
	defer surface.Close()

	err = surface.Frame(func(c canvas.Canvas) error {
		c.Concat(geom.Scale(opts.Scale, opts.Scale))
		return eng.Render(c)
	})
	if err != nil {
		return nil, fmt.Errorf("render page %s: %w", page.ID, err)
	}

	var buf bytes.Buffer
	if opts.Format == "jpg" {
		err = surface.EncodeJPEG(&buf, opts.Quality)
	} else {
		err = surface.EncodePNG(&buf)
	}
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", opts.Format, err)
	}
	return buf.Bytes(), nil
}

// Export handles POST /export/{documentId}.{format}?page=&scale=&quality=.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	documentID := vars["documentId"]

	opts := Options{Format: vars["format"], PageID: r.URL.Query().Get("page"), Scale: 1, Quality: 90}
	if opts.Format != "png" && opts.Format != "jpg" {
		http.Error(w, "invalid format: must be png or jpg", http.StatusBadRequest)
		return
	}
	if s := r.URL.Query().Get("scale"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || !(v > 0) || v > 8 {
			http.Error(w, "scale must be in (0, 8]", http.StatusBadRequest)
			return
		}
		opts.Scale = v
	}
	if q := r.URL.Query().Get("quality"); q != "" {
		v, err := strconv.Atoi(q)
		if err != nil || v < 1 || v > 100 {
			http.Error(w, "quality must be in [1, 100]", http.StatusBadRequest)
			return
		}
		opts.Quality = v
	}

	doc, err := h.docs.Document(r.Context(), documentID)
	if err != nil {
		if errors.Is(err, project.ErrNotFound) {
			http.Error(w, "document not found", http.StatusNotFound)
			return
		}
		slog.Error("load document for export", "document", documentID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	if p, ok := h.images.(Preloader); ok {
		if ids := imageAssets(doc); len(ids) > 0 {
			if err := p.Preload(r.Context(), ids); err != nil {
				slog.Warn("preload export images", "document", documentID, "error", err)
			}
		}
	}

	data, err := h.Render(doc, opts)
	if err != nil {
		switch {
		case errors.Is(err, ErrTooLarge):
			http.Error(w, err.Error(), http.StatusRequestEntityTooLarge)
		case errors.Is(err, engine.ErrPageNotFound):
			http.Error(w, "page not found", http.StatusNotFound)
		default:
			slog.Error("export failed", "document", documentID, "error", err)
			http.Error(w, fmt.Sprintf("export failed: %v", err), http.StatusInternalServerError)
		}
		return
	}

	sum := blake2b.Sum256(data)
	etag := `"` + hex.EncodeToString(sum[:16]) + `"`
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	slog.Info("export complete", "viewer", auth.ViewerFromContext(r.Context()), "document", documentID, "format", opts.Format, "scale", opts.Scale, "bytes", len(data))

	contentType := "image/png"
	if opts.Format == "jpg" {
		contentType = "image/jpeg"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.%s"`, documentID, opts.Format))
	w.Write(data)
}

// imageAssets returns the asset IDs referenced by image layers of doc.
func imageAssets(doc *document.Document) []string {
	seen := make(map[string]bool)
	var ids []string
	for _, l := range doc.Layers {
		if l.Type != document.LayerTypeImage {
			continue
		}
		var data document.ImageData
		if err := l.DecodeData(&data); err != nil || data.AssetID == "" || seen[data.AssetID] {
			continue
		}
		seen[data.AssetID] = true
		ids = append(ids, data.AssetID)
	}
	return ids
}
