package project

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/inamate/inamate/render-go/internal/auth"
	"github.com/inamate/inamate/render-go/internal/document"
	"github.com/inamate/inamate/render-go/internal/engine"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type createRequest struct {
	Name string `json:"name"`
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	doc, err := h.service.Create(r.Context(), req.Name)
	if err != nil {
		slog.Error("create document failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	slog.Info("document created", "viewer", auth.ViewerFromContext(r.Context()), "document", doc.Project.ID)
	writeJSON(w, http.StatusCreated, doc)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	documentID := mux.Vars(r)["documentId"]

	doc, err := h.service.Get(r.Context(), documentID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, doc)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	docs, err := h.service.List(r.Context())
	if err != nil {
		slog.Error("list documents failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	writeJSON(w, http.StatusOK, docs)
}

func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	documentID := mux.Vars(r)["documentId"]

	var doc document.Document
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	version, err := h.service.Save(r.Context(), documentID, &doc)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	slog.Info("document saved", "viewer", auth.ViewerFromContext(r.Context()), "document", documentID, "version", version)
	writeJSON(w, http.StatusOK, map[string]any{"id": documentID, "version": version})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	documentID := mux.Vars(r)["documentId"]

	if err := h.service.Delete(r.Context(), documentID); err != nil {
		handleServiceError(w, err)
		return
	}

	slog.Info("document deleted", "viewer", auth.ViewerFromContext(r.Context()), "document", documentID)
	w.WriteHeader(http.StatusNoContent)
}

// Commands handles GET /api/documents/{documentId}/commands?page=&zoom=.
func (h *Handler) Commands(w http.ResponseWriter, r *http.Request) {
	documentID := mux.Vars(r)["documentId"]
	q := r.URL.Query()

	zoom := 1.0
	if z := q.Get("zoom"); z != "" {
		v, err := strconv.ParseFloat(z, 64)
		if err != nil || !(v > 0) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "zoom must be a positive number"})
			return
		}
		zoom = v
	}

	cmds, err := h.service.Commands(r.Context(), documentID, q.Get("page"), zoom)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(cmds)
}

func handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	case errors.Is(err, engine.ErrPageNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "page not found"})
	case errors.Is(err, ErrInvalidDocument):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		slog.Error("service error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
