package project

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/inamate/render-go/internal/document"
	"github.com/inamate/inamate/render-go/internal/engine"
	"github.com/inamate/inamate/render-go/internal/store"
)

// memRepo is an in-memory Repository.
type memRepo struct {
	mu    sync.Mutex
	names map[string]string
	snaps map[string][]store.Snapshot
}

func newMemRepo() *memRepo {
	return &memRepo{names: map[string]string{}, snaps: map[string][]store.Snapshot{}}
}

func (m *memRepo) CreateDocument(_ context.Context, id, name string, doc json.RawMessage) (*store.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.names[id]; ok {
		return nil, store.ErrExists
	}
	m.names[id] = name
	snap := store.Snapshot{ID: "snap_1", DocumentID: id, Version: 1, Document: doc, CreatedAt: time.Now()}
	m.snaps[id] = []store.Snapshot{snap}
	return &snap, nil
}

func (m *memRepo) SaveSnapshot(_ context.Context, id string, doc json.RawMessage) (*store.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snaps, ok := m.snaps[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	snap := store.Snapshot{DocumentID: id, Version: int32(len(snaps) + 1), Document: doc}
	m.snaps[id] = append(snaps, snap)
	return &snap, nil
}

func (m *memRepo) LatestSnapshot(_ context.Context, id string) (*store.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snaps, ok := m.snaps[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	snap := snaps[len(snaps)-1]
	return &snap, nil
}

func (m *memRepo) ListDocuments(context.Context) ([]store.DocumentInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []store.DocumentInfo
	for id, name := range m.names {
		out = append(out, store.DocumentInfo{ID: id, Name: name})
	}
	return out, nil
}

func (m *memRepo) DeleteDocument(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.names[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.names, id)
	delete(m.snaps, id)
	return nil
}

func TestCreateAndGet(t *testing.T) {
	ctx := context.Background()
	s := NewService(newMemRepo(), nil)

	doc, err := s.Create(ctx, "Poster")
	require.NoError(t, err)
	assert.Equal(t, "Poster", doc.Project.Name)
	require.Len(t, doc.Project.Pages, 1)

	got, err := s.Get(ctx, doc.Project.ID)
	require.NoError(t, err)
	assert.Equal(t, doc.Project.Pages, got.Project.Pages)
	assert.Equal(t, 1, got.Project.Version)

	_, err = s.Get(ctx, "doc_missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSaveNotifiesListeners(t *testing.T) {
	ctx := context.Background()
	s := NewService(newMemRepo(), nil)
	doc, err := s.Create(ctx, "Poster")
	require.NoError(t, err)

	var changed []string
	s.OnChange(func(id string) { changed = append(changed, id) })

	sample := document.NewSampleDocument("ignored")
	version, err := s.Save(ctx, doc.Project.ID, sample)
	require.NoError(t, err)
	assert.Equal(t, int32(2), version)
	assert.Equal(t, []string{doc.Project.ID}, changed)

	got, err := s.Get(ctx, doc.Project.ID)
	require.NoError(t, err)
	assert.Equal(t, doc.Project.ID, got.Project.ID)
	assert.Len(t, got.Layers, len(sample.Layers))
}

func TestSaveRejectsInvalidDocument(t *testing.T) {
	ctx := context.Background()
	s := NewService(newMemRepo(), nil)
	doc, err := s.Create(ctx, "Poster")
	require.NoError(t, err)

	bad := document.NewSampleDocument("x")
	bad.Project.Pages = append(bad.Project.Pages, "page_missing")
	_, err = s.Save(ctx, doc.Project.ID, bad)
	assert.ErrorIs(t, err, ErrInvalidDocument)
}

func TestCommands(t *testing.T) {
	ctx := context.Background()
	s := NewService(newMemRepo(), nil)
	doc, err := s.Create(ctx, "Poster")
	require.NoError(t, err)
	_, err = s.Save(ctx, doc.Project.ID, document.NewSampleDocument("x"))
	require.NoError(t, err)

	data, err := s.Commands(ctx, doc.Project.ID, "", 2)
	require.NoError(t, err)

	var cmds []map[string]any
	require.NoError(t, json.Unmarshal(data, &cmds))
	require.NotEmpty(t, cmds)

	_, err = s.Commands(ctx, doc.Project.ID, "page_missing", 1)
	assert.ErrorIs(t, err, engine.ErrPageNotFound)
}

func newTestRouter(h *Handler) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/api/documents", h.List).Methods("GET")
	r.HandleFunc("/api/documents", h.Create).Methods("POST")
	r.HandleFunc("/api/documents/{documentId}", h.Get).Methods("GET")
	r.HandleFunc("/api/documents/{documentId}", h.Save).Methods("PUT")
	r.HandleFunc("/api/documents/{documentId}", h.Delete).Methods("DELETE")
	r.HandleFunc("/api/documents/{documentId}/commands", h.Commands).Methods("GET")
	return r
}

func TestHandlers(t *testing.T) {
	s := NewService(newMemRepo(), nil)
	r := newTestRouter(NewHandler(s))

	do := func(method, target, body string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(method, target, strings.NewReader(body)))
		return rec
	}

	rec := do(http.MethodPost, "/api/documents", `{"name":"Poster"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created document.Document
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	id := created.Project.ID

	assert.Equal(t, http.StatusBadRequest, do(http.MethodPost, "/api/documents", `{}`).Code)
	assert.Equal(t, http.StatusOK, do(http.MethodGet, "/api/documents/"+id, "").Code)
	assert.Equal(t, http.StatusNotFound, do(http.MethodGet, "/api/documents/doc_nope", "").Code)

	sample, err := json.Marshal(document.NewSampleDocument("x"))
	require.NoError(t, err)
	rec = do(http.MethodPut, "/api/documents/"+id, string(sample))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":"`+id+`","version":2}`, rec.Body.String())

	rec = do(http.MethodGet, "/api/documents/"+id+"/commands?zoom=2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Body.String(), "["))

	assert.Equal(t, http.StatusBadRequest, do(http.MethodGet, "/api/documents/"+id+"/commands?zoom=-1", "").Code)
	assert.Equal(t, http.StatusNotFound, do(http.MethodGet, "/api/documents/"+id+"/commands?page=page_x", "").Code)

	assert.Equal(t, http.StatusNoContent, do(http.MethodDelete, "/api/documents/"+id, "").Code)
	assert.Equal(t, http.StatusNotFound, do(http.MethodDelete, "/api/documents/"+id, "").Code)
}
