// Package project manages stored design documents and renders them for
// clients.
package project

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/inamate/inamate/render-go/internal/document"
	"github.com/inamate/inamate/render-go/internal/engine"
	"github.com/inamate/inamate/render-go/internal/store"
	"github.com/inamate/inamate/render-go/internal/typeid"
)

var (
	ErrNotFound        = errors.New("document not found")
	ErrInvalidDocument = errors.New("invalid document")
)

// Repository persists document snapshots. *store.Store implements it.
type Repository interface {
	CreateDocument(ctx context.Context, id, name string, doc json.RawMessage) (*store.Snapshot, error)
	SaveSnapshot(ctx context.Context, documentID string, doc json.RawMessage) (*store.Snapshot, error)
	LatestSnapshot(ctx context.Context, documentID string) (*store.Snapshot, error)
	ListDocuments(ctx context.Context) ([]store.DocumentInfo, error)
	DeleteDocument(ctx context.Context, id string) error
}

type Service struct {
	repo   Repository
	images engine.ImageSource

	mu        sync.RWMutex
	listeners []func(documentID string)
}

func NewService(repo Repository, images engine.ImageSource) *Service {
	return &Service{repo: repo, images: images}
}

// OnChange registers fn to be called after a document was saved.
func (s *Service) OnChange(fn func(documentID string)) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

func (s *Service) notify(documentID string) {
	s.mu.RLock()
	listeners := s.listeners
	s.mu.RUnlock()
	for _, fn := range listeners {
		fn(documentID)
	}
}

// Create stores a new empty document and returns it.
func (s *Service) Create(ctx context.Context, name string) (*document.Document, error) {
	doc := document.NewEmptyDocument(typeid.NewDocumentID(), name, typeid.NewPageID(), typeid.NewLayerID())

	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal empty document: %w", err)
	}
	if _, err := s.repo.CreateDocument(ctx, doc.Project.ID, name, data); err != nil {
		return nil, fmt.Errorf("create document: %w", err)
	}
	return doc, nil
}

// Get loads the latest version of a document.
func (s *Service) Get(ctx context.Context, documentID string) (*document.Document, error) {
	snap, err := s.repo.LatestSnapshot(ctx, documentID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get snapshot: %w", err)
	}

	var doc document.Document
	if err := json.Unmarshal(snap.Document, &doc); err != nil {
		return nil, fmt.Errorf("decode document %s: %w", documentID, err)
	}
	doc.Project.Version = int(snap.Version)
	return &doc, nil
}

// Document implements export.DocumentSource.
func (s *Service) Document(ctx context.Context, documentID string) (*document.Document, error) {
	return s.Get(ctx, documentID)
}

// Save validates doc and stores it as the next version.
func (s *Service) Save(ctx context.Context, documentID string, doc *document.Document) (int32, error) {
	if err := doc.Validate(); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	doc.Project.ID = documentID

	data, err := json.Marshal(doc)
	if err != nil {
		return 0, fmt.Errorf("marshal document: %w", err)
	}
	snap, err := s.repo.SaveSnapshot(ctx, documentID, data)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("save snapshot: %w", err)
	}

	slog.Info("document saved", "document", documentID, "version", snap.Version)
	s.notify(documentID)
	return snap.Version, nil
}

func (s *Service) List(ctx context.Context) ([]store.DocumentInfo, error) {
	docs, err := s.repo.ListDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}

func (s *Service) Delete(ctx context.Context, documentID string) error {
	if err := s.repo.DeleteDocument(ctx, documentID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

// Commands renders one page of a document and returns the recorded draw
// commands as JSON. An empty pageID selects the first page.
func (s *Service) Commands(ctx context.Context, documentID, pageID string, zoom float64) ([]byte, error) {
	doc, err := s.Get(ctx, documentID)
	if err != nil {
		return nil, err
	}

	eng := engine.New(s.images)
	eng.SetDocument(doc)
	if pageID != "" {
		if err := eng.SetPage(pageID); err != nil {
			return nil, err
		}
	}
	eng.SetZoom(zoom)

	cmds, err := eng.RenderCommands()
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", documentID, err)
	}
	return cmds, nil
}
