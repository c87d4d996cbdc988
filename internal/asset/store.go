package asset

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/inamate/inamate/render-go/internal/scene"
)

var (
	ErrNotFound = errors.New("asset not found")
	ErrNotReady = errors.New("asset not ready")
)

type entry struct {
	handle *scene.StaticImage
	err    error
}

// Store decodes stored asset files on demand and keeps them in memory. Image
// never blocks: the first request for an asset starts decoding in the
// background and reports not ready until it finishes.
type Store struct {
	dir string

	mu      sync.RWMutex
	entries map[string]*entry
	pending map[string]struct{}
	loads   singleflight.Group

	onReady func(assetID string)
}

func NewStore(dir string) *Store {
	return &Store{
		dir:     dir,
		entries: make(map[string]*entry),
		pending: make(map[string]struct{}),
	}
}

// OnReady registers fn to be called after an asset finished decoding in the
// background. It must be set before the store is used.
func (s *Store) OnReady(fn func(assetID string)) {
	s.onReady = fn
}

// Image implements engine.ImageSource.
func (s *Store) Image(assetID string) (scene.ImageHandle, bool) {
	h, err := s.Lookup(assetID)
	if errors.Is(err, ErrNotReady) && s.markPending(assetID) {
		go s.loadAsync(assetID)
	}
	if err != nil {
		return nil, false
	}
	return h, true
}

// Lookup returns a decoded asset without loading it. It fails with
// ErrNotReady when the asset was not decoded yet.
func (s *Store) Lookup(assetID string) (scene.ImageHandle, error) {
	s.mu.RLock()
	e, ok := s.entries[assetID]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotReady
	}
	if e.err != nil {
		return nil, e.err
	}
	return e.handle, nil
}

// Load decodes an asset synchronously. Concurrent loads of one asset share a
// single decode.
func (s *Store) Load(assetID string) (scene.ImageHandle, error) {
	if h, err := s.Lookup(assetID); !errors.Is(err, ErrNotReady) {
		return h, err
	}

	v, err, _ := s.loads.Do(assetID, func() (any, error) {
		img, err := s.decode(assetID)
		e := &entry{err: err}
		if err == nil {
			e.handle = &scene.StaticImage{Key: assetID, Img: img}
		}
		s.mu.Lock()
		s.entries[assetID] = e
		s.mu.Unlock()
		return e.handle, err
	})
	if err != nil {
		return nil, err
	}
	return v.(*scene.StaticImage), nil
}

// Preload decodes all assets in parallel and returns the first error.
func (s *Store) Preload(ctx context.Context, assetIDs []string) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, id := range assetIDs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			_, err := s.Load(id)
			return err
		})
	}
	return g.Wait()
}

// Put stores an already decoded image, for example right after upload.
func (s *Store) Put(assetID string, img image.Image) {
	s.mu.Lock()
	s.entries[assetID] = &entry{handle: &scene.StaticImage{Key: assetID, Img: img}}
	s.mu.Unlock()
}

// Forget drops a cached asset.
func (s *Store) Forget(assetID string) {
	s.mu.Lock()
	delete(s.entries, assetID)
	s.mu.Unlock()
}

// markPending reports whether the caller should start a background decode.
// At most one is in flight per asset.
func (s *Store) markPending(assetID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.pending[assetID]; ok {
		return false
	}
	if _, ok := s.entries[assetID]; ok {
		return false
	}
	s.pending[assetID] = struct{}{}
	return true
}

func (s *Store) loadAsync(assetID string) {
	_, err := s.Load(assetID)
	s.mu.Lock()
	delete(s.pending, assetID)
	s.mu.Unlock()
	if err != nil {
		slog.Warn("decode asset", "asset", assetID, "error", err)
		return
	}
	if s.onReady != nil {
		s.onReady(assetID)
	}
}

func (s *Store) path(assetID string) string {
	return filepath.Join(s.dir, filepath.Base(assetID)+".png")
}

func (s *Store) decode(assetID string) (image.Image, error) {
	f, err := os.Open(s.path(assetID))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", assetID, ErrNotFound)
		}
		return nil, fmt.Errorf("open asset: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode asset %s: %w", assetID, err)
	}
	return img, nil
}
