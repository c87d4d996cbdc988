// Package store persists design documents as versioned JSON snapshots in
// Postgres.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/inamate/inamate/render-go/internal/typeid"
)

var (
	ErrNotFound = errors.New("not found")
	ErrExists   = errors.New("already exists")
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS snapshots (
	id          TEXT PRIMARY KEY,
	document_id TEXT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
	version     INTEGER NOT NULL,
	document    JSONB NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (document_id, version)
);
`

// DocumentInfo is a document listing entry.
type DocumentInfo struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Snapshot is one saved version of a document.
type Snapshot struct {
	ID         string          `json:"id"`
	DocumentID string          `json:"documentId"`
	Version    int32           `json:"version"`
	Document   json.RawMessage `json:"document"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// NewPool connects to Postgres and verifies the connection.
func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	cfg.MaxConns = 10
	cfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

type Store struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Migrate creates the tables if they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// CreateDocument inserts a document together with its first snapshot.
func (s *Store) CreateDocument(ctx context.Context, id, name string, doc json.RawMessage) (*Snapshot, error) {
	var snap *Snapshot
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `INSERT INTO documents (id, name) VALUES ($1, $2)`, id, name)
		if err != nil {
			if isDuplicateKeyError(err) {
				return ErrExists
			}
			return fmt.Errorf("insert document: %w", err)
		}
		snap, err = insertSnapshot(ctx, tx, id, 1, doc)
		return err
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// SaveSnapshot stores doc as the next version of documentID.
func (s *Store) SaveSnapshot(ctx context.Context, documentID string, doc json.RawMessage) (*Snapshot, error) {
	var snap *Snapshot
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		// Lock the document row so concurrent saves get distinct versions.
		var locked string
		err := tx.QueryRow(ctx, `SELECT id FROM documents WHERE id = $1 FOR UPDATE`, documentID).Scan(&locked)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrNotFound
			}
			return fmt.Errorf("lock document: %w", err)
		}

		var next int32
		err = tx.QueryRow(ctx, `
			SELECT COALESCE(MAX(version), 0) + 1
			FROM snapshots
			WHERE document_id = $1`, documentID).Scan(&next)
		if err != nil {
			return fmt.Errorf("next version: %w", err)
		}

		if _, err := tx.Exec(ctx, `UPDATE documents SET updated_at = now() WHERE id = $1`, documentID); err != nil {
			return fmt.Errorf("touch document: %w", err)
		}
		snap, err = insertSnapshot(ctx, tx, documentID, next, doc)
		return err
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

func insertSnapshot(ctx context.Context, tx pgx.Tx, documentID string, version int32, doc json.RawMessage) (*Snapshot, error) {
	snap := Snapshot{
		ID:         typeid.NewSnapshotID(),
		DocumentID: documentID,
		Version:    version,
		Document:   doc,
	}
	err := tx.QueryRow(ctx, `
		INSERT INTO snapshots (id, document_id, version, document)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`,
		snap.ID, snap.DocumentID, snap.Version, []byte(doc),
	).Scan(&snap.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert snapshot: %w", err)
	}
	return &snap, nil
}

// LatestSnapshot returns the newest snapshot of documentID.
func (s *Store) LatestSnapshot(ctx context.Context, documentID string) (*Snapshot, error) {
	var snap Snapshot
	var raw []byte
	err := s.pool.QueryRow(ctx, `
		SELECT id, document_id, version, document, created_at
		FROM snapshots
		WHERE document_id = $1
		ORDER BY version DESC
		LIMIT 1`, documentID,
	).Scan(&snap.ID, &snap.DocumentID, &snap.Version, &raw, &snap.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get snapshot: %w", err)
	}
	snap.Document = raw
	return &snap, nil
}

// ListDocuments returns all documents, most recently updated first.
func (s *Store) ListDocuments(ctx context.Context) ([]DocumentInfo, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, created_at, updated_at
		FROM documents
		ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	docs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (DocumentInfo, error) {
		var d DocumentInfo
		err := row.Scan(&d.ID, &d.Name, &d.CreatedAt, &d.UpdatedAt)
		return d, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan documents: %w", err)
	}
	return docs, nil
}

// DeleteDocument removes a document and all of its snapshots.
func (s *Store) DeleteDocument(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return false
}
