// Package store persists outline results so they can be downloaded again,
// listed per user and reused for identical uploads.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/dgallion1/docoutline/internal/outline"
)

// ErrNotFound is returned when no stored result matches.
var ErrNotFound = errors.New("not found")

// Record describes one stored document run.
type Record struct {
	DocID       string    `json:"doc_id"`
	UserID      string    `json:"user_id"`
	Filename    string    `json:"filename"`
	Title       string    `json:"title"`
	ContentHash string    `json:"content_hash"`
	Headers     []string  `json:"headers"`
	Sections    int       `json:"sections"`
	Terms       int       `json:"terms"`
	CreatedAt   time.Time `json:"created_at"`
}

// Result is a record with its artifacts: the rendered outline and the
// extracted terms.
type Result struct {
	Record  Record         `json:"record"`
	Outline string         `json:"outline"`
	Terms   []outline.Term `json:"terms"`
}

// Store is implemented by every persistence backend.
type Store interface {
	Name() string
	Put(ctx context.Context, res *Result) error
	// Get returns ErrNotFound for unknown documents.
	Get(ctx context.Context, userID, docID string) (*Result, error)
	// FindByHash returns the most recent result stored under contentHash,
	// or ErrNotFound.
	FindByHash(ctx context.Context, userID, contentHash string) (*Result, error)
	List(ctx context.Context, userID string) ([]Record, error)
	// Delete returns ErrNotFound for unknown documents.
	Delete(ctx context.Context, userID, docID string) error
}
