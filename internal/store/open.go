package store

import (
	"context"
	"fmt"

	"github.com/dgallion1/docoutline/internal/pathstore"
)

// Options selects and configures a backend.
type Options struct {
	Backend      string // none, memory, pathstore, s3
	PathstoreURL string
	PathstoreKey string
	S3           S3Config
}

// Open builds the configured backend. The "none" backend returns a nil
// Store and no error.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Backend {
	case "", "none":
		return nil, nil
	case "memory":
		return NewMemory(), nil
	case "pathstore":
		if opts.PathstoreURL == "" {
			return nil, fmt.Errorf("PATHSTORE_URL is required for the pathstore backend")
		}
		return NewPathStore(pathstore.NewClient(opts.PathstoreURL, opts.PathstoreKey)), nil
	case "s3":
		s, err := NewS3(ctx, opts.S3)
		if err != nil {
			return nil, fmt.Errorf("open s3 store: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", opts.Backend)
	}
}
