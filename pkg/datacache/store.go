package datacache

import (
	"context"
	"errors"

	"github.com/vango-dev/outlet/pkg/loader"
)

// Store persists committed loader data between processes or restarts.
// Implementations must be safe for concurrent use.
type Store interface {
	// Save stores snap under key, replacing any previous value.
	Save(ctx context.Context, key string, snap *loader.Snapshot) error

	// Load returns the snapshot stored under key.
	// Returns (nil, nil) if the key doesn't exist or has expired.
	Load(ctx context.Context, key string) (*loader.Snapshot, error)

	// Delete removes key. Missing keys are not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the store's resources.
	Close() error
}

// ErrStoreClosed is returned when operations are attempted on a closed store.
var ErrStoreClosed = errors.New("datacache: store is closed")
