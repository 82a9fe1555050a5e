package checkpoint

import "context"

// Store abstracts checkpoint persistence across different backends. Load is
// called once at startup; Save is called after every completed batch.
type Store interface {
	// Load retrieves the persisted checkpoint. An absent or corrupt record
	// yields an empty checkpoint, never nil; only I/O failures return an
	// error.
	Load(ctx context.Context) (*Checkpoint, error)

	// Save atomically persists the checkpoint as a single document.
	Save(ctx context.Context, cp *Checkpoint) error

	// Reset deletes the persisted checkpoint. Missing records are not an
	// error.
	Reset(ctx context.Context) error
}
