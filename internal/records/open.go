package records

import (
	"context"
	"fmt"

	"github.com/cryptichearts/backend/internal/storage"
)

const (
	BackendMemory = "memory"
	BackendMongo  = "mongo"

	snapshotFile = "records.json"
)

type OpenOptions struct {
	Backend  string
	DataDir  string
	MongoURI string
	MongoDB  string
}

// Open builds a Network over the configured backend. The returned close
// function releases backend connections.
func Open(ctx context.Context, o OpenOptions, opts ...Option) (*Network, func(context.Context) error, error) {
	noop := func(context.Context) error { return nil }

	switch o.Backend {
	case "", BackendMemory:
		if o.DataDir == "" {
			return NewNetwork(NewMemoryBackend(), opts...), noop, nil
		}
		store, err := storage.NewJSONStore(o.DataDir, snapshotFile)
		if err != nil {
			return nil, nil, err
		}
		backend, err := NewPersistentMemoryBackend(store)
		if err != nil {
			return nil, nil, fmt.Errorf("load record snapshot: %w", err)
		}
		return NewNetwork(backend, opts...), noop, nil
	case BackendMongo:
		backend, err := NewMongoBackend(ctx, o.MongoURI, o.MongoDB)
		if err != nil {
			return nil, nil, fmt.Errorf("connect mongo: %w", err)
		}
		return NewNetwork(backend, opts...), backend.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", o.Backend)
	}
}

// RemoveSnapshot deletes the memory backend's snapshot in dataDir. A missing
// snapshot is not an error.
func RemoveSnapshot(dataDir string) error {
	store, err := storage.NewJSONStore(dataDir, snapshotFile)
	if err != nil {
		return err
	}
	if err := store.Remove(); err != nil {
		return fmt.Errorf("remove %s: %w", store.Path(), err)
	}
	return nil
}
