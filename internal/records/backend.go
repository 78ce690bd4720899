package records

import "context"

// Backend stores records partitioned by tenant. Implementations return
// copies; callers may modify what they get back.
type Backend interface {
	// Find returns matching records in store order.
	Find(ctx context.Context, tenant string, f Filter) ([]*Record, error)
	// Get returns nil, nil when the record does not exist.
	Get(ctx context.Context, tenant, recordID string) (*Record, error)
	// Put inserts or replaces the record with the same ID.
	Put(ctx context.Context, tenant string, rec *Record) error
	Remove(ctx context.Context, tenant, recordID string) error
}
