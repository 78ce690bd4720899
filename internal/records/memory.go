package records

import (
	"context"
	"sync"

	"github.com/golang/glog"

	"github.com/cryptichearts/backend/internal/storage"
)

// MemoryBackend keeps tenants in memory, optionally snapshotting them to a
// JSON file after every write.
type MemoryBackend struct {
	mu      sync.RWMutex
	tenants map[string]*tenantRecords
	store   *storage.JSONStore
}

type tenantRecords struct {
	order []string
	byID  map[string]*Record
}

// snapshot is the persisted form: tenant -> records in store order.
type snapshot map[string][]*Record

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{tenants: make(map[string]*tenantRecords)}
}

// NewPersistentMemoryBackend loads any existing snapshot from store and
// writes through to it afterwards.
func NewPersistentMemoryBackend(store *storage.JSONStore) (*MemoryBackend, error) {
	b := NewMemoryBackend()
	b.store = store

	if !store.Exists() {
		glog.Infof("[records] no snapshot at %s, starting empty", store.Path())
		return b, nil
	}
	var snap snapshot
	if err := store.Load(&snap); err != nil {
		return nil, err
	}
	n := 0
	for tenant, recs := range snap {
		t := b.tenantLocked(tenant)
		for _, rec := range recs {
			t.put(rec)
		}
		n += len(recs)
	}
	glog.Infof("[records] loaded %d records in %d tenants from %s", n, len(snap), store.Path())
	return b, nil
}

func (b *MemoryBackend) Find(_ context.Context, tenant string, f Filter) ([]*Record, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	t, ok := b.tenants[tenant]
	if !ok {
		return nil, nil
	}
	var out []*Record
	for _, id := range t.order {
		rec := t.byID[id]
		if f.Matches(rec) {
			out = append(out, rec.clone())
		}
	}
	return out, nil
}

func (b *MemoryBackend) Get(_ context.Context, tenant, recordID string) (*Record, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	t, ok := b.tenants[tenant]
	if !ok {
		return nil, nil
	}
	rec, ok := t.byID[recordID]
	if !ok {
		return nil, nil
	}
	return rec.clone(), nil
}

func (b *MemoryBackend) Put(_ context.Context, tenant string, rec *Record) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.tenantLocked(tenant).put(rec.clone())
	return b.saveLocked()
}

func (b *MemoryBackend) Remove(_ context.Context, tenant, recordID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	t, ok := b.tenants[tenant]
	if !ok {
		return nil
	}
	if _, ok := t.byID[recordID]; !ok {
		return nil
	}
	delete(t.byID, recordID)
	for i, id := range t.order {
		if id == recordID {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	return b.saveLocked()
}

func (b *MemoryBackend) tenantLocked(tenant string) *tenantRecords {
	t, ok := b.tenants[tenant]
	if !ok {
		t = &tenantRecords{byID: make(map[string]*Record)}
		b.tenants[tenant] = t
	}
	return t
}

func (t *tenantRecords) put(rec *Record) {
	if _, exists := t.byID[rec.ID]; !exists {
		t.order = append(t.order, rec.ID)
	}
	t.byID[rec.ID] = rec
}

func (b *MemoryBackend) saveLocked() error {
	if b.store == nil {
		return nil
	}
	snap := make(snapshot, len(b.tenants))
	for tenant, t := range b.tenants {
		recs := make([]*Record, 0, len(t.order))
		for _, id := range t.order {
			recs = append(recs, t.byID[id])
		}
		snap[tenant] = recs
	}
	return b.store.Save(snap)
}
