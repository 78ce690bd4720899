package records

import (
	"context"
	"testing"

	"github.com/go-playground/assert/v2"

	"github.com/cryptichearts/backend/internal/protocol"
	"github.com/cryptichearts/backend/internal/storage"
)

func TestMemoryBackend_ReturnsCopies(t *testing.T) {
	b := NewMemoryBackend()
	ctx := context.Background()
	if err := b.Put(ctx, amy, &Record{ID: "r1", Author: amy, ProtocolPath: protocol.PathPost, Data: []byte(`{}`)}); err != nil {
		t.Fatal(err)
	}

	got, _ := b.Get(ctx, amy, "r1")
	got.Author = eve
	again, _ := b.Get(ctx, amy, "r1")
	assert.Equal(t, amy, again.Author)

	missing, err := b.Get(ctx, bob, "r1")
	assert.Equal(t, nil, err)
	assert.Equal(t, true, missing == nil)
}

func TestMemoryBackend_PutReplacesInPlace(t *testing.T) {
	b := NewMemoryBackend()
	ctx := context.Background()
	_ = b.Put(ctx, amy, &Record{ID: "r1", ProtocolPath: protocol.PathPost})
	_ = b.Put(ctx, amy, &Record{ID: "r2", ProtocolPath: protocol.PathPost})
	_ = b.Put(ctx, amy, &Record{ID: "r1", ProtocolPath: protocol.PathPost, Author: bob})

	got, _ := b.Find(ctx, amy, Filter{})
	assert.Equal(t, 2, len(got))
	assert.Equal(t, "r1", got[0].ID)
	assert.Equal(t, bob, got[0].Author)

	_ = b.Remove(ctx, amy, "r1")
	got, _ = b.Find(ctx, amy, Filter{})
	assert.Equal(t, 1, len(got))
	assert.Equal(t, "r2", got[0].ID)
}

func TestPersistentMemoryBackend_Reload(t *testing.T) {
	dir := t.TempDir()
	store, err := storage.NewJSONStore(dir, "records.json")
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewPersistentMemoryBackend(store)
	if err != nil {
		t.Fatal(err)
	}

	net := newTestNetwork(b)
	rec := mustCreate(t, net.Connect(amy), CreateRequest{
		Path: protocol.PathPost, Data: map[string]string{"content": "kept"}, Recipient: bob,
	})

	reopened, err := NewPersistentMemoryBackend(store)
	if err != nil {
		t.Fatal(err)
	}
	got, _ := reopened.Get(context.Background(), amy, rec.ID)
	if got == nil {
		t.Fatal("record missing after reload")
	}
	var data map[string]string
	_ = got.DecodeData(&data)
	assert.Equal(t, "kept", data["content"])
}

func TestOpen_MemoryWithDataDir(t *testing.T) {
	net, closeFn, err := Open(context.Background(), OpenOptions{Backend: BackendMemory, DataDir: t.TempDir()})
	if err != nil {
		t.Fatal(err)
	}
	defer closeFn(context.Background())
	mustCreate(t, net.Connect(amy), CreateRequest{Path: protocol.PathProfile, Data: map[string]string{}})
}

func TestOpen_UnknownBackend(t *testing.T) {
	_, _, err := Open(context.Background(), OpenOptions{Backend: "etcd"})
	if err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestRemoveSnapshot(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	net, _, err := Open(ctx, OpenOptions{Backend: BackendMemory, DataDir: dir})
	if err != nil {
		t.Fatal(err)
	}
	mustCreate(t, net.Connect(amy), CreateRequest{Path: protocol.PathProfile, Data: map[string]string{}})

	if err := RemoveSnapshot(dir); err != nil {
		t.Fatal(err)
	}
	// removing twice is fine
	if err := RemoveSnapshot(dir); err != nil {
		t.Fatal(err)
	}

	reopened, _, err := Open(ctx, OpenOptions{Backend: BackendMemory, DataDir: dir})
	if err != nil {
		t.Fatal(err)
	}
	got, _ := reopened.Connect(amy).Query(ctx, Profiles())
	assert.Equal(t, 0, len(got))
}
