package records

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/golang/glog"
	"github.com/oklog/ulid/v2"

	"github.com/cryptichearts/backend/internal/protocol"
)

// Client is a record store handle bound to one identity. Store verdicts are
// reported through Status; a non-nil error means the store itself failed.
type Client interface {
	DID() string
	Query(ctx context.Context, q Query) ([]*Record, error)
	Create(ctx context.Context, req CreateRequest) (*Record, Status, error)
	Read(ctx context.Context, q Query) (*Record, Status, error)
	Update(ctx context.Context, recordID string, data any) (*Record, Status, error)
	// Send replicates a local record into target's tenant.
	Send(ctx context.Context, recordID, target string) (Status, error)
	// Delete removes a record, and its children, from the tenant named by
	// from ("" for the caller's own).
	Delete(ctx context.Context, from, recordID string) (Status, error)
}

// Connector hands out clients for identities.
type Connector interface {
	Connect(did string) Client
}

// CreateRequest describes a new record. Child paths need ParentID; a
// ContextID, when given, must match the parent's.
type CreateRequest struct {
	Path      protocol.Path
	Data      any
	Recipient string
	ParentID  string
	ContextID string
}

// Network is the replicated store: one tenant per identity over a shared
// Backend.
type Network struct {
	backend Backend
	now     func() time.Time
}

type Option func(*Network)

// WithClock overrides the clock used for record timestamps.
func WithClock(now func() time.Time) Option {
	return func(n *Network) { n.now = now }
}

func NewNetwork(backend Backend, opts ...Option) *Network {
	n := &Network{
		backend: backend,
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

func (n *Network) Connect(did string) Client {
	return &node{net: n, did: did}
}

type node struct {
	net *Network
	did string
}

func (c *node) DID() string { return c.did }

func (c *node) tenant(from string) string {
	if from == "" {
		return c.did
	}
	return from
}

func (c *node) Query(ctx context.Context, q Query) ([]*Record, error) {
	f := q.Filter()
	if !f.Path.Valid() {
		return nil, ErrInvalidQuery
	}
	tenant := c.tenant(q.Source())
	found, err := c.net.backend.Find(ctx, tenant, f)
	if err != nil {
		return nil, fmt.Errorf("query %s in %s: %w", f.Path, tenant, err)
	}
	if tenant == c.did {
		return found, nil
	}

	visible := found[:0]
	for _, rec := range found {
		chain, err := c.ancestry(ctx, tenant, rec)
		if err != nil {
			return nil, err
		}
		if protocol.Allows(rec.ProtocolPath, protocol.Read, c.did, chain.participants) {
			visible = append(visible, rec)
		}
	}
	return visible, nil
}

func (c *node) Create(ctx context.Context, req CreateRequest) (*Record, Status, error) {
	if !req.Path.Valid() {
		return nil, status(http.StatusBadRequest, "invalid protocol path "+string(req.Path)), nil
	}

	now := c.net.now()
	rec := &Record{
		ID:           ulid.Make().String(),
		Author:       c.did,
		Recipient:    req.Recipient,
		Protocol:     protocol.URI,
		ProtocolPath: req.Path,
		Schema:       req.Path.Schema(),
		DataFormat:   req.Path.DataFormat(),
		DateCreated:  now,
		DateModified: now,
	}

	if parentPath := req.Path.Parent(); parentPath != "" {
		if req.ParentID == "" {
			return nil, status(http.StatusBadRequest, "parentId required for "+string(req.Path)), nil
		}
		parent, err := c.net.backend.Get(ctx, c.did, req.ParentID)
		if err != nil {
			return nil, Status{}, err
		}
		if parent == nil {
			return nil, status(http.StatusNotFound, "parent record not found"), nil
		}
		if parent.ProtocolPath != parentPath {
			return nil, status(http.StatusBadRequest, "parent is not a "+string(parentPath)+" record"), nil
		}
		if req.ContextID != "" && req.ContextID != parent.ContextID {
			return nil, status(http.StatusBadRequest, "contextId does not match parent"), nil
		}
		rec.ParentID = parent.ID
		rec.ContextID = parent.ContextID
	} else {
		if req.ParentID != "" {
			return nil, status(http.StatusBadRequest, "root records cannot have a parent"), nil
		}
		rec.ContextID = rec.ID
	}

	data, err := encodeData(req.Data)
	if err != nil {
		return nil, status(http.StatusBadRequest, "invalid data: "+err.Error()), nil
	}
	rec.Data = data

	if err := c.net.backend.Put(ctx, c.did, rec); err != nil {
		return nil, Status{}, err
	}
	glog.V(2).Infof("[records] created %s id=%s author=%s recipient=%s", rec.ProtocolPath, rec.ID, rec.Author, rec.Recipient)
	return rec.clone(), status(http.StatusAccepted, ""), nil
}

func (c *node) Read(ctx context.Context, q Query) (*Record, Status, error) {
	found, err := c.Query(ctx, q)
	if err != nil {
		return nil, Status{}, err
	}
	if len(found) == 0 {
		return nil, status(http.StatusNotFound, ""), nil
	}
	return found[0], status(http.StatusOK, ""), nil
}

func (c *node) Update(ctx context.Context, recordID string, data any) (*Record, Status, error) {
	rec, err := c.net.backend.Get(ctx, c.did, recordID)
	if err != nil {
		return nil, Status{}, err
	}
	if rec == nil {
		return nil, status(http.StatusNotFound, ""), nil
	}
	if rec.Author != c.did {
		return nil, status(http.StatusUnauthorized, "only the author can update a record"), nil
	}
	encoded, err := encodeData(data)
	if err != nil {
		return nil, status(http.StatusBadRequest, "invalid data: "+err.Error()), nil
	}
	rec.Data = encoded
	rec.DateModified = c.net.now()
	if err := c.net.backend.Put(ctx, c.did, rec); err != nil {
		return nil, Status{}, err
	}
	return rec.clone(), status(http.StatusAccepted, ""), nil
}

func (c *node) Send(ctx context.Context, recordID, target string) (Status, error) {
	rec, err := c.net.backend.Get(ctx, c.did, recordID)
	if err != nil {
		return Status{}, err
	}
	if rec == nil {
		return status(http.StatusNotFound, ""), nil
	}
	if target == "" || target == c.did {
		return status(http.StatusAccepted, ""), nil
	}

	existing, err := c.net.backend.Get(ctx, target, rec.ID)
	if err != nil {
		return Status{}, err
	}
	if existing != nil && existing.Author != rec.Author {
		return status(http.StatusConflict, "record id already used by another author"), nil
	}

	chain := recordChain{rec}
	if rec.ParentID != "" {
		parent, err := c.net.backend.Get(ctx, target, rec.ParentID)
		if err != nil {
			return Status{}, err
		}
		if parent == nil {
			return status(http.StatusNotFound, "parent record not found in target"), nil
		}
		rest, err := c.ancestry(ctx, target, parent)
		if err != nil {
			return Status{}, err
		}
		chain = append(chain, rest...)
	}
	if !protocol.Allows(rec.ProtocolPath, protocol.Write, c.did, chain.participants) {
		return status(http.StatusUnauthorized, "protocol does not allow this write"), nil
	}

	if err := c.net.backend.Put(ctx, target, rec); err != nil {
		return Status{}, err
	}
	glog.V(2).Infof("[records] sent %s id=%s from=%s to=%s", rec.ProtocolPath, rec.ID, c.did, target)
	return status(http.StatusAccepted, ""), nil
}

func (c *node) Delete(ctx context.Context, from, recordID string) (Status, error) {
	tenant := c.tenant(from)
	rec, err := c.net.backend.Get(ctx, tenant, recordID)
	if err != nil {
		return Status{}, err
	}
	if rec == nil {
		return status(http.StatusNotFound, ""), nil
	}
	if tenant != c.did && rec.Author != c.did {
		return status(http.StatusUnauthorized, "only the author can delete a remote record"), nil
	}

	ids, err := c.descendants(ctx, tenant, rec.ID)
	if err != nil {
		return Status{}, err
	}
	// children first so a failure never leaves an orphan behind
	for i := len(ids) - 1; i >= 0; i-- {
		if err := c.net.backend.Remove(ctx, tenant, ids[i]); err != nil {
			return Status{}, err
		}
	}
	glog.V(2).Infof("[records] deleted id=%s tenant=%s by=%s records=%d", recordID, tenant, c.did, len(ids))
	return status(http.StatusAccepted, ""), nil
}

// descendants returns id followed by every record below it, parents before
// children.
func (c *node) descendants(ctx context.Context, tenant, id string) ([]string, error) {
	out := []string{id}
	for i := 0; i < len(out); i++ {
		children, err := c.net.backend.Find(ctx, tenant, Filter{ParentID: out[i]})
		if err != nil {
			return nil, err
		}
		for _, child := range children {
			out = append(out, child.ID)
		}
	}
	return out, nil
}

// recordChain is a record followed by its ancestors.
type recordChain []*Record

func (c recordChain) participants(of protocol.Path) (string, string, bool) {
	for _, r := range c {
		if r.ProtocolPath == of {
			return r.Author, r.Recipient, true
		}
	}
	return "", "", false
}

func (c *node) ancestry(ctx context.Context, tenant string, rec *Record) (recordChain, error) {
	chain := recordChain{rec}
	cur := rec
	for cur.ParentID != "" {
		parent, err := c.net.backend.Get(ctx, tenant, cur.ParentID)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			break
		}
		chain = append(chain, parent)
		cur = parent
	}
	return chain, nil
}
