package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cryptichearts/backend/internal/models"
	"github.com/cryptichearts/backend/internal/realtime"
	"github.com/cryptichearts/backend/internal/records"
)

const (
	amy = "did:example:amy"
	bob = "did:example:bob"
	eve = "did:example:eve"
)

var errUnreachable = errors.New("peer unreachable")

type stepClock struct {
	mu  sync.Mutex
	cur time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cur = c.cur.Add(time.Second)
	return c.cur
}

func newNetwork() *records.Network {
	clock := &stepClock{cur: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	return records.NewNetwork(records.NewMemoryBackend(), records.WithClock(clock.Now))
}

// faultyClient wraps a client and fails selected calls.
type faultyClient struct {
	records.Client

	sendErr     error
	queryErr    func(q records.Query) error
	createFault func(req records.CreateRequest) *records.Status
	deleteFault func(from, recordID string) *records.Status
}

func (c *faultyClient) Send(ctx context.Context, recordID, target string) (records.Status, error) {
	if c.sendErr != nil {
		return records.Status{}, c.sendErr
	}
	return c.Client.Send(ctx, recordID, target)
}

func (c *faultyClient) Query(ctx context.Context, q records.Query) ([]*records.Record, error) {
	if c.queryErr != nil {
		if err := c.queryErr(q); err != nil {
			return nil, err
		}
	}
	return c.Client.Query(ctx, q)
}

func (c *faultyClient) Create(ctx context.Context, req records.CreateRequest) (*records.Record, records.Status, error) {
	if c.createFault != nil {
		if st := c.createFault(req); st != nil {
			return nil, *st, nil
		}
	}
	return c.Client.Create(ctx, req)
}

func (c *faultyClient) Delete(ctx context.Context, from, recordID string) (records.Status, error) {
	if c.deleteFault != nil {
		if st := c.deleteFault(from, recordID); st != nil {
			return *st, nil
		}
	}
	return c.Client.Delete(ctx, from, recordID)
}

type recordingPublisher struct {
	mu     sync.Mutex
	topics []string
	events []realtime.Event
}

func (p *recordingPublisher) Publish(topic string, ev realtime.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
	p.events = append(p.events, ev)
}

func str(s string) *string { return &s }

func mustCreateProfile(t *testing.T, s *Session, username, city string) *models.Profile {
	t.Helper()
	p, err := s.Profiles.CreateProfile(context.Background(), &models.UpsertProfileRequest{
		Username: str(username),
		City:     str(city),
	})
	if err != nil {
		t.Fatalf("create profile: %v", err)
	}
	return p
}

func mustFollow(t *testing.T, s *Session, profile *models.Profile, peer, label string, attrs ...string) *FollowReceipt {
	t.Helper()
	r, err := s.Follows.Follow(context.Background(), profile, peer, label, attrs)
	if err != nil {
		t.Fatalf("follow %s: %v", peer, err)
	}
	return r
}

var (
	amyProfile = models.Profile{Username: "amy", City: "Lisbon"}
	eveProfile = models.Profile{Username: "eve"}
)
