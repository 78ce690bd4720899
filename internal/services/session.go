package services

import (
	"github.com/cryptichearts/backend/internal/realtime"
	"github.com/cryptichearts/backend/internal/records"
)

const (
	DefaultBatchLimit    = 8
	DefaultMaxImageBytes = 10 * 1024
)

// Publisher delivers conversation events to live subscribers.
type Publisher interface {
	Publish(topic string, ev realtime.Event)
}

type Options struct {
	// BatchLimit caps concurrent store calls in one fan-out.
	BatchLimit int
	// MaxImageBytes caps the decoded size of a post image.
	MaxImageBytes int
}

func (o Options) withDefaults() Options {
	if o.BatchLimit <= 0 {
		o.BatchLimit = DefaultBatchLimit
	}
	if o.MaxImageBytes <= 0 {
		o.MaxImageBytes = DefaultMaxImageBytes
	}
	return o
}

// Session bundles the data-access services for one identity.
type Session struct {
	DID      string
	Follows  *FollowService
	Profiles *ProfileService
	Posts    *PostService
	Messages *MessageService
}

func NewSession(client records.Client, pub Publisher, opts Options) *Session {
	opts = opts.withDefaults()
	follows := NewFollowService(client, opts)
	return &Session{
		DID:      client.DID(),
		Follows:  follows,
		Profiles: NewProfileService(client, opts),
		Posts:    NewPostService(client, follows, opts),
		Messages: NewMessageService(client, pub),
	}
}

// SessionFactory opens sessions on a shared store.
type SessionFactory struct {
	connector records.Connector
	pub       Publisher
	opts      Options
}

func NewSessionFactory(connector records.Connector, pub Publisher, opts Options) *SessionFactory {
	return &SessionFactory{connector: connector, pub: pub, opts: opts}
}

func (f *SessionFactory) For(did string) *Session {
	return NewSession(f.connector.Connect(did), f.pub, f.opts)
}
