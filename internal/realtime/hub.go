package realtime

import (
	"sync"

	"github.com/golang/glog"

	"github.com/cryptichearts/backend/internal/models"
)

const EventAdd = "add"

// Event is one change to a conversation.
type Event struct {
	Type    string         `json:"type"`
	Payload models.Message `json:"payload"`
}

// ConversationTopic names the topic shared by both sides of a conversation.
// The order of the arguments does not matter.
func ConversationTopic(a, b string) string {
	if a < b {
		a, b = b, a
	}
	return "messages:" + a + "-" + b
}

const DefaultSubscriberBuffer = 32

// Hub fans events out to topic subscribers. Publish never blocks: a
// subscriber whose buffer is full misses the event.
type Hub struct {
	mu     sync.RWMutex
	topics map[string]map[*Subscription]struct{}
	buffer int
}

func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = DefaultSubscriberBuffer
	}
	return &Hub{topics: make(map[string]map[*Subscription]struct{}), buffer: buffer}
}

type Subscription struct {
	hub   *Hub
	topic string
	ch    chan Event
	once  sync.Once
}

// Events is closed when the subscription is closed.
func (s *Subscription) Events() <-chan Event {
	return s.ch
}

func (s *Subscription) Close() {
	s.once.Do(func() {
		h := s.hub
		h.mu.Lock()
		defer h.mu.Unlock()
		if subs, ok := h.topics[s.topic]; ok {
			delete(subs, s)
			if len(subs) == 0 {
				delete(h.topics, s.topic)
			}
		}
		close(s.ch)
	})
}

func (h *Hub) Subscribe(topic string) *Subscription {
	s := &Subscription{hub: h, topic: topic, ch: make(chan Event, h.buffer)}

	h.mu.Lock()
	defer h.mu.Unlock()
	subs, ok := h.topics[topic]
	if !ok {
		subs = make(map[*Subscription]struct{})
		h.topics[topic] = subs
	}
	subs[s] = struct{}{}
	return s
}

func (h *Hub) Publish(topic string, ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for s := range h.topics[topic] {
		select {
		case s.ch <- ev:
		default:
			glog.V(1).Infof("[realtime] drop topic=%s record=%s", topic, ev.Payload.RecordID)
		}
	}
}

// Subscribers reports how many subscriptions topic has.
func (h *Hub) Subscribers(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[topic])
}
