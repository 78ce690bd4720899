package services

import (
	"sort"
	"sync"

	"github.com/cryptichearts/backend/internal/models"
)

// Conversation is a message list that can be merged into from several
// sources, such as a history load and a live stream, without duplicates.
type Conversation struct {
	mu   sync.Mutex
	byID map[string]models.Message
}

func NewConversation(msgs ...models.Message) *Conversation {
	c := &Conversation{byID: make(map[string]models.Message)}
	c.Merge(msgs...)
	return c
}

// Merge adds messages not yet present and returns how many were new.
func (c *Conversation) Merge(msgs ...models.Message) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	added := 0
	for _, m := range msgs {
		if _, ok := c.byID[m.RecordID]; ok {
			continue
		}
		c.byID[m.RecordID] = m
		added++
	}
	return added
}

// Messages returns the conversation oldest first.
func (c *Conversation) Messages() []models.Message {
	c.mu.Lock()
	out := make([]models.Message, 0, len(c.byID))
	for _, m := range c.byID {
		out = append(out, m)
	}
	c.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].DateCreated.Equal(out[j].DateCreated) {
			return out[i].DateCreated.Before(out[j].DateCreated)
		}
		return out[i].RecordID < out[j].RecordID
	})
	return out
}
