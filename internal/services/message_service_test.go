package services

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"

	"github.com/cryptichearts/backend/internal/models"
	"github.com/cryptichearts/backend/internal/realtime"
)

func TestMessages_BothSidesSeeConversation(t *testing.T) {
	net := newNetwork()
	ctx := context.Background()
	pub := &recordingPublisher{}
	a := NewSession(net.Connect(amy), pub, Options{})
	b := NewSession(net.Connect(bob), pub, Options{})

	first, err := a.Messages.SendMessage(ctx, bob, &models.SendMessageRequest{Content: "hi bob"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := b.Messages.SendMessage(ctx, amy, &models.SendMessageRequest{Content: "hi amy", ReplyTo: first.RecordID}); err != nil {
		t.Fatal(err)
	}
	// unrelated conversation
	if _, err := a.Messages.SendMessage(ctx, eve, &models.SendMessageRequest{Content: "hi eve"}); err != nil {
		t.Fatal(err)
	}

	for _, s := range []*Session{a, b} {
		peer := bob
		if s == b {
			peer = amy
		}
		msgs, err := s.Messages.GetMessages(ctx, peer)
		if err != nil {
			t.Fatal(err)
		}
		assert.Equal(t, 2, len(msgs))
		assert.Equal(t, "hi bob", msgs[0].Content)
		assert.Equal(t, "hi amy", msgs[1].Content)
		assert.Equal(t, first.RecordID, msgs[1].ReplyTo)
	}

	assert.Equal(t, 3, len(pub.events))
	assert.Equal(t, realtime.ConversationTopic(amy, bob), pub.topics[0])
	assert.Equal(t, pub.topics[0], pub.topics[1])
	assert.Equal(t, realtime.EventAdd, pub.events[0].Type)
	assert.Equal(t, first.RecordID, pub.events[0].Payload.RecordID)
}

func TestSendMessage_ReplicationFailureStillSent(t *testing.T) {
	net := newNetwork()
	ctx := context.Background()
	a := NewSession(&faultyClient{Client: net.Connect(amy), sendErr: errUnreachable}, nil, Options{})

	msg, err := a.Messages.SendMessage(ctx, bob, &models.SendMessageRequest{Content: "anyone there?"})
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, bob, msg.RecipientID)

	theirs, _ := NewSession(net.Connect(bob), nil, Options{}).Messages.GetMessages(ctx, amy)
	assert.Equal(t, 0, len(theirs))
	mine, _ := a.Messages.GetMessages(ctx, bob)
	assert.Equal(t, 1, len(mine))
}

func TestConversation_MergeDedupesAndOrders(t *testing.T) {
	t0 := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	c := NewConversation(
		models.Message{RecordID: "2", DateCreated: t0.Add(time.Second)},
		models.Message{RecordID: "1", DateCreated: t0},
	)

	added := c.Merge(
		models.Message{RecordID: "1", DateCreated: t0},
		models.Message{RecordID: "3", DateCreated: t0.Add(2 * time.Second)},
	)
	assert.Equal(t, 1, added)

	msgs := c.Messages()
	assert.Equal(t, 3, len(msgs))
	assert.Equal(t, "1", msgs[0].RecordID)
	assert.Equal(t, "3", msgs[2].RecordID)
}
