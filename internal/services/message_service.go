package services

import (
	"context"
	"fmt"

	"github.com/golang/glog"

	"github.com/cryptichearts/backend/internal/models"
	"github.com/cryptichearts/backend/internal/protocol"
	"github.com/cryptichearts/backend/internal/realtime"
	"github.com/cryptichearts/backend/internal/records"
)

type MessageService struct {
	client records.Client
	pub    Publisher
}

func NewMessageService(client records.Client, pub Publisher) *MessageService {
	return &MessageService{client: client, pub: pub}
}

// GetMessages returns the conversation with peer, oldest first. Messages the
// peer sent live in the caller's store because the peer replicated them here.
func (s *MessageService) GetMessages(ctx context.Context, peer string) ([]models.Message, error) {
	self := s.client.DID()

	sent, err := s.client.Query(ctx, records.Messages().By(self).To(peer))
	if err != nil {
		return nil, fmt.Errorf("query sent messages: %w", err)
	}
	received, err := s.client.Query(ctx, records.Messages().By(peer).To(self))
	if err != nil {
		return nil, fmt.Errorf("query received messages: %w", err)
	}

	conv := NewConversation()
	for _, rec := range append(sent, received...) {
		msg, err := messageFromRecord(rec)
		if err != nil {
			glog.Warningf("[GetMessages] skipping record=%s error=%v", rec.ID, err)
			continue
		}
		conv.Merge(msg)
	}
	return conv.Messages(), nil
}

// SendMessage stores a message to peer, sends it to the peer's store and
// announces it on the conversation topic. A failed send is logged; the message
// still counts as sent because the local copy exists.
func (s *MessageService) SendMessage(ctx context.Context, peer string, req *models.SendMessageRequest) (*models.Message, error) {
	rec, st, err := s.client.Create(ctx, records.CreateRequest{
		Path:      protocol.PathMessage,
		Data:      models.MessageData{Content: req.Content, ReplyTo: req.ReplyTo},
		Recipient: peer,
	})
	if err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}
	if !st.OK() {
		return nil, &StatusError{Op: "create message", Status: st}
	}
	replicate(ctx, s.client, "SendMessage", rec.ID, peer)

	msg, err := messageFromRecord(rec)
	if err != nil {
		return nil, err
	}
	if s.pub != nil {
		s.pub.Publish(realtime.ConversationTopic(s.client.DID(), peer), realtime.Event{Type: realtime.EventAdd, Payload: msg})
	}
	return &msg, nil
}

func messageFromRecord(rec *records.Record) (models.Message, error) {
	var data models.MessageData
	if err := rec.DecodeData(&data); err != nil {
		return models.Message{}, err
	}
	return models.Message{
		RecordID:    rec.ID,
		DateCreated: rec.DateCreated,
		ReplyTo:     data.ReplyTo,
		AuthorID:    rec.Author,
		RecipientID: rec.Recipient,
		Content:     data.Content,
	}, nil
}
