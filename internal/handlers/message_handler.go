package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/golang/glog"

	"github.com/cryptichearts/backend/internal/models"
	"github.com/cryptichearts/backend/internal/realtime"
	"github.com/cryptichearts/backend/internal/services"
)

type MessageHandler struct {
	sessions *services.SessionFactory
	hub      *realtime.Hub
	stream   *realtime.StreamSettings
}

func NewMessageHandler(sessions *services.SessionFactory, hub *realtime.Hub, stream *realtime.StreamSettings) *MessageHandler {
	if stream == nil {
		stream = realtime.DefaultStreamSettings()
	}
	return &MessageHandler{sessions: sessions, hub: hub, stream: stream}
}

func (h *MessageHandler) GetMessages(w http.ResponseWriter, r *http.Request) {
	s := sessionFor(w, r, h.sessions)
	if s == nil {
		return
	}
	peer := chi.URLParam(r, "did")

	ctx, cancel := contextWithTimeout(r.Context(), requestTimeout)
	defer cancel()

	msgs, err := s.Messages.GetMessages(ctx, peer)
	if err != nil {
		writeStoreError(w, "GetMessages", s.DID, err, "Failed to load messages")
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(msgs))
}

func (h *MessageHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	s := sessionFor(w, r, h.sessions)
	if s == nil {
		return
	}
	peer := chi.URLParam(r, "did")

	var req models.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Invalid request body"))
		return
	}
	if errors := req.Validate(); len(errors) > 0 {
		writeJSON(w, http.StatusBadRequest, models.NewValidationErrorResponse(errors))
		return
	}

	ctx, cancel := contextWithTimeout(r.Context(), requestTimeout)
	defer cancel()

	msg, err := s.Messages.SendMessage(ctx, peer, &req)
	if err != nil {
		writeStoreError(w, "SendMessage", s.DID, err, "Failed to send message")
		return
	}
	writeJSON(w, http.StatusCreated, models.NewSuccessResponse(msg))
}

// Stream upgrades to a websocket that replays the conversation with the peer
// and then follows it live.
func (h *MessageHandler) Stream(w http.ResponseWriter, r *http.Request) {
	s := sessionFor(w, r, h.sessions)
	if s == nil {
		return
	}
	peer := chi.URLParam(r, "did")

	// subscribe before loading history so nothing sent in between is lost;
	// the conversation drops what history already covered
	topic := realtime.ConversationTopic(s.DID, peer)
	sub := h.hub.Subscribe(topic)
	defer sub.Close()
	glog.V(1).Infof("[Stream] did=%s topic=%s subscribers=%d", s.DID, topic, h.hub.Subscribers(topic))

	ctx, cancel := contextWithTimeout(r.Context(), requestTimeout)
	msgs, err := s.Messages.GetMessages(ctx, peer)
	cancel()
	if err != nil {
		writeStoreError(w, "Stream", s.DID, err, "Failed to load messages")
		return
	}
	conv := services.NewConversation(msgs...)
	history := make([]realtime.Event, 0, len(msgs))
	for _, m := range msgs {
		history = append(history, realtime.Event{Type: realtime.EventAdd, Payload: m})
	}

	ws, err := realtime.Upgrade(w, r)
	if err != nil {
		// the upgrader already answered the request
		glog.Warningf("[Stream] did=%s upgrade error=%v", s.DID, err)
		return
	}
	keep := func(ev realtime.Event) bool { return conv.Merge(ev.Payload) > 0 }
	if err := realtime.Stream(r.Context(), ws, history, sub, keep, h.stream); err != nil {
		glog.V(1).Infof("[Stream] did=%s peer=%s closed: %v", s.DID, peer, err)
	}
}
