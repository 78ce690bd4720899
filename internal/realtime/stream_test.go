package realtime

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"
	"github.com/gorilla/websocket"

	"github.com/cryptichearts/backend/internal/models"
)

func TestStream_HistoryThenLiveEvents(t *testing.T) {
	h := NewHub(8)
	sub := h.Subscribe("t")
	history := []Event{{Type: EventAdd, Payload: models.Message{RecordID: "1", Content: "old"}}}
	keep := func(ev Event) bool { return ev.Payload.RecordID != "1" }

	done := make(chan error, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := Upgrade(w, r)
		if err != nil {
			done <- err
			return
		}
		done <- Stream(context.Background(), ws, history, sub, keep, DefaultStreamSettings())
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer client.Close()
	client.SetReadDeadline(time.Now().Add(5 * time.Second))

	var got Event
	if err := client.ReadJSON(&got); err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, "old", got.Payload.Content)

	// a duplicate of the history entry is filtered, the new one goes through
	h.Publish("t", Event{Type: EventAdd, Payload: models.Message{RecordID: "1", Content: "old"}})
	h.Publish("t", Event{Type: EventAdd, Payload: models.Message{RecordID: "2", Content: "new"}})
	if err := client.ReadJSON(&got); err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, "2", got.Payload.RecordID)
	assert.Equal(t, EventAdd, got.Type)

	sub.Close()
	select {
	case err := <-done:
		assert.Equal(t, nil, err)
	case <-time.After(5 * time.Second):
		t.Fatal("stream did not stop after the subscription closed")
	}
}
