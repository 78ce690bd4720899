package realtime

import (
	"context"
	"net/http"
	"time"

	"github.com/golang/glog"
	"github.com/gorilla/websocket"
)

type StreamSettings struct {
	WriteTimeout time.Duration
	PingInterval time.Duration
	// ReadTimeout bounds the wait for any frame, pongs included. It must be
	// longer than PingInterval.
	ReadTimeout time.Duration
}

func DefaultStreamSettings() *StreamSettings {
	return &StreamSettings{
		WriteTimeout: 10 * time.Second,
		PingInterval: 30 * time.Second,
		ReadTimeout:  75 * time.Second,
	}
}

// origins are checked by the CORS middleware before the upgrade
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

func Upgrade(w http.ResponseWriter, r *http.Request) (*websocket.Conn, error) {
	return upgrader.Upgrade(w, r, nil)
}

// Stream writes history, then every event of sub that keep accepts, as JSON
// text frames until the peer goes away, ctx ends or sub is closed. keep may
// be nil. Stream closes ws.
func Stream(ctx context.Context, ws *websocket.Conn, history []Event, sub *Subscription, keep func(Event) bool, settings *StreamSettings) error {
	defer ws.Close()

	handleCtx, handleCancel := context.WithCancel(ctx)
	defer handleCancel()

	// the client never sends anything we need; reading surfaces close frames
	// and keeps pong handling alive
	go func() {
		defer handleCancel()
		ws.SetReadDeadline(time.Now().Add(settings.ReadTimeout))
		ws.SetPongHandler(func(string) error {
			return ws.SetReadDeadline(time.Now().Add(settings.ReadTimeout))
		})
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				glog.V(2).Infof("[realtime] read closed: %v", err)
				return
			}
		}
	}()

	write := func(ev Event) error {
		ws.SetWriteDeadline(time.Now().Add(settings.WriteTimeout))
		return ws.WriteJSON(ev)
	}

	for _, ev := range history {
		if err := write(ev); err != nil {
			return err
		}
	}

	ping := time.NewTicker(settings.PingInterval)
	defer ping.Stop()
	for {
		select {
		case <-handleCtx.Done():
			return nil
		case ev, ok := <-sub.Events():
			if !ok {
				return nil
			}
			if keep != nil && !keep(ev) {
				continue
			}
			if err := write(ev); err != nil {
				// a websocket write deadline cannot be recovered
				return err
			}
		case <-ping.C:
			if err := ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(settings.WriteTimeout)); err != nil {
				return err
			}
		}
	}
}
