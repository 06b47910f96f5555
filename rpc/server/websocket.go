package server

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/anyswap/soroban-counter/internal/counterapi"
	"github.com/anyswap/soroban-counter/log"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	eventBuffer = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// origins are checked by the cors handler
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WebsocketHandler stream counter events. The current counter info is sent
// first, then every value, busy and error event.
func WebsocketHandler(w http.ResponseWriter, r *http.Request) {
	events, unsubscribe, err := counterapi.Subscribe(eventBuffer)
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	defer unsubscribe()

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("websocket upgrade failed", "err", err)
		return
	}
	defer ws.Close()
	log.Debug("websocket client connected", "remote", r.RemoteAddr)

	if info, errc := counterapi.GetCount(); errc == nil {
		_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
		if err = ws.WriteJSON(info); err != nil {
			return
		}
	}

	closed := make(chan struct{})
	go readPump(ws, closed)

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-closed:
			log.Debug("websocket client disconnected", "remote", r.RemoteAddr)
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err = ws.WriteJSON(ev); err != nil {
				log.Debug("websocket write failed", "remote", r.RemoteAddr, "err", err)
				return
			}
		case <-ticker.C:
			_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err = ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump discard incoming messages, handle pongs and detect close
func readPump(ws *websocket.Conn, closed chan<- struct{}) {
	defer close(closed)
	_ = ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			return
		}
	}
}
