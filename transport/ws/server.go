// Package ws is the websocket edge of the relay: it upgrades HTTP
// requests, frames events as JSON envelopes and bridges connections into
// the session registry as event sinks.
package ws

import (
	"log/slog"
	"mentorhub/runtime"
	"net/http"

	"github.com/gorilla/websocket"
)

type Server struct {
	log        *slog.Logger
	relay      *runtime.Relay
	upgrader   websocket.Upgrader
	bufferSize int
}

// NewServer builds the websocket handler. bufferSize is the per-session
// send queue; when a client cannot keep up, events beyond it are dropped
// rather than slowing the relay down.
func NewServer(log *slog.Logger, relay *runtime.Relay, bufferSize int) *Server {
	return &Server{
		log:   log,
		relay: relay,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		bufferSize: bufferSize,
	}
}

// ServeHTTP upgrades the request and runs the session until the client
// goes away. The read pump runs on this goroutine; a dedicated writer
// goroutine drains the send queue.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", "error", err)
		return
	}

	session := newSession(s.log, s.relay, conn, s.bufferSize)
	go session.writePump()
	session.readPump(r.Context())
}
