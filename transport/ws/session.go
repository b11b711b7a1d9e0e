package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"mentorhub/domain/event"
	"mentorhub/errors"
	"mentorhub/runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a frame to the peer.
	writeWait = 10 * time.Second
	// Time allowed to read the next pong before the connection is dead.
	pongWait = 60 * time.Second
	// Ping interval, must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
	// Frames above this are a protocol violation, not a chat message.
	maxFrameSize = 64 * 1024
)

// Session is one live websocket connection. It is bound to an identity
// at join-room time and stays bound until the connection closes; closing
// the transport is the only cancellation primitive.
//
// Session implements contract.EventSink: relayed events are queued on a
// buffered channel drained by a single writer goroutine, so Consume
// never blocks the relay. A full queue drops the frame, best-effort.
type Session struct {
	id       uuid.UUID
	identity string // set once by the read loop, empty until join-room
	log      *slog.Logger
	relay    *runtime.Relay
	conn     *websocket.Conn
	send     chan Envelope
	closing  chan struct{}
	once     sync.Once
}

func newSession(log *slog.Logger, relay *runtime.Relay, conn *websocket.Conn, bufferSize int) *Session {
	id := uuid.New()
	return &Session{
		id:      id,
		log:     log.With("session_id", id.String()),
		relay:   relay,
		conn:    conn,
		send:    make(chan Envelope, bufferSize),
		closing: make(chan struct{}),
	}
}

// Consume queues one event for delivery to this connection.
// Returns an error when the send queue is full; the event is then lost
// for this session, which is acceptable for a fire-and-forget relay.
func (s *Session) Consume(_ context.Context, evt event.RelayEvent) error {
	env, err := renderEnvelope(evt)
	if err != nil {
		return err
	}
	select {
	case s.send <- env:
		return nil
	case <-s.closing:
		return fmt.Errorf("session %s closed", s.id)
	default:
		return fmt.Errorf("send queue full for session %s", s.id)
	}
}

// readPump reads frames until the connection dies, dispatching each to
// the relay. It runs on the HTTP handler goroutine and owns the
// unregister path: when it returns, the session is gone from the
// registry and an offline transition has been queued if this was the
// identity's last session.
func (s *Session) readPump(ctx context.Context) {
	defer func() {
		s.relay.HandleDisconnect(s.id)
		s.close()
	}()

	s.conn.SetReadLimit(maxFrameSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Warn("connection dropped", "error", err)
			}
			return
		}

		var env Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			// Malformed frame: skip it, keep the connection up
			s.log.Warn("malformed envelope", "error", err)
			continue
		}
		s.handleEnvelope(ctx, env)
	}
}

// handleEnvelope dispatches one inbound frame. Payload errors are logged
// and the frame dropped; nothing here tears down the connection.
func (s *Session) handleEnvelope(ctx context.Context, env Envelope) {
	switch env.Event {
	case eventJoinRoom:
		var identity string
		if err := json.Unmarshal(env.Data, &identity); err != nil {
			s.log.Warn("malformed join-room payload", "error", err)
			return
		}
		if s.identity != "" {
			s.log.Warn(errors.ErrSessionRebound.Error(), "identity", s.identity)
			return
		}
		if err := s.relay.HandleJoin(s.id, identity, s); err != nil {
			s.log.Warn("join-room rejected", "error", err)
			return
		}
		s.identity = identity

	case eventSendMessage:
		var msg event.MessageRelayed
		if err := json.Unmarshal(env.Data, &msg); err != nil {
			s.log.Warn("malformed send-message payload", "error", err)
			return
		}
		s.relay.RelayMessage(ctx, msg)

	case eventCallUser:
		var p callUserPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			s.log.Warn("malformed callUser payload", "error", err)
			return
		}
		s.relay.RelayCallInvite(ctx, p.UserToCall, p.SignalData, p.From, p.Name)

	case eventAnswerCall:
		var p answerCallPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			s.log.Warn("malformed answerCall payload", "error", err)
			return
		}
		s.relay.RelayCallAnswer(ctx, p.To, p.Signal)

	case eventEndCall:
		var p endCallPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			s.log.Warn("malformed endCall payload", "error", err)
			return
		}
		s.relay.RelayCallEnd(ctx, p.To)

	default:
		s.log.Warn(errors.ErrUnknownEvent.Error(), "event", env.Event)
	}
}

// writePump serializes all writes to the connection: queued envelopes
// and the keepalive pings. One writer goroutine per connection, so no
// write mutex is needed.
func (s *Session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.close()
	}()

	for {
		select {
		case env := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteJSON(env); err != nil {
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-s.closing:
			return
		}
	}
}

func (s *Session) close() {
	s.once.Do(func() {
		close(s.closing)
		_ = s.conn.Close()
	})
}
