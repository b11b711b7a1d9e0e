// Package runtime owns the live side of messaging: the session registry,
// the relay and the presence pipeline. It never touches the durable store;
// clients persist through the HTTP API independently, so a message can be
// delivered in real time yet fail to persist, or the other way around.
package runtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"mentorhub/contract"
	"mentorhub/domain/event"
	"mentorhub/errors"
	"mentorhub/observability"

	"github.com/google/uuid"
)

// Relay forwards events to whatever sessions are registered at the
// instant of lookup. Fire-and-forget: no ack, no retry, no queuing for
// offline identities. Only the durable store is authoritative for what
// was actually sent.
type Relay struct {
	log        *slog.Logger
	registry   contract.ISessionRegistry
	monitoring *observability.MonitoringManager
	presence   chan event.PresenceTransition
}

func NewRelay(log *slog.Logger, registry contract.ISessionRegistry,
	monitoring *observability.MonitoringManager, bufferSize int) *Relay {
	return &Relay{
		log:        log,
		registry:   registry,
		monitoring: monitoring,
		presence:   make(chan event.PresenceTransition, bufferSize),
	}
}

// Presence exposes the transition queue drained by the presence worker.
func (r *Relay) Presence() <-chan event.PresenceTransition {
	return r.presence
}

// HandleJoin binds a session to its identity and queues an online
// transition. Every registration re-broadcasts online, even when the
// identity already had live sessions; duplicates are not suppressed.
func (r *Relay) HandleJoin(sessionID uuid.UUID, identity string, sink contract.EventSink) error {
	if identity == "" {
		return errors.ErrEmptyIdentity
	}
	r.registry.Register(sessionID, identity, sink)
	r.monitoring.IncrSessionsOpened()
	r.enqueuePresence(event.PresenceTransition{Online: true, UserID: identity, Origin: sessionID})
	return nil
}

// HandleDisconnect unregisters a session. Closing the transport is the
// only cancellation primitive; an offline transition is queued only when
// the identity's last session is gone.
func (r *Relay) HandleDisconnect(sessionID uuid.UUID) {
	identity, wasLast := r.registry.Unregister(sessionID)
	if identity == "" {
		return
	}
	r.monitoring.IncrSessionsClosed()
	if wasLast {
		r.enqueuePresence(event.PresenceTransition{Online: false, UserID: identity, Origin: sessionID})
	}
}

// RelayMessage delivers one copy per live session of the receiver.
// Zero sessions means a silent drop; the client is expected to have
// persisted the message through the store already, so nothing is lost.
func (r *Relay) RelayMessage(ctx context.Context, msg event.MessageRelayed) {
	sinks := r.registry.SinksFor(msg.ReceiverID)
	if len(sinks) == 0 {
		r.monitoring.IncrMessagesDropped()
		return
	}
	r.deliver(ctx, sinks, msg)
	r.monitoring.IncrMessagesRelayed(uint64(len(sinks)))
}

// RelayCallInvite forwards an opaque offer verbatim to the callee.
func (r *Relay) RelayCallInvite(ctx context.Context, target string, signal json.RawMessage, from, name string) {
	r.relaySignal(ctx, target, event.CallInvited{Signal: signal, From: from, Name: name})
}

// RelayCallAnswer forwards an opaque answer verbatim to the caller.
func (r *Relay) RelayCallAnswer(ctx context.Context, target string, signal json.RawMessage) {
	r.relaySignal(ctx, target, event.CallAnswered{Signal: signal})
}

// RelayCallEnd carries no payload. No call state is tracked, so a stray
// end for a call that never existed is forwarded like any other signal.
func (r *Relay) RelayCallEnd(ctx context.Context, target string) {
	r.relaySignal(ctx, target, event.CallEnded{})
}

func (r *Relay) relaySignal(ctx context.Context, target string, evt event.RelayEvent) {
	sinks := r.registry.SinksFor(target)
	if len(sinks) == 0 {
		return
	}
	r.deliver(ctx, sinks, evt)
	r.monitoring.IncrCallSignals(uint64(len(sinks)))
}

func (r *Relay) deliver(ctx context.Context, sinks []contract.EventSink, evt event.RelayEvent) {
	for _, sink := range sinks {
		if err := sink.Consume(ctx, evt); err != nil {
			r.log.Warn("sink refused event", "event", evt.EventName(), "error", err)
		}
	}
}

func (r *Relay) enqueuePresence(t event.PresenceTransition) {
	r.monitoring.IncrPresenceEvents()
	select {
	case r.presence <- t:
	default:
		r.log.Warn(fmt.Sprintf("Presence channel full, dropping transition for %s", t.UserID))
	}
}
