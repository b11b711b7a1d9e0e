package workers

import (
	"context"
	"log/slog"
	"mentorhub/contract"
	"mentorhub/domain/event"
)

// PresenceFanout broadcasts online/offline transitions to every registered
// session except the one that caused them.
//
// It provides best-effort fan-out with no guarantees regarding delivery,
// ordering, durability, or retries. A session registering right after a
// transition was drained will never see it; presence is only ever derived
// from subsequent traffic.
//
// The broadcast is global: the protocol announces transitions to every
// connected session, not to a contact subset.
type PresenceFanout struct {
	Log         *slog.Logger
	Registry    contract.ISessionRegistry
	Transitions <-chan event.PresenceTransition
}

func NewPresenceFanout(log *slog.Logger, registry contract.ISessionRegistry,
	transitions <-chan event.PresenceTransition) *PresenceFanout {
	return &PresenceFanout{Log: log, Registry: registry, Transitions: transitions}
}

func (w PresenceFanout) Run(ctx context.Context) error {
	for {
		select {
		case t := <-w.Transitions:
			w.Fanout(ctx, t)
		case <-ctx.Done():
			w.Log.Debug("Context done, stopping presence fan-out")
			return nil
		}
	}
}

// Fanout One event for each registered session but the origin
func (w PresenceFanout) Fanout(ctx context.Context, t event.PresenceTransition) {
	evt := t.Broadcast()
	for _, sink := range w.Registry.SinksExcept(t.Origin) {
		if err := sink.Consume(ctx, evt); err != nil {
			w.Log.Warn("sink refused presence event", "event", evt.EventName(), "error", err)
		}
	}
}
