package observability

import (
	"sync/atomic"
)

// RelayStats is a point-in-time snapshot of the relay counters.
type RelayStats struct {
	MessagesRelayed uint64 `json:"messages_relayed"`
	MessagesDropped uint64 `json:"messages_dropped"`
	PresenceEvents  uint64 `json:"presence_events"`
	CallSignals     uint64 `json:"call_signals"`
	SessionsOpened  uint64 `json:"sessions_opened"`
	SessionsClosed  uint64 `json:"sessions_closed"`
}

// MonitoringManager aggregates relay telemetry.
// Counters are atomic; a dropped message here means the receiver had no
// live session at relay time, which is expected behavior, not a failure.
type MonitoringManager struct {
	messagesRelayed uint64
	messagesDropped uint64
	presenceEvents  uint64
	callSignals     uint64
	sessionsOpened  uint64
	sessionsClosed  uint64
}

func NewMonitoringManager() *MonitoringManager {
	return &MonitoringManager{}
}

func (mm *MonitoringManager) IncrMessagesRelayed(n uint64) {
	atomic.AddUint64(&mm.messagesRelayed, n)
}

func (mm *MonitoringManager) IncrMessagesDropped() {
	atomic.AddUint64(&mm.messagesDropped, 1)
}

func (mm *MonitoringManager) IncrPresenceEvents() {
	atomic.AddUint64(&mm.presenceEvents, 1)
}

func (mm *MonitoringManager) IncrCallSignals(n uint64) {
	atomic.AddUint64(&mm.callSignals, n)
}

func (mm *MonitoringManager) IncrSessionsOpened() {
	atomic.AddUint64(&mm.sessionsOpened, 1)
}

func (mm *MonitoringManager) IncrSessionsClosed() {
	atomic.AddUint64(&mm.sessionsClosed, 1)
}

func (mm *MonitoringManager) Snapshot() RelayStats {
	return RelayStats{
		MessagesRelayed: atomic.LoadUint64(&mm.messagesRelayed),
		MessagesDropped: atomic.LoadUint64(&mm.messagesDropped),
		PresenceEvents:  atomic.LoadUint64(&mm.presenceEvents),
		CallSignals:     atomic.LoadUint64(&mm.callSignals),
		SessionsOpened:  atomic.LoadUint64(&mm.sessionsOpened),
		SessionsClosed:  atomic.LoadUint64(&mm.sessionsClosed),
	}
}
