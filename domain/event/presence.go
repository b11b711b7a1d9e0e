package event

import "github.com/google/uuid"

// PresenceTransition is produced when an identity gains its first live
// session or loses its last one. It is an internal fan-out job, not a
// wire event; the broadcast renders it as UserOnline or UserOffline.
type PresenceTransition struct {
	Online bool
	UserID string
	// Origin is the session that caused the transition. It is excluded
	// from the broadcast so a client does not hear about itself.
	Origin uuid.UUID
}

func (t PresenceTransition) Broadcast() RelayEvent {
	if t.Online {
		return UserOnline{UserID: t.UserID}
	}
	return UserOffline{UserID: t.UserID}
}
