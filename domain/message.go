// Package domain contains core concepts of the messaging system.
// This file defines the durable Message entity owned by the store.
// The relay never reads or writes these; only the HTTP API does.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Message is the persisted record of a direct message.
// It is the source of truth for history; the real-time relayed copy
// is independent and may diverge if either path fails silently.
type Message struct {
	ID        uuid.UUID `json:"id"`
	Sender    string    `json:"sender"`
	Receiver  string    `json:"receiver"`
	Content   string    `json:"content"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

// Conversation summarizes one peer relationship for the conversation list:
// the most recent message exchanged with the peer and how many of the
// peer's messages the owner has not read yet.
type Conversation struct {
	PeerID      string  `json:"peerId"`
	LastMessage Message `json:"lastMessage"`
	UnreadCount int     `json:"unreadCount"`
}
