package event

import "encoding/json"

// RelayEvent is anything the relay can push to a live session.
// Payloads carried as json.RawMessage are forwarded verbatim,
// the relay never inspects or rewrites them.
type RelayEvent interface {
	EventName() string
}

// Wire event names, kept verbatim from the client protocol.
const (
	NameReceiveMessage = "receive-message"
	NameUserOnline     = "user-online"
	NameUserOffline    = "user-offline"
	NameCallUser       = "callUser"
	NameCallAccepted   = "callAccepted"
	NameCallEnded      = "callEnded"
)

// MessageRelayed is the ephemeral real-time copy of a direct message.
// The timestamp is the sender's and is passed through untouched.
type MessageRelayed struct {
	SenderID   string `json:"senderId"`
	ReceiverID string `json:"receiverId"`
	Content    string `json:"content"`
	Timestamp  string `json:"timestamp"`
}

func (MessageRelayed) EventName() string { return NameReceiveMessage }

type UserOnline struct {
	UserID string
}

func (UserOnline) EventName() string { return NameUserOnline }

type UserOffline struct {
	UserID string
}

func (UserOffline) EventName() string { return NameUserOffline }

// CallInvited carries an opaque signaling offer to the callee.
type CallInvited struct {
	Signal json.RawMessage `json:"signal"`
	From   string          `json:"from"`
	Name   string          `json:"name"`
}

func (CallInvited) EventName() string { return NameCallUser }

// CallAnswered carries the opaque answer descriptor back to the caller.
type CallAnswered struct {
	Signal json.RawMessage
}

func (CallAnswered) EventName() string { return NameCallAccepted }

// CallEnded has no payload; the relay tracks no call state, so it
// cannot tell a stray end from a real one and forwards both.
type CallEnded struct{}

func (CallEnded) EventName() string { return NameCallEnded }
