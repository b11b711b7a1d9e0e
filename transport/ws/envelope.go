package ws

import (
	"encoding/json"
	"fmt"
	"mentorhub/domain/event"
)

// Envelope is the single frame shape on the wire: an event name plus an
// event-specific payload. Names come verbatim from the client protocol.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Client -> server event names.
const (
	eventJoinRoom    = "join-room"
	eventSendMessage = "send-message"
	eventCallUser    = "callUser"
	eventAnswerCall  = "answerCall"
	eventEndCall     = "endCall"
)

// callUserPayload mirrors the caller side of the signaling handshake.
// SignalData stays raw so the relay forwards it byte-for-byte.
type callUserPayload struct {
	UserToCall string          `json:"userToCall"`
	SignalData json.RawMessage `json:"signalData"`
	From       string          `json:"from"`
	Name       string          `json:"name"`
}

type answerCallPayload struct {
	To     string          `json:"to"`
	Signal json.RawMessage `json:"signal"`
}

type endCallPayload struct {
	To string `json:"to"`
}

// callInvitePayload is what the callee receives for an incoming call.
type callInvitePayload struct {
	Signal json.RawMessage `json:"signal"`
	From   string          `json:"from"`
	Name   string          `json:"name"`
}

// renderEnvelope turns a relay event into its wire frame.
// Presence events carry the bare identity; callAccepted carries the raw
// answer descriptor with no wrapper; callEnded carries nothing.
func renderEnvelope(evt event.RelayEvent) (Envelope, error) {
	var (
		data []byte
		err  error
	)
	switch e := evt.(type) {
	case event.MessageRelayed:
		data, err = json.Marshal(e)
	case event.UserOnline:
		data, err = json.Marshal(e.UserID)
	case event.UserOffline:
		data, err = json.Marshal(e.UserID)
	case event.CallInvited:
		data, err = json.Marshal(callInvitePayload{Signal: e.Signal, From: e.From, Name: e.Name})
	case event.CallAnswered:
		data = e.Signal
	case event.CallEnded:
		data = nil
	default:
		return Envelope{}, fmt.Errorf("no wire shape for event %q", evt.EventName())
	}
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Event: evt.EventName(), Data: data}, nil
}
