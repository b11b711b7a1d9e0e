package runtime

import (
	"context"
	"mentorhub/domain/event"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type Sink struct {
	name string
}

func (s Sink) Consume(ctx context.Context, e event.RelayEvent) error {
	return nil
}

func TestSessionRegistry_Register_One_Identity_One_Session(t *testing.T) {
	req := require.New(t)
	registry := NewSessionRegistry()
	identity := uuid.NewString()
	sessionID := uuid.New()
	sink := Sink{name: "a"}

	// Given no session is connected
	req.Zero(registry.SessionCount())
	req.Nil(registry.SinksFor(identity))

	// When a session registers under the identity
	registry.Register(sessionID, identity, sink)

	// Then
	req.Equal(1, registry.SessionCount())
	req.Len(registry.SinksFor(identity), 1)
	req.Contains(registry.SinksFor(identity), sink)
}

func TestSessionRegistry_Register_One_Identity_Multiple_Sessions(t *testing.T) {
	req := require.New(t)
	registry := NewSessionRegistry()
	identity := uuid.NewString()
	sink1 := Sink{name: "tab"}
	sink2 := Sink{name: "phone"}

	// When the same identity opens two sessions
	registry.Register(uuid.New(), identity, sink1)
	registry.Register(uuid.New(), identity, sink2)

	// Then both sinks are fan-out targets for that identity
	req.Equal(2, registry.SessionCount())
	req.Len(registry.SinksFor(identity), 2)
	req.Contains(registry.SinksFor(identity), sink1)
	req.Contains(registry.SinksFor(identity), sink2)
}

func TestSessionRegistry_Unregister_Last_Session_Means_Offline(t *testing.T) {
	req := require.New(t)
	registry := NewSessionRegistry()
	identity := uuid.NewString()
	sessionID := uuid.New()

	// Given one registered session
	registry.Register(sessionID, identity, Sink{})

	// When the session unregisters
	gone, wasLast := registry.Unregister(sessionID)

	// Then the identity is offline
	// And no session is left behind
	req.Equal(identity, gone)
	req.True(wasLast)
	req.Zero(registry.SessionCount())
	req.Nil(registry.SinksFor(identity))
}

func TestSessionRegistry_Unregister_Keeps_Remaining_Sessions(t *testing.T) {
	req := require.New(t)
	registry := NewSessionRegistry()
	identity := uuid.NewString()
	sessionID1 := uuid.New()
	sessionID2 := uuid.New()
	sink2 := Sink{name: "phone"}

	// Given an identity with two sessions
	registry.Register(sessionID1, identity, Sink{name: "tab"})
	registry.Register(sessionID2, identity, sink2)

	// When one of them unregisters
	gone, wasLast := registry.Unregister(sessionID1)

	// Then the identity is still online through the other session
	req.Equal(identity, gone)
	req.False(wasLast)
	req.Len(registry.SinksFor(identity), 1)
	req.Contains(registry.SinksFor(identity), sink2)
}

func TestSessionRegistry_Unregister_Unknown_Session(t *testing.T) {
	req := require.New(t)
	registry := NewSessionRegistry()

	// When a session that never registered unregisters
	gone, wasLast := registry.Unregister(uuid.New())

	// Then nothing happens
	req.Empty(gone)
	req.False(wasLast)
}

func TestSessionRegistry_SinksExcept_Excludes_Origin_Only(t *testing.T) {
	req := require.New(t)
	registry := NewSessionRegistry()
	origin := uuid.New()
	other := Sink{name: "other"}

	// Given two sessions under two identities
	registry.Register(origin, uuid.NewString(), Sink{name: "origin"})
	registry.Register(uuid.New(), uuid.NewString(), other)

	// When collecting broadcast targets
	sinks := registry.SinksExcept(origin)

	// Then only the other session is targeted
	req.Len(sinks, 1)
	req.Contains(sinks, other)
}
