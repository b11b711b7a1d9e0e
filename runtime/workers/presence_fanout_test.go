package workers

import (
	"context"
	"log/slog"
	"mentorhub/contract"
	"mentorhub/domain/event"
	"mentorhub/mocks"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestPresenceFanout_Broadcasts_To_All_Other_Sessions(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRegistry := mocks.NewMockISessionRegistry(ctrl)
	mockSink := mocks.NewMockEventSink(ctrl)
	origin := uuid.New()

	// Given two other sessions are registered
	mockRegistry.EXPECT().SinksExcept(origin).
		Return([]contract.EventSink{mockSink, mockSink}).Times(1)

	var seen []event.RelayEvent
	mockSink.EXPECT().Consume(gomock.Any(), gomock.Any()).
		Do(func(ctx context.Context, evt event.RelayEvent) {
			seen = append(seen, evt)
		}).Return(nil).
		Times(2)

	worker := NewPresenceFanout(log, mockRegistry, nil)

	// When an online transition is fanned out
	worker.Fanout(context.Background(), event.PresenceTransition{
		Online: true, UserID: "u1", Origin: origin,
	})

	// Then both sessions observed user-online for u1
	req.Len(seen, 2)
	for _, evt := range seen {
		req.Equal(event.UserOnline{UserID: "u1"}, evt)
	}
}

func TestPresenceFanout_Offline_Transition(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRegistry := mocks.NewMockISessionRegistry(ctrl)
	mockSink := mocks.NewMockEventSink(ctrl)
	origin := uuid.New()

	mockRegistry.EXPECT().SinksExcept(origin).
		Return([]contract.EventSink{mockSink}).Times(1)
	mockSink.EXPECT().Consume(gomock.Any(), event.UserOffline{UserID: "u2"}).
		Return(nil).Times(1)

	worker := NewPresenceFanout(log, mockRegistry, nil)
	worker.Fanout(context.Background(), event.PresenceTransition{
		Online: false, UserID: "u2", Origin: origin,
	})
	req.True(ctrl.Satisfied())
}

func TestPresenceFanout_Run_Drains_Channel(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRegistry := mocks.NewMockISessionRegistry(ctrl)
	mockSink := mocks.NewMockEventSink(ctrl)

	done := make(chan struct{})
	mockRegistry.EXPECT().SinksExcept(gomock.Any()).
		Return([]contract.EventSink{mockSink}).Times(1)
	mockSink.EXPECT().Consume(gomock.Any(), gomock.Any()).
		Do(func(ctx context.Context, evt event.RelayEvent) {
			close(done)
		}).Return(nil).Times(1)

	transitions := make(chan event.PresenceTransition, 1)
	worker := NewPresenceFanout(log, mockRegistry, transitions)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = worker.Run(ctx) }()

	// When a transition is queued
	transitions <- event.PresenceTransition{Online: true, UserID: "u1", Origin: uuid.New()}

	// Then the worker drains and broadcasts it
	select {
	case <-done:
	case <-time.After(1 * time.Second):
		req.Fail("Transition was never fanned out")
	}
}
