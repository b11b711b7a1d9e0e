//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"mentorhub/domain/event"
	"reflect"

	"github.com/google/uuid"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

type WorkerName string

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// EventSink is one live delivery target, in practice a websocket session.
// Consume must not block; sinks queue internally and drop on overflow.
type EventSink interface {
	Consume(ctx context.Context, e event.RelayEvent) error
}

// ISessionRegistry is the multimap identity -> live sessions.
// Unknown identities yield empty results, never errors.
type ISessionRegistry interface {
	Register(sessionID uuid.UUID, identity string, sink EventSink)
	Unregister(sessionID uuid.UUID) (identity string, wasLast bool)
	SinksFor(identity string) []EventSink
	SinksExcept(sessionID uuid.UUID) []EventSink
	SessionCount() int
}
