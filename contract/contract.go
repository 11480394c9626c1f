//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"dm-lab/domain"
	"dm-lab/domain/event"
	"reflect"
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

// EventSink is one live delivery target, typically a single websocket connection.
// Consume must not block the caller for longer than ctx allows.
type EventSink interface {
	Consume(ctx context.Context, e event.Event) error
}

// IRegistry owns channel membership of live connections.
type IRegistry interface {
	Subscribe(connectionID, channel string, sink EventSink)
	Unsubscribe(connectionID, channel string)
	Disconnect(connectionID string)
	GetSinksForChannels(channels ...string) []EventSink
	Stats() RegistryStats
}

type RegistryStats struct {
	Connections int
	Channels    int
}

// EventPublisher accepts events for best-effort delivery. It never blocks and never fails the caller.
type EventPublisher interface {
	Publish(evt event.Event)
}

// IdentityDirectory resolves users known to the system.
type IdentityDirectory interface {
	Resolve(ctx context.Context, id string) (domain.Identity, error)
	FindByNameOrEmail(ctx context.Context, name, email string) (domain.Identity, error)
}

// TokenVerifier decodes an opaque session credential into an identity id.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// EventDeliverer pushes one event to the live connections of its recipients.
type EventDeliverer interface {
	Deliver(ctx context.Context, evt event.Event) int
}

type StatsProvider interface {
	Stats() RegistryStats
}

// TextModerator masks forbidden words. The returned text keeps the rune count of the input.
type TextModerator interface {
	Censor(text string) (string, []string)
}
