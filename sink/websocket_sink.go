package sink

import (
	"context"
	"dm-lab/domain/event"
	"dm-lab/errors"
	"sync"
)

// ConnectionSink buffers the events of one websocket connection.
// The connection's write loop drains Events; Consume never waits on the network.
type ConnectionSink struct {
	ConnectionID string
	UserID       string
	events       chan event.Event
	done         chan struct{}
	closeOnce    sync.Once
}

func NewConnectionSink(connectionID, userID string, bufferSize int) *ConnectionSink {
	return &ConnectionSink{
		ConnectionID: connectionID,
		UserID:       userID,
		events:       make(chan event.Event, bufferSize),
		done:         make(chan struct{}),
	}
}

// Consume is called by the fanout.
// A full buffer means a slow client: the event is dropped for this connection only.
func (s *ConnectionSink) Consume(ctx context.Context, e event.Event) error {
	select {
	case <-s.done:
		return errors.ErrSinkClosed
	default:
	}
	select {
	case s.events <- e:
		return nil
	case <-s.done:
		return errors.ErrSinkClosed
	case <-ctx.Done():
		return ctx.Err()
	default:
		return errors.ErrSinkFull
	}
}

// Events is read by the connection's write loop.
func (s *ConnectionSink) Events() <-chan event.Event {
	return s.events
}

// Done is closed once the connection is gone.
func (s *ConnectionSink) Done() <-chan struct{} {
	return s.done
}

// Close is idempotent. Pending events are discarded.
func (s *ConnectionSink) Close() {
	s.closeOnce.Do(func() { close(s.done) })
}
