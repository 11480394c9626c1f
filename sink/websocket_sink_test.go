package sink

import (
	"context"
	"dm-lab/domain/event"
	"dm-lab/errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestConnectionSink_Consume(t *testing.T) {
	req := require.New(t)
	s := NewConnectionSink("conn-1", "alice", 1)

	// Given an empty buffer, the event is queued
	req.NoError(s.Consume(context.Background(), event.Event{Name: event.NewMessage}))

	// When the buffer is full, the event is dropped without blocking
	err := s.Consume(context.Background(), event.Event{Name: event.MessageUpdated})
	req.ErrorIs(err, errors.ErrSinkFull)

	select {
	case evt := <-s.Events():
		req.Equal(event.NewMessage, evt.Name)
	case <-time.After(time.Second):
		req.Fail("event should have been buffered")
	}
}

func TestConnectionSink_Closed(t *testing.T) {
	req := require.New(t)
	s := NewConnectionSink("conn-1", "alice", 4)

	s.Close()
	s.Close()

	req.ErrorIs(s.Consume(context.Background(), event.Event{Name: event.NewMessage}), errors.ErrSinkClosed)
	select {
	case <-s.Done():
	default:
		req.Fail("done channel should be closed")
	}
}
