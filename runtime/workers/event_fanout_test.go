package workers

import (
	"context"
	"dm-lab/domain/event"
	"dm-lab/mocks"
	"log/slog"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestEventFanout_Drains_Queue(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	deliverer := mocks.NewMockEventDeliverer(ctrl)
	events := make(chan event.Event, 2)
	worker := NewEventFanout(log, events, deliverer, event.NewLatencyHandler(log, time.Second))

	done := make(chan struct{})
	gomock.InOrder(
		deliverer.EXPECT().Deliver(gomock.Any(), event.Event{Name: event.NewMessage}).Return(1),
		deliverer.EXPECT().Deliver(gomock.Any(), event.Event{Name: event.MessagesRead}).DoAndReturn(
			func(ctx context.Context, evt event.Event) int {
				close(done)
				return 2
			}),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errChan := make(chan error, 1)
	go func() { errChan <- worker.Run(ctx) }()

	events <- event.Event{Name: event.NewMessage}
	events <- event.Event{Name: event.MessagesRead}

	select {
	case <-done:
	case <-time.After(time.Second):
		req.FailNow("events were not fanned out")
	}

	// When the context is cancelled the worker exits cleanly
	cancel()
	select {
	case err := <-errChan:
		req.NoError(err)
	case <-time.After(time.Second):
		req.Fail("worker did not stop")
	}
}

func TestEventFanout_Stops_On_Closed_Queue(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	events := make(chan event.Event)
	close(events)
	worker := NewEventFanout(log, events, mocks.NewMockEventDeliverer(ctrl), nil)

	req.NoError(worker.Run(context.Background()))
}
