package runtime

import (
	"context"
	"dm-lab/contract"
	"dm-lab/domain/event"
	"dm-lab/errors"
	"dm-lab/mocks"
	"log/slog"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestHub_Deliver_To_Recipients_Only(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	aliceSink := mocks.NewMockEventSink(ctrl)
	bobSink := mocks.NewMockEventSink(ctrl)
	carolSink := mocks.NewMockEventSink(ctrl)
	hub := NewHub(log, NewRegistry(), mocks.NewMockTokenVerifier(ctrl), time.Second)

	// Given three connected identities
	hub.Connect("c-alice", "alice", aliceSink)
	hub.Connect("c-bob", "bob", bobSink)
	hub.Connect("c-carol", "carol", carolSink)

	evt := event.Event{Name: event.NewMessage, Recipients: []string{"alice", "bob"}}

	// Then only the two participants receive it
	aliceSink.EXPECT().Consume(gomock.Any(), evt).Return(nil).Times(1)
	bobSink.EXPECT().Consume(gomock.Any(), evt).Return(nil).Times(1)
	carolSink.EXPECT().Consume(gomock.Any(), gomock.Any()).Times(0)

	req.Equal(2, hub.Deliver(context.Background(), evt))
}

func TestHub_Deliver_Ignores_Failing_Sink(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	slowTab := mocks.NewMockEventSink(ctrl)
	fastTab := mocks.NewMockEventSink(ctrl)
	hub := NewHub(log, NewRegistry(), mocks.NewMockTokenVerifier(ctrl), time.Second)
	hub.Connect("tab-1", "alice", slowTab)
	hub.Connect("tab-2", "alice", fastTab)

	slowTab.EXPECT().Consume(gomock.Any(), gomock.Any()).Return(errors.ErrSinkFull).Times(1)
	fastTab.EXPECT().Consume(gomock.Any(), gomock.Any()).Return(nil).Times(1)

	// When one tab is saturated, the other one still gets the event
	req.Equal(1, hub.Deliver(context.Background(), event.Event{Name: event.MessagesRead, Recipients: []string{"alice"}}))
}

func TestHub_Auxiliary_Channel_Cannot_Alias_Identity(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	registry := NewRegistry()
	intruder := mocks.NewMockEventSink(ctrl)
	hub := NewHub(log, registry, mocks.NewMockTokenVerifier(ctrl), time.Second)

	// Given mallory joins a channel named after bob's identity channel
	hub.Connect("c-mallory", "mallory", intruder)
	req.True(hub.Join("c-mallory", IdentityChannel("bob"), intruder))
	req.False(hub.Join("c-mallory", "   ", intruder))

	// Then bob's events never reach mallory
	intruder.EXPECT().Consume(gomock.Any(), gomock.Any()).Times(0)
	req.Equal(0, hub.Deliver(context.Background(), event.Event{Name: event.NewMessage, Recipients: []string{"bob"}}))

	// When leaving, only the auxiliary membership goes away
	hub.Leave("c-mallory", IdentityChannel("bob"))
	req.Equal(contract.RegistryStats{Connections: 1, Channels: 1}, hub.Stats())

	hub.Disconnect("c-mallory")
	req.Equal(contract.RegistryStats{}, hub.Stats())
}

func TestHub_Authenticate(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	verifier := mocks.NewMockTokenVerifier(ctrl)
	hub := NewHub(log, NewRegistry(), verifier, time.Second)

	verifier.EXPECT().Verify("good").Return("alice", nil)
	verifier.EXPECT().Verify("bad").Return("", errors.ErrUnauthenticated)

	userID, err := hub.Authenticate("good")
	req.NoError(err)
	req.Equal("alice", userID)

	_, err = hub.Authenticate("bad")
	req.ErrorIs(err, errors.ErrUnauthenticated)
}
