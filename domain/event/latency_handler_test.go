package event

import (
	"log/slog"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func TestLatencyHandler_Handle(t *testing.T) {
	req := require.New(t)
	handler := NewLatencyHandler(logs.GetLoggerFromLevel(slog.LevelDebug), 100*time.Millisecond)
	published := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	handler.now = func() time.Time { return published.Add(250 * time.Millisecond) }

	req.Equal(250*time.Millisecond, handler.Handle(Event{Name: NewMessage, CreatedAt: published}, 2))
	req.Zero(handler.Handle(Event{Name: NewMessage}, 2))
}
