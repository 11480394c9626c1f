package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWithinEditWindow(t *testing.T) {
	createdAt := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	cases := []struct {
		elapsed time.Duration
		allowed bool
	}{
		{0, true},
		{299 * time.Second, true},
		{300 * time.Second, true},
		{300*time.Second + time.Nanosecond, false},
		{301 * time.Second, false},
	}
	for _, c := range cases {
		require.Equal(t, c.allowed, WithinEditWindow(createdAt.Add(c.elapsed), createdAt, EditWindow), c.elapsed.String())
	}
}

func TestPageOffset(t *testing.T) {
	req := require.New(t)

	req.Equal(0, PageOffset(1, PageSize))
	req.Equal(25, PageOffset(2, PageSize))
	req.Equal(0, PageOffset(0, PageSize))
	req.Equal(0, PageOffset(-3, PageSize))
}

func TestConversationKey_Ignores_Direction(t *testing.T) {
	req := require.New(t)
	m := Message{SenderID: "bob", ReceiverID: "alice"}

	req.Equal("alice:bob", ConversationKey("alice", "bob"))
	req.Equal(ConversationKey("alice", "bob"), ConversationKey("bob", "alice"))
	req.Equal("alice:bob", m.ConversationKey())
	req.Equal("alice", m.PartnerOf("bob"))
	req.Equal("bob", m.PartnerOf("alice"))
}
