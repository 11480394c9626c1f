// Package domain contains core concepts of the direct-messaging system.
// This file defines Message and the rules governing its mutation.
// No runtime, network, or storage logic should be added here.
package domain

import (
	"time"
)

const (
	// MaxTextLength is counted in characters (runes), not bytes.
	MaxTextLength = 1000
	// PageSize is the fixed page size of a conversation listing.
	PageSize = 25
	// EditWindow bounds how long after creation a sender may edit or delete a message.
	EditWindow = 300 * time.Second
)

// Message is a text exchanged between exactly two identities.
// SenderID, ReceiverID and CreatedAt never change after creation.
type Message struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"senderId"`
	ReceiverID string    `json:"receiverId"`
	Text       string    `json:"text"`
	CreatedAt  time.Time `json:"createdAt"`
	Read       bool      `json:"read"`
}

// PartnerOf returns the other participant of the message from userID's point of view.
func (m Message) PartnerOf(userID string) string {
	if m.SenderID == userID {
		return m.ReceiverID
	}
	return m.SenderID
}

// ConversationKey identifies the pair regardless of direction.
func (m Message) ConversationKey() string {
	return ConversationKey(m.SenderID, m.ReceiverID)
}

// ConversationKey orders the two identities so that (a, b) and (b, a) share a key.
func ConversationKey(userA, userB string) string {
	lo, hi := OrderedPair(userA, userB)
	return lo + ":" + hi
}

func OrderedPair(userA, userB string) (string, string) {
	if userA <= userB {
		return userA, userB
	}
	return userB, userA
}

// WithinEditWindow reports whether a message created at createdAt may still be mutated at now.
// The boundary is inclusive: exactly window after creation is still allowed.
func WithinEditWindow(now, createdAt time.Time, window time.Duration) bool {
	return now.Sub(createdAt) <= window
}

// PageOffset converts a 1-indexed page into an offset. Pages below 1 are treated as 1.
func PageOffset(page, pageSize int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * pageSize
}

// MessagePage is one page of a conversation, newest first.
// A Count equal to Limit means more pages may exist.
type MessagePage struct {
	Page     int       `json:"page"`
	Limit    int       `json:"limit"`
	Count    int       `json:"count"`
	Messages []Message `json:"messages"`
}
