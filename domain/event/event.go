// Package event lists the real-time notifications pushed to connected identities.
// Names and payload field names are part of the client contract.
package event

import (
	"time"
)

type Name string

const (
	NewMessage     Name = "newMessage"
	MessageUpdated Name = "messageUpdated"
	MessageDeleted Name = "messageDeleted"
	MessagesRead   Name = "messagesRead"
	ContactCreated Name = "contactCreated"
	ContactUpdated Name = "contactUpdated"
	ContactDeleted Name = "contactDeleted"

	// Connection lifecycle signals, emitted by the transport itself.
	Connected    Name = "connected"
	Unauthorized Name = "unauthorized"
)

// Event is a named payload addressed to one or more channels.
// Recipients are identity ids; Channel, when set, targets an auxiliary channel instead.
type Event struct {
	Name       Name
	Recipients []string
	Channel    string
	Payload    any
	CreatedAt  time.Time
}

// Frame is the wire representation of an event.
type Frame struct {
	Event Name `json:"event"`
	Data  any  `json:"data,omitempty"`
}

func (e Event) Frame() Frame {
	return Frame{Event: e.Name, Data: e.Payload}
}

type MessageDeletedPayload struct {
	MessageID  string `json:"messageId"`
	SenderID   string `json:"senderId"`
	ReceiverID string `json:"receiverId"`
}

type MessagesReadPayload struct {
	By    string `json:"by"`
	Count int    `json:"count"`
}

type ContactDeletedPayload struct {
	ContactID string `json:"contactId"`
}

type ConnectedPayload struct {
	UserID string `json:"userId"`
}
