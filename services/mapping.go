package services

import (
	"dm-lab/domain"
	"dm-lab/infrastructure/storage"

	"github.com/samber/lo"
)

func toMessage(m storage.DiskMessage) domain.Message {
	return domain.Message{
		ID:         m.ID,
		SenderID:   m.SenderID,
		ReceiverID: m.ReceiverID,
		Text:       m.Text,
		CreatedAt:  m.CreatedAt(),
		Read:       m.Read,
	}
}

func toMessages(messages []storage.DiskMessage) []domain.Message {
	return lo.Map(messages, func(item storage.DiskMessage, _ int) domain.Message {
		return toMessage(item)
	})
}

func toDiskMessage(m domain.Message) storage.DiskMessage {
	return storage.DiskMessage{
		ID:         m.ID,
		SenderID:   m.SenderID,
		ReceiverID: m.ReceiverID,
		Text:       m.Text,
		At:         m.CreatedAt.UnixNano(),
		Read:       m.Read,
	}
}

func toContact(c storage.DiskContact) domain.Contact {
	return domain.Contact{
		ID:            c.ID,
		OwnerID:       c.OwnerID,
		ContactUserID: c.ContactUserID,
		DisplayName:   c.DisplayName,
	}
}

func toIdentity(u storage.User) domain.Identity {
	return domain.Identity{ID: u.ID, Name: u.Name, Email: u.Email}
}
