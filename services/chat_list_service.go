package services

import (
	"context"
	"dm-lab/contract"
	"dm-lab/domain"
	"dm-lab/errors"
	"dm-lab/infrastructure/storage"
	stderrors "errors"
	"log/slog"

	"github.com/samber/lo"
)

type IChatListService interface {
	BuildChatList(ctx context.Context, userID string) ([]domain.ConversationSummary, error)
}

// ChatListService derives the conversation list on every call. Nothing is cached or stored.
type ChatListService struct {
	log       *slog.Logger
	messages  storage.IMessageRepository
	contacts  storage.IContactRepository
	directory contract.IdentityDirectory
}

func NewChatListService(log *slog.Logger, messages storage.IMessageRepository,
	contacts storage.IContactRepository, directory contract.IdentityDirectory) *ChatListService {
	return &ChatListService{log: log, messages: messages, contacts: contacts, directory: directory}
}

// BuildChatList streams every message of userID through a ChatList, which keeps one row per partner.
// Display names come from the user's contacts first, then from the partner's identity.
func (s *ChatListService) BuildChatList(ctx context.Context, userID string) ([]domain.ConversationSummary, error) {
	chatList := domain.NewChatList(userID)
	if err := s.messages.ScanUserMessages(userID, func(message storage.DiskMessage) {
		chatList.Observe(toMessage(message))
	}); err != nil {
		return nil, err
	}

	partners := chatList.Partners()
	if len(partners) == 0 {
		return []domain.ConversationSummary{}, nil
	}

	contacts, err := s.contacts.ListContacts(userID)
	if err != nil {
		return nil, err
	}
	displayNames := lo.SliceToMap(contacts, func(c storage.DiskContact) (string, string) {
		return c.ContactUserID, c.DisplayName
	})

	identities := make(map[string]domain.Identity, len(partners))
	for _, partner := range partners {
		identity, err := s.directory.Resolve(ctx, partner)
		if stderrors.Is(err, errors.ErrNotFound) {
			s.log.Debug("Chat partner no longer exists", "user_id", userID, "partner_id", partner)
			continue
		}
		if err != nil {
			return nil, err
		}
		identities[partner] = identity
	}

	return chatList.Summaries(displayNames, identities), nil
}
