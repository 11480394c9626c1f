package services

import (
	"context"
	"dm-lab/contract"
	"dm-lab/domain"
	"dm-lab/domain/event"
	"dm-lab/errors"
	"dm-lab/infrastructure/storage"
	"dm-lab/runtime"
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

const (
	defaultSearchLimit = 25
	maxSearchLimit     = 100
)

type IMessageService interface {
	Send(ctx context.Context, cmd domain.SendMessageCommand) (domain.Message, error)
	Edit(ctx context.Context, cmd domain.EditMessageCommand) (domain.Message, error)
	Delete(ctx context.Context, cmd domain.DeleteMessageCommand) error
	ListBetween(ctx context.Context, cmd domain.ListMessagesCommand) (domain.MessagePage, error)
	MarkRead(ctx context.Context, cmd domain.MarkReadCommand) (int, error)
	Search(ctx context.Context, cmd domain.SearchMessagesCommand) ([]domain.Message, error)
}

// MessageService persists messages first and notifies the participants second.
// Mutations of one conversation are serialized by a keyed lock held across the
// write and the enqueue, which keeps the event order equal to the write order.
type MessageService struct {
	log        *slog.Logger
	messages   storage.IMessageRepository
	index      storage.IMessageIndex
	directory  contract.IdentityDirectory
	publisher  contract.EventPublisher
	moderator  contract.TextModerator
	locks      *runtime.KeyedMutex
	now        func() time.Time
	editWindow time.Duration
}

// NewMessageService wires the message use cases. moderator may be nil when moderation is disabled.
func NewMessageService(
	log *slog.Logger,
	messages storage.IMessageRepository,
	index storage.IMessageIndex,
	directory contract.IdentityDirectory,
	publisher contract.EventPublisher,
	moderator contract.TextModerator,
	locks *runtime.KeyedMutex,
	now func() time.Time,
) *MessageService {
	return &MessageService{
		log:        log,
		messages:   messages,
		index:      index,
		directory:  directory,
		publisher:  publisher,
		moderator:  moderator,
		locks:      locks,
		now:        now,
		editWindow: domain.EditWindow,
	}
}

func (s *MessageService) Send(ctx context.Context, cmd domain.SendMessageCommand) (domain.Message, error) {
	if err := validateCommand(cmd); err != nil {
		return domain.Message{}, err
	}
	if err := requireText(cmd.Text); err != nil {
		return domain.Message{}, err
	}
	if _, err := s.directory.Resolve(ctx, cmd.ReceiverID); err != nil {
		if stderrors.Is(err, errors.ErrNotFound) {
			return domain.Message{}, fmt.Errorf("%w: receiver %s does not exist", errors.ErrValidation, cmd.ReceiverID)
		}
		return domain.Message{}, err
	}

	unlock := s.locks.Lock(domain.ConversationKey(cmd.SenderID, cmd.ReceiverID))
	defer unlock()

	message := domain.Message{
		ID:         uuid.NewString(),
		SenderID:   cmd.SenderID,
		ReceiverID: cmd.ReceiverID,
		Text:       s.moderate(cmd.Text),
		CreatedAt:  s.now().UTC(),
	}
	disk := toDiskMessage(message)
	if err := s.messages.StoreMessage(disk); err != nil {
		return domain.Message{}, err
	}
	s.indexMessage(disk)

	s.publisher.Publish(event.Event{
		Name:       event.NewMessage,
		Recipients: participants(message),
		Payload:    message,
	})
	s.log.Debug("Message sent", "message_id", message.ID, "sender_id", message.SenderID, "receiver_id", message.ReceiverID)
	return message, nil
}

func (s *MessageService) Edit(ctx context.Context, cmd domain.EditMessageCommand) (domain.Message, error) {
	if err := validateCommand(cmd); err != nil {
		return domain.Message{}, err
	}
	if err := requireText(cmd.Text); err != nil {
		return domain.Message{}, err
	}

	unlock, err := s.lockConversationOf(cmd.MessageID)
	if err != nil {
		return domain.Message{}, err
	}
	defer unlock()

	updated, err := s.messages.UpdateText(cmd.MessageID, s.mutableBy(cmd.CallerID), s.moderate(cmd.Text))
	if err != nil {
		return domain.Message{}, err
	}
	s.indexMessage(updated)

	message := toMessage(updated)
	s.publisher.Publish(event.Event{
		Name:       event.MessageUpdated,
		Recipients: participants(message),
		Payload:    message,
	})
	return message, nil
}

func (s *MessageService) Delete(ctx context.Context, cmd domain.DeleteMessageCommand) error {
	if err := validateCommand(cmd); err != nil {
		return err
	}

	unlock, err := s.lockConversationOf(cmd.MessageID)
	if err != nil {
		return err
	}
	defer unlock()

	deleted, err := s.messages.DeleteMessage(cmd.MessageID, s.mutableBy(cmd.CallerID))
	if err != nil {
		return err
	}
	if err = s.index.Remove(deleted.ID); err != nil {
		s.log.Warn("Message not removed from search index", "message_id", deleted.ID, "error", err)
	}

	message := toMessage(deleted)
	s.publisher.Publish(event.Event{
		Name:       event.MessageDeleted,
		Recipients: participants(message),
		Payload: event.MessageDeletedPayload{
			MessageID:  message.ID,
			SenderID:   message.SenderID,
			ReceiverID: message.ReceiverID,
		},
	})
	return nil
}

func (s *MessageService) ListBetween(_ context.Context, cmd domain.ListMessagesCommand) (domain.MessagePage, error) {
	if err := validateCommand(cmd); err != nil {
		return domain.MessagePage{}, err
	}
	page := max(cmd.Page, 1)
	messages, err := s.messages.GetConversation(cmd.UserID, cmd.PartnerID, domain.PageOffset(page, domain.PageSize), domain.PageSize)
	if err != nil {
		return domain.MessagePage{}, err
	}
	return domain.MessagePage{
		Page:     page,
		Limit:    domain.PageSize,
		Count:    len(messages),
		Messages: toMessages(messages),
	}, nil
}

// MarkRead acknowledges every message partnerID sent to readerID. Both parties are told how many changed.
func (s *MessageService) MarkRead(_ context.Context, cmd domain.MarkReadCommand) (int, error) {
	if err := validateCommand(cmd); err != nil {
		return 0, err
	}

	unlock := s.locks.Lock(domain.ConversationKey(cmd.ReaderID, cmd.PartnerID))
	defer unlock()

	count, err := s.messages.MarkRead(cmd.ReaderID, cmd.PartnerID)
	if err != nil {
		return 0, err
	}
	s.publisher.Publish(event.Event{
		Name:       event.MessagesRead,
		Recipients: []string{cmd.PartnerID, cmd.ReaderID},
		Payload:    event.MessagesReadPayload{By: cmd.ReaderID, Count: count},
	})
	return count, nil
}

// Search returns the messages of the conversation whose text matches terms, best match first.
func (s *MessageService) Search(ctx context.Context, cmd domain.SearchMessagesCommand) ([]domain.Message, error) {
	if err := validateCommand(cmd); err != nil {
		return nil, err
	}
	limit := cmd.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	limit = min(limit, maxSearchLimit)

	ids, err := s.index.Search(ctx, cmd.UserID, cmd.PartnerID, cmd.Terms, limit)
	if err != nil {
		return nil, err
	}
	results := make([]domain.Message, 0, len(ids))
	pair := domain.ConversationKey(cmd.UserID, cmd.PartnerID)
	for _, id := range ids {
		message, err := s.messages.GetMessage(id)
		if stderrors.Is(err, errors.ErrNotFound) {
			// The index lags behind a delete
			continue
		}
		if err != nil {
			return nil, err
		}
		if domain.ConversationKey(message.SenderID, message.ReceiverID) != pair {
			continue
		}
		results = append(results, toMessage(message))
	}
	return results, nil
}

// mutableBy is evaluated inside the update transaction so that the ownership and
// window checks and the write observe the same record.
func (s *MessageService) mutableBy(callerID string) storage.Guard {
	return func(message storage.DiskMessage) error {
		if message.SenderID != callerID {
			return fmt.Errorf("%w: message %s was sent by someone else", errors.ErrForbidden, message.ID)
		}
		if !domain.WithinEditWindow(s.now(), message.CreatedAt(), s.editWindow) {
			return fmt.Errorf("%w: message %s is older than %s", errors.ErrExpiredWindow, message.ID, s.editWindow)
		}
		return nil
	}
}

// lockConversationOf locks the conversation a message belongs to.
// Sender and receiver never change, so the key read before locking stays valid.
func (s *MessageService) lockConversationOf(messageID string) (func(), error) {
	message, err := s.messages.GetMessage(messageID)
	if err != nil {
		return nil, err
	}
	return s.locks.Lock(domain.ConversationKey(message.SenderID, message.ReceiverID)), nil
}

func (s *MessageService) moderate(text string) string {
	if s.moderator == nil {
		return text
	}
	censored, found := s.moderator.Censor(text)
	if len(found) > 0 {
		s.log.Info("Message censored", "words", len(found))
	}
	return censored
}

// indexMessage keeps search in step with the store. The store is authoritative, so failures are only logged.
func (s *MessageService) indexMessage(message storage.DiskMessage) {
	if err := s.index.Index(message); err != nil {
		s.log.Warn("Message not indexed", "message_id", message.ID, "error", err)
	}
}

func participants(message domain.Message) []string {
	return []string{message.ReceiverID, message.SenderID}
}
