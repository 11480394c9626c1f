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
	"strings"

	"github.com/google/uuid"
)

type IContactService interface {
	Create(ctx context.Context, cmd domain.CreateContactCommand) (domain.ContactView, error)
	List(ctx context.Context, ownerID string) ([]domain.ContactView, error)
	Get(ctx context.Context, ownerID, contactID string) (domain.ContactView, error)
	Rename(ctx context.Context, cmd domain.RenameContactCommand) (domain.ContactView, error)
	Remove(ctx context.Context, ownerID, contactID string) error
}

// ContactService manages the owner-private address book. Contact events only reach their owner.
type ContactService struct {
	log       *slog.Logger
	contacts  storage.IContactRepository
	directory contract.IdentityDirectory
	publisher contract.EventPublisher
	locks     *runtime.KeyedMutex
}

func NewContactService(log *slog.Logger, contacts storage.IContactRepository, directory contract.IdentityDirectory,
	publisher contract.EventPublisher, locks *runtime.KeyedMutex) *ContactService {
	return &ContactService{log: log, contacts: contacts, directory: directory, publisher: publisher, locks: locks}
}

func (s *ContactService) Create(ctx context.Context, cmd domain.CreateContactCommand) (domain.ContactView, error) {
	cmd.Name = strings.TrimSpace(cmd.Name)
	cmd.Email = strings.TrimSpace(cmd.Email)
	cmd.DisplayName = strings.TrimSpace(cmd.DisplayName)
	if err := validateCommand(cmd); err != nil {
		return domain.ContactView{}, err
	}

	target, err := s.directory.FindByNameOrEmail(ctx, cmd.Name, cmd.Email)
	if err != nil {
		return domain.ContactView{}, err
	}
	if target.ID == cmd.OwnerID {
		return domain.ContactView{}, fmt.Errorf("%w: a user cannot add themselves as a contact", errors.ErrValidation)
	}

	unlock := s.locks.Lock(ownerLockKey(cmd.OwnerID))
	defer unlock()

	contact := storage.DiskContact{
		ID:            uuid.NewString(),
		OwnerID:       cmd.OwnerID,
		ContactUserID: target.ID,
		DisplayName:   cmd.DisplayName,
	}
	if err = s.contacts.CreateContact(contact); err != nil {
		return domain.ContactView{}, err
	}

	view := domain.ContactView{Contact: toContact(contact), ContactUser: target}
	s.publish(event.ContactCreated, cmd.OwnerID, view)
	return view, nil
}

// List returns the owner's contacts with their target identity.
// Contacts whose target no longer resolves are skipped.
func (s *ContactService) List(ctx context.Context, ownerID string) ([]domain.ContactView, error) {
	contacts, err := s.contacts.ListContacts(ownerID)
	if err != nil {
		return nil, err
	}
	views := make([]domain.ContactView, 0, len(contacts))
	for _, contact := range contacts {
		view, err := s.resolve(ctx, contact)
		if stderrors.Is(err, errors.ErrNotFound) {
			s.log.Debug("Contact target vanished", "contact_id", contact.ID, "user_id", contact.ContactUserID)
			continue
		}
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *ContactService) Get(ctx context.Context, ownerID, contactID string) (domain.ContactView, error) {
	contact, err := s.contacts.GetContact(ownerID, contactID)
	if err != nil {
		return domain.ContactView{}, err
	}
	return s.resolve(ctx, contact)
}

// Rename changes the display name only. A blank name leaves the contact untouched.
func (s *ContactService) Rename(ctx context.Context, cmd domain.RenameContactCommand) (domain.ContactView, error) {
	cmd.DisplayName = strings.TrimSpace(cmd.DisplayName)
	if err := validateCommand(cmd); err != nil {
		return domain.ContactView{}, err
	}
	if cmd.DisplayName == "" {
		return s.Get(ctx, cmd.OwnerID, cmd.ContactID)
	}

	unlock := s.locks.Lock(ownerLockKey(cmd.OwnerID))
	defer unlock()

	updated, err := s.contacts.UpdateDisplayName(cmd.OwnerID, cmd.ContactID, cmd.DisplayName)
	if err != nil {
		return domain.ContactView{}, err
	}
	view, err := s.resolve(ctx, updated)
	if err != nil {
		// The rename is durable even if the target cannot be shown
		s.log.Warn("Renamed contact target not resolved", "contact_id", updated.ID, "error", err)
		view = domain.ContactView{Contact: toContact(updated)}
	}
	s.publish(event.ContactUpdated, cmd.OwnerID, view)
	return view, nil
}

func (s *ContactService) Remove(_ context.Context, ownerID, contactID string) error {
	unlock := s.locks.Lock(ownerLockKey(ownerID))
	defer unlock()

	deleted, err := s.contacts.DeleteContact(ownerID, contactID)
	if err != nil {
		return err
	}
	s.publish(event.ContactDeleted, ownerID, event.ContactDeletedPayload{ContactID: deleted.ID})
	return nil
}

func (s *ContactService) resolve(ctx context.Context, contact storage.DiskContact) (domain.ContactView, error) {
	target, err := s.directory.Resolve(ctx, contact.ContactUserID)
	if err != nil {
		return domain.ContactView{}, err
	}
	return domain.ContactView{Contact: toContact(contact), ContactUser: target}, nil
}

func (s *ContactService) publish(name event.Name, ownerID string, payload any) {
	s.publisher.Publish(event.Event{Name: name, Recipients: []string{ownerID}, Payload: payload})
}

// ownerLockKey cannot collide with a conversation key, which always contains a ':' between two ids.
func ownerLockKey(ownerID string) string {
	return "contacts/" + ownerID
}
