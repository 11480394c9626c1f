//go:generate go run go.uber.org/mock/mockgen -source=contact_repository.go -destination=../../mocks/mock_contact_repository.go -package=mocks
package storage

import (
	"dm-lab/errors"
	stderrors "errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
)

const (
	contactPrefix       = "contact:"
	contactTargetPrefix = "contact_target:"
)

type IContactRepository interface {
	CreateContact(contact DiskContact) error
	GetContact(ownerID, contactID string) (DiskContact, error)
	ListContacts(ownerID string) ([]DiskContact, error)
	UpdateDisplayName(ownerID, contactID, displayName string) (DiskContact, error)
	DeleteContact(ownerID, contactID string) (DiskContact, error)
}

type ContactRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewContactRepository(db *badger.DB, log *slog.Logger) *ContactRepository {
	return &ContactRepository{db: db, log: log}
}

type DiskContact struct {
	ID            string `cbor:"id"`
	OwnerID       string `cbor:"owner"`
	ContactUserID string `cbor:"target"`
	DisplayName   string `cbor:"display_name"`
}

// CreateContact stores the contact under its owner. The "contact_target:{owner}:{target}"
// key enforces at most one contact per (owner, target) pair inside the same transaction.
func (c *ContactRepository) CreateContact(contact DiskContact) error {
	data, err := encode(contact)
	if err != nil {
		return fmt.Errorf("encode contact: %w", err)
	}
	return update(c.db, c.log, func(txn *badger.Txn) error {
		targetKey := contactTargetKey(contact.OwnerID, contact.ContactUserID)
		if _, err := txn.Get(targetKey); err == nil {
			return errors.ErrContactExists
		} else if !stderrors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		if err := txn.Set(targetKey, []byte(contact.ID)); err != nil {
			return err
		}
		return txn.Set(contactKey(contact.OwnerID, contact.ID), data)
	})
}

// GetContact only finds contacts of ownerID: a foreign contact id is reported as not found.
func (c *ContactRepository) GetContact(ownerID, contactID string) (DiskContact, error) {
	var contact DiskContact
	err := c.db.View(func(txn *badger.Txn) error {
		var err error
		contact, err = getContact(txn, ownerID, contactID)
		return err
	})
	return contact, err
}

func (c *ContactRepository) ListContacts(ownerID string) ([]DiskContact, error) {
	var contacts []DiskContact
	err := c.db.View(func(txn *badger.Txn) error {
		prefix := []byte(contactPrefix + ownerID + ":")
		options := badger.DefaultIteratorOptions
		options.Prefix = prefix
		it := txn.NewIterator(options)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var contact DiskContact
			err := it.Item().Value(func(val []byte) error {
				return decode(val, &contact)
			})
			if err != nil {
				return err
			}
			contacts = append(contacts, contact)
		}
		return nil
	})
	return contacts, err
}

func (c *ContactRepository) UpdateDisplayName(ownerID, contactID, displayName string) (DiskContact, error) {
	var updated DiskContact
	err := update(c.db, c.log, func(txn *badger.Txn) error {
		contact, err := getContact(txn, ownerID, contactID)
		if err != nil {
			return err
		}
		contact.DisplayName = displayName
		data, err := encode(contact)
		if err != nil {
			return err
		}
		updated = contact
		return txn.Set(contactKey(ownerID, contactID), data)
	})
	return updated, err
}

func (c *ContactRepository) DeleteContact(ownerID, contactID string) (DiskContact, error) {
	var deleted DiskContact
	err := update(c.db, c.log, func(txn *badger.Txn) error {
		contact, err := getContact(txn, ownerID, contactID)
		if err != nil {
			return err
		}
		if err = txn.Delete(contactKey(ownerID, contactID)); err != nil {
			return err
		}
		deleted = contact
		return txn.Delete(contactTargetKey(ownerID, contact.ContactUserID))
	})
	return deleted, err
}

func getContact(txn *badger.Txn, ownerID, contactID string) (DiskContact, error) {
	var contact DiskContact
	item, err := txn.Get(contactKey(ownerID, contactID))
	if stderrors.Is(err, badger.ErrKeyNotFound) {
		return DiskContact{}, fmt.Errorf("%w: contact %s", errors.ErrNotFound, contactID)
	}
	if err != nil {
		return DiskContact{}, err
	}
	err = item.Value(func(val []byte) error {
		return decode(val, &contact)
	})
	return contact, err
}

func contactKey(ownerID, contactID string) []byte {
	return []byte(contactPrefix + ownerID + ":" + contactID)
}

func contactTargetKey(ownerID, targetID string) []byte {
	return []byte(contactTargetPrefix + ownerID + ":" + targetID)
}
