//go:generate go run go.uber.org/mock/mockgen -source=message_repository.go -destination=../../mocks/mock_message_repository.go -package=mocks
package storage

import (
	"bytes"
	"dm-lab/errors"
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
)

const (
	messagePrefix      = "msg:"
	conversationPrefix = "conv:"
	participantPrefix  = "umsg:"
	unreadPrefix       = "unread:"
)

// Guard is evaluated inside the mutating transaction, against the freshly read record.
// Returning an error aborts the mutation and is handed back to the caller unchanged.
type Guard func(message DiskMessage) error

type IMessageRepository interface {
	StoreMessage(message DiskMessage) error
	GetMessage(id string) (DiskMessage, error)
	UpdateText(id string, guard Guard, text string) (DiskMessage, error)
	DeleteMessage(id string, guard Guard) (DiskMessage, error)
	GetConversation(userA, userB string, offset, limit int) ([]DiskMessage, error)
	ScanUserMessages(userID string, visit func(DiskMessage)) error
	MarkRead(readerID, partnerID string) (int, error)
}

type MessageRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewMessageRepository(db *badger.DB, log *slog.Logger) *MessageRepository {
	return &MessageRepository{db: db, log: log}
}

type DiskMessage struct {
	ID         string `cbor:"id"`
	SenderID   string `cbor:"sender"`
	ReceiverID string `cbor:"receiver"`
	Text       string `cbor:"text"`
	At         int64  `cbor:"at"`
	Read       bool   `cbor:"read"`
}

func (m DiskMessage) CreatedAt() time.Time {
	return time.Unix(0, m.At).UTC()
}

// StoreMessage persists a message and its three secondary indexes atomically:
//   - "conv:{lo}:{hi}:{timestamp_padded}:{id}" orders a conversation chronologically,
//   - "umsg:{user}:{timestamp_padded}:{id}" lists every message a user takes part in,
//   - "unread:{receiver}:{sender}:{id}" exists while the message is unread.
func (m *MessageRepository) StoreMessage(message DiskMessage) error {
	data, err := encode(message)
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}
	return update(m.db, m.log, func(txn *badger.Txn) error {
		if err := txn.Set(messageKey(message.ID), data); err != nil {
			return err
		}
		for _, key := range indexKeys(message) {
			if err := txn.Set(key, nil); err != nil {
				return err
			}
		}
		if !message.Read {
			return txn.Set(unreadKey(message), nil)
		}
		return nil
	})
}

func (m *MessageRepository) GetMessage(id string) (DiskMessage, error) {
	var message DiskMessage
	err := m.db.View(func(txn *badger.Txn) error {
		var err error
		message, err = getMessage(txn, id)
		return err
	})
	return message, err
}

// UpdateText replaces the text of a message once guard accepts the current record.
func (m *MessageRepository) UpdateText(id string, guard Guard, text string) (DiskMessage, error) {
	var updated DiskMessage
	err := update(m.db, m.log, func(txn *badger.Txn) error {
		current, err := getMessage(txn, id)
		if err != nil {
			return err
		}
		if err = guard(current); err != nil {
			return err
		}
		current.Text = text
		data, err := encode(current)
		if err != nil {
			return err
		}
		updated = current
		return txn.Set(messageKey(id), data)
	})
	return updated, err
}

// DeleteMessage removes a message with all of its index entries once guard accepts it.
func (m *MessageRepository) DeleteMessage(id string, guard Guard) (DiskMessage, error) {
	var deleted DiskMessage
	err := update(m.db, m.log, func(txn *badger.Txn) error {
		current, err := getMessage(txn, id)
		if err != nil {
			return err
		}
		if err = guard(current); err != nil {
			return err
		}
		keys := append(indexKeys(current), messageKey(id), unreadKey(current))
		for _, key := range keys {
			if err = txn.Delete(key); err != nil {
				return err
			}
		}
		deleted = current
		return nil
	})
	return deleted, err
}

// GetConversation returns the messages exchanged by the pair in either direction, newest first.
// Pagination is stateless: offset entries are skipped on every call.
func (m *MessageRepository) GetConversation(userA, userB string, offset, limit int) ([]DiskMessage, error) {
	messages := make([]DiskMessage, 0, limit)
	err := m.db.View(func(txn *badger.Txn) error {
		prefix := []byte(conversationKeyPrefix(userA, userB))
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		options.PrefetchValues = false
		options.Prefix = prefix
		it := txn.NewIterator(options)
		defer it.Close()

		// 0xFF sorts after every digit, so the reverse seek lands on the newest entry.
		seekKey := append(bytes.Clone(prefix), 0xFF)
		skipped := 0
		for it.Seek(seekKey); it.ValidForPrefix(prefix); it.Next() {
			if skipped < offset {
				skipped++
				continue
			}
			if len(messages) == limit {
				break
			}
			message, err := getMessage(txn, idFromKey(it.Item().Key()))
			if err != nil {
				return err
			}
			messages = append(messages, message)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// ScanUserMessages visits every message where userID is sender or receiver, oldest first.
func (m *MessageRepository) ScanUserMessages(userID string, visit func(DiskMessage)) error {
	return m.db.View(func(txn *badger.Txn) error {
		prefix := []byte(participantPrefix + userID + ":")
		options := badger.DefaultIteratorOptions
		options.PrefetchValues = false
		options.Prefix = prefix
		it := txn.NewIterator(options)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			message, err := getMessage(txn, idFromKey(it.Item().Key()))
			if stderrors.Is(err, errors.ErrNotFound) {
				m.log.Warn("Dangling participant index", "key", string(it.Item().Key()))
				continue
			}
			if err != nil {
				return err
			}
			visit(message)
		}
		return nil
	})
}

// MarkRead flips every unread message sent by partnerID to readerID and returns how many changed.
func (m *MessageRepository) MarkRead(readerID, partnerID string) (int, error) {
	var count int
	err := update(m.db, m.log, func(txn *badger.Txn) error {
		count = 0
		prefix := []byte(unreadPrefix + readerID + ":" + partnerID + ":")
		var keys [][]byte
		options := badger.DefaultIteratorOptions
		options.PrefetchValues = false
		options.Prefix = prefix
		it := txn.NewIterator(options)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		it.Close()

		for _, key := range keys {
			message, err := getMessage(txn, idFromKey(key))
			if err != nil && !stderrors.Is(err, errors.ErrNotFound) {
				return err
			}
			if err == nil && !message.Read {
				message.Read = true
				data, err := encode(message)
				if err != nil {
					return err
				}
				if err = txn.Set(messageKey(message.ID), data); err != nil {
					return err
				}
				count++
			}
			if err = txn.Delete(key); err != nil {
				return err
			}
		}
		return nil
	})
	return count, err
}

func getMessage(txn *badger.Txn, id string) (DiskMessage, error) {
	var message DiskMessage
	item, err := txn.Get(messageKey(id))
	if stderrors.Is(err, badger.ErrKeyNotFound) {
		return DiskMessage{}, fmt.Errorf("%w: message %s", errors.ErrNotFound, id)
	}
	if err != nil {
		return DiskMessage{}, err
	}
	err = item.Value(func(val []byte) error {
		return decode(val, &message)
	})
	return message, err
}

func messageKey(id string) []byte {
	return []byte(messagePrefix + id)
}

func conversationKeyPrefix(userA, userB string) string {
	lo, hi := orderedPair(userA, userB)
	return conversationPrefix + lo + ":" + hi + ":"
}

func indexKeys(message DiskMessage) [][]byte {
	ts := timestampKey(message.CreatedAt())
	return [][]byte{
		[]byte(conversationKeyPrefix(message.SenderID, message.ReceiverID) + ts + ":" + message.ID),
		[]byte(participantPrefix + message.SenderID + ":" + ts + ":" + message.ID),
		[]byte(participantPrefix + message.ReceiverID + ":" + ts + ":" + message.ID),
	}
}

func unreadKey(message DiskMessage) []byte {
	return []byte(unreadPrefix + message.ReceiverID + ":" + message.SenderID + ":" + message.ID)
}

// idFromKey extracts the trailing id segment of an index key.
func idFromKey(key []byte) string {
	if i := bytes.LastIndexByte(key, ':'); i >= 0 {
		return string(key[i+1:])
	}
	return string(key)
}

func orderedPair(userA, userB string) (string, string) {
	if userA <= userB {
		return userA, userB
	}
	return userB, userA
}
