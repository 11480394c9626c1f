package storage

import (
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
)

const (
	KindMessage       = "MESSAGE"
	KindContactTarget = "CONTACT_TARGET"
	KindContact       = "CONTACT"
	KindUserEmail     = "USER_EMAIL"
	KindUserName      = "USER_NAME"
	KindUser          = "USER"
	KindIndex         = "INDEX"
	KindUnknown       = "UNKNOWN"
)

// Record is one key of the keyspace, decoded for display.
type Record struct {
	Key     string
	Kind    string
	At      string
	Summary string
}

// Prefixes lists the keyspaces the repositories write.
func Prefixes() []string {
	return []string{
		messagePrefix, conversationPrefix, participantPrefix, unreadPrefix,
		contactPrefix, contactTargetPrefix,
		userPrefix, userEmailPrefix, userNamePrefix,
	}
}

// ScanRecords walks every key under prefix in key order, at most limit records (0 means all).
func ScanRecords(db *badger.DB, prefix string, limit int) ([]Record, error) {
	var records []Record
	err := db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.Prefix = []byte(prefix)
		it := txn.NewIterator(options)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if limit > 0 && len(records) >= limit {
				return nil
			}
			item := it.Item()
			value, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			records = append(records, DescribeRecord(string(item.KeyCopy(nil)), value))
		}
		return nil
	})
	return records, err
}

// DescribeRecord decodes a value according to the keyspace of its key.
// Password hashes are never part of the summary.
func DescribeRecord(key string, value []byte) Record {
	record := Record{Key: key}
	switch {
	case strings.HasPrefix(key, messagePrefix):
		record.Kind = KindMessage
		var message DiskMessage
		if err := decode(value, &message); err != nil {
			record.Summary = fmt.Sprintf("undecodable: %v", err)
			return record
		}
		record.At = message.CreatedAt().Format(time.RFC3339)
		record.Summary = fmt.Sprintf("%s -> %s read=%t %q", message.SenderID, message.ReceiverID, message.Read, message.Text)
	case strings.HasPrefix(key, contactTargetPrefix):
		record.Kind = KindContactTarget
		record.Summary = string(value)
	case strings.HasPrefix(key, contactPrefix):
		record.Kind = KindContact
		var contact DiskContact
		if err := decode(value, &contact); err != nil {
			record.Summary = fmt.Sprintf("undecodable: %v", err)
			return record
		}
		record.Summary = fmt.Sprintf("%s -> %s %q", contact.OwnerID, contact.ContactUserID, contact.DisplayName)
	case strings.HasPrefix(key, userEmailPrefix):
		record.Kind = KindUserEmail
		record.Summary = string(value)
	case strings.HasPrefix(key, userNamePrefix):
		record.Kind = KindUserName
	case strings.HasPrefix(key, userPrefix):
		record.Kind = KindUser
		var user diskUser
		if err := decode(value, &user); err != nil {
			record.Summary = fmt.Sprintf("undecodable: %v", err)
			return record
		}
		record.At = time.Unix(0, user.CreatedAt).UTC().Format(time.RFC3339)
		record.Summary = fmt.Sprintf("%s <%s> roles=%s", user.Name, user.Email, strings.Join(user.Roles, ","))
	case strings.HasPrefix(key, conversationPrefix), strings.HasPrefix(key, participantPrefix),
		strings.HasPrefix(key, unreadPrefix):
		record.Kind = KindIndex
	default:
		record.Kind = KindUnknown
	}
	return record
}
