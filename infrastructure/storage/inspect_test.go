package storage

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func Test_Scan_Records_Decodes_Every_Keyspace(t *testing.T) {
	req := require.New(t)
	db := newTestDB(t)
	users := NewUserRepository(db)
	messages := NewMessageRepository(db, testLogger())
	contacts := NewContactRepository(db, testLogger())

	aliceID, err := users.CreateUser("alice", "alice@example.com", "secret-hash")
	req.NoError(err)
	req.NoError(messages.StoreMessage(newDiskMessage(aliceID, "bob", "hello", time.Now())))
	req.NoError(contacts.CreateContact(newDiskContact(aliceID, "bob", "Bobby")))

	kinds := map[string]int{}
	for _, prefix := range Prefixes() {
		records, err := ScanRecords(db, prefix, 0)
		req.NoError(err)
		for _, record := range records {
			kinds[record.Kind]++
			req.NotContains(record.Summary, "secret-hash")
		}
	}

	req.Equal(map[string]int{
		"USER": 1, "USER_EMAIL": 1, "USER_NAME": 1,
		"MESSAGE": 1, "INDEX": 4,
		"CONTACT": 1, "CONTACT_TARGET": 1,
	}, kinds)
}

func Test_Scan_Records_Limit(t *testing.T) {
	req := require.New(t)
	db := newTestDB(t)
	messages := NewMessageRepository(db, testLogger())
	for i := 0; i < 5; i++ {
		req.NoError(messages.StoreMessage(newDiskMessage("alice", "bob", "x", time.Now())))
	}

	records, err := ScanRecords(db, messagePrefix, 2)

	req.NoError(err)
	req.Len(records, 2)
}

func Test_Describe_Undecodable_Record(t *testing.T) {
	req := require.New(t)

	record := DescribeRecord(messagePrefix+"broken", []byte{0xff, 0x00})

	req.Equal("MESSAGE", record.Kind)
	req.True(strings.HasPrefix(record.Summary, "undecodable"))
}
