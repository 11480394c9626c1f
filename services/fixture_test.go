package services

import (
	"dm-lab/domain"
	"dm-lab/domain/event"
	"dm-lab/infrastructure/storage"
	"dm-lab/runtime"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

// recordingPublisher keeps every published event in order.
type recordingPublisher struct {
	mu     sync.Mutex
	events []event.Event
}

func (p *recordingPublisher) Publish(evt event.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
}

func (p *recordingPublisher) Events() []event.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]event.Event(nil), p.events...)
}

func (p *recordingPublisher) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = nil
}

// testClock is a settable wall clock.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixture struct {
	users     *storage.UserRepository
	messages  *storage.MessageRepository
	contacts  *storage.ContactRepository
	directory *Directory
	publisher *recordingPublisher
	clock     *testClock

	messageService  *MessageService
	contactService  *ContactService
	chatListService *ChatListService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	db, err := storage.OpenInMemory()
	req.NoError(err)
	writer, err := storage.OpenIndexWriter("")
	req.NoError(err)
	t.Cleanup(func() {
		_ = writer.Close()
		_ = db.Close()
	})

	f := &fixture{
		users:     storage.NewUserRepository(db),
		messages:  storage.NewMessageRepository(db, log),
		contacts:  storage.NewContactRepository(db, log),
		publisher: &recordingPublisher{},
		clock:     &testClock{now: time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)},
	}
	f.directory = NewDirectory(f.users)
	locks := runtime.NewKeyedMutex()
	f.messageService = NewMessageService(log, f.messages, storage.NewMessageIndex(writer, log),
		f.directory, f.publisher, nil, locks, f.clock.Now)
	f.contactService = NewContactService(log, f.contacts, f.directory, f.publisher, locks)
	f.chatListService = NewChatListService(log, f.messages, f.contacts, f.directory)
	return f
}

// register stores a user directly, skipping the password hashing cost.
func (f *fixture) register(t *testing.T, name, email string) domain.Identity {
	t.Helper()
	id, err := f.users.CreateUser(name, email, "not-a-real-hash")
	require.NoError(t, err)
	return domain.Identity{ID: id, Name: name, Email: email}
}
