package services

import (
	"context"
	"dm-lab/domain"
	"dm-lab/domain/event"
	"dm-lab/errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestContactService_Create(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	f := newFixture(t)
	alice := f.register(t, "alice", "alice@example.com")
	bob := f.register(t, "bob", "bob@example.com")

	// When alice adds bob by email
	view, err := f.contactService.Create(ctx, domain.CreateContactCommand{OwnerID: alice.ID, Email: "BOB@example.com", DisplayName: " Bobby "})
	req.NoError(err)
	req.Equal(bob.ID, view.ContactUserID)
	req.Equal("Bobby", view.DisplayName)
	req.Equal(bob, view.ContactUser)

	// Then only alice is notified
	events := f.publisher.Events()
	req.Len(events, 1)
	req.Equal(event.ContactCreated, events[0].Name)
	req.Equal([]string{alice.ID}, events[0].Recipients)

	// And a second contact for the same pair is a duplicate, even by name
	_, err = f.contactService.Create(ctx, domain.CreateContactCommand{OwnerID: alice.ID, Name: "bob", DisplayName: "Again"})
	req.ErrorIs(err, errors.ErrDuplicate)
	req.Len(f.publisher.Events(), 1)
}

func TestContactService_Create_Failures(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	alice := f.register(t, "alice", "alice@example.com")
	f.register(t, "bob", "bob@example.com")
	f.register(t, "sam", "sam.one@example.com")
	f.register(t, "sam", "sam.two@example.com")

	tests := []struct {
		name    string
		cmd     domain.CreateContactCommand
		wantErr error
	}{
		{"unknown target", domain.CreateContactCommand{OwnerID: alice.ID, Name: "nobody", DisplayName: "X"}, errors.ErrNotFound},
		{"self target", domain.CreateContactCommand{OwnerID: alice.ID, Email: "alice@example.com", DisplayName: "Me"}, errors.ErrValidation},
		{"empty display name", domain.CreateContactCommand{OwnerID: alice.ID, Name: "bob", DisplayName: "  "}, errors.ErrValidation},
		{"no target", domain.CreateContactCommand{OwnerID: alice.ID, DisplayName: "X"}, errors.ErrValidation},
		{"homonyms", domain.CreateContactCommand{OwnerID: alice.ID, Name: "sam", DisplayName: "Sam"}, errors.ErrAmbiguousIdentity},
		{"name and email disagree", domain.CreateContactCommand{OwnerID: alice.ID, Name: "bob", Email: "sam.one@example.com", DisplayName: "X"}, errors.ErrAmbiguousIdentity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			_, err := f.contactService.Create(ctx, tt.cmd)
			req.ErrorIs(err, tt.wantErr)
		})
	}
	require.Empty(t, f.publisher.Events())
}

func TestContactService_Rename_Get_Remove(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	f := newFixture(t)
	alice := f.register(t, "alice", "alice@example.com")
	bob := f.register(t, "bob", "bob@example.com")
	mallory := f.register(t, "mallory", "mallory@example.com")

	created, err := f.contactService.Create(ctx, domain.CreateContactCommand{OwnerID: alice.ID, Name: "bob", DisplayName: "Bobby"})
	req.NoError(err)

	renamed, err := f.contactService.Rename(ctx, domain.RenameContactCommand{OwnerID: alice.ID, ContactID: created.ID, DisplayName: "Robert"})
	req.NoError(err)
	req.Equal("Robert", renamed.DisplayName)
	req.Equal(bob.ID, renamed.ContactUserID)

	// A blank name keeps the current one
	kept, err := f.contactService.Rename(ctx, domain.RenameContactCommand{OwnerID: alice.ID, ContactID: created.ID, DisplayName: ""})
	req.NoError(err)
	req.Equal("Robert", kept.DisplayName)

	// Somebody else's contact does not exist for them
	_, err = f.contactService.Rename(ctx, domain.RenameContactCommand{OwnerID: mallory.ID, ContactID: created.ID, DisplayName: "Pwned"})
	req.ErrorIs(err, errors.ErrNotFound)
	_, err = f.contactService.Get(ctx, mallory.ID, created.ID)
	req.ErrorIs(err, errors.ErrNotFound)
	req.ErrorIs(f.contactService.Remove(ctx, mallory.ID, created.ID), errors.ErrNotFound)

	got, err := f.contactService.Get(ctx, alice.ID, created.ID)
	req.NoError(err)
	req.Equal("Robert", got.DisplayName)

	list, err := f.contactService.List(ctx, alice.ID)
	req.NoError(err)
	req.Len(list, 1)
	req.Equal(bob, list[0].ContactUser)

	// Removing frees the pair for a new contact
	req.NoError(f.contactService.Remove(ctx, alice.ID, created.ID))
	list, err = f.contactService.List(ctx, alice.ID)
	req.NoError(err)
	req.Empty(list)
	_, err = f.contactService.Create(ctx, domain.CreateContactCommand{OwnerID: alice.ID, Name: "bob", DisplayName: "Bob again"})
	req.NoError(err)

	names := make([]event.Name, 0)
	for _, evt := range f.publisher.Events() {
		req.Equal([]string{alice.ID}, evt.Recipients)
		names = append(names, evt.Name)
	}
	req.Equal([]event.Name{event.ContactCreated, event.ContactUpdated, event.ContactDeleted, event.ContactCreated}, names)
}
