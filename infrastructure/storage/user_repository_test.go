package storage

import (
	"dm-lab/errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_User_Create_And_Lookup(t *testing.T) {
	req := require.New(t)
	repository := NewUserRepository(newTestDB(t))

	id, err := repository.CreateUser("alice", "  Alice@Example.com ", "hash")
	req.NoError(err)

	byID, err := repository.GetUserByID(id)
	req.NoError(err)
	req.Equal("alice@example.com", byID.Email)
	req.Equal([]string{"user"}, byID.Roles)
	req.Equal("hash", byID.PasswordHash)

	byEmail, err := repository.GetUserByEmail("ALICE@example.com")
	req.NoError(err)
	req.Equal(byID, byEmail)
}

func Test_User_Email_Is_Unique(t *testing.T) {
	req := require.New(t)
	repository := NewUserRepository(newTestDB(t))

	_, err := repository.CreateUser("alice", "alice@example.com", "hash")
	req.NoError(err)

	_, err = repository.CreateUser("alice2", "ALICE@example.com", "hash")
	req.ErrorIs(err, errors.ErrUserAlreadyExists)
	req.ErrorIs(err, errors.ErrDuplicate)
}

func Test_User_Names_May_Be_Shared(t *testing.T) {
	req := require.New(t)
	repository := NewUserRepository(newTestDB(t))

	first, err := repository.CreateUser("sam", "sam1@example.com", "hash")
	req.NoError(err)
	second, err := repository.CreateUser("sam", "sam2@example.com", "hash")
	req.NoError(err)
	_, err = repository.CreateUser("samantha", "samantha@example.com", "hash")
	req.NoError(err)

	users, err := repository.FindUsersByName("sam")
	req.NoError(err)
	req.ElementsMatch([]string{first, second}, []string{users[0].ID, users[1].ID})
	req.Len(users, 2)

	none, err := repository.FindUsersByName("nobody")
	req.NoError(err)
	req.Empty(none)
}

func Test_User_Not_Found(t *testing.T) {
	req := require.New(t)
	repository := NewUserRepository(newTestDB(t))

	_, err := repository.GetUserByID("missing")
	req.ErrorIs(err, errors.ErrNotFound)
	_, err = repository.GetUserByEmail("missing@example.com")
	req.ErrorIs(err, errors.ErrNotFound)
}
