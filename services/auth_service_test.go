package services

import (
	"context"
	"dm-lab/auth"
	"dm-lab/errors"
	"dm-lab/infrastructure/storage"
	"dm-lab/mocks"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestAuthService_Register(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockIUserRepository(ctrl)
	tokens := auth.NewTokenManager("a-test-secret-long-enough", 24*time.Hour)
	svc := NewAuthService(mockRepo, tokens)
	ctx := context.Background()

	t.Run("should register successfully when input is valid", func(t *testing.T) {
		req := require.New(t)

		// CreateUser receives a hash, never the plain password
		mockRepo.EXPECT().
			CreateUser("alice", "test@example.com", gomock.Not("ComplexPass123!")).
			Return("user-uuid", nil).
			Times(1)

		session, err := svc.Register(ctx, " alice ", "test@example.com", "ComplexPass123!")

		req.NoError(err)
		req.NotEmpty(session.Token)
		req.Equal("user-uuid", session.User.ID)
		req.Equal("alice", session.User.Name)

		userID, err := tokens.Verify(string(session.Token))
		req.NoError(err)
		req.Equal("user-uuid", userID)
	})

	t.Run("should fail when password complexity is not met", func(t *testing.T) {
		req := require.New(t)

		// Repository should never be called
		mockRepo.EXPECT().CreateUser(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		session, err := svc.Register(ctx, "alice", "test@example.com", "simplesimplesimple")

		req.ErrorIs(err, errors.ErrInvalidPassword)
		req.ErrorIs(err, errors.ErrValidation)
		req.Empty(session.Token)
	})

	t.Run("should fail when user already exists in repository", func(t *testing.T) {
		req := require.New(t)

		mockRepo.EXPECT().
			CreateUser("alice", "duplicate@example.com", gomock.Any()).
			Return("", errors.ErrUserAlreadyExists).
			Times(1)

		_, err := svc.Register(ctx, "alice", "duplicate@example.com", "ComplexPass123!")

		req.ErrorIs(err, errors.ErrUserAlreadyExists)
		req.ErrorIs(err, errors.ErrDuplicate)
	})
}

func TestAuthService_Login(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockIUserRepository(ctrl)
	tokens := auth.NewTokenManager("a-test-secret-long-enough", 24*time.Hour)
	svc := NewAuthService(mockRepo, tokens)
	ctx := context.Background()

	hashedPassword, err := auth.HashPassword("CorrectPassword123!")
	require.NoError(t, err)
	storedUser := storage.User{
		ID:           "uuid-123",
		Name:         "alice",
		Email:        "user@example.com",
		PasswordHash: hashedPassword,
		Roles:        []string{"user"},
	}

	t.Run("should login successfully with correct credentials", func(t *testing.T) {
		req := require.New(t)

		mockRepo.EXPECT().GetUserByEmail("user@example.com").Return(storedUser, nil).Times(1)

		session, err := svc.Login(ctx, "user@example.com", "CorrectPassword123!")

		req.NoError(err)
		claims, err := tokens.ValidateToken(string(session.Token))
		req.NoError(err)
		req.Equal(storedUser.ID, claims.UserID)
		req.Equal("alice", session.User.Name)
	})

	t.Run("should return invalid credentials when password matches nothing", func(t *testing.T) {
		req := require.New(t)

		mockRepo.EXPECT().GetUserByEmail("user@example.com").Return(storedUser, nil).Times(1)

		_, err := svc.Login(ctx, "user@example.com", "WrongPassword123!")

		req.ErrorIs(err, errors.ErrInvalidCredentials)
	})

	t.Run("should return invalid credentials when user is not found", func(t *testing.T) {
		req := require.New(t)

		mockRepo.EXPECT().
			GetUserByEmail("unknown@example.com").
			Return(storage.User{}, errors.ErrNotFound).
			Times(1)

		_, err := svc.Login(ctx, "unknown@example.com", "anyPassword")

		req.ErrorIs(err, errors.ErrInvalidCredentials)
		req.ErrorIs(err, errors.ErrUnauthenticated)
	})
}

func TestAuthService_Me_And_Search(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockIUserRepository(ctrl)
	svc := NewAuthService(mockRepo, auth.NewTokenManager("a-test-secret-long-enough", time.Hour))
	ctx := context.Background()
	user := storage.User{ID: "uuid-123", Name: "alice", Email: "alice@example.com", PasswordHash: "secret"}

	mockRepo.EXPECT().GetUserByID("uuid-123").Return(user, nil)
	mockRepo.EXPECT().GetUserByEmail("alice@example.com").Return(user, nil)

	me, err := svc.Me(ctx, "uuid-123")
	req.NoError(err)
	req.Equal("alice", me.Name)

	found, err := svc.SearchByEmail(ctx, "alice@example.com")
	req.NoError(err)
	req.Equal(me, found)

	_, err = svc.SearchByEmail(ctx, " ")
	req.ErrorIs(err, errors.ErrValidation)
}
