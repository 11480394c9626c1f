package services

import (
	"context"
	"dm-lab/auth"
	"dm-lab/domain"
	"dm-lab/errors"
	"dm-lab/infrastructure/storage"
	"fmt"
	"strings"
)

type IAuthService interface {
	Register(ctx context.Context, name, email, password string) (Session, error)
	Login(ctx context.Context, email, password string) (Session, error)
	Me(ctx context.Context, userID string) (domain.Identity, error)
	SearchByEmail(ctx context.Context, email string) (domain.Identity, error)
}

type Token string

// Session is what a successful register or login hands back to the caller.
type Session struct {
	Token Token
	User  domain.Identity
}

type AuthService struct {
	userRepository storage.IUserRepository
	tokens         *auth.TokenManager
}

func NewAuthService(repo storage.IUserRepository, tokens *auth.TokenManager) *AuthService {
	return &AuthService{userRepository: repo, tokens: tokens}
}

func (s *AuthService) Register(_ context.Context, name, email, password string) (Session, error) {
	valReq := auth.RegisterRequest{
		Name:     strings.TrimSpace(name),
		Email:    strings.TrimSpace(email),
		Password: password,
	}

	// Validate before any expensive cryptographic operation
	if err := auth.ValidateRegister(valReq); err != nil {
		return Session{}, err
	}

	// The repository never sees plain passwords
	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		return Session{}, fmt.Errorf("hashing failed: %w", err)
	}

	userID, err := s.userRepository.CreateUser(valReq.Name, valReq.Email, hashedPassword)
	if err != nil {
		return Session{}, err // ErrUserAlreadyExists when the email is taken
	}

	token, err := s.tokens.GenerateToken(userID, []string{"user"})
	if err != nil {
		return Session{}, errors.ErrTokenGeneration
	}

	return Session{
		Token: Token(token),
		User:  domain.Identity{ID: userID, Name: valReq.Name, Email: storage.NormalizeEmail(valReq.Email)},
	}, nil
}

func (s *AuthService) Login(_ context.Context, email, password string) (Session, error) {
	user, err := s.userRepository.GetUserByEmail(email)
	if err != nil {
		// Generic error to prevent user enumeration
		return Session{}, errors.ErrInvalidCredentials
	}

	match, err := auth.ComparePassword(password, user.PasswordHash)
	if err != nil || !match {
		return Session{}, errors.ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateToken(user.ID, user.Roles)
	if err != nil {
		return Session{}, errors.ErrTokenGeneration
	}

	return Session{Token: Token(token), User: toIdentity(user)}, nil
}

func (s *AuthService) Me(_ context.Context, userID string) (domain.Identity, error) {
	user, err := s.userRepository.GetUserByID(userID)
	if err != nil {
		return domain.Identity{}, err
	}
	return toIdentity(user), nil
}

func (s *AuthService) SearchByEmail(_ context.Context, email string) (domain.Identity, error) {
	if strings.TrimSpace(email) == "" {
		return domain.Identity{}, fmt.Errorf("%w: email is required", errors.ErrValidation)
	}
	user, err := s.userRepository.GetUserByEmail(email)
	if err != nil {
		return domain.Identity{}, err
	}
	return toIdentity(user), nil
}
