package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"bookreview/internal/metrics"
	"bookreview/internal/repository"
)

// AuthService registers users and checks their credentials.
type AuthService struct {
	users  repository.Users
	hasher PasswordHasher

	// dummyHash is compared against when the username is unknown so the
	// response time does not reveal whether the account exists.
	dummyHash string
}

func NewAuthService(repo repository.Users, hasher PasswordHasher) (*AuthService, error) {
	hasher = NewPasswordHasher(hasher.Scheme, hasher.Iterations, hasher.SaltLength)
	dummy, err := hasher.Hash("dummy-password")
	if err != nil {
		return nil, fmt.Errorf("prepare dummy hash: %w", err)
	}
	return &AuthService{users: repo, hasher: hasher, dummyHash: dummy}, nil
}

// Register stores a new user with a salted hash of password.
func (s *AuthService) Register(ctx context.Context, username, password string) (int, error) {
	if strings.TrimSpace(username) == "" {
		return 0, newValidationError("username", MsgEnterUsername)
	}
	if password == "" {
		return 0, newValidationError("password", MsgEnterPassword)
	}

	existing, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return 0, fmt.Errorf("register %q: %w", username, err)
	}
	if existing != nil {
		return 0, ErrAlreadyExists
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return 0, fmt.Errorf("register %q: %w", username, err)
	}

	id, err := s.users.Create(ctx, username, hash)
	if err != nil {
		if errors.Is(err, repository.ErrUniqueViolation) {
			return 0, ErrAlreadyExists
		}
		return 0, fmt.Errorf("register %q: %w", username, err)
	}
	return id, nil
}

// Verify returns the user ID when password matches the stored hash.
// Unknown users and wrong passwords both yield ErrInvalidCredentials.
func (s *AuthService) Verify(ctx context.Context, username, password string) (int, error) {
	if strings.TrimSpace(username) == "" {
		return 0, newValidationError("username", MsgEnterUsername)
	}
	if password == "" {
		return 0, newValidationError("password", MsgEnterPassword)
	}

	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		metrics.RecordLogin("error")
		return 0, fmt.Errorf("verify %q: %w", username, err)
	}
	if u == nil {
		_ = s.hasher.Verify(s.dummyHash, password)
		metrics.RecordLogin("rejected")
		return 0, ErrInvalidCredentials
	}
	if err := s.hasher.Verify(u.PasswordHash, password); err != nil {
		metrics.RecordLogin("rejected")
		return 0, ErrInvalidCredentials
	}

	metrics.RecordLogin("ok")
	return u.ID, nil
}
