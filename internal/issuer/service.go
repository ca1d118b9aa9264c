// Package issuer owns registration and login: it stores password-credential
// records and mints session tokens for valid credentials.
package issuer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/posauth/internal/crypto"
	"github.com/iudanet/posauth/internal/models"
	"github.com/iudanet/posauth/internal/server/storage"
	"github.com/iudanet/posauth/internal/token"
	"github.com/iudanet/posauth/internal/validation"
)

// ErrInvalidCredentials is returned for an unknown username and for a wrong
// password alike.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Service регистрирует пользователей и выдает токены
type Service struct {
	users  storage.UserStorage
	hasher *crypto.PasswordHasher
	tokens *token.Issuer
	now    func() time.Time
}

// NewService создает Service поверх хранилища, hasher'а и issuer'а токенов
func NewService(users storage.UserStorage, hasher *crypto.PasswordHasher, tokens *token.Issuer) *Service {
	return &Service{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		now:    time.Now,
	}
}

// RegisterInput holds the registration fields as received from the client.
type RegisterInput struct {
	Username string
	Password string
	Role     string
}

// Register validates the input, hashes the password and stores the user.
// Errors: validation.ErrMissingField, validation.ErrInvalidField,
// storage.ErrUserAlreadyExists, or a wrapped internal error.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if err := validation.Required("username", in.Username, "password", in.Password, "role", in.Role); err != nil {
		return nil, err
	}
	if err := validation.ValidateUsername(in.Username); err != nil {
		return nil, err
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, err
	}
	if err := validation.ValidateRole(in.Role); err != nil {
		return nil, err
	}

	// Быстрый отказ до bcrypt; гонку закрывает уникальный индекс в хранилище
	_, err := s.users.GetUserByUsername(ctx, in.Username)
	switch {
	case err == nil:
		return nil, storage.ErrUserAlreadyExists
	case !errors.Is(err, storage.ErrUserNotFound):
		return nil, fmt.Errorf("failed to check username: %w", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:           uuid.New().String(),
		Username:     in.Username,
		PasswordHash: hash,
		Role:         in.Role,
		CreatedAt:    s.now().UTC(),
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrUserAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Login checks the credentials and returns a signed token with its claims.
func (s *Service) Login(ctx context.Context, username, password string) (string, *token.Claims, error) {
	if err := validation.Required("username", username, "password", password); err != nil {
		return "", nil, err
	}

	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			// Та же стоимость bcrypt, что и для существующего пользователя
			_ = s.hasher.VerifyDummy(password)
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("failed to get user: %w", err)
	}

	if err := s.hasher.Verify(user.PasswordHash, password); err != nil {
		if errors.Is(err, crypto.ErrMismatch) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	signed, claims, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return "", nil, err
	}

	return signed, claims, nil
}
