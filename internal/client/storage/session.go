package storage

import (
	"context"
	"time"
)

// SessionStorage хранит последний полученный access token на клиенте
type SessionStorage interface {
	// SaveSession replaces the stored session
	SaveSession(ctx context.Context, s *Session) error

	// GetSession returns ErrSessionNotFound if nothing was saved
	GetSession(ctx context.Context) (*Session, error)

	// DeleteSession removes the stored session (logout)
	DeleteSession(ctx context.Context) error

	Close() error
}

// Session данные последнего логина
type Session struct {
	SavedAt     time.Time `json:"saved_at"`
	ExpiresAt   time.Time `json:"expires_at"`
	Username    string    `json:"username"`
	AccessToken string    `json:"access_token"`
}

// Expired reports whether the token is past its expiry at now
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}
