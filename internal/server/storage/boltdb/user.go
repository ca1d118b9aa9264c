package boltdb

import (
	"context"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/iudanet/posauth/internal/models"
	"github.com/iudanet/posauth/internal/server/storage"
)

// record is the on-disk form; models.User hides the hash from JSON
type record struct {
	models.User
	PasswordHash string `json:"password_hash"`
}

// CreateUser checks and inserts inside one write transaction.
// bbolt allows a single writer at a time, which keeps usernames unique.
func (s *Storage) CreateUser(ctx context.Context, user *models.User) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		users := tx.Bucket(bucketUsers)
		usernames := tx.Bucket(bucketUsernames)
		if users == nil || usernames == nil {
			return fmt.Errorf("users buckets not found")
		}

		if usernames.Get([]byte(user.Username)) != nil {
			return storage.ErrUserAlreadyExists
		}

		data, err := json.Marshal(record{User: *user, PasswordHash: user.PasswordHash})
		if err != nil {
			return fmt.Errorf("failed to marshal user: %w", err)
		}

		if err := users.Put([]byte(user.ID), data); err != nil {
			return fmt.Errorf("failed to save user: %w", err)
		}
		if err := usernames.Put([]byte(user.Username), []byte(user.ID)); err != nil {
			return fmt.Errorf("failed to save username index: %w", err)
		}

		return nil
	})
}

// GetUserByUsername retrieves user by username
func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user *models.User

	err := s.db.View(func(tx *bbolt.Tx) error {
		id := tx.Bucket(bucketUsernames).Get([]byte(username))
		if id == nil {
			return storage.ErrUserNotFound
		}

		var err error
		user, err = loadUser(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}

// GetUserByID retrieves user by ID
func (s *Storage) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	var user *models.User

	err := s.db.View(func(tx *bbolt.Tx) error {
		var err error
		user, err = loadUser(tx, []byte(userID))
		return err
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}

func loadUser(tx *bbolt.Tx, id []byte) (*models.User, error) {
	data := tx.Bucket(bucketUsers).Get(id)
	if data == nil {
		return nil, storage.ErrUserNotFound
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user: %w", err)
	}

	user := rec.User
	user.PasswordHash = rec.PasswordHash
	return &user, nil
}
