package storage

import "errors"

// ErrSessionNotFound indicates that no session has been saved yet
var ErrSessionNotFound = errors.New("session not found")
