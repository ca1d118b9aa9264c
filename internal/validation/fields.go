package validation

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// MaxUsernameLen максимальная длина username в байтах
	MaxUsernameLen = 64
	// MaxRoleLen максимальная длина роли в байтах
	MaxRoleLen = 64
	// MaxPasswordLen bcrypt игнорирует все после 72 байт, поэтому длиннее не принимаем
	MaxPasswordLen = 72
)

var (
	// ErrMissingField returned when a required field is empty
	ErrMissingField = errors.New("missing required field")

	// ErrInvalidField returned when a field is present but not acceptable
	ErrInvalidField = errors.New("invalid field")
)

// Required проверяет, что все переданные поля непустые.
// Аргументы передаются парами имя/значение: Required("username", u, "password", p).
func Required(pairs ...string) error {
	var missing []string
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] == "" {
			missing = append(missing, pairs[i])
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingField, strings.Join(missing, ", "))
	}
	return nil
}

// ValidateUsername проверяет username: непустой, без пробелов по краям, не длиннее MaxUsernameLen
func ValidateUsername(username string) error {
	return validateToken("username", username, MaxUsernameLen)
}

// ValidateRole проверяет роль по тем же правилам, что и username
func ValidateRole(role string) error {
	return validateToken("role", role, MaxRoleLen)
}

// ValidatePassword проверяет пароль: непустой и помещается в лимит bcrypt
func ValidatePassword(password string) error {
	if password == "" {
		return fmt.Errorf("%w: password", ErrMissingField)
	}
	if len(password) > MaxPasswordLen {
		return fmt.Errorf("%w: password must not exceed %d bytes", ErrInvalidField, MaxPasswordLen)
	}
	return nil
}

func validateToken(name, value string, maxLen int) error {
	if value == "" {
		return fmt.Errorf("%w: %s", ErrMissingField, name)
	}
	if strings.TrimSpace(value) != value {
		return fmt.Errorf("%w: %s must not start or end with whitespace", ErrInvalidField, name)
	}
	if len(value) > maxLen {
		return fmt.Errorf("%w: %s must not exceed %d bytes", ErrInvalidField, name, maxLen)
	}
	return nil
}
