package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequired(t *testing.T) {
	tests := []struct {
		name    string
		errMsg  string
		pairs   []string
		wantErr bool
	}{
		{
			name:  "all present",
			pairs: []string{"username", "alice", "password", "pw1", "role", "cashier"},
		},
		{
			name:    "one missing",
			pairs:   []string{"username", "alice", "password", "", "role", "cashier"},
			wantErr: true,
			errMsg:  "password",
		},
		{
			name:    "several missing",
			pairs:   []string{"username", "", "password", "", "role", "cashier"},
			wantErr: true,
			errMsg:  "username, password",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Required(tt.pairs...)
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMissingField)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		wantErr  error
		name     string
		username string
	}{
		{name: "simple", username: "alice"},
		{name: "with dots and digits", username: "alice.smith42"},
		{name: "max length", username: strings.Repeat("a", MaxUsernameLen)},
		{name: "empty", username: "", wantErr: ErrMissingField},
		{name: "leading space", username: " alice", wantErr: ErrInvalidField},
		{name: "trailing newline", username: "alice\n", wantErr: ErrInvalidField},
		{name: "too long", username: strings.Repeat("a", MaxUsernameLen+1), wantErr: ErrInvalidField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUsername(tt.username)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidateRole(t *testing.T) {
	assert.NoError(t, ValidateRole("cashier"))
	assert.ErrorIs(t, ValidateRole(""), ErrMissingField)
	assert.ErrorIs(t, ValidateRole("manager "), ErrInvalidField)
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		wantErr  error
		name     string
		password string
	}{
		{name: "short but present", password: "pw1"},
		{name: "with spaces is fine", password: " correct horse battery staple "},
		{name: "exactly 72 bytes", password: strings.Repeat("x", MaxPasswordLen)},
		{name: "empty", password: "", wantErr: ErrMissingField},
		{name: "73 bytes", password: strings.Repeat("x", MaxPasswordLen+1), wantErr: ErrInvalidField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
