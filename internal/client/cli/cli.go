package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/iudanet/posauth/internal/client/iocli"
	"github.com/iudanet/posauth/internal/client/storage"
	"github.com/iudanet/posauth/pkg/api"
)

// PasswordEnv переменная окружения с паролем для неинтерактивного запуска
const PasswordEnv = "POSAUTH_PASSWORD"

// AuthClient операции клиента, которые использует CLI
type AuthClient interface {
	Register(ctx context.Context, req api.RegisterRequest) (*api.RegisterResponse, error)
	Login(ctx context.Context, req api.LoginRequest) (*api.TokenResponse, error)
	Verify(ctx context.Context, accessToken string) (*api.AuthSuccessResponse, error)
}

// Passwords источники пароля, заданные флагами
type Passwords struct {
	FromFile string
	FromArgs string
}

type Cli struct {
	client   AuthClient
	io       iocli.IO
	sessions storage.SessionStorage
	getenv   func(string) string
	now      func() time.Time
}

// New создает Cli. sessions может быть nil, тогда токен не сохраняется.
func New(client AuthClient, io iocli.IO, sessions storage.SessionStorage) *Cli {
	return &Cli{
		client:   client,
		io:       io,
		sessions: sessions,
		getenv:   os.Getenv,
		now:      time.Now,
	}
}

// getPassword retrieves the password from various sources with priority:
// 1. Environment variable POSAUTH_PASSWORD
// 2. File specified in passwords.FromFile
// 3. Command-line parameter passwords.FromArgs
// 4. Interactive prompt (fallback), with confirmation when confirm is set
func (c *Cli) getPassword(passwords Passwords, confirm bool) (string, error) {
	// Priority 1: Environment variable
	if envPassword := c.getenv(PasswordEnv); envPassword != "" {
		return envPassword, nil
	}

	// Priority 2: File
	if passwords.FromFile != "" {
		content, err := os.ReadFile(passwords.FromFile)
		if err != nil {
			return "", fmt.Errorf("failed to read password file: %w", err)
		}
		// Убираем trailing newline/whitespace
		password := strings.TrimSpace(string(content))
		if password == "" {
			return "", fmt.Errorf("password file is empty")
		}
		return password, nil
	}

	// Priority 3: CLI parameter
	if passwords.FromArgs != "" {
		return passwords.FromArgs, nil
	}

	// Priority 4: Interactive prompt (fallback)
	password, err := c.io.ReadPassword("Password: ")
	if err != nil {
		return "", fmt.Errorf("failed to read password from stdin: %w", err)
	}
	if password == "" {
		return "", fmt.Errorf("password cannot be empty")
	}

	if confirm {
		again, err := c.io.ReadPassword("Confirm password: ")
		if err != nil {
			return "", fmt.Errorf("failed to read confirmation: %w", err)
		}
		if again != password {
			return "", fmt.Errorf("passwords do not match")
		}
	}

	return password, nil
}

// valueOrPrompt возвращает value или спрашивает пользователя
func (c *Cli) valueOrPrompt(value, prompt string) (string, error) {
	if value != "" {
		return value, nil
	}
	input, err := c.io.ReadInput(prompt)
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return input, nil
}
