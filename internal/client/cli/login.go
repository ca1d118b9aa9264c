package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/iudanet/posauth/internal/client/storage"
	"github.com/iudanet/posauth/pkg/api"
)

// LoginOptions флаги команды login
type LoginOptions struct {
	Passwords Passwords
	Username  string
	// TokenOnly печатает только токен, удобно для $(posauth login ...)
	TokenOnly bool
}

func (c *Cli) runLogin(ctx context.Context, opts LoginOptions) error {
	username, err := c.valueOrPrompt(opts.Username, "Username: ")
	if err != nil {
		return err
	}

	password, err := c.getPassword(opts.Passwords, false)
	if err != nil {
		return err
	}

	resp, err := c.client.Login(ctx, api.LoginRequest{
		Username: username,
		Password: password,
	})
	if err != nil {
		return err
	}

	session := &storage.Session{
		Username:    username,
		AccessToken: resp.AccessToken,
		SavedAt:     c.now().UTC(),
		ExpiresAt:   tokenExpiry(resp.AccessToken),
	}
	if c.sessions != nil {
		if err := c.sessions.SaveSession(ctx, session); err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}
	}

	if opts.TokenOnly {
		c.io.Println(resp.AccessToken)
		return nil
	}

	c.io.Println("✓ Login successful!")
	c.io.Printf("Access token: %s\n", resp.AccessToken)
	if !session.ExpiresAt.IsZero() {
		c.io.Printf("Expires at:   %s\n", session.ExpiresAt.Local().Format(time.RFC3339))
	}
	return nil
}

func (c *Cli) runLogout(ctx context.Context) error {
	if c.sessions == nil {
		return errors.New("no local session storage configured")
	}
	if err := c.sessions.DeleteSession(ctx); err != nil {
		if errors.Is(err, storage.ErrSessionNotFound) {
			c.io.Println("Not logged in")
			return nil
		}
		return fmt.Errorf("failed to delete session: %w", err)
	}
	c.io.Println("✓ Logged out")
	return nil
}

// tokenExpiry читает exp без проверки подписи: секрета у клиента нет,
// значение используется только для вывода
func tokenExpiry(accessToken string) time.Time {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, &claims); err != nil || claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.UTC()
}
