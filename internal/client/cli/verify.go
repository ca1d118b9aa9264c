package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/iudanet/posauth/internal/client/storage"
)

// resolveToken берет токен из аргумента, затем из сохраненной сессии, затем спрашивает
func (c *Cli) resolveToken(ctx context.Context, accessToken string) (string, error) {
	if accessToken != "" {
		return accessToken, nil
	}

	if c.sessions != nil {
		session, err := c.sessions.GetSession(ctx)
		switch {
		case err == nil:
			if session.Expired(c.now()) {
				c.io.Printf("Saved token for %s has expired, checking anyway\n", session.Username)
			}
			return session.AccessToken, nil
		case !errors.Is(err, storage.ErrSessionNotFound):
			return "", fmt.Errorf("failed to read session: %w", err)
		}
	}

	return c.valueOrPrompt("", "Access token: ")
}

func (c *Cli) runVerify(ctx context.Context, accessToken string) error {
	accessToken, err := c.resolveToken(ctx, accessToken)
	if err != nil {
		return err
	}
	if accessToken == "" {
		return fmt.Errorf("token cannot be empty")
	}

	resp, err := c.client.Verify(ctx, accessToken)
	if err != nil {
		return err
	}

	c.io.Println("✓ Token accepted")
	c.io.Printf("User ID:    %s\n", resp.UserID)
	c.io.Printf("Role:       %s\n", resp.IdentityServiceMetadata.UserRole)
	c.io.Printf("Expires in: %s\n", time.Duration(resp.ExpirationSeconds)*time.Second)

	perms, err := json.MarshalIndent(resp.Permissions, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode permissions: %w", err)
	}
	c.io.Println("Permissions:")
	_, err = c.io.Write(append(perms, '\n'))
	return err
}
