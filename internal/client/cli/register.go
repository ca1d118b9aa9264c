package cli

import (
	"context"

	"github.com/iudanet/posauth/pkg/api"
)

// RegisterOptions флаги команды register
type RegisterOptions struct {
	Passwords Passwords
	Username  string
	Role      string
}

func (c *Cli) runRegister(ctx context.Context, opts RegisterOptions) error {
	username, err := c.valueOrPrompt(opts.Username, "Username: ")
	if err != nil {
		return err
	}

	role, err := c.valueOrPrompt(opts.Role, "Role (manager, cashier): ")
	if err != nil {
		return err
	}

	password, err := c.getPassword(opts.Passwords, true)
	if err != nil {
		return err
	}

	resp, err := c.client.Register(ctx, api.RegisterRequest{
		Username: username,
		Password: password,
		Role:     role,
	})
	if err != nil {
		return err
	}

	c.io.Println("✓ " + resp.Message)
	c.io.Printf("Run 'posauth login --username %s' to get an access token.\n", resp.Username)
	return nil
}
