package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/iudanet/possync/internal/client/storage"
)

func (c *Cli) runLogin(ctx context.Context) error {
	if c.session.ServerURL == "" {
		return fmt.Errorf("--server is required")
	}
	if c.session.TenantID == "" {
		return fmt.Errorf("--tenant is required")
	}
	if c.session.Token == "" {
		return fmt.Errorf("no token provided. Use POSSYNC_TOKEN, --token-file or --token")
	}

	if err := c.sessions.SaveSession(ctx, c.session); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	c.io.Println("Session saved.")
	c.io.Printf("Server: %s\n", c.session.ServerURL)
	c.io.Printf("Tenant: %s\n", c.session.TenantID)
	if c.session.UserID != "" {
		c.io.Printf("User:   %s\n", c.session.UserID)
	}
	c.io.Println()
	c.io.Println("Later commands pick these up automatically.")

	return nil
}

func (c *Cli) runLogout(ctx context.Context) error {
	if _, err := c.sessions.GetSession(ctx); err != nil {
		if errors.Is(err, storage.ErrSessionNotFound) {
			c.io.Println("No saved session.")
			return nil
		}
		return fmt.Errorf("failed to read session: %w", err)
	}

	if err := c.sessions.DeleteSession(ctx); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	c.io.Println("Session removed.")

	return nil
}
