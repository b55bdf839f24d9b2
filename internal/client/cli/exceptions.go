package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/iudanet/possync/internal/models"
)

func (c *Cli) runExceptions(ctx context.Context, args []string) error {
	var resolved *bool
	if len(args) == 0 || args[0] != "--all" {
		unresolved := false
		resolved = &unresolved
	}

	excs, err := c.manager.ListExceptions(ctx, resolved)
	if err != nil {
		return fmt.Errorf("failed to list exceptions: %w", err)
	}

	c.io.Println("=== Sync Exceptions ===")
	c.io.Println()

	if len(excs) == 0 {
		c.io.Println("No exceptions found.")
		return nil
	}

	c.io.Printf("Found %d exception(s):\n", len(excs))
	c.io.Println()

	for i, exc := range excs {
		c.io.Printf("%d. %s exception for operation %s\n", i+1, exc.Type, exc.OperationID)
		c.io.Printf("   ID:      %s\n", exc.ID)
		c.io.Printf("   When:    %s\n", time.Unix(0, exc.Timestamp).Format(time.RFC3339))
		if exc.Message != "" {
			c.io.Printf("   Message: %s\n", exc.Message)
		}
		if exc.Resolved {
			c.io.Printf("   Resolved: %s by %s\n", exc.ResolutionType, exc.ResolvedBy)
		} else {
			printPayload(c, "Local", exc.LocalData)
			printPayload(c, "Server", exc.ServerData)
		}
		c.io.Println()
	}

	if resolved != nil {
		c.io.Println("Use 'possync exceptions --all' to include resolved entries.")
	}

	return nil
}

func printPayload(c *Cli, label string, data map[string]any) {
	if len(data) == 0 {
		return
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return
	}
	c.io.Printf("   %s:  %s\n", label, raw)
}

func (c *Cli) runResolve(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: possync resolve <exception-id> <use_local|use_server|merge|discard>")
	}

	resolution := models.ResolutionType(args[1])

	if err := c.manager.ResolveException(ctx, args[0], resolution, c.session.UserID); err != nil {
		return fmt.Errorf("failed to resolve exception: %w", err)
	}

	c.io.Printf("Exception %s resolved with %s\n", args[0], resolution)

	switch resolution {
	case models.ResolutionUseLocal, models.ResolutionMerge:
		c.io.Println("The operation was requeued and will be replayed on the next sync.")
	case models.ResolutionUseServer, models.ResolutionDiscard:
		c.io.Println("The local operation was discarded.")
	}

	return nil
}
