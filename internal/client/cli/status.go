package cli

import (
	"context"
	"fmt"
	"time"
)

func (c *Cli) runStatus(ctx context.Context) error {
	c.io.Println("=== Sync Status ===")
	c.io.Println()

	status, err := c.manager.GetStatus(ctx)
	if err != nil {
		return fmt.Errorf("failed to get status: %w", err)
	}

	if status.IsOnline {
		c.io.Println("Connectivity: online")
	} else {
		c.io.Println("Connectivity: offline")
	}

	if status.LastSync.IsZero() {
		c.io.Println("Last sync:    never")
	} else {
		c.io.Printf("Last sync:    %s (%s ago)\n",
			status.LastSync.Format(time.RFC3339),
			time.Since(status.LastSync).Round(time.Second))
	}

	c.io.Println()
	c.io.Printf("Pending operations:  %d\n", status.PendingCount)
	c.io.Printf("Failed operations:   %d\n", status.FailedCount)
	c.io.Printf("Conflicts:           %d\n", status.ConflictCount)
	c.io.Printf("Open exceptions:     %d\n", status.ExceptionsCount)

	if status.ExceptionsCount > 0 {
		c.io.Println()
		c.io.Println("Run 'possync exceptions' to review items that need attention.")
	}

	return nil
}
