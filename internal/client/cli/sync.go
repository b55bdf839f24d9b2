package cli

import (
	"context"
	"fmt"
)

func (c *Cli) runSync(ctx context.Context) error {
	c.io.Println("=== Synchronization ===")
	c.io.Println()

	if !c.manager.IsOnline() {
		c.io.Println("Server is unreachable, operations stay queued.")
		c.io.Println("They will be replayed automatically once connectivity returns.")
		return nil
	}

	c.io.Println("Replaying queued operations...")

	summary, err := c.manager.SyncPendingOperations(ctx)
	if err != nil {
		return fmt.Errorf("synchronization failed: %w", err)
	}

	c.io.Println()
	c.io.Printf("Synced:    %d\n", summary.Synced)
	c.io.Printf("Failed:    %d\n", summary.Failed)
	c.io.Printf("Conflicts: %d\n", summary.Conflicts)

	if summary.Conflicts > 0 {
		c.io.Println()
		c.io.Println("Run 'possync exceptions' to resolve the conflicts.")
	}

	return nil
}
