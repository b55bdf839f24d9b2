package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/iudanet/possync/internal/models"
)

func (c *Cli) runQueue(ctx context.Context, args []string) error {
	var status models.OperationStatus
	if len(args) > 0 {
		status = models.OperationStatus(args[0])
	}

	ops, err := c.manager.ListOperations(ctx, c.session.TenantID, status)
	if err != nil {
		return fmt.Errorf("failed to list operations: %w", err)
	}

	// Synced operations are retained for audit but stay out of the default
	// view. Ask for them explicitly with 'queue synced'.
	if status == "" {
		active := ops[:0]
		for _, op := range ops {
			if op.Status != models.StatusSynced {
				active = append(active, op)
			}
		}
		ops = active
	}

	c.io.Println("=== Operation Queue ===")
	c.io.Println()

	if len(ops) == 0 {
		c.io.Println("Queue is empty.")
		return nil
	}

	c.io.Printf("Found %d operation(s):\n", len(ops))
	c.io.Println()

	for i, op := range ops {
		c.io.Printf("%d. %s %s [%s]\n", i+1, op.Type, op.Entity, op.Status)
		c.io.Printf("   ID:       %s\n", op.ID)
		if op.LocalID != "" {
			c.io.Printf("   Local ID: %s\n", op.LocalID)
		}
		if op.ServerID != "" {
			c.io.Printf("   Server ID: %s\n", op.ServerID)
		}
		c.io.Printf("   Queued:   %s\n", op.CreatedAt.Format(time.RFC3339))
		if op.Attempts > 0 {
			c.io.Printf("   Attempts: %d\n", op.Attempts)
		}
		if op.Error != "" {
			c.io.Printf("   Error:    %s\n", op.Error)
		}
		c.io.Println()
	}

	return nil
}

func (c *Cli) runRemove(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: possync remove <operation-id>")
	}

	if err := c.manager.RemoveOperation(ctx, args[0]); err != nil {
		return fmt.Errorf("failed to remove operation: %w", err)
	}

	c.io.Printf("Removed operation %s\n", args[0])

	return nil
}
