package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/iudanet/possync/internal/client/engine"
	"github.com/iudanet/possync/internal/events"
	"github.com/iudanet/possync/internal/models"
)

// runWatch keeps the process alive so the connectivity monitor can replay
// the queue in the background. Event subscriptions mirror progress to the
// terminal.
func (c *Cli) runWatch(ctx context.Context) error {
	subs := []func(){
		c.manager.Subscribe(events.Online, func(payload any) {
			c.io.Println("Connectivity: online")
		}),
		c.manager.Subscribe(events.Offline, func(payload any) {
			c.io.Println("Connectivity: offline")
		}),
		c.manager.Subscribe(events.OperationSynced, func(payload any) {
			if op, ok := payload.(*models.SyncOperation); ok {
				c.io.Printf("Synced %s %s (%s)\n", op.Type, op.Entity, op.ID)
			}
		}),
		c.manager.Subscribe(events.OperationConflict, func(payload any) {
			if op, ok := payload.(*models.SyncOperation); ok {
				c.io.Printf("Conflict on %s %s (%s), exception recorded\n", op.Type, op.Entity, op.ID)
			}
		}),
		c.manager.Subscribe(events.SyncCompleted, func(payload any) {
			if summary, ok := payload.(engine.Summary); ok {
				if summary.Synced+summary.Failed+summary.Conflicts > 0 {
					c.io.Printf("Sync pass done: %d synced, %d failed, %d conflicts\n",
						summary.Synced, summary.Failed, summary.Conflicts)
				}
			}
		}),
	}
	defer func() {
		for _, unsubscribe := range subs {
			unsubscribe()
		}
	}()

	if err := c.manager.Start(ctx); err != nil {
		return fmt.Errorf("failed to start sync manager: %w", err)
	}
	defer c.manager.Close()

	c.io.Println("Watching for changes, press Ctrl+C to stop.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-ctx.Done():
	case <-sigCh:
		c.io.Println()
		c.io.Println("Stopping.")
	}

	return nil
}
