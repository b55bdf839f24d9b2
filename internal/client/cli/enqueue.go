package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/iudanet/possync/internal/models"
)

func (c *Cli) runEnqueue(ctx context.Context, args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("usage: possync enqueue <create|update|delete> <entity> <json>")
	}
	if c.session.TenantID == "" {
		return fmt.Errorf("--tenant is required")
	}

	opType := models.OperationType(args[0])
	entity := args[1]

	var data map[string]any
	if err := json.Unmarshal([]byte(args[2]), &data); err != nil {
		return fmt.Errorf("invalid payload JSON: %w", err)
	}

	id, err := c.manager.Enqueue(ctx, opType, entity, data, c.session.TenantID, c.session.UserID)
	if err != nil {
		return fmt.Errorf("failed to enqueue operation: %w", err)
	}

	c.io.Printf("Queued %s %s\n", opType, entity)
	c.io.Printf("Operation ID: %s\n", id)

	return nil
}
