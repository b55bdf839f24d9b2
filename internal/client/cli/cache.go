package cli

import (
	"context"
	"encoding/json"
	"fmt"
)

func (c *Cli) runCache(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: possync cache <entity>")
	}
	if c.session.TenantID == "" {
		return fmt.Errorf("--tenant is required")
	}

	entity := args[0]

	records, err := c.manager.GetCachedData(ctx, entity, c.session.TenantID)
	if err != nil {
		return fmt.Errorf("failed to read cache: %w", err)
	}

	c.io.Printf("=== Cached %s records ===\n", entity)
	c.io.Println()

	if len(records) == 0 {
		c.io.Println("Cache is empty for this entity.")
		return nil
	}

	for i, record := range records {
		raw, err := json.MarshalIndent(record, "   ", "  ")
		if err != nil {
			return fmt.Errorf("failed to render record: %w", err)
		}
		c.io.Printf("%d. %s\n", i+1, raw)
	}

	c.io.Println()
	c.io.Printf("Found %d record(s).\n", len(records))

	return nil
}

func (c *Cli) runCacheClear(ctx context.Context, args []string) error {
	entity := ""
	if len(args) > 0 {
		entity = args[0]
	}

	if err := c.manager.ClearCache(ctx, entity, c.session.TenantID); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}

	if entity == "" {
		c.io.Println("Cache cleared.")
	} else {
		c.io.Printf("Cache cleared for %s.\n", entity)
	}

	return nil
}
