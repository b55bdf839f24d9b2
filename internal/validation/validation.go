package validation

import (
	"fmt"
	"regexp"
)

// EntityPattern defines the allowed format for entity kinds.
// Lowercase latin letters, digits and underscores, starting with a letter.
var EntityPattern = regexp.MustCompile(`^[a-z][a-z0-9_]{0,63}$`)

// TenantIDPattern defines the allowed format for tenant identifiers.
var TenantIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)

// ValidateEntity checks that entity names a remote resource kind.
// Enqueue-time validation failures indicate programmer error in the caller
// and are returned synchronously, never queued.
func ValidateEntity(entity string) error {
	if entity == "" {
		return fmt.Errorf("entity cannot be empty")
	}

	if !EntityPattern.MatchString(entity) {
		return fmt.Errorf("entity %q must match %s", entity, EntityPattern)
	}

	return nil
}

// ValidateTenantID checks that the tenant identifier is present and well formed.
func ValidateTenantID(tenantID string) error {
	if tenantID == "" {
		return fmt.Errorf("tenant id cannot be empty")
	}

	if !TenantIDPattern.MatchString(tenantID) {
		return fmt.Errorf("tenant id %q must match %s", tenantID, TenantIDPattern)
	}

	return nil
}
