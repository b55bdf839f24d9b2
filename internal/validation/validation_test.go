package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateEntity(t *testing.T) {
	tests := []struct {
		name    string
		entity  string
		wantErr bool
	}{
		{"valid simple", "invoice", false},
		{"valid with underscore", "stock_entry", false},
		{"valid with digits", "invoice2", false},
		{"valid single letter", "a", false},
		{"empty", "", true},
		{"uppercase", "Invoice", true},
		{"starts with digit", "2invoice", true},
		{"starts with underscore", "_invoice", true},
		{"contains dash", "stock-entry", true},
		{"contains space", "stock entry", true},
		{"contains slash", "pos/invoices", true},
		{"too long", strings.Repeat("a", 65), true},
		{"max length", strings.Repeat("a", 64), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEntity(tt.entity)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateTenantID(t *testing.T) {
	tests := []struct {
		name     string
		tenantID string
		wantErr  bool
	}{
		{"valid simple", "shop42", false},
		{"valid with dash", "shop-42", false},
		{"valid with underscore", "shop_42", false},
		{"valid mixed case", "Shop42", false},
		{"empty", "", true},
		{"contains space", "shop 42", true},
		{"contains slash", "shop/42", true},
		{"too long", strings.Repeat("x", 65), true},
		{"max length", strings.Repeat("x", 64), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTenantID(tt.tenantID)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
