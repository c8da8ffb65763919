package testutil

import (
	"gt-go/internal/gt"
	"gt-go/internal/vault"
)

// NewTestVault creates a new in-memory vault for testing.
func NewTestVault() gt.Vault {
	return vault.NewMemoryVault("test-vault")
}
