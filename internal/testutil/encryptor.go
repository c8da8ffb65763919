package testutil

import (
	"gt-go/internal/encryption"
	"gt-go/internal/gt"
)

// NewTestEncryptor creates a configured test encryptor with an empty
// passphrase.
func NewTestEncryptor() gt.Encryptor {
	return encryption.NewTestEncryptor()
}
