package gt

import "io"

// Vault stores snapshot blobs for a profile. Snapshots are opaque to the
// vault: they arrive compressed and encrypted.
type Vault interface {
	// PutSnapshot stores a snapshot. size is the number of bytes in r.
	PutSnapshot(profileID, snapshotID string, r io.Reader, size int64) error

	// GetSnapshot writes the stored snapshot to w.
	GetSnapshot(profileID, snapshotID string, w io.Writer) error

	// ListSnapshots returns the snapshot IDs stored for a profile, oldest first.
	ListSnapshots(profileID string) ([]string, error)

	// ValidateSetup checks that the vault is reachable and usable.
	ValidateSetup() error
}

// Encryptor seals snapshots with the profile's public key. Opening them
// requires unlocking the private key with the passphrase.
type Encryptor interface {
	// Setup generates the key pair and protects the private key with passphrase.
	Setup(passphrase string) error

	// Encrypt writes the ciphertext of r to w.
	Encrypt(r io.Reader, w io.Writer) error

	// Unlock returns a Decrypter holding the unlocked private key in memory.
	Unlock(passphrase string) (Decrypter, error)

	// IsConfigured reports whether both key files exist.
	IsConfigured() bool
}

// Decrypter opens ciphertext produced by an Encryptor.
type Decrypter interface {
	Decrypt(r io.Reader, w io.Writer) error
}
