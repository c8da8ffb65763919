package encryption

import (
	"bytes"
	"fmt"
	"io"

	"gt-go/internal/gt"
)

// testHeader marks data sealed by TestEncryptor.
var testHeader = []byte("GTSNAP\x00\x01")

// TestEncryptor is a deterministic stand-in for tests and the "test"
// encryption type. It prepends a fixed header and remembers the passphrase
// given to Setup so Unlock can reject a wrong one like the real thing.
type TestEncryptor struct {
	passphrase string
	configured bool
}

var _ gt.Encryptor = (*TestEncryptor)(nil)

// NewTestEncryptor returns a TestEncryptor that is already configured with
// an empty passphrase.
func NewTestEncryptor() *TestEncryptor {
	return &TestEncryptor{configured: true}
}

func (e *TestEncryptor) Setup(passphrase string) error {
	e.passphrase = passphrase
	e.configured = true
	return nil
}

func (e *TestEncryptor) Encrypt(r io.Reader, w io.Writer) error {
	if _, err := w.Write(testHeader); err != nil {
		return fmt.Errorf("writing test header: %w", err)
	}
	if _, err := io.Copy(w, r); err != nil {
		return fmt.Errorf("copying data: %w", err)
	}
	return nil
}

func (e *TestEncryptor) Unlock(passphrase string) (gt.Decrypter, error) {
	if passphrase != e.passphrase {
		return nil, fmt.Errorf("wrong passphrase")
	}
	return &TestDecrypter{}, nil
}

func (e *TestEncryptor) IsConfigured() bool {
	return e.configured
}

// TestDecrypter strips the header added by TestEncryptor.
type TestDecrypter struct{}

var _ gt.Decrypter = (*TestDecrypter)(nil)

func (c *TestDecrypter) Decrypt(r io.Reader, w io.Writer) error {
	header := make([]byte, len(testHeader))
	if _, err := io.ReadFull(r, header); err != nil {
		return fmt.Errorf("reading test header: %w", err)
	}
	if !bytes.Equal(header, testHeader) {
		return fmt.Errorf("invalid test encryption header")
	}
	if _, err := io.Copy(w, r); err != nil {
		return fmt.Errorf("copying data: %w", err)
	}
	return nil
}
