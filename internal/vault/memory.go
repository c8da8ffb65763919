package vault

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"sync"

	"gt-go/internal/gt"
)

// MemoryVault is an in-memory implementation of the Vault interface.
// It keeps every snapshot in memory, making it useful for testing.
// This implementation is safe for concurrent use.
type MemoryVault struct {
	name      string
	snapshots map[string]map[string][]byte // profileID -> snapshotID -> blob
	mu        sync.RWMutex
}

// NewMemoryVault creates a new in-memory vault with the given name.
func NewMemoryVault(name string) *MemoryVault {
	return &MemoryVault{
		name:      name,
		snapshots: make(map[string]map[string][]byte),
	}
}

// PutSnapshot stores a snapshot blob. Writing the same ID twice replaces it.
func (m *MemoryVault) PutSnapshot(profileID, snapshotID string, r io.Reader, size int64) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read snapshot: %w", err)
	}

	if int64(len(data)) != size {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", size, len(data))
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	profile, ok := m.snapshots[profileID]
	if !ok {
		profile = make(map[string][]byte)
		m.snapshots[profileID] = profile
	}
	profile[snapshotID] = data
	return nil
}

// GetSnapshot retrieves a snapshot blob.
func (m *MemoryVault) GetSnapshot(profileID, snapshotID string, w io.Writer) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.snapshots[profileID][snapshotID]
	if !ok {
		return fmt.Errorf("snapshot %q not found for profile: %s", snapshotID, profileID)
	}

	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}

	return nil
}

// ListSnapshots returns the snapshot IDs stored for a profile in sorted order.
func (m *MemoryVault) ListSnapshots(profileID string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.snapshots[profileID]))
	for id := range m.snapshots[profileID] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// ValidateSetup always succeeds for in-memory vault.
func (m *MemoryVault) ValidateSetup() error {
	return nil
}

// Compile-time check that MemoryVault implements gt.Vault interface
var _ gt.Vault = (*MemoryVault)(nil)
