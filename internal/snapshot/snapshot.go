package snapshot

import (
	"bytes"
	"fmt"
	"time"

	"gt-go/internal/gt"
)

// idTimeFormat prefixes snapshot IDs so lexical order is creation order.
const idTimeFormat = "20060102T150405Z"

// Store is the state a snapshot is taken from and restored into.
// *gt.Service implements it.
type Store interface {
	Entries() (map[string][]byte, error)
	Restore(entries map[string][]byte) error
}

// Info describes one exported snapshot.
type Info struct {
	ID      string
	Entries int
	Size    int64
}

// Manager moves snapshots between a Store and a vault. Export needs only
// the public key; Import needs a Decrypter unlocked with the passphrase.
type Manager struct {
	vault     gt.Vault
	encryptor gt.Encryptor
	codec     *Codec
	clock     gt.Clock
	ids       gt.IDGenerator
	logger    gt.Logger
	profileID string
	source    string
}

func NewManager(vault gt.Vault, encryptor gt.Encryptor, codec *Codec, clock gt.Clock, ids gt.IDGenerator, logger gt.Logger, profileID, source string) *Manager {
	return &Manager{
		vault:     vault,
		encryptor: encryptor,
		codec:     codec,
		clock:     clock,
		ids:       ids,
		logger:    logger,
		profileID: profileID,
		source:    source,
	}
}

// Export collects every tracked record from s, compresses and encrypts the
// document and uploads it under a new ID.
func (m *Manager) Export(s Store) (Info, error) {
	if !m.encryptor.IsConfigured() {
		return Info{}, fmt.Errorf("snapshot keys not configured; run 'gt config keys' first")
	}

	entries, err := s.Entries()
	if err != nil {
		return Info{}, fmt.Errorf("collecting records: %w", err)
	}

	now := m.clock.Now()
	doc := Document{
		Version:   FormatVersion,
		ProfileID: m.profileID,
		Source:    m.source,
		CreatedAt: now.UTC(),
		Entries:   entries,
	}
	compressed, err := m.codec.Encode(doc)
	if err != nil {
		return Info{}, err
	}

	var sealed bytes.Buffer
	if err := m.encryptor.Encrypt(bytes.NewReader(compressed), &sealed); err != nil {
		return Info{}, fmt.Errorf("encrypting snapshot: %w", err)
	}

	id := newID(now, m.ids)
	size := int64(sealed.Len())
	if err := m.vault.PutSnapshot(m.profileID, id, &sealed, size); err != nil {
		return Info{}, fmt.Errorf("uploading snapshot: %w", err)
	}

	m.logger.Info("snapshot exported", "id", id, "entries", len(entries), "bytes", size)
	return Info{ID: id, Entries: len(entries), Size: size}, nil
}

// Import downloads snapshot id, opens it with dec and restores its records
// into s. A snapshot taken under another profile is refused.
func (m *Manager) Import(s Store, id string, dec gt.Decrypter) (Document, error) {
	var sealed bytes.Buffer
	if err := m.vault.GetSnapshot(m.profileID, id, &sealed); err != nil {
		return Document{}, fmt.Errorf("downloading snapshot: %w", err)
	}

	var compressed bytes.Buffer
	if err := dec.Decrypt(&sealed, &compressed); err != nil {
		return Document{}, fmt.Errorf("decrypting snapshot: %w", err)
	}

	doc, err := m.codec.Decode(compressed.Bytes())
	if err != nil {
		return Document{}, err
	}
	if doc.ProfileID != m.profileID {
		return Document{}, fmt.Errorf("snapshot %s belongs to profile %s", id, doc.ProfileID)
	}

	if err := s.Restore(doc.Entries); err != nil {
		return Document{}, fmt.Errorf("restoring snapshot: %w", err)
	}

	m.logger.Info("snapshot imported", "id", id, "entries", len(doc.Entries), "created_at", doc.CreatedAt)
	return doc, nil
}

// List returns the profile's snapshot IDs, oldest first.
func (m *Manager) List() ([]string, error) {
	ids, err := m.vault.ListSnapshots(m.profileID)
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	return ids, nil
}

func newID(now time.Time, ids gt.IDGenerator) string {
	return now.UTC().Format(idTimeFormat) + "-" + ids.New()
}
