package database

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	json "github.com/goccy/go-json"
)

// FileStore keeps every entry in one JSON document and rewrites it
// atomically (temp file, fsync, rename) on each Set.
type FileStore struct {
	mu      sync.Mutex
	path    string
	entries map[string]json.RawMessage
}

// NewFileStore loads path if it exists. A missing file is an empty store.
func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{path: path, entries: make(map[string]json.RawMessage)}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("reading store file: %w", err)
	}
	if len(data) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(data, &s.entries); err != nil {
		return nil, fmt.Errorf("decoding store file %s: %w", path, err)
	}
	return s, nil
}

func (s *FileStore) Get(key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.entries[key]
	if !ok {
		return nil, false, nil
	}
	return slices.Clone([]byte(v)), true, nil
}

// Set stores value under key. Values that are not valid JSON are rejected
// because the document embeds them verbatim.
func (s *FileStore) Set(key string, value []byte) error {
	if !json.Valid(value) {
		return fmt.Errorf("setting %s: value is not valid JSON", key)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev, had := s.entries[key]
	s.entries[key] = slices.Clone(value)
	if err := s.flush(); err != nil {
		if had {
			s.entries[key] = prev
		} else {
			delete(s.entries, key)
		}
		return fmt.Errorf("setting %s: %w", key, err)
	}
	return nil
}

func (s *FileStore) Keys() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys, nil
}

func (s *FileStore) Close() error { return nil }

func (s *FileStore) flush() error {
	data, err := json.Marshal(s.entries)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return err
	}

	tmpFile := s.path + ".tmp"
	file, err := os.Create(tmpFile)
	if err != nil {
		return err
	}

	if _, err = file.Write(data); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Close(); err != nil {
		os.Remove(tmpFile)
		return err
	}

	return os.Rename(tmpFile, s.path)
}
