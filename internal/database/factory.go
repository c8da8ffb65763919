package database

import (
	"fmt"
	"os"
	"path/filepath"

	"gt-go/internal/config"
	"gt-go/internal/gt"
)

// NewStoreFromConfig creates a gt.Store based on the store config type,
// wrapped in a read-through cache when cache_size_mb is positive.
func NewStoreFromConfig(cfg config.StoreConfig, profileID string, clock gt.Clock) (gt.Store, error) {
	var (
		store gt.Store
		err   error
	)

	switch cfg.Type {
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("data_dir required for sqlite store")
		}
		if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
			return nil, fmt.Errorf("creating data dir: %w", err)
		}
		store, err = NewSQLiteStore(filepath.Join(cfg.DataDir, profileID+".db"), clock)
	case "file":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("data_dir required for file store")
		}
		store, err = NewFileStore(filepath.Join(cfg.DataDir, profileID+".json"))
	case "memory":
		store = NewMemoryStore()
	default:
		return nil, fmt.Errorf("unknown store type: %s", cfg.Type)
	}
	if err != nil {
		return nil, err
	}

	return NewCachedStore(store, cfg.CacheSizeMB), nil
}
