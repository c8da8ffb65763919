package snapshot_test

import (
	"path/filepath"

	"gt-go/internal/config"
)

func configFor(dir string) config.EncryptionConfig {
	return config.EncryptionConfig{
		Type:           "age",
		PublicKeyPath:  filepath.Join(dir, "gt.pub"),
		PrivateKeyPath: filepath.Join(dir, "gt.key"),
	}
}
