package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/gookit/validate"
)

// Config represents the main configuration for gt.
type Config struct {
	ProfileID     string              `toml:"profile_id" validate:"required"`
	BaseDir       string              `toml:"base_dir" validate:"required"`
	LogDir        string              `toml:"log_dir"`
	LogLevel      string              `toml:"log_level" validate:"in:debug,info,warn,error"`
	Locale        string              `toml:"locale" validate:"in:ko,en"`
	SourceName    string              `toml:"source_name"`
	Store         StoreConfig         `toml:"store"`
	Vaults        []VaultConfig       `toml:"vaults"`
	Encryption    EncryptionConfig    `toml:"encryption"`
	Notifications NotificationsConfig `toml:"notifications"`
	Haptics       HapticsConfig       `toml:"haptics"`
	Metrics       MetricsConfig       `toml:"metrics"`
}

// StoreConfig selects the key-value store backend.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type StoreConfig struct {
	Type        string `toml:"type" validate:"required|in:sqlite,file,memory"`
	DataDir     string `toml:"data_dir,omitempty"` // sqlite and file only
	CacheSizeMB int    `toml:"cache_size_mb" validate:"min:0"`
}

// VaultConfig represents configuration for a snapshot vault.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type VaultConfig struct {
	Type string `toml:"type" validate:"required|in:memory,filesystem,s3"`
	Name string `toml:"name" validate:"required"`

	// S3-specific fields (only used when Type == "s3")
	S3Bucket          string `toml:"s3_bucket,omitempty"`
	S3Prefix          string `toml:"s3_prefix,omitempty"`
	S3Region          string `toml:"s3_region,omitempty"`
	S3Endpoint        string `toml:"s3_endpoint,omitempty"`
	S3AccessKeyID     string `toml:"s3_access_key_id,omitempty"`
	S3SecretAccessKey string `toml:"s3_secret_access_key,omitempty"`

	// FileSystem-specific fields (only used when Type == "filesystem")
	FSVaultRoot string `toml:"fs_vault_root,omitempty"`
}

// EncryptionConfig holds paths to the age key pair used for snapshots.
type EncryptionConfig struct {
	Type           string `toml:"type" validate:"in:age,test"` // "age" (default) or "test"
	PublicKeyPath  string `toml:"public_key_path"`
	PrivateKeyPath string `toml:"private_key_path"`
}

// NotificationsConfig selects the platform display facility.
type NotificationsConfig struct {
	Display    string `toml:"display" validate:"in:terminal,command,none"`
	Permission string `toml:"permission" validate:"in:granted,default,denied"`
	Command    string `toml:"command,omitempty"` // only used when Display == "command"
}

// HapticsConfig selects the vibration facility.
type HapticsConfig struct {
	Type string `toml:"type" validate:"in:bell,none"`
}

// MetricsConfig controls the prometheus endpoint in watch mode.
type MetricsConfig struct {
	Enabled bool   `toml:"enabled"`
	Addr    string `toml:"addr,omitempty"`
}

// NewConfig creates a new Config with the provided values and defaults
// for everything else.
func NewConfig(profileID, baseDir string) *Config {
	return &Config{
		ProfileID:  profileID,
		BaseDir:    baseDir,
		LogDir:     filepath.Join(baseDir, "log"),
		LogLevel:   "info",
		Locale:     "ko",
		SourceName: "원신",
		Store: StoreConfig{
			Type:        "sqlite",
			DataDir:     filepath.Join(baseDir, "data"),
			CacheSizeMB: 1,
		},
		Vaults: []VaultConfig{
			{Type: "filesystem", Name: "local", FSVaultRoot: filepath.Join(baseDir, "vault")},
		},
		Encryption: EncryptionConfig{
			Type:           "age",
			PublicKeyPath:  filepath.Join(baseDir, "keys", "gt.pub"),
			PrivateKeyPath: filepath.Join(baseDir, "keys", "gt.key"),
		},
		Notifications: NotificationsConfig{
			Display:    "terminal",
			Permission: "default",
			Command:    "notify-send",
		},
		Haptics: HapticsConfig{Type: "bell"},
		Metrics: MetricsConfig{Addr: "127.0.0.1:9464"},
	}
}

// Validate checks field values against their validate tags and the
// per-type requirements of the tagged unions.
func (c *Config) Validate() error {
	if v := validate.Struct(c); !v.Validate() {
		return fmt.Errorf("invalid config: %w", v.Errors)
	}
	if v := validate.Struct(&c.Store); !v.Validate() {
		return fmt.Errorf("invalid store config: %w", v.Errors)
	}
	if c.Store.Type != "memory" && c.Store.DataDir == "" {
		return fmt.Errorf("invalid store config: data_dir required for %s store", c.Store.Type)
	}
	for i := range c.Vaults {
		vc := &c.Vaults[i]
		if v := validate.Struct(vc); !v.Validate() {
			return fmt.Errorf("invalid vault config %d: %w", i, v.Errors)
		}
		switch {
		case vc.Type == "filesystem" && vc.FSVaultRoot == "":
			return fmt.Errorf("invalid vault config %q: fs_vault_root required", vc.Name)
		case vc.Type == "s3" && vc.S3Bucket == "":
			return fmt.Errorf("invalid vault config %q: s3_bucket required", vc.Name)
		}
	}
	for _, s := range []any{&c.Encryption, &c.Notifications, &c.Haptics} {
		if v := validate.Struct(s); !v.Validate() {
			return fmt.Errorf("invalid config: %w", v.Errors)
		}
	}
	return nil
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads and validates a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// writeToFile writes a Config to the specified file path.
func writeToFile(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init initializes a new config file at the specified path with the provided Config.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
