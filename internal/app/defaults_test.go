package app

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGetDefaults(t *testing.T) {
	t.Run("uses env vars when set", func(t *testing.T) {
		t.Setenv("GT_CONFIG_PATH", "/custom/config.toml")
		t.Setenv("GT_HOME", "/custom/gt")

		defaults, err := GetDefaults()
		if err != nil {
			t.Fatalf("GetDefaults() error = %v", err)
		}

		if defaults["config_path"] != "/custom/config.toml" {
			t.Errorf("config_path = %q, want %q", defaults["config_path"], "/custom/config.toml")
		}
		if defaults["base_dir"] != "/custom/gt" {
			t.Errorf("base_dir = %q, want %q", defaults["base_dir"], "/custom/gt")
		}
		if defaults["log_dir"] != "/custom/gt/log" {
			t.Errorf("log_dir = %q, want %q", defaults["log_dir"], "/custom/gt/log")
		}
	})

	t.Run("falls back to home dir defaults", func(t *testing.T) {
		t.Setenv("GT_CONFIG_PATH", "")
		t.Setenv("GT_HOME", "")

		defaults, err := GetDefaults()
		if err != nil {
			t.Fatalf("GetDefaults() error = %v", err)
		}

		homeDir, _ := os.UserHomeDir()

		wantConfig := filepath.Join(homeDir, ".config", "gt.toml")
		if defaults["config_path"] != wantConfig {
			t.Errorf("config_path = %q, want %q", defaults["config_path"], wantConfig)
		}

		wantBase := filepath.Join(homeDir, ".local", "share", "gt")
		if defaults["base_dir"] != wantBase {
			t.Errorf("base_dir = %q, want %q", defaults["base_dir"], wantBase)
		}

		wantLog := filepath.Join(wantBase, "log")
		if defaults["log_dir"] != wantLog {
			t.Errorf("log_dir = %q, want %q", defaults["log_dir"], wantLog)
		}
	})
}

func TestGetDefaults_PartialEnv(t *testing.T) {
	t.Setenv("GT_CONFIG_PATH", "")
	t.Setenv("GT_HOME", "/srv/gt")

	defaults, err := GetDefaults()
	if err != nil {
		t.Fatalf("GetDefaults() error = %v", err)
	}

	homeDir, _ := os.UserHomeDir()
	if want := filepath.Join(homeDir, ".config", "gt.toml"); defaults["config_path"] != want {
		t.Errorf("config_path = %q, want %q", defaults["config_path"], want)
	}
	if defaults["log_dir"] != "/srv/gt/log" {
		t.Errorf("log_dir = %q, want %q", defaults["log_dir"], "/srv/gt/log")
	}
}
