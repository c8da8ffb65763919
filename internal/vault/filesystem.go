package vault

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gt-go/internal/gt"
)

const snapshotExt = ".snap"

// FileSystemVault is a filesystem-based implementation of the Vault interface.
// It stores snapshots as files in a directory structure:
//
//	<root>/
//	  snapshots/
//	    <profileID>/
//	      <snapshotID>.snap
type FileSystemVault struct {
	name         string
	root         string
	snapshotsDir string
}

// NewFileSystemVault creates a new filesystem vault rooted at the given path.
func NewFileSystemVault(name, root string) (*FileSystemVault, error) {
	snapshotsDir := filepath.Join(root, "snapshots")

	if err := os.MkdirAll(snapshotsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create snapshots directory: %w", err)
	}

	return &FileSystemVault{
		name:         name,
		root:         root,
		snapshotsDir: snapshotsDir,
	}, nil
}

// PutSnapshot stores a snapshot blob, replacing any existing one with the
// same ID.
func (v *FileSystemVault) PutSnapshot(profileID, snapshotID string, r io.Reader, size int64) error {
	dir, err := v.profileDir(profileID)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create profile directory: %w", err)
	}
	destPath, err := v.snapshotPath(profileID, snapshotID)
	if err != nil {
		return err
	}
	return v.writeFile(destPath, r, size)
}

// GetSnapshot retrieves a snapshot blob and writes it to w.
func (v *FileSystemVault) GetSnapshot(profileID, snapshotID string, w io.Writer) error {
	srcPath, err := v.snapshotPath(profileID, snapshotID)
	if err != nil {
		return err
	}
	return v.readFile(srcPath, w, fmt.Sprintf("snapshot %q not found for profile: %s", snapshotID, profileID))
}

// ListSnapshots returns the snapshot IDs stored for a profile in sorted order.
func (v *FileSystemVault) ListSnapshots(profileID string) ([]string, error) {
	dir, err := v.profileDir(profileID)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("reading profile directory: %w", err)
	}

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, snapshotExt) {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, snapshotExt))
	}
	sort.Strings(ids)
	return ids, nil
}

// ValidateSetup verifies that the vault directories are accessible.
func (v *FileSystemVault) ValidateSetup() error {
	// Check that root directory exists and is a directory
	info, err := os.Stat(v.root)
	if err != nil {
		return fmt.Errorf("vault root not accessible: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("vault root is not a directory: %s", v.root)
	}

	info, err = os.Stat(v.snapshotsDir)
	if err != nil {
		return fmt.Errorf("vault directory not accessible: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("vault path is not a directory: %s", v.snapshotsDir)
	}

	return nil
}

func (v *FileSystemVault) profileDir(profileID string) (string, error) {
	if err := checkName(profileID); err != nil {
		return "", fmt.Errorf("profile id: %w", err)
	}
	return filepath.Join(v.snapshotsDir, profileID), nil
}

func (v *FileSystemVault) snapshotPath(profileID, snapshotID string) (string, error) {
	dir, err := v.profileDir(profileID)
	if err != nil {
		return "", err
	}
	if err := checkName(snapshotID); err != nil {
		return "", fmt.Errorf("snapshot id: %w", err)
	}
	return filepath.Join(dir, snapshotID+snapshotExt), nil
}

// checkName rejects IDs that would escape their directory.
func checkName(s string) error {
	if s == "" || s == "." || s == ".." || strings.ContainsAny(s, `/\`) {
		return fmt.Errorf("invalid name %q", s)
	}
	return nil
}

// writeFile writes data from r to the specified path using atomic write (temp file + rename).
func (v *FileSystemVault) writeFile(destPath string, r io.Reader, expectedSize int64) error {
	// Create temp file in the same directory to ensure atomic rename works
	dir := filepath.Dir(destPath)
	tmpFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	// Clean up temp file on failure
	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	written, err := io.Copy(tmpFile, r)
	if err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write data: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if written != expectedSize {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", expectedSize, written)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return nil
}

// readFile reads from the specified path and writes to w.
func (v *FileSystemVault) readFile(srcPath string, w io.Writer, notFoundMsg string) error {
	f, err := os.Open(srcPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%s", notFoundMsg)
		}
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	return nil
}

// Compile-time check that FileSystemVault implements gt.Vault interface
var _ gt.Vault = (*FileSystemVault)(nil)
