package vault

import (
	"bytes"
	"strings"
	"testing"

	"gt-go/internal/gt"
)

// testVaultContract runs the behaviour every gt.Vault must share.
func testVaultContract(t *testing.T, newVault func(t *testing.T) gt.Vault) {
	t.Run("put and get snapshot", func(t *testing.T) {
		v := newVault(t)

		tests := []struct {
			name    string
			id      string
			content string
		}{
			{"small snapshot", "20240117T120000Z-a", "hello world"},
			{"empty snapshot", "20240117T120000Z-b", ""},
			{"large snapshot", "20240117T120000Z-c", strings.Repeat("x", 10000)},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				if err := v.PutSnapshot("profile-1", tt.id, strings.NewReader(tt.content), int64(len(tt.content))); err != nil {
					t.Fatalf("PutSnapshot() error = %v", err)
				}

				var buf bytes.Buffer
				if err := v.GetSnapshot("profile-1", tt.id, &buf); err != nil {
					t.Fatalf("GetSnapshot() error = %v", err)
				}
				if got := buf.String(); got != tt.content {
					t.Errorf("GetSnapshot() = %q, want %q", got, tt.content)
				}
			})
		}
	})

	t.Run("put replaces", func(t *testing.T) {
		v := newVault(t)
		_ = v.PutSnapshot("profile-1", "snap", strings.NewReader("first"), 5)
		if err := v.PutSnapshot("profile-1", "snap", strings.NewReader("second"), 6); err != nil {
			t.Fatalf("PutSnapshot() error = %v", err)
		}

		var buf bytes.Buffer
		if err := v.GetSnapshot("profile-1", "snap", &buf); err != nil {
			t.Fatalf("GetSnapshot() error = %v", err)
		}
		if buf.String() != "second" {
			t.Errorf("GetSnapshot() = %q, want %q", buf.String(), "second")
		}
	})

	t.Run("get not found", func(t *testing.T) {
		v := newVault(t)

		var buf bytes.Buffer
		if err := v.GetSnapshot("profile-1", "nonexistent", &buf); err == nil {
			t.Error("GetSnapshot() expected error for nonexistent snapshot, got nil")
		}
	})

	t.Run("size mismatch", func(t *testing.T) {
		v := newVault(t)

		content := "test"
		if err := v.PutSnapshot("profile-1", "snap", strings.NewReader(content), int64(len(content)+10)); err == nil {
			t.Error("PutSnapshot() expected error for size mismatch, got nil")
		}
	})

	t.Run("list is sorted and per profile", func(t *testing.T) {
		v := newVault(t)

		for _, id := range []string{"20240301T000000Z-c", "20240101T000000Z-a", "20240201T000000Z-b"} {
			if err := v.PutSnapshot("profile-1", id, strings.NewReader(id), int64(len(id))); err != nil {
				t.Fatalf("PutSnapshot() error = %v", err)
			}
		}
		_ = v.PutSnapshot("profile-2", "other", strings.NewReader("x"), 1)

		got, err := v.ListSnapshots("profile-1")
		if err != nil {
			t.Fatalf("ListSnapshots() error = %v", err)
		}
		want := []string{"20240101T000000Z-a", "20240201T000000Z-b", "20240301T000000Z-c"}
		if strings.Join(got, ",") != strings.Join(want, ",") {
			t.Errorf("ListSnapshots() = %v, want %v", got, want)
		}

		empty, err := v.ListSnapshots("profile-3")
		if err != nil {
			t.Fatalf("ListSnapshots() error = %v", err)
		}
		if len(empty) != 0 {
			t.Errorf("ListSnapshots() for unknown profile = %v, want empty", empty)
		}
	})

	t.Run("validate setup", func(t *testing.T) {
		if err := newVault(t).ValidateSetup(); err != nil {
			t.Errorf("ValidateSetup() error = %v", err)
		}
	})
}
