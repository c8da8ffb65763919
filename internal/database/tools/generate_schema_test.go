package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gt-go/internal/database"
)

func TestRun_MatchesEmbeddedSchema(t *testing.T) {
	out := filepath.Join(t.TempDir(), "schema.sql")
	if err := run(out); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(string(got)) != strings.TrimSpace(database.Schema) {
		t.Errorf("generated schema differs from schema.sql; run go generate ./internal/database\n%s", got)
	}
}

func TestCheckKVTable(t *testing.T) {
	tests := []struct {
		name    string
		ddl     string
		wantErr string
	}{
		{"complete", `CREATE TABLE kv_entries (key TEXT PRIMARY KEY, value BLOB, updated_at INTEGER)`, ""},
		{"missing table", `CREATE TABLE other (id INTEGER)`, "do not create kv_entries"},
		{"missing column", `CREATE TABLE kv_entries (key TEXT PRIMARY KEY, value BLOB)`, "updated_at"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, err := database.OpenConnection(":memory:")
			if err != nil {
				t.Fatal(err)
			}
			defer db.Close()
			if _, err := db.Exec(tt.ddl); err != nil {
				t.Fatal(err)
			}

			err = checkKVTable(db)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("checkKVTable() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("checkKVTable() error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}
