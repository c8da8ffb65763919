package main

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gt-go/internal/database"
	"gt-go/internal/database/migrations"
)

// kvColumns are the columns the sqlite store reads and writes. A migration
// that drops or renames one must fail generation instead of producing a
// schema the store cannot use.
var kvColumns = []string{"key", "value", "updated_at"}

const header = `-- This file is auto-generated from migration files.
-- DO NOT EDIT MANUALLY. Run 'go generate ./internal/database' to regenerate.
-- Source: internal/database/migrations/files/*.sql

`

func main() {
	outPath := filepath.Join("internal", "database", "schema.sql")
	if err := run(outPath); err != nil {
		fmt.Fprintf(os.Stderr, "generate schema: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("generated %s from migrations\n", outPath)
}

func run(outPath string) error {
	db, err := database.OpenConnection(":memory:")
	if err != nil {
		return err
	}
	defer db.Close()

	if err := migrations.MigrateUp(db); err != nil {
		return fmt.Errorf("migrating: %w", err)
	}
	if err := checkKVTable(db); err != nil {
		return err
	}

	statements, err := schemaStatements(db)
	if err != nil {
		return err
	}
	return os.WriteFile(outPath, []byte(header+strings.Join(statements, "\n\n")+"\n"), 0644)
}

// checkKVTable verifies that kv_entries exists with every column the store
// uses.
func checkKVTable(db *sql.DB) error {
	rows, err := db.Query(`SELECT name FROM pragma_table_info('kv_entries')`)
	if err != nil {
		return fmt.Errorf("reading kv_entries columns: %w", err)
	}
	defer rows.Close()

	var have []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return fmt.Errorf("scanning column: %w", err)
		}
		have = append(have, name)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if len(have) == 0 {
		return fmt.Errorf("migrations do not create kv_entries")
	}

	var missing []string
	for _, c := range kvColumns {
		if !slices.Contains(have, c) {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("kv_entries is missing columns %s", strings.Join(missing, ", "))
	}
	return nil
}

// schemaStatements returns the CREATE statements for every table and index
// except sqlite internals and the migration bookkeeping table, tables
// first.
func schemaStatements(db *sql.DB) ([]string, error) {
	rows, err := db.Query(`
		SELECT sql || ';'
		FROM sqlite_master
		WHERE type IN ('table', 'index')
		  AND sql IS NOT NULL
		  AND name NOT LIKE 'sqlite_%'
		  AND tbl_name != 'schema_migrations'
		ORDER BY type = 'index', name
	`)
	if err != nil {
		return nil, fmt.Errorf("reading sqlite_master: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var stmt string
		if err := rows.Scan(&stmt); err != nil {
			return nil, fmt.Errorf("scanning statement: %w", err)
		}
		out = append(out, stmt)
	}
	return out, rows.Err()
}
