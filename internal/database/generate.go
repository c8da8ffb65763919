package database

import _ "embed"

// Schema is the kv_entries schema as produced by the migrations. Tests
// apply it directly to in-memory databases.
//
// To regenerate after adding a migration:
//
//	go generate ./internal/database
//
//go:embed schema.sql
var Schema string

//go:generate sh -c "cd ../.. && go run internal/database/tools/generate_schema.go"
