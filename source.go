// Package sourceclickhouse is a ClickHouse source connector speaking the
// Airbyte protocol over stdout.
//
// The connector includes:
//   - spec, check, discover and read commands
//   - Full refresh and cursor based incremental reads
//   - The same source running against PostgreSQL, MySQL and SQLite
//   - A container backed acceptance suite shared by every engine
//
// CLI usage:
//
//	source-clickhouse spec
//	source-clickhouse check --config config.json
//	source-clickhouse discover --config config.json
//	source-clickhouse read --config config.json --catalog catalog.json [--state state.json]
//
// Acceptance tests against real databases need Docker:
//
//	go test -tags=integration ./internal/testing/...
package sourceclickhouse

const Version = "0.1.0"
