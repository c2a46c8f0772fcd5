package db

import (
	"database/sql"
)

// schemaVersion is bumped whenever the index layout changes in a way
// that requires a full reindex from offset 0.
const schemaVersion = "1"

// DBTX is the subset of database/sql shared by *sql.DB and *sql.Tx.
// Apply-side functions take it so the indexer can route everything
// through one chunk transaction.
type DBTX interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// InitSchema creates all index tables.
func InitSchema(dbtx DBTX) error {
	if _, err := dbtx.Exec(schemaSQL); err != nil {
		return err
	}
	_, err := dbtx.Exec(
		"INSERT OR IGNORE INTO weft_state (key, value) VALUES (?, ?)",
		stateSchemaVersion, schemaVersion,
	)
	return err
}

// ResetIndex drops every derived table and recreates an empty schema.
// Used for full reindexes after corruption.
func ResetIndex(dbtx DBTX) error {
	tables := []string{
		"weft_likes",
		"weft_links",
		"weft_posts",
		"weft_contacts",
		"weft_authors",
		"weft_messages",
		"weft_state",
	}
	for _, table := range tables {
		if _, err := dbtx.Exec("DROP TABLE IF EXISTS " + table); err != nil {
			return err
		}
	}
	return InitSchema(dbtx)
}
