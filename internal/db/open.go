package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/adamavenir/weft/internal/types"
)

// Open opens the index database at path, applying the pragmas every
// connection needs and verifying persisted state. A consistency
// failure surfaces as types.ErrIndexCorrupt; the caller decides when
// to reindex.
func Open(path string) (*sql.DB, error) {
	conn, err := OpenUnchecked(path)
	if err != nil {
		return nil, err
	}
	if err := CheckIntegrity(conn); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return conn, nil
}

// OpenUnchecked opens the index without the integrity check. Used on
// the rebuild path, where derived state is about to be dropped anyway.
func OpenUnchecked(path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	for _, pragma := range []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := conn.Exec(pragma); err != nil {
			_ = conn.Close()
			return nil, err
		}
	}

	if err := InitSchema(conn); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return conn, nil
}

// CheckIntegrity verifies that persisted index state is internally
// consistent: the schema version matches this build and no indexed
// message sits past the durable cursor. Silent partial recovery could
// misrepresent the social graph, so failures are fatal.
func CheckIntegrity(dbtx DBTX) error {
	version, err := GetState(dbtx, stateSchemaVersion)
	if err != nil {
		return err
	}
	if version != schemaVersion {
		return fmt.Errorf("schema version %q, want %q: %w", version, schemaVersion, types.ErrIndexCorrupt)
	}

	cursor, err := GetCursor(dbtx)
	if err != nil {
		return err
	}

	var maxSeq sql.NullInt64
	if err := dbtx.QueryRow("SELECT MAX(seq) FROM weft_messages").Scan(&maxSeq); err != nil {
		return err
	}
	if !maxSeq.Valid {
		return nil
	}
	if cursor == nil || *cursor < maxSeq.Int64 {
		return fmt.Errorf("indexed seq %d is past the durable cursor: %w", maxSeq.Int64, types.ErrIndexCorrupt)
	}
	return nil
}
