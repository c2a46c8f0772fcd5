package db

import (
	"database/sql"
	"strconv"
)

const (
	stateCursor        = "cursor"
	stateSchemaVersion = "schema_version"
)

// GetState returns a state value, "" when unset.
func GetState(dbtx DBTX, key string) (string, error) {
	row := dbtx.QueryRow("SELECT value FROM weft_state WHERE key = ?", key)
	var value string
	if err := row.Scan(&value); err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", err
	}
	return value, nil
}

// SetState sets a state value.
func SetState(dbtx DBTX, key, value string) error {
	_, err := dbtx.Exec("INSERT OR REPLACE INTO weft_state (key, value) VALUES (?, ?)", key, value)
	return err
}

// GetCursor returns the last durably indexed log sequence, nil when no
// entry has ever been processed.
func GetCursor(dbtx DBTX) (*int64, error) {
	value, err := GetState(dbtx, stateCursor)
	if err != nil {
		return nil, err
	}
	if value == "" {
		return nil, nil
	}
	seq, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return nil, err
	}
	return &seq, nil
}

// SetCursor advances the durable cursor. Called inside the same
// transaction that applied the chunk, so apply and advance are one
// unit.
func SetCursor(dbtx DBTX, seq int64) error {
	return SetState(dbtx, stateCursor, strconv.FormatInt(seq, 10))
}
