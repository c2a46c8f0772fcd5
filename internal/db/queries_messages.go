package db

import (
	"database/sql"

	"github.com/adamavenir/weft/internal/types"
)

// InsertMessage records bookkeeping for one log entry. Every entry
// gets a row, including unknown types and decode failures.
func InsertMessage(dbtx DBTX, msg types.Message) error {
	var author any
	if msg.Author != "" {
		author = msg.Author
	}
	private := 0
	if msg.Private {
		private = 1
	}
	_, err := dbtx.Exec(`
		INSERT OR REPLACE INTO weft_messages (id, seq, author, type, asserted_at, received_at, private, raw)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, msg.ID, msg.Seq, author, string(msg.Type), msg.AssertedAt, msg.ReceivedAt, private, string(msg.Raw))
	return err
}

// GetMessageRaw returns the raw envelope of a message by id.
func GetMessageRaw(dbtx DBTX, id string) (string, error) {
	row := dbtx.QueryRow("SELECT raw FROM weft_messages WHERE id = ?", id)
	var raw string
	if err := row.Scan(&raw); err != nil {
		if err == sql.ErrNoRows {
			return "", types.ErrNotFound
		}
		return "", err
	}
	return raw, nil
}

// MessageTypes returns every type tag seen so far, sorted.
func MessageTypes(dbtx DBTX) ([]string, error) {
	rows, err := dbtx.Query("SELECT DISTINCT type FROM weft_messages ORDER BY type")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []string
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}

// MessagesByType returns bookkeeping rows for one type tag in
// received order.
func MessagesByType(dbtx DBTX, messageType string) ([]types.MessageRecord, error) {
	rows, err := dbtx.Query(`
		SELECT id, seq, author, type, received_at
		FROM weft_messages
		WHERE type = ?
		ORDER BY seq
	`, messageType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []types.MessageRecord
	for rows.Next() {
		var record types.MessageRecord
		var author sql.NullString
		var receivedAt sql.NullInt64
		if err := rows.Scan(&record.ID, &record.Seq, &author, &record.Type, &receivedAt); err != nil {
			return nil, err
		}
		record.Author = author.String
		record.ReceivedAt = receivedAt.Int64
		records = append(records, record)
	}
	return records, rows.Err()
}
