package db

import (
	"database/sql"

	"github.com/adamavenir/weft/internal/types"
)

// ApplyContact overwrites one visibility slot of the (from, to) edge.
// History is never merged: the newest assertion for a slot wins.
func ApplyContact(dbtx DBTX, from, to string, state types.ContactState, private bool, seq int64) error {
	if err := EnsureAuthor(dbtx, from); err != nil {
		return err
	}
	if err := EnsureAuthor(dbtx, to); err != nil {
		return err
	}

	if private {
		_, err := dbtx.Exec(`
			INSERT INTO weft_contacts (from_author, to_author, private_state, updated_seq)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(from_author, to_author) DO UPDATE SET
				private_state = excluded.private_state,
				updated_seq = excluded.updated_seq
		`, from, to, string(state), seq)
		return err
	}

	_, err := dbtx.Exec(`
		INSERT INTO weft_contacts (from_author, to_author, public_state, updated_seq)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(from_author, to_author) DO UPDATE SET
			public_state = excluded.public_state,
			updated_seq = excluded.updated_seq
	`, from, to, string(state), seq)
	return err
}

// GetContactStatus resolves the (from, to) edge. The private slot is
// populated only when includePrivate is set; the caller is responsible
// for only setting it when the resolving identity is from.
func GetContactStatus(dbtx DBTX, from, to string, includePrivate bool) (types.ContactStatus, error) {
	status := types.ContactStatus{Public: types.ContactNeutral}

	row := dbtx.QueryRow(`
		SELECT public_state, private_state
		FROM weft_contacts
		WHERE from_author = ? AND to_author = ?
	`, from, to)

	var public string
	var private sql.NullString
	if err := row.Scan(&public, &private); err != nil {
		if err == sql.ErrNoRows {
			return status, nil
		}
		return status, err
	}

	status.Public = types.ContactState(public)
	if includePrivate && private.Valid {
		state := types.ContactState(private.String)
		status.Private = &state
	}
	return status, nil
}

// ContactsFrom returns authors the given author holds in state via a
// public edge. Private edges are excluded from list queries by
// contract.
func ContactsFrom(dbtx DBTX, author string, state types.ContactState) ([]string, error) {
	return contactList(dbtx, `
		SELECT to_author FROM weft_contacts
		WHERE from_author = ? AND public_state = ?
		ORDER BY to_author
	`, author, state)
}

// ContactsTo returns authors publicly holding the given author in
// state.
func ContactsTo(dbtx DBTX, author string, state types.ContactState) ([]string, error) {
	return contactList(dbtx, `
		SELECT from_author FROM weft_contacts
		WHERE to_author = ? AND public_state = ?
		ORDER BY from_author
	`, author, state)
}

func contactList(dbtx DBTX, query, author string, state types.ContactState) ([]string, error) {
	rows, err := dbtx.Query(query, author, string(state))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Blocks reports whether blocker publicly blocks target.
func Blocks(dbtx DBTX, blocker, target string) (bool, error) {
	row := dbtx.QueryRow(`
		SELECT 1 FROM weft_contacts
		WHERE from_author = ? AND to_author = ? AND public_state = ?
	`, blocker, target, string(types.ContactBlock))
	var one int
	if err := row.Scan(&one); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
