package db

import (
	"database/sql"
	"strings"

	"github.com/adamavenir/weft/internal/types"
)

// EnsureAuthor creates an empty author row on first sighting of an id.
func EnsureAuthor(dbtx DBTX, id string) error {
	_, err := dbtx.Exec("INSERT OR IGNORE INTO weft_authors (id) VALUES (?)", id)
	return err
}

// ApplyAbout applies a profile update. Fields are last-write-wins by
// received order; nil fields leave the prior value in place.
func ApplyAbout(dbtx DBTX, id string, name, description, imageLink *string, seq int64) error {
	if err := EnsureAuthor(dbtx, id); err != nil {
		return err
	}
	_, err := dbtx.Exec(`
		UPDATE weft_authors SET
			name = COALESCE(?, name),
			description = COALESCE(?, description),
			image_link = COALESCE(?, image_link),
			updated_seq = ?
		WHERE id = ?
	`, name, description, imageLink, seq, id)
	return err
}

const authorColumns = "id, name, description, image_link"

// GetAuthor returns an author by id.
func GetAuthor(dbtx DBTX, id string) (types.Author, error) {
	row := dbtx.QueryRow("SELECT "+authorColumns+" FROM weft_authors WHERE id = ?", id)
	author, err := scanAuthor(row)
	if err == sql.ErrNoRows {
		return types.Author{}, types.ErrNotFound
	}
	if err != nil {
		return types.Author{}, err
	}
	return author, nil
}

// SearchAuthors does a case-insensitive substring match against name,
// and description when includeDescriptions is set. Ordered by id for
// reproducibility.
func SearchAuthors(dbtx DBTX, query string, includeDescriptions bool) ([]types.Author, error) {
	pattern := "%" + escapeLike(strings.ToLower(query)) + "%"

	where := "LOWER(COALESCE(name, '')) LIKE ? ESCAPE '\\'"
	args := []any{pattern}
	if includeDescriptions {
		where += " OR LOWER(COALESCE(description, '')) LIKE ? ESCAPE '\\'"
		args = append(args, pattern)
	}

	rows, err := dbtx.Query("SELECT "+authorColumns+" FROM weft_authors WHERE "+where+" ORDER BY id", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var authors []types.Author
	for rows.Next() {
		author, err := scanAuthor(rows)
		if err != nil {
			return nil, err
		}
		authors = append(authors, author)
	}
	return authors, rows.Err()
}

func scanAuthor(scanner interface{ Scan(dest ...any) error }) (types.Author, error) {
	var author types.Author
	var name, description, imageLink sql.NullString
	if err := scanner.Scan(&author.ID, &name, &description, &imageLink); err != nil {
		return types.Author{}, err
	}
	author.Name = nullStringPtr(name)
	author.Description = nullStringPtr(description)
	author.ImageLink = nullStringPtr(imageLink)
	return author, nil
}

// escapeLike escapes LIKE metacharacters in user-supplied match text.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	s = strings.ReplaceAll(s, "_", `\_`)
	return s
}

func nullStringPtr(value sql.NullString) *string {
	if !value.Valid {
		return nil
	}
	v := value.String
	return &v
}
