package db

import (
	"github.com/adamavenir/weft/internal/types"
)

// ApplyVote overwrites the live vote one author holds on a post. The
// value is stored as asserted, negatives included; a value of zero
// retracts the vote.
func ApplyVote(dbtx DBTX, author, postID string, value int, seq int64) error {
	if err := EnsureAuthor(dbtx, author); err != nil {
		return err
	}
	if value == 0 {
		_, err := dbtx.Exec("DELETE FROM weft_likes WHERE author = ? AND post_id = ?", author, postID)
		return err
	}
	_, err := dbtx.Exec(`
		INSERT INTO weft_likes (author, post_id, value, updated_seq)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(author, post_id) DO UPDATE SET
			value = excluded.value,
			updated_seq = excluded.updated_seq
	`, author, postID, value, seq)
	return err
}

// LikesForPost returns the live likes on a post, ordered by author.
func LikesForPost(dbtx DBTX, postID string) ([]types.Like, error) {
	rows, err := dbtx.Query(`
		SELECT author, post_id, value FROM weft_likes
		WHERE post_id = ?
		ORDER BY author
	`, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var likes []types.Like
	for rows.Next() {
		var like types.Like
		if err := rows.Scan(&like.Author, &like.PostID, &like.Value); err != nil {
			return nil, err
		}
		likes = append(likes, like)
	}
	return likes, rows.Err()
}
