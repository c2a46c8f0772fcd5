package db

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/adamavenir/weft/internal/types"
)

const postColumns = "id, author, text, asserted_at, received_at, seq, root_key, fork_key, private"
const postColumnsAliased = "p.id, p.author, p.text, p.asserted_at, p.received_at, p.seq, p.root_key, p.fork_key, p.private"

// InsertPost indexes a post message. Posts are immutable once indexed;
// REPLACE only matters for reindexing over an existing row.
func InsertPost(dbtx DBTX, post types.Post) error {
	private := 0
	if post.Private {
		private = 1
	}
	_, err := dbtx.Exec(`
		INSERT OR REPLACE INTO weft_posts (id, author, text, asserted_at, received_at, seq, root_key, fork_key, private)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, post.ID, post.Author, post.Text, post.AssertedAt, post.ReceivedAt, post.Seq, post.RootKey, post.ForkKey, private)
	return err
}

// InsertLink records one payload link from a post to an id.
func InsertLink(dbtx DBTX, fromPost, toID string) error {
	_, err := dbtx.Exec("INSERT OR IGNORE INTO weft_links (from_post, to_id) VALUES (?, ?)", fromPost, toID)
	return err
}

// GetPost returns a post by id.
func GetPost(dbtx DBTX, id string) (types.Post, error) {
	row := dbtx.QueryRow("SELECT "+postColumns+" FROM weft_posts WHERE id = ?", id)
	post, err := scanPost(row)
	if err == sql.ErrNoRows {
		return types.Post{}, types.ErrNotFound
	}
	if err != nil {
		return types.Post{}, err
	}
	return post, nil
}

// Replies returns the posts whose root key resolves to rootID, in
// received order.
func Replies(dbtx DBTX, rootID string) ([]types.Post, error) {
	return listPostsWhere(dbtx, "root_key = ? ORDER BY seq", rootID)
}

// Forks returns the posts that fork from postID.
func Forks(dbtx DBTX, postID string) ([]types.Post, error) {
	return listPostsWhere(dbtx, "fork_key = ? ORDER BY seq", postID)
}

// References returns the posts whose payload links to postID,
// independent of thread membership.
func References(dbtx DBTX, postID string) ([]types.Post, error) {
	return listPostsWhere(dbtx, `
		id IN (SELECT from_post FROM weft_links WHERE to_id = ?)
		ORDER BY seq
	`, postID)
}

func listPostsWhere(dbtx DBTX, tail string, args ...any) ([]types.Post, error) {
	rows, err := dbtx.Query("SELECT "+postColumns+" FROM weft_posts WHERE "+tail, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPosts(rows)
}

// KeysetBound is an exclusive resume position: primary sort key plus
// the received-sequence tie-break.
type KeysetBound struct {
	Key int64
	Seq int64
}

// PostFilter narrows ListPosts/CountPosts. All set fields must hold
// (filters are AND'd); ids within one field are alternatives.
type PostFilter struct {
	TextLike string   // case-insensitive substring against text
	Authors  []string // post author in set
	Privacy  types.Privacy
	Mentions []string // payload links to any of these ids
}

// PostListOptions orders and windows a filtered post listing.
type PostListOptions struct {
	Filter PostFilter
	Order  types.OrderBy // OrderAsserted or OrderReceived
	Desc   bool
	After  *KeysetBound // exclusive, in scan direction
	Limit  int          // 0 = no limit
}

// ListPosts returns filtered posts in a deterministic total order:
// the primary sort key with received sequence breaking ties.
func ListPosts(dbtx DBTX, opts PostListOptions) ([]types.Post, error) {
	where, args := postFilterSQL(opts.Filter, "")

	keyExpr, err := sortKeyExpr(opts.Order, "")
	if err != nil {
		return nil, err
	}
	where, args = appendKeyset(where, args, keyExpr, "seq", opts.Desc, opts.After)

	query := "SELECT " + postColumns + " FROM weft_posts WHERE " + strings.Join(where, " AND ") +
		orderClause(keyExpr, "seq", opts.Desc)
	if opts.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", opts.Limit)
	}

	rows, err := dbtx.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPosts(rows)
}

// CountPosts returns the number of posts matching the filter,
// independent of any pagination window.
func CountPosts(dbtx DBTX, filter PostFilter) (int, error) {
	where, args := postFilterSQL(filter, "")
	row := dbtx.QueryRow("SELECT COUNT(*) FROM weft_posts WHERE "+strings.Join(where, " AND "), args...)
	var count int
	if err := row.Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// ThreadFilter selects thread roots. RootAuthors, ReplyAuthors and
// Mentions are alternatives (selectors are OR'd); Privacy applies on
// top. HasSelectors distinguishes "no selectors supplied" (all
// threads) from "selectors supplied but empty after resolution"
// (no threads).
type ThreadFilter struct {
	Privacy      types.Privacy
	RootAuthors  []string
	ReplyAuthors []string
	Mentions     []string
	HasSelectors bool
}

// ThreadListOptions orders and windows a thread-root listing.
type ThreadListOptions struct {
	Filter ThreadFilter
	Order  types.OrderBy
	Desc   bool
	After  *KeysetBound
	Limit  int
}

// ListThreadRoots returns root posts whose threads match the filter.
func ListThreadRoots(dbtx DBTX, opts ThreadListOptions) ([]types.Post, error) {
	where, args := threadFilterSQL(opts.Filter)

	keyExpr, err := sortKeyExpr(opts.Order, "p.")
	if err != nil {
		return nil, err
	}
	where, args = appendKeyset(where, args, keyExpr, "p.seq", opts.Desc, opts.After)

	query := "SELECT " + postColumnsAliased + " FROM weft_posts p WHERE " + strings.Join(where, " AND ") +
		orderClause(keyExpr, "p.seq", opts.Desc)
	if opts.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", opts.Limit)
	}

	rows, err := dbtx.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPosts(rows)
}

// CountThreadRoots returns the number of matching thread roots.
func CountThreadRoots(dbtx DBTX, filter ThreadFilter) (int, error) {
	where, args := threadFilterSQL(filter)
	row := dbtx.QueryRow("SELECT COUNT(*) FROM weft_posts p WHERE "+strings.Join(where, " AND "), args...)
	var count int
	if err := row.Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func postFilterSQL(filter PostFilter, alias string) ([]string, []any) {
	where := []string{"1=1"}
	var args []any

	if len(filter.Authors) > 0 {
		where = append(where, alias+"author IN ("+placeholders(len(filter.Authors))+")")
		for _, author := range filter.Authors {
			args = append(args, author)
		}
	}
	if clause, ok := privacySQL(filter.Privacy, alias); ok {
		where = append(where, clause)
	}
	if filter.TextLike != "" {
		where = append(where, "LOWER("+alias+"text) LIKE ? ESCAPE '\\'")
		args = append(args, "%"+escapeLike(strings.ToLower(filter.TextLike))+"%")
	}
	if len(filter.Mentions) > 0 {
		where = append(where, "EXISTS (SELECT 1 FROM weft_links l WHERE l.from_post = "+alias+"id AND l.to_id IN ("+placeholders(len(filter.Mentions))+"))")
		for _, mention := range filter.Mentions {
			args = append(args, mention)
		}
	}
	return where, args
}

func threadFilterSQL(filter ThreadFilter) ([]string, []any) {
	where := []string{"p.root_key IS NULL"}
	var args []any

	if clause, ok := privacySQL(filter.Privacy, "p."); ok {
		where = append(where, clause)
	}

	if !filter.HasSelectors {
		return where, args
	}

	var alternatives []string
	if len(filter.RootAuthors) > 0 {
		alternatives = append(alternatives, "p.author IN ("+placeholders(len(filter.RootAuthors))+")")
		for _, author := range filter.RootAuthors {
			args = append(args, author)
		}
	}
	if len(filter.ReplyAuthors) > 0 {
		alternatives = append(alternatives, "EXISTS (SELECT 1 FROM weft_posts r WHERE r.root_key = p.id AND r.author IN ("+placeholders(len(filter.ReplyAuthors))+"))")
		for _, author := range filter.ReplyAuthors {
			args = append(args, author)
		}
	}
	if len(filter.Mentions) > 0 {
		alternatives = append(alternatives, "EXISTS (SELECT 1 FROM weft_links l JOIN weft_posts q ON q.id = l.from_post WHERE l.to_id IN ("+placeholders(len(filter.Mentions))+") AND (q.id = p.id OR q.root_key = p.id))")
		for _, mention := range filter.Mentions {
			args = append(args, mention)
		}
	}

	if len(alternatives) == 0 {
		// Selectors were supplied but resolved to nothing.
		where = append(where, "1=0")
		return where, args
	}
	where = append(where, "("+strings.Join(alternatives, " OR ")+")")
	return where, args
}

func privacySQL(privacy types.Privacy, alias string) (string, bool) {
	switch privacy {
	case types.PrivacyPublic:
		return alias + "private = 0", true
	case types.PrivacyPrivate:
		return alias + "private = 1", true
	default:
		return "", false
	}
}

func sortKeyExpr(order types.OrderBy, alias string) (string, error) {
	switch order {
	case types.OrderAsserted:
		return alias + "asserted_at", nil
	case types.OrderReceived, "":
		return alias + "seq", nil
	default:
		return "", fmt.Errorf("order %q has no index sort key: %w", order, types.ErrValidation)
	}
}

func appendKeyset(where []string, args []any, keyExpr, seqExpr string, desc bool, after *KeysetBound) ([]string, []any) {
	if after == nil {
		return where, args
	}
	op := ">"
	if desc {
		op = "<"
	}
	where = append(where, fmt.Sprintf("(%s %s ? OR (%s = ? AND %s %s ?))", keyExpr, op, keyExpr, seqExpr, op))
	args = append(args, after.Key, after.Key, after.Seq)
	return where, args
}

func orderClause(keyExpr, seqExpr string, desc bool) string {
	dir := "ASC"
	if desc {
		dir = "DESC"
	}
	return fmt.Sprintf(" ORDER BY %s %s, %s %s", keyExpr, dir, seqExpr, dir)
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func scanPost(scanner interface{ Scan(dest ...any) error }) (types.Post, error) {
	var post types.Post
	var rootKey, forkKey sql.NullString
	var private int
	if err := scanner.Scan(&post.ID, &post.Author, &post.Text, &post.AssertedAt, &post.ReceivedAt, &post.Seq, &rootKey, &forkKey, &private); err != nil {
		return types.Post{}, err
	}
	post.RootKey = nullStringPtr(rootKey)
	post.ForkKey = nullStringPtr(forkKey)
	post.Private = private != 0
	return post, nil
}

func scanPosts(rows *sql.Rows) ([]types.Post, error) {
	var posts []types.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}
