// Package query answers read-side questions against the derived index.
// It never writes index tables; all methods see whichever snapshot the
// indexer last committed.
package query

import (
	"database/sql"
	"log/slog"

	gocache "github.com/patrickmn/go-cache"

	"github.com/adamavenir/weft/internal/db"
	"github.com/adamavenir/weft/internal/types"
)

// Resolver holds the index connection plus a follow-set cache. Follow
// sets are read once per query wave and only change when a chunk
// lands, so the indexer flushes the cache after each commit.
type Resolver struct {
	conn    *sql.DB
	logger  *slog.Logger
	follows *gocache.Cache
}

// New returns a Resolver over the index connection.
func New(conn *sql.DB, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		conn:    conn,
		logger:  logger,
		follows: gocache.New(gocache.NoExpiration, 0),
	}
}

// FlushCache drops memoized follow sets. Called after every committed
// chunk so stale social-graph reads cannot outlive the snapshot they
// came from.
func (r *Resolver) FlushCache() {
	r.follows.Flush()
}

// followSet returns the authors one author publicly follows,
// memoized until the next flush.
func (r *Resolver) followSet(author string) ([]string, error) {
	if cached, ok := r.follows.Get(author); ok {
		return cached.([]string), nil
	}
	ids, err := db.ContactsFrom(r.conn, author, types.ContactFollow)
	if err != nil {
		return nil, err
	}
	r.follows.Set(author, ids, gocache.NoExpiration)
	return ids, nil
}

// Post returns one post by id.
func (r *Resolver) Post(id string) (types.Post, error) {
	return db.GetPost(r.conn, id)
}

// Author returns one author by id.
func (r *Resolver) Author(id string) (types.Author, error) {
	return db.GetAuthor(r.conn, id)
}

// DBCursor returns the last durably indexed log sequence, nil when
// nothing has been processed yet.
func (r *Resolver) DBCursor() (*int64, error) {
	return db.GetCursor(r.conn)
}

// MessageTypes returns every content type tag seen in the log.
func (r *Resolver) MessageTypes() ([]string, error) {
	return db.MessageTypes(r.conn)
}

// MessagesByType returns bookkeeping rows for one type tag.
func (r *Resolver) MessagesByType(messageType string) ([]types.MessageRecord, error) {
	return db.MessagesByType(r.conn, messageType)
}

// MessageRaw returns the raw envelope of a message.
func (r *Resolver) MessageRaw(id string) (string, error) {
	return db.GetMessageRaw(r.conn, id)
}

// ContactStatus resolves the (from, to) edge as seen by viewer. The
// private slot is only visible to the author who asserted it.
func (r *Resolver) ContactStatus(viewer *string, from, to string) (types.ContactStatus, error) {
	includePrivate := viewer != nil && *viewer == from
	return db.GetContactStatus(r.conn, from, to, includePrivate)
}

// ContactStatusTo resolves what author asserts toward other.
func (r *Resolver) ContactStatusTo(viewer *string, author, other string) (types.ContactStatus, error) {
	return r.ContactStatus(viewer, author, other)
}

// ContactStatusFrom resolves what other asserts toward author.
func (r *Resolver) ContactStatusFrom(viewer *string, author, other string) (types.ContactStatus, error) {
	return r.ContactStatus(viewer, other, author)
}

// Follows returns the authors one author publicly follows.
func (r *Resolver) Follows(author string) ([]string, error) {
	return r.followSet(author)
}

// Blocks returns the authors one author publicly blocks.
func (r *Resolver) Blocks(author string) ([]string, error) {
	return db.ContactsFrom(r.conn, author, types.ContactBlock)
}

// FollowedBy returns the authors publicly following one author.
func (r *Resolver) FollowedBy(author string) ([]string, error) {
	return db.ContactsTo(r.conn, author, types.ContactFollow)
}

// BlockedBy returns the authors publicly blocking one author.
func (r *Resolver) BlockedBy(author string) ([]string, error) {
	return db.ContactsTo(r.conn, author, types.ContactBlock)
}

// Likes returns the live likes on a post.
func (r *Resolver) Likes(postID string) ([]types.Like, error) {
	return db.LikesForPost(r.conn, postID)
}

// Forks returns the posts forking off a post.
func (r *Resolver) Forks(postID string) ([]types.Post, error) {
	return db.Forks(r.conn, postID)
}

// References returns the posts whose payload links to an id,
// regardless of thread membership.
func (r *Resolver) References(id string) ([]types.Post, error) {
	return db.References(r.conn, id)
}
