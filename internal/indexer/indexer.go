// Package indexer consumes the offset log in caller-controlled chunks
// and maintains the derived index tables. It is the only component
// that writes shared state.
package indexer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/adamavenir/weft/internal/codec"
	"github.com/adamavenir/weft/internal/core"
	"github.com/adamavenir/weft/internal/db"
	"github.com/adamavenir/weft/internal/flume"
	"github.com/adamavenir/weft/internal/types"
)

// DefaultChunkSize bounds one Process call when the caller does not
// choose a size.
const DefaultChunkSize = 100

// Indexer applies log entries to the index tables. Not reentrant: a
// Process call that begins while another is in flight fails with
// types.ErrBusy.
type Indexer struct {
	conn   *sql.DB
	log    flume.Log
	logger *slog.Logger

	mu sync.Mutex
}

// New returns an Indexer over the given index connection and log.
func New(conn *sql.DB, log flume.Log, logger *slog.Logger) *Indexer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Indexer{conn: conn, log: log, logger: logger}
}

// Process reads up to chunkSize entries past the durable cursor,
// applies them, and advances the cursor in one transaction, so
// readers observe either the pre-chunk or the post-chunk state and a
// crash mid-chunk never double-applies an entry. Near the end of the
// log it returns the remaining count, which may be zero.
func (ix *Indexer) Process(ctx context.Context, chunkSize int) (types.ProcessResult, error) {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	if !ix.mu.TryLock() {
		return types.ProcessResult{}, types.ErrBusy
	}
	defer ix.mu.Unlock()

	cursor, err := db.GetCursor(ix.conn)
	if err != nil {
		return types.ProcessResult{}, err
	}
	after := int64(-1)
	if cursor != nil {
		after = *cursor
	}

	entries, err := ix.log.ReadFrom(after, chunkSize)
	if err != nil {
		return types.ProcessResult{}, err
	}
	if len(entries) == 0 {
		return types.ProcessResult{ChunkSize: 0, LatestSequence: cursor}, nil
	}

	tx, err := ix.conn.BeginTx(ctx, nil)
	if err != nil {
		return types.ProcessResult{}, err
	}

	decodeFailures := 0
	for _, entry := range entries {
		msg, err := codec.Decode(entry)
		if err == nil {
			err = ix.apply(tx, msg)
		}
		if err != nil {
			var decodeErr *codec.DecodeError
			if !errors.As(err, &decodeErr) {
				_ = tx.Rollback()
				return types.ProcessResult{}, err
			}
			// Malformed entries are recorded and skipped; the cursor
			// still advances past them.
			decodeFailures++
			ix.logger.Warn("skipping undecodable entry", "seq", entry.Seq, "error", decodeErr.Err)
			if err := db.InsertMessage(tx, invalidMessage(entry)); err != nil {
				_ = tx.Rollback()
				return types.ProcessResult{}, err
			}
		}
	}

	last := entries[len(entries)-1].Seq
	if err := db.SetCursor(tx, last); err != nil {
		_ = tx.Rollback()
		return types.ProcessResult{}, err
	}
	if err := tx.Commit(); err != nil {
		return types.ProcessResult{}, err
	}

	ix.logger.Info("processed chunk",
		"entries", len(entries),
		"decode_failures", decodeFailures,
		"latest_sequence", last,
	)
	return types.ProcessResult{ChunkSize: len(entries), LatestSequence: &last}, nil
}

// apply routes one decoded message into the index tables. Payload
// problems come back as *codec.DecodeError so the caller can record
// and skip; anything else aborts the chunk.
func (ix *Indexer) apply(tx db.DBTX, msg types.Message) error {
	if err := db.InsertMessage(tx, msg); err != nil {
		return err
	}
	if err := db.EnsureAuthor(tx, msg.Author); err != nil {
		return err
	}

	switch msg.Type {
	case types.MessageTypePost:
		return ix.applyPost(tx, msg)
	case types.MessageTypeContact:
		content, err := codec.ParseContact(msg)
		if err != nil {
			return err
		}
		return db.ApplyContact(tx, msg.Author, content.Contact, content.State(), msg.Private, msg.Seq)
	case types.MessageTypeAbout:
		return ix.applyAbout(tx, msg)
	case types.MessageTypeVote:
		content, err := codec.ParseVote(msg)
		if err != nil {
			return err
		}
		return db.ApplyVote(tx, msg.Author, content.Vote.Link, content.Vote.Value, msg.Seq)
	default:
		// Unknown type: the bookkeeping row above is all we keep.
		return nil
	}
}

func (ix *Indexer) applyPost(tx db.DBTX, msg types.Message) error {
	content, err := codec.ParsePost(msg)
	if err != nil {
		return err
	}

	post := types.Post{
		ID:         msg.ID,
		Author:     msg.Author,
		Text:       content.Text,
		AssertedAt: msg.AssertedAt,
		ReceivedAt: msg.ReceivedAt,
		Seq:        msg.Seq,
		RootKey:    content.Root,
		ForkKey:    content.Fork,
		Private:    msg.Private,
	}
	if err := db.InsertPost(tx, post); err != nil {
		return err
	}

	for _, mention := range content.Mentions {
		link := mention.Link
		switch {
		case core.IsAuthorRef(link):
			if err := db.EnsureAuthor(tx, link); err != nil {
				return err
			}
		case core.IsChannelRef(link):
			link = core.ChannelSigil + core.NormalizeChannel(link)
		case !core.IsPostRef(link):
			continue
		}
		if err := db.InsertLink(tx, msg.ID, link); err != nil {
			return err
		}
	}
	if content.Channel != nil && *content.Channel != "" {
		channel := core.ChannelSigil + core.NormalizeChannel(*content.Channel)
		if err := db.InsertLink(tx, msg.ID, channel); err != nil {
			return err
		}
	}
	return nil
}

func (ix *Indexer) applyAbout(tx db.DBTX, msg types.Message) error {
	content, err := codec.ParseAbout(msg)
	if err != nil {
		return err
	}
	// Only self-describing abouts update profile fields; anyone else's
	// about still creates the row.
	if content.About != msg.Author {
		return db.EnsureAuthor(tx, content.About)
	}
	return db.ApplyAbout(tx, content.About, content.Name, content.Description, content.Image, msg.Seq)
}

// invalidMessage builds the bookkeeping row for an entry that failed
// to decode. The id is keyed on the sequence, not the content, so
// repeated garbage lines each keep their row.
func invalidMessage(entry flume.Entry) types.Message {
	return types.Message{
		ID:   fmt.Sprintf("invalid:%d", entry.Seq),
		Seq:  entry.Seq,
		Type: types.MessageTypeInvalid,
		Raw:  entry.Raw,
	}
}
