// Package engine wires the offset log, the index database, the
// indexer, and the query resolver into one handle.
package engine

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/adamavenir/weft/internal/db"
	"github.com/adamavenir/weft/internal/flume"
	"github.com/adamavenir/weft/internal/indexer"
	"github.com/adamavenir/weft/internal/query"
	"github.com/adamavenir/weft/internal/types"
)

// Engine owns the index connection for one database file. The offset
// log remains external: the engine only ever reads it.
type Engine struct {
	conn     *sql.DB
	log      flume.Log
	logger   *slog.Logger
	indexer  *indexer.Indexer
	resolver *query.Resolver
}

// Open opens the index at dbPath over the given log. An index whose
// persisted state fails verification surfaces types.ErrIndexCorrupt;
// recover with Rebuild on a fresh handle via OpenReset.
func Open(dbPath string, log flume.Log, logger *slog.Logger) (*Engine, error) {
	if logger == nil {
		logger = slog.Default()
	}
	conn, err := db.Open(dbPath)
	if err != nil {
		return nil, err
	}
	return newEngine(conn, log, logger), nil
}

// OpenReset opens the index at dbPath and unconditionally drops all
// derived state, leaving an empty schema at cursor zero. The recovery
// path for types.ErrIndexCorrupt.
func OpenReset(dbPath string, log flume.Log, logger *slog.Logger) (*Engine, error) {
	if logger == nil {
		logger = slog.Default()
	}
	conn, err := db.OpenUnchecked(dbPath)
	if err != nil {
		return nil, err
	}
	if err := db.ResetIndex(conn); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return newEngine(conn, log, logger), nil
}

func newEngine(conn *sql.DB, log flume.Log, logger *slog.Logger) *Engine {
	return &Engine{
		conn:     conn,
		log:      log,
		logger:   logger,
		indexer:  indexer.New(conn, log, logger),
		resolver: query.New(conn, logger),
	}
}

// Close releases the index connection.
func (e *Engine) Close() error {
	return e.conn.Close()
}

// Resolver returns the read side.
func (e *Engine) Resolver() *query.Resolver {
	return e.resolver
}

// Process indexes one chunk and invalidates memoized query state when
// anything landed.
func (e *Engine) Process(ctx context.Context, chunkSize int) (types.ProcessResult, error) {
	result, err := e.indexer.Process(ctx, chunkSize)
	if err != nil {
		return result, err
	}
	if result.ChunkSize > 0 {
		e.resolver.FlushCache()
	}
	return result, nil
}

// CatchUp processes chunks until the index has absorbed the whole log.
// A concurrent Process surfaces as types.ErrBusy, same as a single
// chunk would.
func (e *Engine) CatchUp(ctx context.Context, chunkSize int) (types.ProcessResult, error) {
	last := types.ProcessResult{}
	for {
		result, err := e.Process(ctx, chunkSize)
		if err != nil {
			return last, err
		}
		if result.ChunkSize == 0 {
			if last.LatestSequence == nil {
				last.LatestSequence = result.LatestSequence
			}
			return last, nil
		}
		last.ChunkSize += result.ChunkSize
		last.LatestSequence = result.LatestSequence
		if err := ctx.Err(); err != nil {
			return last, err
		}
	}
}

// Rebuild drops every derived table and reindexes the full log.
func (e *Engine) Rebuild(ctx context.Context, chunkSize int) (types.ProcessResult, error) {
	if err := db.ResetIndex(e.conn); err != nil {
		return types.ProcessResult{}, err
	}
	e.resolver.FlushCache()
	e.logger.Info("index reset, reindexing from start")
	return e.CatchUp(ctx, chunkSize)
}

// IsCorrupt reports whether err calls for a full rebuild.
func IsCorrupt(err error) bool {
	return errors.Is(err, types.ErrIndexCorrupt)
}
