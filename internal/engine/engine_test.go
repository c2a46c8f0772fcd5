package engine

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/neilotoole/slogt"

	"github.com/adamavenir/weft/internal/flume"
	"github.com/adamavenir/weft/internal/types"
)

func writeLog(t *testing.T, dir string, contents ...string) *flume.OffsetLog {
	t.Helper()
	log, err := flume.OpenOffsetLog(filepath.Join(dir, "test.log"))
	if err != nil {
		t.Fatalf("open log: %v", err)
	}
	for i, content := range contents {
		raw := fmt.Sprintf(`{"value":{"author":"@a","timestamp":%d,"content":%s},"timestamp":%d}`, i, content, i)
		if _, err := log.Append([]byte(raw)); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	return log
}

func TestCatchUpProcessesWholeLog(t *testing.T) {
	dir := t.TempDir()
	log := writeLog(t, dir,
		`{"type":"post","text":"one"}`,
		`{"type":"post","text":"two"}`,
		`{"type":"post","text":"three"}`,
	)

	eng, err := Open(filepath.Join(dir, "test.db"), log, slogt.New(t))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer eng.Close()

	result, err := eng.CatchUp(context.Background(), 2)
	if err != nil {
		t.Fatalf("catch up: %v", err)
	}
	if result.ChunkSize != 3 {
		t.Fatalf("expected 3 entries processed, got %d", result.ChunkSize)
	}
	if result.LatestSequence == nil || *result.LatestSequence != 2 {
		t.Fatalf("expected cursor 2, got %v", result.LatestSequence)
	}

	connection, err := eng.Resolver().Posts(types.PostFilter{}, types.OrderReceived, types.Page{})
	if err != nil {
		t.Fatalf("posts: %v", err)
	}
	if connection.TotalCount != 3 {
		t.Fatalf("expected 3 posts, got %d", connection.TotalCount)
	}
}

func TestProcessFlushesFollowCache(t *testing.T) {
	dir := t.TempDir()
	log := writeLog(t, dir, `{"type":"post","text":"root by bob"}`)

	eng, err := Open(filepath.Join(dir, "test.db"), log, slogt.New(t))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer eng.Close()

	if _, err := eng.CatchUp(context.Background(), 0); err != nil {
		t.Fatalf("catch up: %v", err)
	}

	selector := types.ThreadSelector{RootsAuthoredBySomeoneFollowedBy: []string{"@alice"}}
	connection, err := eng.Resolver().Threads(selector, types.OrderReceived, types.Page{})
	if err != nil {
		t.Fatalf("threads: %v", err)
	}
	if len(connection.Edges) != 0 {
		t.Fatal("expected no threads before the follow")
	}

	raw := `{"value":{"author":"@alice","timestamp":9,"content":{"type":"contact","contact":"@a","following":true}},"timestamp":9}`
	if _, err := log.Append([]byte(raw)); err != nil {
		t.Fatalf("append: %v", err)
	}
	if _, err := eng.Process(context.Background(), 0); err != nil {
		t.Fatalf("process: %v", err)
	}

	connection, err = eng.Resolver().Threads(selector, types.OrderReceived, types.Page{})
	if err != nil {
		t.Fatalf("threads: %v", err)
	}
	if len(connection.Edges) != 1 {
		t.Fatalf("expected the follow to take effect, got %d threads", len(connection.Edges))
	}
}

func TestRebuildReindexesFromStart(t *testing.T) {
	dir := t.TempDir()
	log := writeLog(t, dir,
		`{"type":"post","text":"one"}`,
		`{"type":"post","text":"two"}`,
	)

	eng, err := Open(filepath.Join(dir, "test.db"), log, slogt.New(t))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer eng.Close()

	if _, err := eng.CatchUp(context.Background(), 0); err != nil {
		t.Fatalf("catch up: %v", err)
	}

	result, err := eng.Rebuild(context.Background(), 1)
	if err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	if result.ChunkSize != 2 {
		t.Fatalf("expected full reindex of 2 entries, got %d", result.ChunkSize)
	}

	connection, err := eng.Resolver().Posts(types.PostFilter{}, types.OrderReceived, types.Page{})
	if err != nil {
		t.Fatalf("posts: %v", err)
	}
	if connection.TotalCount != 2 {
		t.Fatalf("expected 2 posts after rebuild, got %d", connection.TotalCount)
	}
}

func TestOpenResetDropsDerivedState(t *testing.T) {
	dir := t.TempDir()
	log := writeLog(t, dir, `{"type":"post","text":"one"}`)
	dbPath := filepath.Join(dir, "test.db")

	eng, err := Open(dbPath, log, slogt.New(t))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := eng.CatchUp(context.Background(), 0); err != nil {
		t.Fatalf("catch up: %v", err)
	}
	if err := eng.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	eng, err = OpenReset(dbPath, log, slogt.New(t))
	if err != nil {
		t.Fatalf("open reset: %v", err)
	}
	defer eng.Close()

	cursor, err := eng.Resolver().DBCursor()
	if err != nil {
		t.Fatalf("cursor: %v", err)
	}
	if cursor != nil {
		t.Fatalf("expected empty index after reset, cursor %d", *cursor)
	}
}
