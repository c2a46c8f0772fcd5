package db

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/adamavenir/weft/internal/types"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		_ = conn.Close()
	})
	return conn
}

func requireSchema(t *testing.T, conn *sql.DB) {
	t.Helper()
	if err := InitSchema(conn); err != nil {
		t.Fatalf("init schema: %v", err)
	}
}

func strPtr(value string) *string {
	return &value
}

func insertTestPost(t *testing.T, conn *sql.DB, post types.Post) {
	t.Helper()
	if err := EnsureAuthor(conn, post.Author); err != nil {
		t.Fatalf("ensure author: %v", err)
	}
	if err := InsertPost(conn, post); err != nil {
		t.Fatalf("insert post %s: %v", post.ID, err)
	}
}
