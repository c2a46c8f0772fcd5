package flume

import (
	"os"
	"path/filepath"
	"testing"
)

func openTestLog(t *testing.T) *OffsetLog {
	t.Helper()
	log, err := OpenOffsetLog(filepath.Join(t.TempDir(), "test.log"))
	if err != nil {
		t.Fatalf("open log: %v", err)
	}
	return log
}

func TestAppendAssignsSequences(t *testing.T) {
	log := openTestLog(t)

	for i, raw := range []string{`{"a":1}`, `{"a":2}`, `{"a":3}`} {
		seq, err := log.Append([]byte(raw))
		if err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
		if seq != int64(i) {
			t.Fatalf("expected seq %d, got %d", i, seq)
		}
	}

	seq, err := log.Sequence()
	if err != nil {
		t.Fatalf("sequence: %v", err)
	}
	if seq != 2 {
		t.Fatalf("expected sequence 2, got %d", seq)
	}
}

func TestAppendRejectsNewlines(t *testing.T) {
	log := openTestLog(t)
	if _, err := log.Append([]byte("a\nb")); err == nil {
		t.Fatal("expected error for entry with newline")
	}
}

func TestReadFromWindow(t *testing.T) {
	log := openTestLog(t)
	for _, raw := range []string{`{"n":0}`, `{"n":1}`, `{"n":2}`, `{"n":3}`} {
		if _, err := log.Append([]byte(raw)); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	entries, err := log.ReadFrom(0, 2)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Seq != 1 || entries[1].Seq != 2 {
		t.Fatalf("unexpected seqs: %d, %d", entries[0].Seq, entries[1].Seq)
	}
	if string(entries[0].Raw) != `{"n":1}` {
		t.Fatalf("unexpected raw: %s", entries[0].Raw)
	}

	entries, err = log.ReadFrom(3, 10)
	if err != nil {
		t.Fatalf("read past end: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no entries, got %d", len(entries))
	}
}

func TestReadFromMissingFile(t *testing.T) {
	log, err := OpenOffsetLog(filepath.Join(t.TempDir(), "absent.log"))
	if err != nil {
		t.Fatalf("open log: %v", err)
	}

	entries, err := log.ReadFrom(-1, 10)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no entries, got %d", len(entries))
	}

	seq, err := log.Sequence()
	if err != nil {
		t.Fatalf("sequence: %v", err)
	}
	if seq != -1 {
		t.Fatalf("expected sequence -1, got %d", seq)
	}
}

func TestBlankLinesDoNotCountAsEntries(t *testing.T) {
	log := openTestLog(t)
	if err := os.WriteFile(log.Path(), []byte("{\"n\":0}\n\n{\"n\":1}\n"), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}

	entries, err := log.ReadFrom(-1, 10)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[1].Seq != 1 {
		t.Fatalf("expected seq 1, got %d", entries[1].Seq)
	}
}
