package command

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/adamavenir/weft/internal/flume"
	"github.com/adamavenir/weft/internal/types"
)

func writeTestLog(t *testing.T, contents ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.log")
	log, err := flume.OpenOffsetLog(path)
	if err != nil {
		t.Fatalf("open log: %v", err)
	}
	for i, content := range contents {
		raw := fmt.Sprintf(`{"value":{"author":"@alice","timestamp":%d,"content":%s},"timestamp":%d}`, i, content, i)
		if _, err := log.Append([]byte(raw)); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	return path
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd("test")
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), err
}

func TestProcessAndStatus(t *testing.T) {
	logPath := writeTestLog(t,
		`{"type":"post","text":"one"}`,
		`{"type":"post","text":"two"}`,
	)

	out, err := runCommand(t, "--log", logPath, "process", "--all")
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if !strings.Contains(out, "Processed 2 entries") {
		t.Fatalf("unexpected output: %s", out)
	}

	out, err = runCommand(t, "--log", logPath, "status")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !strings.Contains(out, "Cursor: 1") || !strings.Contains(out, "Pending entries: 0") {
		t.Fatalf("unexpected status: %s", out)
	}
}

func TestPostsJSONOutput(t *testing.T) {
	logPath := writeTestLog(t,
		`{"type":"post","text":"hello"}`,
		`{"type":"post","text":"world"}`,
	)
	if _, err := runCommand(t, "--log", logPath, "process", "--all"); err != nil {
		t.Fatalf("process: %v", err)
	}

	out, err := runCommand(t, "--log", logPath, "--json", "posts", "--first", "1")
	if err != nil {
		t.Fatalf("posts: %v", err)
	}

	var connection types.PostConnection
	if err := json.Unmarshal([]byte(out), &connection); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if len(connection.Edges) != 1 || connection.TotalCount != 2 {
		t.Fatalf("unexpected connection: %+v", connection)
	}
	if !connection.PageInfo.HasNextPage {
		t.Fatal("expected a next page")
	}
}

func TestRebuildCommand(t *testing.T) {
	logPath := writeTestLog(t, `{"type":"post","text":"one"}`)
	if _, err := runCommand(t, "--log", logPath, "process", "--all"); err != nil {
		t.Fatalf("process: %v", err)
	}

	out, err := runCommand(t, "--log", logPath, "rebuild")
	if err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	if !strings.Contains(out, "Reindexed 1 entries") {
		t.Fatalf("unexpected output: %s", out)
	}
}

func TestThreadCommand(t *testing.T) {
	logPath := writeTestLog(t,
		`{"type":"post","text":"the root"}`,
	)
	if _, err := runCommand(t, "--log", logPath, "process", "--all"); err != nil {
		t.Fatalf("process: %v", err)
	}

	out, err := runCommand(t, "--log", logPath, "--json", "threads")
	if err != nil {
		t.Fatalf("threads: %v", err)
	}
	var connection types.ThreadConnection
	if err := json.Unmarshal([]byte(out), &connection); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if len(connection.Edges) != 1 {
		t.Fatalf("expected one thread, got %+v", connection)
	}

	rootID := connection.Edges[0].Node.Root.ID
	out, err = runCommand(t, "--log", logPath, "--json", "thread", rootID)
	if err != nil {
		t.Fatalf("thread: %v", err)
	}
	var thread types.Thread
	if err := json.Unmarshal([]byte(out), &thread); err != nil {
		t.Fatalf("decode thread: %v", err)
	}
	if thread.Root.ID != rootID {
		t.Fatalf("unexpected root: %s", thread.Root.ID)
	}
}

func TestTruncateKeepsRuneBoundaries(t *testing.T) {
	long := strings.Repeat("héllo wörld ", 20)
	for _, max := range []int{80, 120} {
		got := truncate(long, max)
		if !utf8.ValidString(got) {
			t.Fatalf("truncate(%d) split a rune: %q", max, got)
		}
		if n := utf8.RuneCountInString(got); n != max {
			t.Fatalf("truncate(%d) kept %d runes", max, n)
		}
		if !strings.HasSuffix(got, "...") {
			t.Fatalf("expected ellipsis, got %q", got)
		}
	}

	if got := truncate("short", 80); got != "short" {
		t.Fatalf("short text must pass through, got %q", got)
	}
}

func TestDefaultDBPath(t *testing.T) {
	cases := map[string]string{
		"weft.log":      "weft.db",
		"feed.jsonl":    "feed.db",
		"noext":         "noext.db",
		"dir.d/noext":   "dir.d/noext.db",
		"dir.d/log.txt": "dir.d/log.db",
	}
	for in, want := range cases {
		if got := defaultDBPath(in); got != want {
			t.Fatalf("defaultDBPath(%q) = %q, want %q", in, got, want)
		}
	}
}
