package flume

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
)

// OffsetLog is a file-backed Log: one JSON envelope per line, the line
// index is the sequence. The handle is stateless; every read scans
// from the file so concurrent appenders are always visible.
type OffsetLog struct {
	path string
}

// OpenOffsetLog opens (or lazily creates) the log at path.
func OpenOffsetLog(path string) (*OffsetLog, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return &OffsetLog{path: path}, nil
}

// Path returns the backing file path.
func (l *OffsetLog) Path() string {
	return l.path
}

// Append writes one raw envelope and returns its sequence.
func (l *OffsetLog) Append(raw []byte) (int64, error) {
	if bytes.ContainsRune(raw, '\n') {
		return 0, fmt.Errorf("flume: entry must not contain newlines")
	}

	last, err := l.Sequence()
	if err != nil {
		return 0, err
	}

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	if _, err := f.Write(append(append([]byte{}, raw...), '\n')); err != nil {
		return 0, err
	}
	return last + 1, nil
}

// ReadFrom implements Log.
func (l *OffsetLog) ReadFrom(after int64, limit int) ([]Entry, error) {
	if limit <= 0 {
		return nil, nil
	}

	f, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 10*1024*1024)

	var entries []Entry
	seq := int64(-1)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		seq++
		if seq <= after {
			continue
		}
		entries = append(entries, Entry{Seq: seq, Raw: append([]byte{}, line...)})
		if len(entries) == limit {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// Sequence implements Log.
func (l *OffsetLog) Sequence() (int64, error) {
	f, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return -1, nil
		}
		return -1, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 10*1024*1024)

	seq := int64(-1)
	for scanner.Scan() {
		if len(bytes.TrimSpace(scanner.Bytes())) == 0 {
			continue
		}
		seq++
	}
	if err := scanner.Err(); err != nil {
		return -1, err
	}
	return seq, nil
}

var _ Log = (*OffsetLog)(nil)
