// Package flume reads the append-only offset log that is the source of
// truth for every index weft maintains. The log itself is owned by an
// external collaborator; weft only ever reads it, except through the
// explicit Append used by tooling and tests.
package flume

// Entry is one raw log record at a fixed offset.
type Entry struct {
	Seq int64
	Raw []byte
}

// Log is the read contract the indexer consumes.
type Log interface {
	// ReadFrom returns up to limit entries with sequence greater than
	// after, in sequence order. after = -1 reads from the start.
	ReadFrom(after int64, limit int) ([]Entry, error)

	// Sequence returns the latest sequence in the log, -1 when empty.
	Sequence() (int64, error)
}
