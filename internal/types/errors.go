package types

import "errors"

var (
	// ErrNotFound reports an id-based lookup with no matching entity.
	ErrNotFound = errors.New("not found")

	// ErrBusy reports a Process call that began while another was in
	// flight. Callers should retry later.
	ErrBusy = errors.New("indexer busy")

	// ErrValidation reports caller input that must be corrected, such
	// as paginating forward and backward at once.
	ErrValidation = errors.New("invalid query input")

	// ErrUnsupportedOrdering reports a causal ordering request at a
	// scope wider than a single thread.
	ErrUnsupportedOrdering = errors.New("causal ordering is only defined within a single thread")

	// ErrIndexCorrupt reports persisted index state that failed its
	// consistency check on load. Recovery requires a full reindex.
	ErrIndexCorrupt = errors.New("index state is corrupt; full reindex required")
)
