package forest

import "github.com/aetherlang/aether"

// Error codes used by this package.
const (
	// ErrRootNotCompleted indicates Build was asked to materialize a
	// key that is not a completed non-terminal span.
	ErrRootNotCompleted = aether.ForestErrors + iota
	// ErrNoDerivation indicates the BSR set has no element at all for
	// a span Build needs to walk — a caller error (an un-parsed or
	// mismatched Set), never something a valid parse can produce.
	ErrNoDerivation
)
