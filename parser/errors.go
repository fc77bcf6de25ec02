package parser

import (
	"sort"
	"strconv"
	"strings"

	"github.com/aetherlang/aether"
	"github.com/aetherlang/aether/grammar"
)

// Error codes used by this package.
const (
	// ErrNoDerivation indicates no BSR element spans (start_slot, 0, n)
	// at the end of a parse attempt (spec §7 SyntacticError).
	ErrNoDerivation = aether.SyntacticErrors + iota
)

// NoDerivationError carries the farthest position any descent reached
// and the terminals that were admitted there, per spec §4.4's failure
// semantics and §7's SyntacticError.
type NoDerivationError struct {
	Err      *aether.Error
	Position int
	Expected []grammar.TermID
}

func newNoDerivationError(pos int, expected []grammar.TermID, names func(grammar.TermID) string) *NoDerivationError {
	sorted := append([]grammar.TermID(nil), expected...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	parts := make([]string, len(sorted))
	for i, id := range sorted {
		parts[i] = names(id)
	}

	msg := "could not derive input from any production rule at position " + strconv.Itoa(pos)
	if len(parts) > 0 {
		msg += "; expected one of: " + strings.Join(parts, ", ")
	}

	return &NoDerivationError{
		Err:      aether.FormatError(ErrNoDerivation, msg),
		Position: pos,
		Expected: sorted,
	}
}

// Error implements the error interface.
func (e *NoDerivationError) Error() string {
	return e.Err.Error()
}
