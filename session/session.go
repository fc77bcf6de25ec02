// Package session ties the grammar IR, lexer, EPN driver and forest
// packages together behind spec §6's external interface:
// open/parse/cancel/close. A Session owns exactly the per-session
// state spec §5 calls for (source text, lexer memo, driver memo/BSR
// set) — the grammar IR it was opened against stays read-only and is
// never copied.
//
// Grounded on ava12-llx/parser/parser.go's Parser/ParseContext split:
// Parser there is the compiled, reusable grammar; ParseContext is the
// mutable state of one parse run. grammar.Grammar plays Parser's role
// here; Session plays ParseContext's.
package session

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aetherlang/aether"
	"github.com/aetherlang/aether/bsr"
	"github.com/aetherlang/aether/condition"
	"github.com/aetherlang/aether/forest"
	"github.com/aetherlang/aether/grammar"
	"github.com/aetherlang/aether/lexer"
	"github.com/aetherlang/aether/parser"
	"github.com/aetherlang/aether/source"
)

// Error codes used by this package.
const (
	// ErrClosed indicates an operation attempted on a session that has
	// already been closed.
	ErrClosed = aether.SessionErrors + iota
	// ErrNoStartSymbol indicates the grammar a session was opened
	// against has no start non-terminal — a grammar.Finish bug, since
	// Finish is supposed to reject that at load time, but checked here
	// too rather than trusted blindly.
	ErrNoStartSymbol
)

// Session is one parse attempt against a read-only grammar (spec §5:
// "a parse session is not re-entrant"; "per-session tables ...
// exclusively owned by the session"). Parallel sessions over the same
// Grammar are safe because they touch nothing but their own fields.
type Session struct {
	ID uuid.UUID

	g      *grammar.Grammar
	text   *source.Text
	lx     *lexer.Lexer
	driver *parser.Driver
	log    zerolog.Logger

	closed bool
}

// Open wires a read-only grammar, a source text and a condition
// assignment into a new session (spec §6 "open(grammar_ir, source, σ)
// -> session"). g must already have been through grammar.Desugar and
// Grammar.Finish — every caller in this module gets that for free,
// since langdef.Load does both before returning.
func Open(g *grammar.Grammar, filename string, src []byte, σ condition.Assignment, log zerolog.Logger) *Session {
	id := uuid.New()
	text := source.NewText(filename, src)
	lx := lexer.New(g, text, σ)
	d := parser.New(g, lx, σ)

	log = log.With().Str("session", id.String()).Logger()
	log.Debug().Str("source", filename).Int("bytes", len(src)).Msg("session opened")

	return &Session{ID: id, g: g, text: text, lx: lx, driver: d, log: log}
}

// Result is spec §6's "parse(session) -> {ok: AST | CST | forest, or
// err: {position, expected_terminals[]}, bsr: set}" made concrete.
// OK is set on success and Cancelled on cancellation; when neither is
// set, ErrPosition and ErrExpected describe the failed derivation
// (farthest position reached, and the names of the terminals
// attempted there). BSR is always populated, even on
// failure or cancellation, since spec §5 promises a partial BSR set
// either way.
type Result struct {
	OK        bool
	Cancelled bool

	AST *forest.AST
	CST *forest.Node
	BSR *bsr.Set

	ErrPosition int
	ErrExpected []string
}

// Parse runs the EPN driver to completion (or cancellation) and, on a
// successful derivation, materializes the CST and AST from the chosen
// BSR root (spec §6's parse contract; §4.5's CST/AST construction).
func (s *Session) Parse() (*Result, error) {
	if s.closed {
		return nil, aether.FormatError(ErrClosed, "session: parse called on closed session %s", s.ID)
	}

	if _, ok := s.g.Start(); !ok {
		return nil, aether.FormatError(ErrNoStartSymbol, "session: grammar has no start non-terminal")
	}

	res := s.driver.Parse()

	if res.Cancelled {
		s.log.Info().Msg("parse cancelled")
		return &Result{Cancelled: true, BSR: res.BSR}, nil
	}

	if !res.OK {
		expected := make([]string, len(res.Err.Expected))
		for i, id := range res.Err.Expected {
			expected[i] = s.g.Terminals[id].Name
		}

		s.log.Warn().Int("position", res.Err.Position).Strs("expected", expected).Msg("no derivation")
		return &Result{BSR: res.BSR, ErrPosition: res.Err.Position, ErrExpected: expected}, nil
	}

	cst, err := forest.Build(s.g, res.BSR, res.Root)
	if err != nil {
		return nil, err
	}

	ast := forest.BuildAST(s.g, cst)

	s.log.Debug().Int("end", res.Root.End).Msg("parse succeeded")
	return &Result{OK: true, AST: ast, CST: cst, BSR: res.BSR}, nil
}

// Cancel requests cooperative cancellation (spec §5: "checked at each
// U-pop"). Safe to call from a different goroutine than the one
// running Parse; safe to call more than once or after Parse returns.
func (s *Session) Cancel() {
	s.log.Info().Msg("cancel requested")
	s.driver.Cancel()
}

// Close releases the session (spec §5: "all released together with
// the session"). The session's tables are ordinary Go values owned by
// no one else, so Close has nothing to free beyond marking the
// session unusable; it exists so callers have a single place to
// release a session and so double-use after release is caught instead
// of silently reusing stale per-session state.
func (s *Session) Close() {
	if s.closed {
		return
	}

	s.closed = true
	s.log.Debug().Msg("session closed")
}
