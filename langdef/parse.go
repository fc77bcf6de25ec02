package langdef

import (
	"github.com/aetherlang/aether"
	"github.com/aetherlang/aether/forest"
	"github.com/aetherlang/aether/lexer"
	"github.com/aetherlang/aether/parser"
	"github.com/aetherlang/aether/source"
)

// Error codes used by this package.
const (
	// ErrCancelled indicates a Parse call's cooperative cancellation
	// fired before a result was reached.
	ErrCancelled = aether.LangdefErrors + iota
	// ErrMalformed indicates a parsed document's AST doesn't have the
	// shape semantic.go expects — a bootstrap-grammar/semantic-pass
	// mismatch, never something a well-formed document can trigger.
	ErrMalformed
	// ErrUnknownSpecifier indicates a production specifier this engine
	// doesn't recognize (anything other than +Name, -Name, ignore or
	// start).
	ErrUnknownSpecifier
	// ErrUnknownSubCondition indicates an @tag other than lexical or
	// syntactic.
	ErrUnknownSubCondition
	// ErrUnknownReference indicates an identifier referencing a
	// production never declared anywhere in the document.
	ErrUnknownReference
	// ErrBadPattern indicates a terminal's regex body, or the regex
	// synthesized for an inline quoted literal, failed to compile.
	ErrBadPattern
)

// Parse runs a document through the bootstrap grammar and returns its
// materialized AST (spec §6's meta-language surface, with the
// backtick deviation documented on Bootstrap). The bootstrap grammar
// has no conditions of its own, so σ is always the empty assignment.
func Parse(content []byte, filename string) (*forest.AST, *source.Text, error) {
	g := Bootstrap()
	text := source.NewText(filename, content)
	lx := lexer.New(g, text, 0)
	d := parser.New(g, lx, 0)

	res := d.Parse()
	if res.Cancelled {
		return nil, text, aether.FormatError(ErrCancelled, "langdef: parse cancelled")
	}

	if !res.OK {
		return nil, text, res.Err
	}

	cst, err := forest.Build(g, res.BSR, res.Root)
	if err != nil {
		return nil, text, err
	}

	return forest.BuildAST(g, cst), text, nil
}
