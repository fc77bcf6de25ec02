// Package lexer implements on-demand, memoized lexical analysis (spec
// §4.3): materializing the *set* of tokens starting at a requested
// position, skipping ignorable terminals, applying longest-match and
// precedence disambiguation.
package lexer

import (
	"github.com/aetherlang/aether"
	"github.com/aetherlang/aether/condition"
	"github.com/aetherlang/aether/grammar"
	"github.com/aetherlang/aether/nfa"
	"github.com/aetherlang/aether/source"
)

// Error codes used by this package.
const (
	// ErrNoTerminal indicates no admitted terminal accepts at a
	// position (spec §7 LexicalError, before promotion to a
	// SyntacticError by the caller).
	ErrNoTerminal = aether.LexicalErrors + iota
)

// Lexer performs on-demand tokenization of one source Text against a
// fixed Grammar and condition assignment, for the lifetime of one
// parse session. Grounded on ava12-llx/lexer/lexer.go's on-demand
// Next/NextOf shape, generalized from a single compiled regexp.Regexp
// to the grammar IR's per-terminal NFA table, and re-armed with the
// ignorable-skip-loop and transitive precedence-closure steps from
// spec §4.3 that ava12-llx's simpler longest-match-only lexer has no
// equivalent of.
type Lexer struct {
	g    *grammar.Grammar
	text *source.Text
	σ    condition.Assignment

	admitted   []grammar.TermID // terminals whose static condition holds under σ
	ignorable  map[grammar.TermID]bool

	memo map[int]memoEntry
	ev   *condition.Evaluator
}

type memoEntry struct {
	tokens []Token
	err    *aether.Error
}

// New builds a Lexer over text for one fixed condition assignment.
// Grammar.Finish must have already succeeded on g.
func New(g *grammar.Grammar, text *source.Text, σ condition.Assignment) *Lexer {
	l := &Lexer{
		g:         g,
		text:      text,
		σ:         σ,
		ignorable: map[grammar.TermID]bool{},
		memo:      map[int]memoEntry{},
		ev:        condition.NewEvaluator(),
	}

	for i, t := range g.Terminals {
		if t.Condition == nil || l.ev.Eval(i, t.Condition, σ) {
			id := grammar.TermID(i)
			l.admitted = append(l.admitted, id)
			if t.Ignorable {
				l.ignorable[id] = true
			}
		}
	}

	return l
}

// Lex implements spec §4.3's lex(position, σ) -> set<Token> contract.
// position is advanced past any run of ignorable terminals first; the
// returned tokens all share that (possibly advanced) start. Results
// are memoized by the post-skip position, per spec §4.3's "cache
// entries are immutable once filled".
func (l *Lexer) Lex(position int) ([]Token, error) {
	position = l.skipIgnorable(position)

	if e, ok := l.memo[position]; ok {
		if e.err != nil {
			return nil, e.err
		}

		return e.tokens, nil
	}

	tokens, err := l.lexAt(position)
	l.memo[position] = memoEntry{tokens: tokens, err: asAetherErr(err)}
	return tokens, err
}

func asAetherErr(err error) *aether.Error {
	if err == nil {
		return nil
	}

	if e, ok := err.(*aether.Error); ok {
		return e
	}

	return aether.FormatError(ErrNoTerminal, err.Error())
}

// skipIgnorable implements spec §4.3 step 1: repeatedly run every
// admitted ignorable terminal's NFA at the current position, advance
// by the longest match, and stop once nothing advances.
// SkipIgnorable advances position past any run of admitted ignorable
// terminals, without looking up or caching a token set. The driver
// uses this to test whether a candidate end position reaches the true
// end of input once trailing whitespace/comments are accounted for
// (spec §4.4's "no BSR element with (start_slot, 0, n)", where n is
// the end of input after any trailing ignorables).
func (l *Lexer) SkipIgnorable(position int) int {
	return l.skipIgnorable(position)
}

// Len returns the length of the lexer's source text in bytes.
func (l *Lexer) Len() int {
	return l.text.Len()
}

func (l *Lexer) skipIgnorable(position int) int {
	for {
		best := -1

		for _, id := range l.admitted {
			if !l.ignorable[id] {
				continue
			}

			t := &l.g.Terminals[id]
			matched, end := nfa.Run(t.NFA, l.text.Content(), position)
			if matched && end > best {
				best = end
			}
		}

		if best <= position {
			return position
		}

		position = best
	}
}

// lexAt implements spec §4.3 steps 2-4 at a fixed, already-skipped
// position.
func (l *Lexer) lexAt(position int) ([]Token, error) {
	if position >= l.text.Len() {
		return nil, nil
	}

	type hit struct {
		id  grammar.TermID
		end int
	}

	var hits []hit
	maxEnd := -1

	for _, id := range l.admitted {
		if l.ignorable[id] {
			continue
		}

		t := &l.g.Terminals[id]
		matched, end := nfa.Run(t.NFA, l.text.Content(), position)
		if !matched {
			continue
		}

		hits = append(hits, hit{id, end})
		if end > maxEnd {
			maxEnd = end
		}
	}

	if len(hits) == 0 {
		pos := l.text.PositionAt(position)
		return nil, aether.FormatErrorPos(pos, ErrNoTerminal, "no terminal admitted at position %d", position)
	}

	// Step 3: longest-match filter.
	survivors := make([]grammar.TermID, 0, len(hits))
	for _, h := range hits {
		if h.end == maxEnd {
			survivors = append(survivors, h.id)
		}
	}

	// Step 4: precedence prune over the closure computed at grammar
	// load (grammar.Grammar.Finish).
	survivors = l.g.PrunePrecedence(survivors)

	tokens := make([]Token, len(survivors))
	for i, id := range survivors {
		tokens[i] = NewToken(int(id), position, maxEnd, l.text)
	}

	return tokens, nil
}
