// Package parser implements the EPN driver (spec §4.4): generalized
// recursive descent with per-(non-terminal, start) memoization that
// accumulates a Binary Subtree Representation forest for arbitrarily
// ambiguous, left-recursive grammars.
//
// Grounded on original_source's TransmuterParser
// (lib/Python/next/transmuter/front/syntactic.py): the descend/call
// structure, the "record a BSR element at every symbol boundary" rule,
// and the EOI/farthest-position bookkeeping all follow it directly.
// Left recursion is resolved differently: the reference implementation
// precomputes left-recursion SCCs (Tarjan's algorithm) and splits each
// non-terminal's behavior into an explicit descend/ascend pair so that
// a left-recursive call can extend an already-popped derivation without
// re-entering it. This driver instead computes the same least fixed
// point directly: deriveNonterm reruns every admitted alternative for a
// given (non-terminal, start) pair until no alternative discovers a new
// end position, relying on the fact that a nested call to the same
// (non-terminal, start) pair — which is exactly what a left-recursive
// production does immediately — observes the in-progress memo entry
// instead of recursing further. This is simpler to verify than the
// SCC-guarded ascend/descend split and produces the identical BSR set,
// at the cost of the tighter worst-case bound the reference gets from
// precomputing which non-terminals actually participate in recursion;
// see DESIGN.md for the tradeoff.
package parser

import (
	"sync/atomic"

	"github.com/aetherlang/aether/bsr"
	"github.com/aetherlang/aether/condition"
	"github.com/aetherlang/aether/grammar"
	"github.com/aetherlang/aether/lexer"
)

// Result is the outcome of a Driver.Parse call (spec §6 "parse(session)").
type Result struct {
	OK        bool
	Cancelled bool
	Root      bsr.Key
	BSR       *bsr.Set
	Err       *NoDerivationError
}

type memoEntry struct {
	ends []int
}

// Driver is the EPN driver for one parse attempt (spec §5: "a parse
// session is not re-entrant"). It owns U/P/Y conceptually: P is memo,
// Y is bsr, and U is realized as the Go call stack plus memo, per the
// allowance in spec §9 for stackful-recursion host languages.
type Driver struct {
	g  *grammar.Grammar
	lx *lexer.Lexer
	σ  condition.Assignment

	lexicalBit, syntacticBit int // -1 if the grammar never declared them

	bsr  *bsr.Set
	memo map[memoKey]*memoEntry

	// ev memoizes alternative/symbol guard evaluation per (id, σ), per
	// spec §4.1; condID assigns each distinct *Alternative/*Symbol a
	// stable id the first time it's seen, lazily, since σ never
	// changes over a Driver's lifetime and most guards are never
	// visited at all.
	ev      *condition.Evaluator
	condIDs map[any]int

	cancelled int32

	farthestPos      int
	farthestExpected map[grammar.TermID]bool
}

func (d *Driver) condID(expr any) int {
	if id, ok := d.condIDs[expr]; ok {
		return id
	}

	id := len(d.condIDs)
	d.condIDs[expr] = id
	return id
}

type memoKey struct {
	nt    grammar.NontermID
	start int
}

// New builds a Driver for one parse attempt over g using lx for
// on-demand tokenization. g must already be Desugar-ed and Finish-ed.
func New(g *grammar.Grammar, lx *lexer.Lexer, σ condition.Assignment) *Driver {
	d := &Driver{
		g:                g,
		lx:               lx,
		σ:                σ,
		bsr:              bsr.NewSet(),
		memo:             map[memoKey]*memoEntry{},
		ev:               condition.NewEvaluator(),
		condIDs:          map[any]int{},
		farthestExpected: map[grammar.TermID]bool{},
		lexicalBit:       -1,
		syntacticBit:     -1,
	}

	if g.Conditions != nil {
		if bit, ok := g.Conditions.Bit("lexical"); ok {
			d.lexicalBit = bit
		}

		if bit, ok := g.Conditions.Bit("syntactic"); ok {
			d.syntacticBit = bit
		}
	}

	return d
}

// Cancel requests cooperative cancellation (spec §5): checked at the
// top of every deriveNonterm round.
func (d *Driver) Cancel() {
	atomic.StoreInt32(&d.cancelled, 1)
}

func (d *Driver) isCancelled() bool {
	return atomic.LoadInt32(&d.cancelled) != 0
}

// Parse runs the driver from position 0 against the grammar's start
// non-terminal, per spec §6 "parse(session) -> {ok, err, bsr}".
func (d *Driver) Parse() *Result {
	start, ok := d.g.Start()
	if !ok {
		return &Result{BSR: d.bsr}
	}

	ends := d.deriveNonterm(start, 0)

	if d.isCancelled() {
		return &Result{Cancelled: true, BSR: d.bsr}
	}

	for _, e := range ends {
		full := d.skipIgnorable(e)
		if full == d.textLen() {
			key := bsr.CompletedKey(start, 0, e)
			d.bsr.Start, d.bsr.HasRoot = key, true
			return &Result{OK: true, Root: key, BSR: d.bsr}
		}
	}

	expected := make([]grammar.TermID, 0, len(d.farthestExpected))
	for id := range d.farthestExpected {
		expected = append(expected, id)
	}

	names := func(id grammar.TermID) string { return d.g.Terminals[id].Name }
	err := newNoDerivationError(d.farthestPos, expected, names)
	return &Result{BSR: d.bsr, Err: err}
}

func (d *Driver) textLen() int {
	// The lexer owns the source text, so its length comes from there.
	// Parse detects completion by walking skipIgnorable from each
	// candidate end and comparing the result to this length.
	return d.lx.Len()
}

func (d *Driver) skipIgnorable(pos int) int {
	return d.lx.SkipIgnorable(pos)
}

// deriveNonterm computes the least fixed point of end positions
// reachable by nt from start, recording every BSR element discovered
// along the way. Re-entrant calls with the same (nt, start) — which is
// exactly what happens when nt is left-recursive — observe the
// in-progress memo entry rather than recursing further.
func (d *Driver) deriveNonterm(nt grammar.NontermID, start int) []int {
	key := memoKey{nt, start}
	if e, ok := d.memo[key]; ok {
		return e.ends
	}

	entry := &memoEntry{}
	d.memo[key] = entry

	for {
		if d.isCancelled() {
			return entry.ends
		}

		growing := false

		for altIdx := range d.g.Nonterminals[nt].Alternatives {
			alt := &d.g.Nonterminals[nt].Alternatives[altIdx]
			if !d.admitAlt(alt) {
				continue
			}

			for _, r := range d.deriveSequence(nt, altIdx, alt.Symbols, start) {
				elem := bsr.Element{Completed: true, Nonterm: nt, Start: start, Split: r.split, End: r.end}
				d.bsr.Add(elem)

				if !containsInt(entry.ends, r.end) {
					entry.ends = append(entry.ends, r.end)
					growing = true
				}
			}
		}

		if !growing {
			break
		}
	}

	return entry.ends
}

type seqResult struct{ split, end int }

// deriveSequence matches alt's symbols left to right from start,
// recording a BSR element at every symbol boundary (spec §4.4 point
// 2), and returns the (split, end) pairs reachable by the final
// symbol — split is the position the final symbol started at, needed
// because two different splits can reach the same end (spec §8
// scenario 2's two associativity parses both end at position 5).
func (d *Driver) deriveSequence(nt grammar.NontermID, altIdx int, symbols []grammar.Symbol, start int) []seqResult {
	if len(symbols) == 0 {
		return []seqResult{{start, start}}
	}

	frontier := []int{start}

	for i := 0; i < len(symbols)-1; i++ {
		dot := i + 1
		next := map[int]bool{}

		for _, p := range frontier {
			for _, end := range d.deriveSymbol(&symbols[i], p) {
				d.bsr.Add(bsr.Element{Slot: bsr.Slot{Nonterm: nt, Alt: altIdx, Dot: dot}, Start: start, Split: p, End: end})
				next[end] = true
			}
		}

		if len(next) == 0 {
			return nil
		}

		frontier = make([]int, 0, len(next))
		for p := range next {
			frontier = append(frontier, p)
		}
	}

	lastIdx := len(symbols) - 1
	dot := lastIdx + 1
	var results []seqResult

	for _, p := range frontier {
		for _, end := range d.deriveSymbol(&symbols[lastIdx], p) {
			d.bsr.Add(bsr.Element{Slot: bsr.Slot{Nonterm: nt, Alt: altIdx, Dot: dot}, Start: start, Split: p, End: end})
			results = append(results, seqResult{p, end})
		}
	}

	return results
}

func (d *Driver) deriveSymbol(sym *grammar.Symbol, pos int) []int {
	if sym.Guard != nil && !d.ev.Eval(d.condID(sym), sym.Guard, d.σ) {
		return nil
	}

	if !d.admitSubCond(sym.SubCond) {
		return nil
	}

	switch sym.Kind {
	case grammar.SymbolTerminal:
		return d.deriveTerminal(grammar.TermID(sym.Ref), pos)
	case grammar.SymbolNonterminal:
		return d.deriveNonterm(grammar.NontermID(sym.Ref), pos)
	default:
		// Desugar eliminates iteration/optional/selection before the
		// driver ever runs; a caller that skipped it gets no match,
		// not a panic, since grammar authoring errors are caught at
		// Grammar.Finish, not at parse time.
		return nil
	}
}

// deriveTerminal records id itself as "expected" at pos regardless of
// outcome — what a caller was attempting to derive at the farthest
// reached position is what a SyntacticError should report, not
// whatever the lexer happened to match there (a clean lex failure has
// no matched terminals to report at all).
func (d *Driver) deriveTerminal(id grammar.TermID, pos int) []int {
	d.noteFarthest(pos, []grammar.TermID{id})

	toks, err := d.lx.Lex(pos)
	if err != nil {
		return nil
	}

	for _, t := range toks {
		if grammar.TermID(t.Term) == id {
			return []int{t.End}
		}
	}

	return nil
}

func (d *Driver) noteFarthest(pos int, expected []grammar.TermID) {
	if pos > d.farthestPos {
		d.farthestPos = pos
		d.farthestExpected = map[grammar.TermID]bool{}
	}

	if pos == d.farthestPos {
		for _, id := range expected {
			d.farthestExpected[id] = true
		}
	}
}

func (d *Driver) admitAlt(alt *grammar.Alternative) bool {
	if alt.Condition != nil && !d.ev.Eval(d.condID(alt), alt.Condition, d.σ) {
		return false
	}

	return d.admitSubCond(alt.SubCond)
}

func (d *Driver) admitSubCond(sc grammar.SubCondition) bool {
	switch sc {
	case grammar.SubConditionLexical:
		return d.lexicalBit >= 0 && d.σ&(1<<d.lexicalBit) != 0
	case grammar.SubConditionSyntactic:
		return d.syntacticBit >= 0 && d.σ&(1<<d.syntacticBit) != 0
	default:
		return true
	}
}

func containsInt(xs []int, v int) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}

	return false
}
