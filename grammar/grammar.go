// Package grammar holds the grammar IR (spec §3, §6): the terminal
// table and non-terminal table that the lexer and parser interpret at
// run time. Unlike ava12-llx's grammar package, which is a fixed
// per-language table paired with generated Go code, this IR is fully
// generic: one engine interprets any grammar built from these types,
// because the code generator that would emit per-language Go types is
// an explicit non-goal (spec §1).
package grammar

import (
	"github.com/aetherlang/aether"
	"github.com/aetherlang/aether/condition"
	"github.com/aetherlang/aether/nfa"
)

// TermID and NontermID index into Grammar.Terminals and
// Grammar.Nonterminals respectively. -1 is never a valid index and is
// used as a sentinel by callers that need one.
type TermID int
type NontermID int

// Terminal is one lexical rule (spec §3 "Terminal"). Includes/Excludes
// hold the terminal's immediate precedence edges as declared by the
// grammar author (+Name / -Name, spec §4.6); Finish resolves their
// transitive closure once per grammar (see precedence.go).
type Terminal struct {
	Name      string
	NFA       *nfa.NFA
	Condition condition.Expr
	Ignorable bool
	Includes  []TermID
	Excludes  []TermID
}

// SymbolKind discriminates the variants of Symbol.
type SymbolKind int

const (
	SymbolTerminal SymbolKind = iota
	SymbolNonterminal
	SymbolIteration    // {X} or {/X}
	SymbolOptional      // [X] or [/X]
	SymbolSelection      // nested (a|b|c) grouping
)

// SubCondition tags a fragment with @lexical / @syntactic, per spec
// §4.6. SubConditionNone means the fragment carries no dialect tag.
type SubCondition int

const (
	SubConditionNone SubCondition = iota
	SubConditionLexical
	SubConditionSyntactic
)

// Symbol is one element of an alternative's right-hand side (spec §3
// "Non-terminal"). Ref is the terminal or non-terminal referenced by
// Kind == SymbolTerminal / SymbolNonterminal; Inner holds the
// sub-sequence for iteration/optional symbols; Alts holds the
// alternative sequences for a nested selection symbol (a grouped
// "(a|b)" or "(a/b)", ungrouped at the top level into Nonterminal's
// own Alternatives). LeftFold distinguishes {X} (right-fold) from
// {/X} (left-fold), and similarly [X] from [/X], per spec §4.4 and
// §6 — both fold variants admit the same set of derivations. Desugar
// copies LeftFold onto the synthesized non-terminal; forest
// construction does not read it, so both variants produce the same
// tree.
type Symbol struct {
	Kind     SymbolKind
	Ref      int // TermID or NontermID, meaning depends on Kind
	Inner    []Symbol
	Alts     []Alternative // used by SymbolSelection only
	LeftFold bool
	Guard    condition.Expr
	SubCond  SubCondition
}

// Alternative is one ordered sequence of symbols making up a
// production's right-hand side (spec §3). Condition gates the whole
// alternative (a grammar-author guard, independent of SubCond).
// Ordered is true when this alternative was separated from its
// siblings by "/" rather than "|" (spec §4.5's ordered-choice rule);
// siblings are only ever all-ordered or all-ambiguous within one
// selection, per the meta-language surface (spec §6), so the flag is
// carried per-alternative for convenience rather than per-selection.
type Alternative struct {
	Symbols   []Symbol
	Condition condition.Expr
	Ordered   bool
	SubCond   SubCondition
}

// SynthKind tags a Nonterminal synthesized by Desugar from an
// iteration, optional or nested-selection symbol, so that forest
// construction can fold/splice it instead of materializing it as an
// ordinary CST node (spec §4.4's "desugar ... the driver handles
// uniformly" and §4.5's fold rules).
type SynthKind int

const (
	SynthNone SynthKind = iota
	SynthIteration
	SynthOptional
	SynthSelection
)

// Nonterminal is one production (spec §3 "Non-terminal").
type Nonterminal struct {
	Name         string
	Alternatives []Alternative
	IsStart      bool
	Condition    condition.Expr

	// ChildNames lists the symbol names that survive AST construction;
	// terminals absent from this set are elided as punctuation (spec
	// §4.5). Nil means "keep everything" (non-terminals rarely need
	// to elide).
	ChildNames map[string]bool

	// Synthetic and LeftFold are set by Desugar on the non-terminals
	// it generates; zero value (SynthNone) for every author-written
	// non-terminal.
	Synthetic SynthKind
	LeftFold  bool
}

// Grammar is the full grammar IR (spec §6 "Grammar IR"): immutable
// once loaded, shared read-only across all sessions parsing against
// it (spec §5).
type Grammar struct {
	Terminals    []Terminal
	Nonterminals []Nonterminal
	Conditions   *condition.Universe

	startID  NontermID
	hasStart bool

	// precedence holds the transitively-closed includes/excludes
	// relation, computed once by Finish.
	precedence *precedenceTable
}

// TermByName and NontermByName support lookups while building a
// Grammar from a parsed meta-language document (see langdef).
func (g *Grammar) TermByName(name string) (TermID, bool) {
	for i := range g.Terminals {
		if g.Terminals[i].Name == name {
			return TermID(i), true
		}
	}

	return -1, false
}

func (g *Grammar) NontermByName(name string) (NontermID, bool) {
	for i := range g.Nonterminals {
		if g.Nonterminals[i].Name == name {
			return NontermID(i), true
		}
	}

	return -1, false
}

// Start returns the grammar's unique start non-terminal. Finish must
// have succeeded first.
func (g *Grammar) Start() (NontermID, bool) {
	return g.startID, g.hasStart
}

// Finish validates g and precomputes derived tables (the precedence
// closure). It must be called once after a Grammar's Terminals and
// Nonterminals are fully populated, and before any session opens
// against it. See validate.go for the checks performed.
func (g *Grammar) Finish() error {
	if err := validate(g); err != nil {
		return err
	}

	for i, nt := range g.Nonterminals {
		if nt.IsStart {
			g.startID = NontermID(i)
			g.hasStart = true
		}
	}

	pt, err := buildPrecedenceTable(g.Terminals)
	if err != nil {
		return err
	}

	g.precedence = pt
	return nil
}

// ErrNotFinished describes a Grammar whose Finish was not called. No
// package in this module returns it: on such a Grammar, Start reports
// no start symbol and PrunePrecedence returns its input unchanged.
var ErrNotFinished = aether.FormatError(aether.GrammarErrors, "grammar.Finish was not called")

// PrunePrecedence applies the grammar's precedence closure to a set of
// terminals tied for longest match, per spec §4.3 step 4. Finish must
// have succeeded first; ids is consumed (its backing array is reused
// for the result, so pass a slice the caller owns).
func (g *Grammar) PrunePrecedence(ids []TermID) []TermID {
	if g.precedence == nil {
		return ids
	}

	return g.precedence.Prune(ids)
}
