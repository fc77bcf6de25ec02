package parser_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aetherlang/aether/bsr"
	"github.com/aetherlang/aether/grammar"
	"github.com/aetherlang/aether/lexer"
	"github.com/aetherlang/aether/nfa"
	"github.com/aetherlang/aether/parser"
	"github.com/aetherlang/aether/source"
)

func mustNFA(t *testing.T, pattern string) *nfa.NFA {
	n, err := nfa.CompilePattern(pattern)
	require.NoError(t, err)
	return n
}

func term(id int) grammar.Symbol      { return grammar.Symbol{Kind: grammar.SymbolTerminal, Ref: id} }
func nonterm(id int) grammar.Symbol   { return grammar.Symbol{Kind: grammar.SymbolNonterminal, Ref: id} }

func buildDriver(t *testing.T, g *grammar.Grammar, input string) *parser.Driver {
	grammar.Desugar(g)
	require.NoError(t, g.Finish())

	text := source.NewText("t", []byte(input))
	lx := lexer.New(g, text, 0)
	return parser.New(g, lx, 0)
}

// TestIteration covers spec §8 scenario 1: S: "a" {/"a"} ; on "aaa"
// must derive exactly one BSR root spanning the whole input.
func TestIteration(t *testing.T) {
	g := &grammar.Grammar{
		Terminals: []grammar.Terminal{
			{Name: "a", NFA: mustNFA(t, "a")},
		},
		Nonterminals: []grammar.Nonterminal{
			{
				Name:    "S",
				IsStart: true,
				Alternatives: []grammar.Alternative{
					{Symbols: []grammar.Symbol{
						term(0),
						{Kind: grammar.SymbolIteration, LeftFold: true, Inner: []grammar.Symbol{term(0)}},
					}},
				},
			},
		},
	}

	d := buildDriver(t, g, "aaa")
	res := d.Parse()
	require.True(t, res.OK)
	require.True(t, res.BSR.HasRoot)
	require.Equal(t, bsr.CompletedKey(0, 0, 3), res.Root)
}

// TestLeftRecursionAmbiguity covers spec §8 scenario 2: E: E "+" E |
// "n" ; on "n+n+n" must derive two distinct BSR roots at (E,0,5),
// the left- and right-associative parses, distinguished by Split.
func TestLeftRecursionAmbiguity(t *testing.T) {
	g := &grammar.Grammar{
		Terminals: []grammar.Terminal{
			{Name: "plus", NFA: mustNFA(t, `\+`)},
			{Name: "n", NFA: mustNFA(t, "n")},
		},
		Nonterminals: []grammar.Nonterminal{
			{
				Name:    "E",
				IsStart: true,
				Alternatives: []grammar.Alternative{
					{Symbols: []grammar.Symbol{nonterm(0), term(0), nonterm(0)}},
					{Symbols: []grammar.Symbol{term(1)}},
				},
			},
		},
	}

	d := buildDriver(t, g, "n+n+n")
	res := d.Parse()
	require.True(t, res.OK)

	roots := res.BSR.At(bsr.SlotKey(bsr.Slot{Nonterm: 0, Alt: 0, Dot: 3}, 0, 5))
	require.Len(t, roots, 2)

	splits := map[int]bool{}
	for _, r := range roots {
		splits[r.Split] = true
	}
	require.True(t, splits[2])
	require.True(t, splits[4])
}

// TestAmbiguousVsOrderedChoice covers spec §8 scenario 5: two
// identical alternatives both contribute a per-alternative BSR entry
// at (S,0,1) regardless of "|" vs "/" — the driver always records
// every surviving alternative's slot; the forest package (not this
// one) is what picks the first alternative when building a tree.
func TestAmbiguousVsOrderedChoice(t *testing.T) {
	g := &grammar.Grammar{
		Terminals: []grammar.Terminal{
			{Name: "x", NFA: mustNFA(t, "x")},
		},
		Nonterminals: []grammar.Nonterminal{
			{
				Name:    "S",
				IsStart: true,
				Alternatives: []grammar.Alternative{
					{Symbols: []grammar.Symbol{term(0)}},
					{Symbols: []grammar.Symbol{term(0)}}, // distinct Alt index
				},
			},
		},
	}

	d := buildDriver(t, g, "x")
	res := d.Parse()
	require.True(t, res.OK)

	alt0 := res.BSR.At(bsr.SlotKey(bsr.Slot{Nonterm: 0, Alt: 0, Dot: 1}, 0, 1))
	alt1 := res.BSR.At(bsr.SlotKey(bsr.Slot{Nonterm: 0, Alt: 1, Dot: 1}, 0, 1))
	require.Len(t, alt0, 1)
	require.Len(t, alt1, 1)
}

// TestFarthestErrorReporting covers spec §8 scenario 6: S: "a" "b"
// "c" ; on "ab!" must report position 2 with "c" expected.
func TestFarthestErrorReporting(t *testing.T) {
	g := &grammar.Grammar{
		Terminals: []grammar.Terminal{
			{Name: "a", NFA: mustNFA(t, "a")},
			{Name: "b", NFA: mustNFA(t, "b")},
			{Name: "c", NFA: mustNFA(t, "c")},
		},
		Nonterminals: []grammar.Nonterminal{
			{
				Name:    "S",
				IsStart: true,
				Alternatives: []grammar.Alternative{
					{Symbols: []grammar.Symbol{term(0), term(1), term(2)}},
				},
			},
		},
	}

	d := buildDriver(t, g, "ab!")
	res := d.Parse()
	require.False(t, res.OK)
	require.NotNil(t, res.Err)
	require.Equal(t, 2, res.Err.Position)
	require.Contains(t, res.Err.Expected, grammar.TermID(2))
}

func TestCancel(t *testing.T) {
	g := &grammar.Grammar{
		Terminals: []grammar.Terminal{
			{Name: "a", NFA: mustNFA(t, "a")},
		},
		Nonterminals: []grammar.Nonterminal{
			{Name: "S", IsStart: true, Alternatives: []grammar.Alternative{
				{Symbols: []grammar.Symbol{term(0)}},
			}},
		},
	}

	d := buildDriver(t, g, "a")
	d.Cancel()
	res := d.Parse()
	require.True(t, res.Cancelled)
}
