package grammar_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aetherlang/aether/grammar"
)

// TestDesugarIterationIsRightRecursive covers the `{X}` rewrite (spec
// §4.4): a fresh non-terminal `inner Iter | ;`, tagged SynthIteration,
// replacing the iteration symbol in place.
func TestDesugarIterationIsRightRecursive(t *testing.T) {
	g := &grammar.Grammar{
		Nonterminals: []grammar.Nonterminal{
			{
				Name:    "S",
				IsStart: true,
				Alternatives: []grammar.Alternative{
					{Symbols: []grammar.Symbol{
						{Kind: grammar.SymbolIteration, Inner: []grammar.Symbol{{Kind: grammar.SymbolTerminal, Ref: 0}}},
					}},
				},
			},
		},
	}

	grammar.Desugar(g)

	require.Len(t, g.Nonterminals, 2)

	iter := g.Nonterminals[1]
	require.Equal(t, grammar.SynthIteration, iter.Synthetic)
	require.Len(t, iter.Alternatives, 2)

	recur := iter.Alternatives[0].Symbols
	require.Len(t, recur, 2)
	require.Equal(t, grammar.SymbolTerminal, recur[0].Kind)
	require.Equal(t, 0, recur[0].Ref)
	require.Equal(t, grammar.SymbolNonterminal, recur[1].Kind)
	require.Equal(t, 1, recur[1].Ref)

	require.Empty(t, iter.Alternatives[1].Symbols)

	s := g.Nonterminals[0].Alternatives[0].Symbols[0]
	require.Equal(t, grammar.SymbolNonterminal, s.Kind)
	require.Equal(t, 1, s.Ref)
}

// TestDesugarOptionalHasTwoAlternatives covers the `[X]` rewrite: a
// fresh non-terminal `inner | ;`, tagged SynthOptional.
func TestDesugarOptionalHasTwoAlternatives(t *testing.T) {
	g := &grammar.Grammar{
		Nonterminals: []grammar.Nonterminal{
			{
				Name:    "S",
				IsStart: true,
				Alternatives: []grammar.Alternative{
					{Symbols: []grammar.Symbol{
						{Kind: grammar.SymbolOptional, Inner: []grammar.Symbol{{Kind: grammar.SymbolTerminal, Ref: 0}}},
					}},
				},
			},
		},
	}

	grammar.Desugar(g)

	require.Len(t, g.Nonterminals, 2)

	opt := g.Nonterminals[1]
	require.Equal(t, grammar.SynthOptional, opt.Synthetic)
	require.Len(t, opt.Alternatives, 2)
	require.Equal(t, []grammar.Symbol{{Kind: grammar.SymbolTerminal, Ref: 0}}, opt.Alternatives[0].Symbols)
	require.Empty(t, opt.Alternatives[1].Symbols)
}

// TestDesugarSelectionPreservesAlternativeMetadata covers the nested
// (a|b) rewrite: the synthesized non-terminal's alternatives keep each
// original alternative's Condition/Ordered/SubCond, since forest
// construction splices its chosen child straight into the parent
// rather than materializing a node for the selection itself.
func TestDesugarSelectionPreservesAlternativeMetadata(t *testing.T) {
	g := &grammar.Grammar{
		Nonterminals: []grammar.Nonterminal{
			{
				Name:    "S",
				IsStart: true,
				Alternatives: []grammar.Alternative{
					{Symbols: []grammar.Symbol{
						{Kind: grammar.SymbolSelection, Alts: []grammar.Alternative{
							{Symbols: []grammar.Symbol{{Kind: grammar.SymbolTerminal, Ref: 0}}, Ordered: true, SubCond: grammar.SubConditionLexical},
							{Symbols: []grammar.Symbol{{Kind: grammar.SymbolTerminal, Ref: 1}}},
						}},
					}},
				},
			},
		},
	}

	grammar.Desugar(g)

	require.Len(t, g.Nonterminals, 2)

	sel := g.Nonterminals[1]
	require.Equal(t, grammar.SynthSelection, sel.Synthetic)
	require.Len(t, sel.Alternatives, 2)
	require.True(t, sel.Alternatives[0].Ordered)
	require.Equal(t, grammar.SubConditionLexical, sel.Alternatives[0].SubCond)
	require.False(t, sel.Alternatives[1].Ordered)

	s := g.Nonterminals[0].Alternatives[0].Symbols[0]
	require.Equal(t, grammar.SymbolNonterminal, s.Kind)
	require.Equal(t, 1, s.Ref)
}

// TestDesugarRecursesIntoNestedIteration covers a {[X]} shape: the
// inner Optional must itself be desugared before the outer Iteration's
// synthesized non-terminal is built, so the iteration body references
// the optional's synthesized non-terminal rather than a raw
// SymbolOptional.
func TestDesugarRecursesIntoNestedIteration(t *testing.T) {
	g := &grammar.Grammar{
		Nonterminals: []grammar.Nonterminal{
			{
				Name:    "S",
				IsStart: true,
				Alternatives: []grammar.Alternative{
					{Symbols: []grammar.Symbol{
						{Kind: grammar.SymbolIteration, Inner: []grammar.Symbol{
							{Kind: grammar.SymbolOptional, Inner: []grammar.Symbol{{Kind: grammar.SymbolTerminal, Ref: 0}}},
						}},
					}},
				},
			},
		},
	}

	grammar.Desugar(g)

	require.Len(t, g.Nonterminals, 3)

	// The inner Optional desugars (and is appended) before the outer
	// Iteration's own synthesized non-terminal, since desugarSymbol
	// resolves s.Inner before calling synthIteration: $opt lands at
	// index 1, $iter at index 2.
	opt := g.Nonterminals[1]
	require.Equal(t, grammar.SynthOptional, opt.Synthetic)

	iter := g.Nonterminals[2]
	require.Equal(t, grammar.SynthIteration, iter.Synthetic)

	body := iter.Alternatives[0].Symbols
	require.Len(t, body, 2)
	require.Equal(t, grammar.SymbolNonterminal, body[0].Kind)
	require.Equal(t, 1, body[0].Ref)
}
