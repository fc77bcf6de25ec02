package grammar_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aetherlang/aether/condition"
	"github.com/aetherlang/aether/grammar"
	"github.com/aetherlang/aether/nfa"
)

func mustNFA(t *testing.T, pattern string) *nfa.NFA {
	n, err := nfa.CompilePattern(pattern)
	require.NoError(t, err)
	return n
}

func TestFinishRequiresExactlyOneStart(t *testing.T) {
	g := &grammar.Grammar{
		Nonterminals: []grammar.Nonterminal{
			{Name: "A", IsStart: false},
			{Name: "B", IsStart: false},
		},
	}
	require.Error(t, g.Finish())

	g.Nonterminals[0].IsStart = true
	g.Nonterminals[1].IsStart = true
	require.Error(t, g.Finish())

	g.Nonterminals[1].IsStart = false
	require.NoError(t, g.Finish())

	id, ok := g.Start()
	require.True(t, ok)
	require.Equal(t, grammar.NontermID(0), id)
}

func TestFinishRejectsUndefinedReference(t *testing.T) {
	g := &grammar.Grammar{
		Nonterminals: []grammar.Nonterminal{
			{
				Name:    "S",
				IsStart: true,
				Alternatives: []grammar.Alternative{
					{Symbols: []grammar.Symbol{{Kind: grammar.SymbolTerminal, Ref: 5}}},
				},
			},
		},
	}

	require.Error(t, g.Finish())
}

func TestPrecedenceClosureDetectsCycle(t *testing.T) {
	terms := []grammar.Terminal{
		{Name: "A", NFA: mustNFA(t, "a"), Excludes: []grammar.TermID{1}},
		{Name: "B", NFA: mustNFA(t, "b"), Excludes: []grammar.TermID{0}},
	}

	g := &grammar.Grammar{
		Terminals: terms,
		Nonterminals: []grammar.Nonterminal{
			{Name: "S", IsStart: true},
		},
	}

	require.Error(t, g.Finish())
}

func TestPrecedencePrunePrefersSpecializer(t *testing.T) {
	// Kw(+Id) excludes Id on tie, matching spec §8 scenario 3.
	terms := []grammar.Terminal{
		{Name: "Id", NFA: mustNFA(t, "[A-Za-z]+")},
		{Name: "Kw", NFA: mustNFA(t, "if"), Excludes: []grammar.TermID{0}},
	}

	g := &grammar.Grammar{
		Terminals: terms,
		Nonterminals: []grammar.Nonterminal{
			{Name: "S", IsStart: true},
		},
	}

	require.NoError(t, g.Finish())
	require.Equal(t, []grammar.TermID{1}, g.PrunePrecedence([]grammar.TermID{0, 1}))
}

func TestResolvedConditionEvaluates(t *testing.T) {
	u, err := condition.NewUniverse([]string{"lexical"})
	require.NoError(t, err)

	expr, err := condition.Resolve(u, "lexical")
	require.NoError(t, err)

	trueAssign, err := u.Of("lexical")
	require.NoError(t, err)

	require.True(t, expr.Eval(trueAssign))
	require.False(t, expr.Eval(0))
}
