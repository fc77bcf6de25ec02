package lexer_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aetherlang/aether/condition"
	"github.com/aetherlang/aether/grammar"
	"github.com/aetherlang/aether/lexer"
	"github.com/aetherlang/aether/nfa"
	"github.com/aetherlang/aether/source"
)

func mustNFA(t *testing.T, pattern string) *nfa.NFA {
	n, err := nfa.CompilePattern(pattern)
	require.NoError(t, err)
	return n
}

// TestConditionalLexer covers spec §8 scenario 3: Kw@lexical(+Id)
// wins over Id when σ(lexical) is true, but when it is false Kw drops
// out of the admitted set entirely and Id matches alone.
func TestConditionalLexer(t *testing.T) {
	u, err := condition.NewUniverse([]string{"lexical"})
	require.NoError(t, err)

	lexicalGuard, err := condition.Resolve(u, "lexical")
	require.NoError(t, err)

	g := &grammar.Grammar{
		Terminals: []grammar.Terminal{
			{Name: "Id", NFA: mustNFA(t, "[A-Za-z]+")},
			{Name: "Kw", NFA: mustNFA(t, "if"), Condition: lexicalGuard, Excludes: []grammar.TermID{0}},
		},
		Nonterminals: []grammar.Nonterminal{{Name: "S", IsStart: true}},
	}
	require.NoError(t, g.Finish())

	text := source.NewText("t", []byte("if"))

	σOn, err := u.Of("lexical")
	require.NoError(t, err)
	lx := lexer.New(g, text, σOn)
	toks, err := lx.Lex(0)
	require.NoError(t, err)
	require.Len(t, toks, 1)
	require.Equal(t, 1, toks[0].Term) // Kw wins

	lxOff := lexer.New(g, text, 0)
	toks, err = lxOff.Lex(0)
	require.NoError(t, err)
	require.Len(t, toks, 1)
	require.Equal(t, 0, toks[0].Term) // Id, since Kw isn't admitted
}

// TestIgnorableSkip covers spec §8 scenario 4: querying at a position
// preceded by ignorable whitespace advances past it before matching.
func TestIgnorableSkip(t *testing.T) {
	g := &grammar.Grammar{
		Terminals: []grammar.Terminal{
			{Name: "Ws", NFA: mustNFA(t, "[ ]+"), Ignorable: true},
			{Name: "a", NFA: mustNFA(t, "a")},
			{Name: "b", NFA: mustNFA(t, "b")},
		},
		Nonterminals: []grammar.Nonterminal{{Name: "S", IsStart: true}},
	}
	require.NoError(t, g.Finish())

	text := source.NewText("t", []byte("a   b"))
	lx := lexer.New(g, text, 0)

	toks, err := lx.Lex(0)
	require.NoError(t, err)
	require.Len(t, toks, 1)
	require.Equal(t, 1, toks[0].Term)
	require.Equal(t, 0, toks[0].Start)
	require.Equal(t, 1, toks[0].End)

	toks, err = lx.Lex(1)
	require.NoError(t, err)
	require.Len(t, toks, 1)
	require.Equal(t, 2, toks[0].Term)
	require.Equal(t, 4, toks[0].Start)
	require.Equal(t, 5, toks[0].End)
}

func TestNoTerminalError(t *testing.T) {
	g := &grammar.Grammar{
		Terminals: []grammar.Terminal{
			{Name: "a", NFA: mustNFA(t, "a")},
		},
		Nonterminals: []grammar.Nonterminal{{Name: "S", IsStart: true}},
	}
	require.NoError(t, g.Finish())

	text := source.NewText("t", []byte("z"))
	lx := lexer.New(g, text, 0)
	_, err := lx.Lex(0)
	require.Error(t, err)
}

func TestMemoizationReturnsSameResult(t *testing.T) {
	g := &grammar.Grammar{
		Terminals: []grammar.Terminal{
			{Name: "a", NFA: mustNFA(t, "a+")},
		},
		Nonterminals: []grammar.Nonterminal{{Name: "S", IsStart: true}},
	}
	require.NoError(t, g.Finish())

	text := source.NewText("t", []byte("aaa"))
	lx := lexer.New(g, text, 0)

	first, err := lx.Lex(0)
	require.NoError(t, err)
	second, err := lx.Lex(0)
	require.NoError(t, err)
	require.Equal(t, first, second)
}
