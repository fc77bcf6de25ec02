package condition_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aetherlang/aether/condition"
)

func TestParseAndEval(t *testing.T) {
	u, err := condition.NewUniverse([]string{"lexical", "syntactic", "strict"})
	require.NoError(t, err)

	expr, err := condition.Parse(u, "lexical && !strict || syntactic")
	require.NoError(t, err)

	lexical, _ := u.Of("lexical")
	strict, _ := u.Of("strict")
	syntactic, _ := u.Of("syntactic")

	require.True(t, expr.Eval(lexical))
	require.False(t, expr.Eval(lexical|strict))
	require.True(t, expr.Eval(syntactic))
	require.False(t, expr.Eval(0))
}

func TestParseParentheses(t *testing.T) {
	u, err := condition.NewUniverse([]string{"a", "b", "c"})
	require.NoError(t, err)

	expr, err := condition.Parse(u, "a && (b || c)")
	require.NoError(t, err)

	a, _ := u.Of("a")
	b, _ := u.Of("b")
	require.True(t, expr.Eval(a|b))
	require.False(t, expr.Eval(a))
}

func TestUnknownName(t *testing.T) {
	u, err := condition.NewUniverse([]string{"a"})
	require.NoError(t, err)

	_, err = condition.Parse(u, "z")
	require.Error(t, err)
}

func TestEvaluatorMemoizes(t *testing.T) {
	u, _ := condition.NewUniverse([]string{"a"})
	expr, _ := condition.Resolve(u, "a")
	ev := condition.NewEvaluator()
	a, _ := u.Of("a")
	require.True(t, ev.Eval(0, expr, a))
	require.True(t, ev.Eval(0, expr, a))
	require.False(t, ev.Eval(1, condition.Not{X: expr}, a))
}
