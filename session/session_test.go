package session_test

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/aetherlang/aether/langdef"
	"github.com/aetherlang/aether/session"
)

func TestParseSucceeds(t *testing.T) {
	g, err := langdef.Load([]byte("Digit: `[0-9]` ;\nNum (start): Digit {Digit} ;\n"), "doc.aether")
	require.NoError(t, err)

	s := session.Open(g, "in", []byte("123"), 0, zerolog.Nop())
	defer s.Close()

	res, err := s.Parse()
	require.NoError(t, err)
	require.True(t, res.OK)
	require.NotNil(t, res.AST)
	require.Equal(t, "Num", res.AST.Name)
	require.NotNil(t, res.BSR)
}

func TestParseReportsFarthestError(t *testing.T) {
	g, err := langdef.Load([]byte(`S (start): "a" "b" "c" ;
`), "doc.aether")
	require.NoError(t, err)

	s := session.Open(g, "in", []byte("ab!"), 0, zerolog.Nop())
	defer s.Close()

	res, err := s.Parse()
	require.NoError(t, err)
	require.False(t, res.OK)
	require.False(t, res.Cancelled)
	require.Equal(t, 2, res.ErrPosition)
	require.Contains(t, res.ErrExpected, `"c"`)
}

func TestCancelBeforeParseReturnsCancelled(t *testing.T) {
	g, err := langdef.Load([]byte("Digit: `[0-9]` ;\nNum (start): Digit {Digit} ;\n"), "doc.aether")
	require.NoError(t, err)

	s := session.Open(g, "in", []byte("123"), 0, zerolog.Nop())
	defer s.Close()

	s.Cancel()

	res, err := s.Parse()
	require.NoError(t, err)
	require.True(t, res.Cancelled)
}

func TestParseOnClosedSessionErrors(t *testing.T) {
	g, err := langdef.Load([]byte("Digit: `[0-9]` ;\nNum (start): Digit ;\n"), "doc.aether")
	require.NoError(t, err)

	s := session.Open(g, "in", []byte("1"), 0, zerolog.Nop())
	s.Close()

	_, err = s.Parse()
	require.Error(t, err)
}
