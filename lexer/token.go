package lexer

import "github.com/aetherlang/aether/source"

// Token is one lexical match (spec §3 "Token"): a terminal id plus
// the byte span it covers. Tokens are value types; the lexer's memo
// cache and the parser both copy them freely.
type Token struct {
	Term  int
	Start int
	End   int
	text  *source.Text
}

// NewToken builds a Token backed by text, the source it was lexed
// from (kept for Line/Col/SourceName and to slice out Text()).
func NewToken(term, start, end int, text *source.Text) Token {
	return Token{Term: term, Start: start, End: end, text: text}
}

// Text returns the token's matched source slice.
func (t Token) Text() string {
	return t.text.Slice(t.Start, t.End)
}

// SourceName, Line and Col implement aether.SourcePos, so a Token can
// be passed directly to aether.FormatErrorPos.
func (t Token) SourceName() string { return t.text.Name() }
func (t Token) Line() int          { return t.text.PositionAt(t.Start).Line() }
func (t Token) Col() int           { return t.text.PositionAt(t.Start).Col() }
