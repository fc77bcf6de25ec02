package source

import (
	"bytes"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Text is an immutable source text: a byte sequence plus a line-start
// index for fast position lookups. Per spec §6, a Text carries no
// encoding assumption beyond ASCII for the meta-language itself;
// arbitrary bytes are accepted for user grammars' inputs. On load we
// sniff and strip a UTF-8 byte-order mark and record whether the
// remaining bytes are well-formed UTF-8, without ever rewriting them:
// the lexical layer stays byte-indexed and encoding-agnostic, but
// session diagnostics can warn when a grammar file isn't valid UTF-8.
type Text struct {
	name       string
	content    []byte
	lineStarts []int
	prevLine   int
	validUTF8  bool
}

// NewText wraps content as a Text named name. A leading UTF-8 BOM is
// stripped; content is otherwise used verbatim, byte for byte.
func NewText(name string, content []byte) *Text {
	content = stripBOM(content)
	t := &Text{name: name, content: content, prevLine: -1, validUTF8: isWellFormedUTF8(content)}
	lineCount := bytes.Count(content, []byte("\n")) + 1
	t.lineStarts = make([]int, lineCount)
	t.lineStarts[0] = 0
	j := 1

	for i := 0; i < len(content) && j < lineCount; i++ {
		if content[i] == '\n' {
			t.lineStarts[j] = i + 1
			j++
		}
	}

	return t
}

func stripBOM(content []byte) []byte {
	if bytes.HasPrefix(content, utf8BOM) {
		return content[len(utf8BOM):]
	}

	return content
}

func isWellFormedUTF8(content []byte) bool {
	_, _, err := transform.Bytes(unicode.UTF8Validator, content)
	return err == nil
}

// ValidUTF8 reports whether the text, BOM already stripped, is
// well-formed UTF-8. It is informational only: no package in this
// module refuses non-UTF-8 bytes, per the no-Unicode-assumption rule
// of spec §6.
func (t *Text) ValidUTF8() bool { return t.validUTF8 }

// Name returns the text's identifying name (usually a file path).
func (t *Text) Name() string { return t.name }

// Content returns the raw bytes, BOM already stripped.
func (t *Text) Content() []byte { return t.content }

// Len returns the number of bytes in the text.
func (t *Text) Len() int { return len(t.content) }

// At returns the byte at index i. Callers must ensure 0 <= i < Len().
func (t *Text) At(i int) byte { return t.content[i] }

// Slice returns the substring [from, to) as a string.
func (t *Text) Slice(from, to int) string { return string(t.content[from:to]) }

// StartPosition returns the position of byte offset 0.
func (t *Text) StartPosition() Position {
	return Position{t.name, 0, 1, 1}
}

// PositionAt computes the Position for a byte offset, which must be
// between 0 and Len() inclusive.
func (t *Text) PositionAt(index int) Position {
	if index < 0 {
		index = 0
	} else if index > len(t.content) {
		index = len(t.content)
	}

	lineIndex := t.findLineIndex(index)
	lineStart := t.lineStarts[lineIndex]
	col := 1
	for i := lineStart; i < index; i++ {
		// Column counts bytes, not runes: the lexical layer is
		// byte-indexed (spec §3) and the meta-language's own source is
		// ASCII, so byte and rune columns coincide there; user
		// grammars needing rune-aware columns can post-process.
		col++
	}

	return Position{t.name, index, lineIndex + 1, col}
}

func (t *Text) findLineIndex(index int) int {
	if t.prevLine >= 0 && t.lineStarts[t.prevLine] <= index {
		li := t.prevLine
		last := len(t.lineStarts) - 1
		for li <= last && t.lineStarts[li] <= index {
			li++
		}
		li--
		t.prevLine = li
		return li
	}

	lo, hi := 0, len(t.lineStarts)-1
	for lo < hi {
		mid := (lo + hi + 1) >> 1
		if t.lineStarts[mid] <= index {
			lo = mid
		} else {
			hi = mid - 1
		}
	}

	t.prevLine = lo
	return lo
}
