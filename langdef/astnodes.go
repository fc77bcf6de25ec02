package langdef

import (
	"strings"

	"github.com/aetherlang/aether/forest"
	"github.com/aetherlang/aether/source"
)

// punctuation leaves that a bootstrap production's fold result carries
// along even though they add no information once the surrounding
// structure is known: brackets, which grammar-level ChildNames
// filtering can't reach when they arrive through a spliced synthetic
// optional/iteration rather than as a direct terminal child.
var punctLeaves = map[string]bool{
	"(": true, ")": true,
	"{": true, "}": true,
	"[": true, "]": true,
}

// asList normalizes spec §4.5's single-child AST collapsing: a wrapper
// non-terminal whose fold produced exactly one child returns that
// child directly instead of the named wrapper. Every bootstrap
// production that walks a list-shaped child must call this first.
func asList(n *forest.AST, wrapperName string) []*forest.AST {
	if n == nil {
		return nil
	}

	if !n.IsTerminal && n.Name == wrapperName {
		return n.Children
	}

	return []*forest.AST{n}
}

// withoutPunct drops bracket leaves from a child list, leaving the
// meaningful content in source order.
func withoutPunct(nodes []*forest.AST) []*forest.AST {
	var out []*forest.AST

	for _, n := range nodes {
		if n.IsTerminal && punctLeaves[n.Name] {
			continue
		}

		out = append(out, n)
	}

	return out
}

// text returns the source slice an AST node (terminal or non-terminal)
// spans, without the whitespace and comments the lexer skipped ahead
// of its first token: a node's Start is the position its derivation
// began at, which precedes any such ignorable run.
func text(n *forest.AST, src *source.Text) string {
	s := src.Slice(n.Start, n.End)
	for {
		t := strings.TrimLeft(s, " \t\r\n")
		if strings.HasPrefix(t, "#") {
			if i := strings.IndexByte(t, '\n'); i >= 0 {
				t = t[i:]
			} else {
				t = ""
			}
		}

		if t == s {
			return s
		}

		s = t
	}
}

// isLeaf reports whether n is a terminal leaf named name.
func isLeaf(n *forest.AST, name string) bool {
	return n != nil && n.IsTerminal && n.Name == name
}
