// Package forest implements spec §4.5: disambiguating a BSR set down
// to one syntax tree per span and materializing it first as a CST
// (one node per kept grammar symbol, including synthetic iteration/
// optional/selection non-terminals) and then as an AST (synthetic
// non-terminals folded away, single-child chains collapsed,
// punctuation elided).
//
// Grounded on ava12-llx/tree/tree.go's Node/NonTermNode shape (parent-
// free, child-slice read views) and dtromb-parser__parser.go's
// SyntaxTreeNode span-bearing accessor style; the walk itself uses
// bsr.Set.LeftChildren, which in turn ports original_source's
// TransmuterBSR left_children.
package forest

import (
	"github.com/aetherlang/aether"
	"github.com/aetherlang/aether/bsr"
	"github.com/aetherlang/aether/grammar"
)

// NodeKind discriminates the two kinds of CST node.
type NodeKind int

const (
	NodeNonterminal NodeKind = iota
	NodeTerminal
)

// Node is one CST node: either a non-terminal with its chosen
// alternative's children, or a terminal leaf.
type Node struct {
	Kind    NodeKind
	Nonterm grammar.NontermID
	Alt     int
	Term    grammar.TermID
	Start   int
	End     int

	Children []*Node
}

// Build materializes the canonical CST rooted at root, which must be
// a completed Key (spec §4.4's parse-success span). g must be the
// same Grammar the BSR set in set was produced against.
func Build(g *grammar.Grammar, set *bsr.Set, root bsr.Key) (*Node, error) {
	if !root.Completed {
		return nil, aether.FormatError(ErrRootNotCompleted, "forest.Build: root key is not a completed span")
	}

	return buildCompleted(g, set, root.Nonterm, root.Start, root.End)
}

func buildCompleted(g *grammar.Grammar, set *bsr.Set, nt grammar.NontermID, start, end int) (*Node, error) {
	elem, ok := chooseAlt(g, set, nt, start, end)
	if !ok {
		return nil, aether.FormatError(ErrNoDerivation, "forest: no BSR element for non-terminal %d over [%d,%d)", nt, start, end)
	}

	symbols := g.Nonterminals[nt].Alternatives[elem.Slot.Alt].Symbols

	children, err := buildChildren(g, set, nt, elem, symbols)
	if err != nil {
		return nil, err
	}

	return &Node{Kind: NodeNonterminal, Nonterm: nt, Alt: elem.Slot.Alt, Start: start, End: end, Children: children}, nil
}

// buildChildren walks elem's alternative from its final symbol
// backwards: the last symbol spans [elem.Split, elem.End) (a leaf for
// a terminal, a fresh buildCompleted for a non-terminal), and
// LeftChildren yields the span of every symbol before it, recursed
// into with one fewer trailing symbol each time (spec §4.5's BSR walk
// mirrors the driver's own left-to-right construction in reverse).
func buildChildren(g *grammar.Grammar, set *bsr.Set, nt grammar.NontermID, elem bsr.Element, symbols []grammar.Symbol) ([]*Node, error) {
	if len(symbols) == 0 {
		return nil, nil
	}

	last := symbols[len(symbols)-1]

	var right *Node
	var err error

	switch last.Kind {
	case grammar.SymbolTerminal:
		right = &Node{Kind: NodeTerminal, Term: grammar.TermID(last.Ref), Start: elem.Split, End: elem.End}
	case grammar.SymbolNonterminal:
		right, err = buildCompleted(g, set, grammar.NontermID(last.Ref), elem.Split, elem.End)
	default:
		return nil, aether.FormatError(ErrNoDerivation, "forest: unexpected unsugared symbol kind %d in non-terminal %d", last.Kind, nt)
	}

	if err != nil {
		return nil, err
	}

	if len(symbols) == 1 {
		return []*Node{right}, nil
	}

	leftElems := set.LeftChildren(elem)
	if len(leftElems) == 0 {
		return nil, aether.FormatError(ErrNoDerivation, "forest: missing left-children span for non-terminal %d", nt)
	}

	leftElem := leftElems[0]
	for _, e := range leftElems[1:] {
		if e.Split < leftElem.Split {
			leftElem = e
		}
	}

	left, err := buildChildren(g, set, nt, leftElem, symbols[:len(symbols)-1])
	if err != nil {
		return nil, err
	}

	return append(left, right), nil
}
