package forest

import "github.com/aetherlang/aether/grammar"

// AST is a materialized abstract syntax node: synthetic iteration/
// optional/selection non-terminals from Desugar are folded away
// (spec §4.4/§4.5), wrapper non-terminals with exactly one surviving
// child are collapsed into that child, and terminal children absent
// from their parent's ChildNames are elided as punctuation.
type AST struct {
	IsTerminal bool
	Nonterm    grammar.NontermID
	Term       grammar.TermID
	Name       string
	Start      int
	End        int

	Children []*AST
}

// BuildAST materializes the CST rooted at cst and folds it to an AST.
func BuildAST(g *grammar.Grammar, cst *Node) *AST {
	nodes := fold(g, cst)
	if len(nodes) == 0 {
		return nil
	}

	return nodes[0]
}

// fold returns the list of AST nodes cst contributes to its parent —
// usually exactly one, but synthetic non-terminals splice zero or
// more nodes directly into the parent's child list instead of
// materializing a wrapper of their own.
func fold(g *grammar.Grammar, n *Node) []*AST {
	if n.Kind == NodeTerminal {
		term := &g.Terminals[n.Term]
		return []*AST{{IsTerminal: true, Term: n.Term, Name: term.Name, Start: n.Start, End: n.End}}
	}

	nt := &g.Nonterminals[n.Nonterm]

	switch nt.Synthetic {
	case grammar.SynthIteration:
		return foldIteration(g, nt, n)
	case grammar.SynthOptional, grammar.SynthSelection:
		var out []*AST
		for _, c := range n.Children {
			out = append(out, fold(g, c)...)
		}

		return out
	default:
		return foldOrdinary(g, nt, n)
	}
}

// foldIteration flattens the right-recursive `Iter: inner Iter | ;`
// chain Desugar built into a single flat repeated-child list, always
// in source order — LeftFold ({/X} vs {X}) only tags which end a
// downstream binary-operator reduction should fold from; it never
// changes the order repetitions are exposed to an AST consumer here.
func foldIteration(g *grammar.Grammar, nt *grammar.Nonterminal, n *Node) []*AST {
	_ = nt

	if len(n.Children) == 0 {
		return nil // the empty tail alternative
	}

	recurse := n.Children[len(n.Children)-1]
	rep := n.Children[:len(n.Children)-1]

	var thisRound []*AST
	for _, c := range rep {
		thisRound = append(thisRound, fold(g, c)...)
	}

	rest := fold(g, recurse)

	return append(thisRound, rest...)
}

func foldOrdinary(g *grammar.Grammar, nt *grammar.Nonterminal, n *Node) []*AST {
	var children []*AST

	for _, c := range n.Children {
		if c.Kind == NodeTerminal {
			term := &g.Terminals[c.Term]
			if nt.ChildNames != nil && !nt.ChildNames[term.Name] {
				continue
			}
		}

		children = append(children, fold(g, c)...)
	}

	// Single-child collapsing: a non-terminal whose only surviving
	// child is itself one AST node contributes that child directly
	// rather than wrapping it, per spec §4.5's AST-collapsing rule.
	if len(children) == 1 {
		return children
	}

	return []*AST{{Nonterm: n.Nonterm, Name: nt.Name, Start: n.Start, End: n.End, Children: children}}
}
