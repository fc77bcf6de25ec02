package forest

import "github.com/aetherlang/aether/bsr"
import "github.com/aetherlang/aether/grammar"

// chooseAlt picks, among nt's alternatives, the one that reaches
// (start, end) per spec §4.5 rule 1: the earliest-listed alternative
// that has any BSR at the span wins, whether the list was separated
// by "/" (ordered, one true winner) or "|" (ambiguous — this engine
// still has to hand back a single tree for CST/AST materialization,
// so it keeps the same "earliest listed" rule uniformly; the full set
// of competing alternatives remains inspectable directly on the BSR
// set for a caller that needs every parse, not just the canonical
// one). When the winning alternative itself is ambiguous between two
// splits — the case a single left-recursive alternative produces,
// spec §8 scenario 2 — the largest split is kept: the final symbol
// then covers the shortest suffix, which is the left-associative
// derivation.
func chooseAlt(g *grammar.Grammar, set *bsr.Set, nt grammar.NontermID, start, end int) (bsr.Element, bool) {
	alts := g.Nonterminals[nt].Alternatives

	for altIdx, alt := range alts {
		dot := len(alt.Symbols)

		if dot == 0 {
			if start == end {
				return bsr.Element{Nonterm: nt, Slot: bsr.Slot{Nonterm: nt, Alt: altIdx, Dot: 0}, Start: start, Split: start, End: end}, true
			}

			continue
		}

		elems := set.At(bsr.SlotKey(bsr.Slot{Nonterm: nt, Alt: altIdx, Dot: dot}, start, end))
		if len(elems) == 0 {
			continue
		}

		best := elems[0]
		for _, e := range elems[1:] {
			if e.Split > best.Split {
				best = e
			}
		}

		return best, true
	}

	return bsr.Element{}, false
}
