package grammar

import "fmt"

// Desugar rewrites every iteration ({X}/{/X}), optional ([X]/[/X]) and
// nested-selection symbol into a reference to a freshly synthesized
// non-terminal appended to g.Nonterminals, so that the EPN driver only
// ever needs to handle plain terminal/non-terminal references (spec
// §4.4: "Iteration symbols ... desugar into right-recursive
// alternatives that the driver handles uniformly. Optional ... desugar
// to an alternative with and one without X").
//
// Grounded on original_source's semantic.py fold_iteration/
// fold_selection/fold_sequence, which perform the equivalent rewrite
// while building the grammar IR from parsed meta-language syntax; here
// it runs as an IR-to-IR pass instead, so it works equally for
// grammars assembled directly in Go (as the test suites in this
// module do) and for grammars built by langdef from parsed source.
// Call it once, after a Grammar's author-written Nonterminals are
// fully populated and before Finish.
func Desugar(g *Grammar) {
	n := len(g.Nonterminals)
	for i := 0; i < n; i++ {
		for j := range g.Nonterminals[i].Alternatives {
			g.Nonterminals[i].Alternatives[j].Symbols = desugarSeq(g, g.Nonterminals[i].Alternatives[j].Symbols)
		}
	}
}

func desugarSeq(g *Grammar, symbols []Symbol) []Symbol {
	out := make([]Symbol, len(symbols))
	for i, s := range symbols {
		out[i] = desugarSymbol(g, s)
	}

	return out
}

func desugarSymbol(g *Grammar, s Symbol) Symbol {
	switch s.Kind {
	case SymbolIteration:
		nt := synthIteration(g, desugarSeq(g, s.Inner), s.LeftFold)
		return Symbol{Kind: SymbolNonterminal, Ref: int(nt), Guard: s.Guard, SubCond: s.SubCond}

	case SymbolOptional:
		nt := synthOptional(g, desugarSeq(g, s.Inner), s.LeftFold)
		return Symbol{Kind: SymbolNonterminal, Ref: int(nt), Guard: s.Guard, SubCond: s.SubCond}

	case SymbolSelection:
		nt := synthSelection(g, s.Alts)
		return Symbol{Kind: SymbolNonterminal, Ref: int(nt), Guard: s.Guard, SubCond: s.SubCond}

	default:
		return s
	}
}

func addSynth(g *Grammar, name string, kind SynthKind, leftFold bool, alts []Alternative) NontermID {
	id := NontermID(len(g.Nonterminals))
	g.Nonterminals = append(g.Nonterminals, Nonterminal{
		Name:         name,
		Alternatives: alts,
		Synthetic:    kind,
		LeftFold:     leftFold,
	})

	return id
}

// synthIteration builds `Iter: inner Iter | ;` — right-recursive,
// zero or more repetitions of inner. LeftFold is recorded on the
// synthesized non-terminal only; the derivation shape is identical
// either way, and forest construction flattens the repetitions in
// source order without consulting it.
func synthIteration(g *Grammar, inner []Symbol, leftFold bool) NontermID {
	id := NontermID(len(g.Nonterminals))
	name := fmt.Sprintf("$iter%d", id)

	recur := append(append([]Symbol{}, inner...), Symbol{Kind: SymbolNonterminal, Ref: int(id)})
	alts := []Alternative{
		{Symbols: recur},
		{Symbols: nil},
	}

	return addSynth(g, name, SynthIteration, leftFold, alts)
}

// synthOptional builds `Opt: inner | ;`.
func synthOptional(g *Grammar, inner []Symbol, leftFold bool) NontermID {
	id := NontermID(len(g.Nonterminals))
	name := fmt.Sprintf("$opt%d", id)

	alts := []Alternative{
		{Symbols: inner},
		{Symbols: nil},
	}

	return addSynth(g, name, SynthOptional, leftFold, alts)
}

// synthSelection builds a transparent non-terminal whose alternatives
// are the selection's own, desugared. Forest construction splices its
// chosen children directly into the enclosing production instead of
// materializing a node for it, per its SynthSelection tag.
func synthSelection(g *Grammar, alts []Alternative) NontermID {
	id := NontermID(len(g.Nonterminals))
	name := fmt.Sprintf("$sel%d", id)

	out := make([]Alternative, len(alts))
	for i, a := range alts {
		out[i] = Alternative{
			Symbols:   desugarSeq(g, a.Symbols),
			Condition: a.Condition,
			Ordered:   a.Ordered,
			SubCond:   a.SubCond,
		}
	}

	return addSynth(g, name, SynthSelection, false, out)
}
