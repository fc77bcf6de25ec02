package grammar

import "github.com/aetherlang/aether"

// Error codes for grammar-load errors (spec §7 "GrammarLoadError").
const (
	ErrUndefinedReference = aether.GrammarErrors + iota
	ErrMultipleStarts
	ErrNoStart
	ErrDanglingGuard
)

// validate performs the grammar-load checks enumerated in spec §7:
// undefined terminal/non-terminal reference, multiple start symbols.
// Cyclic precedence is caught afterwards by buildPrecedenceTable, which
// Finish also invokes; malformed regex is caught before a Grammar is
// built, by nfa.Parse when each terminal's NFA is compiled.
func validate(g *Grammar) error {
	starts := 0
	for _, nt := range g.Nonterminals {
		if nt.IsStart {
			starts++
		}
	}

	if starts > 1 {
		return aether.FormatError(ErrMultipleStarts, "grammar declares %d start non-terminals, expected exactly one", starts)
	}

	if starts == 0 {
		return aether.FormatError(ErrNoStart, "grammar declares no start non-terminal")
	}

	for _, nt := range g.Nonterminals {
		for _, alt := range nt.Alternatives {
			if err := validateSymbols(g, alt.Symbols); err != nil {
				return err
			}
		}
	}

	return nil
}

func validateSymbols(g *Grammar, symbols []Symbol) error {
	for _, s := range symbols {
		switch s.Kind {
		case SymbolTerminal:
			if s.Ref < 0 || s.Ref >= len(g.Terminals) {
				return aether.FormatError(ErrUndefinedReference, "reference to undefined terminal id %d", s.Ref)
			}
		case SymbolNonterminal:
			if s.Ref < 0 || s.Ref >= len(g.Nonterminals) {
				return aether.FormatError(ErrUndefinedReference, "reference to undefined non-terminal id %d", s.Ref)
			}
		case SymbolIteration, SymbolOptional:
			if err := validateSymbols(g, s.Inner); err != nil {
				return err
			}
		case SymbolSelection:
			for _, alt := range s.Alts {
				if err := validateSymbols(g, alt.Symbols); err != nil {
					return err
				}
			}
		}
	}

	return nil
}
