package grammar

import "github.com/aetherlang/aether"

// Error codes for precedence-closure failures (spec §9 Open Question
// #2: "precedence closure under both + and - when they cross-
// reference cyclically"). Decision recorded in DESIGN.md: cycles are
// rejected explicitly at grammar load, not left as an implicit
// infinite loop.
const ErrPrecedenceCycle = aether.GrammarErrors + 40

// precedenceTable holds the transitive closure of the includes and
// excludes relations declared on Terminal (spec §4.3's "closure is
// computed once per grammar"). excludesClosure[T] is the full set of
// terminals that T excludes, directly or by following another
// terminal's includes edges transitively.
type precedenceTable struct {
	excludesClosure []map[TermID]bool
}

// buildPrecedenceTable computes the transitive excludes closure and
// rejects any grammar where it is not a strict partial order (spec §8
// "Precedence antisymmetry": "the excludes closure is a strict partial
// order; no cycle survives grammar load").
//
// The closure rule, from spec §4.3: T excludes U directly when U is
// listed in T.Excludes, or when T includes some V (T specializes V)
// and V excludes U. includes is therefore walked as "inherit your
// parent's exclusions", following ava12-llx's closure-by-fixed-point
// style (see grammar validation in original_source's TransmuterGrammar
// for the analogous positives/negatives closure idea, ported to
// precedence instead of lexical admission).
func buildPrecedenceTable(terms []Terminal) (*precedenceTable, error) {
	n := len(terms)
	closure := make([]map[TermID]bool, n)
	for i := range closure {
		closure[i] = map[TermID]bool{}
	}

	// Seed with direct excludes.
	for i, t := range terms {
		for _, u := range t.Excludes {
			closure[i][u] = true
		}
	}

	// Fixed-point propagation: if T includes V, T inherits everything
	// V excludes, and (symmetrically, since "T includes V" means "V
	// is more general, T wins on tie") everything that excludes V
	// also excludes T's specializations transitively. We only need
	// the first direction to implement the prune rule in lexer, so
	// propagate includes edges until no more growth occurs.
	changed := true
	for changed {
		changed = false

		for i, t := range terms {
			for _, v := range t.Includes {
				for u := range closure[v] {
					if !closure[i][u] {
						closure[i][u] = true
						changed = true
					}
				}
			}
		}
	}

	for i := range closure {
		if closure[i][TermID(i)] {
			return nil, aether.FormatError(ErrPrecedenceCycle, "precedence cycle involves terminal %q", terms[i].Name)
		}
	}

	// Antisymmetry: if i excludes j then j must not exclude i.
	for i := range closure {
		for j := range closure[i] {
			if closure[j][TermID(i)] {
				return nil, aether.FormatError(ErrPrecedenceCycle, "precedence cycle between terminals %q and %q", terms[i].Name, terms[int(j)].Name)
			}
		}
	}

	return &precedenceTable{excludesClosure: closure}, nil
}

// Excludes reports whether t's precedence closure excludes u (t wins
// over u on a longest-match tie), per spec §4.3.
func (pt *precedenceTable) Excludes(t, u TermID) bool {
	return pt.excludesClosure[t][u]
}

// Prune implements spec §4.3 step 4: given a set of terminals tied for
// longest match, drop every terminal that some other tied terminal
// excludes. This is a single pass over the already-closed relation; a
// dropped terminal's own exclusions still apply. ids is mutated: the
// surviving prefix is returned.
func (pt *precedenceTable) Prune(ids []TermID) []TermID {
	dead := make(map[TermID]bool, len(ids))
	for _, t := range ids {
		for _, u := range ids {
			if t == u {
				continue
			}

			if pt.Excludes(t, u) {
				dead[u] = true
			}
		}
	}

	out := ids[:0]
	for _, t := range ids {
		if !dead[t] {
			out = append(out, t)
		}
	}

	return out
}
