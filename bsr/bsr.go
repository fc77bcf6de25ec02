// Package bsr implements the Binary Subtree Representation set (spec
// §3 "BSR element", §4.5): the canonical, ambiguity-preserving output
// of the EPN driver. Ported near 1:1 from original_source's
// TransmuterBSR (lib/Python/next/transmuter/front/syntactic.py),
// generalized from its per-type class keys to the grammar IR's
// integer ids.
package bsr

import "github.com/aetherlang/aether/grammar"

// Slot identifies a production alternative with a dot position
// splitting it into a left sub-sequence (the first Dot-1 symbols) and
// a right sub-sequence (the Dot-th symbol), per spec's GLOSSARY
// "Slot" entry.
type Slot struct {
	Nonterm grammar.NontermID
	Alt     int
	Dot     int
}

// Key identifies one span's EPN set, per spec §3 "the set of BSRs
// sharing (slot.production, i, j) uniquely determines the syntax
// forest rooted at that span". A completed key (Completed == true) is
// reached when a non-terminal's alternative has consumed every
// symbol; it is keyed by the non-terminal alone, the way
// TransmuterBSR keys a finished derivation by type_ rather than by
// the production's full symbol string, so every alternative that
// derives the same non-terminal over the same span shares one set.
type Key struct {
	Completed bool
	Nonterm   grammar.NontermID
	Slot      Slot
	Start     int
	End       int
}

// CompletedKey builds the Key for a finished non-terminal derivation.
func CompletedKey(nt grammar.NontermID, start, end int) Key {
	return Key{Completed: true, Nonterm: nt, Start: start, End: end}
}

// SlotKey builds the Key for an intermediate (not yet fully consumed)
// alternative span.
func SlotKey(slot Slot, start, end int) Key {
	return Key{Slot: slot, Start: start, End: end}
}

// Element is one BSR quadruple (spec §3): the slot (or completed
// non-terminal) plus the three positions i <= k <= j splitting it
// into left and right sub-derivations.
type Element struct {
	Completed bool
	Nonterm   grammar.NontermID
	Slot      Slot
	Start     int
	Split     int
	End       int
}

func (e Element) key() Key {
	if e.Completed {
		return CompletedKey(e.Nonterm, e.Start, e.End)
	}

	return SlotKey(e.Slot, e.Start, e.End)
}

// Set is the BSR set Y (spec §4.4): a map from span Key to the set of
// Elements sharing that span. Elements are deduplicated by value, so
// Add is safe to call redundantly from multiple descents of the same
// span (spec §4.4 state machine: "POPPED is permanent and
// cumulative").
type Set struct {
	byKey map[Key][]Element
	seen  map[Element]bool

	// Start, once set by the driver, names the root span of a
	// successful parse (spec §4.4 "a parse fails overall iff no BSR
	// element with (start_slot, 0, n) is in Y at the end").
	Start  Key
	HasRoot bool
}

// NewSet builds an empty BSR set.
func NewSet() *Set {
	return &Set{byKey: map[Key][]Element{}, seen: map[Element]bool{}}
}

// Add inserts e if not already present, returning whether it was new.
// A caller typically reacts only to a true return: re-deriving an
// already-recorded span is what memoization (the parser's P table)
// exists to prevent, so repeated Adds of the same Element are
// expected and harmless.
func (s *Set) Add(e Element) bool {
	if s.seen[e] {
		return false
	}

	s.seen[e] = true
	s.byKey[e.key()] = append(s.byKey[e.key()], e)
	return true
}

// At returns every Element recorded for key, or nil.
func (s *Set) At(key Key) []Element {
	return s.byKey[key]
}

// Completed reports the distinct end positions recorded for a
// non-terminal's derivation starting at start — the fan-out the
// parser's P table exposes to waiting continuations.
func (s *Set) Completed(nt grammar.NontermID, start int) []int {
	var ends []int
	seen := map[int]bool{}

	for key, elems := range s.byKey {
		if !key.Completed || key.Nonterm != nt || key.Start != start || len(elems) == 0 {
			continue
		}

		if !seen[key.End] {
			seen[key.End] = true
			ends = append(ends, key.End)
		}
	}

	return ends
}

// LeftChildren returns the EPNs immediately to the left of parent's
// split point: the span covering the first Dot-1 symbols of parent's
// alternative. Ported from TransmuterBSR.left_children.
func (s *Set) LeftChildren(parent Element) []Element {
	if parent.Completed || parent.Slot.Dot <= 1 {
		return nil
	}

	key := SlotKey(Slot{parent.Slot.Nonterm, parent.Slot.Alt, parent.Slot.Dot - 1}, parent.Start, parent.Split)
	return s.byKey[key]
}

// RightChildren returns the EPNs spanning parent's final symbol, when
// that symbol is itself a non-terminal (terminals are leaves with no
// further BSR span). lastSymbolIsNonterminal must report whether
// parent.Slot's dot-th symbol was a non-terminal reference, and
// lastSymbolRef its id; the caller looks both up in the grammar.
func (s *Set) RightChildren(parent Element, lastSymbolIsNonterminal bool, lastSymbolRef grammar.NontermID) []Element {
	if parent.Completed || !lastSymbolIsNonterminal || parent.Split == parent.End {
		return nil
	}

	key := CompletedKey(lastSymbolRef, parent.Split, parent.End)
	return s.byKey[key]
}
