package nfa

// Run simulates nfa over text starting at byte offset start, per the
// classical subset-construction-walked-lazily algorithm of spec
// §4.2: maintain a frontier of active states, consume one byte at a
// time, epsilon-close, and record an accept whenever the frontier
// contains the accept state. Longest match wins: simulation continues
// until the frontier empties, and the last position at which the
// accept state was active is returned.
//
// Run is deterministic and side-effect free: repeated calls with the
// same (nfa, text, start) return identical results, as required by
// spec §4.2's determinism note.
func Run(n *NFA, text []byte, start int) (matched bool, end int) {
	cur := newStateSet(len(n.states))
	next := newStateSet(len(n.states))
	scratch := make([]int, 0, len(n.states))

	scratch = epsilonClosure(n, []int{n.start}, cur, scratch)
	if cur.has(n.accept) {
		matched, end = true, start
	}

	pos := start
	for !cur.empty() && pos < len(text) {
		c := text[pos]
		next.clear()
		scratch = scratch[:0]

		cur.forEach(len(n.states), func(i int) {
			for _, e := range n.states[i].edges {
				if c >= e.lo && c <= e.hi {
					scratch = append(scratch, e.to)
				}
			}
		})

		scratch = epsilonClosure(n, scratch, next, scratch)
		pos++

		cur, next = next, cur
		if cur.has(n.accept) {
			matched, end = true, pos
		}
	}

	return matched, end
}

// epsilonClosure computes the epsilon-closure of seeds into dst
// (which must start cleared by the caller for a fresh computation;
// Run relies on next.clear() above). scratch is a reusable stack,
// returned so callers can keep reusing its backing array.
func epsilonClosure(n *NFA, seeds []int, dst stateSet, scratch []int) []int {
	stack := scratch[:0]
	for _, s := range seeds {
		if !dst.has(s) {
			dst.add(s)
			stack = append(stack, s)
		}
	}

	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, t := range n.states[s].eps {
			if !dst.has(t) {
				dst.add(t)
				stack = append(stack, t)
			}
		}
	}

	return stack
}
