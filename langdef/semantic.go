// This file implements the AST-to-grammar.Grammar pass: spec §6's
// "load(document) -> Grammar". Grounded on
// original_source/src/transmuter/front/aether/semantic.py's two-phase
// shape — a name-declaration pass ahead of a body-resolution pass, so
// forward references (a terminal's precedence specifier naming a
// terminal declared later in the file, a production referencing a
// non-terminal not yet seen) resolve correctly regardless of
// declaration order.
package langdef

import (
	"github.com/aetherlang/aether"
	"github.com/aetherlang/aether/condition"
	"github.com/aetherlang/aether/forest"
	"github.com/aetherlang/aether/grammar"
	"github.com/aetherlang/aether/nfa"
	"github.com/aetherlang/aether/source"
)

type nameKind int

const (
	kindUnknown nameKind = iota
	kindTerminal
	kindNonterminal
)

type builder struct {
	g        *grammar.Grammar
	src      *source.Text
	universe *condition.Universe

	kindOf    map[string]nameKind
	termID    map[string]grammar.TermID
	nontermID map[string]grammar.NontermID
	literals  map[string]grammar.TermID
}

// Load parses content as an Aether grammar document and builds the
// runtime grammar.Grammar it describes, ready for grammar.Desugar-less
// use (Load calls Desugar and Finish itself, spec §6's load contract
// returning an immediately session-openable Grammar).
func Load(content []byte, filename string) (*grammar.Grammar, error) {
	root, src, err := Parse(content, filename)
	if err != nil {
		return nil, err
	}

	productions := asList(root, "File")

	names := append([]string{"lexical", "syntactic"}, collectConditionNames(productions, src)...)
	names = dedupeStrings(names)

	universe, err := condition.NewUniverse(names)
	if err != nil {
		return nil, err
	}

	b := &builder{
		g:         &grammar.Grammar{Conditions: universe},
		src:       src,
		universe:  universe,
		kindOf:    map[string]nameKind{},
		termID:    map[string]grammar.TermID{},
		nontermID: map[string]grammar.NontermID{},
		literals:  map[string]grammar.TermID{},
	}

	for _, p := range productions {
		b.declare(p)
	}

	for _, p := range productions {
		if err := b.build(p); err != nil {
			return nil, err
		}
	}

	grammar.Desugar(b.g)

	if err := b.g.Finish(); err != nil {
		return nil, err
	}

	return b.g, nil
}

// productionName and productionBody read Production's two fixed
// children (spec: Production always keeps exactly 5 children — ident,
// Specifiers, Guard, SubCond, Body — so it never single-child
// collapses and these indices are stable).
func productionName(p *forest.AST, src *source.Text) string { return text(p.Children[0], src) }
func productionBody(p *forest.AST) *forest.AST              { return p.Children[4] }

// declare registers a production's name and kind (terminal, if its
// body is a backtick-delimited regex literal; non-terminal otherwise)
// and allocates its slot, without resolving the body yet.
func (b *builder) declare(p *forest.AST) {
	name := productionName(p, b.src)
	body := productionBody(p)

	if isLeaf(body, "regexlit") {
		b.kindOf[name] = kindTerminal
		b.termID[name] = grammar.TermID(len(b.g.Terminals))
		b.g.Terminals = append(b.g.Terminals, grammar.Terminal{Name: name})
		return
	}

	b.kindOf[name] = kindNonterminal
	b.nontermID[name] = grammar.NontermID(len(b.g.Nonterminals))
	b.g.Nonterminals = append(b.g.Nonterminals, grammar.Nonterminal{Name: name})
}

func (b *builder) build(p *forest.AST) error {
	name := productionName(p, b.src)
	specs := specifierList(p.Children[1], b.src)
	guardNode := guardCond(p.Children[2])
	subcond := subCondTag(p.Children[3], b.src)
	body := productionBody(p)

	var guardExpr condition.Expr
	if guardNode != nil {
		expr, err := b.parseCondNode(guardNode)
		if err != nil {
			return err
		}

		guardExpr = expr
	}

	subc := grammar.SubConditionNone
	switch subcond {
	case "":
	case "lexical":
		subc = grammar.SubConditionLexical
	case "syntactic":
		subc = grammar.SubConditionSyntactic
	default:
		return aether.FormatError(ErrUnknownSubCondition, "langdef: production %q: unknown sub-condition @%s", name, subcond)
	}

	if b.kindOf[name] == kindTerminal {
		return b.buildTerminal(name, specs, guardExpr, body)
	}

	return b.buildNonterminal(name, specs, guardExpr, subc, body)
}

func (b *builder) buildTerminal(name string, specs []specifier, guardExpr condition.Expr, body *forest.AST) error {
	id := b.termID[name]
	raw := text(body, b.src)
	pattern := raw[1 : len(raw)-1] // strip the delimiting backticks

	n, err := nfa.CompilePattern(pattern)
	if err != nil {
		return aether.FormatError(ErrBadPattern, "langdef: terminal %q: %v", name, err)
	}

	t := &b.g.Terminals[id]
	t.NFA = n
	t.Condition = guardExpr

	for _, s := range specs {
		switch s.op {
		case "":
			if s.name != "ignore" {
				return aether.FormatError(ErrUnknownSpecifier, "langdef: terminal %q: unknown specifier %q", name, s.name)
			}

			t.Ignorable = true

		case "+":
			// T(+Name) specializes Name and wins over it on a
			// longest-match tie: Name goes directly into T's own
			// Excludes (the precedence closure's seed), and into T's
			// Includes too, so T also inherits whatever Name itself
			// excludes transitively (spec §4.3 step 4).
			other, ok := b.termID[s.name]
			if !ok {
				return aether.FormatError(ErrUnknownReference, "langdef: terminal %q: +%s references an undeclared terminal", name, s.name)
			}

			t.Excludes = append(t.Excludes, other)
			t.Includes = append(t.Includes, other)

		case "-":
			// T(-Name) generalizes Name and loses to it on a tie: T's
			// own id goes into Name's Excludes, the mirror image of
			// "+" above.
			other, ok := b.termID[s.name]
			if !ok {
				return aether.FormatError(ErrUnknownReference, "langdef: terminal %q: -%s references an undeclared terminal", name, s.name)
			}

			b.g.Terminals[other].Excludes = append(b.g.Terminals[other].Excludes, id)
		}
	}

	return nil
}

func (b *builder) buildNonterminal(name string, specs []specifier, guardExpr condition.Expr, subc grammar.SubCondition, body *forest.AST) error {
	id := b.nontermID[name]

	alts, ordered, err := b.convertAlternation(body)
	if err != nil {
		return err
	}

	for i := range alts {
		alts[i].Ordered = ordered
		alts[i].SubCond = subc
		alts[i].Condition = guardExpr
	}

	nt := &b.g.Nonterminals[id]
	nt.Alternatives = alts

	for _, s := range specs {
		if s.op == "" && s.name == "start" {
			nt.IsStart = true
			continue
		}

		return aether.FormatError(ErrUnknownSpecifier, "langdef: non-terminal %q: specifier %q%q not valid here", name, s.op, s.name)
	}

	return nil
}

// convertAlternation converts an EBNF Alternation node — or whatever a
// single-alternative body collapsed to, since Alternation itself
// single-child-collapses away when there is no "|"/"/" at all — into
// the target grammar's alternatives plus whether they were separated
// by "/" (ordered) rather than "|" (ambiguous). The meta-language
// surface never mixes the two separators within one alternation.
func (b *builder) convertAlternation(n *forest.AST) ([]grammar.Alternative, bool, error) {
	if n.IsTerminal || n.Name != "Alternation" {
		syms, err := b.convertSequence(n)
		if err != nil {
			return nil, false, err
		}

		return []grammar.Alternative{{Symbols: syms}}, false, nil
	}

	kids := n.Children
	if len(kids) == 0 {
		return nil, false, aether.FormatError(ErrMalformed, "langdef: empty alternation")
	}

	seqNodes := []*forest.AST{kids[0]}
	ordered := false

	for i := 1; i+1 < len(kids); i += 2 {
		if isLeaf(kids[i], "/") {
			ordered = true
		}

		seqNodes = append(seqNodes, kids[i+1])
	}

	alts := make([]grammar.Alternative, 0, len(seqNodes))
	for _, seqNode := range seqNodes {
		syms, err := b.convertSequence(seqNode)
		if err != nil {
			return nil, false, err
		}

		alts = append(alts, grammar.Alternative{Symbols: syms})
	}

	return alts, ordered, nil
}

// convertSequence converts a Sequence node — or a single Element it
// collapsed to — into a symbol list.
func (b *builder) convertSequence(n *forest.AST) ([]grammar.Symbol, error) {
	items := asList(n, "Sequence")
	syms := make([]grammar.Symbol, 0, len(items))

	for _, item := range items {
		s, err := b.convertElement(item)
		if err != nil {
			return nil, err
		}

		syms = append(syms, s)
	}

	return syms, nil
}

func (b *builder) convertElement(n *forest.AST) (grammar.Symbol, error) {
	if n.IsTerminal {
		switch n.Name {
		case "qstring":
			id, err := b.internLiteral(text(n, b.src))
			if err != nil {
				return grammar.Symbol{}, err
			}

			return grammar.Symbol{Kind: grammar.SymbolTerminal, Ref: int(id)}, nil

		case "ident":
			return b.resolveIdent(text(n, b.src))

		default:
			return grammar.Symbol{}, aether.FormatError(ErrMalformed, "langdef: unexpected %q in sequence", n.Name)
		}
	}

	switch n.Name {
	case "Iteration":
		leftFold, inner, err := b.convertWrapped(n.Children)
		if err != nil {
			return grammar.Symbol{}, err
		}

		return grammar.Symbol{Kind: grammar.SymbolIteration, LeftFold: leftFold, Inner: inner}, nil

	case "Optional":
		leftFold, inner, err := b.convertWrapped(n.Children)
		if err != nil {
			return grammar.Symbol{}, err
		}

		return grammar.Symbol{Kind: grammar.SymbolOptional, LeftFold: leftFold, Inner: inner}, nil

	default:
		return grammar.Symbol{}, aether.FormatError(ErrMalformed, "langdef: unexpected node %q in sequence", n.Name)
	}
}

// convertWrapped strips an Iteration/Optional symbol's brackets and
// optional leading "/" (the left-fold marker) and converts the
// remaining single inner sequence.
func (b *builder) convertWrapped(children []*forest.AST) (bool, []grammar.Symbol, error) {
	kids := withoutPunct(children)

	leftFold := false
	if len(kids) > 0 && isLeaf(kids[0], "/") {
		leftFold = true
		kids = kids[1:]
	}

	if len(kids) != 1 {
		return false, nil, aether.FormatError(ErrMalformed, "langdef: malformed iteration/optional body")
	}

	inner, err := b.convertSequence(kids[0])
	return leftFold, inner, err
}

func (b *builder) resolveIdent(name string) (grammar.Symbol, error) {
	switch b.kindOf[name] {
	case kindTerminal:
		return grammar.Symbol{Kind: grammar.SymbolTerminal, Ref: int(b.termID[name])}, nil
	case kindNonterminal:
		return grammar.Symbol{Kind: grammar.SymbolNonterminal, Ref: int(b.nontermID[name])}, nil
	default:
		return grammar.Symbol{}, aether.FormatError(ErrUnknownReference, "langdef: reference to undeclared production %q", name)
	}
}

// internLiteral materializes (or reuses) an anonymous terminal whose
// pattern matches exactly the unescaped bytes of a quoted literal used
// inline in an EBNF body, e.g. "a" in `S: "a" {/"a"} ;`.
func (b *builder) internLiteral(raw string) (grammar.TermID, error) {
	if id, ok := b.literals[raw]; ok {
		return id, nil
	}

	pattern := escapeLiteralForRegex(unescapeQString(raw))

	n, err := nfa.CompilePattern(pattern)
	if err != nil {
		return 0, aether.FormatError(ErrBadPattern, "langdef: literal %s: %v", raw, err)
	}

	id := grammar.TermID(len(b.g.Terminals))
	b.g.Terminals = append(b.g.Terminals, grammar.Terminal{Name: raw, NFA: n})
	b.literals[raw] = id
	return id, nil
}

// specifier is one parsed entry of a production's "(...)" specifier
// list: op is "+", "-" or "" (a bare ignore/start keyword).
type specifier struct {
	op   string
	name string
}

// specifierList reads a Production's Specifiers child (never nil —
// the empty "()" and absent cases both produce an explicit, possibly
// childless, node) into a flat specifier list, skipping the
// delimiting parentheses.
func specifierList(n *forest.AST, src *source.Text) []specifier {
	kids := withoutPunct(asList(n, "Specifiers"))

	specs := make([]specifier, 0, len(kids))
	for _, k := range kids {
		if k.IsTerminal {
			specs = append(specs, specifier{name: text(k, src)})
			continue
		}

		// A "Specifier" wrapper: [op-leaf, ident-leaf].
		specs = append(specs, specifier{op: text(k.Children[0], src), name: text(k.Children[1], src)})
	}

	return specs
}

// guardCond reads a Production's Guard child, returning the CondExpr
// node if a guard is present or nil if the optional "/Cond" was
// absent. Guard never collapses (its fold result is 0 children when
// absent, 2 — the "/" marker plus the condition — when present).
func guardCond(n *forest.AST) *forest.AST {
	if len(n.Children) == 0 {
		return nil
	}

	return n.Children[len(n.Children)-1]
}

// subCondTag reads a Production's SubCond child the same way guardCond
// reads Guard, returning "" when no "@tag" was written.
func subCondTag(n *forest.AST, src *source.Text) string {
	if len(n.Children) == 0 {
		return ""
	}

	return text(n.Children[len(n.Children)-1], src)
}

// parseCondNode converts a CondExpr/CondAnd/CondAtom subtree — or
// whatever it collapsed to, down to a bare identifier leaf — into a
// condition.Expr, mirroring condition.Parse's grammar directly against
// the bootstrap AST instead of round-tripping through text.
func (b *builder) parseCondNode(n *forest.AST) (condition.Expr, error) {
	if n.IsTerminal {
		return condition.Resolve(b.universe, text(n, b.src))
	}

	switch n.Name {
	case "CondExpr":
		return b.parseCondChain(n.Children, "||")
	case "CondAnd":
		return b.parseCondChain(n.Children, "&&")
	case "CondAtom":
		return b.parseCondAtom(n)
	default:
		return nil, aether.FormatError(ErrMalformed, "langdef: unexpected node %q in condition", n.Name)
	}
}

func (b *builder) parseCondChain(children []*forest.AST, op string) (condition.Expr, error) {
	var operands []*forest.AST
	for _, c := range children {
		if isLeaf(c, op) {
			continue
		}

		operands = append(operands, c)
	}

	exprs := make([]condition.Expr, 0, len(operands))
	for _, o := range operands {
		e, err := b.parseCondNode(o)
		if err != nil {
			return nil, err
		}

		exprs = append(exprs, e)
	}

	if len(exprs) == 1 {
		return exprs[0], nil
	}

	if op == "||" {
		return condition.Or{Xs: exprs}, nil
	}

	return condition.And{Xs: exprs}, nil
}

func (b *builder) parseCondAtom(n *forest.AST) (condition.Expr, error) {
	kids := n.Children
	if len(kids) > 0 && isLeaf(kids[0], "!") {
		inner, err := b.parseCondNode(kids[1])
		if err != nil {
			return nil, err
		}

		return condition.Not{X: inner}, nil
	}

	kids = withoutPunct(kids)
	if len(kids) != 1 {
		return nil, aether.FormatError(ErrMalformed, "langdef: malformed condition")
	}

	return b.parseCondNode(kids[0])
}

// collectConditionNames walks every production's guard subtree and
// returns every identifier referenced there, in first-use order. A
// guard subtree's only identifier leaves are condition names (the
// grammar it parses has no other use for "ident" inside CondExpr), so
// no filtering beyond node-kind is needed.
func collectConditionNames(productions []*forest.AST, src *source.Text) []string {
	var names []string
	seen := map[string]bool{}

	for _, p := range productions {
		guard := guardCond(p.Children[2])
		if guard == nil {
			continue
		}

		collectIdents(guard, src, seen, &names)
	}

	return names
}

func collectIdents(n *forest.AST, src *source.Text, seen map[string]bool, names *[]string) {
	if n.IsTerminal {
		if n.Name == "ident" {
			name := text(n, src)
			if !seen[name] {
				seen[name] = true
				*names = append(*names, name)
			}
		}

		return
	}

	for _, c := range n.Children {
		collectIdents(c, src, seen, names)
	}
}

func dedupeStrings(xs []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(xs))

	for _, x := range xs {
		if !seen[x] {
			seen[x] = true
			out = append(out, x)
		}
	}

	return out
}

// unescapeQString strips a quoted literal's surrounding quotes and
// resolves its backslash escapes: any "\x" stands for a literal x,
// matching the escape grammar the qstring terminal's own pattern
// admits.
func unescapeQString(raw string) string {
	inner := raw[1 : len(raw)-1]
	out := make([]byte, 0, len(inner))

	for i := 0; i < len(inner); i++ {
		if inner[i] == '\\' && i+1 < len(inner) {
			i++
			out = append(out, inner[i])
			continue
		}

		out = append(out, inner[i])
	}

	return string(out)
}

// escapeLiteralForRegex renders raw bytes as an nfa.CompilePattern
// pattern matching exactly those bytes: every non-alphanumeric byte is
// backslash-escaped, relying on the restricted-ERE rule that any
// escaped character stands for itself.
func escapeLiteralForRegex(raw string) string {
	out := make([]byte, 0, len(raw)*2)

	for i := 0; i < len(raw); i++ {
		c := raw[i]
		alnum := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
		if !alnum {
			out = append(out, '\\')
		}

		out = append(out, c)
	}

	return string(out)
}
