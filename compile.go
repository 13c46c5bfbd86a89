package jsontemplate

import (
	"strings"
	"unicode"
)

type frameKind int

const (
	rootFrame frameKind = iota
	sectionFrame
	repeatedFrame
	predicateFrame
	defineFrame
)

func (k frameKind) String() string {
	switch k {
	case sectionFrame:
		return "section"
	case repeatedFrame:
		return "repeated section"
	case predicateFrame:
		return "predicate"
	case defineFrame:
		return "define"
	default:
		return "template"
	}
}

// openFrame is a block whose .end has not been seen yet. target points at
// the statement list currently being filled: the body, an .or clause, or the
// .alternates with clause.
type openFrame struct {
	kind       frameKind
	name       string
	pos        Pos
	target     *[]Node
	section    *SectionNode
	repeated   *RepeatedNode
	predicate  *PredicateNode
	define     []Node
	sawOr      bool
	sawAltWith bool
}

// parser builds the node tree with an explicit stack of open frames, so an
// unclosed block is reported at the position that opened it.
type parser struct {
	cfg     *config
	root    []Node
	stack   []*openFrame
	defines map[string][]Node
	deflt   *FormatterCall
}

func parse(tokens []token, cfg *config) ([]Node, map[string][]Node, error) {
	p := &parser{cfg: cfg, defines: make(map[string][]Node)}
	p.stack = []*openFrame{{kind: rootFrame, target: &p.root}}
	for _, tok := range tokens {
		var err error
		if tok.kind == literalToken {
			p.literal(tok.pos, tok.text)
		} else {
			err = p.directive(tok)
		}
		if err != nil {
			return nil, nil, err
		}
	}
	if top := p.top(); top.kind != rootFrame {
		return nil, nil, compileErrorf(top.pos, "unclosed %s %q", top.kind, top.name)
	}
	return p.root, p.defines, nil
}

func (p *parser) top() *openFrame {
	return p.stack[len(p.stack)-1]
}

func (p *parser) add(n Node) {
	target := p.top().target
	*target = append(*target, n)
}

func (p *parser) literal(pos Pos, text string) {
	if text == "" {
		return
	}
	target := p.top().target
	if n := len(*target); n > 0 {
		if prev, ok := (*target)[n-1].(*LiteralNode); ok {
			prev.Text += text
			return
		}
	}
	p.add(&LiteralNode{Pos: pos, Text: text})
}

func (p *parser) directive(tok token) error {
	text := tok.text
	if strings.HasPrefix(text, "#") {
		return nil
	}
	if body, ok := strings.CutPrefix(text, "."); ok {
		return p.statement(tok.pos, body)
	}
	return p.substitution(tok.pos, text)
}

func (p *parser) statement(pos Pos, body string) error {
	switch body {
	case "space":
		p.literal(pos, " ")
		return nil
	case "tab":
		p.literal(pos, "\t")
		return nil
	case "newline":
		p.literal(pos, "\n")
		return nil
	case "meta-left":
		p.literal(pos, p.cfg.metaLeft)
		return nil
	case "meta-right":
		p.literal(pos, p.cfg.metaRight)
		return nil
	case "or":
		return p.or(pos)
	case "alternates with":
		return p.alternatesWith(pos)
	}
	word, rest, _ := strings.Cut(body, " ")
	rest = strings.TrimSpace(rest)
	switch word {
	case "end":
		return p.end(pos, rest)
	case "section":
		return p.openSection(pos, rest)
	case "repeated":
		name, ok := strings.CutPrefix(rest, "section ")
		if !ok {
			return compileErrorf(pos, "expected .repeated section NAME, got %q", "."+body)
		}
		return p.openRepeated(pos, strings.TrimSpace(name))
	case "if":
		return p.openPredicate(pos, rest)
	case "or":
		return p.orPredicate(pos, rest)
	case "define":
		return p.openDefine(pos, rest)
	case "template":
		if !isName(rest) {
			return compileErrorf(pos, "bad template name %q", rest)
		}
		p.add(&TemplateRefNode{Pos: pos, Name: rest})
		return nil
	}
	if name, ok := strings.CutSuffix(body, "?"); ok && isName(name) {
		return p.openPredicate(pos, name)
	}
	return compileErrorf(pos, "unknown directive %q", p.cfg.metaLeft+"."+body+p.cfg.metaRight)
}

func (p *parser) substitution(pos Pos, text string) error {
	name, calls, err := p.nameAndFormatters(pos, text)
	if err != nil {
		return err
	}
	if len(calls) == 0 {
		deflt, err := p.defaultFormatter(pos, name)
		if err != nil {
			return err
		}
		calls = []FormatterCall{*deflt}
	}
	p.add(&SubstitutionNode{Pos: pos, Name: name, Formatters: calls})
	return nil
}

func (p *parser) defaultFormatter(pos Pos, name string) (*FormatterCall, error) {
	if p.deflt != nil {
		return p.deflt, nil
	}
	if p.cfg.defaultFormatter == "none" {
		return nil, compileErrorf(pos, "substitution %q names no formatter and there is no default formatter", name)
	}
	call, err := p.resolveFormatter(p.cfg.defaultFormatter)
	if err != nil {
		return nil, err
	}
	p.deflt = &call
	return p.deflt, nil
}

// nameAndFormatters splits "name|f1|f2 arg" on the format character and
// resolves each formatter.
func (p *parser) nameAndFormatters(pos Pos, expr string) (string, []FormatterCall, error) {
	parts := strings.Split(expr, p.cfg.formatChar)
	name := strings.TrimSpace(parts[0])
	if !isName(name) {
		return "", nil, compileErrorf(pos, "bad variable name %q", name)
	}
	var calls []FormatterCall
	for _, part := range parts[1:] {
		fname := strings.TrimSpace(part)
		if fname == "" {
			return "", nil, compileErrorf(pos, "empty formatter name after %q", name)
		}
		call, err := p.resolveFormatter(fname)
		if err != nil {
			return "", nil, err
		}
		calls = append(calls, call)
	}
	return name, calls, nil
}

func (p *parser) resolveFormatter(name string) (FormatterCall, error) {
	fn, args, ok := p.cfg.formatters.Lookup(name)
	if !ok {
		return FormatterCall{}, &FormatterNotFoundError{Name: name}
	}
	return FormatterCall{Name: name, Args: args, Func: fn}, nil
}

func (p *parser) openSection(pos Pos, expr string) error {
	name, pre, err := p.nameAndFormatters(pos, expr)
	if err != nil {
		return err
	}
	n := &SectionNode{Pos: pos, Name: name, PreFormatters: pre}
	p.add(n)
	p.stack = append(p.stack, &openFrame{kind: sectionFrame, name: name, pos: pos, target: &n.Body, section: n})
	return nil
}

func (p *parser) openRepeated(pos Pos, expr string) error {
	name, pre, err := p.nameAndFormatters(pos, expr)
	if err != nil {
		return err
	}
	n := &RepeatedNode{Pos: pos, Name: name, PreFormatters: pre}
	p.add(n)
	p.stack = append(p.stack, &openFrame{kind: repeatedFrame, name: name, pos: pos, target: &n.Body, repeated: n})
	return nil
}

func (p *parser) openPredicate(pos Pos, expr string) error {
	clause, err := p.predicateClause(pos, expr)
	if err != nil {
		return err
	}
	n := &PredicateNode{Pos: pos, Clauses: []PredicateClause{clause}}
	p.add(n)
	p.stack = append(p.stack, &openFrame{kind: predicateFrame, name: clause.Name, pos: pos, target: &n.Clauses[0].Body, predicate: n})
	return nil
}

// predicateClause parses "[not] NAME [args...]". A registered predicate is
// applied to the cursor; any other single name tests that variable.
func (p *parser) predicateClause(pos Pos, expr string) (PredicateClause, error) {
	clause := PredicateClause{Pos: pos}
	if rest, ok := strings.CutPrefix(expr, "not "); ok {
		clause.Negated = true
		expr = strings.TrimSpace(rest)
	}
	expr = strings.TrimSuffix(expr, "?")
	if expr == "" {
		return clause, compileErrorf(pos, "predicate name required")
	}
	if fn, args, ok := p.cfg.predicates.Lookup(expr); ok {
		clause.Name, _, _ = strings.Cut(expr, " ")
		clause.Test = fn
		clause.Args = args
		return clause, nil
	}
	if !isName(expr) {
		first, _, _ := strings.Cut(expr, " ")
		return clause, &PredicateNotFoundError{Name: first}
	}
	clause.Name = expr
	return clause, nil
}

func (p *parser) or(pos Pos) error {
	f := p.top()
	if f.sawOr {
		return compileErrorf(pos, "duplicate .or in %s %q", f.kind, f.name)
	}
	switch f.kind {
	case sectionFrame:
		f.target = &f.section.Or
	case repeatedFrame:
		f.target = &f.repeated.Or
	case predicateFrame:
		f.target = &f.predicate.Or
	default:
		return compileErrorf(pos, ".or outside of a section")
	}
	f.sawOr = true
	return nil
}

func (p *parser) orPredicate(pos Pos, expr string) error {
	f := p.top()
	if f.kind != predicateFrame {
		return compileErrorf(pos, ".or %s is only valid after a predicate", expr)
	}
	if f.sawOr {
		return compileErrorf(pos, "predicate clause after the final .or")
	}
	clause, err := p.predicateClause(pos, expr)
	if err != nil {
		return err
	}
	n := f.predicate
	n.Clauses = append(n.Clauses, clause)
	f.target = &n.Clauses[len(n.Clauses)-1].Body
	return nil
}

func (p *parser) alternatesWith(pos Pos) error {
	f := p.top()
	if f.kind != repeatedFrame {
		return compileErrorf(pos, ".alternates with is only valid in a repeated section")
	}
	if f.sawOr || f.sawAltWith {
		return compileErrorf(pos, "misplaced .alternates with in %q", f.name)
	}
	f.target = &f.repeated.AlternatesWith
	f.sawAltWith = true
	return nil
}

func (p *parser) openDefine(pos Pos, name string) error {
	if p.top().kind != rootFrame {
		return compileErrorf(pos, ".define is only valid at the top level")
	}
	if !isName(name) {
		return compileErrorf(pos, "bad template name %q", name)
	}
	if _, dup := p.defines[name]; dup {
		return compileErrorf(pos, "template %q defined twice", name)
	}
	f := &openFrame{kind: defineFrame, name: name, pos: pos}
	f.target = &f.define
	p.stack = append(p.stack, f)
	return nil
}

func (p *parser) end(pos Pos, name string) error {
	f := p.top()
	if f.kind == rootFrame {
		return compileErrorf(pos, ".end without an open section")
	}
	if name != "" && name != f.name {
		return compileErrorf(pos, "mismatched section close: %q closes %s %q opened at %s", name, f.kind, f.name, f.pos)
	}
	p.stack = p.stack[:len(p.stack)-1]
	if f.kind == defineFrame {
		p.defines[f.name] = f.define
	}
	return nil
}

// isName reports whether s can name a variable: non-empty with no
// whitespace.
func isName(s string) bool {
	return s != "" && strings.IndexFunc(s, unicode.IsSpace) < 0
}
