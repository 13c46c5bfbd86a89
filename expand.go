package jsontemplate

import (
	"fmt"
	"strings"
)

// maxTemplateDepth bounds {.template} recursion.
const maxTemplateDepth = 64

type expander struct {
	tmpl  *Template
	ctx   *Context
	out   *strings.Builder
	depth int
}

func (e *expander) nodes(nodes []Node) error {
	for _, n := range nodes {
		if err := e.node(n); err != nil {
			return err
		}
	}
	return nil
}

func (e *expander) node(n Node) error {
	switch n := n.(type) {
	case *LiteralNode:
		e.out.WriteString(n.Text)
		return nil
	case *SubstitutionNode:
		return e.substitution(n)
	case *SectionNode:
		return e.section(n)
	case *RepeatedNode:
		return e.repeated(n)
	case *PredicateNode:
		return e.predicate(n)
	case *TemplateRefNode:
		return e.templateRef(n)
	default:
		return &EvaluationError{Message: fmt.Sprintf("unexpected node %T", n)}
	}
}

func (e *expander) substitution(n *SubstitutionNode) error {
	val, ok := e.ctx.Lookup(n.Name)
	if !ok {
		if e.tmpl.cfg.undefined == UndefinedPlaceholder {
			e.out.WriteString(e.tmpl.cfg.undefinedStr)
			return nil
		}
		return &UndefinedVariableError{Name: n.Name}
	}
	val, err := e.format(n.Formatters, val)
	if err != nil {
		return err
	}
	e.out.WriteString(toString(val))
	return nil
}

func (e *expander) format(calls []FormatterCall, val any) (any, error) {
	for _, call := range calls {
		out, err := call.Func(val, call.Args, e.ctx)
		if err != nil {
			return nil, &EvaluationError{Message: fmt.Sprintf("formatter %q", call.Name), Err: err}
		}
		val = out
	}
	return val, nil
}

// resolve looks up a section name and applies its pre-formatters. A missing
// name resolves to nil.
func (e *expander) resolve(name string, pre []FormatterCall) (any, error) {
	val, ok := e.ctx.Lookup(name)
	if !ok {
		return nil, nil
	}
	return e.format(pre, val)
}

func (e *expander) section(n *SectionNode) error {
	val, err := e.resolve(n.Name, n.PreFormatters)
	if err != nil {
		return err
	}
	if !truthy(val) {
		return e.nodes(n.Or)
	}
	e.ctx.push(val, 0)
	defer e.ctx.pop()
	return e.nodes(n.Body)
}

func (e *expander) repeated(n *RepeatedNode) error {
	val, err := e.resolve(n.Name, n.PreFormatters)
	if err != nil {
		return err
	}
	if !truthy(val) {
		return e.nodes(n.Or)
	}
	items, ok := asSequence(val)
	if !ok {
		return &EvaluationError{Message: fmt.Sprintf("repeated section %q expects a list, got %T", n.Name, val)}
	}
	for i, item := range items {
		e.ctx.push(item, i+1)
		err := e.nodes(n.Body)
		if err == nil && i < len(items)-1 {
			err = e.nodes(n.AlternatesWith)
		}
		e.ctx.pop()
		if err != nil {
			return err
		}
	}
	return nil
}

func (e *expander) predicate(n *PredicateNode) error {
	for _, clause := range n.Clauses {
		holds, err := e.test(clause)
		if err != nil {
			return err
		}
		if holds != clause.Negated {
			return e.nodes(clause.Body)
		}
	}
	return e.nodes(n.Or)
}

func (e *expander) test(clause PredicateClause) (bool, error) {
	if clause.Test == nil {
		val, ok := e.ctx.Lookup(clause.Name)
		return ok && truthy(val), nil
	}
	holds, err := clause.Test(e.ctx.Cursor(), clause.Args, e.ctx)
	if err != nil {
		return false, &EvaluationError{Message: fmt.Sprintf("predicate %q", clause.Name), Err: err}
	}
	return holds, nil
}

func (e *expander) templateRef(n *TemplateRefNode) error {
	body, ok := e.tmpl.defines[n.Name]
	if !ok {
		return &EvaluationError{Message: fmt.Sprintf("no template named %q at %s", n.Name, n.Pos)}
	}
	if e.depth >= maxTemplateDepth {
		return &EvaluationError{Message: fmt.Sprintf("template %q nested too deeply", n.Name)}
	}
	e.depth++
	defer func() { e.depth-- }()
	return e.nodes(body)
}
