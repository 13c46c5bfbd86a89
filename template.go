package jsontemplate

import (
	"io"
	"strings"
)

// Template is a compiled template. It is immutable and safe for concurrent
// use by multiple goroutines.
type Template struct {
	nodes   []Node
	defines map[string][]Node
	cfg     *config
}

// Compile parses text into a Template.
func Compile(text string, opts ...Option) (*Template, error) {
	var o Options
	for _, opt := range opts {
		opt(&o)
	}
	return CompileOptions(text, o)
}

// CompileOptions parses text into a Template configured by o.
func CompileOptions(text string, o Options) (*Template, error) {
	cfg, err := o.resolve()
	if err != nil {
		return nil, err
	}
	tokens, err := tokenize(text, cfg)
	if err != nil {
		return nil, err
	}
	nodes, defines, err := parse(tokens, cfg)
	if err != nil {
		return nil, err
	}
	return &Template{nodes: nodes, defines: defines, cfg: cfg}, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(text string, opts ...Option) *Template {
	t, err := Compile(text, opts...)
	if err != nil {
		panic(err)
	}
	return t
}

// Expand compiles text and expands it once against data.
func Expand(text string, data any, opts ...Option) (string, error) {
	t, err := Compile(text, opts...)
	if err != nil {
		return "", err
	}
	return t.Expand(data)
}

// Nodes returns the top-level nodes of the compiled tree. Callers must not
// modify them.
func (t *Template) Nodes() []Node {
	return t.nodes
}

// Expand expands the template against data and returns the output.
func (t *Template) Expand(data any) (string, error) {
	var sb strings.Builder
	e := &expander{tmpl: t, ctx: newContext(data, t.defines), out: &sb}
	if err := e.nodes(t.nodes); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// Execute expands the template against data and writes the output to w.
// Nothing is written when expansion fails.
func (t *Template) Execute(w io.Writer, data any) error {
	s, err := t.Expand(data)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, s)
	return err
}
