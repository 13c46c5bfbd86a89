package jsontemplate_test

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jsontemplate "github.com/MjAbuz/json-template"
)

// --- Test types ---

type user struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Age   int
	Skip  string `json:"-"`
}

type isolatedScope map[string]any

func (s isolatedScope) Get(name string) (any, bool) {
	v, ok := s[name]
	return v, ok
}

func (s isolatedScope) Isolated() bool { return true }

// ============================================================
// Tests
// ============================================================

func TestExpand(t *testing.T) {
	t.Parallel()
	tests := map[string]struct {
		template string
		data     any
		want     string
	}{
		"literal only": {
			template: "no directives here",
			data:     nil,
			want:     "no directives here",
		},
		"substitution": {
			template: "Hello {name}",
			data:     map[string]any{"name": "World"},
			want:     "Hello World",
		},
		"cursor": {
			template: "{@}",
			data:     "scalar",
			want:     "scalar",
		},
		"braces that are not directives": {
			template: "function() { return {@}; }",
			data:     1,
			want:     "function() { return 1; }",
		},
		"null": {
			template: "There are {num|str} ways to do it",
			data:     map[string]any{"num": nil},
			want:     "There are null ways to do it",
		},
		"dotted lookup": {
			template: "{foo.bar.baz}",
			data:     map[string]any{"foo": map[string]any{"bar": map[string]any{"baz": "Hello"}}},
			want:     "Hello",
		},
		"dotted lookup inside section": {
			template: "{.section foo}{bar.baz}{.end}",
			data:     map[string]any{"foo": map[string]any{"bar": map[string]any{"baz": "Hello"}}},
			want:     "Hello",
		},
		"lookup falls back to outer scope": {
			template: "{.section person}{name} from {city}{.end}",
			data:     map[string]any{"city": "Paris", "person": map[string]any{"name": "Ann"}},
			want:     "Ann from Paris",
		},
		"struct fields": {
			template: "{name} {Age}",
			data:     user{Name: "Ann", Age: 41},
			want:     "Ann 41",
		},
		"pointer to struct": {
			template: "{.section u}{name}{.end}",
			data:     map[string]any{"u": &user{Name: "Bo"}},
			want:     "Bo",
		},
		"comment": {
			template: "a{# ignored }b",
			data:     nil,
			want:     "ab",
		},
		"escapes": {
			template: "{.meta-left}x{.meta-right}{.space}{.tab}{.newline}",
			data:     nil,
			want:     "{x} \t\n",
		},
		"section truthy": {
			template: "{.section a}[{@}]{.or}none{.end}",
			data:     map[string]any{"a": "yes"},
			want:     "[yes]",
		},
		"section falsy": {
			template: "{.section a}[{@}]{.or}none{.end}",
			data:     map[string]any{"a": 0},
			want:     "none",
		},
		"section missing": {
			template: "{.section a}[{@}]{.or}none{.end}",
			data:     map[string]any{},
			want:     "none",
		},
		"section pushes a list once": {
			template: "{.section dirs|reverse}{.repeated section @}{@} {.end}{.end}",
			data:     map[string]any{"dirs": []any{"1", "2", "3"}},
			want:     "3 2 1 ",
		},
		"repeated with alternates": {
			template: "{.repeated section people}{name}{.alternates with}, {.end}",
			data:     map[string]any{"people": []any{map[string]any{"name": "a"}, map[string]any{"name": "b"}, map[string]any{"name": "c"}}},
			want:     "a, b, c",
		},
		"repeated empty uses or": {
			template: "{.repeated section people}{name}{.or}nobody{.end}",
			data:     map[string]any{"people": []any{}},
			want:     "nobody",
		},
		"repeated index": {
			template: "{.repeated section @}{@index}:{@} {.end}",
			data:     []string{"a", "b"},
			want:     "1:a 2:b ",
		},
		"repeated preformatter": {
			template: "{.repeated section dirs|reverse}{@} {.end}",
			data:     map[string]any{"dirs": []any{"1", "2", "3"}},
			want:     "3 2 1 ",
		},
		"pairs": {
			template: "{.repeated section @ | pairs}{@key}:{@value} {.end}",
			data:     map[string]any{"a123": "b", "c": "d", "e": "f"},
			want:     "a123:b c:d e:f ",
		},
		"predicates": {
			template: "{.repeated section num}{.if plural}{@} people{.or singular}one{.or}nobody{.end};{.end}",
			data:     map[string]any{"num": []any{0, 1, 2}},
			want:     "nobody;one;2 people;",
		},
		"predicate shorthand": {
			template: "{.repeated section num}{.plural?}P{.or singular?}S{.or}N{.end}{.end}",
			data:     map[string]any{"num": []any{0, 1, 3}},
			want:     "NSP",
		},
		"negated predicate": {
			template: "{.section n}{.if not singular}many{.or}one{.end}{.end}",
			data:     map[string]any{"n": 3},
			want:     "many",
		},
		"attribute predicate": {
			template: "{.if admin}A{.or}U{.end}",
			data:     map[string]any{"admin": true},
			want:     "A",
		},
		"attribute shorthand": {
			template: "{.admin?}A{.or}U{.end}",
			data:     map[string]any{"admin": false},
			want:     "U",
		},
		"test predicate": {
			template: "{.if test user}hi {user}{.or}anonymous{.end}",
			data:     map[string]any{"user": "bob"},
			want:     "hi bob",
		},
		"Debug predicate": {
			template: "{.Debug?}debug on{.end}",
			data:     map[string]any{"debug": 1},
			want:     "debug on",
		},
		"define and template": {
			template: "{.define greet}hi {name}{.end}{.if template greet}{.template greet}!{.end}",
			data:     map[string]any{"name": "Ann"},
			want:     "hi Ann!",
		},
		"template uses current scope": {
			template: "{.define item}<{@}>{.end}{.repeated section @}{.template item}{.end}",
			data:     []any{1, 2},
			want:     "<1><2>",
		},
		"multiline comment": {
			template: "Hello {##BEGIN}\nignored\n{##END} World\n",
			data:     nil,
			want:     "Hello  World\n",
		},
		"float rendering": {
			template: "{a} {b} {c}",
			data:     map[string]any{"a": 1.5, "b": 100.0, "c": 1e21},
			want:     "1.5 100 1e+21",
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			got, err := jsontemplate.Expand(tt.template, tt.data)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExpandSmartWhitespace(t *testing.T) {
	t.Parallel()
	tmpl := "{.section name}\n  Hello {name}\n{.end}\n"
	got, err := jsontemplate.Expand(tmpl, map[string]any{"name": "World"})
	require.NoError(t, err)
	assert.Equal(t, "  Hello World\n", got)
}

func TestExpandSmartWhitespaceKeepsInlineSpace(t *testing.T) {
	t.Parallel()
	got, err := jsontemplate.Expand("  Hello {name}  ", map[string]any{"name": "World"})
	require.NoError(t, err)
	assert.Equal(t, "  Hello World  ", got)
}

func TestExpandStripLine(t *testing.T) {
	t.Parallel()
	tmpl := "{.section name}\n    Hello {name}\n{.end}\n"
	got, err := jsontemplate.Expand(tmpl, map[string]any{"name": "World"},
		jsontemplate.WithWhitespace(jsontemplate.WhitespaceStripLine))
	require.NoError(t, err)
	assert.Equal(t, "Hello World", got)
}

func TestExpandOptionBlock(t *testing.T) {
	t.Parallel()
	tmpl := "{.OPTION strip-line}\n  a\n  b\n  c\n{.END}\n"
	got, err := jsontemplate.Expand(tmpl, nil)
	require.NoError(t, err)
	assert.Equal(t, "abc", got)

	tmpl = "{.OPTION strip-line}\n" +
		"  {.repeated section @}\n" +
		"    {@}\n" +
		"  {.alternates with}\n" +
		"    ,\n" +
		"  {.end}\n" +
		"{.END}\n"
	got, err = jsontemplate.Expand(tmpl, []any{"a", "b", "c"})
	require.NoError(t, err)
	assert.Equal(t, "a,b,c", got)
}

func TestExpandDefineBlock(t *testing.T) {
	t.Parallel()
	tmpl := "{.define TITLE}\n<h3>{title}</h3>\n{.end}\n{.template TITLE}body\n"
	got, err := jsontemplate.Expand(tmpl, map[string]any{"title": "Definition of 'hello'"})
	require.NoError(t, err)
	assert.Equal(t, "<h3>Definition of 'hello'</h3>\nbody\n", got)
}

func TestExpandDottedLookupDoesNotFallBack(t *testing.T) {
	t.Parallel()
	_, err := jsontemplate.Expand("{foo.bar}", map[string]any{"foo": map[string]any{}, "bar": 100})
	require.ErrorIs(t, err, jsontemplate.ErrUndefinedVariable)

	got, err := jsontemplate.Expand("{foo.bar}", map[string]any{"foo": map[string]any{}, "bar": 100},
		jsontemplate.WithUndefinedStr("UNDEFINED"))
	require.NoError(t, err)
	assert.Equal(t, "UNDEFINED", got)
}

func TestExpandUndefinedVariable(t *testing.T) {
	t.Parallel()
	_, err := jsontemplate.Expand("Where is your {name|html}", map[string]any{})
	require.ErrorIs(t, err, jsontemplate.ErrUndefinedVariable)

	var uerr *jsontemplate.UndefinedVariableError
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, "name", uerr.Name)
	assert.Equal(t, "name is not defined", err.Error())
}

func TestExpandUndefinedStr(t *testing.T) {
	t.Parallel()
	got, err := jsontemplate.Expand("Where is your {name|html}", map[string]any{},
		jsontemplate.WithUndefinedStr(""))
	require.NoError(t, err)
	assert.Equal(t, "Where is your ", got)
}

func TestExpandDefaultFormatter(t *testing.T) {
	t.Parallel()
	got, err := jsontemplate.Expand("{name} {val|raw}",
		map[string]any{"name": "<head>", "val": "<>"},
		jsontemplate.WithDefaultFormatter("html"))
	require.NoError(t, err)
	assert.Equal(t, "&lt;head&gt; <>", got)
}

func TestExpandNoDefaultFormatter(t *testing.T) {
	t.Parallel()
	_, err := jsontemplate.Compile("{name}", jsontemplate.WithDefaultFormatter("none"))
	require.ErrorIs(t, err, jsontemplate.ErrCompile)

	got, err := jsontemplate.Expand("{name|raw}", map[string]any{"name": "<b>"},
		jsontemplate.WithDefaultFormatter("none"))
	require.NoError(t, err)
	assert.Equal(t, "<b>", got)
}

func TestExpandCustomDelimiters(t *testing.T) {
	t.Parallel()
	tests := map[string]struct {
		template string
		opts     []jsontemplate.Option
		want     string
	}{
		"brackets": {
			template: "[a] {a}",
			opts:     []jsontemplate.Option{jsontemplate.WithMeta("[]")},
			want:     "1 {a}",
		},
		"multi-char": {
			template: "<%a%>",
			opts:     []jsontemplate.Option{jsontemplate.WithMeta("<%%>")},
			want:     "1",
		},
		"explicit delimiters": {
			template: "{{a}}",
			opts:     []jsontemplate.Option{jsontemplate.WithDelimiters("{{", "}}")},
			want:     "1",
		},
		"colon format char": {
			template: "{a:html}",
			opts:     []jsontemplate.Option{jsontemplate.WithFormatChar(":")},
			want:     "1",
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			got, err := jsontemplate.Expand(tt.template, map[string]any{"a": 1}, tt.opts...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExpandMoreFormatters(t *testing.T) {
	t.Parallel()
	more := jsontemplate.NewSimpleRegistry(map[string]jsontemplate.FormatterFunc{
		"lower": jsontemplate.StringFunc(strings.ToLower),
		"upper": jsontemplate.StringFunc(strings.ToUpper),
	})
	got, err := jsontemplate.Expand("Hello {name|lower} {name|upper}",
		map[string]any{"name": "World"}, jsontemplate.WithMoreFormatters(more))
	require.NoError(t, err)
	assert.Equal(t, "Hello world WORLD", got)
}

func TestExpandMoreFormattersTakePrecedence(t *testing.T) {
	t.Parallel()
	more := jsontemplate.NewCallableRegistry(func(name string) jsontemplate.FormatterFunc {
		if name != "html" {
			return nil
		}
		return jsontemplate.ValueFunc(func(any) string { return "overridden" })
	})
	got, err := jsontemplate.Expand("{a|html} {a|raw}", map[string]any{"a": "<"},
		jsontemplate.WithMoreFormatters(more))
	require.NoError(t, err)
	assert.Equal(t, "overridden <", got)
}

func TestExpandMorePredicates(t *testing.T) {
	t.Parallel()
	more := jsontemplate.NewSimpleRegistry(map[string]jsontemplate.PredicateFunc{
		"even": func(v any, _ []string, _ *jsontemplate.Context) (bool, error) {
			n, ok := v.(int)
			return ok && n%2 == 0, nil
		},
	})
	got, err := jsontemplate.Expand("{.repeated section @}{.even?}E{.or}O{.end}{.end}",
		[]any{1, 2, 3}, jsontemplate.WithMorePredicates(more))
	require.NoError(t, err)
	assert.Equal(t, "OEO", got)
}

func TestExpandContextFormatter(t *testing.T) {
	t.Parallel()
	data := map[string]any{
		"base-url": "http://example.com",
		"users":    []any{map[string]any{"url": "dan"}, map[string]any{"url": "ed"}},
	}
	got, err := jsontemplate.Expand("{.repeated section users}{url|AbsUrl}\n{.end}", data)
	require.NoError(t, err)
	assert.Equal(t, "http://example.com/dan\nhttp://example.com/ed\n", got)
}

func TestExpandScope(t *testing.T) {
	t.Parallel()
	open := jsontemplate.ScopeFunc(func(name string) (any, bool) {
		if name == "inner" {
			return "in", true
		}
		return nil, false
	})
	data := map[string]any{"outer": "out", "open": open, "closed": isolatedScope{"inner": "in"}}

	got, err := jsontemplate.Expand("{.section open}{inner} {outer}{.end}", data)
	require.NoError(t, err)
	assert.Equal(t, "in out", got)

	got, err = jsontemplate.Expand("{.section closed}{inner}{.end}", data)
	require.NoError(t, err)
	assert.Equal(t, "in", got)

	_, err = jsontemplate.Expand("{.section closed}{outer}{.end}", data)
	require.ErrorIs(t, err, jsontemplate.ErrUndefinedVariable)
}

func TestExpandEvaluationErrors(t *testing.T) {
	t.Parallel()
	tests := map[string]struct {
		template string
		data     any
		target   error
	}{
		"repeated over scalar": {
			template: "{.repeated section a}x{.end}",
			data:     map[string]any{"a": "text"},
			target:   jsontemplate.ErrEvaluation,
		},
		"formatter failure": {
			template: "{a|pluralize}",
			data:     map[string]any{"a": "many"},
			target:   jsontemplate.ErrFormatterInput,
		},
		"predicate failure": {
			template: "{.if test}x{.end}",
			data:     map[string]any{},
			target:   jsontemplate.ErrEvaluation,
		},
		"unbounded recursion": {
			template: "{.define r}{.template r}{.end}{.template r}",
			data:     nil,
			target:   jsontemplate.ErrEvaluation,
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := jsontemplate.Expand(tt.template, tt.data)
			require.ErrorIs(t, err, tt.target)
		})
	}
}

func TestExecute(t *testing.T) {
	t.Parallel()
	tmpl := jsontemplate.MustCompile("a{b}")
	var buf bytes.Buffer
	require.NoError(t, tmpl.Execute(&buf, map[string]any{"b": 1}))
	assert.Equal(t, "a1", buf.String())
}

func TestExecuteWritesNothingOnError(t *testing.T) {
	t.Parallel()
	tmpl := jsontemplate.MustCompile("partial {missing}")
	var buf bytes.Buffer
	err := tmpl.Execute(&buf, map[string]any{})
	require.Error(t, err)
	assert.Empty(t, buf.String())
}

func TestMustCompilePanics(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() { jsontemplate.MustCompile("{.section a}") })
}

func TestTemplateConcurrentExpand(t *testing.T) {
	t.Parallel()
	tmpl := jsontemplate.MustCompile("{.repeated section @}{@index}{.end}")
	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := tmpl.Expand([]any{"a", "b", "c"})
			if err == nil && got != "123" {
				err = errors.New("unexpected output " + got)
			}
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}
}
