// Package jsontemplate expands JSON Template text against structured data.
//
// A template is plain text with directives between delimiters, "{" and "}"
// by default. [Compile] turns the text into an immutable [Template] that can
// be expanded any number of times, from any number of goroutines:
//
//	t, err := jsontemplate.Compile("Hello {name}")
//	out, err := t.Expand(map[string]any{"name": "World"}) // "Hello World"
//
// # Directives
//
//   - {name}, {a.b.c}, {@}, {@index}: substitution
//   - {name|html|truncate 20}: substitution through formatters, left to right
//   - {.section name} ... {.or} ... {.end}: expand once if name is truthy
//   - {.repeated section list} ... {.alternates with} ... {.or} ... {.end}
//   - {.if plural} ... {.or singular} ... {.or} ... {.end}, {.name?}
//   - {.define NAME} ... {.end} and {.template NAME}
//   - {# comment}, {##BEGIN} ... {##END}
//   - {.space}, {.tab}, {.newline}, {.meta-left}, {.meta-right}
//   - {.OPTION strip-line} ... {.END}
//
// A line holding a single block directive and whitespace is removed from the
// output entirely ("smart" whitespace).
//
// # Variable Lookup
//
// The data passed to Expand is the outermost scope and each section pushes
// the value it enters. The first segment of a name is searched from the
// innermost scope outward; later segments of a dotted name only look inside
// the value found. Mappings, structs (honoring json tags) and any [Scope]
// implementation can be looked up. An [IsolatedScope] can stop the outward
// search.
//
// # Formatters and Predicates
//
// Formatter and predicate names are resolved when the template is compiled.
// A [Registry] resolves names; [SimpleRegistry], [CallableRegistry],
// [ChainedRegistry] and [PrefixRegistry] cover the common cases, and
// [WithMoreFormatters] and [WithMorePredicates] put caller registries ahead
// of the built-ins. A [PrefixRegistry] splits arguments off a name on the
// first character after the prefix:
//
//	{num|pluralize es}
//	{@index|cycle/odd row/even row}
//	{when|strftime.%Y-%m-%d %H:%M}
//
// Structured formatters render whole values: json, json-pretty, jsonl,
// yaml, csv, tsv, table, table-ascii, table-plain, markdown, html-table and
// env. List items implementing [Rower] and [Headed] control their own rows.
//
// # Errors
//
// Compile fails with a [*CompileError], [*ConfigurationError],
// [*FormatterNotFoundError] or [*PredicateNotFoundError]. Expansion fails
// with an [*UndefinedVariableError] or [*EvaluationError]. Each matches a
// sentinel such as [ErrCompile] with [errors.Is]. Failed expansions produce
// no output.
//
// # Options Header
//
// [FromString] reads "key: value" lines from the top of the text before
// compiling the rest:
//
//	meta: []
//	default-formatter: html
//
//	Hello [name]
//
// # Streaming
//
// [ExecuteIter] and [ExecuteChan] expand one template per item of a
// sequence or channel.
package jsontemplate
