package jsontemplate

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"

	json "github.com/goccy/go-json"
)

// Sentinel errors returned by built-in formatters. They reach callers
// wrapped in an *EvaluationError.
var (
	ErrFormatterArgs  = errors.New("bad formatter arguments")
	ErrFormatterInput = errors.New("formatter cannot handle value")
)

// StringFunc adapts a string-to-string function into a FormatterFunc. The
// value is rendered with "str" semantics first.
func StringFunc(fn func(string) string) FormatterFunc {
	return func(value any, _ []string, _ *Context) (any, error) {
		return fn(toString(value)), nil
	}
}

// ValueFunc adapts a function of the raw value into a FormatterFunc.
func ValueFunc(fn func(any) string) FormatterFunc {
	return func(value any, _ []string, _ *Context) (any, error) {
		return fn(value), nil
	}
}

var htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

var attrEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")

var builtinFormatters Registry[FormatterFunc] = NewSimpleRegistry(map[string]FormatterFunc{
	"str":             StringFunc(func(s string) string { return s }),
	"raw":             formatRaw,
	"html":            StringFunc(htmlEscaper.Replace),
	"html-attr-value": StringFunc(attrEscaper.Replace),
	"htmltag":         StringFunc(attrEscaper.Replace),
	"plain-url":       StringFunc(plainURL),
	"AbsUrl":          absURL,
	"url-param-value": StringFunc(url.QueryEscape),
	"url-params":      urlParams,
	"js-string":       jsString,
	"json":            formatJSON,
	"json-pretty":     formatJSONPretty,
	"jsonl":           formatJSONL,
	"yaml":            formatYAML,
	"csv":             formatCSV,
	"tsv":             formatTSV,
	"table":           formatTable,
	"table-ascii":     tableWith(BorderASCII),
	"table-plain":     tableWith(BorderNone),
	"markdown":        formatMarkdown,
	"html-table":      formatHTMLTable,
	"sanitize-html":   StringFunc(sanitizeHTML),
	"strip-tags":      StringFunc(stripTags),
	"env":             formatEnv,
	"size":            size,
	"reverse":         reverse,
	"pairs":           pairs,
})

var builtinPrefixFormatters Registry[FormatterFunc] = NewPrefixRegistry(map[string]FormatterFunc{
	"pluralize":      pluralize,
	"cycle":          cycle,
	"printf":         printf,
	"strftime":       strftimeIn(time.Local),
	"strftime-gm":    strftimeIn(time.UTC),
	"strftime-local": strftimeIn(time.Local),
	"join":           join,
	"wrap":           wrap,
	"indent":         indent,
	"truncate":       truncate,
	"pad":            pad,
	"env":            formatEnv,
	"csv":            formatCSV,
	"tsv":            formatTSV,
	"table":          formatTable,
	"yaml":           formatYAML,
})

// formatRaw passes the value through; the final rendering still applies
// "str" semantics to non-strings.
func formatRaw(value any, _ []string, _ *Context) (any, error) {
	return value, nil
}

func plainURL(s string) string {
	return fmt.Sprintf(`<a href="%s">%s</a>`, attrEscaper.Replace(s), htmlEscaper.Replace(s))
}

// absURL joins the top-level "base-url" variable and the value.
func absURL(value any, _ []string, ctx *Context) (any, error) {
	base, ok := ctx.Lookup("base-url")
	if !ok {
		return nil, &UndefinedVariableError{Name: "base-url"}
	}
	return toString(base) + "/" + toString(value), nil
}

func urlParams(value any, _ []string, _ *Context) (any, error) {
	keys, m, ok := asMapping(value)
	if !ok {
		return nil, fmt.Errorf("%w: url-params expects a mapping, got %T", ErrFormatterInput, value)
	}
	params := url.Values{}
	for _, k := range keys {
		params.Set(k, toString(m[k]))
	}
	return params.Encode(), nil
}

// jsString escapes the value for use inside a quoted JavaScript string.
func jsString(value any, _ []string, _ *Context) (any, error) {
	b, err := json.Marshal(toString(value))
	if err != nil {
		return nil, err
	}
	return string(b[1 : len(b)-1]), nil
}

func size(value any, _ []string, _ *Context) (any, error) {
	if s, ok := value.(string); ok {
		return len([]rune(s)), nil
	}
	if items, ok := asSequence(value); ok {
		return len(items), nil
	}
	if keys, _, ok := asMapping(value); ok {
		return len(keys), nil
	}
	return nil, fmt.Errorf("%w: size of %T", ErrFormatterInput, value)
}

func reverse(value any, _ []string, _ *Context) (any, error) {
	items, ok := asSequence(value)
	if !ok {
		return nil, fmt.Errorf("%w: reverse expects a list, got %T", ErrFormatterInput, value)
	}
	out := slices.Clone(items)
	slices.Reverse(out)
	return out, nil
}

// pairs turns a mapping into a list of {"@key", "@value"} mappings ordered
// by key.
func pairs(value any, _ []string, _ *Context) (any, error) {
	keys, m, ok := asMapping(value)
	if !ok {
		return nil, fmt.Errorf("%w: pairs expects a mapping, got %T", ErrFormatterInput, value)
	}
	out := make([]any, len(keys))
	for i, k := range keys {
		out[i] = map[string]any{"@key": k, "@value": m[k]}
	}
	return out, nil
}

// pluralize picks a suffix by count: no args selects "" or "s", one arg
// selects "" or the arg, two args select between them.
func pluralize(value any, args []string, _ *Context) (any, error) {
	n, ok := toFloat(value)
	if !ok {
		return nil, fmt.Errorf("%w: pluralize expects a number, got %T", ErrFormatterInput, value)
	}
	var singular, plural string
	switch len(args) {
	case 0:
		singular, plural = "", "s"
	case 1:
		singular, plural = "", args[0]
	case 2:
		singular, plural = args[0], args[1]
	default:
		return nil, fmt.Errorf("%w: pluralize takes at most 2 arguments, got %d", ErrFormatterArgs, len(args))
	}
	if n == 1 {
		return singular, nil
	}
	return plural, nil
}

// cycle picks args[(n-1) % len(args)] for a 1-based index n.
func cycle(value any, args []string, _ *Context) (any, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("%w: cycle needs at least one argument", ErrFormatterArgs)
	}
	n, ok := toFloat(value)
	if !ok || n < 1 {
		return nil, fmt.Errorf("%w: cycle expects a positive index, got %v", ErrFormatterInput, value)
	}
	return args[(int(n)-1)%len(args)], nil
}

func printf(value any, args []string, _ *Context) (any, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("%w: printf needs a format", ErrFormatterArgs)
	}
	return fmt.Sprintf(strings.Join(args, " "), value), nil
}

// strftimeIn renders a Unix timestamp in seconds with a C strftime format,
// "%c" by default.
func strftimeIn(loc *time.Location) FormatterFunc {
	return func(value any, args []string, _ *Context) (any, error) {
		secs, ok := toFloat(value)
		if !ok {
			return nil, fmt.Errorf("%w: strftime expects seconds since the epoch, got %T", ErrFormatterInput, value)
		}
		layout := "%c"
		if len(args) > 0 {
			layout = strings.Join(args, " ")
		}
		whole := int64(secs)
		t := time.Unix(whole, int64((secs-float64(whole))*1e9)).In(loc)
		return strftime(t, layout), nil
	}
}

var strftimeLayouts = map[byte]string{
	'a': "Mon",
	'A': "Monday",
	'b': "Jan",
	'B': "January",
	'c': time.ANSIC,
	'd': "02",
	'e': "_2",
	'H': "15",
	'I': "03",
	'm': "01",
	'M': "04",
	'p': "PM",
	'S': "05",
	'y': "06",
	'Y': "2006",
	'z': "-0700",
	'Z': "MST",
	'x': "01/02/06",
	'X': "15:04:05",
}

// strftime formats t one directive at a time, so literal text in the format
// is never read as a Go layout.
func strftime(t time.Time, format string) string {
	var sb strings.Builder
	for i := 0; i < len(format); i++ {
		c := format[i]
		if c != '%' || i == len(format)-1 {
			sb.WriteByte(c)
			continue
		}
		i++
		switch d := format[i]; d {
		case '%':
			sb.WriteByte('%')
		case 'j':
			fmt.Fprintf(&sb, "%03d", t.YearDay())
		case 'w':
			fmt.Fprintf(&sb, "%d", int(t.Weekday()))
		case 's':
			fmt.Fprintf(&sb, "%d", t.Unix())
		default:
			if layout, ok := strftimeLayouts[d]; ok {
				sb.WriteString(t.Format(layout))
			} else {
				sb.WriteByte('%')
				sb.WriteByte(d)
			}
		}
	}
	return sb.String()
}
