package jsontemplate

import (
	"io"
	"regexp"
	"strings"
)

var optionLineRe = regexp.MustCompile(`^([a-zA-Z\-]+):\s*(.*)$`)

// FromString compiles text that may start with a block of "key: value"
// option lines followed by a blank line:
//
//	meta: []
//	format-char: :
//	default-formatter: html
//	undefined-str: UNDEF
//
//	foo [foo:raw] [bar]
//
// Recognized keys are meta, format-char, default-formatter, undefined-str
// and whitespace. The header stops at the first line that is not a
// recognized option. Header options override opts.
func FromString(text string, opts ...Option) (*Template, error) {
	var o Options
	for _, opt := range opts {
		opt(&o)
	}
	body, err := parseHeader(text, &o)
	if err != nil {
		return nil, err
	}
	return CompileOptions(body, o)
}

// FromReader is FromString over the contents of r.
func FromReader(r io.Reader, opts ...Option) (*Template, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return FromString(string(b), opts...)
}

// parseHeader applies the leading option lines of text to o and returns the
// template body.
func parseHeader(text string, o *Options) (string, error) {
	rest := text
	lineNo := 0
	found := false
	for {
		line, after, hasNL := strings.Cut(rest, "\n")
		lineNo++
		m := optionLineRe.FindStringSubmatch(strings.TrimRight(line, "\r"))
		if m == nil || !applyHeaderOption(o, strings.ToLower(m[1]), strings.TrimSpace(m[2])) {
			if !found {
				return text, nil
			}
			if strings.TrimSpace(line) != "" {
				return "", compileErrorf(Pos{Offset: len(text) - len(rest), Line: lineNo, Column: 1},
					"expected a blank line between template options and body, got %q", line)
			}
			return after, nil
		}
		found = true
		if !hasNL {
			return "", nil
		}
		rest = after
	}
}

func applyHeaderOption(o *Options, key, value string) bool {
	switch key {
	case "meta":
		o.Meta = value
		o.MetaLeft, o.MetaRight = "", ""
	case "format-char":
		o.FormatChar = value
	case "default-formatter":
		o.DefaultFormatter = value
		if strings.EqualFold(value, "none") {
			o.DefaultFormatter = "none"
		}
	case "undefined-str":
		o.Undefined = UndefinedPlaceholder
		o.UndefinedStr = value
	case "whitespace":
		o.Whitespace = Whitespace(value)
	default:
		return false
	}
	return true
}
