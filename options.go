package jsontemplate

import "fmt"

// UndefinedPolicy selects what a substitution of an undefined variable does.
type UndefinedPolicy int

const (
	// UndefinedFail makes expansion fail with an [UndefinedVariableError].
	UndefinedFail UndefinedPolicy = iota
	// UndefinedPlaceholder substitutes Options.UndefinedStr instead.
	UndefinedPlaceholder
)

// Whitespace selects how the compiler treats whitespace around directives.
type Whitespace string

const (
	// WhitespaceSmart drops lines that hold only a block directive.
	WhitespaceSmart Whitespace = "smart"
	// WhitespaceStripLine trims every line and removes its newline.
	WhitespaceStripLine Whitespace = "strip-line"
)

const (
	defaultMetaLeft   = "{"
	defaultMetaRight  = "}"
	defaultFormatChar = "|"
	defaultFormatter  = "str"
)

// Options configures compilation. The zero value is valid: "{" and "}"
// delimiters, "|" between formatters, "str" as the default formatter and
// undefined variables treated as errors.
type Options struct {
	// Meta sets both delimiters from one token split in half, such as "[]"
	// or "{{}}". It overrides MetaLeft and MetaRight.
	Meta      string
	MetaLeft  string
	MetaRight string

	// FormatChar separates a name from its formatters: "|" or ":".
	FormatChar string

	// DefaultFormatter is applied to substitutions with no formatter.
	DefaultFormatter string

	Undefined    UndefinedPolicy
	UndefinedStr string

	// MoreFormatters and MorePredicates are consulted before the built-in
	// registries.
	MoreFormatters Registry[FormatterFunc]
	MorePredicates Registry[PredicateFunc]

	Whitespace Whitespace
}

// Option adjusts Options.
type Option func(*Options)

// WithMeta sets both delimiters from a token such as "[]" or "<%%>".
func WithMeta(meta string) Option {
	return func(o *Options) { o.Meta = meta }
}

// WithDelimiters sets the opening and closing delimiters.
func WithDelimiters(left, right string) Option {
	return func(o *Options) {
		o.Meta = ""
		o.MetaLeft = left
		o.MetaRight = right
	}
}

// WithFormatChar sets the formatter separator.
func WithFormatChar(c string) Option {
	return func(o *Options) { o.FormatChar = c }
}

// WithDefaultFormatter sets the formatter applied when none is given.
func WithDefaultFormatter(name string) Option {
	return func(o *Options) { o.DefaultFormatter = name }
}

// WithUndefinedStr substitutes s for undefined variables instead of
// failing.
func WithUndefinedStr(s string) Option {
	return func(o *Options) {
		o.Undefined = UndefinedPlaceholder
		o.UndefinedStr = s
	}
}

// WithMoreFormatters adds formatter registries. Registries passed earlier,
// including in previous calls, take precedence.
func WithMoreFormatters(regs ...Registry[FormatterFunc]) Option {
	return func(o *Options) {
		all := regs
		if o.MoreFormatters != nil {
			all = append([]Registry[FormatterFunc]{o.MoreFormatters}, regs...)
		}
		o.MoreFormatters = NewChainedRegistry(all...)
	}
}

// WithMorePredicates adds predicate registries, earlier ones first.
func WithMorePredicates(regs ...Registry[PredicateFunc]) Option {
	return func(o *Options) {
		all := regs
		if o.MorePredicates != nil {
			all = append([]Registry[PredicateFunc]{o.MorePredicates}, regs...)
		}
		o.MorePredicates = NewChainedRegistry(all...)
	}
}

// WithWhitespace sets the whitespace mode.
func WithWhitespace(mode Whitespace) Option {
	return func(o *Options) { o.Whitespace = mode }
}

// config is Options validated and filled with defaults.
type config struct {
	metaLeft         string
	metaRight        string
	formatChar       string
	defaultFormatter string
	undefined        UndefinedPolicy
	undefinedStr     string
	formatters       Registry[FormatterFunc]
	predicates       Registry[PredicateFunc]
	whitespace       Whitespace
}

func (o Options) resolve() (*config, error) {
	c := &config{
		metaLeft:         defaultMetaLeft,
		metaRight:        defaultMetaRight,
		formatChar:       defaultFormatChar,
		defaultFormatter: defaultFormatter,
		undefined:        o.Undefined,
		undefinedStr:     o.UndefinedStr,
		whitespace:       WhitespaceSmart,
	}
	switch {
	case o.Meta != "":
		if len(o.Meta)%2 != 0 {
			return nil, &ConfigurationError{Message: fmt.Sprintf("meta %q must have an even number of characters", o.Meta)}
		}
		half := len(o.Meta) / 2
		c.metaLeft, c.metaRight = o.Meta[:half], o.Meta[half:]
	case o.MetaLeft != "" || o.MetaRight != "":
		if o.MetaLeft == "" || o.MetaRight == "" {
			return nil, &ConfigurationError{Message: "both delimiters must be set"}
		}
		c.metaLeft, c.metaRight = o.MetaLeft, o.MetaRight
	}
	if o.FormatChar != "" {
		if o.FormatChar != "|" && o.FormatChar != ":" {
			return nil, &ConfigurationError{Message: fmt.Sprintf("format char must be '|' or ':', got %q", o.FormatChar)}
		}
		c.formatChar = o.FormatChar
	}
	if o.DefaultFormatter != "" {
		c.defaultFormatter = o.DefaultFormatter
	}
	switch o.Whitespace {
	case "":
	case WhitespaceSmart, WhitespaceStripLine:
		c.whitespace = o.Whitespace
	default:
		return nil, &ConfigurationError{Message: fmt.Sprintf("unknown whitespace mode %q", o.Whitespace)}
	}
	c.formatters = NewChainedRegistry(o.MoreFormatters, builtinFormatters, builtinPrefixFormatters)
	c.predicates = NewChainedRegistry(o.MorePredicates, builtinPredicates)
	return c, nil
}
