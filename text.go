package jsontemplate

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kr/text"
	"github.com/mattn/go-runewidth"
)

func widthArg(name string, args []string) (int, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("%w: %s needs a width", ErrFormatterArgs, name)
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: %s width %q", ErrFormatterArgs, name, args[0])
	}
	return n, nil
}

// wrap word-wraps text to lines of at most N characters.
func wrap(value any, args []string, _ *Context) (any, error) {
	n, err := widthArg("wrap", args)
	if err != nil {
		return nil, err
	}
	return text.Wrap(toString(value), n), nil
}

// indent prefixes every line. A numeric argument means that many spaces;
// any other argument is the prefix itself: {body|indent/> /}.
func indent(value any, args []string, _ *Context) (any, error) {
	prefix := "  "
	if len(args) > 0 {
		if n, err := strconv.Atoi(args[0]); err == nil && n >= 0 {
			prefix = strings.Repeat(" ", n)
		} else {
			prefix = args[0]
		}
	}
	return text.Indent(toString(value), prefix), nil
}

// truncate shortens text to N display columns, ending in "..." when cut.
func truncate(value any, args []string, _ *Context) (any, error) {
	n, err := widthArg("truncate", args)
	if err != nil {
		return nil, err
	}
	tail := "..."
	if n <= len(tail) {
		tail = ""
	}
	return runewidth.Truncate(toString(value), n, tail), nil
}

// pad fills text with spaces to N display columns. A second argument
// "left" pads on the left instead.
func pad(value any, args []string, _ *Context) (any, error) {
	n, err := widthArg("pad", args)
	if err != nil {
		return nil, err
	}
	s := toString(value)
	if len(args) > 1 && args[1] == "left" {
		return runewidth.FillLeft(s, n), nil
	}
	return runewidth.FillRight(s, n), nil
}
