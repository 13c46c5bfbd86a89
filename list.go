package jsontemplate

import (
	"fmt"
	"strings"
)

// Lister lets a value supply the strings the join formatter joins.
type Lister interface {
	List() []string
}

// join joins a list with the argument, ", " by default. The separator may
// contain spaces when a non-space argument separator is used:
// {tags|join/ and /}.
func join(value any, args []string, _ *Context) (any, error) {
	sep := ", "
	if len(args) > 0 {
		sep = args[0]
	}
	if l, ok := value.(Lister); ok {
		return strings.Join(l.List(), sep), nil
	}
	items, ok := asSequence(value)
	if !ok {
		return nil, fmt.Errorf("%w: join expects a list, got %T", ErrFormatterInput, value)
	}
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = toString(item)
	}
	return strings.Join(parts, sep), nil
}
