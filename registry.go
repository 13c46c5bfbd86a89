package jsontemplate

import (
	"reflect"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// FormatterFunc transforms a resolved value. args holds the arguments parsed
// from the formatter name by a [PrefixRegistry] (nil otherwise) and ctx gives
// read access to the scopes being expanded.
//
// Formatters in a substitution chain run left to right, each receiving the
// previous one's result. A final non-string result is rendered like the
// "str" formatter does.
type FormatterFunc func(value any, args []string, ctx *Context) (any, error)

// PredicateFunc decides whether a predicate clause holds for the cursor
// value.
type PredicateFunc func(value any, args []string, ctx *Context) (bool, error)

// Registry resolves names to functions. An unknown name is not an error:
// Lookup reports ok == false and the caller decides what that means.
type Registry[F any] interface {
	Lookup(name string) (fn F, args []string, ok bool)
}

// SimpleRegistry resolves names by exact match in a fixed map.
type SimpleRegistry[F any] struct {
	funcs map[string]F
}

// NewSimpleRegistry returns a registry backed by a copy of funcs.
func NewSimpleRegistry[F any](funcs map[string]F) *SimpleRegistry[F] {
	m := make(map[string]F, len(funcs))
	for name, fn := range funcs {
		m[name] = fn
	}
	return &SimpleRegistry[F]{funcs: m}
}

func (r *SimpleRegistry[F]) Lookup(name string) (F, []string, bool) {
	fn, ok := r.funcs[name]
	return fn, nil, ok
}

// CallableRegistry resolves names with a function. A nil function result
// means the name is unknown; any other result is returned unchanged.
type CallableRegistry[F any] struct {
	resolve func(name string) F
}

// NewCallableRegistry returns a registry that delegates to resolve. resolve
// must be safe for concurrent use.
func NewCallableRegistry[F any](resolve func(name string) F) *CallableRegistry[F] {
	return &CallableRegistry[F]{resolve: resolve}
}

func (r *CallableRegistry[F]) Lookup(name string) (F, []string, bool) {
	fn := r.resolve(name)
	return fn, nil, !isNilFunc(fn)
}

// ChainedRegistry tries each member in order and returns the first hit.
type ChainedRegistry[F any] struct {
	registries []Registry[F]
}

// NewChainedRegistry returns a registry consulting registries in the given
// order. Nil members are skipped.
func NewChainedRegistry[F any](registries ...Registry[F]) *ChainedRegistry[F] {
	members := make([]Registry[F], 0, len(registries))
	for _, r := range registries {
		if r != nil {
			members = append(members, r)
		}
	}
	return &ChainedRegistry[F]{registries: members}
}

func (r *ChainedRegistry[F]) Lookup(name string) (F, []string, bool) {
	for _, reg := range r.registries {
		if fn, args, ok := reg.Lookup(name); ok {
			return fn, args, true
		}
	}
	var zero F
	return zero, nil, false
}

// PrefixRegistry resolves names that carry arguments. "pluralize es" matches
// the prefix "pluralize" with args ["es"]. The character right after the
// prefix is the argument separator, so "cycle/x x/y y" yields
// ["x x", "y y"]. The longest matching prefix wins and the separator may not
// be a letter, digit, '-' or '_'.
type PrefixRegistry[F any] struct {
	funcs    map[string]F
	prefixes []string
}

// NewPrefixRegistry returns a registry matching the keys of funcs as
// prefixes.
func NewPrefixRegistry[F any](funcs map[string]F) *PrefixRegistry[F] {
	r := &PrefixRegistry[F]{funcs: make(map[string]F, len(funcs))}
	for name, fn := range funcs {
		r.funcs[name] = fn
		r.prefixes = append(r.prefixes, name)
	}
	sort.Slice(r.prefixes, func(i, j int) bool {
		if len(r.prefixes[i]) != len(r.prefixes[j]) {
			return len(r.prefixes[i]) > len(r.prefixes[j])
		}
		return r.prefixes[i] < r.prefixes[j]
	})
	return r
}

func (r *PrefixRegistry[F]) Lookup(name string) (F, []string, bool) {
	if fn, ok := r.funcs[name]; ok {
		return fn, nil, true
	}
	for _, prefix := range r.prefixes {
		rest, ok := strings.CutPrefix(name, prefix)
		if !ok || rest == "" {
			continue
		}
		sep, size := utf8.DecodeRuneInString(rest)
		if isNameRune(sep) {
			continue
		}
		return r.funcs[prefix], strings.Split(rest[size:], string(sep)), true
	}
	var zero F
	return zero, nil, false
}

func isNameRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_'
}

func isNilFunc[F any](fn F) bool {
	v := reflect.ValueOf(fn)
	return !v.IsValid() || v.IsZero()
}
