package jsontemplate

import (
	"errors"
	"fmt"
)

var errPredicateArgs = errors.New("wrong number of predicate arguments")

var builtinPredicates Registry[PredicateFunc] = NewPrefixRegistry(map[string]PredicateFunc{
	"singular": isSingular,
	"plural":   isPlural,
	"Debug":    isDebug,
	"test":     testVariable,
	"template": hasTemplate,
})

func isSingular(value any, _ []string, _ *Context) (bool, error) {
	f, ok := toFloat(value)
	return ok && f == 1, nil
}

func isPlural(value any, _ []string, _ *Context) (bool, error) {
	f, ok := toFloat(value)
	return ok && f > 1, nil
}

// isDebug reports whether the data sets a truthy "debug" variable.
func isDebug(_ any, _ []string, ctx *Context) (bool, error) {
	val, ok := ctx.Lookup("debug")
	return ok && truthy(val), nil
}

func testVariable(_ any, args []string, ctx *Context) (bool, error) {
	if len(args) != 1 {
		return false, fmt.Errorf("%w: test takes one variable name, got %d", errPredicateArgs, len(args))
	}
	val, ok := ctx.Lookup(args[0])
	return ok && truthy(val), nil
}

func hasTemplate(_ any, args []string, ctx *Context) (bool, error) {
	if len(args) != 1 {
		return false, fmt.Errorf("%w: template takes one template name, got %d", errPredicateArgs, len(args))
	}
	return ctx.Defined(args[0]), nil
}
