package jsontemplate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jsontemplate "github.com/MjAbuz/json-template"
)

func constFormatter(s string) jsontemplate.FormatterFunc {
	return jsontemplate.ValueFunc(func(any) string { return s })
}

func call(t *testing.T, fn jsontemplate.FormatterFunc) any {
	t.Helper()
	out, err := fn(nil, nil, nil)
	require.NoError(t, err)
	return out
}

func TestSimpleRegistry(t *testing.T) {
	t.Parallel()
	funcs := map[string]jsontemplate.FormatterFunc{"a": constFormatter("A")}
	reg := jsontemplate.NewSimpleRegistry(funcs)
	funcs["b"] = constFormatter("B")

	fn, args, ok := reg.Lookup("a")
	require.True(t, ok)
	assert.Nil(t, args)
	assert.Equal(t, "A", call(t, fn))

	_, _, ok = reg.Lookup("b")
	assert.False(t, ok, "registry must not see later changes to the map")
}

func TestCallableRegistry(t *testing.T) {
	t.Parallel()
	reg := jsontemplate.NewCallableRegistry(func(name string) jsontemplate.FormatterFunc {
		if name == "x" {
			return constFormatter("X")
		}
		return nil
	})

	fn, _, ok := reg.Lookup("x")
	require.True(t, ok)
	assert.Equal(t, "X", call(t, fn))

	_, _, ok = reg.Lookup("y")
	assert.False(t, ok)
}

func TestChainedRegistry(t *testing.T) {
	t.Parallel()
	first := jsontemplate.NewSimpleRegistry(map[string]jsontemplate.FormatterFunc{"a": constFormatter("first")})
	second := jsontemplate.NewSimpleRegistry(map[string]jsontemplate.FormatterFunc{
		"a": constFormatter("second"),
		"b": constFormatter("B"),
	})
	reg := jsontemplate.NewChainedRegistry[jsontemplate.FormatterFunc](first, nil, second)

	fn, _, ok := reg.Lookup("a")
	require.True(t, ok)
	assert.Equal(t, "first", call(t, fn))

	fn, _, ok = reg.Lookup("b")
	require.True(t, ok)
	assert.Equal(t, "B", call(t, fn))

	_, _, ok = reg.Lookup("c")
	assert.False(t, ok)
}

func TestPrefixRegistry(t *testing.T) {
	t.Parallel()
	reg := jsontemplate.NewPrefixRegistry(map[string]jsontemplate.FormatterFunc{
		"cycle":       constFormatter("cycle"),
		"strftime":    constFormatter("strftime"),
		"strftime-gm": constFormatter("strftime-gm"),
	})
	tests := map[string]struct {
		name     string
		wantOK   bool
		wantFunc string
		wantArgs []string
	}{
		"exact":             {name: "cycle", wantOK: true, wantFunc: "cycle"},
		"space separator":   {name: "cycle red blue", wantOK: true, wantFunc: "cycle", wantArgs: []string{"red", "blue"}},
		"custom separator":  {name: "cycle/x x/y y", wantOK: true, wantFunc: "cycle", wantArgs: []string{"x x", "y y"}},
		"longest prefix":    {name: "strftime-gm.%H:%M", wantOK: true, wantFunc: "strftime-gm", wantArgs: []string{"%H:%M"}},
		"shorter prefix":    {name: "strftime.%Y", wantOK: true, wantFunc: "strftime", wantArgs: []string{"%Y"}},
		"name character":    {name: "cycles", wantOK: false},
		"hyphen is in name": {name: "cycle-x", wantOK: false},
		"unknown":           {name: "other", wantOK: false},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			fn, args, ok := reg.Lookup(tt.name)
			require.Equal(t, tt.wantOK, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.wantFunc, call(t, fn))
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}
