package jsontemplate_test

import (
	"bytes"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jsontemplate "github.com/MjAbuz/json-template"
)

func TestExecuteIter(t *testing.T) {
	t.Parallel()
	tmpl := jsontemplate.MustCompile("{name};")
	items := []map[string]any{{"name": "a"}, {"name": "b"}}
	var buf bytes.Buffer
	err := jsontemplate.ExecuteIter(&buf, tmpl, slices.Values(items))
	require.NoError(t, err)
	assert.Equal(t, "a;b;", buf.String())
}

func TestExecuteIterStopsAtFirstError(t *testing.T) {
	t.Parallel()
	tmpl := jsontemplate.MustCompile("{name};")
	items := []map[string]any{{"name": "a"}, {}, {"name": "c"}}
	var buf bytes.Buffer
	err := jsontemplate.ExecuteIter(&buf, tmpl, slices.Values(items))
	require.ErrorIs(t, err, jsontemplate.ErrUndefinedVariable)
	assert.Equal(t, "a;", buf.String())
}

func TestExecuteIterEmpty(t *testing.T) {
	t.Parallel()
	tmpl := jsontemplate.MustCompile("{name}")
	var buf bytes.Buffer
	err := jsontemplate.ExecuteIter(&buf, tmpl, slices.Values([]any(nil)))
	require.NoError(t, err)
	assert.Empty(t, buf.String())
}

func TestExecuteChan(t *testing.T) {
	t.Parallel()
	tmpl := jsontemplate.MustCompile("{@}\n")
	ch := make(chan int, 3)
	ch <- 1
	ch <- 2
	ch <- 3
	close(ch)
	var buf bytes.Buffer
	err := jsontemplate.ExecuteChan[int](&buf, tmpl, ch)
	require.NoError(t, err)
	assert.Equal(t, "1\n2\n3\n", buf.String())
}
