package jsontemplate

import (
	"fmt"
	"strconv"
	"strings"
)

// Mappable lets a value supply ordered key-value pairs to the env formatter
// instead of being read as a mapping.
type Mappable interface {
	Pairs() []KeyValue
}

// KeyValue is a single key-value pair.
type KeyValue struct {
	Key   string
	Value string
}

// formatEnv renders KEY=value lines from a mapping, keys sorted. The
// "export" argument prefixes each line with "export " and "quote" wraps the
// values in double quotes: {vars|env export quote}.
func formatEnv(value any, args []string, _ *Context) (any, error) {
	var export, quoted bool
	for _, arg := range args {
		switch arg {
		case "export":
			export = true
		case "quote":
			quoted = true
		default:
			return nil, fmt.Errorf("%w: env argument %q", ErrFormatterArgs, arg)
		}
	}
	kvs, err := envPairs(value)
	if err != nil {
		return nil, err
	}
	prefix := ""
	if export {
		prefix = "export "
	}
	var sb strings.Builder
	for _, kv := range kvs {
		val := kv.Value
		if quoted {
			val = strconv.Quote(val)
		}
		fmt.Fprintf(&sb, "%s%s=%s\n", prefix, kv.Key, val)
	}
	return sb.String(), nil
}

func envPairs(value any) ([]KeyValue, error) {
	if m, ok := value.(Mappable); ok {
		return m.Pairs(), nil
	}
	keys, m, ok := asMapping(value)
	if !ok {
		return nil, fmt.Errorf("%w: env expects a mapping, got %T", ErrFormatterInput, value)
	}
	kvs := make([]KeyValue, len(keys))
	for i, k := range keys {
		kvs[i] = KeyValue{Key: k, Value: cellString(m[k])}
	}
	return kvs, nil
}
