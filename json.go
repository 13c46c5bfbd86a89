package jsontemplate

import (
	"bytes"
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
)

// Indented lets a value choose the indentation of the json and yaml
// formatters. Without it, json is compact and yaml uses its default indent.
type Indented interface {
	Indent() string
}

func formatJSON(value any, _ []string, _ *Context) (any, error) {
	indent := ""
	if ind, ok := value.(Indented); ok {
		indent = ind.Indent()
	}
	return encodeJSON(value, indent)
}

func formatJSONPretty(value any, _ []string, _ *Context) (any, error) {
	return encodeJSON(value, "  ")
}

// formatJSONL renders a list as one compact JSON document per line.
func formatJSONL(value any, _ []string, _ *Context) (any, error) {
	items, ok := asSequence(value)
	if !ok {
		return nil, fmt.Errorf("%w: jsonl expects a list, got %T", ErrFormatterInput, value)
	}
	var sb strings.Builder
	for _, item := range items {
		line, err := encodeJSON(item, "")
		if err != nil {
			return nil, err
		}
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	return sb.String(), nil
}

func encodeJSON(value any, indent string) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent != "" {
		enc.SetIndent("", indent)
	}
	if err := enc.Encode(value); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
