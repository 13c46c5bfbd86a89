package jsontemplate

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// formatYAML renders the value as a YAML document. An optional argument sets
// the indent width: {config|yaml 2}.
func formatYAML(value any, args []string, _ *Context) (any, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	switch {
	case len(args) > 0:
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("%w: yaml indent %q", ErrFormatterArgs, args[0])
		}
		enc.SetIndent(n)
	default:
		if ind, ok := value.(Indented); ok {
			enc.SetIndent(len(ind.Indent()))
		}
	}
	if err := enc.Encode(value); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
