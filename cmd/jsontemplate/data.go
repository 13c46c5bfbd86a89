package main

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

var errBadVar = errors.New("variable must be NAME=VALUE")

// loadData decodes a data file chosen by extension: .json, .yaml, .yml or
// .toml. An empty path yields an empty mapping.
func loadData(path string) (any, error) {
	const errCtx = "loading data"

	if path == "" {
		return map[string]any{}, nil
	}

	content, err := os.ReadFile(path) //nolint:gosec // path from CLI flag
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	var data any

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(content))
		dec.UseNumber()
		err = dec.Decode(&data)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(content, &data)
	case ".toml":
		var m map[string]any
		_, err = toml.Decode(string(content), &m)
		data = m
	default:
		return nil, fmt.Errorf("%s: unsupported data file extension %q", errCtx, ext)
	}

	if err != nil {
		return nil, fmt.Errorf("%s: %s: %w", errCtx, path, err)
	}

	return data, nil
}

// applyVars sets top-level string variables from NAME=VALUE pairs. The
// data must be a mapping when any are given.
func applyVars(data any, vars []string) (any, error) {
	const errCtx = "applying variables"

	if len(vars) == 0 {
		return data, nil
	}

	m, ok := data.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%s: data is %T, not a mapping", errCtx, data)
	}

	out := make(map[string]any, len(m)+len(vars))
	for k, v := range m {
		out[k] = v
	}

	for _, v := range vars {
		name, value, found := strings.Cut(v, "=")
		if !found || name == "" {
			return nil, fmt.Errorf("%s: %w: %q", errCtx, errBadVar, v)
		}

		out[name] = value
	}

	return out, nil
}

// jsonLines yields one decoded document per non-blank line of r. A decode
// error ends the sequence and is reported through errp.
func jsonLines(r io.Reader, errp *error) iter.Seq[any] {
	return func(yield func(any) bool) {
		sc := bufio.NewScanner(r)
		sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

		lineNo := 0
		for sc.Scan() {
			lineNo++

			line := bytes.TrimSpace(sc.Bytes())
			if len(line) == 0 {
				continue
			}

			dec := json.NewDecoder(bytes.NewReader(line))
			dec.UseNumber()

			var item any
			if err := dec.Decode(&item); err != nil {
				*errp = fmt.Errorf("line %d: %w", lineNo, err)
				return
			}

			if !yield(item) {
				return
			}
		}

		if err := sc.Err(); err != nil {
			*errp = err
		}
	}
}
