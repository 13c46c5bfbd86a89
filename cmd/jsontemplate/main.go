// Package main provides the jsontemplate CLI that expands a template file
// against JSON, YAML or TOML data.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"unicode"

	"github.com/valyala/fasttemplate"

	jsontemplate "github.com/MjAbuz/json-template"
)

type arrayFlags []string

func (af *arrayFlags) String() string {
	return strings.Join(*af, ",")
}

func (af *arrayFlags) Set(value string) error {
	*af = append(*af, value)
	return nil
}

// extraFormatters exposes a few string functions under their own names,
// looked up on demand.
var extraFormatters = jsontemplate.NewCallableRegistry(
	func(name string) jsontemplate.FormatterFunc {
		switch name {
		case "lower":
			return jsontemplate.StringFunc(strings.ToLower)
		case "upper":
			return jsontemplate.StringFunc(strings.ToUpper)
		case "trim":
			return jsontemplate.StringFunc(strings.TrimSpace)
		case "title":
			return jsontemplate.StringFunc(titleCase)
		}
		return nil
	},
)

func titleCase(s string) string {
	prev := ' '
	return strings.Map(func(r rune) rune {
		out := r
		if unicode.IsSpace(prev) {
			out = unicode.ToTitle(r)
		}
		prev = r
		return out
	}, s)
}

type config struct {
	templateFile   string
	dataFile       string
	vars           arrayFlags
	jsonl          bool
	output         string
	moreFormatters bool
}

func parseFlags(args []string) (*config, error) {
	var cfg config

	fs := flag.NewFlagSet("jsontemplate", flag.ContinueOnError)

	fs.StringVar(
		&cfg.templateFile, "template", "",
		"template file (default: stdin)",
	)

	fs.StringVar(
		&cfg.dataFile, "data", "",
		"data file: .json, .yaml, .yml or .toml; .json lines with -jsonl",
	)

	fs.Var(
		&cfg.vars, "var",
		"NAME=VALUE top-level variable (repeatable)",
	)

	fs.BoolVar(
		&cfg.jsonl, "jsonl", false,
		"expand the template once per line of the data file",
	)

	fs.StringVar(
		&cfg.output, "output", "",
		"output file path (default: stdout); {index} is replaced per item with -jsonl",
	)

	fs.BoolVar(
		&cfg.moreFormatters, "more-formatters", false,
		"enable the lower, upper, trim and title formatters",
	)

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if cfg.templateFile == "" && cfg.dataFile == "" && cfg.jsonl {
		return nil, errors.New("-jsonl requires -data when the template is read from stdin")
	}

	return &cfg, nil
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	const errCtx = "jsontemplate"

	cfg, err := parseFlags(args)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	tmpl, err := loadTemplate(cfg, stdin)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	if cfg.jsonl {
		err = expandLines(cfg, tmpl, stdin, stdout)
	} else {
		err = expandOnce(cfg, tmpl, stdout)
	}

	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	return nil
}

func loadTemplate(cfg *config, stdin io.Reader) (*jsontemplate.Template, error) {
	var opts []jsontemplate.Option
	if cfg.moreFormatters {
		opts = append(opts, jsontemplate.WithMoreFormatters(extraFormatters))
	}

	if cfg.templateFile == "" {
		return jsontemplate.FromReader(stdin, opts...)
	}

	f, err := os.Open(cfg.templateFile) //nolint:gosec // path from CLI flag
	if err != nil {
		return nil, fmt.Errorf("reading template: %w", err)
	}
	defer f.Close()

	tmpl, err := jsontemplate.FromReader(f, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", cfg.templateFile, err)
	}

	return tmpl, nil
}

func expandOnce(cfg *config, tmpl *jsontemplate.Template, stdout io.Writer) error {
	data, err := loadData(cfg.dataFile)
	if err != nil {
		return err
	}

	if data, err = applyVars(data, cfg.vars); err != nil {
		return err
	}

	out, err := tmpl.Expand(data)
	if err != nil {
		return err
	}

	if cfg.output != "" {
		if err := os.WriteFile(cfg.output, []byte(out), 0o666); err != nil { //nolint:gosec // path from CLI flag
			return fmt.Errorf("writing output: %w", err)
		}

		return nil
	}

	_, err = io.WriteString(stdout, out)

	return err
}

func expandLines(cfg *config, tmpl *jsontemplate.Template, stdin io.Reader, stdout io.Writer) error {
	in := stdin
	if cfg.dataFile != "" {
		f, err := os.Open(cfg.dataFile) //nolint:gosec // path from CLI flag
		if err != nil {
			return fmt.Errorf("reading data: %w", err)
		}
		defer f.Close()

		in = f
	}

	var decodeErr error

	items := withVars(jsonLines(in, &decodeErr), cfg.vars, &decodeErr)

	w, closeOutput, err := lineOutput(cfg.output, stdout)
	if err != nil {
		return err
	}

	err = jsontemplate.ExecuteIter(w, tmpl, items)

	if cerr := closeOutput(); err == nil {
		err = cerr
	}

	if err == nil {
		err = decodeErr
	}

	return err
}

func withVars(seq iter.Seq[any], vars []string, errp *error) iter.Seq[any] {
	if len(vars) == 0 {
		return seq
	}

	return func(yield func(any) bool) {
		for item := range seq {
			out, err := applyVars(item, vars)
			if err != nil {
				*errp = err
				return
			}

			if !yield(out) {
				return
			}
		}
	}
}

// lineOutput picks the writer for -jsonl expansion: stdout, one file, or
// one file per item when the path contains {index}.
func lineOutput(path string, stdout io.Writer) (io.Writer, func() error, error) {
	switch {
	case path == "":
		return stdout, func() error { return nil }, nil
	case strings.Contains(path, "{index}"):
		return &fileSequence{pattern: path}, func() error { return nil }, nil
	}

	f, err := os.Create(path) //nolint:gosec // path from CLI flag
	if err != nil {
		return nil, nil, fmt.Errorf("writing output: %w", err)
	}

	return f, f.Close, nil
}

// fileSequence writes each Write call to a new file named by stamping the
// 1-based call count into pattern. Template.Execute writes once per item.
type fileSequence struct {
	pattern string
	n       int
}

func (fs *fileSequence) Write(p []byte) (int, error) {
	fs.n++

	path := fasttemplate.ExecuteStringStd(
		fs.pattern, "{", "}",
		map[string]any{"index": strconv.Itoa(fs.n)},
	)

	if err := os.WriteFile(path, p, 0o666); err != nil { //nolint:gosec // path from CLI flag
		return 0, fmt.Errorf("writing output: %w", err)
	}

	return len(p), nil
}

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}
