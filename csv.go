package jsontemplate

import (
	"encoding/csv"
	"fmt"
	"slices"
	"strings"
)

// Rower lets a list item supply its own row to the tabular formatters
// (csv, tsv, table, markdown, html-table).
type Rower interface {
	Row() []string
}

// Headed supplies column headers for items that implement Rower.
type Headed interface {
	Header() []string
}

// Delimited overrides the csv field delimiter for items that implement
// Rower. Default: comma.
type Delimited interface {
	Delimiter() rune
}

// tableData is a value laid out as rows of cells. numeric marks columns
// whose cells all came from numbers.
type tableData struct {
	header  []string
	rows    [][]string
	numeric []bool
	comma   rune
}

func (d *tableData) cols() int {
	n := len(d.header)
	for _, row := range d.rows {
		n = max(n, len(row))
	}
	return n
}

// tabulate lays out a list of mappings (one column per key, keys sorted), a
// list of lists, a list of Rower items, a list of scalars (one column) or a
// single mapping (key and value columns).
func tabulate(value any) (*tableData, error) {
	items, ok := asSequence(value)
	if !ok {
		keys, m, ok := asMapping(value)
		if !ok {
			return nil, fmt.Errorf("%w: expected a list or mapping, got %T", ErrFormatterInput, value)
		}
		d := &tableData{header: []string{"key", "value"}}
		d.numeric = []bool{false, true}
		for _, k := range keys {
			d.rows = append(d.rows, []string{k, cellString(m[k])})
			d.numeric[1] = d.numeric[1] && isNumber(m[k])
		}
		return d, nil
	}
	d := &tableData{}
	if len(items) == 0 {
		return d, nil
	}
	switch first := items[0].(type) {
	case Rower:
		if h, ok := first.(Headed); ok {
			d.header = h.Header()
		}
		if c, ok := first.(Delimited); ok {
			d.comma = c.Delimiter()
		}
		for _, item := range items {
			r, ok := item.(Rower)
			if !ok {
				return nil, fmt.Errorf("%w: %T does not implement Rower", ErrFormatterInput, item)
			}
			d.rows = append(d.rows, r.Row())
		}
		return d, nil
	}
	if _, _, ok := asMapping(items[0]); ok {
		return tabulateMappings(items)
	}
	var cells [][]any
	for _, item := range items {
		if row, ok := asSequence(item); ok {
			cells = append(cells, row)
		} else {
			cells = append(cells, []any{item})
		}
	}
	d.fill(cells)
	return d, nil
}

func tabulateMappings(items []any) (*tableData, error) {
	var columns []string
	maps := make([]map[string]any, len(items))
	for i, item := range items {
		keys, m, ok := asMapping(item)
		if !ok {
			return nil, fmt.Errorf("%w: row %d is %T, not a mapping", ErrFormatterInput, i+1, item)
		}
		maps[i] = m
		for _, k := range keys {
			if !slices.Contains(columns, k) {
				columns = append(columns, k)
			}
		}
	}
	slices.Sort(columns)
	cells := make([][]any, len(maps))
	for i, m := range maps {
		row := make([]any, len(columns))
		for j, col := range columns {
			row[j] = m[col]
		}
		cells[i] = row
	}
	d := &tableData{header: columns}
	d.fill(cells)
	return d, nil
}

func (d *tableData) fill(cells [][]any) {
	n := 0
	for _, row := range cells {
		n = max(n, len(row))
	}
	d.numeric = make([]bool, n)
	seen := make([]bool, n)
	for i := range d.numeric {
		d.numeric[i] = true
	}
	for _, row := range cells {
		out := make([]string, len(row))
		for j, v := range row {
			out[j] = cellString(v)
			if v == nil {
				continue
			}
			seen[j] = true
			d.numeric[j] = d.numeric[j] && isNumber(v)
		}
		d.rows = append(d.rows, out)
	}
	for i := range d.numeric {
		d.numeric[i] = d.numeric[i] && seen[i]
	}
}

func cellString(v any) string {
	if v == nil {
		return ""
	}
	return toString(v)
}

func isNumber(v any) bool {
	if _, ok := v.(bool); ok {
		return false
	}
	_, ok := toFloat(v)
	return ok
}

// headerArg reports whether args ask for the header row to be left out.
func headerArg(name string, args []string) (bool, error) {
	switch {
	case len(args) == 0:
		return true, nil
	case len(args) == 1 && args[0] == "noheader":
		return false, nil
	}
	return false, fmt.Errorf("%w: %s accepts only \"noheader\", got %q", ErrFormatterArgs, name, args)
}

func formatCSV(value any, args []string, _ *Context) (any, error) {
	withHeader, err := headerArg("csv", args)
	if err != nil {
		return nil, err
	}
	d, err := tabulate(value)
	if err != nil {
		return nil, err
	}
	var sb strings.Builder
	cw := csv.NewWriter(&sb)
	if d.comma != 0 {
		cw.Comma = d.comma
	}
	if withHeader && len(d.header) > 0 {
		if err := cw.Write(d.header); err != nil {
			return nil, err
		}
	}
	if err := cw.WriteAll(d.rows); err != nil {
		return nil, err
	}
	return sb.String(), nil
}

func formatTSV(value any, args []string, _ *Context) (any, error) {
	withHeader, err := headerArg("tsv", args)
	if err != nil {
		return nil, err
	}
	d, err := tabulate(value)
	if err != nil {
		return nil, err
	}
	var sb strings.Builder
	if withHeader && len(d.header) > 0 {
		sb.WriteString(strings.Join(d.header, "\t"))
		sb.WriteByte('\n')
	}
	for _, row := range d.rows {
		sb.WriteString(strings.Join(row, "\t"))
		sb.WriteByte('\n')
	}
	return sb.String(), nil
}
