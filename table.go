package jsontemplate

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
)

// BorderStyle controls table border characters.
type BorderStyle int

const (
	BorderRounded BorderStyle = iota // ╭─╮╰╯│┬┴├┤┼
	BorderNone                       // No borders, space-separated columns
	BorderASCII                      // +-+|
	BorderHeavy                      // ┏━┓┗┛┃┳┻┣┫╋
	BorderDouble                     // ╔═╗╚╝║╦╩╠╣╬
)

var borderNames = map[string]BorderStyle{
	"rounded": BorderRounded,
	"plain":   BorderNone,
	"ascii":   BorderASCII,
	"heavy":   BorderHeavy,
	"double":  BorderDouble,
}

// Alignment controls column text alignment.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignCenter
	AlignRight
)

type borderChars struct {
	topLeft, topRight, bottomLeft, bottomRight string
	horizontal, vertical                       string
	topTee, bottomTee, leftTee, rightTee       string
	cross                                      string
}

var borderSets = map[BorderStyle]borderChars{
	BorderRounded: {
		topLeft: "╭", topRight: "╮", bottomLeft: "╰", bottomRight: "╯",
		horizontal: "─", vertical: "│",
		topTee: "┬", bottomTee: "┴", leftTee: "├", rightTee: "┤",
		cross: "┼",
	},
	BorderASCII: {
		topLeft: "+", topRight: "+", bottomLeft: "+", bottomRight: "+",
		horizontal: "-", vertical: "|",
		topTee: "+", bottomTee: "+", leftTee: "+", rightTee: "+",
		cross: "+",
	},
	BorderHeavy: {
		topLeft: "┏", topRight: "┓", bottomLeft: "┗", bottomRight: "┛",
		horizontal: "━", vertical: "┃",
		topTee: "┳", bottomTee: "┻", leftTee: "┣", rightTee: "┫",
		cross: "╋",
	},
	BorderDouble: {
		topLeft: "╔", topRight: "╗", bottomLeft: "╚", bottomRight: "╝",
		horizontal: "═", vertical: "║",
		topTee: "╦", bottomTee: "╩", leftTee: "╠", rightTee: "╣",
		cross: "╬",
	},
}

// tableWith returns a table formatter with a fixed border style.
func tableWith(style BorderStyle) FormatterFunc {
	return func(value any, _ []string, _ *Context) (any, error) {
		return renderTable(value, style, 0)
	}
}

// formatTable renders a table. Arguments pick the border style and a
// maximum column width: {rows|table ascii 20}.
func formatTable(value any, args []string, _ *Context) (any, error) {
	style := BorderRounded
	maxWidth := 0
	for _, arg := range args {
		if s, ok := borderNames[arg]; ok {
			style = s
			continue
		}
		n, err := strconv.Atoi(arg)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("%w: table argument %q", ErrFormatterArgs, arg)
		}
		maxWidth = n
	}
	return renderTable(value, style, maxWidth)
}

func renderTable(value any, style BorderStyle, maxWidth int) (string, error) {
	d, err := tabulate(value)
	if err != nil {
		return "", err
	}
	if len(d.rows) == 0 && len(d.header) == 0 {
		return "", nil
	}
	numCols := d.cols()
	widths := computeWidths(numCols, d.header, d.rows)
	if maxWidth > 0 {
		for i := range widths {
			widths[i] = min(widths[i], maxWidth)
		}
	}
	aligns := d.alignments(numCols)
	var sb strings.Builder
	if style == BorderNone {
		renderPlainTable(&sb, d, widths, aligns)
	} else {
		renderBorderedTable(&sb, d, widths, aligns, borderSets[style])
	}
	return sb.String(), nil
}

// alignments right-aligns numeric columns.
func (d *tableData) alignments(numCols int) []Alignment {
	aligns := make([]Alignment, numCols)
	for i := range aligns {
		if i < len(d.numeric) && d.numeric[i] {
			aligns[i] = AlignRight
		}
	}
	return aligns
}

func computeWidths(numCols int, header []string, rows [][]string) []int {
	widths := make([]int, numCols)
	for i, h := range header {
		widths[i] = max(widths[i], runewidth.StringWidth(h))
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < numCols {
				widths[i] = max(widths[i], runewidth.StringWidth(cell))
			}
		}
	}
	return widths
}

func renderPlainTable(sb *strings.Builder, d *tableData, widths []int, aligns []Alignment) {
	if len(d.header) > 0 {
		writePlainRow(sb, d.header, widths, aligns)
		sep := make([]string, len(widths))
		for i, width := range widths {
			sep[i] = strings.Repeat("-", width)
		}
		sb.WriteString(strings.Join(sep, "  "))
		sb.WriteByte('\n')
	}
	for _, row := range d.rows {
		writePlainRow(sb, row, widths, aligns)
	}
}

func writePlainRow(sb *strings.Builder, cells []string, widths []int, aligns []Alignment) {
	parts := make([]string, len(widths))
	for i, width := range widths {
		parts[i] = formatTableCell(cellAt(cells, i), width, aligns[i])
	}
	sb.WriteString(strings.TrimRight(strings.Join(parts, "  "), " "))
	sb.WriteByte('\n')
}

func renderBorderedTable(sb *strings.Builder, d *tableData, widths []int, aligns []Alignment, bc borderChars) {
	drawHLine(sb, widths, bc.topLeft, bc.horizontal, bc.topTee, bc.topRight)
	if len(d.header) > 0 {
		drawBorderedRow(sb, d.header, widths, aligns, bc.vertical)
		drawHLine(sb, widths, bc.leftTee, bc.horizontal, bc.cross, bc.rightTee)
	}
	for _, row := range d.rows {
		drawBorderedRow(sb, row, widths, aligns, bc.vertical)
	}
	drawHLine(sb, widths, bc.bottomLeft, bc.horizontal, bc.bottomTee, bc.bottomRight)
}

func drawHLine(sb *strings.Builder, widths []int, left, fill, mid, right string) {
	sb.WriteString(left)
	for i, width := range widths {
		sb.WriteString(strings.Repeat(fill, width+2))
		if i < len(widths)-1 {
			sb.WriteString(mid)
		}
	}
	sb.WriteString(right)
	sb.WriteByte('\n')
}

func drawBorderedRow(sb *strings.Builder, cells []string, widths []int, aligns []Alignment, vert string) {
	sb.WriteString(vert)
	for i, width := range widths {
		sb.WriteString(" ")
		sb.WriteString(formatTableCell(cellAt(cells, i), width, aligns[i]))
		sb.WriteString(" ")
		if i < len(widths)-1 {
			sb.WriteString(vert)
		}
	}
	sb.WriteString(vert)
	sb.WriteByte('\n')
}

// formatMarkdown renders a GitHub-flavored markdown table. Columns are at
// least three wide so alignment markers fit.
func formatMarkdown(value any, _ []string, _ *Context) (any, error) {
	d, err := tabulate(value)
	if err != nil {
		return nil, err
	}
	if len(d.rows) == 0 && len(d.header) == 0 {
		return "", nil
	}
	numCols := d.cols()
	header := d.header
	if len(header) == 0 {
		header = make([]string, numCols)
	}
	widths := computeWidths(numCols, header, d.rows)
	for i := range widths {
		widths[i] = max(widths[i], 3)
	}
	aligns := d.alignments(numCols)

	var sb strings.Builder
	writeMarkdownRow(&sb, header, widths, aligns)
	sep := make([]string, numCols)
	for i, width := range widths {
		switch aligns[i] {
		case AlignRight:
			sep[i] = strings.Repeat("-", width-1) + ":"
		case AlignCenter:
			sep[i] = ":" + strings.Repeat("-", width-2) + ":"
		default:
			sep[i] = strings.Repeat("-", width)
		}
	}
	fmt.Fprintf(&sb, "| %s |\n", strings.Join(sep, " | "))
	for _, row := range d.rows {
		writeMarkdownRow(&sb, row, widths, aligns)
	}
	return sb.String(), nil
}

func writeMarkdownRow(sb *strings.Builder, cells []string, widths []int, aligns []Alignment) {
	padded := make([]string, len(widths))
	for i, width := range widths {
		cell := strings.ReplaceAll(cellAt(cells, i), "|", `\|`)
		padded[i] = alignCell(cell, width, aligns[i])
	}
	fmt.Fprintf(sb, "| %s |\n", strings.Join(padded, " | "))
}

func cellAt(cells []string, i int) string {
	if i < len(cells) {
		return cells[i]
	}
	return ""
}

func formatTableCell(s string, width int, align Alignment) string {
	if width > 0 && runewidth.StringWidth(s) > width {
		if width <= 3 {
			s = runewidth.Truncate(s, width, "")
		} else {
			s = runewidth.Truncate(s, width, "...")
		}
	}
	return alignCell(s, width, align)
}

func alignCell(s string, width int, align Alignment) string {
	pad := width - runewidth.StringWidth(s)
	if pad <= 0 {
		return s
	}
	switch align {
	case AlignRight:
		return strings.Repeat(" ", pad) + s
	case AlignCenter:
		left := pad / 2
		right := pad - left
		return strings.Repeat(" ", left) + s + strings.Repeat(" ", right)
	default:
		return s + strings.Repeat(" ", pad)
	}
}
