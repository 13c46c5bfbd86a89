package jsontemplate

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	ugcPolicyOnce    sync.Once
	ugcPolicy        *bluemonday.Policy
	strictPolicyOnce sync.Once
	strictPolicy     *bluemonday.Policy
)

// sanitizeHTML keeps the markup allowed in user-generated content and drops
// the rest, scripts and event handlers included.
func sanitizeHTML(raw string) string {
	ugcPolicyOnce.Do(func() {
		ugcPolicy = bluemonday.UGCPolicy()
	})
	return ugcPolicy.Sanitize(raw)
}

// stripTags removes every tag and leaves the text content escaped.
func stripTags(raw string) string {
	strictPolicyOnce.Do(func() {
		strictPolicy = bluemonday.StrictPolicy()
	})
	return strings.TrimSpace(strictPolicy.Sanitize(raw))
}

// formatHTMLTable renders a <table> with escaped cells. Numeric columns get
// a right-aligned style.
func formatHTMLTable(value any, _ []string, _ *Context) (any, error) {
	d, err := tabulate(value)
	if err != nil {
		return nil, err
	}
	aligns := d.alignments(d.cols())

	var sb strings.Builder
	sb.WriteString("<table>\n")
	if len(d.header) > 0 {
		sb.WriteString("  <thead>\n    <tr>\n")
		for i, col := range d.header {
			sb.WriteString("      <th" + alignStyle(aligns, i) + ">" + html.EscapeString(col) + "</th>\n")
		}
		sb.WriteString("    </tr>\n  </thead>\n")
	}
	sb.WriteString("  <tbody>\n")
	for _, row := range d.rows {
		sb.WriteString("    <tr>\n")
		for i, cell := range row {
			sb.WriteString("      <td" + alignStyle(aligns, i) + ">" + html.EscapeString(cell) + "</td>\n")
		}
		sb.WriteString("    </tr>\n")
	}
	sb.WriteString("  </tbody>\n</table>\n")
	return sb.String(), nil
}

func alignStyle(aligns []Alignment, col int) string {
	if col >= len(aligns) {
		return ""
	}
	switch aligns[col] {
	case AlignRight:
		return ` style="text-align: right"`
	case AlignCenter:
		return ` style="text-align: center"`
	default:
		return ""
	}
}
