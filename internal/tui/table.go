package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/emiliopalmerini/runboard/internal/domain"
	"github.com/emiliopalmerini/runboard/internal/pkg/tui/theme"
	"github.com/emiliopalmerini/runboard/internal/util"
	"github.com/emiliopalmerini/runboard/internal/view"
)

// Leaf column widths. Derived param and metric columns share one width.
var leadingWidths = []int{11, 26, 22, 9}

const (
	derivedWidth = 12
	actionsWidth = 4
)

// widths returns the width of every leaf column of t.
func widths(t view.Table) []int {
	out := make([]int, 0, len(t.Header))
	for i := range t.Header {
		switch {
		case i < len(leadingWidths):
			out = append(out, leadingWidths[i])
		case i == len(t.Header)-1:
			out = append(out, actionsWidth)
		default:
			out = append(out, derivedWidth)
		}
	}
	return out
}

func cell(s string, width int) string {
	if lipgloss.Width(s) > width-1 {
		r := []rune(s)
		if len(r) > width-2 {
			s = string(r[:max(width-2, 0)]) + "…"
		}
	}
	return lipgloss.NewStyle().Width(width).MaxWidth(width).Render(s)
}

// renderTable draws the layout built by view.BuildTable, highlighting the
// row under cursor.
func renderTable(t view.Table, cursor int, now time.Time, styles *theme.Styles) string {
	w := widths(t)
	var lines []string

	if t.GroupHeader != nil {
		var cells []string
		leaf := 0
		for _, c := range t.GroupHeader {
			span := 0
			for i := 0; i < c.ColSpan && leaf < len(w); i++ {
				span += w[leaf]
				leaf++
			}
			cells = append(cells, styles.GroupHeader.Width(span).Render(c.Label))
		}
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}

	var header []string
	for i, c := range t.Header {
		header = append(header, styles.Header.Render(cell(strings.ToUpper(c.Label), w[i])))
	}
	lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, header...))

	for i, row := range t.Rows {
		lines = append(lines, renderRow(row, w, i == cursor, now, styles))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderRow(row view.Row, w []int, selected bool, now time.Time, styles *theme.Styles) string {
	exp := row.Experiment
	style := styles.Row
	if selected {
		style = styles.RowSelected
	}

	run := "-"
	if exp.StartedAt != nil {
		run = util.FormatDuration(exp.Duration(now))
	}
	values := []string{
		exp.Status.String(),
		exp.Name,
		exp.UniqueName + " " + util.FormatAgo(exp.CreatedAt),
		run,
	}
	for _, name := range row.Params {
		values = append(values, paramValue(exp, name))
	}
	for _, name := range row.Metrics {
		values = append(values, metricValue(exp, name))
	}
	mark := ""
	if exp.IsBookmarked {
		mark = "★"
	}
	values = append(values, mark)

	cells := make([]string, len(values))
	for i, v := range values {
		s := style
		if i == 0 && !selected {
			s = styles.Status(exp.Status)
		}
		cells[i] = s.Render(cell(v, w[i]))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cells...)
}

func metricValue(exp *domain.Experiment, name string) string {
	if v, ok := exp.LastMetric[name]; ok {
		return util.FormatMetric(v)
	}
	return "-"
}

func paramValue(exp *domain.Experiment, name string) string {
	if v, ok := exp.Declarations[name]; ok {
		return util.FormatValue(v)
	}
	return "-"
}
