package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/emiliopalmerini/runboard/internal/domain"
	"github.com/emiliopalmerini/runboard/internal/util"
	"github.com/emiliopalmerini/runboard/internal/view"
)

// parseMetrics turns repeated key=value flags into metric values.
func parseMetrics(pairs []string) (map[string]float64, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]float64, len(pairs))
	for _, pair := range pairs {
		k, v, err := splitPair(pair)
		if err != nil {
			return nil, err
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("metric %s needs a number, got %q", k, v)
		}
		out[k] = f
	}
	return out, nil
}

// parseParams turns repeated key=value flags into declarations. Integers,
// floats and booleans keep their type, anything else stays a string.
func parseParams(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		k, v, err := splitPair(pair)
		if err != nil {
			return nil, err
		}
		out[k] = scalar(v)
	}
	return out, nil
}

func splitPair(pair string) (string, string, error) {
	k, v, ok := strings.Cut(pair, "=")
	k, v = strings.TrimSpace(k), strings.TrimSpace(v)
	if !ok || k == "" {
		return "", "", fmt.Errorf("expected key=value, got %q", pair)
	}
	return k, v, nil
}

func scalar(v string) any {
	if i, err := strconv.ParseInt(v, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(v); err == nil {
		return b
	}
	return v
}

// parseColumns builds a column selection from a comma separated token list.
// Repeated tokens are kept once.
func parseColumns(s string) view.Selection {
	var sel view.Selection
	for _, token := range strings.Split(s, ",") {
		if token = strings.TrimSpace(token); token != "" && !sel.IsSelected(token) {
			sel = sel.AddColumn(token)
		}
	}
	return sel
}

// printTable writes the table layout as aligned text. The actions column has
// no meaning on a terminal and is left out.
func printTable(w io.Writer, t view.Table, now time.Time) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	labels := make([]string, 0, len(t.Header))
	for _, c := range t.Header[:len(t.Header)-1] {
		labels = append(labels, strings.ToUpper(c.Label))
	}
	fmt.Fprintln(tw, strings.Join(labels, "\t"))

	for _, row := range t.Rows {
		fmt.Fprintln(tw, strings.Join(rowValues(row, now), "\t"))
	}
	return tw.Flush()
}

func rowValues(row view.Row, now time.Time) []string {
	exp := row.Experiment
	run := "-"
	if exp.StartedAt != nil {
		run = util.FormatDuration(exp.Duration(now))
	}
	name := exp.Name
	if exp.IsBookmarked {
		name += " *"
	}
	values := []string{string(exp.Status), name, exp.UniqueName + " " + util.FormatAgo(exp.CreatedAt), run}
	for _, p := range row.Params {
		values = append(values, paramValue(exp, p))
	}
	for _, m := range row.Metrics {
		values = append(values, metricValue(exp, m))
	}
	return values
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
