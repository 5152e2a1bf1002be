package view

import "github.com/emiliopalmerini/runboard/internal/domain"

// Fixed leading columns of every experiments table.
var leadingColumns = []string{"Status", "Name", "Info", "Run"}

// HeaderCell is one <th> of the table.
type HeaderCell struct {
	Label   string
	Class   string
	ColSpan int
}

// RowActions are the per-row callbacks, bound to one experiment.
type RowActions struct {
	Delete   string
	Stop     string
	Bookmark string
}

// BindFunc binds row actions to an experiment unique name.
type BindFunc func(uniqueName string) RowActions

// Row is what the row renderer receives for one experiment.
type Row struct {
	Experiment *domain.Experiment
	Metrics    []string
	Params     []string
	Actions    RowActions
}

// Table is the layout of the experiments table.
type Table struct {
	// GroupHeader is nil unless at least one derived column is selected.
	GroupHeader []HeaderCell
	Header      []HeaderCell
	Rows        []Row
}

// ColumnCount returns the number of leaf columns.
func (t Table) ColumnCount() int {
	n := 0
	for _, c := range t.Header {
		n += c.ColSpan
	}
	return n
}

// BuildTable lays out the header rows for sel and one row per experiment.
func BuildTable(experiments []*domain.Experiment, sel Selection, bind BindFunc) Table {
	var t Table

	if sel.Len() > 0 {
		t.GroupHeader = append(t.GroupHeader, HeaderCell{Class: "top-header", ColSpan: len(leadingColumns)})
		if len(sel.Params) > 0 {
			t.GroupHeader = append(t.GroupHeader, HeaderCell{
				Label:   "Params",
				Class:   "top-header border-left border-right",
				ColSpan: len(sel.Params),
			})
		}
		if len(sel.Metrics) > 0 {
			t.GroupHeader = append(t.GroupHeader, HeaderCell{
				Label:   "Metrics",
				Class:   "top-header border-left border-right",
				ColSpan: len(sel.Metrics),
			})
		}
		t.GroupHeader = append(t.GroupHeader, HeaderCell{Class: "top-header", ColSpan: 1})
	}

	for _, label := range leadingColumns {
		t.Header = append(t.Header, HeaderCell{Label: label, Class: "block", ColSpan: 1})
	}
	t.Header = append(t.Header, groupCells(sel.Params)...)
	t.Header = append(t.Header, groupCells(sel.Metrics)...)
	t.Header = append(t.Header, HeaderCell{Label: "Actions", Class: "block pull-right", ColSpan: 1})

	t.Rows = make([]Row, 0, len(experiments))
	for _, exp := range experiments {
		if exp == nil {
			continue
		}
		row := Row{
			Experiment: exp,
			Metrics:    sel.Metrics,
			Params:     sel.Params,
		}
		if bind != nil {
			row.Actions = bind(exp.UniqueName)
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func groupCells(names []string) []HeaderCell {
	cells := make([]HeaderCell, 0, len(names))
	for i, name := range names {
		class := "block"
		if i == 0 {
			class += " border-left"
		}
		if i == len(names)-1 {
			class += " border-right"
		}
		cells = append(cells, HeaderCell{Label: name, Class: class, ColSpan: 1})
	}
	return cells
}
