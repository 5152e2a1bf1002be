// Package view holds the experiments table view state: which metric and param
// columns are displayed, which columns could be added, and the table layout
// derived from both. Everything here is pure; hosts own the state values.
package view

import "strings"

const (
	KindMetric = "metric"
	KindParam  = "param"

	separator = ":"
)

// Selection is the column state of one mounted experiments view.
// Metrics and Params are a projection of Selected and are rebuilt on every
// transition.
type Selection struct {
	Selected []string
	Metrics  []string
	Params   []string
}

// Token formats a column token such as "metric:loss".
func Token(kind, name string) string {
	return kind + separator + name
}

// ParseToken splits a token on its first separator. ok is false when the
// token has no separator. The kind is returned even when it is not one of
// the recognized kinds.
func ParseToken(token string) (kind, name string, ok bool) {
	kind, name, ok = strings.Cut(strings.TrimSpace(token), separator)
	if !ok {
		return "", "", false
	}
	return strings.TrimSpace(kind), strings.TrimSpace(name), true
}

// AddColumn appends token to the selection. It does not check for an
// identical token already selected; callers only offer Candidates.
func (s Selection) AddColumn(token string) Selection {
	selected := make([]string, 0, len(s.Selected)+1)
	selected = append(selected, s.Selected...)
	selected = append(selected, token)
	return project(selected)
}

// RemoveColumn drops every selected token naming kind:name. Removing a column
// that is not selected returns an equal selection.
func (s Selection) RemoveColumn(kind, name string) Selection {
	selected := make([]string, 0, len(s.Selected))
	for _, token := range s.Selected {
		k, n, ok := ParseToken(token)
		if ok && k == kind && n == name {
			continue
		}
		selected = append(selected, token)
	}
	return project(selected)
}

// IsSelected reports whether token is already part of the selection.
func (s Selection) IsSelected(token string) bool {
	for _, selected := range s.Selected {
		if selected == token {
			return true
		}
	}
	return false
}

// Len returns the number of displayed derived columns.
func (s Selection) Len() int {
	return len(s.Metrics) + len(s.Params)
}

func project(selected []string) Selection {
	sel := Selection{
		Selected: selected,
		Metrics:  []string{},
		Params:   []string{},
	}
	for _, token := range selected {
		kind, name, ok := ParseToken(token)
		if !ok {
			continue
		}
		switch kind {
		case KindMetric:
			sel.Metrics = append(sel.Metrics, name)
		case KindParam:
			sel.Params = append(sel.Params, name)
		}
	}
	return sel
}
