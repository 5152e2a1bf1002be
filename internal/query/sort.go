package query

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidSort = errors.New("invalid sort")

// DefaultSort orders newest experiments first.
const DefaultSort = "-created_at"

// SortOptions are the sort values offered by the table.
var SortOptions = []string{"-created_at", "created_at", "-updated_at", "updated_at", "name", "-name"}

var sortColumns = map[string]string{
	"created_at": "created_at",
	"updated_at": "updated_at",
	"name":       "name",
}

// Sort is a parsed sort option. A leading "-" means descending.
type Sort struct {
	Field string
	Desc  bool
}

// ParseSort parses s, falling back to DefaultSort when s is empty.
func ParseSort(s string) (Sort, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		s = DefaultSort
	}
	field := strings.TrimPrefix(s, "-")
	if _, ok := sortColumns[field]; !ok {
		return Sort{}, fmt.Errorf("%w: %q", ErrInvalidSort, s)
	}
	return Sort{Field: field, Desc: strings.HasPrefix(s, "-")}, nil
}

// OrderBy returns the ORDER BY expression. Ties are broken by sequence so
// pagination is stable. The zero Sort orders by DefaultSort.
func (s Sort) OrderBy() string {
	if s.Field == "" {
		s, _ = ParseSort(DefaultSort)
	}
	dir := "ASC"
	if s.Desc {
		dir = "DESC"
	}
	return fmt.Sprintf("%s %s, sequence %s", sortColumns[s.Field], dir, dir)
}

func (s Sort) String() string {
	if s.Desc {
		return "-" + s.Field
	}
	return s.Field
}
