// Package query parses the experiment filter language used by the table
// search box and compiles it to a SQL predicate.
//
// A query is a comma separated list of conditions, each "field:value":
//
//	status:running|scheduled, metric.loss:<0.3, created_at:2024-01-01..2024-02-01
//
// A leading "~" negates the value. Comparison operators and ".." ranges are
// accepted on metric.*, param.* and created_at. "|" separates alternatives.
package query

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/emiliopalmerini/runboard/internal/domain"
)

var ErrInvalidQuery = errors.New("invalid query")

// Op is the comparison of a condition.
type Op string

const (
	OpEq    Op = "="
	OpLt    Op = "<"
	OpLte   Op = "<="
	OpGt    Op = ">"
	OpGte   Op = ">="
	OpRange Op = ".."
)

const (
	FieldName      = "name"
	FieldStatus    = "status"
	FieldUser      = "user"
	FieldProject   = "project"
	FieldCreatedAt = "created_at"
	FieldMetric    = "metric"
	FieldParam     = "param"
)

var keyPattern = regexp.MustCompile(`^[A-Za-z0-9_\-]+$`)

// Condition is one parsed "field:value" term.
type Condition struct {
	Field  string
	Key    string // metric or param name
	Negate bool
	Op     Op
	Values []string // alternatives for OpEq, [lo, hi] for OpRange
}

// Query is a conjunction of conditions.
type Query struct {
	Conditions []Condition
}

func (q Query) IsEmpty() bool {
	return len(q.Conditions) == 0
}

// Parse parses a filter string. An empty string is an empty query.
func Parse(s string) (Query, error) {
	var q Query
	for _, term := range strings.Split(s, ",") {
		term = strings.TrimSpace(term)
		if term == "" {
			continue
		}
		c, err := parseCondition(term)
		if err != nil {
			return Query{}, err
		}
		q.Conditions = append(q.Conditions, c)
	}
	return q, nil
}

func parseCondition(term string) (Condition, error) {
	field, value, ok := strings.Cut(term, ":")
	if !ok {
		return Condition{}, fmt.Errorf("%w: %q is not field:value", ErrInvalidQuery, term)
	}
	field = strings.TrimSpace(field)
	value = strings.TrimSpace(value)

	c := Condition{Field: field}
	switch {
	case strings.HasPrefix(field, FieldMetric+"."):
		c.Field, c.Key = FieldMetric, strings.TrimPrefix(field, FieldMetric+".")
	case strings.HasPrefix(field, FieldParam+"."):
		c.Field, c.Key = FieldParam, strings.TrimPrefix(field, FieldParam+".")
	case field == FieldName, field == FieldStatus, field == FieldUser, field == FieldProject, field == FieldCreatedAt:
	default:
		return Condition{}, fmt.Errorf("%w: unknown field %q", ErrInvalidQuery, field)
	}
	if (c.Field == FieldMetric || c.Field == FieldParam) && !keyPattern.MatchString(c.Key) {
		return Condition{}, fmt.Errorf("%w: bad name in %q", ErrInvalidQuery, field)
	}

	if strings.HasPrefix(value, "~") {
		c.Negate = true
		value = strings.TrimSpace(value[1:])
	}
	if value == "" {
		return Condition{}, fmt.Errorf("%w: empty value for %s", ErrInvalidQuery, field)
	}

	switch {
	case strings.HasPrefix(value, "<="):
		c.Op, c.Values = OpLte, []string{strings.TrimSpace(value[2:])}
	case strings.HasPrefix(value, ">="):
		c.Op, c.Values = OpGte, []string{strings.TrimSpace(value[2:])}
	case strings.HasPrefix(value, "<"):
		c.Op, c.Values = OpLt, []string{strings.TrimSpace(value[1:])}
	case strings.HasPrefix(value, ">"):
		c.Op, c.Values = OpGt, []string{strings.TrimSpace(value[1:])}
	case strings.Contains(value, ".."):
		lo, hi, _ := strings.Cut(value, "..")
		c.Op, c.Values = OpRange, []string{strings.TrimSpace(lo), strings.TrimSpace(hi)}
	default:
		c.Op = OpEq
		for _, alt := range strings.Split(value, "|") {
			if alt = strings.TrimSpace(alt); alt != "" {
				c.Values = append(c.Values, alt)
			}
		}
	}

	return c, c.validate()
}

func (c Condition) validate() error {
	for _, v := range c.Values {
		if v == "" {
			return fmt.Errorf("%w: empty value for %s", ErrInvalidQuery, c.Field)
		}
	}
	if len(c.Values) == 0 {
		return fmt.Errorf("%w: empty value for %s", ErrInvalidQuery, c.Field)
	}

	ordered := c.Field == FieldMetric || c.Field == FieldParam || c.Field == FieldCreatedAt
	if c.Op != OpEq && !ordered {
		return fmt.Errorf("%w: %s only supports equality", ErrInvalidQuery, c.Field)
	}

	if c.Field == FieldStatus {
		for _, v := range c.Values {
			if !domain.Status(v).IsValid() {
				return fmt.Errorf("%w: unknown status %q", ErrInvalidQuery, v)
			}
		}
	}
	if c.Field == FieldMetric {
		for _, v := range c.Values {
			if _, err := strconv.ParseFloat(v, 64); err != nil {
				return fmt.Errorf("%w: metric %s needs a number, got %q", ErrInvalidQuery, c.Key, v)
			}
		}
	}
	return nil
}
