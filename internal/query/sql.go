package query

import (
	"strconv"
	"strings"
	"time"
)

var columns = map[string]string{
	FieldName:      "name",
	FieldStatus:    "status",
	FieldUser:      "user_name",
	FieldProject:   "project",
	FieldCreatedAt: "created_at",
}

// Where compiles the query to a SQL predicate over the experiments table
// with positional arguments. It returns "1=1" for an empty query.
func (q Query) Where() (string, []any) {
	if q.IsEmpty() {
		return "1=1", nil
	}

	var (
		clauses []string
		args    []any
	)
	for _, c := range q.Conditions {
		clause, cargs := c.sql()
		clauses = append(clauses, clause)
		args = append(args, cargs...)
	}
	return strings.Join(clauses, " AND "), args
}

func (c Condition) sql() (string, []any) {
	var (
		expr string
		args []any
	)
	switch c.Field {
	case FieldMetric:
		expr = "CAST(json_extract(last_metric, ?) AS REAL)"
		args = append(args, jsonPath(c.Key))
	case FieldParam:
		expr = "json_extract(declarations, ?)"
		args = append(args, jsonPath(c.Key))
	default:
		expr = columns[c.Field]
	}

	if c.Field == FieldCreatedAt {
		if clause, dargs, ok := c.dateSQL(expr); ok {
			return "(" + c.negate(clause) + ")", dargs
		}
	}

	var clause string
	switch c.Op {
	case OpEq:
		if len(c.Values) == 1 {
			clause = expr + " = ?"
		} else {
			clause = expr + " IN (" + strings.TrimSuffix(strings.Repeat("?, ", len(c.Values)), ", ") + ")"
		}
		for _, v := range c.Values {
			args = append(args, c.arg(v))
		}
	case OpRange:
		clause = expr + " BETWEEN ? AND ?"
		args = append(args, c.arg(c.Values[0]), c.arg(c.Values[1]))
	default:
		clause = expr + " " + string(c.Op) + " ?"
		args = append(args, c.arg(c.Values[0]))
	}

	return "(" + c.negate(clause) + ")", args
}

func (c Condition) negate(clause string) string {
	if c.Negate {
		return "NOT (" + clause + ")"
	}
	return clause
}

// dateSQL handles bounds given as a bare date. Timestamps are stored as full
// RFC3339 text, so an inclusive upper bound of YYYY-MM-DD must cover the whole
// day and is compiled to a strict comparison against the following day.
func (c Condition) dateSQL(expr string) (string, []any, bool) {
	switch c.Op {
	case OpRange:
		if next, ok := nextDay(c.Values[1]); ok {
			return expr + " >= ? AND " + expr + " < ?", []any{c.Values[0], next}, true
		}
	case OpLte:
		if next, ok := nextDay(c.Values[0]); ok {
			return expr + " < ?", []any{next}, true
		}
	case OpGt:
		if next, ok := nextDay(c.Values[0]); ok {
			return expr + " >= ?", []any{next}, true
		}
	}
	return "", nil, false
}

func nextDay(v string) (string, bool) {
	d, err := time.Parse(time.DateOnly, v)
	if err != nil {
		return "", false
	}
	return d.AddDate(0, 0, 1).Format(time.DateOnly), true
}

// arg converts a literal to the type SQLite's json_extract yields for the
// same JSON value, so comparisons are not done as text.
func (c Condition) arg(v string) any {
	switch c.Field {
	case FieldMetric:
		f, _ := strconv.ParseFloat(v, 64)
		return f
	case FieldParam:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
		switch v {
		case "true":
			return 1
		case "false":
			return 0
		}
		return v
	}
	return v
}

func jsonPath(key string) string {
	return `$."` + key + `"`
}
