package templates

import (
	"github.com/emiliopalmerini/runboard/internal/domain"
	"github.com/emiliopalmerini/runboard/internal/util"
)

// EmptyListHint is the command suggested on an empty experiments list.
const EmptyListHint = "runboard experiment create --help"

// htmxConfig swaps 400 responses so filter errors reach the page, and leaves
// 204 responses unswapped.
const htmxConfig = `{"responseHandling":[{"code":"204","swap":false},{"code":"[23]..","swap":true},{"code":"400","swap":true,"error":false},{"code":"[45]..","swap":false,"error":true}]}`

// edgeClass marks the first and last cell of a column group.
func edgeClass(i, n int) string {
	class := "block"
	if i == 0 {
		class += " border-left"
	}
	if i == n-1 {
		class += " border-right"
	}
	return class
}

func statusClass(s domain.Status) string {
	switch {
	case s == domain.StatusSucceeded:
		return "status status-success"
	case s == domain.StatusFailed:
		return "status status-danger"
	case s == domain.StatusStopped || s == domain.StatusSkipped:
		return "status status-muted"
	case s.IsRunning():
		return "status status-info"
	default:
		return "status"
	}
}

func metricValue(exp *domain.Experiment, name string) string {
	v, ok := exp.LastMetric[name]
	if !ok {
		return "-"
	}
	return util.FormatMetric(v)
}

func paramValue(exp *domain.Experiment, name string) string {
	v, ok := exp.Declarations[name]
	if !ok {
		return "-"
	}
	return util.FormatValue(v)
}

// mayAct reports whether stop and delete are offered on exp. An empty
// currentUser allows every row.
func mayAct(exp *domain.Experiment, currentUser string) bool {
	return currentUser == "" || exp.User == currentUser
}

func description(exp *domain.Experiment) string {
	if exp.Description == nil {
		return ""
	}
	return *exp.Description
}

// pageRange renders "21-40 of 45".
func pageRange(offset, shown, count int64) string {
	if count == 0 || shown == 0 {
		return "0 of " + util.FormatCount(count)
	}
	return util.FormatCount(offset+1) + "-" + util.FormatCount(offset+shown) + " of " + util.FormatCount(count)
}
