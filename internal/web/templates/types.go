package templates

import (
	"net/url"
	"strconv"
	"time"

	"github.com/a-h/templ"

	"github.com/emiliopalmerini/runboard/internal/experiments"
	"github.com/emiliopalmerini/runboard/internal/view"
)

// ExperimentsView is everything the experiments view renders for one page.
type ExperimentsView struct {
	ViewID string
	Title  string
	// BasePath is the mounted view's URL prefix, "/views/<id>".
	BasePath      string
	Page          *experiments.Page
	Table         view.Table
	Selection     view.Selection
	Candidates    []string
	SortOptions   []string
	UseFilters    bool
	Bookmarks     bool
	User          string
	IsCurrentUser bool
	// CurrentUser, when set, limits stop and delete to that user's rows.
	CurrentUser string
	Error       string
	Now         time.Time
}

// PartialURL is the re-render URL of the view at offset, carrying the current
// filter, sort and scope.
func (v ExperimentsView) PartialURL(offset int64) templ.SafeURL {
	q := url.Values{}
	if offset > 0 {
		q.Set("offset", strconv.FormatInt(offset, 10))
	}
	if v.Page != nil {
		if v.Page.Query != "" {
			q.Set("query", v.Page.Query)
		}
		if v.Page.Sort != "" {
			q.Set("sort", v.Page.Sort)
		}
	}
	if v.Bookmarks {
		q.Set("bookmarks", "true")
	}
	if v.User != "" {
		q.Set("user", v.User)
	}
	u := v.BasePath + "/experiments"
	if enc := q.Encode(); enc != "" {
		u += "?" + enc
	}
	return templ.SafeURL(u)
}

// ListURL is the filter form target. The form supplies the query string.
func (v ExperimentsView) ListURL() templ.SafeURL {
	return templ.SafeURL(v.BasePath + "/experiments")
}

// UnmountURL drops the view when the page goes away.
func (v ExperimentsView) UnmountURL() templ.SafeURL {
	return templ.SafeURL(v.BasePath)
}

// ColumnsURL is the endpoint adding a column to the view.
func (v ExperimentsView) ColumnsURL() templ.SafeURL {
	return templ.SafeURL(v.BasePath + "/columns")
}

// RemoveColumnURL is the endpoint removing kind:name from the view.
func (v ExperimentsView) RemoveColumnURL(kind, name string) templ.SafeURL {
	return templ.SafeURL(v.BasePath + "/columns/" + url.PathEscape(kind) + "/" + url.PathEscape(name))
}

func (v ExperimentsView) offset() int64 {
	if v.Page == nil {
		return 0
	}
	return v.Page.Offset
}

func (v ExperimentsView) query() string {
	if v.Page == nil {
		return ""
	}
	return v.Page.Query
}

func (v ExperimentsView) sort() string {
	if v.Page == nil {
		return ""
	}
	return v.Page.Sort
}
