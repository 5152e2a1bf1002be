package view

import (
	"net/url"
	"strings"
)

// ActiveFunc reports whether the view is the one currently shown by the host,
// given the host's current location.
type ActiveFunc func(currentURL string) bool

// RouteGate returns an ActiveFunc matching route against the current location.
// A route starting with "#" is compared with the location fragment, anything
// else with the path. Query strings are ignored on both sides.
func RouteGate(route string) ActiveFunc {
	return func(currentURL string) bool {
		if currentURL == "" {
			return false
		}
		u, err := url.Parse(currentURL)
		if err != nil {
			return false
		}
		if strings.HasPrefix(route, "#") {
			fragment, _, _ := strings.Cut(u.Fragment, "?")
			return "#"+fragment == route
		}
		return strings.TrimSuffix(u.Path, "/") == strings.TrimSuffix(route, "/")
	}
}

// AnyRoute combines gates; the view is active when one of them matches.
func AnyRoute(gates ...ActiveFunc) ActiveFunc {
	return func(currentURL string) bool {
		for _, g := range gates {
			if g(currentURL) {
				return true
			}
		}
		return false
	}
}
