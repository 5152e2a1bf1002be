package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRouteGate_Fragment(t *testing.T) {
	gate := RouteGate("#experiments")

	tests := []struct {
		url  string
		want bool
	}{
		{"http://localhost:8080/#experiments", true},
		{"http://localhost:8080/#experiments?offset=20", true},
		{"http://localhost:8080/#jobs", false},
		{"http://localhost:8080/experiments", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, gate(tt.url))
		})
	}
}

func TestRouteGate_Path(t *testing.T) {
	gate := RouteGate("/experiments")

	tests := []struct {
		url  string
		want bool
	}{
		{"http://localhost:8080/experiments", true},
		{"http://localhost:8080/experiments/?query=status:running", true},
		{"/experiments?offset=20", true},
		{"http://localhost:8080/bookmarks/experiments", false},
		{"http://localhost:8080/", false},
		{"://bad", false},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, gate(tt.url))
		})
	}
}

func TestAnyRoute(t *testing.T) {
	gate := AnyRoute(RouteGate("/experiments"), RouteGate("/bookmarks/experiments"))

	assert.True(t, gate("http://h/experiments"))
	assert.True(t, gate("http://h/bookmarks/experiments"))
	assert.False(t, gate("http://h/settings"))
}
