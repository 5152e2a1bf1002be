package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddColumn(t *testing.T) {
	sel := Selection{}.AddColumn("metric:acc")

	assert.Equal(t, []string{"metric:acc"}, sel.Selected)
	assert.Equal(t, []string{"acc"}, sel.Metrics)
	assert.Empty(t, sel.Params)
}

func TestAddColumn_Buckets(t *testing.T) {
	sel := Selection{}
	for _, token := range []string{"param:lr", "metric:loss", " metric : acc ", "param:batch"} {
		sel = sel.AddColumn(token)
	}

	assert.Len(t, sel.Selected, 4)
	assert.Equal(t, []string{"loss", "acc"}, sel.Metrics)
	assert.Equal(t, []string{"lr", "batch"}, sel.Params)
}

func TestAddColumn_MalformedTokens(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{"unknown kind", "unknown:x"},
		{"no separator", "metric"},
		{"empty", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel := Selection{}.AddColumn(tt.token)
			assert.Equal(t, []string{tt.token}, sel.Selected)
			assert.Empty(t, sel.Metrics)
			assert.Empty(t, sel.Params)
		})
	}
}

func TestAddColumn_DoesNotDeduplicate(t *testing.T) {
	sel := Selection{}.AddColumn("metric:acc").AddColumn("metric:acc")

	assert.Equal(t, []string{"metric:acc", "metric:acc"}, sel.Selected)
	assert.Equal(t, []string{"acc", "acc"}, sel.Metrics)
}

func TestAddColumn_DoesNotMutateReceiver(t *testing.T) {
	base := Selection{}.AddColumn("metric:acc")
	_ = base.AddColumn("param:lr")
	_ = base.RemoveColumn(KindMetric, "acc")

	assert.Equal(t, []string{"metric:acc"}, base.Selected)
	assert.Equal(t, []string{"acc"}, base.Metrics)
	assert.Empty(t, base.Params)
}

func TestRemoveColumn(t *testing.T) {
	sel := Selection{}.AddColumn("metric:acc").RemoveColumn(KindMetric, "acc")

	assert.Empty(t, sel.Selected)
	assert.Empty(t, sel.Metrics)
	assert.Empty(t, sel.Params)
}

func TestRemoveColumn_OnlyNamedKind(t *testing.T) {
	sel := Selection{}.
		AddColumn("metric:x").
		AddColumn("param:x").
		RemoveColumn(KindMetric, "x")

	assert.Equal(t, []string{"param:x"}, sel.Selected)
	assert.Empty(t, sel.Metrics)
	assert.Equal(t, []string{"x"}, sel.Params)
}

func TestRemoveColumn_Missing(t *testing.T) {
	sel := Selection{}.AddColumn("metric:acc").AddColumn("param:lr")
	got := sel.RemoveColumn(KindParam, "momentum")

	assert.Equal(t, sel.Selected, got.Selected)
	assert.Equal(t, sel.Metrics, got.Metrics)
	assert.Equal(t, sel.Params, got.Params)
}

func TestRemoveColumn_UnknownKindToken(t *testing.T) {
	sel := Selection{}.AddColumn("unknown:x").RemoveColumn("unknown", "x")
	assert.Empty(t, sel.Selected)
}

func TestRemoveColumn_Duplicates(t *testing.T) {
	sel := Selection{}.AddColumn("metric:acc").AddColumn("metric:acc").RemoveColumn(KindMetric, "acc")
	assert.Empty(t, sel.Selected)
	assert.Empty(t, sel.Metrics)
}

// Metrics and Params always match the well-formed tokens of Selected.
func TestSelection_ProjectionProperty(t *testing.T) {
	ops := []struct {
		add    string
		remove [2]string
	}{
		{add: "metric:acc"},
		{add: "param:lr"},
		{add: "bogus"},
		{add: "metric:loss"},
		{remove: [2]string{KindMetric, "acc"}},
		{add: "param:batch"},
		{add: "other:thing"},
		{remove: [2]string{KindParam, "lr"}},
		{remove: [2]string{KindParam, "nope"}},
	}

	sel := Selection{}
	for i, op := range ops {
		if op.add != "" {
			sel = sel.AddColumn(op.add)
		} else {
			sel = sel.RemoveColumn(op.remove[0], op.remove[1])
			assert.NotContains(t, sel.Selected, Token(op.remove[0], op.remove[1]), "step %d", i)
		}

		var metrics, params []string
		for _, token := range sel.Selected {
			kind, name, ok := ParseToken(token)
			if !ok {
				continue
			}
			switch kind {
			case KindMetric:
				metrics = append(metrics, name)
			case KindParam:
				params = append(params, name)
			}
		}
		assert.ElementsMatch(t, metrics, sel.Metrics, "step %d", i)
		assert.ElementsMatch(t, params, sel.Params, "step %d", i)
	}

	require.Equal(t, []string{"bogus", "metric:loss", "param:batch", "other:thing"}, sel.Selected)
}

func TestParseToken(t *testing.T) {
	tests := []struct {
		token    string
		wantKind string
		wantName string
		wantOK   bool
	}{
		{"metric:acc", "metric", "acc", true},
		{"  param:lr  ", "param", "lr", true},
		{"metric:a:b", "metric", "a:b", true},
		{"unknown:x", "unknown", "x", true},
		{"metric", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			kind, name, ok := ParseToken(tt.token)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantKind, kind)
			assert.Equal(t, tt.wantName, name)
		})
	}
}
