package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emiliopalmerini/runboard/internal/domain"
)

func labels(cells []HeaderCell) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = c.Label
	}
	return out
}

func TestBuildTable_NoDerivedColumns(t *testing.T) {
	table := BuildTable(nil, Selection{}, nil)

	assert.Nil(t, table.GroupHeader)
	assert.Equal(t, []string{"Status", "Name", "Info", "Run", "Actions"}, labels(table.Header))
	assert.Empty(t, table.Rows)
	assert.Equal(t, 5, table.ColumnCount())
}

func TestBuildTable_Groups(t *testing.T) {
	sel := Selection{}.
		AddColumn("metric:acc").
		AddColumn("param:lr").
		AddColumn("param:batch").
		AddColumn("metric:loss").
		AddColumn("metric:f1")

	table := BuildTable(nil, sel, nil)

	require.Len(t, table.GroupHeader, 4)
	assert.Equal(t, 4, table.GroupHeader[0].ColSpan)
	assert.Equal(t, "Params", table.GroupHeader[1].Label)
	assert.Equal(t, 2, table.GroupHeader[1].ColSpan)
	assert.Equal(t, "Metrics", table.GroupHeader[2].Label)
	assert.Equal(t, 3, table.GroupHeader[2].ColSpan)
	assert.Equal(t, 1, table.GroupHeader[3].ColSpan)

	assert.Equal(t,
		[]string{"Status", "Name", "Info", "Run", "lr", "batch", "acc", "loss", "f1", "Actions"},
		labels(table.Header))

	assert.Equal(t, "block border-left", table.Header[4].Class)
	assert.Equal(t, "block border-right", table.Header[5].Class)
	assert.Equal(t, "block border-left", table.Header[6].Class)
	assert.Equal(t, "block", table.Header[7].Class)
	assert.Equal(t, "block border-right", table.Header[8].Class)
}

func TestBuildTable_SingleColumnGroup(t *testing.T) {
	table := BuildTable(nil, Selection{}.AddColumn("metric:acc"), nil)

	require.Len(t, table.GroupHeader, 3)
	assert.Equal(t, "Metrics", table.GroupHeader[1].Label)
	assert.Equal(t, "block border-left border-right", table.Header[4].Class)
}

func TestBuildTable_RowsBindActions(t *testing.T) {
	experiments := []*domain.Experiment{
		{UniqueName: "alice.mnist.1"},
		{UniqueName: "alice.mnist.2"},
	}
	sel := Selection{}.AddColumn("metric:acc").AddColumn("param:lr")

	table := BuildTable(experiments, sel, func(name string) RowActions {
		return RowActions{Delete: "/delete/" + name, Stop: "/stop/" + name}
	})

	require.Len(t, table.Rows, 2)
	for i, row := range table.Rows {
		assert.Same(t, experiments[i], row.Experiment)
		assert.Equal(t, []string{"acc"}, row.Metrics)
		assert.Equal(t, []string{"lr"}, row.Params)
		assert.Equal(t, "/delete/"+experiments[i].UniqueName, row.Actions.Delete)
		assert.Equal(t, "/stop/"+experiments[i].UniqueName, row.Actions.Stop)
	}
}

func TestBuildTable_SkipsNilExperiments(t *testing.T) {
	experiments := []*domain.Experiment{nil, {UniqueName: "alice.mnist.1"}, nil}

	var bound []string
	table := BuildTable(experiments, Selection{}, func(name string) RowActions {
		bound = append(bound, name)
		return RowActions{}
	})

	require.Len(t, table.Rows, 1)
	assert.Same(t, experiments[1], table.Rows[0].Experiment)
	assert.Equal(t, []string{"alice.mnist.1"}, bound)
}
