package explain

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wbrown/janus-graph/graph"
	"github.com/wbrown/janus-graph/graph/annotations"
	"github.com/wbrown/janus-graph/graph/parser"
	"github.com/wbrown/janus-graph/graph/traversal"
)

func parse(t *testing.T, input string, cfg graph.Config) *traversal.Plan {
	t.Helper()
	plan, err := parser.Parse(input)
	require.NoError(t, err)
	return plan.Bind(graph.NewHandle("test", cfg))
}

func TestExplainRows(t *testing.T) {
	input := `V(1).outE("knows").has(weight.gt(0.5)).inV().has(age.gt(30)).values("name")`
	plan := parse(t, input, graph.Config{
		MultiKeyFetchEnabled:         true,
		EagerPropertyPrefetchEnabled: true,
		VertexCacheSizeHint:          100,
	})

	var seen []string
	report, err := Explain(plan, func(e annotations.Event) { seen = append(seen, e.Name) })
	require.NoError(t, err)

	assert.Equal(t, input, report.Before)
	assert.Equal(t, input, plan.String(), "input plan must not change")
	assert.Equal(t,
		`V(1).outE("knows"){filter=weight.gt(0.5) multikey}.inV(){prefetch=100}.has(age.gt(30)).values("name"){multikey}`,
		report.After)
	assert.True(t, report.Changed)
	assert.Equal(t, report.After, report.Plan.String())

	assert.Equal(t, []StepRow{
		{Path: "0", Step: "V(1)"},
		{Path: "1", Step: `outE("knows")`, Filters: "weight.gt(0.5)", Tags: "multikey"},
		{Path: "2", Step: "inV()", Tags: "prefetch(100)"},
		{Path: "3", Step: "has(age.gt(30))"},
		{Path: "4", Step: `values("name")`, Tags: "multikey"},
	}, report.Rows)

	assert.NotEmpty(t, report.Events)
	assert.Len(t, seen, len(report.Events))
	assert.Contains(t, seen, annotations.OptimizerApplied)
	assert.Contains(t, seen, annotations.StrategyApplied)
}

func TestExplainNestedRows(t *testing.T) {
	plan := parse(t, `V(1).local(outE("knows").range(1,3).inV())`, graph.Config{})
	report, err := Explain(plan, nil)
	require.NoError(t, err)

	assert.Equal(t, `V(1).local(outE("knows"){limit=3}.range(1,3).inV())`, report.After)
	assert.Equal(t, []StepRow{
		{Path: "0", Step: "V(1)"},
		{Path: "1", Step: "local"},
		{Path: "1.0", Step: `outE("knows")`, Limit: "3"},
		{Path: "1.1", Step: "range(1,3)"},
		{Path: "1.2", Step: "inV()"},
	}, report.Rows)
}

func TestExplainUnbound(t *testing.T) {
	plan, err := parser.Parse(`out("knows").range(0,3)`)
	require.NoError(t, err)

	report, err := Explain(plan, nil)
	require.NoError(t, err)
	assert.False(t, report.Changed)
	assert.Equal(t, report.Before, report.After)
	var names []string
	for _, e := range report.Events {
		names = append(names, e.Name)
	}
	assert.Contains(t, names, annotations.OptimizerSkipped)
	assert.NotContains(t, names, annotations.OptimizerApplied)
}

func TestReportWrite(t *testing.T) {
	plan := parse(t, `outE("knows").has(weight.gt(0.5)).limit(5)`, graph.Config{MultiKeyFetchEnabled: true})
	report, err := Explain(plan, nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	report.Write(&buf, false)
	out := buf.String()
	assert.Contains(t, out, `before: outE("knows").has(weight.gt(0.5)).range(0,5)`)
	assert.Contains(t, out, `after:  outE("knows"){filter=weight.gt(0.5) limit=5 multikey}`)
	assert.Contains(t, out, "weight.gt(0.5)")
	assert.Contains(t, out, "decisions:")
	assert.NotContains(t, out, "(no change)")
	assert.NotContains(t, out, "\x1b[")

	table := report.Table()
	assert.Contains(t, table, "filters")
	assert.Contains(t, table, `outE("knows")`)
}

func TestResultTable(t *testing.T) {
	assert.Equal(t, "_No results_\n", ResultTable(nil))

	out := ResultTable([]graph.Element{
		graph.Vertex{ID: 1, Label: "person"},
		graph.PropertyValue{Value: "alice"},
	})
	assert.Contains(t, out, "v[1]")
	assert.Contains(t, out, "vertex")
	assert.Contains(t, out, "alice")
	assert.Contains(t, out, "_2 results_")
}
