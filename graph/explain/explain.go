// Package explain renders what the optimizer did to a plan: the plan before
// and after, a per-step table of folded constraints and tags, and the
// decision events recorded along the way.
package explain

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/wbrown/janus-graph/graph"
	"github.com/wbrown/janus-graph/graph/annotations"
	"github.com/wbrown/janus-graph/graph/strategy"
	"github.com/wbrown/janus-graph/graph/traversal"
)

// Report is the outcome of optimizing one plan
type Report struct {
	Before  string
	After   string
	Changed bool
	Rows    []StepRow
	Events  []annotations.Event

	// Plan is the optimized copy; the input plan is left untouched
	Plan *traversal.Plan
}

// StepRow describes one step of the optimized plan
type StepRow struct {
	Path    string // top-level index, dotted for steps inside local blocks
	Step    string // the step without pushdown annotations
	Filters string
	Order   string
	Limit   string
	Tags    string
}

// Explain optimizes a clone of plan with the default strategies and
// reports the result. Events are forwarded to handler as they occur when
// it is non-nil.
func Explain(plan *traversal.Plan, handler annotations.Handler) (*Report, error) {
	collector := annotations.NewCollector(handler)
	optimized := plan.Clone()
	if err := strategy.Apply(optimized, strategy.Default(collector), collector); err != nil {
		return nil, err
	}

	return &Report{
		Before:  plan.String(),
		After:   optimized.String(),
		Changed: plan.Fingerprint() != optimized.Fingerprint(),
		Rows:    Rows(optimized),
		Events:  collector.Events(),
		Plan:    optimized,
	}, nil
}

// Rows flattens a plan into table rows, descending into local blocks
func Rows(plan *traversal.Plan) []StepRow {
	var rows []StepRow
	appendRows(&rows, plan, "")
	return rows
}

func appendRows(rows *[]StepRow, plan *traversal.Plan, prefix string) {
	for i, s := range plan.Steps() {
		path := prefix + strconv.Itoa(i)
		row := StepRow{Path: path, Step: s.String()}

		switch st := s.(type) {
		case *traversal.BackendExpand:
			row.Step = st.Expand.String()
		case *traversal.BackendProperties:
			row.Step = st.FetchProperties.String()
		case *traversal.BackendEdgeVertex:
			row.Step = st.EdgeVertex.String()
			row.Tags = tags(false, st.EagerPrefetch, st.PrefetchBatchSize)
		case *traversal.PerElementBlock:
			row.Step = "local"
		}
		if pd := traversal.PushdownOf(s); pd != nil {
			row.Filters = joinStrings(pd.Filters, " & ")
			row.Order = joinStrings(pd.Orders, ", ")
			if pd.HasLimit() {
				row.Limit = strconv.Itoa(pd.Limit)
			}
			row.Tags = tags(pd.MultiKeyFetch, pd.EagerPrefetch, pd.PrefetchBatchSize)
		}
		*rows = append(*rows, row)

		if b, ok := s.(*traversal.PerElementBlock); ok && b.Inner != nil {
			appendRows(rows, b.Inner, path+".")
		}
	}
}

func joinStrings[T fmt.Stringer](items []T, sep string) string {
	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = it.String()
	}
	return strings.Join(parts, sep)
}

func tags(multiKey, prefetch bool, batch *uint) string {
	var parts []string
	if multiKey {
		parts = append(parts, "multikey")
	}
	if prefetch {
		if batch != nil {
			parts = append(parts, fmt.Sprintf("prefetch(%d)", *batch))
		} else {
			parts = append(parts, "prefetch")
		}
	}
	return strings.Join(parts, " ")
}

// Table renders the step rows as a markdown table
func (r *Report) Table() string {
	columns := []string{"#", "step", "filters", "order", "limit", "tags"}
	rows := make([][]string, len(r.Rows))
	for i, row := range r.Rows {
		rows[i] = []string{row.Path, row.Step, row.Filters, row.Order, row.Limit, row.Tags}
	}
	return markdownTable(columns, rows)
}

// Write prints the full report. Headings are colored when useColor is set;
// event lines follow the formatter's own terminal detection.
func (r *Report) Write(w io.Writer, useColor bool) {
	heading := func(s string) string {
		if !useColor {
			return s
		}
		return color.New(color.FgCyan, color.Bold).Sprint(s)
	}

	fmt.Fprintf(w, "%s %s\n", heading("before:"), r.Before)
	fmt.Fprintf(w, "%s  %s\n", heading("after:"), r.After)
	if !r.Changed {
		fmt.Fprintln(w, "(no change)")
	}
	fmt.Fprintln(w)
	fmt.Fprint(w, r.Table())

	if len(r.Events) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s\n", heading("decisions:"))
	formatter := annotations.NewOutputFormatter(w)
	for _, event := range r.Events {
		fmt.Fprintln(w, formatter.Format(event))
	}
}

// ResultTable renders an execution result as a markdown table
func ResultTable(elems []graph.Element) string {
	if len(elems) == 0 {
		return "_No results_\n"
	}
	rows := make([][]string, len(elems))
	for i, e := range elems {
		rows[i] = []string{strconv.Itoa(i), kindOf(e), e.String()}
	}
	out := markdownTable([]string{"#", "kind", "element"}, rows)
	return out + fmt.Sprintf("\n_%d results_\n", len(elems))
}

func kindOf(e graph.Element) string {
	switch e.(type) {
	case graph.Vertex:
		return "vertex"
	case graph.Edge:
		return "edge"
	case graph.Property:
		return "property"
	case graph.PropertyValue:
		return "value"
	case graph.PropertyKey:
		return "key"
	default:
		return "unknown"
	}
}

func markdownTable(columns []string, rows [][]string) string {
	tableString := &strings.Builder{}

	alignment := make([]tw.Align, len(columns))
	for i := range alignment {
		alignment[i] = tw.AlignNone
	}

	table := tablewriter.NewTable(tableString,
		tablewriter.WithRenderer(renderer.NewMarkdown()),
		tablewriter.WithAlignment(alignment),
		tablewriter.WithHeaderAutoFormat(tw.Off),
	)
	table.Header(columns)
	for _, row := range rows {
		table.Append(row)
	}
	table.Render()

	return tableString.String()
}
