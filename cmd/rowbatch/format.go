package main

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/bawdo/rowbatch/batch"
	"github.com/bawdo/rowbatch/records"
)

func newTableWriter(title string) table.Writer {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleLight)
	if title != "" {
		tw.SetTitle(title)
	}
	return tw
}

// formatValue renders a bound or record value for display.
func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case string:
		return "'" + strings.ReplaceAll(x, "'", "''") + "'"
	case []byte:
		return fmt.Sprintf("x'%x'", x)
	default:
		return fmt.Sprint(x)
	}
}

func formatBindSet(vals []any) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = formatValue(v)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func formatMembers(members []int) string {
	parts := make([]string, len(members))
	for i, m := range members {
		parts[i] = fmt.Sprint(m + 1)
	}
	return strings.Join(parts, ",")
}

// formatPlan renders a compiled plan: one row per bucket in prepared mode,
// one row per statement in static mode.
func formatPlan(p *batch.Plan) string {
	var b strings.Builder
	if p.Static {
		tw := newTableWriter("static")
		tw.AppendHeader(table.Row{"#", "Statement"})
		for i, stmt := range p.Statements {
			tw.AppendRow(table.Row{i + 1, stmt})
		}
		b.WriteString(tw.Render())
		b.WriteByte('\n')
	} else {
		tw := newTableWriter("prepared")
		tw.AppendHeader(table.Row{"#", "SQL", "Bind sets", "Operations"})
		for i, bucket := range p.Buckets {
			sets := make([]string, len(bucket.BindSets))
			for j, set := range bucket.BindSets {
				sets[j] = formatBindSet(set)
			}
			tw.AppendRow(table.Row{i + 1, bucket.SQL, strings.Join(sets, "\n"), formatMembers(bucket.Members)})
		}
		b.WriteString(tw.Render())
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "  %d queries, %d distinct statements, %.1f bind sets per statement",
		p.Queries(), p.Distinct(), p.AverageBindSets())
	if len(p.Skipped) > 0 {
		fmt.Fprintf(&b, ", %d skipped (%s)", len(p.Skipped), formatMembers(p.Skipped))
	}
	b.WriteByte('\n')
	return b.String()
}

// formatOutcomes pairs the outcome counts with the plan they came from.
func formatOutcomes(p *batch.Plan, ops []batch.Operation, recNo func(*records.Record) int, outcomes []int64) string {
	tw := newTableWriter("")
	if p.Static {
		tw.AppendHeader(table.Row{"#", "Statement", "Rows"})
		for i, stmt := range p.Statements {
			if i >= len(outcomes) {
				break
			}
			tw.AppendRow(table.Row{i + 1, stmt, outcomes[i]})
		}
		return tw.Render() + "\n"
	}

	tw.AppendHeader(table.Row{"Op", "Action", "Record", "Rows"})
	k := 0
	for _, bucket := range p.Buckets {
		for _, m := range bucket.Members {
			if k >= len(outcomes) {
				break
			}
			op := ops[m]
			tw.AppendRow(table.Row{m + 1, op.Action, recNo(op.Record), outcomes[k]})
			k++
		}
	}
	return tw.Render() + "\n"
}

// formatRecords renders the session's records. Changed values are marked
// with an asterisk.
func formatRecords(recs []*records.Record) string {
	if len(recs) == 0 {
		return "  (no records)\n"
	}
	tw := newTableWriter("")
	tw.AppendHeader(table.Row{"#", "Table", "Values", "State"})
	for i, r := range recs {
		t := r.Table()
		parts := make([]string, len(t.Columns))
		for j, c := range t.Columns {
			mark := ""
			if r.Changed(c.Name) {
				mark = "*"
			}
			parts[j] = c.Name + mark + "=" + formatValue(r.Get(c.Name))
		}
		tw.AppendRow(table.Row{i + 1, t.Name, strings.Join(parts, " "), recordState(r)})
	}
	return tw.Render() + "\n"
}

func recordState(r *records.Record) string {
	state := "new"
	if r.IsFetched() {
		state = "fetched"
	}
	if r.IsChanged() {
		state += ", changed"
	}
	return state
}
