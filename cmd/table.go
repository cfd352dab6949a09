package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"emby-tagger/feature/catalog"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// resultRows lists one row per match result. Candidates are shown as
// "#id title (score)" joined by newlines.
func resultRows(report *catalog.SyncReport) [][]string {
	rows := make([][]string, 0, len(report.Results))
	for _, r := range report.Results {
		mapped := ""
		if r.Item.LocalItemID != nil {
			mapped = strconv.FormatUint(uint64(*r.Item.LocalItemID), 10)
		}

		candidates := make([]string, 0, len(r.Matches))
		for _, m := range r.Matches {
			candidates = append(candidates, fmt.Sprintf("#%d %s (%.2f)", m.Item.ID, m.Item.Title, m.Score))
		}

		rows = append(rows, []string{
			strconv.FormatUint(uint64(r.Item.ID), 10),
			r.Item.Title,
			r.Item.Type,
			string(r.Status),
			mapped,
			strings.Join(candidates, "\n"),
		})
	}
	return rows
}

// renderReport renders the results table followed by the summary line.
func renderReport(report *catalog.SyncReport) string {
	var b strings.Builder
	if len(report.Results) > 0 {
		b.WriteString(renderTable(
			[]string{"ID", "Title", "Type", "Status", "Local", "Candidates"},
			resultRows(report),
			[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
		))
		b.WriteString("\n")
	}

	if len(report.MultiPartGroups) > 0 {
		rows := make([][]string, 0, len(report.MultiPartGroups))
		for _, g := range report.MultiPartGroups {
			rows = append(rows, []string{g.Name, g.Kept, strconv.Itoa(len(g.Paths))})
		}
		b.WriteString(renderTable(
			[]string{"Multi-part", "Kept", "Parts"},
			rows,
			[]columnAlignment{alignLeft, alignLeft, alignRight},
		))
		b.WriteString("\n")
	}

	s := report.Summary
	fmt.Fprintf(&b, "Fetched: %d  Kept: %d  Pruned: %d\n", report.Fetched, report.Kept, report.Pruned)
	fmt.Fprintf(&b, "Matched: %d  Exact: %d  Multiple: %d  None: %d\n", s.Matched, s.Exact, s.Multiple, s.None)
	return b.String()
}
