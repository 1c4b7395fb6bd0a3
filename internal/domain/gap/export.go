package gap

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// CSVHeader is the column order of WriteCSV.
var CSVHeader = []string{"Topic", "Aspect", "Search Query", "Priority", "Opportunity Score", "Gap Reason", "Category"}

// FunnelCSVHeader is the column order of WriteFunnelCSV.
var FunnelCSVHeader = []string{"Search Query", "Funnel Stage", "Content Type", "Priority Score", "Target Audience", "Content Goal"}

// WriteCSV writes one row per gap. Every value is double-quoted and rows are
// separated by a bare newline with none after the last row.
func WriteCSV(w io.Writer, gaps []Gap) error {
	rows := make([][]string, 0, len(gaps))
	for _, g := range gaps {
		rows = append(rows, []string{
			g.Topic,
			g.Aspect,
			g.SearchQuery,
			string(LevelOf(g.OpportunityScore)),
			strconv.Itoa(g.OpportunityScore),
			g.Reason,
			g.TopicCategory + " → " + g.AspectCategory,
		})
	}
	return writeQuoted(w, CSVHeader, rows)
}

// WriteFunnelCSV writes funnel gaps with their editorial brief.
func WriteFunnelCSV(w io.Writer, gaps []Gap) error {
	rows := make([][]string, 0, len(gaps))
	for _, g := range gaps {
		p := ProfileFor(g.FunnelStage, g.Topic)
		rows = append(rows, []string{
			g.SearchQuery,
			strings.Replace(g.FunnelStage, "_", " ", 1),
			string(g.ContentType),
			strconv.Itoa(g.PriorityScore),
			p.Audience,
			p.Goal,
		})
	}
	return writeQuoted(w, FunnelCSVHeader, rows)
}

// encoding/csv quotes only when needed; this format quotes every field.
func writeQuoted(w io.Writer, header []string, rows [][]string) error {
	bw := bufio.NewWriter(w)
	writeRow := func(fields []string) {
		for i, f := range fields {
			if i > 0 {
				_ = bw.WriteByte(',')
			}
			_ = bw.WriteByte('"')
			_, _ = bw.WriteString(strings.ReplaceAll(f, `"`, `""`))
			_ = bw.WriteByte('"')
		}
	}

	writeRow(header)
	for _, r := range rows {
		_ = bw.WriteByte('\n')
		writeRow(r)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}
