package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter/tw"

	"github.com/agentstation/nftrecon/pkg/differ"
	"github.com/agentstation/nftrecon/pkg/reconcile"
	"github.com/agentstation/nftrecon/pkg/tokens"
)

// SummaryToTableData lays a run summary out as property/value rows.
func SummaryToTableData(s *reconcile.Summary) Data {
	rows := [][]string{
		{"Run ID", s.RunID},
		{"Mode", s.Mode.String()},
		{"Output Dir", s.OutputDir},
		{"Dry Run", strconv.FormatBool(s.DryRun)},
		{"Duration", s.Duration.Round(time.Millisecond).String()},
		{"Left Tokens", strconv.Itoa(s.Left.Tokens)},
		{"Left Collections", strconv.Itoa(s.Left.Collections)},
	}
	if s.Mode == reconcile.ModeSubgraphs || s.Right.Tokens > 0 {
		rows = append(rows,
			[]string{"Right Tokens", strconv.Itoa(s.Right.Tokens)},
			[]string{"Right Collections", strconv.Itoa(s.Right.Collections)},
		)
	}
	if s.Contract != nil {
		rows = append(rows, []string{"Contract Reads",
			fmt.Sprintf("%d requested, %d read, %d failed", s.Contract.Requested, s.Contract.Read, s.Contract.Failed)})
	}

	rows = appendDifferences(rows, "Token Differences", s.TokenDifferences)
	rows = appendDifferences(rows, "Collection Differences", s.CollectionDifferences)
	rows = appendDifferences(rows, "Contract Differences", s.ContractDifferences)

	return Data{
		Headers: []string{"Property", "Value"},
		Rows:    rows,
		Align:   []tw.Align{tw.AlignLeft, tw.AlignLeft},
	}
}

func appendDifferences(rows [][]string, label string, summary *differ.Summary) [][]string {
	if summary == nil {
		return rows
	}
	rows = append(rows, []string{label, strconv.Itoa(summary.Total)})
	for _, kind := range summary.Kinds() {
		rows = append(rows, []string{"  " + Title(string(kind)), strconv.Itoa(summary.ByKind[kind])})
	}
	return rows
}

// ReportToTableData lists each difference record with both sides
// rendered by describe.
func ReportToTableData[T any](report differ.Report[T], describe func(*T) string) Data {
	rows := make([][]string, 0, len(report.Records))
	for _, r := range report.Records {
		kinds := make([]string, len(r.Kinds))
		for i, k := range r.Kinds {
			kinds[i] = string(k)
		}
		rows = append(rows, []string{r.ID, strings.Join(kinds, ", "), describe(r.Left), describe(r.Right)})
	}
	return Data{
		Headers: []string{"ID", "Differences", Title(report.Left), Title(report.Right)},
		Rows:    rows,
		Align:   []tw.Align{tw.AlignRight, tw.AlignLeft, tw.AlignLeft, tw.AlignLeft},
	}
}

// DescribeToken renders a token as name / artist (editions).
func DescribeToken(t *tokens.Token) string {
	if t == nil {
		return "-"
	}
	return fmt.Sprintf("%q / %q (%d)", t.Name, t.ArtistName, t.EditionCount)
}

// DescribeCollection renders a collection as name / artist (editions).
func DescribeCollection(c *tokens.Collection) string {
	if c == nil {
		return "-"
	}
	return fmt.Sprintf("%q / %q (%d)", c.Name, c.ArtistName, c.EditionCount)
}

// WriteSummary writes a run summary in the given format.
func WriteSummary(w io.Writer, format Format, s *reconcile.Summary) error {
	if format == FormatTable || format == "" {
		return NewFormatter(FormatTable).Format(w, SummaryToTableData(s))
	}
	return NewFormatter(format).Format(w, s)
}

// WriteReport writes a difference report in the given format.
func WriteReport[T any](w io.Writer, format Format, report differ.Report[T], describe func(*T) string) error {
	if format == FormatTable || format == "" {
		return NewFormatter(FormatTable).Format(w, ReportToTableData(report, describe))
	}
	return NewFormatter(format).Format(w, report)
}
