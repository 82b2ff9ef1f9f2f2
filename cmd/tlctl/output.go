package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"golang.org/x/term"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
	"gopkg.in/yaml.v3"

	"trafficlens/internal/analytics"
)

const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

// defaultFormat prints tables to a terminal and JSON to pipes.
func defaultFormat() string {
	if term.IsTerminal(int(os.Stdout.Fd())) {
		return formatTable
	}
	return formatJSON
}

type printer struct {
	w      io.Writer
	format string
	p      *message.Printer
}

func newPrinter(w io.Writer, format string) *printer {
	return &printer{
		w:      w,
		format: strings.ToLower(format),
		p:      message.NewPrinter(language.English),
	}
}

type seriesOutput struct {
	URL    string                `json:"url" yaml:"url"`
	Total  float64               `json:"total" yaml:"total"`
	Points []analytics.DatePoint `json:"points" yaml:"points"`
}

func (pr *printer) printSeries(series analytics.Series, loc *time.Location) error {
	urls := series.URLs()

	if pr.format != formatTable {
		out := make([]seriesOutput, 0, len(urls))
		for _, url := range urls {
			out = append(out, seriesOutput{URL: url, Total: series.Total(url), Points: series.Points(url, loc)})
		}
		return pr.encode(out)
	}

	tw := tabwriter.NewWriter(pr.w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "DATE\t%s\t\n", strings.Join(urls, "\t"))

	columns := make([][]analytics.DatePoint, len(urls))
	for i, url := range urls {
		columns[i] = series.Points(url, loc)
	}
	if len(columns) > 0 {
		for day := range columns[0] {
			cells := make([]string, len(columns))
			for i, points := range columns {
				cells[i] = pr.number(points[day].Count)
			}
			fmt.Fprintf(tw, "%s\t%s\t\n", columns[0][day].Date, strings.Join(cells, "\t"))
		}
	}

	totals := make([]string, len(urls))
	for i, url := range urls {
		totals[i] = pr.number(series.Total(url))
	}
	fmt.Fprintf(tw, "TOTAL\t%s\t\n", strings.Join(totals, "\t"))

	return tw.Flush()
}

func (pr *printer) printRanked(heading string, records []analytics.RankedRecord) error {
	if pr.format != formatTable {
		return pr.encode(records)
	}

	tw := tabwriter.NewWriter(pr.w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "#\t%s\tVIEWS\n", heading)
	for i, record := range records {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", i+1, record.Label, pr.number(record.Value))
	}
	return tw.Flush()
}

func (pr *printer) printRows(headers []string, rows [][]string) error {
	if rows == nil {
		rows = [][]string{}
	}
	if pr.format != formatTable {
		return pr.encode(map[string]any{"headers": headers, "rows": rows})
	}

	tw := tabwriter.NewWriter(pr.w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.ToUpper(strings.Join(headers, "\t")))
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

func (pr *printer) encode(v any) error {
	switch pr.format {
	case formatJSON:
		enc := json.NewEncoder(pr.w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(pr.w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q", pr.format)
	}
}

func (pr *printer) number(v float64) string {
	return pr.p.Sprint(number.Decimal(v, number.MaxFractionDigits(2)))
}
