package report

import (
	"fmt"
	"strconv"
	"time"

	"trafficlens/internal/timeframe"
)

// SeriesRow is one (path, day, value) observation from a page series query.
type SeriesRow struct {
	Path  string
	Day   timeframe.TimePoint
	Value float64
}

// RankedRow is one (label, value) entry from a ranked query.
type RankedRow struct {
	Label string
	Value float64
}

// ParseSeriesRows types the rows of a PageSeriesQuery response. An absent row set
// yields nil. A date that is not YYYYMMDD is a defect in the response and fails the
// whole parse.
func ParseSeriesRows(resp *Response, loc *time.Location) ([]SeriesRow, error) {
	if resp == nil || resp.Rows == nil {
		return nil, nil
	}

	rows := make([]SeriesRow, 0, len(resp.Rows))
	for i, raw := range resp.Rows {
		if len(raw) < 3 {
			return nil, fmt.Errorf("%w: row %d has %d fields, want 3", ErrMalformedRow, i, len(raw))
		}

		day, err := timeframe.ParseReportDate(raw[1], loc)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}

		value, err := parseValue(raw[2])
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", ErrMalformedRow, i, err)
		}

		rows = append(rows, SeriesRow{Path: raw[0], Day: day, Value: value})
	}

	return rows, nil
}

// ParseRankedRows types the rows of a ranked query response, keeping their order.
func ParseRankedRows(resp *Response) ([]RankedRow, error) {
	if resp == nil || resp.Rows == nil {
		return nil, nil
	}

	rows := make([]RankedRow, 0, len(resp.Rows))
	for i, raw := range resp.Rows {
		if len(raw) < 2 {
			return nil, fmt.Errorf("%w: row %d has %d fields, want 2", ErrMalformedRow, i, len(raw))
		}

		value, err := parseValue(raw[1])
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", ErrMalformedRow, i, err)
		}

		rows = append(rows, RankedRow{Label: raw[0], Value: value})
	}

	return rows, nil
}

// Values are counts, but the service is trusted for their form, so any number is accepted.
func parseValue(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid metric value %q", s)
	}
	return v, nil
}
