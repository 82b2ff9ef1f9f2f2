package timeframe

import (
	"errors"
	"fmt"
	"time"
)

// ReportDateFormat is the compact layout of the date dimension in report rows.
const ReportDateFormat = "20060102"

// ErrMalformedDate is returned when a report row carries a date that is not YYYYMMDD.
var ErrMalformedDate = errors.New("malformed report date")

// ParseReportDate converts a compact YYYYMMDD value into the TimePoint of that day's
// midnight in loc.
func ParseReportDate(value string, loc *time.Location) (TimePoint, error) {
	if loc == nil {
		loc = time.Local
	}
	if len(value) != len(ReportDateFormat) {
		return 0, fmt.Errorf("%w: %q", ErrMalformedDate, value)
	}
	date, err := time.ParseInLocation(ReportDateFormat, value, loc)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrMalformedDate, value, err)
	}

	return TimePointOf(time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, loc)), nil
}

// ParseDateRange reads explicit YYYY-MM-DD bounds in loc.
func ParseDateRange(from, to string, loc *time.Location) (DateRange, error) {
	if loc == nil {
		loc = time.Local
	}

	start, err := time.ParseInLocation(ISODateFormat, from, loc)
	if err != nil {
		return DateRange{}, fmt.Errorf("invalid 'from' date: %w", err)
	}

	end, err := time.ParseInLocation(ISODateFormat, to, loc)
	if err != nil {
		return DateRange{}, fmt.Errorf("invalid 'to' date: %w", err)
	}

	return NewDateRange(start, end, loc)
}

// LoadLocation resolves a timezone name, treating "" and "Local" as the process zone.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" || name == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("error loading timezone: %w", err)
	}
	return loc, nil
}
