// Package timeframe computes the whole-day date ranges that report queries run over
// and the millisecond day keys used by daily series.
package timeframe

import (
	"fmt"
	"time"
)

// ISODateFormat is the calendar date layout the reporting API accepts for date ranges.
const ISODateFormat = "2006-01-02"

type TimeProvider interface {
	Now(loc *time.Location) time.Time
}

// DefaultTimeProvider reads the system clock.
type DefaultTimeProvider struct{}

// Now returns the current time in loc
func (p *DefaultTimeProvider) Now(loc *time.Location) time.Time {
	return time.Now().In(loc)
}

// TimePoint is a day expressed as milliseconds since the Unix epoch at local midnight.
type TimePoint int64

// TimePointOf returns the TimePoint for t. Callers pass a midnight value.
func TimePointOf(t time.Time) TimePoint {
	return TimePoint(t.UnixMilli())
}

// Time converts the point back into a time in loc
func (p TimePoint) Time(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return time.UnixMilli(int64(p)).In(loc)
}

// DateRange is a span of whole days. Start and End are midnights in the same location.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewDateRange truncates both bounds to midnight in loc and checks their order.
func NewDateRange(start, end time.Time, loc *time.Location) (DateRange, error) {
	if loc == nil {
		loc = time.Local
	}
	r := DateRange{
		Start: Midnight(start, loc),
		End:   Midnight(end, loc),
	}
	if err := r.Validate(); err != nil {
		return DateRange{}, err
	}
	return r, nil
}

func (r DateRange) Validate() error {
	if r.Start.After(r.End) {
		return fmt.Errorf("start date %s must not be after end date %s", r.StartDate(), r.EndDate())
	}
	return nil
}

// StartDate formats Start for the reporting API
func (r DateRange) StartDate() string {
	return r.Start.Format(ISODateFormat)
}

// EndDate formats End for the reporting API
func (r DateRange) EndDate() string {
	return r.End.Format(ISODateFormat)
}

// Days returns the number of calendar days between Start and End. Days that are
// 23 or 25 hours long around DST changes still count as one.
func (r DateRange) Days() int {
	start := time.Date(r.Start.Year(), r.Start.Month(), r.Start.Day(), 0, 0, 0, 0, time.UTC)
	end := time.Date(r.End.Year(), r.End.Month(), r.End.Day(), 0, 0, 0, 0, time.UTC)
	days := int(end.Sub(start).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// TimePoints walks the range from the day after Start up to and including End,
// returning one point per day.
func (r DateRange) TimePoints() []TimePoint {
	n := r.Days()
	loc := r.Start.Location()
	points := make([]TimePoint, 0, n)
	for i := 1; i <= n; i++ {
		day := time.Date(r.Start.Year(), r.Start.Month(), r.Start.Day()+i, 0, 0, 0, 0, loc)
		points = append(points, TimePointOf(day))
	}
	return points
}

// Midnight truncates t to the start of its calendar day in loc
func Midnight(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}

// Calculator builds ranges relative to "today" in a fixed location.
type Calculator struct {
	timeProvider TimeProvider
	loc          *time.Location
}

func NewCalculator(loc *time.Location, timeProvider ...TimeProvider) *Calculator {
	var provider TimeProvider = &DefaultTimeProvider{}
	if len(timeProvider) > 0 && timeProvider[0] != nil {
		provider = timeProvider[0]
	}
	if loc == nil {
		loc = time.Local
	}

	return &Calculator{
		timeProvider: provider,
		loc:          loc,
	}
}

func (c *Calculator) Location() *time.Location {
	return c.loc
}

// Today returns midnight of the current day
func (c *Calculator) Today() time.Time {
	return Midnight(c.timeProvider.Now(c.loc), c.loc)
}

// CalculateRange returns the range ending yesterday and starting numberOfDays+1 days
// ago. Today is always excluded because its data is still incomplete.
func (c *Calculator) CalculateRange(numberOfDays int) DateRange {
	if numberOfDays < 0 {
		numberOfDays = 0
	}
	today := c.Today()

	return DateRange{
		Start: time.Date(today.Year(), today.Month(), today.Day()-(numberOfDays+1), 0, 0, 0, 0, c.loc),
		End:   time.Date(today.Year(), today.Month(), today.Day()-1, 0, 0, 0, 0, c.loc),
	}
}
