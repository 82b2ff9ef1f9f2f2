package analytics

import (
	"sort"
	"time"

	"trafficlens/internal/report"
	"trafficlens/internal/timeframe"
)

// Series maps each requested URL to its daily values keyed by TimePoint.
type Series map[string]map[timeframe.TimePoint]float64

// DatePoint is one day of a series in chronological order.
type DatePoint struct {
	Time  timeframe.TimePoint `json:"time"`
	Date  string              `json:"date"`
	Count float64             `json:"count"`
}

// Reconcile builds a zero-filled series for every url over every day of r and
// overlays the observed rows on top of it.
//
// A nil rows slice means the service returned nothing; the zero scaffold is the
// answer. Rows for paths that were not requested, or for days outside the
// scaffold, are dropped. When the same (path, day) appears twice, the later row wins.
func Reconcile(urls []string, r timeframe.DateRange, rows []report.SeriesRow) Series {
	series := scaffold(urls, r)

	if rows == nil {
		return series
	}

	for _, row := range rows {
		days, ok := series[row.Path]
		if !ok {
			continue
		}
		if _, ok := days[row.Day]; !ok {
			continue
		}
		days[row.Day] = row.Value
	}

	return series
}

func scaffold(urls []string, r timeframe.DateRange) Series {
	points := r.TimePoints()
	series := make(Series, len(urls))

	for _, url := range urls {
		days := make(map[timeframe.TimePoint]float64, len(points))
		for _, p := range points {
			days[p] = 0
		}
		series[url] = days
	}

	return series
}

// Points returns the days of url in chronological order, formatted in loc.
func (s Series) Points(url string, loc *time.Location) []DatePoint {
	days, ok := s[url]
	if !ok {
		return nil
	}

	keys := make([]timeframe.TimePoint, 0, len(days))
	for p := range days {
		keys = append(keys, p)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	points := make([]DatePoint, len(keys))
	for i, p := range keys {
		points[i] = DatePoint{
			Time:  p,
			Date:  p.Time(loc).Format(timeframe.ISODateFormat),
			Count: days[p],
		}
	}
	return points
}

// URLs returns the series keys sorted alphabetically.
func (s Series) URLs() []string {
	urls := make([]string, 0, len(s))
	for url := range s {
		urls = append(urls, url)
	}
	sort.Strings(urls)
	return urls
}

// Total sums every value recorded for url.
func (s Series) Total(url string) float64 {
	var total float64
	for _, v := range s[url] {
		total += v
	}
	return total
}
