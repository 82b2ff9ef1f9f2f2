// Package report describes the queries trafficlens sends to the reporting API and
// the raw responses it gets back.
//
// Rows come back untyped. They are parsed exactly once, here, into SeriesRow or
// RankedRow values so nothing downstream indexes into positional fields.
package report

import (
	"strings"

	"trafficlens/internal/timeframe"
)

// Shape identifies which kind of report a query produces.
type Shape string

const (
	ShapePageSeries       Shape = "page_series"
	ShapeTopReferrers     Shape = "top_referrers"
	ShapeMostVisitedPages Shape = "most_visited_pages"
	ShapeRealtime         Shape = "realtime"
)

// Dimension and metric names understood by the reporting API
const (
	DimensionPagePath     = "pagePath"
	DimensionDate         = "date"
	DimensionPageReferrer = "pageReferrer"

	MetricPageViews = "screenPageViews"
)

// Predicate matches rows whose Field equals Value exactly.
type Predicate struct {
	Field string
	Value string
}

// Filter is a logical OR of exact-match predicates. A filter with no predicates
// matches nothing.
type Filter struct {
	Predicates []Predicate
}

// MatchesNothing reports whether no row can satisfy the filter.
func (f *Filter) MatchesNothing() bool {
	return f != nil && len(f.Predicates) == 0
}

// String renders the filter in the comma separated OR syntax, e.g. pagePath==/a,pagePath==/b
func (f *Filter) String() string {
	if f == nil {
		return ""
	}
	parts := make([]string, len(f.Predicates))
	for i, p := range f.Predicates {
		parts[i] = p.Field + "==" + p.Value
	}
	return strings.Join(parts, ",")
}

// SortKey orders results by a metric.
type SortKey struct {
	Metric     string
	Descending bool
}

func (s SortKey) String() string {
	if s.Descending {
		return "-" + s.Metric
	}
	return s.Metric
}

// Query is the descriptor handed to an Executor.
type Query struct {
	Shape      Shape
	StartDate  string
	EndDate    string
	Metrics    []string
	Dimensions []string
	Filter     *Filter
	Sort       []SortKey
	MaxResults int // 0 means no cap
}

// PageSeriesQuery requests daily page views for each of the given paths. Every
// matching row is needed to fill the series, so there is no sort or cap.
func PageSeriesQuery(r timeframe.DateRange, urls []string) Query {
	predicates := make([]Predicate, 0, len(urls))
	for _, url := range urls {
		predicates = append(predicates, Predicate{Field: DimensionPagePath, Value: url})
	}

	return Query{
		Shape:      ShapePageSeries,
		StartDate:  r.StartDate(),
		EndDate:    r.EndDate(),
		Metrics:    []string{MetricPageViews},
		Dimensions: []string{DimensionPagePath, DimensionDate},
		Filter:     &Filter{Predicates: predicates},
	}
}

// TopReferrersQuery requests the full referrers with the most page views.
func TopReferrersQuery(r timeframe.DateRange, maxResults int) Query {
	return rankedQuery(ShapeTopReferrers, DimensionPageReferrer, r, maxResults)
}

// MostVisitedPagesQuery requests the paths with the most page views.
func MostVisitedPagesQuery(r timeframe.DateRange, maxResults int) Query {
	return rankedQuery(ShapeMostVisitedPages, DimensionPagePath, r, maxResults)
}

func rankedQuery(shape Shape, dimension string, r timeframe.DateRange, maxResults int) Query {
	if maxResults < 0 {
		maxResults = 0
	}
	return Query{
		Shape:      shape,
		StartDate:  r.StartDate(),
		EndDate:    r.EndDate(),
		Metrics:    []string{MetricPageViews},
		Dimensions: []string{dimension},
		Sort:       []SortKey{{Metric: MetricPageViews, Descending: true}},
		MaxResults: maxResults,
	}
}

// RealtimeQuery is passed to the realtime endpoint as is.
func RealtimeQuery(metrics, dimensions []string, maxResults int) Query {
	if maxResults < 0 {
		maxResults = 0
	}
	return Query{
		Shape:      ShapeRealtime,
		Metrics:    metrics,
		Dimensions: dimensions,
		MaxResults: maxResults,
	}
}
