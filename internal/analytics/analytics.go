// Package analytics shapes reporting API answers into the structures the rest of
// the application consumes.
//
// The package is organized into focused modules:
//   - analytics.go: the configured service and its public report operations
//   - series.go: zero-filled daily series per URL (Reconcile)
//   - ranked.go: ranked referrer and page lists (Project)
//   - overview.go: concurrent dashboard summary
package analytics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"trafficlens/internal/metrics"
	"trafficlens/internal/report"
	"trafficlens/internal/timeframe"
)

const (
	DefaultNumberOfDays = 365
	DefaultMaxResults   = 20
	defaultWorkers      = 3
)

// ErrNotEnabled is returned by report operations when no site ID is configured.
var ErrNotEnabled = errors.New("analytics is not enabled: no site id configured")

// Options configures an Analytics instance.
type Options struct {
	SiteID       string
	Location     *time.Location
	TimeProvider timeframe.TimeProvider
	Logger       *slog.Logger
	Workers      int
}

// Analytics runs report queries for one site. Instances are immutable; WithSiteID
// returns a reconfigured copy.
type Analytics struct {
	client  report.Client
	siteID  string
	calc    *timeframe.Calculator
	logger  *slog.Logger
	workers int
}

func New(client report.Client, opts Options) *Analytics {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}

	return &Analytics{
		client:  client,
		siteID:  opts.SiteID,
		calc:    timeframe.NewCalculator(opts.Location, opts.TimeProvider),
		logger:  logger,
		workers: workers,
	}
}

// WithSiteID returns a copy of a configured for siteID.
func (a *Analytics) WithSiteID(siteID string) *Analytics {
	clone := *a
	clone.siteID = siteID
	return &clone
}

func (a *Analytics) SiteID() string {
	return a.siteID
}

// IsEnabled reports whether a site ID is configured.
func (a *Analytics) IsEnabled() bool {
	return a.siteID != ""
}

func (a *Analytics) Location() *time.Location {
	return a.calc.Location()
}

// CalculateRange returns the range covering the last numberOfDays full days.
func (a *Analytics) CalculateRange(numberOfDays int) timeframe.DateRange {
	return a.calc.CalculateRange(numberOfDays)
}

// GetMultiplePageVisits returns the daily page views of each url over the last
// numberOfDays full days. Every url gets every day, with 0 where nothing was recorded.
func (a *Analytics) GetMultiplePageVisits(ctx context.Context, urls []string, numberOfDays int) (Series, error) {
	return a.GetMultiplePageVisitsForPeriod(ctx, a.calc.CalculateRange(numberOfDays), urls)
}

// GetMultiplePageVisitsForPeriod is GetMultiplePageVisits over an explicit range.
// The series holds the days after r.Start through r.End.
func (a *Analytics) GetMultiplePageVisitsForPeriod(ctx context.Context, r timeframe.DateRange, urls []string) (Series, error) {
	urls = uniqueURLs(urls)

	resp, err := a.performQuery(ctx, report.PageSeriesQuery(r, urls))
	if err != nil {
		return nil, err
	}

	rows, err := report.ParseSeriesRows(resp, a.calc.Location())
	if err != nil {
		a.logger.Error("Malformed page series response", slog.Any("error", err))
		return nil, fmt.Errorf("error parsing page visits: %w", err)
	}

	return Reconcile(urls, r, rows), nil
}

// GetTopReferrers returns the top referrers over the last numberOfDays full days.
func (a *Analytics) GetTopReferrers(ctx context.Context, numberOfDays, maxResults int) ([]RankedRecord, error) {
	return a.GetTopReferrersForPeriod(ctx, a.calc.CalculateRange(numberOfDays), maxResults)
}

// GetTopReferrersForPeriod returns the referrers with the most page views in r,
// most viewed first.
func (a *Analytics) GetTopReferrersForPeriod(ctx context.Context, r timeframe.DateRange, maxResults int) ([]RankedRecord, error) {
	return a.ranked(ctx, report.TopReferrersQuery(r, maxResults))
}

// GetMostVisitedPages returns the most visited pages over the last numberOfDays full days.
func (a *Analytics) GetMostVisitedPages(ctx context.Context, numberOfDays, maxResults int) ([]RankedRecord, error) {
	return a.GetMostVisitedPagesForPeriod(ctx, a.calc.CalculateRange(numberOfDays), maxResults)
}

// GetMostVisitedPagesForPeriod returns the paths with the most page views in r,
// most viewed first.
func (a *Analytics) GetMostVisitedPagesForPeriod(ctx context.Context, r timeframe.DateRange, maxResults int) ([]RankedRecord, error) {
	return a.ranked(ctx, report.MostVisitedPagesQuery(r, maxResults))
}

// PerformRealTimeQuery forwards a realtime query and returns the raw response.
func (a *Analytics) PerformRealTimeQuery(ctx context.Context, metricNames, dimensionNames []string, maxResults int) (*report.Response, error) {
	if !a.IsEnabled() {
		return nil, ErrNotEnabled
	}

	q := report.RealtimeQuery(metricNames, dimensionNames, maxResults)
	started := time.Now()
	resp, err := a.client.ExecuteRealtime(ctx, a.siteID, q)
	metrics.ObserveQuery(string(q.Shape), started, rowCount(resp), err)
	if err != nil {
		a.logger.Error("Realtime query failed", slog.Any("error", err), slog.String("site_id", a.siteID))
		return nil, fmt.Errorf("error executing realtime query: %w", err)
	}
	if resp == nil {
		resp = &report.Response{}
	}

	return resp, nil
}

// GetSiteIDByURL asks the reporting service which site serves url.
// Unknown URLs fail with report.ErrSiteNotFound.
func (a *Analytics) GetSiteIDByURL(ctx context.Context, url string) (string, error) {
	siteID, err := a.client.ResolveSiteID(ctx, url)
	if err != nil {
		return "", err
	}
	return siteID, nil
}

func (a *Analytics) ranked(ctx context.Context, q report.Query) ([]RankedRecord, error) {
	resp, err := a.performQuery(ctx, q)
	if err != nil {
		return nil, err
	}

	rows, err := report.ParseRankedRows(resp)
	if err != nil {
		a.logger.Error("Malformed ranked response", slog.Any("error", err), slog.String("shape", string(q.Shape)))
		return nil, fmt.Errorf("error parsing %s: %w", q.Shape, err)
	}

	return Project(rows), nil
}

func (a *Analytics) performQuery(ctx context.Context, q report.Query) (*report.Response, error) {
	if !a.IsEnabled() {
		return nil, ErrNotEnabled
	}

	started := time.Now()
	resp, err := a.client.Execute(ctx, a.siteID, q)
	metrics.ObserveQuery(string(q.Shape), started, rowCount(resp), err)
	if err != nil {
		a.logger.Error("Report query failed",
			slog.Any("error", err),
			slog.String("shape", string(q.Shape)),
			slog.String("site_id", a.siteID))
		return nil, fmt.Errorf("error executing %s query: %w", q.Shape, err)
	}

	a.logger.Debug("Report query completed",
		slog.String("shape", string(q.Shape)),
		slog.Int("rows", rowCount(resp)),
		slog.Duration("elapsed", time.Since(started)))

	return resp, nil
}

func rowCount(resp *report.Response) int {
	if resp == nil {
		return 0
	}
	return len(resp.Rows)
}

// uniqueURLs drops repeated URLs, keeping first occurrences in order.
func uniqueURLs(urls []string) []string {
	seen := make(map[string]bool, len(urls))
	out := make([]string, 0, len(urls))
	for _, url := range urls {
		if seen[url] {
			continue
		}
		seen[url] = true
		out = append(out, url)
	}
	return out
}
