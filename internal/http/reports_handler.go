package http

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"trafficlens/internal/analytics"
	"trafficlens/internal/pkg/referrers"
	"trafficlens/internal/timeframe"
)

// PageSeries is one requested URL with its daily points in chronological order.
type PageSeries struct {
	URL    string                `json:"url"`
	Total  float64               `json:"total"`
	Points []analytics.DatePoint `json:"points"`
}

// VisitsResponse is returned by the visits endpoint.
type VisitsResponse struct {
	StartDate string           `json:"start_date"`
	EndDate   string           `json:"end_date"`
	Data      analytics.Series `json:"data"`
	Series    []PageSeries     `json:"series"`
}

// RankedResponse is returned by the pages endpoint.
type RankedResponse struct {
	StartDate string                   `json:"start_date"`
	EndDate   string                   `json:"end_date"`
	Data      []analytics.RankedRecord `json:"data"`
}

// ReferrerRecord is a ranked referrer with its traffic source name.
type ReferrerRecord struct {
	Label  string  `json:"label"`
	Source string  `json:"source"`
	Value  float64 `json:"value"`
}

// ReferrersResponse is returned by the referrers endpoint.
type ReferrersResponse struct {
	StartDate string           `json:"start_date"`
	EndDate   string           `json:"end_date"`
	Data      []ReferrerRecord `json:"data"`
}

// OverviewResponse replaces the overview's referrers with ones carrying a source.
type OverviewResponse struct {
	*analytics.Overview
	TopReferrers []ReferrerRecord `json:"top_referrers"`
}

// VisitsIndexAction returns zero-filled daily page views for each requested url.
func (h *Handler) VisitsIndexAction(c *fiber.Ctx) error {
	requested := urls(c)
	if len(requested) == 0 {
		return h.renderError(c, badRequest("at least one url is required"))
	}

	r, err := h.period(c)
	if err != nil {
		return h.renderError(c, err)
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	series, err := h.Analytics.GetMultiplePageVisitsForPeriod(ctx, r, requested)
	if err != nil {
		return h.renderError(c, err)
	}

	resp := VisitsResponse{
		StartDate: r.StartDate(),
		EndDate:   r.EndDate(),
		Data:      series,
		Series:    buildPageSeries(series, h.Analytics.Location()),
	}

	h.Logger.Debug("Served page visits",
		slog.Int("urls", len(series)),
		slog.String("start_date", resp.StartDate),
		slog.String("end_date", resp.EndDate))

	return c.JSON(resp)
}

// ReferrersIndexAction returns the top referrers for a period.
func (h *Handler) ReferrersIndexAction(c *fiber.Ctx) error {
	r, limit, err := h.rankedParams(c)
	if err != nil {
		return h.renderError(c, err)
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	records, err := h.Analytics.GetTopReferrersForPeriod(ctx, r, limit)
	if err != nil {
		return h.renderError(c, err)
	}

	return c.JSON(ReferrersResponse{
		StartDate: r.StartDate(),
		EndDate:   r.EndDate(),
		Data:      convertReferrerStats(records),
	})
}

// PagesIndexAction returns the most visited pages for a period.
func (h *Handler) PagesIndexAction(c *fiber.Ctx) error {
	r, limit, err := h.rankedParams(c)
	if err != nil {
		return h.renderError(c, err)
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	records, err := h.Analytics.GetMostVisitedPagesForPeriod(ctx, r, limit)
	if err != nil {
		return h.renderError(c, err)
	}

	return c.JSON(RankedResponse{
		StartDate: r.StartDate(),
		EndDate:   r.EndDate(),
		Data:      records,
	})
}

// RealtimeIndexAction forwards a realtime query and returns its rows untouched.
func (h *Handler) RealtimeIndexAction(c *fiber.Ctx) error {
	metricNames := queryList(c, "metric")
	if len(metricNames) == 0 {
		metricNames = []string{"activeUsers"}
	}
	dimensionNames := queryList(c, "dimension")

	limit, err := h.maxResults(c)
	if err != nil {
		return h.renderError(c, err)
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	resp, err := h.Analytics.PerformRealTimeQuery(ctx, metricNames, dimensionNames, limit)
	if err != nil {
		return h.renderError(c, err)
	}

	rows := resp.Rows
	if rows == nil {
		rows = [][]string{}
	}

	return c.JSON(fiber.Map{
		"metrics":    metricNames,
		"dimensions": dimensionNames,
		"rows":       rows,
	})
}

// SiteResolveAction looks up the site ID serving a URL.
func (h *Handler) SiteResolveAction(c *fiber.Ctx) error {
	url := c.Query("url")
	if url == "" {
		return h.renderError(c, badRequest("url is required"))
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	siteID, err := h.Analytics.GetSiteIDByURL(ctx, url)
	if err != nil {
		return h.renderError(c, err)
	}

	return c.JSON(fiber.Map{
		"url":     url,
		"site_id": siteID,
	})
}

// OverviewIndexAction returns visits, top referrers and top pages in one response.
func (h *Handler) OverviewIndexAction(c *fiber.Ctx) error {
	days, err := h.numberOfDays(c)
	if err != nil {
		return h.renderError(c, err)
	}
	limit, err := h.maxResults(c)
	if err != nil {
		return h.renderError(c, err)
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	overview, err := h.Analytics.Overview(ctx, urls(c), days, limit)
	if err != nil {
		return h.renderError(c, err)
	}
	return c.JSON(OverviewResponse{
		Overview:     overview,
		TopReferrers: convertReferrerStats(overview.TopReferrers),
	})
}

func (h *Handler) rankedParams(c *fiber.Ctx) (timeframe.DateRange, int, error) {
	r, err := h.period(c)
	if err != nil {
		return timeframe.DateRange{}, 0, err
	}
	limit, err := h.maxResults(c)
	if err != nil {
		return timeframe.DateRange{}, 0, err
	}
	return r, limit, nil
}

func buildPageSeries(series analytics.Series, loc *time.Location) []PageSeries {
	out := make([]PageSeries, 0, len(series))
	for _, url := range series.URLs() {
		out = append(out, PageSeries{
			URL:    url,
			Total:  series.Total(url),
			Points: series.Points(url, loc),
		})
	}
	return out
}

// convertReferrerStats names the source of every referrer. Labels are kept as the
// service reported them and entries are never merged, so order and count match.
func convertReferrerStats(records []analytics.RankedRecord) []ReferrerRecord {
	out := make([]ReferrerRecord, len(records))
	for i, record := range records {
		out[i] = ReferrerRecord{
			Label:  record.Label,
			Source: referrers.Source(record.Label),
			Value:  record.Value,
		}
	}
	return out
}
