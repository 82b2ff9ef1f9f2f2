// Package gaclient implements report.Client on top of the Google Analytics Data and
// Admin APIs.
package gaclient

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/oauth2/google"
	analyticsadmin "google.golang.org/api/analyticsadmin/v1beta"
	analyticsdata "google.golang.org/api/analyticsdata/v1beta"
	"google.golang.org/api/option"

	"trafficlens/internal/report"
)

// maxPageSize is the largest page the Data API returns for one RunReport call.
const maxPageSize = 100000

// dataService is the subset of the Data API the client calls.
type dataService interface {
	runReport(ctx context.Context, property string, req *analyticsdata.RunReportRequest) (*analyticsdata.RunReportResponse, error)
	runRealtimeReport(ctx context.Context, property string, req *analyticsdata.RunRealtimeReportRequest) (*analyticsdata.RunRealtimeReportResponse, error)
}

// adminService is the subset of the Admin API used for site resolution.
type adminService interface {
	listProperties(ctx context.Context) ([]string, error)
	listWebStreamURIs(ctx context.Context, property string) ([]string, error)
}

// Client executes report queries against Google Analytics.
type Client struct {
	data   dataService
	admin  adminService
	logger *slog.Logger
}

var _ report.Client = (*Client)(nil)

// New creates a client. Without options the Google libraries fall back to
// application default credentials.
func New(ctx context.Context, logger *slog.Logger, opts ...option.ClientOption) (*Client, error) {
	dataSvc, err := analyticsdata.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create analytics data service: %w", err)
	}

	adminSvc, err := analyticsadmin.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create analytics admin service: %w", err)
	}

	return newClient(&dataAPI{svc: dataSvc}, &adminAPI{svc: adminSvc}, logger), nil
}

// NewFromCredentialsFile authenticates with a service account key file. An empty
// path uses application default credentials.
func NewFromCredentialsFile(ctx context.Context, path string, logger *slog.Logger) (*Client, error) {
	if path == "" {
		return New(ctx, logger)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}

	creds, err := google.CredentialsFromJSON(ctx, data, analyticsdata.AnalyticsReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("failed to parse credentials: %w", err)
	}

	return New(ctx, logger, option.WithTokenSource(creds.TokenSource))
}

func newClient(data dataService, admin adminService, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		data:   data,
		admin:  admin,
		logger: logger,
	}
}

// Execute runs a report query. Uncapped queries are paged until every row is read.
func (c *Client) Execute(ctx context.Context, siteID string, q report.Query) (*report.Response, error) {
	if q.Filter.MatchesNothing() {
		c.logger.Debug("Skipping report query with empty filter", slog.String("shape", string(q.Shape)))
		return &report.Response{}, nil
	}

	property := PropertyName(siteID)
	req := buildRunReportRequest(q)

	c.logger.Debug("Running report query",
		slog.String("property", property),
		slog.String("shape", string(q.Shape)),
		slog.String("start", q.StartDate),
		slog.String("end", q.EndDate),
		slog.String("filter", q.Filter.String()))

	var rows [][]string
	for {
		resp, err := c.data.runReport(ctx, property, req)
		if err != nil {
			return nil, fmt.Errorf("error running %s report: %w", q.Shape, err)
		}

		rows = appendRows(rows, resp.Rows)

		// Capped queries are answered by a single page
		if q.MaxResults > 0 || len(resp.Rows) == 0 || int64(len(rows)) >= resp.RowCount {
			break
		}
		req.Offset = int64(len(rows))
	}

	return &report.Response{Rows: rows}, nil
}

// ExecuteRealtime runs a realtime query and returns its rows unchanged.
func (c *Client) ExecuteRealtime(ctx context.Context, siteID string, q report.Query) (*report.Response, error) {
	property := PropertyName(siteID)
	req := &analyticsdata.RunRealtimeReportRequest{
		Dimensions: dimensions(q.Dimensions),
		Metrics:    metrics(q.Metrics),
		Limit:      int64(q.MaxResults),
	}

	resp, err := c.data.runRealtimeReport(ctx, property, req)
	if err != nil {
		return nil, fmt.Errorf("error running realtime report: %w", err)
	}

	return &report.Response{Rows: appendRows(nil, resp.Rows)}, nil
}

// PropertyName turns a configured site ID into the resource name the Data API expects.
// "123", "ga:123" and "properties/123" all name the same property.
func PropertyName(siteID string) string {
	id := strings.TrimSpace(siteID)
	id = strings.TrimPrefix(id, "ga:")
	if strings.HasPrefix(id, "properties/") {
		return id
	}
	return "properties/" + id
}

func buildRunReportRequest(q report.Query) *analyticsdata.RunReportRequest {
	req := &analyticsdata.RunReportRequest{
		DateRanges: []*analyticsdata.DateRange{{StartDate: q.StartDate, EndDate: q.EndDate}},
		Dimensions: dimensions(q.Dimensions),
		Metrics:    metrics(q.Metrics),
	}

	if q.Filter != nil && len(q.Filter.Predicates) > 0 {
		req.DimensionFilter = filterExpression(q.Filter)
	}

	for _, key := range q.Sort {
		req.OrderBys = append(req.OrderBys, &analyticsdata.OrderBy{
			Desc:   key.Descending,
			Metric: &analyticsdata.MetricOrderBy{MetricName: key.Metric},
		})
	}

	if q.MaxResults > 0 {
		req.Limit = int64(q.MaxResults)
	} else {
		req.Limit = maxPageSize
	}

	return req
}

func filterExpression(f *report.Filter) *analyticsdata.FilterExpression {
	expressions := make([]*analyticsdata.FilterExpression, 0, len(f.Predicates))
	for _, p := range f.Predicates {
		expressions = append(expressions, &analyticsdata.FilterExpression{
			Filter: &analyticsdata.Filter{
				FieldName: p.Field,
				StringFilter: &analyticsdata.StringFilter{
					MatchType:     "EXACT",
					Value:         p.Value,
					CaseSensitive: true,
				},
			},
		})
	}

	return &analyticsdata.FilterExpression{
		OrGroup: &analyticsdata.FilterExpressionList{Expressions: expressions},
	}
}

func dimensions(names []string) []*analyticsdata.Dimension {
	out := make([]*analyticsdata.Dimension, 0, len(names))
	for _, name := range names {
		out = append(out, &analyticsdata.Dimension{Name: name})
	}
	return out
}

func metrics(names []string) []*analyticsdata.Metric {
	out := make([]*analyticsdata.Metric, 0, len(names))
	for _, name := range names {
		out = append(out, &analyticsdata.Metric{Name: name})
	}
	return out
}

// appendRows flattens API rows into dimension values followed by metric values.
// A response without rows leaves dst nil so callers see an absent row set.
func appendRows(dst [][]string, rows []*analyticsdata.Row) [][]string {
	for _, row := range rows {
		if row == nil {
			continue
		}
		flat := make([]string, 0, len(row.DimensionValues)+len(row.MetricValues))
		for _, v := range row.DimensionValues {
			flat = append(flat, valueOf(v))
		}
		for _, v := range row.MetricValues {
			if v == nil {
				flat = append(flat, "")
				continue
			}
			flat = append(flat, v.Value)
		}
		dst = append(dst, flat)
	}
	return dst
}

func valueOf(v *analyticsdata.DimensionValue) string {
	if v == nil {
		return ""
	}
	return v.Value
}

type dataAPI struct {
	svc *analyticsdata.Service
}

func (d *dataAPI) runReport(ctx context.Context, property string, req *analyticsdata.RunReportRequest) (*analyticsdata.RunReportResponse, error) {
	return d.svc.Properties.RunReport(property, req).Context(ctx).Do()
}

func (d *dataAPI) runRealtimeReport(ctx context.Context, property string, req *analyticsdata.RunRealtimeReportRequest) (*analyticsdata.RunRealtimeReportResponse, error) {
	return d.svc.Properties.RunRealtimeReport(property, req).Context(ctx).Do()
}
