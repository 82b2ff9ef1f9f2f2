package gaclient

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	analyticsdata "google.golang.org/api/analyticsdata/v1beta"

	"trafficlens/internal/report"
	"trafficlens/internal/timeframe"
)

type fakeData struct {
	pages    []*analyticsdata.RunReportResponse
	requests []analyticsdata.RunReportRequest
	property string
	realtime *analyticsdata.RunRealtimeReportRequest
	err      error
}

func (f *fakeData) runReport(ctx context.Context, property string, req *analyticsdata.RunReportRequest) (*analyticsdata.RunReportResponse, error) {
	f.property = property
	f.requests = append(f.requests, *req)
	if f.err != nil {
		return nil, f.err
	}
	if len(f.pages) == 0 {
		return &analyticsdata.RunReportResponse{}, nil
	}
	page := f.pages[0]
	f.pages = f.pages[1:]
	return page, nil
}

func (f *fakeData) runRealtimeReport(ctx context.Context, property string, req *analyticsdata.RunRealtimeReportRequest) (*analyticsdata.RunRealtimeReportResponse, error) {
	f.property = property
	f.realtime = req
	return &analyticsdata.RunRealtimeReportResponse{
		Rows: []*analyticsdata.Row{row([]string{"NL"}, "4")},
	}, nil
}

type fakeAdmin struct {
	streams map[string][]string
	order   []string
}

func (f *fakeAdmin) listProperties(ctx context.Context) ([]string, error) {
	return f.order, nil
}

func (f *fakeAdmin) listWebStreamURIs(ctx context.Context, property string) ([]string, error) {
	return f.streams[property], nil
}

func row(dims []string, metric string) *analyticsdata.Row {
	r := &analyticsdata.Row{}
	for _, d := range dims {
		r.DimensionValues = append(r.DimensionValues, &analyticsdata.DimensionValue{Value: d})
	}
	r.MetricValues = []*analyticsdata.MetricValue{{Value: metric}}
	return r
}

func testRange() timeframe.DateRange {
	return timeframe.DateRange{
		Start: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC),
	}
}

func TestPropertyName(t *testing.T) {
	assert.Equal(t, "properties/123", PropertyName("123"))
	assert.Equal(t, "properties/123", PropertyName("ga:123"))
	assert.Equal(t, "properties/123", PropertyName("properties/123"))
	assert.Equal(t, "properties/123", PropertyName(" 123 "))
}

func TestBuildRunReportRequestSeries(t *testing.T) {
	req := buildRunReportRequest(report.PageSeriesQuery(testRange(), []string{"/a", "/b"}))

	require.Len(t, req.DateRanges, 1)
	assert.Equal(t, "2024-03-01", req.DateRanges[0].StartDate)
	assert.Equal(t, "2024-03-08", req.DateRanges[0].EndDate)
	require.Len(t, req.Dimensions, 2)
	assert.Equal(t, "pagePath", req.Dimensions[0].Name)
	assert.Equal(t, "date", req.Dimensions[1].Name)
	require.Len(t, req.Metrics, 1)
	assert.Equal(t, "screenPageViews", req.Metrics[0].Name)
	assert.Empty(t, req.OrderBys)
	assert.Equal(t, int64(maxPageSize), req.Limit)

	require.NotNil(t, req.DimensionFilter)
	require.NotNil(t, req.DimensionFilter.OrGroup)
	exprs := req.DimensionFilter.OrGroup.Expressions
	require.Len(t, exprs, 2)
	assert.Equal(t, "pagePath", exprs[0].Filter.FieldName)
	assert.Equal(t, "EXACT", exprs[0].Filter.StringFilter.MatchType)
	assert.Equal(t, "/a", exprs[0].Filter.StringFilter.Value)
	assert.Equal(t, "/b", exprs[1].Filter.StringFilter.Value)
}

func TestBuildRunReportRequestRanked(t *testing.T) {
	req := buildRunReportRequest(report.TopReferrersQuery(testRange(), 20))

	assert.Nil(t, req.DimensionFilter)
	require.Len(t, req.OrderBys, 1)
	assert.True(t, req.OrderBys[0].Desc)
	assert.Equal(t, "screenPageViews", req.OrderBys[0].Metric.MetricName)
	assert.Equal(t, int64(20), req.Limit)
}

func TestExecuteFlattensRows(t *testing.T) {
	data := &fakeData{pages: []*analyticsdata.RunReportResponse{{
		Rows: []*analyticsdata.Row{
			row([]string{"/a", "20240302"}, "42"),
			row([]string{"/b", "20240303"}, "7"),
		},
		RowCount: 2,
	}}}
	client := newClient(data, &fakeAdmin{}, nil)

	resp, err := client.Execute(context.Background(), "123", report.PageSeriesQuery(testRange(), []string{"/a", "/b"}))
	require.NoError(t, err)
	assert.Equal(t, "properties/123", data.property)
	assert.Equal(t, [][]string{{"/a", "20240302", "42"}, {"/b", "20240303", "7"}}, resp.Rows)
}

func TestExecutePagesUncappedQueries(t *testing.T) {
	data := &fakeData{pages: []*analyticsdata.RunReportResponse{
		{Rows: []*analyticsdata.Row{row([]string{"/a", "20240302"}, "1")}, RowCount: 2},
		{Rows: []*analyticsdata.Row{row([]string{"/a", "20240303"}, "2")}, RowCount: 2},
	}}
	client := newClient(data, &fakeAdmin{}, nil)

	resp, err := client.Execute(context.Background(), "123", report.PageSeriesQuery(testRange(), []string{"/a"}))
	require.NoError(t, err)
	assert.Len(t, resp.Rows, 2)
	require.Len(t, data.requests, 2)
	assert.Equal(t, int64(0), data.requests[0].Offset)
	assert.Equal(t, int64(1), data.requests[1].Offset)
}

func TestExecuteNoRowsIsAbsent(t *testing.T) {
	client := newClient(&fakeData{}, &fakeAdmin{}, nil)

	resp, err := client.Execute(context.Background(), "123", report.MostVisitedPagesQuery(testRange(), 10))
	require.NoError(t, err)
	assert.Nil(t, resp.Rows)
}

func TestExecuteEmptyFilterSkipsCall(t *testing.T) {
	data := &fakeData{}
	client := newClient(data, &fakeAdmin{}, nil)

	resp, err := client.Execute(context.Background(), "123", report.PageSeriesQuery(testRange(), nil))
	require.NoError(t, err)
	assert.Nil(t, resp.Rows)
	assert.Empty(t, data.requests)
}

func TestExecutePropagatesErrors(t *testing.T) {
	apiErr := errors.New("quota exceeded")
	client := newClient(&fakeData{err: apiErr}, &fakeAdmin{}, nil)

	_, err := client.Execute(context.Background(), "123", report.TopReferrersQuery(testRange(), 5))
	assert.ErrorIs(t, err, apiErr)
}

func TestExecuteRealtime(t *testing.T) {
	data := &fakeData{}
	client := newClient(data, &fakeAdmin{}, nil)

	resp, err := client.ExecuteRealtime(context.Background(), "properties/9",
		report.RealtimeQuery([]string{"activeUsers"}, []string{"country"}, 5))
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"NL", "4"}}, resp.Rows)
	assert.Equal(t, "properties/9", data.property)
	require.NotNil(t, data.realtime)
	assert.Equal(t, int64(5), data.realtime.Limit)
	assert.Equal(t, "activeUsers", data.realtime.Metrics[0].Name)
	assert.Equal(t, "country", data.realtime.Dimensions[0].Name)
}

func TestResolveSiteID(t *testing.T) {
	admin := &fakeAdmin{
		order: []string{"properties/1", "properties/2"},
		streams: map[string][]string{
			"properties/1": {"https://blog.example.org"},
			"properties/2": {"https://www.example.com"},
		},
	}
	client := newClient(&fakeData{}, admin, nil)

	tests := []struct {
		url      string
		expected string
		notFound bool
	}{
		{url: "https://example.com/some/page", expected: "properties/2"},
		{url: "http://WWW.EXAMPLE.COM", expected: "properties/2"},
		{url: "example.com", expected: "properties/2"},
		{url: "https://blog.example.org", expected: "properties/1"},
		{url: "https://unknown.net", notFound: true},
		{url: "", notFound: true},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			id, err := client.ResolveSiteID(context.Background(), tt.url)
			if tt.notFound {
				assert.ErrorIs(t, err, report.ErrSiteNotFound)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, id)
		})
	}
}
