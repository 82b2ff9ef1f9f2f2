package analytics_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trafficlens/internal/analytics"
	"trafficlens/internal/report"
	"trafficlens/internal/timeframe"
)

// threeDayRange covers d0 = Mar 2, d1 = Mar 3, d2 = Mar 4
func threeDayRange() timeframe.DateRange {
	return timeframe.DateRange{
		Start: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
	}
}

func day(d int) timeframe.TimePoint {
	return timeframe.TimePointOf(time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC))
}

func TestReconcileZeroFill(t *testing.T) {
	calc := timeframe.NewCalculator(time.UTC, &MockTimeProvider{FixedTime: time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)})

	testCases := []struct {
		name string
		urls []string
		days int
	}{
		{"Single URL, one week", []string{"/a"}, 7},
		{"Several URLs, a month", []string{"/a", "/b", "/c"}, 30},
		{"Year", []string{"/a"}, 365},
		{"Zero days", []string{"/a", "/b"}, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			series := analytics.Reconcile(tc.urls, calc.CalculateRange(tc.days), nil)

			require.Len(t, series, len(tc.urls))
			for _, url := range tc.urls {
				days, ok := series[url]
				require.True(t, ok, "missing %s", url)
				assert.Len(t, days, tc.days)
				for _, v := range days {
					assert.Zero(t, v)
				}
			}
		})
	}
}

func TestReconcileOverlay(t *testing.T) {
	rows := []report.SeriesRow{{Path: "/a", Day: day(3), Value: 42}}

	series := analytics.Reconcile([]string{"/a"}, threeDayRange(), rows)

	assert.Equal(t, analytics.Series{
		"/a": {day(2): 0, day(3): 42, day(4): 0},
	}, series)
}

func TestReconcileDropsUnknownKeys(t *testing.T) {
	rows := []report.SeriesRow{
		{Path: "/unknown", Day: day(3), Value: 5},
		{Path: "/a", Day: day(1), Value: 6},     // the range start itself is not a scaffold day
		{Path: "/a", Day: day(5), Value: 7},     // after the range end
		{Path: "/a", Day: day(3) + 1, Value: 8}, // not a midnight
	}

	series := analytics.Reconcile([]string{"/a"}, threeDayRange(), rows)

	assert.Equal(t, analytics.Series{
		"/a": {day(2): 0, day(3): 0, day(4): 0},
	}, series)
	assert.NotContains(t, series, "/unknown")
}

func TestReconcileLastWriteWins(t *testing.T) {
	rows := []report.SeriesRow{
		{Path: "/a", Day: day(3), Value: 5},
		{Path: "/a", Day: day(3), Value: 9},
	}

	series := analytics.Reconcile([]string{"/a"}, threeDayRange(), rows)
	assert.Equal(t, 9.0, series["/a"][day(3)])
}

func TestReconcileEmptyURLSet(t *testing.T) {
	rows := []report.SeriesRow{{Path: "/a", Day: day(3), Value: 5}}

	assert.Empty(t, analytics.Reconcile(nil, threeDayRange(), rows))
	assert.Empty(t, analytics.Reconcile([]string{}, threeDayRange(), nil))
}

func TestReconcileEmptyRowsMatchesAbsent(t *testing.T) {
	urls := []string{"/a", "/b"}
	absent := analytics.Reconcile(urls, threeDayRange(), nil)
	empty := analytics.Reconcile(urls, threeDayRange(), []report.SeriesRow{})

	assert.Equal(t, absent, empty)
}

func TestReconcileURLsDoNotShareDays(t *testing.T) {
	rows := []report.SeriesRow{{Path: "/a", Day: day(2), Value: 1}}

	series := analytics.Reconcile([]string{"/a", "/b"}, threeDayRange(), rows)
	assert.Equal(t, 1.0, series["/a"][day(2)])
	assert.Equal(t, 0.0, series["/b"][day(2)])
}

func TestSeriesPoints(t *testing.T) {
	rows := []report.SeriesRow{{Path: "/a", Day: day(4), Value: 3}, {Path: "/a", Day: day(2), Value: 1}}
	series := analytics.Reconcile([]string{"/a"}, threeDayRange(), rows)

	points := series.Points("/a", time.UTC)
	require.Len(t, points, 3)
	assert.Equal(t, analytics.DatePoint{Time: day(2), Date: "2024-03-02", Count: 1}, points[0])
	assert.Equal(t, analytics.DatePoint{Time: day(3), Date: "2024-03-03", Count: 0}, points[1])
	assert.Equal(t, analytics.DatePoint{Time: day(4), Date: "2024-03-04", Count: 3}, points[2])

	assert.Nil(t, series.Points("/missing", time.UTC))
	assert.Equal(t, 4.0, series.Total("/a"))
}

func TestSeriesURLs(t *testing.T) {
	series := analytics.Reconcile([]string{"/b", "/a"}, threeDayRange(), nil)
	assert.Equal(t, []string{"/a", "/b"}, series.URLs())
}
