package main

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"trafficlens/internal/analytics"
	"trafficlens/internal/timeframe"
)

func testSeries() analytics.Series {
	day := func(d int) timeframe.TimePoint {
		return timeframe.TimePointOf(time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC))
	}
	return analytics.Series{
		"/b": {day(13): 0, day(14): 1200},
		"/a": {day(13): 5, day(14): 0},
	}
}

func TestPrintSeriesTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, newPrinter(&buf, "table").printSeries(testSeries(), time.UTC))

	out := buf.String()
	assert.Contains(t, out, "DATE")
	assert.Contains(t, out, "2024-03-13")
	assert.Contains(t, out, "2024-03-14")
	assert.Contains(t, out, "1,200")
	assert.Contains(t, out, "TOTAL")
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("/a")), bytes.Index(buf.Bytes(), []byte("/b")))
}

func TestPrintSeriesJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, newPrinter(&buf, "json").printSeries(testSeries(), time.UTC))

	var out []seriesOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	require.Len(t, out, 2)
	assert.Equal(t, "/a", out[0].URL)
	assert.Equal(t, float64(5), out[0].Total)
	require.Len(t, out[1].Points, 2)
	assert.Equal(t, "2024-03-14", out[1].Points[1].Date)
	assert.Equal(t, float64(1200), out[1].Points[1].Count)
}

func TestPrintRankedYAML(t *testing.T) {
	var buf bytes.Buffer
	records := []analytics.RankedRecord{{Label: "/", Value: 10}, {Label: "/pricing", Value: 3}}
	require.NoError(t, newPrinter(&buf, "yaml").printRanked("PAGE", records))

	var out []map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &out))
	require.Len(t, out, 2)
	assert.Equal(t, "/pricing", out[1]["label"])
	assert.Equal(t, 3, out[1]["value"])
}

func TestPrintRankedTable(t *testing.T) {
	var buf bytes.Buffer
	records := []analytics.RankedRecord{{Label: "t.co", Value: 15000}}
	require.NoError(t, newPrinter(&buf, "TABLE").printRanked("REFERRER", records))

	assert.Contains(t, buf.String(), "REFERRER")
	assert.Contains(t, buf.String(), "t.co")
	assert.Contains(t, buf.String(), "15,000")
}

func TestPrintRowsNilRows(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, newPrinter(&buf, "json").printRows([]string{"country", "activeUsers"}, nil))

	var out map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, []any{}, out["rows"])
}

func TestUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	err := newPrinter(&buf, "xml").printRanked("PAGE", nil)
	assert.Error(t, err)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"activeUsers", "screenPageViews"}, splitList(" activeUsers, ,screenPageViews"))
	assert.Nil(t, splitList(""))
}

func TestFindCommand(t *testing.T) {
	for _, name := range []string{"visits", "referrers", "pages", "realtime", "resolve", "help"} {
		assert.NotNil(t, findCommand(name), name)
	}
	assert.Nil(t, findCommand("migrate"))
}
