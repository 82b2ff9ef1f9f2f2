package analytics

import (
	"context"
	"fmt"
	"log/slog"

	"trafficlens/internal/pkg/async"
	"trafficlens/internal/timeframe"
)

// Overview bundles the reports a dashboard shows for one period.
type Overview struct {
	Range        timeframe.DateRange `json:"-"`
	StartDate    string              `json:"start_date"`
	EndDate      string              `json:"end_date"`
	PageVisits   Series              `json:"page_visits,omitempty"`
	TopReferrers []RankedRecord      `json:"top_referrers"`
	TopPages     []RankedRecord      `json:"top_pages"`
}

// Overview runs the page visits, top referrers and most visited pages reports for
// the last numberOfDays full days concurrently. Page visits are only fetched when
// urls is not empty. The first failing report fails the whole overview.
func (a *Analytics) Overview(ctx context.Context, urls []string, numberOfDays, maxResults int) (*Overview, error) {
	if !a.IsEnabled() {
		return nil, ErrNotEnabled
	}

	r := a.calc.CalculateRange(numberOfDays)

	tasks := []async.Task{
		{Name: "top_referrers", Execute: func(ctx context.Context) (any, error) {
			return a.GetTopReferrersForPeriod(ctx, r, maxResults)
		}},
		{Name: "top_pages", Execute: func(ctx context.Context) (any, error) {
			return a.GetMostVisitedPagesForPeriod(ctx, r, maxResults)
		}},
	}
	if len(urls) > 0 {
		tasks = append(tasks, async.Task{Name: "page_visits", Execute: func(ctx context.Context) (any, error) {
			return a.GetMultiplePageVisitsForPeriod(ctx, r, urls)
		}})
	}

	results := async.NewPool(a.workers).Execute(ctx, tasks)
	for _, task := range tasks {
		if err := results[task.Name].Err; err != nil {
			a.logger.Error("Overview report failed", slog.String("report", task.Name), slog.Any("error", err))
			return nil, fmt.Errorf("error building overview (%s): %w", task.Name, err)
		}
	}

	overview := &Overview{
		Range:        r,
		StartDate:    r.StartDate(),
		EndDate:      r.EndDate(),
		TopReferrers: results["top_referrers"].Data.([]RankedRecord),
		TopPages:     results["top_pages"].Data.([]RankedRecord),
	}
	if result, ok := results["page_visits"]; ok {
		overview.PageVisits = result.Data.(Series)
	}

	return overview, nil
}
