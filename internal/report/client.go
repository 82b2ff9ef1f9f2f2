package report

import (
	"context"
	"errors"
)

var (
	// ErrSiteNotFound is returned when the reporting service does not know a URL.
	ErrSiteNotFound = errors.New("site not found")
	// ErrMalformedRow is returned when a row does not have the shape its query asked for.
	ErrMalformedRow = errors.New("malformed report row")
)

// Response is what the reporting service returned for one query. Each row holds
// the dimension values followed by the metric values, in query order. A nil Rows
// means the service returned no row set at all and is handled exactly like an
// empty one.
type Response struct {
	Rows [][]string
}

// Executor runs a report query for a site.
type Executor interface {
	Execute(ctx context.Context, siteID string, q Query) (*Response, error)
}

// RealtimeExecutor runs a realtime query for a site.
type RealtimeExecutor interface {
	ExecuteRealtime(ctx context.Context, siteID string, q Query) (*Response, error)
}

// SiteResolver maps a site URL to the identifier the reporting service uses for it.
type SiteResolver interface {
	ResolveSiteID(ctx context.Context, url string) (string, error)
}

// Client is the full reporting service capability.
type Client interface {
	Executor
	RealtimeExecutor
	SiteResolver
}

// ExecutorFunc adapts a function to the Executor interface.
type ExecutorFunc func(ctx context.Context, siteID string, q Query) (*Response, error)

func (f ExecutorFunc) Execute(ctx context.Context, siteID string, q Query) (*Response, error) {
	return f(ctx, siteID, q)
}
