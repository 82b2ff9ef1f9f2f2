package gaclient

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	analyticsadmin "google.golang.org/api/analyticsadmin/v1beta"

	"trafficlens/internal/report"
)

// ResolveSiteID finds the property whose web stream serves the host of rawURL.
// Lookups are not retried; an unknown host yields report.ErrSiteNotFound.
func (c *Client) ResolveSiteID(ctx context.Context, rawURL string) (string, error) {
	host := normalizeHost(rawURL)
	if host == "" {
		return "", fmt.Errorf("%w: %q", report.ErrSiteNotFound, rawURL)
	}

	properties, err := c.admin.listProperties(ctx)
	if err != nil {
		return "", fmt.Errorf("error listing properties: %w", err)
	}

	for _, property := range properties {
		uris, err := c.admin.listWebStreamURIs(ctx, property)
		if err != nil {
			return "", fmt.Errorf("error listing data streams for %s: %w", property, err)
		}
		for _, uri := range uris {
			if normalizeHost(uri) == host {
				c.logger.Debug("Resolved site",
					slog.String("url", rawURL),
					slog.String("property", property))
				return property, nil
			}
		}
	}

	return "", fmt.Errorf("%w: %s", report.ErrSiteNotFound, rawURL)
}

// normalizeHost extracts a lowercase host without a leading www. from a URL or bare domain.
func normalizeHost(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}

	host := strings.ToLower(u.Hostname())
	return strings.TrimPrefix(host, "www.")
}

type adminAPI struct {
	svc *analyticsadmin.Service
}

func (a *adminAPI) listProperties(ctx context.Context) ([]string, error) {
	var properties []string
	err := a.svc.AccountSummaries.List().Pages(ctx, func(page *analyticsadmin.GoogleAnalyticsAdminV1betaListAccountSummariesResponse) error {
		for _, account := range page.AccountSummaries {
			for _, property := range account.PropertySummaries {
				properties = append(properties, property.Property)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return properties, nil
}

func (a *adminAPI) listWebStreamURIs(ctx context.Context, property string) ([]string, error) {
	var uris []string
	err := a.svc.Properties.DataStreams.List(property).Pages(ctx, func(page *analyticsadmin.GoogleAnalyticsAdminV1betaListDataStreamsResponse) error {
		for _, stream := range page.DataStreams {
			if stream.WebStreamData != nil && stream.WebStreamData.DefaultUri != "" {
				uris = append(uris, stream.WebStreamData.DefaultUri)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return uris, nil
}
