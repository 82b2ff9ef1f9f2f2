package http

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"trafficlens/internal/analytics"
	"trafficlens/internal/report"
	"trafficlens/internal/timeframe"
)

// maxNumberOfDays bounds how large a zero-filled series a request can ask for.
const maxNumberOfDays = 3650

// Handler serves the report endpoints for one configured site.
type Handler struct {
	Analytics           *analytics.Analytics
	Logger              *slog.Logger
	DefaultNumberOfDays int
	DefaultMaxResults   int
	RequestTimeout      time.Duration
}

// errBadRequest marks input errors so they are reported as 400.
var errBadRequest = errors.New("bad request")

func badRequest(msg string) error {
	return &requestError{msg: msg}
}

type requestError struct {
	msg string
}

func (e *requestError) Error() string { return e.msg }
func (e *requestError) Unwrap() error { return errBadRequest }

// renderError maps errors from the analytics layer to HTTP responses.
func (h *Handler) renderError(c *fiber.Ctx, err error) error {
	status := fiber.StatusBadGateway
	message := "reporting service request failed"

	switch {
	case errors.Is(err, errBadRequest):
		status = fiber.StatusBadRequest
		message = err.Error()
	case errors.Is(err, analytics.ErrNotEnabled):
		status = fiber.StatusServiceUnavailable
		message = err.Error()
	case errors.Is(err, report.ErrSiteNotFound):
		status = fiber.StatusNotFound
		message = err.Error()
	case errors.Is(err, context.DeadlineExceeded):
		status = fiber.StatusGatewayTimeout
		message = "reporting service timed out"
	}

	if status >= fiber.StatusInternalServerError {
		h.Logger.Error("Request failed",
			slog.String("path", c.Path()),
			slog.Int("status", status),
			slog.Any("error", err))
	}

	return c.Status(status).JSON(fiber.Map{"error": message})
}

func (h *Handler) requestContext(c *fiber.Ctx) (context.Context, context.CancelFunc) {
	timeout := h.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return context.WithTimeout(c.UserContext(), timeout)
}

// queryInt reads an integer parameter, using def when it is absent.
func queryInt(c *fiber.Ctx, key string, def int) (int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, badRequest(key + " must be an integer")
	}
	return v, nil
}

func (h *Handler) numberOfDays(c *fiber.Ctx) (int, error) {
	days, err := queryInt(c, "days", h.DefaultNumberOfDays)
	if err != nil {
		return 0, err
	}
	if days < 0 || days > maxNumberOfDays {
		return 0, badRequest("days must be between 0 and 3650")
	}
	return days, nil
}

func (h *Handler) maxResults(c *fiber.Ctx) (int, error) {
	limit, err := queryInt(c, "limit", h.DefaultMaxResults)
	if err != nil {
		return 0, err
	}
	if limit < 1 {
		return 0, badRequest("limit must be positive")
	}
	return limit, nil
}

// period reads either explicit from/to dates or a number of days ending yesterday.
func (h *Handler) period(c *fiber.Ctx) (timeframe.DateRange, error) {
	from, to := c.Query("from"), c.Query("to")
	if from == "" && to == "" {
		days, err := h.numberOfDays(c)
		if err != nil {
			return timeframe.DateRange{}, err
		}
		return h.Analytics.CalculateRange(days), nil
	}

	if from == "" || to == "" {
		return timeframe.DateRange{}, badRequest("from and to must be given together")
	}

	r, err := timeframe.ParseDateRange(from, to, h.Analytics.Location())
	if err != nil {
		return timeframe.DateRange{}, badRequest(err.Error())
	}
	return r, nil
}

// urls collects repeated url parameters and comma separated urls parameters.
func urls(c *fiber.Ctx) []string {
	var out []string
	for _, raw := range c.Context().QueryArgs().PeekMulti("url") {
		if v := strings.TrimSpace(string(raw)); v != "" {
			out = append(out, v)
		}
	}
	for _, v := range strings.Split(c.Query("urls"), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func queryList(c *fiber.Ctx, key string) []string {
	var out []string
	for _, raw := range c.Context().QueryArgs().PeekMulti(key) {
		for _, v := range strings.Split(string(raw), ",") {
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}
