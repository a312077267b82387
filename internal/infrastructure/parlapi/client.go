// Package parlapi is the client for the parliament's OData web service.
// It is the only place that knows upstream entity and field names.
package parlapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	gocache "github.com/patrickmn/go-cache"

	"parlmonitor/internal/bootstrap/config"
	"parlmonitor/internal/bootstrap/logging"
	"parlmonitor/internal/errs"
	"parlmonitor/internal/ports"
)

// defaultMaxPages bounds one paged read; at the default page size that is
// half a million rows, far above any entity set the jobs read.
const defaultMaxPages = 1000

type Client struct {
	http     *resty.Client
	language string
	pageSize int
	maxPages int
	cache    *gocache.Cache
}

var _ ports.ParliamentGateway = (*Client)(nil)

// NewClient builds a client that retries transport errors, 5xx and 429 with
// exponential backoff between RetryWait and RetryMaxWait.
func NewClient(cfg config.UpstreamConfig) *Client {
	language := strings.ToUpper(strings.TrimSpace(cfg.Language))
	if language == "" {
		language = "DE"
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = 500
	}
	cacheTTL := cfg.RecentCacheTTL
	if cacheTTL <= 0 {
		cacheTTL = 6 * time.Hour
	}

	httpClient := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(cfg.RetryWait).
		SetRetryMaxWaitTime(cfg.RetryMaxWait).
		SetHeader("Accept", "application/json").
		SetLogger(restyLogger{ctx: logging.WithComponent(context.Background(), "parlapi")}).
		AddRetryCondition(func(resp *resty.Response, err error) bool {
			if err != nil {
				return !errors.Is(err, context.Canceled)
			}
			return resp.StatusCode() >= http.StatusInternalServerError || resp.StatusCode() == http.StatusTooManyRequests
		}).
		AddRetryHook(func(resp *resty.Response, err error) {
			ctx := context.Background()
			status := 0
			if resp != nil {
				status = resp.StatusCode()
				if resp.Request != nil {
					ctx = resp.Request.Context()
				}
			}
			attrs := []slog.Attr{slog.Int("status", status)}
			if err != nil {
				attrs = append(attrs, slog.String("err", err.Error()))
			}
			logging.Warn(logging.WithComponent(ctx, "parlapi"), "upstream call failed, retrying", attrs...)
		})

	return &Client{
		http:     httpClient,
		language: language,
		pageSize: pageSize,
		maxPages: defaultMaxPages,
		cache:    gocache.New(cacheTTL, 2*cacheTTL),
	}
}

// query fetches one page of an entity set and returns the raw result objects.
func (c *Client) query(ctx context.Context, entity string, params map[string]string) ([]json.RawMessage, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetQueryParam("$format", "json").
		Get("/" + entity)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, errs.Wrap(ctxErr, "query "+entity)
		}
		return nil, errs.WithStack(fmt.Errorf("%w: %s: %v", ports.ErrUpstreamUnavailable, entity, err))
	}
	if resp.IsError() {
		return nil, errs.WithStack(fmt.Errorf("%w: %s: status %d", ports.ErrUpstreamUnavailable, entity, resp.StatusCode()))
	}

	rows, err := decodeResults(resp.Body())
	if err != nil {
		return nil, errs.Wrapf(err, "decode %s response", entity)
	}
	return rows, nil
}

// queryAll pages through an entity set with $top/$skip until a short page.
// A page identical to the previous one means upstream ignored $skip and ends
// the read; more than maxPages full pages is reported as unavailable.
func (c *Client) queryAll(ctx context.Context, entity string, params map[string]string) ([]json.RawMessage, error) {
	var all, previous []json.RawMessage
	for pageNo := 0; ; pageNo++ {
		if pageNo >= c.maxPages {
			return nil, errs.WithStack(fmt.Errorf("%w: %s: more than %d pages", ports.ErrUpstreamUnavailable, entity, c.maxPages))
		}
		page := make(map[string]string, len(params)+2)
		for k, v := range params {
			page[k] = v
		}
		page["$top"] = strconv.Itoa(c.pageSize)
		page["$skip"] = strconv.Itoa(pageNo * c.pageSize)

		rows, err := c.query(ctx, entity, page)
		if err != nil {
			return nil, err
		}
		if pageNo > 0 && samePage(previous, rows) {
			logging.Warn(logging.WithComponent(ctx, "parlapi"), "upstream repeated a page, paging stopped",
				slog.String("entity", entity), slog.Int("skip", pageNo*c.pageSize))
			return all, nil
		}
		all = append(all, rows...)
		if len(rows) < c.pageSize {
			return all, nil
		}
		previous = rows
	}
}

func samePage(a, b []json.RawMessage) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !bytes.Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

// filter joins OData conditions with "and" and appends the language clause.
func (c *Client) filter(conditions ...string) string {
	parts := make([]string, 0, len(conditions)+1)
	for _, cond := range conditions {
		if cond != "" {
			parts = append(parts, cond)
		}
	}
	parts = append(parts, fmt.Sprintf("Language eq '%s'", c.language))
	return strings.Join(parts, " and ")
}

func quote(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}

// decodeResults accepts both {"d":{"results":[...]}} and {"d":[...]}.
func decodeResults(body []byte) ([]json.RawMessage, error) {
	var envelope struct {
		D json.RawMessage `json:"d"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, err
	}

	trimmed := strings.TrimSpace(string(envelope.D))
	if trimmed == "" || trimmed == "null" {
		return nil, nil
	}
	if strings.HasPrefix(trimmed, "[") {
		var rows []json.RawMessage
		if err := json.Unmarshal(envelope.D, &rows); err != nil {
			return nil, err
		}
		return rows, nil
	}

	var wrapped struct {
		Results []json.RawMessage `json:"results"`
	}
	if err := json.Unmarshal(envelope.D, &wrapped); err != nil {
		return nil, err
	}
	return wrapped.Results, nil
}

// flexInt accepts a JSON number, a numeric string or null.
type flexInt int64

func (f *flexInt) UnmarshalJSON(data []byte) error {
	text := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if text == "" || text == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return fmt.Errorf("parse number %q: %w", text, err)
	}
	*f = flexInt(int64(v))
	return nil
}

func firstNonZero(values ...flexInt) int64 {
	for _, v := range values {
		if v != 0 {
			return int64(v)
		}
	}
	return 0
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}

func decodeRows[T any](raw []json.RawMessage) ([]T, error) {
	out := make([]T, 0, len(raw))
	for _, item := range raw {
		var row T
		if err := json.Unmarshal(item, &row); err != nil {
			return nil, errs.Wrap(err, "decode upstream row")
		}
		out = append(out, row)
	}
	return out, nil
}

// flexString accepts a JSON string, a number or null.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	text := strings.TrimSpace(string(data))
	if text == "null" {
		*f = ""
		return nil
	}
	if strings.HasPrefix(text, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	*f = flexString(text)
	return nil
}
