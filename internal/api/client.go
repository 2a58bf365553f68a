// Package api provides a client for the finance analytics REST backend.
package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/theirongolddev/finburn/internal/config"
	flog "github.com/theirongolddev/finburn/internal/log"
	"github.com/theirongolddev/finburn/internal/model"
)

const (
	maxBodySize = 1 << 20 // 1 MB
	userAgent   = "finburn/1.0"
)

// Client fetches analytics for a single account.
type Client struct {
	baseURL         string
	accountID       string
	billsIncomePath string
	timeout         time.Duration
	timeRange       string

	http    *http.Client
	limiter *rate.Limiter
	log     *flog.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithLogger sets the logger used for request failures.
func WithLogger(l *flog.Logger) Option {
	return func(c *Client) { c.log = l.WithComponent("api") }
}

// WithTimeRange sets the analytics window sent as ?timeRange=.
func WithTimeRange(r string) Option {
	return func(c *Client) { c.timeRange = r }
}

// New builds a client from the API config. It returns ErrNoAccount when no
// account identifier is configured; no request is ever issued in that case.
func New(cfg config.APIConfig, opts ...Option) (*Client, error) {
	account := strings.TrimSpace(cfg.AccountID)
	if account == "" {
		return nil, ErrNoAccount
	}

	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("api: invalid base url %q", cfg.BaseURL)
	}

	billsPath := cfg.BillsIncomePath
	if billsPath == "" {
		billsPath = config.DefaultBillsIncomePath
	}

	limit := rate.Inf
	if cfg.RatePerSec > 0 {
		limit = rate.Limit(cfg.RatePerSec)
	}
	burst := int(cfg.RatePerSec)
	if burst < 1 {
		burst = 1
	}

	c := &Client{
		baseURL:         base,
		accountID:       account,
		billsIncomePath: billsPath,
		timeout:         cfg.Timeout(),
		timeRange:       "1 month",
		http:            &http.Client{},
		limiter:         rate.NewLimiter(limit, burst),
		log:             flog.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// AccountID returns the account this client reads.
func (c *Client) AccountID() string { return c.accountID }

// BaseURL returns the backend base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// GetUser returns the account holder profile.
func (c *Client) GetUser(ctx context.Context) (*model.User, error) {
	var u model.User
	if err := c.fetch(ctx, ResourceUser, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetSpendingOverview returns the analytics summary for the configured window.
func (c *Client) GetSpendingOverview(ctx context.Context) (*model.SpendingAnalytics, error) {
	var a model.SpendingAnalytics
	if err := c.fetch(ctx, ResourceOverview, nil, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// GetBillsOverview returns the monthly bills summary. Zero year/month select
// the backend's current month.
func (c *Client) GetBillsOverview(ctx context.Context, year, month int) (*model.BillsResponse, error) {
	q, err := MonthQuery(year, month)
	if err != nil {
		return nil, err
	}
	var b model.BillsResponse
	if err := c.fetch(ctx, ResourceBills, q, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// GetSpendingCategories returns the top categories.
func (c *Client) GetSpendingCategories(ctx context.Context) (*model.CategoriesResponse, error) {
	var r model.CategoriesResponse
	if err := c.fetch(ctx, ResourceCategories, nil, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// GetCategoryTotals returns signed totals keyed by category.
func (c *Client) GetCategoryTotals(ctx context.Context) (map[string]float64, error) {
	body, err := c.Raw(ctx, ResourceCategoryTotals, nil)
	if err != nil {
		return nil, err
	}
	return DecodeCategoryTotals(body)
}

// GetSpendingPredictions returns per-category spending forecasts.
func (c *Client) GetSpendingPredictions(ctx context.Context) ([]model.PredictedSpend, error) {
	body, err := c.Raw(ctx, ResourcePredictions, nil)
	if err != nil {
		return nil, err
	}
	return DecodePredictions(body)
}

// GetSpendingPatterns returns time-of-day and weekday spending patterns.
func (c *Client) GetSpendingPatterns(ctx context.Context) (*model.SpendingPatterns, error) {
	var p model.SpendingPatterns
	if err := c.fetch(ctx, ResourcePatterns, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetSpendingInsights returns server-generated insights.
func (c *Client) GetSpendingInsights(ctx context.Context) (*model.InsightsResponse, error) {
	var r model.InsightsResponse
	if err := c.fetch(ctx, ResourceInsights, nil, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// GetBillsIncomeAnalysis returns bills measured against income for a month.
func (c *Client) GetBillsIncomeAnalysis(ctx context.Context, year, month int) (*model.BillsIncomeAnalysis, error) {
	q, err := MonthQuery(year, month)
	if err != nil {
		return nil, err
	}
	body, err := c.Raw(ctx, ResourceBillsIncome, q)
	if err != nil {
		return nil, err
	}
	return DecodeBillsIncome(body)
}

// GetIncome returns income transactions for a month.
func (c *Client) GetIncome(ctx context.Context, year, month int) (*model.IncomeResponse, error) {
	q, err := MonthQuery(year, month)
	if err != nil {
		return nil, err
	}
	var r model.IncomeResponse
	if err := c.fetch(ctx, ResourceIncome, q, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// GetMonthlyIncome returns the income total for a month.
func (c *Client) GetMonthlyIncome(ctx context.Context, year, month int) (*model.MonthlyIncome, error) {
	q, err := MonthQuery(year, month)
	if err != nil {
		return nil, err
	}
	var r model.MonthlyIncome
	if err := c.fetch(ctx, ResourceMonthlyIncome, q, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// GetTransactions returns the account's raw transactions.
func (c *Client) GetTransactions(ctx context.Context) ([]model.Transaction, error) {
	body, err := c.Raw(ctx, ResourceTransactions, nil)
	if err != nil {
		return nil, err
	}
	return DecodeTransactions(body)
}

// Raw fetches a resource and returns the undecoded body.
func (c *Client) Raw(ctx context.Context, r Resource, query url.Values) ([]byte, error) {
	body, err := c.get(ctx, c.path(r), c.query(r, query))
	if err != nil {
		c.log.WarnContext(ctx, "request failed", "resource", string(r), "kind", Kind(err).String(), "error", err)
		return nil, err
	}
	return body, nil
}

func (c *Client) fetch(ctx context.Context, r Resource, query url.Values, out any) error {
	body, err := c.Raw(ctx, r, query)
	if err != nil {
		return err
	}
	if err := decode(r, body, out); err != nil {
		c.log.WarnContext(ctx, "malformed payload", "resource", string(r), "error", err)
		return err
	}
	return nil
}

func (c *Client) path(r Resource) string {
	acct := url.PathEscape(c.accountID)
	if r == ResourceBillsIncome {
		return strings.ReplaceAll(c.billsIncomePath, "{account}", acct)
	}
	return strings.ReplaceAll(r.pathTemplate(), "{account}", acct)
}

func (c *Client) query(r Resource, q url.Values) url.Values {
	if r == ResourceOverview && c.timeRange != "" {
		if q == nil {
			q = url.Values{}
		}
		q.Set("timeRange", c.timeRange)
	}
	return q
}

// get performs a GET request and returns the response body.
func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("api: waiting for rate limiter: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	target := c.baseURL + path
	if len(query) > 0 {
		// spaces as %20, not +
		target += "?" + strings.ReplaceAll(query.Encode(), "+", "%20")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("api: creating request: %w", err)
	}

	reqID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Request-ID", reqID)

	start := time.Now()
	resp, err := c.http.Do(req) //nolint:gosec // URL is built from the configured base URL
	if err != nil {
		return nil, fmt.Errorf("api: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	c.log.DebugContext(ctx, "response",
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
		slog.String("request_id", reqID),
		slog.Duration("latency", time.Since(start)),
	)

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, ErrUnauthorized
	case http.StatusTooManyRequests:
		return nil, ErrRateLimited
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &StatusError{Code: resp.StatusCode, Path: path, Body: strings.TrimSpace(string(msg))}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("api: reading response: %w", err)
	}
	if len(body) > maxBodySize {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrTooLarge, path, maxBodySize)
	}
	return body, nil
}

// MonthQuery builds ?year&month, omitting zero values.
func MonthQuery(year, month int) (url.Values, error) {
	if month < 0 || month > 12 {
		return nil, fmt.Errorf("api: invalid month %d (must be 1-12)", month)
	}
	if year < 0 {
		return nil, fmt.Errorf("api: invalid year %d", year)
	}
	q := url.Values{}
	if year > 0 {
		q.Set("year", strconv.Itoa(year))
	}
	if month > 0 {
		q.Set("month", strconv.Itoa(month))
	}
	return q, nil
}

// IsNoAccount reports whether err stems from a missing account identifier.
func IsNoAccount(err error) bool {
	return errors.Is(err, ErrNoAccount)
}
