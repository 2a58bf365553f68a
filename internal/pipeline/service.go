// Package pipeline is the shared data-fetching service behind every view:
// one fetch per resource, concurrent dashboard loads, an in-memory LRU and
// a SQLite fallback for offline use.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/theirongolddev/finburn/internal/analytics"
	"github.com/theirongolddev/finburn/internal/api"
	"github.com/theirongolddev/finburn/internal/cache"
	flog "github.com/theirongolddev/finburn/internal/log"
	"github.com/theirongolddev/finburn/internal/model"
	"github.com/theirongolddev/finburn/internal/store"
)

// ErrOffline is returned in offline mode when no cached copy exists.
var ErrOffline = errors.New("pipeline: offline and no cached copy")

// InsightsWindow is the period insights are computed over.
const InsightsWindow = 30 * 24 * time.Hour

const (
	defaultConcurrency = 4
	lruSize            = 64
)

// Options configures a Service.
type Options struct {
	// Client is nil when no account is configured or when running offline.
	Client *api.Client
	// AccountID is used for cache lookups when Client is nil.
	AccountID string
	Store     *store.Store
	Offline   bool
	NoCache   bool
	CacheTTL  time.Duration
	Period    Period
	Log       *flog.Logger
	Now       func() time.Time

	Concurrency int
}

// Service loads dashboard widgets.
type Service struct {
	client  *api.Client
	store   *store.Store
	account string
	offline bool
	noCache bool
	lru     *cache.LRU[string, cachedBody]
	log     *flog.Logger
	now     func() time.Time
	limit   int

	mu     sync.Mutex
	period Period
}

type cachedBody struct {
	body  []byte
	at    time.Time
	stale bool
}

type fetched struct {
	stale bool
	at    time.Time
}

// New builds a Service.
func New(opts Options) *Service {
	s := &Service{
		client:  opts.Client,
		store:   opts.Store,
		account: opts.AccountID,
		offline: opts.Offline,
		noCache: opts.NoCache,
		period:  opts.Period,
		log:     opts.Log,
		now:     opts.Now,
		limit:   opts.Concurrency,
	}
	if s.client != nil {
		s.account = s.client.AccountID()
	}
	if s.log == nil {
		s.log = flog.Discard()
	}
	s.log = s.log.WithComponent("pipeline")
	if s.now == nil {
		s.now = time.Now
	}
	if s.limit < 1 {
		s.limit = defaultConcurrency
	}
	if !opts.NoCache && opts.CacheTTL > 0 {
		s.lru = cache.New[string, cachedBody](lruSize, opts.CacheTTL).WithClock(s.now)
	}
	return s
}

// Account returns the account being loaded.
func (s *Service) Account() string { return s.account }

// Period returns the bills/income month.
func (s *Service) Period() Period {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.period
}

// SetPeriod changes the bills/income month for later loads. It is safe to
// call while a load is running; the running load keeps its month.
func (s *Service) SetPeriod(p Period) {
	s.mu.Lock()
	s.period = p
	s.mu.Unlock()
}

// Offline reports whether the service never touches the network.
func (s *Service) Offline() bool { return s.offline || s.client == nil }

// Invalidate drops the in-memory cache so the next load refetches.
func (s *Service) Invalidate() {
	if s.lru != nil {
		s.lru.Purge()
	}
}

// dashboardResources is the load order; transactions go first as they
// feed two derived widgets.
var dashboardResources = []api.Resource{
	api.ResourceTransactions,
	api.ResourceOverview,
	api.ResourceCategoryTotals,
	api.ResourceCategories,
	api.ResourceBills,
	api.ResourceBillsIncome,
	api.ResourcePredictions,
	api.ResourcePatterns,
	api.ResourceInsights,
	api.ResourceMonthlyIncome,
	api.ResourceIncome,
	api.ResourceUser,
}

// Load fetches every widget concurrently. Failures are recorded per widget;
// partial success is normal.
func (s *Service) Load(ctx context.Context) *Dashboard {
	d := NewDashboard(s.account, s.Period())
	if s.lru != nil {
		if n := s.lru.CleanExpired(); n > 0 {
			s.log.DebugContext(ctx, "expired cached payloads", "count", n)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.limit)
	for _, r := range dashboardResources {
		r := r
		g.Go(func() error {
			s.LoadResource(gctx, d, r)
			return nil
		})
	}
	_ = g.Wait()

	s.derive(d)
	d.LoadedAt = s.now()
	if s.lru != nil {
		hits, misses := s.lru.Stats()
		s.log.DebugContext(ctx, "dashboard loaded", "cache_hits", hits, "cache_misses", misses, "failed", len(d.Errors()))
	}
	return d
}

// LoadResources fetches only the given resources into a fresh dashboard.
func (s *Service) LoadResources(ctx context.Context, rs ...api.Resource) *Dashboard {
	d := NewDashboard(s.account, s.Period())
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.limit)
	for _, r := range rs {
		r := r
		g.Go(func() error {
			s.LoadResource(gctx, d, r)
			return nil
		})
	}
	_ = g.Wait()
	s.derive(d)
	d.LoadedAt = s.now()
	return d
}

// LoadResource fetches one resource and stores the result in its widget.
// Widgets for different resources may be loaded concurrently on the same
// dashboard.
func (s *Service) LoadResource(ctx context.Context, d *Dashboard, r api.Resource) {
	switch r {
	case api.ResourceUser:
		d.User = load(ctx, s, r, nil, decodeAs[model.User](r))
	case api.ResourceOverview:
		d.Overview = load(ctx, s, r, nil, parseOverview)
	case api.ResourceCategoryTotals:
		d.Categories = load(ctx, s, r, nil, parseCategoryTotals)
	case api.ResourceCategories:
		d.TopCategories = load(ctx, s, r, nil, parseTopCategories)
	case api.ResourceInsights:
		d.ServerInsights = load(ctx, s, r, nil, decodeAs[model.InsightsResponse](r))
	case api.ResourceBills:
		d.Bills = loadPeriod(ctx, s, d.Period, r, parseBills)
	case api.ResourceBillsIncome:
		d.BillsIncome = loadPeriod(ctx, s, d.Period, r, parseBillsIncome)
	case api.ResourceMonthlyIncome:
		d.Income = loadPeriod(ctx, s, d.Period, r, decodeAs[model.MonthlyIncome](r))
	case api.ResourceIncome:
		d.IncomeDetail = loadPeriod(ctx, s, d.Period, r, decodeAs[model.IncomeResponse](r))
	case api.ResourcePredictions:
		d.Predictions = load(ctx, s, r, nil, parsePredictions)
	case api.ResourcePatterns:
		d.Patterns = load(ctx, s, r, nil, parsePatterns)
	case api.ResourceTransactions:
		d.Transactions = load(ctx, s, r, nil, api.DecodeTransactions)
		s.deriveTransactions(d)
	}
}

func (s *Service) deriveTransactions(d *Dashboard) {
	t := d.Transactions
	if !t.Ready() {
		d.Insights = failed[[]analytics.CategoryInsight](t.Err)
		d.BillSchedule = failed[analytics.BillsSummary](t.Err)
		return
	}
	f := fetched{stale: t.Stale, at: t.FetchedAt}
	now := s.now()
	cur, prev := analytics.SplitPeriod(t.Data, now, InsightsWindow)
	d.Insights = ready(analytics.Insights(cur, prev), f)
	d.BillSchedule = ready(analytics.Bills(t.Data, now), f)
}

// derive fills cross-widget details once every fetch has finished.
func (s *Service) derive(d *Dashboard) {
	if !d.Patterns.Ready() || !d.Transactions.Ready() {
		return
	}
	if d.Patterns.Data.PeakTime() == "" && d.Patterns.Data.PeakDay() == "" {
		d.Patterns.Data = analytics.PatternsFromTransactions(d.Transactions.Data)
		return
	}
	if len(d.Patterns.Data.Recurring) == 0 {
		d.Patterns.Data.Recurring = analytics.Recurring(d.Transactions.Data)
	}
}

func load[T any](ctx context.Context, s *Service, r api.Resource, q url.Values, parse func([]byte) (T, error)) Widget[T] {
	body, f, err := s.raw(ctx, r, q)
	if err == nil {
		var v T
		if v, err = parse(body); err == nil {
			return ready(v, f)
		}
	}
	s.logFailure(ctx, r, err)
	return failed[T](err)
}

func loadPeriod[T any](ctx context.Context, s *Service, p Period, r api.Resource, parse func([]byte) (T, error)) Widget[T] {
	q, err := api.MonthQuery(p.Year, p.Month)
	if err != nil {
		return failed[T](err)
	}
	return load(ctx, s, r, q, parse)
}

// Fetch returns the raw body for a resource through the caches.
func (s *Service) Fetch(ctx context.Context, r api.Resource, q url.Values) ([]byte, bool, error) {
	body, f, err := s.raw(ctx, r, q)
	return body, f.stale, err
}

func (s *Service) raw(ctx context.Context, r api.Resource, q url.Values) ([]byte, fetched, error) {
	if s.account == "" {
		return nil, fetched{}, api.ErrNoAccount
	}

	key := string(r) + "|" + s.account + "|" + q.Encode()
	if s.lru != nil {
		if c, ok := s.lru.Get(key); ok {
			return c.body, fetched{stale: c.stale, at: c.at}, nil
		}
	}

	if s.Offline() {
		return s.fromStore(r, q, ErrOffline)
	}

	body, err := s.client.Raw(ctx, r, q)
	if err != nil {
		switch api.Kind(err) {
		case api.KindNetwork, api.KindTimeout:
			if b, f, serr := s.fromStore(r, q, err); serr == nil {
				s.log.InfoContext(ctx, "serving cached payload", "resource", string(r), "fetched_at", f.at)
				return b, f, nil
			}
		}
		return nil, fetched{}, err
	}

	now := s.now()
	if s.lru != nil {
		s.lru.Set(key, cachedBody{body: body, at: now})
	}
	if s.store != nil {
		if err := s.store.SavePayload(string(r), s.account, q.Encode(), body); err != nil {
			s.log.WarnContext(ctx, "caching payload", "resource", string(r), "error", err)
		}
	}
	return body, fetched{at: now}, nil
}

func (s *Service) fromStore(r api.Resource, q url.Values, cause error) ([]byte, fetched, error) {
	if s.store == nil || s.noCache {
		return nil, fetched{}, cause
	}
	p, err := s.store.LoadPayload(string(r), s.account, q.Encode())
	if err != nil {
		return nil, fetched{}, cause
	}
	s.log.Debug("stored payload", "resource", string(r), "age", p.Age(s.now()).Round(time.Second))
	return p.Body, fetched{stale: true, at: p.FetchedAt}, nil
}

func (s *Service) logFailure(ctx context.Context, r api.Resource, err error) {
	if errors.Is(err, api.ErrNoAccount) {
		return
	}
	attrs := []any{"endpoint", string(r), "kind", api.Kind(err).String(), "error", err}
	var se *api.StatusError
	if errors.As(err, &se) {
		attrs = append(attrs, "status", se.Code)
	}
	s.log.WarnContext(ctx, "widget load failed", attrs...)
}

func decodeAs[T any](r api.Resource) func([]byte) (T, error) {
	return func(body []byte) (T, error) {
		var v T
		err := api.Decode(r, body, &v)
		return v, err
	}
}

func parseOverview(body []byte) (analytics.OverviewStats, error) {
	var a model.SpendingAnalytics
	if err := api.Decode(api.ResourceOverview, body, &a); err != nil {
		return analytics.OverviewStats{}, err
	}
	stats, err := analytics.Overview(a)
	if err != nil {
		return stats, fmt.Errorf("%w: %s: %v", api.ErrMalformed, api.ResourceOverview, err)
	}
	return stats, nil
}

func parseCategoryTotals(body []byte) ([]analytics.CategoryShare, error) {
	totals, err := api.DecodeCategoryTotals(body)
	if err != nil {
		return nil, err
	}
	return analytics.CategoryBreakdown(totals), nil
}

func parseTopCategories(body []byte) ([]analytics.CategoryShare, error) {
	var r model.CategoriesResponse
	if err := api.Decode(api.ResourceCategories, body, &r); err != nil {
		return nil, err
	}
	return analytics.FromTopCategories(r.TopCategories), nil
}

func parseBills(body []byte) (BillsView, error) {
	var r model.BillsResponse
	if err := api.Decode(api.ResourceBills, body, &r); err != nil {
		return BillsView{}, err
	}
	return BillsView{Summary: r, Merchants: analytics.FromBillSpend(r.TopBills)}, nil
}

func parseBillsIncome(body []byte) (BillsIncomeView, error) {
	a, err := api.DecodeBillsIncome(body)
	if err != nil {
		return BillsIncomeView{}, err
	}
	ratio, err := analytics.IncomeFromAnalysis(*a)
	if err != nil {
		return BillsIncomeView{}, fmt.Errorf("%w: %s: %v", api.ErrMalformed, api.ResourceBillsIncome, err)
	}
	return BillsIncomeView{
		Analysis: *a,
		Ratio:    ratio,
		Grid:     analytics.BillGrid(a.Bills, *a.MonthlyIncome),
	}, nil
}

func parsePredictions(body []byte) ([]analytics.Prediction, error) {
	preds, err := api.DecodePredictions(body)
	if err != nil {
		return nil, err
	}
	return analytics.Predictions(preds), nil
}

func parsePatterns(body []byte) (analytics.PatternBuckets, error) {
	var p model.SpendingPatterns
	if err := api.Decode(api.ResourcePatterns, body, &p); err != nil {
		return analytics.PatternBuckets{}, err
	}
	return analytics.Patterns(p), nil
}

// CacheDir returns the cache directory, honouring XDG_CACHE_HOME.
func CacheDir() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "finburn")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache", "finburn")
}

// CachePath returns the full path to the payload cache database.
func CachePath() string {
	return filepath.Join(CacheDir(), "payloads.db")
}
