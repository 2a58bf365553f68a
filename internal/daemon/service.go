// Package daemon provides the long-running background spending monitor.
package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/theirongolddev/finburn/internal/analytics"
	flog "github.com/theirongolddev/finburn/internal/log"
	"github.com/theirongolddev/finburn/internal/model"
	"github.com/theirongolddev/finburn/internal/pipeline"
)

// Event types.
const (
	EventSnapshot      = "snapshot"
	EventSpendingDelta = "spending_delta"
)

// Loader produces a fresh dashboard on every poll.
type Loader interface {
	Load(ctx context.Context) *pipeline.Dashboard
}

// SnapshotStore persists snapshot history. *store.Store satisfies it.
type SnapshotStore interface {
	SaveSnapshot(model.Snapshot) (int64, error)
	Snapshots(accountID string, limit int) ([]model.Snapshot, error)
	PruneSnapshots(accountID string, keep int) (int64, error)
}

// Config controls the daemon runtime behavior.
type Config struct {
	Account      string
	Interval     time.Duration
	Addr         string
	EventsBuffer int
	// HistoryKeep bounds persisted snapshots per account; 0 keeps all.
	HistoryKeep int
	Store       SnapshotStore
	Log         *flog.Logger
}

// Delta captures snapshot changes between polls.
type Delta struct {
	TotalSpent      float64 `json:"total_spent"`
	MonthlyAverage  float64 `json:"monthly_average"`
	SpendingRatio   float64 `json:"spending_ratio"`
	BillsTotal      float64 `json:"bills_total"`
	UpcomingBills   int     `json:"upcoming_bills"`
	HighPredictions int     `json:"high_predictions"`
	TopCategory     string  `json:"top_category,omitempty"`
}

func (d Delta) isZero() bool {
	return d.TotalSpent == 0 &&
		d.MonthlyAverage == 0 &&
		d.SpendingRatio == 0 &&
		d.BillsTotal == 0 &&
		d.UpcomingBills == 0 &&
		d.HighPredictions == 0 &&
		d.TopCategory == ""
}

// Event is emitted whenever the spending snapshot changes.
type Event struct {
	ID        int64          `json:"id"`
	Type      string         `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Snapshot  model.Snapshot `json:"snapshot"`
	Delta     Delta          `json:"delta"`
}

// Status is served at /v1/status.
type Status struct {
	RunID           string         `json:"run_id"`
	Account         string         `json:"account"`
	StartedAt       time.Time      `json:"started_at"`
	LastPollAt      time.Time      `json:"last_poll_at"`
	PollIntervalSec int            `json:"poll_interval_sec"`
	PollCount       int64          `json:"poll_count"`
	Summary         model.Snapshot `json:"summary"`
	Stale           bool           `json:"stale"`
	FailedWidgets   []string       `json:"failed_widgets,omitempty"`
	LastError       string         `json:"last_error,omitempty"`
	EventCount      int            `json:"event_count"`
	SubscriberCount int            `json:"subscriber_count"`
}

// Service provides the daemon runtime and HTTP API.
type Service struct {
	cfg    Config
	loader Loader
	log    *flog.Logger
	runID  string

	mu          sync.RWMutex
	startedAt   time.Time
	lastPollAt  time.Time
	pollCount   int64
	lastError   string
	failed      []string
	stale       bool
	hasSnapshot bool
	snapshot    model.Snapshot
	nextEventID int64
	events      []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a daemon service polling loader.
func New(cfg Config, loader Loader) *Service {
	if cfg.Interval < 2*time.Second {
		cfg.Interval = 60 * time.Second
	}
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8788"
	}
	lg := cfg.Log
	if lg == nil {
		lg = flog.Discard()
	}

	return &Service{
		cfg:       cfg,
		loader:    loader,
		log:       lg.WithComponent("daemon"),
		runID:     uuid.NewString(),
		startedAt: time.Now(),
		subs:      make(map[int]chan Event),
	}
}

// Handler returns the HTTP API.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/v1/status", s.handleStatus)
	mux.HandleFunc("/v1/events", s.handleEvents)
	mux.HandleFunc("/v1/history", s.handleHistory)
	mux.HandleFunc("/v1/stream", s.handleStream)
	return mux
}

// Run starts HTTP endpoints and polling until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	s.log.Info("daemon listening", "addr", s.cfg.Addr, "interval", s.cfg.Interval, "run_id", s.runID)

	s.pollOnce(ctx)

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		case <-ticker.C:
			s.pollOnce(ctx)
		case err := <-errCh:
			return fmt.Errorf("daemon http server: %w", err)
		}
	}
}

func (s *Service) pollOnce(ctx context.Context) {
	d := s.loader.Load(ctx)
	now := time.Now()

	failed := failedWidgets(d)
	if !d.Overview.Ready() {
		s.mu.Lock()
		s.lastError = d.Overview.Message()
		s.failed = failed
		s.lastPollAt = now
		s.pollCount++
		s.mu.Unlock()
		s.log.Warn("poll failed", "err", d.Overview.Err, "failed_widgets", len(failed))
		return
	}

	snap := SnapshotFromDashboard(d, now)

	var (
		ev      Event
		publish bool
	)

	s.mu.Lock()
	prev := s.snapshot
	prevExists := s.hasSnapshot

	s.hasSnapshot = true
	s.snapshot = snap
	s.lastPollAt = now
	s.pollCount++
	s.lastError = ""
	s.failed = failed
	s.stale = d.AnyStale()

	if !prevExists {
		s.nextEventID++
		ev = Event{ID: s.nextEventID, Type: EventSnapshot, Timestamp: now, Snapshot: snap}
		publish = true
	} else if delta := diffSnapshots(prev, snap); !delta.isZero() {
		s.nextEventID++
		ev = Event{ID: s.nextEventID, Type: EventSpendingDelta, Timestamp: now, Snapshot: snap, Delta: delta}
		publish = true
	}
	s.mu.Unlock()

	if publish {
		s.publishEvent(ev)
		s.record(snap)
	}
	s.log.Debug("poll complete", "published", publish, "failed_widgets", len(failed))
}

// record persists a published snapshot. Storage errors are logged only.
func (s *Service) record(snap model.Snapshot) {
	if s.cfg.Store == nil {
		return
	}
	if _, err := s.cfg.Store.SaveSnapshot(snap); err != nil {
		s.log.Warn("saving snapshot", "err", err)
		return
	}
	if s.cfg.HistoryKeep > 0 {
		if _, err := s.cfg.Store.PruneSnapshots(snap.Account, s.cfg.HistoryKeep); err != nil {
			s.log.Warn("pruning snapshots", "err", err)
		}
	}
}

// SnapshotFromDashboard condenses a loaded dashboard. Widgets that failed
// contribute zero values.
func SnapshotFromDashboard(d *pipeline.Dashboard, at time.Time) model.Snapshot {
	snap := model.Snapshot{At: at, Account: d.Account}

	if d.Overview.Ready() {
		o := d.Overview.Data
		snap.TotalSpent = o.TotalSpent
		snap.MonthlyAverage = o.MonthlyAverage
		snap.SpendingRatio = o.SpendingRatio
		if snap.Account == "" {
			snap.Account = o.Account
		}
	}

	switch {
	case d.BillsIncome.Ready():
		snap.BillsTotal = d.BillsIncome.Data.Ratio.Bills
	case d.Bills.Ready():
		snap.BillsTotal = d.Bills.Data.Summary.TotalSpent
	}
	if d.BillSchedule.Ready() {
		snap.UpcomingBills = d.BillSchedule.Data.Upcoming
	}

	if d.Categories.Ready() && len(d.Categories.Data) > 0 {
		snap.TopCategory = d.Categories.Data[0].Category
		snap.TopCategoryAmount = d.Categories.Data[0].Amount
		snap.Categories = make(map[string]float64, len(d.Categories.Data))
		for _, c := range d.Categories.Data {
			snap.Categories[c.Category] = c.Amount
		}
	}

	if d.Predictions.Ready() {
		snap.HighPredictions = analytics.CountHigh(d.Predictions.Data)
	}
	return snap
}

func failedWidgets(d *pipeline.Dashboard) []string {
	errs := d.Errors()
	if len(errs) == 0 {
		return nil
	}
	out := make([]string, 0, len(errs))
	for r := range errs {
		out = append(out, string(r))
	}
	sort.Strings(out)
	return out
}

func diffSnapshots(prev, curr model.Snapshot) Delta {
	d := Delta{
		TotalSpent:      analytics.Round2(curr.TotalSpent - prev.TotalSpent),
		MonthlyAverage:  analytics.Round2(curr.MonthlyAverage - prev.MonthlyAverage),
		SpendingRatio:   curr.SpendingRatio - prev.SpendingRatio,
		BillsTotal:      analytics.Round2(curr.BillsTotal - prev.BillsTotal),
		UpcomingBills:   curr.UpcomingBills - prev.UpcomingBills,
		HighPredictions: curr.HighPredictions - prev.HighPredictions,
	}
	if curr.TopCategory != prev.TopCategory {
		d.TopCategory = curr.TopCategory
	}
	return d
}

func (s *Service) publishEvent(ev Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	s.mu.Unlock()
}

func (s *Service) snapshotStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		RunID:           s.runID,
		Account:         s.cfg.Account,
		StartedAt:       s.startedAt,
		LastPollAt:      s.lastPollAt,
		PollIntervalSec: int(s.cfg.Interval.Seconds()),
		PollCount:       s.pollCount,
		Summary:         s.snapshot,
		Stale:           s.stale,
		FailedWidgets:   s.failed,
		LastError:       s.lastError,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, s.snapshotStatus())
}

func (s *Service) handleEvents(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	s.mu.RUnlock()

	writeJSON(w, events)
}

func (s *Service) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Store == nil {
		http.Error(w, "history disabled", http.StatusNotFound)
		return
	}
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}
	snaps, err := s.cfg.Store.Snapshots(s.cfg.Account, limit)
	if err != nil {
		s.log.Warn("reading history", "err", err)
		http.Error(w, "history unavailable", http.StatusInternalServerError)
		return
	}
	if snaps == nil {
		snaps = []model.Snapshot{}
	}
	writeJSON(w, snaps)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	current := Event{
		Type:      EventSnapshot,
		Timestamp: time.Now(),
		Snapshot:  s.snapshotStatus().Summary,
	}
	s.writeSSE(w, current)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			s.writeSSE(w, ev)
			flusher.Flush()
		}
	}
}

func (s *Service) writeSSE(w http.ResponseWriter, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	if ev.ID > 0 {
		_, _ = fmt.Fprintf(w, "id: %s-%d\n", s.runID, ev.ID)
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}
