package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/theirongolddev/finburn/internal/analytics"
	"github.com/theirongolddev/finburn/internal/api"
	"github.com/theirongolddev/finburn/internal/config"
	"github.com/theirongolddev/finburn/internal/model"
	"github.com/theirongolddev/finburn/internal/pipeline"
	"github.com/theirongolddev/finburn/internal/tui/components"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

type stubLoader struct {
	period      pipeline.Period
	dash        *pipeline.Dashboard
	invalidated int
	loaded      []api.Resource
	offline     bool
}

func (s *stubLoader) Load(context.Context) *pipeline.Dashboard { return s.dash }

func (s *stubLoader) LoadResource(_ context.Context, _ *pipeline.Dashboard, r api.Resource) {
	s.loaded = append(s.loaded, r)
}

func (s *stubLoader) Invalidate()                 { s.invalidated++ }
func (s *stubLoader) Period() pipeline.Period     { return s.period }
func (s *stubLoader) SetPeriod(p pipeline.Period) { s.period = p }
func (s *stubLoader) Account() string             { return "acct-1" }
func (s *stubLoader) Offline() bool               { return s.offline }

func newTestApp(t *testing.T, l Loader) (App, *[]config.Config) {
	t.Helper()
	var saved []config.Config
	a := NewApp(Options{
		Loader: l,
		Config: config.DefaultConfig(),
		Save: func(c config.Config) error {
			saved = append(saved, c)
			return nil
		},
		Now: func() time.Time { return time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC) },
	})
	a.width, a.height = 140, 50
	return a, &saved
}

func update(t *testing.T, a App, msg tea.Msg) (App, tea.Cmd) {
	t.Helper()
	m, cmd := a.Update(msg)
	out, ok := m.(App)
	if !ok {
		t.Fatalf("Update returned %T, want App", m)
	}
	return out, cmd
}

func overviewDashboard() *pipeline.Dashboard {
	d := pipeline.NewDashboard("acct-1", pipeline.Period{})
	d.Overview = pipeline.Widget[analytics.OverviewStats]{
		State: pipeline.StateReady,
		Data: analytics.OverviewStats{
			TotalSpent:     1234.5,
			MonthlyAverage: 800,
			Status:         analytics.StatusOnTrack,
		},
	}
	return d
}

func TestTabAtXMatchesTabWidths(t *testing.T) {
	n := len(components.Tabs)
	for active := 0; active < n; active++ {
		a := App{activeTab: active}
		pos := 0
		for i, tab := range components.Tabs {
			w := components.TabVisualWidth(tab, i == active)
			x := pos + w/2
			if got := a.tabAtX(x); got != i {
				t.Fatalf("active=%d x=%d -> tab=%d, want %d", active, x, got, i)
			}
			pos += w + 1
		}
		if got := a.tabAtX(pos + 50); got != -1 {
			t.Fatalf("x past last tab -> %d, want -1", got)
		}
	}
}

func TestStaleDashboardDropped(t *testing.T) {
	l := &stubLoader{dash: overviewDashboard()}
	a, _ := newTestApp(t, l)

	a, _ = update(t, a, refreshMsg{})
	a, _ = update(t, a, refreshMsg{})
	if a.seq != 2 {
		t.Fatalf("seq = %d, want 2", a.seq)
	}

	a, _ = update(t, a, dashboardMsg{seq: 1, dash: overviewDashboard()})
	if a.dash != nil {
		t.Fatal("dashboard from superseded load was applied")
	}
	if !a.loading {
		t.Fatal("loading cleared by superseded load")
	}

	want := overviewDashboard()
	a, _ = update(t, a, dashboardMsg{seq: 2, dash: want})
	if a.dash != want {
		t.Fatal("current load was not applied")
	}
	if a.loading {
		t.Fatal("still loading after current load")
	}
}

func TestCountersJumpWithoutAnimation(t *testing.T) {
	l := &stubLoader{dash: overviewDashboard()}
	a, _ := newTestApp(t, l)
	a.cfg.TUI.Animate = false

	a, _ = update(t, a, refreshMsg{})
	a, cmd := update(t, a, dashboardMsg{seq: a.seq, dash: overviewDashboard()})
	if cmd != nil {
		t.Fatal("expected no animation command")
	}
	if a.totalCounter.Value() != 1234.5 || a.averageCounter.Value() != 800 {
		t.Fatalf("counters = %v/%v, want 1234.5/800", a.totalCounter.Value(), a.averageCounter.Value())
	}
}

func TestMonthNavigationWrapsYears(t *testing.T) {
	tests := []struct {
		name string
		from pipeline.Period
		key  tea.KeyType
		want pipeline.Period
	}{
		{"back from january", pipeline.Period{Year: 2025, Month: 1}, tea.KeyLeft, pipeline.Period{Year: 2024, Month: 12}},
		{"forward from december", pipeline.Period{Year: 2024, Month: 12}, tea.KeyRight, pipeline.Period{Year: 2025, Month: 1}},
		{"mid year", pipeline.Period{Year: 2025, Month: 6}, tea.KeyRight, pipeline.Period{Year: 2025, Month: 7}},
		{"zero period uses clock", pipeline.Period{}, tea.KeyLeft, pipeline.Period{Year: 2025, Month: 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := &stubLoader{period: tt.from}
			a, _ := newTestApp(t, l)
			a.dash = overviewDashboard()
			a.activeTab = tabBills

			a, cmd := update(t, a, tea.KeyMsg{Type: tt.key})
			if cmd == nil {
				t.Fatal("expected a reload command")
			}
			if l.period != tt.want {
				t.Fatalf("period = %+v, want %+v", l.period, tt.want)
			}
			if a.dash.Period != tt.want {
				t.Fatalf("dashboard period = %+v, want %+v", a.dash.Period, tt.want)
			}
			if a.dash.BillsIncome.State != pipeline.StateLoading {
				t.Fatalf("bills-income state = %v, want loading", a.dash.BillsIncome.State)
			}
			if !a.dash.Overview.Ready() {
				t.Fatal("overview should be kept across month changes")
			}
			if a.activeTab != tabBills {
				t.Fatalf("activeTab = %d, arrow keys should not leave the bills tab", a.activeTab)
			}
		})
	}
}

func TestStalePeriodResultDropped(t *testing.T) {
	l := &stubLoader{period: pipeline.Period{Year: 2025, Month: 5}}
	a, _ := newTestApp(t, l)
	a.dash = overviewDashboard()
	a.activeTab = tabBills

	a, _ = update(t, a, tea.KeyMsg{Type: tea.KeyLeft})
	a, _ = update(t, a, tea.KeyMsg{Type: tea.KeyLeft})

	old := pipeline.NewDashboard("acct-1", pipeline.Period{Year: 2025, Month: 4})
	a, _ = update(t, a, periodMsg{seq: a.periodSeq - 1, dash: old})
	if a.dash.Period.Month != 3 {
		t.Fatalf("period month = %d, want 3", a.dash.Period.Month)
	}
	if !a.periodLoading {
		t.Fatal("stale result cleared the loading flag")
	}
}

func TestQuitCancelsLoads(t *testing.T) {
	a, _ := newTestApp(t, &stubLoader{})
	ctx, cancel := context.WithCancel(context.Background())
	pctx, pcancel := context.WithCancel(context.Background())
	a.cancel, a.periodCancel = cancel, pcancel

	_, cmd := update(t, a, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("command did not quit")
	}
	if ctx.Err() == nil || pctx.Err() == nil {
		t.Fatal("in-flight loads were not canceled")
	}
}

func TestRefreshInvalidates(t *testing.T) {
	l := &stubLoader{}
	a, _ := newTestApp(t, l)
	a, cmd := update(t, a, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	if l.invalidated != 1 {
		t.Fatalf("invalidated = %d, want 1", l.invalidated)
	}
	if cmd == nil || !a.loading {
		t.Fatal("refresh did not start a load")
	}
}

func TestToggleAutoRefreshSaves(t *testing.T) {
	a, saved := newTestApp(t, &stubLoader{})
	start := a.autoRefresh
	a, _ = update(t, a, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("R")})
	if a.autoRefresh == start {
		t.Fatal("auto-refresh not toggled")
	}
	if len(*saved) != 1 || (*saved)[0].TUI.AutoRefresh != a.autoRefresh {
		t.Fatalf("saved = %+v", *saved)
	}
}

func TestMissingAccountShowsMessage(t *testing.T) {
	d := pipeline.NewDashboard("", pipeline.Period{})
	d.Overview = pipeline.Widget[analytics.OverviewStats]{State: pipeline.StateError, Err: api.ErrNoAccount}
	a, _ := newTestApp(t, &stubLoader{})
	a.dash = d

	out := a.View()
	if !strings.Contains(out, "No account configured") {
		t.Fatalf("view missing account message:\n%s", out)
	}
}

func TestEveryTabRenders(t *testing.T) {
	for _, loaded := range []bool{false, true} {
		a, _ := newTestApp(t, &stubLoader{})
		if loaded {
			a.dash = overviewDashboard()
		}
		for i := range components.Tabs {
			a.activeTab = i
			if out := a.View(); out == "" {
				t.Fatalf("tab %d rendered empty (loaded=%v)", i, loaded)
			}
		}
	}
}

func TestNarrowTerminal(t *testing.T) {
	a, _ := newTestApp(t, &stubLoader{})
	a.width = 60
	if out := a.View(); !strings.Contains(out, "too narrow") {
		t.Fatalf("narrow view = %q", out)
	}
}

func TestSettingsSave(t *testing.T) {
	a, saved := newTestApp(t, &stubLoader{})
	a.activeTab = tabSettings
	a.settings.cursor = settingsFieldRefreshInterval

	m, _ := a.settingsStartEdit()
	a = m.(App)
	a.settings.input.SetValue("5")
	a, _ = update(t, a, tea.KeyMsg{Type: tea.KeyEnter})
	if a.settings.saveErr == nil {
		t.Fatal("interval below 10s accepted")
	}
	if len(*saved) != 0 {
		t.Fatal("rejected value was saved")
	}

	m, _ = a.settingsStartEdit()
	a = m.(App)
	a.settings.input.SetValue("30")
	a, _ = update(t, a, tea.KeyMsg{Type: tea.KeyEnter})
	if a.settings.saveErr != nil {
		t.Fatalf("save error: %v", a.settings.saveErr)
	}
	if a.refreshInterval != 30*time.Second {
		t.Fatalf("refreshInterval = %v, want 30s", a.refreshInterval)
	}
	if len(*saved) != 1 || (*saved)[0].TUI.RefreshIntervalSec != 30 {
		t.Fatalf("saved = %+v", *saved)
	}
}

func TestSettingsAccountRebuildsLoader(t *testing.T) {
	next := &stubLoader{}
	var rebuilt []config.Config
	a, _ := newTestApp(t, &stubLoader{})
	a.rebuild = func(c config.Config) (Loader, error) {
		rebuilt = append(rebuilt, c)
		return next, nil
	}
	a.activeTab = tabSettings
	a.settings.cursor = settingsFieldAccount

	m, _ := a.settingsStartEdit()
	a = m.(App)
	a.settings.input.SetValue("acct-2")
	a, cmd := update(t, a, tea.KeyMsg{Type: tea.KeyEnter})
	if len(rebuilt) != 1 || rebuilt[0].API.AccountID != "acct-2" {
		t.Fatalf("rebuild calls = %+v", rebuilt)
	}
	if a.loader != Loader(next) {
		t.Fatal("loader not swapped")
	}
	if cmd == nil || !a.loading {
		t.Fatal("account change did not reload")
	}
}

func TestSetupValuesApply(t *testing.T) {
	cfg := config.DefaultConfig()
	v := setupValues{apiURL: " http://localhost:9000/ ", accountID: " a1 ", theme: "tokyo-night"}
	got := v.apply(cfg)
	if got.API.BaseURL != "http://localhost:9000" || got.API.AccountID != "a1" || got.Appearance.Theme != "tokyo-night" {
		t.Fatalf("apply = %+v", got)
	}
	if err := validateAPIURL("ftp://x"); err == nil {
		t.Fatal("ftp URL accepted")
	}
	if err := validateAccountID("  "); err == nil {
		t.Fatal("blank account accepted")
	}
}

// overriddenApp mimics `finburn tui --offline --verbose` with the account
// taken from the environment: the effective config differs from the file.
func overriddenApp(t *testing.T, save func(config.Config) error) App {
	t.Helper()
	file := config.DefaultConfig()
	eff := file
	eff.General.Offline = true
	eff.General.LogLevel = "debug"
	eff.API.AccountID = "env-account"
	a := NewApp(Options{
		Loader:     &stubLoader{},
		Config:     eff,
		FileConfig: &file,
		Save:       save,
		Now:        func() time.Time { return time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC) },
	})
	a.width, a.height = 140, 50
	return a
}

func TestAutoRefreshToggleKeepsOverridesOutOfFile(t *testing.T) {
	var saved []config.Config
	a := overriddenApp(t, func(c config.Config) error {
		saved = append(saved, c)
		return nil
	})
	def := config.DefaultConfig()

	a, _ = update(t, a, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("R")})
	if len(saved) != 1 {
		t.Fatalf("saves = %d, want 1", len(saved))
	}
	got := saved[0]
	if got.General.Offline || got.General.LogLevel != def.General.LogLevel || got.API.AccountID != "" {
		t.Fatalf("persisted overrides: offline=%v log_level=%q account=%q",
			got.General.Offline, got.General.LogLevel, got.API.AccountID)
	}
	if got.TUI.AutoRefresh != a.autoRefresh {
		t.Fatalf("persisted auto_refresh = %v, want %v", got.TUI.AutoRefresh, a.autoRefresh)
	}
	if !a.cfg.General.Offline || a.cfg.API.AccountID != "env-account" {
		t.Fatalf("effective config lost its overrides: %+v", a.cfg)
	}
}

func TestSettingsSaveKeepsOverridesOutOfFile(t *testing.T) {
	var saved []config.Config
	a := overriddenApp(t, func(c config.Config) error {
		saved = append(saved, c)
		return nil
	})
	a.activeTab = tabSettings
	a.settings.cursor = settingsFieldAnimate

	m, _ := a.settingsStartEdit()
	a = m.(App)
	a.settings.input.SetValue("false")
	a, _ = update(t, a, tea.KeyMsg{Type: tea.KeyEnter})
	if a.settings.saveErr != nil {
		t.Fatalf("save error: %v", a.settings.saveErr)
	}
	if len(saved) != 1 {
		t.Fatalf("saves = %d, want 1", len(saved))
	}
	if saved[0].TUI.Animate || saved[0].General.Offline || saved[0].API.AccountID != "" {
		t.Fatalf("saved = %+v", saved[0])
	}
	if a.cfg.TUI.Animate || !a.cfg.General.Offline {
		t.Fatalf("effective config = %+v", a.cfg)
	}
}

func TestAutoRefreshToggleReportsSaveError(t *testing.T) {
	a := overriddenApp(t, func(config.Config) error { return errors.New("disk full") })
	a, _ = update(t, a, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("R")})
	if a.settings.saveErr == nil {
		t.Fatal("save error was dropped")
	}
}

func monthDashboard(p pipeline.Period) *pipeline.Dashboard {
	d := overviewDashboard()
	d.Period = p
	d.Income = pipeline.Widget[model.MonthlyIncome]{
		State: pipeline.StateReady,
		Data:  model.MonthlyIncome{Year: p.Year, Month: p.Month, MonthlyIncome: 2000},
	}
	return d
}

func TestFullLoadKeepsSelectedMonth(t *testing.T) {
	march := pipeline.Period{Year: 2025, Month: 3}
	april := pipeline.Period{Year: 2025, Month: 4}

	t.Run("month loaded first", func(t *testing.T) {
		l := &stubLoader{period: march}
		a, _ := newTestApp(t, l)
		a.dash = monthDashboard(march)
		a.activeTab = tabBills

		a, _ = update(t, a, refreshMsg{})
		a, _ = update(t, a, tea.KeyMsg{Type: tea.KeyRight})
		a, _ = update(t, a, periodMsg{seq: a.periodSeq, dash: monthDashboard(april)})
		a, _ = update(t, a, dashboardMsg{seq: a.seq, dash: monthDashboard(march)})

		if a.dash.Period != april || a.dash.Income.Data.Month != 4 {
			t.Fatalf("selected=%+v shown period=%+v income month=%d",
				l.period, a.dash.Period, a.dash.Income.Data.Month)
		}
		if !a.dash.Overview.Ready() {
			t.Fatal("full load result not applied")
		}
	})

	t.Run("month still loading", func(t *testing.T) {
		l := &stubLoader{period: march}
		a, _ := newTestApp(t, l)
		a.dash = monthDashboard(march)
		a.activeTab = tabBills

		a, _ = update(t, a, refreshMsg{})
		a, _ = update(t, a, tea.KeyMsg{Type: tea.KeyRight})
		a, _ = update(t, a, dashboardMsg{seq: a.seq, dash: monthDashboard(march)})
		if a.dash.Period != april || a.dash.Income.State != pipeline.StateLoading {
			t.Fatalf("period=%+v income state=%v, want april loading", a.dash.Period, a.dash.Income.State)
		}

		a, _ = update(t, a, periodMsg{seq: a.periodSeq, dash: monthDashboard(april)})
		if a.dash.Income.Data.Month != 4 {
			t.Fatalf("income month = %d, want 4", a.dash.Income.Data.Month)
		}
	})
}
