// Package tui provides the interactive Bubble Tea dashboard for finburn.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/theirongolddev/finburn/internal/analytics"
	"github.com/theirongolddev/finburn/internal/api"
	"github.com/theirongolddev/finburn/internal/config"
	"github.com/theirongolddev/finburn/internal/model"
	"github.com/theirongolddev/finburn/internal/pipeline"
	"github.com/theirongolddev/finburn/internal/tui/components"
	"github.com/theirongolddev/finburn/internal/tui/theme"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// Loader is the data service behind the dashboard.
type Loader interface {
	Load(ctx context.Context) *pipeline.Dashboard
	LoadResource(ctx context.Context, d *pipeline.Dashboard, r api.Resource)
	Invalidate()
	Period() pipeline.Period
	SetPeriod(p pipeline.Period)
	Account() string
	Offline() bool
}

// Options configures the dashboard.
type Options struct {
	Loader Loader
	// Config is the effective config, with env and flag overrides.
	Config config.Config
	// FileConfig is the config file alone. Edits are saved from it so
	// overrides never reach disk. Defaults to Config.
	FileConfig *config.Config
	// NeedSetup shows the first-run form before loading.
	NeedSetup bool
	// Save persists config changes; defaults to config.Save.
	Save func(config.Config) error
	// Rebuild returns a loader for changed API settings. When nil the
	// current loader is kept.
	Rebuild func(config.Config) (Loader, error)
	Now     func() time.Time
}

// dashboardMsg carries a finished full load.
type dashboardMsg struct {
	seq      int
	dash     *pipeline.Dashboard
	loadTime time.Duration
}

// periodMsg carries the month-scoped widgets after bill navigation.
type periodMsg struct {
	seq  int
	dash *pipeline.Dashboard
}

type tickMsg struct{}

type counterMsg struct{}

// App is the root Bubble Tea model.
type App struct {
	loader  Loader
	cfg     config.Config
	fileCfg config.Config
	save    func(config.Config) error
	rebuild func(config.Config) (Loader, error)
	now     func() time.Time

	// Data
	dash     *pipeline.Dashboard
	loadTime time.Duration

	// In-flight loads; results with an older seq are dropped.
	seq           int
	cancel        context.CancelFunc
	loading       bool
	periodSeq     int
	periodCancel  context.CancelFunc
	periodLoading bool

	// Auto-refresh state
	autoRefresh     bool
	refreshInterval time.Duration
	lastRefresh     time.Time

	// Headline count-up
	totalCounter   components.Counter
	averageCounter components.Counter
	animating      bool

	// UI state
	width     int
	height    int
	activeTab int
	scroll    int
	showHelp  bool
	spinner   spinner.Model
	settings  settingsState

	// First-run setup (huh form)
	setupForm *huh.Form
	setupVals *setupValues
	needSetup bool
}

const (
	minTerminalWidth = 80
	compactWidth     = 120
	maxContentWidth  = 180
	minContentHeight = 5

	tabOverview    = 0
	tabCategories  = 1
	tabInsights    = 2
	tabBills       = 3
	tabPredictions = 4
	tabPatterns    = 5
	tabSettings    = 6
)

// periodResources are reloaded when the bills month changes.
var periodResources = []api.Resource{
	api.ResourceBills,
	api.ResourceBillsIncome,
	api.ResourceMonthlyIncome,
	api.ResourceIncome,
}

// NewApp creates a new TUI app model.
func NewApp(opts Options) App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	save := opts.Save
	if save == nil {
		save = config.Save
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	fileCfg := opts.Config
	if opts.FileConfig != nil {
		fileCfg = *opts.FileConfig
	}

	a := App{
		loader:          opts.Loader,
		cfg:             opts.Config,
		fileCfg:         fileCfg,
		save:            save,
		rebuild:         opts.Rebuild,
		now:             now,
		needSetup:       opts.NeedSetup,
		autoRefresh:     opts.Config.TUI.AutoRefresh,
		refreshInterval: opts.Config.TUI.RefreshInterval(),
		totalCounter:    components.NewCounter(),
		averageCounter:  components.NewCounter(),
		spinner:         sp,
	}
	if a.needSetup {
		vals := setupValuesFrom(a.cfg)
		a.setupVals = &vals
		a.setupForm = newSetupForm(a.setupVals)
	}
	return a
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	if a.setupActive() {
		return tea.Batch(tea.EnableMouseCellMotion, a.spinner.Tick, tickCmd(), a.setupForm.Init())
	}
	return tea.Batch(tea.EnableMouseCellMotion, a.spinner.Tick, tickCmd(), a.firstLoadCmd())
}

// firstLoadCmd asks Update to start the initial load so the cancel func
// lands on the live model rather than the copy Init was called on.
func (a App) firstLoadCmd() tea.Cmd {
	return func() tea.Msg { return refreshMsg{} }
}

type refreshMsg struct{}

// startLoad cancels any in-flight load and starts a fresh one.
func (a *App) startLoad() tea.Cmd {
	if a.cancel != nil {
		a.cancel()
	}
	if a.periodCancel != nil {
		a.periodCancel()
		a.periodLoading = false
	}
	if a.loader == nil {
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	a.seq++
	a.loading = true
	return tea.Batch(loadCmd(ctx, a.loader, a.seq, a.now), a.spinner.Tick)
}

func loadCmd(ctx context.Context, l Loader, seq int, now func() time.Time) tea.Cmd {
	return func() tea.Msg {
		start := now()
		d := l.Load(ctx)
		return dashboardMsg{seq: seq, dash: d, loadTime: now().Sub(start)}
	}
}

// restorePeriod puts the selected month back after a full load that began
// before the month changed. Widgets already loaded for want are kept;
// otherwise they reload.
func (a *App) restorePeriod(prev *pipeline.Dashboard, want pipeline.Period) tea.Cmd {
	if prev != nil && prev.Period == want {
		cur := *a.dash
		cur.Period = want
		cur.Bills = prev.Bills
		cur.BillsIncome = prev.BillsIncome
		cur.Income = prev.Income
		cur.IncomeDetail = prev.IncomeDetail
		a.dash = &cur
		return nil
	}
	return a.startPeriodLoad(want)
}

// startPeriodLoad reloads the month-scoped widgets for p, keeping the rest
// of the dashboard on screen.
func (a *App) startPeriodLoad(p pipeline.Period) tea.Cmd {
	if a.periodCancel != nil {
		a.periodCancel()
	}
	a.loader.SetPeriod(p)

	cur := *a.dash
	cur.Period = p
	cur.Bills = pipeline.Widget[pipeline.BillsView]{}
	cur.BillsIncome = pipeline.Widget[pipeline.BillsIncomeView]{}
	cur.Income = pipeline.Widget[model.MonthlyIncome]{}
	cur.IncomeDetail = pipeline.Widget[model.IncomeResponse]{}
	a.dash = &cur

	ctx, cancel := context.WithCancel(context.Background())
	a.periodCancel = cancel
	a.periodSeq++
	a.periodLoading = true

	next := cur
	seq := a.periodSeq
	l := a.loader
	return tea.Batch(func() tea.Msg {
		for _, r := range periodResources {
			l.LoadResource(ctx, &next, r)
		}
		return periodMsg{seq: seq, dash: &next}
	}, a.spinner.Tick)
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

func counterCmd() tea.Cmd {
	return tea.Tick(components.CounterFrame, func(time.Time) tea.Msg {
		return counterMsg{}
	})
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.setupForm != nil {
			a.setupForm = a.setupForm.WithWidth(msg.Width).WithHeight(msg.Height)
		}
		return a, nil

	case tea.MouseMsg:
		if a.showHelp || a.setupActive() {
			return a, nil
		}
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			a.scroll = max(a.scroll-1, 0)
		case tea.MouseButtonWheelDown:
			a.scroll++
		case tea.MouseButtonLeft:
			if msg.Action == tea.MouseActionPress && msg.Y == 0 {
				if tab := a.tabAtX(msg.X); tab >= 0 {
					a.selectTab(tab)
				}
			}
		}
		return a, nil

	case tea.KeyMsg:
		return a.updateKey(msg)

	case refreshMsg:
		return a, a.startLoad()

	case dashboardMsg:
		if msg.seq != a.seq {
			return a, nil
		}
		a.loading = false
		a.cancel = nil
		prev := a.dash
		a.dash = msg.dash
		a.loadTime = msg.loadTime
		a.lastRefresh = a.now()
		cmd := a.retargetCounters()
		if a.loader != nil && a.dash.Period != a.loader.Period() {
			cmd = tea.Batch(cmd, a.restorePeriod(prev, a.loader.Period()))
		}
		return a, cmd

	case periodMsg:
		if msg.seq != a.periodSeq || a.dash == nil {
			return a, nil
		}
		a.periodLoading = false
		a.periodCancel = nil
		cur := *a.dash
		cur.Period = msg.dash.Period
		cur.Bills = msg.dash.Bills
		cur.BillsIncome = msg.dash.BillsIncome
		cur.Income = msg.dash.Income
		cur.IncomeDetail = msg.dash.IncomeDetail
		a.dash = &cur
		return a, nil

	case spinner.TickMsg:
		if a.loading || a.periodLoading || a.dash == nil {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil

	case counterMsg:
		moving := a.totalCounter.Step()
		moving = a.averageCounter.Step() || moving
		if moving {
			return a, counterCmd()
		}
		a.animating = false
		return a, nil

	case tickMsg:
		cmds := []tea.Cmd{tickCmd()}
		if a.autoRefresh && !a.loading && a.dash != nil && !a.setupActive() &&
			a.now().Sub(a.lastRefresh) >= a.refreshInterval {
			a.loader.Invalidate()
			cmds = append(cmds, a.startLoad())
		}
		return a, tea.Batch(cmds...)
	}

	if a.setupActive() {
		return a.updateSetupForm(msg)
	}
	return a, nil
}

func (a App) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		return a.quit()
	}

	if a.setupActive() {
		return a.updateSetupForm(msg)
	}

	if a.activeTab == tabSettings && a.settings.editing {
		return a.updateSettingsInput(msg)
	}

	if key == "?" {
		a.showHelp = !a.showHelp
		return a, nil
	}
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	if a.activeTab == tabSettings {
		switch key {
		case "j", "down":
			if a.settings.cursor < settingsFieldCount-1 {
				a.settings.cursor++
			}
			return a, nil
		case "k", "up":
			if a.settings.cursor > 0 {
				a.settings.cursor--
			}
			return a, nil
		case "enter":
			return a.settingsStartEdit()
		}
	}

	if a.activeTab == tabBills {
		switch key {
		case "left", "h":
			return a, a.navigateMonth(-1)
		case "right", "l":
			return a, a.navigateMonth(1)
		}
	}

	switch key {
	case "q":
		return a.quit()
	case "r":
		if a.loader == nil {
			return a, nil
		}
		a.loader.Invalidate()
		return a, a.startLoad()
	case "R":
		a.autoRefresh = !a.autoRefresh
		on := a.autoRefresh
		return a, a.applyEdit(func(c *config.Config) { c.TUI.AutoRefresh = on })
	case "j", "down":
		a.scroll++
	case "k", "up":
		a.scroll = max(a.scroll-1, 0)
	case "g":
		a.scroll = 0
	case "tab", "right":
		a.selectTab((a.activeTab + 1) % len(components.Tabs))
	case "shift+tab", "left":
		a.selectTab((a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs))
	default:
		if len(key) == 1 {
			if tab := components.TabIdxByKey(rune(key[0])); tab >= 0 {
				a.selectTab(tab)
			}
		}
	}
	return a, nil
}

func (a *App) selectTab(tab int) {
	if tab != a.activeTab {
		a.activeTab = tab
		a.scroll = 0
	}
}

// quit cancels outstanding loads before exiting.
func (a App) quit() (tea.Model, tea.Cmd) {
	if a.cancel != nil {
		a.cancel()
	}
	if a.periodCancel != nil {
		a.periodCancel()
	}
	return a, tea.Quit
}

// navigateMonth moves the bills month by delta, wrapping across years.
func (a *App) navigateMonth(delta int) tea.Cmd {
	if a.dash == nil || a.loader == nil {
		return nil
	}
	p := a.effectivePeriod()
	idx := p.Month - 1
	next := analytics.NavigateMonth(idx, delta)
	switch {
	case delta < 0 && next > idx:
		p.Year--
	case delta > 0 && next < idx:
		p.Year++
	}
	p.Month = next + 1
	return a.startPeriodLoad(p)
}

// effectivePeriod resolves a zero period to the current month.
func (a App) effectivePeriod() pipeline.Period {
	p := a.loader.Period()
	if p.Year == 0 || p.Month < 1 || p.Month > 12 {
		now := a.now()
		p = pipeline.Period{Year: now.Year(), Month: int(now.Month())}
	}
	return p
}

// retargetCounters points the headline counters at the loaded overview.
func (a *App) retargetCounters() tea.Cmd {
	if a.dash == nil || !a.dash.Overview.Ready() {
		return nil
	}
	o := a.dash.Overview.Data
	if !a.cfg.TUI.Animate {
		a.totalCounter.Jump(o.TotalSpent)
		a.averageCounter.Jump(o.MonthlyAverage)
		return nil
	}
	a.totalCounter.SetTarget(o.TotalSpent)
	a.averageCounter.SetTarget(o.MonthlyAverage)
	if a.animating {
		return nil
	}
	a.animating = true
	return counterCmd()
}

func (a App) setupActive() bool {
	return a.needSetup && a.setupForm != nil
}

func (a App) contentWidth() int {
	return min(a.width, maxContentWidth)
}

func (a App) isCompactLayout() bool {
	return a.contentWidth() < compactWidth
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}
	if a.setupActive() {
		return a.setupForm.View()
	}
	if a.showHelp {
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := max(a.height, 5)
	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  finburn needs at least %d columns.\n",
		a.width,
		minTerminalWidth,
	)
	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)

	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	sectionStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n\n")

	sections := []struct {
		name     string
		bindings []struct{ key, desc string }
	}{
		{"Navigation", []struct{ key, desc string }{
			{"o c i b p t x", "Jump to tab"},
			{"Tab ← →", "Next / previous tab"},
			{"← →", "Previous / next month (Bills)"},
			{"j k", "Scroll"},
		}},
		{"Actions", []struct{ key, desc string }{
			{"r", "Refresh data"},
			{"R", "Toggle auto-refresh"},
			{"Enter", "Edit setting"},
			{"?", "Toggle help"},
			{"q", "Quit"},
		}},
	}
	for i, s := range sections {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(sectionStyle.Render(s.name))
		b.WriteString("\n")
		for _, bind := range s.bindings {
			fmt.Fprintf(&b, "  %s  %s\n",
				keyStyle.Render(fmt.Sprintf("%-14s", bind.key)),
				descStyle.Render(bind.desc))
		}
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press any key to close"))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()
	h := a.height

	header := components.RenderTabBar(a.activeTab, w)

	info := components.StatusInfo{
		AutoRefresh: a.autoRefresh,
		Refreshing:  a.loading || a.periodLoading,
	}
	if a.loader != nil {
		info.Account = a.loader.Account()
		info.Offline = a.loader.Offline()
	}
	if a.dash != nil {
		info.Stale = a.dash.AnyStale()
		info.Failed = len(a.dash.Errors())
		info.LoadTime = fmt.Sprintf("%.1fs", a.loadTime.Seconds())
	}
	statusBar := components.RenderStatusBar(w, info)

	contentH := max(h-lipgloss.Height(header)-lipgloss.Height(statusBar), minContentHeight)

	var content string
	switch a.activeTab {
	case tabOverview:
		content = a.renderOverviewTab(cw)
	case tabCategories:
		content = a.renderCategoriesTab(cw)
	case tabInsights:
		content = a.renderInsightsTab(cw)
	case tabBills:
		content = a.renderBillsTab(cw)
	case tabPredictions:
		content = a.renderPredictionsTab(cw)
	case tabPatterns:
		content = a.renderPatternsTab(cw)
	case tabSettings:
		content = a.renderSettingsTab(cw)
	}

	content = scrollLines(content, a.scroll, contentH)
	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

// board returns the loaded dashboard, or an all-loading one before the
// first load completes.
func (a App) board() *pipeline.Dashboard {
	if a.dash != nil {
		return a.dash
	}
	return pipeline.NewDashboard("", pipeline.Period{})
}

// widgetCard renders w through the three-state card.
func widgetCard[T any](a App, title string, w pipeline.Widget[T], width int, body func(T) string) string {
	switch w.State {
	case pipeline.StateError:
		return components.WidgetCard(title, components.WidgetError, "", w.Message(), "", width)
	case pipeline.StateReady:
		content := body(w.Data)
		if w.Stale {
			dim := lipgloss.NewStyle().Foreground(theme.Active.TextDim).Background(theme.Active.Surface)
			content += "\n" + dim.Render("cached "+w.FetchedAt.Format("Jan 02 15:04"))
		}
		return components.WidgetCard(title, components.WidgetReady, "", "", content, width)
	default:
		return components.WidgetCard(title, components.WidgetLoading, a.spinner.View(), "", "", width)
	}
}

// ─── Helpers ────────────────────────────────────────────────────

// tabAtX returns the tab index at the given X coordinate, or -1 if none.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		tabW := components.TabVisualWidth(tab, i == a.activeTab)
		if x >= pos && x < pos+tabW {
			return i
		}
		pos += tabW
		if i < len(components.Tabs)-1 {
			pos++ // separator
		}
	}
	return -1
}

func scrollLines(s string, offset, height int) string {
	lines := strings.Split(s, "\n")
	maxOffset := max(len(lines)-height, 0)
	offset = min(max(offset, 0), maxOffset)
	return strings.Join(lines[offset:], "\n")
}

func truncStr(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// fillLinesWithBackground pads each line to width w with background color.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")

	var result strings.Builder
	for i, line := range lines {
		result.WriteString(lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg)))
		if i < len(lines)-1 {
			result.WriteString("\n")
		}
	}
	return result.String()
}
