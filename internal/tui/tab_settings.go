package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/theirongolddev/finburn/internal/config"
	"github.com/theirongolddev/finburn/internal/tui/components"
	"github.com/theirongolddev/finburn/internal/tui/theme"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	settingsFieldAPIURL = iota
	settingsFieldAccount
	settingsFieldTheme
	settingsFieldAutoRefresh
	settingsFieldRefreshInterval
	settingsFieldAnimate
	settingsFieldCount // sentinel
)

// settingsState tracks the settings tab state.
type settingsState struct {
	cursor  int
	editing bool
	input   textinput.Model
	saved   bool  // flash "saved" message briefly
	saveErr error // non-nil if last save failed
}

func newSettingsInput() textinput.Model {
	ti := textinput.New()
	ti.CharLimit = 256
	ti.Width = 50
	return ti
}

func (a App) settingsStartEdit() (tea.Model, tea.Cmd) {
	a.settings.editing = true
	a.settings.saved = false

	ti := newSettingsInput()
	switch a.settings.cursor {
	case settingsFieldAPIURL:
		ti.Placeholder = "http://localhost:8080"
		ti.SetValue(a.cfg.API.BaseURL)
	case settingsFieldAccount:
		ti.Placeholder = "account id"
		ti.SetValue(a.cfg.API.AccountID)
	case settingsFieldTheme:
		ti.Placeholder = strings.Join(theme.Names(), ", ")
		ti.SetValue(theme.Active.Name)
	case settingsFieldAutoRefresh:
		ti.Placeholder = "true or false"
		ti.SetValue(strconv.FormatBool(a.autoRefresh))
	case settingsFieldRefreshInterval:
		ti.Placeholder = "60 (seconds, minimum 10)"
		ti.SetValue(strconv.Itoa(int(a.refreshInterval.Seconds())))
	case settingsFieldAnimate:
		ti.Placeholder = "true or false"
		ti.SetValue(strconv.FormatBool(a.cfg.TUI.Animate))
	}

	ti.Focus()
	a.settings.input = ti
	return a, ti.Cursor.BlinkCmd()
}

func (a App) updateSettingsInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		a.settings.editing = false
		cmd := a.settingsSave()
		a.settings.saved = a.settings.saveErr == nil
		return a, cmd
	case "esc":
		a.settings.editing = false
		return a, nil
	}

	var cmd tea.Cmd
	a.settings.input, cmd = a.settings.input.Update(msg)
	return a, cmd
}

// settingsSave applies the edited field through applyEdit, so API changes
// rebuild the loader and only the file config is written.
func (a *App) settingsSave() tea.Cmd {
	val := strings.TrimSpace(a.settings.input.Value())

	var edit func(*config.Config)
	switch a.settings.cursor {
	case settingsFieldAPIURL:
		if err := validateAPIURL(val); err != nil {
			a.settings.saveErr = err
			return nil
		}
		u := strings.TrimRight(val, "/")
		edit = func(c *config.Config) { c.API.BaseURL = u }
	case settingsFieldAccount:
		edit = func(c *config.Config) { c.API.AccountID = val }
	case settingsFieldTheme:
		if theme.ByName(val).Name != val {
			a.settings.saveErr = fmt.Errorf("unknown theme %q", val)
			return nil
		}
		edit = func(c *config.Config) { c.Appearance.Theme = val }
	case settingsFieldAutoRefresh:
		b, err := strconv.ParseBool(val)
		if err != nil {
			a.settings.saveErr = fmt.Errorf("auto refresh: %w", err)
			return nil
		}
		a.autoRefresh = b
		edit = func(c *config.Config) { c.TUI.AutoRefresh = b }
	case settingsFieldRefreshInterval:
		sec, err := strconv.Atoi(val)
		if err != nil || sec < 10 {
			a.settings.saveErr = fmt.Errorf("refresh interval must be at least 10 seconds")
			return nil
		}
		a.refreshInterval = time.Duration(sec) * time.Second
		edit = func(c *config.Config) { c.TUI.RefreshIntervalSec = sec }
	case settingsFieldAnimate:
		b, err := strconv.ParseBool(val)
		if err != nil {
			a.settings.saveErr = fmt.Errorf("animate: %w", err)
			return nil
		}
		edit = func(c *config.Config) { c.TUI.Animate = b }
	default:
		return nil
	}
	return a.applyEdit(edit)
}

func (a App) renderSettingsTab(cw int) string {
	t := theme.Active

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selectedStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceHover).Bold(true)
	selectedLabelStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.SurfaceHover).Bold(true)
	accentStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface)
	okStyle := lipgloss.NewStyle().Foreground(t.Income).Background(t.Surface)
	markerStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceHover)

	account := a.cfg.API.AccountID
	if account == "" {
		account = "(not set)"
	}

	fields := []struct {
		label string
		value string
	}{
		{"API URL", a.cfg.API.BaseURL},
		{"Account ID", account},
		{"Theme", t.Name},
		{"Auto Refresh", strconv.FormatBool(a.autoRefresh)},
		{"Refresh Interval", fmt.Sprintf("%ds", int(a.refreshInterval.Seconds()))},
		{"Animate", strconv.FormatBool(a.cfg.TUI.Animate)},
	}

	innerW := components.CardInnerWidth(cw)
	var form strings.Builder
	for i, f := range fields {
		if a.settings.editing && i == a.settings.cursor {
			form.WriteString(markerStyle.Render("▸ "))
			form.WriteString(accentStyle.Render(fmt.Sprintf("%-18s ", f.label)))
			form.WriteString(a.settings.input.View())
			form.WriteString("\n")
			continue
		}

		if i == a.settings.cursor {
			marker := markerStyle.Render("▸ ")
			label := selectedLabelStyle.Render(fmt.Sprintf("%-18s ", f.label+":"))
			value := selectedStyle.Render(f.value)
			form.WriteString(marker + label + value)
			used := lipgloss.Width(marker) + lipgloss.Width(label) + lipgloss.Width(value)
			if pad := innerW - used; pad > 0 {
				form.WriteString(lipgloss.NewStyle().Background(t.SurfaceHover).Render(strings.Repeat(" ", pad)))
			}
		} else {
			form.WriteString(lipgloss.NewStyle().Background(t.Surface).Render("  "))
			form.WriteString(labelStyle.Render(fmt.Sprintf("%-18s ", f.label+":")))
			form.WriteString(valueStyle.Render(f.value))
		}
		form.WriteString("\n")
	}

	if a.settings.saveErr != nil {
		warn := lipgloss.NewStyle().Foreground(t.Warning).Background(t.Surface)
		form.WriteString("\n")
		form.WriteString(warn.Render(fmt.Sprintf("Save failed: %s", a.settings.saveErr)))
	} else if a.settings.saved {
		form.WriteString("\n")
		form.WriteString(okStyle.Render("Saved!"))
	}
	form.WriteString("\n")
	form.WriteString(labelStyle.Render("[j/k] navigate  [Enter] edit  [Esc] cancel"))

	mode := "online"
	if a.loader == nil || a.loader.Offline() {
		mode = "offline (cached data only)"
	}
	var info strings.Builder
	info.WriteString(labelStyle.Render("Config file:  ") + valueStyle.Render(config.Path()) + "\n")
	info.WriteString(labelStyle.Render("Mode:         ") + valueStyle.Render(mode) + "\n")
	info.WriteString(labelStyle.Render("Load time:    ") + valueStyle.Render(fmt.Sprintf("%.1fs", a.loadTime.Seconds())))

	var b strings.Builder
	b.WriteString(components.ContentCard("Settings", form.String(), cw))
	b.WriteString("\n")
	b.WriteString(components.ContentCard("General", info.String(), cw))
	return b.String()
}
