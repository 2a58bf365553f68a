package components

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/finburn/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// StatusInfo is what the bottom bar reports about the last load.
type StatusInfo struct {
	Account     string
	LoadTime    string // e.g. "0.4s"
	Refreshing  bool
	AutoRefresh bool
	Stale       bool
	Offline     bool
	Failed      int // widgets in the error state
}

// RenderStatusBar renders the bottom status bar.
func RenderStatusBar(width int, info StatusInfo) string {
	t := theme.Active

	base := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.SurfaceHover)
	accent := lipgloss.NewStyle().Foreground(t.Accent).Background(t.SurfaceHover).Bold(true)
	warn := lipgloss.NewStyle().Foreground(t.Warning).Background(t.SurfaceHover)
	bad := lipgloss.NewStyle().Foreground(t.Spend).Background(t.SurfaceHover)

	left := base.Render(" [?]help  [r]efresh  [q]uit")

	var parts []string
	if info.Account != "" {
		parts = append(parts, accent.Render(info.Account))
	}
	switch {
	case info.Refreshing:
		parts = append(parts, accent.Render("↻ refreshing"))
	case info.AutoRefresh:
		parts = append(parts, base.Render("auto ↻"))
	}
	if info.Offline {
		parts = append(parts, warn.Render("offline"))
	} else if info.Stale {
		parts = append(parts, warn.Render("cached"))
	}
	if info.Failed > 0 {
		parts = append(parts, bad.Render(fmt.Sprintf("%d failed", info.Failed)))
	}
	if info.LoadTime != "" {
		parts = append(parts, base.Render("loaded in "+info.LoadTime))
	}
	right := strings.Join(parts, base.Render(" │ ")) + base.Render(" ")

	padding := max(width-lipgloss.Width(left)-lipgloss.Width(right), 0)
	return left + base.Render(strings.Repeat(" ", padding)) + right
}
