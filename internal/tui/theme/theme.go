// Package theme defines color themes for the finburn TUI dashboard.
package theme

import "github.com/charmbracelet/lipgloss"

// Theme defines the color roles used throughout the TUI.
type Theme struct {
	Name         string
	Background   lipgloss.Color // app background
	Surface      lipgloss.Color // card and panel background
	SurfaceHover lipgloss.Color // active tab, selected row
	Border       lipgloss.Color
	BorderAccent lipgloss.Color // focused card, loading card
	TextDim      lipgloss.Color
	TextMuted    lipgloss.Color
	TextPrimary  lipgloss.Color
	Accent       lipgloss.Color
	AccentBright lipgloss.Color

	// Money roles.
	Spend   lipgloss.Color // outgoing amounts, high indicators
	Income  lipgloss.Color // incoming amounts, on-track verdicts
	Warning lipgloss.Color // upcoming bills, high-likelihood predictions
	Overdue lipgloss.Color

	// Chart palette, cycled by category index.
	Series []lipgloss.Color
}

// Active is the currently selected theme.
var Active = FlexokiDark

// FlexokiDark is the default theme.
var FlexokiDark = Theme{
	Name:         "flexoki-dark",
	Background:   lipgloss.Color("#100F0F"),
	Surface:      lipgloss.Color("#1C1B1A"),
	SurfaceHover: lipgloss.Color("#282726"),
	Border:       lipgloss.Color("#403E3C"),
	BorderAccent: lipgloss.Color("#3AA99F"),
	TextDim:      lipgloss.Color("#575653"),
	TextMuted:    lipgloss.Color("#878580"),
	TextPrimary:  lipgloss.Color("#FFFCF0"),
	Accent:       lipgloss.Color("#3AA99F"),
	AccentBright: lipgloss.Color("#5BC8BE"),
	Spend:        lipgloss.Color("#D14D41"),
	Income:       lipgloss.Color("#879A39"),
	Warning:      lipgloss.Color("#DA702C"),
	Overdue:      lipgloss.Color("#CE5D97"),
	Series: []lipgloss.Color{
		"#3AA99F", "#4385BE", "#D0A215", "#879A39", "#CE5D97", "#DA702C", "#8B7EC8",
	},
}

// CatppuccinMocha is a pastel theme.
var CatppuccinMocha = Theme{
	Name:         "catppuccin-mocha",
	Background:   lipgloss.Color("#1E1E2E"),
	Surface:      lipgloss.Color("#313244"),
	SurfaceHover: lipgloss.Color("#45475A"),
	Border:       lipgloss.Color("#585B70"),
	BorderAccent: lipgloss.Color("#89B4FA"),
	TextDim:      lipgloss.Color("#6C7086"),
	TextMuted:    lipgloss.Color("#A6ADC8"),
	TextPrimary:  lipgloss.Color("#CDD6F4"),
	Accent:       lipgloss.Color("#89B4FA"),
	AccentBright: lipgloss.Color("#B4D0FB"),
	Spend:        lipgloss.Color("#F38BA8"),
	Income:       lipgloss.Color("#A6E3A1"),
	Warning:      lipgloss.Color("#FAB387"),
	Overdue:      lipgloss.Color("#EBA0AC"),
	Series: []lipgloss.Color{
		"#89B4FA", "#94E2D5", "#F9E2AF", "#A6E3A1", "#F5C2E7", "#FAB387", "#CBA6F7",
	},
}

// TokyoNight is a cool blue/purple theme.
var TokyoNight = Theme{
	Name:         "tokyo-night",
	Background:   lipgloss.Color("#1A1B26"),
	Surface:      lipgloss.Color("#24283B"),
	SurfaceHover: lipgloss.Color("#343A52"),
	Border:       lipgloss.Color("#565F89"),
	BorderAccent: lipgloss.Color("#7AA2F7"),
	TextDim:      lipgloss.Color("#565F89"),
	TextMuted:    lipgloss.Color("#A9B1D6"),
	TextPrimary:  lipgloss.Color("#C0CAF5"),
	Accent:       lipgloss.Color("#7AA2F7"),
	AccentBright: lipgloss.Color("#A9C1FF"),
	Spend:        lipgloss.Color("#F7768E"),
	Income:       lipgloss.Color("#9ECE6A"),
	Warning:      lipgloss.Color("#FF9E64"),
	Overdue:      lipgloss.Color("#BB9AF7"),
	Series: []lipgloss.Color{
		"#7AA2F7", "#7DCFFF", "#E0AF68", "#9ECE6A", "#BB9AF7", "#FF9E64", "#2AC3DE",
	},
}

// Terminal uses ANSI 16 colors only.
var Terminal = Theme{
	Name:         "terminal",
	Background:   lipgloss.Color("0"),
	Surface:      lipgloss.Color("0"),
	SurfaceHover: lipgloss.Color("8"),
	Border:       lipgloss.Color("8"),
	BorderAccent: lipgloss.Color("6"),
	TextDim:      lipgloss.Color("8"),
	TextMuted:    lipgloss.Color("7"),
	TextPrimary:  lipgloss.Color("15"),
	Accent:       lipgloss.Color("6"),
	AccentBright: lipgloss.Color("14"),
	Spend:        lipgloss.Color("1"),
	Income:       lipgloss.Color("2"),
	Warning:      lipgloss.Color("3"),
	Overdue:      lipgloss.Color("5"),
	Series: []lipgloss.Color{
		"6", "4", "3", "2", "5", "1", "14",
	},
}

// All available themes.
var All = []Theme{FlexokiDark, CatppuccinMocha, TokyoNight, Terminal}

// Names lists the theme names in display order.
func Names() []string {
	names := make([]string, len(All))
	for i, t := range All {
		names[i] = t.Name
	}
	return names
}

// ByName returns a theme by its name, defaulting to FlexokiDark.
func ByName(name string) Theme {
	for _, t := range All {
		if t.Name == name {
			return t
		}
	}
	return FlexokiDark
}

// SetActive sets the active theme by name.
func SetActive(name string) {
	Active = ByName(name)
}

// SeriesColor returns the chart color for the i-th series.
func (t Theme) SeriesColor(i int) lipgloss.Color {
	if len(t.Series) == 0 {
		return t.Accent
	}
	if i < 0 {
		i = -i
	}
	return t.Series[i%len(t.Series)]
}
