package tui

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/theirongolddev/finburn/internal/config"
	"github.com/theirongolddev/finburn/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
)

// setupValues holds the first-run form fields.
type setupValues struct {
	apiURL    string
	accountID string
	theme     string
}

func setupValuesFrom(cfg config.Config) setupValues {
	return setupValues{
		apiURL:    cfg.API.BaseURL,
		accountID: cfg.API.AccountID,
		theme:     theme.ByName(cfg.Appearance.Theme).Name,
	}
}

// apply copies the form fields onto cfg.
func (v setupValues) apply(cfg config.Config) config.Config {
	cfg.API.BaseURL = strings.TrimRight(strings.TrimSpace(v.apiURL), "/")
	cfg.API.AccountID = strings.TrimSpace(v.accountID)
	cfg.Appearance.Theme = v.theme
	return cfg
}

func validateAPIURL(s string) error {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return errors.New("enter an http(s) URL, e.g. http://localhost:8080")
	}
	return nil
}

func validateAccountID(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("an account id is required to load data")
	}
	return nil
}

func newSetupForm(vals *setupValues) *huh.Form {
	themeOpts := make([]huh.Option[string], 0, len(theme.All))
	for _, t := range theme.All {
		themeOpts = append(themeOpts, huh.NewOption(t.Name, t.Name))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to finburn").
				Description("Point finburn at your analytics backend.\nSettings are saved to "+config.Path()),
			huh.NewInput().
				Title("API URL").
				Description("Base URL of the analytics backend").
				Placeholder("http://localhost:8080").
				Validate(validateAPIURL).
				Value(&vals.apiURL),
			huh.NewInput().
				Title("Account ID").
				Description("The account whose spending to show").
				Validate(validateAccountID).
				Value(&vals.accountID),
			huh.NewSelect[string]().
				Title("Color theme").
				Options(themeOpts...).
				Value(&vals.theme),
		),
	).WithTheme(huh.ThemeCharm()).WithShowHelp(true)
}

func (a App) updateSetupForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.setupForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.setupForm = f
	}

	switch a.setupForm.State {
	case huh.StateCompleted:
		a.needSetup = false
		a.setupForm = nil
		return a, a.applyConfig(a.setupVals.apply(a.cfg), a.setupVals.apply(a.fileCfg))
	case huh.StateAborted:
		a.needSetup = false
		a.setupForm = nil
		return a, a.startLoad()
	}
	return a, cmd
}

// applyEdit applies one settings change to both the effective and the
// file config and saves the file config. API changes rebuild the loader.
func (a *App) applyEdit(edit func(*config.Config)) tea.Cmd {
	cfg, file := a.cfg, a.fileCfg
	edit(&cfg)
	edit(&file)
	if cfg.API != a.cfg.API {
		return a.applyConfig(cfg, file)
	}
	a.cfg, a.fileCfg = cfg, file
	theme.SetActive(cfg.Appearance.Theme)
	a.settings.saveErr = a.save(file)
	return nil
}

// applyConfig saves file, swaps the loader when API settings changed and
// reloads with cfg.
func (a *App) applyConfig(cfg, file config.Config) tea.Cmd {
	apiChanged := cfg.API != a.cfg.API
	a.cfg, a.fileCfg = cfg, file
	theme.SetActive(cfg.Appearance.Theme)
	a.settings.saveErr = a.save(file)

	if apiChanged && a.rebuild != nil {
		l, err := a.rebuild(cfg)
		if err != nil {
			a.settings.saveErr = fmt.Errorf("rebuilding client: %w", err)
		} else {
			a.loader = l
			a.dash = nil
		}
	}
	return a.startLoad()
}

// RunSetup runs the first-run form standalone and returns the updated
// config. It does not save.
func RunSetup(cfg config.Config) (config.Config, error) {
	vals := setupValuesFrom(cfg)
	if err := newSetupForm(&vals).Run(); err != nil {
		return cfg, err
	}
	return vals.apply(cfg), nil
}
