// Package config loads and saves finburn configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Environment variables that override the config file.
const (
	EnvAPIURL    = "FINBURN_API_URL"
	EnvAccountID = "FINBURN_ACCOUNT_ID"
	EnvTheme     = "FINBURN_THEME"
	EnvLogLevel  = "FINBURN_LOG_LEVEL"
	EnvFile      = "ENV_FILE"
)

// DefaultBillsIncomePath is the bills-vs-income analysis endpoint template.
// {account} is replaced with the account identifier.
const DefaultBillsIncomePath = "/api/analysis/bills-income/{account}"

// Config holds all finburn configuration.
type Config struct {
	API        APIConfig        `toml:"api"`
	General    GeneralConfig    `toml:"general"`
	TUI        TUIConfig        `toml:"tui"`
	Appearance AppearanceConfig `toml:"appearance"`
	Daemon     DaemonConfig     `toml:"daemon"`
}

// APIConfig holds analytics backend settings.
type APIConfig struct {
	BaseURL         string  `toml:"base_url" validate:"required,url"`
	AccountID       string  `toml:"account_id,omitempty"`
	TimeoutSec      int     `toml:"timeout_sec" validate:"min=1,max=300"`
	RatePerSec      float64 `toml:"rate_per_sec" validate:"gte=0"`
	BillsIncomePath string  `toml:"bills_income_path,omitempty" validate:"omitempty,startswith=/"`
}

// GeneralConfig holds general preferences.
type GeneralConfig struct {
	TimeRange   string `toml:"time_range"`
	Offline     bool   `toml:"offline"`
	CacheTTLSec int    `toml:"cache_ttl_sec" validate:"min=0"`
	LogLevel    string `toml:"log_level" validate:"omitempty,oneof=debug info warn error"`
}

// TUIConfig holds dashboard refresh and animation settings.
type TUIConfig struct {
	AutoRefresh        bool `toml:"auto_refresh"`
	RefreshIntervalSec int  `toml:"refresh_interval_sec" validate:"min=0"`
	Animate            bool `toml:"animate"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// DaemonConfig holds background poller settings.
type DaemonConfig struct {
	Addr         string `toml:"addr" validate:"required,hostname_port"`
	IntervalSec  int    `toml:"interval_sec" validate:"min=0"`
	EventsBuffer int    `toml:"events_buffer" validate:"min=0"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			BaseURL:         "http://localhost:8080",
			TimeoutSec:      10,
			RatePerSec:      5,
			BillsIncomePath: DefaultBillsIncomePath,
		},
		General: GeneralConfig{
			TimeRange:   "1 month",
			CacheTTLSec: 60,
			LogLevel:    "warn",
		},
		TUI: TUIConfig{
			RefreshIntervalSec: 60,
			Animate:            true,
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
		Daemon: DaemonConfig{
			Addr:         "127.0.0.1:8788",
			IntervalSec:  60,
			EventsBuffer: 200,
		},
	}
}

// Dir returns the XDG-compliant config directory.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "finburn")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "finburn")
}

// Path returns the full path to the config file.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// Load reads the config file, applies .env and environment overrides,
// and returns defaults for anything unset.
func Load() (Config, error) {
	cfg, err := LoadFile(Path())
	if err != nil {
		return cfg, err
	}
	if err := loadEnv(); err != nil {
		return cfg, err
	}
	ApplyEnv(&cfg)
	return cfg, nil
}

// LoadFile reads a config file without applying environment overrides.
// A missing file yields the defaults.
func LoadFile(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path) //nolint:gosec // path is the user's config location
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// loadEnv loads ENV_FILE when set, otherwise an optional ./.env.
func loadEnv() error {
	if envFile := os.Getenv(EnvFile); envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("load env file %s: %w", envFile, err)
		}
		return nil
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

// ApplyEnv overlays FINBURN_* environment variables onto cfg.
func ApplyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(EnvAPIURL)); v != "" {
		cfg.API.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvAccountID)); v != "" {
		cfg.API.AccountID = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvTheme)); v != "" {
		cfg.Appearance.Theme = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.General.LogLevel = strings.ToLower(v)
	}
}

// Save writes the config to disk.
func Save(cfg Config) error {
	return SaveFile(Path(), cfg)
}

// SaveFile writes the config to the given path.
func SaveFile(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600) //nolint:gosec // user config path
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(Path())
	return err == nil
}

var validate = validator.New()

// Validate checks field ranges and formats.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// HasAccount reports whether an account identifier is configured.
func (c Config) HasAccount() bool {
	return strings.TrimSpace(c.API.AccountID) != ""
}

// Timeout returns the per-request timeout.
func (c APIConfig) Timeout() time.Duration {
	if c.TimeoutSec <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.TimeoutSec) * time.Second
}

// CacheTTL returns the in-memory payload cache lifetime.
func (c GeneralConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSec) * time.Second
}

// RefreshInterval returns the auto-refresh interval, minimum 10s.
func (c TUIConfig) RefreshInterval() time.Duration {
	d := time.Duration(c.RefreshIntervalSec) * time.Second
	if d < 10*time.Second {
		d = 60 * time.Second
	}
	return d
}

// Interval returns the daemon polling interval, minimum 5s.
func (c DaemonConfig) Interval() time.Duration {
	d := time.Duration(c.IntervalSec) * time.Second
	if d < 5*time.Second {
		d = 60 * time.Second
	}
	return d
}
