package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFileMissingReturnsDefaults(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.API.BaseURL != "http://localhost:8080" {
		t.Fatalf("BaseURL = %q, want default", cfg.API.BaseURL)
	}
	if cfg.API.BillsIncomePath != DefaultBillsIncomePath {
		t.Fatalf("BillsIncomePath = %q", cfg.API.BillsIncomePath)
	}
	if cfg.HasAccount() {
		t.Fatal("default config should have no account")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.toml")

	cfg := DefaultConfig()
	cfg.API.AccountID = "1234567891"
	cfg.Appearance.Theme = "tokyo-night"
	cfg.TUI.AutoRefresh = true

	if err := SaveFile(path, cfg); err != nil {
		t.Fatalf("SaveFile: %v", err)
	}
	got, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if got.API.AccountID != "1234567891" || got.Appearance.Theme != "tokyo-night" || !got.TUI.AutoRefresh {
		t.Fatalf("round trip lost fields: %+v", got)
	}
}

func TestLoadFileRejectsBadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[api\nbase_url = "), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestApplyEnvOverridesFile(t *testing.T) {
	t.Setenv(EnvAPIURL, "http://example.test:9000")
	t.Setenv(EnvAccountID, " acct-42 ")
	t.Setenv(EnvLogLevel, "DEBUG")

	cfg := DefaultConfig()
	ApplyEnv(&cfg)

	if cfg.API.BaseURL != "http://example.test:9000" {
		t.Errorf("BaseURL = %q", cfg.API.BaseURL)
	}
	if cfg.API.AccountID != "acct-42" {
		t.Errorf("AccountID = %q", cfg.API.AccountID)
	}
	if cfg.General.LogLevel != "debug" {
		t.Errorf("LogLevel = %q", cfg.General.LogLevel)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"bad url", func(c *Config) { c.API.BaseURL = "not a url" }, true},
		{"zero timeout", func(c *Config) { c.API.TimeoutSec = 0 }, true},
		{"bad log level", func(c *Config) { c.General.LogLevel = "loud" }, true},
		{"relative bills path", func(c *Config) { c.API.BillsIncomePath = "api/x" }, true},
		{"bad daemon addr", func(c *Config) { c.Daemon.Addr = "nohost" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestIntervalsHaveFloors(t *testing.T) {
	if got := (TUIConfig{RefreshIntervalSec: 3}).RefreshInterval(); got != 60*time.Second {
		t.Errorf("RefreshInterval = %s, want 60s", got)
	}
	if got := (TUIConfig{RefreshIntervalSec: 30}).RefreshInterval(); got != 30*time.Second {
		t.Errorf("RefreshInterval = %s, want 30s", got)
	}
	if got := (DaemonConfig{IntervalSec: 1}).Interval(); got != 60*time.Second {
		t.Errorf("Interval = %s, want 60s", got)
	}
	if got := (APIConfig{}).Timeout(); got != 10*time.Second {
		t.Errorf("Timeout = %s, want 10s", got)
	}
}
