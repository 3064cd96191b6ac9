package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, _, exists, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Fatal("reported an absent file as existing")
	}
	if cfg.Service.BaseURL != defaultServiceBaseURL {
		t.Fatalf("base_url = %q", cfg.Service.BaseURL)
	}
	if cfg.Tracker.PollAttempts != defaultPollAttempts {
		t.Fatalf("poll_attempts = %d", cfg.Tracker.PollAttempts)
	}
	if !cfg.History.Enabled {
		t.Fatal("history should default to enabled")
	}
}

func TestLoadParsesAndNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[service]
base_url = "http://stego.local:8000/"
request_timeout = 45

[tracker]
poll_interval_ms = 250
poll_attempts = 40

[logging]
format = "JSON"
level = "Debug"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("resolved = %q exists = %t", resolved, exists)
	}
	if cfg.Service.BaseURL != "http://stego.local:8000" {
		t.Fatalf("trailing slash not trimmed: %q", cfg.Service.BaseURL)
	}
	if cfg.Service.RequestTimeout != 45 {
		t.Fatalf("request_timeout = %d", cfg.Service.RequestTimeout)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("logging not lowercased: %+v", cfg.Logging)
	}
	if cfg.Tracker.PollInterval() != 250*time.Millisecond {
		t.Fatalf("PollInterval = %v", cfg.Tracker.PollInterval())
	}
}

func TestLoadEnvironmentFallbackForBaseURL(t *testing.T) {
	t.Setenv("VEIL_SERVICE_URL", "http://env.local:9000/")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("[service]\nbase_url = \"\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, _, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Service.BaseURL != "http://env.local:9000" {
		t.Fatalf("base_url = %q, want env fallback", cfg.Service.BaseURL)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty base url", func(c *Config) { c.Service.BaseURL = "" }},
		{"bad scheme", func(c *Config) { c.Service.BaseURL = "ftp://host" }},
		{"not a url", func(c *Config) { c.Service.BaseURL = "://" }},
		{"zero poll attempts", func(c *Config) { c.Tracker.PollAttempts = 0 }},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }},
		{"bad log level", func(c *Config) { c.Logging.Level = "trace" }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestEnsureDirectories(t *testing.T) {
	base := t.TempDir()
	cfg := Default()
	cfg.Paths.DownloadDir = filepath.Join(base, "downloads")
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	for _, dir := range []string{cfg.Paths.DownloadDir, cfg.Paths.DataDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Fatalf("directory %s not created: %v", dir, err)
		}
	}
}

func TestCreateSampleIsLoadable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "base_url") {
		t.Fatal("sample config missing base_url")
	}

	if _, _, _, err := Load(path); err != nil {
		t.Fatalf("sample config does not load: %v", err)
	}
}

func TestDurationHelpers(t *testing.T) {
	tracker := Tracker{
		PollIntervalMS:    1000,
		CompletionGraceMS: 500,
		SimulatorTickMS:   250,
	}
	if tracker.PollInterval() != time.Second {
		t.Fatalf("PollInterval = %v", tracker.PollInterval())
	}
	if tracker.CompletionGrace() != 500*time.Millisecond {
		t.Fatalf("CompletionGrace = %v", tracker.CompletionGrace())
	}
	if tracker.SimulatorTick() != 250*time.Millisecond {
		t.Fatalf("SimulatorTick = %v", tracker.SimulatorTick())
	}

	service := Service{RequestTimeout: 30}
	if service.Timeout() != 30*time.Second {
		t.Fatalf("Timeout = %v", service.Timeout())
	}
}

func TestExpandPathTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}
	got, err := ExpandPath("~/veil-test")
	if err != nil {
		t.Fatalf("ExpandPath: %v", err)
	}
	if got != filepath.Join(home, "veil-test") {
		t.Fatalf("ExpandPath = %q", got)
	}
}
