package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("explicit missing config file must error")
	}

	cfg, err = Load("")
	if err != nil {
		t.Fatalf("Load with defaults: %v", err)
	}

	if cfg.Source.BaseURL != "http://www.bantaypresyo.da.gov.ph" {
		t.Fatalf("base url = %q", cfg.Source.BaseURL)
	}
	if cfg.Source.RegionQueryKey != "rid" {
		t.Fatalf("region query key = %q", cfg.Source.RegionQueryKey)
	}
	if cfg.Source.RequestTimeout != 30*time.Second {
		t.Fatalf("request timeout = %v", cfg.Source.RequestTimeout)
	}
	if cfg.Scrape.Concurrency != 6 {
		t.Fatalf("concurrency = %d", cfg.Scrape.Concurrency)
	}
	if cfg.Analytics.ShortWindow != 7 || cfg.Analytics.LongWindow != 30 {
		t.Fatalf("windows = %d/%d", cfg.Analytics.ShortWindow, cfg.Analytics.LongWindow)
	}
	if cfg.Analytics.MinSamples != 5 || cfg.Analytics.TopMovers != 10 {
		t.Fatalf("analytics = %+v", cfg.Analytics)
	}
	if cfg.Scheduler.Interval != 6*time.Hour {
		t.Fatalf("interval = %v", cfg.Scheduler.Interval)
	}
	if cfg.Output.Dir != "output/data" {
		t.Fatalf("output dir = %q", cfg.Output.Dir)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := `
source:
  base_url: http://example.test
  polite_delay: 250ms
  category_paths:
    fish: /tbl_fish_v2.php
  region_params:
    "5": "05"
scrape:
  concurrency: 2
output:
  dir: /tmp/out
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Source.BaseURL != "http://example.test" {
		t.Fatalf("base url = %q", cfg.Source.BaseURL)
	}
	if cfg.Source.PoliteDelay != 250*time.Millisecond {
		t.Fatalf("polite delay = %v, duration strings must decode", cfg.Source.PoliteDelay)
	}
	if cfg.Source.CategoryPaths["fish"] != "/tbl_fish_v2.php" {
		t.Fatalf("category paths = %v", cfg.Source.CategoryPaths)
	}
	if cfg.Source.RegionParams["5"] != "05" {
		t.Fatalf("region params = %v", cfg.Source.RegionParams)
	}
	if cfg.Scrape.Concurrency != 2 {
		t.Fatalf("concurrency = %d", cfg.Scrape.Concurrency)
	}
	// Unset keys keep their defaults.
	if cfg.Analytics.LongWindow != 30 {
		t.Fatalf("long window = %d", cfg.Analytics.LongWindow)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	base := func() *Config {
		cfg, err := Load("")
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		return cfg
	}

	cfg := base()
	cfg.Analytics.ShortWindow = 30
	cfg.Analytics.LongWindow = 7
	if err := cfg.Validate(); err == nil {
		t.Fatal("short window >= long window must be rejected")
	}

	cfg = base()
	cfg.Source.BaseURL = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("empty base url must be rejected")
	}

	cfg = base()
	cfg.Scrape.Concurrency = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("zero concurrency must be rejected")
	}

	cfg = base()
	cfg.Alerting.Telegram.Enabled = true
	if err := cfg.Validate(); err == nil {
		t.Fatal("telegram without credentials must be rejected")
	}
}

func TestResolveMaxPoints(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := cfg.ResolveMaxPoints(0); got != 100000 {
		t.Fatalf("default max points = %d", got)
	}
	if got := cfg.ResolveMaxPoints(250); got != 250 {
		t.Fatalf("override = %d", got)
	}
}
