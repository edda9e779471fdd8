package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/TobiSchelling/potdrotate/internal/dates"
)

func TestParseDefaultConfig(t *testing.T) {
	cfg, err := parse(DefaultConfigYAML)
	if err != nil {
		t.Fatalf("failed to parse default config: %v", err)
	}

	if cfg.Lang != "nl" {
		t.Errorf("expected lang 'nl', got %q", cfg.Lang)
	}
	if len(cfg.Wikis) != 2 {
		t.Errorf("expected 2 wikis, got %d", len(cfg.Wikis))
	}
	if cfg.Wikis["pap"].ImageDimensions != "460x460px" {
		t.Errorf("expected pap dimensions '460x460px', got %q", cfg.Wikis["pap"].ImageDimensions)
	}
	if cfg.Logging.Format != "pretty" {
		t.Errorf("expected format 'pretty', got %q", cfg.Logging.Format)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestDefault(t *testing.T) {
	a, b := Default(), Default()
	if a == b {
		t.Fatal("expected a fresh config per call")
	}
	a.Lang = "pap"
	if b.Lang != "nl" {
		t.Errorf("configs share state: %q", b.Lang)
	}
}

func TestParseMinimalConfig(t *testing.T) {
	data := []byte(`
lang: pap
logging:
  level: DEBUG
`)
	cfg, err := parse(data)
	if err != nil {
		t.Fatalf("failed to parse minimal config: %v", err)
	}

	if cfg.Lang != "pap" {
		t.Errorf("expected lang 'pap', got %q", cfg.Lang)
	}
	if cfg.Logging.Level != "DEBUG" {
		t.Errorf("expected level 'DEBUG', got %q", cfg.Logging.Level)
	}
	// Defaults should still be set for unspecified fields
	if cfg.Logging.Format != "pretty" {
		t.Errorf("expected default format, got %q", cfg.Logging.Format)
	}
	if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid without wikis section, got %v", err)
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, DefaultConfigYAML, 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	w, err := cfg.Wiki()
	if err != nil {
		t.Fatalf("Wiki: %v", err)
	}
	if w.MainPage != "Hoofdpagina" {
		t.Errorf("expected main page 'Hoofdpagina', got %q", w.MainPage)
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg, err := parse(DefaultConfigYAML)
		if err != nil {
			t.Fatalf("parse: %v", err)
		}
		return cfg
	}

	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"empty lang", func(c *Config) { c.Lang = "" }},
		{"unknown wiki", func(c *Config) { c.Lang = "fy" }},
		{"missing main page", func(c *Config) {
			w := c.Wikis["nl"]
			w.MainPage = " "
			c.Wikis["nl"] = w
		}},
		{"summary without placeholder", func(c *Config) {
			w := c.Wikis["nl"]
			w.EditSummary = "Robot: bijwerken"
			c.Wikis["nl"] = w
		}},
		{"short month list", func(c *Config) {
			c.Locales = map[string]Locale{"de": {JoinWord: "und", Months: []string{"jan"}}}
		}},
		{"missing join word", func(c *Config) {
			c.Locales = map[string]Locale{"de": {Months: make([]string, 12)}}
		}},
		{"wiki without locale", func(c *Config) {
			c.Wikis["fy"] = c.Wikis["nl"]
			c.Lang = "fy"
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.modify(cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
				t.Errorf("expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestLocaleSet(t *testing.T) {
	cfg := &Config{
		Lang: "de",
		Locales: map[string]Locale{
			"de": {
				JoinWord: "und",
				Months:   []string{"jan", "feb", "mär", "apr", "mai", "jun", "jul", "aug", "sep", "okt", "nov", "dez"},
			},
		},
	}

	loc, err := cfg.Locale()
	if err != nil {
		t.Fatalf("Locale: %v", err)
	}
	if loc.Month(3) != "mär" || loc.JoinWord != "und" {
		t.Errorf("unexpected profile %+v", loc)
	}
	if _, err := cfg.LocaleSet().Lookup("pap"); err != nil {
		t.Errorf("built-in locales should remain available: %v", err)
	}

	cfg.Lang = "xx"
	if _, err := cfg.Locale(); !errors.Is(err, dates.ErrUnknownLocale) {
		t.Errorf("expected ErrUnknownLocale, got %v", err)
	}
}

func TestGetDataDir(t *testing.T) {
	cfg := &Config{}
	defaultDir := cfg.GetDataDir()
	if defaultDir == "" {
		t.Error("expected non-empty default data dir")
	}

	cfg.Output.DataDir = "/custom/path"
	if cfg.GetDataDir() != "/custom/path" {
		t.Errorf("expected '/custom/path', got %q", cfg.GetDataDir())
	}
}

func TestPageDirs(t *testing.T) {
	cfg := &Config{Lang: "pap", Output: Output{DataDir: "/data"}}
	if got := cfg.GetSourceDir(); got != filepath.Join("/data", "commons") {
		t.Errorf("GetSourceDir() = %q", got)
	}
	if got := cfg.GetTargetDir(); got != filepath.Join("/data", "pap") {
		t.Errorf("GetTargetDir() = %q", got)
	}
	if got := cfg.DBPath(); got != filepath.Join("/data", "potdrotate.db") {
		t.Errorf("DBPath() = %q", got)
	}

	cfg.Source.PagesDir = "/commons"
	cfg.Target.PagesDir = "/wiki"
	if cfg.GetSourceDir() != "/commons" || cfg.GetTargetDir() != "/wiki" {
		t.Errorf("explicit page dirs ignored: %q, %q", cfg.GetSourceDir(), cfg.GetTargetDir())
	}
}
