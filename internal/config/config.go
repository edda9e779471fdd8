package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/TobiSchelling/potdrotate/internal/dates"
)

//go:embed default.yaml
var DefaultConfigYAML []byte

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

type Config struct {
	Lang    string            `yaml:"lang"`
	Wikis   map[string]Wiki   `yaml:"wikis"`
	Locales map[string]Locale `yaml:"locales"`
	Source  Pages             `yaml:"source"`
	Target  Pages             `yaml:"target"`
	Output  Output            `yaml:"output"`
	Logging Logging           `yaml:"logging"`
}

// Wiki holds the destination pages and edit settings of one language edition.
type Wiki struct {
	FilePage            string `yaml:"file_page"`
	DescriptionPage     string `yaml:"description_page"`
	DescriptionTemplate string `yaml:"description_template"`
	EditSummary         string `yaml:"edit_summary"`
	ImageDimensions     string `yaml:"image_dimensions"`
	MainPage            string `yaml:"main_page"`
}

// Locale adds or overrides a date rendering profile.
type Locale struct {
	JoinWord string   `yaml:"join_word"`
	Months   []string `yaml:"months"`
}

type Pages struct {
	PagesDir string `yaml:"pages_dir"`
}

type Output struct {
	DataDir string `yaml:"data_dir"`
}

type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ConfigDir returns the XDG config directory for potdrotate.
func ConfigDir() string {
	return filepath.Join(homeDir(), ".config", "potdrotate")
}

// DataDir returns the XDG data directory for potdrotate.
func DataDir() string {
	return filepath.Join(homeDir(), ".local", "share", "potdrotate")
}

// ResolveConfigPath finds the config file following priority:
// explicit path > ~/.config/potdrotate/config.yaml > ./config.yaml
func ResolveConfigPath(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	xdgConfig := filepath.Join(ConfigDir(), "config.yaml")
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig, nil
	}

	cwdConfig := "config.yaml"
	if _, err := os.Stat(cwdConfig); err == nil {
		return cwdConfig, nil
	}

	return "", fmt.Errorf(
		"no config file found; searched:\n  %s\n  ./config.yaml\n\nRun 'potdrotate init' to create a default config",
		xdgConfig,
	)
}

// Load reads and parses a config YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return parse(data)
}

// Default returns the embedded default configuration.
func Default() *Config {
	cfg, err := parse(DefaultConfigYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded default config: %v", err))
	}
	return cfg
}

// parse parses YAML bytes into a Config, applying defaults.
func parse(data []byte) (*Config, error) {
	cfg := &Config{
		Lang:    "nl",
		Logging: Logging{Level: "INFO", Format: "pretty"},
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// Validate checks that the selected wiki is fully configured and that
// every configured locale is usable.
func (c *Config) Validate() error {
	if c.Lang == "" {
		return fmt.Errorf("%w: lang is empty", ErrInvalid)
	}
	w, ok := c.Wikis[c.Lang]
	if !ok {
		return fmt.Errorf("%w: no wikis.%s section", ErrInvalid, c.Lang)
	}

	fields := []struct {
		name, value string
	}{
		{"file_page", w.FilePage},
		{"description_page", w.DescriptionPage},
		{"description_template", w.DescriptionTemplate},
		{"edit_summary", w.EditSummary},
		{"image_dimensions", w.ImageDimensions},
		{"main_page", w.MainPage},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return fmt.Errorf("%w: wikis.%s.%s is empty", ErrInvalid, c.Lang, f.name)
		}
	}
	if strings.Count(w.EditSummary, "%s") != 1 {
		return fmt.Errorf("%w: wikis.%s.edit_summary needs exactly one %%s", ErrInvalid, c.Lang)
	}

	for lang, l := range c.Locales {
		if len(l.Months) != 12 {
			return fmt.Errorf("%w: locales.%s has %d months, want 12", ErrInvalid, lang, len(l.Months))
		}
		if slices.Contains(l.Months, "") {
			return fmt.Errorf("%w: locales.%s has an empty month", ErrInvalid, lang)
		}
		if l.JoinWord == "" {
			return fmt.Errorf("%w: locales.%s.join_word is empty", ErrInvalid, lang)
		}
	}

	if _, err := c.Locale(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

// Wiki returns the settings of the selected language edition.
func (c *Config) Wiki() (Wiki, error) {
	w, ok := c.Wikis[c.Lang]
	if !ok {
		return Wiki{}, fmt.Errorf("%w: no wikis.%s section", ErrInvalid, c.Lang)
	}
	return w, nil
}

// LocaleSet returns the built-in date locales extended by the configured ones.
func (c *Config) LocaleSet() dates.LocaleSet {
	set := dates.Builtin()
	for lang, l := range c.Locales {
		p := dates.LocaleProfile{Lang: lang, JoinWord: l.JoinWord}
		copy(p.Months[:], l.Months)
		set[lang] = p
	}
	return set
}

// Locale returns the date locale of the selected language.
func (c *Config) Locale() (dates.LocaleProfile, error) {
	return c.LocaleSet().Lookup(c.Lang)
}

// GetDataDir returns the effective data directory from config or XDG default.
func (c *Config) GetDataDir() string {
	if c.Output.DataDir != "" {
		return c.Output.DataDir
	}
	return DataDir()
}

// GetSourceDir returns the directory holding the per-day source pages.
func (c *Config) GetSourceDir() string {
	if c.Source.PagesDir != "" {
		return c.Source.PagesDir
	}
	return filepath.Join(c.GetDataDir(), "commons")
}

// GetTargetDir returns the directory holding the destination wiki's pages.
func (c *Config) GetTargetDir() string {
	if c.Target.PagesDir != "" {
		return c.Target.PagesDir
	}
	return filepath.Join(c.GetDataDir(), c.Lang)
}

// DBPath returns the run history database path.
func (c *Config) DBPath() string {
	return filepath.Join(c.GetDataDir(), "potdrotate.db")
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
