package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all shoplist configuration.
type Config struct {
	Data        DataConfig        `yaml:"data"`
	Translation TranslationConfig `yaml:"translation"`
	Logging     LoggingConfig     `yaml:"logging"`
	UI          UIConfig          `yaml:"ui"`

	// Optional YAML taxonomy replacing the built-in categories.
	CategoriesFile string `yaml:"categories_file"`
}

// DataConfig selects where the list is persisted.
type DataConfig struct {
	Backend string `yaml:"backend"` // json, sqlite
	Path    string `yaml:"path"`    // empty: shoplist.json / shoplist.db in the working directory
}

// TranslationConfig configures the translation gateway.
type TranslationConfig struct {
	Provider    string `yaml:"provider"`    // mymemory, openai, none
	TargetLang  string `yaml:"target_lang"` // ISO 639-1 code
	BaseURL     string `yaml:"base_url"`
	Model       string `yaml:"model"` // openai only
	APIKey      string `yaml:"api_key"`
	Timeout     string `yaml:"timeout"`
	Concurrency int    `yaml:"concurrency"` // parallel requests when retranslating everything
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	File  string `yaml:"file"`  // empty: stderr (CLI) or discarded (TUI)
	JSON  bool   `yaml:"json"`
}

// UIConfig configures rendering.
type UIConfig struct {
	Theme string `yaml:"theme"` // classic, neon, mono
	Color string `yaml:"color"` // auto, always, never
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		Data: DataConfig{
			Backend: "json",
		},
		Translation: TranslationConfig{
			Provider:    "mymemory",
			TargetLang:  "es",
			Timeout:     "10s",
			Concurrency: 4,
		},
		Logging: LoggingConfig{
			Level: "warn",
		},
		UI: UIConfig{
			Theme: "classic",
			Color: "auto",
		},
	}
}

// Dir is ~/.shoplist, where config and credentials live.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home: %w", err)
	}
	return filepath.Join(home, ".shoplist"), nil
}

// DefaultPath is ~/.shoplist/config.yaml.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads path over the defaults and applies environment overrides. A
// missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(b, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}
	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the config as YAML, creating the directory.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	if err := os.WriteFile(path, b, 0o600); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := strings.TrimSpace(os.Getenv("SHOPLIST_DATA")); v != "" {
		c.Data.Path = v
	}
	if v := strings.TrimSpace(os.Getenv("SHOPLIST_BACKEND")); v != "" {
		c.Data.Backend = v
	}
	if v := strings.TrimSpace(os.Getenv("SHOPLIST_LANG")); v != "" {
		c.Translation.TargetLang = v
	}
	if v := strings.TrimSpace(os.Getenv("SHOPLIST_TRANSLATOR")); v != "" {
		c.Translation.Provider = v
	}
	if v := strings.TrimSpace(os.Getenv("SHOPLIST_LOG_LEVEL")); v != "" {
		c.Logging.Level = v
	}
	if v := strings.TrimSpace(os.Getenv("OPENAI_API_KEY")); v != "" {
		c.Translation.APIKey = v
	}
}

// Validate checks enumerations and durations.
func (c *Config) Validate() error {
	switch c.Data.Backend {
	case "json", "sqlite":
	default:
		return fmt.Errorf("data.backend: unknown backend %q (want json or sqlite)", c.Data.Backend)
	}
	switch strings.ToLower(c.Translation.Provider) {
	case "", "none", "off", "mymemory", "openai":
	default:
		return fmt.Errorf("translation.provider: unknown provider %q", c.Translation.Provider)
	}
	if _, err := parseDuration(c.Translation.Timeout); err != nil {
		return fmt.Errorf("translation.timeout: %w", err)
	}
	if c.Translation.Concurrency < 0 {
		return fmt.Errorf("translation.concurrency: must not be negative")
	}
	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unknown level %q", c.Logging.Level)
	}
	switch c.UI.Color {
	case "", "auto", "always", "never":
	default:
		return fmt.Errorf("ui.color: unknown mode %q", c.UI.Color)
	}
	return nil
}

// GetTranslationTimeout returns the per-request translation timeout.
func (c *Config) GetTranslationTimeout() time.Duration {
	d, err := parseDuration(c.Translation.Timeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// GetConcurrency returns the retranslation fan-out, at least 1.
func (c *Config) GetConcurrency() int {
	if c.Translation.Concurrency < 1 {
		return 1
	}
	return c.Translation.Concurrency
}

// DataPath resolves the data file for the configured backend.
func (c *Config) DataPath() string {
	if c.Data.Path != "" {
		return c.Data.Path
	}
	if c.Data.Backend == "sqlite" {
		return "shoplist.db"
	}
	return "shoplist.json"
}

func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	return time.ParseDuration(s)
}
