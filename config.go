package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// ── YAML Config Types ──────────────────────────────────────────────

// Config is the top-level ~/.deck-forge/config.yaml structure.
type Config struct {
	PartyCount int             `yaml:"party_count"`
	PartyLabel string          `yaml:"party_label"`
	CatalogDir string          `yaml:"catalog_dir"`
	Author     string          `yaml:"author"`
	LogLevel   string          `yaml:"log_level"`
	DeckStore  DeckStoreConfig `yaml:"deck_store"`
	Capture    CaptureConfig   `yaml:"capture"`
	Server     ServerConfig    `yaml:"server"`
}

type DeckStoreConfig struct {
	Driver string `yaml:"driver"` // "sqlite" or "http"
	Path   string `yaml:"path"`
	URL    string `yaml:"url"`
	Token  string `yaml:"token"`
}

type CaptureConfig struct {
	Background string `yaml:"background"`
	Foreground string `yaml:"foreground"`
	Accent     string `yaml:"accent"`
	Scale      int    `yaml:"scale"`
	Dir        string `yaml:"dir"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// envOverrides are applied on top of the file. Empty values leave the
// file value in place.
type envOverrides struct {
	DeckDriver string `env:"DECKFORGE_DECK_DRIVER"`
	DeckURL    string `env:"DECKFORGE_DECK_URL"`
	DeckToken  string `env:"DECKFORGE_DECK_TOKEN"`
	DeckDB     string `env:"DECKFORGE_DECK_DB"`
	LogLevel   string `env:"DECKFORGE_LOG_LEVEL"`
	Author     string `env:"DECKFORGE_AUTHOR"`
	CatalogDir string `env:"DECKFORGE_CATALOG_DIR"`
	PartyCount int    `env:"DECKFORGE_PARTY_COUNT"`
}

// ── Paths ──────────────────────────────────────────────────────────

// homeOverride is set by the --home flag; DECKFORGE_HOME comes next.
var homeOverride string

func forgeDir() string {
	if homeOverride != "" {
		return homeOverride
	}
	if dir := os.Getenv("DECKFORGE_HOME"); dir != "" {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".deck-forge")
}

func configPath() string  { return filepath.Join(forgeDir(), "config.yaml") }
func partiesPath() string { return filepath.Join(forgeDir(), "parties.yaml") }
func logsDir() string     { return filepath.Join(forgeDir(), "logs") }
func capturesDir() string { return filepath.Join(forgeDir(), "captures") }
func decksDBPath() string { return filepath.Join(forgeDir(), "decks.db") }

func ensureForgeDir() error {
	for _, d := range []string{forgeDir(), logsDir()} {
		if err := os.MkdirAll(d, 0755); err != nil {
			return err
		}
	}
	return nil
}

// ── Load / Save ────────────────────────────────────────────────────

func DefaultConfig() *Config {
	return &Config{
		PartyCount: DefaultPartyCount,
		PartyLabel: DefaultPartyLabel,
		Author:     "anonymous",
		LogLevel:   "info",
		DeckStore: DeckStoreConfig{
			Driver: "sqlite",
		},
		Capture: CaptureConfig{
			Background: "#1a1614",
			Foreground: "#e8d5a3",
			Accent:     "#c9a959",
			Scale:      2,
		},
		Server: ServerConfig{
			Addr: ":8088",
		},
	}
}

// LoadConfig reads config.yaml (a missing file means defaults), fills in
// blanks from DefaultConfig and applies environment overrides.
func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(configPath())
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("decode config: %w", err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.fillDefaults()
	return cfg, nil
}

func SaveConfig(cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(forgeDir(), 0755); err != nil {
		return err
	}
	return os.WriteFile(configPath(), data, 0644)
}

func (cfg *Config) applyEnv() error {
	var o envOverrides
	if err := env.Parse(&o); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	if o.DeckDriver != "" {
		cfg.DeckStore.Driver = o.DeckDriver
	}
	if o.DeckURL != "" {
		cfg.DeckStore.URL = o.DeckURL
	}
	if o.DeckToken != "" {
		cfg.DeckStore.Token = o.DeckToken
	}
	if o.DeckDB != "" {
		cfg.DeckStore.Path = o.DeckDB
	}
	if o.LogLevel != "" {
		cfg.LogLevel = o.LogLevel
	}
	if o.Author != "" {
		cfg.Author = o.Author
	}
	if o.CatalogDir != "" {
		cfg.CatalogDir = o.CatalogDir
	}
	if o.PartyCount > 0 {
		cfg.PartyCount = o.PartyCount
	}
	return nil
}

func (cfg *Config) fillDefaults() {
	def := DefaultConfig()
	if cfg.PartyCount <= 0 {
		cfg.PartyCount = def.PartyCount
	}
	if strings.TrimSpace(cfg.PartyLabel) == "" {
		cfg.PartyLabel = def.PartyLabel
	}
	if cfg.DeckStore.Driver == "" {
		cfg.DeckStore.Driver = def.DeckStore.Driver
	}
	if cfg.DeckStore.Path == "" {
		cfg.DeckStore.Path = decksDBPath()
	}
	if cfg.Capture.Scale <= 0 {
		cfg.Capture.Scale = def.Capture.Scale
	}
	if cfg.Capture.Background == "" {
		cfg.Capture.Background = def.Capture.Background
	}
	if cfg.Capture.Foreground == "" {
		cfg.Capture.Foreground = def.Capture.Foreground
	}
	if cfg.Capture.Accent == "" {
		cfg.Capture.Accent = def.Capture.Accent
	}
	if cfg.Capture.Dir == "" {
		cfg.Capture.Dir = capturesDir()
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = def.Server.Addr
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = def.LogLevel
	}
}
