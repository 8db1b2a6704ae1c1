package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/RossFW/atlas-conquest/internal/analytics/faction"
	"github.com/RossFW/atlas-conquest/internal/analytics/period"
	"github.com/RossFW/atlas-conquest/internal/analytics/suppression"
	"github.com/RossFW/atlas-conquest/internal/analytics/view"
)

// Config represents the application configuration.
type Config struct {
	Data        DataConfig        `toml:"data"`
	Periods     PeriodsConfig     `toml:"periods"`
	Factions    FactionsConfig    `toml:"factions"`
	Suppression SuppressionConfig `toml:"suppression"`
	Search      SearchConfig      `toml:"search"`
	Players     PlayersConfig     `toml:"players"`
	Server      ServerConfig      `toml:"server"`
	Storage     StorageConfig     `toml:"storage"`
	Cache       CacheConfig       `toml:"cache"`
	Charts      ChartsConfig      `toml:"charts"`
	App         AppConfig         `toml:"app"`
}

// DataConfig locates the aggregate JSON files.
type DataConfig struct {
	Dir            string `toml:"dir"`             // Directory holding the *.json aggregates
	Watch          bool   `toml:"watch"`           // Reload when files change
	ReloadDebounce string `toml:"reload_debounce"` // Quiet period before reloading (e.g., "250ms")
	PollInterval   string `toml:"poll_interval"`   // Fallback polling interval, "0s" disables
}

// PeriodsConfig lists the selectable time windows.
type PeriodsConfig struct {
	Keys     period.Keys `toml:"keys"`
	Fallback string      `toml:"fallback"` // Used when a dataset lacks the selected period
}

// FactionsConfig selects the faction palette.
type FactionsConfig struct {
	Scheme string `toml:"scheme"` // "six" or "four"
}

// BandConfig holds the favorable/unfavorable cut-offs as rates in [0,1].
type BandConfig struct {
	High float64 `toml:"high"`
	Low  float64 `toml:"low"`
}

// SuppressionConfig controls when statistics are shown.
type SuppressionConfig struct {
	Threshold int        `toml:"threshold"` // Minimum sample size, inclusive
	General   BandConfig `toml:"general"`
	Matchup   BandConfig `toml:"matchup"`
}

// SearchConfig contains search box settings.
type SearchConfig struct {
	Debounce string `toml:"debounce"` // Quiet period before a search re-renders
}

// PlayersConfig contains leaderboard settings.
type PlayersConfig struct {
	MinGames int `toml:"min_games"`
}

// ServerConfig contains HTTP API settings.
type ServerConfig struct {
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
	RateLimit   float64  `toml:"rate_limit"` // Requests per second per client, 0 disables
	RateBurst   int      `toml:"rate_burst"`
}

// StorageConfig contains saved view database settings.
type StorageConfig struct {
	Path        string `toml:"path"` // SQLite file, empty disables saved views
	AutoMigrate bool   `toml:"auto_migrate"`
}

// CacheConfig contains rendered view cache settings.
type CacheConfig struct {
	RedisURL string `toml:"redis_url"` // Empty disables the cache
	TTL      string `toml:"ttl"`       // Cache TTL (e.g., "10m")
}

// ChartsConfig contains HTML chart settings.
type ChartsConfig struct {
	Width     string `toml:"width"`
	Height    string `toml:"height"`
	Theme     string `toml:"theme"`
	OutputDir string `toml:"output_dir"`
}

// AppConfig contains general application settings.
type AppConfig struct {
	DebugMode bool `toml:"debug_mode"` // Enable debug logging
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	policy := suppression.DefaultPolicy()
	return &Config{
		Data: DataConfig{
			Dir:            "data",
			Watch:          true,
			ReloadDebounce: "250ms",
			PollInterval:   "0s",
		},
		Periods: PeriodsConfig{
			Keys:     period.DefaultKeys(),
			Fallback: period.AllTime,
		},
		Factions: FactionsConfig{
			Scheme: string(faction.SchemeSix),
		},
		Suppression: SuppressionConfig{
			Threshold: policy.Threshold,
			General:   BandConfig{High: policy.General.High, Low: policy.General.Low},
			Matchup:   BandConfig{High: policy.Matchup.High, Low: policy.Matchup.Low},
		},
		Search: SearchConfig{
			Debounce: "200ms",
		},
		Players: PlayersConfig{
			MinGames: 10,
		},
		Server: ServerConfig{
			Port:        8080,
			CORSOrigins: []string{"http://localhost:*", "http://127.0.0.1:*"},
			RateLimit:   20,
			RateBurst:   40,
		},
		Storage: StorageConfig{
			Path:        "atlas.db",
			AutoMigrate: true,
		},
		Cache: CacheConfig{
			RedisURL: "",
			TTL:      "10m",
		},
		Charts: ChartsConfig{
			Width:     "900px",
			Height:    "500px",
			Theme:     "light",
			OutputDir: "charts",
		},
	}
}

// DefaultPath returns ~/.atlas-analytics/config.toml.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".atlas-analytics", "config.toml"), nil
}

// Load loads the configuration from path. Returns the default config if the
// file doesn't exist. Fields absent from the file keep their defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	return cfg, nil
}

// Save saves the configuration to path, creating its directory.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration values.
func (c *Config) Validate() error {
	for name, d := range map[string]string{
		"reload debounce": c.Data.ReloadDebounce,
		"poll interval":   c.Data.PollInterval,
		"search debounce": c.Search.Debounce,
		"cache TTL":       c.Cache.TTL,
	} {
		if _, err := time.ParseDuration(d); err != nil {
			return fmt.Errorf("invalid %s %q: %w", name, d, err)
		}
	}

	if len(c.Periods.Keys) == 0 {
		return errors.New("at least one period key is required")
	}
	if !c.Periods.Keys.Has(c.Periods.Fallback) {
		return fmt.Errorf("fallback period %q is not a configured key", c.Periods.Fallback)
	}

	if _, err := faction.ParseScheme(c.Factions.Scheme); err != nil {
		return err
	}

	if c.Suppression.Threshold < 1 {
		return fmt.Errorf("suppression threshold must be positive: %d", c.Suppression.Threshold)
	}
	for name, b := range map[string]BandConfig{"general": c.Suppression.General, "matchup": c.Suppression.Matchup} {
		if b.Low < 0 || b.High > 1 || b.Low > b.High {
			return fmt.Errorf("invalid %s bands: low=%v high=%v", name, b.Low, b.High)
		}
	}

	if c.Players.MinGames < 0 {
		return fmt.Errorf("player min games cannot be negative: %d", c.Players.MinGames)
	}

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.RateLimit < 0 {
		return fmt.Errorf("rate limit cannot be negative: %v", c.Server.RateLimit)
	}

	return nil
}

// GetReloadDebounce returns the dataset reload debounce as a duration.
func (c *Config) GetReloadDebounce() (time.Duration, error) {
	return time.ParseDuration(c.Data.ReloadDebounce)
}

// GetPollInterval returns the dataset polling interval as a duration.
func (c *Config) GetPollInterval() (time.Duration, error) {
	return time.ParseDuration(c.Data.PollInterval)
}

// GetSearchDebounce returns the search debounce as a duration.
func (c *Config) GetSearchDebounce() (time.Duration, error) {
	return time.ParseDuration(c.Search.Debounce)
}

// GetCacheTTL returns the cache TTL as a duration.
func (c *Config) GetCacheTTL() (time.Duration, error) {
	return time.ParseDuration(c.Cache.TTL)
}

// Engine builds the view engine configuration.
func (c *Config) Engine() view.Config {
	scheme, _ := faction.ParseScheme(c.Factions.Scheme)
	return view.Config{
		Policy: suppression.Policy{
			Threshold: c.Suppression.Threshold,
			General:   suppression.Bands{High: c.Suppression.General.High, Low: c.Suppression.General.Low},
			Matchup:   suppression.Bands{High: c.Suppression.Matchup.High, Low: c.Suppression.Matchup.Low},
		},
		Palette:        faction.NewPalette(scheme),
		Periods:        c.Periods.Keys,
		Fallback:       c.Periods.Fallback,
		MinPlayerGames: c.Players.MinGames,
	}
}
