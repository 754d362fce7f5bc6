package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
)

// Config is the persistent client configuration
type Config struct {
	API         APIConfig         `json:"api"`
	Feed        FeedConfig        `json:"feed"`
	Interaction InteractionConfig `json:"interaction"`
	Publish     PublishConfig     `json:"publish"`
	UI          UIConfig          `json:"ui"`

	// DataDir holds the key-value database and logs. Empty means ~/.shipfeed.
	DataDir string `json:"data_dir,omitempty"`
}

// APIConfig describes the remote REST API
type APIConfig struct {
	BaseURL           string  `json:"base_url"`
	TimeoutSeconds    int     `json:"timeout_seconds"`
	RequestsPerSecond float64 `json:"requests_per_second"`
}

// FeedConfig holds aggregator tuning
type FeedConfig struct {
	NewItemFlagMs int `json:"new_item_flag_ms"` // how long the entry-animation flag stays set
}

// InteractionConfig holds mutation coordinator tuning
type InteractionConfig struct {
	LikeDebounceMs   int `json:"like_debounce_ms"`
	RequestTimeoutMs int `json:"request_timeout_ms"`
}

// PublishConfig holds the publishing indicator settings
type PublishConfig struct {
	IndicatorMs int `json:"indicator_ms"`
}

// UIConfig holds UI preferences
type UIConfig struct {
	Locale    string `json:"locale"` // "ar" or "en"
	ItemLimit int    `json:"item_limit"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:           "https://api.shipping-app.example/api/v1",
			TimeoutSeconds:    20,
			RequestsPerSecond: 8,
		},
		Feed: FeedConfig{
			NewItemFlagMs: 600,
		},
		Interaction: InteractionConfig{
			LikeDebounceMs:   500,
			RequestTimeoutMs: 15000,
		},
		Publish: PublishConfig{
			IndicatorMs: 2500,
		},
		UI: UIConfig{
			Locale:    "ar",
			ItemLimit: 200,
		},
	}
}

// ConfigPath returns the path to the config file
func ConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".shipfeed", "config.json")
}

// Load reads the config file (defaults when absent), then applies .env and
// environment overrides.
func Load() (*Config, error) {
	return LoadFrom(ConfigPath())
}

// LoadFrom is Load with an explicit path.
func LoadFrom(path string) (*Config, error) {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	if err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			cfg = DefaultConfig()
		}
	}

	cfg.ApplyEnv()
	cfg.fillZeroes()
	return cfg, nil
}

// Save writes config to disk
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}

// ApplyEnv overrides fields from SHIPFEED_* environment variables.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("SHIPFEED_API_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("SHIPFEED_LOCALE"); v != "" {
		c.UI.Locale = v
	}
	if v := os.Getenv("SHIPFEED_DATA_DIR"); v != "" {
		c.DataDir = v
	}
}

// fillZeroes replaces zero values left by a partial config file.
func (c *Config) fillZeroes() {
	d := DefaultConfig()
	if c.API.BaseURL == "" {
		c.API.BaseURL = d.API.BaseURL
	}
	if c.API.TimeoutSeconds <= 0 {
		c.API.TimeoutSeconds = d.API.TimeoutSeconds
	}
	if c.API.RequestsPerSecond <= 0 {
		c.API.RequestsPerSecond = d.API.RequestsPerSecond
	}
	if c.Feed.NewItemFlagMs <= 0 {
		c.Feed.NewItemFlagMs = d.Feed.NewItemFlagMs
	}
	if c.Interaction.LikeDebounceMs <= 0 {
		c.Interaction.LikeDebounceMs = d.Interaction.LikeDebounceMs
	}
	if c.Interaction.RequestTimeoutMs <= 0 {
		c.Interaction.RequestTimeoutMs = d.Interaction.RequestTimeoutMs
	}
	if c.Publish.IndicatorMs <= 0 {
		c.Publish.IndicatorMs = d.Publish.IndicatorMs
	}
	if c.UI.Locale == "" {
		c.UI.Locale = d.UI.Locale
	}
	if c.UI.ItemLimit <= 0 {
		c.UI.ItemLimit = d.UI.ItemLimit
	}
}

// DataPath returns DataDir, defaulting to ~/.shipfeed.
func (c *Config) DataPath() string {
	if c.DataDir != "" {
		return c.DataDir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".shipfeed")
}

// Duration helpers

func (c *Config) APITimeout() time.Duration {
	return time.Duration(c.API.TimeoutSeconds) * time.Second
}

func (c *Config) NewItemTTL() time.Duration {
	return time.Duration(c.Feed.NewItemFlagMs) * time.Millisecond
}

func (c *Config) LikeDebounce() time.Duration {
	return time.Duration(c.Interaction.LikeDebounceMs) * time.Millisecond
}

func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Interaction.RequestTimeoutMs) * time.Millisecond
}

func (c *Config) PublishIndicator() time.Duration {
	return time.Duration(c.Publish.IndicatorMs) * time.Millisecond
}
