package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// PlaylistSource is a playlist seeded into an empty store on startup.
type PlaylistSource struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// Config holds the complete application configuration
type Config struct {
	// HTTP server settings
	HTTP struct {
		Address string `yaml:"address"`
		Port    string `yaml:"port"`
	} `yaml:"http"`

	// Database settings
	DB struct {
		Path string `yaml:"path"`
	} `yaml:"db"`

	// Log settings
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`

	// Playlist fetch settings
	Fetch struct {
		Timeout   time.Duration `yaml:"timeout"`
		UserAgent string        `yaml:"user_agent"`
	} `yaml:"fetch"`

	// Fallback cache settings. An empty Dir disables the cache;
	// a zero TTL serves cached copies of any age.
	Cache struct {
		Dir string        `yaml:"dir"`
		TTL time.Duration `yaml:"ttl"`
	} `yaml:"cache"`

	// Circuit breaker settings for playlist upstreams
	Breaker struct {
		FailureThreshold int           `yaml:"failure_threshold"`
		Timeout          time.Duration `yaml:"timeout"`
	} `yaml:"breaker"`

	// External player. An empty Command only logs the selected stream.
	Player struct {
		Command string   `yaml:"command"`
		Args    []string `yaml:"args"`
	} `yaml:"player"`

	// Playlists to seed when none are stored yet
	Playlists []PlaylistSource `yaml:"playlists"`
}

// Default returns a Config with sensible default values
func Default() *Config {
	cfg := &Config{}

	cfg.HTTP.Address = "127.0.0.1"
	cfg.HTTP.Port = "8080"

	cfg.DB.Path = "iptv-viewer.db"

	cfg.Log.Level = "INFO"

	cfg.Fetch.Timeout = 8 * time.Second
	cfg.Fetch.UserAgent = "Mozilla/5.0"

	cfg.Cache.Dir = ""
	cfg.Cache.TTL = 0

	cfg.Breaker.FailureThreshold = 5
	cfg.Breaker.Timeout = 30 * time.Second

	cfg.Playlists = []PlaylistSource{}

	return cfg
}

// Validate performs validation on the configuration
func (c *Config) Validate() error {
	var errors []string

	if c.HTTP.Address == "" {
		errors = append(errors, "HTTP address is required")
	}
	if c.HTTP.Port == "" {
		errors = append(errors, "HTTP port is required")
	}

	if c.DB.Path == "" {
		errors = append(errors, "Database path is required")
	}

	if _, ok := parseLevel(c.Log.Level); !ok {
		errors = append(errors, fmt.Sprintf("Unknown log level %q", c.Log.Level))
	}

	if c.Fetch.Timeout <= 0 {
		errors = append(errors, "Fetch timeout must be positive")
	}

	if c.Cache.TTL < 0 {
		errors = append(errors, "Cache TTL cannot be negative")
	}

	if c.Breaker.FailureThreshold <= 0 {
		errors = append(errors, "Breaker failure threshold must be positive")
	}
	if c.Breaker.Timeout <= 0 {
		errors = append(errors, "Breaker timeout must be positive")
	}

	for i, pl := range c.Playlists {
		if strings.TrimSpace(pl.Name) == "" {
			errors = append(errors, fmt.Sprintf("Playlist %d: name is required", i))
		}
		if strings.TrimSpace(pl.URL) == "" {
			errors = append(errors, fmt.Sprintf("Playlist %d (%s): URL is required", i, pl.Name))
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

// LogLevel returns the configured slog level. Unknown names map to INFO.
func (c *Config) LogLevel() slog.Level {
	level, _ := parseLevel(c.Log.Level)
	return level
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return c.HTTP.Address + ":" + c.HTTP.Port
}

func parseLevel(s string) (slog.Level, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return slog.LevelDebug, true
	case "INFO", "":
		return slog.LevelInfo, true
	case "WARN":
		return slog.LevelWarn, true
	case "ERROR":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

// LoadFromFile loads configuration from a YAML file over the defaults
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Load reads CONFIG_FILE (default config.yaml) if it exists, applies
// environment variable overrides (process environment first, then ENV_FILE,
// default .env) and validates the result.
func Load() (*Config, error) {
	configPath := os.Getenv("CONFIG_FILE")
	if configPath == "" {
		configPath = "config.yaml"
	}

	var cfg *Config

	if _, err := os.Stat(configPath); err == nil {
		cfg, err = LoadFromFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
		}
	} else {
		cfg = Default()
	}

	dotenv, err := readEnvFile()
	if err != nil {
		return nil, err
	}

	if err := applyEnvOverrides(cfg, dotenv); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if cfg.Cache.Dir != "" {
		absPath, err := filepath.Abs(cfg.Cache.Dir)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve absolute path for cache dir: %w", err)
		}
		cfg.Cache.Dir = absPath
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}
