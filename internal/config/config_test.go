package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.HTTP.Address != "127.0.0.1" {
		t.Errorf("Expected HTTP.Address to be 127.0.0.1, got %s", cfg.HTTP.Address)
	}
	if cfg.HTTP.Port != "8080" {
		t.Errorf("Expected HTTP.Port to be 8080, got %s", cfg.HTTP.Port)
	}
	if cfg.Fetch.Timeout != 8*time.Second {
		t.Errorf("Expected Fetch.Timeout to be 8s, got %v", cfg.Fetch.Timeout)
	}
	if cfg.Fetch.UserAgent != "Mozilla/5.0" {
		t.Errorf("Expected Fetch.UserAgent to be Mozilla/5.0, got %s", cfg.Fetch.UserAgent)
	}
	if cfg.Cache.Dir != "" {
		t.Errorf("Expected cache to be disabled by default, got %s", cfg.Cache.Dir)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Expected defaults to validate, got %v", err)
	}
	if cfg.Addr() != "127.0.0.1:8080" {
		t.Errorf("Expected addr 127.0.0.1:8080, got %s", cfg.Addr())
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid config",
			mutate: func(cfg *Config) {},
		},
		{
			name:    "missing port",
			mutate:  func(cfg *Config) { cfg.HTTP.Port = "" },
			wantErr: "HTTP port is required",
		},
		{
			name:    "missing db path",
			mutate:  func(cfg *Config) { cfg.DB.Path = "" },
			wantErr: "Database path is required",
		},
		{
			name:    "unknown log level",
			mutate:  func(cfg *Config) { cfg.Log.Level = "LOUD" },
			wantErr: "Unknown log level",
		},
		{
			name:    "zero fetch timeout",
			mutate:  func(cfg *Config) { cfg.Fetch.Timeout = 0 },
			wantErr: "Fetch timeout must be positive",
		},
		{
			name:    "negative cache ttl",
			mutate:  func(cfg *Config) { cfg.Cache.TTL = -time.Minute },
			wantErr: "Cache TTL cannot be negative",
		},
		{
			name:    "zero breaker threshold",
			mutate:  func(cfg *Config) { cfg.Breaker.FailureThreshold = 0 },
			wantErr: "Breaker failure threshold must be positive",
		},
		{
			name: "playlist with empty name",
			mutate: func(cfg *Config) {
				cfg.Playlists = []PlaylistSource{{Name: " ", URL: "http://example.com/a.m3u"}}
			},
			wantErr: "Playlist 0: name is required",
		},
		{
			name: "playlist with empty url",
			mutate: func(cfg *Config) {
				cfg.Playlists = []PlaylistSource{{Name: "Home", URL: ""}}
			},
			wantErr: "Playlist 0 (Home): URL is required",
		},
		{
			name: "collects every problem",
			mutate: func(cfg *Config) {
				cfg.HTTP.Address = ""
				cfg.HTTP.Port = ""
			},
			wantErr: "HTTP address is required\n  - HTTP port is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Expected no error, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestLogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"DEBUG": slog.LevelDebug,
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"":      slog.LevelInfo,
		"WARN":  slog.LevelWarn,
		"ERROR": slog.LevelError,
	}

	for input, want := range tests {
		cfg := Default()
		cfg.Log.Level = input
		if got := cfg.LogLevel(); got != want {
			t.Errorf("LogLevel(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestLoadFromFile(t *testing.T) {
	t.Run("overrides defaults with file values", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		content := `
http:
  port: "9090"
fetch:
  timeout: 15s
cache:
  dir: /var/cache/iptv-viewer
  ttl: 24h
player:
  command: mpv
  args: ["--fs"]
playlists:
  - name: Home
    url: http://example.com/home.m3u
`
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write config: %v", err)
		}

		cfg, err := LoadFromFile(path)
		if err != nil {
			t.Fatalf("LoadFromFile failed: %v", err)
		}

		if cfg.HTTP.Port != "9090" {
			t.Errorf("Expected port 9090, got %s", cfg.HTTP.Port)
		}
		if cfg.HTTP.Address != "127.0.0.1" {
			t.Errorf("Expected default address to survive, got %s", cfg.HTTP.Address)
		}
		if cfg.Fetch.Timeout != 15*time.Second {
			t.Errorf("Expected fetch timeout 15s, got %v", cfg.Fetch.Timeout)
		}
		if cfg.Cache.TTL != 24*time.Hour {
			t.Errorf("Expected cache ttl 24h, got %v", cfg.Cache.TTL)
		}
		if cfg.Player.Command != "mpv" || len(cfg.Player.Args) != 1 || cfg.Player.Args[0] != "--fs" {
			t.Errorf("Unexpected player config %+v", cfg.Player)
		}
		if len(cfg.Playlists) != 1 || cfg.Playlists[0].Name != "Home" {
			t.Errorf("Unexpected playlists %+v", cfg.Playlists)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
			t.Error("Expected error for missing file")
		}
	})

	t.Run("invalid yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		if err := os.WriteFile(path, []byte("http: [unclosed"), 0644); err != nil {
			t.Fatalf("Failed to write config: %v", err)
		}
		if _, err := LoadFromFile(path); err == nil {
			t.Error("Expected error for invalid yaml")
		}
	})
}

func TestLoad(t *testing.T) {
	t.Run("defaults when file is absent", func(t *testing.T) {
		t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "absent.yaml"))

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if cfg.HTTP.Port != "8080" {
			t.Errorf("Expected default port, got %s", cfg.HTTP.Port)
		}
	})

	t.Run("environment overrides file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "config.yaml")
		if err := os.WriteFile(path, []byte("http:\n  port: \"9090\"\n"), 0644); err != nil {
			t.Fatalf("Failed to write config: %v", err)
		}

		t.Setenv("CONFIG_FILE", path)
		t.Setenv("HTTP_PORT", "7070")
		t.Setenv("FETCH_TIMEOUT", "3s")
		t.Setenv("CACHE_DIR", "relative-cache")
		t.Setenv("PLAYER_COMMAND", "vlc --play-and-exit")
		t.Setenv("BREAKER_FAILURE_THRESHOLD", "2")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if cfg.HTTP.Port != "7070" {
			t.Errorf("Expected port 7070, got %s", cfg.HTTP.Port)
		}
		if cfg.Fetch.Timeout != 3*time.Second {
			t.Errorf("Expected fetch timeout 3s, got %v", cfg.Fetch.Timeout)
		}
		if !filepath.IsAbs(cfg.Cache.Dir) {
			t.Errorf("Expected absolute cache dir, got %s", cfg.Cache.Dir)
		}
		if cfg.Player.Command != "vlc" || len(cfg.Player.Args) != 1 || cfg.Player.Args[0] != "--play-and-exit" {
			t.Errorf("Unexpected player config %+v", cfg.Player)
		}
		if cfg.Breaker.FailureThreshold != 2 {
			t.Errorf("Expected breaker threshold 2, got %d", cfg.Breaker.FailureThreshold)
		}
	})

	t.Run("invalid environment values are reported together", func(t *testing.T) {
		t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "absent.yaml"))
		t.Setenv("FETCH_TIMEOUT", "soon")
		t.Setenv("BREAKER_FAILURE_THRESHOLD", "-1")

		_, err := Load()
		if err == nil {
			t.Fatal("Expected error for invalid environment")
		}
		if !strings.Contains(err.Error(), "FETCH_TIMEOUT") || !strings.Contains(err.Error(), "BREAKER_FAILURE_THRESHOLD") {
			t.Errorf("Expected both variables in error, got %v", err)
		}
	})

	t.Run("env file fills in unset variables", func(t *testing.T) {
		dir := t.TempDir()
		envPath := filepath.Join(dir, "viewer.env")
		content := "HTTP_PORT=6060\nDB_PATH=/var/lib/viewer.db\n# comment\nLOG_LEVEL=DEBUG\n"
		if err := os.WriteFile(envPath, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write env file: %v", err)
		}

		t.Setenv("CONFIG_FILE", filepath.Join(dir, "absent.yaml"))
		t.Setenv("ENV_FILE", envPath)
		t.Setenv("HTTP_PORT", "7070")
		t.Setenv("DB_PATH", "")
		t.Setenv("LOG_LEVEL", "")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if cfg.HTTP.Port != "7070" {
			t.Errorf("Expected process environment to win, got %s", cfg.HTTP.Port)
		}
		if cfg.DB.Path != "/var/lib/viewer.db" {
			t.Errorf("Expected DB path from env file, got %s", cfg.DB.Path)
		}
		if cfg.Log.Level != "DEBUG" {
			t.Errorf("Expected log level from env file, got %s", cfg.Log.Level)
		}
		if os.Getenv("DB_PATH") != "" {
			t.Error("Env file must not leak into the process environment")
		}
	})
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Run("process environment wins over env file values", func(t *testing.T) {
		t.Setenv("HTTP_PORT", "9999")
		t.Setenv("DB_PATH", "")

		cfg := Default()
		dotenv := map[string]string{"HTTP_PORT": "1111", "DB_PATH": "from-file.db"}
		if err := applyEnvOverrides(cfg, dotenv); err != nil {
			t.Fatalf("applyEnvOverrides failed: %v", err)
		}
		if cfg.HTTP.Port != "9999" {
			t.Errorf("Expected port 9999, got %s", cfg.HTTP.Port)
		}
		if cfg.DB.Path != "from-file.db" {
			t.Errorf("Expected DB path from env file, got %s", cfg.DB.Path)
		}
	})

	t.Run("empty env file leaves defaults", func(t *testing.T) {
		t.Setenv("HTTP_PORT", "")

		cfg := Default()
		if err := applyEnvOverrides(cfg, map[string]string{}); err != nil {
			t.Fatalf("applyEnvOverrides failed: %v", err)
		}
		if cfg.HTTP.Port != "8080" {
			t.Errorf("Expected default port, got %s", cfg.HTTP.Port)
		}
	})
}
