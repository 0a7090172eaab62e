package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// envParser collects every invalid environment variable instead of
// stopping at the first one.
type envParser struct {
	// dotenv holds values read from an env file. The process
	// environment takes precedence over it.
	dotenv map[string]string
	errors []string
}

func (p *envParser) get(envName string) string {
	if val := os.Getenv(envName); val != "" {
		return val
	}
	return p.dotenv[envName]
}

func (p *envParser) parseString(envName string, target *string) {
	if val := p.get(envName); val != "" {
		*target = val
	}
}

// parseDuration parses a duration environment variable, ensuring it's not negative
func (p *envParser) parseDuration(envName string, target *time.Duration) {
	val := p.get(envName)
	if val == "" {
		return
	}

	duration, err := time.ParseDuration(val)
	if err != nil {
		p.errors = append(p.errors, fmt.Sprintf("%s: invalid duration format (use '30s', '1m', etc.)", envName))
		return
	}
	if duration < 0 {
		p.errors = append(p.errors, fmt.Sprintf("%s cannot be negative", envName))
		return
	}

	*target = duration
}

// parseInt parses an integer environment variable, ensuring it's positive
func (p *envParser) parseInt(envName string, target *int) {
	val := p.get(envName)
	if val == "" {
		return
	}

	n, err := strconv.Atoi(val)
	if err != nil {
		p.errors = append(p.errors, fmt.Sprintf("%s: invalid integer", envName))
		return
	}
	if n <= 0 {
		p.errors = append(p.errors, fmt.Sprintf("%s must be positive", envName))
		return
	}

	*target = n
}

func (p *envParser) err() error {
	if len(p.errors) == 0 {
		return nil
	}
	return fmt.Errorf("invalid environment variables: %s", strings.Join(p.errors, "; "))
}

// readEnvFile reads ENV_FILE (default .env). A missing file yields no values.
func readEnvFile() (map[string]string, error) {
	path := os.Getenv("ENV_FILE")
	if path == "" {
		path = ".env"
	}

	if _, err := os.Stat(path); err != nil {
		return map[string]string{}, nil
	}

	values, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read env file %s: %w", path, err)
	}
	return values, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration
func applyEnvOverrides(cfg *Config, dotenv map[string]string) error {
	p := &envParser{dotenv: dotenv}

	p.parseString("HTTP_ADDRESS", &cfg.HTTP.Address)
	p.parseString("HTTP_PORT", &cfg.HTTP.Port)
	p.parseString("DB_PATH", &cfg.DB.Path)
	p.parseString("LOG_LEVEL", &cfg.Log.Level)

	p.parseDuration("FETCH_TIMEOUT", &cfg.Fetch.Timeout)
	p.parseString("FETCH_USER_AGENT", &cfg.Fetch.UserAgent)

	p.parseString("CACHE_DIR", &cfg.Cache.Dir)
	p.parseDuration("CACHE_TTL", &cfg.Cache.TTL)

	p.parseInt("BREAKER_FAILURE_THRESHOLD", &cfg.Breaker.FailureThreshold)
	p.parseDuration("BREAKER_TIMEOUT", &cfg.Breaker.Timeout)

	if fields := strings.Fields(p.get("PLAYER_COMMAND")); len(fields) > 0 {
		cfg.Player.Command = fields[0]
		cfg.Player.Args = fields[1:]
	}

	return p.err()
}
