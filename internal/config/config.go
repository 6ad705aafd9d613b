package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the application
type Config struct {
	// HTTP Server Configuration
	HTTPPort    int
	CORSOrigins []string

	// Event store configuration
	StoreDriver        string
	DatabaseURL        string
	ClickHouseHost     string
	ClickHouseUser     string
	ClickHousePassword string
	ClickHouseDatabase string
	StoreTimeout       time.Duration
	DBLogLevel         string

	// Language model configuration
	LLMProvider string
	LLMBaseURL  string
	LLMModel    string
	LLMAPIKey   string
	LLMTimeout  time.Duration
	SchemaFile  string

	// Windows and limits
	IncidentWindow   time.Duration
	MaxWindow        time.Duration
	EventsWindow     time.Duration
	EventsLimit      int
	IncidentsLimit   int
	LivePushInterval time.Duration
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{}

	// HTTP Port for API server
	cfg.HTTPPort = getEnvAsIntOrDefault("HTTP_PORT", 3000)
	cfg.CORSOrigins = getEnvAsListOrDefault("CORS_ORIGINS", []string{"*"})

	// Event store
	cfg.StoreDriver = getEnvOrDefault("STORE_DRIVER", "clickhouse")
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	cfg.ClickHouseHost = getEnvOrDefault("CLICKHOUSE_HOST", "localhost:9000")
	cfg.ClickHouseUser = getEnvOrDefault("CLICKHOUSE_USER", "default")
	cfg.ClickHousePassword = os.Getenv("CLICKHOUSE_PASSWORD")
	cfg.ClickHouseDatabase = getEnvOrDefault("CLICKHOUSE_DATABASE", "ids")
	cfg.StoreTimeout = getEnvAsDurationOrDefault("STORE_TIMEOUT", 30*time.Second)
	cfg.DBLogLevel = getEnvOrDefault("DB_LOG_LEVEL", "warn")

	// Language model
	cfg.LLMProvider = getEnvOrDefault("LLM_PROVIDER", "ollama")
	cfg.LLMBaseURL = os.Getenv("LLM_BASE_URL")
	cfg.LLMModel = getEnvOrDefault("LLM_MODEL", "mistral")
	cfg.LLMAPIKey = os.Getenv("LLM_API_KEY")
	cfg.LLMTimeout = getEnvAsDurationOrDefault("LLM_TIMEOUT", 60*time.Second)
	cfg.SchemaFile = os.Getenv("SCHEMA_FILE")

	// Windows and limits
	cfg.IncidentWindow = getEnvAsDurationOrDefault("INCIDENT_WINDOW", 24*time.Hour)
	cfg.MaxWindow = getEnvAsDurationOrDefault("MAX_WINDOW", 168*time.Hour)
	cfg.EventsWindow = getEnvAsDurationOrDefault("EVENTS_WINDOW", 24*time.Hour)
	cfg.EventsLimit = getEnvAsIntOrDefault("EVENTS_LIMIT", 100)
	cfg.IncidentsLimit = getEnvAsIntOrDefault("INCIDENTS_LIMIT", 500)
	cfg.LivePushInterval = getEnvAsDurationOrDefault("LIVE_PUSH_INTERVAL", 10*time.Second)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the server cannot run with
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case "clickhouse", "postgres", "sqlite":
	default:
		return fmt.Errorf("STORE_DRIVER must be clickhouse, postgres or sqlite, got %q", c.StoreDriver)
	}
	if c.StoreDriver != "clickhouse" && c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required for store driver %s", c.StoreDriver)
	}

	switch c.LLMProvider {
	case "ollama", "openai":
	default:
		return fmt.Errorf("LLM_PROVIDER must be ollama or openai, got %q", c.LLMProvider)
	}

	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("HTTP_PORT out of range: %d", c.HTTPPort)
	}

	durations := map[string]time.Duration{
		"STORE_TIMEOUT":      c.StoreTimeout,
		"LLM_TIMEOUT":        c.LLMTimeout,
		"INCIDENT_WINDOW":    c.IncidentWindow,
		"MAX_WINDOW":         c.MaxWindow,
		"EVENTS_WINDOW":      c.EventsWindow,
		"LIVE_PUSH_INTERVAL": c.LivePushInterval,
	}
	for key, d := range durations {
		if d <= 0 {
			return fmt.Errorf("%s must be positive, got %s", key, d)
		}
	}
	if c.IncidentWindow > c.MaxWindow {
		return fmt.Errorf("INCIDENT_WINDOW (%s) exceeds MAX_WINDOW (%s)", c.IncidentWindow, c.MaxWindow)
	}
	if c.EventsLimit <= 0 || c.IncidentsLimit <= 0 {
		return fmt.Errorf("EVENTS_LIMIT and INCIDENTS_LIMIT must be positive")
	}
	return nil
}

// StoreDSN returns DATABASE_URL, or a ClickHouse DSN built from the
// CLICKHOUSE_* settings when it is empty.
func (c *Config) StoreDSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	u := url.URL{
		Scheme: "clickhouse",
		Host:   c.ClickHouseHost,
		Path:   "/" + c.ClickHouseDatabase,
	}
	if c.ClickHousePassword != "" {
		u.User = url.UserPassword(c.ClickHouseUser, c.ClickHousePassword)
	} else {
		u.User = url.User(c.ClickHouseUser)
	}
	q := url.Values{}
	q.Set("dial_timeout", "10s")
	q.Set("read_timeout", c.StoreTimeout.String())
	u.RawQuery = q.Encode()
	return u.String()
}

// getEnvOrDefault returns the value of an environment variable or a default value
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsIntOrDefault returns the value of an environment variable as an integer or a default value
func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvAsDurationOrDefault parses a Go duration ("30s", "24h"); a bare number is read as seconds
func getEnvAsDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(strings.ToLower(value)); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

// getEnvAsListOrDefault splits a comma-separated variable, dropping empty items
func getEnvAsListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
