package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.HTTPPort != 3000 {
		t.Errorf("expected port 3000, got %d", cfg.HTTPPort)
	}
	if cfg.StoreDriver != "clickhouse" {
		t.Errorf("expected clickhouse driver, got %s", cfg.StoreDriver)
	}
	if cfg.LLMProvider != "ollama" || cfg.LLMModel != "mistral" {
		t.Errorf("expected ollama/mistral, got %s/%s", cfg.LLMProvider, cfg.LLMModel)
	}
	if cfg.StoreTimeout != 30*time.Second || cfg.LLMTimeout != 60*time.Second {
		t.Errorf("unexpected timeouts %s / %s", cfg.StoreTimeout, cfg.LLMTimeout)
	}
	if cfg.IncidentWindow != 24*time.Hour || cfg.MaxWindow != 168*time.Hour {
		t.Errorf("unexpected windows %s / %s", cfg.IncidentWindow, cfg.MaxWindow)
	}
	if cfg.EventsLimit != 100 {
		t.Errorf("expected events limit 100, got %d", cfg.EventsLimit)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "*" {
		t.Errorf("expected wildcard CORS origin, got %v", cfg.CORSOrigins)
	}
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("HTTP_PORT", "8080")
	t.Setenv("STORE_DRIVER", "sqlite")
	t.Setenv("DATABASE_URL", "file:test.db")
	t.Setenv("LLM_PROVIDER", "openai")
	t.Setenv("LLM_TIMEOUT", "5")
	t.Setenv("INCIDENT_WINDOW", "12H")
	t.Setenv("CORS_ORIGINS", "http://a.test, ,http://b.test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTPPort != 8080 {
		t.Errorf("expected port 8080, got %d", cfg.HTTPPort)
	}
	if cfg.StoreDSN() != "file:test.db" {
		t.Errorf("expected DATABASE_URL as DSN, got %s", cfg.StoreDSN())
	}
	if cfg.LLMTimeout != 5*time.Second {
		t.Errorf("expected bare number read as seconds, got %s", cfg.LLMTimeout)
	}
	if cfg.IncidentWindow != 12*time.Hour {
		t.Errorf("expected 12h window, got %s", cfg.IncidentWindow)
	}
	if strings.Join(cfg.CORSOrigins, "|") != "http://a.test|http://b.test" {
		t.Errorf("unexpected CORS origins %v", cfg.CORSOrigins)
	}
}

func TestLoad_InvalidIntFallsBack(t *testing.T) {
	t.Setenv("EVENTS_LIMIT", "lots")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.EventsLimit != 100 {
		t.Errorf("expected default limit, got %d", cfg.EventsLimit)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			HTTPPort:         3000,
			StoreDriver:      "clickhouse",
			LLMProvider:      "ollama",
			StoreTimeout:     time.Second,
			LLMTimeout:       time.Second,
			IncidentWindow:   time.Hour,
			MaxWindow:        2 * time.Hour,
			EventsWindow:     time.Hour,
			EventsLimit:      10,
			IncidentsLimit:   10,
			LivePushInterval: time.Second,
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"valid", func(c *Config) {}, ""},
		{"unknown driver", func(c *Config) { c.StoreDriver = "mysql" }, "STORE_DRIVER"},
		{"sqlite without url", func(c *Config) { c.StoreDriver = "sqlite" }, "DATABASE_URL"},
		{"unknown provider", func(c *Config) { c.LLMProvider = "bard" }, "LLM_PROVIDER"},
		{"bad port", func(c *Config) { c.HTTPPort = 70000 }, "HTTP_PORT"},
		{"zero timeout", func(c *Config) { c.StoreTimeout = 0 }, "STORE_TIMEOUT"},
		{"window over max", func(c *Config) { c.IncidentWindow = 3 * time.Hour }, "exceeds MAX_WINDOW"},
		{"zero limit", func(c *Config) { c.EventsLimit = 0 }, "EVENTS_LIMIT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.errMsg == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("expected error containing %q, got %v", tt.errMsg, err)
			}
		})
	}
}

func TestStoreDSN_ClickHouse(t *testing.T) {
	cfg := &Config{
		ClickHouseHost:     "ch:9000",
		ClickHouseUser:     "default",
		ClickHousePassword: "p@ss",
		ClickHouseDatabase: "ids",
		StoreTimeout:       30 * time.Second,
	}
	want := "clickhouse://default:p%40ss@ch:9000/ids?dial_timeout=10s&read_timeout=30s"
	if got := cfg.StoreDSN(); got != want {
		t.Errorf("expected %s, got %s", want, got)
	}

	cfg.ClickHousePassword = ""
	if got := cfg.StoreDSN(); !strings.HasPrefix(got, "clickhouse://default@ch:9000/ids?") {
		t.Errorf("unexpected DSN without password: %s", got)
	}
}
