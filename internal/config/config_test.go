package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "streamer.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	yaml := `
server:
  addr: ":9000"
feed:
  url: wss://stream.example.com/v2/iex
broker:
  api_url: https://paper-api.alpaca.markets
  api_key: test-key
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Addr != ":9000" {
		t.Errorf("Server.Addr = %q, want %q", cfg.Server.Addr, ":9000")
	}
	if cfg.Feed.URL != "wss://stream.example.com/v2/iex" {
		t.Errorf("Feed.URL = %q, want %q", cfg.Feed.URL, "wss://stream.example.com/v2/iex")
	}
	if cfg.Broker.APIKey != "test-key" {
		t.Errorf("Broker.APIKey = %q, want %q", cfg.Broker.APIKey, "test-key")
	}
}

func TestLoadWithEnvSubstitution(t *testing.T) {
	t.Setenv("TEST_BROKER_SECRET", "secret123")

	yaml := `
feed:
  url: ws://localhost:8765
broker:
  api_secret: ${TEST_BROKER_SECRET}
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Broker.APISecret != "secret123" {
		t.Errorf("Broker.APISecret = %q, want %q", cfg.Broker.APISecret, "secret123")
	}
}

func TestLoadWithDefaults(t *testing.T) {
	path := writeTempFile(t, "feed:\n  url: ws://localhost:8765\n")

	cfg, err := LoadWithDefaults(path)
	if err != nil {
		t.Fatalf("LoadWithDefaults failed: %v", err)
	}

	if cfg.Server.Addr != DefaultListenAddr {
		t.Errorf("Server.Addr = %q, want default %q", cfg.Server.Addr, DefaultListenAddr)
	}
	if cfg.Broadcast.UpdateInterval != 15*time.Second {
		t.Errorf("Broadcast.UpdateInterval = %v, want 15s", cfg.Broadcast.UpdateInterval)
	}
	if cfg.Broadcast.CheckInterval != time.Second {
		t.Errorf("Broadcast.CheckInterval = %v, want 1s", cfg.Broadcast.CheckInterval)
	}
	if cfg.Broadcast.Retention != 24*time.Hour {
		t.Errorf("Broadcast.Retention = %v, want 24h", cfg.Broadcast.Retention)
	}
	if cfg.Feed.ReconnectMaxDelay != 60*time.Second {
		t.Errorf("Feed.ReconnectMaxDelay = %v, want 60s", cfg.Feed.ReconnectMaxDelay)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults are valid", func(c *Config) {}, false},
		{"missing feed url", func(c *Config) { c.Feed.URL = "" }, true},
		{"non-websocket feed url", func(c *Config) { c.Feed.URL = "http://localhost:8765" }, true},
		{"zero update interval", func(c *Config) { c.Broadcast.UpdateInterval = 0 }, true},
		{"check interval above update interval", func(c *Config) {
			c.Broadcast.CheckInterval = 30 * time.Second
		}, true},
		{"zero retention", func(c *Config) { c.Broadcast.Retention = 0 }, true},
		{"negative reconnect cap", func(c *Config) { c.Feed.ReconnectMaxDelay = -time.Second }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
