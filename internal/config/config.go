package config

import "time"

// Config is the root configuration for the streamer.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Feed      FeedConfig      `yaml:"feed"`
	Broadcast BroadcastConfig `yaml:"broadcast"`
	Broker    BrokerConfig    `yaml:"broker"`
}

// ServerConfig configures the HTTP/WebSocket surface.
type ServerConfig struct {
	Addr string `yaml:"addr"` // Listen address (e.g., ":8000")
}

// FeedConfig configures the upstream trade feed connection.
type FeedConfig struct {
	URL               string        `yaml:"url"`                 // Upstream WebSocket URL
	ReconnectMaxDelay time.Duration `yaml:"reconnect_max_delay"` // Backoff cap
}

// BroadcastConfig configures snapshot production and delivery.
type BroadcastConfig struct {
	UpdateInterval time.Duration `yaml:"update_interval"` // Minimum gap between pushes
	CheckInterval  time.Duration `yaml:"check_interval"`  // Cadence-check granularity
	Retention      time.Duration `yaml:"retention"`       // Per-symbol history horizon
}

// BrokerConfig configures the Alpaca REST pass-through endpoints.
type BrokerConfig struct {
	APIURL    string `yaml:"api_url"`  // Trading API base (assets)
	DataURL   string `yaml:"data_url"` // Market data API base (bars)
	APIKey    string `yaml:"api_key"`
	APISecret string `yaml:"api_secret"`
}
