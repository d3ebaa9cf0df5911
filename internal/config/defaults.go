package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultListenAddr        = ":8000"
	DefaultFeedURL           = "ws://localhost:8765"
	DefaultReconnectMaxDelay = 60 * time.Second
	DefaultUpdateInterval    = 15 * time.Second
	DefaultCheckInterval     = 1 * time.Second
	DefaultRetention         = 24 * time.Hour
	DefaultBrokerAPIURL      = "https://paper-api.alpaca.markets"
	DefaultBrokerDataURL     = "https://data.alpaca.markets"
)

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultListenAddr
	}

	if c.Feed.URL == "" {
		c.Feed.URL = DefaultFeedURL
	}
	if c.Feed.ReconnectMaxDelay == 0 {
		c.Feed.ReconnectMaxDelay = DefaultReconnectMaxDelay
	}

	if c.Broadcast.UpdateInterval == 0 {
		c.Broadcast.UpdateInterval = DefaultUpdateInterval
	}
	if c.Broadcast.CheckInterval == 0 {
		c.Broadcast.CheckInterval = DefaultCheckInterval
	}
	if c.Broadcast.Retention == 0 {
		c.Broadcast.Retention = DefaultRetention
	}

	if c.Broker.APIURL == "" {
		c.Broker.APIURL = DefaultBrokerAPIURL
	}
	if c.Broker.DataURL == "" {
		c.Broker.DataURL = DefaultBrokerDataURL
	}
}
