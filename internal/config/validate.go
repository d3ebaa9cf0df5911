package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return errors.New("server.addr is required")
	}

	if c.Feed.URL == "" {
		return errors.New("feed.url is required")
	}
	if !strings.HasPrefix(c.Feed.URL, "ws://") && !strings.HasPrefix(c.Feed.URL, "wss://") {
		return fmt.Errorf("feed.url must be a ws:// or wss:// URL, got %q", c.Feed.URL)
	}
	if c.Feed.ReconnectMaxDelay <= 0 {
		return errors.New("feed.reconnect_max_delay must be > 0")
	}

	if c.Broadcast.UpdateInterval <= 0 {
		return errors.New("broadcast.update_interval must be > 0")
	}
	if c.Broadcast.CheckInterval <= 0 {
		return errors.New("broadcast.check_interval must be > 0")
	}
	if c.Broadcast.CheckInterval > c.Broadcast.UpdateInterval {
		return fmt.Errorf("broadcast.check_interval (%s) cannot exceed update_interval (%s)",
			c.Broadcast.CheckInterval, c.Broadcast.UpdateInterval)
	}
	if c.Broadcast.Retention <= 0 {
		return errors.New("broadcast.retention must be > 0")
	}

	// Broker credentials are optional: without them the asset/historical
	// endpoints degrade, the streaming core is unaffected.

	return nil
}
