package config

import (
	"fmt"
	"strconv"
	"time"
)

// Config represents the persistent ragdesk configuration stored as config.toml
// in the .ragdesk/ directory. The TOML layout uses sections for logical grouping.
type Config struct {
	Version int          `toml:"version"`
	Client  ClientConfig `toml:"client"`
	Chat    ChatConfig   `toml:"chat"`
	Auth    AuthConfig   `toml:"auth"`
}

// ClientConfig holds settings for the API client every command builds.
type ClientConfig struct {
	// APITarget is the full URL of the workspace API (scheme + host + port).
	APITarget string `toml:"api_target,omitempty"`

	// RefreshPath is the token refresh endpoint relative to APITarget.
	RefreshPath string `toml:"refresh_path,omitempty"`

	// RequestTimeout bounds non-streaming commands, as a Go duration string.
	// "0" disables the bound.
	RequestTimeout string `toml:"request_timeout,omitempty"`

	// SingleFlightRefresh collapses concurrent token refreshes into one.
	SingleFlightRefresh bool `toml:"single_flight_refresh"`

	// UploadWorkers is the number of concurrent document uploads.
	UploadWorkers uint `toml:"upload_workers,omitempty"`
}

// Timeout parses RequestTimeout. An empty or zero value means no timeout.
func (c ClientConfig) Timeout() (time.Duration, error) {
	if c.RequestTimeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.RequestTimeout)
	if err != nil {
		return 0, fmt.Errorf("invalid client.request_timeout %q: %w", c.RequestTimeout, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid client.request_timeout %q: must not be negative", c.RequestTimeout)
	}
	return d, nil
}

// ChatConfig holds settings for "ragdesk chat" and streamed generation.
type ChatConfig struct {
	RenderMarkdown bool `toml:"render_markdown"`
}

// AuthConfig holds session settings.
type AuthConfig struct {
	// Persist keeps the session in credentials.toml between invocations.
	Persist bool `toml:"persist"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"client.api_target": {
		get: func(c *Config) string { return c.Client.APITarget },
		set: func(c *Config, v string) error { c.Client.APITarget = v; return nil },
	},
	"client.refresh_path": {
		get: func(c *Config) string { return c.Client.RefreshPath },
		set: func(c *Config, v string) error { c.Client.RefreshPath = v; return nil },
	},
	"client.request_timeout": {
		get: func(c *Config) string { return c.Client.RequestTimeout },
		set: func(c *Config, v string) error {
			candidate := ClientConfig{RequestTimeout: v}
			if _, err := candidate.Timeout(); err != nil {
				return err
			}
			c.Client.RequestTimeout = v
			return nil
		},
	},
	"client.single_flight_refresh": {
		get: func(c *Config) string { return strconv.FormatBool(c.Client.SingleFlightRefresh) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for client.single_flight_refresh: %w", err)
			}
			c.Client.SingleFlightRefresh = b
			return nil
		},
	},
	"client.upload_workers": {
		get: func(c *Config) string {
			if c.Client.UploadWorkers == 0 {
				return ""
			}
			return strconv.FormatUint(uint64(c.Client.UploadWorkers), 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for client.upload_workers: %w", err)
			}
			c.Client.UploadWorkers = uint(n)
			return nil
		},
	},
	"chat.render_markdown": {
		get: func(c *Config) string { return strconv.FormatBool(c.Chat.RenderMarkdown) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for chat.render_markdown: %w", err)
			}
			c.Chat.RenderMarkdown = b
			return nil
		},
	},
	"auth.persist": {
		get: func(c *Config) string { return strconv.FormatBool(c.Auth.Persist) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for auth.persist: %w", err)
			}
			c.Auth.Persist = b
			return nil
		},
	},
}
