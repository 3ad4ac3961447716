package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/papercomputeco/ragdesk/pkg/dotdir"
)

// EnvPrefix is the prefix of environment variables that override config keys.
const EnvPrefix = "RAGDESK"

// InitViper creates and returns a configured *viper.Viper.
// It sets defaults from NewDefaultConfig(), reads the config.toml file
// (if found via dotdir resolution), and binds environment variables
// with the RAGDESK_ prefix.
//
// Config precedence (highest to lowest):
//  1. CLI flags (once bound via BindRegisteredFlags)
//  2. Environment variables (RAGDESK_CLIENT_API_TARGET, RAGDESK_AUTH_PERSIST, etc.)
//  3. config.toml file values
//  4. Defaults from NewDefaultConfig()
func InitViper(configDir string) (*viper.Viper, error) {
	v := viper.New()

	// 1. Register all defaults from NewDefaultConfig().
	setViperDefaults(v)

	// 2. Config file discovery via dotdir resolution.
	v.SetConfigName("config")
	v.SetConfigType("toml")

	ddm := dotdir.NewManager()
	target, err := ddm.Target(configDir)
	if err != nil {
		return nil, fmt.Errorf("resolving config dir: %w", err)
	}

	if target != "" {
		v.AddConfigPath(target)
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file not found errors are fine, defaults will apply.
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	// 3. Environment variables: RAGDESK_CLIENT_API_TARGET, RAGDESK_CHAT_RENDER_MARKDOWN, etc.
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v, nil
}

// setViperDefaults registers defaults from NewDefaultConfig() into viper
// using dotted-key notation. This keeps defaults.go as the single source of truth.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("version", d.Version)

	// Client
	v.SetDefault("client.api_target", d.Client.APITarget)
	v.SetDefault("client.refresh_path", d.Client.RefreshPath)
	v.SetDefault("client.request_timeout", d.Client.RequestTimeout)
	v.SetDefault("client.single_flight_refresh", d.Client.SingleFlightRefresh)
	v.SetDefault("client.upload_workers", d.Client.UploadWorkers)

	// Chat
	v.SetDefault("chat.render_markdown", d.Chat.RenderMarkdown)

	// Auth
	v.SetDefault("auth.persist", d.Auth.Persist)
}

// FromViper reads the effective configuration out of v after flags, the
// environment and config.toml have been layered.
func FromViper(v *viper.Viper) *Config {
	cfg := &Config{
		Version: v.GetInt("version"),
		Client: ClientConfig{
			APITarget:           v.GetString("client.api_target"),
			RefreshPath:         v.GetString("client.refresh_path"),
			RequestTimeout:      v.GetString("client.request_timeout"),
			SingleFlightRefresh: v.GetBool("client.single_flight_refresh"),
			UploadWorkers:       v.GetUint("client.upload_workers"),
		},
		Chat: ChatConfig{
			RenderMarkdown: v.GetBool("chat.render_markdown"),
		},
		Auth: AuthConfig{
			Persist: v.GetBool("auth.persist"),
		},
	}

	applyDefaults(cfg)

	return cfg
}
