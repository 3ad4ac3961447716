package config

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flag is the single source of truth for a CLI flag.
// Commands reference flags by registry key rather than hard-coding names,
// shorthands, defaults, and descriptions inline. This prevents flag drift
// when the same logical flag appears on multiple commands (e.g., --api-target
// on both "ragdesk chat" and "ragdesk docs upload").
type Flag struct {
	// Name is the long flag name (e.g. "api-target").
	Name string

	// Shorthand is the one-letter short flag (e.g. "t"). Empty for no shorthand.
	Shorthand string

	// ViperKey is the dotted config key this flag maps to (e.g. "client.api_target").
	ViperKey string

	// Description is the help text shown in --help output.
	Description string
}

// FlagSet is a mapping of flag names to Flag structs that hold their name,
// shorthand, viper key, etc.
type FlagSet map[string]Flag

// Flag registry keys.
// Use these constants when calling AddStringFlag, AddUintFlag, AddBoolFlag
// and BindRegisteredFlags to avoid typos or drift from one command to another.
const (
	FlagAPITarget     = "api-target"
	FlagRefreshPath   = "refresh-path"
	FlagTimeout       = "timeout"
	FlagSingleFlight  = "single-flight-refresh"
	FlagUploadWorkers = "workers"
	FlagMarkdown      = "markdown"
	FlagPersist       = "persist"
)

// ClientFlags are the flags every command that talks to the API registers.
var ClientFlags = FlagSet{
	FlagAPITarget: {
		Name:        "api-target",
		Shorthand:   "t",
		ViperKey:    "client.api_target",
		Description: "Workspace API URL",
	},
	FlagRefreshPath: {
		Name:        "refresh-path",
		ViperKey:    "client.refresh_path",
		Description: "Token refresh endpoint, relative to the API URL",
	},
	FlagTimeout: {
		Name:        "timeout",
		ViperKey:    "client.request_timeout",
		Description: "Timeout for non-streaming requests (Go duration, 0 disables)",
	},
	FlagSingleFlight: {
		Name:        "single-flight-refresh",
		ViperKey:    "client.single_flight_refresh",
		Description: "Share one token refresh between concurrent requests",
	},
	FlagUploadWorkers: {
		Name:        "workers",
		Shorthand:   "w",
		ViperKey:    "client.upload_workers",
		Description: "Number of concurrent uploads",
	},
	FlagMarkdown: {
		Name:        "markdown",
		ViperKey:    "chat.render_markdown",
		Description: "Render answers as markdown",
	},
	FlagPersist: {
		Name:        "persist",
		ViperKey:    "auth.persist",
		Description: "Keep the session in credentials.toml",
	},
}

// ClientFlagKeys are the registry keys shared by every API command.
var ClientFlagKeys = []string{
	FlagAPITarget,
	FlagRefreshPath,
	FlagTimeout,
	FlagSingleFlight,
	FlagPersist,
}

// AddStringFlag registers a string flag on cmd from the given FlagSet.
// The flag's name, shorthand, default, and description all come from the
// FlagSet entry so they cannot drift across commands.
func AddStringFlag(cmd *cobra.Command, fs FlagSet, key string, target *string) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaultString(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().StringVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().StringVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddUintFlag registers a uint flag on cmd from the given FlagSet.
func AddUintFlag(cmd *cobra.Command, fs FlagSet, registryKey string, target *uint) {
	def, ok := fs[registryKey]
	if !ok {
		return
	}

	defaultVal := defaultUint(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().UintVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().UintVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddBoolFlag registers a bool flag on cmd from the given FlagSet.
func AddBoolFlag(cmd *cobra.Command, fs FlagSet, registryKey string, target *bool) {
	def, ok := fs[registryKey]
	if !ok {
		return
	}

	defaultVal := defaultBool(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().BoolVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().BoolVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddClientFlags registers ClientFlagKeys on cmd. Values are read back through
// viper after BindRegisteredFlags, so the targets are not exposed.
func AddClientFlags(cmd *cobra.Command) {
	var (
		apiTarget, refreshPath, timeout string
		singleFlight, persist           bool
	)
	AddStringFlag(cmd, ClientFlags, FlagAPITarget, &apiTarget)
	AddStringFlag(cmd, ClientFlags, FlagRefreshPath, &refreshPath)
	AddStringFlag(cmd, ClientFlags, FlagTimeout, &timeout)
	AddBoolFlag(cmd, ClientFlags, FlagSingleFlight, &singleFlight)
	AddBoolFlag(cmd, ClientFlags, FlagPersist, &persist)
}

// BindRegisteredFlags binds already-registered flags to viper using definitions
// from the given FlagSet. Call this in PreRunE after InitViper to connect flags
// to the viper precedence chain (flag > env > config file > default).
func BindRegisteredFlags(v *viper.Viper, cmd *cobra.Command, fs FlagSet, registryKeys []string) {
	for _, registryKey := range registryKeys {
		def, ok := fs[registryKey]
		if !ok {
			continue
		}

		f := cmd.Flags().Lookup(def.Name)
		if f == nil {
			continue
		}

		_ = v.BindPFlag(def.ViperKey, f)
	}
}

// defaultString returns the default string value for a viper key from NewDefaultConfig.
func defaultString(viperKey string) string {
	v := viper.New()
	setViperDefaults(v)
	return v.GetString(viperKey)
}

// defaultUint returns the default uint value for a viper key from NewDefaultConfig.
func defaultUint(viperKey string) uint {
	v := viper.New()
	setViperDefaults(v)
	return v.GetUint(viperKey)
}

// defaultBool returns the default bool value for a viper key from NewDefaultConfig.
func defaultBool(viperKey string) bool {
	v := viper.New()
	setViperDefaults(v)
	return v.GetBool(viperKey)
}
