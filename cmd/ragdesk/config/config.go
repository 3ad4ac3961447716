// Package configcmder provides the config command for managing persistent
// ragdesk configuration stored in the .ragdesk/ directory.
package configcmder

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/ragdesk/pkg/cliui"
	"github.com/papercomputeco/ragdesk/pkg/config"
)

const configLongDesc string = `Manage persistent ragdesk configuration.

Configuration is stored as config.toml in the .ragdesk/ directory and provides
default values for command flags. CLI flags and RAGDESK_* environment
variables take precedence over config file values.

Keys use dotted notation matching the TOML section structure:
  client.api_target, client.refresh_path, client.request_timeout,
  client.single_flight_refresh, client.upload_workers,
  chat.render_markdown, auth.persist

Use subcommands to get, set, or list configuration values:
  ragdesk config set <key> <value>    Set a configuration value
  ragdesk config get <key>            Get a configuration value
  ragdesk config list                 List all configuration values

Examples:
  ragdesk config set client.api_target https://rag.example.com
  ragdesk config set client.request_timeout 30s
  ragdesk config get client.api_target
  ragdesk config list`

const configShortDesc string = "Manage persistent ragdesk configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}

func completeKeys(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return config.ValidConfigKeys(), cobra.ShellCompDirectiveNoFileComp
	}
	return nil, cobra.ShellCompDirectiveNoFileComp
}

func unknownKey(key string) error {
	return fmt.Errorf("unknown config key: %q\n\nValid keys: %s",
		key, strings.Join(config.ValidConfigKeys(), ", "))
}

func printTarget(w io.Writer, cfger *config.Configer) {
	target := cfger.GetTarget()
	if target != "" {
		fmt.Fprintf(w, "\n  %s %s\n\n",
			cliui.KeyStyle.Render("Config file:"),
			cliui.DimStyle.Render(target),
		)
	} else {
		fmt.Fprintf(w, "\n  %s\n\n", cliui.DimStyle.Render("No config file found. Using defaults."))
	}
}
