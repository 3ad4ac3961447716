// Package ragdeskcmder
package ragdeskcmder

import (
	"github.com/spf13/cobra"

	authcmder "github.com/papercomputeco/ragdesk/cmd/ragdesk/auth"
	chatcmder "github.com/papercomputeco/ragdesk/cmd/ragdesk/chat"
	configcmder "github.com/papercomputeco/ragdesk/cmd/ragdesk/config"
	docscmder "github.com/papercomputeco/ragdesk/cmd/ragdesk/docs"
	resumecmder "github.com/papercomputeco/ragdesk/cmd/ragdesk/resume"
	sqlcmder "github.com/papercomputeco/ragdesk/cmd/ragdesk/sql"
	versioncmder "github.com/papercomputeco/ragdesk/cmd/version"
)

const ragdeskLongDesc string = `ragdesk is the command line client for a document workspace.

Log in, upload documents, and ask questions answered from them:
  ragdesk login                 Start a session
  ragdesk docs upload <file>    Upload documents for retrieval
  ragdesk chat                  Chat over your documents
  ragdesk sql <question>        Generate SQL from a question
  ragdesk resume score <file>   Grade a resume against a job description

Settings live in config.toml in the .ragdesk/ directory; see "ragdesk config".`

const ragdeskShortDesc string = "ragdesk - Document workspace client"

func NewRagdeskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "ragdesk",
		Short:        ragdeskShortDesc,
		Long:         ragdeskLongDesc,
		SilenceUsage: true,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override the .ragdesk/ directory")
	cmd.PersistentFlags().String("log-file", "", "Also write JSON debug logs to this file")

	// Add subcommands
	cmd.AddCommand(authcmder.NewLoginCmd())
	cmd.AddCommand(authcmder.NewRegisterCmd())
	cmd.AddCommand(authcmder.NewLogoutCmd())
	cmd.AddCommand(authcmder.NewStatusCmd())
	cmd.AddCommand(chatcmder.NewChatCmd())
	cmd.AddCommand(sqlcmder.NewSQLCmd())
	cmd.AddCommand(docscmder.NewDocsCmd())
	cmd.AddCommand(resumecmder.NewResumeCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
