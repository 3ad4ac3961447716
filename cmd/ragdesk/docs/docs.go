// Package docscmder provides the docs command for listing, uploading and
// deleting workspace documents.
package docscmder

import (
	"github.com/spf13/cobra"
)

const docsLongDesc string = `Manage the documents chat answers are grounded on.

Use subcommands to list, upload, or delete documents:
  ragdesk docs list                   List uploaded documents
  ragdesk docs upload <file>...       Upload and index files
  ragdesk docs delete <id>...         Delete documents

Examples:
  ragdesk docs upload handbook.pdf notes/*.md --workers 4
  ragdesk docs delete 12 13`

const docsShortDesc string = "Manage workspace documents"

func NewDocsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "docs",
		Aliases: []string{"documents"},
		Short:   docsShortDesc,
		Long:    docsLongDesc,
	}

	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newUploadCmd())
	cmd.AddCommand(newDeleteCmd())

	return cmd
}
