package docscmder

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/papercomputeco/ragdesk/cmd/ragdesk/session"
	"github.com/papercomputeco/ragdesk/pkg/cliui"
	"github.com/papercomputeco/ragdesk/pkg/config"
	"github.com/papercomputeco/ragdesk/pkg/utils"
	"github.com/papercomputeco/ragdesk/pkg/workspace"
)

const maxNameWidth = 40

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List uploaded documents",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runList(cmd)
		},
	}

	config.AddClientFlags(cmd)

	return cmd
}

func runList(cmd *cobra.Command) error {
	s, err := session.Open(cmd, session.Options{})
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, cancel := s.RequestContext(cmd.Context())
	defer cancel()

	docs, err := s.Service.ListDocuments(ctx)
	if err != nil {
		return fmt.Errorf("listing documents: %w", err)
	}

	w := cmd.OutOrStdout()
	if len(docs) == 0 {
		fmt.Fprintf(w, "\n  %s No documents yet.\n", cliui.DimStyle.Render("●"))
		fmt.Fprintf(w, "  Use 'ragdesk docs upload <file>' to add one.\n\n")
		return nil
	}

	fmt.Fprintln(w, cliui.Table(
		[]string{"ID", "Name", "Status", "Chunks", "Size", "Uploaded"},
		documentRows(docs),
	))

	return nil
}

func documentRows(docs []workspace.Document) [][]string {
	rows := make([][]string, 0, len(docs))
	for _, d := range docs {
		size := "-"
		if d.SizeBytes > 0 {
			size = humanize.Bytes(uint64(d.SizeBytes))
		}
		uploaded := "-"
		if !d.CreatedAt.IsZero() {
			uploaded = humanize.Time(d.CreatedAt)
		}
		status := d.Status
		if status == "" {
			status = "-"
		}

		rows = append(rows, []string{
			strconv.FormatInt(d.ID, 10),
			utils.Truncate(d.Filename, maxNameWidth),
			status,
			strconv.Itoa(d.ChunkCount),
			size,
			uploaded,
		})
	}
	return rows
}
