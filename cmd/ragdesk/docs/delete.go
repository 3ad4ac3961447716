package docscmder

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/ragdesk/cmd/ragdesk/session"
	"github.com/papercomputeco/ragdesk/pkg/cliui"
	"github.com/papercomputeco/ragdesk/pkg/config"
)

func newDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "delete <id>...",
		Aliases: []string{"rm"},
		Short:   "Delete documents",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(cmd, args)
		},
	}

	config.AddClientFlags(cmd)

	return cmd
}

func runDelete(cmd *cobra.Command, args []string) error {
	ids := make([]int64, 0, len(args))
	for _, a := range args {
		id, err := strconv.ParseInt(a, 10, 64)
		if err != nil || id <= 0 {
			return fmt.Errorf("invalid document id %q", a)
		}
		ids = append(ids, id)
	}

	s, err := session.Open(cmd, session.Options{})
	if err != nil {
		return err
	}
	defer s.Close()

	w := cmd.OutOrStdout()
	fmt.Fprintln(w)

	for _, id := range ids {
		ctx, cancel := s.RequestContext(cmd.Context())
		err := s.Service.DeleteDocument(ctx, id)
		cancel()
		if err != nil {
			return fmt.Errorf("deleting document %d: %w", id, err)
		}
		fmt.Fprintf(w, "  %s Deleted document %s\n", cliui.SuccessMark, cliui.NameStyle.Render(strconv.FormatInt(id, 10)))
	}
	fmt.Fprintln(w)

	return nil
}
