package authcmder

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/ragdesk/cmd/ragdesk/session"
	"github.com/papercomputeco/ragdesk/pkg/cliui"
	"github.com/papercomputeco/ragdesk/pkg/config"
)

const logoutLongDesc string = `Log out of the workspace.

The refresh token is revoked on the server and the local session is removed.
The local session is removed even when the server cannot be reached.`

const logoutShortDesc string = "Log out of the workspace"

func NewLogoutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logout",
		Short: logoutShortDesc,
		Long:  logoutLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLogout(cmd)
		},
	}

	config.AddClientFlags(cmd)

	return cmd
}

func runLogout(cmd *cobra.Command) error {
	s, err := session.Open(cmd, session.Options{})
	if err != nil {
		return err
	}
	defer s.Close()

	w := cmd.OutOrStdout()
	if !s.Store.Get().Authenticated() {
		fmt.Fprintf(w, "\n  %s Not logged in.\n\n", cliui.DimStyle.Render("●"))
		return nil
	}

	ctx, cancel := s.RequestContext(cmd.Context())
	defer cancel()

	if err := s.Service.Logout(ctx); err != nil {
		fmt.Fprintf(w, "\n  %s Local session removed; %v\n\n", cliui.WarnStyle.Render("!"), err)
		return nil
	}

	fmt.Fprintf(w, "\n  %s Logged out.\n\n", cliui.SuccessMark)
	return nil
}
