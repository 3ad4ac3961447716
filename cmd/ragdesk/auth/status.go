package authcmder

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/ragdesk/cmd/ragdesk/session"
	"github.com/papercomputeco/ragdesk/pkg/cliui"
	"github.com/papercomputeco/ragdesk/pkg/config"
	"github.com/papercomputeco/ragdesk/pkg/credentials"
)

const statusLongDesc string = `Show the current session.

Prints the logged in user and when the access token expires. With --verify
the session is checked against the server, refreshing the access token if it
has expired.`

const statusShortDesc string = "Show the current session"

const statusKeyWidth = 12

type statusCommander struct {
	verify bool
	now    func() time.Time
}

func NewStatusCmd() *cobra.Command {
	cmder := &statusCommander{now: time.Now}

	cmd := &cobra.Command{
		Use:   "status",
		Short: statusShortDesc,
		Long:  statusLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd)
		},
	}

	cmd.Flags().BoolVar(&cmder.verify, "verify", false, "Check the session against the server")
	config.AddClientFlags(cmd)

	return cmd
}

func (c *statusCommander) run(cmd *cobra.Command) error {
	s, err := session.Open(cmd, session.Options{})
	if err != nil {
		return err
	}
	defer s.Close()

	w := cmd.OutOrStdout()
	creds := s.Store.Get()

	fmt.Fprintf(w, "\n  %s\n\n", cliui.HeaderStyle.Render("Session"))
	fmt.Fprintf(w, "  %s\n", cliui.KeyValue("API", s.Config.Client.APITarget, statusKeyWidth))

	if !creds.Authenticated() {
		fmt.Fprintf(w, "  %s\n\n", cliui.KeyValue("User", "not logged in", statusKeyWidth))
		return nil
	}

	if c.verify {
		ctx, cancel := s.RequestContext(cmd.Context())
		defer cancel()

		user, err := s.Service.Me(ctx)
		if err != nil {
			return fmt.Errorf("verifying session: %w", err)
		}
		creds = s.Store.Get()
		creds.User = user
	}

	fmt.Fprintf(w, "  %s\n", cliui.KeyValue("User", displayName(creds.User), statusKeyWidth))
	fmt.Fprintf(w, "  %s\n", cliui.KeyValue("Email", creds.User.Email, statusKeyWidth))
	fmt.Fprintf(w, "  %s\n", cliui.KeyValue("User ID", strconv.FormatInt(creds.User.ID, 10), statusKeyWidth))
	fmt.Fprintf(w, "  %s\n", cliui.KeyValue("Expires", c.expiry(creds), statusKeyWidth))
	fmt.Fprintf(w, "  %s\n\n", cliui.KeyValue("Refreshable", strconv.FormatBool(creds.CanRefresh()), statusKeyWidth))

	return nil
}

func (c *statusCommander) expiry(creds credentials.Credentials) string {
	claims, err := credentials.InspectToken(creds.AccessToken)
	if err != nil || claims.ExpiresAt.IsZero() {
		return "unknown"
	}

	now := c.now()
	if claims.Expired(now) {
		return fmt.Sprintf("expired %s ago", claims.ExpiresAt.Sub(now).Abs().Round(time.Second))
	}
	return fmt.Sprintf("%s (in %s)",
		claims.ExpiresAt.Local().Format(time.RFC3339),
		claims.ExpiresAt.Sub(now).Round(time.Second),
	)
}
