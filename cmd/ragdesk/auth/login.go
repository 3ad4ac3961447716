// Package authcmder provides the login, register, logout and status commands
// that manage the workspace session.
package authcmder

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/ragdesk/cmd/ragdesk/session"
	"github.com/papercomputeco/ragdesk/pkg/cliui"
	"github.com/papercomputeco/ragdesk/pkg/config"
	"github.com/papercomputeco/ragdesk/pkg/credentials"
)

const loginLongDesc string = `Log in to the workspace.

The password is read with hidden input on a terminal, or from the first line
of stdin when piped. The session is stored in credentials.toml in the
.ragdesk/ directory unless auth.persist is false, and is refreshed
automatically when the access token expires.

Examples:
  ragdesk login --email ada@example.com
  echo "$PASSWORD" | ragdesk login --email ada@example.com
  ragdesk login --api-target https://rag.example.com`

const loginShortDesc string = "Log in to the workspace"

type loginCommander struct {
	email string
}

func NewLoginCmd() *cobra.Command {
	cmder := &loginCommander{}

	cmd := &cobra.Command{
		Use:   "login",
		Short: loginShortDesc,
		Long:  loginLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd)
		},
	}

	cmd.Flags().StringVarP(&cmder.email, "email", "e", "", "Account email (prompted when empty)")
	config.AddClientFlags(cmd)

	return cmd
}

func (c *loginCommander) run(cmd *cobra.Command) error {
	p := newPrompter(session.Stdin(cmd), cmd.OutOrStdout())

	email, err := askEmail(p, c.email)
	if err != nil {
		return err
	}

	password, err := p.password("Password")
	if err != nil {
		return err
	}
	if password == "" {
		return errors.New("password cannot be empty")
	}

	s, err := session.Open(cmd, session.Options{})
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, cancel := s.RequestContext(cmd.Context())
	defer cancel()

	user, err := s.Service.Login(ctx, email, password)
	if err != nil {
		return fmt.Errorf("logging in: %w", err)
	}

	printLoggedIn(cmd.OutOrStdout(), "Logged in as", user, s)
	return nil
}

func askEmail(p *prompter, flagValue string) (string, error) {
	email := strings.TrimSpace(flagValue)
	if email != "" {
		return email, nil
	}

	email, err := p.line("Email")
	if err != nil {
		return "", err
	}

	email = strings.TrimSpace(email)
	if email == "" {
		return "", errors.New("email cannot be empty")
	}
	return email, nil
}

func printLoggedIn(w io.Writer, verb string, user *credentials.User, s *session.Session) {
	fmt.Fprintf(w, "\n  %s %s %s %s\n",
		cliui.SuccessMark,
		verb,
		cliui.NameStyle.Render(displayName(user)),
		cliui.DimStyle.Render("<"+user.Email+">"),
	)

	if s.Manager != nil {
		fmt.Fprintf(w, "  %s\n\n", cliui.DimStyle.Render("Session stored in "+s.Manager.GetTarget()))
	} else {
		fmt.Fprintf(w, "  %s Session not persisted (auth.persist is false)\n\n", cliui.WarnStyle.Render("!"))
	}
}

func displayName(user *credentials.User) string {
	if user.Name != "" {
		return user.Name
	}
	return user.Email
}
