package authcmder

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/ragdesk/cmd/ragdesk/session"
	"github.com/papercomputeco/ragdesk/pkg/config"
)

const registerLongDesc string = `Create a workspace account and log in.

On a terminal the password is asked twice. Piped input supplies the
password on its first line.

Examples:
  ragdesk register --email ada@example.com --name "Ada Lovelace"`

const registerShortDesc string = "Create a workspace account"

const minPasswordLen = 8

type registerCommander struct {
	email string
	name  string
}

func NewRegisterCmd() *cobra.Command {
	cmder := &registerCommander{}

	cmd := &cobra.Command{
		Use:   "register",
		Short: registerShortDesc,
		Long:  registerLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd)
		},
	}

	cmd.Flags().StringVarP(&cmder.email, "email", "e", "", "Account email (prompted when empty)")
	cmd.Flags().StringVarP(&cmder.name, "name", "n", "", "Display name")
	config.AddClientFlags(cmd)

	return cmd
}

func (c *registerCommander) run(cmd *cobra.Command) error {
	p := newPrompter(session.Stdin(cmd), cmd.OutOrStdout())

	email, err := askEmail(p, c.email)
	if err != nil {
		return err
	}

	password, err := p.password("Password")
	if err != nil {
		return err
	}
	if len(password) < minPasswordLen {
		return fmt.Errorf("password must be at least %d characters", minPasswordLen)
	}

	if p.interactive() {
		confirm, err := p.password("Confirm password")
		if err != nil {
			return err
		}
		if confirm != password {
			return errors.New("passwords do not match")
		}
	}

	s, err := session.Open(cmd, session.Options{})
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, cancel := s.RequestContext(cmd.Context())
	defer cancel()

	user, err := s.Service.Register(ctx, email, password, c.name)
	if err != nil {
		return fmt.Errorf("registering: %w", err)
	}

	printLoggedIn(cmd.OutOrStdout(), "Registered", user, s)
	return nil
}
