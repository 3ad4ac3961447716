package resumecmder

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/ragdesk/cmd/ragdesk/session"
	"github.com/papercomputeco/ragdesk/pkg/config"
	"github.com/papercomputeco/ragdesk/pkg/workspace"
)

type generateCommander struct {
	profile textInput
	job     textInput
}

func newGenerateCmd() *cobra.Command {
	cmder := &generateCommander{
		profile: textInput{name: "profile"},
		job:     textInput{name: "job"},
	}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Draft a resume for a job description",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd)
		},
	}

	cmder.profile.register(cmd, "Candidate profile text")
	cmder.job.register(cmd, "Job description text")
	config.AddClientFlags(cmd)

	return cmd
}

func (c *generateCommander) run(cmd *cobra.Command) error {
	profile, err := c.profile.read()
	if err != nil {
		return err
	}
	jd, err := c.job.read()
	if err != nil {
		return err
	}

	s, err := session.Open(cmd, session.Options{})
	if err != nil {
		return err
	}
	defer s.Close()

	req := workspace.ResumeRequest{Profile: profile, JobDescription: jd}
	_, err = s.Generate(cmd.OutOrStdout(), "Drafting resume", func(onToken workspace.TokenFunc) (string, error) {
		return s.Service.GenerateResume(cmd.Context(), req, onToken)
	})
	if err != nil {
		return fmt.Errorf("generating resume: %w", err)
	}

	return nil
}
