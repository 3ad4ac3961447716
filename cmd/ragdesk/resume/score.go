package resumecmder

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/ragdesk/cmd/ragdesk/session"
	"github.com/papercomputeco/ragdesk/pkg/cliui"
	"github.com/papercomputeco/ragdesk/pkg/config"
	"github.com/papercomputeco/ragdesk/pkg/workspace"
)

type scoreCommander struct {
	job textInput
}

func newScoreCmd() *cobra.Command {
	cmder := &scoreCommander{job: textInput{name: "job"}}

	cmd := &cobra.Command{
		Use:   "score <file>",
		Short: "Grade a resume against a job description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd, args[0])
		},
	}

	cmder.job.register(cmd, "Job description text")
	config.AddClientFlags(cmd)

	return cmd
}

func (c *scoreCommander) run(cmd *cobra.Command, path string) error {
	jd, err := c.job.read()
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	s, err := session.Open(cmd, session.Options{})
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, cancel := s.RequestContext(cmd.Context())
	defer cancel()

	score, err := s.Service.ScoreResume(ctx, path, data, jd)
	if err != nil {
		return fmt.Errorf("scoring resume: %w", err)
	}

	printScore(cmd.OutOrStdout(), score)
	return nil
}

func printScore(w io.Writer, score *workspace.ResumeScore) {
	fmt.Fprintf(w, "\n  %s %s\n", cliui.HeaderStyle.Render("Score"), cliui.NameStyle.Render(fmt.Sprintf("%.0f/100", score.Score)))

	if score.Summary != "" {
		fmt.Fprintf(w, "\n  %s\n", score.Summary)
	}

	printList(w, "Strengths", cliui.SuccessMark, score.Strengths)
	printList(w, "Gaps", cliui.WarnStyle.Render("!"), score.Gaps)
	fmt.Fprintln(w)
}

func printList(w io.Writer, title, mark string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(w, "\n  %s\n", cliui.KeyStyle.Render(title))
	for _, item := range items {
		fmt.Fprintf(w, "  %s %s\n", mark, item)
	}
}
