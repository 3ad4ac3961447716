// Package resumecmder provides the resume command for scoring resumes against
// job descriptions and drafting new ones.
package resumecmder

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

const resumeLongDesc string = `Score and generate resumes.

Use subcommands:
  ragdesk resume score <file>         Grade a resume against a job description
  ragdesk resume generate             Draft a resume from a profile

The job description is given with --job, or read from a file with --job-file.

Examples:
  ragdesk resume score cv.pdf --job-file posting.txt
  ragdesk resume generate --profile-file me.md --job "Senior Go engineer"`

const resumeShortDesc string = "Score and generate resumes"

func NewResumeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resume",
		Short: resumeShortDesc,
		Long:  resumeLongDesc,
	}

	cmd.AddCommand(newScoreCmd())
	cmd.AddCommand(newGenerateCmd())

	return cmd
}

// textInput is text given inline or by file.
type textInput struct {
	name   string
	inline string
	path   string
}

func (t textInput) read() (string, error) {
	if t.inline != "" && t.path != "" {
		return "", fmt.Errorf("use only one of --%s and --%s-file", t.name, t.name)
	}

	text := t.inline
	if t.path != "" {
		data, err := os.ReadFile(t.path)
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", t.path, err)
		}
		text = string(data)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", errors.New("--" + t.name + " or --" + t.name + "-file is required")
	}
	return text, nil
}

func (t *textInput) register(cmd *cobra.Command, usage string) {
	cmd.Flags().StringVar(&t.inline, t.name, "", usage)
	cmd.Flags().StringVar(&t.path, t.name+"-file", "", "Read the "+t.name+" from a file")
}
