// Package chatcmder provides the chat command for asking questions over the
// workspace documents.
package chatcmder

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/papercomputeco/ragdesk/cmd/ragdesk/session"
	"github.com/papercomputeco/ragdesk/pkg/cliui"
	"github.com/papercomputeco/ragdesk/pkg/config"
	"github.com/papercomputeco/ragdesk/pkg/utils"
	"github.com/papercomputeco/ragdesk/pkg/workspace"
)

var (
	userPrompt      = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true).Render("you> ")
	assistantPrompt = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Render("assistant> ")
)

const chatLongDesc string = `Chat with the workspace documents.

With a question argument the answer is printed and the command exits.
Without one an interactive session starts; type /new to start a new
conversation and /exit or Ctrl+D to quit.

The conversation id is printed after each answer; pass it with
--conversation to continue that conversation later. Use --docs to restrict
answers to some documents.

Examples:
  ragdesk chat "what is our refund policy?"
  ragdesk chat --conversation 5f2c "and for digital goods?"
  ragdesk chat --docs 3,7 --dump-stream chat.sse`

const chatShortDesc string = "Chat with the workspace documents"

const snippetWidth = 72

type chatCommander struct {
	docs           []int64
	conversationID string
	dumpStream     string

	out   io.Writer
	s     *session.Session
	state conversation
}

// conversation is the chat the next question continues. It lives only for
// the duration of the command.
type conversation struct {
	id    string
	turns int
}

func NewChatCmd() *cobra.Command {
	cmder := &chatCommander{}

	cmd := &cobra.Command{
		Use:   "chat [question]",
		Short: chatShortDesc,
		Long:  chatLongDesc,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd, strings.TrimSpace(strings.Join(args, " ")))
		},
	}

	cmd.Flags().Int64SliceVar(&cmder.docs, "docs", nil, "Restrict answers to these document IDs")
	cmd.Flags().StringVarP(&cmder.conversationID, "conversation", "c", "", "Continue this conversation")
	cmd.Flags().StringVar(&cmder.dumpStream, "dump-stream", "", "Append the raw event stream to this file")
	config.AddClientFlags(cmd)
	config.AddBoolFlag(cmd, config.ClientFlags, config.FlagMarkdown, new(bool))

	return cmd
}

func (c *chatCommander) run(cmd *cobra.Command, question string) error {
	c.out = cmd.OutOrStdout()
	c.state = conversation{id: c.conversationID}

	opts := session.Options{}
	if c.dumpStream != "" {
		f, err := os.OpenFile(c.dumpStream, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return fmt.Errorf("opening stream dump: %w", err)
		}
		defer f.Close()
		opts.StreamTap = f
	}

	s, err := session.Open(cmd, opts)
	if err != nil {
		return err
	}
	defer s.Close()
	c.s = s

	if !s.Store.Get().Authenticated() {
		return workspace.ErrNotLoggedIn
	}

	if question != "" {
		return c.ask(cmd.Context(), question)
	}

	return c.repl(cmd.Context(), session.Stdin(cmd), cmd.ErrOrStderr())
}

func (c *chatCommander) repl(ctx context.Context, in io.Reader, errOut io.Writer) error {
	watchCtx, stopWatch := context.WithCancel(ctx)
	defer stopWatch()
	c.s.Watch(watchCtx)

	fmt.Fprintln(c.out)
	if c.state.id != "" {
		fmt.Fprintf(c.out, "  %s Continuing conversation %s\n",
			cliui.SuccessMark,
			cliui.NameStyle.Render(utils.Truncate(c.state.id, 16)),
		)
	} else {
		fmt.Fprintf(c.out, "  %s New conversation\n", cliui.DimStyle.Render("●"))
	}
	if len(c.docs) > 0 {
		fmt.Fprintf(c.out, "  %s %s\n", cliui.KeyStyle.Render("Documents:"), cliui.NameStyle.Render(joinIDs(c.docs)))
	}
	fmt.Fprintf(c.out, "  %s\n\n", cliui.DimStyle.Render("Type your question and press Enter. /new starts over, /exit or Ctrl+D quits."))

	scanner := bufio.NewScanner(in)

	for {
		fmt.Fprint(c.out, userPrompt)
		if !scanner.Scan() {
			break
		}

		input := strings.TrimSpace(scanner.Text())
		switch input {
		case "":
			continue
		case "/exit":
			fmt.Fprintln(c.out)
			return nil
		case "/new":
			c.state = conversation{}
			fmt.Fprintf(c.out, "  %s New conversation\n\n", cliui.DimStyle.Render("●"))
			continue
		}

		if err := c.ask(ctx, input); err != nil {
			if errors.Is(err, workspace.ErrNotLoggedIn) || ctx.Err() != nil {
				return err
			}
			fmt.Fprintf(errOut, "  %s %v\n\n", cliui.FailMark, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	fmt.Fprintln(c.out)
	return nil
}

// ask streams one answer and moves the conversation forward.
func (c *chatCommander) ask(ctx context.Context, question string) error {
	req := workspace.ChatRequest{
		Question:       question,
		DocumentIDs:    c.docs,
		ConversationID: c.state.id,
	}

	var answer *workspace.ChatAnswer
	if !c.s.RendersMarkdown(c.out) {
		fmt.Fprint(c.out, assistantPrompt)
	}
	_, err := c.s.Generate(c.out, "Thinking", func(onToken workspace.TokenFunc) (string, error) {
		var err error
		answer, err = c.s.Service.Chat(ctx, req, onToken)
		if err != nil {
			return "", err
		}
		return answer.Answer, nil
	})
	if err != nil {
		return err
	}

	c.printSources(answer.Sources)

	c.state.id = answer.ConversationID
	c.state.turns++
	if c.state.id != "" {
		fmt.Fprintf(c.out, "  %s\n\n", cliui.DimStyle.Render(fmt.Sprintf("conversation %s, turn %d", c.state.id, c.state.turns)))
	}

	return nil
}

func (c *chatCommander) printSources(sources []workspace.Source) {
	if len(sources) == 0 {
		fmt.Fprintln(c.out)
		return
	}

	fmt.Fprintf(c.out, "\n  %s\n", cliui.KeyStyle.Render("Sources"))
	for i, src := range sources {
		fmt.Fprintf(c.out, "  %s %s %s\n",
			cliui.DimStyle.Render(fmt.Sprintf("[%d]", i+1)),
			cliui.NameStyle.Render(src.Filename),
			cliui.DimStyle.Render(utils.Truncate(oneLine(src.Content), snippetWidth)),
		)
	}
	fmt.Fprintln(c.out)
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func joinIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprint(id)
	}
	return strings.Join(parts, ", ")
}
