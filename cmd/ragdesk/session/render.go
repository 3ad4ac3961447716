package session

import (
	"fmt"
	"io"

	"github.com/papercomputeco/ragdesk/pkg/cliui"
	"github.com/papercomputeco/ragdesk/pkg/workspace"
)

// RendersMarkdown reports whether answers written to w are rendered with
// glamour. Rendering needs the whole answer, so callers that render show a
// spinner instead of streaming tokens.
func (s *Session) RendersMarkdown(w io.Writer) bool {
	return s.Config.Chat.RenderMarkdown && cliui.IsTerminal(w)
}

// Generate runs a streamed generation and writes its text to w. Plain output
// streams tokens as they arrive; rendered output waits behind a spinner and
// prints the markdown once the stream ends.
func (s *Session) Generate(w io.Writer, label string, gen func(onToken workspace.TokenFunc) (string, error)) (string, error) {
	if !s.RendersMarkdown(w) {
		text, err := gen(func(token string) {
			fmt.Fprint(w, token)
		})
		fmt.Fprintln(w)
		return text, err
	}

	var text string
	err := cliui.Step(w, label, func() error {
		var err error
		text, err = gen(nil)
		return err
	})
	if err != nil {
		return "", err
	}

	rendered, err := cliui.RenderMarkdown(text, cliui.Width(w))
	if err != nil {
		s.Logger.Debug("markdown rendering failed", "error", err)
	}
	fmt.Fprint(w, rendered)

	return text, nil
}
