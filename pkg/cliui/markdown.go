package cliui

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

const defaultWrap = 80

// RenderMarkdown renders markdown for terminal display using glamour,
// wrapping at width columns (80 when width is not positive). On failure the
// content is returned unchanged together with the error.
func RenderMarkdown(content string, width int) (string, error) {
	if width <= 0 {
		width = defaultWrap
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return content, err
	}

	rendered, err := r.Render(content)
	if err != nil {
		return content, err
	}

	return strings.TrimRight(rendered, "\n") + "\n", nil
}
