package authcmder

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// prompter reads answers from the command's input. Lines are read from one
// shared buffer so piped input can carry several answers.
type prompter struct {
	raw    io.Reader
	lines  *bufio.Reader
	out    io.Writer
	secret func(fd int) ([]byte, error)
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{
		raw:    in,
		lines:  bufio.NewReader(in),
		out:    out,
		secret: term.ReadPassword,
	}
}

// interactive reports whether input comes from a terminal.
func (p *prompter) interactive() bool {
	f, ok := p.raw.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// line prompts for a visible answer.
func (p *prompter) line(label string) (string, error) {
	if p.interactive() {
		fmt.Fprintf(p.out, "  %s: ", label)
	}

	s, err := p.lines.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && s != "") {
		if errors.Is(err, io.EOF) {
			return "", fmt.Errorf("no %s received on stdin", strings.ToLower(label))
		}
		return "", fmt.Errorf("reading stdin: %w", err)
	}

	return strings.TrimRight(s, "\r\n"), nil
}

// password reads a secret. On a terminal input is hidden; piped input is
// read one line at a time.
func (p *prompter) password(label string) (string, error) {
	if !p.interactive() {
		return p.line(label)
	}

	fmt.Fprintf(p.out, "  %s: ", label)
	f, _ := p.raw.(*os.File)
	b, err := p.secret(int(f.Fd()))
	fmt.Fprintln(p.out)
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}

	return string(b), nil
}
