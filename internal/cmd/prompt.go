package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

// Prompter collects interactive configuration from the terminal.
// Defaults shown in brackets are taken when the user hits enter.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewPrompter reads from stdin and writes prompts to stdout.
func NewPrompter() *Prompter {
	return &Prompter{in: bufio.NewReader(os.Stdin), out: os.Stdout}
}

// IsInteractive reports whether stdin is a terminal. Prompting is
// skipped entirely in non-interactive runs; missing values then fail
// validation instead of blocking on a read.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// Ask prompts for one value, returning def when the answer is empty.
func (p *Prompter) Ask(label, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(p.out, "%s [%s]: ", label, def)
	} else {
		fmt.Fprintf(p.out, "%s: ", label)
	}

	line, err := p.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	answer := strings.TrimSpace(line)
	if answer == "" {
		return def, nil
	}
	return answer, nil
}

// AskSecret prompts for a value with terminal echo disabled. The
// answer never appears on screen or in the run log.
func (p *Prompter) AskSecret(label string) (string, error) {
	fmt.Fprintf(p.out, "%s: ", label)
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(p.out)
	if err != nil {
		return "", fmt.Errorf("failed to read secret input: %w", err)
	}
	return strings.TrimSpace(string(raw)), nil
}

// AskPort prompts for a TCP port, re-prompting on non-numeric input.
func (p *Prompter) AskPort(label string, def int) (int, error) {
	for {
		answer, err := p.Ask(label, strconv.Itoa(def))
		if err != nil {
			return 0, err
		}
		port, err := strconv.Atoi(answer)
		if err != nil {
			fmt.Fprintf(p.out, "Please enter a numeric port.\n")
			continue
		}
		return port, nil
	}
}
