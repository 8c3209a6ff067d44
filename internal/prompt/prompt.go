package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Prompter reads operator answers line by line from In.
type Prompter struct {
	in     io.Reader
	out    io.Writer
	reader *bufio.Reader
}

func New(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: in, out: out, reader: bufio.NewReader(in)}
}

// Line prints label and returns the trimmed answer. EOF with no input
// returns io.EOF.
func (p *Prompter) Line(label string) (string, error) {
	fmt.Fprint(p.out, label)
	return p.readLine()
}

// Secret reads without echo when In is a terminal, otherwise it falls back
// to a plain line read.
func (p *Prompter) Secret(label string) (string, error) {
	fmt.Fprint(p.out, label)

	if f, ok := p.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(p.out)
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(b), nil
	}

	return p.readLine()
}

// Confirm asks a yes/no question. Anything other than an affirmative answer,
// including end of input, is a refusal.
func (p *Prompter) Confirm(question string) (bool, error) {
	fmt.Fprintf(p.out, "%s (y/n): ", question)
	answer, err := p.readLine()
	if err != nil {
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(p.out)
			return false, nil
		}
		return false, err
	}
	return IsAffirmative(answer), nil
}

// IsAffirmative accepts "y" and "yes" in any case, ignoring surrounding space.
func IsAffirmative(answer string) bool {
	answer = strings.TrimSpace(strings.ToLower(answer))
	return answer == "yes" || answer == "y"
}

func (p *Prompter) readLine() (string, error) {
	line, err := p.reader.ReadString('\n')
	line = strings.TrimSpace(line)
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return line, nil
		}
		return line, err
	}
	return line, nil
}
