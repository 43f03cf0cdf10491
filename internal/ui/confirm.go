package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Prompter asks questions on a terminal.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewPrompter reads answers from in and writes prompts to out.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

var stdPrompter = NewPrompter(os.Stdin, os.Stdout)

// Confirm asks a yes/no question. Anything but y/yes is no.
func (p *Prompter) Confirm(prompt string) bool {
	fmt.Fprintf(p.out, "%s [y/N]: ", StyleWarning.Render(prompt))
	return isYes(p.readLine())
}

// ConfirmDanger is Confirm styled for destructive actions.
func (p *Prompter) ConfirmDanger(prompt string) bool {
	fmt.Fprintf(p.out, "%s [y/N]: ", StyleError.Render("⚠ "+prompt))
	return isYes(p.readLine())
}

// Input asks for a line of text and returns it trimmed. An empty answer
// yields def.
func (p *Prompter) Input(prompt, def string) string {
	if def != "" {
		fmt.Fprintf(p.out, "%s %s: ", StyleValue.Render(prompt), StyleMeta.Render("["+def+"]"))
	} else {
		fmt.Fprintf(p.out, "%s: ", StyleValue.Render(prompt))
	}
	if line := p.readLine(); line != "" {
		return line
	}
	return def
}

func (p *Prompter) readLine() string {
	line, _ := p.in.ReadString('\n')
	return strings.TrimSpace(line)
}

func isYes(s string) bool {
	s = strings.ToLower(s)
	return s == "y" || s == "yes"
}

// Confirm prompts on stdin/stdout.
func Confirm(prompt string) bool { return stdPrompter.Confirm(prompt) }

// ConfirmDanger prompts on stdin/stdout with the error color.
func ConfirmDanger(prompt string) bool { return stdPrompter.ConfirmDanger(prompt) }

// PromptInput reads a line from stdin.
func PromptInput(prompt, def string) string { return stdPrompter.Input(prompt, def) }
