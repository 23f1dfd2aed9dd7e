package application

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Prompter reads interactive answers line by line. Once the input is
// exhausted every further question answers empty.
type Prompter struct {
	in  *bufio.Scanner
	out io.Writer
	eof bool
}

// NewPrompter wraps an input/output pair, normally stdin and stdout.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{
		in:  bufio.NewScanner(in),
		out: out,
	}
}

// Ask prints the question and returns the next trimmed input line.
func (p *Prompter) Ask(question string) string {
	fmt.Fprintln(p.out, question)
	if p.eof || !p.in.Scan() {
		p.eof = true
		return ""
	}
	return strings.TrimSpace(p.in.Text())
}

// Say writes a line to the user.
func (p *Prompter) Say(msg string) {
	fmt.Fprintln(p.out, msg)
}

// Exhausted reports whether the input has hit EOF.
func (p *Prompter) Exhausted() bool {
	return p.eof
}
