package prompt

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/melih/dockship/internal/core/domain"
)

// Terminal asks questions on out and reads answers from in. It blocks until
// a line arrives.
type Terminal struct {
	in  *bufio.Reader
	out io.Writer
}

func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{in: bufio.NewReader(in), out: out}
}

// Confirm returns true for y/yes in any case. End of input counts as no.
func (t *Terminal) Confirm(_ context.Context, q domain.Question) (bool, error) {
	fmt.Fprintf(t.out, "%s [y/n] ", q)

	response, err := t.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	return IsYes(response), nil
}

// IsYes reports whether an answer is affirmative.
func IsYes(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

// Fixed answers every question the same way. It backs non-interactive
// callers such as --yes and the HTTP API.
type Fixed bool

func (f Fixed) Confirm(context.Context, domain.Question) (bool, error) {
	return bool(f), nil
}
