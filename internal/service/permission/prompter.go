package permission

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
)

// Prompter asks the user whether notifications are allowed.
type Prompter interface {
	Ask(ctx context.Context) (bool, error)
}

// Static answers every prompt the same way.
type Static struct {
	Grant bool
}

// Ask returns the configured answer.
func (s Static) Ask(context.Context) (bool, error) {
	return s.Grant, nil
}

// promptText is written before reading the answer.
const promptText = "Allow notifications? [y/N]: "

// errNoAnswer is returned when the input ends before an answer is read.
var errNoAnswer = errors.New("no answer")

// Terminal asks on a line-oriented terminal. Prompts are serialized.
type Terminal struct {
	mu  sync.Mutex
	in  *bufio.Reader
	out io.Writer
}

// NewTerminal returns a prompter reading answers from in and writing the question to out.
func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{
		in:  bufio.NewReader(in),
		out: out,
	}
}

// Ask writes the question and reads one line. Only "y" and "yes" grant.
func (t *Terminal) Ask(ctx context.Context) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return false, err
	}

	if _, err := io.WriteString(t.out, promptText); err != nil {
		return false, fmt.Errorf("write prompt: %w", err)
	}

	line, err := t.in.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		if errors.Is(err, io.EOF) {
			return false, errNoAnswer
		}

		return false, fmt.Errorf("read answer: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
