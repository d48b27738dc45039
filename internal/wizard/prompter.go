// Package wizard implements the interactive configuration elicitation: a
// pull-based prompter boundary plus the strictly sequential dialogue that
// builds the backup configuration document.
package wizard

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/tis24dev/backupmon/internal/input"
	"golang.org/x/term"
)

// Prompter is the elicitation boundary. Implementations guarantee that a
// returned value already satisfies the declared constraint: YesNo only returns
// a decided answer, Input with an empty default loops until the operator
// supplies a non-empty value. The only error causes are abort/cancellation
// and I/O failure, never "invalid answer".
type Prompter interface {
	// YesNo asks a yes/no question; an empty answer selects def.
	YesNo(ctx context.Context, question string, def bool) (bool, error)

	// Input asks for free text. A non-empty def is offered and returned on an
	// empty answer; with def == "" the value is required and the prompt loops
	// internally until one is given.
	Input(ctx context.Context, question, def string) (string, error)

	// Secret asks for a value without echo.
	Secret(ctx context.Context, question string) (string, error)
}

var truthyTokens = map[string]bool{"y": true, "yes": true, "true": true, "1": true}

// ConsolePrompter implements Prompter on a terminal.
type ConsolePrompter struct {
	reader *bufio.Reader
	out    io.Writer

	// readPassword indirection for tests.
	readPassword func(int) ([]byte, error)
	passwordFd   int
}

// NewConsolePrompter returns a prompter reading stdin and writing stdout.
func NewConsolePrompter() *ConsolePrompter {
	return &ConsolePrompter{
		reader:       bufio.NewReader(os.Stdin),
		out:          os.Stdout,
		readPassword: term.ReadPassword,
		passwordFd:   int(os.Stdin.Fd()),
	}
}

// EnsureInteractive verifies stdin is a TTY; the elicitation dialogue cannot
// run against a pipe.
func EnsureInteractive() error {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return fmt.Errorf("configuration wizard requires an interactive terminal (stdin is not a TTY)")
	}
	return nil
}

func (p *ConsolePrompter) YesNo(ctx context.Context, question string, def bool) (bool, error) {
	suffix := "Y/n"
	if !def {
		suffix = "y/N"
	}
	for {
		if err := ctx.Err(); err != nil {
			return false, input.ErrAborted
		}
		fmt.Fprintf(p.out, "%s (%s): ", question, suffix)
		line, err := input.ReadLine(ctx, p.reader)
		if err != nil {
			return false, err
		}
		resp := strings.ToLower(strings.TrimSpace(line))
		if resp == "" {
			return def, nil
		}
		switch {
		case truthyTokens[resp]:
			return true, nil
		case resp == "n" || resp == "no" || resp == "false" || resp == "0":
			return false, nil
		default:
			fmt.Fprintln(p.out, "Please answer with 'y' or 'n'.")
		}
	}
}

func (p *ConsolePrompter) Input(ctx context.Context, question, def string) (string, error) {
	for {
		if err := ctx.Err(); err != nil {
			return "", input.ErrAborted
		}
		if def != "" {
			fmt.Fprintf(p.out, "%s [%s]: ", question, def)
		} else {
			fmt.Fprintf(p.out, "%s: ", question)
		}
		line, err := input.ReadLine(ctx, p.reader)
		if err != nil {
			return "", err
		}
		resp := strings.TrimSpace(line)
		if resp != "" {
			return resp, nil
		}
		if def != "" {
			return def, nil
		}
		// Required field: loop until the operator complies. Intentionally
		// unbounded, the process is interactive.
		fmt.Fprintln(p.out, "This field is required.")
	}
}

func (p *ConsolePrompter) Secret(ctx context.Context, question string) (string, error) {
	for {
		if err := ctx.Err(); err != nil {
			return "", input.ErrAborted
		}
		fmt.Fprintf(p.out, "%s: ", question)
		b, err := input.ReadPassword(ctx, p.readPassword, p.passwordFd)
		fmt.Fprintln(p.out)
		if err != nil {
			return "", err
		}
		value := strings.TrimSpace(string(b))
		if value != "" {
			return value, nil
		}
		fmt.Fprintln(p.out, "This field is required.")
	}
}
