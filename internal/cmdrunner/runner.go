// Package cmdrunner executes external programs, either to completion with
// captured output or detached from this process.
package cmdrunner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/AvengeMedia/automate/internal/log"
)

// Command describes one program invocation.
type Command struct {
	Name string
	Args []string
	// Dir is the working directory; empty means the current one.
	Dir string
	// Env is appended to the inherited environment.
	Env []string
}

func (c Command) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// Result is the outcome of a command that ran to completion.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

func (r Result) Success() bool {
	return r.ExitCode == 0
}

// Runner is the subprocess capability the rest of the installer depends on.
//
// Run returns an error only when the program could not be started or was
// cancelled; a non-zero exit is reported through Result.ExitCode.
//
// Detach starts a long-running program, confirms it is alive and hands it
// off. The caller receives the pid for reporting only; nothing tracks the
// process afterwards.
type Runner interface {
	Run(ctx context.Context, cmd Command) (Result, error)
	Detach(cmd Command, logPath string) (int, error)
}

// RealRunner runs commands on the host.
type RealRunner struct {
	// Stdin is attached to foreground commands so sudo can prompt.
	Stdin io.Reader
}

func NewRealRunner() *RealRunner {
	return &RealRunner{}
}

// NewInteractiveRunner attaches the terminal's stdin to every foreground command.
func NewInteractiveRunner() *RealRunner {
	return &RealRunner{Stdin: os.Stdin}
}

func (r *RealRunner) Run(ctx context.Context, c Command) (Result, error) {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}
	if r.Stdin != nil {
		cmd.Stdin = r.Stdin
	}

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	log.Debug("running command", "cmd", c.String(), "dir", c.Dir)
	err := cmd.Run()

	result := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && ctx.Err() == nil {
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		return result, err
	}

	return result, nil
}

// Output runs cmd and returns its trimmed stdout. Start failures and non-zero
// exits both come back as errors carrying the tail of stderr.
func Output(ctx context.Context, r Runner, cmd Command) (string, error) {
	res, err := r.Run(ctx, cmd)
	if err != nil {
		return "", fmt.Errorf("%s: %w", cmd.Name, err)
	}
	if !res.Success() {
		return "", &ExitError{Command: cmd.String(), Code: res.ExitCode, Stderr: tail(res.Stderr, 5)}
	}
	return strings.TrimSpace(res.Stdout), nil
}

// ExitError reports a command that ran but exited non-zero.
type ExitError struct {
	Command string
	Code    int
	Stderr  string
}

func (e *ExitError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("%s exited with status %d", e.Command, e.Code)
	}
	return fmt.Sprintf("%s exited with status %d: %s", e.Command, e.Code, e.Stderr)
}

func tail(s string, n int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}

var _ Runner = (*RealRunner)(nil)
