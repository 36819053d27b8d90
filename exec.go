package pluginbuild

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/magefile/mage/sh"
	"github.com/rotisserie/eris"
	"mvdan.cc/sh/v3/syntax"
)

// CommandRunner runs one external command to completion.
//
// Run blocks until the child exits. A child that ran but exited with a
// non-zero status is reported as *ExitError; any other error (the command
// could not be started, the context was canceled) means the run can't go on.
type CommandRunner interface {
	Run(ctx context.Context, dir, name string, args ...string) error
}

// ExitError reports a child process that exited with a non-zero status.
type ExitError struct {
	Command string
	Status  int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s exited with status %d", e.Command, e.Status)
}

// ExecRunner runs commands with os/exec, forwarding their output.
type ExecRunner struct {
	Stdout io.Writer
	Stderr io.Writer
}

// NewExecRunner creates a runner writing child output to the config's
// writers, falling back to the process' own stdout and stderr.
func NewExecRunner(config *BuildConfig) *ExecRunner {
	runner := &ExecRunner{Stdout: os.Stdout, Stderr: os.Stderr}
	if config.Stdout != nil {
		runner.Stdout = config.Stdout
	}
	if config.Stderr != nil {
		runner.Stderr = config.Stderr
	}
	return runner
}

// Run executes name with args inside dir.
func (r *ExecRunner) Run(ctx context.Context, dir, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr

	log(ctx).Debug().
		Str("path", dir).
		Msgf("Running: %s", FormatCommand(name, args...))

	err := cmd.Run()
	if err == nil {
		return nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	if !sh.CmdRan(err) {
		return eris.Wrapf(err, "failed to run %s", name)
	}

	return &ExitError{Command: name, Status: sh.ExitStatus(err)}
}

// DryRunner logs every command instead of running it.
type DryRunner struct{}

// Run logs the command line and reports success.
func (DryRunner) Run(ctx context.Context, dir, name string, args ...string) error {
	log(ctx).Info().
		Bool("command", true).
		Str("path", dir).
		Msg(FormatCommand(name, args...))
	return ctx.Err()
}

// FormatCommand renders a command line the way it would be typed into a
// POSIX shell.
func FormatCommand(name string, args ...string) string {
	parts := make([]string, 0, len(args)+1)
	for _, item := range append([]string{name}, args...) {
		quoted, err := syntax.Quote(item, syntax.LangBash)
		if err != nil {
			quoted = fmt.Sprintf("%q", item)
		}
		parts = append(parts, quoted)
	}
	return strings.Join(parts, " ")
}
