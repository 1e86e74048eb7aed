package probe

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os/exec"
	"time"
)

// DefaultTimeout bounds probes that did not specify their own.
const DefaultTimeout = 30 * time.Second

// LocalRunner executes probe commands as local subprocesses.
type LocalRunner struct {
	Shell string // defaults to /bin/sh
}

// NewLocalRunner creates a runner that executes commands via /bin/sh.
func NewLocalRunner() *LocalRunner {
	return &LocalRunner{Shell: "/bin/sh"}
}

// Run executes command with a deadline and captures its output.
func (r *LocalRunner) Run(ctx context.Context, command string, timeout time.Duration) Outcome {
	shell := r.Shell
	if shell == "" {
		shell = "/bin/sh"
	}
	return runCommand(ctx, timeout, shell, "-c", command)
}

func runCommand(ctx context.Context, timeout time.Duration, name string, args ...string) Outcome {
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(timeoutCtx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	outcome := Outcome{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
		Ran:    true,
	}

	if err != nil {
		if timeoutCtx.Err() == context.DeadlineExceeded {
			slog.Debug("probe timed out", "timeout", timeout)
			outcome.ExitCode = ExitTimeout
			outcome.Stderr = "command timed out after " + timeout.String()
			return outcome
		}

		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			outcome.ExitCode = exitErr.ExitCode()
			return outcome
		}

		// Could not start the process at all.
		outcome.ExitCode = ExitExecFailure
		if outcome.Stderr == "" {
			outcome.Stderr = err.Error()
		}
		return outcome
	}

	return outcome
}
