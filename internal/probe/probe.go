// Package probe executes read-only diagnostic commands against a host
// and reports their raw outcomes.
package probe

import (
	"context"
	"time"
)

// Exit codes used for outcomes that never produced a real exit status.
const (
	ExitTimeout     = 124 // command exceeded its deadline
	ExitExecFailure = 127 // command could not be started
	ExitUnreachable = 255 // ssh transport failure
)

// Outcome is the raw result of one probe command. A non-zero exit code
// is data, not a fault: classification decides what it means.
type Outcome struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Ran      bool
}

// NotRun returns the outcome for a probe that was never executed,
// e.g. because a required capability is absent on the host.
func NotRun() Outcome {
	return Outcome{Ran: false}
}

// Runner executes a shell command on some target and reports its
// outcome. Run never returns an error: execution failures are encoded
// in the outcome itself.
type Runner interface {
	Run(ctx context.Context, command string, timeout time.Duration) Outcome
}
