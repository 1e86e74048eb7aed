package probe

import (
	"context"
	"time"
)

// SSHRunner executes probe commands on a remote host by shelling out
// to the system ssh client. BatchMode keeps the run non-interactive;
// an unreachable host surfaces as exit code 255 on every probe, which
// classification treats as data like any other failure.
type SSHRunner struct {
	Host    string
	User    string   // empty means the ssh default for the host
	Options []string // extra -o options, e.g. "ConnectTimeout=10"
}

// NewSSHRunner creates a runner targeting user@host.
func NewSSHRunner(host, user string, options []string) *SSHRunner {
	return &SSHRunner{Host: host, User: user, Options: options}
}

// Run executes command on the remote host.
func (r *SSHRunner) Run(ctx context.Context, command string, timeout time.Duration) Outcome {
	args := []string{"-o", "BatchMode=yes", "-o", "ConnectTimeout=10"}
	for _, opt := range r.Options {
		args = append(args, "-o", opt)
	}

	target := r.Host
	if r.User != "" {
		target = r.User + "@" + r.Host
	}
	args = append(args, target, "--", command)

	return runCommand(ctx, timeout, "ssh", args...)
}
