package sshkey

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/jandubois/readycheck/internal/probe"
	"github.com/jandubois/readycheck/internal/report"
)

// DefaultInstallPath is where the migration key lands on targets.
const DefaultInstallPath = "~/.ssh/id_migration"

// Deployer installs a normalized private key on one target host
// through its probe runner. Each step emits a check result so the
// deployment outcome renders with the same report machinery as the
// readiness battery.
type Deployer struct {
	Runner      probe.Runner
	InstallPath string
	Timeout     time.Duration
}

// Deploy validates the key and installs it, returning the step-by-step
// report. A failed step never aborts the run: the remaining steps are
// recorded as not available so every deployment report carries the
// same check names.
func (d *Deployer) Deploy(ctx context.Context, raw []byte) *report.Report {
	path := d.InstallPath
	if path == "" {
		path = DefaultInstallPath
	}

	rep := report.New()

	key, err := Normalize(raw)
	if err != nil {
		slog.Error("key validation failed", "error", err)
		rep.Append(report.CheckResult{Name: "Key Format", Status: report.StatusFail, Details: err.Error()})
		for _, name := range []string{"SSH Directory", "Key Install", "Key Verify"} {
			rep.Append(report.CheckResult{Name: name, Status: report.StatusInfo, Details: "not available"})
		}
		return rep
	}

	details := "key parses"
	if fp, err := Fingerprint(key); err == nil {
		details = fp
	}
	rep.Append(report.CheckResult{Name: "Key Format", Status: report.StatusPass, Details: details})

	steps := []struct {
		name    string
		command string
		ok      string
		bad     string
	}{
		{
			name:    "SSH Directory",
			command: "umask 077 && mkdir -p ~/.ssh && chmod 700 ~/.ssh",
			ok:      "~/.ssh present with mode 700",
			bad:     "cannot prepare ~/.ssh",
		},
		{
			name: "Key Install",
			command: fmt.Sprintf("umask 077 && cat > %s <<'READYCHECK_EOF'\n%sREADYCHECK_EOF\nchmod 600 %s",
				path, key, path),
			ok:  fmt.Sprintf("installed at %s with mode 600", path),
			bad: "cannot write key file",
		},
		{
			name:    "Key Verify",
			command: fmt.Sprintf("sha256sum %s", path),
			ok:      "checksum matches",
			bad:     "installed key does not match",
		},
	}

	digest := sha256.Sum256(key)
	wantSum := hex.EncodeToString(digest[:])

	failed := false
	for _, step := range steps {
		if failed {
			rep.Append(report.CheckResult{Name: step.name, Status: report.StatusInfo, Details: "not available"})
			continue
		}

		o := d.Runner.Run(ctx, step.command, d.Timeout)
		ok := o.ExitCode == 0
		if step.name == "Key Verify" {
			ok = ok && containsSum(o.Stdout, wantSum)
		}

		if !ok {
			slog.Warn("deployment step failed", "step", step.name, "exit_code", o.ExitCode)
			rep.Append(report.CheckResult{Name: step.name, Status: report.StatusFail, Details: step.bad})
			failed = true
			continue
		}
		rep.Append(report.CheckResult{Name: step.name, Status: report.StatusPass, Details: step.ok})
	}

	return rep
}

func containsSum(stdout, want string) bool {
	// sha256sum prints "<hex>  <path>"; match on the hex prefix only.
	return len(stdout) >= len(want) && stdout[:len(want)] == want
}
