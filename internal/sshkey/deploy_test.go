package sshkey

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"testing"
	"time"

	"github.com/jandubois/readycheck/internal/probe"
	"github.com/jandubois/readycheck/internal/report"
)

// scriptedRunner records commands and answers them via respond.
type scriptedRunner struct {
	commands []string
	respond  func(command string) probe.Outcome
}

func (s *scriptedRunner) Run(_ context.Context, command string, _ time.Duration) probe.Outcome {
	s.commands = append(s.commands, command)
	return s.respond(command)
}

func deployStepNames(rep *report.Report) []string {
	var names []string
	for _, res := range rep.Results() {
		names = append(names, res.Name)
	}
	return names
}

func TestDeploySuccess(t *testing.T) {
	raw := testKey(t)
	key, err := Normalize(raw)
	if err != nil {
		t.Fatal(err)
	}
	digest := sha256.Sum256(key)
	sum := hex.EncodeToString(digest[:])

	r := &scriptedRunner{respond: func(command string) probe.Outcome {
		if strings.HasPrefix(command, "sha256sum") {
			return probe.Outcome{Stdout: sum + "  /home/migrate/.ssh/id_migration\n", Ran: true}
		}
		return probe.Outcome{Ran: true}
	}}

	d := &Deployer{Runner: r, Timeout: time.Second}
	rep := d.Deploy(context.Background(), raw)

	if got := rep.Verdict(); got != report.StatusPass {
		t.Fatalf("expected PASS verdict, got %q:\n%s", got, report.Render(rep, report.HostMeta{}))
	}

	want := []string{"Key Format", "SSH Directory", "Key Install", "Key Verify"}
	got := deployStepNames(rep)
	if len(got) != len(want) {
		t.Fatalf("expected %d steps, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("step %d: expected %q, got %q", i, want[i], got[i])
		}
	}

	// The key must travel to the target with its normalized form.
	var installCmd string
	for _, c := range r.commands {
		if strings.Contains(c, "READYCHECK_EOF") {
			installCmd = c
		}
	}
	if installCmd == "" {
		t.Fatal("expected a heredoc install command")
	}
	if !strings.Contains(installCmd, string(bytes.TrimSpace(key))) {
		t.Error("install command does not carry the key material")
	}
	if !strings.Contains(installCmd, "chmod 600") {
		t.Error("expected key file mode 600")
	}
}

func TestDeployInvalidKey(t *testing.T) {
	r := &scriptedRunner{respond: func(string) probe.Outcome {
		t.Error("no remote command should run for an invalid key")
		return probe.Outcome{Ran: true}
	}}

	d := &Deployer{Runner: r, Timeout: time.Second}
	rep := d.Deploy(context.Background(), []byte("garbage"))

	results := rep.Results()
	if results[0].Name != "Key Format" || results[0].Status != report.StatusFail {
		t.Errorf("expected Key Format failure first, got %+v", results[0])
	}
	for _, res := range results[1:] {
		if res.Status != report.StatusInfo || res.Details != "not available" {
			t.Errorf("%s: expected INFO/not available, got %q/%q", res.Name, res.Status, res.Details)
		}
	}
}

func TestDeployStepFailureSkipsRest(t *testing.T) {
	raw := testKey(t)
	r := &scriptedRunner{respond: func(command string) probe.Outcome {
		if strings.Contains(command, "mkdir") {
			return probe.Outcome{ExitCode: 1, Stderr: "permission denied\n", Ran: true}
		}
		return probe.Outcome{Ran: true}
	}}

	d := &Deployer{Runner: r, Timeout: time.Second}
	rep := d.Deploy(context.Background(), raw)

	results := rep.Results()
	if results[1].Name != "SSH Directory" || results[1].Status != report.StatusFail {
		t.Errorf("expected SSH Directory failure, got %+v", results[1])
	}
	for _, res := range results[2:] {
		if res.Status != report.StatusInfo {
			t.Errorf("%s: expected remaining steps not available, got %q", res.Name, res.Status)
		}
	}
	// The run must stop issuing remote commands after the failure.
	if len(r.commands) != 1 {
		t.Errorf("expected exactly one remote command, got %d: %v", len(r.commands), r.commands)
	}
}

func TestDeployVerifyChecksumMismatch(t *testing.T) {
	raw := testKey(t)
	r := &scriptedRunner{respond: func(command string) probe.Outcome {
		if strings.HasPrefix(command, "sha256sum") {
			return probe.Outcome{Stdout: strings.Repeat("0", 64) + "  /root/.ssh/id_migration\n", Ran: true}
		}
		return probe.Outcome{Ran: true}
	}}

	d := &Deployer{Runner: r, Timeout: time.Second}
	rep := d.Deploy(context.Background(), raw)

	if rep.Verdict() != report.StatusFail {
		t.Errorf("expected FAIL on checksum mismatch, got %q", rep.Verdict())
	}
	last := rep.Results()[3]
	if last.Name != "Key Verify" || last.Status != report.StatusFail {
		t.Errorf("expected Key Verify failure, got %+v", last)
	}
}
