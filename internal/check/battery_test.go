package check

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/jandubois/readycheck/internal/probe"
	"github.com/jandubois/readycheck/internal/report"
)

// fakeRunner scripts probe outcomes by command content.
type fakeRunner struct {
	respond func(command string) probe.Outcome
}

func (f *fakeRunner) Run(_ context.Context, command string, _ time.Duration) probe.Outcome {
	return f.respond(command)
}

// healthyHost answers every probe as a well-provisioned Debian host
// with a working docker daemon.
func healthyHost() *fakeRunner {
	return &fakeRunner{respond: func(command string) probe.Outcome {
		switch {
		case command == "command -v apk" || command == "command -v rc-status":
			return probe.Outcome{ExitCode: 1, Ran: true}
		case command == "df -P":
			return probe.Outcome{Stdout: "Filesystem 1024-blocks Used Available Capacity Mounted on\n/dev/sda1 100 50 50 50% /\n", Ran: true}
		case strings.Contains(command, "--failed"):
			return probe.Outcome{Stdout: "", Ran: true}
		case strings.Contains(command, "MemTotal"):
			return probe.Outcome{Stdout: "8148276\n", Ran: true}
		case strings.Contains(command, "SwapTotal"):
			return probe.Outcome{Stdout: "1048572\n", Ran: true}
		case strings.Contains(command, "df -Pk /"):
			return probe.Outcome{Stdout: "52428800\n", Ran: true}
		case strings.Contains(command, "nproc"):
			return probe.Outcome{Stdout: "4\n", Ran: true}
		case strings.Contains(command, "uname -m"):
			return probe.Outcome{Stdout: "x86_64\n", Ran: true}
		case strings.Contains(command, "timedatectl"):
			return probe.Outcome{Stdout: "System clock synchronized: yes\n", Ran: true}
		case strings.Contains(command, "is-system-running"):
			return probe.Outcome{Stdout: "running\n", Ran: true}
		case strings.Contains(command, "locale"):
			return probe.Outcome{Stdout: "LANG=C.UTF-8\n", Ran: true}
		case strings.Contains(command, "apt list"):
			return probe.Outcome{Stdout: "Listing...\n", Ran: true}
		default:
			return probe.Outcome{Stdout: "ok\n", Ran: true}
		}
	}}
}

// dockerlessHost is healthyHost without a docker binary.
func dockerlessHost() *fakeRunner {
	healthy := healthyHost()
	return &fakeRunner{respond: func(command string) probe.Outcome {
		if strings.Contains(command, "docker") {
			return probe.Outcome{ExitCode: 1, Ran: true}
		}
		return healthy.respond(command)
	}}
}

func TestBatteryNamesUnique(t *testing.T) {
	seen := make(map[string]bool)
	for _, def := range Battery(DefaultOptions()) {
		if seen[def.Name] {
			t.Errorf("duplicate check name %q", def.Name)
		}
		seen[def.Name] = true
	}
}

func TestBatteryClassifiersRegistered(t *testing.T) {
	for _, def := range Battery(DefaultOptions()) {
		if def.Classify == nil {
			t.Errorf("check %q has no classifier", def.Name)
		}
		if def.Command == "" {
			t.Errorf("check %q has no probe command", def.Name)
		}
	}
}

func TestRunHostReportOrderMatchesBattery(t *testing.T) {
	opts := DefaultOptions()
	rep, _, err := RunHost(context.Background(), healthyHost(), opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	defs := Battery(opts)
	results := rep.Results()
	if len(results) != len(defs) {
		t.Fatalf("expected %d results, got %d", len(defs), len(results))
	}
	for i, def := range defs {
		if results[i].Name != def.Name {
			t.Errorf("position %d: expected %q, got %q", i, def.Name, results[i].Name)
		}
	}
}

func TestRunHostSchemaStableWithoutDocker(t *testing.T) {
	opts := DefaultOptions()

	withDocker, _, err := RunHost(context.Background(), healthyHost(), opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	withoutDocker, _, err := RunHost(context.Background(), dockerlessHost(), opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if withDocker.Len() != withoutDocker.Len() {
		t.Fatalf("report length differs by docker presence: %d vs %d",
			withDocker.Len(), withoutDocker.Len())
	}
	for i, res := range withDocker.Results() {
		if withoutDocker.Results()[i].Name != res.Name {
			t.Errorf("position %d: names diverge: %q vs %q",
				i, res.Name, withoutDocker.Results()[i].Name)
		}
	}
}

func TestRunHostDockerAbsentSubChecksNotAvailable(t *testing.T) {
	rep, _, err := RunHost(context.Background(), dockerlessHost(), DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	gated := map[string]bool{
		"Docker Version": true,
		"Docker Daemon":  true,
		"Docker Compose": true,
		"Docker Pull":    true,
		"Docker Run":     true,
	}
	for _, res := range rep.Results() {
		if !gated[res.Name] {
			continue
		}
		if res.Status != report.StatusInfo || res.Details != NotAvailable {
			t.Errorf("%s: expected INFO/%q, got %q/%q",
				res.Name, NotAvailable, res.Status, res.Details)
		}
	}
}

func TestDetectCapabilitiesDaemonGate(t *testing.T) {
	// Docker binary present but daemon not responding: the functional
	// pull/run tests must be gated off while client checks stay on.
	healthy := healthyHost()
	r := &fakeRunner{respond: func(command string) probe.Outcome {
		if strings.Contains(command, "docker info") {
			return probe.Outcome{ExitCode: 1, Stderr: "Cannot connect to the Docker daemon\n", Ran: true}
		}
		return healthy.respond(command)
	}}

	caps := DetectCapabilities(context.Background(), r, time.Second)
	if !caps.Has(CapDocker) {
		t.Error("expected docker capability with binary present")
	}
	if caps.Has(CapDockerd) {
		t.Error("expected dockerd capability absent when docker info fails")
	}
}

func TestCapabilitiesEmptyNameAlwaysSatisfied(t *testing.T) {
	if !(Capabilities{}).Has("") {
		t.Error("unconditional checks must always run")
	}
}

func TestRunHostHealthyVerdict(t *testing.T) {
	rep, _, err := RunHost(context.Background(), healthyHost(), DefaultOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := rep.Verdict(); got != report.StatusPass && got != report.StatusWarn {
		t.Errorf("expected healthy host to pass, got %q:\n%s",
			got, report.Render(rep, report.HostMeta{}))
	}
}
