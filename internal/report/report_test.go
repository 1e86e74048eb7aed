package report

import (
	"reflect"
	"testing"
)

func sampleReport() *Report {
	r := New()
	r.Append(CheckResult{Name: "Python3", Status: StatusFail, Details: "not found"})
	r.Append(CheckResult{Name: "Pip3", Status: StatusWarn, Details: "pip3 not found"})
	r.Append(CheckResult{Name: "OS Release", Status: StatusPass, Details: "Debian GNU/Linux 12"})
	r.Append(CheckResult{Name: "Uptime", Status: StatusInfo, Details: "up 3 days"})
	r.Append(CheckResult{Name: "Tar", Status: StatusFail, Details: "tar not installed"})
	return r
}

func TestPartitionLaw(t *testing.T) {
	r := sampleReport()
	fails, warns, rest := r.Partition()

	if len(fails) != 2 {
		t.Errorf("expected 2 failures, got %d", len(fails))
	}
	if len(warns) != 1 {
		t.Errorf("expected 1 warning, got %d", len(warns))
	}
	if len(fails)+len(warns)+len(rest) != r.Len() {
		t.Errorf("partitions are not disjoint: %d+%d+%d != %d",
			len(fails), len(warns), len(rest), r.Len())
	}

	// Recombining in original order must reconstruct the report.
	var recombined []CheckResult
	fi, wi, ri := 0, 0, 0
	for _, res := range r.Results() {
		switch res.Status {
		case StatusFail:
			recombined = append(recombined, fails[fi])
			fi++
		case StatusWarn:
			recombined = append(recombined, warns[wi])
			wi++
		default:
			recombined = append(recombined, rest[ri])
			ri++
		}
	}
	if !reflect.DeepEqual(recombined, r.Results()) {
		t.Error("recombined partitions do not reconstruct the report")
	}
}

func TestPartitionStable(t *testing.T) {
	r := New()
	r.Append(CheckResult{Name: "A", Status: StatusFail})
	r.Append(CheckResult{Name: "B", Status: StatusFail})
	r.Append(CheckResult{Name: "C", Status: StatusWarn})
	r.Append(CheckResult{Name: "D", Status: StatusWarn})

	fails, warns, _ := r.Partition()
	if fails[0].Name != "A" || fails[1].Name != "B" {
		t.Errorf("failure order not preserved: %v", fails)
	}
	if warns[0].Name != "C" || warns[1].Name != "D" {
		t.Errorf("warning order not preserved: %v", warns)
	}
}

func TestCounts(t *testing.T) {
	pass, warn, fail, info := sampleReport().Counts()
	if pass != 1 || warn != 1 || fail != 2 || info != 1 {
		t.Errorf("unexpected counts: pass=%d warn=%d fail=%d info=%d", pass, warn, fail, info)
	}
}

func TestCountsUnknownStatusIsInfo(t *testing.T) {
	r := New()
	r.Append(CheckResult{Name: "A", Status: Status("BOGUS")})
	_, _, _, info := r.Counts()
	if info != 1 {
		t.Errorf("expected unknown status to count as info, got info=%d", info)
	}
}

func TestVerdict(t *testing.T) {
	tests := []struct {
		name     string
		statuses []Status
		want     Status
	}{
		{"all pass", []Status{StatusPass, StatusPass}, StatusPass},
		{"empty", nil, StatusPass},
		{"warn wins over pass", []Status{StatusPass, StatusWarn}, StatusWarn},
		{"fail wins over warn", []Status{StatusWarn, StatusFail}, StatusFail},
		{"info does not warn", []Status{StatusPass, StatusInfo}, StatusPass},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New()
			for i, s := range tt.statuses {
				r.Append(CheckResult{Name: string(rune('A' + i)), Status: s})
			}
			if got := r.Verdict(); got != tt.want {
				t.Errorf("expected verdict %q, got %q", tt.want, got)
			}
		})
	}
}

func TestResultsReturnsCopy(t *testing.T) {
	r := sampleReport()
	results := r.Results()
	results[0].Name = "mutated"
	if r.Results()[0].Name != "Python3" {
		t.Error("mutating the returned slice changed the report")
	}
}

func TestStatusKnown(t *testing.T) {
	for _, s := range []Status{StatusPass, StatusWarn, StatusFail, StatusInfo} {
		if !s.Known() {
			t.Errorf("expected %q to be known", s)
		}
	}
	if Status("CRITICAL").Known() {
		t.Error("expected CRITICAL to be unknown")
	}
}
