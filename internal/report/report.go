// Package report holds the per-host readiness report model and its renderer.
package report

// Status classifies the outcome of a single readiness check.
type Status string

const (
	StatusPass Status = "PASS"
	StatusWarn Status = "WARN"
	StatusFail Status = "FAIL"
	StatusInfo Status = "INFO"
)

// Known reports whether s is one of the four recognized statuses.
func (s Status) Known() bool {
	switch s {
	case StatusPass, StatusWarn, StatusFail, StatusInfo:
		return true
	}
	return false
}

// CheckResult is the normalized outcome of one readiness check.
// Results are immutable once appended to a report.
type CheckResult struct {
	Name    string `json:"name"`
	Status  Status `json:"status"`
	Details string `json:"details"`
}

// Report is an append-only ordered collection of check results for one
// host run. Insertion order drives display order.
type Report struct {
	results []CheckResult
}

// New creates an empty report.
func New() *Report {
	return &Report{}
}

// Append adds a result to the end of the report.
func (r *Report) Append(res CheckResult) {
	r.results = append(r.results, res)
}

// Results returns a copy of the results in insertion order.
func (r *Report) Results() []CheckResult {
	out := make([]CheckResult, len(r.results))
	copy(out, r.results)
	return out
}

// Len returns the number of results in the report.
func (r *Report) Len() int {
	return len(r.results)
}

// Partition splits the report into failures, warnings, and everything
// else. The split is stable: relative order within each slice matches
// insertion order, and recombining the three slices reconstructs the
// report exactly.
func (r *Report) Partition() (fails, warns, rest []CheckResult) {
	for _, res := range r.results {
		switch res.Status {
		case StatusFail:
			fails = append(fails, res)
		case StatusWarn:
			warns = append(warns, res)
		default:
			rest = append(rest, res)
		}
	}
	return fails, warns, rest
}

// Counts returns the number of results per status. Unrecognized
// statuses count as INFO.
func (r *Report) Counts() (pass, warn, fail, info int) {
	for _, res := range r.results {
		switch res.Status {
		case StatusPass:
			pass++
		case StatusWarn:
			warn++
		case StatusFail:
			fail++
		default:
			info++
		}
	}
	return pass, warn, fail, info
}

// Verdict reduces the report to a single overall status: FAIL if any
// check failed, WARN if any check warned, PASS otherwise.
func (r *Report) Verdict() Status {
	verdict := StatusPass
	for _, res := range r.results {
		switch res.Status {
		case StatusFail:
			return StatusFail
		case StatusWarn:
			verdict = StatusWarn
		}
	}
	return verdict
}
