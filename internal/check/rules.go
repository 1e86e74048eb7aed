package check

import (
	"fmt"
	"strings"

	"github.com/jandubois/readycheck/internal/probe"
	"github.com/jandubois/readycheck/internal/report"
)

// ExitRule classifies on exit code alone. Exit 0 yields PASS with the
// first stdout line as details (okDetail when output is empty); any
// other code yields failStatus with failDetail. The severity choice
// encodes whether the probe is essential (FAIL) or advisory (WARN).
func ExitRule(failStatus report.Status, okDetail, failDetail string) Classifier {
	return func(o probe.Outcome) (report.Status, string) {
		if o.ExitCode == 0 {
			if line := firstLine(o.Stdout); line != "" {
				return report.StatusPass, line
			}
			return report.StatusPass, okDetail
		}
		return failStatus, failDetail
	}
}

// FixedRule is ExitRule with fixed PASS details instead of probe
// output. Useful when the probe's stdout is noise.
func FixedRule(failStatus report.Status, okDetail, failDetail string) Classifier {
	return func(o probe.Outcome) (report.Status, string) {
		if o.ExitCode == 0 {
			return report.StatusPass, okDetail
		}
		return failStatus, failDetail
	}
}

// ContainsRule passes when the probe exited 0 and its stdout contains
// want; otherwise it yields failStatus with failDetail.
func ContainsRule(want string, failStatus report.Status, okDetail, failDetail string) Classifier {
	return func(o probe.Outcome) (report.Status, string) {
		if o.ExitCode == 0 && strings.Contains(o.Stdout, want) {
			return report.StatusPass, okDetail
		}
		return failStatus, failDetail
	}
}

// LineCountRule counts stdout lines after discarding header leading
// lines (tabular commands print a header row that must not count).
// The classified result is classify(count), so callers decide what a
// given count means.
func LineCountRule(header int, classify func(count int) (report.Status, string)) Classifier {
	return func(o probe.Outcome) (report.Status, string) {
		if o.ExitCode != 0 {
			return report.StatusWarn, "command failed: " + firstLine(o.Stderr)
		}
		count := countLines(o.Stdout) - header
		if count < 0 {
			count = 0
		}
		return classify(count)
	}
}

// InfoRule always classifies as INFO, carrying the first stdout line
// (or fallback) as details. Used for purely observational probes.
func InfoRule(fallback string) Classifier {
	return func(o probe.Outcome) (report.Status, string) {
		if o.ExitCode == 0 {
			if line := firstLine(o.Stdout); line != "" {
				return report.StatusInfo, line
			}
		}
		return report.StatusInfo, fallback
	}
}

// firstLine returns the first non-empty line of s, trimmed.
func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

// countLines counts non-empty lines in s.
func countLines(s string) int {
	count := 0
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) != "" {
			count++
		}
	}
	return count
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
