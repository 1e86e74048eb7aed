package cmd

import (
	"strings"

	"github.com/fatih/color"

	"github.com/jandubois/readycheck/internal/report"
)

var statusColors = map[report.Status]*color.Color{
	report.StatusPass: color.New(color.FgGreen),
	report.StatusWarn: color.New(color.FgYellow),
	report.StatusFail: color.New(color.FgRed),
	report.StatusInfo: color.New(color.FgCyan),
}

// colorizeReport applies terminal colors to the status tags of a
// rendered report. The renderer itself stays plain so its output is
// byte-for-byte reproducible; color is strictly a display concern.
func colorizeReport(rendered string) string {
	for status, c := range statusColors {
		tag := "[" + string(status) + "]"
		rendered = strings.ReplaceAll(rendered, tag, c.Sprint(tag))
	}
	return rendered
}

// colorizeVerdict colors a bare verdict string for tabular output.
func colorizeVerdict(verdict report.Status) string {
	if c, ok := statusColors[verdict]; ok {
		return c.Sprint(string(verdict))
	}
	return string(verdict)
}
