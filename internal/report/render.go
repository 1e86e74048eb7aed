package report

import (
	"fmt"
	"log/slog"
	"strings"
)

// HostMeta holds display-only host facts for the report header. Fields
// are opaque to the renderer; collection fills in "unknown" for
// anything it could not determine.
type HostMeta struct {
	Hostname string   `json:"hostname"`
	OS       string   `json:"os"`
	Arch     string   `json:"arch"`
	Memory   string   `json:"memory"`
	CPUs     string   `json:"cpus"`
	Uptime   string   `json:"uptime"`
	Groups   []string `json:"groups,omitempty"`
}

// Closing messages. Exactly one of these (or neither, when critical
// issues exist) terminates a rendered report.
const (
	MsgReady          = "Host is ready for migration."
	MsgReadyWithWarns = "Host is ready for migration, with warnings."
)

const (
	nameWidth = 24
	ruleWidth = 60
)

// Render produces the fixed-layout textual summary for one host.
// Output is byte-for-byte reproducible for identical inputs; the
// renderer performs no I/O beyond returning the string.
func Render(r *Report, meta HostMeta) string {
	var b strings.Builder

	rule := strings.Repeat("=", ruleWidth)
	sep := strings.Repeat("-", ruleWidth)

	b.WriteString(rule + "\n")
	b.WriteString(" MIGRATION READINESS REPORT\n")
	b.WriteString(rule + "\n")
	writeMetaLine(&b, "Host", meta.Hostname)
	writeMetaLine(&b, "OS", meta.OS)
	writeMetaLine(&b, "Arch", meta.Arch)
	writeMetaLine(&b, "Memory", meta.Memory)
	writeMetaLine(&b, "CPUs", meta.CPUs)
	writeMetaLine(&b, "Uptime", meta.Uptime)
	if len(meta.Groups) > 0 {
		writeMetaLine(&b, "Groups", strings.Join(meta.Groups, ", "))
	}
	b.WriteString(sep + "\n")

	for _, res := range r.Results() {
		status := res.Status
		if !status.Known() {
			slog.Warn("unrecognized check status, rendering as INFO",
				"check", res.Name, "status", string(status))
			status = StatusInfo
		}
		fmt.Fprintf(&b, " %-*s [%s] %s\n", nameWidth, clip(res.Name, nameWidth), status, res.Details)
	}
	b.WriteString(sep + "\n")

	pass, warn, fail, info := r.Counts()
	fmt.Fprintf(&b, "Summary: %d passed, %d warnings, %d failed, %d informational\n",
		pass, warn, fail, info)

	fails, warns, _ := r.Partition()

	if len(fails) > 0 {
		fmt.Fprintf(&b, "\nCRITICAL ISSUES (%d):\n", len(fails))
		for _, res := range fails {
			fmt.Fprintf(&b, "  - %s: %s\n", res.Name, res.Details)
		}
	}

	if len(warns) > 0 {
		fmt.Fprintf(&b, "\nWARNINGS (%d):\n", len(warns))
		for _, res := range warns {
			fmt.Fprintf(&b, "  - %s: %s\n", res.Name, res.Details)
		}
	}

	switch {
	case len(fails) > 0:
		// The critical section already signals failure.
	case len(warns) > 0:
		b.WriteString("\n" + MsgReadyWithWarns + "\n")
	default:
		b.WriteString("\n" + MsgReady + "\n")
	}

	return b.String()
}

func writeMetaLine(b *strings.Builder, label, value string) {
	if value == "" {
		value = "unknown"
	}
	fmt.Fprintf(b, " %-8s %s\n", label+":", value)
}

// clip truncates s to at most width runes.
func clip(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width])
}
