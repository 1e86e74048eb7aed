package check

import (
	"context"
	"strconv"
	"strings"
	"time"

	units "github.com/docker/go-units"

	"github.com/jandubois/readycheck/internal/probe"
	"github.com/jandubois/readycheck/internal/report"
)

// CollectHostMeta gathers the display fields for the report header.
// Every field degrades to "unknown" when its probe fails; metadata
// collection never aborts a host run.
func CollectHostMeta(ctx context.Context, r probe.Runner, timeout time.Duration) report.HostMeta {
	meta := report.HostMeta{
		Hostname: metaValue(ctx, r, timeout, "hostname"),
		OS:       metaValue(ctx, r, timeout, `. /etc/os-release && echo "$PRETTY_NAME"`),
		Arch:     metaValue(ctx, r, timeout, "uname -m"),
		CPUs:     metaValue(ctx, r, timeout, "nproc"),
		Uptime:   metaValue(ctx, r, timeout, "uptime -p"),
	}

	meta.Memory = "unknown"
	if kbStr := metaValue(ctx, r, timeout, "awk '/^MemTotal:/ {print $2}' /proc/meminfo"); kbStr != "unknown" {
		if kb, err := strconv.ParseInt(kbStr, 10, 64); err == nil {
			meta.Memory = units.HumanSize(float64(kb) * 1024)
		}
	}

	if groups := metaValue(ctx, r, timeout, "id -Gn"); groups != "unknown" {
		meta.Groups = strings.Fields(groups)
	}

	return meta
}

func metaValue(ctx context.Context, r probe.Runner, timeout time.Duration, command string) string {
	o := r.Run(ctx, command, timeout)
	if o.ExitCode != 0 {
		return "unknown"
	}
	line := strings.TrimSpace(strings.SplitN(o.Stdout, "\n", 2)[0])
	if line == "" {
		return "unknown"
	}
	return line
}
