package check

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	units "github.com/docker/go-units"

	"github.com/jandubois/readycheck/internal/probe"
	"github.com/jandubois/readycheck/internal/report"
)

// Capability names used by battery definitions.
const (
	CapSystemd = "systemd"
	CapOpenRC  = "openrc"
	CapApt     = "apt"
	CapApk     = "apk"
	CapDocker  = "docker"  // docker client binary present
	CapDockerd = "dockerd" // docker daemon responding
)

// Capabilities records which optional host facilities are present.
type Capabilities map[string]bool

// Has reports whether the named capability is present. The empty name
// is always satisfied (unconditional checks).
func (c Capabilities) Has(name string) bool {
	return name == "" || c[name]
}

// DetectCapabilities probes the host for optional facilities that gate
// parts of the battery. The docker daemon is considered available when
// `docker info` succeeds, regardless of what the daemon process is
// called; matching on process names under-reports renamed daemons.
func DetectCapabilities(ctx context.Context, r probe.Runner, timeout time.Duration) Capabilities {
	caps := Capabilities{}

	probes := map[string]string{
		CapSystemd: "test -d /run/systemd/system",
		CapOpenRC:  "command -v rc-status",
		CapApt:     "command -v apt-get",
		CapApk:     "command -v apk",
		CapDocker:  "command -v docker",
	}
	for name, command := range probes {
		caps[name] = r.Run(ctx, command, timeout).ExitCode == 0
	}

	if caps[CapDocker] {
		caps[CapDockerd] = r.Run(ctx, "docker info", timeout).ExitCode == 0
	}

	slog.Debug("capabilities detected",
		"systemd", caps[CapSystemd],
		"openrc", caps[CapOpenRC],
		"apt", caps[CapApt],
		"apk", caps[CapApk],
		"docker", caps[CapDocker],
		"dockerd", caps[CapDockerd],
	)
	return caps
}

// Options tunes the threshold-based checks of the battery.
type Options struct {
	MinFreeGB   float64       // minimum free space on / before FAIL
	MinMemoryMB int           // minimum physical memory before WARN
	DockerImage string        // image used for the pull/run tests
	Timeout     time.Duration // per-probe deadline
}

// DefaultOptions returns the thresholds used when nothing is
// configured.
func DefaultOptions() Options {
	return Options{
		MinFreeGB:   10,
		MinMemoryMB: 1024,
		DockerImage: "alpine:3",
		Timeout:     probe.DefaultTimeout,
	}
}

// Battery returns the fixed, ordered set of readiness checks. The
// order here is the report order; the aggregator never reorders.
func Battery(opts Options) []Definition {
	return []Definition{
		// Interpreter and tooling.
		{Name: "Python3", Command: "python3 --version 2>&1",
			Classify: ExitRule(report.StatusFail, "python3 available", "python3 not found")},
		{Name: "Pip3", Command: "pip3 --version 2>&1",
			Classify: ExitRule(report.StatusWarn, "pip3 available", "pip3 not found")},
		{Name: "Curl", Command: "curl --version",
			Classify: ExitRule(report.StatusWarn, "curl available", "curl not installed")},
		{Name: "Rsync", Command: "rsync --version",
			Classify: ExitRule(report.StatusWarn, "rsync available", "rsync not installed")},
		{Name: "Tar", Command: "tar --version 2>&1",
			Classify: ExitRule(report.StatusFail, "tar available", "tar not installed")},
		{Name: "Gzip", Command: "gzip --version 2>&1",
			Classify: ExitRule(report.StatusWarn, "gzip available", "gzip not installed")},

		// Base system.
		{Name: "OS Release", Command: ". /etc/os-release && echo \"$PRETTY_NAME\"",
			Classify: osReleaseRule()},
		{Name: "Kernel", Command: "uname -r",
			Classify: ExitRule(report.StatusWarn, "kernel version unknown", "cannot determine kernel version")},
		{Name: "Architecture", Command: "uname -m",
			Classify: archRule()},
		{Name: "CPU Count", Command: "nproc",
			Classify: cpuCountRule()},
		{Name: "Memory", Command: "awk '/^MemTotal:/ {print $2}' /proc/meminfo",
			Classify: memoryRule(opts.MinMemoryMB)},
		{Name: "Swap", Command: "awk '/^SwapTotal:/ {print $2}' /proc/meminfo",
			Classify: swapRule()},
		{Name: "Root Disk Space", Command: "df -Pk / | awk 'NR==2 {print $4}'",
			Classify: diskSpaceRule(opts.MinFreeGB)},
		{Name: "Mounted Filesystems", Command: "df -P",
			Classify: LineCountRule(1, func(count int) (report.Status, string) {
				if count == 0 {
					return report.StatusWarn, "no filesystems reported"
				}
				return report.StatusPass, plural(count, "filesystem") + " mounted"
			})},
		{Name: "Uptime", Command: "uptime -p",
			Classify: InfoRule("uptime unavailable")},
		{Name: "Load Average", Command: "cat /proc/loadavg",
			Classify: InfoRule("load average unavailable")},
		{Name: "Tmp Writable", Command: "f=/tmp/.readycheck.$$; touch \"$f\" && rm -f \"$f\"",
			Classify: FixedRule(report.StatusFail, "/tmp is writable", "/tmp is not writable")},
		{Name: "CA Certificates", Command: "test -s /etc/ssl/certs/ca-certificates.crt",
			Classify: FixedRule(report.StatusWarn, "CA bundle present", "CA certificate bundle missing")},
		{Name: "Locale", Command: "locale 2>/dev/null",
			Classify: ContainsRule("UTF-8", report.StatusWarn, "UTF-8 locale active", "no UTF-8 locale configured")},

		// Network.
		{Name: "Hostname", Command: "hostname -f",
			Classify: ExitRule(report.StatusWarn, "hostname resolvable", "hostname is not fully resolvable")},
		{Name: "DNS Resolution", Command: "getent hosts deb.debian.org",
			Classify: FixedRule(report.StatusFail, "deb.debian.org resolves", "cannot resolve deb.debian.org")},
		{Name: "Outbound HTTPS", Command: "curl -fsI --max-time 10 -o /dev/null https://deb.debian.org",
			Classify: FixedRule(report.StatusWarn, "outbound HTTPS reachable", "cannot reach deb.debian.org over HTTPS")},
		{Name: "Listening Sockets", Command: "ss -tlnH",
			Classify: infoCountRule("listening socket")},

		// Services.
		{Name: "SSH Daemon", Command: "pgrep -x sshd",
			Classify: FixedRule(report.StatusFail, "sshd is running", "sshd is not running")},
		{Name: "Sudo", Command: "command -v sudo",
			Classify: ExitRule(report.StatusWarn, "sudo available", "sudo not installed")},
		{Name: "Cron", Command: "pgrep -x cron >/dev/null || pgrep -x crond >/dev/null",
			Classify: FixedRule(report.StatusWarn, "cron daemon running", "no cron daemon running")},
		{Name: "Logged-in Users", Command: "who",
			Classify: infoCountRule("active login")},

		// Init system. Exactly one branch runs per host; the other
		// resolves to INFO so the report schema stays stable.
		{Name: "Systemd State", Command: "systemctl is-system-running", Requires: CapSystemd,
			Classify: ContainsRule("running", report.StatusWarn, "system state: running", "system state degraded")},
		{Name: "Failed Units", Command: "systemctl --failed --no-legend --plain", Requires: CapSystemd,
			Classify: LineCountRule(0, func(count int) (report.Status, string) {
				if count == 0 {
					return report.StatusPass, "no failed units"
				}
				return report.StatusWarn, plural(count, "failed unit")
			})},
		{Name: "Time Sync", Command: "timedatectl status", Requires: CapSystemd,
			Classify: ContainsRule("synchronized: yes", report.StatusWarn,
				"system clock synchronized", "system clock not synchronized")},
		{Name: "OpenRC Runlevel", Command: "rc-status -r", Requires: CapOpenRC,
			Classify: ExitRule(report.StatusWarn, "runlevel unknown", "cannot determine runlevel")},

		// Packaging.
		{Name: "Package Manager", Command: "command -v apt-get || command -v apk",
			Classify: ExitRule(report.StatusFail, "package manager available", "no supported package manager (apt/apk)")},
		{Name: "APT Database", Command: "apt-get check -qq", Requires: CapApt,
			Classify: FixedRule(report.StatusWarn, "package database consistent", "apt reports broken dependencies")},
		// `apt list` prints a "Listing..." header line that must not
		// count as an upgradable package.
		{Name: "Pending Upgrades", Command: "apt list --upgradable 2>/dev/null", Requires: CapApt,
			Classify: LineCountRule(1, upgradableClassify)},
		// `apk version -l '<'` prints an "Installed:" header line.
		{Name: "APK Upgrades", Command: "apk version -l '<' 2>/dev/null", Requires: CapApk,
			Classify: LineCountRule(1, upgradableClassify)},

		// Docker. Sub-checks gate on the client binary; the functional
		// pull/run tests additionally require a responding daemon.
		{Name: "Docker Binary", Command: "command -v docker",
			Classify: ExitRule(report.StatusWarn, "docker available", "docker not installed")},
		{Name: "Docker Version", Command: "docker --version", Requires: CapDocker,
			Classify: ExitRule(report.StatusWarn, "docker version unknown", "cannot determine docker version")},
		{Name: "Docker Daemon", Command: "docker info --format '{{.ServerVersion}}'", Requires: CapDocker,
			Classify: FixedRule(report.StatusWarn, "daemon responding", "docker daemon not responding")},
		{Name: "Docker Compose", Command: "docker compose version", Requires: CapDocker,
			Classify: ExitRule(report.StatusWarn, "compose available", "docker compose not available")},
		{Name: "Docker Pull", Command: fmt.Sprintf("docker pull -q %s", opts.DockerImage), Requires: CapDockerd,
			Classify: FixedRule(report.StatusWarn, "image pull succeeded", "cannot pull test image")},
		{Name: "Docker Run", Command: fmt.Sprintf("docker run --rm %s true", opts.DockerImage), Requires: CapDockerd,
			Classify: FixedRule(report.StatusWarn, "container run succeeded", "cannot run test container")},
	}
}

// RunHost executes the full battery against one host: capabilities
// first, then every check in battery order, with gated checks
// resolving to neutral records when their capability is absent.
func RunHost(ctx context.Context, r probe.Runner, opts Options) (*report.Report, report.HostMeta, error) {
	caps := DetectCapabilities(ctx, r, opts.Timeout)
	meta := CollectHostMeta(ctx, r, opts.Timeout)

	rep := report.New()
	defs := Battery(opts)
	agg := NewAggregator(defs, rep)

	for _, def := range defs {
		outcome := probe.NotRun()
		if caps.Has(def.Requires) {
			outcome = r.Run(ctx, def.Command, opts.Timeout)
		}
		if err := agg.Apply(def.Name, outcome); err != nil {
			return nil, meta, err
		}
	}

	return rep, meta, nil
}

func upgradableClassify(count int) (report.Status, string) {
	if count == 0 {
		return report.StatusPass, "system up to date"
	}
	return report.StatusWarn, plural(count, "package") + " upgradable"
}

// infoCountRule reports a line count as an observational record; a
// failing probe degrades to "unavailable" rather than a warning.
func infoCountRule(unit string) Classifier {
	return func(o probe.Outcome) (report.Status, string) {
		if o.ExitCode != 0 {
			return report.StatusInfo, "unavailable"
		}
		return report.StatusInfo, plural(countLines(o.Stdout), unit)
	}
}

func osReleaseRule() Classifier {
	return func(o probe.Outcome) (report.Status, string) {
		if o.ExitCode == 0 {
			if name := firstLine(o.Stdout); name != "" {
				return report.StatusPass, name
			}
		}
		return report.StatusFail, "cannot determine OS release"
	}
}

func archRule() Classifier {
	return func(o probe.Outcome) (report.Status, string) {
		arch := firstLine(o.Stdout)
		if o.ExitCode != 0 || arch == "" {
			return report.StatusWarn, "cannot determine architecture"
		}
		switch arch {
		case "x86_64", "aarch64":
			return report.StatusPass, arch
		}
		return report.StatusWarn, arch + " (untested architecture)"
	}
}

func cpuCountRule() Classifier {
	return func(o probe.Outcome) (report.Status, string) {
		n, err := strconv.Atoi(firstLine(o.Stdout))
		if o.ExitCode != 0 || err != nil {
			return report.StatusWarn, "cannot determine CPU count"
		}
		if n < 2 {
			return report.StatusWarn, plural(n, "CPU") + " (2 or more recommended)"
		}
		return report.StatusPass, plural(n, "CPU")
	}
}

// memoryRule parses a MemTotal value in kilobytes.
func memoryRule(minMB int) Classifier {
	return func(o probe.Outcome) (report.Status, string) {
		kb, err := strconv.ParseInt(firstLine(o.Stdout), 10, 64)
		if o.ExitCode != 0 || err != nil {
			return report.StatusWarn, "cannot determine memory size"
		}
		human := units.HumanSize(float64(kb) * 1024)
		if kb < int64(minMB)*1024 {
			return report.StatusWarn, fmt.Sprintf("%s total (minimum %d MB)", human, minMB)
		}
		return report.StatusPass, human + " total"
	}
}

func swapRule() Classifier {
	return func(o probe.Outcome) (report.Status, string) {
		kb, err := strconv.ParseInt(firstLine(o.Stdout), 10, 64)
		if o.ExitCode != 0 || err != nil {
			return report.StatusWarn, "cannot determine swap size"
		}
		if kb == 0 {
			return report.StatusWarn, "no swap configured"
		}
		return report.StatusPass, units.HumanSize(float64(kb)*1024) + " swap"
	}
}

// diskSpaceRule parses `df -Pk` available kilobytes for /.
func diskSpaceRule(minGB float64) Classifier {
	return func(o probe.Outcome) (report.Status, string) {
		kb, err := strconv.ParseInt(firstLine(o.Stdout), 10, 64)
		if o.ExitCode != 0 || err != nil {
			return report.StatusWarn, "cannot determine free disk space"
		}
		freeBytes := float64(kb) * 1024
		human := units.HumanSize(freeBytes)
		if freeBytes < minGB*1024*1024*1024 {
			return report.StatusFail, fmt.Sprintf("%s free on / (minimum %.0f GB)", human, minGB)
		}
		return report.StatusPass, human + " free on /"
	}
}
