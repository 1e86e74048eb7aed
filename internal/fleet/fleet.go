// Package fleet runs the readiness battery against multiple hosts
// concurrently. Each host run is fully independent; the only shared
// state is the result slice, indexed per host.
package fleet

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/jandubois/readycheck/internal/check"
	"github.com/jandubois/readycheck/internal/probe"
	"github.com/jandubois/readycheck/internal/report"
)

// RunnerFactory builds the probe runner for one host.
type RunnerFactory func(host string) probe.Runner

// HostResult is the finished report for one host, or the schema error
// that aborted its run.
type HostResult struct {
	Host   string
	Report *report.Report
	Meta   report.HostMeta
	Err    error
}

// Run executes the battery against every host, at most limit hosts in
// flight at once. Results come back in input order. A host that fails
// only carries its error; the other hosts are unaffected.
func Run(ctx context.Context, hosts []string, factory RunnerFactory, opts check.Options, limit int) []HostResult {
	if limit < 1 {
		limit = 1
	}

	results := make([]HostResult, len(hosts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, host := range hosts {
		i, host := i, host
		g.Go(func() error {
			slog.Info("checking host", "host", host)
			rep, meta, err := check.RunHost(gctx, factory(host), opts)
			results[i] = HostResult{Host: host, Report: rep, Meta: meta, Err: err}
			if err != nil {
				slog.Error("host check failed", "host", host, "error", err)
			}
			// Per-host errors stay in the result so the remaining
			// hosts keep running.
			return nil
		})
	}

	// The goroutines never return an error; Wait only synchronizes.
	_ = g.Wait()
	return results
}
