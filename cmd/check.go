package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jandubois/readycheck/internal/config"
	"github.com/jandubois/readycheck/internal/db"
	"github.com/jandubois/readycheck/internal/fleet"
	"github.com/jandubois/readycheck/internal/probe"
	"github.com/jandubois/readycheck/internal/report"
)

var checkCmd = &cobra.Command{
	Use:   "check [host...]",
	Short: "Run the readiness battery against target hosts",
	Long: `Check runs the full battery of read-only diagnostic probes against
each target host over ssh and prints a readiness report per host.

Hosts come from the command line, the config file, or default to the
local machine. The process exits non-zero when any host has a critical
issue.`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().Bool("save", false, "Persist reports to the database")
	checkCmd.Flags().Bool("local", false, "Check the local machine instead of remote hosts")
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	save, _ := cmd.Flags().GetBool("save")
	local, _ := cmd.Flags().GetBool("local")

	hosts := args
	if len(hosts) == 0 {
		hosts = cfg.Hosts
	}
	if len(hosts) == 0 {
		local = true
	}

	factory := func(host string) probe.Runner {
		return probe.NewSSHRunner(host, cfg.SSHUser, cfg.SSHOptions)
	}
	if local {
		hosts = []string{"localhost"}
		factory = func(string) probe.Runner { return probe.NewLocalRunner() }
	}

	results := fleet.Run(cmd.Context(), hosts, factory, cfg.CheckOptions(), cfg.MaxConcurrent)

	var store *db.DB
	if save {
		path := getDatabasePath()
		if err := db.RunMigrations(path); err != nil {
			return fmt.Errorf("prepare database: %w", err)
		}
		var err error
		store, err = db.Connect(cmd.Context(), path)
		if err != nil {
			return err
		}
		defer store.Close()
	}

	anyFail := false
	for _, res := range results {
		if res.Err != nil {
			// A schema inconsistency is a programming error, not a
			// host condition; surface it immediately.
			return fmt.Errorf("host %s: %w", res.Host, res.Err)
		}

		fmt.Print(colorizeReport(report.Render(res.Report, res.Meta)))
		fmt.Println()

		if res.Report.Verdict() == report.StatusFail {
			anyFail = true
		}

		if store != nil {
			id, err := store.SaveReport(cmd.Context(), res.Host, res.Report, res.Meta)
			if err != nil {
				return fmt.Errorf("save report for %s: %w", res.Host, err)
			}
			slog.Info("report saved", "host", res.Host, "report_id", id)
		}
	}

	if anyFail {
		os.Exit(1)
	}
	return nil
}
