package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jandubois/readycheck/internal/config"
	"github.com/jandubois/readycheck/internal/probe"
	"github.com/jandubois/readycheck/internal/report"
	"github.com/jandubois/readycheck/internal/sshkey"
)

var deployKeyCmd = &cobra.Command{
	Use:   "deploy-key [host...]",
	Short: "Deploy the migration SSH private key to target hosts",
	Long: `Deploy-key validates and normalizes the given private key, then
installs it on each target host with the permissions sshd requires.
Each deployment step is reported with the same report format as the
readiness checks.`,
	RunE: runDeployKey,
}

func init() {
	rootCmd.AddCommand(deployKeyCmd)

	deployKeyCmd.Flags().String("key", "", "Path to the private key file (required)")
	deployKeyCmd.Flags().String("install-path", "", "Remote path for the installed key")
	deployKeyCmd.MarkFlagRequired("key")
}

func runDeployKey(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	keyPath, _ := cmd.Flags().GetString("key")
	installPath, _ := cmd.Flags().GetString("install-path")
	if installPath == "" {
		installPath = cfg.KeyInstallPath
	}

	hosts := args
	if len(hosts) == 0 {
		hosts = cfg.Hosts
	}
	if len(hosts) == 0 {
		return fmt.Errorf("no target hosts given")
	}

	raw, err := os.ReadFile(keyPath)
	if err != nil {
		return fmt.Errorf("read key file: %w", err)
	}

	anyFail := false
	for _, host := range hosts {
		d := &sshkey.Deployer{
			Runner:      probe.NewSSHRunner(host, cfg.SSHUser, cfg.SSHOptions),
			InstallPath: installPath,
			Timeout:     cfg.ProbeTimeout,
		}
		rep := d.Deploy(cmd.Context(), raw)

		fmt.Print(colorizeReport(report.Render(rep, report.HostMeta{Hostname: host})))
		fmt.Println()

		if rep.Verdict() == report.StatusFail {
			anyFail = true
		}
	}

	if anyFail {
		os.Exit(1)
	}
	return nil
}
