package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/jandubois/readycheck/internal/db"
	"github.com/jandubois/readycheck/internal/report"
)

var reportCmd = &cobra.Command{
	Use:   "report [host]",
	Short: "Show stored readiness reports",
	Long: `Report re-renders the most recent stored report for a host, or with
--list prints a one-line summary per host across the whole fleet.`,
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().Bool("list", false, "List the latest report per host")
}

func runReport(cmd *cobra.Command, args []string) error {
	list, _ := cmd.Flags().GetBool("list")

	store, err := db.Connect(cmd.Context(), getDatabasePath())
	if err != nil {
		return err
	}
	defer store.Close()

	if list {
		return listReports(cmd, store)
	}

	if len(args) != 1 {
		return fmt.Errorf("expected exactly one host (or use --list)")
	}

	sr, err := store.LatestReport(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("load report for %s: %w", args[0], err)
	}

	fmt.Print(colorizeReport(report.Render(sr.Report(), sr.Meta)))
	return nil
}

func listReports(cmd *cobra.Command, store *db.DB) error {
	reports, err := store.ListReports(cmd.Context())
	if err != nil {
		return err
	}
	if len(reports) == 0 {
		fmt.Println("no stored reports")
		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header([]string{"Host", "Verdict", "Pass", "Warn", "Fail", "Info", "Checked At"})

	var data [][]string
	for _, sr := range reports {
		data = append(data, []string{
			sr.Host,
			colorizeVerdict(sr.Verdict),
			strconv.Itoa(sr.Pass),
			strconv.Itoa(sr.Warn),
			strconv.Itoa(sr.Fail),
			strconv.Itoa(sr.Info),
			sr.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}
