package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/kiln-labs/kiln/internal/config"
	"github.com/kiln-labs/kiln/internal/history"
	"github.com/spf13/cobra"
)

var (
	deploymentsLimit int
	deploymentsJSON  bool
)

func init() {
	deploymentsListCmd.Flags().IntVar(&deploymentsLimit, "limit", 20, "Maximum number of runs to show (0 for all)")
	deploymentsListCmd.Flags().BoolVar(&deploymentsJSON, "json", false, "Output in JSON format")

	deploymentsCmd.AddCommand(deploymentsListCmd)
	deploymentsCmd.AddCommand(deploymentsShowCmd)
	rootCmd.AddCommand(deploymentsCmd)
}

var deploymentsCmd = &cobra.Command{
	Use:   "deployments",
	Short: "Inspect the local deployment ledger",
	Long:  `Query the ledger of broadcast runs recorded at ~/.kiln/history.db.`,
}

// runEntry is a ledger run shaped for display.
type runEntry struct {
	ID      string `json:"id"`
	Project string `json:"project"`
	Network string `json:"network"`
	Script  string `json:"script"`
	Status  string `json:"status"`
	Started string `json:"started"`
}

var deploymentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded broadcast runs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := history.Open(config.HistoryPath())
		if err != nil {
			return err
		}
		defer store.Close()

		runs, err := store.ListRuns(deploymentsLimit)
		if err != nil {
			return err
		}

		if len(runs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No broadcast runs recorded yet.")
			return nil
		}

		entries := make([]runEntry, 0, len(runs))
		for _, r := range runs {
			entries = append(entries, runEntry{
				ID:      r.ID[:8],
				Project: r.Project,
				Network: r.Network,
				Script:  r.Script,
				Status:  r.Status,
				Started: r.StartedAt.Local().Format(time.RFC3339),
			})
		}

		if deploymentsJSON {
			out, err := json.MarshalIndent(entries, "", "  ")
			if err != nil {
				return fmt.Errorf("marshaling runs: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tPROJECT\tNETWORK\tSCRIPT\tSTATUS\tSTARTED")
		for _, e := range entries {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				e.ID, e.Project, e.Network, e.Script, e.Status, e.Started)
		}
		return w.Flush()
	},
}

var deploymentsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one run with its deployed contracts",
	Long:  `Show a recorded run by id or unambiguous id prefix.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := history.Open(config.HistoryPath())
		if err != nil {
			return err
		}
		defer store.Close()

		run, deployments, err := store.GetRun(args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Run:      %s\n", run.ID)
		fmt.Fprintf(out, "Project:  %s\n", run.Project)
		fmt.Fprintf(out, "Network:  %s (chain %d)\n", run.Network, run.ChainID)
		fmt.Fprintf(out, "Script:   %s\n", run.Script)
		fmt.Fprintf(out, "Status:   %s\n", run.Status)
		fmt.Fprintf(out, "Started:  %s\n", run.StartedAt.Local().Format(time.RFC3339))
		fmt.Fprintf(out, "Finished: %s\n", run.FinishedAt.Local().Format(time.RFC3339))

		if len(deployments) == 0 {
			fmt.Fprintln(out, "\nNo contract addresses were parsed from this run.")
			return nil
		}

		fmt.Fprintln(out)
		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "CONTRACT\tADDRESS\tTX HASH")
		for _, d := range deployments {
			fmt.Fprintf(w, "%s\t%s\t%s\n", d.Contract, d.Address, d.TxHash)
		}
		return w.Flush()
	},
}
