package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history [ticket-id]",
	Short: "Show processed ticket runs",
	Long: `Without arguments, list the most recent runs. With a ticket ID,
print the full result of that ticket's latest run as JSON.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		store, err := newStorage()
		if err != nil {
			return err
		}
		defer store.Close()

		if len(args) == 1 {
			result, err := store.GetRun(ctx, args[0])
			if err != nil {
				return err
			}
			if result == nil {
				return fmt.Errorf("no runs found for ticket %s", args[0])
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		}

		runs, err := store.GetRecentRuns(ctx, historyLimit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Println("No runs yet.")
			return nil
		}

		cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
		fmt.Printf("\n%s\n", cyan("Recent Runs:"))
		for _, run := range runs {
			status := color.GreenString("resolved")
			if run.Escalated {
				status = color.YellowString("escalated")
			}
			fmt.Printf("  %-22s %-10s %-10s retries=%d  %.2fs  %s\n",
				run.TicketID, run.Category, status, run.RetryCount,
				run.ProcessingSeconds, run.CreatedAt.Format("2006-01-02 15:04:05"))
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of runs to show")
	rootCmd.AddCommand(historyCmd)
}
