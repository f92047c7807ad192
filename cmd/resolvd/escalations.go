package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/resolvd/resolvd/internal/storage"
)

var (
	escalationsLimit int
	escalationsCSV   string
)

var escalationsCmd = &cobra.Command{
	Use:   "escalations",
	Short: "Show the escalation log",
	Long: `List tickets that were handed to humans, newest first. With --csv,
write the records as CSV instead ("-" for stdout).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		store, err := newStorage()
		if err != nil {
			return err
		}
		defer store.Close()

		records, err := store.GetEscalations(ctx, escalationsLimit)
		if err != nil {
			return err
		}

		if escalationsCSV != "" {
			out := os.Stdout
			if escalationsCSV != "-" {
				f, err := os.Create(escalationsCSV)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", escalationsCSV, err)
				}
				defer f.Close()
				out = f
			}
			if err := storage.WriteEscalationsCSV(out, records); err != nil {
				return err
			}
			if escalationsCSV != "-" {
				fmt.Printf("Wrote %d escalations to %s\n", len(records), escalationsCSV)
			}
			return nil
		}

		if len(records) == 0 {
			fmt.Println("No escalations.")
			return nil
		}

		cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
		fmt.Printf("\n%s\n", cyan("Escalations:"))
		for _, rec := range records {
			fmt.Printf("  %-22s %-10s score=%.2f drafts=%d  %s\n",
				rec.TicketID, rec.Category, rec.FinalReviewScore, rec.NumDrafts,
				rec.Timestamp.Format("2006-01-02 15:04:05"))
			fmt.Printf("    %s\n", rec.Reason)
		}
		return nil
	},
}

func init() {
	escalationsCmd.Flags().IntVarP(&escalationsLimit, "limit", "n", 50, "number of records to show")
	escalationsCmd.Flags().StringVar(&escalationsCSV, "csv", "", `write CSV to a file ("-" for stdout)`)
	rootCmd.AddCommand(escalationsCmd)
}
