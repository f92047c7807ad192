package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/resolvd/resolvd/internal/types"
)

var (
	processSubject     string
	processDescription string
	processTicketID    string
	processJSON        bool
)

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Process one support ticket",
	Long: `Run a single ticket through the pipeline and print the outcome:
either the approved customer response or the escalation notice.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if errs := types.ValidateTicketInput(processSubject, processDescription); len(errs) > 0 {
			for _, e := range errs {
				fmt.Fprintf(os.Stderr, "  - %s\n", e)
			}
			return fmt.Errorf("invalid ticket")
		}

		ctx := context.Background()
		store, err := newStorage()
		if err != nil {
			return err
		}
		defer store.Close()

		engine, _, err := newEngine(ctx, store)
		if err != nil {
			return err
		}

		ticket := types.NewTicket(processSubject, processDescription, processTicketID)
		result, err := engine.Run(ctx, ticket)
		if err != nil {
			return err
		}

		if processJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		}
		printResult(result)
		return nil
	},
}

func init() {
	processCmd.Flags().StringVarP(&processSubject, "subject", "s", "", "ticket subject (required)")
	processCmd.Flags().StringVarP(&processDescription, "description", "d", "", "ticket description (required)")
	processCmd.Flags().StringVar(&processTicketID, "ticket-id", "", "ticket ID (generated when omitted)")
	processCmd.Flags().BoolVar(&processJSON, "json", false, "print the result as JSON")
	processCmd.MarkFlagRequired("subject")
	processCmd.MarkFlagRequired("description")
	rootCmd.AddCommand(processCmd)
}

// printResult renders a run result for terminal consumption.
func printResult(result *types.Result) {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()

	fmt.Printf("\n%s\n", cyan("=== Ticket Result ==="))
	fmt.Printf("Ticket:    %s\n", result.TicketID)
	fmt.Printf("Category:  %s\n", result.Category)
	if result.Escalated {
		fmt.Printf("Status:    %s (%s)\n", color.YellowString("escalated"), result.EscalationReason)
	} else {
		fmt.Printf("Status:    %s\n", color.GreenString("resolved"))
	}
	fmt.Printf("Retries:   %d   Drafts: %d   Reviews: %d   Time: %.2fs\n",
		result.RetryCount, result.DraftsGenerated, result.ReviewsConducted, result.ProcessingSeconds)
	fmt.Printf("\n%s\n%s\n", cyan("Response:"), result.FinalResponse)
}
