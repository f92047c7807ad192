// Package repl provides the interactive ticket console: submit tickets,
// inspect run history, and review escalations from a shell.
package repl

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fatih/color"

	"github.com/resolvd/resolvd/internal/storage"
	"github.com/resolvd/resolvd/internal/types"
)

// Processor runs one ticket to termination.
type Processor interface {
	Run(ctx context.Context, ticket *types.Ticket) (*types.Result, error)
}

// REPL is the interactive shell.
type REPL struct {
	engine   Processor
	store    storage.Storage
	rl       *readline.Instance
	ctx      context.Context
	commands map[string]commandHandler
}

type commandHandler func(args []string) error

// Config holds REPL configuration.
type Config struct {
	Engine Processor
	Store  storage.Storage
}

// New creates a REPL instance.
func New(cfg *Config) (*REPL, error) {
	if cfg.Engine == nil {
		return nil, fmt.Errorf("engine is required")
	}

	r := &REPL{
		engine: cfg.Engine,
		store:  cfg.Store,
	}
	r.commands = map[string]commandHandler{
		"help":        r.cmdHelp,
		"?":           r.cmdHelp,
		"exit":        r.cmdExit,
		"quit":        r.cmdExit,
		"ticket":      r.cmdTicket,
		"history":     r.cmdHistory,
		"recent":      r.cmdRecent,
		"escalations": r.cmdEscalations,
	}
	return r, nil
}

// Run starts the REPL loop.
func (r *REPL) Run(ctx context.Context) error {
	r.ctx = ctx

	cyan := color.New(color.FgCyan).SprintFunc()
	rl, err := readline.NewEx(&readline.Config{
		Prompt:            cyan("resolvd> "),
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		return fmt.Errorf("failed to create readline: %w", err)
	}
	defer rl.Close()
	r.rl = rl

	r.printWelcome()

	for {
		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			} else if err == io.EOF {
				fmt.Println("\nGoodbye!")
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if err := r.processInput(line); err != nil {
			if err == io.EOF {
				return nil
			}
			red := color.New(color.FgRed).SprintFunc()
			fmt.Printf("%s %v\n", red("Error:"), err)
		}
	}
}

func (r *REPL) processInput(line string) error {
	parts := strings.Fields(line)
	command := parts[0]
	args := parts[1:]

	if handler, ok := r.commands[command]; ok {
		return handler(args)
	}

	yellow := color.New(color.FgYellow).SprintFunc()
	fmt.Printf("%s Unknown command %q. Type 'help' for available commands.\n", yellow("Note:"), command)
	return nil
}

func (r *REPL) printWelcome() {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	fmt.Printf("\n%s\n", cyan("Welcome to resolvd"))
	fmt.Println("Automated support ticket resolution")
	fmt.Println()
	fmt.Println("Type 'help' for available commands, 'exit' to quit")
	fmt.Println()
}

func (r *REPL) cmdHelp(args []string) error {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	fmt.Printf("\n%s\n\n", cyan("Available Commands:"))
	fmt.Println("  ticket            Submit a new support ticket interactively")
	fmt.Println("  history <id>      Show the latest run for a ticket")
	fmt.Println("  recent [n]        Show the n most recent runs (default 10)")
	fmt.Println("  escalations [n]   Show the n most recent escalations (default 10)")
	fmt.Println("  help, ?           Show this help")
	fmt.Println("  exit, quit        Exit the shell")
	fmt.Println()
	return nil
}

func (r *REPL) cmdExit(args []string) error {
	fmt.Println("Goodbye!")
	return io.EOF
}

// cmdTicket prompts for subject and description, then runs the ticket.
func (r *REPL) cmdTicket(args []string) error {
	subject, err := r.prompt("Subject: ")
	if err != nil {
		return err
	}
	description, err := r.prompt("Description: ")
	if err != nil {
		return err
	}

	if errs := types.ValidateTicketInput(subject, description); len(errs) > 0 {
		for _, e := range errs {
			fmt.Printf("  - %s\n", e)
		}
		return fmt.Errorf("invalid ticket")
	}

	ticket := types.NewTicket(subject, description, "")
	fmt.Printf("Processing ticket %s...\n", ticket.TicketID)

	result, err := r.engine.Run(r.ctx, ticket)
	if err != nil {
		return err
	}
	r.printResult(result)
	return nil
}

func (r *REPL) cmdHistory(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: history <ticket-id>")
	}
	if r.store == nil {
		return fmt.Errorf("no storage configured")
	}
	result, err := r.store.GetRun(r.ctx, args[0])
	if err != nil {
		return err
	}
	if result == nil {
		return fmt.Errorf("no runs found for ticket %s", args[0])
	}
	r.printResult(result)
	return nil
}

func (r *REPL) cmdRecent(args []string) error {
	if r.store == nil {
		return fmt.Errorf("no storage configured")
	}
	limit := parseLimit(args, 10)
	runs, err := r.store.GetRecentRuns(r.ctx, limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No runs yet.")
		return nil
	}
	for _, run := range runs {
		status := color.GreenString("resolved")
		if run.Escalated {
			status = color.YellowString("escalated")
		}
		fmt.Printf("  %-20s %-10s %-10s retries=%d  %.2fs\n",
			run.TicketID, run.Category, status, run.RetryCount, run.ProcessingSeconds)
	}
	return nil
}

func (r *REPL) cmdEscalations(args []string) error {
	if r.store == nil {
		return fmt.Errorf("no storage configured")
	}
	limit := parseLimit(args, 10)
	records, err := r.store.GetEscalations(r.ctx, limit)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("No escalations.")
		return nil
	}
	for _, rec := range records {
		fmt.Printf("  %-20s %-10s score=%.2f  %s\n",
			rec.TicketID, rec.Category, rec.FinalReviewScore, rec.Reason)
	}
	return nil
}

// prompt reads one line with a temporary prompt.
func (r *REPL) prompt(label string) (string, error) {
	r.rl.SetPrompt(label)
	defer r.rl.SetPrompt(color.New(color.FgCyan).Sprint("resolvd> "))

	line, err := r.rl.Readline()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (r *REPL) printResult(result *types.Result) {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	fmt.Printf("\n%s\n", cyan("=== Result ==="))
	fmt.Printf("Ticket:    %s\n", result.TicketID)
	fmt.Printf("Category:  %s\n", result.Category)
	if result.Escalated {
		fmt.Printf("Status:    %s (%s)\n", color.YellowString("escalated"), result.EscalationReason)
	} else {
		fmt.Printf("Status:    %s\n", color.GreenString("resolved"))
	}
	fmt.Printf("Retries:   %d   Drafts: %d   Reviews: %d   Time: %.2fs\n",
		result.RetryCount, result.DraftsGenerated, result.ReviewsConducted, result.ProcessingSeconds)
	fmt.Printf("\n%s\n%s\n\n", cyan("Response:"), result.FinalResponse)
}

func parseLimit(args []string, fallback int) int {
	if len(args) > 0 {
		if n, err := strconv.Atoi(args[0]); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}
