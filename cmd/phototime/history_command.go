package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"phototime/internal/report"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "List recorded runs or the decisions of one run",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cfg.History.Enabled {
				return fmt.Errorf("run history is disabled in configuration")
			}
			store, err := report.Open(cfg.Paths.HistoryDB)
			if err != nil {
				return fmt.Errorf("open history database: %w", err)
			}
			defer store.Close()

			if len(args) == 1 {
				return printRunDetail(cmd, store, args[0])
			}
			return printRunList(cmd, store, limit)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to list")
	return cmd
}

func printRunList(cmd *cobra.Command, store *report.Store, limit int) error {
	runs, err := store.Runs(cmd.Context(), limit)
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}
	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded yet.")
		return nil
	}

	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		finished := "running"
		if run.FinishedAt != nil {
			finished = run.FinishedAt.Local().Format(time.RFC3339)
		}
		rows = append(rows, []string{
			run.ID,
			run.StartedAt.Local().Format(time.RFC3339),
			finished,
			run.Root,
			yesNo(run.DryRun),
			strconv.Itoa(run.Files),
			strconv.Itoa(run.Updated),
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Run", "Started", "Finished", "Root", "Dry Run", "Files", "Updated"},
		rows,
		5, 6,
	))
	return nil
}

func printRunDetail(cmd *cobra.Command, store *report.Store, runID string) error {
	run, err := store.GetRun(cmd.Context(), runID)
	if err != nil {
		return fmt.Errorf("load run %s: %w", runID, err)
	}
	if run == nil {
		return fmt.Errorf("run %s not found", runID)
	}

	decisions, err := store.Decisions(cmd.Context(), runID)
	if err != nil {
		return fmt.Errorf("load decisions for run %s: %w", runID, err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Run %s on %s (dry-run: %s)\n", run.ID, run.Root, yesNo(run.DryRun))
	fmt.Fprintf(out, "Files: %d  Updated: %d\n", run.Files, run.Updated)
	if len(decisions) == 0 {
		fmt.Fprintln(out, "No decisions recorded.")
		return nil
	}

	colorize := stdoutIsTerminal()
	rows := make([][]string, 0, len(decisions))
	for _, decision := range decisions {
		resolved := ""
		if !decision.Resolved.IsZero() {
			resolved = decision.Resolved.Local().Format(time.RFC3339)
		}
		rows = append(rows, []string{
			decision.Path,
			string(decision.Source),
			actionLabel(decision.Action, colorize),
			resolved,
			decision.Detail,
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Path", "Source", "Action", "Resolved", "Detail"},
		rows,
	))
	return nil
}
