package main

import (
	"context"
	"encoding/json"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var cycleDryRun bool

var cycleCmd = &cobra.Command{
	Use:   "cycle",
	Short: "Run one full notify cycle, print its report, exit",
	Long:  "Runs exactly one fetch, diff and deliver pass over every position. With --dry-run messages are logged instead of sent; snapshots are still updated.",
	RunE:  runCycle,
}

func init() {
	cycleCmd.Flags().BoolVar(&cycleDryRun, "dry-run", false, "log notifications instead of sending them")
	rootCmd.AddCommand(cycleCmd)
}

func runCycle(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(ctx, cycleDryRun)
	if err != nil {
		return err
	}
	defer a.Close()

	report, err := a.worker.RunOnce(ctx)
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if encErr := enc.Encode(report); encErr != nil {
		return encErr
	}
	return err
}
