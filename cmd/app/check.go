package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"hh-vacancy-bot/internal/domain/model"
)

var checkCmd = &cobra.Command{
	Use:   "check [position]",
	Short: "Fetch once and print what would be sent, then exit",
	Long:  "One-shot diff: fetches every position (or the one given by label or key), prints listings missing from the snapshot, exits. Nothing is sent or written.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	targets := a.positions.All()
	if len(args) == 1 {
		p, ok := a.positions.ByLabel(args[0])
		if !ok {
			p, ok = a.positions.ByKey(model.PositionKey(args[0]))
		}
		if !ok {
			return fmt.Errorf("unknown position %q", args[0])
		}
		targets = []model.Position{p}
	}

	out := cmd.OutOrStdout()
	for _, p := range targets {
		fresh, err := a.notifyUC.Check(ctx, p)
		if err != nil {
			a.log.Error().Err(err).Str("position", string(p.Key)).Msg("check failed")
			continue
		}
		fmt.Fprintf(out, "%s: %d new\n", p.Label, len(fresh))
		for _, l := range fresh {
			fmt.Fprintf(out, "  - %s | %s | %s | %s\n", l.Name, l.Company, l.Location, l.URL)
		}
	}
	return ctx.Err()
}
