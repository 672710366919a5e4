package main

import (
	"context"
	"errors"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"hh-vacancy-bot/internal/infra/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the bot: Telegram polling, the hourly notify worker and the admin server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()
	log := a.log

	if err := a.bot.RegisterMenu(ctx); err != nil {
		log.Warn().Err(err).Msg("could not publish the command menu")
	}

	var wg sync.WaitGroup
	run := func(name string, fn func(context.Context) error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Str("component", name).Msg("stopped with error")
				stop()
			}
		}()
	}

	run("telegram", a.bot.StartPolling)
	run("notify", a.worker.Run)

	var admin *web.Server
	if a.cfg.Admin.Port > 0 {
		admin = web.NewServer(a.subUC, a.worker, a.cfg.Admin.APIKey, log)
		run("admin-http", func(context.Context) error { return admin.Start(a.cfg.Admin.Port) })
	}

	log.Info().Int("positions", len(a.positions.All())).Msg("bot started")
	<-ctx.Done()
	log.Info().Msg("shutdown requested")

	if admin != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := admin.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("admin server shutdown")
		}
	}
	wg.Wait()
	log.Info().Msg("goodbye")
	return nil
}
