package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"hh-vacancy-bot/internal/application"
	"hh-vacancy-bot/internal/config"
	"hh-vacancy-bot/internal/domain/model"
	"hh-vacancy-bot/internal/domain/ports/adapter"
	"hh-vacancy-bot/internal/domain/ports/repository"
	"hh-vacancy-bot/internal/infra/adapters/hh"
	tele "hh-vacancy-bot/internal/infra/adapters/telegram"
	pg "hh-vacancy-bot/internal/infra/db/postgres"
	"hh-vacancy-bot/internal/infra/db/sqlite"
	"hh-vacancy-bot/internal/infra/i18n"
	"hh-vacancy-bot/internal/infra/logging"
	"hh-vacancy-bot/internal/infra/metrics"
	red "hh-vacancy-bot/internal/infra/redis"
	"hh-vacancy-bot/internal/infra/render"
	"hh-vacancy-bot/internal/infra/sched"
	"hh-vacancy-bot/internal/infra/snapshot"
	"hh-vacancy-bot/internal/usecase"
)

type subscriberStore interface {
	repository.SubscriberRepository
	repository.Dumper
}

// app holds every wired component of one process.
type app struct {
	cfg       *config.Config
	log       *zerolog.Logger
	positions *model.PositionCatalog

	bot      *tele.RealTelegramBotAdapter // nil when dryRun
	subUC    usecase.SubscriberUseCase
	notifyUC usecase.NotifyUseCase
	diagUC   usecase.DiagnosticsUseCase
	worker   *sched.NotifyWorker

	closers []func()
}

// buildApp wires config, storage, adapters and use cases. With dryRun the
// Telegram side is replaced by a logging adapter and no token is used.
func buildApp(ctx context.Context, dryRun bool) (*app, error) {
	cfg, err := config.Load(configPath(), devMode)
	if err != nil {
		return nil, err
	}

	logger, logCloser, err := logging.New(cfg.Log, cfg.Runtime.Dev)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, log: logger}
	a.onClose(func() { _ = logCloser.Close() })

	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)

	if err := a.wire(ctx, dryRun); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *app) wire(ctx context.Context, dryRun bool) error {
	cfg := a.cfg

	positions, err := cfg.Catalog()
	if err != nil {
		return err
	}
	a.positions = positions
	locations, err := cfg.Locations()
	if err != nil {
		return err
	}
	tr, err := i18n.NewTranslator(i18n.LocalesFS, "ru")
	if err != nil {
		return fmt.Errorf("i18n: %w", err)
	}

	// ---- Subscriber directory ----
	subs, err := a.openSubscribers(ctx)
	if err != nil {
		return err
	}

	// ---- Snapshots, hh.ru, images ----
	snapshots, err := snapshot.NewFileStore(cfg.Storage.SnapshotDir)
	if err != nil {
		return fmt.Errorf("snapshot store: %w", err)
	}
	source := hh.NewClient(&http.Client{Timeout: cfg.HH.Timeout}, cfg.HH.UserAgent, cfg.HH.ExcludedExperience, a.log).
		WithDetailWorkers(cfg.HH.Workers)
	renderer, err := render.NewCardRenderer(cfg.Storage.Template, cfg.Storage.TitleFont, cfg.Storage.BodyFont, cfg.Storage.SavedImagesDir)
	if err != nil {
		return fmt.Errorf("renderer: %w", err)
	}

	// ---- Redis (optional) ----
	var (
		limiter tele.RateLimiter
		locker  adapter.Locker
	)
	if cfg.Redis.URL != "" {
		rc, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		a.onClose(func() { _ = rc.Close() })
		limiter = red.NewRateLimiter(rc, cfg.Bot.RateLimit.Limit, cfg.Bot.RateLimit.Window)
		locker = red.NewLocker(rc)
		a.log.Info().Msg("redis enabled: rate limiting and cycle lock")
	}

	// ---- Telegram ----
	var sender adapter.TelegramBotAdapter
	if dryRun {
		sender = tele.NewNoopBotAdapter(a.log)
	} else {
		bot, err := tele.NewRealTelegramBotAdapter(&cfg.Bot, nil, tr, limiter, a.log)
		if err != nil {
			return fmt.Errorf("telegram: %w", err)
		}
		a.bot = bot
		sender = bot
	}

	// ---- Use cases ----
	composer := usecase.NewNotificationComposer(renderer, tr, a.log)
	a.subUC = usecase.NewSubscriberUseCase(subs, positions, locations, a.log)
	a.notifyUC = usecase.NewNotifyUseCase(source, snapshots, subs, sender, composer, positions, a.log)
	a.diagUC = usecase.NewDiagnosticsUseCase(subs, subs, sender, tr, cfg.Bot.OperatorUsername, cfg.Log.File, a.log)

	// ---- Facade ----
	if a.bot != nil {
		a.bot.SetFacade(application.NewBotFacade(a.subUC, a.notifyUC, a.diagUC, tr, cfg.Bot.OperatorUsername, a.log))
	}

	a.worker = sched.NewNotifyWorker(&cfg.Scheduler, a.notifyUC, a.diagUC, locker, a.log)
	return nil
}

func (a *app) openSubscribers(ctx context.Context) (subscriberStore, error) {
	switch a.cfg.Database.Driver {
	case "postgres":
		pool, err := pg.Connect(ctx, a.cfg.Database.URL)
		if err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}
		a.onClose(pool.Close)
		repo := pg.NewSubscriberRepo(pool)
		if err := repo.Migrate(ctx); err != nil {
			return nil, err
		}
		return repo, nil
	default:
		repo, err := sqlite.Open(a.cfg.Database.Path)
		if err != nil {
			return nil, fmt.Errorf("sqlite: %w", err)
		}
		a.onClose(func() { _ = repo.Close() })
		return repo, nil
	}
}

func (a *app) onClose(fn func()) { a.closers = append(a.closers, fn) }

// Close releases resources in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
