package sched

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"hh-vacancy-bot/internal/config"
	"hh-vacancy-bot/internal/domain"
	"hh-vacancy-bot/internal/domain/ports/adapter"
	"hh-vacancy-bot/internal/usecase"
)

const (
	cycleLockKey = "hhbot:lock:cycle"
	cycleLockTTL = 50 * time.Minute
)

// NotifyWorker runs the notify cycle on a cron schedule. A lock keeps two
// cycles (scheduled, manual or from another replica) from overlapping.
type NotifyWorker struct {
	spec       string
	reportLogs bool
	notifyUC   usecase.NotifyUseCase
	diagUC     usecase.DiagnosticsUseCase
	locker     adapter.Locker
	log        *zerolog.Logger
}

func NewNotifyWorker(
	cfg *config.SchedulerConfig,
	notifyUC usecase.NotifyUseCase,
	diagUC usecase.DiagnosticsUseCase,
	locker adapter.Locker,
	logger *zerolog.Logger,
) *NotifyWorker {
	compLog := logger.With().Str("component", "NotifyWorker").Logger()
	if locker == nil {
		locker = NewLocalLocker()
	}
	return &NotifyWorker{
		spec:       cfg.NotifyCron,
		reportLogs: cfg.ReportLogs,
		notifyUC:   notifyUC,
		diagUC:     diagUC,
		locker:     locker,
		log:        &compLog,
	}
}

// Run executes one cycle right away, then follows the cron schedule until ctx is done.
func (w *NotifyWorker) Run(ctx context.Context) error {
	c := cron.New(cron.WithLogger(cronLogger{w.log}))
	if _, err := c.AddFunc(w.spec, func() { w.runCycle(ctx) }); err != nil {
		return fmt.Errorf("cron.AddFunc %q: %w", w.spec, err)
	}

	w.log.Info().Str("schedule", w.spec).Msg("Starting notify worker")
	w.runCycle(ctx)

	c.Start()
	<-ctx.Done()

	w.log.Info().Msg("Stopping notify worker")
	<-c.Stop().Done()
	return ctx.Err()
}

// RunOnce executes exactly one cycle. It returns domain.ErrBusy when another
// cycle holds the lock.
func (w *NotifyWorker) RunOnce(ctx context.Context) (usecase.CycleReport, error) {
	token, err := w.locker.TryLock(ctx, cycleLockKey, cycleLockTTL)
	if err != nil {
		return usecase.CycleReport{}, err
	}
	defer func() {
		// ctx may already be cancelled here
		if err := w.locker.Unlock(context.Background(), cycleLockKey, token); err != nil {
			w.log.Warn().Err(err).Msg("cycle lock release failed")
		}
	}()

	report, err := w.notifyUC.RunCycle(ctx)
	if w.reportLogs && ctx.Err() == nil {
		if rerr := w.diagUC.ReportLogs(ctx); rerr != nil {
			w.log.Error().Err(rerr).Msg("log report failed")
		}
	}
	return report, err
}

func (w *NotifyWorker) runCycle(ctx context.Context) {
	report, err := w.RunOnce(ctx)
	switch {
	case errors.Is(err, domain.ErrBusy):
		w.log.Warn().Msg("previous cycle still running, skipped")
		return
	case err != nil && ctx.Err() != nil:
		w.log.Info().Err(err).Msg("cycle interrupted")
		return
	case err != nil:
		w.log.Error().Err(err).Str("cycle", report.ID).Msg("cycle finished with errors")
	}

	var fresh, delivered int
	for _, c := range report.Categories {
		fresh += c.New
		delivered += c.Delivered
	}
	w.log.Info().
		Str("cycle", report.ID).
		Int("new", fresh).
		Int("delivered", delivered).
		Dur("took", report.Duration).
		Msg("cycle done")
}

// cronLogger routes cron's own messages into zerolog.
type cronLogger struct{ log *zerolog.Logger }

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
