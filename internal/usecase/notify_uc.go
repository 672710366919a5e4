package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hh-vacancy-bot/internal/domain"
	"hh-vacancy-bot/internal/domain/model"
	"hh-vacancy-bot/internal/domain/ports/adapter"
	"hh-vacancy-bot/internal/domain/ports/repository"
	"hh-vacancy-bot/internal/infra/logging"
	"hh-vacancy-bot/internal/infra/metrics"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
)

// Compile-time check
var _ NotifyUseCase = (*notifyUC)(nil)

// CategoryReport counts what happened to one position during a cycle.
type CategoryReport struct {
	Position  model.PositionKey `json:"position"`
	Fetched   int               `json:"fetched"`
	New       int               `json:"new"`
	Delivered int               `json:"delivered"`
	Blocked   int               `json:"blocked"`
	Failed    int               `json:"failed"`
	Seeded    bool              `json:"seeded"`
	Error     string            `json:"error,omitempty"`
}

// CycleReport summarizes one pass over the whole catalog.
type CycleReport struct {
	ID         string           `json:"id"`
	StartedAt  time.Time        `json:"started_at"`
	Duration   time.Duration    `json:"duration"`
	Categories []CategoryReport `json:"categories"`
}

// NotifyUseCase is the fetch, diff and deliver loop.
type NotifyUseCase interface {
	// RunCycle processes every catalog position in order. Errors of individual
	// positions are joined; the remaining positions still run. Cancellation is
	// observed between positions only.
	RunCycle(ctx context.Context) (CycleReport, error)
	RunCategory(ctx context.Context, position model.Position) (CategoryReport, error)
	// Check fetches one position and diffs it against its snapshot without
	// delivering or writing anything.
	Check(ctx context.Context, position model.Position) (fresh []model.Listing, err error)
	// Digest returns the registration digest of a position built from its snapshot.
	Digest(ctx context.Context, key model.PositionKey) (string, error)
}

type notifyUC struct {
	source    adapter.ListingSource
	snapshots repository.SnapshotStore
	subs      repository.SubscriberRepository
	bot       adapter.TelegramBotAdapter
	composer  NotificationComposer
	positions *model.PositionCatalog
	log       *zerolog.Logger
}

func NewNotifyUseCase(
	source adapter.ListingSource,
	snapshots repository.SnapshotStore,
	subs repository.SubscriberRepository,
	bot adapter.TelegramBotAdapter,
	composer NotificationComposer,
	positions *model.PositionCatalog,
	logger *zerolog.Logger,
) *notifyUC {
	return &notifyUC{
		source:    source,
		snapshots: snapshots,
		subs:      subs,
		bot:       bot,
		composer:  composer,
		positions: positions,
		log:       logger,
	}
}

func (u *notifyUC) RunCycle(ctx context.Context) (CycleReport, error) {
	defer logging.TraceDuration(u.log, "NotifyUC.RunCycle")()

	report := CycleReport{ID: ulid.Make().String(), StartedAt: time.Now()}
	ctx = logging.WithTraceID(ctx, report.ID)
	log := logging.With(ctx, u.log)

	if n, err := u.subs.Count(ctx); err == nil {
		log.Info().Int("subscribers", n).Msg("notify cycle started")
	}

	var errs []error
	for _, pos := range u.positions.All() {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		cr, err := u.RunCategory(ctx, pos)
		if err != nil {
			cr.Error = err.Error()
			errs = append(errs, fmt.Errorf("position %s: %w", pos.Key, err))
		}
		report.Categories = append(report.Categories, cr)
	}

	report.Duration = time.Since(report.StartedAt)
	metrics.ObserveCycle(report.Duration)
	log.Info().Dur("duration", report.Duration).Int("failed_positions", len(errs)).Msg("notify cycle finished")
	return report, errors.Join(errs...)
}

func (u *notifyUC) RunCategory(ctx context.Context, pos model.Position) (CategoryReport, error) {
	defer logging.TraceDuration(u.log, "NotifyUC.RunCategory")()

	report := CategoryReport{Position: pos.Key}
	log := logging.With(ctx, u.log).With().Str("position", string(pos.Key)).Logger()

	fetched, err := u.source.FetchListings(ctx, pos)
	if err != nil {
		metrics.IncFetchFailure(string(pos.Key))
		log.Error().Err(err).Msg("fetch failed, snapshot kept")
		return report, fmt.Errorf("fetch: %w", err)
	}
	report.Fetched = len(fetched)
	metrics.AddListingsFetched(string(pos.Key), len(fetched))

	// Once fetched, the category always finishes and rewrites its snapshot,
	// even if ctx is cancelled meanwhile.
	ctx = context.WithoutCancel(ctx)

	prior, err := u.snapshots.Read(ctx, pos.Key)
	if errors.Is(err, domain.ErrNotFound) {
		report.Seeded = true
		log.Info().Int("fetched", len(fetched)).Msg("no snapshot yet, seeding")
		if err := u.snapshots.Write(ctx, pos.Key, fetched); err != nil {
			return report, fmt.Errorf("seed snapshot: %w", err)
		}
		return report, nil
	}
	if err != nil {
		return report, fmt.Errorf("read snapshot: %w", err)
	}

	fresh := model.NewListings(fetched, prior)
	report.New = len(fresh)
	metrics.AddListingsNew(string(pos.Key), len(fresh))

	if len(fresh) > 0 {
		subs, err := u.subs.All(ctx)
		if err != nil {
			return report, fmt.Errorf("list subscribers: %w", err)
		}
		u.deliver(ctx, &log, fresh, subs, &report)
	}

	if err := u.composer.Cleanup(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to clean generated images")
	}
	if err := u.snapshots.Write(ctx, pos.Key, fetched); err != nil {
		return report, fmt.Errorf("write snapshot: %w", err)
	}
	log.Info().
		Int("fetched", report.Fetched).
		Int("new", report.New).
		Int("delivered", report.Delivered).
		Int("blocked", report.Blocked).
		Int("failed", report.Failed).
		Msg("snapshot rewritten")
	return report, nil
}

// deliver pushes every fresh listing to the subscribers that accept it.
// Failures are counted in report and never abort the loop.
func (u *notifyUC) deliver(ctx context.Context, log *zerolog.Logger, fresh []model.Listing, subs []*model.Subscriber, report *CategoryReport) {
	removed := make(map[string]bool)

	for _, l := range fresh {
		log.Info().Str("listing", l.Name).Msg("new listing")

		var note *Notification
	subscribers:
		for _, s := range subs {
			if removed[s.ID] || !s.Accepts(l) {
				continue
			}
			if note == nil {
				n, err := u.composer.Compose(ctx, l)
				if err != nil {
					report.Failed++
					log.Error().Err(err).Str("listing", l.URL).Msg("compose failed, listing skipped")
					break subscribers
				}
				note = n
			}

			res := u.bot.SendPhoto(ctx, s.ChatID, note.Photo, note.Caption, note.Buttons)
			metrics.IncDelivery(res.Status.String())
			switch res.Status {
			case model.Delivered:
				report.Delivered++
			case model.Blocked:
				report.Blocked++
				removed[s.ID] = true
				if err := u.subs.Remove(ctx, s.ID); err != nil && !errors.Is(err, domain.ErrNotFound) {
					log.Error().Err(err).Int64("tg_id", s.TelegramID).Msg("failed to remove blocked subscriber")
					continue
				}
				metrics.IncSubscriberRemoved("blocked")
				log.Info().Int64("tg_id", s.TelegramID).Msg("subscriber blocked the bot, removed")
			case model.Transient:
				report.Failed++
				log.Warn().Err(res.Err).Int64("tg_id", s.TelegramID).Msg("delivery failed, will not retry")
			case model.Fatal:
				report.Failed++
				log.Error().Err(res.Err).Str("listing", l.URL).Msg("listing rejected by telegram, skipping it")
				break subscribers
			}
		}
	}
}

func (u *notifyUC) Check(ctx context.Context, pos model.Position) ([]model.Listing, error) {
	defer logging.TraceDuration(u.log, "NotifyUC.Check")()

	fetched, err := u.source.FetchListings(ctx, pos)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	prior, err := u.snapshots.Read(ctx, pos.Key)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return model.NewListings(fetched, prior), nil
}

func (u *notifyUC) Digest(ctx context.Context, key model.PositionKey) (string, error) {
	defer logging.TraceDuration(u.log, "NotifyUC.Digest")()

	listings, err := u.snapshots.Read(ctx, key)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return "", err
	}
	return u.composer.Digest(listings), nil
}
