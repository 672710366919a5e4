package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"hh-vacancy-bot/internal/domain"
	"hh-vacancy-bot/internal/domain/model"
	"hh-vacancy-bot/internal/domain/ports/repository"
	"hh-vacancy-bot/internal/infra/logging"
	"hh-vacancy-bot/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ SubscriberUseCase = (*subscriberUC)(nil)

// LocationPick is the outcome of choosing a state in the location prompt.
type LocationPick struct {
	// Saved is true when the state is itself a city and was stored right away.
	Saved bool
	// Cities to offer next when Saved is false.
	Cities []string
}

// SubscriberUseCase exposes the subscriber directory to the bot flows.
type SubscriberUseCase interface {
	Get(ctx context.Context, tgID int64) (*model.Subscriber, error)
	FindByUsername(ctx context.Context, username string) (*model.Subscriber, error)
	// Register subscribes a user to the position with the given label.
	Register(ctx context.Context, tgID, chatID int64, username, label string) (*model.Subscriber, error)
	Unsubscribe(ctx context.Context, tgID int64) error
	PickState(ctx context.Context, tgID int64, state string) (LocationPick, error)
	SetCity(ctx context.Context, tgID int64, city string) error
	ClearCity(ctx context.Context, tgID int64) error
	List(ctx context.Context) ([]*model.Subscriber, error)
	Count(ctx context.Context) (int, error)

	Positions() *model.PositionCatalog
	Locations() *model.LocationTree
}

type subscriberUC struct {
	subs      repository.SubscriberRepository
	positions *model.PositionCatalog
	locations *model.LocationTree
	log       *zerolog.Logger
}

func NewSubscriberUseCase(
	subs repository.SubscriberRepository,
	positions *model.PositionCatalog,
	locations *model.LocationTree,
	logger *zerolog.Logger,
) *subscriberUC {
	return &subscriberUC{
		subs:      subs,
		positions: positions,
		locations: locations,
		log:       logger,
	}
}

func (u *subscriberUC) Positions() *model.PositionCatalog { return u.positions }
func (u *subscriberUC) Locations() *model.LocationTree    { return u.locations }

func (u *subscriberUC) Get(ctx context.Context, tgID int64) (*model.Subscriber, error) {
	defer logging.TraceDuration(u.log, "SubscriberUC.Get")()
	return u.subs.FindByTelegramID(ctx, tgID)
}

func (u *subscriberUC) FindByUsername(ctx context.Context, username string) (*model.Subscriber, error) {
	defer logging.TraceDuration(u.log, "SubscriberUC.FindByUsername")()
	username = strings.TrimPrefix(strings.TrimSpace(username), "@")
	if username == "" {
		return nil, domain.ErrNotFound
	}
	return u.subs.FindByUsername(ctx, username)
}

func (u *subscriberUC) Register(ctx context.Context, tgID, chatID int64, username, label string) (*model.Subscriber, error) {
	defer logging.TraceDuration(u.log, "SubscriberUC.Register")()

	pos, ok := u.positions.ByLabel(label)
	if !ok {
		return nil, fmt.Errorf("%q: %w", label, domain.ErrUnknownPosition)
	}

	existing, err := u.subs.FindByTelegramID(ctx, tgID)
	switch {
	case err == nil && existing != nil:
		return existing, domain.ErrAlreadyExists
	case err != nil && !errors.Is(err, domain.ErrNotFound):
		return nil, err
	}

	s, err := model.NewSubscriber("", tgID, chatID, username, pos.Key)
	if err != nil {
		return nil, err
	}
	if err := u.subs.Add(ctx, s); err != nil {
		return nil, err
	}

	metrics.IncSubscriberRegistered(string(pos.Key))
	logging.With(ctx, u.log).Info().Str("position", string(pos.Key)).Msg("subscriber registered")
	return s, nil
}

func (u *subscriberUC) Unsubscribe(ctx context.Context, tgID int64) error {
	defer logging.TraceDuration(u.log, "SubscriberUC.Unsubscribe")()

	s, err := u.subs.FindByTelegramID(ctx, tgID)
	if err != nil {
		return err
	}
	if err := u.subs.Remove(ctx, s.ID); err != nil {
		return err
	}
	metrics.IncSubscriberRemoved("unsubscribe")
	logging.With(ctx, u.log).Info().Msg("subscriber unsubscribed")
	return nil
}

func (u *subscriberUC) PickState(ctx context.Context, tgID int64, state string) (LocationPick, error) {
	defer logging.TraceDuration(u.log, "SubscriberUC.PickState")()

	region, ok := u.locations.Region(state)
	if !ok {
		return LocationPick{}, fmt.Errorf("state %q: %w", state, domain.ErrUnknownCity)
	}
	s, err := u.subs.FindByTelegramID(ctx, tgID)
	if err != nil {
		return LocationPick{}, err
	}
	if !region.Direct() {
		return LocationPick{Cities: u.locations.Cities(state)}, nil
	}
	city := region.State
	if err := u.subs.UpdateCity(ctx, s.ID, &city); err != nil {
		return LocationPick{}, err
	}
	return LocationPick{Saved: true}, nil
}

func (u *subscriberUC) SetCity(ctx context.Context, tgID int64, city string) error {
	defer logging.TraceDuration(u.log, "SubscriberUC.SetCity")()

	city = strings.TrimSpace(city)
	if !u.locations.IsCity(city) {
		return fmt.Errorf("city %q: %w", city, domain.ErrUnknownCity)
	}
	s, err := u.subs.FindByTelegramID(ctx, tgID)
	if err != nil {
		return err
	}
	if err := u.subs.UpdateCity(ctx, s.ID, &city); err != nil {
		return err
	}
	logging.With(ctx, u.log).Info().Str("city", city).Msg("subscriber city set")
	return nil
}

func (u *subscriberUC) ClearCity(ctx context.Context, tgID int64) error {
	defer logging.TraceDuration(u.log, "SubscriberUC.ClearCity")()

	s, err := u.subs.FindByTelegramID(ctx, tgID)
	if err != nil {
		return err
	}
	return u.subs.UpdateCity(ctx, s.ID, nil)
}

func (u *subscriberUC) List(ctx context.Context) ([]*model.Subscriber, error) {
	defer logging.TraceDuration(u.log, "SubscriberUC.List")()
	return u.subs.All(ctx)
}

func (u *subscriberUC) Count(ctx context.Context) (int, error) {
	return u.subs.Count(ctx)
}
