package repository

import (
	"context"

	"hh-vacancy-bot/internal/domain/model"
)

// SubscriberRepository is the subscriber directory. Lookups return domain.ErrNotFound
// when nothing matches; Add returns domain.ErrAlreadyExists for a duplicate Telegram ID.
type SubscriberRepository interface {
	FindByTelegramID(ctx context.Context, tgID int64) (*model.Subscriber, error)
	FindByUsername(ctx context.Context, username string) (*model.Subscriber, error)
	Add(ctx context.Context, s *model.Subscriber) error
	Remove(ctx context.Context, id string) error
	UpdateCity(ctx context.Context, id string, city *string) error
	// All lists subscribers in registration order.
	All(ctx context.Context) ([]*model.Subscriber, error)
	Count(ctx context.Context) (int, error)
}

// Dumper exports the whole directory as a single file for the operator.
type Dumper interface {
	Dump(ctx context.Context) (name string, data []byte, err error)
}
