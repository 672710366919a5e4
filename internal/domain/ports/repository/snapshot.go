package repository

import (
	"context"

	"hh-vacancy-bot/internal/domain/model"
)

// SnapshotStore keeps the last fetched listing set of every position.
// Read returns domain.ErrNotFound when the position has never been written.
type SnapshotStore interface {
	Read(ctx context.Context, key model.PositionKey) ([]model.Listing, error)
	Write(ctx context.Context, key model.PositionKey, listings []model.Listing) error
}
