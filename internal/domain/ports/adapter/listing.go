package adapter

import (
	"context"

	"hh-vacancy-bot/internal/domain/model"
)

// ListingSource returns the currently open listings of one position, already normalized.
type ListingSource interface {
	FetchListings(ctx context.Context, position model.Position) ([]model.Listing, error)
}
