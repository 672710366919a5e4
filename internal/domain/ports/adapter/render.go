package adapter

import "context"

// ImageRenderer burns listing details into the card template and returns the encoded image.
type ImageRenderer interface {
	Render(ctx context.Context, title, company, salary string) (Photo, error)
	// Cleanup removes every artifact produced since the last call.
	Cleanup(ctx context.Context) error
}
