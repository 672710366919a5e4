// File: internal/domain/ports/adapter/telegram.go
package adapter

import (
	"context"

	"hh-vacancy-bot/internal/domain/model"
)

type InlineButton struct {
	Text string
	Data string
	URL  string
}

// Photo is an in-memory image upload.
type Photo struct {
	Name  string
	Bytes []byte
}

// TelegramBotAdapter is the outgoing side of the messaging platform used by the use cases.
type TelegramBotAdapter interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
	SendHTML(ctx context.Context, chatID int64, html string) error
	SendButtons(ctx context.Context, chatID int64, text string, rows [][]InlineButton) error
	SendDocument(ctx context.Context, chatID int64, name string, data []byte) error
	// SendPhoto never returns a bare error: the failure is classified so the caller
	// can tell a blocked recipient from a broken message.
	SendPhoto(ctx context.Context, chatID int64, photo Photo, caption string, rows [][]InlineButton) model.DeliveryResult
}
