package telegram

import (
	"context"

	"github.com/rs/zerolog"

	"hh-vacancy-bot/internal/domain/model"
	"hh-vacancy-bot/internal/domain/ports/adapter"
	"hh-vacancy-bot/internal/infra/logging"
)

var _ adapter.TelegramBotAdapter = (*NoopBotAdapter)(nil)

// NoopBotAdapter implements adapter.TelegramBotAdapter for dry runs.
// It logs messages instead of sending real Telegram messages.
type NoopBotAdapter struct {
	log *zerolog.Logger
}

func NewNoopBotAdapter(logger *zerolog.Logger) *NoopBotAdapter {
	return &NoopBotAdapter{log: logging.Component(logger, "noop-telegram")}
}

func (b *NoopBotAdapter) SendMessage(ctx context.Context, chatID int64, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.log.Info().Int64("chat_id", chatID).Str("text", text).Msg("message")
	return nil
}

func (b *NoopBotAdapter) SendHTML(ctx context.Context, chatID int64, html string) error {
	return b.SendMessage(ctx, chatID, html)
}

func (b *NoopBotAdapter) SendButtons(ctx context.Context, chatID int64, text string, rows [][]adapter.InlineButton) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.log.Info().Int64("chat_id", chatID).Str("text", text).Interface("buttons", rows).Msg("message with buttons")
	return nil
}

func (b *NoopBotAdapter) SendDocument(ctx context.Context, chatID int64, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.log.Info().Int64("chat_id", chatID).Str("name", name).Int("bytes", len(data)).Msg("document")
	return nil
}

func (b *NoopBotAdapter) SendPhoto(ctx context.Context, chatID int64, photo adapter.Photo, caption string, rows [][]adapter.InlineButton) model.DeliveryResult {
	if err := ctx.Err(); err != nil {
		return model.DeliveryResult{Status: model.Transient, Err: err}
	}
	b.log.Info().Int64("chat_id", chatID).Str("photo", photo.Name).Str("caption", caption).Msg("photo")
	return model.DeliveryResult{Status: model.Delivered}
}
