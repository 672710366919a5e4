package telegram

import (
	"context"
	"errors"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"hh-vacancy-bot/internal/application"
	"hh-vacancy-bot/internal/config"
	"hh-vacancy-bot/internal/domain/model"
	"hh-vacancy-bot/internal/domain/ports/adapter"
	"hh-vacancy-bot/internal/infra/i18n"
	"hh-vacancy-bot/internal/infra/logging"
	"hh-vacancy-bot/internal/infra/metrics"
	red "hh-vacancy-bot/internal/infra/redis"
)

var _ adapter.TelegramBotAdapter = (*RealTelegramBotAdapter)(nil)

// botAPI is the part of *tgbotapi.BotAPI the adapter uses.
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// RateLimiter limits commands per user; nil disables limiting.
type RateLimiter interface {
	Allow(ctx context.Context, userID int64, command string) (bool, error)
}

var _ RateLimiter = (*red.RateLimiter)(nil)

// RealTelegramBotAdapter uses tgbotapi to poll updates and delegates to BotFacade.
type RealTelegramBotAdapter struct {
	bot         botAPI
	facade      *application.BotFacade
	translator  *i18n.Translator
	rateLimiter RateLimiter
	log         *zerolog.Logger

	updateWorkers int
	cancelPolling context.CancelFunc
}

func NewRealTelegramBotAdapter(
	cfg *config.BotConfig,
	facade *application.BotFacade,
	translator *i18n.Translator,
	rateLimiter RateLimiter,
	logger *zerolog.Logger,
) (*RealTelegramBotAdapter, error) {
	if cfg == nil {
		return nil, errors.New("bot config is nil")
	}
	bot, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, err
	}
	return newAdapter(bot, facade, translator, rateLimiter, cfg.Workers, logger), nil
}

func newAdapter(bot botAPI, facade *application.BotFacade, translator *i18n.Translator, rateLimiter RateLimiter, workers int, logger *zerolog.Logger) *RealTelegramBotAdapter {
	if workers <= 0 {
		workers = 4
	}
	return &RealTelegramBotAdapter{
		bot:           bot,
		facade:        facade,
		translator:    translator,
		rateLimiter:   rateLimiter,
		log:           logging.Component(logger, "telegram"),
		updateWorkers: workers,
	}
}

// SetFacade wires the facade after construction; the facade's use cases need
// the adapter itself to send notifications.
func (r *RealTelegramBotAdapter) SetFacade(f *application.BotFacade) { r.facade = f }

// RegisterMenu publishes the public command list shown in the Telegram menu.
func (r *RealTelegramBotAdapter) RegisterMenu(ctx context.Context) error {
	cmds := make([]tgbotapi.BotCommand, 0, len(publicCommands))
	for _, c := range publicCommands {
		cmds = append(cmds, tgbotapi.BotCommand{Command: c.name, Description: c.description})
	}
	_, err := r.bot.Request(tgbotapi.NewSetMyCommands(cmds...))
	return err
}

// StartPolling blocks until ctx is done, dispatching updates to a fixed worker pool.
func (r *RealTelegramBotAdapter) StartPolling(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := r.bot.GetUpdatesChan(u)
	defer r.bot.StopReceivingUpdates()

	ctx, cancel := context.WithCancel(ctx)
	r.cancelPolling = cancel
	defer cancel()

	var wg sync.WaitGroup
	updateChan := make(chan tgbotapi.Update, 100)

	for i := 0; i < r.updateWorkers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for up := range updateChan {
				if err := r.handleUpdate(ctx, up); err != nil {
					r.log.Error().Err(err).Int("worker", id).Msg("update handling failed")
				}
			}
		}(i)
	}

	for {
		select {
		case <-ctx.Done():
			close(updateChan)
			wg.Wait()
			return ctx.Err()
		case up, ok := <-updates:
			if !ok {
				close(updateChan)
				wg.Wait()
				return nil
			}
			select {
			case updateChan <- up:
			case <-ctx.Done():
			}
		}
	}
}

func (r *RealTelegramBotAdapter) StopPolling() {
	if r.cancelPolling != nil {
		r.cancelPolling()
	}
}

// ---- outgoing port ----

func (r *RealTelegramBotAdapter) SendMessage(ctx context.Context, chatID int64, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := r.bot.Send(tgbotapi.NewMessage(chatID, text))
	return err
}

func (r *RealTelegramBotAdapter) SendHTML(ctx context.Context, chatID int64, html string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(chatID, html)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	_, err := r.bot.Send(msg)
	return err
}

func (r *RealTelegramBotAdapter) SendButtons(ctx context.Context, chatID int64, text string, rows [][]adapter.InlineButton) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(chatID, text)
	if markup, ok := inlineKeyboard(rows); ok {
		msg.ReplyMarkup = markup
	}
	_, err := r.bot.Send(msg)
	return err
}

func (r *RealTelegramBotAdapter) SendDocument(ctx context.Context, chatID int64, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := r.bot.Send(tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: name, Bytes: data}))
	return err
}

func (r *RealTelegramBotAdapter) SendPhoto(ctx context.Context, chatID int64, photo adapter.Photo, caption string, rows [][]adapter.InlineButton) model.DeliveryResult {
	if err := ctx.Err(); err != nil {
		return model.DeliveryResult{Status: model.Transient, Err: err}
	}
	msg := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: photo.Name, Bytes: photo.Bytes})
	msg.Caption = caption
	msg.ParseMode = tgbotapi.ModeHTML
	if markup, ok := inlineKeyboard(rows); ok {
		msg.ReplyMarkup = markup
	}
	_, err := r.bot.Send(msg)
	return ClassifyError(err)
}

// ---- incoming updates ----

func (r *RealTelegramBotAdapter) handleUpdate(ctx context.Context, update tgbotapi.Update) error {
	msg := update.Message
	if msg == nil || msg.From == nil || msg.Chat == nil {
		return nil
	}
	ctx = logging.WithTgID(ctx, msg.From.ID)

	command := "message"
	if msg.IsCommand() {
		command = "/" + msg.Command()
	}

	if r.rateLimiter != nil {
		allowed, err := r.rateLimiter.Allow(ctx, msg.From.ID, command)
		if err != nil {
			logging.With(ctx, r.log).Warn().Err(err).Msg("rate limiter unavailable")
		} else if !allowed {
			metrics.IncRateLimitTriggered()
			return r.SendMessage(ctx, msg.Chat.ID, r.translator.T("rate_limited"))
		}
	}

	if msg.IsCommand() {
		if handler, ok := r.commandRoutes()[msg.Command()]; ok {
			metrics.IncTelegramCommand(command)
			return handler(ctx, msg)
		}
		return r.deleteFlood(ctx, msg)
	}

	text := strings.TrimSpace(msg.Text)
	switch {
	case text == "":
		return r.deleteFlood(ctx, msg)
	case r.facade.IsPosition(text):
		metrics.IncTelegramCommand("position")
		return r.handlePositionText(ctx, msg, text)
	case r.facade.IsState(text):
		metrics.IncTelegramCommand("state")
		reply, err := r.facade.HandleState(ctx, msg.From.ID, text)
		return r.respond(ctx, msg.Chat.ID, reply, err)
	case r.facade.IsCity(text):
		metrics.IncTelegramCommand("city")
		reply, err := r.facade.HandleCity(ctx, msg.From.ID, text)
		return r.respond(ctx, msg.Chat.ID, reply, err)
	default:
		return r.deleteFlood(ctx, msg)
	}
}

// respond renders a facade reply. A facade error is logged and replaced by a generic answer.
func (r *RealTelegramBotAdapter) respond(ctx context.Context, chatID int64, reply application.Reply, err error) error {
	if err != nil {
		logging.With(ctx, r.log).Error().Err(err).Msg("command failed")
		reply = application.Reply{Text: r.translator.T("error_generic")}
	}
	if reply.Document != nil {
		return r.SendDocument(ctx, chatID, reply.Document.Name, reply.Document.Data)
	}

	msg := tgbotapi.NewMessage(chatID, reply.Text)
	if reply.HTML {
		msg.ParseMode = tgbotapi.ModeHTML
		msg.DisableWebPagePreview = true
	}
	switch {
	case len(reply.Keyboard) > 0:
		msg.ReplyMarkup = replyKeyboard(reply.Keyboard, buttonsPerRow)
	case reply.RemoveKeyboard:
		msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(true)
	}
	_, sendErr := r.bot.Send(msg)
	return sendErr
}

// deleteFlood removes a message the bot does not understand.
func (r *RealTelegramBotAdapter) deleteFlood(ctx context.Context, msg *tgbotapi.Message) error {
	metrics.IncFloodDeleted()
	_, err := r.bot.Request(tgbotapi.NewDeleteMessage(msg.Chat.ID, msg.MessageID))
	return err
}

func fullName(u *tgbotapi.User) string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}
