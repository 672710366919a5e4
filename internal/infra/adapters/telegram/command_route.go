package telegram

import (
	"context"

	"hh-vacancy-bot/internal/infra/metrics"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type commandHandler func(ctx context.Context, message *tgbotapi.Message) error

// publicCommands is the menu shown to every user.
var publicCommands = []struct {
	name        string
	description string
}{
	{"start", "Подписаться на рассылку"},
	{"set_location", "Выбор локации"},
	{"remove_location", "Удалить привязку к локации"},
	{"unsubscribe", "Отписаться от рассылки"},
	{"help", "Помощь"},
	{"commands", "Список команд"},
}

// commandRoutes defines all available bot commands and their handlers.
func (r *RealTelegramBotAdapter) commandRoutes() map[string]commandHandler {
	return map[string]commandHandler{
		"start":           r.handleStartCommand,
		"help":            r.handleHelpCommand,
		"commands":        r.handleCommandsCommand,
		"set_location":    r.handleSetLocationCommand,
		"remove_location": r.handleRemoveLocationCommand,
		"unsubscribe":     r.handleUnsubscribeCommand,

		// These handlers are wrapped in our operatorOnly middleware.
		"db":        r.operatorOnly(r.handleDBCommand),
		"all_users": r.operatorOnly(r.handleAllUsersCommand),
		"logs":      r.operatorOnly(r.handleLogsCommand),
	}
}

// operatorOnly lets the configured operator through; anyone else has the
// command deleted like any other unknown message.
func (r *RealTelegramBotAdapter) operatorOnly(next commandHandler) commandHandler {
	return func(ctx context.Context, message *tgbotapi.Message) error {
		if !r.facade.IsOperator(message.From.UserName) {
			metrics.IncOperatorCommand("/"+message.Command(), "unauthorized")
			return r.deleteFlood(ctx, message)
		}
		metrics.IncOperatorCommand("/"+message.Command(), "authorized")
		return next(ctx, message)
	}
}

func (r *RealTelegramBotAdapter) handleStartCommand(ctx context.Context, message *tgbotapi.Message) error {
	reply, err := r.facade.HandleStart(ctx, message.From.ID, fullName(message.From))
	return r.respond(ctx, message.Chat.ID, reply, err)
}

func (r *RealTelegramBotAdapter) handlePositionText(ctx context.Context, message *tgbotapi.Message, label string) error {
	reply, err := r.facade.HandlePosition(ctx, message.From.ID, message.Chat.ID, message.From.UserName, fullName(message.From), label)
	return r.respond(ctx, message.Chat.ID, reply, err)
}

func (r *RealTelegramBotAdapter) handleHelpCommand(ctx context.Context, message *tgbotapi.Message) error {
	return r.respond(ctx, message.Chat.ID, r.facade.HandleHelp(), nil)
}

func (r *RealTelegramBotAdapter) handleCommandsCommand(ctx context.Context, message *tgbotapi.Message) error {
	return r.respond(ctx, message.Chat.ID, r.facade.HandleCommands(), nil)
}

func (r *RealTelegramBotAdapter) handleSetLocationCommand(ctx context.Context, message *tgbotapi.Message) error {
	reply, err := r.facade.HandleSetLocation(ctx, message.From.ID)
	return r.respond(ctx, message.Chat.ID, reply, err)
}

func (r *RealTelegramBotAdapter) handleRemoveLocationCommand(ctx context.Context, message *tgbotapi.Message) error {
	reply, err := r.facade.HandleRemoveLocation(ctx, message.From.ID)
	return r.respond(ctx, message.Chat.ID, reply, err)
}

func (r *RealTelegramBotAdapter) handleUnsubscribeCommand(ctx context.Context, message *tgbotapi.Message) error {
	reply, err := r.facade.HandleUnsubscribe(ctx, message.From.ID, fullName(message.From))
	return r.respond(ctx, message.Chat.ID, reply, err)
}

func (r *RealTelegramBotAdapter) handleDBCommand(ctx context.Context, message *tgbotapi.Message) error {
	reply, err := r.facade.HandleDump(ctx)
	return r.respond(ctx, message.Chat.ID, reply, err)
}

func (r *RealTelegramBotAdapter) handleAllUsersCommand(ctx context.Context, message *tgbotapi.Message) error {
	reply, err := r.facade.HandleAllUsers(ctx)
	return r.respond(ctx, message.Chat.ID, reply, err)
}

func (r *RealTelegramBotAdapter) handleLogsCommand(ctx context.Context, message *tgbotapi.Message) error {
	reply, err := r.facade.HandleLogs(ctx)
	return r.respond(ctx, message.Chat.ID, reply, err)
}
