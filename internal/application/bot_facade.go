package application

import (
	"context"
	"errors"
	"strings"

	"hh-vacancy-bot/internal/domain"
	"hh-vacancy-bot/internal/infra/i18n"
	"hh-vacancy-bot/internal/usecase"

	"github.com/rs/zerolog"
)

// Document is a file attached to a reply.
type Document struct {
	Name string
	Data []byte
}

// Reply is what the bot answers to one incoming message. The Telegram adapter
// only renders it; every decision is taken here.
type Reply struct {
	Text string
	HTML bool
	// Keyboard, when set, is shown as a reply keyboard of the given labels.
	Keyboard []string
	// RemoveKeyboard hides a previously shown reply keyboard.
	RemoveKeyboard bool
	Document       *Document
}

// BotFacade composes usecases into high-level bot commands.
type BotFacade struct {
	SubUC    usecase.SubscriberUseCase
	NotifyUC usecase.NotifyUseCase
	DiagUC   usecase.DiagnosticsUseCase

	tr       *i18n.Translator
	operator string
	log      *zerolog.Logger
}

func NewBotFacade(
	subUC usecase.SubscriberUseCase,
	notifyUC usecase.NotifyUseCase,
	diagUC usecase.DiagnosticsUseCase,
	tr *i18n.Translator,
	operator string,
	logger *zerolog.Logger,
) *BotFacade {
	return &BotFacade{
		SubUC:    subUC,
		NotifyUC: notifyUC,
		DiagUC:   diagUC,
		tr:       tr,
		operator: strings.TrimPrefix(operator, "@"),
		log:      logger,
	}
}

func (b *BotFacade) IsOperator(username string) bool { return b.DiagUC.IsOperator(username) }

func (b *BotFacade) IsPosition(text string) bool {
	_, ok := b.SubUC.Positions().ByLabel(text)
	return ok
}

func (b *BotFacade) IsState(text string) bool { return b.SubUC.Locations().IsState(text) }
func (b *BotFacade) IsCity(text string) bool  { return b.SubUC.Locations().IsCity(text) }

// HandleStart opens the registration flow.
func (b *BotFacade) HandleStart(ctx context.Context, tgID int64, fullName string) (Reply, error) {
	registered, err := b.registered(ctx, tgID)
	if err != nil {
		return Reply{}, err
	}
	if registered {
		return Reply{Text: b.tr.T("already_registered"), RemoveKeyboard: true}, nil
	}
	b.log.Info().Str("name", fullName).Msg("начал регистрацию")
	return Reply{Text: b.tr.T("choose_position"), Keyboard: b.SubUC.Positions().Labels()}, nil
}

// HandlePosition registers the sender under the chosen position and answers with the digest.
func (b *BotFacade) HandlePosition(ctx context.Context, tgID, chatID int64, username, fullName, label string) (Reply, error) {
	s, err := b.SubUC.Register(ctx, tgID, chatID, username, label)
	if errors.Is(err, domain.ErrAlreadyExists) {
		return Reply{Text: b.tr.T("already_registered"), RemoveKeyboard: true}, nil
	}
	if err != nil {
		return Reply{}, err
	}
	digest, err := b.NotifyUC.Digest(ctx, s.Position)
	if err != nil {
		b.log.Warn().Err(err).Str("position", string(s.Position)).Msg("digest unavailable")
		digest = b.tr.T("digest_intro")
	}
	b.log.Info().Str("name", fullName).Msg("закончил регистрацию")
	return Reply{Text: digest, HTML: true, RemoveKeyboard: true}, nil
}

func (b *BotFacade) HandleHelp() Reply {
	return Reply{Text: b.tr.T("help", b.operator)}
}

func (b *BotFacade) HandleCommands() Reply {
	return Reply{Text: b.tr.T("commands"), HTML: true}
}

func (b *BotFacade) HandleSetLocation(ctx context.Context, tgID int64) (Reply, error) {
	registered, err := b.registered(ctx, tgID)
	if err != nil {
		return Reply{}, err
	}
	if !registered {
		return Reply{Text: b.tr.T("location_requires_subscription"), RemoveKeyboard: true}, nil
	}
	return Reply{Text: b.tr.T("choose_state"), Keyboard: b.SubUC.Locations().States()}, nil
}

func (b *BotFacade) HandleState(ctx context.Context, tgID int64, state string) (Reply, error) {
	pick, err := b.SubUC.PickState(ctx, tgID, state)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return Reply{Text: b.tr.T("subscribe_first"), RemoveKeyboard: true}, nil
	case err != nil:
		return Reply{}, err
	case pick.Saved:
		return Reply{Text: b.tr.T("city_saved"), RemoveKeyboard: true}, nil
	}
	return Reply{Text: b.tr.T("choose_city"), Keyboard: pick.Cities}, nil
}

func (b *BotFacade) HandleCity(ctx context.Context, tgID int64, city string) (Reply, error) {
	err := b.SubUC.SetCity(ctx, tgID, city)
	if errors.Is(err, domain.ErrNotFound) {
		return Reply{Text: b.tr.T("subscribe_first"), RemoveKeyboard: true}, nil
	}
	if err != nil {
		return Reply{}, err
	}
	return Reply{Text: b.tr.T("city_saved"), RemoveKeyboard: true}, nil
}

func (b *BotFacade) HandleRemoveLocation(ctx context.Context, tgID int64) (Reply, error) {
	err := b.SubUC.ClearCity(ctx, tgID)
	if errors.Is(err, domain.ErrNotFound) {
		return Reply{Text: b.tr.T("subscribe_first"), RemoveKeyboard: true}, nil
	}
	if err != nil {
		return Reply{}, err
	}
	return Reply{Text: b.tr.T("city_removed")}, nil
}

func (b *BotFacade) HandleUnsubscribe(ctx context.Context, tgID int64, fullName string) (Reply, error) {
	err := b.SubUC.Unsubscribe(ctx, tgID)
	if errors.Is(err, domain.ErrNotFound) {
		return Reply{Text: b.tr.T("not_subscribed"), RemoveKeyboard: true}, nil
	}
	if err != nil {
		return Reply{}, err
	}
	b.log.Info().Str("name", fullName).Msg("отписался")
	return Reply{Text: b.tr.T("unsubscribed"), RemoveKeyboard: true}, nil
}

// ---- operator commands ----

func (b *BotFacade) HandleDump(ctx context.Context) (Reply, error) {
	name, data, err := b.DiagUC.Dump(ctx)
	if err != nil {
		return Reply{}, err
	}
	return Reply{Document: &Document{Name: name, Data: data}}, nil
}

func (b *BotFacade) HandleAllUsers(ctx context.Context) (Reply, error) {
	text, err := b.DiagUC.SubscribersReport(ctx)
	if err != nil {
		return Reply{}, err
	}
	return Reply{Text: text}, nil
}

func (b *BotFacade) HandleLogs(ctx context.Context) (Reply, error) {
	text, err := b.DiagUC.LogTail(ctx)
	if err != nil {
		return Reply{}, err
	}
	return Reply{Text: text}, nil
}

func (b *BotFacade) registered(ctx context.Context, tgID int64) (bool, error) {
	_, err := b.SubUC.Get(ctx, tgID)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, domain.ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}
