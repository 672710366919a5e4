package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"hh-vacancy-bot/internal/domain"
	"hh-vacancy-bot/internal/domain/ports/adapter"
	"hh-vacancy-bot/internal/domain/ports/repository"
	"hh-vacancy-bot/internal/infra/i18n"
	"hh-vacancy-bot/internal/infra/logging"

	"github.com/rs/zerolog"
)

const (
	// LogTailLines is the size of the window returned by the operator log command.
	LogTailLines = 19
	// maxMessageRunes is Telegram's limit for a text message.
	maxMessageRunes = 4096
)

// Compile-time check
var _ DiagnosticsUseCase = (*diagnosticsUC)(nil)

// DiagnosticsUseCase backs the operator-only commands and the periodic log report.
type DiagnosticsUseCase interface {
	IsOperator(username string) bool
	LogTail(ctx context.Context) (string, error)
	SubscribersReport(ctx context.Context) (string, error)
	Dump(ctx context.Context) (name string, data []byte, err error)
	// ReportLogs sends the log tail to the operator's chat.
	ReportLogs(ctx context.Context) error
}

type diagnosticsUC struct {
	subs     repository.SubscriberRepository
	dumper   repository.Dumper
	bot      adapter.TelegramBotAdapter
	tr       *i18n.Translator
	operator string
	logFile  string
	log      *zerolog.Logger
}

func NewDiagnosticsUseCase(
	subs repository.SubscriberRepository,
	dumper repository.Dumper,
	bot adapter.TelegramBotAdapter,
	tr *i18n.Translator,
	operator, logFile string,
	logger *zerolog.Logger,
) *diagnosticsUC {
	return &diagnosticsUC{
		subs:     subs,
		dumper:   dumper,
		bot:      bot,
		tr:       tr,
		operator: strings.TrimPrefix(operator, "@"),
		logFile:  logFile,
		log:      logger,
	}
}

func (u *diagnosticsUC) IsOperator(username string) bool {
	return u.operator != "" && strings.EqualFold(strings.TrimPrefix(username, "@"), u.operator)
}

func (u *diagnosticsUC) LogTail(ctx context.Context) (string, error) {
	defer logging.TraceDuration(u.log, "DiagnosticsUC.LogTail")()

	tail, err := logging.Tail(u.logFile, LogTailLines)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(tail) == "" {
		return u.tr.T("logs_empty"), nil
	}
	return clipHead(tail, maxMessageRunes), nil
}

func (u *diagnosticsUC) SubscribersReport(ctx context.Context) (string, error) {
	defer logging.TraceDuration(u.log, "DiagnosticsUC.SubscribersReport")()

	subs, err := u.subs.All(ctx)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString(u.tr.T("users_total", len(subs)))
	for _, s := range subs {
		b.WriteString(u.tr.T("users_row", s.Username, s.Position, s.CityName()))
	}
	return clipHead(b.String(), maxMessageRunes), nil
}

func (u *diagnosticsUC) Dump(ctx context.Context) (string, []byte, error) {
	defer logging.TraceDuration(u.log, "DiagnosticsUC.Dump")()

	name, data, err := u.dumper.Dump(ctx)
	if err != nil {
		return "", nil, fmt.Errorf("dump subscribers: %w", err)
	}
	return name, data, nil
}

func (u *diagnosticsUC) ReportLogs(ctx context.Context) error {
	defer logging.TraceDuration(u.log, "DiagnosticsUC.ReportLogs")()

	op, err := u.subs.FindByUsername(ctx, u.operator)
	if errors.Is(err, domain.ErrNotFound) {
		u.log.Warn().Str("operator", u.operator).Msg("operator is not subscribed, log report skipped")
		return nil
	}
	if err != nil {
		return err
	}
	tail, err := u.LogTail(ctx)
	if err != nil {
		return err
	}
	return u.bot.SendMessage(ctx, op.ChatID, tail)
}

// clipHead keeps the last max runes of s.
func clipHead(s string, max int) string {
	n := utf8.RuneCountInString(s)
	if n <= max {
		return s
	}
	r := []rune(s)
	return string(r[n-max:])
}
