package usecase

import (
	"context"
	"fmt"
	"html"
	"strings"
	"unicode/utf8"

	"hh-vacancy-bot/internal/domain/model"
	"hh-vacancy-bot/internal/domain/ports/adapter"
	"hh-vacancy-bot/internal/infra/i18n"
	"hh-vacancy-bot/internal/infra/logging"

	"github.com/rs/zerolog"
)

const (
	// MaxCaptionRunes is Telegram's limit for a photo caption.
	MaxCaptionRunes = 1024
	// DigestSize is how many listings a new subscriber gets right after registration.
	DigestSize = 5

	applyButtonText = "Откликнуться"
)

// Compile-time check
var _ NotificationComposer = (*composer)(nil)

// Notification is everything needed to deliver one listing.
type Notification struct {
	Caption string
	Buttons [][]adapter.InlineButton
	Photo   adapter.Photo
}

// NotificationComposer turns listings into outgoing messages.
type NotificationComposer interface {
	Compose(ctx context.Context, l model.Listing) (*Notification, error)
	Digest(listings []model.Listing) string
	// Cleanup drops the images generated since the previous call.
	Cleanup(ctx context.Context) error
}

type composer struct {
	renderer adapter.ImageRenderer
	tr       *i18n.Translator
	log      *zerolog.Logger
}

func NewNotificationComposer(renderer adapter.ImageRenderer, tr *i18n.Translator, logger *zerolog.Logger) *composer {
	return &composer{renderer: renderer, tr: tr, log: logger}
}

func (c *composer) Compose(ctx context.Context, l model.Listing) (*Notification, error) {
	defer logging.TraceDuration(c.log, "Composer.Compose")()

	photo, err := c.renderer.Render(ctx, l.Name, l.Company, l.Salary)
	if err != nil {
		return nil, fmt.Errorf("render card for %q: %w", l.URL, err)
	}
	return &Notification{
		Caption: Caption(l),
		Buttons: [][]adapter.InlineButton{{{Text: applyButtonText, URL: l.URL}}},
		Photo:   photo,
	}, nil
}

func (c *composer) Cleanup(ctx context.Context) error {
	return c.renderer.Cleanup(ctx)
}

// Digest lists the first DigestSize listings after the intro line.
func (c *composer) Digest(listings []model.Listing) string {
	var b strings.Builder
	b.WriteString(c.tr.T("digest_intro"))
	if len(listings) > DigestSize {
		listings = listings[:DigestSize]
	}
	for _, l := range listings {
		fmt.Fprintf(&b, "<strong>%s</strong>\n", esc(l.Name))
		fmt.Fprintf(&b, "<strong>Опыт:</strong> %s. <strong>з/п:</strong> %s\n", esc(l.Experience), esc(l.Salary))
		fmt.Fprintf(&b, "<strong>Локация:</strong>  #%s\n", esc(l.Location))
		fmt.Fprintf(&b, "<strong>Требования:</strong>\n%s\n", esc(l.Requirements))
		fmt.Fprintf(&b, "<a href=\"%s\">Подробнее</a>\n\n", esc(l.URL))
	}
	return b.String()
}

// Caption renders the HTML caption of a listing. When the result exceeds
// MaxCaptionRunes the free-text fields are shortened one by one, the long
// ones first, until it fits. With every field cut down the fixed markup alone
// stays well under the limit.
func Caption(l model.Listing) string {
	fields := []*string{
		&l.Description, &l.Requirements, &l.Skills,
		&l.Company, &l.Name, &l.Salary, &l.Location, &l.Experience, &l.Schedule,
	}
	out := caption(l)
	for _, f := range fields {
		over := utf8.RuneCountInString(out) - MaxCaptionRunes
		if over <= 0 {
			break
		}
		*f = shorten(*f, over)
		out = caption(l)
	}
	return out
}

func caption(l model.Listing) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<strong>Позиция:</strong> %s\n", esc(l.Name))
	fmt.Fprintf(&b, "#%s\n\n", esc(ScheduleTag(l.Schedule)))
	fmt.Fprintf(&b, "<strong>Компания:</strong> %s\n", esc(l.Company))
	fmt.Fprintf(&b, "<strong>Локация:</strong> #%s\n", esc(l.Location))
	fmt.Fprintf(&b, "<strong>Зарплата:</strong> %s\n", esc(l.Salary))
	fmt.Fprintf(&b, "<strong>Опыт:</strong> %s\n\n", esc(l.Experience))
	fmt.Fprintf(&b, "<strong>Краткое описание:</strong>\n %s\n\n", esc(l.Description))
	fmt.Fprintf(&b, "<strong>Требования:</strong> \n%s\n\n", esc(l.Requirements))
	fmt.Fprintf(&b, "<strong>Ключевые навыки:</strong> %s\n", esc(l.Skills))
	return b.String()
}

// ScheduleTag turns "Полный день" into "полный_день".
func ScheduleTag(schedule string) string {
	return strings.ToLower(strings.ReplaceAll(schedule, " ", "_"))
}

// shorten drops at least n runes from the end of s and marks the cut with an ellipsis.
func shorten(s string, n int) string {
	r := []rune(s)
	keep := len(r) - n - 1
	if keep <= 0 {
		return "…"
	}
	return strings.TrimSpace(string(r[:keep])) + "…"
}

func esc(s string) string { return html.EscapeString(s) }
