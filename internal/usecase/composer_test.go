//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"hh-vacancy-bot/internal/domain/model"
	"hh-vacancy-bot/internal/domain/ports/adapter"
	"hh-vacancy-bot/internal/usecase"
)

func TestCaption(t *testing.T) {
	t.Run("should render every field in order", func(t *testing.T) {
		l := model.Listing{
			Name:         "QA Engineer",
			Schedule:     "Удаленная работа",
			Company:      "Acme",
			Location:     "Москва",
			Salary:       "от 1000 до 2000 рублей",
			Experience:   "Можно без опыта",
			Description:  "Node",
			Requirements: "SQL",
			Skills:       "SQL, Postman",
		}
		want := "<strong>Позиция:</strong> QA Engineer\n" +
			"#удаленная_работа\n\n" +
			"<strong>Компания:</strong> Acme\n" +
			"<strong>Локация:</strong> #Москва\n" +
			"<strong>Зарплата:</strong> от 1000 до 2000 рублей\n" +
			"<strong>Опыт:</strong> Можно без опыта\n\n" +
			"<strong>Краткое описание:</strong>\n Node\n\n" +
			"<strong>Требования:</strong> \nSQL\n\n" +
			"<strong>Ключевые навыки:</strong> SQL, Postman\n"
		if got := usecase.Caption(l); got != want {
			t.Errorf("Caption() =\n%q\nwant\n%q", got, want)
		}
	})

	t.Run("should escape html in listing values", func(t *testing.T) {
		got := usecase.Caption(model.Listing{Company: "R&D <Lab>", Description: "a < b"})
		if !strings.Contains(got, "R&amp;D &lt;Lab&gt;") || !strings.Contains(got, "a &lt; b") {
			t.Errorf("values not escaped: %q", got)
		}
	})

	t.Run("should fit the limit when the company and title are oversized", func(t *testing.T) {
		l := model.Listing{
			Name:        strings.Repeat("QA ", 700),
			Company:     strings.Repeat("R&D ", 800),
			Description: "Node",
			Salary:      "Не указана",
		}

		got := usecase.Caption(l)

		if n := utf8.RuneCountInString(got); n > usecase.MaxCaptionRunes {
			t.Fatalf("caption has %d runes, limit %d", n, usecase.MaxCaptionRunes)
		}
		if !strings.Contains(got, "<strong>Позиция:</strong> QA QA") || !strings.Contains(got, "<strong>Зарплата:</strong> Не указана\n") {
			t.Errorf("expected the title prefix and short fields to survive: %q", got)
		}
		if !strings.Contains(got, "<strong>Компания:</strong> …\n") {
			t.Errorf("expected the company to be cut first: %q", got)
		}
	})

	t.Run("should shorten the description to fit the caption limit", func(t *testing.T) {
		l := model.Listing{
			Name:         "QA",
			Description:  strings.Repeat("д", 2000),
			Requirements: "Знание SQL",
		}
		got := usecase.Caption(l)
		if n := utf8.RuneCountInString(got); n > usecase.MaxCaptionRunes {
			t.Fatalf("caption has %d runes, limit is %d", n, usecase.MaxCaptionRunes)
		}
		if !strings.Contains(got, "д…") {
			t.Error("expected the description to end with an ellipsis")
		}
		if !strings.Contains(got, "Знание SQL") {
			t.Error("requirements must survive when the description is enough to cut")
		}
	})

	t.Run("should shorten requirements when the description is not enough", func(t *testing.T) {
		l := model.Listing{
			Description:  strings.Repeat("x", 50),
			Requirements: strings.Repeat("&", 600),
		}
		got := usecase.Caption(l)
		if n := utf8.RuneCountInString(got); n > usecase.MaxCaptionRunes {
			t.Fatalf("caption has %d runes, limit is %d", n, usecase.MaxCaptionRunes)
		}
	})
}

func TestComposer(t *testing.T) {
	ctx := context.Background()
	tr := newTestTranslator()

	t.Run("compose should attach the apply button and the rendered card", func(t *testing.T) {
		// --- Arrange ---
		r := &MockRenderer{}
		c := usecase.NewNotificationComposer(r, tr, newTestLogger())
		l := listing("qa", "QA Engineer", "Москва")

		// --- Act ---
		n, err := c.Compose(ctx, l)

		// --- Assert ---
		if err != nil {
			t.Fatalf("Compose failed: %v", err)
		}
		wantRows := [][]adapter.InlineButton{{{Text: "Откликнуться", URL: l.URL}}}
		if len(n.Buttons) != 1 || n.Buttons[0][0] != wantRows[0][0] {
			t.Errorf("unexpected buttons: %+v", n.Buttons)
		}
		if string(n.Photo.Bytes) != "QA Engineer|Acme|Не указана" {
			t.Errorf("renderer got unexpected input: %q", n.Photo.Bytes)
		}
	})

	t.Run("compose should fail when rendering fails", func(t *testing.T) {
		renderErr := errors.New("font missing")
		r := &MockRenderer{RenderFunc: func(string, string, string) (adapter.Photo, error) {
			return adapter.Photo{}, renderErr
		}}
		c := usecase.NewNotificationComposer(r, tr, newTestLogger())
		if _, err := c.Compose(ctx, listing("qa", "QA", "Москва")); !errors.Is(err, renderErr) {
			t.Errorf("expected render error, got %v", err)
		}
	})

	t.Run("digest should list at most five listings", func(t *testing.T) {
		c := usecase.NewNotificationComposer(&MockRenderer{}, tr, newTestLogger())
		var ls []model.Listing
		for _, name := range []string{"A", "B", "C", "D", "E", "F", "G"} {
			ls = append(ls, listing("qa", name, "Москва"))
		}

		got := c.Digest(ls)

		if n := strings.Count(got, "Подробнее</a>"); n != usecase.DigestSize {
			t.Errorf("expected %d entries, got %d", usecase.DigestSize, n)
		}
		if strings.Contains(got, "<strong>F</strong>") {
			t.Error("sixth listing must not be included")
		}
		wantEntry := "<strong>A</strong>\n" +
			"<strong>Опыт:</strong> Можно без опыта. <strong>з/п:</strong> Не указана\n" +
			"<strong>Локация:</strong>  #Москва\n" +
			"<strong>Требования:</strong>\nОтсутствуют\n" +
			"<a href=\"https://hh.ru/vacancy/A\">Подробнее</a>\n\n"
		if !strings.Contains(got, wantEntry) {
			t.Errorf("digest does not contain the expected entry:\n%s", got)
		}
	})
}
