//go:build !integration

package telegram

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"hh-vacancy-bot/internal/application"
	"hh-vacancy-bot/internal/domain"
	"hh-vacancy-bot/internal/domain/model"
	"hh-vacancy-bot/internal/domain/ports/adapter"
	"hh-vacancy-bot/internal/infra/i18n"
	"hh-vacancy-bot/internal/usecase"
)

// ---- fakes ----

type fakeAPI struct {
	mu       sync.Mutex
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
	sendErr  error
	updates  chan tgbotapi.Update
	stopped  bool
}

func newFakeAPI() *fakeAPI { return &fakeAPI{updates: make(chan tgbotapi.Update, 10)} }

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return tgbotapi.Message{}, f.sendErr
	}
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, nil
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel { return f.updates }

func (f *fakeAPI) StopReceivingUpdates() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = true
}

func (f *fakeAPI) lastMessage(t *testing.T) tgbotapi.MessageConfig {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		t.Fatal("nothing was sent")
	}
	msg, ok := f.sent[len(f.sent)-1].(tgbotapi.MessageConfig)
	if !ok {
		t.Fatalf("last sent item is %T, not a message", f.sent[len(f.sent)-1])
	}
	return msg
}

func (f *fakeAPI) deletes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.requests {
		if _, ok := r.(tgbotapi.DeleteMessageConfig); ok {
			n++
		}
	}
	return n
}

type memRepo struct {
	mu   sync.Mutex
	subs []*model.Subscriber
}

func (m *memRepo) FindByTelegramID(_ context.Context, id int64) (*model.Subscriber, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.subs {
		if s.TelegramID == id {
			cp := *s
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memRepo) FindByUsername(_ context.Context, u string) (*model.Subscriber, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.subs {
		if s.Username == u {
			cp := *s
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memRepo) Add(_ context.Context, s *model.Subscriber) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.subs = append(m.subs, &cp)
	return nil
}

func (m *memRepo) Remove(context.Context, string) error              { return nil }
func (m *memRepo) UpdateCity(context.Context, string, *string) error { return nil }
func (m *memRepo) All(context.Context) ([]*model.Subscriber, error)  { return m.subs, nil }
func (m *memRepo) Count(context.Context) (int, error)                { return len(m.subs), nil }
func (m *memRepo) Dump(context.Context) (string, []byte, error)      { return "database.db", []byte("db"), nil }

type denyAll struct{}

func (denyAll) Allow(context.Context, int64, string) (bool, error) { return false, nil }

func newTestAdapter(t *testing.T, api *fakeAPI, limiter RateLimiter) (*RealTelegramBotAdapter, *memRepo) {
	t.Helper()
	logger := zerolog.New(io.Discard)
	tr, err := i18n.NewTranslator(i18n.LocalesFS, "ru")
	if err != nil {
		t.Fatalf("translator: %v", err)
	}
	catalog, err := model.NewPositionCatalog([]model.Position{
		{Label: "Python Web", SourceURL: "https://api.hh.ru/vacancies?text=python"},
		{Label: "Data Analyst", SourceURL: "https://api.hh.ru/vacancies?text=data"},
		{Label: "QA", SourceURL: "https://api.hh.ru/vacancies?text=qa"},
		{Label: "Java", SourceURL: "https://api.hh.ru/vacancies?text=java"},
	})
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	locations, _ := model.NewLocationTree([]model.Region{{State: "Москва"}})

	repo := &memRepo{}
	r := newAdapter(api, nil, tr, limiter, 2, &logger)
	snaps := snapshotStub{}
	composer := usecase.NewNotificationComposer(nil, tr, &logger)
	subUC := usecase.NewSubscriberUseCase(repo, catalog, locations, &logger)
	notifyUC := usecase.NewNotifyUseCase(nil, snaps, repo, r, composer, catalog, &logger)
	diagUC := usecase.NewDiagnosticsUseCase(repo, repo, r, tr, "s_tee", "", &logger)
	r.SetFacade(application.NewBotFacade(subUC, notifyUC, diagUC, tr, "s_tee", &logger))
	return r, repo
}

type snapshotStub struct{}

func (snapshotStub) Read(context.Context, model.PositionKey) ([]model.Listing, error) {
	return nil, domain.ErrNotFound
}
func (snapshotStub) Write(context.Context, model.PositionKey, []model.Listing) error { return nil }

func command(text string, from *tgbotapi.User) tgbotapi.Update {
	msg := &tgbotapi.Message{MessageID: 7, From: from, Chat: &tgbotapi.Chat{ID: from.ID * 10}, Text: text}
	if len(text) > 0 && text[0] == '/' {
		msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(text)}}
	}
	return tgbotapi.Update{Message: msg}
}

// ---- tests ----

func TestHandleUpdate_Registration(t *testing.T) {
	ctx := context.Background()
	api := newFakeAPI()
	r, repo := newTestAdapter(t, api, nil)
	alice := &tgbotapi.User{ID: 1, UserName: "alice", FirstName: "Alice"}

	t.Run("start shows the position keyboard", func(t *testing.T) {
		if err := r.handleUpdate(ctx, command("/start", alice)); err != nil {
			t.Fatalf("handleUpdate failed: %v", err)
		}
		msg := api.lastMessage(t)
		if msg.Text != "Выберите позицию:" || msg.ChatID != 10 {
			t.Errorf("unexpected message: %q to %d", msg.Text, msg.ChatID)
		}
		kb, ok := msg.ReplyMarkup.(tgbotapi.ReplyKeyboardMarkup)
		if !ok {
			t.Fatalf("expected a reply keyboard, got %T", msg.ReplyMarkup)
		}
		if len(kb.Keyboard) != 2 || len(kb.Keyboard[0]) != 3 || kb.Keyboard[1][0].Text != "Java" {
			t.Errorf("unexpected layout: %+v", kb.Keyboard)
		}
	})

	t.Run("position text registers and replies in HTML", func(t *testing.T) {
		if err := r.handleUpdate(ctx, command("QA", alice)); err != nil {
			t.Fatalf("handleUpdate failed: %v", err)
		}
		msg := api.lastMessage(t)
		if msg.ParseMode != tgbotapi.ModeHTML {
			t.Errorf("expected HTML digest, got parse mode %q", msg.ParseMode)
		}
		if _, ok := msg.ReplyMarkup.(tgbotapi.ReplyKeyboardRemove); !ok {
			t.Errorf("expected keyboard removal, got %T", msg.ReplyMarkup)
		}
		if s, err := repo.FindByTelegramID(ctx, 1); err != nil || s.Position != "qa" || s.ChatID != 10 {
			t.Errorf("unexpected subscriber: %+v %v", s, err)
		}
	})

	t.Run("unknown text is deleted", func(t *testing.T) {
		before := api.deletes()
		if err := r.handleUpdate(ctx, command("hello there", alice)); err != nil {
			t.Fatalf("handleUpdate failed: %v", err)
		}
		if api.deletes() != before+1 {
			t.Error("expected the message to be deleted")
		}
	})
}

func TestHandleUpdate_Operator(t *testing.T) {
	ctx := context.Background()

	t.Run("non-operator command is deleted", func(t *testing.T) {
		api := newFakeAPI()
		r, _ := newTestAdapter(t, api, nil)
		if err := r.handleUpdate(ctx, command("/all_users", &tgbotapi.User{ID: 2, UserName: "mallory"})); err != nil {
			t.Fatalf("handleUpdate failed: %v", err)
		}
		if api.deletes() != 1 || len(api.sent) != 0 {
			t.Errorf("expected a silent delete, got %d deletes and %d sends", api.deletes(), len(api.sent))
		}
	})

	t.Run("operator gets the dump as a document", func(t *testing.T) {
		api := newFakeAPI()
		r, _ := newTestAdapter(t, api, nil)
		if err := r.handleUpdate(ctx, command("/db", &tgbotapi.User{ID: 3, UserName: "s_tee"})); err != nil {
			t.Fatalf("handleUpdate failed: %v", err)
		}
		if len(api.sent) != 1 {
			t.Fatalf("expected one upload, got %d", len(api.sent))
		}
		doc, ok := api.sent[0].(tgbotapi.DocumentConfig)
		if !ok || doc.ChatID != 30 {
			t.Errorf("unexpected upload %T %+v", api.sent[0], api.sent[0])
		}
	})
}

func TestHandleUpdate_RateLimited(t *testing.T) {
	api := newFakeAPI()
	r, _ := newTestAdapter(t, api, denyAll{})
	if err := r.handleUpdate(context.Background(), command("/start", &tgbotapi.User{ID: 1, UserName: "alice"})); err != nil {
		t.Fatalf("handleUpdate failed: %v", err)
	}
	if msg := api.lastMessage(t); msg.Text != "Слишком много запросов. Попробуйте позже." {
		t.Errorf("unexpected reply %q", msg.Text)
	}
}

func TestSendPhoto(t *testing.T) {
	ctx := context.Background()
	rows := [][]adapter.InlineButton{{{Text: "Откликнуться", URL: "https://hh.ru/vacancy/1"}}}
	photo := adapter.Photo{Name: "qa.jpg", Bytes: []byte{0xff, 0xd8}}

	t.Run("should send an HTML caption with a URL button", func(t *testing.T) {
		api := newFakeAPI()
		r, _ := newTestAdapter(t, api, nil)

		res := r.SendPhoto(ctx, 42, photo, "<strong>QA</strong>", rows)

		if !res.OK() {
			t.Fatalf("expected delivery, got %v", res.Status)
		}
		p, ok := api.sent[0].(tgbotapi.PhotoConfig)
		if !ok {
			t.Fatalf("expected a photo, got %T", api.sent[0])
		}
		if p.ChatID != 42 || p.Caption != "<strong>QA</strong>" || p.ParseMode != tgbotapi.ModeHTML {
			t.Errorf("unexpected photo config: %+v", p)
		}
		markup, ok := p.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
		if !ok || markup.InlineKeyboard[0][0].URL == nil || *markup.InlineKeyboard[0][0].URL != "https://hh.ru/vacancy/1" {
			t.Errorf("unexpected markup: %+v", p.ReplyMarkup)
		}
	})

	t.Run("should classify a blocked recipient", func(t *testing.T) {
		api := newFakeAPI()
		api.sendErr = &tgbotapi.Error{Code: 403, Message: "Forbidden: bot was blocked by the user"}
		r, _ := newTestAdapter(t, api, nil)

		if res := r.SendPhoto(ctx, 42, photo, "x", rows); res.Status != model.Blocked {
			t.Errorf("expected Blocked, got %v", res.Status)
		}
	})
}

func TestClassifyError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want model.DeliveryStatus
	}{
		{"nil", nil, model.Delivered},
		{"forbidden", &tgbotapi.Error{Code: 403, Message: "Forbidden: bot was blocked by the user"}, model.Blocked},
		{"chat not found", &tgbotapi.Error{Code: 400, Message: "Bad Request: chat not found"}, model.Blocked},
		{"deactivated", &tgbotapi.Error{Code: 400, Message: "Bad Request: USER_IS_DEACTIVATED user is deactivated"}, model.Blocked},
		{"flood", &tgbotapi.Error{Code: 429, Message: "Too Many Requests: retry after 5"}, model.Transient},
		{"server", &tgbotapi.Error{Code: 502, Message: "Bad Gateway"}, model.Transient},
		{"bad caption", &tgbotapi.Error{Code: 400, Message: "Bad Request: can't parse entities"}, model.Fatal},
		{"network", errors.New("dial tcp: i/o timeout"), model.Transient},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ClassifyError(tc.err).Status; got != tc.want {
				t.Errorf("ClassifyError() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestStartPolling_StopsOnCancel(t *testing.T) {
	api := newFakeAPI()
	r, _ := newTestAdapter(t, api, nil)
	api.updates <- command("/help", &tgbotapi.User{ID: 1, UserName: "alice"})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.StartPolling(ctx) }()

	deadline := time.After(2 * time.Second)
	for {
		api.mu.Lock()
		n := len(api.sent)
		api.mu.Unlock()
		if n > 0 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("update was not handled")
		case <-time.After(10 * time.Millisecond):
		}
	}
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("StartPolling did not return after cancel")
	}
	if !api.stopped {
		t.Error("expected updates to be stopped")
	}
}
