//go:build !integration

package usecase_test

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"hh-vacancy-bot/internal/domain"
	"hh-vacancy-bot/internal/domain/model"
	"hh-vacancy-bot/internal/domain/ports/adapter"
	"hh-vacancy-bot/internal/domain/ports/repository"
	"hh-vacancy-bot/internal/infra/i18n"
)

func newTestLogger() *zerolog.Logger {
	l := zerolog.New(io.Discard)
	return &l
}

func newTestTranslator() *i18n.Translator {
	tr, err := i18n.NewTranslator(i18n.LocalesFS, "ru")
	if err != nil {
		panic(err)
	}
	return tr
}

func newTestCatalog() *model.PositionCatalog {
	c, err := model.NewPositionCatalog([]model.Position{
		{Label: "Python Web", SourceURL: "https://api.hh.ru/vacancies?text=python"},
		{Label: "QA", SourceURL: "https://api.hh.ru/vacancies?text=qa"},
		{Label: "Java", SourceURL: "https://api.hh.ru/vacancies?text=java"},
	})
	if err != nil {
		panic(err)
	}
	return c
}

func newTestLocations() *model.LocationTree {
	t, err := model.NewLocationTree([]model.Region{
		{State: "Москва"},
		{State: "Санкт-Петербург"},
		{State: "Республика Татарстан", Cities: []string{"Казань", "Набережные Челны"}},
	})
	if err != nil {
		panic(err)
	}
	return t
}

func strp(s string) *string { return &s }

// =============================
// Adapters
// =============================

// ---- Mock TelegramBotAdapter ----

type SentPhoto struct {
	ChatID  int64
	Photo   adapter.Photo
	Caption string
	Buttons [][]adapter.InlineButton
}

type SentText struct {
	ChatID int64
	Text   string
}

type MockTelegramBot struct {
	mu     sync.Mutex
	Photos []SentPhoto
	Texts  []SentText
	Docs   []string

	// SendPhotoFunc overrides the default Delivered result.
	SendPhotoFunc func(chatID int64) model.DeliveryResult
}

var _ adapter.TelegramBotAdapter = (*MockTelegramBot)(nil)

func (m *MockTelegramBot) SendMessage(ctx context.Context, chatID int64, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Texts = append(m.Texts, SentText{ChatID: chatID, Text: text})
	return nil
}

func (m *MockTelegramBot) SendHTML(ctx context.Context, chatID int64, html string) error {
	return m.SendMessage(ctx, chatID, html)
}

func (m *MockTelegramBot) SendButtons(ctx context.Context, chatID int64, text string, rows [][]adapter.InlineButton) error {
	return m.SendMessage(ctx, chatID, text)
}

func (m *MockTelegramBot) SendDocument(ctx context.Context, chatID int64, name string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Docs = append(m.Docs, name)
	return nil
}

func (m *MockTelegramBot) SendPhoto(ctx context.Context, chatID int64, photo adapter.Photo, caption string, rows [][]adapter.InlineButton) model.DeliveryResult {
	res := model.DeliveryResult{Status: model.Delivered}
	if m.SendPhotoFunc != nil {
		res = m.SendPhotoFunc(chatID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if res.OK() {
		m.Photos = append(m.Photos, SentPhoto{ChatID: chatID, Photo: photo, Caption: caption, Buttons: rows})
	}
	return res
}

func (m *MockTelegramBot) PhotoChats() []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]int64, 0, len(m.Photos))
	for _, p := range m.Photos {
		out = append(out, p.ChatID)
	}
	return out
}

// ---- Mock ListingSource ----

type MockListingSource struct {
	mu       sync.Mutex
	Listings map[model.PositionKey][]model.Listing
	Calls    int

	FetchFunc func(ctx context.Context, p model.Position) ([]model.Listing, error)
}

var _ adapter.ListingSource = (*MockListingSource)(nil)

func NewMockListingSource() *MockListingSource {
	return &MockListingSource{Listings: map[model.PositionKey][]model.Listing{}}
}

func (m *MockListingSource) FetchListings(ctx context.Context, p model.Position) ([]model.Listing, error) {
	m.mu.Lock()
	m.Calls++
	m.mu.Unlock()
	if m.FetchFunc != nil {
		return m.FetchFunc(ctx, p)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Listing, len(m.Listings[p.Key]))
	copy(out, m.Listings[p.Key])
	return out, nil
}

// ---- Mock ImageRenderer ----

type MockRenderer struct {
	mu       sync.Mutex
	Rendered int
	Cleaned  int

	RenderFunc func(title, company, salary string) (adapter.Photo, error)
}

var _ adapter.ImageRenderer = (*MockRenderer)(nil)

func (m *MockRenderer) Render(ctx context.Context, title, company, salary string) (adapter.Photo, error) {
	m.mu.Lock()
	m.Rendered++
	m.mu.Unlock()
	if m.RenderFunc != nil {
		return m.RenderFunc(title, company, salary)
	}
	return adapter.Photo{Name: title + ".jpg", Bytes: []byte(title + "|" + company + "|" + salary)}, nil
}

func (m *MockRenderer) Cleanup(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Cleaned++
	return nil
}

// =============================
// Repositories
// =============================

// ---- Mock SnapshotStore ----

type MockSnapshotStore struct {
	mu     sync.Mutex
	data   map[model.PositionKey][]model.Listing
	Writes int
}

var _ repository.SnapshotStore = (*MockSnapshotStore)(nil)

func NewMockSnapshotStore() *MockSnapshotStore {
	return &MockSnapshotStore{data: map[model.PositionKey][]model.Listing{}}
}

func (m *MockSnapshotStore) Read(ctx context.Context, key model.PositionKey) ([]model.Listing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := make([]model.Listing, len(v))
	copy(out, v)
	for i := range out {
		out[i].Category = key
	}
	return out, nil
}

func (m *MockSnapshotStore) Write(ctx context.Context, key model.PositionKey, listings []model.Listing) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]model.Listing, len(listings))
	copy(cp, listings)
	m.data[key] = cp
	m.Writes++
	return nil
}

// Seed stores listings without counting a write.
func (m *MockSnapshotStore) Seed(key model.PositionKey, listings ...model.Listing) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]model.Listing{}, listings...)
}

func (m *MockSnapshotStore) Has(key model.PositionKey) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok
}

// ---- Mock SubscriberRepository ----

type MockSubscriberRepo struct {
	mu      sync.Mutex
	ordered []*model.Subscriber

	AddFunc func(ctx context.Context, s *model.Subscriber) error
}

var (
	_ repository.SubscriberRepository = (*MockSubscriberRepo)(nil)
	_ repository.Dumper               = (*MockSubscriberRepo)(nil)
)

func NewMockSubscriberRepo() *MockSubscriberRepo {
	return &MockSubscriberRepo{}
}

func (r *MockSubscriberRepo) indexByTG(tgID int64) int {
	for i, s := range r.ordered {
		if s.TelegramID == tgID {
			return i
		}
	}
	return -1
}

func (r *MockSubscriberRepo) FindByTelegramID(ctx context.Context, tgID int64) (*model.Subscriber, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i := r.indexByTG(tgID); i >= 0 {
		cp := *r.ordered[i]
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (r *MockSubscriberRepo) FindByUsername(ctx context.Context, username string) (*model.Subscriber, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.ordered {
		if s.Username == username {
			cp := *s
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *MockSubscriberRepo) Add(ctx context.Context, s *model.Subscriber) error {
	if r.AddFunc != nil {
		return r.AddFunc(ctx, s)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.indexByTG(s.TelegramID) >= 0 {
		return domain.ErrAlreadyExists
	}
	cp := *s
	if cp.RegisteredAt.IsZero() {
		cp.RegisteredAt = time.Now()
	}
	r.ordered = append(r.ordered, &cp)
	return nil
}

func (r *MockSubscriberRepo) Remove(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, s := range r.ordered {
		if s.ID == id {
			r.ordered = append(r.ordered[:i], r.ordered[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *MockSubscriberRepo) UpdateCity(ctx context.Context, id string, city *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.ordered {
		if s.ID == id {
			if city == nil {
				s.City = nil
			} else {
				c := *city
				s.City = &c
			}
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *MockSubscriberRepo) All(ctx context.Context) ([]*model.Subscriber, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.Subscriber, 0, len(r.ordered))
	for _, s := range r.ordered {
		cp := *s
		out = append(out, &cp)
	}
	return out, nil
}

func (r *MockSubscriberRepo) Count(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.ordered), nil
}

func (r *MockSubscriberRepo) Dump(ctx context.Context) (string, []byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return "subscribers.txt", []byte(fmt.Sprintf("%d subscribers", len(r.ordered))), nil
}

// mustAdd registers a subscriber directly in the repo.
func (r *MockSubscriberRepo) mustAdd(tgID int64, username string, pos model.PositionKey, city *string) *model.Subscriber {
	s, err := model.NewSubscriber("", tgID, tgID*10, username, pos)
	if err != nil {
		panic(err)
	}
	s.City = city
	if err := r.Add(context.Background(), s); err != nil {
		panic(err)
	}
	return s
}
