package model

import (
	"time"

	"hh-vacancy-bot/internal/domain"

	"github.com/google/uuid"
)

// Subscriber is a registered Telegram user waiting for listings of one position,
// optionally narrowed down to a single city.
type Subscriber struct {
	ID           string
	TelegramID   int64
	ChatID       int64
	Username     string
	Position     PositionKey
	City         *string
	IsActive     bool
	RegisteredAt time.Time
}

func NewSubscriber(id string, tgID, chatID int64, username string, position PositionKey) (*Subscriber, error) {
	if id == "" {
		id = uuid.NewString()
	}
	if tgID <= 0 || chatID == 0 {
		return nil, domain.ErrInvalidArgument
	}
	if position == "" {
		return nil, domain.ErrUnknownPosition
	}
	return &Subscriber{
		ID:           id,
		TelegramID:   tgID,
		ChatID:       chatID,
		Username:     username,
		Position:     position,
		IsActive:     true,
		RegisteredAt: time.Now(),
	}, nil
}

func (s *Subscriber) HasCity() bool { return s != nil && s.City != nil && *s.City != "" }

// CityName returns the city filter or "None" when it is not set.
func (s *Subscriber) CityName() string {
	if !s.HasCity() {
		return "None"
	}
	return *s.City
}

// Accepts reports whether the listing must be delivered to this subscriber:
// the position always has to match, and the location too once a city is chosen.
func (s *Subscriber) Accepts(l Listing) bool {
	if s == nil || !s.IsActive || s.Position != l.Category {
		return false
	}
	if !s.HasCity() {
		return true
	}
	return NormalizeLocation(*s.City) == l.Location
}
