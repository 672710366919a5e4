package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"hh-vacancy-bot/internal/domain"
	"hh-vacancy-bot/internal/domain/model"
	"hh-vacancy-bot/internal/domain/ports/repository"
	"hh-vacancy-bot/internal/infra/metrics"
)

var (
	_ repository.SubscriberRepository = (*SubscriberRepo)(nil)
	_ repository.Dumper               = (*SubscriberRepo)(nil)
)

const uniqueViolation = "23505"

// Schema creates the subscribers table; Migrate runs it.
const Schema = `
CREATE TABLE IF NOT EXISTS subscribers (
  seq           BIGSERIAL,
  id            UUID PRIMARY KEY,
  telegram_id   BIGINT NOT NULL UNIQUE,
  chat_id       BIGINT NOT NULL,
  username      TEXT NOT NULL DEFAULT '',
  position      TEXT NOT NULL,
  city          TEXT,
  is_active     BOOLEAN NOT NULL DEFAULT TRUE,
  registered_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS subscribers_username_idx ON subscribers (LOWER(username));
`

const selectColumns = `SELECT id, telegram_id, chat_id, username, position, city, is_active, registered_at FROM subscribers`

type SubscriberRepo struct {
	pool *pgxpool.Pool
}

func NewSubscriberRepo(pool *pgxpool.Pool) *SubscriberRepo {
	return &SubscriberRepo{pool: pool}
}

func (r *SubscriberRepo) Migrate(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

func (r *SubscriberRepo) FindByTelegramID(ctx context.Context, tgID int64) (*model.Subscriber, error) {
	return r.one(ctx, selectColumns+` WHERE telegram_id=$1;`, tgID)
}

func (r *SubscriberRepo) FindByUsername(ctx context.Context, username string) (*model.Subscriber, error) {
	username = strings.TrimPrefix(username, "@")
	return r.one(ctx, selectColumns+` WHERE LOWER(username)=LOWER($1) ORDER BY seq LIMIT 1;`, username)
}

func (r *SubscriberRepo) Add(ctx context.Context, s *model.Subscriber) error {
	const q = `
INSERT INTO subscribers (id, telegram_id, chat_id, username, position, city, is_active, registered_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8);`
	_, err := r.pool.Exec(ctx, q, s.ID, s.TelegramID, s.ChatID, s.Username, string(s.Position), s.City, s.IsActive, s.RegisteredAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.ErrAlreadyExists
		}
		return fmt.Errorf("insert subscriber: %w", err)
	}
	return nil
}

func (r *SubscriberRepo) Remove(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM subscribers WHERE id=$1;`, id)
	if err != nil {
		return fmt.Errorf("delete subscriber: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *SubscriberRepo) UpdateCity(ctx context.Context, id string, city *string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE subscribers SET city=$2 WHERE id=$1;`, id, city)
	if err != nil {
		return fmt.Errorf("update city: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *SubscriberRepo) All(ctx context.Context) ([]*model.Subscriber, error) {
	defer r.reportStats()

	rows, err := r.pool.Query(ctx, selectColumns+` ORDER BY seq;`)
	if err != nil {
		return nil, fmt.Errorf("list subscribers: %w", err)
	}
	defer rows.Close()

	var out []*model.Subscriber
	for rows.Next() {
		s, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	metrics.SetSubscribers(len(out))
	return out, nil
}

func (r *SubscriberRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM subscribers;`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count subscribers: %w", err)
	}
	return n, nil
}

type dumpRow struct {
	ID           string    `json:"id"`
	TelegramID   int64     `json:"telegram_id"`
	ChatID       int64     `json:"chat_id"`
	Username     string    `json:"username"`
	Position     string    `json:"position"`
	City         *string   `json:"city"`
	IsActive     bool      `json:"is_active"`
	RegisteredAt time.Time `json:"registered_at"`
}

// Dump exports the table as an indented JSON array.
func (r *SubscriberRepo) Dump(ctx context.Context) (string, []byte, error) {
	all, err := r.All(ctx)
	if err != nil {
		return "", nil, err
	}
	out := make([]dumpRow, 0, len(all))
	for _, s := range all {
		out = append(out, dumpRow{
			ID: s.ID, TelegramID: s.TelegramID, ChatID: s.ChatID, Username: s.Username,
			Position: string(s.Position), City: s.City, IsActive: s.IsActive, RegisteredAt: s.RegisteredAt,
		})
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", nil, fmt.Errorf("marshal dump: %w", err)
	}
	return "subscribers.json", data, nil
}

func (r *SubscriberRepo) one(ctx context.Context, q string, args ...any) (*model.Subscriber, error) {
	s, err := scan(r.pool.QueryRow(ctx, q, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return s, err
}

func (r *SubscriberRepo) reportStats() {
	st := r.pool.Stat()
	metrics.SetDBPoolStats(int(st.TotalConns()), int(st.IdleConns()), int(st.AcquiredConns()))
}

func scan(row pgx.Row) (*model.Subscriber, error) {
	var (
		s        model.Subscriber
		position string
	)
	if err := row.Scan(&s.ID, &s.TelegramID, &s.ChatID, &s.Username, &position, &s.City, &s.IsActive, &s.RegisteredAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan subscriber: %w", err)
	}
	s.Position = model.PositionKey(position)
	return &s, nil
}
