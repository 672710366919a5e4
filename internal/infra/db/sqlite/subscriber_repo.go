package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"hh-vacancy-bot/internal/domain"
	"hh-vacancy-bot/internal/domain/model"
	"hh-vacancy-bot/internal/domain/ports/repository"
	"hh-vacancy-bot/internal/infra/metrics"
)

var (
	_ repository.SubscriberRepository = (*SubscriberRepo)(nil)
	_ repository.Dumper               = (*SubscriberRepo)(nil)
)

const schema = `CREATE TABLE IF NOT EXISTS users (
	id            TEXT PRIMARY KEY,
	telegram_id   INTEGER NOT NULL UNIQUE,
	chat_id       INTEGER NOT NULL,
	username      TEXT NOT NULL DEFAULT '',
	position      TEXT NOT NULL,
	city          TEXT,
	is_active     INTEGER NOT NULL DEFAULT 1,
	registered_at TEXT NOT NULL
)`

const selectColumns = `SELECT id, telegram_id, chat_id, username, position, city, is_active, registered_at FROM users`

// SubscriberRepo keeps the subscriber directory in a single SQLite file.
type SubscriberRepo struct {
	db   *sql.DB
	path string
}

// Open opens (or creates) the database at path and ensures the users table exists.
func Open(path string) (*SubscriberRepo, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}
	// sqlite has a single writer.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating users table: %w", err)
	}
	return &SubscriberRepo{db: db, path: path}, nil
}

func (r *SubscriberRepo) Close() error { return r.db.Close() }

func (r *SubscriberRepo) FindByTelegramID(ctx context.Context, tgID int64) (*model.Subscriber, error) {
	return r.one(ctx, selectColumns+` WHERE telegram_id = ?`, tgID)
}

func (r *SubscriberRepo) FindByUsername(ctx context.Context, username string) (*model.Subscriber, error) {
	return r.one(ctx, selectColumns+` WHERE username = ? COLLATE NOCASE ORDER BY rowid LIMIT 1`, strings.TrimPrefix(username, "@"))
}

func (r *SubscriberRepo) Add(ctx context.Context, s *model.Subscriber) error {
	const q = `INSERT INTO users (id, telegram_id, chat_id, username, position, city, is_active, registered_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q,
		s.ID, s.TelegramID, s.ChatID, s.Username, string(s.Position), nullable(s.City), s.IsActive,
		s.RegisteredAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return domain.ErrAlreadyExists
		}
		return fmt.Errorf("insert subscriber: %w", err)
	}
	return nil
}

func (r *SubscriberRepo) Remove(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete subscriber: %w", err)
	}
	return expectOne(res)
}

func (r *SubscriberRepo) UpdateCity(ctx context.Context, id string, city *string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET city = ? WHERE id = ?`, nullable(city), id)
	if err != nil {
		return fmt.Errorf("update city: %w", err)
	}
	return expectOne(res)
}

func (r *SubscriberRepo) All(ctx context.Context) ([]*model.Subscriber, error) {
	defer r.reportStats()

	rows, err := r.db.QueryContext(ctx, selectColumns+` ORDER BY rowid`)
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
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count subscribers: %w", err)
	}
	return n, nil
}

// Dump returns a consistent copy of the database file made with VACUUM INTO.
func (r *SubscriberRepo) Dump(ctx context.Context) (string, []byte, error) {
	dir, err := os.MkdirTemp("", "hhbot-dump-*")
	if err != nil {
		return "", nil, fmt.Errorf("dump: %w", err)
	}
	defer os.RemoveAll(dir)

	target := filepath.Join(dir, "database.db")
	if _, err := r.db.ExecContext(ctx, `VACUUM INTO ?`, target); err != nil {
		return "", nil, fmt.Errorf("vacuum into: %w", err)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		return "", nil, fmt.Errorf("read dump: %w", err)
	}
	return filepath.Base(r.path), data, nil
}

func (r *SubscriberRepo) one(ctx context.Context, q string, args ...any) (*model.Subscriber, error) {
	s, err := scan(r.db.QueryRowContext(ctx, q, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return s, err
}

func (r *SubscriberRepo) reportStats() {
	st := r.db.Stats()
	metrics.SetDBPoolStats(st.OpenConnections, st.Idle, st.InUse)
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(row scanner) (*model.Subscriber, error) {
	var (
		s          model.Subscriber
		position   string
		city       sql.NullString
		registered string
	)
	if err := row.Scan(&s.ID, &s.TelegramID, &s.ChatID, &s.Username, &position, &city, &s.IsActive, &registered); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan subscriber: %w", err)
	}
	s.Position = model.PositionKey(position)
	if city.Valid {
		c := city.String
		s.City = &c
	}
	if t, err := time.Parse(time.RFC3339Nano, registered); err == nil {
		s.RegisteredAt = t
	}
	return &s, nil
}

func nullable(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func expectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
