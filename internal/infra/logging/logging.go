package logging

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"hh-vacancy-bot/internal/config"

	"github.com/rs/zerolog"
)

// New builds the process logger from cfg. Levels are trace|debug|info|warn|error,
// formats json|console (dev forces console). A non-empty cfg.File receives every
// event as a JSON line as well; the returned closer releases it.
func New(cfg config.LogConfig, dev bool) (*zerolog.Logger, io.Closer, error) {
	zerolog.SetGlobalLevel(parseLevel(cfg.Level))

	var console io.Writer = os.Stdout
	if dev || strings.EqualFold(cfg.Format, "console") {
		console = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}

	out, closer := console, io.Closer(nopCloser{})
	if cfg.File != "" {
		f, err := openSink(cfg.File)
		if err != nil {
			return nil, nil, err
		}
		// The file stays JSON even when stdout is pretty-printed; /logs serves it raw.
		out, closer = zerolog.MultiLevelWriter(console, f), f
	}

	logger := zerolog.New(out).With().Timestamp().Logger()
	if cfg.Sampling && !dev {
		logger = logger.Sample(zerolog.LevelSampler{DebugSampler: &zerolog.BasicSampler{N: 100}})
	}
	return &logger, closer, nil
}

func parseLevel(s string) zerolog.Level {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil || s == "" {
		return zerolog.InfoLevel
	}
	return level
}

func openSink(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Component returns a child of base tagged with the component name.
func Component(base *zerolog.Logger, name string) *zerolog.Logger {
	l := base.With().Str("component", name).Logger()
	return &l
}

type ctxKey int

const (
	ctxTraceID ctxKey = iota
	ctxTgID
)

func WithTraceID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxTraceID, id)
}

func WithTgID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, ctxTgID, id)
}

// With returns base enriched with the trace_id and tg_id found in ctx.
func With(ctx context.Context, base *zerolog.Logger) *zerolog.Logger {
	l := base.With()
	if v, ok := ctx.Value(ctxTraceID).(string); ok {
		l = l.Str("trace_id", v)
	}
	if v, ok := ctx.Value(ctxTgID).(int64); ok {
		l = l.Int64("tg_id", v)
	}
	logger := l.Logger()
	return &logger
}

// TraceDuration logs entry and exit of name at trace level.
//
//	defer logging.TraceDuration(logger, "NotifyUC.RunCycle")()
func TraceDuration(logger *zerolog.Logger, name string) func() {
	start := time.Now()
	logger.Trace().Str("method", name).Msg("start")
	return func() {
		logger.Trace().Str("method", name).Dur("duration", time.Since(start)).Msg("finish")
	}
}
