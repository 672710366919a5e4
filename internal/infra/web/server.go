package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"hh-vacancy-bot/internal/domain/model"
	"hh-vacancy-bot/internal/infra/logging"
	"hh-vacancy-bot/internal/infra/metrics"
	"hh-vacancy-bot/internal/usecase"
)

// SubscriberLister is satisfied by usecase.SubscriberUseCase.
type SubscriberLister interface {
	List(ctx context.Context) ([]*model.Subscriber, error)
}

// CycleRunner is satisfied by sched.NotifyWorker.
type CycleRunner interface {
	RunOnce(ctx context.Context) (usecase.CycleReport, error)
}

// Server is the operator-facing HTTP API: health, metrics and a small admin surface.
type Server struct {
	subs   SubscriberLister
	cycles CycleRunner
	apiKey string
	log    *zerolog.Logger

	mu     sync.Mutex
	srv    *http.Server
	closed bool
}

func NewServer(subs SubscriberLister, cycles CycleRunner, apiKey string, logger *zerolog.Logger) *Server {
	return &Server{subs: subs, cycles: cycles, apiKey: apiKey, log: logging.Component(logger, "admin-http")}
}

// Router builds the chi route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(traceID, recoverer(s.log), requestLog(s.log))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.bearerAuth)
		r.Get("/subscribers", subscribersHandler(s.subs))
		r.Post("/cycle", cycleHandler(s.cycles))
	})
	return r
}

// Start listens on port until Shutdown is called. It returns at once when
// Shutdown already ran, so the two may be called from different goroutines
// in any order.
func (s *Server) Start(port int) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.srv = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	srv := s.srv
	s.mu.Unlock()

	s.log.Info().Int("port", port).Msg("admin HTTP server listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	srv := s.srv
	s.mu.Unlock()

	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}
