package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"hh-vacancy-bot/internal/domain"
	"hh-vacancy-bot/internal/usecase"
)

type subscriberView struct {
	ID           string    `json:"id"`
	TelegramID   int64     `json:"telegram_id"`
	Username     string    `json:"username"`
	Position     string    `json:"position"`
	City         *string   `json:"city"`
	RegisteredAt time.Time `json:"registered_at"`
}

func subscribersHandler(subs SubscriberLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := subs.List(r.Context())
		if err != nil {
			http.Error(w, "Failed to list subscribers", http.StatusInternalServerError)
			return
		}
		out := make([]subscriberView, 0, len(list))
		for _, s := range list {
			out = append(out, subscriberView{
				ID:           s.ID,
				TelegramID:   s.TelegramID,
				Username:     s.Username,
				Position:     string(s.Position),
				City:         s.City,
				RegisteredAt: s.RegisteredAt,
			})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

type cycleResponse struct {
	Report usecase.CycleReport `json:"report"`
	Error  string              `json:"error,omitempty"`
}

// cycleHandler runs one notify cycle synchronously. Category failures are
// reported in the body; only a busy lock changes the status code. The cycle
// keeps running when the client goes away.
func cycleHandler(cycles CycleRunner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report, err := cycles.RunOnce(context.WithoutCancel(r.Context()))
		if errors.Is(err, domain.ErrBusy) {
			http.Error(w, "A cycle is already running", http.StatusConflict)
			return
		}
		resp := cycleResponse{Report: report}
		if err != nil {
			resp.Error = err.Error()
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
