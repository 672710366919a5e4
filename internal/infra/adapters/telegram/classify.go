package telegram

import (
	"errors"
	"net/http"
	"strings"

	"hh-vacancy-bot/internal/domain/model"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Bad Request descriptions that mean the recipient can no longer be reached.
var unreachableDescriptions = []string{
	"chat not found",
	"user is deactivated",
	"bot was blocked by the user",
}

// ClassifyError maps a Send error to a delivery outcome.
// 403 and the unreachable 400s are Blocked, 429 and 5xx are Transient, any other
// API rejection is Fatal. Errors that never reached the API are Transient.
func ClassifyError(err error) model.DeliveryResult {
	if err == nil {
		return model.DeliveryResult{Status: model.Delivered}
	}

	var apiErr *tgbotapi.Error
	if !errors.As(err, &apiErr) {
		return model.DeliveryResult{Status: model.Transient, Err: err}
	}

	desc := strings.ToLower(apiErr.Message)
	switch {
	case apiErr.Code == http.StatusForbidden:
		return model.DeliveryResult{Status: model.Blocked, Err: err}
	case apiErr.Code == http.StatusBadRequest && containsAny(desc, unreachableDescriptions):
		return model.DeliveryResult{Status: model.Blocked, Err: err}
	case apiErr.Code == http.StatusTooManyRequests, apiErr.Code >= http.StatusInternalServerError:
		return model.DeliveryResult{Status: model.Transient, Err: err}
	default:
		return model.DeliveryResult{Status: model.Fatal, Err: err}
	}
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
