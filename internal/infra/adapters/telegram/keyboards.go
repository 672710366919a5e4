package telegram

import (
	"strings"

	"hh-vacancy-bot/internal/domain/ports/adapter"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// buttonsPerRow matches the default width of the original reply keyboards.
const buttonsPerRow = 3

// replyKeyboard lays labels out left to right, perRow buttons per row.
func replyKeyboard(labels []string, perRow int) tgbotapi.ReplyKeyboardMarkup {
	if perRow <= 0 {
		perRow = buttonsPerRow
	}
	rows := make([][]tgbotapi.KeyboardButton, 0, (len(labels)+perRow-1)/perRow)
	for start := 0; start < len(labels); start += perRow {
		end := start + perRow
		if end > len(labels) {
			end = len(labels)
		}
		row := make([]tgbotapi.KeyboardButton, 0, end-start)
		for _, l := range labels[start:end] {
			row = append(row, tgbotapi.NewKeyboardButton(l))
		}
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(row...))
	}
	kb := tgbotapi.NewReplyKeyboard(rows...)
	kb.ResizeKeyboard = true
	return kb
}

// inlineKeyboard converts port buttons to tgbotapi markup.
// - If btn.URL is set, the button opens a link
// - Else if btn.Data is set, the button sends callback data
// - Else a safe fallback uses btn.Text as callback data
func inlineKeyboard(rows [][]adapter.InlineButton) (tgbotapi.InlineKeyboardMarkup, bool) {
	kbRows := make([][]tgbotapi.InlineKeyboardButton, 0, len(rows))
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		r := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, btn := range row {
			label := strings.TrimSpace(btn.Text)
			if label == "" {
				label = "•"
			}
			switch {
			case btn.URL != "":
				r = append(r, tgbotapi.NewInlineKeyboardButtonURL(label, btn.URL))
			case btn.Data != "":
				r = append(r, tgbotapi.NewInlineKeyboardButtonData(label, btn.Data))
			default:
				r = append(r, tgbotapi.NewInlineKeyboardButtonData(label, label))
			}
		}
		kbRows = append(kbRows, r)
	}
	if len(kbRows) == 0 {
		return tgbotapi.InlineKeyboardMarkup{}, false
	}
	return tgbotapi.NewInlineKeyboardMarkup(kbRows...), true
}
