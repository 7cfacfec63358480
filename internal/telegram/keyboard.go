package telegram

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-telegram/bot/models"
	"github.com/set-night/groqchat/internal/config"
	"github.com/set-night/groqchat/internal/domain"
)

// Callback data prefixes used by the settings keyboards.
const (
	callbackModel    = "model:"
	callbackWindow   = "window:"
	callbackShowCost = "show_cost"
)

const windowButtonsPerRow = 5

// InlineButton creates a single inline keyboard button.
func InlineButton(text, callbackData string) models.InlineKeyboardButton {
	return models.InlineKeyboardButton{
		Text:         text,
		CallbackData: callbackData,
	}
}

// InlineKeyboard creates an inline keyboard from rows of buttons.
func InlineKeyboard(rows ...[]models.InlineKeyboardButton) *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: rows,
	}
}

// SettingsKeyboard lists one button per catalog model, the window sizes and
// the cost toggle. The current choices are marked.
func SettingsKeyboard(catalog *config.Catalog, s domain.Settings) *models.InlineKeyboardMarkup {
	var rows [][]models.InlineKeyboardButton

	for _, m := range catalog.Models {
		label := m.Name
		if m.ID == s.Model {
			label = "✅ " + label
		}
		rows = append(rows, []models.InlineKeyboardButton{InlineButton(label, callbackModel+m.ID)})
	}

	var row []models.InlineKeyboardButton
	for k := domain.MinWindow; k <= domain.MaxWindow; k++ {
		label := strconv.Itoa(k)
		if k == s.Window {
			label = "[" + label + "]"
		}
		row = append(row, InlineButton(label, fmt.Sprintf("%s%d", callbackWindow, k)))
		if len(row) == windowButtonsPerRow {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}

	cost := "❌ Off"
	if s.ShowCost {
		cost = "✅ On"
	}
	rows = append(rows, []models.InlineKeyboardButton{InlineButton("💰 Show cost: "+cost, callbackShowCost)})

	return InlineKeyboard(rows...)
}

// ApplyCallback returns s changed by the pressed settings button.
func ApplyCallback(s domain.Settings, data string) (domain.Settings, error) {
	switch {
	case strings.HasPrefix(data, callbackModel):
		s.Model = strings.TrimPrefix(data, callbackModel)
	case strings.HasPrefix(data, callbackWindow):
		k, err := strconv.Atoi(strings.TrimPrefix(data, callbackWindow))
		if err != nil {
			return s, fmt.Errorf("%w: %q", domain.ErrWindowOutOfRange, data)
		}
		s.Window = k
	case data == callbackShowCost:
		s.ShowCost = !s.ShowCost
	default:
		return s, fmt.Errorf("unknown settings callback %q", data)
	}
	return s, nil
}
