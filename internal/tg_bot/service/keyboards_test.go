package service

import (
	"testing"

	"github.com/DenisKhanov/SolarBot/internal/tg_bot/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMainMenuKeyboardRoundTripsThroughMatchMenu(t *testing.T) {
	table := newTable(t)
	for _, lang := range table.Languages() {
		markup := mainMenuKeyboard(table, lang)
		var count int
		for _, row := range markup.Keyboard {
			for _, button := range row {
				count++
				action, ok := table.MatchMenu(lang, button.Text)
				require.True(t, ok, "%s: %q is not a menu label", lang, button.Text)
				assert.NotEqual(t, models.MenuBack, action)
			}
		}
		assert.Equal(t, 9, count, lang)
	}
}

func TestPhoneRequestKeyboard(t *testing.T) {
	table := newTable(t)
	markup, ok := keyboardMarkup(table, models.KeyboardPhoneRequest, "es").(tgbotapi.ReplyKeyboardMarkup)
	require.True(t, ok)
	require.Len(t, markup.Keyboard, 2)
	assert.True(t, markup.Keyboard[0][0].RequestContact)
	assert.Equal(t, table.Text("es", "btn_share_contact", nil), markup.Keyboard[0][0].Text)
	assert.Equal(t, table.Label("es", models.MenuBack), markup.Keyboard[1][0].Text)
}

func TestKeyboardNoneHasNoMarkup(t *testing.T) {
	assert.Nil(t, keyboardMarkup(newTable(t), models.KeyboardNone, "en"))
}
