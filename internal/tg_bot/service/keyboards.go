package service

import (
	"github.com/DenisKhanov/SolarBot/internal/tg_bot/constant"
	"github.com/DenisKhanov/SolarBot/internal/tg_bot/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// mainMenuLayout is the row layout of the main menu.
var mainMenuLayout = [][]models.MenuAction{
	{models.MenuConsult},
	{models.MenuLoan, models.MenuSolar},
	{models.MenuAbout, models.MenuServices},
	{models.MenuWebsite, models.MenuWhatsApp},
	{models.MenuCall, models.MenuLanguage},
}

// keyboardMarkup builds the reply markup of kb in lang. KeyboardNone yields nil.
func keyboardMarkup(locale Localizer, kb models.Keyboard, lang string) interface{} {
	switch kb {
	case models.KeyboardMainMenu:
		return mainMenuKeyboard(locale, lang)
	case models.KeyboardBackOnly:
		return backKeyboard(locale, lang)
	case models.KeyboardPhoneRequest:
		return phoneRequestKeyboard(locale, lang)
	case models.KeyboardLanguagePicker:
		return languagePickerKeyboard(locale)
	}
	return nil
}

// mainMenuKeyboard creates the main menu reply keyboard.
func mainMenuKeyboard(locale Localizer, lang string) tgbotapi.ReplyKeyboardMarkup {
	rows := make([][]tgbotapi.KeyboardButton, 0, len(mainMenuLayout))
	for _, layoutRow := range mainMenuLayout {
		buttons := make([]tgbotapi.KeyboardButton, 0, len(layoutRow))
		for _, action := range layoutRow {
			buttons = append(buttons, tgbotapi.NewKeyboardButton(locale.Label(lang, action)))
		}
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(buttons...))
	}
	markup := tgbotapi.NewReplyKeyboard(rows...)
	markup.ResizeKeyboard = true
	return markup
}

// backKeyboard is shown while a dialogue collects input.
func backKeyboard(locale Localizer, lang string) tgbotapi.ReplyKeyboardMarkup {
	markup := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(locale.Label(lang, models.MenuBack))),
	)
	markup.ResizeKeyboard = true
	return markup
}

// phoneRequestKeyboard offers to share the Telegram contact instead of typing a number.
func phoneRequestKeyboard(locale Localizer, lang string) tgbotapi.ReplyKeyboardMarkup {
	markup := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButtonContact(locale.Text(lang, "btn_share_contact", nil))),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(locale.Label(lang, models.MenuBack))),
	)
	markup.ResizeKeyboard = true
	return markup
}

// languagePickerKeyboard lists every supported language, two per row.
func languagePickerKeyboard(locale Localizer) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for _, code := range locale.Languages() {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(locale.Text(code, "lang_name", nil), constant.CALLBACK_LANG_PREFIX+code))
		if len(row) == 2 {
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(row...))
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(row...))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
