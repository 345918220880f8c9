package constant

const (
	EMOJI_NEW          = "\U0001F195"           //🆕
	EMOJI_SUN          = "\U00002600\U0000FE0F" //☀️
	EMOJI_CHECK_MARK   = "\U00002714\U0000FE0F" //✔️
	EMOJI_GLOBE        = "\U0001F310"           //🌐
	EMOJI_BAR_CHART    = "\U0001F4CA"           //📊
	EMOJI_WARNING_SIGN = "\U000026A0\U0000FE0F" //⚠️

	COMMAND_START  = "start"
	COMMAND_LANG   = "lang"
	COMMAND_CANCEL = "cancel"
	COMMAND_ID     = "id"
	COMMAND_ADMIN  = "admin"

	// CALLBACK_LANG_PREFIX prefixes the callback data of language picker buttons, e.g. "lang:en".
	CALLBACK_LANG_PREFIX = "lang:"

	// LANGUAGE_PICKER_TEXT is shown before a language is known, so it is not localized.
	LANGUAGE_PICKER_TEXT = EMOJI_GLOBE + " Выберите язык / Choose language / Elige idioma / Wybierz język / Sprache wählen / Оберіть мову"
)
