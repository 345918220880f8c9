// Package locale holds the user-facing texts of the bot for every supported language.
package locale

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/DenisKhanov/SolarBot/internal/tg_bot/models"
	"gopkg.in/yaml.v3"
)

//go:embed texts.yaml
var embeddedTexts []byte

// ErrUnknownLanguage is returned when the default language has no texts.
var ErrUnknownLanguage = errors.New("unknown language")

// pickerOrder is the order languages appear in the picker. Languages added by an
// override file go after these, sorted by code.
var pickerOrder = []string{"ru", "en", "es", "pl", "de", "uk"}

// menuKeys maps button text keys to stable menu actions.
var menuKeys = map[string]models.MenuAction{
	"btn_consult":  models.MenuConsult,
	"btn_loan":     models.MenuLoan,
	"btn_solar":    models.MenuSolar,
	"btn_about":    models.MenuAbout,
	"btn_services": models.MenuServices,
	"btn_website":  models.MenuWebsite,
	"btn_whatsapp": models.MenuWhatsApp,
	"btn_call":     models.MenuCall,
	"btn_lang":     models.MenuLanguage,
	"btn_back":     models.MenuBack,
}

// Table maps (language, key) to a template with {name} placeholders.
// It is filled at startup and read-only afterwards.
type Table struct {
	texts       map[string]map[string]string
	menu        map[string]map[string]models.MenuAction // language -> label -> action
	languages   []string
	defaultLang string
}

// New returns the table built from the embedded texts.
func New(defaultLang string) (*Table, error) {
	return Load(embeddedTexts, defaultLang)
}

// Load parses YAML texts of the form language -> key -> template.
func Load(data []byte, defaultLang string) (*Table, error) {
	var texts map[string]map[string]string
	if err := yaml.Unmarshal(data, &texts); err != nil {
		return nil, fmt.Errorf("failed to parse texts: %w", err)
	}
	if _, ok := texts[defaultLang]; !ok {
		return nil, fmt.Errorf("default language %q: %w", defaultLang, ErrUnknownLanguage)
	}
	t := &Table{texts: texts, defaultLang: defaultLang}
	t.index()
	return t, nil
}

// Override merges texts from a YAML file on top of the current ones.
// Keys absent from the file keep their values.
func (t *Table) Override(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read locale file %s: %w", path, err)
	}
	var texts map[string]map[string]string
	if err = yaml.Unmarshal(data, &texts); err != nil {
		return fmt.Errorf("failed to parse locale file %s: %w", path, err)
	}
	for lang, keys := range texts {
		if t.texts[lang] == nil {
			t.texts[lang] = make(map[string]string, len(keys))
		}
		for k, v := range keys {
			t.texts[lang][k] = v
		}
	}
	t.index()
	return nil
}

func (t *Table) index() {
	t.languages = t.languages[:0]
	seen := make(map[string]bool, len(t.texts))
	for _, lang := range pickerOrder {
		if _, ok := t.texts[lang]; ok {
			t.languages = append(t.languages, lang)
			seen[lang] = true
		}
	}
	var extra []string
	for lang := range t.texts {
		if !seen[lang] {
			extra = append(extra, lang)
		}
	}
	sort.Strings(extra)
	t.languages = append(t.languages, extra...)

	t.menu = make(map[string]map[string]models.MenuAction, len(t.texts))
	for _, lang := range t.languages {
		labels := make(map[string]models.MenuAction, len(menuKeys))
		for key, action := range menuKeys {
			if label := t.Text(lang, key, nil); label != "" {
				labels[label] = action
			}
		}
		t.menu[lang] = labels
	}
}

// Text renders key in lang. An unknown language or a key missing in lang falls
// back to the default language; a key missing there too yields "".
func (t *Table) Text(lang, key string, vars map[string]string) string {
	tmpl, ok := t.texts[lang][key]
	if !ok {
		if tmpl, ok = t.texts[t.defaultLang][key]; !ok {
			return ""
		}
	}
	if len(vars) == 0 {
		return tmpl
	}
	pairs := make([]string, 0, len(vars)*2)
	for name, value := range vars {
		pairs = append(pairs, "{"+name+"}", value)
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}

// Label returns the button text of a menu action in lang.
func (t *Table) Label(lang string, action models.MenuAction) string {
	for key, a := range menuKeys {
		if a == action {
			return t.Text(lang, key, nil)
		}
	}
	return ""
}

// MatchMenu resolves a button label to its action. Labels of lang are tried first,
// then every other language, so a keyboard rendered before a language switch still works.
func (t *Table) MatchMenu(lang, label string) (models.MenuAction, bool) {
	label = strings.TrimSpace(label)
	if action, ok := t.menu[lang][label]; ok {
		return action, true
	}
	for _, l := range t.languages {
		if action, ok := t.menu[l][label]; ok {
			return action, true
		}
	}
	return "", false
}

// Supported reports whether lang has texts.
func (t *Table) Supported(lang string) bool {
	_, ok := t.texts[lang]
	return ok
}

// Languages returns the supported language codes in picker order.
func (t *Table) Languages() []string {
	out := make([]string, len(t.languages))
	copy(out, t.languages)
	return out
}

// Default returns the fallback language.
func (t *Table) Default() string {
	return t.defaultLang
}

// Pick maps a client language code such as "en-US" to a supported language,
// falling back to the default.
func (t *Table) Pick(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return t.defaultLang
	}
	for _, lang := range t.languages {
		if strings.HasPrefix(code, lang) {
			return lang
		}
	}
	return t.defaultLang
}
