package locale

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/DenisKhanov/SolarBot/internal/tg_bot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTable(t *testing.T) *Table {
	t.Helper()
	table, err := New("ru")
	require.NoError(t, err)
	return table
}

func TestEmbeddedLanguagesHaveSameKeys(t *testing.T) {
	table := newTable(t)
	require.Equal(t, []string{"ru", "en", "es", "pl", "de", "uk"}, table.Languages())

	reference := table.texts["ru"]
	for _, lang := range table.Languages() {
		for key := range reference {
			assert.NotEmpty(t, table.texts[lang][key], "%s/%s", lang, key)
		}
		assert.Len(t, table.texts[lang], len(reference), lang)
	}
}

func TestTextFallsBackToDefaultLanguage(t *testing.T) {
	table := newTable(t)

	assert.Equal(t, table.Text("ru", "menu", nil), table.Text("fr", "menu", nil))
	assert.Equal(t, table.Text("ru", "menu", nil), table.Text("", "menu", nil))
	assert.Equal(t, "", table.Text("en", "no_such_key", nil))
}

func TestTextFallsBackForKeyMissingInLanguage(t *testing.T) {
	table, err := Load([]byte("en:\n  a: \"A en\"\n  b: \"B en\"\nes:\n  a: \"A es\"\n"), "en")
	require.NoError(t, err)

	assert.Equal(t, "A es", table.Text("es", "a", nil))
	assert.Equal(t, "B en", table.Text("es", "b", nil))
}

func TestTextInterpolatesPlaceholders(t *testing.T) {
	table := newTable(t)

	got := table.Text("en", "loan_result", map[string]string{"monthly": "162.21", "total": "9732.67", "over": "1732.67"})
	assert.Equal(t, "Monthly payment: 162.21\nTotal paid: 9732.67\nOverpayment: 1732.67", got)
}

func TestLoadRejectsUnknownDefault(t *testing.T) {
	_, err := Load([]byte("en:\n  a: b\n"), "xx")
	assert.ErrorIs(t, err, ErrUnknownLanguage)
}

func TestMatchMenu(t *testing.T) {
	table := newTable(t)

	action, ok := table.MatchMenu("en", "☀️ Solar calculator")
	require.True(t, ok)
	assert.Equal(t, models.MenuSolar, action)

	// a Spanish keyboard still works after switching to German
	action, ok = table.MatchMenu("de", table.Label("es", models.MenuConsult))
	require.True(t, ok)
	assert.Equal(t, models.MenuConsult, action)

	_, ok = table.MatchMenu("en", "hello there")
	assert.False(t, ok)
}

func TestPick(t *testing.T) {
	table := newTable(t)

	tests := []struct {
		code string
		want string
	}{
		{"en-US", "en"},
		{"uk", "uk"},
		{"PL", "pl"},
		{"fr", "ru"},
		{"", "ru"},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, table.Pick(tt.code))
		})
	}
}

func TestOverride(t *testing.T) {
	table := newTable(t)
	path := filepath.Join(t.TempDir(), "texts.yaml")
	require.NoError(t, os.WriteFile(path, []byte("en:\n  btn_back: \"<< Back\"\nit:\n  menu: \"Scegli:\"\n"), 0o644))

	require.NoError(t, table.Override(path))

	assert.Equal(t, "<< Back", table.Label("en", models.MenuBack))
	action, ok := table.MatchMenu("en", "<< Back")
	require.True(t, ok)
	assert.Equal(t, models.MenuBack, action)
	assert.Equal(t, "Scegli:", table.Text("it", "menu", nil))
	assert.Equal(t, "it", table.Languages()[len(table.Languages())-1])
	assert.NotEmpty(t, table.Text("en", "menu", nil))
}
