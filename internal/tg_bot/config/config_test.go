package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")

	cfg, err := parse([]string{"-env", filepath.Join(t.TempDir(), "missing.env")})
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.EnvLogsLevel)
	assert.Equal(t, "SUNERA", cfg.EnvCompanyName)
	assert.Equal(t, "ru", cfg.EnvDefaultLang)
	assert.Equal(t, "ES", cfg.EnvDefaultPhoneRegion)
	assert.Equal(t, time.Second, cfg.FloodWindow())
	assert.InDelta(t, 0.8, cfg.EnvSolarPerformance, 1e-9)
	assert.InDelta(t, 1050, cfg.EnvSolarCostPerKW, 1e-9)
	assert.InDelta(t, 4.5, cfg.EnvSolarDefaultPSH, 1e-9)
	assert.True(t, cfg.EnvSheetLogCalcs)
	assert.Equal(t, 5*time.Minute, cfg.EnvSaveInterval)
	assert.Equal(t, "sqlite", cfg.EnvDBDriver)
	assert.Equal(t, 400, cfg.EnvGenerativeMaxTokens)
	assert.Equal(t, 10, cfg.EnvDialogHistorySize)
	assert.False(t, cfg.SMTPConfigured())
	assert.False(t, cfg.SheetsConfigured())
}

func TestParseEnvFileAndFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bot.env")
	content := "TELEGRAM_BOT_TOKEN=from-file\n" +
		"DEFAULT_LANG=es\n" +
		"LEADS_EMAILS=a@example.com,b@example.com\n" +
		"SMTP_HOST=smtp.example.com\n" +
		"SAVE_INTERVAL=30s\n" +
		"LOG_LEVEL=warn\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	for _, key := range []string{"TELEGRAM_BOT_TOKEN", "DEFAULT_LANG", "LEADS_EMAILS", "SMTP_HOST", "SAVE_INTERVAL", "LOG_LEVEL"} {
		unsetForTest(t, key)
	}

	cfg, err := parse([]string{"-env", path, "-l", "debug"})
	require.NoError(t, err)

	assert.Equal(t, "from-file", cfg.EnvBotToken)
	assert.Equal(t, "es", cfg.EnvDefaultLang)
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, cfg.EnvLeadsEmails)
	assert.True(t, cfg.SMTPConfigured())
	assert.Equal(t, 30*time.Second, cfg.EnvSaveInterval)
	assert.Equal(t, "debug", cfg.EnvLogsLevel)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			EnvBotToken:          "token",
			EnvDefaultLang:       "ru",
			EnvSolarPerformance:  0.8,
			EnvSolarCostPerKW:    1050,
			EnvSolarDefaultPSH:   4.5,
			EnvSaveInterval:      time.Minute,
			EnvDialogHistorySize: 10,
			EnvDBDriver:          "sqlite",
		}
	}
	require.NoError(t, valid().Validate())

	tests := map[string]func(c *Config){
		"missing token":    func(c *Config) { c.EnvBotToken = "" },
		"unknown language": func(c *Config) { c.EnvDefaultLang = "fr" },
		"zero performance": func(c *Config) { c.EnvSolarPerformance = 0 },
		"negative cost":    func(c *Config) { c.EnvSolarCostPerKW = -1 },
		"negative flood":   func(c *Config) { c.EnvAntiFloodWindowSec = -1 },
		"zero interval":    func(c *Config) { c.EnvSaveInterval = 0 },
		"unknown driver":   func(c *Config) { c.EnvDBDriver = "postgres" },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			c := valid()
			mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}

// unsetForTest removes key from the environment and restores it after the test.
func unsetForTest(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))
}
