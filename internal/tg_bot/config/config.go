package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/caarlos0/env"
	"github.com/joho/godotenv"
)

const defaultEnvFile = "bot.env"

var supportedLanguages = map[string]bool{"ru": true, "en": true, "es": true, "pl": true, "de": true, "uk": true}

// Config holds the application configuration parameters.
// Each field corresponds to an expected environment variable.
type Config struct {
	EnvLogsLevel   string `env:"LOG_LEVEL" envDefault:"info"`             // Log level for the application (e.g., debug, info)
	EnvLogFileName string `env:"LOG_FILE_NAME" envDefault:"solarBot.log"` // File's name for log
	EnvHTTPAddr    string `env:"HTTP_ADDR" envDefault:":8080"`            // Address of /healthz and /metrics

	EnvBotToken    string `env:"TELEGRAM_BOT_TOKEN"` // Telegram Bot Token for authentication with the Telegram API
	EnvAdminChatID int64  `env:"ADMIN_CHAT_ID"`      // Chat receiving lead notifications and allowed to use /admin

	EnvCompanyName    string `env:"COMPANY_NAME" envDefault:"SUNERA"`
	EnvCompanyPhone   string `env:"COMPANY_PHONE"`
	EnvWebsiteURL     string `env:"WEBSITE_URL"`
	EnvWhatsAppNumber string `env:"WHATSAPP_NUMBER"`

	EnvDefaultLang        string `env:"DEFAULT_LANG" envDefault:"ru"`
	EnvDefaultPhoneRegion string `env:"DEFAULT_PHONE_REGION" envDefault:"ES"` // Region for numbers without a country code
	EnvLocaleFile         string `env:"LOCALE_FILE"`                          // Optional YAML file overriding the built-in texts
	EnvLangChangeResets   bool   `env:"LANG_CHANGE_RESETS" envDefault:"false"`

	EnvAntiFloodWindowSec int     `env:"ANTI_FLOOD_WINDOW_SEC" envDefault:"1"`
	EnvSolarPerformance   float64 `env:"SOLAR_PERFORMANCE" envDefault:"0.8"`
	EnvSolarCostPerKW     float64 `env:"SOLAR_COST_PER_KW" envDefault:"1050"`
	EnvSolarDefaultPSH    float64 `env:"SOLAR_DEFAULT_PSH" envDefault:"4.5"`
	EnvSheetLogCalcs      bool    `env:"SHEET_LOG_CALCULATIONS" envDefault:"true"`

	EnvSMTPHost    string   `env:"SMTP_HOST"`
	EnvSMTPPort    int      `env:"SMTP_PORT" envDefault:"587"`
	EnvSMTPUser    string   `env:"SMTP_USER"`
	EnvSMTPPass    string   `env:"SMTP_PASS"`
	EnvLeadsEmails []string `env:"LEADS_EMAILS" envSeparator:","`

	EnvSpreadsheetID string `env:"SPREADSHEET_ID"`
	EnvSheetName     string `env:"GSHEET_NAME" envDefault:"Leads"`
	EnvSheetsJSON    string `env:"GSHEETS_JSON"` // Service account key

	EnvDBDriver     string        `env:"DB_DRIVER" envDefault:"sqlite"`
	EnvDBDSN        string        `env:"DB_DSN" envDefault:"solarbot.db"`
	EnvStoragePath  string        `env:"FILE_STORAGE_PATH" envDefault:"sessions.json"` // Session snapshot file
	EnvSaveInterval time.Duration `env:"SAVE_INTERVAL" envDefault:"5m"`

	EnvAMQPURL      string `env:"AMQP_URL"`
	EnvAMQPExchange string `env:"AMQP_EXCHANGE" envDefault:"solar.leads"`

	EnvGenerativeName      string `env:"GENERATIVE_NAME"`     // LLM provider, empty disables the fallback responder
	EnvGenerativeApiKey    string `env:"GENERATIVE_API_KEY"`  // API Key for the generative AI service
	EnvGenerativeModel     string `env:"GENERATIVE_MODEL"`    // Model name for the generative AI
	EnvGenerativeBaseURL   string `env:"GENERATIVE_BASE_URL"` // Provider endpoint override, or the Ollama server address
	EnvGenerativeMaxTokens int    `env:"GENERATIVE_MAX_TOKENS" envDefault:"400"`
	EnvDialogHistorySize   int    `env:"DIALOG_HISTORY_SIZE" envDefault:"10"` // Max count messages in dialog history for one user
}

// NewConfig loads the configuration from the env file, the environment and the command line flags.
// It returns a pointer to the Config struct and an error if a value is missing or invalid.
func NewConfig() (*Config, error) {
	return parse(os.Args[1:])
}

func parse(args []string) (*Config, error) {
	var envFile, logLevel string
	flags := flag.NewFlagSet("solarbot", flag.ContinueOnError)
	flags.StringVar(&envFile, "env", defaultEnvFile, "Path to the env file")
	flags.StringVar(&logLevel, "l", "", "Set logging level")
	if err := flags.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	if err := loadEnvFile(envFile); err != nil {
		return nil, err
	}

	config := &Config{}
	if err := env.Parse(config); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if logLevel != "" {
		config.EnvLogsLevel = logLevel
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// loadEnvFile loads variables from path without overriding the real environment.
// A missing file is not an error.
func loadEnvFile(path string) error {
	err := godotenv.Load(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("new load .env: %w", err)
	}
	return nil
}

// Validate checks values that have no usable default.
func (c *Config) Validate() error {
	var errs []error
	if c.EnvBotToken == "" {
		errs = append(errs, errors.New("TELEGRAM_BOT_TOKEN is required"))
	}
	if !supportedLanguages[c.EnvDefaultLang] {
		errs = append(errs, fmt.Errorf("DEFAULT_LANG %q is not supported", c.EnvDefaultLang))
	}
	if c.EnvAntiFloodWindowSec < 0 {
		errs = append(errs, errors.New("ANTI_FLOOD_WINDOW_SEC must not be negative"))
	}
	if c.EnvSolarPerformance <= 0 || c.EnvSolarPerformance > 1 {
		errs = append(errs, errors.New("SOLAR_PERFORMANCE must be in (0, 1]"))
	}
	if c.EnvSolarCostPerKW <= 0 || c.EnvSolarDefaultPSH <= 0 {
		errs = append(errs, errors.New("SOLAR_COST_PER_KW and SOLAR_DEFAULT_PSH must be positive"))
	}
	if c.EnvSaveInterval <= 0 {
		errs = append(errs, errors.New("SAVE_INTERVAL must be positive"))
	}
	if c.EnvDialogHistorySize <= 0 {
		errs = append(errs, errors.New("DIALOG_HISTORY_SIZE must be positive"))
	}
	switch c.EnvDBDriver {
	case "sqlite", "mysql":
	default:
		errs = append(errs, fmt.Errorf("DB_DRIVER %q is not supported", c.EnvDBDriver))
	}
	return errors.Join(errs...)
}

// FloodWindow returns the anti-flood window.
func (c *Config) FloodWindow() time.Duration {
	return time.Duration(c.EnvAntiFloodWindowSec) * time.Second
}

// SMTPConfigured reports whether lead emails can be sent.
func (c *Config) SMTPConfigured() bool {
	return c.EnvSMTPHost != "" && len(c.EnvLeadsEmails) > 0
}

// SheetsConfigured reports whether rows can be appended to Google Sheets.
func (c *Config) SheetsConfigured() bool {
	return c.EnvSpreadsheetID != "" && c.EnvSheetsJSON != ""
}
