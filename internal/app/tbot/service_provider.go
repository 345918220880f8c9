// Package tbot provides dependency injection and service management for Telegram bot components.
// It initializes and provides access to services, repositories, and delivery collaborators required for bot operations.
package tbot

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/DenisKhanov/SolarBot/internal/tg_bot/api"
	"github.com/DenisKhanov/SolarBot/internal/tg_bot/calc"
	"github.com/DenisKhanov/SolarBot/internal/tg_bot/config"
	"github.com/DenisKhanov/SolarBot/internal/tg_bot/engine"
	"github.com/DenisKhanov/SolarBot/internal/tg_bot/infra/generative"
	"github.com/DenisKhanov/SolarBot/internal/tg_bot/locale"
	"github.com/DenisKhanov/SolarBot/internal/tg_bot/models"
	"github.com/DenisKhanov/SolarBot/internal/tg_bot/phone"
	"github.com/DenisKhanov/SolarBot/internal/tg_bot/repository"
	botServ "github.com/DenisKhanov/SolarBot/internal/tg_bot/service"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

// ServiceProvider manages the dependency injection for Telegram bot components.
type ServiceProvider struct {
	config *config.Config

	// Core
	localeTable *locale.Table
	sessionEng  *engine.Engine

	// Repositories
	sessionStore  *repository.SessionStore
	sqlStore      *repository.SQLStore
	dialogHistory *repository.DialogHistory

	// Delivery collaborators, nil when not configured
	mailSender    botServ.MailSender
	sheets        botServ.SheetAppender
	leadPublisher *api.LeadPublisher
	responder     botServ.FallbackResponder

	// Bot API
	botAPI *tgbotapi.BotAPI

	// Bot service
	dispatcher *botServ.Dispatcher
	botService *botServ.TgBotServices

	localeOnce     sync.Once
	engineOnce     sync.Once
	sessionOnce    sync.Once
	sqlOnce        sync.Once
	dialogOnce     sync.Once
	mailOnce       sync.Once
	sheetsOnce     sync.Once
	publisherOnce  sync.Once
	responderOnce  sync.Once
	botAPIOnce     sync.Once
	botServiceOnce sync.Once

	localeErr error
	sqlErr    error
}

// NewServiceProvider creates a new instance of the service provider.
func NewServiceProvider(cfg *config.Config) *ServiceProvider {
	return &ServiceProvider{config: cfg}
}

// Locale returns the localization table, with the LOCALE_FILE overrides applied.
func (s *ServiceProvider) Locale() (*locale.Table, error) {
	s.localeOnce.Do(func() {
		table, err := locale.New(s.config.EnvDefaultLang)
		if err != nil {
			s.localeErr = err
			return
		}
		if s.config.EnvLocaleFile != "" {
			if err = table.Override(s.config.EnvLocaleFile); err != nil {
				s.localeErr = fmt.Errorf("load locale file: %w", err)
				return
			}
		}
		s.localeTable = table
		logrus.WithField("languages", table.Languages()).Info("Locale initialized")
	})
	return s.localeTable, s.localeErr
}

// Engine returns the session engine.
func (s *ServiceProvider) Engine(ctx context.Context) (*engine.Engine, error) {
	table, err := s.Locale()
	if err != nil {
		return nil, err
	}
	s.engineOnce.Do(func() {
		cfg := s.config
		s.sessionEng = engine.New(table, phone.NewNormalizer(cfg.EnvDefaultPhoneRegion), engine.Options{
			Company: engine.Company{
				Name:     cfg.EnvCompanyName,
				Phone:    cfg.EnvCompanyPhone,
				Website:  cfg.EnvWebsiteURL,
				WhatsApp: cfg.EnvWhatsAppNumber,
			},
			Solar: calc.SolarParams{
				PerformanceRatio: cfg.EnvSolarPerformance,
				CostPerKW:        cfg.EnvSolarCostPerKW,
				DefaultPSH:       cfg.EnvSolarDefaultPSH,
			},
			FallbackEnabled:      s.Responder(ctx) != nil,
			LanguageChangeResets: cfg.EnvLangChangeResets,
			SheetLogCalculations: cfg.EnvSheetLogCalcs,
		})
		logrus.Info("Engine initialized")
	})
	return s.sessionEng, nil
}

// SessionStore returns the session store, restored from the snapshot file.
func (s *ServiceProvider) SessionStore() *repository.SessionStore {
	s.sessionOnce.Do(func() {
		s.sessionStore = repository.NewSessionStore(s.config.EnvStoragePath)
		if err := s.sessionStore.ReadFileToMemory(); err != nil {
			logrus.Errorf("Failed to read sessions from file: %v", err)
		} else {
			logrus.WithField("sessions", s.sessionStore.Len()).Info("SessionStore initialized and state loaded")
		}
	})
	return s.sessionStore
}

// SQLStore returns the relational store of leads, calculations, dialogs and users.
func (s *ServiceProvider) SQLStore() (*repository.SQLStore, error) {
	s.sqlOnce.Do(func() {
		s.sqlStore, s.sqlErr = repository.OpenSQLStore(s.config.EnvDBDriver, s.config.EnvDBDSN)
		if s.sqlErr == nil {
			logrus.WithField("driver", s.config.EnvDBDriver).Info("SQLStore initialized")
		}
	})
	return s.sqlStore, s.sqlErr
}

// DialogHistory returns the fallback dialog history backed by the SQL store.
func (s *ServiceProvider) DialogHistory() (*repository.DialogHistory, error) {
	store, err := s.SQLStore()
	if err != nil {
		return nil, err
	}
	s.dialogOnce.Do(func() {
		s.dialogHistory = repository.NewDialogHistory(s.config.EnvDialogHistorySize, store)
	})
	return s.dialogHistory, nil
}

// MailSender returns the SMTP sender, or nil when SMTP is not configured.
func (s *ServiceProvider) MailSender() botServ.MailSender {
	s.mailOnce.Do(func() {
		cfg := s.config
		if !cfg.SMTPConfigured() {
			logrus.Info("SMTP is not configured, lead emails are disabled")
			return
		}
		sender, err := api.NewMailSender(cfg.EnvSMTPHost, cfg.EnvSMTPPort, cfg.EnvSMTPUser, cfg.EnvSMTPPass, cfg.EnvLeadsEmails)
		if err != nil {
			logrus.Errorf("Failed to initialize MailSender: %v", err)
			return
		}
		s.mailSender = sender
		logrus.Info("MailSender initialized")
	})
	return s.mailSender
}

// Sheets returns the Google Sheets appender, or nil when it is not configured.
func (s *ServiceProvider) Sheets(ctx context.Context) botServ.SheetAppender {
	s.sheetsOnce.Do(func() {
		cfg := s.config
		if !cfg.SheetsConfigured() {
			logrus.Info("Google Sheets is not configured, sheet rows are disabled")
			return
		}
		appender, err := api.NewSheetsAppender(ctx, cfg.EnvSheetsJSON, cfg.EnvSpreadsheetID, cfg.EnvSheetName, models.LeadSheetHeader)
		if err != nil {
			logrus.Errorf("Failed to initialize SheetsAppender: %v", err)
			return
		}
		s.sheets = appender
		logrus.Info("SheetsAppender initialized")
	})
	return s.sheets
}

// LeadPublisher returns the AMQP lead feed, or nil when AMQP_URL is empty.
func (s *ServiceProvider) LeadPublisher() *api.LeadPublisher {
	s.publisherOnce.Do(func() {
		if s.config.EnvAMQPURL == "" {
			return
		}
		publisher, err := api.NewLeadPublisher(s.config.EnvAMQPURL, s.config.EnvAMQPExchange)
		if err != nil {
			logrus.Errorf("Failed to initialize LeadPublisher: %v", err)
			return
		}
		s.leadPublisher = publisher
	})
	return s.leadPublisher
}

// Responder returns the generative fallback responder, or nil when GENERATIVE_NAME is empty.
func (s *ServiceProvider) Responder(ctx context.Context) botServ.FallbackResponder {
	s.responderOnce.Do(func() {
		cfg := s.config
		if cfg.EnvGenerativeName == "" {
			logrus.Info("Generative model is not configured, free text gets the menu hint")
			return
		}
		responder, err := generative.ModelFactory(ctx, cfg.EnvGenerativeName, generative.Params{
			APIKey:    cfg.EnvGenerativeApiKey,
			BaseURL:   cfg.EnvGenerativeBaseURL,
			ModelName: cfg.EnvGenerativeModel,
			MaxTokens: cfg.EnvGenerativeMaxTokens,
		})
		if err != nil {
			logrus.Errorf("Failed to initialize Generative service: %v", err)
			return
		}
		s.responder = responder
		logrus.WithField("model", cfg.EnvGenerativeModel).Info("Generative model initialized")
	})
	return s.responder
}

// BotAPI returns the Telegram Bot API instance.
func (s *ServiceProvider) BotAPI() (*tgbotapi.BotAPI, error) {
	var err error
	s.botAPIOnce.Do(func() {
		s.botAPI, err = tgbotapi.NewBotAPI(s.config.EnvBotToken)
		if err != nil {
			logrus.Errorf("Failed to initialize BotAPI: %v", err)
			s.botAPI = nil
		}
	})
	if s.botAPI == nil {
		return nil, fmt.Errorf("bot API not initialized")
	}

	logrus.Info("BotApi initialized")
	return s.botAPI, nil
}

// BotService returns the main Telegram bot service.
func (s *ServiceProvider) BotService(ctx context.Context, botAPI *tgbotapi.BotAPI) (*botServ.TgBotServices, error) {
	table, err := s.Locale()
	if err != nil {
		return nil, err
	}
	eng, err := s.Engine(ctx)
	if err != nil {
		return nil, err
	}
	store, err := s.SQLStore()
	if err != nil {
		return nil, err
	}
	dialogs, err := s.DialogHistory()
	if err != nil {
		return nil, err
	}

	s.botServiceOnce.Do(func() {
		cfg := s.config
		sinks := botServ.Sinks{
			Store:     store,
			Sheets:    s.Sheets(ctx),
			Mail:      s.MailSender(),
			Responder: s.Responder(ctx),
			Dialogs:   dialogs,
		}
		// a nil *LeadPublisher must not become a non-nil interface
		if publisher := s.LeadPublisher(); publisher != nil {
			sinks.Publisher = publisher
		}

		var llmName string
		if sinks.Responder != nil {
			llmName = cfg.EnvGenerativeName
		}

		messenger := botServ.NewTelegramMessenger(botAPI, table)
		s.dispatcher = botServ.NewDispatcher(messenger, table, sinks, cfg.EnvAdminChatID, cfg.EnvCompanyName)
		s.botService = botServ.NewTgBot(eng, table, s.SessionStore(), s.dispatcher, messenger, store, botServ.Settings{
			AdminChatID:   cfg.EnvAdminChatID,
			FloodWindow:   cfg.FloodWindow(),
			SheetsEnabled: sinks.Sheets != nil,
			EmailEnabled:  sinks.Mail != nil,
			FeedEnabled:   sinks.Publisher != nil,
			LLMName:       llmName,
		})
		logrus.Info("BotService initialized")
	})
	return s.botService, nil
}

// Dispatcher returns the action dispatcher once BotService has built it.
func (s *ServiceProvider) Dispatcher() *botServ.Dispatcher {
	return s.dispatcher
}

// Close releases the database and the broker connection.
func (s *ServiceProvider) Close() error {
	var errs []error
	if s.leadPublisher != nil {
		errs = append(errs, s.leadPublisher.Close())
	}
	if s.sqlStore != nil {
		errs = append(errs, s.sqlStore.Close())
	}
	return errors.Join(errs...)
}
