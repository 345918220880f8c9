package tbot

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/DenisKhanov/SolarBot/internal/app/custom"
	"github.com/DenisKhanov/SolarBot/internal/logcfg"
	"github.com/DenisKhanov/SolarBot/internal/tg_bot/config"
	"github.com/DenisKhanov/SolarBot/internal/tg_bot/metrics"
	botServ "github.com/DenisKhanov/SolarBot/internal/tg_bot/service"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

// App represents the application structure responsible for initializing dependencies
// and running the Telegram bot.
type App struct {
	serviceProvider *ServiceProvider // The service provider for dependency injection
	config          *config.Config   // The configuration object for the application
	polling         atomic.Bool      // Reported by /healthz
}

// NewApp creates a new instance of the application.
func NewApp(ctx context.Context) (*App, error) {
	app := &App{}
	err := app.initDeps(ctx)
	if err != nil {
		return nil, err
	}
	return app, nil
}

// initDeps initializes all dependencies required by the application.
func (a *App) initDeps(ctx context.Context) error {
	inits := []func(context.Context) error{
		a.initConfig,
		a.initLogger,
		a.initServiceProvider,
	}

	for _, f := range inits {
		err := f(ctx)
		if err != nil {
			return err
		}
	}

	return nil
}

// initConfig initializes the application configuration.
func (a *App) initConfig(_ context.Context) error {
	cfg, err := config.NewConfig()
	if err != nil {
		return err
	}
	a.config = cfg
	return nil
}

// initLogger configures logrus from the loaded configuration.
func (a *App) initLogger(_ context.Context) error {
	if err := logcfg.RunLoggerConfig(a.config.EnvLogsLevel, a.config.EnvLogFileName); err != nil {
		return err
	}
	logrus.Infof("BOT started with configuration logs level: %v", a.config.EnvLogsLevel)
	return nil
}

// initServiceProvider initializes the service provider for dependency injection.
func (a *App) initServiceProvider(_ context.Context) error {
	a.serviceProvider = NewServiceProvider(a.config)
	return nil
}

// Run starts the bot, the ops HTTP server and the snapshot ticker, and blocks until
// SIGINT/SIGTERM or the first fatal error. Shutdown waits for in-flight deliveries,
// saves the sessions and closes the connections.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	botAPI, err := a.serviceProvider.BotAPI()
	if err != nil {
		return fmt.Errorf("can't make telegram bot: %w", err)
	}
	logrus.Infof("Bot API created successfully for %s", botAPI.Self.UserName)

	myBot, err := a.serviceProvider.BotService(ctx, botAPI)
	if err != nil {
		return fmt.Errorf("bot service not initialized: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.runTelegramBot(gctx, botAPI, myBot)
	})
	g.Go(func() error {
		return a.runHTTPServer(gctx)
	})
	g.Go(func() error {
		return a.runSnapshotTicker(gctx)
	})

	runErr := g.Wait()
	logrus.Info("Shutting down...")
	a.shutdown()
	return runErr
}

// runTelegramBot processes updates until ctx is done.
func (a *App) runTelegramBot(ctx context.Context, botAPI *tgbotapi.BotAPI, myBot *botServ.TgBotServices) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60 // seconds timeout

	customBot := custom.NewBotAPICustom(botAPI)
	a.polling.Store(true)
	defer a.polling.Store(false)

	for update := range customBot.GetUpdatesChan(ctx, updateConfig) {
		myBot.UpdateProcessing(ctx, &update)
	}
	logrus.Info("Shutting down main loop...")
	return nil
}

// runHTTPServer serves /healthz and /metrics.
func (a *App) runHTTPServer(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.config.EnvHTTPAddr,
		Handler:           metrics.NewRouter(a.polling.Load),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logrus.WithError(err).Error("HTTP server shutdown failed")
		}
	}()

	logrus.Infof("Ops HTTP server listening on %s", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// runSnapshotTicker saves the sessions to file every SAVE_INTERVAL.
func (a *App) runSnapshotTicker(ctx context.Context) error {
	ticker := time.NewTicker(a.config.EnvSaveInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := a.serviceProvider.SessionStore().SaveBatchToFile(); err != nil {
				logrus.Error("Error while saving state on ticker: ", err)
			}
		}
	}
}

func (a *App) shutdown() {
	if d := a.serviceProvider.Dispatcher(); d != nil {
		d.Wait()
	}
	if err := a.serviceProvider.SessionStore().SaveBatchToFile(); err != nil {
		logrus.Error("Error while saving state on shutdown: ", err)
	}
	if err := a.serviceProvider.Close(); err != nil {
		logrus.WithError(err).Error("Error while closing connections")
	}
}
