package custom

import (
	"context"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

const retryDelay = 3 * time.Second

// UpdatesGetter is the long-polling part of *tgbotapi.BotAPI.
type UpdatesGetter interface {
	GetUpdates(config tgbotapi.UpdateConfig) ([]tgbotapi.Update, error)
}

// BotAPICustom adds a context-aware update channel to the Telegram Bot API.
type BotAPICustom struct {
	UpdatesGetter
	Buffer int
}

// NewBotAPICustom wraps bot.
func NewBotAPICustom(bot *tgbotapi.BotAPI) *BotAPICustom {
	return &BotAPICustom{UpdatesGetter: bot, Buffer: bot.Buffer}
}

// GetUpdatesChan starts long polling and returns the channel of updates.
// The channel is closed once ctx is done, so the caller can drain it and stop.
func (cb *BotAPICustom) GetUpdatesChan(ctx context.Context, config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	ch := make(chan tgbotapi.Update, cb.Buffer)

	go func() {
		defer close(ch)
		for {
			if ctx.Err() != nil {
				return
			}
			updates, err := cb.GetUpdates(config)
			if err != nil {
				logrus.WithError(err).Warnf("Failed to get updates, retrying in %s", retryDelay)
				select {
				case <-ctx.Done():
					return
				case <-time.After(retryDelay):
				}
				continue
			}

			for _, update := range updates {
				if update.UpdateID >= config.Offset {
					config.Offset = update.UpdateID + 1
					select {
					case ch <- update:
					case <-ctx.Done():
						return
					}
				}
			}
		}
	}()

	return ch
}
