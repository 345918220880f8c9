package main

import (
	"context"

	"github.com/DenisKhanov/SolarBot/internal/app/tbot"
	"github.com/sirupsen/logrus"
)

func main() {
	ctx := context.Background()

	app, err := tbot.NewApp(ctx)
	if err != nil {
		logrus.Fatalf("failed to init app: %v", err)
	}
	if err = app.Run(ctx); err != nil {
		logrus.Fatalf("bot stopped with error: %v", err)
	}
	logrus.Info("Bot stopped")
}
