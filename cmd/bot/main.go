// Command bot records quick expenses sent to a Telegram bot as
// "Item, Amount, Payment_Type[, Category]" messages.
package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"spendlog/internal/domain/entry"
	"spendlog/internal/infrastructure/backend"
	"spendlog/internal/interfaces/telegram"
	"spendlog/internal/shared/config"
	"spendlog/internal/shared/messages"
	"spendlog/internal/shared/telemetry"
	"spendlog/internal/shared/timezone"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Bot error: %v", err)
	}
}

func run() error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: failed to read .env: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.Telegram.Token == "" {
		return errors.New("TELEGRAM_BOT_TOKEN is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.Init(ctx, telemetry.Config{
			ServiceName:  cfg.Telemetry.ServiceName + "-bot",
			Environment:  cfg.Telemetry.Environment,
			OTLPEndpoint: cfg.Telemetry.OTLPEndpoint,
			MetricsPort:  cfg.Telemetry.MetricsPort,
			SampleRatio:  cfg.Telemetry.SampleRatio,
		})
		if err != nil {
			return err
		}
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(sctx); err != nil {
				log.Printf("Error shutting down telemetry: %v", err)
			}
		}()
	}

	msgs, err := messages.Load(cfg.Telegram.MessagesFile)
	if err != nil {
		return err
	}

	stores, err := backend.OpenEntries(ctx, cfg)
	if err != nil {
		return err
	}
	defer stores.Close()
	if err := stores.Prepare(ctx, log.Writer()); err != nil {
		return err
	}

	// Quick entries never carry a payslip, so no file store is needed.
	svc := entry.NewService(stores.Entries, nil, timezone.Clock(timezone.Load(cfg.Timezone)))

	api, err := telegram.Connect(cfg.Telegram.Token)
	if err != nil {
		return err
	}

	bot := telegram.NewBot(api, telegram.NewReplier(svc, msgs), telegram.Config{
		Workers: cfg.Telegram.Workers,
	})
	return bot.Run(ctx)
}
