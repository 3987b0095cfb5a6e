package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/eliseohh/homeworkbot/internal/bot"
	"github.com/eliseohh/homeworkbot/internal/config"
	"github.com/eliseohh/homeworkbot/internal/journal"
	"github.com/eliseohh/homeworkbot/internal/logging"
	"github.com/eliseohh/homeworkbot/internal/poller"
	"github.com/eliseohh/homeworkbot/internal/practicum"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, config.DefaultDotEnvFile, os.Stdout)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, dotEnv string, out io.Writer) int {
	cfg, err := config.Load(dotEnv)
	if err != nil {
		logging.New(out, config.DefaultLogLevel, false).Error("can't load config", "error", err)
		return 1
	}

	logger, closeLog, err := logging.Setup(out, cfg.LogLevel, cfg.LogFile)
	if err != nil {
		logging.New(out, cfg.LogLevel, false).Error("can't open log file", "error", err)
		return 1
	}
	defer closeLog()

	if missing := cfg.Check(); len(missing) > 0 {
		for _, name := range missing {
			logging.Critical(logger, "required environment variable is missing", slog.String(logging.FieldVariable, name))
		}
		logging.Critical(logger, "missing required tokens, exiting")
		return 1
	}

	notifier, err := bot.New(bot.Config{
		Token:  cfg.TelegramToken,
		ChatID: cfg.TelegramChatID,
		APIURL: cfg.TelegramAPIURL,
	}, logger)
	if err != nil {
		logging.Error(logger, "bot init failed", err)
		return 1
	}

	client := practicum.NewClient(practicum.Config{
		Endpoint: cfg.Endpoint,
		Token:    cfg.PracticumToken,
		Timeout:  cfg.RequestTimeout,
	})

	opts := poller.Options{
		Interval: cfg.RetryInterval,
		Cursor:   cfg.StartCursor(time.Now()),
		Logger:   logger,
	}
	if cfg.JournalPath != "" {
		db, err := journal.Open(cfg.JournalPath)
		if err != nil {
			logging.Error(logger, "journal init failed", err)
			return 1
		}
		defer db.Close()
		opts.Journal = db
	}

	logger.Info("homework bot online",
		slog.String(logging.FieldEndpoint, client.Endpoint()),
		slog.String(logging.FieldChat, notifier.Chat()),
	)

	if err := poller.New(client, notifier, opts).Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error(logger, "poller exited", err)
		return 1
	}
	return 0
}
