package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/vrudakov/taskwatch/internal/dedup"
	"github.com/vrudakov/taskwatch/internal/generate"
	"github.com/vrudakov/taskwatch/internal/mailbox"
	"github.com/vrudakov/taskwatch/internal/model"
	"github.com/vrudakov/taskwatch/internal/notify"
	"github.com/vrudakov/taskwatch/internal/poll"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml (optional)")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(log)

	if err := godotenv.Load(); err != nil {
		log.Debug("no .env file found, using environment variables")
	}

	cfg, err := model.LoadConfig(*configPath)
	if err != nil {
		log.Error("loading configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	source := mailbox.NewClient(
		cfg.Mail.Host, cfg.Mail.Port,
		cfg.Mail.Username, cfg.Mail.Password,
		cfg.Mail.Sender, cfg.Mail.Folder,
	)

	gen, err := generate.NewClient(cfg.Generator)
	if err != nil {
		log.Error("creating generation client", "error", err)
		os.Exit(1)
	}

	notifier, err := notify.NewTelegram(cfg.Notifier.Token, cfg.Notifier.ChatID)
	if err != nil {
		log.Error("creating Telegram notifier", "error", err)
		os.Exit(1)
	}

	seen := dedup.NewRegistry(cfg.Poll.Staleness())

	poller := poll.New(source, gen, notifier, seen, poll.Options{
		Interval:  cfg.Poll.Interval(),
		Staleness: cfg.Poll.Staleness(),
		MinBudget: cfg.Poll.MinBudget,
	}, log)

	log.Info("taskwatch started",
		"mailbox", cfg.Mail.Username,
		"sender", cfg.Mail.Sender,
		"interval", cfg.Poll.Interval(),
		"staleness_window", cfg.Poll.Staleness(),
		"chat_id", cfg.Notifier.ChatID,
	)

	ctx, stop := signal.NotifyContext(
		context.Background(), os.Interrupt, syscall.SIGTERM,
	)
	defer stop()

	if err := poller.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("poller exited", "error", err)
		os.Exit(1)
	}

	log.Info("shutdown complete")
}
