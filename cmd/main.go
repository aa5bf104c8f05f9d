package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/gooseband/relaybot/internal/bot"
	"github.com/gooseband/relaybot/internal/bot/middleware"
	"github.com/gooseband/relaybot/internal/botkit"
	"github.com/gooseband/relaybot/internal/config"
	"github.com/gooseband/relaybot/internal/monitor"
	"github.com/gooseband/relaybot/internal/notifier"
	"github.com/gooseband/relaybot/internal/reporter"
	"github.com/gooseband/relaybot/internal/source"
	"github.com/gooseband/relaybot/internal/storage"
)

func main() {
	cfg, err := config.Get()
	if err != nil {
		log.Printf("[ERROR] failed to load config: %v", err)
		os.Exit(1)
	}

	botAPI, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		log.Printf("[ERROR] failed to create botAPI: %v", err)
		os.Exit(1)
	}

	db, err := storage.Open(cfg.DatabasePath)
	if err != nil {
		log.Printf("[ERROR] failed to open database: %v", err)
		os.Exit(1)
	}
	defer db.Close()

	var (
		posts = storage.NewPostStorage(db)
		rep   = reporter.New(botAPI, cfg.TelegramAdminChatID)
		send  = notifier.New(botAPI, cfg.TelegramChannelID)

		instagram = monitor.New(
			source.NewRSS("Instagram", cfg.InstagramRSSURL),
			send,
			posts,
			rep,
			cfg.CheckInterval,
			cfg.RelayFirst,
		)
		bluesky = monitor.New(
			source.NewBluesky(
				cfg.BlueskyHost,
				cfg.BlueskyHandle,
				cfg.BlueskyIdentifier,
				cfg.BlueskyPassword,
			),
			send,
			posts,
			rep,
			cfg.CheckInterval,
			cfg.RelayFirst,
		)
	)

	relayBot := botkit.New(botAPI)
	relayBot.RegisterCmdView(
		"status",
		middleware.AllowedOnly(
			cfg.TelegramChannelID,
			cfg.AllowedUserIDs,
			bot.ViewCmdStatus(instagram, bluesky),
		),
	)
	relayBot.RegisterCmdView(
		"check",
		middleware.AllowedOnly(
			cfg.TelegramChannelID,
			cfg.AllowedUserIDs,
			bot.ViewCmdCheck(instagram, bluesky),
		),
	)
	relayBot.RegisterCmdView(
		"history",
		middleware.AllowedOnly(
			cfg.TelegramChannelID,
			cfg.AllowedUserIDs,
			bot.ViewCmdHistory(posts),
		),
	)
	relayBot.RegisterCmdView(
		"invite",
		middleware.AllowedOnly(
			cfg.TelegramChannelID,
			cfg.AllowedUserIDs,
			bot.ViewCmdInvite(cfg.TelegramChannelID),
		),
	)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	go func(ctx context.Context) {
		if err := instagram.Start(ctx); err != nil {
			if !errors.Is(err, context.Canceled) {
				log.Printf("[ERROR] failed to run Instagram monitor: %v", err)
				return
			}

			log.Printf("[INFO] Instagram monitor stopped")
		}
	}(ctx)

	go func(ctx context.Context) {
		if err := bluesky.Start(ctx); err != nil {
			if !errors.Is(err, context.Canceled) {
				log.Printf("[ERROR] failed to run BlueSky monitor: %v", err)
				return
			}

			log.Printf("[INFO] BlueSky monitor stopped")
		}
	}(ctx)

	go func(ctx context.Context) {
		if err := http.ListenAndServe("127.0.0.1:8088", mux); err != nil {
			if !errors.Is(err, context.Canceled) {
				log.Printf("[ERROR] failed to run http server: %v", err)
				return
			}

			log.Printf("[INFO] http server stopped")
		}
	}(ctx)

	if err := relayBot.Run(ctx); err != nil {
		log.Printf("[ERROR] failed to run botkit: %v", err)
	}
}
