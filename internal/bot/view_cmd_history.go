package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/samber/lo"

	"github.com/gooseband/relaybot/internal/botkit"
	"github.com/gooseband/relaybot/internal/model"
)

const (
	defaultHistoryLimit = 5
	maxHistoryLimit     = 20
)

type HistoryProvider interface {
	History(ctx context.Context, limit int) ([]model.RelayedPost, error)
}

// ViewCmdHistory replies with the most recently relayed posts.
func ViewCmdHistory(storage HistoryProvider) botkit.ViewFunc {
	return func(ctx context.Context, bot *tgbotapi.BotAPI, update tgbotapi.Update) error {
		limit := defaultHistoryLimit
		if args := strings.TrimSpace(update.Message.CommandArguments()); args != "" {
			n, err := strconv.Atoi(args)
			if err != nil || n < 1 {
				reply := tgbotapi.NewMessage(update.Message.Chat.ID, "usage: /history [count]")
				_, err := bot.Send(reply)
				return err
			}
			limit = min(n, maxHistoryLimit)
		}

		posts, err := storage.History(ctx, limit)
		if err != nil {
			return err
		}

		if len(posts) == 0 {
			reply := tgbotapi.NewMessage(update.Message.Chat.ID, "No posts relayed yet.")
			_, err := bot.Send(reply)
			return err
		}

		lines := lo.Map(posts, func(post model.RelayedPost, _ int) string {
			return fmt.Sprintf("%s %s: %s",
				post.RelayedAt.Format("2006-01-02 15:04"), post.SourceName, post.Link)
		})

		reply := tgbotapi.NewMessage(update.Message.Chat.ID, strings.Join(lines, "\n"))
		if _, err := bot.Send(reply); err != nil {
			return err
		}

		return nil
	}
}
