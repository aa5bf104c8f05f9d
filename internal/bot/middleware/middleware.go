// Package middleware wraps command views with access checks.
package middleware

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/samber/lo"

	"github.com/gooseband/relaybot/internal/botkit"
)

const rejectionText = "You don't have permission to use this command."

// AllowedOnly passes the update through only for callers on the allow list
// or administrators of the channel. Everyone else gets a rejection in their
// private chat and the wrapped view is never invoked.
func AllowedOnly(channelID int64, allowedUserIDs []int64, next botkit.ViewFunc) botkit.ViewFunc {
	return func(ctx context.Context, bot *tgbotapi.BotAPI, update tgbotapi.Update) error {
		user := update.SentFrom()
		if user == nil {
			return nil
		}

		if lo.Contains(allowedUserIDs, user.ID) {
			return next(ctx, bot, update)
		}

		admins, err := bot.GetChatAdministrators(tgbotapi.ChatAdministratorsConfig{
			ChatConfig: tgbotapi.ChatConfig{ChatID: channelID},
		})
		if err != nil {
			return err
		}

		for _, admin := range admins {
			if admin.User.ID == user.ID {
				return next(ctx, bot, update)
			}
		}

		if _, err := bot.Send(tgbotapi.NewMessage(user.ID, rejectionText)); err != nil {
			return err
		}

		return nil
	}
}
