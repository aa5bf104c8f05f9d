package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/gooseband/relaybot/internal/botkit"
)

// ViewCmdInvite replies with the invite link of the relay channel.
func ViewCmdInvite(channelID int64) botkit.ViewFunc {
	return func(ctx context.Context, bot *tgbotapi.BotAPI, update tgbotapi.Update) error {
		link, err := bot.GetInviteLink(tgbotapi.ChatInviteLinkConfig{
			ChatConfig: tgbotapi.ChatConfig{ChatID: channelID},
		})
		if err != nil {
			return err
		}

		if _, err := bot.Send(tgbotapi.NewMessage(update.Message.Chat.ID, link)); err != nil {
			return err
		}

		return nil
	}
}
