// Package notifier delivers relayed posts to the Telegram channel.
package notifier

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/gooseband/relaybot/internal/botkit/markup"
	"github.com/gooseband/relaybot/internal/model"
)

const parseModeMarkdownV2 = "MarkdownV2"

type Notifier struct {
	bot       *tgbotapi.BotAPI
	channelID int64
}

func New(bot *tgbotapi.BotAPI, channelID int64) *Notifier {
	return &Notifier{
		bot:       bot,
		channelID: channelID,
	}
}

// Send relays one post to the channel. Posts with an image are sent as a
// photo with the text as caption.
func (n *Notifier) Send(post model.Post) error {
	text := messageText(post)

	if post.ImageURL != "" {
		photo := tgbotapi.NewPhoto(n.channelID, tgbotapi.FileURL(post.ImageURL))
		photo.Caption = text
		photo.ParseMode = parseModeMarkdownV2

		if _, err := n.bot.Send(photo); err != nil {
			return fmt.Errorf("send photo: %w", err)
		}
		return nil
	}

	msg := tgbotapi.NewMessage(n.channelID, text)
	msg.ParseMode = parseModeMarkdownV2

	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

func messageText(post model.Post) string {
	const msgFormat = "*New post on %s*\n\n%s\n\n%s"

	return fmt.Sprintf(
		msgFormat,
		markup.EscapeForMarkdown(post.SourceName),
		markup.EscapeForMarkdown(post.Text),
		markup.EscapeForMarkdown(post.Link),
	)
}
