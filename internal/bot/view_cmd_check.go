package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/gooseband/relaybot/internal/botkit"
	"github.com/gooseband/relaybot/internal/monitor"
)

type Checker interface {
	Name() string
	Check(ctx context.Context) (monitor.Outcome, error)
}

// ViewCmdCheck forces one immediate poll cycle per source, outside the
// schedule, and replies with the outcome of each.
func ViewCmdCheck(checkers ...Checker) botkit.ViewFunc {
	return func(ctx context.Context, bot *tgbotapi.BotAPI, update tgbotapi.Update) error {
		lines := make([]string, 0, len(checkers))
		for _, c := range checkers {
			outcome, err := c.Check(ctx)
			lines = append(lines, checkText(c.Name(), outcome, err))
		}

		reply := tgbotapi.NewMessage(update.Message.Chat.ID, strings.Join(lines, "\n"))
		if _, err := bot.Send(reply); err != nil {
			return err
		}

		return nil
	}
}

func checkText(name string, outcome monitor.Outcome, err error) string {
	switch outcome {
	case monitor.Relayed:
		return name + ": new post relayed"
	case monitor.Failed:
		return fmt.Sprintf("%s: check failed: %v", name, err)
	default:
		return name + ": no new posts"
	}
}
