// Package bot contains the command views served by the relay bot.
package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/gooseband/relaybot/internal/botkit"
	"github.com/gooseband/relaybot/internal/model"
)

type StatusProvider interface {
	Snapshot() model.Snapshot
}

// ViewCmdStatus replies with the latest check time and error state of every
// monitored source. It never triggers a fetch.
func ViewCmdStatus(monitors ...StatusProvider) botkit.ViewFunc {
	return func(ctx context.Context, bot *tgbotapi.BotAPI, update tgbotapi.Update) error {
		lines := make([]string, 0, len(monitors))
		for _, m := range monitors {
			lines = append(lines, statusText(m.Snapshot(), time.Now()))
		}

		reply := tgbotapi.NewMessage(update.Message.Chat.ID, strings.Join(lines, "\n"))
		if _, err := bot.Send(reply); err != nil {
			return err
		}

		return nil
	}
}

func statusText(snap model.Snapshot, now time.Time) string {
	if snap.LastCheck.IsZero() {
		return fmt.Sprintf("%s: no checks performed yet", snap.SourceName)
	}

	age := now.Sub(snap.LastCheck).Round(time.Second)
	line := fmt.Sprintf("%s: last check %s ago, %d posts relayed", snap.SourceName, age, snap.Relayed)

	if snap.LastError != "" {
		return fmt.Sprintf("%s, last error: %s", line, snap.LastError)
	}
	return line + ", no errors"
}
