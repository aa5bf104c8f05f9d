package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTelegram answers just enough of the Bot API to drive the middleware:
// getMe for client setup, getChatAdministrators with one fixed admin, and
// sendMessage which records every outgoing message.
type fakeTelegram struct {
	adminCalls int
	sent       []sentMessage
}

type sentMessage struct {
	chatID string
	text   string
}

func (f *fakeTelegram) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/bottoken/getMe", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true,"result":{"id":42,"is_bot":true,"first_name":"relay","username":"relay_bot"}}`))
	})

	mux.HandleFunc("/bottoken/getChatAdministrators", func(w http.ResponseWriter, r *http.Request) {
		f.adminCalls++
		_, _ = w.Write([]byte(`{"ok":true,"result":[{"status":"administrator","user":{"id":555,"is_bot":false,"first_name":"admin"}}]}`))
	})

	mux.HandleFunc("/bottoken/sendMessage", func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		f.sent = append(f.sent, sentMessage{
			chatID: r.FormValue("chat_id"),
			text:   r.FormValue("text"),
		})
		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":1,"date":1,"chat":{"id":1,"type":"private"}}}`))
	})

	return mux
}

func newTestBot(t *testing.T) (*tgbotapi.BotAPI, *fakeTelegram) {
	fake := &fakeTelegram{}
	srv := httptest.NewServer(fake.handler())
	t.Cleanup(srv.Close)

	api, err := tgbotapi.NewBotAPIWithAPIEndpoint("token", srv.URL+"/bot%s/%s")
	require.NoError(t, err)

	return api, fake
}

func cmdUpdate(userID int64) tgbotapi.Update {
	return tgbotapi.Update{
		Message: &tgbotapi.Message{
			MessageID: 1,
			From:      &tgbotapi.User{ID: userID},
			Chat:      &tgbotapi.Chat{ID: -100, Type: "supergroup"},
			Text:      "/status",
			Entities:  []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: 7}},
		},
	}
}

func TestAllowListedCallerPassesThrough(t *testing.T) {
	api, fake := newTestBot(t)

	invoked := false
	view := AllowedOnly(-100, []int64{7}, func(ctx context.Context, bot *tgbotapi.BotAPI, update tgbotapi.Update) error {
		invoked = true
		return nil
	})

	require.NoError(t, view(context.Background(), api, cmdUpdate(7)))
	assert.True(t, invoked)
	assert.Zero(t, fake.adminCalls, "allow list match must not hit the chat admin lookup")
	assert.Empty(t, fake.sent)
}

func TestChannelAdminPassesThrough(t *testing.T) {
	api, fake := newTestBot(t)

	invoked := false
	view := AllowedOnly(-100, nil, func(ctx context.Context, bot *tgbotapi.BotAPI, update tgbotapi.Update) error {
		invoked = true
		return nil
	})

	require.NoError(t, view(context.Background(), api, cmdUpdate(555)))
	assert.True(t, invoked)
	assert.Equal(t, 1, fake.adminCalls)
	assert.Empty(t, fake.sent)
}

func TestUnauthorizedCallerGetsPrivateRejection(t *testing.T) {
	api, fake := newTestBot(t)

	invoked := false
	view := AllowedOnly(-100, []int64{8}, func(ctx context.Context, bot *tgbotapi.BotAPI, update tgbotapi.Update) error {
		invoked = true
		return nil
	})

	require.NoError(t, view(context.Background(), api, cmdUpdate(7)))
	assert.False(t, invoked, "gated view must not run for unauthorized callers")

	require.Len(t, fake.sent, 1)
	assert.Equal(t, "7", fake.sent[0].chatID, "rejection goes to the caller's private chat")
	assert.Equal(t, rejectionText, fake.sent[0].text)
}
