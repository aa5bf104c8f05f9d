package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("RELAY_TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("RELAY_TELEGRAM_CHANNEL_ID", "-100200300")
	t.Setenv("RELAY_INSTAGRAM_RSS_URL", "https://rss.example.com/instagram")
	t.Setenv("RELAY_BLUESKY_HANDLE", "goose.example.com")
	t.Setenv("RELAY_BLUESKY_IDENTIFIER", "goose@example.com")
	t.Setenv("RELAY_BLUESKY_PASSWORD", "hunter2")
	t.Setenv("RELAY_ALLOWED_USER_IDS", "7,8")

	cfg, err := load()
	require.NoError(t, err)

	assert.Equal(t, "123:abc", cfg.TelegramBotToken)
	assert.Equal(t, int64(-100200300), cfg.TelegramChannelID)
	assert.Equal(t, []int64{7, 8}, cfg.AllowedUserIDs)
	assert.Equal(t, "https://bsky.social", cfg.BlueskyHost)
	assert.Equal(t, 5*time.Minute, cfg.CheckInterval)
	assert.Equal(t, "relaybot.db", cfg.DatabasePath)
	assert.False(t, cfg.RelayFirst)
}

func TestLoadMissingRequired(t *testing.T) {
	t.Setenv("RELAY_TELEGRAM_BOT_TOKEN", "123:abc")

	_, err := load()
	require.Error(t, err)
}
