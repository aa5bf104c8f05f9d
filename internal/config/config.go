package config

import (
	"fmt"
	"sync"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfighcl"
)

type Config struct {
	TelegramBotToken    string  `hcl:"telegram_bot_token" env:"TELEGRAM_BOT_TOKEN" required:"true"`
	TelegramChannelID   int64   `hcl:"telegram_channel_id" env:"TELEGRAM_CHANNEL_ID" required:"true"`
	TelegramAdminChatID int64   `hcl:"telegram_admin_chat_id" env:"TELEGRAM_ADMIN_CHAT_ID"`
	AllowedUserIDs      []int64 `hcl:"allowed_user_ids" env:"ALLOWED_USER_IDS"`

	InstagramRSSURL string `hcl:"instagram_rss_url" env:"INSTAGRAM_RSS_URL" required:"true"`

	BlueskyHost       string `hcl:"bluesky_host" env:"BLUESKY_HOST" default:"https://bsky.social"`
	BlueskyHandle     string `hcl:"bluesky_handle" env:"BLUESKY_HANDLE" required:"true"`
	BlueskyIdentifier string `hcl:"bluesky_identifier" env:"BLUESKY_IDENTIFIER" required:"true"`
	BlueskyPassword   string `hcl:"bluesky_password" env:"BLUESKY_PASSWORD" required:"true"`

	CheckInterval time.Duration `hcl:"check_interval" env:"CHECK_INTERVAL" default:"5m"`
	// RelayFirst controls what happens with the newest post seen on a fresh
	// start: relay it immediately, or only remember it as the baseline.
	RelayFirst   bool   `hcl:"relay_first" env:"RELAY_FIRST"`
	DatabasePath string `hcl:"database_path" env:"DATABASE_PATH" default:"relaybot.db"`
}

var (
	cfg     Config
	loadErr error
	once    sync.Once
)

func load() (Config, error) {
	var c Config
	loader := aconfig.LoaderFor(&c, aconfig.Config{
		EnvPrefix: "RELAY",
		Files:     []string{"./config.hcl", "./config.local.hcl", "$HOME/.config/relaybot/config.hcl"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".hcl": aconfighcl.New(),
		},
	})

	if err := loader.Load(); err != nil {
		return c, fmt.Errorf("load config: %w", err)
	}

	return c, nil
}

// Get loads the configuration once and returns it. A non-nil error means
// required settings are missing and the process must not start.
func Get() (Config, error) {
	once.Do(func() {
		cfg, loadErr = load()
	})

	return cfg, loadErr
}
