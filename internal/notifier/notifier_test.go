package notifier

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gooseband/relaybot/internal/model"
)

func TestMessageText(t *testing.T) {
	post := model.Post{
		SourceName: "BlueSky",
		Text:       "New album out now!",
		Link:       "https://bsky.app/profile/goose/post/3kxyz",
	}

	got := messageText(post)

	assert.Equal(t, "*New post on BlueSky*\n\nNew album out now\\!\n\nhttps://bsky\\.app/profile/goose/post/3kxyz", got)
}
