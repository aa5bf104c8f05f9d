package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gooseband/relaybot/internal/model"
)

func newTestStorage(t *testing.T) *PostStorage {
	db, err := Open(filepath.Join(t.TempDir(), "relay.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewPostStorage(db)
}

func TestSaveAndHistory(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	for _, id := range []string{"post-1", "post-2", "post-3"} {
		require.NoError(t, s.Save(ctx, model.Post{
			ID:         id,
			Text:       "caption " + id,
			Link:       "https://example.com/" + id,
			SourceName: "Instagram",
			Published:  time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		}))
		// relayed_at drives the history ordering
		time.Sleep(1100 * time.Millisecond)
	}

	posts, err := s.History(ctx, 2)
	require.NoError(t, err)
	require.Len(t, posts, 2)

	ids := lo.Map(posts, func(p model.RelayedPost, _ int) string { return p.ID })
	assert.Equal(t, []string{"post-3", "post-2"}, ids)

	assert.Equal(t, "Instagram", posts[0].SourceName)
	assert.Equal(t, "https://example.com/post-3", posts[0].Link)
	assert.False(t, posts[0].RelayedAt.IsZero())
}

func TestSaveSamePostTwice(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	post := model.Post{ID: "post-1", Text: "caption", Link: "https://example.com/1", SourceName: "BlueSky"}
	require.NoError(t, s.Save(ctx, post))
	require.NoError(t, s.Save(ctx, post))

	posts, err := s.History(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, posts, 1)
}

func TestHistoryEmpty(t *testing.T) {
	s := newTestStorage(t)

	posts, err := s.History(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, posts)
}
