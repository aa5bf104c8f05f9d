// Package storage keeps a local history of relayed posts. The history backs
// the /history command only; the dedup marker never reads from it, so a
// restart starts from a clean baseline.
package storage

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/samber/lo"
	_ "modernc.org/sqlite"

	"github.com/gooseband/relaybot/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS relayed_posts (
	post_id      TEXT PRIMARY KEY,
	source       TEXT NOT NULL,
	text         TEXT NOT NULL,
	link         TEXT NOT NULL,
	image_url    TEXT NOT NULL DEFAULT '',
	published_at TIMESTAMP,
	relayed_at   TIMESTAMP NOT NULL
);`

// Open connects to the SQLite database at path and ensures the schema.
func Open(path string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

type PostStorage struct {
	db *sqlx.DB
}

func NewPostStorage(db *sqlx.DB) *PostStorage {
	return &PostStorage{db: db}
}

// Save records a relayed post. Re-relaying the same post overwrites the
// previous row instead of duplicating it.
func (s *PostStorage) Save(ctx context.Context, post model.Post) error {
	conn, err := s.db.Connx(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	_, err = conn.ExecContext(ctx,
		`INSERT OR REPLACE INTO relayed_posts
			(post_id, source, text, link, image_url, published_at, relayed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?);`,
		post.ID,
		post.SourceName,
		post.Text,
		post.Link,
		post.ImageURL,
		post.Published,
		time.Now().UTC(),
	)

	return err
}

// History returns the most recently relayed posts, newest first.
func (s *PostStorage) History(ctx context.Context, limit int) ([]model.RelayedPost, error) {
	conn, err := s.db.Connx(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	var posts []dbRelayedPost
	if err := conn.SelectContext(ctx, &posts,
		`SELECT post_id, source, text, link, image_url, published_at, relayed_at
		FROM relayed_posts
		ORDER BY relayed_at DESC
		LIMIT ?;`,
		limit,
	); err != nil {
		return nil, err
	}

	return lo.Map(posts, func(post dbRelayedPost, _ int) model.RelayedPost {
		return model.RelayedPost(post)
	}), nil
}

type dbRelayedPost struct {
	ID          string    `db:"post_id"`
	SourceName  string    `db:"source"`
	Text        string    `db:"text"`
	Link        string    `db:"link"`
	ImageURL    string    `db:"image_url"`
	PublishedAt time.Time `db:"published_at"`
	RelayedAt   time.Time `db:"relayed_at"`
}
