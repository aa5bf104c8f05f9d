// Package source implements the feed sources the bot watches: an Instagram
// RSS bridge and a BlueSky author timeline. Each source returns the single
// most recent post.
package source

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/SlyMarbo/rss"
	"github.com/go-shiori/go-readability"
	"github.com/samber/lo"

	"github.com/gooseband/relaybot/internal/model"
)

// contextTransport injects a context into every outgoing request so that
// context cancellation and deadlines propagate through the rss library.
type contextTransport struct {
	ctx  context.Context
	base http.RoundTripper
}

func (t contextTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return t.base.RoundTrip(req.WithContext(t.ctx))
}

type RSSSource struct {
	URL        string
	SourceName string
}

func NewRSS(name, url string) RSSSource {
	return RSSSource{
		URL:        url,
		SourceName: name,
	}
}

func (s RSSSource) Name() string {
	return s.SourceName
}

// Latest returns the most recent item of the feed.
func (s RSSSource) Latest(ctx context.Context) (model.Post, error) {
	feed, err := s.loadFeed(ctx, s.URL)
	if err != nil {
		return model.Post{}, fmt.Errorf("fetch feed %q: %w", s.URL, err)
	}

	if len(feed.Items) == 0 {
		return model.Post{}, fmt.Errorf("feed %q has no items", s.URL)
	}

	item := lo.MaxBy(feed.Items, func(a, b *rss.Item) bool {
		return a.Date.After(b.Date)
	})

	return model.Post{
		ID:         itemID(item),
		Text:       plainText(itemText(item)),
		Link:       item.Link,
		ImageURL:   itemImage(item),
		Published:  item.Date,
		SourceName: s.SourceName,
	}, nil
}

func itemID(item *rss.Item) string {
	if item.ID != "" {
		return item.ID
	}
	return item.Link
}

// itemText returns the richest available text for an item.
// Content (full body) is preferred over Summary (short excerpt).
func itemText(item *rss.Item) string {
	if c := strings.TrimSpace(item.Content); c != "" {
		return c
	}
	return strings.TrimSpace(item.Summary)
}

func itemImage(item *rss.Item) string {
	for _, enc := range item.Enclosures {
		if strings.HasPrefix(enc.Type, "image/") {
			return enc.URL
		}
	}
	return ""
}

// plainText strips the HTML markup Instagram bridges put into item
// descriptions. If extraction fails the raw text is relayed as is.
func plainText(text string) string {
	if text == "" {
		return ""
	}

	doc, err := readability.FromReader(strings.NewReader(text), nil)
	if err != nil {
		return text
	}
	if extracted := strings.TrimSpace(doc.TextContent); extracted != "" {
		return extracted
	}
	return text
}

func (s RSSSource) loadFeed(ctx context.Context, url string) (*rss.Feed, error) {
	client := &http.Client{
		Transport: contextTransport{ctx: ctx, base: http.DefaultTransport},
		Timeout:   30 * time.Second,
	}
	return rss.FetchByClient(url, client)
}
