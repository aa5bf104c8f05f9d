package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"sync"
	"time"

	"github.com/gooseband/relaybot/internal/model"
)

const blueskySourceName = "BlueSky"

// BlueskySource polls an author timeline over the atproto xrpc HTTP API.
// A session is created lazily on the first fetch and re-created when the
// access token expires.
type BlueskySource struct {
	host       string
	handle     string
	identifier string
	password   string
	client     *http.Client

	mu        sync.Mutex
	accessJWT string
}

func NewBluesky(host, handle, identifier, password string) *BlueskySource {
	return &BlueskySource{
		host:       host,
		handle:     handle,
		identifier: identifier,
		password:   password,
		client:     &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *BlueskySource) Name() string {
	return blueskySourceName
}

type sessionResponse struct {
	AccessJWT string `json:"accessJwt"`
	DID       string `json:"did"`
}

type authorFeedResponse struct {
	Feed []struct {
		Post struct {
			URI    string `json:"uri"`
			Record struct {
				Text      string    `json:"text"`
				CreatedAt time.Time `json:"createdAt"`
			} `json:"record"`
			Embed struct {
				Images []struct {
					Fullsize string `json:"fullsize"`
				} `json:"images"`
			} `json:"embed"`
		} `json:"post"`
	} `json:"feed"`
}

// Latest returns the most recent post of the configured author.
func (s *BlueskySource) Latest(ctx context.Context) (model.Post, error) {
	token, err := s.token(ctx)
	if err != nil {
		return model.Post{}, err
	}

	feed, retry, err := s.authorFeed(ctx, token)
	if retry {
		// Expired session, log in again and try once more.
		if token, err = s.login(ctx); err != nil {
			return model.Post{}, err
		}
		feed, _, err = s.authorFeed(ctx, token)
	}
	if err != nil {
		return model.Post{}, err
	}

	if len(feed.Feed) == 0 {
		return model.Post{}, fmt.Errorf("no posts in feed of %q", s.handle)
	}

	post := feed.Feed[0].Post

	var imageURL string
	if len(post.Embed.Images) > 0 {
		imageURL = post.Embed.Images[0].Fullsize
	}

	return model.Post{
		ID:         post.URI,
		Text:       post.Record.Text,
		Link:       fmt.Sprintf("https://bsky.app/profile/%s/post/%s", s.handle, path.Base(post.URI)),
		ImageURL:   imageURL,
		Published:  post.Record.CreatedAt,
		SourceName: blueskySourceName,
	}, nil
}

func (s *BlueskySource) token(ctx context.Context) (string, error) {
	s.mu.Lock()
	token := s.accessJWT
	s.mu.Unlock()

	if token != "" {
		return token, nil
	}
	return s.login(ctx)
}

func (s *BlueskySource) login(ctx context.Context) (string, error) {
	body, err := json.Marshal(map[string]string{
		"identifier": s.identifier,
		"password":   s.password,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.host+"/xrpc/com.atproto.server.createSession", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("create session: unexpected status %d", resp.StatusCode)
	}

	var session sessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return "", fmt.Errorf("decode session: %w", err)
	}
	if session.AccessJWT == "" || session.DID == "" {
		return "", fmt.Errorf("create session: incomplete response")
	}

	s.mu.Lock()
	s.accessJWT = session.AccessJWT
	s.mu.Unlock()

	return session.AccessJWT, nil
}

func (s *BlueskySource) authorFeed(ctx context.Context, token string) (feed authorFeedResponse, retry bool, err error) {
	reqURL := fmt.Sprintf("%s/xrpc/app.bsky.feed.getAuthorFeed?actor=%s&limit=1",
		s.host, url.QueryEscape(s.handle))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return feed, false, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := s.client.Do(req)
	if err != nil {
		return feed, false, fmt.Errorf("fetch author feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		s.mu.Lock()
		s.accessJWT = ""
		s.mu.Unlock()
		return feed, true, fmt.Errorf("fetch author feed: session expired")
	}
	if resp.StatusCode != http.StatusOK {
		return feed, false, fmt.Errorf("fetch author feed: unexpected status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return feed, false, fmt.Errorf("decode author feed: %w", err)
	}

	return feed, false, nil
}
