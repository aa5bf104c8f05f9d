// Package model defines the data structures shared across the relay bot: Post is a single fetched feed entry, Snapshot is the per-source health record exposed by the status command, and RelayedPost is a history row for posts already delivered to the channel.
package model

import "time"

type Post struct {
	ID         string
	Text       string
	Link       string
	ImageURL   string
	Published  time.Time
	SourceName string
}

type Snapshot struct {
	SourceName string
	LastCheck  time.Time
	LastPost   time.Time
	LastError  string
	ErrorCount int
	Relayed    int64
}

type RelayedPost struct {
	ID          string
	SourceName  string
	Text        string
	Link        string
	ImageURL    string
	PublishedAt time.Time
	RelayedAt   time.Time
}
