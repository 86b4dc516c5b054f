package domain

import (
	"fmt"
	"time"
)

// FeedEntry is one row of a recipient's unseen feed: post PostID, written by
// the fan-out at CreatedAt, has not yet been seen by UserID. FeedID is a fresh
// ULID per fan-out row, so two recipients of the same post hold distinct
// entries.
type FeedEntry struct {
	UserID    string `json:"user_id" dynamodbav:"user_id"`
	EntryKey  string `json:"entry_key" dynamodbav:"entry_key"`
	FeedID    string `json:"feed_id" dynamodbav:"feed_id"`
	PostID    string `json:"post_id" dynamodbav:"post_id"`
	AuthorID  string `json:"author_id" dynamodbav:"author_id"`
	CreatedAt int64  `json:"created_at" dynamodbav:"created_at"` // epoch millis
}

// maxEntryMillis is the largest 13-digit epoch millis value (year 2286).
const maxEntryMillis = 9_999_999_999_999

// FeedEntryKey builds the range key for a feed row. The timestamp is inverted
// and zero-padded so that the store's ascending sort yields createdAt
// descending, with feedID ascending as tiebreak.
func FeedEntryKey(createdAtMillis int64, feedID string) string {
	return fmt.Sprintf("%013d#%s", maxEntryMillis-createdAtMillis, feedID)
}

// Post is the hydrated view returned by the external post resolver. The feed
// core never writes posts; it only carries their ids.
type Post struct {
	PostID    string    `json:"post_id"`
	AuthorID  string    `json:"author_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// FeedItem pairs an unseen-feed entry with its hydrated post.
type FeedItem struct {
	Entry FeedEntry `json:"entry"`
	Post  *Post     `json:"post"`
}

// FanoutResult summarizes a fan-out: per-recipient writes are independent, so
// partial success is a normal outcome, not a rollback.
type FanoutResult struct {
	Delivered        int
	Failed           int
	FailedRecipients []string
}

// FeedEvent is published after a fan-out delivered at least one entry.
type FeedEvent struct {
	PostID    string    `json:"post_id"`
	AuthorID  string    `json:"author_id"`
	Delivered int       `json:"delivered"`
	CreatedAt time.Time `json:"created_at"`
}
