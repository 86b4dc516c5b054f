package feed

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-feed-nosql/internal/domain"
	"github.com/go-feed-nosql/internal/pkg/id"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// FeedStore is the persistence surface the service needs. Implemented by
// dynamo.FeedRepo; tests substitute mocks and in-memory fakes.
type FeedStore interface {
	Put(ctx context.Context, e *domain.FeedEntry) error
	List(ctx context.Context, userID, afterKey string, limit int32) ([]domain.FeedEntry, error)
	MarkSeen(ctx context.Context, userID, entryKey string) error
}

// EventPublisher announces completed fan-outs downstream.
type EventPublisher interface {
	FeedItemCreated(ctx context.Context, event domain.FeedEvent) error
}

// ListOptions controls a feed read. The zero value means the first page at
// the default size.
type ListOptions struct {
	Cursor string // opaque continuation token from a previous page
	Limit  int    // 0 means the configured default
}

// Page is one slice of a user's unseen feed, newest first. NextCursor is
// empty once the feed is exhausted.
type Page struct {
	Items      []domain.FeedItem
	NextCursor string
}

type Service interface {
	// Publish fans one post out to every recipient's unseen feed. Each
	// recipient gets an independent write with a fresh feed id, so retrying
	// the whole call duplicates entries; retry individual rows with
	// PublishEntry instead. Per-recipient failures are logged and counted in
	// the result, never rolled back.
	Publish(ctx context.Context, postID string, recipients []string, authorID string) (*domain.FanoutResult, error)

	// PublishToFriends resolves the author's friend set and fans out to it.
	// The author is not implicitly included.
	PublishToFriends(ctx context.Context, postID, authorID string) (*domain.FanoutResult, error)

	// PublishEntry writes a single feed row with a caller-held feed id,
	// making a per-row retry idempotent for that id.
	PublishEntry(ctx context.Context, postID, recipientID, authorID, feedID string) error

	// GetFeed returns a page of the user's unseen feed in reverse
	// chronological order, hydrated via the post resolver. Entries whose
	// post can no longer be resolved are dropped, not surfaced as errors.
	GetFeed(ctx context.Context, userID string, opts ListOptions) (*Page, error)

	// MarkSeen moves one entry from the unseen feed to the seen feed.
	MarkSeen(ctx context.Context, userID, entryKey string) error
}

// ServiceDeps wires the service. Events and WriteRate are optional.
type ServiceDeps struct {
	FeedRepo FeedStore
	Friends  domain.FriendResolver
	Posts    domain.PostResolver
	Events   EventPublisher

	Concurrency int           // concurrent per-recipient writes, default 8
	WriteRate   *rate.Limiter // fan-out write throttle, nil disables
	PageSize    int           // default feed page size, default 10

	Now       func() time.Time // injectable for tests
	NewFeedID func() string
}

type service struct {
	repo        FeedStore
	friends     domain.FriendResolver
	posts       domain.PostResolver
	events      EventPublisher
	concurrency int
	writeRate   *rate.Limiter
	pageSize    int
	now         func() time.Time
	newFeedID   func() string
}

func NewService(deps ServiceDeps) Service {
	s := &service{
		repo:        deps.FeedRepo,
		friends:     deps.Friends,
		posts:       deps.Posts,
		events:      deps.Events,
		concurrency: deps.Concurrency,
		writeRate:   deps.WriteRate,
		pageSize:    deps.PageSize,
		now:         deps.Now,
		newFeedID:   deps.NewFeedID,
	}
	if s.concurrency <= 0 {
		s.concurrency = 8
	}
	if s.pageSize <= 0 {
		s.pageSize = 10
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newFeedID == nil {
		s.newFeedID = id.New
	}
	return s
}

func (s *service) Publish(ctx context.Context, postID string, recipients []string, authorID string) (*domain.FanoutResult, error) {
	if postID == "" {
		return nil, fmt.Errorf("empty post id: %w", domain.ErrBadRequest)
	}

	var (
		mu     sync.Mutex
		failed []string
	)
	g := new(errgroup.Group)
	g.SetLimit(s.concurrency)
	for _, recipient := range recipients {
		g.Go(func() error {
			if s.writeRate != nil {
				if err := s.writeRate.Wait(ctx); err != nil {
					s.recordFailure(&mu, &failed, recipient, postID, err)
					return nil
				}
			}
			if err := s.PublishEntry(ctx, postID, recipient, authorID, s.newFeedID()); err != nil {
				s.recordFailure(&mu, &failed, recipient, postID, err)
			}
			return nil
		})
	}
	_ = g.Wait() // workers never return errors; failures are collected per row

	res := &domain.FanoutResult{
		Delivered:        len(recipients) - len(failed),
		Failed:           len(failed),
		FailedRecipients: failed,
	}
	if res.Delivered > 0 && s.events != nil {
		event := domain.FeedEvent{
			PostID:    postID,
			AuthorID:  authorID,
			Delivered: res.Delivered,
			CreatedAt: s.now().UTC(),
		}
		if err := s.events.FeedItemCreated(ctx, event); err != nil {
			slog.Warn("failed to publish feed event", "post_id", postID, "err", err)
		}
	}
	return res, nil
}

func (s *service) recordFailure(mu *sync.Mutex, failed *[]string, recipient, postID string, err error) {
	slog.Warn("feed fan-out write failed", "recipient", recipient, "post_id", postID, "err", err)
	mu.Lock()
	*failed = append(*failed, recipient)
	mu.Unlock()
}

func (s *service) PublishToFriends(ctx context.Context, postID, authorID string) (*domain.FanoutResult, error) {
	if authorID == "" {
		return nil, fmt.Errorf("empty author id: %w", domain.ErrBadRequest)
	}
	recipients, err := s.friends.Friends(ctx, authorID)
	if err != nil {
		return nil, fmt.Errorf("resolve friends of %s: %w", authorID, err)
	}
	return s.Publish(ctx, postID, recipients, authorID)
}

func (s *service) PublishEntry(ctx context.Context, postID, recipientID, authorID, feedID string) error {
	if postID == "" || recipientID == "" || feedID == "" {
		return fmt.Errorf("post, recipient and feed ids are required: %w", domain.ErrBadRequest)
	}
	createdAt := s.now().UTC().UnixMilli()
	return s.repo.Put(ctx, &domain.FeedEntry{
		UserID:    recipientID,
		EntryKey:  domain.FeedEntryKey(createdAt, feedID),
		FeedID:    feedID,
		PostID:    postID,
		AuthorID:  authorID,
		CreatedAt: createdAt,
	})
}

func (s *service) GetFeed(ctx context.Context, userID string, opts ListOptions) (*Page, error) {
	if userID == "" {
		return nil, fmt.Errorf("empty user id: %w", domain.ErrBadRequest)
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = s.pageSize
	}
	afterKey, err := decodeCursor(opts.Cursor)
	if err != nil {
		return nil, err
	}

	entries, err := s.repo.List(ctx, userID, afterKey, int32(limit))
	if err != nil {
		return nil, fmt.Errorf("list unseen feed for %s: %w", userID, err)
	}

	page := &Page{Items: make([]domain.FeedItem, 0, len(entries))}
	for _, entry := range entries {
		post, err := s.posts.Resolve(ctx, entry.PostID, userID)
		if err != nil {
			// Deleted and restricted posts simply drop out of the feed.
			// Any other resolver failure drops the entry too, so one bad
			// lookup cannot fail the whole read.
			if !errors.Is(err, domain.ErrNotFound) && !errors.Is(err, domain.ErrForbidden) {
				slog.Warn("feed hydration failed", "post_id", entry.PostID, "user_id", userID, "err", err)
			}
			continue
		}
		page.Items = append(page.Items, domain.FeedItem{Entry: entry, Post: post})
	}
	if len(entries) == limit {
		page.NextCursor = encodeCursor(entries[len(entries)-1].EntryKey)
	}
	return page, nil
}

func (s *service) MarkSeen(ctx context.Context, userID, entryKey string) error {
	if userID == "" || entryKey == "" {
		return fmt.Errorf("user id and entry key are required: %w", domain.ErrBadRequest)
	}
	return s.repo.MarkSeen(ctx, userID, entryKey)
}

func encodeCursor(entryKey string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(entryKey))
}

func decodeCursor(cursor string) (string, error) {
	if cursor == "" {
		return "", nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return "", fmt.Errorf("malformed cursor: %w", domain.ErrBadRequest)
	}
	return string(raw), nil
}
