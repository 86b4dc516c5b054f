package interaction

import (
	"context"
	"fmt"
	"time"

	"github.com/go-feed-nosql/internal/domain"
)

// CounterStore is the persistence surface the ledger needs. Implemented by
// dynamo.InteractionRepo.
type CounterStore interface {
	Increment(ctx context.Context, userID, targetUserID, counter string) error
	TouchLastInteraction(ctx context.Context, userID, targetUserID string, atMillis int64) error
}

// Service records engagement signals between an acting user and a target
// user. Each call issues two writes: an atomic counter increment and a
// last-interaction timestamp overwrite. The two are not atomic with respect
// to each other; a crash in between leaves them out of step, and callers
// accept that window. Unlike the feed fan-out, failures here propagate to
// the caller.
type Service interface {
	RecordView(ctx context.Context, userID, targetUserID string) error
	RecordLike(ctx context.Context, userID, targetUserID string) error
	RecordSearch(ctx context.Context, userID, targetUserID string) error
}

type ServiceDeps struct {
	Repo CounterStore
	Now  func() time.Time // injectable for tests
}

type service struct {
	repo CounterStore
	now  func() time.Time
}

func NewService(deps ServiceDeps) Service {
	s := &service{repo: deps.Repo, now: deps.Now}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func (s *service) RecordView(ctx context.Context, userID, targetUserID string) error {
	return s.record(ctx, userID, targetUserID, domain.CounterView)
}

func (s *service) RecordLike(ctx context.Context, userID, targetUserID string) error {
	return s.record(ctx, userID, targetUserID, domain.CounterLike)
}

func (s *service) RecordSearch(ctx context.Context, userID, targetUserID string) error {
	return s.record(ctx, userID, targetUserID, domain.CounterSearch)
}

func (s *service) record(ctx context.Context, userID, targetUserID, counter string) error {
	if userID == "" || targetUserID == "" {
		return fmt.Errorf("user and target ids are required: %w", domain.ErrBadRequest)
	}
	if err := s.repo.Increment(ctx, userID, targetUserID, counter); err != nil {
		return fmt.Errorf("increment %s: %w", counter, err)
	}
	if err := s.repo.TouchLastInteraction(ctx, userID, targetUserID, s.now().UTC().UnixMilli()); err != nil {
		return fmt.Errorf("touch last interaction: %w", err)
	}
	return nil
}
