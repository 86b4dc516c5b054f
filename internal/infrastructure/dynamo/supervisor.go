package dynamo

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-feed-nosql/internal/domain"
)

// Supervisor runs the schema bootstrap in the background with exponential
// backoff. Process startup is never blocked on the store: until a bootstrap
// pass succeeds the subsystem reports not-ready and the last failure reason,
// and the readiness endpoint surfaces that instead of the process crashing.
type Supervisor struct {
	bootstrap func(ctx context.Context) error

	mu      sync.Mutex
	ready   bool
	lastErr error

	maxInterval time.Duration
}

// NewSupervisor wraps a bootstrap function. Pass a closure over Bootstrap and
// the concrete client/tables in production; tests inject their own.
func NewSupervisor(bootstrap func(ctx context.Context) error) *Supervisor {
	return &Supervisor{bootstrap: bootstrap, maxInterval: 30 * time.Second}
}

// SetMaxInterval caps the backoff interval. Call before Start.
func (s *Supervisor) SetMaxInterval(d time.Duration) { s.maxInterval = d }

// Start launches the retry loop and returns immediately. The loop stops when
// bootstrap succeeds or ctx is cancelled.
func (s *Supervisor) Start(ctx context.Context) {
	go s.run(ctx)
}

func (s *Supervisor) run(ctx context.Context) {
	bo := backoff.NewExponentialBackOff()
	bo.MaxInterval = s.maxInterval
	bo.MaxElapsedTime = 0 // retry until ctx is cancelled

	err := backoff.RetryNotify(
		func() error { return s.bootstrap(ctx) },
		backoff.WithContext(bo, ctx),
		func(err error, next time.Duration) {
			s.setErr(err)
			slog.Warn("store bootstrap failed, will retry", "err", err, "retry_in", next)
		},
	)
	if err != nil {
		s.setErr(err)
		return
	}

	s.mu.Lock()
	s.ready = true
	s.lastErr = nil
	s.mu.Unlock()
	slog.Info("store bootstrap complete")
}

func (s *Supervisor) setErr(err error) {
	s.mu.Lock()
	s.lastErr = err
	s.mu.Unlock()
}

// Ready reports whether a bootstrap pass has completed.
func (s *Supervisor) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready
}

// Err returns the reason the subsystem is unavailable, or nil when ready.
func (s *Supervisor) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ready {
		return nil
	}
	if s.lastErr == nil {
		return fmt.Errorf("bootstrap pending: %w", domain.ErrUnavailable)
	}
	return fmt.Errorf("%v: %w", s.lastErr, domain.ErrUnavailable)
}
