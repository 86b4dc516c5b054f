package interaction

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/go-feed-nosql/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- fakes ---

type counterKey struct{ user, target string }

// fakeCounterStore mimics the store's commutative ADD semantics: counters
// auto-initialize to zero and increments never lose updates.
type fakeCounterStore struct {
	mu       sync.Mutex
	counts   map[counterKey]map[string]int64
	lastSeen map[counterKey]int64
}

func newFakeCounterStore() *fakeCounterStore {
	return &fakeCounterStore{
		counts:   make(map[counterKey]map[string]int64),
		lastSeen: make(map[counterKey]int64),
	}
}

func (f *fakeCounterStore) Increment(_ context.Context, userID, targetUserID, counter string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := counterKey{userID, targetUserID}
	if f.counts[key] == nil {
		f.counts[key] = make(map[string]int64)
	}
	f.counts[key][counter]++
	return nil
}

func (f *fakeCounterStore) TouchLastInteraction(_ context.Context, userID, targetUserID string, atMillis int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastSeen[counterKey{userID, targetUserID}] = atMillis
	return nil
}

func (f *fakeCounterStore) count(user, target, counter string) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.counts[counterKey{user, target}][counter]
}

// --- mocks ---

type mockCounterStore struct{ mock.Mock }

func (m *mockCounterStore) Increment(ctx context.Context, userID, targetUserID, counter string) error {
	return m.Called(ctx, userID, targetUserID, counter).Error(0)
}
func (m *mockCounterStore) TouchLastInteraction(ctx context.Context, userID, targetUserID string, atMillis int64) error {
	return m.Called(ctx, userID, targetUserID, atMillis).Error(0)
}

// --- tests ---

func TestRecord_IncrementsTheRightCounter(t *testing.T) {
	cases := []struct {
		name    string
		call    func(Service) error
		counter string
	}{
		{"view", func(s Service) error { return s.RecordView(context.Background(), "u1", "u2") }, domain.CounterView},
		{"like", func(s Service) error { return s.RecordLike(context.Background(), "u1", "u2") }, domain.CounterLike},
		{"search", func(s Service) error { return s.RecordSearch(context.Background(), "u1", "u2") }, domain.CounterSearch},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			repo := &mockCounterStore{}
			repo.On("Increment", mock.Anything, "u1", "u2", c.counter).Return(nil).Once()
			repo.On("TouchLastInteraction", mock.Anything, "u1", "u2", mock.AnythingOfType("int64")).Return(nil).Once()

			err := c.call(NewService(ServiceDeps{Repo: repo}))

			require.NoError(t, err)
			repo.AssertExpectations(t)
		})
	}
}

func TestRecord_CountersAreIndependent(t *testing.T) {
	repo := newFakeCounterStore()
	svc := NewService(ServiceDeps{Repo: repo})

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		require.NoError(t, svc.RecordSearch(ctx, "u1", "u2"))
	}
	require.NoError(t, svc.RecordView(ctx, "u1", "u2"))

	assert.Equal(t, int64(3), repo.count("u1", "u2", domain.CounterSearch))
	assert.Equal(t, int64(1), repo.count("u1", "u2", domain.CounterView))
	assert.Equal(t, int64(0), repo.count("u1", "u2", domain.CounterLike))
}

func TestRecordView_ConcurrentIncrementsLoseNothing(t *testing.T) {
	repo := newFakeCounterStore()
	svc := NewService(ServiceDeps{Repo: repo})

	const n = 200
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- svc.RecordView(context.Background(), "u1", "u2")
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	assert.Equal(t, int64(n), repo.count("u1", "u2", domain.CounterView))
}

func TestRecord_LastInteractionOverwritesNotAccumulates(t *testing.T) {
	repo := newFakeCounterStore()
	t1 := time.UnixMilli(1_700_000_000_000)
	t2 := time.UnixMilli(1_700_000_099_000)
	current := t1
	svc := NewService(ServiceDeps{Repo: repo, Now: func() time.Time { return current }})

	require.NoError(t, svc.RecordLike(context.Background(), "u1", "u2"))
	current = t2
	require.NoError(t, svc.RecordLike(context.Background(), "u1", "u2"))

	assert.Equal(t, t2.UnixMilli(), repo.lastSeen[counterKey{"u1", "u2"}])
	assert.Equal(t, int64(2), repo.count("u1", "u2", domain.CounterLike))
}

func TestRecord_PairsAreKeyedIndependently(t *testing.T) {
	repo := newFakeCounterStore()
	svc := NewService(ServiceDeps{Repo: repo})

	ctx := context.Background()
	require.NoError(t, svc.RecordView(ctx, "u1", "u2"))
	require.NoError(t, svc.RecordView(ctx, "u2", "u1"))

	assert.Equal(t, int64(1), repo.count("u1", "u2", domain.CounterView))
	assert.Equal(t, int64(1), repo.count("u2", "u1", domain.CounterView))
}

func TestRecord_IncrementFailurePropagatesAndSkipsTouch(t *testing.T) {
	repo := &mockCounterStore{}
	repo.On("Increment", mock.Anything, "u1", "u2", domain.CounterView).Return(errors.New("throttled"))

	err := NewService(ServiceDeps{Repo: repo}).RecordView(context.Background(), "u1", "u2")

	require.Error(t, err)
	assert.ErrorContains(t, err, "throttled")
	repo.AssertNotCalled(t, "TouchLastInteraction", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRecord_TouchFailurePropagatesAfterIncrement(t *testing.T) {
	// The counter write lands but the meta write fails: the caller sees the
	// error, and the counter stays ahead of the timestamp. That window is
	// accepted behavior.
	repo := &mockCounterStore{}
	repo.On("Increment", mock.Anything, "u1", "u2", domain.CounterLike).Return(nil)
	repo.On("TouchLastInteraction", mock.Anything, "u1", "u2", mock.AnythingOfType("int64")).Return(errors.New("timeout"))

	err := NewService(ServiceDeps{Repo: repo}).RecordLike(context.Background(), "u1", "u2")

	require.Error(t, err)
	assert.ErrorContains(t, err, "timeout")
	repo.AssertCalled(t, "Increment", mock.Anything, "u1", "u2", domain.CounterLike)
}

func TestRecord_EmptyIDsRejected(t *testing.T) {
	svc := NewService(ServiceDeps{Repo: newFakeCounterStore()})

	assert.ErrorIs(t, svc.RecordView(context.Background(), "", "u2"), domain.ErrBadRequest)
	assert.ErrorIs(t, svc.RecordLike(context.Background(), "u1", ""), domain.ErrBadRequest)
}
