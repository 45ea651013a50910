package persist

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uniformesbonaparte/operarias-bonaparte/internal/storage"
)

type fakeBackend struct {
	mu       sync.Mutex
	saves    int
	failures int
	last     *storage.Snapshot
}

func (b *fakeBackend) Name() string { return "fake" }

func (b *fakeBackend) Save(_ context.Context, snap *storage.Snapshot) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failures > 0 {
		b.failures--
		return errors.New("disk full")
	}
	b.saves++
	b.last = snap
	return nil
}

func (b *fakeBackend) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.saves
}

type fakeSource struct{ machines []string }

func (s fakeSource) Snapshot() *storage.Snapshot {
	return &storage.Snapshot{Machines: s.machines}
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func start(t *testing.T, s *Scheduler) (context.CancelFunc, <-chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	t.Cleanup(cancel)
	return cancel, done
}

func TestScheduler_CoalescesBurst(t *testing.T) {
	b := &fakeBackend{}
	s := New(discard(), fakeSource{}, b, nil, Options{Debounce: 30 * time.Millisecond, Interval: time.Hour})
	start(t, s)

	for i := 0; i < 5; i++ {
		s.MarkDirty()
	}

	assert.Eventually(t, func() bool { return b.count() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, 1, b.count())
	assert.False(t, s.Dirty())
}

func TestScheduler_RetriesFailedSave(t *testing.T) {
	b := &fakeBackend{failures: 2}
	s := New(discard(), fakeSource{}, b, nil, Options{
		Debounce:   5 * time.Millisecond,
		Interval:   time.Hour,
		RetryDelay: 10 * time.Millisecond,
	})
	start(t, s)

	s.MarkDirty()

	assert.Eventually(t, func() bool { return b.count() == 1 }, time.Second, 5*time.Millisecond)
	assert.False(t, s.Dirty())
}

func TestScheduler_FinalFlushOnCancel(t *testing.T) {
	b := &fakeBackend{}
	s := New(discard(), fakeSource{machines: []string{"Recta"}}, b, nil, Options{Debounce: time.Hour, Interval: time.Hour})
	cancel, done := start(t, s)

	s.MarkDirty()
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return")
	}
	assert.Equal(t, 1, b.count())
	assert.Equal(t, []string{"Recta"}, b.last.Machines)
}

func TestScheduler_CancelWithoutChanges(t *testing.T) {
	b := &fakeBackend{}
	s := New(discard(), fakeSource{}, b, nil, Options{})
	cancel, done := start(t, s)

	cancel()
	require.NoError(t, <-done)
	assert.Equal(t, 0, b.count())
}

func TestScheduler_FlushIsSynchronous(t *testing.T) {
	b := &fakeBackend{}
	s := New(discard(), fakeSource{}, b, nil, Options{})

	require.NoError(t, s.Flush(context.Background()))
	assert.Equal(t, 1, b.count())

	b.failures = 1
	err := s.Flush(context.Background())
	require.Error(t, err)
	assert.True(t, s.Dirty())
}
