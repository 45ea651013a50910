// Package persist writes the in-memory state to the configured backend
// after mutations settle.
package persist

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/uniformesbonaparte/operarias-bonaparte/internal/metrics"
	"github.com/uniformesbonaparte/operarias-bonaparte/internal/storage"
)

const finalFlushTimeout = 10 * time.Second

type Backend interface {
	Name() string
	Save(ctx context.Context, snap *storage.Snapshot) error
}

type Source interface {
	Snapshot() *storage.Snapshot
}

type Options struct {
	Debounce   time.Duration
	Interval   time.Duration
	RetryDelay time.Duration
}

// Scheduler coalesces mutation bursts into single backend writes.
type Scheduler struct {
	log     *slog.Logger
	src     Source
	backend Backend
	metrics *metrics.FlushMetrics
	opts    Options

	mu    sync.Mutex
	dirty bool

	// writeMu keeps one save in flight.
	writeMu sync.Mutex
	kick    chan struct{}
}

func New(log *slog.Logger, src Source, backend Backend, m *metrics.FlushMetrics, opts Options) *Scheduler {
	if opts.Debounce <= 0 {
		opts.Debounce = 200 * time.Millisecond
	}
	if opts.Interval <= 0 {
		opts.Interval = 30 * time.Second
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = 2 * time.Second
	}
	return &Scheduler{
		log:     log.With(slog.String("backend", backend.Name())),
		src:     src,
		backend: backend,
		metrics: m,
		opts:    opts,
		kick:    make(chan struct{}, 1),
	}
}

// MarkDirty records that state changed and restarts the quiet period.
func (s *Scheduler) MarkDirty() {
	s.mu.Lock()
	s.dirty = true
	s.mu.Unlock()

	select {
	case s.kick <- struct{}{}:
	default:
	}
}

func (s *Scheduler) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// Run drives debounced and periodic flushes until ctx is cancelled,
// then writes pending changes once more.
func (s *Scheduler) Run(ctx context.Context) error {
	const op = "persist.Scheduler.Run"

	ticker := time.NewTicker(s.opts.Interval)
	defer ticker.Stop()

	timer := time.NewTimer(s.opts.Debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			if !s.Dirty() {
				return nil
			}
			fctx, cancel := context.WithTimeout(context.Background(), finalFlushTimeout)
			defer cancel()
			if err := s.flush(fctx); err != nil {
				return fmt.Errorf("%s: final flush: %w", op, err)
			}
			s.log.Info("final flush completed")
			return nil

		case <-s.kick:
			timer.Reset(s.opts.Debounce)

		case <-timer.C:
			if !s.Dirty() {
				continue
			}
			if err := s.flush(ctx); err != nil {
				timer.Reset(s.opts.RetryDelay)
			}

		case <-ticker.C:
			if s.Dirty() {
				_ = s.flush(ctx)
			}
		}
	}
}

// Flush writes the current state now, whether or not it is dirty.
func (s *Scheduler) Flush(ctx context.Context) error {
	return s.flush(ctx)
}

func (s *Scheduler) flush(ctx context.Context) error {
	const op = "persist.Scheduler.flush"

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	// Mutations landing during the save mark the state dirty again.
	s.mu.Lock()
	s.dirty = false
	s.mu.Unlock()

	snap := s.src.Snapshot()
	name := s.backend.Name()

	start := time.Now()
	err := s.backend.Save(ctx, snap)
	s.metrics.ObserveDuration(name, time.Since(start))

	if err != nil {
		s.mu.Lock()
		s.dirty = true
		s.mu.Unlock()
		s.metrics.IncFailure(name)
		s.log.Error("flush failed", slog.String("op", op), slog.String("error", err.Error()))
		return fmt.Errorf("%s: %w", op, err)
	}

	s.metrics.IncSuccess(name)
	s.log.Debug("flushed", slog.Duration("took", time.Since(start)))
	return nil
}
