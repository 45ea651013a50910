package persist

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/uniformesbonaparte/operarias-bonaparte/internal/apperr"
	"github.com/uniformesbonaparte/operarias-bonaparte/internal/storage"
	"github.com/uniformesbonaparte/operarias-bonaparte/internal/storage/jsonfile"
)

type Loader interface {
	Load(ctx context.Context) (*storage.Snapshot, error)
}

type Restorer interface {
	Restore(snap *storage.Snapshot)
}

// Backup writes the current state to dir as a standalone JSON file. Pending
// changes are flushed first; a failed flush does not block the copy.
func (s *Scheduler) Backup(ctx context.Context, dir string, now time.Time) (string, error) {
	const op = "persist.Scheduler.Backup"

	if s.Dirty() {
		if err := s.Flush(ctx); err != nil {
			s.log.Warn("flush before backup failed", slog.String("op", op), slog.String("error", err.Error()))
		}
	}

	name, err := jsonfile.WriteBackup(ctx, dir, now, s.src.Snapshot())
	if err != nil {
		return "", apperr.Wrap(apperr.KindPersistence, fmt.Errorf("%s: %w", op, err), "backup could not be written")
	}

	s.log.Info("backup written", slog.String("file", name))
	return name, nil
}

// Import replaces the live state with what from holds and writes it to the
// scheduler's backend right away.
func (s *Scheduler) Import(ctx context.Context, from Loader, into Restorer) (*storage.Snapshot, error) {
	const op = "persist.Scheduler.Import"

	if s.backend.Name() == "file" {
		return nil, apperr.Validation("no remote backend is configured")
	}

	snap, err := from.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: load: %w", op, err)
	}
	if snap == nil {
		return nil, apperr.Validation("there is no local data to import")
	}

	into.Restore(snap)
	if err := s.Flush(ctx); err != nil {
		return nil, apperr.Wrap(apperr.KindPersistence, err, "imported data could not be saved")
	}

	s.log.Info("data imported",
		slog.Int("operators", len(snap.Operators)),
		slog.Int("orders", len(snap.Orders)),
		slog.Int("records", len(snap.Records)),
	)
	return snap, nil
}

// Archive binds a scheduler to its backup directory and local data file.
type Archive struct {
	sched *Scheduler
	dir   string
	local Loader
	live  Restorer
	now   func() time.Time
}

func NewArchive(sched *Scheduler, dir string, local Loader, live Restorer) *Archive {
	return &Archive{sched: sched, dir: dir, local: local, live: live, now: time.Now}
}

func (a *Archive) Backup(ctx context.Context) (string, error) {
	return a.sched.Backup(ctx, a.dir, a.now())
}

func (a *Archive) Import(ctx context.Context) (*storage.Snapshot, error) {
	return a.sched.Import(ctx, a.local, a.live)
}
