// Package jsonfile stores the snapshot as a single JSON document on disk.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/uniformesbonaparte/operarias-bonaparte/internal/storage"
)

const backupPrefix = "datos_taller_backup_"

type Storage struct {
	path string
}

func New(path string) *Storage {
	return &Storage{path: path}
}

func (s *Storage) Name() string { return "file" }

func (s *Storage) Path() string { return s.path }

// Load returns nil, nil when the data file does not exist.
func (s *Storage) Load(_ context.Context) (*storage.Snapshot, error) {
	const op = "storage.jsonfile.Load"

	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: read %s: %w", op, s.path, err)
	}

	var snap storage.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("%s: decode %s: %w", op, s.path, err)
	}
	snap.Normalize()

	return &snap, nil
}

// Save writes <file>.tmp, syncs it, keeps the previous file as <file>.bak and
// renames the temp file over the data file.
func (s *Storage) Save(_ context.Context, snap *storage.Snapshot) error {
	const op = "storage.jsonfile.Save"

	raw, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("%s: encode: %w", op, err)
	}

	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("%s: mkdir %s: %w", op, dir, err)
		}
	}

	tmp := s.path + ".tmp"
	if err := writeSynced(tmp, raw); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if _, err := os.Stat(s.path); err == nil {
		if err := copyFile(s.path, s.path+".bak"); err != nil {
			return fmt.Errorf("%s: backup previous file: %w", op, err)
		}
	}

	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("%s: replace %s: %w", op, s.path, err)
	}

	return nil
}

// BackupName is datos_taller_backup_<UTC timestamp>.json with ':' and '.' replaced.
func BackupName(now time.Time) string {
	stamp := strings.NewReplacer(":", "-", ".", "-").Replace(now.UTC().Format("2006-01-02T15:04:05.000Z"))
	return backupPrefix + stamp + ".json"
}

// WriteBackup saves snap as a standalone file in dir and returns its name.
func WriteBackup(ctx context.Context, dir string, now time.Time, snap *storage.Snapshot) (string, error) {
	const op = "storage.jsonfile.WriteBackup"

	name := BackupName(now)
	if err := New(filepath.Join(dir, name)).Save(ctx, snap); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return name, nil
}

func writeSynced(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("sync %s: %w", path, err)
	}
	return f.Close()
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy to %s: %w", dst, err)
	}
	if err := out.Sync(); err != nil {
		out.Close()
		return fmt.Errorf("sync %s: %w", dst, err)
	}
	return out.Close()
}
