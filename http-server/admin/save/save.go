package save

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"github.com/uniformesbonaparte/operarias-bonaparte/internal/lib/api"
	"github.com/uniformesbonaparte/operarias-bonaparte/internal/storage"
)

// MigrationHeader carries the key that unlocks POST /api/migrar.
const MigrationHeader = "x-migration-key"

type Backuper interface {
	Backup(ctx context.Context) (string, error)
}

type Importer interface {
	Import(ctx context.Context) (*storage.Snapshot, error)
}

type BackupResponse struct {
	Message string `json:"mensaje"`
	OK      bool   `json:"ok"`
	File    string `json:"archivo"`
}

type MigrateResponse struct {
	OK        bool   `json:"ok"`
	Message   string `json:"mensaje"`
	Operators int    `json:"operarias,omitempty"`
	Orders    int    `json:"pedidos,omitempty"`
	Records   int    `json:"registros,omitempty"`
}

func SaveBackup(log *slog.Logger, backups Backuper) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.admin.SaveBackup"

		log := log.With(slog.String("op", op))

		ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
		defer cancel()

		name, err := backups.Backup(ctx)
		if err != nil {
			api.WriteError(w, r, log, err)
			return
		}

		render.JSON(w, r, BackupResponse{Message: "Backup creado correctamente", OK: true, File: name})
	}
}

// Migrate copies the local JSON data into the remote backend. It is disabled
// while key is empty.
func Migrate(log *slog.Logger, key string, importer Importer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.admin.Migrate"

		log := log.With(slog.String("op", op))

		given := r.Header.Get(MigrationHeader)
		if key == "" || subtle.ConstantTimeCompare([]byte(given), []byte(key)) != 1 {
			log.Warn("migration refused")
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, MigrateResponse{OK: false, Message: "No autorizado"})
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
		defer cancel()

		snap, err := importer.Import(ctx)
		if err != nil {
			api.WriteError(w, r, log, err)
			return
		}

		render.JSON(w, r, MigrateResponse{
			OK:        true,
			Message:   "Migración completada",
			Operators: len(snap.Operators),
			Orders:    len(snap.Orders),
			Records:   len(snap.Records),
		})
	}
}
