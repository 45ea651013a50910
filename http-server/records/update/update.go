package update

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"github.com/uniformesbonaparte/operarias-bonaparte/internal/lib/api"
	"github.com/uniformesbonaparte/operarias-bonaparte/internal/service/ledger"
	"github.com/uniformesbonaparte/operarias-bonaparte/internal/storage"
)

type RecordEditor interface {
	Update(ctx context.Context, id int64, p ledger.Patch) (storage.Record, error)
	Delete(ctx context.Context, id int64) error
}

type Response struct {
	Message string          `json:"mensaje"`
	OK      bool            `json:"ok"`
	Record  *storage.Record `json:"registro,omitempty"`
}

func UpdateRecord(log *slog.Logger, records RecordEditor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.records.UpdateRecord"

		log := log.With(slog.String("op", op))

		id, err := api.IDParam(r, "id")
		if err != nil {
			api.WriteError(w, r, log, err)
			return
		}

		var patch ledger.Patch
		if err := api.DecodeJSON(r, &patch); err != nil {
			api.WriteError(w, r, log, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		rec, err := records.Update(ctx, id, patch)
		if err != nil {
			api.WriteError(w, r, log, err)
			return
		}

		render.JSON(w, r, Response{Message: "Registro actualizado correctamente.", OK: true, Record: &rec})
	}
}

func DeleteRecord(log *slog.Logger, records RecordEditor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.records.DeleteRecord"

		log := log.With(slog.String("op", op))

		id, err := api.IDParam(r, "id")
		if err != nil {
			api.WriteError(w, r, log, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := records.Delete(ctx, id); err != nil {
			api.WriteError(w, r, log, err)
			return
		}

		render.JSON(w, r, Response{Message: "Registro eliminado correctamente.", OK: true})
	}
}
