package update

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"github.com/uniformesbonaparte/operarias-bonaparte/internal/lib/api"
	"github.com/uniformesbonaparte/operarias-bonaparte/internal/service/catalog"
	"github.com/uniformesbonaparte/operarias-bonaparte/internal/storage"
)

type WorkerEditor interface {
	UpdateOperator(ctx context.Context, id int64, p catalog.OperatorPatch) (storage.Operator, error)
	DeleteOperator(ctx context.Context, id int64) error
}

type Response struct {
	Message  string            `json:"mensaje"`
	OK       bool              `json:"ok"`
	Operator *storage.Operator `json:"operaria,omitempty"`
}

func UpdateWorker(log *slog.Logger, workers WorkerEditor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.workers.UpdateWorker"

		log := log.With(slog.String("op", op))

		id, err := api.IDParam(r, "id")
		if err != nil {
			api.WriteError(w, r, log, err)
			return
		}

		var req catalog.OperatorPatch
		if err := api.DecodeJSON(r, &req); err != nil {
			api.WriteError(w, r, log, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		updated, err := workers.UpdateOperator(ctx, id, req)
		if err != nil {
			api.WriteError(w, r, log, err)
			return
		}

		render.JSON(w, r, Response{Message: "Operaria actualizada correctamente.", OK: true, Operator: &updated})
	}
}

// DeleteWorker refuses operators that still have production records.
func DeleteWorker(log *slog.Logger, workers WorkerEditor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.workers.DeleteWorker"

		log := log.With(slog.String("op", op))

		id, err := api.IDParam(r, "id")
		if err != nil {
			api.WriteError(w, r, log, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := workers.DeleteOperator(ctx, id); err != nil {
			api.WriteError(w, r, log, err)
			return
		}

		log.Info("operator deleted", slog.Int64("id", id))

		render.JSON(w, r, Response{Message: "Operaria eliminada correctamente.", OK: true})
	}
}
