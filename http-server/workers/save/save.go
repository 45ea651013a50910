package save

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/uniformesbonaparte/operarias-bonaparte/internal/lib/api"
	"github.com/uniformesbonaparte/operarias-bonaparte/internal/service/catalog"
	"github.com/uniformesbonaparte/operarias-bonaparte/internal/storage"
)

type WorkerCreator interface {
	CreateOperator(ctx context.Context, in catalog.OperatorInput) (storage.Operator, error)
}

type Response struct {
	Message  string           `json:"mensaje"`
	OK       bool             `json:"ok"`
	Operator storage.Operator `json:"operaria"`
}

func SaveWorker(log *slog.Logger, workers WorkerCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.workers.SaveWorker"

		log := log.With(slog.String("op", op))

		var req catalog.OperatorInput
		if err := api.DecodeJSON(r, &req); err != nil {
			api.WriteError(w, r, log, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		created, err := workers.CreateOperator(ctx, req)
		if err != nil {
			api.WriteError(w, r, log, err)
			return
		}

		api.Created(w, r, Response{Message: "Operaria creada correctamente", OK: true, Operator: created})
	}
}
