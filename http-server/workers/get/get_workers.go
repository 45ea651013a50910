package get

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"github.com/uniformesbonaparte/operarias-bonaparte/internal/lib/api"
	"github.com/uniformesbonaparte/operarias-bonaparte/internal/service/reports"
	"github.com/uniformesbonaparte/operarias-bonaparte/internal/storage"
)

type Workers interface {
	Operators() []storage.Operator
}

type WorkerReports interface {
	OperatorProfile(ctx context.Context, operatorID int64) (reports.Profile, error)
	OperatorToday(ctx context.Context, operatorID int64) (reports.Today, error)
}

func GetWorkers(log *slog.Logger, workers Workers) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ops := workers.Operators()
		if ops == nil {
			ops = []storage.Operator{}
		}
		render.JSON(w, r, ops)
	}
}

// GetProfile answers the operator's pending work split by who logged it.
func GetProfile(log *slog.Logger, rep WorkerReports) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.workers.GetProfile"

		log := log.With(slog.String("op", op))

		id, err := api.IDParam(r, "id")
		if err != nil {
			api.WriteError(w, r, log, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		profile, err := rep.OperatorProfile(ctx, id)
		if err != nil {
			api.WriteError(w, r, log, err)
			return
		}

		render.JSON(w, r, profile)
	}
}

func GetToday(log *slog.Logger, rep WorkerReports) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.workers.GetToday"

		log := log.With(slog.String("op", op))

		id, err := api.IDParam(r, "id")
		if err != nil {
			api.WriteError(w, r, log, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		today, err := rep.OperatorToday(ctx, id)
		if err != nil {
			api.WriteError(w, r, log, err)
			return
		}

		render.JSON(w, r, today)
	}
}
