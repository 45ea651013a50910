package get

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"github.com/uniformesbonaparte/operarias-bonaparte/internal/apperr"
	"github.com/uniformesbonaparte/operarias-bonaparte/internal/lib/api"
	"github.com/uniformesbonaparte/operarias-bonaparte/internal/service/reports"
	"github.com/uniformesbonaparte/operarias-bonaparte/internal/storage"
)

type StatsProvider interface {
	General(ctx context.Context) reports.General
	SourceComparison(ctx context.Context, status storage.PaymentFilter) reports.Comparison
}

func GetGeneralStats(log *slog.Logger, stats StatsProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		render.JSON(w, r, stats.General(ctx))
	}
}

// GetSourceComparison sets operator-logged against supervisor-logged
// production. estadoPago defaults to pendiente.
func GetSourceComparison(log *slog.Logger, stats StatsProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.admin.GetSourceComparison"

		log := log.With(slog.String("op", op))

		status, err := storage.ParsePaymentFilter(r.URL.Query().Get("estadoPago"), storage.PaymentFilter(storage.PaymentPending))
		if err != nil {
			api.WriteError(w, r, log, apperr.Validation("%s", err.Error()))
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		render.JSON(w, r, stats.SourceComparison(ctx, status))
	}
}
