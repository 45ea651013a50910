package get

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"github.com/uniformesbonaparte/operarias-bonaparte/internal/apperr"
	"github.com/uniformesbonaparte/operarias-bonaparte/internal/lib/api"
	"github.com/uniformesbonaparte/operarias-bonaparte/internal/service/ledger"
	"github.com/uniformesbonaparte/operarias-bonaparte/internal/storage"
)

type RecordQuerier interface {
	Query(ctx context.Context, f ledger.Filter) ([]ledger.Entry, error)
}

// GetRecords lists production records filtered by fecha, operariaId,
// fuente and estadoPago (pending by default).
func GetRecords(log *slog.Logger, records RecordQuerier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.records.GetRecords"

		log := log.With(slog.String("op", op))

		q := r.URL.Query()
		operatorID, err := api.QueryID(r, "operariaId")
		if err != nil {
			api.WriteError(w, r, log, err)
			return
		}
		source, err := storage.ParseSourceFilter(q.Get("fuente"), storage.FilterAll)
		if err != nil {
			api.WriteError(w, r, log, apperr.Validation("%s", err.Error()))
			return
		}
		status, err := storage.ParsePaymentFilter(q.Get("estadoPago"), storage.PaymentFilter(storage.PaymentPending))
		if err != nil {
			api.WriteError(w, r, log, apperr.Validation("%s", err.Error()))
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		entries, err := records.Query(ctx, ledger.Filter{
			Day:        q.Get("fecha"),
			OperatorID: operatorID,
			Source:     source,
			Status:     status,
		})
		if err != nil {
			api.WriteError(w, r, log, err)
			return
		}

		render.JSON(w, r, entries)
	}
}
