package get

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/render"

	"github.com/uniformesbonaparte/operarias-bonaparte/internal/apperr"
	"github.com/uniformesbonaparte/operarias-bonaparte/internal/lib/api"
	"github.com/uniformesbonaparte/operarias-bonaparte/internal/service/catalog"
	"github.com/uniformesbonaparte/operarias-bonaparte/internal/service/progress"
	"github.com/uniformesbonaparte/operarias-bonaparte/internal/service/reports"
	"github.com/uniformesbonaparte/operarias-bonaparte/internal/storage"
)

type OrderLister interface {
	Orders(ctx context.Context, q reports.OrderListing) []reports.OrderView
}

type OrderReader interface {
	Order(ctx context.Context, id int64) (catalog.OrderDetail, error)
}

type ProgressReader interface {
	Progress(ctx context.Context, orderID int64) (progress.OrderProgress, error)
	AvailableOperations(ctx context.Context, orderID, garmentID int64, size string) ([]progress.AvailableOperation, error)
}

// GetOrders lists orders. estado is activo, terminado or todos (default);
// conTotales, conPrendas and conDesglose add production totals, garment
// names and the per-garment breakdown.
func GetOrders(log *slog.Logger, lister OrderLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.orders.GetOrders"

		log := log.With(slog.String("op", op))

		status := r.URL.Query().Get("estado")
		if status != "" && status != storage.FilterAll && !storage.OrderStatus(status).IsValid() {
			api.WriteError(w, r, log, apperr.Validation("invalid estado %q", status).With("estado", status))
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		orders := lister.Orders(ctx, reports.OrderListing{
			Status:        status,
			WithTotals:    api.QueryBool(r, "conTotales"),
			WithGarments:  api.QueryBool(r, "conPrendas"),
			WithBreakdown: api.QueryBool(r, "conDesglose"),
		})

		render.JSON(w, r, orders)
	}
}

func GetOrder(log *slog.Logger, reader OrderReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.orders.GetOrder"

		log := log.With(slog.String("op", op))

		id, err := api.IDParam(r, "id")
		if err != nil {
			api.WriteError(w, r, log, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		order, err := reader.Order(ctx, id)
		if err != nil {
			api.WriteError(w, r, log, err)
			return
		}

		render.JSON(w, r, order)
	}
}

func GetProgress(log *slog.Logger, reader ProgressReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.orders.GetProgress"

		log := log.With(slog.String("op", op))

		id, err := api.IDParam(r, "id")
		if err != nil {
			api.WriteError(w, r, log, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		p, err := reader.Progress(ctx, id)
		if err != nil {
			api.WriteError(w, r, log, err)
			return
		}

		render.JSON(w, r, p)
	}
}

// GetOperations lists what can still be logged, optionally narrowed by
// prendaId and talla.
func GetOperations(log *slog.Logger, reader ProgressReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.orders.GetOperations"

		log := log.With(slog.String("op", op))

		id, err := api.IDParam(r, "id")
		if err != nil {
			api.WriteError(w, r, log, err)
			return
		}
		garmentID, err := api.QueryID(r, "prendaId")
		if err != nil {
			api.WriteError(w, r, log, err)
			return
		}
		size := strings.TrimSpace(r.URL.Query().Get("talla"))

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		ops, err := reader.AvailableOperations(ctx, id, garmentID, size)
		if err != nil {
			api.WriteError(w, r, log, err)
			return
		}
		if ops == nil {
			ops = []progress.AvailableOperation{}
		}

		render.JSON(w, r, ops)
	}
}
