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

type OrderCreator interface {
	CreateOrder(ctx context.Context, in catalog.OrderInput) (storage.Order, error)
}

type Response struct {
	Message string        `json:"mensaje"`
	OK      bool          `json:"ok"`
	Order   storage.Order `json:"pedido"`
}

func SaveOrder(log *slog.Logger, orders OrderCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.orders.SaveOrder"

		log := log.With(slog.String("op", op))

		var req catalog.OrderInput
		if err := api.DecodeJSON(r, &req); err != nil {
			api.WriteError(w, r, log, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		order, err := orders.CreateOrder(ctx, req)
		if err != nil {
			api.WriteError(w, r, log, err)
			return
		}

		log.Info("order created", slog.Int64("id", order.ID), slog.String("folio", order.Folio))

		api.Created(w, r, Response{Message: "Pedido creado correctamente.", OK: true, Order: order})
	}
}
