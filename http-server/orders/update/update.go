package update

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"github.com/uniformesbonaparte/operarias-bonaparte/internal/lib/api"
	"github.com/uniformesbonaparte/operarias-bonaparte/internal/service/catalog"
	"github.com/uniformesbonaparte/operarias-bonaparte/internal/storage"
)

type OrderEditor interface {
	UpdateOrder(ctx context.Context, id int64, p catalog.OrderPatch) (storage.Order, error)
	SetOrderStatus(ctx context.Context, id int64, status string) (storage.Order, error)
	DeleteOrder(ctx context.Context, id int64) error
}

type Response struct {
	Message string         `json:"mensaje"`
	OK      bool           `json:"ok"`
	Order   *storage.Order `json:"pedido,omitempty"`
}

type StatusRequest struct {
	Status string `json:"estado" validate:"required,oneof=activo terminado"`
}

func UpdateOrder(log *slog.Logger, orders OrderEditor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.orders.UpdateOrder"

		log := log.With(slog.String("op", op))

		id, err := api.IDParam(r, "id")
		if err != nil {
			api.WriteError(w, r, log, err)
			return
		}

		var req catalog.OrderPatch
		if err := api.DecodeJSON(r, &req); err != nil {
			api.WriteError(w, r, log, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		order, err := orders.UpdateOrder(ctx, id, req)
		if err != nil {
			api.WriteError(w, r, log, err)
			return
		}

		render.JSON(w, r, Response{Message: "Pedido actualizado correctamente.", OK: true, Order: &order})
	}
}

// SetStatus marks an order activo or terminado.
func SetStatus(log *slog.Logger, orders OrderEditor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.orders.SetStatus"

		log := log.With(slog.String("op", op))

		id, err := api.IDParam(r, "id")
		if err != nil {
			api.WriteError(w, r, log, err)
			return
		}

		var req StatusRequest
		if err := api.DecodeJSON(r, &req); err != nil {
			api.WriteError(w, r, log, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		order, err := orders.SetOrderStatus(ctx, id, req.Status)
		if err != nil {
			api.WriteError(w, r, log, err)
			return
		}

		log.Info("order status changed", slog.Int64("id", id), slog.String("estado", req.Status))

		render.JSON(w, r, Response{
			Message: fmt.Sprintf("Pedido marcado como %s.", req.Status),
			OK:      true,
			Order:   &order,
		})
	}
}

func DeleteOrder(log *slog.Logger, orders OrderEditor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.orders.DeleteOrder"

		log := log.With(slog.String("op", op))

		id, err := api.IDParam(r, "id")
		if err != nil {
			api.WriteError(w, r, log, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := orders.DeleteOrder(ctx, id); err != nil {
			api.WriteError(w, r, log, err)
			return
		}

		render.JSON(w, r, Response{Message: "Pedido eliminado correctamente.", OK: true})
	}
}
