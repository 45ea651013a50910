package save

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/uniformesbonaparte/operarias-bonaparte/internal/lib/api"
	"github.com/uniformesbonaparte/operarias-bonaparte/internal/service/ledger"
	"github.com/uniformesbonaparte/operarias-bonaparte/internal/storage"
)

type RecordCreator interface {
	Create(ctx context.Context, in ledger.CreateInput) (storage.Record, error)
}

type Response struct {
	Message string         `json:"mensaje"`
	OK      bool           `json:"ok"`
	Record  storage.Record `json:"registro"`
}

func SaveRecord(log *slog.Logger, records RecordCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.records.SaveRecord"

		log := log.With(slog.String("op", op))

		var req ledger.CreateInput
		if err := api.DecodeJSON(r, &req); err != nil {
			api.WriteError(w, r, log, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		rec, err := records.Create(ctx, req)
		if err != nil {
			api.WriteError(w, r, log, err)
			return
		}

		api.Created(w, r, Response{Message: "Registro guardado correctamente.", OK: true, Record: rec})
	}
}
