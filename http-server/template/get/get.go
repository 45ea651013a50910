package get

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/render"

	"github.com/uniformesbonaparte/operarias-bonaparte/internal/lib/api"
	"github.com/uniformesbonaparte/operarias-bonaparte/internal/service/catalog"
	"github.com/uniformesbonaparte/operarias-bonaparte/internal/storage"
)

// CatalogReader serves the garment, seam, machine and template catalogs.
type CatalogReader interface {
	Garments() []storage.Garment
	Seams() []storage.Seam
	Machines() []string
	Template(ctx context.Context, garmentID int64) catalog.Template
	Templates(ctx context.Context) map[int64]catalog.Template
}

func GetGarments(log *slog.Logger, cat CatalogReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		garments := cat.Garments()
		if garments == nil {
			garments = []storage.Garment{}
		}
		render.JSON(w, r, garments)
	}
}

func GetSeams(log *slog.Logger, cat CatalogReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		seams := cat.Seams()
		if seams == nil {
			seams = []storage.Seam{}
		}
		render.JSON(w, r, seams)
	}
}

func GetMachines(log *slog.Logger, cat CatalogReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		machines := cat.Machines()
		if machines == nil {
			machines = []string{}
		}
		render.JSON(w, r, machines)
	}
}

// GetTemplate answers an empty operation list for garments without a template.
func GetTemplate(log *slog.Logger, cat CatalogReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.template.GetTemplate"

		log := log.With(slog.String("op", op))

		garmentID, err := api.IDParam(r, "prendaId")
		if err != nil {
			api.WriteError(w, r, log, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		render.JSON(w, r, cat.Template(ctx, garmentID))
	}
}

// GetTemplates answers every template keyed by garment id.
func GetTemplates(log *slog.Logger, cat CatalogReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		all := cat.Templates(ctx)
		out := make(map[string]catalog.Template, len(all))
		for id, t := range all {
			out[strconv.FormatInt(id, 10)] = t
		}

		render.JSON(w, r, out)
	}
}
