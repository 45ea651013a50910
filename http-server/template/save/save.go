package save

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"github.com/uniformesbonaparte/operarias-bonaparte/internal/lib/api"
	"github.com/uniformesbonaparte/operarias-bonaparte/internal/storage"
)

// CatalogCreator adds garments, seams, machines and template operations.
type CatalogCreator interface {
	CreateGarment(ctx context.Context, name string) (storage.Garment, error)
	CreateSeam(ctx context.Context, name string) (storage.Seam, error)
	AddMachine(ctx context.Context, name string) ([]string, error)
	AppendTemplate(ctx context.Context, garmentID int64, e storage.TemplateEntry) ([]storage.TemplateEntry, error)
}

type NameRequest struct {
	Name string `json:"nombre" validate:"required"`
}

type SeamResponse struct {
	OK   bool         `json:"ok"`
	Seam storage.Seam `json:"costura"`
}

type MachinesResponse struct {
	Message  string   `json:"mensaje"`
	OK       bool     `json:"ok"`
	Machines []string `json:"maquinas"`
}

type TemplateResponse struct {
	OK       bool                    `json:"ok"`
	Template []storage.TemplateEntry `json:"plantilla"`
}

type TemplateEntryRequest struct {
	Seam    string `json:"costura" validate:"required"`
	Machine string `json:"maquina" validate:"required"`
}

// SaveGarment answers the created garment itself.
func SaveGarment(log *slog.Logger, cat CatalogCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.template.SaveGarment"

		log := log.With(slog.String("op", op))

		var req NameRequest
		if err := api.DecodeJSON(r, &req); err != nil {
			api.WriteError(w, r, log, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		g, err := cat.CreateGarment(ctx, req.Name)
		if err != nil {
			api.WriteError(w, r, log, err)
			return
		}

		api.Created(w, r, g)
	}
}

func SaveSeam(log *slog.Logger, cat CatalogCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.template.SaveSeam"

		log := log.With(slog.String("op", op))

		var req NameRequest
		if err := api.DecodeJSON(r, &req); err != nil {
			api.WriteError(w, r, log, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		seam, err := cat.CreateSeam(ctx, req.Name)
		if err != nil {
			api.WriteError(w, r, log, err)
			return
		}

		api.Created(w, r, SeamResponse{OK: true, Seam: seam})
	}
}

// SaveMachine is idempotent: an existing name leaves the list unchanged.
func SaveMachine(log *slog.Logger, cat CatalogCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.template.SaveMachine"

		log := log.With(slog.String("op", op))

		var req NameRequest
		if err := api.DecodeJSON(r, &req); err != nil {
			api.WriteError(w, r, log, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		machines, err := cat.AddMachine(ctx, req.Name)
		if err != nil {
			api.WriteError(w, r, log, err)
			return
		}

		render.JSON(w, r, MachinesResponse{Message: "Máquina agregada correctamente.", OK: true, Machines: machines})
	}
}

func AppendTemplate(log *slog.Logger, cat CatalogCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.template.AppendTemplate"

		log := log.With(slog.String("op", op))

		garmentID, err := api.IDParam(r, "prendaId")
		if err != nil {
			api.WriteError(w, r, log, err)
			return
		}

		var req TemplateEntryRequest
		if err := api.DecodeJSON(r, &req); err != nil {
			api.WriteError(w, r, log, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		entries, err := cat.AppendTemplate(ctx, garmentID, storage.TemplateEntry{Seam: req.Seam, Machine: req.Machine})
		if err != nil {
			api.WriteError(w, r, log, err)
			return
		}

		render.JSON(w, r, TemplateResponse{OK: true, Template: entries})
	}
}
