package update

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/uniformesbonaparte/operarias-bonaparte/internal/apperr"
	"github.com/uniformesbonaparte/operarias-bonaparte/internal/lib/api"
	"github.com/uniformesbonaparte/operarias-bonaparte/internal/storage"
)

type CatalogEditor interface {
	ReplaceTemplate(ctx context.Context, garmentID int64, entries []storage.TemplateEntry) ([]storage.TemplateEntry, error)
	RenameSeam(ctx context.Context, id int64, name string) (storage.Seam, error)
	DeleteGarment(ctx context.Context, id int64) error
	DeleteSeam(ctx context.Context, id int64) error
	DeleteMachine(ctx context.Context, name string) ([]string, error)
}

type TemplateRequest struct {
	Operations []storage.TemplateEntry `json:"operaciones"`
}

type TemplateResponse struct {
	OK       bool                    `json:"ok"`
	Template []storage.TemplateEntry `json:"plantilla"`
}

type SeamRequest struct {
	Name string `json:"nombre" validate:"required"`
}

type SeamResponse struct {
	OK   bool         `json:"ok"`
	Seam storage.Seam `json:"costura"`
}

type Response struct {
	OK       bool     `json:"ok"`
	Message  string   `json:"mensaje"`
	Machines []string `json:"maquinas,omitempty"`
}

// ReplaceTemplate swaps a garment's whole template. Entries missing a seam
// or a machine are dropped.
func ReplaceTemplate(log *slog.Logger, cat CatalogEditor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.template.ReplaceTemplate"

		log := log.With(slog.String("op", op))

		garmentID, err := api.IDParam(r, "prendaId")
		if err != nil {
			api.WriteError(w, r, log, err)
			return
		}

		var req TemplateRequest
		if err := api.DecodeJSON(r, &req); err != nil {
			api.WriteError(w, r, log, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		entries, err := cat.ReplaceTemplate(ctx, garmentID, req.Operations)
		if err != nil {
			api.WriteError(w, r, log, err)
			return
		}

		log.Info("template replaced", slog.Int64("garment_id", garmentID), slog.Int("operations", len(entries)))

		render.JSON(w, r, TemplateResponse{OK: true, Template: entries})
	}
}

func RenameSeam(log *slog.Logger, cat CatalogEditor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.template.RenameSeam"

		log := log.With(slog.String("op", op))

		id, err := api.IDParam(r, "id")
		if err != nil {
			api.WriteError(w, r, log, err)
			return
		}

		var req SeamRequest
		if err := api.DecodeJSON(r, &req); err != nil {
			api.WriteError(w, r, log, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		seam, err := cat.RenameSeam(ctx, id, req.Name)
		if err != nil {
			api.WriteError(w, r, log, err)
			return
		}

		render.JSON(w, r, SeamResponse{OK: true, Seam: seam})
	}
}

func DeleteGarment(log *slog.Logger, cat CatalogEditor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.template.DeleteGarment"

		log := log.With(slog.String("op", op))

		id, err := api.IDParam(r, "id")
		if err != nil {
			api.WriteError(w, r, log, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := cat.DeleteGarment(ctx, id); err != nil {
			api.WriteError(w, r, log, err)
			return
		}

		render.JSON(w, r, Response{OK: true, Message: "Prenda eliminada"})
	}
}

func DeleteSeam(log *slog.Logger, cat CatalogEditor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.template.DeleteSeam"

		log := log.With(slog.String("op", op))

		id, err := api.IDParam(r, "id")
		if err != nil {
			api.WriteError(w, r, log, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := cat.DeleteSeam(ctx, id); err != nil {
			api.WriteError(w, r, log, err)
			return
		}

		render.JSON(w, r, Response{OK: true, Message: "Costura eliminada del catálogo."})
	}
}

// DeleteMachine takes the machine name from the path.
func DeleteMachine(log *slog.Logger, cat CatalogEditor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.template.DeleteMachine"

		log := log.With(slog.String("op", op))

		name := chi.URLParam(r, "nombre")
		if unescaped, err := url.PathUnescape(name); err == nil {
			name = unescaped
		}
		if name == "" {
			api.WriteError(w, r, log, apperr.Validation("nombre is required"))
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		machines, err := cat.DeleteMachine(ctx, name)
		if err != nil {
			api.WriteError(w, r, log, err)
			return
		}

		render.JSON(w, r, Response{OK: true, Message: "Máquina eliminada correctamente.", Machines: machines})
	}
}
