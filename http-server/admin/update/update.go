package update

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/uniformesbonaparte/operarias-bonaparte/internal/apperr"
	"github.com/uniformesbonaparte/operarias-bonaparte/internal/lib/api"
	"github.com/uniformesbonaparte/operarias-bonaparte/internal/service/catalog"
	"github.com/uniformesbonaparte/operarias-bonaparte/internal/storage"
)

type StaffUpdater interface {
	StaffLogin(ctx context.Context, kind storage.StaffKind, password string) (storage.StaffUser, error)
	UpdateStaff(ctx context.Context, kind storage.StaffKind, p catalog.StaffPatch) (storage.StaffUser, error)
}

type Response struct {
	OK      bool              `json:"ok"`
	Message string            `json:"mensaje"`
	User    storage.StaffUser `json:"usuario"`
}

type PasswordRequest struct {
	Kind    string `json:"tipo" validate:"required,oneof=admin encargada"`
	Current string `json:"passwordActual" validate:"required"`
	New     string `json:"passwordNueva" validate:"required"`
}

type PasswordResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"mensaje,omitempty"`
	Error   string `json:"error,omitempty"`
}

func staffKind(raw string) (storage.StaffKind, error) {
	kind := storage.StaffKind(raw)
	if kind != storage.StaffAdmin && kind != storage.StaffSupervisor {
		return "", apperr.Validation("unknown staff account %q", raw).With("tipo", raw)
	}
	return kind, nil
}

// UpdateStaff changes the name and/or password of /api/usuarios/{tipo}.
func UpdateStaff(log *slog.Logger, staff StaffUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.admin.UpdateStaff"

		log := log.With(slog.String("op", op))

		kind, err := staffKind(chi.URLParam(r, "tipo"))
		if err != nil {
			api.WriteError(w, r, log, err)
			return
		}

		var req catalog.StaffPatch
		if err := api.DecodeJSON(r, &req); err != nil {
			api.WriteError(w, r, log, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		user, err := staff.UpdateStaff(ctx, kind, req)
		if err != nil {
			api.WriteError(w, r, log, err)
			return
		}

		log.Info("staff credentials updated", slog.String("kind", string(kind)))

		render.JSON(w, r, Response{
			OK:      true,
			Message: fmt.Sprintf("Credenciales de %s actualizadas correctamente", kind),
			User:    user,
		})
	}
}

// ChangePassword replaces a staff password after checking the current one.
func ChangePassword(log *slog.Logger, staff StaffUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.admin.ChangePassword"

		log := log.With(slog.String("op", op))

		var req PasswordRequest
		if err := api.DecodeJSON(r, &req); err != nil {
			api.WriteError(w, r, log, err)
			return
		}
		kind := storage.StaffKind(req.Kind)

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if _, err := staff.StaffLogin(ctx, kind, req.Current); err != nil {
			if errors.Is(err, catalog.ErrBadCredentials) {
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, PasswordResponse{OK: false, Error: "La contraseña actual no es correcta."})
				return
			}
			api.WriteError(w, r, log, err)
			return
		}

		if _, err := staff.UpdateStaff(ctx, kind, catalog.StaffPatch{Password: req.New}); err != nil {
			api.WriteError(w, r, log, err)
			return
		}

		log.Info("staff password changed", slog.String("kind", string(kind)))

		render.JSON(w, r, PasswordResponse{OK: true, Message: "Contraseña actualizada correctamente."})
	}
}
