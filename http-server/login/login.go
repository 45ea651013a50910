package login

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"github.com/uniformesbonaparte/operarias-bonaparte/internal/apperr"
	"github.com/uniformesbonaparte/operarias-bonaparte/internal/lib/api"
	"github.com/uniformesbonaparte/operarias-bonaparte/internal/service/catalog"
	"github.com/uniformesbonaparte/operarias-bonaparte/internal/storage"
)

type Authenticator interface {
	Login(ctx context.Context, login, password string) (catalog.Session, error)
	StaffLogin(ctx context.Context, kind storage.StaffKind, password string) (storage.StaffUser, error)
	AuthenticateOperator(ctx context.Context, id int64, password string) (storage.Operator, error)
}

type Request struct {
	Login    string `json:"usuario"`
	Password string `json:"password"`
}

type StaffRequest struct {
	Password string `json:"password" validate:"required"`
}

type StaffResponse struct {
	Message string `json:"mensaje"`
	OK      bool   `json:"ok"`
	Role    string `json:"rol"`
	Name    string `json:"nombre"`
}

// OperatorRequest accepts operariaId as a number or a numeric string.
type OperatorRequest struct {
	OperatorID json.Number `json:"operariaId" validate:"required"`
	Password   string      `json:"password" validate:"required"`
}

type OperatorRef struct {
	ID   int64  `json:"id"`
	Name string `json:"nombre"`
}

type OperatorResponse struct {
	Message  string      `json:"mensaje"`
	OK       bool        `json:"ok"`
	Operator OperatorRef `json:"operaria"`
}

type Rejection struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

// rejected answers 401 for bad credentials and defers everything else to api.WriteError.
func rejected(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error, message string) {
	if errors.Is(err, catalog.ErrBadCredentials) {
		log.Info("login rejected")
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, Rejection{OK: false, Error: message})
		return
	}
	api.WriteError(w, r, log, err)
}

// Login accepts "admin", "encargada" or an operator's username, name or id.
func Login(log *slog.Logger, auth Authenticator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.login.Login"

		log := log.With(slog.String("op", op))

		var req Request
		if err := api.DecodeJSON(r, &req); err != nil {
			api.WriteError(w, r, log, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		session, err := auth.Login(ctx, req.Login, req.Password)
		if err != nil {
			rejected(w, r, log, err, "Usuario o contraseña incorrectos")
			return
		}

		render.JSON(w, r, session)
	}
}

func StaffLogin(log *slog.Logger, kind storage.StaffKind, auth Authenticator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.login.StaffLogin"

		log := log.With(slog.String("op", op), slog.String("kind", string(kind)))

		var req StaffRequest
		if err := api.DecodeJSON(r, &req); err != nil {
			api.WriteError(w, r, log, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		user, err := auth.StaffLogin(ctx, kind, req.Password)
		if err != nil {
			rejected(w, r, log, err, fmt.Sprintf("Contraseña de %s incorrecta.", kind))
			return
		}

		name := user.Name
		if name == "" {
			name = string(kind)
		}
		render.JSON(w, r, StaffResponse{
			Message: fmt.Sprintf("Login %s correcto", kind),
			OK:      true,
			Role:    string(kind),
			Name:    name,
		})
	}
}

func OperatorLogin(log *slog.Logger, auth Authenticator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.login.OperatorLogin"

		log := log.With(slog.String("op", op))

		var req OperatorRequest
		if err := api.DecodeJSON(r, &req); err != nil {
			api.WriteError(w, r, log, err)
			return
		}
		id, err := req.OperatorID.Int64()
		if err != nil || id <= 0 {
			api.WriteError(w, r, log, apperr.Validation("invalid operariaId %q", req.OperatorID.String()))
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		o, err := auth.AuthenticateOperator(ctx, id, req.Password)
		if err != nil {
			rejected(w, r, log, err, "Contraseña incorrecta.")
			return
		}

		render.JSON(w, r, OperatorResponse{
			Message:  "Login correcto",
			OK:       true,
			Operator: OperatorRef{ID: o.ID, Name: o.Name},
		})
	}
}
