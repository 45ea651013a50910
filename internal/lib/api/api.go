// Package api holds the request and response helpers shared by the handlers.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/uniformesbonaparte/operarias-bonaparte/internal/apperr"
	"github.com/uniformesbonaparte/operarias-bonaparte/internal/service/settlement"
	"github.com/uniformesbonaparte/operarias-bonaparte/internal/storage"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error   string         `json:"error"`
	Kind    apperr.Kind    `json:"kind"`
	Details map[string]any `json:"details,omitempty"`
}

// DecodeJSON reads the body into dest and runs its validate tags.
// Unknown fields are accepted: the web client sends display-only extras.
func DecodeJSON(r *http.Request, dest any) error {
	defer io.Copy(io.Discard, r.Body)

	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.Validation("request body is empty")
		}
		return apperr.Validation("invalid JSON body").With("error", err.Error())
	}
	return Validate(dest)
}

// Validate checks a struct against its validate tags.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperr.Wrap(apperr.KindValidation, err, "validation failed")
	}
	e := apperr.New(apperr.KindValidation, "validation failed")
	for _, fe := range fieldErrs {
		e.With(fe.Field(), fieldMessage(fe))
	}
	return e
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	}
	return "is invalid"
}

// WriteError renders err with the status of its kind. Foreign errors are
// logged and answered as internal errors without leaking their text.
func WriteError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	typed := apperr.As(err)
	if typed == nil {
		log.Error("request failed", slog.String("error", err.Error()))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, ErrorResponse{Error: "internal error", Kind: apperr.KindInternal})
		return
	}

	status := apperr.HTTPStatus(typed.Kind())
	if status >= http.StatusInternalServerError {
		log.Error("request failed", slog.String("error", err.Error()))
	}
	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{
		Error:   typed.Message(),
		Kind:    typed.Kind(),
		Details: typed.Details(),
	})
}

// Created renders v with 201.
func Created(w http.ResponseWriter, r *http.Request, v any) {
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, v)
}

// IDParam parses a positive integer URL parameter.
func IDParam(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation("invalid %s %q", name, raw).With(name, raw)
	}
	return id, nil
}

// QueryID parses an optional positive integer query parameter; 0 when absent.
func QueryID(r *http.Request, name string) (int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation("invalid %s %q", name, raw).With(name, raw)
	}
	return id, nil
}

// QueryBool reads "true"/"1" as true.
func QueryBool(r *http.Request, name string) bool {
	v := r.URL.Query().Get(name)
	return v == "true" || v == "1"
}

// WeekQuery reads semana, fecha, fuente, estadoPago (or estado) and operariaId.
// Empty filters are left for the service to default.
func WeekQuery(r *http.Request) (settlement.WeekQuery, error) {
	q := r.URL.Query()

	operatorID, err := QueryID(r, "operariaId")
	if err != nil {
		return settlement.WeekQuery{}, err
	}
	source, err := storage.ParseSourceFilter(q.Get("fuente"), "")
	if err != nil {
		return settlement.WeekQuery{}, apperr.Validation("%s", err.Error())
	}
	rawStatus := q.Get("estadoPago")
	if rawStatus == "" {
		rawStatus = q.Get("estado")
	}
	status, err := storage.ParsePaymentFilter(rawStatus, "")
	if err != nil {
		return settlement.WeekQuery{}, apperr.Validation("%s", err.Error())
	}

	return settlement.WeekQuery{
		WeekCode:   q.Get("semana"),
		Day:        q.Get("fecha"),
		OperatorID: operatorID,
		Source:     source,
		Status:     status,
	}, nil
}
