package pay

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"github.com/uniformesbonaparte/operarias-bonaparte/internal/apperr"
	"github.com/uniformesbonaparte/operarias-bonaparte/internal/calendar"
	"github.com/uniformesbonaparte/operarias-bonaparte/internal/lib/api"
	"github.com/uniformesbonaparte/operarias-bonaparte/internal/service/ledger"
	"github.com/uniformesbonaparte/operarias-bonaparte/internal/storage"
)

type WeekPayer interface {
	MarkPaid(ctx context.Context, in ledger.MarkPaidInput) (ledger.MarkPaidResult, error)
	Calendar() *calendar.Resolver
}

type Request struct {
	WeekCode   string `json:"semanaCodigo" validate:"required"`
	OperatorID int64  `json:"operariaId,omitempty" validate:"gte=0"`
}

type Response struct {
	OK       bool    `json:"ok"`
	Updated  int     `json:"registrosActualizados"`
	Paid     float64 `json:"totalPagado"`
	WeekCode string  `json:"semanaCodigo"`
	PaidOn   string  `json:"fechaPago"`
}

// MarkWeek pays every pending record of a week, optionally for one operator.
// A week with nothing pending answers 200 with zero records.
func MarkWeek(log *slog.Logger, payer WeekPayer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.pay.MarkWeek"

		log := log.With(slog.String("op", op))

		var req Request
		if err := api.DecodeJSON(r, &req); err != nil {
			api.WriteError(w, r, log, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		res, err := payer.MarkPaid(ctx, ledger.MarkPaidInput{WeekCode: req.WeekCode, OperatorID: req.OperatorID})
		if err != nil {
			api.WriteError(w, r, log, err)
			return
		}

		render.JSON(w, r, Response{
			OK:       true,
			Updated:  res.Records,
			Paid:     res.Total,
			WeekCode: res.Week.Code,
			PaidOn:   payer.Calendar().LocalDay(res.PaidAt),
		})
	}
}

type LegacyRequest struct {
	Day    string `json:"fecha" validate:"required"`
	Source string `json:"fuente,omitempty" validate:"omitempty,oneof=operaria encargada todos"`
}

type LegacyWeek struct {
	Start    string `json:"inicio"`
	End      string `json:"fin"`
	WeekCode string `json:"semanaPago"`
	Source   string `json:"fuente"`
}

type LegacyResponse struct {
	Message  string     `json:"mensaje"`
	OK       bool       `json:"ok"`
	Affected int        `json:"registrosAfectados"`
	Week     LegacyWeek `json:"semana"`
}

// MarkWeekByDay pays the week that contains fecha, for one source (operaria by default).
func MarkWeekByDay(log *slog.Logger, payer WeekPayer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.pay.MarkWeekByDay"

		log := log.With(slog.String("op", op))

		var req LegacyRequest
		if err := api.DecodeJSON(r, &req); err != nil {
			api.WriteError(w, r, log, err)
			return
		}
		source, err := storage.ParseSourceFilter(req.Source, storage.SourceFilter(storage.SourceOperator))
		if err != nil {
			api.WriteError(w, r, log, apperr.Validation("%s", err.Error()))
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		res, err := payer.MarkPaid(ctx, ledger.MarkPaidInput{Day: req.Day, Source: source})
		if err != nil {
			api.WriteError(w, r, log, err)
			return
		}

		render.JSON(w, r, LegacyResponse{
			Message:  fmt.Sprintf("Semana marcada como pagada (%s)", res.Week.Code),
			OK:       true,
			Affected: res.Records,
			Week: LegacyWeek{
				Start:    res.Week.StartDay(),
				End:      res.Week.EndDay(),
				WeekCode: res.Week.Code,
				Source:   string(source),
			},
		})
	}
}
