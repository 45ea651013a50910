package get

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"github.com/uniformesbonaparte/operarias-bonaparte/internal/apperr"
	"github.com/uniformesbonaparte/operarias-bonaparte/internal/lib/api"
	"github.com/uniformesbonaparte/operarias-bonaparte/internal/service/settlement"
	"github.com/uniformesbonaparte/operarias-bonaparte/internal/storage"
)

type WeeklyReporter interface {
	SummarizeWeek(ctx context.Context, q settlement.WeekQuery) (settlement.WeekReport, error)
	WeekDetail(ctx context.Context, code string, operatorID int64, status storage.PaymentFilter) (settlement.WeekDetail, error)
	Weeks(ctx context.Context, status storage.PaymentFilter) []settlement.WeekTotals
}

// GetWeeklyReport answers one row per operator for the requested week.
func GetWeeklyReport(log *slog.Logger, reporter WeeklyReporter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.report.GetWeeklyReport"

		log := log.With(slog.String("op", op))

		q, err := api.WeekQuery(r)
		if err != nil {
			api.WriteError(w, r, log, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		report, err := reporter.SummarizeWeek(ctx, q)
		if err != nil {
			api.WriteError(w, r, log, err)
			return
		}

		render.JSON(w, r, report.Operators)
	}
}

func GetWeekDetail(log *slog.Logger, reporter WeeklyReporter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.report.GetWeekDetail"

		log := log.With(slog.String("op", op))

		q, err := api.WeekQuery(r)
		if err != nil {
			api.WriteError(w, r, log, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		detail, err := reporter.WeekDetail(ctx, q.WeekCode, q.OperatorID, q.Status)
		if err != nil {
			api.WriteError(w, r, log, err)
			return
		}

		render.JSON(w, r, detail)
	}
}

// GetWeeks lists weeks holding records in the given estado (pendiente by default).
func GetWeeks(log *slog.Logger, reporter WeeklyReporter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.report.GetWeeks"

		log := log.With(slog.String("op", op))

		status, err := storage.ParsePaymentFilter(r.URL.Query().Get("estado"), storage.PaymentFilter(storage.PaymentPending))
		if err != nil {
			api.WriteError(w, r, log, apperr.Validation("%s", err.Error()))
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		render.JSON(w, r, reporter.Weeks(ctx, status))
	}
}
