package generate_excel

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/uniformesbonaparte/operarias-bonaparte/internal/lib/api"
	"github.com/uniformesbonaparte/operarias-bonaparte/internal/service/settlement"
)

type GenerateExcelHandler interface {
	WeeklyPayroll(ctx context.Context, q settlement.WeekQuery) ([]byte, string, error)
}

// GenerateReportExcel downloads the weekly payroll as an .xlsx attachment.
// It takes the same query parameters as the weekly report.
func GenerateReportExcel(log *slog.Logger, gen GenerateExcelHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.report.GenerateReportExcel"

		log := log.With(slog.String("op", op))

		q, err := api.WeekQuery(r)
		if err != nil {
			api.WriteError(w, r, log, err)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		excelBytes, weekCode, err := gen.WeeklyPayroll(ctx, q)
		if err != nil {
			api.WriteError(w, r, log, err)
			return
		}

		fileName := fmt.Sprintf("Nomina_%s.xlsx", weekCode)

		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", "attachment; filename="+fileName)
		w.Header().Set("Content-Length", strconv.Itoa(len(excelBytes)))
		if _, err := w.Write(excelBytes); err != nil {
			log.Error("failed to write excel", slog.String("error", err.Error()))
		}
	}
}
