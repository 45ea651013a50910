package generate_excel

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/uniformesbonaparte/operarias-bonaparte/internal/apperr"
	"github.com/uniformesbonaparte/operarias-bonaparte/internal/service/settlement"
	"github.com/uniformesbonaparte/operarias-bonaparte/internal/storage"
)

type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) WeeklyPayroll(ctx context.Context, q settlement.WeekQuery) ([]byte, string, error) {
	args := m.Called(ctx, q)
	var b []byte
	if args.Get(0) != nil {
		b = args.Get(0).([]byte)
	}
	return b, args.String(1), args.Error(2)
}

func TestGenerateReportExcel(t *testing.T) {
	gen := new(MockGenerator)
	gen.On("WeeklyPayroll", mock.Anything, settlement.WeekQuery{
		WeekCode: "2025-W50",
		Source:   storage.SourceFilter("todos"),
	}).Return([]byte("PK-fake"), "2025-W50", nil)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/reporte-semanal/excel?semana=2025-W50&fuente=todos", nil)
	GenerateReportExcel(slog.New(slog.NewTextHandler(io.Discard, nil)), gen).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", rr.Header().Get("Content-Type"))
	assert.Equal(t, "attachment; filename=Nomina_2025-W50.xlsx", rr.Header().Get("Content-Disposition"))
	assert.Equal(t, "PK-fake", rr.Body.String())
	gen.AssertExpectations(t)
}

func TestGenerateReportExcel_Error(t *testing.T) {
	gen := new(MockGenerator)
	gen.On("WeeklyPayroll", mock.Anything, mock.Anything).Return(nil, "", apperr.Validation("week code or date is required"))

	rr := httptest.NewRecorder()
	GenerateReportExcel(slog.New(slog.NewTextHandler(io.Discard, nil)), gen).
		ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/reporte-semanal/excel", nil))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Empty(t, rr.Header().Get("Content-Disposition"))
}
