package get

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/uniformesbonaparte/operarias-bonaparte/internal/service/reports"
	"github.com/uniformesbonaparte/operarias-bonaparte/internal/storage"
)

type MockStats struct {
	mock.Mock
}

func (m *MockStats) General(ctx context.Context) reports.General {
	return m.Called(ctx).Get(0).(reports.General)
}

func (m *MockStats) SourceComparison(ctx context.Context, status storage.PaymentFilter) reports.Comparison {
	return m.Called(ctx, status).Get(0).(reports.Comparison)
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestGetGeneralStats(t *testing.T) {
	m := new(MockStats)
	m.On("General", mock.Anything).Return(reports.General{
		Operators: reports.Headcount{Total: 5, Active: 4, Inactive: 1},
		Orders:    reports.OrderCounts{Total: 2, Active: 1, Completed: 1},
	})

	rr := httptest.NewRecorder()
	GetGeneralStats(discard(), m).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/estadisticas/general", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"operarias":{"total":5,"activas":4,"inactivas":1}`)
}

func TestGetSourceComparison(t *testing.T) {
	m := new(MockStats)
	m.On("SourceComparison", mock.Anything, storage.PaymentFilter("pendiente")).Return(reports.Comparison{
		Status:     "pendiente",
		Operator:   reports.Tally{Records: 4, Pieces: 40, Earned: 60},
		Supervisor: reports.Tally{Records: 3, Pieces: 35, Earned: 52.5},
		Difference: reports.Tally{Records: 1, Pieces: 5, Earned: 7.5},
	})
	m.On("SourceComparison", mock.Anything, storage.PaymentFilter("todos")).Return(reports.Comparison{Status: "todos"})

	rr := httptest.NewRecorder()
	GetSourceComparison(discard(), m).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/estadisticas/comparacion-fuentes", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"diferencia":{"registros":1,"piezas":5,"ganado":7.5}`)

	rr = httptest.NewRecorder()
	GetSourceComparison(discard(), m).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/estadisticas/comparacion-fuentes?estadoPago=todos", nil))
	assert.Contains(t, rr.Body.String(), `"estadoPago":"todos"`)

	rr = httptest.NewRecorder()
	GetSourceComparison(discard(), m).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/estadisticas/comparacion-fuentes?estadoPago=abonado", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	m.AssertNumberOfCalls(t, "SourceComparison", 2)
}
