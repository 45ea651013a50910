package get

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/uniformesbonaparte/operarias-bonaparte/internal/apperr"
	"github.com/uniformesbonaparte/operarias-bonaparte/internal/service/reports"
	"github.com/uniformesbonaparte/operarias-bonaparte/internal/storage"
)

type MockWorkers struct {
	mock.Mock
}

func (m *MockWorkers) Operators() []storage.Operator {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]storage.Operator)
}

func (m *MockWorkers) OperatorProfile(ctx context.Context, operatorID int64) (reports.Profile, error) {
	args := m.Called(ctx, operatorID)
	p := reports.Profile{}
	if args.Get(0) != nil {
		p = args.Get(0).(reports.Profile)
	}
	return p, args.Error(1)
}

func (m *MockWorkers) OperatorToday(ctx context.Context, operatorID int64) (reports.Today, error) {
	args := m.Called(ctx, operatorID)
	t := reports.Today{}
	if args.Get(0) != nil {
		t = args.Get(0).(reports.Today)
	}
	return t, args.Error(1)
}

func router(m *MockWorkers) http.Handler {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := chi.NewRouter()
	r.Get("/api/operarias", GetWorkers(log, m))
	r.Get("/api/operarias/{id}/perfil", GetProfile(log, m))
	r.Get("/api/operarias/{id}/resumen-dia-semana", GetToday(log, m))
	return r
}

func TestGetWorkers(t *testing.T) {
	m := new(MockWorkers)
	m.On("Operators").Return([]storage.Operator{{ID: 1, Name: "Lupita", Username: "lupita", Active: true}}).Once()
	m.On("Operators").Return(nil).Once()

	rr := httptest.NewRecorder()
	router(m).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/operarias", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"usuario":"lupita"`)

	rr = httptest.NewRecorder()
	router(m).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/operarias", nil))
	assert.JSONEq(t, `[]`, rr.Body.String())
}

func TestGetProfile(t *testing.T) {
	m := new(MockWorkers)
	m.On("OperatorProfile", mock.Anything, int64(2)).Return(reports.Profile{
		Operator: reports.ProfileOperator{ID: 2, Name: "Rosa"},
		Total:    reports.Tally{Records: 3, Pieces: 30, Earned: 45},
	}, nil)
	m.On("OperatorProfile", mock.Anything, int64(40)).Return(nil, apperr.NotFound("operator", 40))

	rr := httptest.NewRecorder()
	router(m).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/operarias/2/perfil", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"nombre":"Rosa"`)

	rr = httptest.NewRecorder()
	router(m).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/operarias/40/perfil", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestGetToday(t *testing.T) {
	m := new(MockWorkers)
	m.On("OperatorToday", mock.Anything, int64(2)).Return(reports.Today{
		Operator: reports.OperatorRef{ID: 2, Name: "Rosa"},
		Day:      reports.DayTally{Day: "2025-12-22"},
		Week:     reports.RangeTally{Code: "2025-W51", Start: "2025-12-20", End: "2025-12-22"},
	}, nil)

	rr := httptest.NewRecorder()
	router(m).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/operarias/2/resumen-dia-semana", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"codigo":"2025-W51"`)
	assert.Contains(t, rr.Body.String(), `"inicio":"2025-12-20"`)
	m.AssertExpectations(t)
}
