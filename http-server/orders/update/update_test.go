package update

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/uniformesbonaparte/operarias-bonaparte/internal/apperr"
	"github.com/uniformesbonaparte/operarias-bonaparte/internal/service/catalog"
	"github.com/uniformesbonaparte/operarias-bonaparte/internal/storage"
)

type MockOrderEditor struct {
	mock.Mock
}

func (m *MockOrderEditor) UpdateOrder(ctx context.Context, id int64, p catalog.OrderPatch) (storage.Order, error) {
	args := m.Called(ctx, id, p)
	o := storage.Order{}
	if args.Get(0) != nil {
		o = args.Get(0).(storage.Order)
	}
	return o, args.Error(1)
}

func (m *MockOrderEditor) SetOrderStatus(ctx context.Context, id int64, status string) (storage.Order, error) {
	args := m.Called(ctx, id, status)
	o := storage.Order{}
	if args.Get(0) != nil {
		o = args.Get(0).(storage.Order)
	}
	return o, args.Error(1)
}

func (m *MockOrderEditor) DeleteOrder(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func router(editor OrderEditor) http.Handler {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := chi.NewRouter()
	r.Put("/api/pedidos/{id}", UpdateOrder(log, editor))
	r.Put("/api/pedidos/{id}/estado", SetStatus(log, editor))
	r.Delete("/api/pedidos/{id}", DeleteOrder(log, editor))
	return r
}

func TestUpdateOrder(t *testing.T) {
	editor := new(MockOrderEditor)
	editor.On("UpdateOrder", mock.Anything, int64(6), mock.MatchedBy(func(p catalog.OrderPatch) bool {
		return p.Folio != nil && *p.Folio == "F-99" && p.School == nil && p.Items == nil
	})).Return(storage.Order{ID: 6, Folio: "F-99"}, nil)

	req := httptest.NewRequest(http.MethodPut, "/api/pedidos/6", strings.NewReader(`{"folio":"F-99"}`))
	rr := httptest.NewRecorder()
	router(editor).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"folio":"F-99"`)
	editor.AssertExpectations(t)
}

func TestSetStatus(t *testing.T) {
	done := time.Date(2025, 12, 19, 18, 0, 0, 0, time.UTC)
	editor := new(MockOrderEditor)
	editor.On("SetOrderStatus", mock.Anything, int64(6), "terminado").
		Return(storage.Order{ID: 6, Status: storage.OrderCompleted, CompletedAt: &done}, nil)

	req := httptest.NewRequest(http.MethodPut, "/api/pedidos/6/estado", strings.NewReader(`{"estado":"terminado"}`))
	rr := httptest.NewRecorder()
	router(editor).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"mensaje":"Pedido marcado como terminado."`)
	assert.Contains(t, rr.Body.String(), `"fechaTerminado":"2025-12-19T18:00:00Z"`)

	rr = httptest.NewRecorder()
	router(editor).ServeHTTP(rr, httptest.NewRequest(http.MethodPut, "/api/pedidos/6/estado", strings.NewReader(`{"estado":"cerrado"}`)))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	editor.AssertNumberOfCalls(t, "SetOrderStatus", 1)
}

func TestDeleteOrder(t *testing.T) {
	editor := new(MockOrderEditor)
	editor.On("DeleteOrder", mock.Anything, int64(2)).Return(nil)
	editor.On("DeleteOrder", mock.Anything, int64(3)).Return(apperr.ReferentialConflict("order", 3, 4))

	rr := httptest.NewRecorder()
	router(editor).ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/api/pedidos/2", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.NotContains(t, rr.Body.String(), `"pedido"`)

	rr = httptest.NewRecorder()
	router(editor).ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/api/pedidos/3", nil))
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Contains(t, rr.Body.String(), `"kind":"REFERENTIAL_CONFLICT"`)
}
