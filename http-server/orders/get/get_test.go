package get

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/uniformesbonaparte/operarias-bonaparte/internal/apperr"
	"github.com/uniformesbonaparte/operarias-bonaparte/internal/service/catalog"
	"github.com/uniformesbonaparte/operarias-bonaparte/internal/service/progress"
	"github.com/uniformesbonaparte/operarias-bonaparte/internal/service/reports"
	"github.com/uniformesbonaparte/operarias-bonaparte/internal/storage"
)

type MockOrders struct {
	mock.Mock
}

func (m *MockOrders) Orders(ctx context.Context, q reports.OrderListing) []reports.OrderView {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]reports.OrderView)
}

func (m *MockOrders) Order(ctx context.Context, id int64) (catalog.OrderDetail, error) {
	args := m.Called(ctx, id)
	d := catalog.OrderDetail{}
	if args.Get(0) != nil {
		d = args.Get(0).(catalog.OrderDetail)
	}
	return d, args.Error(1)
}

func (m *MockOrders) Progress(ctx context.Context, orderID int64) (progress.OrderProgress, error) {
	args := m.Called(ctx, orderID)
	p := progress.OrderProgress{}
	if args.Get(0) != nil {
		p = args.Get(0).(progress.OrderProgress)
	}
	return p, args.Error(1)
}

func (m *MockOrders) AvailableOperations(ctx context.Context, orderID, garmentID int64, size string) ([]progress.AvailableOperation, error) {
	args := m.Called(ctx, orderID, garmentID, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]progress.AvailableOperation), args.Error(1)
}

func router(m *MockOrders) http.Handler {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := chi.NewRouter()
	r.Get("/api/pedidos", GetOrders(log, m))
	r.Get("/api/pedidos/{id}", GetOrder(log, m))
	r.Get("/api/pedidos/{id}/avance", GetProgress(log, m))
	r.Get("/api/pedidos/{id}/operaciones", GetOperations(log, m))
	return r
}

func TestGetOrders(t *testing.T) {
	m := new(MockOrders)
	m.On("Orders", mock.Anything, reports.OrderListing{Status: "activo", WithTotals: true, WithGarments: true}).
		Return([]reports.OrderView{{ID: 1, School: "Colegio Miraflores", Folio: "F-10", Status: storage.OrderActive}})

	rr := httptest.NewRecorder()
	router(m).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/pedidos?estado=activo&conTotales=true&conPrendas=1", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var got []map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "Colegio Miraflores", got[0]["escuela"])
	m.AssertExpectations(t)
}

func TestGetOrders_InvalidStatus(t *testing.T) {
	m := new(MockOrders)

	rr := httptest.NewRecorder()
	router(m).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/pedidos?estado=cancelado", nil))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	m.AssertNotCalled(t, "Orders", mock.Anything, mock.Anything)
}

func TestGetOrder(t *testing.T) {
	m := new(MockOrders)
	m.On("Order", mock.Anything, int64(4)).Return(catalog.OrderDetail{Order: storage.Order{ID: 4, Folio: "A-4"}}, nil)
	m.On("Order", mock.Anything, int64(9)).Return(nil, apperr.NotFound("order", 9))

	rr := httptest.NewRecorder()
	router(m).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/pedidos/4", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"folio":"A-4"`)

	rr = httptest.NewRecorder()
	router(m).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/pedidos/9", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = httptest.NewRecorder()
	router(m).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/pedidos/abc", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGetProgress(t *testing.T) {
	m := new(MockOrders)
	m.On("Progress", mock.Anything, int64(2)).Return(progress.OrderProgress{
		OrderID: 2,
		Items:   []progress.ItemProgress{},
		Message: "Pedido sin items detallados.",
	}, nil)

	rr := httptest.NewRecorder()
	router(m).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/pedidos/2/avance", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"avance":[]`)
	assert.Contains(t, rr.Body.String(), `"pedidoId":2`)
}

func TestGetOperations(t *testing.T) {
	m := new(MockOrders)
	m.On("AvailableOperations", mock.Anything, int64(2), int64(5), "M").
		Return([]progress.AvailableOperation{{GarmentID: 5, OperationID: 11, Seam: "pegar bies", Remaining: 8}}, nil)
	m.On("AvailableOperations", mock.Anything, int64(3), int64(0), "").Return(nil, nil)

	rr := httptest.NewRecorder()
	router(m).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/pedidos/2/operaciones?prendaId=5&talla=M", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"cantidadFaltante":8`)

	rr = httptest.NewRecorder()
	router(m).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/pedidos/3/operaciones", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())

	rr = httptest.NewRecorder()
	router(m).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/pedidos/3/operaciones?prendaId=x", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	m.AssertExpectations(t)
}
