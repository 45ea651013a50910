package save

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/uniformesbonaparte/operarias-bonaparte/internal/service/catalog"
	"github.com/uniformesbonaparte/operarias-bonaparte/internal/storage"
)

type MockOrderCreator struct {
	mock.Mock
}

func (m *MockOrderCreator) CreateOrder(ctx context.Context, in catalog.OrderInput) (storage.Order, error) {
	args := m.Called(ctx, in)
	o := storage.Order{}
	if args.Get(0) != nil {
		o = args.Get(0).(storage.Order)
	}
	return o, args.Error(1)
}

func TestSaveOrder(t *testing.T) {
	creator := new(MockOrderCreator)
	creator.On("CreateOrder", mock.Anything, mock.MatchedBy(func(in catalog.OrderInput) bool {
		return in.School == "Instituto Patria" && in.Folio == "P-7" &&
			len(in.Items) == 1 && in.Items[0].GarmentID == 3 && in.Items[0].Quantity == 40 &&
			len(in.Items[0].Operations) == 1 && in.Items[0].Operations[0].Price == 2.5
	})).Return(storage.Order{ID: 8, School: "Instituto Patria", Folio: "P-7", Status: storage.OrderActive}, nil)

	body := `{"escuela":"Instituto Patria","folio":"P-7","items":[{"prendaId":3,"cantidad":40,"operaciones":[{"costura":"pegar bies","maquina":"Multiagujas","precio":2.5}]}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/pedidos", strings.NewReader(body))
	rr := httptest.NewRecorder()
	SaveOrder(slog.New(slog.NewTextHandler(io.Discard, nil)), creator).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Contains(t, rr.Body.String(), `"mensaje":"Pedido creado correctamente."`)
	assert.Contains(t, rr.Body.String(), `"estado":"activo"`)
	creator.AssertExpectations(t)
}

func TestSaveOrder_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "missing school", body: `{"folio":"P-7"}`},
		{name: "missing folio", body: `{"escuela":"Instituto Patria"}`},
		{name: "bad garment id", body: `{"escuela":"A","folio":"B","items":[{"prendaId":0,"cantidad":4}]}`},
		{name: "negative price", body: `{"escuela":"A","folio":"B","items":[{"prendaId":1,"cantidad":4,"operaciones":[{"costura":"x","precio":-1}]}]}`},
		{name: "empty body", body: ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			creator := new(MockOrderCreator)
			req := httptest.NewRequest(http.MethodPost, "/api/pedidos", strings.NewReader(tt.body))
			rr := httptest.NewRecorder()
			SaveOrder(slog.New(slog.NewTextHandler(io.Discard, nil)), creator).ServeHTTP(rr, req)

			assert.Equal(t, http.StatusBadRequest, rr.Code)
			creator.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
		})
	}
}
