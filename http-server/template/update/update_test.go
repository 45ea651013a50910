package update

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/uniformesbonaparte/operarias-bonaparte/internal/apperr"
	"github.com/uniformesbonaparte/operarias-bonaparte/internal/storage"
)

type MockCatalogEditor struct {
	mock.Mock
}

func (m *MockCatalogEditor) ReplaceTemplate(ctx context.Context, garmentID int64, entries []storage.TemplateEntry) ([]storage.TemplateEntry, error) {
	args := m.Called(ctx, garmentID, entries)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storage.TemplateEntry), args.Error(1)
}

func (m *MockCatalogEditor) RenameSeam(ctx context.Context, id int64, name string) (storage.Seam, error) {
	args := m.Called(ctx, id, name)
	s := storage.Seam{}
	if args.Get(0) != nil {
		s = args.Get(0).(storage.Seam)
	}
	return s, args.Error(1)
}

func (m *MockCatalogEditor) DeleteGarment(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockCatalogEditor) DeleteSeam(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockCatalogEditor) DeleteMachine(ctx context.Context, name string) ([]string, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func router(m *MockCatalogEditor) http.Handler {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := chi.NewRouter()
	r.Put("/api/plantillas-costuras/{prendaId}", ReplaceTemplate(log, m))
	r.Put("/api/costuras/{id}", RenameSeam(log, m))
	r.Delete("/api/prendas/{id}", DeleteGarment(log, m))
	r.Delete("/api/costuras/{id}", DeleteSeam(log, m))
	r.Delete("/api/maquinas/{nombre}", DeleteMachine(log, m))
	return r
}

func serve(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(method, target, strings.NewReader(body)))
	return rr
}

func TestReplaceTemplate(t *testing.T) {
	m := new(MockCatalogEditor)
	sent := []storage.TemplateEntry{{Seam: "bastilla", Machine: "Collareta"}, {Seam: "", Machine: "Recta"}}
	m.On("ReplaceTemplate", mock.Anything, int64(3), sent).
		Return([]storage.TemplateEntry{{Seam: "bastilla", Machine: "Collareta"}}, nil)
	m.On("ReplaceTemplate", mock.Anything, int64(3), []storage.TemplateEntry(nil)).
		Return(nil, apperr.Validation("operaciones must be an array"))

	rr := serve(router(m), http.MethodPut, "/api/plantillas-costuras/3",
		`{"operaciones":[{"costura":"bastilla","maquina":"Collareta"},{"costura":"","maquina":"Recta"}]}`)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"ok":true,"plantilla":[{"costura":"bastilla","maquina":"Collareta"}]}`, rr.Body.String())

	rr = serve(router(m), http.MethodPut, "/api/plantillas-costuras/3", `{}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	m.AssertExpectations(t)
}

func TestRenameSeam(t *testing.T) {
	m := new(MockCatalogEditor)
	m.On("RenameSeam", mock.Anything, int64(7), "pegar cuello").Return(storage.Seam{ID: 7, Name: "pegar cuello"}, nil)
	m.On("RenameSeam", mock.Anything, int64(70), "x").Return(nil, apperr.NotFound("seam", 70))

	rr := serve(router(m), http.MethodPut, "/api/costuras/7", `{"nombre":"pegar cuello"}`)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"ok":true,"costura":{"id":7,"nombre":"pegar cuello"}}`, rr.Body.String())

	rr = serve(router(m), http.MethodPut, "/api/costuras/70", `{"nombre":"x"}`)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestDeletes(t *testing.T) {
	m := new(MockCatalogEditor)
	m.On("DeleteGarment", mock.Anything, int64(2)).Return(nil)
	m.On("DeleteSeam", mock.Anything, int64(5)).Return(apperr.NotFound("seam", 5))
	m.On("DeleteMachine", mock.Anything, "Recta doble aguja").Return([]string{"Recta", "Over"}, nil)

	rr := serve(router(m), http.MethodDelete, "/api/prendas/2", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"mensaje":"Prenda eliminada"`)

	rr = serve(router(m), http.MethodDelete, "/api/costuras/5", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = serve(router(m), http.MethodDelete, "/api/maquinas/Recta%20doble%20aguja", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"maquinas":["Recta","Over"]`)
	m.AssertExpectations(t)
}
