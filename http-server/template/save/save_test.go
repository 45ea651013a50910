package save

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

type MockCatalogCreator struct {
	mock.Mock
}

func (m *MockCatalogCreator) CreateGarment(ctx context.Context, name string) (storage.Garment, error) {
	args := m.Called(ctx, name)
	g := storage.Garment{}
	if args.Get(0) != nil {
		g = args.Get(0).(storage.Garment)
	}
	return g, args.Error(1)
}

func (m *MockCatalogCreator) CreateSeam(ctx context.Context, name string) (storage.Seam, error) {
	args := m.Called(ctx, name)
	s := storage.Seam{}
	if args.Get(0) != nil {
		s = args.Get(0).(storage.Seam)
	}
	return s, args.Error(1)
}

func (m *MockCatalogCreator) AddMachine(ctx context.Context, name string) ([]string, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockCatalogCreator) AppendTemplate(ctx context.Context, garmentID int64, e storage.TemplateEntry) ([]storage.TemplateEntry, error) {
	args := m.Called(ctx, garmentID, e)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storage.TemplateEntry), args.Error(1)
}

func router(m *MockCatalogCreator) http.Handler {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := chi.NewRouter()
	r.Post("/api/prendas", SaveGarment(log, m))
	r.Post("/api/costuras", SaveSeam(log, m))
	r.Post("/api/maquinas", SaveMachine(log, m))
	r.Post("/api/plantillas-costuras/{prendaId}/agregar", AppendTemplate(log, m))
	return r
}

func post(h http.Handler, target, body string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, target, strings.NewReader(body)))
	return rr
}

func TestSaveGarment(t *testing.T) {
	m := new(MockCatalogCreator)
	m.On("CreateGarment", mock.Anything, "Mandil").Return(storage.Garment{ID: 14, Name: "Mandil"}, nil)
	m.On("CreateGarment", mock.Anything, "Bata").Return(nil, apperr.Validation("garment %q already exists", "Bata"))

	rr := post(router(m), "/api/prendas", `{"nombre":"Mandil"}`)
	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.JSONEq(t, `{"id":14,"nombre":"Mandil"}`, rr.Body.String())

	rr = post(router(m), "/api/prendas", `{"nombre":"Bata"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = post(router(m), "/api/prendas", `{}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	m.AssertNumberOfCalls(t, "CreateGarment", 2)
}

func TestSaveSeam(t *testing.T) {
	m := new(MockCatalogCreator)
	m.On("CreateSeam", mock.Anything, "fijar bolsa").Return(storage.Seam{ID: 31, Name: "fijar bolsa"}, nil)

	rr := post(router(m), "/api/costuras", `{"nombre":"fijar bolsa"}`)
	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.JSONEq(t, `{"ok":true,"costura":{"id":31,"nombre":"fijar bolsa"}}`, rr.Body.String())
}

func TestSaveMachine(t *testing.T) {
	m := new(MockCatalogCreator)
	m.On("AddMachine", mock.Anything, "Botonera").Return([]string{"Recta", "Over", "Botonera"}, nil)

	rr := post(router(m), "/api/maquinas", `{"nombre":"Botonera"}`)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"maquinas":["Recta","Over","Botonera"]`)
}

func TestAppendTemplate(t *testing.T) {
	m := new(MockCatalogCreator)
	entry := storage.TemplateEntry{Seam: "resorte", Machine: "Multiagujas"}
	m.On("AppendTemplate", mock.Anything, int64(3), entry).Return([]storage.TemplateEntry{entry}, nil)

	rr := post(router(m), "/api/plantillas-costuras/3/agregar", `{"costura":"resorte","maquina":"Multiagujas"}`)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"ok":true,"plantilla":[{"costura":"resorte","maquina":"Multiagujas"}]}`, rr.Body.String())

	rr = post(router(m), "/api/plantillas-costuras/3/agregar", `{"costura":"resorte"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), `"maquina":"is required"`)
	m.AssertNumberOfCalls(t, "AppendTemplate", 1)
}
