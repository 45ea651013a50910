package main

import (
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	getstats "github.com/uniformesbonaparte/operarias-bonaparte/http-server/admin/get"
	saveadmin "github.com/uniformesbonaparte/operarias-bonaparte/http-server/admin/save"
	upadmin "github.com/uniformesbonaparte/operarias-bonaparte/http-server/admin/update"
	generate_excel "github.com/uniformesbonaparte/operarias-bonaparte/http-server/generate-report/generate-excel"
	"github.com/uniformesbonaparte/operarias-bonaparte/http-server/login"
	getorders "github.com/uniformesbonaparte/operarias-bonaparte/http-server/orders/get"
	saveorders "github.com/uniformesbonaparte/operarias-bonaparte/http-server/orders/save"
	uporders "github.com/uniformesbonaparte/operarias-bonaparte/http-server/orders/update"
	getrecords "github.com/uniformesbonaparte/operarias-bonaparte/http-server/records/get"
	"github.com/uniformesbonaparte/operarias-bonaparte/http-server/records/pay"
	saverecords "github.com/uniformesbonaparte/operarias-bonaparte/http-server/records/save"
	uprecords "github.com/uniformesbonaparte/operarias-bonaparte/http-server/records/update"
	getreport "github.com/uniformesbonaparte/operarias-bonaparte/http-server/report/get"
	gettemplate "github.com/uniformesbonaparte/operarias-bonaparte/http-server/template/get"
	savetemplate "github.com/uniformesbonaparte/operarias-bonaparte/http-server/template/save"
	uptemplate "github.com/uniformesbonaparte/operarias-bonaparte/http-server/template/update"
	getworkers "github.com/uniformesbonaparte/operarias-bonaparte/http-server/workers/get"
	saveworkers "github.com/uniformesbonaparte/operarias-bonaparte/http-server/workers/save"
	upworkers "github.com/uniformesbonaparte/operarias-bonaparte/http-server/workers/update"
	"github.com/uniformesbonaparte/operarias-bonaparte/internal/config"
	"github.com/uniformesbonaparte/operarias-bonaparte/internal/middleware/auth"
	"github.com/uniformesbonaparte/operarias-bonaparte/internal/storage"
)

// pages maps the clean front-end paths to their html files.
var pages = map[string]string{
	"/":                  "login.html",
	"/login":             "login.html",
	"/dashboard":         "dashboard_mobile.html",
	"/dashboard.html":    "dashboard_mobile.html",
	"/produccion":        "produccion.html",
	"/registrar_costura": "registrar_costura.html",
	"/operarias":         "operarias.html",
	"/pedidos":           "pedidos.html",
	"/reporte_semanal":   "reporte_semanal.html",
	"/configuracion":     "configuracion.html",
}

func routes(cfg *config.Config, log *slog.Logger, svc services) *chi.Mux {
	router := chi.NewRouter()

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", saveadmin.MigrationHeader},
		AllowCredentials: true,
	})

	router.Use(corsHandler.Handler)

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	router.Handle("/metrics", promhttp.Handler())

	router.Route("/api", func(r chi.Router) {
		r.Post("/login", login.Login(log, svc.catalog))
		r.Post("/login/admin", login.StaffLogin(log, storage.StaffAdmin, svc.catalog))
		r.Post("/login/encargada", login.StaffLogin(log, storage.StaffSupervisor, svc.catalog))
		r.Post("/login/operaria", login.OperatorLogin(log, svc.catalog))

		r.Route("/operarias", func(r chi.Router) {
			r.Get("/", getworkers.GetWorkers(log, svc.catalog))
			r.Post("/", saveworkers.SaveWorker(log, svc.catalog))
			r.Put("/{id}", upworkers.UpdateWorker(log, svc.catalog))
			r.Delete("/{id}", upworkers.DeleteWorker(log, svc.catalog))
			r.Get("/{id}/perfil", getworkers.GetProfile(log, svc.reports))
			r.Get("/{id}/resumen-dia-semana", getworkers.GetToday(log, svc.reports))
		})

		r.Get("/maquinas", gettemplate.GetMachines(log, svc.catalog))
		r.Post("/maquinas", savetemplate.SaveMachine(log, svc.catalog))
		r.Delete("/maquinas/{nombre}", uptemplate.DeleteMachine(log, svc.catalog))

		r.Route("/pedidos", func(r chi.Router) {
			r.Get("/", getorders.GetOrders(log, svc.reports))
			r.Post("/", saveorders.SaveOrder(log, svc.catalog))
			r.Get("/{id}", getorders.GetOrder(log, svc.catalog))
			r.Put("/{id}", uporders.UpdateOrder(log, svc.catalog))
			r.Delete("/{id}", uporders.DeleteOrder(log, svc.catalog))
			r.Put("/{id}/estado", uporders.SetStatus(log, svc.catalog))
			r.Get("/{id}/avance", getorders.GetProgress(log, svc.progress))
			r.Get("/{id}/operaciones", getorders.GetOperations(log, svc.progress))
		})

		r.Route("/registros", func(r chi.Router) {
			r.Get("/", getrecords.GetRecords(log, svc.ledger))
			r.Post("/", saverecords.SaveRecord(log, svc.ledger))
			r.Post("/marcar-semana-pagada", pay.MarkWeekByDay(log, svc.settlement))
			r.Put("/{id}", uprecords.UpdateRecord(log, svc.ledger))
			r.Delete("/{id}", uprecords.DeleteRecord(log, svc.ledger))
		})

		r.Get("/reporte-semanal", getreport.GetWeeklyReport(log, svc.settlement))
		r.Get("/reporte-semanal/detalle", getreport.GetWeekDetail(log, svc.settlement))
		r.Get("/reporte-semanal/excel", generate_excel.GenerateReportExcel(log, svc.excel))
		r.Get("/semanas", getreport.GetWeeks(log, svc.settlement))
		r.Post("/pagos/marcar-semana", pay.MarkWeek(log, svc.settlement))

		r.Get("/estadisticas/general", getstats.GetGeneralStats(log, svc.reports))
		r.Get("/estadisticas/comparacion-fuentes", getstats.GetSourceComparison(log, svc.reports))

		r.Get("/prendas", gettemplate.GetGarments(log, svc.catalog))
		r.Post("/prendas", savetemplate.SaveGarment(log, svc.catalog))
		r.Delete("/prendas/{id}", uptemplate.DeleteGarment(log, svc.catalog))

		r.Get("/costuras", gettemplate.GetSeams(log, svc.catalog))
		r.Post("/costuras", savetemplate.SaveSeam(log, svc.catalog))
		r.Put("/costuras/{id}", uptemplate.RenameSeam(log, svc.catalog))
		r.Delete("/costuras/{id}", uptemplate.DeleteSeam(log, svc.catalog))

		r.Route("/plantillas-costuras", func(r chi.Router) {
			r.Get("/", gettemplate.GetTemplates(log, svc.catalog))
			r.Get("/{prendaId}", gettemplate.GetTemplate(log, svc.catalog))
			r.Put("/{prendaId}", uptemplate.ReplaceTemplate(log, svc.catalog))
			r.Post("/{prendaId}/agregar", savetemplate.AppendTemplate(log, svc.catalog))
		})

		r.Post("/migrar", saveadmin.Migrate(log, cfg.MigrationKey, svc.archive))

		r.Group(func(r chi.Router) {
			r.Use(auth.BasicAuth(svc.catalog, storage.StaffAdmin))

			r.Post("/configuracion/cambiar-password", upadmin.ChangePassword(log, svc.catalog))
			r.Post("/configuracion/backup", saveadmin.SaveBackup(log, svc.archive))
			r.Put("/usuarios/{tipo}", upadmin.UpdateStaff(log, svc.catalog))
		})
	})

	frontend(router, log, cfg.FrontendDir)

	return router
}

// frontend serves the static pages. A missing directory only disables them.
func frontend(router chi.Router, log *slog.Logger, dir string) {
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		log.Warn("frontend directory not found, serving API only", slog.String("path", dir))
		return
	}

	fileServer := http.FileServer(http.Dir(dir))

	router.Get("/*", func(w http.ResponseWriter, r *http.Request) {
		if name, ok := pages[r.URL.Path]; ok {
			servePage(w, r, filepath.Join(dir, name))
			return
		}
		if !strings.Contains(filepath.Base(r.URL.Path), ".") {
			servePage(w, r, filepath.Join(dir, filepath.FromSlash(path.Clean(r.URL.Path))+".html"))
			return
		}
		fileServer.ServeHTTP(w, r)
	})
}

func servePage(w http.ResponseWriter, r *http.Request, file string) {
	if info, err := os.Stat(file); err != nil || info.IsDir() {
		http.Error(w, "Página no encontrada", http.StatusNotFound)
		return
	}
	http.ServeFile(w, r, file)
}
