package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/uniformesbonaparte/operarias-bonaparte/internal/calendar"
	"github.com/uniformesbonaparte/operarias-bonaparte/internal/config"
	"github.com/uniformesbonaparte/operarias-bonaparte/internal/metrics"
	"github.com/uniformesbonaparte/operarias-bonaparte/internal/persist"
	"github.com/uniformesbonaparte/operarias-bonaparte/internal/service/catalog"
	generate_excel "github.com/uniformesbonaparte/operarias-bonaparte/internal/service/generate-excel"
	"github.com/uniformesbonaparte/operarias-bonaparte/internal/service/ledger"
	"github.com/uniformesbonaparte/operarias-bonaparte/internal/service/progress"
	"github.com/uniformesbonaparte/operarias-bonaparte/internal/service/reports"
	"github.com/uniformesbonaparte/operarias-bonaparte/internal/service/settlement"
	"github.com/uniformesbonaparte/operarias-bonaparte/internal/storage"
	"github.com/uniformesbonaparte/operarias-bonaparte/internal/storage/jsonfile"
	"github.com/uniformesbonaparte/operarias-bonaparte/internal/storage/memory"
	"github.com/uniformesbonaparte/operarias-bonaparte/internal/storage/mysql"
	"github.com/uniformesbonaparte/operarias-bonaparte/internal/storage/redis"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

const shutdownTimeout = 10 * time.Second

type services struct {
	catalog    *catalog.Service
	ledger     *ledger.Service
	settlement *settlement.Service
	progress   *progress.Service
	reports    *reports.Service
	excel      *generate_excel.GenerateExcelService
	archive    *persist.Archive
}

func main() {
	cfg := config.MustConfig()

	log := setupLogger(cfg.Env)

	loc, err := cfg.Location()
	if err != nil {
		log.Error("failed to load timezone", slog.String("timezone", cfg.Timezone), slog.Any("error", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	file := jsonfile.New(cfg.Storage.DataFile)
	backend, snap, closeBackend := openBackend(ctx, log, cfg, file)
	defer closeBackend()

	store := memory.New(snap)

	reg := prometheus.DefaultRegisterer
	sched := persist.New(log, store, backend, metrics.NewFlushMetrics(reg), persist.Options{
		Debounce:   cfg.Flush.Debounce,
		Interval:   cfg.Flush.Interval,
		RetryDelay: cfg.Flush.RetryDelay,
	})
	store.OnChange(sched.MarkDirty)

	cal := calendar.NewResolver(loc)
	ledgerSvc := ledger.New(log, store, cal, metrics.NewLedgerMetrics(reg))
	settlementSvc := settlement.New(ledgerSvc, store)
	svc := services{
		catalog:    catalog.New(log, store),
		ledger:     ledgerSvc,
		settlement: settlementSvc,
		progress:   progress.New(store),
		reports:    reports.New(ledgerSvc, settlementSvc, store),
		excel:      generate_excel.NewGenerateService(settlementSvc),
		archive:    persist.NewArchive(sched, cfg.Storage.BackupDir, file, store),
	}

	if err := svc.catalog.Seed(ctx, catalog.SeedOptions{
		AdminPassword:      cfg.Seed.AdminPassword,
		SupervisorPassword: cfg.Seed.SupervisorPassword,
	}); err != nil {
		log.Error("failed to seed catalog", slog.Any("error", err))
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:         cfg.Address,
		Handler:      routes(cfg, log, svc),
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	// stopped only after the server has drained
	schedCtx, stopSched := context.WithCancel(context.Background())
	defer stopSched()

	g.Go(func() error {
		return sched.Run(schedCtx)
	})

	g.Go(func() error {
		log.Info("server started",
			slog.String("address", cfg.Address),
			slog.String("backend", backend.Name()),
			slog.String("timezone", loc.String()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		defer stopSched()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server stopped with error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server stopped")
}

// openBackend connects the configured backend and reads the saved state.
// When the remote backend cannot be reached the JSON file takes over, and
// an empty remote starts from whatever the file holds.
func openBackend(ctx context.Context, log *slog.Logger, cfg *config.Config, file *jsonfile.Storage) (persist.Backend, *storage.Snapshot, func()) {
	noop := func() {}

	var (
		remote storage.Backend
		closer = noop
	)

	switch cfg.Storage.Backend {
	case "mysql":
		s, err := mysql.New(ctx, cfg.Storage.MySQL)
		if err != nil {
			log.Error("failed to open mysql, using data file", slog.Any("error", err))
			break
		}
		if err := s.Migrate(ctx); err != nil {
			log.Error("failed to migrate mysql, using data file", slog.Any("error", err))
			_ = s.Close()
			break
		}
		remote = s
		closer = func() { _ = s.Close() }
	case "redis":
		s, err := redis.New(ctx, cfg.Storage.Redis)
		if err != nil {
			log.Error("failed to open redis, using data file", slog.Any("error", err))
			break
		}
		remote = s
	case "file", "":
	default:
		log.Warn("unknown storage backend, using data file", slog.String("backend", cfg.Storage.Backend))
	}

	if remote != nil {
		snap, err := remote.Load(ctx)
		switch {
		case err != nil:
			log.Error("failed to load remote state, using data file",
				slog.String("backend", remote.Name()), slog.Any("error", err))
			closer()
			closer = noop
		case snap != nil:
			log.Info("state loaded", slog.String("backend", remote.Name()))
			return remote, snap, closer
		default:
			log.Info("remote backend is empty, starting from data file", slog.String("backend", remote.Name()))
			return remote, loadFile(ctx, log, file), closer
		}
	}

	return file, loadFile(ctx, log, file), closer
}

func loadFile(ctx context.Context, log *slog.Logger, file *jsonfile.Storage) *storage.Snapshot {
	snap, err := file.Load(ctx)
	if err != nil {
		log.Error("failed to read data file, starting empty", slog.String("path", file.Path()), slog.Any("error", err))
		return nil
	}
	if snap != nil {
		log.Info("state loaded", slog.String("path", file.Path()))
	}
	return snap
}

// dualHandler writes every record to stdout and copies errors to errors.log.
type dualHandler struct {
	coreHandler  slog.Handler
	errorHandler slog.Handler
}

func (h *dualHandler) Enabled(ctx context.Context, lvl slog.Level) bool {
	return h.coreHandler.Enabled(ctx, lvl) || h.errorHandler.Enabled(ctx, lvl)
}

func (h *dualHandler) Handle(ctx context.Context, r slog.Record) error {
	var err error

	if h.coreHandler.Enabled(ctx, r.Level) {
		err = h.coreHandler.Handle(ctx, r)
		if err != nil {
			return err
		}
	}

	if r.Level >= slog.LevelError && h.errorHandler.Enabled(ctx, r.Level) {
		_ = h.errorHandler.Handle(ctx, r.Clone())
	}

	return err
}

func (h *dualHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &dualHandler{
		coreHandler:  h.coreHandler.WithAttrs(attrs),
		errorHandler: h.errorHandler.WithAttrs(attrs),
	}
}

func (h *dualHandler) WithGroup(name string) slog.Handler {
	return &dualHandler{
		coreHandler:  h.coreHandler.WithGroup(name),
		errorHandler: h.errorHandler.WithGroup(name),
	}
}

func setupLogger(env string) *slog.Logger {
	level := slog.LevelDebug
	if env == envProd {
		level = slog.LevelInfo
	}

	var coreHandler slog.Handler
	switch env {
	case envDev:
		coreHandler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	case envLocal, envProd:
		coreHandler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	default:
		coreHandler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	}

	errorFile, err := os.OpenFile("errors.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
	if err != nil {
		slog.Warn("cannot open error log file", slog.Any("error", err))
		return slog.New(coreHandler)
	}

	errorHandler := slog.NewTextHandler(errorFile, &slog.HandlerOptions{
		Level: slog.LevelError,
	})

	return slog.New(&dualHandler{
		coreHandler:  coreHandler,
		errorHandler: errorHandler,
	})
}
