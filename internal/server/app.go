// Package server wires the registry backend: configuration, record storage,
// the REST API and graceful shutdown on SIGINT/SIGTERM.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/dmitrijs2005/vehiclereg/internal/logging"
	"github.com/dmitrijs2005/vehiclereg/internal/server/config"
	"github.com/dmitrijs2005/vehiclereg/internal/server/httpapi"
	"github.com/dmitrijs2005/vehiclereg/internal/server/repositories/records"
	"github.com/dmitrijs2005/vehiclereg/internal/server/services"
)

type App struct {
	config        *config.Config
	logger        logging.Logger
	db            *sql.DB
	recordService *services.RecordService
	registry      *prometheus.Registry
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	app := &App{config: c, logger: logger, registry: prometheus.NewRegistry()}
	app.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	var repo records.Repository
	if c.DatabaseDSN == "" {
		logger.Warn(ctx, "no database DSN configured, records are kept in memory")
		repo = records.NewMemoryRepository()
	} else {
		db, err := records.OpenPostgres(ctx, c.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("db init error: %w", err)
		}
		app.db = db
		repo = records.NewPostgresRepository(db)
	}

	app.recordService = services.NewRecordService(repo, logger.With("module", "records"))

	return app, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {

	if app.config.SecretKey == "" {
		app.logger.Warn(ctx, "no secret key configured, API authentication is disabled")
	}

	s := httpapi.NewServer(app.config.EndpointAddr, app.logger, app.recordService, httpapi.Options{
		SecretKey:       app.config.SecretKey,
		MetricsPath:     app.config.MetricsPath,
		Registry:        app.registry,
		ShutdownTimeout: app.config.ShutdownTimeout,
	})

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error(ctx, "db close error", "error", err)
		}
	}

	app.logger.Info(ctx, "App stopped")
}
