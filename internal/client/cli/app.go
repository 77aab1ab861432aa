package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/term"

	"github.com/dmitrijs2005/vehiclereg/internal/client/client"
	"github.com/dmitrijs2005/vehiclereg/internal/client/config"
	"github.com/dmitrijs2005/vehiclereg/internal/client/metrics"
	"github.com/dmitrijs2005/vehiclereg/internal/client/services"
	"github.com/dmitrijs2005/vehiclereg/internal/client/storage"
	"github.com/dmitrijs2005/vehiclereg/internal/logging"
	"github.com/dmitrijs2005/vehiclereg/internal/vehicle"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

const onlineCheckInterval = 15 * time.Second

// isTerminal is a test seam for term.IsTerminal.
var isTerminal = term.IsTerminal

// submitter is the part of services.Coordinator the CLI drives.
type submitter interface {
	Submit(ctx context.Context, sub *services.Submission, progress func(services.ProgressEvent)) (vehicle.Record, error)
	Discard(ctx context.Context, id string) error
}

type App struct {
	config      *config.Config
	logger      logging.Logger
	records     services.RecordService
	coordinator submitter
	registry    *prometheus.Registry
	reader      *bufio.Reader
	out         io.Writer
	interactive bool

	mu   sync.Mutex
	mode Mode

	// last is the most recent submission that did not complete.
	last *services.Submission
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.NewTextLogger(os.Stderr, c.LogLevel)

	api := client.NewHTTPClient(c.ServerEndpointAddr,
		client.WithToken(c.APIToken),
		client.WithTimeout(c.RequestTimeout),
		client.WithLogger(logger.With("module", "api")),
	)

	uploader, err := newStorage(ctx, c)
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	orchestrator := services.NewUploadOrchestrator(uploader,
		services.WithUploadLogger(logger.With("module", "uploads")),
		services.WithUploadMetrics(m),
	)
	coordinator := services.NewCoordinator(api, services.NewDuplicateChecker(api), orchestrator,
		services.WithLogger(logger.With("module", "submissions")),
		services.WithMetrics(m),
	)

	return &App{
		config:      c,
		logger:      logger,
		records:     services.NewRecordService(api),
		coordinator: coordinator,
		registry:    reg,
		reader:      bufio.NewReader(os.Stdin),
		out:         os.Stdout,
		interactive: isTerminal(int(os.Stdout.Fd())),
	}, nil
}

func newStorage(ctx context.Context, c *config.Config) (storage.Uploader, error) {
	switch c.StorageBackend {
	case config.StoragePreset:
		if c.UploadURL == "" {
			return nil, errors.New("preset storage requires an upload URL")
		}
		return storage.NewPresetUploader(c.UploadURL, c.UploadPreset, nil), nil
	case config.StorageS3:
		return storage.NewS3Uploader(ctx, storage.S3Config{
			Endpoint:      c.S3Endpoint,
			Region:        c.S3Region,
			Bucket:        c.S3Bucket,
			AccessKey:     c.S3AccessKey,
			SecretKey:     c.S3SecretKey,
			PublicBaseURL: c.S3PublicBaseURL,
		})
	default:
		return nil, fmt.Errorf("unknown storage backend %q", c.StorageBackend)
	}
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()

	if changed {
		a.logger.Info(context.Background(), "registry connectivity changed", "mode", mode)
	}
}

func (a *App) currentMode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
}

func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if a.config.MetricsAddr != "" {
		go a.serveMetrics(ctx)
	}
	a.Root(ctx)
}

// serveMetrics exposes the client's upload and submission metrics until ctx ends.
func (a *App) serveMetrics(ctx context.Context) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: a.config.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		a.logger.Error(ctx, "metrics listener stopped", "error", err)
	}
}

func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {

	check := func() {
		pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := a.records.Ping(pctx); err != nil {
			a.setMode(ModeOffline)
		} else {
			a.setMode(ModeOnline)
		}
	}
	check()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			check()
		case <-ctx.Done():
			return
		}
	}
}
