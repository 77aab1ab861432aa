// Package httpapi exposes the record service over the REST contract used by
// the registration client.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrijs2005/vehiclereg/internal/logging"
	"github.com/dmitrijs2005/vehiclereg/internal/server/services"
)

// Options tune the router built by NewServer.
type Options struct {
	// SecretKey enables bearer-token auth on /records when non-empty.
	SecretKey string
	// MetricsPath serves the registry's metrics when non-empty.
	MetricsPath string
	// Registry receives the HTTP metrics. A nil Registry disables them.
	Registry *prometheus.Registry
	// ShutdownTimeout bounds the graceful stop in Run.
	ShutdownTimeout time.Duration
}

type Server struct {
	address string
	records *services.RecordService
	logger  logging.Logger
	opts    Options
	handler http.Handler
}

func NewServer(address string, l logging.Logger, records *services.RecordService, opts Options) *Server {
	if l == nil {
		l = logging.Nop()
	}
	s := &Server{
		address: address,
		records: records,
		logger:  l.With("module", "http_server"),
		opts:    opts,
	}
	s.handler = s.routes()
	return s
}

// Handler returns the fully wired router.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(requestLogger(s.logger))
	if s.opts.Registry != nil {
		r.Use(newHTTPMetrics(s.opts.Registry).middleware)
	}

	r.Get("/healthz", s.health)
	if s.opts.MetricsPath != "" && s.opts.Registry != nil {
		r.Method(http.MethodGet, s.opts.MetricsPath, promhttp.HandlerFor(s.opts.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/records", func(r chi.Router) {
		if s.opts.SecretKey != "" {
			r.Use(bearerAuth([]byte(s.opts.SecretKey)))
		}
		r.Get("/", s.listRecords)
		r.Post("/", s.createRecord)
		r.Get("/incomplete", s.listIncomplete)
		r.Get("/check-duplicate/{number}", s.checkDuplicate)
		r.Get("/{id}", s.getRecord)
		r.Put("/{id}", s.updateRecord)
		r.Delete("/{id}", s.deleteRecord)
		r.Patch("/{id}/status", s.patchStatus)
	})

	return r
}

// Run serves until ctx is cancelled, then stops gracefully.
func (s *Server) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	stopped := make(chan error, 1)
	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		timeout := s.opts.ShutdownTimeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		defer cancel()
		stopped <- srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return <-stopped
}
