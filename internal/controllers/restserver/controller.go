package restserver

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/chrissnell/eddyflux/internal/log"
	"github.com/chrissnell/eddyflux/internal/storage"
	"github.com/chrissnell/eddyflux/pkg/config"
	"github.com/chrissnell/eddyflux/pkg/flux"
	"github.com/chrissnell/eddyflux/pkg/responseformat"
)

const (
	defaultListenAddr = "0.0.0.0"
	defaultHTTPPort   = 8080

	// maxBodyBytes bounds request bodies; 30 minutes of four channels at
	// 20 Hz in JSON fits comfortably.
	maxBodyBytes = 64 << 20
)

// Controller represents the REST server controller
type Controller struct {
	ctx        context.Context
	wg         *sync.WaitGroup
	restConfig config.RESTServerData
	Server     http.Server

	store       storage.ResultStore
	sites       []string
	calculators map[string]*flux.Calculator
	formatter   *responseformat.Formatter
	logger      *zap.SugaredLogger
}

// NewController creates a new REST server controller with one flux
// calculator per configured site.
func NewController(ctx context.Context, wg *sync.WaitGroup, cfg *config.ConfigData, store storage.ResultStore, logger *zap.SugaredLogger) (*Controller, error) {
	if len(cfg.Sites) == 0 {
		return nil, fmt.Errorf("no sites configured - at least one site must be configured for the REST server")
	}

	ctrl := &Controller{
		ctx:         ctx,
		wg:          wg,
		restConfig:  cfg.REST,
		store:       store,
		calculators: make(map[string]*flux.Calculator, len(cfg.Sites)),
		formatter:   responseformat.NewFormatter(),
		logger:      logger,
	}

	for _, site := range cfg.Sites {
		opts, err := site.FluxOptions()
		if err != nil {
			return nil, err
		}
		calc, err := flux.NewCalculator(opts, logger.With("site", site.Name))
		if err != nil {
			return nil, fmt.Errorf("site %q: %w", site.Name, err)
		}
		ctrl.sites = append(ctrl.sites, site.Name)
		ctrl.calculators[site.Name] = calc
	}

	rc := &ctrl.restConfig
	if rc.ListenAddr == "" {
		logger.Infof("rest.listen_addr not provided; defaulting to %s (all interfaces)", defaultListenAddr)
		rc.ListenAddr = defaultListenAddr
	}
	if rc.HTTPPort == 0 {
		logger.Infof("rest.http_port not provided; defaulting to %d", defaultHTTPPort)
		rc.HTTPPort = defaultHTTPPort
	}

	ctrl.Server.Addr = fmt.Sprintf("%v:%v", rc.ListenAddr, rc.HTTPPort)
	ctrl.Server.Handler = handlers.CompressHandler(ctrl.setupRouter())
	ctrl.Server.ReadHeaderTimeout = 10 * time.Second

	return ctrl, nil
}

// StartController starts the REST server and shuts it down when the
// controller's context is cancelled.
func (c *Controller) StartController() error {
	c.logger.Infof("starting REST server on %s", c.Server.Addr)
	c.wg.Add(1)

	go func() {
		defer c.wg.Done()

		var err error
		if c.restConfig.TLSCertPath != "" && c.restConfig.TLSKeyPath != "" {
			err = c.Server.ListenAndServeTLS(c.restConfig.TLSCertPath, c.restConfig.TLSKeyPath)
		} else {
			err = c.Server.ListenAndServe()
		}
		if err != http.ErrServerClosed {
			c.logger.Errorf("REST server error: %v", err)
		}
	}()

	go func() {
		<-c.ctx.Done()
		c.logger.Info("shutting down the REST server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		c.Server.Shutdown(shutdownCtx)
	}()

	return nil
}

// Handler returns the routed HTTP handler.
func (c *Controller) Handler() http.Handler {
	return c.Server.Handler
}

// handle registers h for method on path and answers every other method on the
// same path with 405.
func (c *Controller) handle(r *mux.Router, path string, h http.HandlerFunc, method string) {
	r.HandleFunc(path, h).Methods(method)
	r.HandleFunc(path, c.methodNotAllowed(method))
}

// setupRouter configures the HTTP router with all endpoints
func (c *Controller) setupRouter() *mux.Router {
	router := mux.NewRouter()
	router.Use(log.HTTPMiddleware(c.logger))
	router.Use(handlers.RecoveryHandler(
		handlers.RecoveryLogger(zap.NewStdLog(c.logger.Desugar())),
		handlers.PrintRecoveryStack(true),
	))

	api := router.PathPrefix("/api/v1").Subrouter()
	c.handle(api, "/flux", c.ComputeFlux, http.MethodPost)
	c.handle(api, "/results", c.ListResults, http.MethodGet)
	c.handle(api, "/results/{id}", c.GetResult, http.MethodGet)
	c.handle(api, "/sites", c.ListSites, http.MethodGet)
	c.handle(api, "/recommend", c.Recommend, http.MethodGet)

	c.handle(router, "/healthz", c.Health, http.MethodGet)

	return router
}
