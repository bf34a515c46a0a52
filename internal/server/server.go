// Package server provides the HTTP server implementation.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/vyrodovalexey/media-catalog/internal/auth"
	"github.com/vyrodovalexey/media-catalog/internal/catalog"
	"github.com/vyrodovalexey/media-catalog/internal/config"
	"github.com/vyrodovalexey/media-catalog/internal/handler"
	"github.com/vyrodovalexey/media-catalog/internal/middleware"
	"github.com/vyrodovalexey/media-catalog/internal/model"
	"github.com/vyrodovalexey/media-catalog/internal/schema"
	"github.com/vyrodovalexey/media-catalog/internal/store"
)

// Server represents the HTTP server.
type Server struct {
	httpServer *http.Server
	router     *mux.Router
	config     *config.Config
	logger     *zap.Logger
	gateway    *catalog.Gateway
	wsHandler  *handler.WebSocketHandler
}

// New creates a new Server instance. Write requests are checked by
// authenticator; opts are passed on to the catalog gateway.
func New(
	cfg *config.Config,
	logger *zap.Logger,
	recordStore store.Store,
	authenticator auth.Authenticator,
	opts ...catalog.Option,
) *Server {
	router := mux.NewRouter()

	s := &Server{
		router: router,
		config: cfg,
		logger: logger,
	}

	s.setupMiddleware(authenticator)
	s.setupRoutes(recordStore, opts)
	s.setupHTTPServer()

	return s
}

// NewStore builds the record store selected by cfg.
func NewStore(cfg *config.Config) (store.Store, error) {
	switch cfg.Store {
	case config.StoreMemory:
		return store.NewMemoryStore(), nil
	case config.StoreFile, "":
		fs, err := store.NewFileStore(cfg.DataDir)
		if err != nil {
			return nil, fmt.Errorf("opening file store: %w", err)
		}
		return fs, nil
	default:
		return nil, config.ErrInvalidStore
	}
}

// setupMiddleware configures the middleware chain.
func (s *Server) setupMiddleware(authenticator auth.Authenticator) {
	allowedMethods := []string{
		http.MethodGet,
		http.MethodPost,
		http.MethodPut,
		http.MethodDelete,
		http.MethodOptions,
	}
	allowedHeaders := []string{
		"Content-Type",
		auth.AdminKeyHeader,
		middleware.RequestIDHeader,
	}

	// First entry is outermost.
	stack := []middleware.Middleware{
		middleware.Recovery(s.logger),
		middleware.RequestID(),
	}
	if s.config.MetricsEnabled {
		stack = append(stack, middleware.Metrics())
	}
	stack = append(stack,
		middleware.Logging(s.logger),
		middleware.CORS(s.config.AllowedOrigin, allowedMethods, allowedHeaders),
	)
	if authenticator != nil {
		stack = append(stack, middleware.Auth(authenticator, s.logger))
	}

	s.router.Use(mux.MiddlewareFunc(middleware.Chain(stack...)))
}

// setupRoutes configures the API routes.
func (s *Server) setupRoutes(recordStore store.Store, opts []catalog.Option) {
	// Sessions are reloaded after every successful write.
	notify := catalog.NotifierFunc(func(c model.Category) {
		if s.wsHandler != nil {
			s.wsHandler.Notify(c)
		}
	})
	opts = append(opts, catalog.WithNotifier(notify))
	s.gateway = catalog.NewGateway(recordStore, schema.New(nil), s.logger, opts...)

	restHandler := handler.NewRESTHandler(s.gateway, s.logger)
	restHandler.RegisterRoutes(s.router)

	s.wsHandler = handler.NewWebSocketHandler(s.gateway, s.logger, s.config.AllowedOrigin, s.config.Locale())
	s.wsHandler.RegisterRoutes(s.router)

	if s.config.MetricsEnabled {
		s.router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	}

	// Preflight requests must match a route for the CORS middleware to run.
	s.router.PathPrefix("/").Methods(http.MethodOptions).HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
}

// setupHTTPServer configures the HTTP server.
func (s *Server) setupHTTPServer() {
	s.httpServer = &http.Server{
		Addr:              s.config.Address(),
		Handler:           s.router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1 MB
	}
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.Info("starting server",
		zap.String("address", s.config.Address()),
		zap.String("store", s.config.Store),
		zap.String("allowed_origin", s.config.AllowedOrigin),
		zap.Bool("metrics_enabled", s.config.MetricsEnabled),
	)

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server listen and serve: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down server")

	// Close all browse sessions first
	if s.wsHandler != nil {
		s.wsHandler.CloseAllConnections()
	}

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	s.logger.Info("server shutdown complete")
	return nil
}

// Router returns the server's router for testing purposes.
func (s *Server) Router() *mux.Router {
	return s.router
}

// Gateway returns the catalog gateway serving the API.
func (s *Server) Gateway() *catalog.Gateway {
	return s.gateway
}
