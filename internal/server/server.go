// Package server exposes the cart service over HTTP.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tournevent/melhorenvio/internal/cart"
	"github.com/tournevent/melhorenvio/internal/methods"
	"github.com/tournevent/melhorenvio/internal/store"
	"github.com/tournevent/melhorenvio/pkg/melhorenvio"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Config holds server configuration.
type Config struct {
	Port        int
	Version     string
	Environment string
	APIKeyHash  string // bcrypt hash; empty disables API key checks
	Rates       methods.RateSettings
}

// PayloadWriter saves and discards order drafts.
type PayloadWriter interface {
	SavePayload(ctx context.Context, payload *melhorenvio.SavedPayload) error
	DeletePayload(ctx context.Context, orderID int64) error
}

// InvoiceWriter records the fiscal invoice of an order.
type InvoiceWriter interface {
	SaveInvoice(ctx context.Context, inv *store.Invoice) error
}

// Deps are the services behind the HTTP handlers.
type Deps struct {
	Cart     *cart.Service
	Catalog  *methods.Catalog
	Quotes   cart.QuotationProvider
	Seller   cart.SellerProvider
	Payloads PayloadWriter
	Invoices InvoiceWriter
	GraphQL  http.Handler        // mounted at /graphql when set
	Gatherer prometheus.Gatherer // defaults to the Prometheus default gatherer
}

// Server is the HTTP server for the cart service.
type Server struct {
	cfg    Config
	deps   Deps
	logger *otelzap.Logger
	router *gin.Engine
}

// New creates a new server instance.
func New(cfg Config, deps Deps, logger *otelzap.Logger) *Server {
	if deps.Gatherer == nil {
		deps.Gatherer = prometheus.DefaultGatherer
	}
	s := &Server{
		cfg:    cfg,
		deps:   deps,
		logger: logger,
	}
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() *gin.Engine {
	if s.cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(loggingMiddleware(s.logger))

	router.GET("/health", s.handleHealth)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.deps.Gatherer, promhttp.HandlerOpts{})))
	router.GET("/status", s.handleStatus)

	var guarded []gin.HandlerFunc
	if s.cfg.APIKeyHash != "" {
		guarded = append(guarded, apiKeyMiddleware(s.cfg.APIKeyHash, s.logger))
	}

	if s.deps.GraphQL != nil {
		router.POST("/graphql", append(guarded, gin.WrapH(s.deps.GraphQL))...)
	}

	v1 := router.Group("/v1", guarded...)
	{
		v1.GET("/methods", s.handleMethods)
		v1.POST("/rates", s.handleRates)
		v1.PUT("/orders/:id/payload", s.handleSavePayload)
		v1.DELETE("/orders/:id/payload", s.handleDeletePayload)
		v1.PUT("/orders/:id/invoice", s.handleSaveInvoice)
		v1.POST("/orders/:id/cart", s.handleAddToCart)
		v1.DELETE("/orders/:id/cart", s.handleRemoveFromCart)
		v1.POST("/cart/validate", s.handleValidate)
		v1.POST("/cart/info", s.handleInfo)
	}

	return router
}

// Run starts the HTTP server and blocks until context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Port),
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting server", zap.Int("port", s.cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Wait for context cancellation or error
	select {
	case <-ctx.Done():
		s.logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
