// Package server provides HTTP server initialization and lifecycle management.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"malayalees/src/app/http/handler"
	"malayalees/src/app/middleware"
	"malayalees/src/app/proxy"
	"malayalees/src/core/ports"
	"malayalees/src/core/usecase"
	"malayalees/src/infra/config"
)

// Deps are the adapters the server is built on.
type Deps struct {
	Backend  ports.Backend
	Tokens   ports.TokenProvider
	Comments ports.CommentRepository
	Messages ports.MessageLogRepository
	Cache    ports.Cache
	Sender   ports.WhatsAppSender

	// Gateway may be nil when payments are not configured.
	Gateway ports.PaymentGateway
	// Auth may be nil; every caller is then anonymous.
	Auth middleware.Authenticator

	// Health lists the components reported by /health/detailed.
	Health map[string]ports.ExternalService
}

// Server wraps the HTTP server and its dependencies.
type Server struct {
	cfg    *config.Config
	log    *slog.Logger
	router *gin.Engine
	http   *http.Server
	auth   middleware.Authenticator

	// Handlers
	healthHandler    *handler.HealthHandler
	eventHandler     *handler.EventHandler
	mediaHandler     *handler.MediaHandler
	tenantHandler    *handler.TenantHandler
	whatsAppHandler  *handler.WhatsAppHandler
	checkoutHandler  *handler.CheckoutHandler
	commentHandler   *handler.CommentHandler
	dashboardHandler *handler.DashboardHandler
	proxy            *proxy.ReverseProxy
}

// New creates a new Server with all dependencies wired up.
func New(cfg *config.Config, log *slog.Logger, deps Deps) (*Server, error) {
	// Set Gin mode based on log level
	if cfg.Log.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create router without default middleware
	router := gin.New()
	router.MaxMultipartMemory = 8 << 20

	ttl := cfg.Redis.TTL

	// Create services
	healthService := usecase.NewHealthService(log, deps.Health)
	eventService := usecase.NewEventService(deps.Backend, deps.Backend, deps.Cache, ttl, log)
	mediaService := usecase.NewMediaService(deps.Backend, eventService, log)
	tenantService := usecase.NewTenantService(deps.Backend, deps.Cache, ttl, log)
	whatsAppService := usecase.NewWhatsAppService(tenantService, deps.Sender, deps.Messages, log)
	checkoutService := usecase.NewCheckoutService(eventService, deps.Backend, deps.Gateway, cfg.Stripe.Currency, cfg.Server.PublicURL, log)
	commentService := usecase.NewCommentService(deps.Comments, eventService, log)
	dashboardService := usecase.NewDashboardService(deps.Backend, deps.Backend, deps.Backend, deps.Cache, ttl, log)

	rp, err := proxy.NewReverseProxy(cfg.Backend.APIBase(), proxy.Prefixes{
		Public: cfg.Backend.ProxyPublicPrefixes,
		Admin:  cfg.Backend.ProxyAdminPrefixes,
	}, deps.Tokens, nil, log)
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:              cfg,
		log:              log,
		router:           router,
		auth:             deps.Auth,
		healthHandler:    handler.NewHealthHandler(healthService),
		eventHandler:     handler.NewEventHandler(eventService),
		mediaHandler:     handler.NewMediaHandler(mediaService),
		tenantHandler:    handler.NewTenantHandler(tenantService),
		whatsAppHandler:  handler.NewWhatsAppHandler(whatsAppService),
		checkoutHandler:  handler.NewCheckoutHandler(checkoutService),
		commentHandler:   handler.NewCommentHandler(commentService),
		dashboardHandler: handler.NewDashboardHandler(dashboardService),
		proxy:            rp,
	}

	s.setupMiddleware()
	s.setupRoutes()
	s.setupHTTPServer()

	return s, nil
}

// setupMiddleware configures global middleware.
func (s *Server) setupMiddleware() {
	// Order matters: Recovery should be first to catch all panics
	s.router.Use(middleware.Recovery(s.log))
	s.router.Use(middleware.RequestID())
	s.router.Use(middleware.Security(s.cfg.Server.SSL))
	s.router.Use(middleware.CORS(s.cfg.CORS.AllowedOrigins))
	s.router.Use(middleware.Logging(s.log))
	// Tenant reads the caller, so it runs after Authenticate.
	s.router.Use(middleware.Authenticate(s.auth))
	s.router.Use(middleware.Tenant(s.cfg.Tenant))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	// Health check endpoints (no auth required)
	s.router.GET("/health", s.healthHandler.Health)
	s.router.GET("/health/detailed", s.healthHandler.DetailedHealth)

	// Backend passthrough; writes and admin-only resources are gated in the proxy too.
	s.router.GET("/api/proxy/*path", s.proxy.Handler())
	s.router.HEAD("/api/proxy/*path", s.proxy.Handler())
	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete} {
		s.router.Handle(method, "/api/proxy/*path", middleware.RequireAdmin(), s.proxy.Handler())
	}

	// API v1 routes
	v1 := s.router.Group("/v1")
	{
		// Events (public)
		v1.GET("/events", s.eventHandler.List)
		v1.GET("/events/:id", s.eventHandler.Get)
		v1.GET("/events/:id/ticket-types", s.eventHandler.TicketTypes)
		v1.GET("/events/:id/media", s.mediaHandler.List)

		// Registration and checkout
		v1.POST("/events/:id/checkout", s.checkoutHandler.Checkout)
		v1.POST("/events/:id/register", s.checkoutHandler.Register)
		v1.POST("/webhooks/stripe", s.checkoutHandler.StripeWebhook)

		// Comments
		v1.GET("/events/:id/comments", s.commentHandler.List)
		v1.POST("/events/:id/comments", middleware.RequireAuth(), s.commentHandler.Create)

		admin := v1.Group("/admin", middleware.RequireAdmin())
		{
			admin.GET("/dashboard", s.dashboardHandler.Stats)

			admin.POST("/events", s.eventHandler.Create)
			admin.PUT("/events/:id", s.eventHandler.Update)
			admin.PATCH("/events/:id", s.eventHandler.Patch)
			admin.DELETE("/events/:id", s.eventHandler.Delete)

			admin.POST("/events/:id/media", s.mediaHandler.Upload)
			admin.PATCH("/media/:id", s.mediaHandler.Patch)
			admin.DELETE("/media/:id", s.mediaHandler.Delete)

			admin.DELETE("/comments/:id", s.commentHandler.Delete)

			admin.GET("/tenants", s.tenantHandler.ListOrganizations)
			admin.POST("/tenants", s.tenantHandler.CreateOrganization)
			admin.GET("/tenants/:id", s.tenantHandler.GetOrganization)
			admin.PUT("/tenants/:id", s.tenantHandler.UpdateOrganization)
			admin.DELETE("/tenants/:id", s.tenantHandler.DeleteOrganization)
			admin.GET("/tenant-settings", s.tenantHandler.Settings)
			admin.PUT("/tenant-settings", s.tenantHandler.SaveSettings)

			admin.GET("/whatsapp/settings", s.whatsAppHandler.Settings)
			admin.PUT("/whatsapp/settings", s.whatsAppHandler.UpdateSettings)
			admin.POST("/whatsapp/test", s.whatsAppHandler.SendTest)
			admin.GET("/whatsapp/messages", s.whatsAppHandler.Messages)
			admin.POST("/whatsapp/messages", s.whatsAppHandler.Send)
		}
	}

	// Handle 404
	s.router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": gin.H{
				"code":       "NOT_FOUND",
				"message":    "The requested resource was not found",
				"request_id": middleware.GetRequestID(c),
			},
		})
	})
}

// setupHTTPServer configures the underlying HTTP server.
func (s *Server) setupHTTPServer() {
	s.http = &http.Server{
		Addr:              s.cfg.Server.Addr(),
		Handler:           s.router,
		ReadTimeout:       s.cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      s.cfg.Server.WriteTimeout,
	}
}

// Run starts the HTTP server and blocks until shutdown.
// It handles graceful shutdown on SIGINT/SIGTERM.
func (s *Server) Run() error {
	// Channel to receive shutdown signals
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Channel to receive server errors
	errCh := make(chan error, 1)

	// Start server in goroutine
	go func() {
		s.log.Info("starting HTTP server",
			"addr", s.cfg.Server.Addr(),
		)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("server error: %w", err)
		}
	}()

	// Wait for shutdown signal or error
	select {
	case sig := <-quit:
		s.log.Info("received shutdown signal", "signal", sig.String())
	case err := <-errCh:
		return err
	}

	// Graceful shutdown
	return s.Shutdown()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	s.log.Info("shutting down server", "timeout", s.cfg.Server.ShutdownTimeout)

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := s.http.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	s.log.Info("server stopped gracefully")
	return nil
}

// Router returns the Gin router for testing.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// WaitForReady waits until the server is ready to accept connections.
// Useful for integration tests.
func (s *Server) WaitForReady(timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		resp, err := http.Get(fmt.Sprintf("http://%s/health", s.cfg.Server.Addr()))
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		time.Sleep(10 * time.Millisecond)
	}
	return fmt.Errorf("server not ready after %v", timeout)
}
