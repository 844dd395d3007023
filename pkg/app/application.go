package app

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/julienschmidt/httprouter"

	"staybook/internal/health"
	"staybook/pkg/config"
	"staybook/pkg/middleware"
)

// RouteRegistrar is implemented by every domain handler.
type RouteRegistrar interface {
	RegisterRoutes(*httprouter.Router)
}

type Application struct {
	cfg              *config.Config
	server           *http.Server
	idempotencyStore middleware.IdempotencyStore
	rateLimiter      *middleware.ClientRateLimiter
	healthHandler    http.Handler
	appHTTPHandler   http.Handler
	onShutdown       []func(context.Context)
}

func NewApplication(cfg *config.Config) *Application {
	return &Application{cfg: cfg}
}

func (a *Application) SetApp(handlers ...RouteRegistrar) {
	a.setHealthHandler()
	a.setAppHandler(handlers)
	a.setAppServer()
}

// OnShutdown registers fn to run after the HTTP server has drained.
func (a *Application) OnShutdown(fn func(context.Context)) {
	a.onShutdown = append(a.onShutdown, fn)
}

// Handler exposes the fully wrapped mux.
func (a *Application) Handler() http.Handler {
	return a.server.Handler
}

func (a *Application) setHealthHandler() {
	healthRouter := httprouter.New()
	health.NewHandler(a.cfg.Client, a.cfg.Log).RegisterRoutes(healthRouter)

	var h http.Handler = healthRouter
	h = middleware.RequestLogging(a.cfg.Log)(h)
	h = middleware.Recovery(a.cfg.Log)(h)
	a.healthHandler = h
	a.cfg.Log.Info("Health endpoints configured with minimal middleware (Recovery + Logging only)")
}

func (a *Application) setAppHandler(handlers []RouteRegistrar) {
	appRouter := httprouter.New()
	for _, handler := range handlers {
		handler.RegisterRoutes(appRouter)
	}

	if a.cfg.Client.Redis != nil {
		a.idempotencyStore = middleware.NewRedisIdempotencyStore(a.cfg.Client.Redis, a.cfg.IdempotencyTTL, a.cfg.Log)
		a.cfg.Log.Info("Idempotency keys stored in Redis")
	} else {
		a.idempotencyStore = middleware.NewInMemoryIdempotencyStore(a.cfg.IdempotencyTTL)
	}
	a.rateLimiter = middleware.NewClientRateLimiter(
		a.cfg.RateLimitRequests,
		a.cfg.RateLimitWindow,
		middleware.ClientIPExtractor,
		a.cfg.Log,
	)

	var h http.Handler = appRouter
	h = middleware.Idempotency(a.idempotencyStore, middleware.DefaultIdempotencyHeader)(h)
	h = middleware.RequestTimeout(a.cfg.RequestTimeout)(h)
	h = middleware.RateLimit(a.rateLimiter)(h)
	h = middleware.ContentTypeValidation(a.cfg.Log)(h)
	h = middleware.MaxRequestSize(int64(a.cfg.MaxRequestSize))(h)
	h = middleware.CORS(a.cfg.CORSAllowedOrigin)(h)
	h = middleware.RequestLogging(a.cfg.Log)(h)
	h = middleware.Recovery(a.cfg.Log)(h)
	a.appHTTPHandler = h
	a.cfg.Log.Info("Application endpoints configured with full middleware stack")
}

func (a *Application) setAppServer() {
	mux := http.NewServeMux()
	mux.Handle("/health", a.healthHandler)
	mux.Handle("/ready", a.healthHandler)
	mux.Handle("/", a.appHTTPHandler)

	a.server = &http.Server{
		Addr:         ":" + a.cfg.Port,
		Handler:      mux,
		ReadTimeout:  a.cfg.ReadTimeout,
		WriteTimeout: a.cfg.WriteTimeout,
		IdleTimeout:  a.cfg.IdleTimeout,
	}

	a.cfg.Log.Info("HTTP server configured", "port", a.cfg.Port)
}

func (a *Application) Run() {
	serverErrors := make(chan error, 1)

	go func() {
		a.cfg.Log.Info("Starting HTTP server", "address", a.server.Addr)
		serverErrors <- a.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		a.cfg.Log.Fatal("HTTP server failed", "error", err)

	case sig := <-shutdown:
		a.cfg.Log.Info("Shutdown signal received", "signal", sig)
		a.gracefulShutdown()
	}
}

func (a *Application) gracefulShutdown() {
	a.cfg.Log.Info("Starting graceful shutdown...")

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		a.cfg.Log.Error("Server shutdown failed", "error", err)
		if err := a.server.Close(); err != nil {
			a.cfg.Log.Fatal("Could not stop server gracefully", "error", err)
		}
	}

	a.cfg.Log.Info("Stopping background workers...")
	a.idempotencyStore.Stop()
	a.rateLimiter.Stop()
	for _, fn := range a.onShutdown {
		fn(ctx)
	}
	a.cfg.Client.GracefulShutdown(a.cfg.Log)

	a.cfg.Log.Info("Server stopped gracefully")
}
