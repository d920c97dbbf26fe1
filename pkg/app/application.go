package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"innkeep/pkg/config"
	"innkeep/pkg/contracts"
	"innkeep/pkg/middleware"

	"github.com/julienschmidt/httprouter"
)

type Application struct {
	cfg              *config.Config
	server           *http.Server
	idempotencyStore middleware.IdempotencyStore
	rateLimiter      *middleware.StaffRateLimiter
	healthHandler    http.Handler
	appHandler       http.Handler
	closers          []func()
}

func NewApplication(cfg *config.Config) *Application {
	return &Application{cfg: cfg}
}

// OnShutdown registers cleanup run after the server stopped, in reverse order.
func (a *Application) OnShutdown(fn func()) {
	a.closers = append(a.closers, fn)
}

func (a *Application) SetApp(handlers ...contracts.Handler) {
	a.setHealthHandler()
	a.setAppHandler(handlers)
	a.setAppServer()
}

// Handler exposes the fully wrapped mux, mainly for tests.
func (a *Application) Handler() http.Handler {
	return a.server.Handler
}

func (a *Application) setHealthHandler() {
	checks := map[string]Pinger{}
	if a.cfg.Client.Mongo != nil {
		mongo := a.cfg.Client.Mongo
		checks["mongo"] = func(ctx context.Context) error { return mongo.Ping(ctx, nil) }
	}
	if a.cfg.Client.Redis != nil {
		redis := a.cfg.Client.Redis
		checks["redis"] = func(ctx context.Context) error { return redis.Ping(ctx).Err() }
	}

	healthRouter := httprouter.New()
	NewHealthHandler(checks, a.cfg.Log).RegisterRoutes(healthRouter)

	var handler http.Handler = healthRouter
	handler = middleware.Recovery(a.cfg.Log)(handler)
	a.healthHandler = handler
	a.cfg.Log.Info("Health endpoints configured with minimal middleware")
}

func (a *Application) setAppHandler(handlers []contracts.Handler) {
	appRouter := httprouter.New()
	for _, h := range handlers {
		h.RegisterRoutes(appRouter)
	}

	if a.cfg.Client.Redis != nil {
		a.idempotencyStore = middleware.NewRedisIdempotencyStore(a.cfg.Client.Redis, a.cfg.IdempotencyTTL)
	} else {
		a.idempotencyStore = middleware.NewInMemoryIdempotencyStore(a.cfg.IdempotencyTTL)
	}
	a.rateLimiter = middleware.NewStaffRateLimiter(
		a.cfg.RateLimitRequests,
		a.cfg.RateLimitWindow,
		middleware.StaffOrClientIP,
		a.cfg.Log,
	)

	// Innermost first: the request passes these in reverse order.
	var handler http.Handler = appRouter
	handler = middleware.Idempotency(a.idempotencyStore, a.cfg.Log)(handler)
	handler = middleware.RequestTimeout(a.cfg.RequestTimeout)(handler)
	handler = middleware.StaffRateLimit(a.rateLimiter)(handler)
	handler = middleware.ContentTypeValidation(a.cfg.Log)(handler)
	handler = middleware.MaxRequestSize(int64(a.cfg.MaxRequestSize))(handler)
	handler = middleware.Recovery(a.cfg.Log)(handler)
	handler = middleware.RequestLogging(a.cfg.Log)(handler)
	a.appHandler = handler
	a.cfg.Log.Info("Application endpoints configured", "handlers", len(handlers))
}

func (a *Application) setAppServer() {
	mux := http.NewServeMux()
	mux.Handle("/health", a.healthHandler)
	mux.Handle("/ready", a.healthHandler)
	mux.Handle("/", a.appHandler)

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
		if !errors.Is(err, http.ErrServerClosed) {
			a.cfg.Log.Fatal("HTTP server failed", "error", err)
		}

	case sig := <-shutdown:
		a.cfg.Log.Info("Shutdown signal received", "signal", sig.String())
		a.gracefulShutdown()
	}
}

func (a *Application) gracefulShutdown() {
	a.cfg.Log.Info("Starting graceful shutdown")

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		a.cfg.Log.Error("Server shutdown failed", "error", err)
		if err := a.server.Close(); err != nil {
			a.cfg.Log.Error("Could not stop server gracefully", "error", err)
		}
	}

	a.idempotencyStore.Stop()
	a.rateLimiter.Stop()
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}

	a.cfg.Log.Info("Server stopped gracefully")
}
