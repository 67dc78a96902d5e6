package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"printhub/pkg/config"
	"printhub/pkg/contracts"
	apperrors "printhub/pkg/errors"
	httputil "printhub/pkg/http"
	"printhub/pkg/middleware"

	"github.com/julienschmidt/httprouter"
)

type Options struct {
	Verifier     middleware.TokenVerifier
	PublicRoutes []middleware.PublicRoute
	// media types accepted besides JSON, e.g. multipart/form-data for uploads
	ExtraContentTypes []string
	// long-lived event stream paths, exempt from timeout and idempotency
	StreamRoutes []string
}

type Application struct {
	cfg              *config.Config
	server           *http.Server
	idempotencyStore *middleware.InMemoryIdempotencyStore
	rateLimiter      *middleware.RateLimiter
	healthHandler    http.Handler
	appHttpHandler   http.Handler

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	workers []contracts.Stopper
}

func NewApplication(cfg *config.Config) *Application {
	ctx, cancel := context.WithCancel(context.Background())
	return &Application{
		cfg:    cfg,
		ctx:    ctx,
		cancel: cancel,
	}
}

func (a *Application) SetApp(opts Options, handlers ...contracts.Handler) {
	a.setHealthHandler()
	a.setAppHandler(opts, handlers)
	a.setAppServer()
}

// Background runs fn until shutdown. A returned error other than
// context.Canceled is logged.
func (a *Application) Background(name string, fn func(ctx context.Context) error) {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.cfg.Log.Info("Background worker started", "worker", name)
		if err := fn(a.ctx); err != nil && !errors.Is(err, context.Canceled) {
			a.cfg.Log.Error("Background worker stopped with error", "worker", name, "error", err)
			return
		}
		a.cfg.Log.Info("Background worker stopped", "worker", name)
	}()
}

// OnShutdown registers w to be stopped after the base context is cancelled.
// Workers stop in reverse registration order.
func (a *Application) OnShutdown(w contracts.Stopper) {
	a.workers = append(a.workers, w)
}

func (a *Application) setHealthHandler() {
	healthRouter := httprouter.New()
	var pinger Pinger
	if a.cfg.Client != nil && a.cfg.Client.Mongo != nil {
		pinger = a.cfg.Client.Mongo
	}
	NewHealthHandler(a.cfg.ServiceName, pinger, a.cfg.Log).RegisterRoutes(healthRouter)

	var h http.Handler = healthRouter
	h = middleware.RequestLogging(a.cfg.Log)(h)
	h = middleware.Recovery(a.cfg.Log)(h)
	a.healthHandler = h
	a.cfg.Log.Info("Health endpoints configured with minimal middleware (Recovery + Logging only)")
}

func (a *Application) setAppHandler(opts Options, handlers []contracts.Handler) {
	appRouter := httprouter.New()
	appRouter.NotFound = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = httputil.WriteError(w, apperrors.NotFound("Route"))
	})
	for _, h := range handlers {
		h.RegisterRoutes(appRouter)
	}

	a.idempotencyStore = middleware.NewInMemoryIdempotencyStore(a.cfg.IdempotencyTTL)
	a.rateLimiter = middleware.NewRateLimiter(
		a.cfg.RateLimitRequests,
		a.cfg.RateLimitWindow,
		middleware.CallerKey,
		a.cfg.Log,
	)

	var h http.Handler = appRouter
	h = middleware.Idempotency(a.idempotencyStore)(h)
	h = middleware.RequestTimeout(a.cfg.RequestTimeout)(h)
	h = middleware.RateLimit(a.rateLimiter)(h)
	if opts.Verifier != nil {
		h = middleware.Authenticate(opts.Verifier, a.cfg.Log, opts.PublicRoutes...)(h)
	} else {
		a.cfg.Log.Warn("No token verifier configured, application endpoints are unauthenticated")
	}
	h = middleware.StreamRoutes(opts.StreamRoutes...)(h)
	h = middleware.ContentTypeValidation(a.cfg.Log, opts.ExtraContentTypes...)(h)
	h = middleware.MaxRequestSize(int64(a.cfg.MaxRequestSize), int64(a.cfg.MaxUploadSize))(h)
	h = middleware.RequestLogging(a.cfg.Log)(h)
	h = middleware.Recovery(a.cfg.Log)(h)
	a.appHttpHandler = h
	a.cfg.Log.Info("Application endpoints configured with full middleware stack")
}

func (a *Application) setAppServer() {
	mux := http.NewServeMux()
	mux.Handle("/health", a.healthHandler)
	mux.Handle("/ready", a.healthHandler)
	mux.Handle("/", a.appHttpHandler)

	a.server = &http.Server{
		Addr:         ":" + a.cfg.Port,
		Handler:      mux,
		ReadTimeout:  a.cfg.ReadTimeout,
		WriteTimeout: a.cfg.WriteTimeout,
		IdleTimeout:  a.cfg.IdleTimeout,
		BaseContext:  func(_ net.Listener) context.Context { return a.ctx },
	}

	a.cfg.Log.Info("HTTP server configured", "port", a.cfg.Port)
}

// Handler exposes the assembled mux, mainly for tests.
func (a *Application) Handler() http.Handler {
	return a.server.Handler
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

	a.cfg.Log.Info("Stopping background workers...")
	// cancelling the base context also ends open event streams
	a.cancel()
	a.idempotencyStore.Stop()
	a.rateLimiter.Stop()
	for i := len(a.workers) - 1; i >= 0; i-- {
		a.workers[i].Stop()
	}
	a.wg.Wait()
	a.cfg.Log.Info("Background workers stopped")

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		a.cfg.Log.Error("Server shutdown failed", "error", err)
		if err := a.server.Close(); err != nil {
			a.cfg.Log.Fatal("Could not stop server gracefully", "error", err)
		}
	}

	a.cfg.GracefulShutdown()
	a.cfg.Log.Info("Server stopped gracefully")
}
