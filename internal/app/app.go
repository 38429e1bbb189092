package app

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/hostbridge/internal/action"
	"github.com/xenking/hostbridge/internal/credstore"
	"github.com/xenking/hostbridge/internal/gate"
	"github.com/xenking/hostbridge/internal/handler"
	"github.com/xenking/hostbridge/pkg/health"
	"github.com/xenking/hostbridge/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the HTTP server, and handles
// graceful shutdown. It is the single wiring point for the service.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("initializing",
		zap.String("addr", cfg.Addr),
		zap.String("credentials", cfg.CredentialsPath))

	loader := credstore.NewLoader(cfg.CredentialsPath, lg.Named("credstore"))
	g := gate.New(loader, cfg.ClockSkew, lg.Named("gate"))

	registry := action.NewRegistry()
	action.RegisterBuiltins(registry, action.BuiltinConfig{
		HostConfigPath: cfg.HostConfigPath,
	})
	lg.Info("actions registered", zap.Strings("actions", registry.Names()))

	healthSvc := health.New()
	healthSvc.AddReadinessCheck("credstore", time.Second, func(context.Context) error {
		_, err := os.Stat(cfg.CredentialsPath)
		return err
	})
	healthSvc.SetReady(true)

	mux := http.NewServeMux()
	mux.HandleFunc("/livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("/readyz", healthSvc.ReadyEndpoint)
	mux.Handle(handler.PathPrefix, handler.New(g, registry))

	chain := httpmiddleware.Wrap(mux,
		httpmiddleware.Recovery(),
		httpmiddleware.RateLimit(ctx, httpmiddleware.RateLimitConfig{
			Max:    cfg.RateLimit.Max,
			Window: cfg.RateLimit.Window,
		}),
		httpmiddleware.RequestID(),
		httpmiddleware.InjectLogger(lg),
		httpmiddleware.LogRequests(),
	)

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: otelhttp.NewHandler(chain, "hostbridge",
			otelhttp.WithTracerProvider(m.TracerProvider()),
			otelhttp.WithMeterProvider(m.MeterProvider()),
		),
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		lg.Info("server listening", zap.String("addr", cfg.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "server")
		}
		return nil
	})
	eg.Go(func() error {
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("readiness set to false, draining",
			zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()
		lg.Info("shutting down server",
			zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		return server.Shutdown(shutdownCtx)
	})
	return eg.Wait()
}
