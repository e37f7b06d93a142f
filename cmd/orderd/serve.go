package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/livekart/orderflow/internal/config"
	"github.com/livekart/orderflow/internal/core/ports"
	"github.com/livekart/orderflow/internal/events"
	"github.com/livekart/orderflow/internal/httpx"
	"github.com/livekart/orderflow/internal/idempotency"
	"github.com/livekart/orderflow/internal/identity"
	"github.com/livekart/orderflow/internal/pkg/metrics"
	"github.com/livekart/orderflow/internal/pkg/telemetry"
	"github.com/livekart/orderflow/internal/placement"
	"github.com/livekart/orderflow/internal/store/sqlite"
)

func init() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the API and metrics servers",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	})
}

func serve(parent context.Context) error {
	cfg := config.Load(viper.GetViper())
	telemetry.InitLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := telemetry.SetupTracer(ctx, "orderd")
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracer(shutdownCtx); err != nil {
			slog.Error("tracer shutdown error", "error", err)
		}
	}()

	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	var guard ports.IdempotencyGuard
	if cfg.RedisAddr != "" {
		guard = idempotency.NewRedisGuard(cfg.RedisAddr, "order", cfg.IdempotencyTTL)
	} else {
		slog.Warn("no redis address configured, using in-process idempotency guard")
		guard = idempotency.NewMemoryGuard(cfg.IdempotencyTTL)
	}

	var verifier identity.Verifier
	if cfg.IdentityEndpoint != "" {
		verifier = identity.NewHTTPVerifier(cfg.IdentityEndpoint, nil)
	} else {
		slog.Warn("no identity endpoint configured, using static dev verifier")
		verifier = identity.StaticVerifier{
			"dev-customer": {Subject: "dev-customer", Email: "customer@livekart.local", Role: identity.RoleCustomer},
			"dev-admin":    {Subject: "dev-admin", Email: "admin@livekart.local", Role: identity.RoleAdmin},
		}
	}

	var sink placement.EventSink
	if len(cfg.KafkaBrokers) > 0 {
		publisher := events.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer publisher.Close()
		sink = publisher
	}

	reg := metrics.NewRegistry()
	svc := placement.NewService(store.Products(), store.Orders(), guard, store.PlacementLog(), sink, reg)
	router := httpx.NewRouter(httpx.NewHandler(svc, store.Products()), verifier)

	apiServer := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", reg.Handler())
	metricsServer := &http.Server{Addr: cfg.MetricsAddr, Handler: metricsMux}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("API server running", "addr", cfg.HTTPAddr)
		if err := apiServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		slog.Info("metrics server running", "addr", cfg.MetricsAddr)
		if err := metricsServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
		return apiServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
