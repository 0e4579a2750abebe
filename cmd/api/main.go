package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/VWin4Ever/restaurant-pos-system-sub000/api/routes"
	"github.com/VWin4Ever/restaurant-pos-system-sub000/internal/notifications"
	"github.com/VWin4Ever/restaurant-pos-system-sub000/internal/orders"
	"github.com/VWin4Ever/restaurant-pos-system-sub000/internal/products"
	"github.com/VWin4Ever/restaurant-pos-system-sub000/internal/settings"
	"github.com/VWin4Ever/restaurant-pos-system-sub000/internal/stock"
	"github.com/VWin4Ever/restaurant-pos-system-sub000/internal/tables"
	"github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/config"
	"github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/db"
	"github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/logger"
	"github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/metrics"
	"github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/migrate"
	"github.com/VWin4Ever/restaurant-pos-system-sub000/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) (err error) {
	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, dbClient.Close())
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return err
		}
		defer func() {
			err = multierr.Append(err, redisClient.Close())
		}()
	} else {
		logg.Warn(ctx, "redis not configured; idempotency replay, settings cache and notifications disabled")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	poolStats, err := dbClient.StatsCollector("pos")
	if err != nil {
		return err
	}
	registry.MustRegister(poolStats)
	orderMetrics := metrics.NewOrderMetrics(registry)

	var notifier notifications.Notifier = notifications.Nop{}
	if redisClient != nil {
		dispatcher, err := notifications.NewDispatcher(redisClient, cfg.Notifier, orderMetrics, logg)
		if err != nil {
			return err
		}
		defer dispatcher.Wait()
		notifier = dispatcher
	}

	var provider settings.Provider = settings.NewDBProvider(dbClient.DB(), cfg.Settings)
	if redisClient != nil {
		cached, err := settings.NewCachedProvider(provider, redisClient, cfg.Settings.CacheTTL, logg)
		if err != nil {
			return err
		}
		// settings may have changed while the server was down
		if err := cached.Invalidate(ctx); err != nil {
			logg.Warn(logg.WithField(ctx, "error", err.Error()), "settings.cache_invalidate_failed")
		}
		provider = cached
	}
	snapshotter, err := settings.NewSnapshotter(provider)
	if err != nil {
		return err
	}

	stockRepo := stock.NewRepository(dbClient.DB())
	ledger := stock.NewLedger(stockRepo)
	stockService, err := stock.NewService(stockRepo, ledger, dbClient, logg)
	if err != nil {
		return err
	}

	tableRepo := tables.NewRepository(dbClient.DB())
	tracker := tables.NewTracker(tableRepo)
	tableService, err := tables.NewService(tableRepo, tracker, dbClient, notifier, logg)
	if err != nil {
		return err
	}

	orderService, err := orders.NewService(orders.ServiceParams{
		Repo:        orders.NewRepository(dbClient.DB()),
		Tx:          dbClient,
		Catalog:     products.NewRepository(dbClient.DB()),
		Ledger:      ledger,
		Tracker:     tracker,
		Snapshotter: snapshotter,
		Notifier:    notifier,
		Metrics:     orderMetrics,
		Logger:      logg,
	})
	if err != nil {
		return err
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	logCtx := logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(logCtx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, registry, orderService, tableService, stockService),
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logg.Info(logCtx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
