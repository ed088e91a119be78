package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kidoralabs/kidora-backend/api/routes"
	addresssvc "github.com/kidoralabs/kidora-backend/internal/address"
	authsvc "github.com/kidoralabs/kidora-backend/internal/auth"
	bannersvc "github.com/kidoralabs/kidora-backend/internal/banners"
	cartsvc "github.com/kidoralabs/kidora-backend/internal/cart"
	dashboardsvc "github.com/kidoralabs/kidora-backend/internal/dashboard"
	ordersvc "github.com/kidoralabs/kidora-backend/internal/orders"
	paymentsvc "github.com/kidoralabs/kidora-backend/internal/paymentconfig"
	productsvc "github.com/kidoralabs/kidora-backend/internal/products"
	returnsvc "github.com/kidoralabs/kidora-backend/internal/returns"
	usersvc "github.com/kidoralabs/kidora-backend/internal/users"
	wishlistsvc "github.com/kidoralabs/kidora-backend/internal/wishlist"
	"github.com/kidoralabs/kidora-backend/pkg/config"
	"github.com/kidoralabs/kidora-backend/pkg/db"
	"github.com/kidoralabs/kidora-backend/pkg/logger"
	"github.com/kidoralabs/kidora-backend/pkg/mailer"
	"github.com/kidoralabs/kidora-backend/pkg/metrics"
	"github.com/kidoralabs/kidora-backend/pkg/migrate"
	"github.com/kidoralabs/kidora-backend/pkg/redis"
	"github.com/kidoralabs/kidora-backend/pkg/storage"
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
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}
	migrate.PatchLegacyBestEffort(context.Background(), dbClient, logg)

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(context.Background(), cfg.Redis, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
	} else {
		logg.Warn(context.Background(), "redis not configured, auth rate limiting disabled")
	}

	mediaStore, err := storage.NewLocal(cfg.Media)
	if err != nil {
		logg.Error(context.Background(), "failed to prepare media storage", err)
		os.Exit(1)
	}

	mail := mailer.New(cfg.Mailer, logg)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.NewHTTPMetrics(registry)

	conn := dbClient.DB()
	usersRepo := usersvc.NewRepository(conn)
	productsRepo := productsvc.NewRepository(conn)
	cartRepo := cartsvc.NewRepository(conn)
	ordersRepo := ordersvc.NewRepository(conn)

	services := routes.Services{
		Auth: authsvc.NewService(authsvc.ServiceParams{
			DB:     dbClient,
			Repo:   authsvc.NewRepository(conn),
			Users:  usersRepo,
			Config: cfg,
			Mailer: mail,
			Logger: logg,
			Now:    time.Now,
		}),
		Products: productsvc.NewService(productsvc.ServiceParams{
			DB:     dbClient,
			Repo:   productsRepo,
			Logger: logg,
		}),
		Cart: cartsvc.NewService(cartsvc.ServiceParams{
			DB:       dbClient,
			Repo:     cartRepo,
			Products: productsRepo,
			Logger:   logg,
		}),
		Wishlist: wishlistsvc.NewService(wishlistsvc.ServiceParams{
			DB:       dbClient,
			Repo:     wishlistsvc.NewRepository(conn),
			Products: productsRepo,
			Logger:   logg,
		}),
		Orders: ordersvc.NewService(ordersvc.ServiceParams{
			DB:       dbClient,
			Repo:     ordersRepo,
			Products: productsRepo,
			Cart:     cartRepo,
			Users:    usersRepo,
			Mailer:   mail,
			Logger:   logg,
			SchemaRepair: func(ctx context.Context) error {
				return migrate.EnsureLegacySchema(ctx, dbClient, logg)
			},
		}),
		Users: usersvc.NewService(usersvc.ServiceParams{
			DB:     dbClient,
			Repo:   usersRepo,
			Logger: logg,
		}),
		Addresses: addresssvc.NewService(addresssvc.ServiceParams{
			DB:     dbClient,
			Repo:   addresssvc.NewRepository(conn),
			Logger: logg,
		}),
		Banners: bannersvc.NewService(bannersvc.ServiceParams{
			DB:     dbClient,
			Repo:   bannersvc.NewRepository(conn),
			Logger: logg,
		}),
		Returns: returnsvc.NewService(returnsvc.ServiceParams{
			DB:     dbClient,
			Repo:   returnsvc.NewRepository(conn),
			Orders: ordersRepo,
			Logger: logg,
		}),
		PaymentConfig: paymentsvc.NewService(paymentsvc.ServiceParams{
			DB:     dbClient,
			Repo:   paymentsvc.NewRepository(conn),
			Logger: logg,
		}),
		Dashboard: dashboardsvc.NewService(dashboardsvc.ServiceParams{
			DB:     dbClient,
			Repo:   dashboardsvc.NewRepository(conn),
			Logger: logg,
		}),
	}

	handler := routes.NewRouter(
		cfg,
		logg,
		dbClient,
		redisClient,
		services,
		mediaStore,
		httpMetrics,
		promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case sig := <-stop:
		logg.Info(logg.WithField(ctx, "signal", sig.String()), "shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}
