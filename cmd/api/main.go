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

	"github.com/verdantlane/storefront-gateway/api/controllers"
	"github.com/verdantlane/storefront-gateway/api/routes"
	"github.com/verdantlane/storefront-gateway/internal/cart"
	"github.com/verdantlane/storefront-gateway/internal/checkout"
	"github.com/verdantlane/storefront-gateway/internal/content"
	"github.com/verdantlane/storefront-gateway/internal/customers"
	"github.com/verdantlane/storefront-gateway/internal/newsletter"
	"github.com/verdantlane/storefront-gateway/internal/products"
	"github.com/verdantlane/storefront-gateway/internal/proxy"
	"github.com/verdantlane/storefront-gateway/internal/regions"
	"github.com/verdantlane/storefront-gateway/pkg/auth/session"
	"github.com/verdantlane/storefront-gateway/pkg/cms"
	"github.com/verdantlane/storefront-gateway/pkg/config"
	"github.com/verdantlane/storefront-gateway/pkg/logger"
	"github.com/verdantlane/storefront-gateway/pkg/mailer"
	"github.com/verdantlane/storefront-gateway/pkg/medusa"
	"github.com/verdantlane/storefront-gateway/pkg/metrics"
	"github.com/verdantlane/storefront-gateway/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "storefront-gateway"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "storefront-gateway",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	medusaClient, err := medusa.NewClient(cfg.Medusa, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create commerce client", err)
		os.Exit(1)
	}

	readiness := map[string]controllers.Pinger{
		"redis":  redisClient,
		"medusa": medusaClient,
	}

	contentService := content.NewService(nil, logg)
	if cfg.CMS.Enabled() {
		cmsClient, err := cms.NewClient(cfg.CMS, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to create cms client", err)
			os.Exit(1)
		}
		contentService = content.NewService(cmsClient, logg)
		readiness["cms"] = cmsClient
	} else {
		logg.Warn(context.Background(), "cms not configured, content reads return empty")
	}

	newsletterService := newsletter.NewService(nil, logg)
	if cfg.Newsletter.Enabled() {
		mailerClient, err := mailer.NewClient(cfg.Newsletter, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to create mailer client", err)
			os.Exit(1)
		}
		newsletterService = newsletter.NewService(mailerClient, logg)
	} else {
		logg.Warn(context.Background(), "email provider not configured, newsletter signups are dropped")
	}

	proxyMetrics := metrics.NewProxyMetrics(prometheus.DefaultRegisterer)

	regionService := regions.NewService(medusaClient, cfg.Regions, logg)
	cartService := cart.NewService(medusaClient, regionService, redisClient, logg)
	checkoutService := checkout.NewService(medusaClient, logg)
	productService := products.NewService(medusaClient, regionService, logg)
	customerService := customers.NewService(medusaClient, logg)
	proxyService := proxy.NewService(cfg.Medusa, cfg.Proxy, cfg.RateLimit, redisClient, proxyMetrics, logg)

	sessions := session.NewManager(cfg.Cookies)

	handler := routes.NewRouter(cfg, logg, sessions, routes.Services{
		Proxy:      proxyService,
		Regions:    regionService,
		Products:   productService,
		Cart:       cartService,
		Checkout:   checkoutService,
		Customers:  customerService,
		Content:    contentService,
		Newsletter: newsletterService,
	}, readiness)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting storefront gateway")

	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	shutdownCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "gateway stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-shutdownCtx.Done():
		logg.Info(ctx, "shutting down")
		timeout, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(timeout); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}
