package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/DougJudyPontiacBandit/ramyeonsite/internal/cache"
	"github.com/DougJudyPontiacBandit/ramyeonsite/internal/config"
	"github.com/DougJudyPontiacBandit/ramyeonsite/internal/httpx"
	"github.com/DougJudyPontiacBandit/ramyeonsite/internal/loyalty"
	"github.com/DougJudyPontiacBandit/ramyeonsite/internal/orders"
	"github.com/DougJudyPontiacBandit/ramyeonsite/internal/paymongo"
	"github.com/DougJudyPontiacBandit/ramyeonsite/internal/reconcile"
	"github.com/DougJudyPontiacBandit/ramyeonsite/internal/service"
	"github.com/DougJudyPontiacBandit/ramyeonsite/internal/stock"
	"github.com/DougJudyPontiacBandit/ramyeonsite/internal/store"
	"github.com/DougJudyPontiacBandit/ramyeonsite/internal/web"
)

const (
	requestTimeout  = 30 * time.Second
	shutdownTimeout = 10 * time.Second
)

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	resolver := config.NewResolver()
	cfg := config.Load(resolver)

	pending, err := store.NewSQLiteStore(cfg.StorePath)
	if err != nil {
		log.Fatalf("failed to open local order store: %v", err)
	}
	defer pending.Close()

	migrationsPath := getEnv("MIGRATIONS_PATH", "./internal/store/migrations")
	if err := pending.RunMigrations(migrationsPath); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	cacheStore := buildCache(cfg)

	storefrontAPI := httpx.NewClient("storefront", cfg.APIBaseURL, cfg.APIToken)
	loyaltyEngine := loyalty.NewEngine(storefrontAPI, cacheStore)
	stockValidator := stock.NewValidator(storefrontAPI)
	orderBackend := orders.NewClient(storefrontAPI)
	gateway := paymongo.NewClient(cfg.GatewayBaseURL, cfg.ReturnURL, cfg.GatewaySecretKey)

	svc := service.NewCheckoutService(
		stockValidator,
		loyaltyEngine,
		gateway,
		orderBackend,
		pending,
		paymongo.DefaultPollConfig(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	poller := reconcile.NewPoller(pending, orderBackend)
	go poller.Run(ctx)

	handler := web.NewCheckoutHandler(svc, requestTimeout)
	router := web.NewRouter(handler)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(router, "checkoutd"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 35 * time.Second, // payment polling can run long
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("checkoutd starting on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()

	log.Println("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("server exited")
}

// buildCache uses Redis when an address is configured, otherwise the
// in-process store. Both honor the same TTL.
func buildCache(cfg *config.Config) cache.Store {
	if cfg.RedisAddr == "" {
		log.Println("REDIS_ADDR not set, using in-memory cache")
		return cache.NewMemoryStore()
	}

	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Printf("redis at %s unreachable (%v), using in-memory cache", cfg.RedisAddr, err)
		return cache.NewMemoryStore()
	}

	log.Printf("using redis cache at %s", cfg.RedisAddr)
	return cache.NewRedisCache(client)
}
