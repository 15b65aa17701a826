package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	redisclient "github.com/redis/go-redis/v9"
	"github.com/robertarktes/hotel-paradise/internal/adapters/crdb"
	mongoadapter "github.com/robertarktes/hotel-paradise/internal/adapters/mongo"
	redisadapter "github.com/robertarktes/hotel-paradise/internal/adapters/redis"
	"github.com/robertarktes/hotel-paradise/internal/auth"
	"github.com/robertarktes/hotel-paradise/internal/booking"
	"github.com/robertarktes/hotel-paradise/internal/config"
	"github.com/robertarktes/hotel-paradise/internal/dashboard"
	httphandler "github.com/robertarktes/hotel-paradise/internal/http"
	"github.com/robertarktes/hotel-paradise/internal/idempotency"
	"github.com/robertarktes/hotel-paradise/internal/observability"
	"github.com/robertarktes/hotel-paradise/internal/rateLimit"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	shutdown, err := observability.SetupOTel(context.Background(), cfg, "hotel-api")
	if err != nil {
		log.Fatalf("failed to setup otel: %v", err)
	}
	defer shutdown()

	logger := observability.NewLogger("hotel-api", cfg.LogLevel)

	pool, err := pgxpool.New(context.Background(), cfg.CRDBDSN)
	if err != nil {
		log.Fatalf("failed to connect to crdb: %v", err)
	}
	defer pool.Close()
	if err := crdb.Migrate(context.Background(), pool); err != nil {
		log.Fatalf("failed to migrate: %v", err)
	}
	crdbRepo := crdb.NewRepository(pool)

	mongoClient, err := mongo.Connect(context.Background(), options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatalf("failed to connect to mongo: %v", err)
	}
	defer mongoClient.Disconnect(context.Background())
	mongoDB := mongoClient.Database(cfg.MongoDatabase)
	details := mongoadapter.NewDetailsRepository(mongoDB, logger)
	activities := mongoadapter.NewActivityLog(mongoDB, logger)

	redisClient := redisclient.NewClient(&redisclient.Options{Addr: cfg.RedisAddr})
	defer redisClient.Close()
	idemp := idempotency.NewIdempotency(redisadapter.NewIdempotency(redisClient), cfg.IdempotencyTTL)
	rl := rateLimit.NewRateLimiter(redisadapter.NewCounter(redisClient))

	authn, err := auth.NewAuthenticator(crdbRepo, cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		log.Fatalf("failed to setup auth: %v", err)
	}
	if err := bootstrapAdmin(context.Background(), crdbRepo, cfg); err != nil {
		log.Fatalf("failed to bootstrap admin: %v", err)
	}

	bookings := booking.NewService(crdbRepo, crdbRepo, booking.NewCalculator(cfg.TaxRate), logger,
		booking.WithLocation(cfg.VenueLocation),
		booking.WithStorageTimeout(cfg.StorageTimeout),
	)
	dash := dashboard.NewService(crdbRepo, cfg.VenueLocation, cfg.StorageTimeout)

	checks := map[string]httphandler.Checker{
		"crdb":  crdbRepo.Ping,
		"redis": func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
		"mongo": func(ctx context.Context) error { return mongoClient.Ping(ctx, readpref.Primary()) },
	}
	handlers := httphandler.NewHandlers(bookings, dash, authn, details, activities, checks)

	r := httphandler.SetupRouter(handlers, httphandler.RouterConfig{
		Logger:             logger,
		Auth:               authn,
		RateLimiter:        rl,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Idempotency:        idemp,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.WithField("addr", cfg.HTTPAddr).Info("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutdown Server ...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}
	logger.Info("Server exiting")
}

func bootstrapAdmin(ctx context.Context, repo *crdb.Repository, cfg *config.Config) error {
	if cfg.AdminUsername == "" || cfg.AdminPassword == "" {
		return nil
	}
	hash, err := auth.HashPassword(cfg.AdminPassword)
	if err != nil {
		return err
	}
	return repo.UpsertAdmin(ctx, auth.Admin{
		Username:     cfg.AdminUsername,
		PasswordHash: hash,
		Name:         cfg.AdminUsername,
		Role:         auth.RoleAdmin,
	})
}
