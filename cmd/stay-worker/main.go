package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/robertarktes/hotel-paradise/internal/adapters/crdb"
	"github.com/robertarktes/hotel-paradise/internal/booking"
	"github.com/robertarktes/hotel-paradise/internal/config"
	"github.com/robertarktes/hotel-paradise/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	shutdownOtel, err := observability.SetupOTel(context.Background(), cfg, "hotel-stay-worker")
	if err != nil {
		log.Fatalf("failed to setup otel: %v", err)
	}
	defer shutdownOtel()

	logger := observability.NewLogger("hotel-stay-worker", cfg.LogLevel)

	pool, err := pgxpool.New(context.Background(), cfg.CRDBDSN)
	if err != nil {
		log.Fatalf("failed to connect to crdb: %v", err)
	}
	defer pool.Close()
	repo := crdb.NewRepository(pool)

	bookings := booking.NewService(repo, repo, booking.NewCalculator(cfg.TaxRate), logger,
		booking.WithLocation(cfg.VenueLocation),
		booking.WithStorageTimeout(cfg.StorageTimeout),
	)
	worker := NewStayWorker(bookings, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	worker.Run(ctx, cfg.StayWorkerInterval)
	logger.Info("Shutdown stay worker")
}

type StayCompleter interface {
	CompleteStays(ctx context.Context) ([]uuid.UUID, error)
}

// StayWorker marks bookings whose check-out day has arrived as completed.
type StayWorker struct {
	bookings StayCompleter
	logger   observability.Logger
}

func NewStayWorker(bookings StayCompleter, logger observability.Logger) *StayWorker {
	return &StayWorker{bookings: bookings, logger: logger}
}

func (w *StayWorker) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	w.runOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

func (w *StayWorker) runOnce(ctx context.Context) {
	if err := w.completeWithRetry(ctx); err != nil {
		w.logger.Error("failed to complete stays after retries: ", err)
	}
}

func (w *StayWorker) completeWithRetry(ctx context.Context) error {
	const maxRetries = 3
	var err error
	for i := 0; i < maxRetries; i++ {
		var ids []uuid.UUID
		ids, err = w.bookings.CompleteStays(ctx)
		if err == nil {
			if len(ids) > 0 {
				w.logger.WithField("count", len(ids)).Info("stays completed")
			}
			return nil
		}
		if !booking.Retryable(err) {
			return err
		}
		backoff := time.Duration(1<<i) * time.Second
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
	return err
}
