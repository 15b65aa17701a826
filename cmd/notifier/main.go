package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	amqp "github.com/rabbitmq/amqp091-go"
	mailadapter "github.com/robertarktes/hotel-paradise/internal/adapters/mail"
	mongoadapter "github.com/robertarktes/hotel-paradise/internal/adapters/mongo"
	"github.com/robertarktes/hotel-paradise/internal/adapters/rabbit"
	"github.com/robertarktes/hotel-paradise/internal/config"
	"github.com/robertarktes/hotel-paradise/internal/notify"
	"github.com/robertarktes/hotel-paradise/internal/observability"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	shutdownOtel, err := observability.SetupOTel(context.Background(), cfg, "hotel-notifier")
	if err != nil {
		log.Fatalf("failed to setup otel: %v", err)
	}
	defer shutdownOtel()

	logger := observability.NewLogger("hotel-notifier", cfg.LogLevel)

	mongoClient, err := mongo.Connect(context.Background(), options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatalf("failed to connect to mongo: %v", err)
	}
	defer mongoClient.Disconnect(context.Background())
	activities := mongoadapter.NewActivityLog(mongoClient.Database(cfg.MongoDatabase), logger)

	conn, err := amqp.Dial(cfg.RabbitURL)
	if err != nil {
		log.Fatalf("failed to connect to rabbitmq: %v", err)
	}
	defer conn.Close()
	consumer, err := rabbit.NewConsumer(conn, cfg.NotifyQueue, "booking.*")
	if err != nil {
		log.Fatalf("failed to create consumer: %v", err)
	}
	defer consumer.Close()

	var sender notify.Sender
	if cfg.SMTP.Enabled() {
		sender = mailadapter.NewMailer(cfg.SMTP)
	} else {
		logger.Warn("SMTP_HOST not set, guest emails disabled")
	}
	notifier := notify.NewNotifier(activities, sender, mailadapter.Notifies, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deliveries, err := consumer.Consume(ctx)
	if err != nil {
		log.Fatalf("failed to consume %s: %v", cfg.NotifyQueue, err)
	}
	logger.WithField("queue", cfg.NotifyQueue).Info("notifier started")
	notifier.Run(ctx, deliveries)
	logger.Info("Shutdown notifier")
}
