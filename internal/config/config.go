package config

import (
	"os"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type Config struct {
	HTTPAddr           string
	CRDBDSN            string
	MongoURI           string
	MongoDatabase      string
	RedisAddr          string
	RabbitURL          string
	NotifyQueue        string
	OTLPEndpoint       string
	TraceSampleRatio   float64
	Environment        string
	LogLevel           string
	TaxRate            decimal.Decimal
	StorageTimeout     time.Duration
	VenueLocation      *time.Location
	JWTSecret          string
	TokenTTL           time.Duration
	IdempotencyTTL     time.Duration
	RateLimitPerMinute int
	StayWorkerInterval time.Duration
	OutboxInterval     time.Duration
	OutboxBatch        int
	SMTP               SMTPConfig
	// Admin account created at API start-up when both are set.
	AdminUsername string
	AdminPassword string
}

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

func (c SMTPConfig) Enabled() bool {
	return c.Host != ""
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	taxRate, err := decimal.NewFromString(getenv("TAX_RATE", "0.10"))
	if err != nil {
		return nil, errors.Wrap(err, "TAX_RATE")
	}
	if taxRate.IsNegative() {
		return nil, errors.Newf("TAX_RATE must not be negative, got %s", taxRate)
	}

	loc, err := time.LoadLocation(getenv("VENUE_TZ", "Local"))
	if err != nil {
		return nil, errors.Wrap(err, "VENUE_TZ")
	}

	sampleRatio, err := strconv.ParseFloat(getenv("TRACE_SAMPLE_RATIO", "1"), 64)
	if err != nil || sampleRatio < 0 || sampleRatio > 1 {
		return nil, errors.Newf("TRACE_SAMPLE_RATIO must be between 0 and 1, got %q", os.Getenv("TRACE_SAMPLE_RATIO"))
	}

	logLevel := getenv("LOG_LEVEL", "info")
	if _, err := logrus.ParseLevel(logLevel); err != nil {
		return nil, errors.Wrap(err, "LOG_LEVEL")
	}

	cfg := &Config{
		HTTPAddr:         getenv("HTTP_ADDR", ":8080"),
		CRDBDSN:          os.Getenv("CRDB_DSN"),
		MongoURI:         os.Getenv("MONGO_URI"),
		MongoDatabase:    getenv("MONGO_DATABASE", "hotel"),
		RedisAddr:        os.Getenv("REDIS_ADDR"),
		RabbitURL:        os.Getenv("RABBIT_URL"),
		NotifyQueue:      getenv("NOTIFY_QUEUE", "hotel.notifications"),
		OTLPEndpoint:     os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		Environment:      getenv("APP_ENV", "development"),
		LogLevel:         logLevel,
		TaxRate:          taxRate,
		TraceSampleRatio: sampleRatio,
		VenueLocation:    loc,
		JWTSecret:        os.Getenv("JWT_SECRET"),
		AdminUsername:    os.Getenv("ADMIN_USERNAME"),
		AdminPassword:    os.Getenv("ADMIN_PASSWORD"),
		SMTP: SMTPConfig{
			Host:     os.Getenv("SMTP_HOST"),
			User:     os.Getenv("SMTP_USER"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     getenv("MAIL_FROM", "reservations@hotelparadise.com"),
		},
	}

	durations := []struct {
		key  string
		def  string
		dest *time.Duration
	}{
		{"STORAGE_TIMEOUT", "3s", &cfg.StorageTimeout},
		{"TOKEN_TTL", "12h", &cfg.TokenTTL},
		{"IDEMPOTENCY_TTL", "1h", &cfg.IdempotencyTTL},
		{"STAY_WORKER_INTERVAL", "1h", &cfg.StayWorkerInterval},
		{"OUTBOX_INTERVAL", "5s", &cfg.OutboxInterval},
	}
	for _, d := range durations {
		v, err := time.ParseDuration(getenv(d.key, d.def))
		if err != nil || v <= 0 {
			return nil, errors.Newf("%s must be a positive duration, got %q", d.key, os.Getenv(d.key))
		}
		*d.dest = v
	}

	ints := []struct {
		key  string
		def  string
		dest *int
	}{
		{"RATE_LIMIT_PER_MINUTE", "100", &cfg.RateLimitPerMinute},
		{"OUTBOX_BATCH", "10", &cfg.OutboxBatch},
		{"SMTP_PORT", "587", &cfg.SMTP.Port},
	}
	for _, i := range ints {
		v, err := strconv.Atoi(getenv(i.key, i.def))
		if err != nil || v <= 0 {
			return nil, errors.Newf("%s must be a positive integer, got %q", i.key, os.Getenv(i.key))
		}
		*i.dest = v
	}

	return cfg, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
