package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hotel_requests_total",
			Help: "Total number of requests",
		},
		[]string{"route", "code", "method"},
	)

	BookingsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hotel_bookings_created_total",
			Help: "Total bookings committed",
		},
	)

	BookingConflicts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hotel_booking_conflicts_total",
			Help: "Bookings rejected because the room was taken at commit time",
		},
	)

	BookingStatusChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hotel_booking_status_changes_total",
			Help: "Booking status transitions",
		},
		[]string{"status"},
	)

	DBTxDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "hotel_db_tx_seconds",
			Help:    "Duration of DB transactions",
			Buckets: prometheus.DefBuckets,
		},
	)

	OutboxLag = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "hotel_outbox_lag_seconds",
			Help: "Lag of outbox publishing",
		},
	)

	RateLimitExceeded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hotel_rate_limit_exceeded_total",
			Help: "Total rate limit exceeded",
		},
	)
)
