package rateLimit

import (
	"context"
	"strconv"
	"time"
)

type Counter interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}

type RateLimiter struct {
	counter Counter
}

func NewRateLimiter(counter Counter) *RateLimiter {
	return &RateLimiter{counter: counter}
}

// Allow counts one request for key in the current window of length period.
func (rl *RateLimiter) Allow(ctx context.Context, key string, rate int, period time.Duration) (bool, error) {
	window := time.Now().Truncate(period).Unix()
	n, err := rl.counter.Incr(ctx, key+":"+strconv.FormatInt(window, 10), period)
	if err != nil {
		return false, err
	}
	return n <= int64(rate), nil
}
