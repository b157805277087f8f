package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// Buckets idle longer than this are dropped by the cleanup loop. The next
// request from that client simply starts a fresh, full bucket.
const bucketIdleEviction = 10 * time.Minute

// RateLimiter throttles requests per client IP with a token bucket: burst
// capacity equals the per-minute limit, refill is continuous. State is
// in-process only; behind multiple instances each instance enforces its
// own budget.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	stop    chan struct{}
}

type bucket struct {
	tokens float64
	last   time.Time
}

// NewRateLimiter starts the bucket-eviction loop. Call Stop on shutdown.
func NewRateLimiter(sweepEvery time.Duration) *RateLimiter {
	rl := &RateLimiter{
		buckets: make(map[string]*bucket),
		stop:    make(chan struct{}),
	}
	go rl.sweep(sweepEvery)
	return rl
}

// Stop ends the eviction loop.
func (rl *RateLimiter) Stop() {
	close(rl.stop)
}

// Limit enforces perMinute requests per client IP. Rejected requests get a
// 429 with a Retry-After hint of when the next token accrues.
func (rl *RateLimiter) Limit(perMinute int) Middleware {
	refillPerSec := float64(perMinute) / 60.0
	retryAfter := strconv.Itoa(int(math.Ceil(1.0 / refillPerSec)))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !rl.take(clientHost(r), float64(perMinute), refillPerSec) {
				w.Header().Set("Retry-After", retryAfter)
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientHost keys buckets by IP alone, so reconnects from rotating ephemeral
// ports share one budget.
func clientHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// take refills the caller's bucket for the elapsed time, then spends one
// token if available.
func (rl *RateLimiter) take(key string, burst, refillPerSec float64) bool {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.buckets[key]
	if !ok {
		b = &bucket{tokens: burst, last: now}
		rl.buckets[key] = b
	}

	b.tokens = math.Min(burst, b.tokens+now.Sub(b.last).Seconds()*refillPerSec)
	b.last = now

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

func (rl *RateLimiter) sweep(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.evictIdle(time.Now().Add(-bucketIdleEviction))
		}
	}
}

func (rl *RateLimiter) evictIdle(cutoff time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for key, b := range rl.buckets {
		if b.last.Before(cutoff) {
			delete(rl.buckets, key)
		}
	}
}
