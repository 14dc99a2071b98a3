package ratelimit

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/time/rate"

	"livrocaixa/internal/cache"
)

// Limiter hands out one token bucket per client IP. Buckets idle for
// longer than IdleTTL are forgotten.
type Limiter struct {
	buckets  *cache.LRUCache[*rate.Limiter]
	limit    rate.Limit
	burst    int
	rejected prometheus.Counter
}

// Config holds rate limiter configuration
type Config struct {
	RequestsPerSecond float64
	Burst             int
	MaxClients        int
	IdleTTL           time.Duration
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		RequestsPerSecond: 10,
		Burst:             30,
		MaxClients:        10000,
		IdleTTL:           10 * time.Minute,
	}
}

// NewLimiter creates a new rate limiter. Zero fields take their defaults.
func NewLimiter(config Config, reg prometheus.Registerer) *Limiter {
	def := DefaultConfig()
	if config.RequestsPerSecond <= 0 {
		config.RequestsPerSecond = def.RequestsPerSecond
	}
	if config.Burst <= 0 {
		config.Burst = def.Burst
	}
	if config.MaxClients <= 0 {
		config.MaxClients = def.MaxClients
	}
	if config.IdleTTL <= 0 {
		config.IdleTTL = def.IdleTTL
	}

	return &Limiter{
		buckets: cache.NewLRUCache(config.MaxClients, config.IdleTTL,
			cache.WithSlidingExpiry[*rate.Limiter]()),
		limit: rate.Limit(config.RequestsPerSecond),
		burst: config.Burst,
		rejected: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: "livrocaixa",
			Subsystem: "ratelimit",
			Name:      "rejected_total",
			Help:      "Requests rejected by the per-client rate limiter.",
		}),
	}
}

// Allow checks if a request from the given IP should be allowed
func (rl *Limiter) Allow(clientIP string) bool {
	bucket, _ := rl.buckets.GetOrCreate(clientIP, func() *rate.Limiter {
		return rate.NewLimiter(rl.limit, rl.burst)
	})
	if bucket.Allow() {
		return true
	}
	rl.rejected.Inc()
	return false
}

// ActiveClients returns the number of currently tracked clients
func (rl *Limiter) ActiveClients() int {
	return rl.buckets.Size()
}

// Buckets exposes the bucket cache so a cache.Manager can sweep it.
func (rl *Limiter) Buckets() cache.Cleaner {
	return rl.buckets
}

// Middleware rate limits state-changing requests. Reads pass through so
// periodic refreshes never trip the limiter.
func (rl *Limiter) Middleware(extractIP func(*http.Request) string, onLimit func(http.ResponseWriter, *http.Request)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isSafeMethod(r.Method) || rl.Allow(extractIP(r)) {
				next.ServeHTTP(w, r)
				return
			}
			w.Header().Set("Retry-After", "1")
			if onLimit != nil {
				onLimit(w, r)
				return
			}
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
		})
	}
}

func isSafeMethod(method string) bool {
	return method == http.MethodGet || method == http.MethodHead || method == http.MethodOptions
}
