package middleware

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"printhub/pkg/auth"
	"printhub/pkg/logger"
)

type KeyExtractor func(r *http.Request) string

// RateLimiter is a sliding-window limiter keyed by caller.
type RateLimiter struct {
	mu        sync.Mutex
	requests  map[string][]time.Time
	limit     int
	window    time.Duration
	extractor KeyExtractor
	log       *logger.Logger
	stopCh    chan struct{}
	stopOnce  sync.Once
}

func NewRateLimiter(limit int, window time.Duration, extractor KeyExtractor, log *logger.Logger) *RateLimiter {
	if extractor == nil {
		extractor = CallerKey
	}
	limiter := &RateLimiter{
		requests:  make(map[string][]time.Time),
		limit:     limit,
		window:    window,
		extractor: extractor,
		log:       log,
		stopCh:    make(chan struct{}),
	}

	go limiter.cleanup()

	return limiter
}

func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.mu.Lock()
			for key, timestamps := range rl.requests {
				if len(timestamps) == 0 || time.Since(timestamps[len(timestamps)-1]) > rl.window {
					delete(rl.requests, key)
				}
			}
			rl.mu.Unlock()
		case <-rl.stopCh:
			return
		}
	}
}

func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopCh) })
}

func (rl *RateLimiter) Allow(key string) bool {
	if key == "" {
		return true
	}

	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	valid := rl.requests[key][:0]
	for _, ts := range rl.requests[key] {
		if now.Sub(ts) < rl.window {
			valid = append(valid, ts)
		}
	}

	if len(valid) >= rl.limit {
		rl.requests[key] = valid
		return false
	}

	rl.requests[key] = append(valid, now)
	return true
}

func RateLimit(limiter *RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := limiter.extractor(r)

			if !limiter.Allow(key) {
				limiter.log.Warn("Rate limit exceeded",
					"request_id", RequestIDFrom(r.Context()),
					"caller", key,
					"path", r.URL.Path,
				)
				w.Header().Set("Retry-After", strconv.Itoa(int(limiter.window.Seconds())))
				reject(w, http.StatusTooManyRequests, "RATE_LIMITED", "Rate limit exceeded")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// CallerKey keys authenticated requests by user and anonymous ones by client IP.
func CallerKey(r *http.Request) string {
	if id, ok := auth.IdentityFrom(r.Context()); ok {
		return "user:" + id.UserID
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}
