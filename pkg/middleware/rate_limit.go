package middleware

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"innkeep/pkg/logger"
)

const StaffIDHeader = "X-Staff-ID"

// KeyExtractor picks the identity a request is throttled under. An empty key
// exempts the request.
type KeyExtractor func(r *http.Request) string

// StaffRateLimiter is a sliding-window limiter keyed by acting staff member.
type StaffRateLimiter struct {
	mu       sync.Mutex
	requests map[string][]time.Time
	limit    int
	window   time.Duration
	extract  KeyExtractor
	now      func() time.Time
	log      *logger.Logger
	stopCh   chan struct{}
	stopOnce sync.Once
}

func NewStaffRateLimiter(limit int, window time.Duration, extractor KeyExtractor, log *logger.Logger) *StaffRateLimiter {
	if extractor == nil {
		extractor = StaffOrClientIP
	}
	limiter := &StaffRateLimiter{
		requests: make(map[string][]time.Time),
		limit:    limit,
		window:   window,
		extract:  extractor,
		now:      time.Now,
		log:      log,
		stopCh:   make(chan struct{}),
	}

	go limiter.cleanup()

	return limiter
}

func (rl *StaffRateLimiter) cleanup() {
	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			now := rl.now()
			rl.mu.Lock()
			for key, timestamps := range rl.requests {
				if len(timestamps) == 0 || now.Sub(timestamps[len(timestamps)-1]) >= rl.window {
					delete(rl.requests, key)
				}
			}
			rl.mu.Unlock()
		case <-rl.stopCh:
			return
		}
	}
}

func (rl *StaffRateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopCh) })
}

// Allow records a request for key and reports whether it fits the window,
// along with how long the caller should wait when it does not.
func (rl *StaffRateLimiter) Allow(key string) (bool, time.Duration) {
	if key == "" {
		return true, 0
	}

	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	timestamps := rl.requests[key]
	valid := timestamps[:0]
	for _, ts := range timestamps {
		if now.Sub(ts) < rl.window {
			valid = append(valid, ts)
		}
	}

	if len(valid) >= rl.limit {
		rl.requests[key] = valid
		return false, rl.window - now.Sub(valid[0])
	}

	rl.requests[key] = append(valid, now)
	return true, 0
}

func StaffRateLimit(limiter *StaffRateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := limiter.extract(r)
			allowed, retryAfter := limiter.Allow(key)
			if !allowed {
				limiter.log.Warn("Rate limit exceeded",
					"request_id", RequestIDFromContext(r.Context()),
					"key", key,
					"path", r.URL.Path,
				)
				seconds := int(retryAfter.Round(time.Second) / time.Second)
				w.Header().Set("Retry-After", strconv.Itoa(max(1, seconds)))
				writeRejection(w, http.StatusTooManyRequests, "RATE_LIMITED", "Rate limit exceeded")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// StaffOrClientIP throttles by X-Staff-ID and falls back to the client address.
func StaffOrClientIP(r *http.Request) string {
	if staff := r.Header.Get(StaffIDHeader); staff != "" {
		return "staff:" + staff
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}
