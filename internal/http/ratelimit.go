package httpx

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// LoginRateLimiter throttles login attempts per client address. The login
// route runs before any session exists, so the key is the remote IP rather
// than a user id.
type LoginRateLimiter struct {
	perMinute int
	logger    *slog.Logger

	mu       sync.Mutex
	limiters map[string]*clientLimiter

	startOnce sync.Once
	stopCh    chan struct{}
	stopOnce  sync.Once
}

type clientLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

const limiterCleanupInterval = 5 * time.Minute

// NewLoginRateLimiter creates a limiter allowing perMinute attempts with an
// equal burst. The stale-entry cleanup goroutine starts on first use, so an
// idle limiter costs nothing.
func NewLoginRateLimiter(perMinute int, logger *slog.Logger) *LoginRateLimiter {
	if perMinute <= 0 {
		perMinute = 10
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &LoginRateLimiter{
		perMinute: perMinute,
		logger:    logger,
		limiters:  make(map[string]*clientLimiter),
		stopCh:    make(chan struct{}),
	}
}

// Stop terminates the background cleanup goroutine.
func (rl *LoginRateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopCh) })
}

// Middleware wraps a handler with the per-client limit, answering 429 with a
// Retry-After header when exceeded.
func (rl *LoginRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := clientKey(r)
		if !rl.allow(key) {
			retryAfter := int(time.Minute.Seconds()) / rl.perMinute
			if retryAfter < 1 {
				retryAfter = 1
			}
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			rl.logger.Warn("login rate limit exceeded", slog.String("client", key))
			http.Error(w, "Too many login attempts. Please try again later.", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Len reports the number of tracked clients, for tests and metrics.
func (rl *LoginRateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.limiters)
}

func (rl *LoginRateLimiter) allow(key string) bool {
	rl.startOnce.Do(func() { go rl.cleanupLoop() })

	rl.mu.Lock()
	defer rl.mu.Unlock()

	cl, ok := rl.limiters[key]
	if !ok {
		cl = &clientLimiter{
			limiter: rate.NewLimiter(rate.Limit(float64(rl.perMinute)/60.0), rl.perMinute),
		}
		rl.limiters[key] = cl
	}
	cl.lastAccess = time.Now()
	return cl.limiter.Allow()
}

func (rl *LoginRateLimiter) cleanupLoop() {
	ticker := time.NewTicker(limiterCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stopCh:
			return
		}
	}
}

func (rl *LoginRateLimiter) cleanup() {
	ttl := limiterCleanupInterval * 2
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()
	for key, cl := range rl.limiters {
		if now.Sub(cl.lastAccess) > ttl {
			delete(rl.limiters, key)
		}
	}
}

// clientKey extracts the client address, ignoring the ephemeral port.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
