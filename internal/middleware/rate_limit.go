package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"clientflow/leadboard/internal/common"
	"clientflow/leadboard/internal/config"

	"golang.org/x/time/rate"
)

// ipLimiters hands out one token bucket per client IP.
type ipLimiters struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      rate.Limit
	burst    int
}

func (l *ipLimiters) get(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if limiter, exists := l.limiters[ip]; exists {
		return limiter
	}
	limiter := rate.NewLimiter(l.rps, l.burst)
	l.limiters[ip] = limiter
	return limiter
}

// RateLimitMiddleware limits each client IP to cfg.RequestsPerSecond with bursts of cfg.Burst.
// Loopback callers are not limited.
func RateLimitMiddleware(cfg config.RateLimitConfig) func(http.Handler) http.Handler {
	pool := &ipLimiters{
		limiters: make(map[string]*rate.Limiter),
		rps:      rate.Limit(cfg.RequestsPerSecond),
		burst:    max(cfg.Burst, 1),
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				ip = r.RemoteAddr
			}
			if parsed := net.ParseIP(ip); parsed != nil && parsed.IsLoopback() {
				next.ServeHTTP(w, r)
				return
			}

			if !pool.get(ip).Allow() {
				common.RespondError(w, time.Now(), nil, "Too many requests", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
