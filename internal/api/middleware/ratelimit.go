package middleware

import (
	"crm-rep/internal/config"
	"encoding/json"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// minIdleTTL bounds how soon an idle client's bucket may be forgotten.
const minIdleTTL = time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiterMiddleware keeps one token bucket per client IP.
type RateLimiterMiddleware struct {
	cfg    config.RateLimitConfig
	logger *slog.Logger
	now    func() time.Time

	mu       sync.Mutex
	visitors map[string]*visitor
}

func NewRateLimiterMiddleware(cfg config.RateLimitConfig, logger *slog.Logger) *RateLimiterMiddleware {
	return &RateLimiterMiddleware{
		cfg:      cfg,
		logger:   logger.With("component", "RateLimiter"),
		now:      time.Now,
		visitors: make(map[string]*visitor),
	}
}

func (rl *RateLimiterMiddleware) allow(ip string) bool {
	now := rl.now()

	rl.mu.Lock()
	v, ok := rl.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rate.Limit(rl.cfg.RPS), rl.cfg.Burst)}
		rl.visitors[ip] = v
	}
	v.lastSeen = now
	rl.mu.Unlock()

	return v.limiter.AllowN(now, 1)
}

// idleTTL is how long a bucket needs to refill completely, at least minIdleTTL.
func (rl *RateLimiterMiddleware) idleTTL() time.Duration {
	if rl.cfg.RPS <= 0 {
		return minIdleTTL
	}
	refill := time.Duration(float64(rl.cfg.Burst) / rl.cfg.RPS * float64(time.Second))
	return max(refill, minIdleTTL)
}

// Cleanup forgets clients that have been idle long enough for their bucket to
// be full again and reports how many were removed.
func (rl *RateLimiterMiddleware) Cleanup() int {
	cutoff := rl.now().Add(-rl.idleTTL())

	rl.mu.Lock()
	defer rl.mu.Unlock()

	removed := 0
	for ip, v := range rl.visitors {
		if v.lastSeen.Before(cutoff) {
			delete(rl.visitors, ip)
			removed++
		}
	}
	return removed
}

// Tracked reports how many clients currently hold a bucket.
func (rl *RateLimiterMiddleware) Tracked() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.visitors)
}

// retryAfter is the wait for one token, rounded up to whole seconds.
func (rl *RateLimiterMiddleware) retryAfter() string {
	if rl.cfg.RPS <= 0 {
		return "1"
	}
	return strconv.Itoa(int(math.Max(1, math.Ceil(1/rl.cfg.RPS))))
}

func (rl *RateLimiterMiddleware) extractIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xRealIP := r.Header.Get("X-Real-IP"); xRealIP != "" {
		return xRealIP
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

func (rl *RateLimiterMiddleware) Middleware(next http.Handler) http.Handler {
	if !rl.cfg.Enabled {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := rl.extractIP(r)
		if rl.allow(ip) {
			next.ServeHTTP(w, r)
			return
		}

		rl.logger.WarnContext(r.Context(), "Rate limit exceeded", "ip", ip, "path", r.URL.Path)
		w.Header().Set("Retry-After", rl.retryAfter())
		writeJSONError(w, http.StatusTooManyRequests, "Rate limit exceeded")
	})
}

// writeJSONError writes the {"error":{"message":...}} body the handlers use.
func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]map[string]string{
		"error": {"message": message},
	})
}
