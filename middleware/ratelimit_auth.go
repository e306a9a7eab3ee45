package middleware

import (
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"smartoffice-console/metrics"
	"smartoffice-console/utils"
)

// RateLimitAuth limits login attempts per client IP. Without Redis it lets
// every request through.
type RateLimitAuth struct {
	Redis       *redis.Client
	MaxAttempts int64
	Window      time.Duration
}

func NewRateLimitAuth(redisClient *redis.Client, maxAttempts, windowSecs int64) *RateLimitAuth {
	return &RateLimitAuth{
		Redis:       redisClient,
		MaxAttempts: maxAttempts,
		Window:      time.Duration(windowSecs) * time.Second,
	}
}

// ClientIP prefers X-Real-IP, then the first X-Forwarded-For hop, then the
// peer address.
func ClientIP(r *http.Request) string {
	clientIP := r.RemoteAddr
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		clientIP = strings.TrimSpace(parts[0])
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		clientIP = xri
	}
	if host, _, err := net.SplitHostPort(clientIP); err == nil {
		clientIP = host
	}
	return clientIP
}

func (rl *RateLimitAuth) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rl.Redis == nil {
			next.ServeHTTP(w, r)
			return
		}

		key := fmt.Sprintf("rl:login:%s", ClientIP(r))
		ctx := r.Context()

		val, err := rl.Redis.Incr(ctx, key).Result()
		if err != nil {
			// Fail open.
			next.ServeHTTP(w, r)
			return
		}
		if val == 1 {
			rl.Redis.Expire(ctx, key, rl.Window)
		}

		if val > rl.MaxAttempts {
			metrics.AuthRateLimited(r.URL.Path)
			ttl, _ := rl.Redis.TTL(ctx, key).Result()
			w.Header().Set("Retry-After", fmt.Sprintf("%d", int(ttl.Seconds())))
			utils.WriteError(w, http.StatusTooManyRequests, "Too many login attempts. Please try again later.")
			return
		}

		next.ServeHTTP(w, r)
	})
}
