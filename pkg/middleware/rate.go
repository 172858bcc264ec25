package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/ordersync/ordersync/pkg/response"
)

type bucket struct {
	tokens   float64
	lastSeen time.Time
}

// RateLimit enforces a per-client-IP token bucket of rps requests per second
// with the given burst. Idle buckets are dropped after a minute.
func RateLimit(rps float64, burst float64) func(http.Handler) http.Handler {
	var (
		mu      sync.Mutex
		buckets = map[string]*bucket{}
	)

	go func() {
		for range time.Tick(time.Minute) {
			mu.Lock()
			for ip, b := range buckets {
				if time.Since(b.lastSeen) > time.Minute {
					delete(buckets, ip)
				}
			}
			mu.Unlock()
		}
	}()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				ip = r.RemoteAddr
			}

			mu.Lock()
			b, ok := buckets[ip]
			now := time.Now()
			if !ok {
				b = &bucket{tokens: burst, lastSeen: now}
				buckets[ip] = b
			}
			b.tokens += now.Sub(b.lastSeen).Seconds() * rps
			if b.tokens > burst {
				b.tokens = burst
			}
			b.lastSeen = now

			allowed := b.tokens >= 1
			if allowed {
				b.tokens--
			}
			mu.Unlock()

			if !allowed {
				response.Error(w, http.StatusTooManyRequests, "too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
