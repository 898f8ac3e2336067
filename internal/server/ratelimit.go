package server

import (
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/srinivastls/AADIS/internal/logging"
)

// Per-IP token-bucket defaults used when the config leaves them zero.
// Question answering is interactive: a sustained 10 rps with a burst of 20
// covers a human clicking around without letting one client monopolise the
// embedding backend behind /api/ask.
const (
	defaultRateLimit = 10
	defaultRateBurst = 20
)

// Sweep parameters for idle client entries. A client that has asked nothing
// for visitorTTL is forgotten, keeping the visitor map bounded.
const (
	sweepInterval = time.Minute
	visitorTTL    = 5 * time.Minute
)

// visitor is the limiter state for one client IP.
type visitor struct {
	bucket *rate.Limiter
	seen   time.Time
}

// rateLimiter enforces a per-IP token bucket on the protected QA routes.
// Rejections are counted in Prometheus so operators can tell one abusive
// client from genuine load.
type rateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rps      rate.Limit
	burst    int
	rejected prometheus.Counter
}

// newRateLimiter constructs a rateLimiter and starts its background sweep
// goroutine. The goroutine exits when the returned stop function is called.
func newRateLimiter(rps float64, burst int, rejected prometheus.Counter) (*rateLimiter, func()) {
	rl := &rateLimiter{
		visitors: make(map[string]*visitor),
		rps:      rate.Limit(rps),
		burst:    burst,
		rejected: rejected,
	}

	done := make(chan struct{})
	go rl.sweepLoop(done)

	return rl, func() { close(done) }
}

// allow reports whether the client may proceed, creating its bucket on first
// sight and refreshing its idle timer.
func (rl *rateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, ok := rl.visitors[ip]
	if !ok {
		v = &visitor{bucket: rate.NewLimiter(rl.rps, rl.burst)}
		rl.visitors[ip] = v
	}
	v.seen = time.Now()
	return v.bucket.Allow()
}

func (rl *rateLimiter) sweepLoop(done <-chan struct{}) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			rl.sweep(time.Now().Add(-visitorTTL))
		}
	}
}

// sweep drops every visitor not seen since the cutoff.
func (rl *rateLimiter) sweep(cutoff time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	for ip, v := range rl.visitors {
		if v.seen.Before(cutoff) {
			delete(rl.visitors, ip)
		}
	}
}

// middleware rejects over-limit requests with 429 and a Retry-After header
// before they reach the handler.
func (rl *rateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if !rl.allow(ip) {
			rl.rejected.Inc()
			logging.FromContext(r.Context()).Warn("rate limit exceeded",
				slog.String("ip", ip),
				slog.String("path", r.URL.Path),
			)
			w.Header().Set("Retry-After", "1")
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// clientIP strips the port from RemoteAddr. X-Forwarded-For is deliberately
// not consulted: the server binds to localhost, and any proxy in front of it
// should enforce its own limits.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
