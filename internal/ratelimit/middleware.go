package ratelimit

import (
	"math"
	"net"
	"net/http"
	"strconv"
)

// KeyFunc extracts the rate limit key from a request.
type KeyFunc func(r *http.Request) string

// ClientIP keys requests by remote host. Behind chi's RealIP middleware this
// is the forwarded client address.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// Middleware rejects requests over the limit with 429 and a Retry-After
// header. The body is written by onLimit so callers can keep their
// response envelope.
func Middleware(krl *KeyedRateLimiter, key KeyFunc, onLimit func(w http.ResponseWriter, r *http.Request)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			k := key(r)
			if krl.Allow(k) {
				next.ServeHTTP(w, r)
				return
			}

			secs := int(math.Ceil(krl.RetryAfter(k).Seconds()))
			w.Header().Set("Retry-After", strconv.Itoa(max(secs, 1)))
			onLimit(w, r)
		})
	}
}
