package middlewares

import (
	"net/http"

	"github.com/gorilla/mux"
	"golang.org/x/time/rate"

	"github.com/jake-scott/netilion-client/internal/pkg/logging"
)

// RateLimitMw rejects requests beyond the limiter's rate with a 429
type RateLimitMw struct {
	limiter *rate.Limiter
	next    http.Handler
}

// NewRateLimitMw allows perSecond requests per second with bursts of
// burst.  All routes of the router share the one limiter.
func NewRateLimitMw(perSecond float64, burst int) mux.MiddlewareFunc {
	limiter := rate.NewLimiter(rate.Limit(perSecond), burst)

	return func(next http.Handler) http.Handler {
		return NewRateLimit(limiter, next)
	}
}

func NewRateLimit(limiter *rate.Limiter, next http.Handler) *RateLimitMw {
	return &RateLimitMw{limiter: limiter, next: next}
}

func (mw *RateLimitMw) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	if !mw.limiter.Allow() {
		logging.Logger(r.Context()).Warnf("rate limit exceeded for %s", r.RemoteAddr)
		rw.Header().Set("Retry-After", "1")
		WriteError(rw, http.StatusTooManyRequests, "rate limit exceeded")
		return
	}

	mw.next.ServeHTTP(rw, r)
}
