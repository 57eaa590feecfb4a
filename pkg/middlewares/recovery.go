package middlewares

import (
	"net/http"
	"runtime/debug"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/jake-scott/netilion-client/internal/pkg/logging"
)

// RecoveryMw turns a panicking handler into a 500 response
type RecoveryMw struct {
	panics prometheus.Counter
	next   http.Handler
}

// NewRecoveryMw counts recovered panics in panics, which may be nil
func NewRecoveryMw(panics prometheus.Counter) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return NewRecovery(panics, next)
	}
}

func NewRecovery(panics prometheus.Counter, next http.Handler) *RecoveryMw {
	return &RecoveryMw{panics: panics, next: next}
}

func (mw *RecoveryMw) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	defer func() {
		if err := recover(); err != nil {
			logging.Logger(r.Context()).Errorf("caught panic: %v : %s", err, debug.Stack())

			if mw.panics != nil {
				mw.panics.Inc()
			}

			WriteError(rw, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		}
	}()

	mw.next.ServeHTTP(rw, r)
}
