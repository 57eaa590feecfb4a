package middlewares

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/jake-scott/netilion-client/internal/pkg/logging"
)

// LoggingMw tags each request with a transaction ID, returned in the
// X-Txn-ID header, and writes one audit entry once the request is served.
// With logPayloads the start of both bodies is logged at debug level.
type LoggingMw struct {
	logPayloads bool
	next        http.Handler
}

func NewLoggingMw(logPayloads bool) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return NewLogging(logPayloads, next)
	}
}

func NewLogging(logPayloads bool, next http.Handler) *LoggingMw {
	return &LoggingMw{logPayloads: logPayloads, next: next}
}

func (mw *LoggingMw) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	start := time.Now()
	txnID := uuid.New().String()

	// must precede the first write
	rw.Header().Set("X-Txn-ID", txnID)
	r = r.WithContext(logging.WithTxnID(r.Context(), txnID))

	requestBody := &capture{}
	if mw.logPayloads && r.Body != nil {
		r.Body = capturingBody{ReadCloser: r.Body, seen: requestBody}
	}

	rec := newStatusRecorder(rw, mw.logPayloads)
	mw.next.ServeHTTP(rec, r)

	log := logging.Logger(r.Context())
	if mw.logPayloads {
		log.WithFields(logrus.Fields{
			"request_headers":  r.Header,
			"request_body":     requestBody.String(),
			"response_headers": rec.Header(),
			"response_body":    rec.body.String(),
		}).Debug("payloads")
	}

	log.WithFields(logrus.Fields{
		"entrytype": "audit",
		"method":    r.Method,
		"route":     routeTemplate(r),
		"path":      r.URL.String(),
		"remote":    r.RemoteAddr,
		"proto":     r.Proto,
		"status":    rec.status,
		"size":      rec.size,
		"duration":  time.Since(start).String(),
	}).Info(http.StatusText(rec.status))
}
