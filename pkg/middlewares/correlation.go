package middlewares

import (
	"net/http"
	"regexp"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/jake-scott/netilion-client/internal/pkg/logging"
)

var correlationIDRegexp = regexp.MustCompile(`^[\w-]{3,64}$`)

// CorrelationMw echoes a caller supplied correlation ID, or one of its own
// making, in the response and makes it available to the request logger
type CorrelationMw struct {
	headerName string
	next       http.Handler
}

func NewCorrelationMw(headerName string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return NewCorrelation(headerName, next)
	}
}

func NewCorrelation(headerName string, next http.Handler) *CorrelationMw {
	return &CorrelationMw{headerName: http.CanonicalHeaderKey(headerName), next: next}
}

func (mw *CorrelationMw) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	id := mw.correlationID(r)

	rw.Header().Set(mw.headerName, id)
	r = r.WithContext(logging.WithCorrelationID(r.Context(), id))

	mw.next.ServeHTTP(rw, r)
}

// Netilion does not send one, so most IDs are generated here
func (mw *CorrelationMw) correlationID(r *http.Request) string {
	ids, ok := r.Header[mw.headerName]
	if !ok || len(ids) == 0 {
		return uuid.New().String()
	}

	if correlationIDRegexp.MatchString(ids[0]) {
		return ids[0]
	}

	return "<Bad_Correlation_Id>"
}
