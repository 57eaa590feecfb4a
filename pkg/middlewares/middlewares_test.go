package middlewares

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jake-scott/netilion-client/internal/pkg/logging"
)

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusAccepted)
	_, _ = w.Write([]byte("ok"))
}

func serve(h http.Handler, r *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	return rec
}

func TestCorrelation(t *testing.T) {
	var seen string
	h := NewCorrelation("X-Correlation-ID", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = logging.Logger(r.Context()).Data["correlationid"].(string)
	}))

	tests := []struct {
		name   string
		header string
		want   string
	}{
		{name: "supplied", header: "abc-123", want: "abc-123"},
		{name: "bad", header: "not valid!", want: "<Bad_Correlation_Id>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/webhook", nil)
			r.Header.Set("X-Correlation-ID", tt.header)

			rec := serve(h, r)
			assert.Equal(t, tt.want, rec.Header().Get("X-Correlation-ID"))
			assert.Equal(t, tt.want, seen)
		})
	}

	rec := serve(h, httptest.NewRequest(http.MethodPost, "/webhook", nil))
	assert.Len(t, rec.Header().Get("X-Correlation-ID"), 36)
	assert.Equal(t, rec.Header().Get("X-Correlation-ID"), seen)
}

func TestRecovery(t *testing.T) {
	panics := prometheus.NewCounter(prometheus.CounterOpts{Name: "panics"})
	h := NewRecovery(panics, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"status": 500, "error": "Internal Server Error"}`, rec.Body.String())
	assert.Equal(t, 1.0, testutil.ToFloat64(panics))

	rec = serve(NewRecovery(nil, http.HandlerFunc(okHandler)), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusAccepted, rec.Code)
}

func TestRateLimit(t *testing.T) {
	r := mux.NewRouter()
	r.Use(NewRateLimitMw(0.001, 2))
	r.HandleFunc("/webhook", okHandler)

	codes := []int{}
	for i := 0; i < 3; i++ {
		codes = append(codes, serve(r, httptest.NewRequest(http.MethodPost, "/webhook", nil)).Code)
	}

	assert.Equal(t, []int{http.StatusAccepted, http.StatusAccepted, http.StatusTooManyRequests}, codes)
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := NewMetrics(reg)
	require.NoError(t, err)

	r := mux.NewRouter()
	r.Use(NewMetricsMw(metrics))
	r.HandleFunc("/assets/{id}", okHandler)

	serve(r, httptest.NewRequest(http.MethodGet, "/assets/1", nil))
	serve(r, httptest.NewRequest(http.MethodGet, "/assets/2", nil))

	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.Requests.WithLabelValues("/assets/{id}", http.MethodGet, "202")))
	assert.Equal(t, 1, testutil.CollectAndCount(metrics.Latency))

	_, err = NewMetrics(reg)
	assert.Error(t, err)
}

func TestLogging(t *testing.T) {
	var txnID string
	h := NewLogging(true, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := logging.TxnID(r.Context())
		require.True(t, ok)
		txnID = id

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		okHandler(w, r)
	}))

	rec := serve(h, httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(`{"event_type": "x"}`)))
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
	assert.Equal(t, txnID, rec.Header().Get("X-Txn-ID"))
}

func TestCors(t *testing.T) {
	h := NewCors(CorsOptions([]string{"https://dashboard.example.com"}), http.HandlerFunc(okHandler))

	r := httptest.NewRequest(http.MethodGet, "/status", nil)
	r.Header.Set("Origin", "https://dashboard.example.com")
	rec := serve(h, r)
	assert.Equal(t, "https://dashboard.example.com", rec.Header().Get("Access-Control-Allow-Origin"))

	r = httptest.NewRequest(http.MethodGet, "/status", nil)
	r.Header.Set("Origin", "https://evil.example.com")
	rec = serve(h, r)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCaptureTruncates(t *testing.T) {
	var c capture
	c.keep([]byte("abc"))
	assert.Equal(t, "abc", c.String())

	c.keep([]byte(strings.Repeat("x", maxLoggedPayload)))
	assert.Equal(t, maxLoggedPayload, c.Len())
	assert.True(t, strings.HasSuffix(c.String(), "x..."))

	c.keep([]byte("more"))
	assert.Equal(t, maxLoggedPayload, c.Len())
}

func TestStatusRecorder(t *testing.T) {
	w := httptest.NewRecorder()
	rec := newStatusRecorder(w, true)

	rec.WriteHeader(http.StatusTeapot)
	_, err := rec.Write([]byte("short and stout"))
	require.NoError(t, err)

	assert.Equal(t, http.StatusTeapot, rec.status)
	assert.Equal(t, 15, rec.size)
	assert.Equal(t, "short and stout", rec.body.String())
	assert.Equal(t, "short and stout", w.Body.String())
}
