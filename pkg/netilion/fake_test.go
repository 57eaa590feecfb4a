package netilion_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"

	"github.com/jake-scott/netilion-client/pkg/netilion"
)

const (
	testClientID     = "client-id"
	testClientSecret = "client-secret"
	testUsername     = "user@example.com"
	testPassword     = "hunter2"
)

// fakeNetilion is a Netilion instance with a password grant token endpoint
// and whatever API routes a test registers
type fakeNetilion struct {
	t      *testing.T
	router *mux.Router
	server *httptest.Server

	mu         sync.Mutex
	now        time.Time
	ttl        int
	failTokens bool
	tokens     int
	hits       map[string]int
	requests   []*http.Request
}

func newFakeNetilion(t *testing.T) *fakeNetilion {
	f := &fakeNetilion{
		t:    t,
		now:  time.Date(2021, 3, 4, 5, 6, 7, 0, time.UTC),
		ttl:  3600,
		hits: map[string]int{},
	}

	f.router = mux.NewRouter()
	f.router.HandleFunc("/oauth/token", f.token).Methods(http.MethodPost)

	f.server = httptest.NewServer(f.record(f.router))
	t.Cleanup(f.server.Close)

	return f
}

func (f *fakeNetilion) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.hits[r.Method+" "+r.URL.Path]++
		f.requests = append(f.requests, r.Clone(r.Context()))
		f.mu.Unlock()

		next.ServeHTTP(w, r)
	})
}

func (f *fakeNetilion) token(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failTokens {
		writeJSON(w, http.StatusUnauthorized, `{"error": "invalid_grant"}`)
		return
	}

	assert.NoError(f.t, r.ParseForm())
	assert.Equal(f.t, "password", r.PostForm.Get("grant_type"))
	assert.Equal(f.t, testUsername, r.PostForm.Get("username"))
	assert.Equal(f.t, testPassword, r.PostForm.Get("password"))
	assert.Equal(f.t, testClientID, r.PostForm.Get("client_id"))
	assert.Equal(f.t, testClientSecret, r.PostForm.Get("client_secret"))

	f.tokens++
	tok := map[string]interface{}{
		"access_token": tokenName(f.tokens),
		"token_type":   "Bearer",
		"created_at":   f.now.Unix(),
	}
	if f.ttl > 0 {
		tok["expires_in"] = f.ttl
	}

	b, _ := json.Marshal(tok)
	writeJSON(w, http.StatusOK, string(b))
}

func tokenName(n int) string {
	return "token-" + strconv.Itoa(n)
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

// handle serves a canned response for method and an API path
func (f *fakeNetilion) handle(method, path string, status int, body string) {
	f.router.HandleFunc("/v1"+path, func(w http.ResponseWriter, r *http.Request) {
		if status == http.StatusNoContent {
			w.WriteHeader(status)
			return
		}
		writeJSON(w, status, body)
	}).Methods(method)
}

// handleFunc serves an API path with a custom handler
func (f *fakeNetilion) handleFunc(method, path string, h http.HandlerFunc) {
	f.router.HandleFunc("/v1"+path, h).Methods(method)
}

func (f *fakeNetilion) config() netilion.Configuration {
	return netilion.NewConfiguration(f.server.URL, testClientID, testClientSecret, testUsername, testPassword)
}

func (f *fakeNetilion) clock() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeNetilion) advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func (f *fakeNetilion) session() *netilion.Session {
	s := netilion.NewSession(f.config())
	s.SetClock(f.clock)
	return s
}

func (f *fakeNetilion) client() *netilion.Client {
	c := netilion.NewClient(f.config())
	c.Session().SetClock(f.clock)
	return c
}

func (f *fakeNetilion) hitCount(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[key]
}

func (f *fakeNetilion) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func (f *fakeNetilion) tokenCount() int {
	return f.hitCount("POST /oauth/token")
}

func (f *fakeNetilion) lastRequest() *http.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		return nil
	}
	return f.requests[len(f.requests)-1]
}

func (f *fakeNetilion) allRequests() []*http.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*http.Request{}, f.requests...)
}
