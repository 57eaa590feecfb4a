package netilion_test

import (
	"fmt"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/jake-scott/netilion-client/pkg/netilion"
)

func TestSessionFetchesTokenOnFirstRequest(t *testing.T) {
	f := newFakeNetilion(t)
	f.handle(http.MethodGet, "/assets", http.StatusOK, `{"assets": []}`)

	s := f.session()
	assert.Nil(t, s.Token())

	resp, err := s.Get(s.Configuration().APIURL + "/assets")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"assets": []}`, string(resp.Body))

	assert.Equal(t, 2, f.total())
	assert.Equal(t, 1, f.tokenCount())

	tok := s.Token()
	require.NotNil(t, tok)
	assert.Equal(t, "token-1", tok.AccessToken)
	assert.Equal(t, time.Hour, tok.TTL)
	assert.True(t, f.clock().Equal(tok.IssuedAt))
	assert.NotContains(t, tok.String(), "token-1")

	assert.Equal(t, "Bearer token-1", f.lastRequest().Header.Get("Authorization"))
}

func TestSessionRefreshesExpiredToken(t *testing.T) {
	f := newFakeNetilion(t)
	f.handle(http.MethodGet, "/assets", http.StatusOK, `{"assets": []}`)

	s := f.session()
	u := s.Configuration().APIURL + "/assets"

	_, err := s.Get(u)
	require.NoError(t, err)

	f.advance(59 * time.Minute)
	_, err = s.Get(u)
	require.NoError(t, err)
	assert.Equal(t, 1, f.tokenCount())
	assert.Equal(t, 3, f.total())

	f.advance(time.Minute)
	_, err = s.Get(u)
	require.NoError(t, err)
	assert.Equal(t, 2, f.tokenCount())
	assert.Equal(t, 5, f.total())
	assert.Equal(t, "Bearer token-2", f.lastRequest().Header.Get("Authorization"))

	_, err = s.Get(u)
	require.NoError(t, err)
	assert.Equal(t, 2, f.tokenCount())
}

func TestSessionTokenWithoutLifetimeNeverExpires(t *testing.T) {
	f := newFakeNetilion(t)
	f.ttl = 0
	f.handle(http.MethodGet, "/assets", http.StatusOK, `{"assets": []}`)

	s := f.session()
	u := s.Configuration().APIURL + "/assets"

	_, err := s.Get(u)
	require.NoError(t, err)

	f.advance(24 * 365 * time.Hour)
	_, err = s.Get(u)
	require.NoError(t, err)
	assert.Equal(t, 1, f.tokenCount())
}

func TestSessionSendsAPIKeyEverywhere(t *testing.T) {
	f := newFakeNetilion(t)
	f.handle(http.MethodGet, "/assets", http.StatusOK, `{"assets": []}`)
	f.handle(http.MethodPost, "/assets", http.StatusCreated, `{"id": 1}`)

	s := f.session()
	_, err := s.Get(s.Configuration().APIURL + "/assets")
	require.NoError(t, err)
	_, err = s.Post(s.Configuration().APIURL+"/assets", netilion.WithJSON(map[string]string{"serial_number": "X"}))
	require.NoError(t, err)

	requests := f.allRequests()
	require.Len(t, requests, 3)
	for _, r := range requests {
		assert.Equal(t, testClientID, r.Header.Get("Api-Key"), "%s %s", r.Method, r.URL.Path)
		assert.Equal(t, "netilion-client/dev", r.Header.Get("User-Agent"), "%s %s", r.Method, r.URL.Path)
	}
}

func TestSessionRejectsForeignURLs(t *testing.T) {
	f := newFakeNetilion(t)
	s := f.session()

	for _, u := range []string{
		"https://elsewhere.example.com/v1/assets",
		f.server.URL + ".evil.example.com/v1/assets",
		f.server.URL + "0/v1/assets",
		"/v1/assets",
	} {
		_, err := s.Get(u)
		assert.True(t, errors.Is(err, netilion.ErrForeignURL), u)
		assert.False(t, errors.Is(err, netilion.ErrAPI), u)
	}

	assert.Equal(t, 0, f.total())
	assert.Nil(t, s.Token())
}

func TestSessionBypassesTokenForTokenURL(t *testing.T) {
	f := newFakeNetilion(t)
	s := f.session()

	form := url.Values{}
	form.Set("grant_type", "password")
	form.Set("username", testUsername)
	form.Set("password", testPassword)
	form.Set("client_id", testClientID)
	form.Set("client_secret", testClientSecret)

	resp, err := s.Post(s.Configuration().TokenURL, netilion.WithBody("application/x-www-form-urlencoded", []byte(form.Encode())))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, 1, f.total())
	assert.Empty(t, f.lastRequest().Header.Get("Authorization"))
	assert.Equal(t, testClientID, f.lastRequest().Header.Get("Api-Key"))
	assert.Nil(t, s.Token())
}

func TestSessionTokenFailure(t *testing.T) {
	f := newFakeNetilion(t)
	f.failTokens = true
	f.handle(http.MethodGet, "/assets", http.StatusOK, `{"assets": []}`)

	s := f.session()
	_, err := s.Get(s.Configuration().APIURL + "/assets")
	require.Error(t, err)

	var retrieveErr *oauth2.RetrieveError
	assert.True(t, errors.As(err, &retrieveErr))
	assert.Equal(t, 0, f.hitCount("GET /v1/assets"))
}

func TestSessionReturnsResponsesUntouched(t *testing.T) {
	f := newFakeNetilion(t)
	f.handle(http.MethodGet, "/assets", http.StatusInternalServerError, `boom`)

	s := f.session()
	resp, err := s.Get(s.Configuration().APIURL + "/assets")
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "boom", string(resp.Body))
	assert.Equal(t, 1, f.hitCount("GET /v1/assets"))
}

func TestSessionQueryAndBody(t *testing.T) {
	f := newFakeNetilion(t)
	f.handleFunc(http.MethodPatch, "/nodes/3/specifications", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1", r.URL.Query().Get("a"))
		assert.Equal(t, "2", r.URL.Query().Get("b"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusNoContent)
	})

	s := f.session()
	q := url.Values{}
	q.Set("b", "2")

	resp, err := s.Patch(s.Configuration().APIURL+"/nodes/3/specifications?a=1", netilion.WithQuery(q), netilion.WithJSON(map[string]int{"x": 1}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestSessionTimeout(t *testing.T) {
	f := newFakeNetilion(t)
	f.handleFunc(http.MethodGet, "/assets", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
		writeJSON(w, http.StatusOK, `{"assets": []}`)
	})

	s := f.session().WithTimeout(100 * time.Millisecond)
	_, err := s.Get(s.Configuration().APIURL + "/assets")
	assert.Error(t, err)
	assert.Equal(t, 1, f.tokenCount())
}

func TestSessionLogsRequestDuration(t *testing.T) {
	f := newFakeNetilion(t)
	f.handle(http.MethodGet, "/assets", http.StatusOK, `{"assets": []}`)

	level := logrus.GetLevel()
	logrus.SetLevel(logrus.DebugLevel)
	hook := test.NewGlobal()
	t.Cleanup(func() {
		hook.Reset()
		logrus.SetLevel(level)
	})

	s := f.session()
	_, err := s.Get(s.Configuration().APIURL + "/assets")
	require.NoError(t, err)

	var timing *logrus.Entry
	for _, e := range hook.AllEntries() {
		if e.Data["logger"] == "timing" {
			timing = e
		}
	}
	require.NotNil(t, timing)

	took, ok := timing.Data["duration"].(time.Duration)
	require.True(t, ok)
	assert.Contains(t, timing.Message, fmt.Sprintf("took %.2f seconds", took.Seconds()))
}
