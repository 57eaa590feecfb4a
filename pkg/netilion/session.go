package netilion

import (
	"bytes"
	"context"
	"io"
	"io/ioutil"
	"net/http"
	"net/url"
	"time"

	"github.com/go-openapi/runtime"
	"github.com/go-openapi/swag"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"

	"github.com/jake-scott/netilion-client/internal/pkg/logging"
	"github.com/jake-scott/netilion-client/version"
)

// Response is the raw result of a request
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// apiKeyTransport puts the API key and the user agent on every outgoing
// request, including the token exchange
type apiKeyTransport struct {
	apiKey string
	next   http.RoundTripper
}

func (t *apiKeyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	r.Header.Set("Api-Key", t.apiKey)
	r.Header.Set("User-Agent", version.UserAgent())

	return t.next.RoundTrip(r)
}

// Session performs authenticated requests against a single Netilion
// endpoint.  It fetches a bearer token on first use and fetches a new one
// once that expires.  A Session is not safe for concurrent use.
type Session struct {
	config  Configuration
	http    *http.Client
	oauth   *oauth2.Config
	token   *Token
	now     func() time.Time
	timeout time.Duration
}

// NewSession returns a session for cfg.  No request is made until the
// first call.
func NewSession(cfg Configuration) *Session {
	cfg = cfg.WithDefaults()

	return &Session{
		config: cfg,
		http: &http.Client{
			Transport: &apiKeyTransport{apiKey: cfg.ClientID, next: http.DefaultTransport},
		},
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint: oauth2.Endpoint{
				TokenURL:  cfg.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		now:     time.Now,
		timeout: cfg.Timeout,
	}
}

// WithTransport returns a copy of the session sending requests through rt
func (s *Session) WithTransport(rt http.RoundTripper) *Session {
	ns := *s
	ns.http = &http.Client{
		Transport: &apiKeyTransport{apiKey: s.config.ClientID, next: rt},
	}
	return &ns
}

// WithTimeout returns a copy of the session with a different per request
// timeout
func (s *Session) WithTimeout(d time.Duration) *Session {
	ns := *s
	ns.timeout = d
	return &ns
}

// Token returns the current token, nil before the first request
func (s *Session) Token() *Token {
	return s.token
}

// Configuration returns the effective configuration
func (s *Session) Configuration() Configuration {
	return s.config
}

// RequestOption customises a request
type RequestOption func(*requestOptions) error

type requestOptions struct {
	query       url.Values
	body        []byte
	contentType string
}

// WithQuery adds query parameters to the request URL
func WithQuery(q url.Values) RequestOption {
	return func(o *requestOptions) error {
		if o.query == nil {
			o.query = url.Values{}
		}
		for k, vs := range q {
			for _, v := range vs {
				o.query.Add(k, v)
			}
		}
		return nil
	}
}

// WithJSON sends v, encoded as JSON, as the request body
func WithJSON(v interface{}) RequestOption {
	return func(o *requestOptions) error {
		b, err := swag.WriteJSON(v)
		if err != nil {
			return errors.Wrap(err, "encoding request body")
		}

		o.body = b
		o.contentType = runtime.JSONMime
		return nil
	}
}

// WithBody sends body with the given content type
func WithBody(contentType string, body []byte) RequestOption {
	return func(o *requestOptions) error {
		o.body = body
		o.contentType = contentType
		return nil
	}
}

func (s *Session) makeContext() (context.Context, context.CancelFunc) {
	ctx := logging.WithTxnID(context.Background(), uuid.New().String())

	if s.timeout > 0 {
		return context.WithTimeout(ctx, s.timeout)
	}

	return context.WithCancel(ctx)
}

// Request performs a request against the configured endpoint.  The bearer
// token is fetched or renewed first, except for requests to the token URL
// itself.  The response is returned whatever its status, there are no
// retries.
func (s *Session) Request(method, rawURL string, opts ...RequestOption) (*Response, error) {
	ctx, cancel := s.makeContext()
	defer cancel()

	return s.do(ctx, method, rawURL, opts)
}

// Get, Post, Patch and Delete are Request plus timing diagnostics

func (s *Session) Get(rawURL string, opts ...RequestOption) (*Response, error) {
	return s.timed(http.MethodGet, rawURL, opts)
}

func (s *Session) Post(rawURL string, opts ...RequestOption) (*Response, error) {
	return s.timed(http.MethodPost, rawURL, opts)
}

func (s *Session) Patch(rawURL string, opts ...RequestOption) (*Response, error) {
	return s.timed(http.MethodPatch, rawURL, opts)
}

func (s *Session) Delete(rawURL string, opts ...RequestOption) (*Response, error) {
	return s.timed(http.MethodDelete, rawURL, opts)
}

func (s *Session) timed(method, rawURL string, opts []RequestOption) (*Response, error) {
	ctx, cancel := s.makeContext()
	defer cancel()

	start := time.Now()
	resp, err := s.do(ctx, method, rawURL, opts)
	took := time.Since(start)

	logging.Logger(ctx).WithFields(logrus.Fields{
		"logger":   "timing",
		"method":   method,
		"duration": took,
	}).Debugf("%s to %s took %.2f seconds", method, rawURL, took.Seconds())

	return resp, err
}

func (s *Session) do(ctx context.Context, method, rawURL string, opts []RequestOption) (*Response, error) {
	if !s.config.owns(rawURL) {
		return nil, errors.Wrapf(ErrForeignURL, "bad request to %s", rawURL)
	}

	isTokenURL := rawURL == s.config.TokenURL
	if !isTokenURL {
		if err := s.ensureToken(ctx); err != nil {
			return nil, err
		}
	}

	req, err := s.newRequest(ctx, method, rawURL, opts)
	if err != nil {
		return nil, err
	}

	if !isTokenURL {
		req.Header.Set("Authorization", "Bearer "+s.token.AccessToken)
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "%s %s", method, rawURL)
	}
	defer resp.Body.Close()

	body, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "reading response body")
	}

	logging.Logger(ctx).Debugf("%s %s: %d (%d bytes)", method, rawURL, resp.StatusCode, len(body))

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}, nil
}

func (s *Session) newRequest(ctx context.Context, method, rawURL string, opts []RequestOption) (*http.Request, error) {
	var ro requestOptions
	for _, opt := range opts {
		if err := opt(&ro); err != nil {
			return nil, err
		}
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing URL %s", rawURL)
	}

	if len(ro.query) > 0 {
		q := u.Query()
		for k, vs := range ro.query {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}

	var body io.Reader
	if ro.body != nil {
		body = bytes.NewReader(ro.body)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, errors.Wrapf(err, "creating %s request", method)
	}

	if ro.contentType != "" {
		req.Header.Set("Content-Type", ro.contentType)
	}
	req.Header.Set("Accept", runtime.JSONMime)

	return req, nil
}

func (s *Session) ensureToken(ctx context.Context) error {
	if s.token == nil {
		logging.Logger(ctx).Info("Getting new access token")
		return s.fetchToken(ctx)
	}

	now := s.now()
	if s.token.Expired(now) {
		logging.Logger(ctx).Infof("Refreshing token (expired %s ago)", now.Sub(s.token.Expiry()).Truncate(time.Second))
		return s.fetchToken(ctx)
	}

	if expiry := s.token.Expiry(); !expiry.IsZero() {
		logging.Logger(ctx).Debugf("Access token still valid for %s", expiry.Sub(now).Truncate(time.Second))
	}

	return nil
}

// The API has no refresh grant, a new token is always a new password
// grant
func (s *Session) fetchToken(ctx context.Context) error {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.http)

	tok, err := s.oauth.PasswordCredentialsToken(ctx, s.config.Username, s.config.Password)
	if err != nil {
		return errors.Wrap(err, "fetching access token")
	}

	t := tokenFrom(tok, s.now())
	s.token = &t

	logging.Logger(ctx).Debugf("new token: %s", t)
	return nil
}
