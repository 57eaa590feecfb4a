package netilion

import (
	"strings"
	"time"

	"github.com/pkg/errors"
)

const (
	defaultAPIPath   = "/v1"
	defaultTokenPath = "/oauth/token"
	defaultTimeout   = time.Second * 30
)

// Configuration holds everything needed to talk to a Netilion instance
type Configuration struct {
	// Endpoint is the scheme and host of the instance, eg.
	// https://api.netilion.endress.com.  Every request must target it.
	Endpoint string

	// ClientID doubles as the API key
	ClientID     string
	ClientSecret string

	Username string
	Password string

	// When both are set the client application is not looked up
	ApplicationID   int64
	ApplicationName string

	// Derived from Endpoint when empty
	APIURL   string
	TokenURL string

	// Per request timeout, zero means the default
	Timeout time.Duration
}

// NewConfiguration returns a configuration with the URLs derived from the
// endpoint
func NewConfiguration(endpoint, clientID, clientSecret, username, password string) Configuration {
	cfg := Configuration{
		Endpoint:     endpoint,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Username:     username,
		Password:     password,
	}

	return cfg.WithDefaults()
}

// WithDefaults fills in the URLs and timeout left empty
func (c Configuration) WithDefaults() Configuration {
	c.Endpoint = strings.TrimRight(c.Endpoint, "/")

	if c.APIURL == "" {
		c.APIURL = c.Endpoint + defaultAPIPath
	}
	c.APIURL = strings.TrimRight(c.APIURL, "/")

	if c.TokenURL == "" {
		c.TokenURL = c.Endpoint + defaultTokenPath
	}

	if c.Timeout == 0 {
		c.Timeout = defaultTimeout
	}

	return c
}

// Validate reports the first missing mandatory setting
func (c Configuration) Validate() error {
	required := []struct {
		name, value string
	}{
		{"endpoint", c.Endpoint},
		{"client id", c.ClientID},
		{"client secret", c.ClientSecret},
		{"username", c.Username},
		{"password", c.Password},
	}

	for _, r := range required {
		if r.value == "" {
			return errors.Errorf("netilion configuration: %s not set", r.name)
		}
	}

	c = c.WithDefaults()
	if !c.owns(c.APIURL) {
		return errors.Wrapf(ErrForeignURL, "API URL %s", c.APIURL)
	}
	if !c.owns(c.TokenURL) {
		return errors.Wrapf(ErrForeignURL, "token URL %s", c.TokenURL)
	}

	return nil
}

// owns reports whether url is on the configured endpoint.  A plain prefix
// check would also let https://host.local.example.com through.
func (c Configuration) owns(url string) bool {
	if c.Endpoint == "" || !strings.HasPrefix(url, c.Endpoint) {
		return false
	}

	rest := url[len(c.Endpoint):]
	return rest == "" || rest[0] == '/' || rest[0] == '?'
}

func (c Configuration) hasApplication() bool {
	return c.ApplicationID != 0 && c.ApplicationName != ""
}
