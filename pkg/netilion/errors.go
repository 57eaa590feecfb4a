package netilion

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Error kinds. Every *APIError matches ErrAPI as well as its own kind, so
// callers may test for the family or for one member of it with errors.Is.
var (
	ErrAPI               = errors.New("netilion api error")
	ErrMalformedRequest  = errors.New("malformed netilion api request")
	ErrMalformedResponse = errors.New("malformed netilion api response")
	ErrInvalidState      = errors.New("invalid netilion api state")
	ErrPermissionDenied  = errors.New("netilion api permission denied")
	ErrQuotaExceeded     = errors.New("netilion api quota exceeded")
)

// ErrForeignURL is returned before any network activity when a request
// targets a URL outside the configured endpoint.
var ErrForeignURL = errors.New("not a netilion url")

const maxBodyInError = 256

// APIError is a classified failure of a Netilion API call
type APIError struct {
	// Kind is one of the ErrXXX sentinels of this package
	Kind error

	// Response is the triggering response, if there was one
	Response *Response

	// Msg is a description used when there is no response to render
	Msg string

	// Err is the underlying cause, if any
	Err error
}

func newAPIError(kind error, resp *Response) *APIError {
	return &APIError{Kind: kind, Response: resp}
}

func apiErrorf(kind error, format string, args ...interface{}) *APIError {
	return &APIError{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func (e *APIError) Error() string {
	kind := e.Kind
	if kind == nil {
		kind = ErrAPI
	}

	var sb strings.Builder
	sb.WriteString(kind.Error())

	if detail := e.detail(); detail != "" {
		sb.WriteString(": ")
		sb.WriteString(detail)
	}

	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}

	return sb.String()
}

// The API's own errors array wins over everything else, then a short
// status+body summary, then the free text message.
func (e *APIError) detail() string {
	if e.Response == nil {
		return e.Msg
	}

	if apiErrs := e.Response.apiErrors(); apiErrs != "" {
		return apiErrs
	}

	body := strings.TrimSpace(string(e.Response.Body))
	if body == "" {
		return fmt.Sprintf("HTTP %d", e.Response.StatusCode)
	}

	if len(body) > maxBodyInError {
		body = body[:maxBodyInError] + "..."
	}

	return fmt.Sprintf("HTTP %d: %s", e.Response.StatusCode, body)
}

// Is reports whether target is ErrAPI or the kind of this error
func (e *APIError) Is(target error) bool {
	if target == ErrAPI {
		return true
	}

	return e.Kind != nil && target == e.Kind
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// apiErrors returns the compacted `errors` member of a JSON body, or an
// empty string if the body is not JSON or has no such member
func (r *Response) apiErrors() string {
	var envelope struct {
		Errors json.RawMessage `json:"errors"`
	}

	if err := json.Unmarshal(r.Body, &envelope); err != nil || len(envelope.Errors) == 0 {
		return ""
	}

	return compactJSON(envelope.Errors)
}

func compactJSON(raw []byte) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}

	return buf.String()
}

// statusError classifies a write response by its status code.  With no
// expected codes any 2xx status is a success.
func statusError(resp *Response, expected ...int) error {
	if len(expected) == 0 {
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return nil
		}
	}

	for _, code := range expected {
		if resp.StatusCode == code {
			return nil
		}
	}

	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		return newAPIError(ErrMalformedRequest, resp)
	}

	return newAPIError(ErrInvalidState, resp)
}
