package netilion

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/jake-scott/netilion-client/internal/pkg/logging"
)

// Netilion wants millisecond precision and a literal UTC designator
const timestampLayout = "2006-01-02T15:04:05.000Z"

// KeyError reports a required member missing from an API payload
type KeyError struct {
	Entity string
	Key    string
}

func (e *KeyError) Error() string {
	return fmt.Sprintf("%s: missing key '%s'", e.Entity, e.Key)
}

func missing(entity, key string) error {
	return &KeyError{Entity: entity, Key: key}
}

type errorRule struct {
	errorType string
	kind      error
}

// Checked in order, the first matching type decides the kind
var errorRules = []errorRule{
	{"not_found_no_permission", ErrPermissionDenied},
	{"quota_exceeded", ErrQuotaExceeded},
}

// RegisterErrorType maps an API error type onto one of the error kinds of
// this package.  Unregistered types are reported as ErrAPI.  It is not
// safe to call concurrently with API calls and belongs in an init function.
func RegisterErrorType(errorType string, kind error) {
	errorRules = append(errorRules, errorRule{errorType, kind})
}

// RaiseErrors inspects a response body for an error envelope and returns
// the matching *APIError.  Bodies that are not JSON objects, or that have
// no `errors` member, are not envelopes and yield nil.
func RaiseErrors(body []byte) error {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil
	}

	raw, ok := envelope["errors"]
	if !ok {
		return nil
	}

	payload := compactJSON(raw)

	var entries []map[string]interface{}
	if err := json.Unmarshal(raw, &entries); err != nil {
		return &APIError{Kind: ErrMalformedResponse, Msg: payload, Err: err}
	}

	types := make(map[string]bool, len(entries))
	for _, entry := range entries {
		t, ok := entry["type"]
		if !ok {
			return &APIError{Kind: ErrMalformedResponse, Msg: payload}
		}

		types[fmt.Sprint(t)] = true
	}

	for _, rule := range errorRules {
		if types[rule.errorType] {
			return &APIError{Kind: rule.kind, Msg: payload}
		}
	}

	return &APIError{Kind: ErrAPI, Msg: payload}
}

// ParseFromAPI checks body for an error envelope and decodes it into v.
// A missing required member is reported as ErrMalformedResponse, any other
// decoding failure is returned as is.
func ParseFromAPI(body []byte, v interface{}) error {
	if err := RaiseErrors(body); err != nil {
		return err
	}

	return decode(body, v)
}

// ParseMultipleFromAPI checks body for an error envelope and decodes the
// array found under key.
func ParseMultipleFromAPI[T any](body []byte, key string) ([]T, error) {
	if err := RaiseErrors(body); err != nil {
		return nil, err
	}

	return decodeMultiple[T](body, key)
}

func decodeMultiple[T any](body []byte, key string) ([]T, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, err
	}

	raw, ok := envelope[key]
	if !ok {
		logging.Logger(nil).Warnf("no '%s' in API response", key)
		return nil, &APIError{Kind: ErrMalformedResponse, Err: missing("response", key)}
	}

	items := []T{}
	if err := decode(raw, &items); err != nil {
		return nil, err
	}

	if items == nil {
		items = []T{}
	}

	return items, nil
}

func decode(data []byte, v interface{}) error {
	err := json.Unmarshal(data, v)

	var keyErr *KeyError
	if errors.As(err, &keyErr) {
		logging.Logger(nil).Warnf("unable to decode %s: missing key '%s'", keyErr.Entity, keyErr.Key)
		return &APIError{Kind: ErrMalformedResponse, Err: keyErr}
	}

	if err != nil {
		logging.Logger(nil).WithError(err).Error("decoding API response")
	}

	return err
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// Zones written without a colon, eg. +0100, are accepted too
var timestampInputLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05.999999999-0700",
	"2006-01-02T15:04:05-0700",
}

// parseTimestamp accepts both whole and fractional seconds, but insists on
// a zone
func parseTimestamp(s string) (time.Time, error) {
	var t time.Time
	var err error

	for _, layout := range timestampInputLayouts {
		if t, err = time.Parse(layout, s); err == nil {
			return t, nil
		}
	}

	return t, err
}

// optionalTimestamp returns nil rather than an error for values that
// cannot be parsed
func optionalTimestamp(s *string) *time.Time {
	if s == nil || *s == "" {
		return nil
	}

	t, err := parseTimestamp(*s)
	if err != nil {
		logging.Logger(nil).Errorf("unknown timestamp format: %s: %s", *s, err)
		return nil
	}

	return &t
}
