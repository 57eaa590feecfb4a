package netilion

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRaiseErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		kind error
	}{
		{"not json", `Internal Server Error`, nil},
		{"array", `[{"id": 1}]`, nil},
		{"no errors member", `{"assets": []}`, nil},
		{"permission", `{"errors": [{"type": "not_found_no_permission", "message": "nope"}]}`, ErrPermissionDenied},
		{"quota", `{"errors": [{"type": "quota_exceeded"}]}`, ErrQuotaExceeded},
		{"permission wins", `{"errors": [{"type": "quota_exceeded"}, {"type": "not_found_no_permission"}]}`, ErrPermissionDenied},
		{"unknown type", `{"errors": [{"type": "something_else"}]}`, ErrAPI},
		{"entry without type", `{"errors": [{"message": "who knows"}]}`, ErrMalformedResponse},
		{"errors not an array", `{"errors": "boom"}`, ErrMalformedResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := RaiseErrors([]byte(tt.body))
			if tt.kind == nil {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.kind), "got %v", err)
			assert.True(t, errors.Is(err, ErrAPI))
		})
	}
}

func TestRaiseErrorsUnknownTypeIsGeneric(t *testing.T) {
	err := RaiseErrors([]byte(`{"errors": [{"type": "something_else"}]}`))

	for _, kind := range []error{ErrMalformedResponse, ErrPermissionDenied, ErrQuotaExceeded, ErrMalformedRequest, ErrInvalidState} {
		assert.False(t, errors.Is(err, kind), "unexpected kind %v", kind)
	}
	assert.Contains(t, err.Error(), `[{"type":"something_else"}]`)
}

func TestRegisterErrorType(t *testing.T) {
	saved := append([]errorRule{}, errorRules...)
	t.Cleanup(func() { errorRules = saved })

	RegisterErrorType("record_locked", ErrInvalidState)

	err := RaiseErrors([]byte(`{"errors": [{"type": "record_locked"}]}`))
	assert.True(t, errors.Is(err, ErrInvalidState))
}

func TestParseFromAPI(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		var app ClientApplication
		require.NoError(t, ParseFromAPI([]byte(`{"id": 12, "name": "collector"}`), &app))
		assert.Equal(t, ClientApplication{ID: 12, Name: "collector"}, app)
	})

	t.Run("missing key", func(t *testing.T) {
		var app ClientApplication
		err := ParseFromAPI([]byte(`{"name": "collector"}`), &app)

		assert.True(t, errors.Is(err, ErrMalformedResponse))

		var keyErr *KeyError
		require.True(t, errors.As(err, &keyErr))
		assert.Equal(t, "id", keyErr.Key)
	})

	t.Run("envelope first", func(t *testing.T) {
		var app ClientApplication
		err := ParseFromAPI([]byte(`{"errors": [{"type": "quota_exceeded"}]}`), &app)
		assert.True(t, errors.Is(err, ErrQuotaExceeded))
	})

	t.Run("other failures propagate", func(t *testing.T) {
		var app ClientApplication
		err := ParseFromAPI([]byte(`{"id": "twelve", "name": "collector"}`), &app)

		var typeErr *json.UnmarshalTypeError
		assert.True(t, errors.As(err, &typeErr))
		assert.False(t, errors.Is(err, ErrAPI))
	})
}

func TestParseMultipleFromAPI(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		assets, err := ParseMultipleFromAPI[Asset]([]byte(`{"assets": [{"id": 1}, {"id": 2, "serial_number": "X2"}]}`), "assets")
		require.NoError(t, err)
		require.Len(t, assets, 2)
		assert.Equal(t, "X2", assets[1].SerialNumber)
	})

	t.Run("null collection", func(t *testing.T) {
		assets, err := ParseMultipleFromAPI[Asset]([]byte(`{"assets": null}`), "assets")
		require.NoError(t, err)
		assert.NotNil(t, assets)
		assert.Empty(t, assets)
	})

	t.Run("missing collection", func(t *testing.T) {
		_, err := ParseMultipleFromAPI[Asset]([]byte(`{"units": []}`), "assets")
		assert.True(t, errors.Is(err, ErrMalformedResponse))

		var keyErr *KeyError
		require.True(t, errors.As(err, &keyErr))
		assert.Equal(t, "assets", keyErr.Key)
	})

	t.Run("missing key in item", func(t *testing.T) {
		_, err := ParseMultipleFromAPI[Asset]([]byte(`{"assets": [{"id": 1}, {"serial_number": "X2"}]}`), "assets")
		assert.True(t, errors.Is(err, ErrMalformedResponse))
	})

	t.Run("envelope", func(t *testing.T) {
		_, err := ParseMultipleFromAPI[Asset]([]byte(`{"errors": [{"type": "not_found_no_permission"}]}`), "assets")
		assert.True(t, errors.Is(err, ErrPermissionDenied))
	})
}

func TestTimestamps(t *testing.T) {
	ts := time.Date(2021, 3, 4, 5, 6, 7, 0, time.UTC)
	assert.Equal(t, "2021-03-04T05:06:07.000Z", formatTimestamp(ts))

	cet := time.FixedZone("CET", 3600)
	assert.Equal(t, "2021-03-04T04:06:07.250Z", formatTimestamp(time.Date(2021, 3, 4, 5, 6, 7, 250e6, cet)))

	for _, s := range []string{
		"2021-03-04T05:06:07Z",
		"2021-03-04T05:06:07.000Z",
		"2021-03-04T06:06:07+01:00",
		"2021-03-04T05:06:07.000+0000",
		"2021-03-04T06:06:07+0100",
	} {
		parsed, err := parseTimestamp(s)
		if assert.NoError(t, err, s) {
			assert.True(t, ts.Equal(parsed), s)
		}
	}

	withMillis, err := parseTimestamp("2021-03-04T05:06:07.123Z")
	require.NoError(t, err)
	assert.Equal(t, 123*time.Millisecond, time.Duration(withMillis.Nanosecond()))

	noColon := "2021-03-04T05:06:07.123+0000"
	parsed := optionalTimestamp(&noColon)
	require.NotNil(t, parsed)
	assert.True(t, time.Date(2021, 3, 4, 5, 6, 7, 123e6, time.UTC).Equal(*parsed))

	bad := "2021-03-04T05:06:07"
	assert.Nil(t, optionalTimestamp(&bad))
	assert.Nil(t, optionalTimestamp(nil))
}
