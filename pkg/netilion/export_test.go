package netilion

import (
	"encoding/json"
	"time"
)

// SetClock replaces the clock used for token expiry
func (s *Session) SetClock(now func() time.Time) {
	s.now = now
}

// RecordsJSON renders the grouped values as pushed to the API
func (av AssetValues) RecordsJSON() ([]byte, error) {
	return json.Marshal(av.records())
}

var FormatTimestamp = formatTimestamp
