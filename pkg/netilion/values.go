package netilion

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// AssetValue is a single measurement of an asset
type AssetValue struct {
	Key       string
	Unit      Unit
	Value     float64
	Timestamp *time.Time
}

type assetValueJSON struct {
	Key       *string  `json:"key"`
	Unit      *Unit    `json:"unit"`
	Value     *float64 `json:"value"`
	Timestamp *string  `json:"timestamp,omitempty"`
}

func timestampPtr(t *time.Time) *string {
	if t == nil {
		return nil
	}

	s := formatTimestamp(*t)
	return &s
}

func (v AssetValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(assetValueJSON{
		Key:       &v.Key,
		Unit:      &v.Unit,
		Value:     &v.Value,
		Timestamp: timestampPtr(v.Timestamp),
	})
}

func (v *AssetValue) UnmarshalJSON(data []byte) error {
	var raw assetValueJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	switch {
	case raw.Key == nil:
		return missing("asset value", "key")
	case raw.Unit == nil:
		return missing("asset value", "unit")
	case raw.Value == nil:
		return missing("asset value", "value")
	}

	*v = AssetValue{
		Key:       *raw.Key,
		Unit:      *raw.Unit,
		Value:     *raw.Value,
		Timestamp: optionalTimestamp(raw.Timestamp),
	}
	return nil
}

// Equal ignores the timestamp
func (v AssetValue) Equal(o AssetValue) bool {
	return v.Key == o.Key && v.Unit.Equal(o.Unit) && v.Value == o.Value
}

func (v AssetValue) String() string {
	ts := "timestamp n/a"
	if v.Timestamp != nil {
		ts = formatTimestamp(*v.Timestamp)
	}

	return fmt.Sprintf("AssetValue %s: %g (%s, %s)", v.Key, v.Value, v.Unit, ts)
}

// AssetValues is a batch of measurements of one asset.  On the wire the
// values are grouped by key, each key carrying its unit once and an array
// of value/timestamp pairs.
type AssetValues struct {
	Asset  Asset
	Values []AssetValue
}

type dataPointJSON struct {
	Value     *float64 `json:"value"`
	Timestamp *string  `json:"timestamp,omitempty"`
}

type valueRecordJSON struct {
	Key  *string          `json:"key"`
	Unit *Unit            `json:"unit"`
	Data *[]dataPointJSON `json:"data"`
}

type assetValuesJSON struct {
	Asset  *Asset             `json:"asset"`
	Values *[]valueRecordJSON `json:"values"`
}

// records groups the values by key.  Keys are sorted to keep the output
// stable, the unit of a key is that of its first value.
func (av AssetValues) records() []valueRecordJSON {
	byKey := map[string][]AssetValue{}
	for _, v := range av.Values {
		byKey[v.Key] = append(byKey[v.Key], v)
	}

	keys := make([]string, 0, len(byKey))
	for k := range byKey {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	records := make([]valueRecordJSON, 0, len(keys))
	for _, k := range keys {
		values := byKey[k]
		key, unit := k, values[0].Unit

		data := make([]dataPointJSON, 0, len(values))
		for _, v := range values {
			value := v.Value
			data = append(data, dataPointJSON{Value: &value, Timestamp: timestampPtr(v.Timestamp)})
		}

		records = append(records, valueRecordJSON{Key: &key, Unit: &unit, Data: &data})
	}

	return records
}

func (av AssetValues) MarshalJSON() ([]byte, error) {
	records := av.records()
	return json.Marshal(assetValuesJSON{Asset: &av.Asset, Values: &records})
}

// UnmarshalJSON accepts the bare object as well as the `content` envelope
// that webhook events wrap it in
func (av *AssetValues) UnmarshalJSON(data []byte) error {
	var envelope struct {
		Content json.RawMessage `json:"content"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return err
	}
	if len(envelope.Content) > 0 {
		data = envelope.Content
	}

	var raw assetValuesJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if raw.Asset == nil {
		return missing("asset values", "asset")
	}
	if raw.Values == nil {
		return missing("asset values", "values")
	}

	values := []AssetValue{}
	for _, rec := range *raw.Values {
		switch {
		case rec.Key == nil:
			return missing("asset values", "key")
		case rec.Unit == nil:
			return missing("asset values", "unit")
		case rec.Data == nil:
			return missing("asset values", "data")
		}

		for _, point := range *rec.Data {
			if point.Value == nil {
				return missing("asset values", "value")
			}

			values = append(values, AssetValue{
				Key:       *rec.Key,
				Unit:      *rec.Unit,
				Value:     *point.Value,
				Timestamp: optionalTimestamp(point.Timestamp),
			})
		}
	}

	*av = AssetValues{Asset: *raw.Asset, Values: values}
	return nil
}

// Equal is sensitive to the order of the values
func (av AssetValues) Equal(o AssetValues) bool {
	if !av.Asset.Equal(o.Asset) || len(av.Values) != len(o.Values) {
		return false
	}

	for i := range av.Values {
		if !av.Values[i].Equal(o.Values[i]) {
			return false
		}
	}

	return true
}

func (av AssetValues) String() string {
	return fmt.Sprintf("AssetValues (%s), %d values contained", av.Asset, len(av.Values))
}

// AssetValuesByKey is one point of the history of a single value key
type AssetValuesByKey struct {
	Value     float64
	Timestamp time.Time
}

func (v AssetValuesByKey) MarshalJSON() ([]byte, error) {
	ts := formatTimestamp(v.Timestamp)
	return json.Marshal(dataPointJSON{Value: &v.Value, Timestamp: &ts})
}

// Unlike the timestamp of an AssetValue, this one is mandatory and a
// malformed timestamp is an error
func (v *AssetValuesByKey) UnmarshalJSON(data []byte) error {
	var raw dataPointJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if raw.Value == nil {
		return missing("asset value by key", "value")
	}
	if raw.Timestamp == nil {
		return missing("asset value by key", "timestamp")
	}

	ts, err := parseTimestamp(*raw.Timestamp)
	if err != nil {
		return err
	}

	*v = AssetValuesByKey{Value: *raw.Value, Timestamp: ts}
	return nil
}

func (v AssetValuesByKey) Equal(o AssetValuesByKey) bool {
	return v.Value == o.Value && v.Timestamp.Equal(o.Timestamp)
}

// Pagination describes one page of a collection response
type Pagination struct {
	PageCount int
	PerPage   int
	Page      int
	Next      string
}

type paginationJSON struct {
	PageCount *int   `json:"page_count"`
	PerPage   *int   `json:"per_page"`
	Page      *int   `json:"page"`
	Next      string `json:"next,omitempty"`
}

// Pagination lives under the `pagination` member of collection responses,
// both directions use that envelope
func (p Pagination) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]paginationJSON{
		"pagination": {PageCount: &p.PageCount, PerPage: &p.PerPage, Page: &p.Page, Next: p.Next},
	})
}

func (p *Pagination) UnmarshalJSON(data []byte) error {
	var envelope struct {
		Pagination *paginationJSON `json:"pagination"`
	}

	if err := json.Unmarshal(data, &envelope); err != nil {
		return err
	}

	raw := envelope.Pagination
	switch {
	case raw == nil:
		return missing("pagination", "pagination")
	case raw.PageCount == nil:
		return missing("pagination", "page_count")
	case raw.PerPage == nil:
		return missing("pagination", "per_page")
	case raw.Page == nil:
		return missing("pagination", "page")
	}

	*p = Pagination{PageCount: *raw.PageCount, PerPage: *raw.PerPage, Page: *raw.Page, Next: raw.Next}
	return nil
}
