package netilion

import (
	"encoding/json"
	"fmt"

	"github.com/go-openapi/errors"
	"github.com/go-openapi/strfmt"
	"github.com/go-openapi/validate"
)

// ClientApplication is the identity of an API integration
type ClientApplication struct {
	ID   int64
	Name string
}

type clientApplicationJSON struct {
	ID   *int64  `json:"id"`
	Name *string `json:"name"`
}

func (a ClientApplication) MarshalJSON() ([]byte, error) {
	return json.Marshal(clientApplicationJSON{ID: &a.ID, Name: &a.Name})
}

func (a *ClientApplication) UnmarshalJSON(data []byte) error {
	var raw clientApplicationJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if raw.Name == nil {
		return missing("client application", "name")
	}
	if raw.ID == nil {
		return missing("client application", "id")
	}

	a.ID, a.Name = *raw.ID, *raw.Name
	return nil
}

func (a ClientApplication) Equal(o ClientApplication) bool {
	return a.ID == o.ID && a.Name == o.Name
}

// EqualRaw compares the application with a generically decoded JSON object
func (a ClientApplication) EqualRaw(raw map[string]interface{}) bool {
	name, _ := raw["name"].(string)
	id, ok := rawInt(raw["id"])

	return ok && id == a.ID && name == a.Name
}

func (a ClientApplication) String() string {
	return fmt.Sprintf("Client Application \"%s\" (%d)", a.Name, a.ID)
}

func rawInt(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case float64:
		return int64(n), float64(int64(n)) == n
	case int:
		return int64(n), true
	case int64:
		return n, true
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	}

	return 0, false
}

// Asset is a device known to Netilion.  Only the ID takes part in
// comparisons.
type Asset struct {
	ID           int64
	SerialNumber string
}

func (a Asset) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]int64{"id": a.ID})
}

func (a *Asset) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID           *int64 `json:"id"`
		SerialNumber string `json:"serial_number"`
	}

	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if raw.ID == nil {
		return missing("asset", "id")
	}

	a.ID, a.SerialNumber = *raw.ID, raw.SerialNumber
	return nil
}

func (a Asset) Equal(o Asset) bool {
	return a.ID == o.ID
}

func (a Asset) String() string {
	sn := a.SerialNumber
	if sn == "" {
		sn = "n/a"
	}

	return fmt.Sprintf("Asset %d (serial number %s)", a.ID, sn)
}

// Unit is a unit of measure.  At least one of ID and Code is always set.
type Unit struct {
	ID   int64
	Code string
	Name string
}

var knownUnitCodes = map[string]bool{
	"degree_celsius":            true,
	"metre_per_second":          true,
	"gram_per_cubic_centimetre": true,
	"percent_mass":              true,
	"percent_volume":            true,
	"degree_plato":              true,
	"percent":                   true,
	"millimetre":                true,
	"millipascal_second":        true,
}

// NewUnit returns ErrMalformedResponse if neither id nor code is given
func NewUnit(id int64, code, name string) (Unit, error) {
	if id == 0 && code == "" {
		return Unit{}, apiErrorf(ErrMalformedResponse, "unit requires either ID or code")
	}

	return Unit{ID: id, Code: code, Name: name}, nil
}

// UnitByCode returns a unit for one of the well known unit codes.  The
// boolean is false for any other code.
func UnitByCode(code string) (Unit, bool) {
	if !knownUnitCodes[code] {
		return Unit{}, false
	}

	return Unit{Code: code}, true
}

// Codes are preferred over IDs, they are readable
func (u Unit) MarshalJSON() ([]byte, error) {
	if u.Code != "" {
		return json.Marshal(map[string]string{"code": u.Code})
	}

	return json.Marshal(map[string]int64{"id": u.ID})
}

func (u *Unit) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID   int64  `json:"id"`
		Code string `json:"code"`
		Name string `json:"name"`
	}

	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	unit, err := NewUnit(raw.ID, raw.Code, raw.Name)
	if err != nil {
		return err
	}

	*u = unit
	return nil
}

func (u Unit) Equal(o Unit) bool {
	return u.ID == o.ID && u.Code == o.Code
}

func (u Unit) String() string {
	return fmt.Sprintf("Unit %d, %s (%s)", u.ID, u.Code, u.Name)
}

// WebHook is a subscription of a client application to API events
type WebHook struct {
	ID         int64
	URL        string
	EventTypes []string
	Secret     string
}

func (w WebHook) MarshalJSON() ([]byte, error) {
	eventTypes := w.EventTypes
	if eventTypes == nil {
		eventTypes = []string{}
	}

	return json.Marshal(struct {
		URL        string   `json:"url"`
		EventTypes []string `json:"event_types"`
	}{w.URL, eventTypes})
}

func (w *WebHook) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID         int64     `json:"id"`
		URL        *string   `json:"url"`
		EventTypes *[]string `json:"event_types"`
		Secret     string    `json:"secret"`
	}

	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if raw.URL == nil {
		return missing("webhook", "url")
	}
	if raw.EventTypes == nil {
		return missing("webhook", "event_types")
	}

	*w = WebHook{
		ID:         raw.ID,
		URL:        *raw.URL,
		EventTypes: append([]string{}, *raw.EventTypes...),
		Secret:     raw.Secret,
	}
	return nil
}

// Equal compares the URL and the event types, in order
func (w WebHook) Equal(o WebHook) bool {
	if w.URL != o.URL || len(w.EventTypes) != len(o.EventTypes) {
		return false
	}

	for i := range w.EventTypes {
		if w.EventTypes[i] != o.EventTypes[i] {
			return false
		}
	}

	return true
}

// Validate checks that the webhook can be registered
func (w WebHook) Validate(formats strfmt.Registry) error {
	var res []error

	if err := validate.RequiredString("url", "body", w.URL); err != nil {
		res = append(res, err)
	} else if err := validate.FormatOf("url", "body", "uri", w.URL, formats); err != nil {
		res = append(res, err)
	}

	if err := validate.MinItems("event_types", "body", int64(len(w.EventTypes)), 1); err != nil {
		res = append(res, err)
	}

	for i, et := range w.EventTypes {
		if err := validate.RequiredString(fmt.Sprintf("event_types.%d", i), "body", et); err != nil {
			res = append(res, err)
		}
	}

	if len(res) > 0 {
		return errors.CompositeValidationError(res...)
	}

	return nil
}

func (w WebHook) String() string {
	return fmt.Sprintf("WebHook <%s> (events %v)", w.URL, w.EventTypes)
}
