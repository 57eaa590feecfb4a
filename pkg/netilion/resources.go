package netilion

import (
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/go-openapi/swag"
)

// AssetSystem is a system an asset is part of
type AssetSystem struct {
	ID             int64
	Specifications []map[string]interface{}
}

func (s AssetSystem) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]int64{"id": s.ID})
}

func (s *AssetSystem) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID             *int64                   `json:"id"`
		Specifications []map[string]interface{} `json:"specifications"`
	}

	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if raw.ID == nil {
		return missing("asset system", "id")
	}

	specs := raw.Specifications
	if specs == nil {
		specs = []map[string]interface{}{}
	}

	*s = AssetSystem{ID: *raw.ID, Specifications: specs}
	return nil
}

func (s AssetSystem) Equal(o AssetSystem) bool {
	return s.ID == o.ID
}

// AssetHealthCondition is a diagnosis that can be attached to an asset
type AssetHealthCondition struct {
	ID            int64
	DiagnosisCode string
}

type healthConditionJSON struct {
	ID            *int64  `json:"id"`
	DiagnosisCode *string `json:"diagnosis_code"`
}

func (h AssetHealthCondition) MarshalJSON() ([]byte, error) {
	return json.Marshal(healthConditionJSON{ID: &h.ID, DiagnosisCode: &h.DiagnosisCode})
}

func (h *AssetHealthCondition) UnmarshalJSON(data []byte) error {
	var raw healthConditionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if raw.ID == nil {
		return missing("health condition", "id")
	}
	if raw.DiagnosisCode == nil {
		return missing("health condition", "diagnosis_code")
	}

	*h = AssetHealthCondition{ID: *raw.ID, DiagnosisCode: *raw.DiagnosisCode}
	return nil
}

func (h AssetHealthCondition) Equal(o AssetHealthCondition) bool {
	return h.ID == o.ID && h.DiagnosisCode == o.DiagnosisCode
}

// NodeSpecification is a node with its specifications
type NodeSpecification struct {
	ID             int64
	Name           string
	Specifications map[string]interface{}
	Hidden         bool
}

func (n NodeSpecification) MarshalJSON() ([]byte, error) {
	body := map[string]interface{}{
		"id":     n.ID,
		"name":   n.Name,
		"hidden": n.Hidden,
	}

	if len(n.Specifications) > 0 {
		body["specifications"] = n.Specifications
	}

	return json.Marshal(body)
}

func (n *NodeSpecification) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID             *int64                 `json:"id"`
		Name           string                 `json:"name"`
		Specifications map[string]interface{} `json:"specifications"`
		Hidden         json.RawMessage        `json:"hidden"`
	}

	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if raw.ID == nil {
		return missing("node", "id")
	}

	specs := raw.Specifications
	if specs == nil {
		specs = map[string]interface{}{}
	}

	hidden, err := lenientBool(raw.Hidden)
	if err != nil {
		return err
	}

	*n = NodeSpecification{ID: *raw.ID, Name: raw.Name, Specifications: specs, Hidden: hidden}
	return nil
}

func (n NodeSpecification) Equal(o NodeSpecification) bool {
	return n.ID == o.ID
}

// The API reports some flags as JSON booleans and others as strings
func lenientBool(raw json.RawMessage) (bool, error) {
	if len(raw) == 0 {
		return false, nil
	}

	s := string(raw)
	if strings.HasPrefix(s, `"`) {
		if err := json.Unmarshal(raw, &s); err != nil {
			return false, err
		}
	}

	return swag.ConvertBool(s)
}

// DocumentClassification is the confidentiality of a document
type DocumentClassification int

const (
	ClassificationUndefined    DocumentClassification = 1
	ClassificationPublic       DocumentClassification = 2
	ClassificationInternal     DocumentClassification = 3
	ClassificationConfidential DocumentClassification = 4
)

func (c DocumentClassification) String() string {
	switch c {
	case ClassificationUndefined:
		return "undefined"
	case ClassificationPublic:
		return "public"
	case ClassificationInternal:
		return "internal"
	case ClassificationConfidential:
		return "confidential"
	}

	return "unknown"
}

// DocumentStatus is the life cycle status of a document
type DocumentStatus int

const (
	StatusUndefined DocumentStatus = 1
)

// Document groups attachments
type Document struct {
	ID             int64
	Name           string
	Classification DocumentClassification
	Status         DocumentStatus
	Attachments    []Attachment
}

type idRef struct {
	ID *int64 `json:"id"`
}

func ref(id int64) idRef {
	return idRef{ID: &id}
}

type documentJSON struct {
	ID             *int64        `json:"id,omitempty"`
	Name           *string       `json:"name"`
	Classification *idRef        `json:"classification"`
	Status         *idRef        `json:"status"`
	Attachments    *[]Attachment `json:"attachments,omitempty"`
}

func (d Document) MarshalJSON() ([]byte, error) {
	attachments := d.Attachments
	if attachments == nil {
		attachments = []Attachment{}
	}

	classification, status := ref(int64(d.Classification)), ref(int64(d.Status))
	return json.Marshal(documentJSON{
		ID:             &d.ID,
		Name:           &d.Name,
		Classification: &classification,
		Status:         &status,
		Attachments:    &attachments,
	})
}

func (d *Document) UnmarshalJSON(data []byte) error {
	var raw documentJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	switch {
	case raw.ID == nil:
		return missing("document", "id")
	case raw.Name == nil:
		return missing("document", "name")
	case raw.Classification == nil || raw.Classification.ID == nil:
		return missing("document", "classification")
	case raw.Status == nil || raw.Status.ID == nil:
		return missing("document", "status")
	}

	attachments := []Attachment{}
	if raw.Attachments != nil {
		attachments = append(attachments, *raw.Attachments...)
	}

	*d = Document{
		ID:             *raw.ID,
		Name:           *raw.Name,
		Classification: DocumentClassification(*raw.Classification.ID),
		Status:         DocumentStatus(*raw.Status.ID),
		Attachments:    attachments,
	}
	return nil
}

func (d Document) Equal(o Document) bool {
	return d.ID == o.ID
}

// Attachment is a file belonging to a document
type Attachment struct {
	ID          int64
	FileName    string
	ContentType string
}

type attachmentJSON struct {
	ID          *int64  `json:"id"`
	FileName    *string `json:"file_name"`
	ContentType *string `json:"content_type"`
}

func (a Attachment) MarshalJSON() ([]byte, error) {
	return json.Marshal(attachmentJSON{ID: &a.ID, FileName: &a.FileName, ContentType: &a.ContentType})
}

func (a *Attachment) UnmarshalJSON(data []byte) error {
	var raw attachmentJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	switch {
	case raw.ID == nil:
		return missing("attachment", "id")
	case raw.FileName == nil:
		return missing("attachment", "file_name")
	case raw.ContentType == nil:
		return missing("attachment", "content_type")
	}

	*a = Attachment{ID: *raw.ID, FileName: *raw.FileName, ContentType: *raw.ContentType}
	return nil
}

func (a Attachment) Equal(o Attachment) bool {
	return a.ID == o.ID
}

// Specification is a single key of the free form specifications of an
// asset
type Specification struct {
	Key       string
	Value     interface{}
	Unit      *Unit
	UIVisible bool
	UpdatedAt *time.Time
}

// Specifications travel as one object keyed by specification key
type Specifications []Specification

type specificationJSON struct {
	Value     interface{}     `json:"value"`
	Unit      json.RawMessage `json:"unit,omitempty"`
	UIVisible bool            `json:"ui_visible"`
	UpdatedAt *string         `json:"updated_at,omitempty"`
}

// MarshalJSON renders the PATCH form, where a unit is given by its code
func (s Specifications) MarshalJSON() ([]byte, error) {
	body := make(map[string]specificationJSON, len(s))

	for _, spec := range s {
		sj := specificationJSON{Value: spec.Value, UIVisible: spec.UIVisible}
		if spec.Unit != nil && spec.Unit.Code != "" {
			code, err := json.Marshal(spec.Unit.Code)
			if err != nil {
				return nil, err
			}
			sj.Unit = code
		}

		body[spec.Key] = sj
	}

	return json.Marshal(body)
}

func (s *Specifications) UnmarshalJSON(data []byte) error {
	var raw map[string]specificationJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	specs := make(Specifications, 0, len(keys))
	for _, k := range keys {
		sj := raw[k]

		unit, err := specificationUnit(sj.Unit)
		if err != nil {
			return err
		}

		specs = append(specs, Specification{
			Key:       k,
			Value:     sj.Value,
			Unit:      unit,
			UIVisible: sj.UIVisible,
			UpdatedAt: optionalTimestamp(sj.UpdatedAt),
		})
	}

	*s = specs
	return nil
}

// A unit is either a bare code or a unit object
func specificationUnit(raw json.RawMessage) (*Unit, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var code string
	if err := json.Unmarshal(raw, &code); err == nil {
		return &Unit{Code: code}, nil
	}

	var unit Unit
	if err := json.Unmarshal(raw, &unit); err != nil {
		return nil, err
	}

	return &unit, nil
}

// Get returns the specification with the given key
func (s Specifications) Get(key string) (Specification, bool) {
	for _, spec := range s {
		if spec.Key == key {
			return spec, true
		}
	}

	return Specification{}, false
}
