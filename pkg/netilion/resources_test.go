package netilion

import (
	"encoding/json"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNodeSpecificationHidden(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		hidden bool
	}{
		{"bool", `{"id": 1, "name": "n", "hidden": true}`, true},
		{"string", `{"id": 1, "name": "n", "hidden": "true"}`, true},
		{"false string", `{"id": 1, "name": "n", "hidden": "false"}`, false},
		{"absent", `{"id": 1, "name": "n"}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var node NodeSpecification
			require.NoError(t, json.Unmarshal([]byte(tt.body), &node))
			assert.Equal(t, tt.hidden, node.Hidden)
			assert.NotNil(t, node.Specifications)
		})
	}
}

func TestNodeSpecification(t *testing.T) {
	node := NodeSpecification{ID: 9, Name: "collector-state", Hidden: true, Specifications: map[string]interface{}{
		"cursor": map[string]interface{}{"value": "2021-03-04T05:06:07.000Z"},
	}}

	b, err := json.Marshal(node)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id": 9, "name": "collector-state", "hidden": true, "specifications": {"cursor": {"value": "2021-03-04T05:06:07.000Z"}}}`, string(b))

	var decoded NodeSpecification
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.True(t, node.Equal(decoded))
	assert.Equal(t, node.Specifications, decoded.Specifications)

	b, err = json.Marshal(NodeSpecification{ID: 9, Name: "bare"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id": 9, "name": "bare", "hidden": false}`, string(b))
}

func TestAssetHealthCondition(t *testing.T) {
	var hc AssetHealthCondition
	require.NoError(t, json.Unmarshal([]byte(`{"id": 3, "diagnosis_code": "F042"}`), &hc))
	assert.True(t, hc.Equal(AssetHealthCondition{ID: 3, DiagnosisCode: "F042"}))

	err := json.Unmarshal([]byte(`{"id": 3}`), &hc)
	var keyErr *KeyError
	require.True(t, errors.As(err, &keyErr))
	assert.Equal(t, "diagnosis_code", keyErr.Key)
}

func TestAssetSystem(t *testing.T) {
	var system AssetSystem
	require.NoError(t, json.Unmarshal([]byte(`{"id": 5, "specifications": [{"key": "line", "value": "A"}]}`), &system))
	assert.Equal(t, int64(5), system.ID)
	require.Len(t, system.Specifications, 1)

	b, err := json.Marshal(system)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id": 5}`, string(b))
}

func TestDocument(t *testing.T) {
	body := `{
		"id": 11, "name": "calibration",
		"classification": {"id": 2}, "status": {"id": 1},
		"attachments": [{"id": 100, "file_name": "cal.json", "content_type": "application/json"}]
	}`

	var doc Document
	require.NoError(t, json.Unmarshal([]byte(body), &doc))
	assert.Equal(t, ClassificationPublic, doc.Classification)
	assert.Equal(t, StatusUndefined, doc.Status)
	require.Len(t, doc.Attachments, 1)
	assert.Equal(t, "cal.json", doc.Attachments[0].FileName)

	b, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.JSONEq(t, body, string(b))

	err = json.Unmarshal([]byte(`{"id": 11, "name": "calibration", "classification": {"id": 2}}`), &doc)
	var keyErr *KeyError
	require.True(t, errors.As(err, &keyErr))
	assert.Equal(t, "status", keyErr.Key)
}

func TestSpecifications(t *testing.T) {
	var specs Specifications
	require.NoError(t, json.Unmarshal([]byte(`{
		"temperature_max": {"value": 80, "unit": {"id": 3, "code": "degree_celsius"}, "ui_visible": true, "updated_at": "2021-03-04T05:06:07Z"},
		"line": {"value": "A", "unit": null, "ui_visible": false},
		"level_max": {"value": 95, "unit": "percent", "ui_visible": true}
	}`), &specs))

	require.Len(t, specs, 3)
	assert.Equal(t, "level_max", specs[0].Key)

	spec, ok := specs.Get("temperature_max")
	require.True(t, ok)
	require.NotNil(t, spec.Unit)
	assert.Equal(t, "degree_celsius", spec.Unit.Code)
	assert.NotNil(t, spec.UpdatedAt)

	spec, ok = specs.Get("line")
	require.True(t, ok)
	assert.Nil(t, spec.Unit)

	spec, _ = specs.Get("level_max")
	assert.Equal(t, &Unit{Code: "percent"}, spec.Unit)

	_, ok = specs.Get("nope")
	assert.False(t, ok)

	b, err := json.Marshal(Specifications{
		{Key: "temperature_max", Value: 80, Unit: &Unit{ID: 3, Code: "degree_celsius"}, UIVisible: true},
		{Key: "line", Value: "A", Unit: &Unit{ID: 4}},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"temperature_max": {"value": 80, "unit": "degree_celsius", "ui_visible": true},
		"line": {"value": "A", "ui_visible": false}
	}`, string(b))
}
