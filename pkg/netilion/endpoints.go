package netilion

import (
	"fmt"
	"net/url"
	"regexp"

	"github.com/pkg/errors"
)

// Endpoint is a path template relative to the API URL.  Placeholders are
// written {name} and must be one of the known parameter names.
type Endpoint string

const (
	EndpointUnits                    Endpoint = "/units"
	EndpointUnit                     Endpoint = "/units/{unit_id}"
	EndpointAssets                   Endpoint = "/assets"
	EndpointAsset                    Endpoint = "/assets/{asset_id}"
	EndpointAssetValues              Endpoint = "/assets/{asset_id}/values"
	EndpointAssetValuesByKey         Endpoint = "/assets/{asset_id}/values/{key}"
	EndpointAssetSystems             Endpoint = "/assets/{asset_id}/systems"
	EndpointAssetHealthConditions    Endpoint = "/assets/{asset_id}/health_conditions"
	EndpointAssetDocuments           Endpoint = "/assets/{asset_id}/documents"
	EndpointAssetSpecifications      Endpoint = "/assets/{asset_id}/specifications"
	EndpointHealthCondition          Endpoint = "/health_conditions/{health_condition_id}"
	EndpointClientApplications       Endpoint = "/client_applications"
	EndpointClientApplicationCurrent Endpoint = "/client_applications/current"
	EndpointClientApplication        Endpoint = "/client_applications/{application_id}"
	EndpointWebhooks                 Endpoint = "/client_applications/{application_id}/webhooks"
	EndpointWebhook                  Endpoint = "/client_applications/{application_id}/webhooks/{webhook_id}"
	EndpointPermissions              Endpoint = "/permissions"
	EndpointNodes                    Endpoint = "/nodes"
	EndpointNode                     Endpoint = "/nodes/{node_id}"
	EndpointNodeAssets               Endpoint = "/nodes/{node_id}/assets"
	EndpointNodeSpecifications       Endpoint = "/nodes/{node_id}/specifications"
	EndpointDocuments                Endpoint = "/documents"
	EndpointAttachments              Endpoint = "/attachments"
	EndpointAttachment               Endpoint = "/attachments/{attachment_id}"
	EndpointAttachmentDownload       Endpoint = "/attachments/{attachment_id}/download"
)

// Params are the placeholder values of an endpoint template
type Params map[string]interface{}

var knownParams = map[string]bool{
	"asset_id":            true,
	"application_id":      true,
	"webhook_id":          true,
	"unit_id":             true,
	"node_id":             true,
	"health_condition_id": true,
	"attachment_id":       true,
	"key":                 true,
}

var placeholderRegexp = regexp.MustCompile(`\{([^{}]*)\}`)

// Placeholders returns the parameter names used by the template
func (e Endpoint) Placeholders() []string {
	var names []string
	for _, m := range placeholderRegexp.FindAllStringSubmatch(string(e), -1) {
		names = append(names, m[1])
	}

	return names
}

// Validate rejects templates using unknown parameter names
func (e Endpoint) Validate() error {
	for _, name := range e.Placeholders() {
		if !knownParams[name] {
			return errors.Errorf("endpoint %s: unknown placeholder {%s}", e, name)
		}
	}

	return nil
}

// Expand substitutes params into the template.  Every placeholder must be
// given and every param must be used by the template.
func (e Endpoint) Expand(params Params) (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}

	used := map[string]bool{}
	var expandErr error

	path := placeholderRegexp.ReplaceAllStringFunc(string(e), func(m string) string {
		name := m[1 : len(m)-1]
		v, ok := params[name]
		if !ok {
			if expandErr == nil {
				expandErr = errors.Errorf("endpoint %s: no value for {%s}", e, name)
			}
			return m
		}

		used[name] = true
		return url.PathEscape(fmt.Sprint(v))
	})

	if expandErr != nil {
		return "", expandErr
	}

	for name := range params {
		if !used[name] {
			return "", errors.Errorf("endpoint %s: unexpected parameter %s", e, name)
		}
	}

	return path, nil
}

// URL returns the absolute URL of an endpoint under apiURL
func (e Endpoint) URL(apiURL string, params Params) (string, error) {
	path, err := e.Expand(params)
	if err != nil {
		return "", err
	}

	return apiURL + path, nil
}
