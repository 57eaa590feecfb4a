package netilion

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/pkg/errors"
)

func (c *Client) GetAssets() ([]Asset, error) {
	assets, _, err := getMany[Asset](c, "assets", EndpointAssets, nil)
	return assets, errors.Wrap(err, "listing assets")
}

// GetAssetsPage returns one page of assets.  Following the pages is left
// to the caller.
func (c *Client) GetAssetsPage(page, perPage int) ([]Asset, Pagination, error) {
	var pagination Pagination

	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("per_page", strconv.Itoa(perPage))

	assets, resp, err := getMany[Asset](c, "assets", EndpointAssets, nil, WithQuery(q))
	if err != nil {
		return nil, pagination, errors.Wrapf(err, "listing assets page %d", page)
	}

	if err := decode(resp.Body, &pagination); err != nil {
		return nil, pagination, errors.Wrapf(err, "listing assets page %d", page)
	}

	return assets, pagination, nil
}

func (c *Client) GetAsset(assetID int64) (Asset, error) {
	var asset Asset
	err := getOne(c, &asset, EndpointAsset, Params{"asset_id": assetID})
	return asset, errors.Wrapf(err, "fetching asset %d", assetID)
}

func (c *Client) CreateAsset(serialNumber string, productID int64) (Asset, error) {
	var asset Asset

	body := map[string]interface{}{
		"serial_number": serialNumber,
		"product":       ref(productID),
	}

	resp, err := c.write(http.MethodPost, EndpointAssets, nil, nil, WithJSON(body))
	if err != nil {
		return asset, errors.Wrapf(err, "creating asset %s", serialNumber)
	}

	err = ParseFromAPI(resp.Body, &asset)
	return asset, errors.Wrapf(err, "creating asset %s", serialNumber)
}

func (c *Client) DeleteAsset(assetID int64) error {
	_, err := c.write(http.MethodDelete, EndpointAsset, Params{"asset_id": assetID}, expect(http.StatusNoContent))
	return errors.Wrapf(err, "deleting asset %d", assetID)
}

// FindAsset looks up an asset by serial number.  No match is not an error
// and returns nil, more than one match is ErrInvalidState.
func (c *Client) FindAsset(serialNumber string) (*Asset, error) {
	q := url.Values{}
	q.Set("serial_number", serialNumber)

	assets, _, err := getMany[Asset](c, "assets", EndpointAssets, nil, WithQuery(q))
	if err != nil {
		return nil, errors.Wrapf(err, "finding asset %s", serialNumber)
	}

	asset, err := single(assets, "assets for serial number "+serialNumber)
	return asset, errors.Wrapf(err, "finding asset %s", serialNumber)
}

type permissionRef struct {
	ID   int64  `json:"id"`
	Type string `json:"type"`
}

// SetRWPermissions grants a user read and update rights on an asset
func (c *Client) SetRWPermissions(assetID, userID int64) error {
	body := struct {
		PermissionType []string      `json:"permission_type"`
		Assignable     permissionRef `json:"assignable"`
		Permitable     permissionRef `json:"permitable"`
	}{
		PermissionType: []string{"can_read", "can_update"},
		Assignable:     permissionRef{ID: userID, Type: "User"},
		Permitable:     permissionRef{ID: assetID, Type: "Asset"},
	}

	_, err := c.write(http.MethodPost, EndpointPermissions, nil, nil, WithJSON(body))
	return errors.Wrapf(err, "setting permissions of user %d on asset %d", userID, assetID)
}

// FindUnit looks up a unit by code.  No match is not an error and returns
// nil, more than one match is ErrInvalidState.
func (c *Client) FindUnit(code string) (*Unit, error) {
	q := url.Values{}
	q.Set("code", code)

	units, _, err := getMany[Unit](c, "units", EndpointUnits, nil, WithQuery(q))
	if err != nil {
		return nil, errors.Wrapf(err, "finding unit %s", code)
	}

	unit, err := single(units, "units for code "+code)
	return unit, errors.Wrapf(err, "finding unit %s", code)
}

func (c *Client) GetUnit(unitID int64) (Unit, error) {
	var unit Unit
	err := getOne(c, &unit, EndpointUnit, Params{"unit_id": unitID})
	return unit, errors.Wrapf(err, "fetching unit %d", unitID)
}

func (c *Client) GetWebhooks() ([]WebHook, error) {
	appID, err := c.myApplicationID()
	if err != nil {
		return nil, errors.Wrap(err, "listing webhooks")
	}

	hooks, _, err := getMany[WebHook](c, "webhooks", EndpointWebhooks, Params{"application_id": appID})
	return hooks, errors.Wrap(err, "listing webhooks")
}

func (c *Client) GetWebhook(webhookID int64) (WebHook, error) {
	var hook WebHook

	appID, err := c.myApplicationID()
	if err != nil {
		return hook, errors.Wrapf(err, "fetching webhook %d", webhookID)
	}

	err = getOne(c, &hook, EndpointWebhook, Params{"application_id": appID, "webhook_id": webhookID})
	return hook, errors.Wrapf(err, "fetching webhook %d", webhookID)
}

// SetWebhook registers a webhook for this client application and returns
// it as stored by the API
func (c *Client) SetWebhook(hook WebHook) (WebHook, error) {
	var created WebHook

	if err := hook.Validate(c.formats); err != nil {
		return created, errors.Wrap(&APIError{Kind: ErrMalformedRequest, Msg: "invalid webhook", Err: err}, "setting webhook")
	}

	appID, err := c.myApplicationID()
	if err != nil {
		return created, errors.Wrap(err, "setting webhook")
	}

	resp, err := c.write(http.MethodPost, EndpointWebhooks, Params{"application_id": appID}, nil, WithJSON(hook))
	if err != nil {
		return created, errors.Wrap(err, "setting webhook")
	}

	err = ParseFromAPI(resp.Body, &created)
	return created, errors.Wrap(err, "setting webhook")
}

func (c *Client) DeleteWebhook(webhookID int64) error {
	appID, err := c.myApplicationID()
	if err != nil {
		return errors.Wrapf(err, "deleting webhook %d", webhookID)
	}

	_, err = c.write(http.MethodDelete, EndpointWebhook, Params{"application_id": appID, "webhook_id": webhookID}, expect(http.StatusNoContent))
	return errors.Wrapf(err, "deleting webhook %d", webhookID)
}
