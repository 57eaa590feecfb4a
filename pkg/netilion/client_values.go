package netilion

import (
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/jake-scott/netilion-client/internal/pkg/logging"
)

func (c *Client) GetAssetValues(assetID int64) ([]AssetValue, error) {
	values, _, err := getMany[AssetValue](c, "values", EndpointAssetValues, Params{"asset_id": assetID})
	return values, errors.Wrapf(err, "fetching values of asset %d", assetID)
}

// PushAssetValues stores a batch of values.  The asset goes into the URL,
// the body only carries the values grouped by key.
func (c *Client) PushAssetValues(values AssetValues) error {
	logging.Logger(nil).Infof("POSTing asset values: %s", values)

	body := map[string]interface{}{"values": values.records()}

	_, err := c.write(http.MethodPost, EndpointAssetValues, Params{"asset_id": values.Asset.ID}, nil, WithJSON(body))
	return errors.Wrapf(err, "pushing values of asset %d", values.Asset.ID)
}

// GetAssetValuesHistory returns one page of the history of a value key
// between from and to
func (c *Client) GetAssetValuesHistory(assetID int64, key string, from, to time.Time, page, perPage int) ([]AssetValuesByKey, Pagination, error) {
	var pagination Pagination

	q := url.Values{}
	q.Set("from", formatTimestamp(from))
	q.Set("to", formatTimestamp(to))
	q.Set("page", strconv.Itoa(page))
	q.Set("per_page", strconv.Itoa(perPage))

	history, resp, err := getMany[AssetValuesByKey](c, "data", EndpointAssetValuesByKey, Params{"asset_id": assetID, "key": key}, WithQuery(q))
	if err != nil {
		return nil, pagination, errors.Wrapf(err, "fetching history of %s on asset %d", key, assetID)
	}

	if err := decode(resp.Body, &pagination); err != nil {
		return nil, pagination, errors.Wrapf(err, "fetching history of %s on asset %d", key, assetID)
	}

	return history, pagination, nil
}

// GetLastAssetValues returns the values of a key up to to, newest first,
// optionally starting at from
func (c *Client) GetLastAssetValues(assetID int64, key string, to time.Time, from *time.Time) ([]AssetValuesByKey, error) {
	q := url.Values{}
	q.Set("to", formatTimestamp(to))
	q.Set("order_by", "-timestamp")
	if from != nil {
		q.Set("from", formatTimestamp(*from))
	}

	values, _, err := getMany[AssetValuesByKey](c, "data", EndpointAssetValuesByKey, Params{"asset_id": assetID, "key": key}, WithQuery(q))
	return values, errors.Wrapf(err, "fetching last values of %s on asset %d", key, assetID)
}
