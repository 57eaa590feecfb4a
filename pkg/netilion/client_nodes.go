package netilion

import (
	"net/http"
	"net/url"

	"github.com/pkg/errors"
)

func (c *Client) GetAssetSystems(assetID int64) ([]AssetSystem, error) {
	q := url.Values{}
	q.Set("include", "specifications")

	systems, _, err := getMany[AssetSystem](c, "systems", EndpointAssetSystems, Params{"asset_id": assetID}, WithQuery(q))
	return systems, errors.Wrapf(err, "fetching systems of asset %d", assetID)
}

func (c *Client) GetAssetHealthConditions(assetID int64) ([]AssetHealthCondition, error) {
	conditions, _, err := getMany[AssetHealthCondition](c, "health_conditions", EndpointAssetHealthConditions, Params{"asset_id": assetID})
	return conditions, errors.Wrapf(err, "fetching health conditions of asset %d", assetID)
}

func (c *Client) GetAssetHealthCondition(healthConditionID int64) (AssetHealthCondition, error) {
	var condition AssetHealthCondition
	err := getOne(c, &condition, EndpointHealthCondition, Params{"health_condition_id": healthConditionID})
	return condition, errors.Wrapf(err, "fetching health condition %d", healthConditionID)
}

func healthConditionRefs(ids []int64) map[string][]idRef {
	refs := make([]idRef, 0, len(ids))
	for _, id := range ids {
		refs = append(refs, ref(id))
	}

	return map[string][]idRef{"health_conditions": refs}
}

// PostAssetHealthConditions links existing health conditions to an asset
func (c *Client) PostAssetHealthConditions(assetID int64, healthConditionIDs []int64) error {
	_, err := c.write(http.MethodPost, EndpointAssetHealthConditions, Params{"asset_id": assetID},
		expect(http.StatusNoContent), WithJSON(healthConditionRefs(healthConditionIDs)))
	return errors.Wrapf(err, "adding health conditions to asset %d", assetID)
}

// DeleteAssetHealthConditions unlinks health conditions from an asset
func (c *Client) DeleteAssetHealthConditions(assetID int64, healthConditionIDs []int64) error {
	_, err := c.write(http.MethodDelete, EndpointAssetHealthConditions, Params{"asset_id": assetID},
		expect(http.StatusNoContent), WithJSON(healthConditionRefs(healthConditionIDs)))
	return errors.Wrapf(err, "removing health conditions from asset %d", assetID)
}

func (c *Client) GetNodes() ([]NodeSpecification, error) {
	nodes, _, err := getMany[NodeSpecification](c, "nodes", EndpointNodes, nil)
	return nodes, errors.Wrap(err, "listing nodes")
}

// GetNodeSpecifications returns the nodes called name, hidden ones
// included, with their specifications
func (c *Client) GetNodeSpecifications(name string) ([]NodeSpecification, error) {
	q := url.Values{}
	q.Set("name", name)
	q.Set("include", "hidden,specifications")

	nodes, _, err := getMany[NodeSpecification](c, "nodes", EndpointNodes, nil, WithQuery(q))
	return nodes, errors.Wrapf(err, "fetching specifications of node %s", name)
}

// PostNode creates a hidden node
func (c *Client) PostNode(name string) (NodeSpecification, error) {
	var node NodeSpecification

	body := map[string]string{"name": name, "hidden": "true"}

	resp, err := c.write(http.MethodPost, EndpointNodes, nil, nil, WithJSON(body))
	if err != nil {
		return node, errors.Wrapf(err, "creating node %s", name)
	}

	err = ParseFromAPI(resp.Body, &node)
	return node, errors.Wrapf(err, "creating node %s", name)
}

func (c *Client) PatchNodeSpecification(nodeID int64, key string, value interface{}) error {
	body := map[string]map[string]interface{}{
		key: {"value": value},
	}

	_, err := c.write(http.MethodPatch, EndpointNodeSpecifications, Params{"node_id": nodeID}, nil, WithJSON(body))
	return errors.Wrapf(err, "setting specification %s of node %d", key, nodeID)
}

func (c *Client) GetNodeAssets(nodeID int64) ([]Asset, error) {
	assets, _, err := getMany[Asset](c, "assets", EndpointNodeAssets, Params{"node_id": nodeID})
	return assets, errors.Wrapf(err, "listing assets of node %d", nodeID)
}

func (c *Client) GetAssetSpecifications(assetID int64) (Specifications, error) {
	var specs Specifications
	err := getOne(c, &specs, EndpointAssetSpecifications, Params{"asset_id": assetID})
	return specs, errors.Wrapf(err, "fetching specifications of asset %d", assetID)
}

func (c *Client) PatchAssetSpecifications(assetID int64, specs Specifications) error {
	if specs == nil {
		specs = Specifications{}
	}

	_, err := c.write(http.MethodPatch, EndpointAssetSpecifications, Params{"asset_id": assetID},
		expect(http.StatusNoContent), WithJSON(specs))
	return errors.Wrapf(err, "setting specifications of asset %d", assetID)
}
