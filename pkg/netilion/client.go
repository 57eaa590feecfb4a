package netilion

import (
	"net/http"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/pkg/errors"

	"github.com/jake-scott/netilion-client/internal/pkg/logging"
)

// NetilionAPI is the technical API of a Netilion instance
type NetilionAPI interface {
	WithTimeout(d time.Duration) NetilionAPI
	WithTransport(rt http.RoundTripper) NetilionAPI

	GetApplications() ([]ClientApplication, error)
	GetApplication(applicationID int64) (ClientApplication, error)
	GetMyApplication() (ClientApplication, error)

	GetAssets() ([]Asset, error)
	GetAssetsPage(page, perPage int) ([]Asset, Pagination, error)
	GetAsset(assetID int64) (Asset, error)
	CreateAsset(serialNumber string, productID int64) (Asset, error)
	DeleteAsset(assetID int64) error
	FindAsset(serialNumber string) (*Asset, error)
	SetRWPermissions(assetID, userID int64) error

	GetAssetValues(assetID int64) ([]AssetValue, error)
	PushAssetValues(values AssetValues) error
	GetAssetValuesHistory(assetID int64, key string, from, to time.Time, page, perPage int) ([]AssetValuesByKey, Pagination, error)
	GetLastAssetValues(assetID int64, key string, to time.Time, from *time.Time) ([]AssetValuesByKey, error)

	FindUnit(code string) (*Unit, error)
	GetUnit(unitID int64) (Unit, error)

	GetWebhooks() ([]WebHook, error)
	GetWebhook(webhookID int64) (WebHook, error)
	SetWebhook(hook WebHook) (WebHook, error)
	DeleteWebhook(webhookID int64) error

	GetAssetSystems(assetID int64) ([]AssetSystem, error)

	GetAssetHealthConditions(assetID int64) ([]AssetHealthCondition, error)
	GetAssetHealthCondition(healthConditionID int64) (AssetHealthCondition, error)
	PostAssetHealthConditions(assetID int64, healthConditionIDs []int64) error
	DeleteAssetHealthConditions(assetID int64, healthConditionIDs []int64) error

	GetNodes() ([]NodeSpecification, error)
	GetNodeSpecifications(name string) ([]NodeSpecification, error)
	PostNode(name string) (NodeSpecification, error)
	PatchNodeSpecification(nodeID int64, key string, value interface{}) error
	GetNodeAssets(nodeID int64) ([]Asset, error)

	PostDocument(name string, classification DocumentClassification, status DocumentStatus) (Document, error)
	GetAssetDocuments(assetID int64) ([]Document, error)
	PostAssetDocument(assetID, documentID int64) error

	DownloadJSONAttachment(attachmentID int64, v interface{}) error
	UploadJSONAttachment(content interface{}, fileName string, documentID int64) (Attachment, error)
	PatchJSONAttachment(content interface{}, attachmentID int64, fileName string) error

	GetAssetSpecifications(assetID int64) (Specifications, error)
	PatchAssetSpecifications(assetID int64, specs Specifications) error
}

// Client implements NetilionAPI on top of a Session.  Like the session it
// is meant for one caller at a time.
type Client struct {
	session       *Session
	formats       strfmt.Registry
	myApplication *ClientApplication
}

var _ NetilionAPI = (*Client)(nil)

func NewClient(cfg Configuration) *Client {
	session := NewSession(cfg)

	cfg = session.Configuration()
	logging.Logger(nil).Debugf("Starting Netilion client (-> %s): %s, %s", cfg.Endpoint, cfg.ApplicationName, cfg.ClientID)

	return &Client{
		session: session,
		formats: strfmt.NewFormats(),
	}
}

func (c *Client) WithTimeout(d time.Duration) NetilionAPI {
	nc := *c
	nc.session = c.session.WithTimeout(d)
	return &nc
}

func (c *Client) WithTransport(rt http.RoundTripper) NetilionAPI {
	nc := *c
	nc.session = c.session.WithTransport(rt)
	return &nc
}

// Session gives access to the underlying request layer
func (c *Client) Session() *Session {
	return c.session
}

func (c *Client) url(e Endpoint, params Params) (string, error) {
	return e.URL(c.session.config.APIURL, params)
}

// readError classifies the response of a read by its error envelope.  The
// status code plays no part, a body without the expected members fails
// the shape check when it is decoded.
func readError(resp *Response) error {
	err := RaiseErrors(resp.Body)
	if apiErr, ok := err.(*APIError); ok {
		apiErr.Response = resp
	}

	return err
}

// get performs a read and returns the response once it passed the
// envelope check
func (c *Client) get(e Endpoint, params Params, opts ...RequestOption) (*Response, error) {
	u, err := c.url(e, params)
	if err != nil {
		return nil, err
	}

	resp, err := c.session.Get(u, opts...)
	if err != nil {
		return nil, err
	}

	if err := readError(resp); err != nil {
		logging.Logger(nil).WithError(err).Errorf("GET %s", u)
		return nil, err
	}

	return resp, nil
}

func getOne(c *Client, v interface{}, e Endpoint, params Params, opts ...RequestOption) error {
	resp, err := c.get(e, params, opts...)
	if err != nil {
		return err
	}

	return decode(resp.Body, v)
}

func getMany[T any](c *Client, key string, e Endpoint, params Params, opts ...RequestOption) ([]T, *Response, error) {
	resp, err := c.get(e, params, opts...)
	if err != nil {
		return nil, nil, err
	}

	items, err := decodeMultiple[T](resp.Body, key)
	return items, resp, err
}

// write performs a modifying request, classified by its status code
func (c *Client) write(method string, e Endpoint, params Params, expected []int, opts ...RequestOption) (*Response, error) {
	u, err := c.url(e, params)
	if err != nil {
		return nil, err
	}

	var resp *Response
	switch method {
	case http.MethodPost:
		resp, err = c.session.Post(u, opts...)
	case http.MethodPatch:
		resp, err = c.session.Patch(u, opts...)
	case http.MethodDelete:
		resp, err = c.session.Delete(u, opts...)
	default:
		resp, err = c.session.Request(method, u, opts...)
	}
	if err != nil {
		return nil, err
	}

	if err := statusError(resp, expected...); err != nil {
		logging.Logger(nil).WithError(err).Errorf("%s %s", method, u)
		return nil, err
	}

	logging.Logger(nil).Debugf("%s confirmed: %d", method, resp.StatusCode)
	return resp, nil
}

func expect(codes ...int) []int {
	return codes
}

// single enforces that a lookup by a unique filter matched at most once
func single[T any](items []T, what string) (*T, error) {
	switch len(items) {
	case 0:
		return nil, nil
	case 1:
		return &items[0], nil
	}

	return nil, apiErrorf(ErrInvalidState, "received %d %s", len(items), what)
}

func (c *Client) GetApplications() ([]ClientApplication, error) {
	apps, _, err := getMany[ClientApplication](c, "client_applications", EndpointClientApplications, nil)
	return apps, errors.Wrap(err, "listing client applications")
}

func (c *Client) GetApplication(applicationID int64) (ClientApplication, error) {
	var app ClientApplication
	err := getOne(c, &app, EndpointClientApplication, Params{"application_id": applicationID})
	return app, errors.Wrapf(err, "fetching client application %d", applicationID)
}

// GetMyApplication returns the application this client authenticates as.
// It comes from the configuration when that names one, otherwise it is
// looked up once and remembered.
func (c *Client) GetMyApplication() (ClientApplication, error) {
	if c.myApplication != nil {
		return *c.myApplication, nil
	}

	cfg := c.session.config
	if cfg.hasApplication() {
		return ClientApplication{ID: cfg.ApplicationID, Name: cfg.ApplicationName}, nil
	}

	var app ClientApplication
	if err := getOne(c, &app, EndpointClientApplicationCurrent, nil); err != nil {
		return app, errors.Wrap(err, "fetching current client application")
	}

	c.myApplication = &app
	logging.Logger(nil).Infof("Determined this application to be %s", app)

	return app, nil
}

func (c *Client) myApplicationID() (int64, error) {
	app, err := c.GetMyApplication()
	if err != nil {
		return 0, err
	}

	return app.ID, nil
}
