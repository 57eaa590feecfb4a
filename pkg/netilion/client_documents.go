package netilion

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-openapi/runtime"
	"github.com/go-openapi/runtime/middleware/header"
	"github.com/go-openapi/swag"
	"github.com/pkg/errors"
)

// PostDocument creates a document without attachments
func (c *Client) PostDocument(name string, classification DocumentClassification, status DocumentStatus) (Document, error) {
	var doc Document

	cref, sref := ref(int64(classification)), ref(int64(status))
	body := documentJSON{Name: &name, Classification: &cref, Status: &sref}

	resp, err := c.write(http.MethodPost, EndpointDocuments, nil, expect(http.StatusCreated), WithJSON(body))
	if err != nil {
		return doc, errors.Wrapf(err, "creating document %s", name)
	}

	err = ParseFromAPI(resp.Body, &doc)
	return doc, errors.Wrapf(err, "creating document %s", name)
}

func (c *Client) GetAssetDocuments(assetID int64) ([]Document, error) {
	q := url.Values{}
	q.Set("include", "attachments")

	docs, _, err := getMany[Document](c, "documents", EndpointAssetDocuments, Params{"asset_id": assetID}, WithQuery(q))
	return docs, errors.Wrapf(err, "fetching documents of asset %d", assetID)
}

// PostAssetDocument links an existing document to an asset
func (c *Client) PostAssetDocument(assetID, documentID int64) error {
	body := map[string][]idRef{"documents": {ref(documentID)}}

	_, err := c.write(http.MethodPost, EndpointAssetDocuments, Params{"asset_id": assetID},
		expect(http.StatusNoContent), WithJSON(body))
	return errors.Wrapf(err, "adding document %d to asset %d", documentID, assetID)
}

func isJSONMime(contentType string) bool {
	return contentType == runtime.JSONMime || strings.HasSuffix(contentType, "+json")
}

// DownloadJSONAttachment decodes the content of a JSON attachment into v.
// Attachment content is opaque, it is not checked for an error envelope.
func (c *Client) DownloadJSONAttachment(attachmentID int64, v interface{}) error {
	u, err := c.url(EndpointAttachmentDownload, Params{"attachment_id": attachmentID})
	if err != nil {
		return err
	}

	resp, err := c.session.Get(u)
	if err != nil {
		return errors.Wrapf(err, "downloading attachment %d", attachmentID)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.Wrapf(statusError(resp), "downloading attachment %d", attachmentID)
	}

	if resp.Header.Get("Content-Type") != "" {
		ct, _ := header.ParseValueAndParams(resp.Header, "Content-Type")
		if !isJSONMime(ct) && ct != runtime.TextMime {
			return errors.Wrapf(&APIError{Kind: ErrMalformedResponse, Response: resp, Msg: "not a JSON attachment: " + ct},
				"downloading attachment %d", attachmentID)
		}
	}

	return errors.Wrapf(swag.ReadJSON(resp.Body, v), "decoding attachment %d", attachmentID)
}

type formField struct {
	name, value string
}

// multipartJSON builds a form with content as a JSON file part
func multipartJSON(content interface{}, fileName string, fields ...formField) (string, []byte, error) {
	data, err := swag.WriteJSON(content)
	if err != nil {
		return "", nil, errors.Wrap(err, "encoding attachment")
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, strings.ReplaceAll(fileName, `"`, `\"`)))
	h.Set("Content-Type", runtime.JSONMime)

	part, err := w.CreatePart(h)
	if err != nil {
		return "", nil, errors.Wrap(err, "creating attachment part")
	}
	if _, err := part.Write(data); err != nil {
		return "", nil, errors.Wrap(err, "writing attachment part")
	}

	fields = append(fields, formField{"file_name", fileName})
	for _, f := range fields {
		if err := w.WriteField(f.name, f.value); err != nil {
			return "", nil, errors.Wrapf(err, "writing form field %s", f.name)
		}
	}

	if err := w.Close(); err != nil {
		return "", nil, errors.Wrap(err, "closing multipart form")
	}

	return w.FormDataContentType(), buf.Bytes(), nil
}

// UploadJSONAttachment stores content as a JSON file attached to a
// document
func (c *Client) UploadJSONAttachment(content interface{}, fileName string, documentID int64) (Attachment, error) {
	var att Attachment

	contentType, body, err := multipartJSON(content, fileName, formField{"document_id", strconv.FormatInt(documentID, 10)})
	if err != nil {
		return att, err
	}

	resp, err := c.write(http.MethodPost, EndpointAttachments, nil, expect(http.StatusCreated), WithBody(contentType, body))
	if err != nil {
		return att, errors.Wrapf(err, "uploading attachment %s", fileName)
	}

	err = ParseFromAPI(resp.Body, &att)
	return att, errors.Wrapf(err, "uploading attachment %s", fileName)
}

// PatchJSONAttachment replaces the content of an attachment
func (c *Client) PatchJSONAttachment(content interface{}, attachmentID int64, fileName string) error {
	contentType, body, err := multipartJSON(content, fileName)
	if err != nil {
		return err
	}

	_, err = c.write(http.MethodPatch, EndpointAttachment, Params{"attachment_id": attachmentID},
		expect(http.StatusNoContent), WithBody(contentType, body))
	return errors.Wrapf(err, "updating attachment %d", attachmentID)
}
