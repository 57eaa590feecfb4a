package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-openapi/runtime"
	"github.com/go-openapi/runtime/middleware/header"
)

// Webhook deliveries are small, anything bigger is not from Netilion
const maxBodyBytes = 1024 * 1024

// decodeJSONBody decodes a single JSON document from the request body.
// Unknown members are tolerated, Netilion adds them as the API evolves.
func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	if r.Header.Get("Content-Type") != "" {
		value, _ := header.ParseValueAndParams(r.Header, "Content-Type")
		if value != runtime.JSONMime && !strings.HasSuffix(value, "+json") {
			return fmt.Errorf("expected JSON request, got %s", value)
		}
	}

	reader := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(reader)

	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decoding request body: %w", err)
	}

	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return fmt.Errorf("request body must only contain a single JSON object")
	}

	return nil
}
