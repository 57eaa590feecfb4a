package middlewares

import (
	"net/http"

	"github.com/go-openapi/runtime"
	"github.com/go-openapi/swag"
)

type errorBody struct {
	Status int    `json:"status"`
	Error  string `json:"error"`
}

// WriteError sends a JSON error document
func WriteError(rw http.ResponseWriter, status int, msg string) {
	b, err := swag.WriteJSON(errorBody{Status: status, Error: msg})
	if err != nil {
		http.Error(rw, msg, status)
		return
	}

	rw.Header().Set("Content-Type", runtime.JSONMime)
	rw.Header().Set("X-Content-Type-Options", "nosniff")
	rw.WriteHeader(status)
	_, _ = rw.Write(b)
}
