package handlers

import (
	"net/http"
	"time"

	"github.com/go-openapi/runtime"
	"github.com/go-openapi/swag"

	"github.com/jake-scott/netilion-client/pkg/middlewares"
)

type statusJSON struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
	Queued  int    `json:"queued"`
}

// StatusHandler reports the health of the receiver
type StatusHandler struct {
	version string
	started time.Time
	queued  func() int
}

// NewStatusHandler reports queued() as the number of events waiting to be
// dispatched
func NewStatusHandler(version string, queued func() int) StatusHandler {
	return StatusHandler{version: version, started: time.Now(), queued: queued}
}

func (h *StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b, err := swag.WriteJSON(statusJSON{
		Status:  "ok",
		Version: h.version,
		Uptime:  time.Since(h.started).Truncate(time.Second).String(),
		Queued:  h.queued(),
	})
	if err != nil {
		middlewares.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", runtime.JSONMime)
	_, _ = w.Write(b)
}
