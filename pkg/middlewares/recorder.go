package middlewares

import (
	"bytes"
	"io"
	"net/http"
)

// maxLoggedPayload caps the bytes of a body kept for debug logging
const maxLoggedPayload = 4096

// capture keeps the first maxLoggedPayload bytes written to it
type capture struct {
	bytes.Buffer
	truncated bool
}

func (c *capture) keep(b []byte) {
	room := maxLoggedPayload - c.Len()
	if room <= 0 {
		c.truncated = c.truncated || len(b) > 0
		return
	}
	if len(b) > room {
		b, c.truncated = b[:room], true
	}
	c.Write(b)
}

func (c *capture) String() string {
	if c.truncated {
		return c.Buffer.String() + "..."
	}
	return c.Buffer.String()
}

// statusRecorder remembers the status and size of a response, and
// optionally the start of its body
type statusRecorder struct {
	http.ResponseWriter

	status int
	size   int
	body   *capture
}

func newStatusRecorder(rw http.ResponseWriter, keepBody bool) *statusRecorder {
	rec := &statusRecorder{ResponseWriter: rw, status: http.StatusOK}
	if keepBody {
		rec.body = &capture{}
	}
	return rec
}

func (rec *statusRecorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}

func (rec *statusRecorder) Write(b []byte) (int, error) {
	n, err := rec.ResponseWriter.Write(b)
	rec.size += n
	if rec.body != nil {
		rec.body.keep(b[:n])
	}
	return n, err
}

// capturingBody keeps the start of a request body as the handler reads it
type capturingBody struct {
	io.ReadCloser
	seen *capture
}

func (cb capturingBody) Read(b []byte) (int, error) {
	n, err := cb.ReadCloser.Read(b)
	cb.seen.keep(b[:n])
	return n, err
}
