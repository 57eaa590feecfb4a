package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jake-scott/netilion-client/internal/pkg/logging"
	"github.com/jake-scott/netilion-client/pkg/middlewares"
	"github.com/jake-scott/netilion-client/pkg/netilion"
)

// EventAssetValueCreated announces new values of an asset
const EventAssetValueCreated = "asset_value_created"

// Event is a webhook notification received from Netilion
type Event struct {
	Type     string
	Received time.Time
	TxnID    string

	// Content is the raw event payload
	Content json.RawMessage

	// Values is set for asset value events
	Values *netilion.AssetValues
}

type eventJSON struct {
	EventType string          `json:"event_type"`
	Content   json.RawMessage `json:"content"`
}

// WebhookHandler accepts Netilion webhook deliveries and queues them on a
// channel.  A full queue is answered with 503 so that Netilion retries the
// delivery later.
type WebhookHandler struct {
	events   chan<- Event
	received *prometheus.CounterVec
	now      func() time.Time
}

func NewWebhookHandler(events chan<- Event) WebhookHandler {
	return WebhookHandler{events: events, now: time.Now}
}

// WithCounter counts accepted and rejected events by type and outcome
func (h WebhookHandler) WithCounter(received *prometheus.CounterVec) WebhookHandler {
	h.received = received
	return h
}

// NewEventCounter creates the counter used by WithCounter
func NewEventCounter(reg prometheus.Registerer) (*prometheus.CounterVec, error) {
	c := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "netilion",
		Subsystem: "receiver",
		Name:      "webhook_events_total",
		Help:      "Webhook events by type and outcome",
	}, []string{"event_type", "outcome"})

	if err := reg.Register(c); err != nil {
		return nil, err
	}

	return c, nil
}

func (h *WebhookHandler) count(eventType, outcome string) {
	if h.received != nil {
		h.received.WithLabelValues(eventType, outcome).Inc()
	}
}

func (h *WebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var body eventJSON
	if err := decodeJSONBody(w, r, &body); err != nil {
		logging.Logger(r.Context()).WithError(err).Warn("rejecting webhook delivery")
		h.count("unknown", "malformed")
		middlewares.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if body.EventType == "" {
		h.count("unknown", "malformed")
		middlewares.WriteError(w, http.StatusBadRequest, "event_type not set")
		return
	}

	event := Event{Type: body.EventType, Received: h.now(), Content: body.Content}
	if txnID, ok := logging.TxnID(r.Context()); ok {
		event.TxnID = txnID
	}

	if body.EventType == EventAssetValueCreated {
		var values netilion.AssetValues
		if err := netilion.ParseFromAPI(body.Content, &values); err != nil {
			logging.Logger(r.Context()).WithError(err).Warnf("undecodable %s event", body.EventType)
			h.count(body.EventType, "malformed")
			middlewares.WriteError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		event.Values = &values
	}

	select {
	case h.events <- event:
	default:
		logging.Logger(r.Context()).Warnf("event queue full, refusing %s event", body.EventType)
		h.count(body.EventType, "refused")
		middlewares.WriteError(w, http.StatusServiceUnavailable, "event queue full")
		return
	}

	logging.Logger(r.Context()).Debugf("queued %s event", body.EventType)
	h.count(body.EventType, "accepted")
	w.WriteHeader(http.StatusAccepted)
}
