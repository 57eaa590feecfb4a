package handlers

import (
	"github.com/korovkin/limiter"

	"github.com/jake-scott/netilion-client/internal/pkg/logging"
)

// EventFunc processes one event.  ticket identifies the worker slot.
type EventFunc func(ticket int, event Event)

// Dispatch runs process for every event read from events, at most
// maxConcurrent at a time.  It returns once events is closed and all
// events have been processed.
func Dispatch(maxConcurrent int, events <-chan Event, process EventFunc) {
	limit := limiter.NewConcurrencyLimiter(maxConcurrent)

	for event := range events {
		event := event
		limit.ExecuteWithTicket(func(ticket int) {
			logging.Logger(nil).Debugf("dispatch-goroutine %d: got %s event (txn %s)", ticket, event.Type, event.TxnID)
			process(ticket, event)
		})
	}

	logging.Logger(nil).Info("dispatch-loop: shutting down")
	limit.Wait()
	logging.Logger(nil).Info("dispatch-loop: done")
}
