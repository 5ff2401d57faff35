// Package notify fans request status changes out to connected users. Delivery
// is best-effort: a slow or gone subscriber never blocks or rolls back the
// state transition that produced the event.
package notify

import (
	"github.com/SudityaSenaNimmala/Access-Requests/internal/model"
)

// Event announces a request status change to its stakeholders.
type Event struct {
	RequestID    string       `json:"request_id"`
	Status       model.Status `json:"status"`
	AutoExecuted bool         `json:"auto_executed,omitempty"`

	// UserIDs lists the recipients; never serialized to subscribers.
	UserIDs []string `json:"-"`
}
