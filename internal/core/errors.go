package core

import (
	"errors"
	"fmt"
)

// ErrNotFound reports that the requested record does not exist or is not
// visible to the caller.
var ErrNotFound = errors.New("not found")

// ConflictError reports that a status change lost a race: the request was no
// longer in the status the operation required. Actual carries the status the
// row held when the conflict was detected.
type ConflictError struct {
	RequestID string
	Expected  string
	Actual    string
}

func (e *ConflictError) Error() string {
	if e.Actual != "" {
		return fmt.Sprintf("request %s is %s, not %s", e.RequestID, e.Actual, e.Expected)
	}
	return fmt.Sprintf("request %s is no longer %s", e.RequestID, e.Expected)
}

// ValidationError reports client input the service refused before touching
// storage. The HTTP layer maps it to a 400.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}
