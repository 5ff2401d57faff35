// Package target resolves connections to registered database instances and
// executes parsed operations against them. Connections are scoped to a single
// execution: acquired, used, and released within one call, never pooled
// across requests.
package target

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
)

// ConnReason distinguishes why a target instance could not be reached, so
// callers can tell a currently-unusable instance from stale credentials.
type ConnReason string

const (
	ConnTimeout     ConnReason = "timeout"
	ConnAuth        ConnReason = "auth"
	ConnUnreachable ConnReason = "unreachable"
)

// ConnectionError means the target store could not be reached at all; no
// operation ran. The request that triggered it stays retryable.
type ConnectionError struct {
	Reason ConnReason
	Err    error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connect to target (%s): %v", e.Reason, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// ExecutionError means the target store accepted the connection but rejected
// the operation. Message carries the store's error verbatim.
type ExecutionError struct {
	Message string
}

func (e *ExecutionError) Error() string {
	return e.Message
}

func newConnectionError(err error) *ConnectionError {
	return &ConnectionError{Reason: classifyConnErr(err), Err: err}
}

func classifyConnErr(err error) ConnReason {
	if errors.Is(err, context.DeadlineExceeded) || mongo.IsTimeout(err) {
		return ConnTimeout
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "auth") || strings.Contains(msg, "sasl") || strings.Contains(msg, "credential") {
		return ConnAuth
	}
	return ConnUnreachable
}
