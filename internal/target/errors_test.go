package target

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyConnErr(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want ConnReason
	}{
		{"deadline exceeded", context.DeadlineExceeded, ConnTimeout},
		{"auth failure", errors.New("connection() error occurred during connection handshake: auth error"), ConnAuth},
		{"sasl failure", errors.New("unable to authenticate using mechanism SCRAM-SHA-256: sasl conversation error"), ConnAuth},
		{"bad credential", errors.New("credential validation failed"), ConnAuth},
		{"refused", errors.New("dial tcp 10.0.0.5:27017: connect: connection refused"), ConnUnreachable},
		{"dns", errors.New("lookup mongo.internal: no such host"), ConnUnreachable},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, classifyConnErr(tc.err))
		})
	}
}

func TestConnectionError_Unwrap(t *testing.T) {
	inner := errors.New("dial tcp: connection refused")
	err := newConnectionError(inner)

	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "unreachable")

	var connErr *ConnectionError
	assert.ErrorAs(t, error(err), &connErr)
}

func TestExecutionError_MessageVerbatim(t *testing.T) {
	err := &ExecutionError{Message: "E11000 duplicate key error collection: app.users"}
	assert.Equal(t, "E11000 duplicate key error collection: app.users", err.Error())
}
