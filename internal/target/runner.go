package target

import (
	"context"
	"fmt"
	"time"

	"github.com/SudityaSenaNimmala/Access-Requests/internal/crypto"
	"github.com/SudityaSenaNimmala/Access-Requests/internal/model"
	"github.com/SudityaSenaNimmala/Access-Requests/internal/query"
)

// Runner executes parsed operations against registered database instances.
// Each call decrypts the instance's connection target, connects, executes,
// and releases the connection; nothing is shared between calls.
type Runner struct {
	secretsKey     []byte
	connectTimeout time.Duration
	maxDocs        int
}

func NewRunner(secretsKey []byte, connectTimeout time.Duration, maxDocs int) *Runner {
	return &Runner{secretsKey: secretsKey, connectTimeout: connectTimeout, maxDocs: maxDocs}
}

// Run resolves a connection to the instance and executes op on it. The
// returned error is a *ConnectionError when the instance was unreachable and
// a *ExecutionError when the store rejected the operation.
func (r *Runner) Run(ctx context.Context, inst *model.DBInstance, op *query.Operation) (*Result, error) {
	uri, err := r.connectionString(inst)
	if err != nil {
		return nil, err
	}

	h, err := Connect(ctx, uri, inst.Database, r.connectTimeout)
	if err != nil {
		return nil, err
	}
	defer h.Close(context.WithoutCancel(ctx))

	return Execute(ctx, h, op, r.maxDocs)
}

// TestConnection resolves a connection and lists the instance's collection
// names. It never persists state and runs no user-submitted operation.
func (r *Runner) TestConnection(ctx context.Context, inst *model.DBInstance) ([]string, error) {
	uri, err := r.connectionString(inst)
	if err != nil {
		return nil, err
	}

	h, err := Connect(ctx, uri, inst.Database, r.connectTimeout)
	if err != nil {
		return nil, err
	}
	defer h.Close(context.WithoutCancel(ctx))

	return h.ListCollections(ctx)
}

func (r *Runner) connectionString(inst *model.DBInstance) (string, error) {
	uri, err := crypto.Decrypt(inst.ConnectionEncrypted, r.secretsKey)
	if err != nil {
		return "", fmt.Errorf("decrypt connection string for instance %s: %w", inst.ID, err)
	}
	return string(uri), nil
}
