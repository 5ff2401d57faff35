package target

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Handle is a live, single-use session against one target database. Close
// must be called on every exit path.
type Handle struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect establishes a connection to the target store, bounded by timeout.
// Failures are reported as *ConnectionError tagged with the reason.
func Connect(ctx context.Context, uri, database string, timeout time.Duration) (*Handle, error) {
	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	opts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(timeout).
		SetServerSelectionTimeout(timeout)

	client, err := mongo.Connect(connectCtx, opts)
	if err != nil {
		return nil, newConnectionError(err)
	}

	// Connect alone does not dial; ping to surface unreachable hosts and
	// stale credentials before any operation runs.
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, newConnectionError(err)
	}

	return &Handle{client: client, db: client.Database(database)}, nil
}

// Close releases the underlying client.
func (h *Handle) Close(ctx context.Context) {
	_ = h.client.Disconnect(ctx)
}

// ListCollections enumerates the target database's collection names. It is
// the "test connection" probe: reachability validation without running any
// user-submitted operation.
func (h *Handle) ListCollections(ctx context.Context) ([]string, error) {
	names, err := h.db.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		return nil, &ExecutionError{Message: err.Error()}
	}
	return names, nil
}
