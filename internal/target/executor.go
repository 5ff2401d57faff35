package target

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/SudityaSenaNimmala/Access-Requests/internal/query"
)

var queryExecutionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "query_executions_total",
		Help: "Total number of queries executed against target instances",
	},
	[]string{"kind", "outcome"},
)

// Result is the outcome of a successfully executed operation. Exactly one of
// Documents, Count, or Ack is meaningful, selected by Kind.
type Result struct {
	Kind      string   `json:"kind"` // "documents", "count", or "ack"
	Documents []bson.M `json:"documents,omitempty"`
	// Truncated is set when a read returned more documents than the cap;
	// the result holds the first maxDocs documents.
	Truncated bool   `json:"truncated,omitempty"`
	Count     int64  `json:"count,omitempty"`
	Ack       *Ack   `json:"ack,omitempty"`
}

// Ack mirrors the store's write acknowledgement counts.
type Ack struct {
	InsertedCount int64 `json:"inserted_count"`
	MatchedCount  int64 `json:"matched_count"`
	ModifiedCount int64 `json:"modified_count"`
	UpsertedCount int64 `json:"upserted_count"`
	DeletedCount  int64 `json:"deleted_count"`
}

// Execute dispatches op against the handle and returns exactly one of a
// result or an error. Store-level failures come back as *ExecutionError with
// the store's message verbatim; they are never re-thrown past the caller.
func Execute(ctx context.Context, h *Handle, op *query.Operation, maxDocs int) (*Result, error) {
	res, err := execute(ctx, h, op, maxDocs)
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	queryExecutionsTotal.WithLabelValues(string(op.Kind), outcome).Inc()
	return res, err
}

func execute(ctx context.Context, h *Handle, op *query.Operation, maxDocs int) (*Result, error) {
	coll := h.db.Collection(op.Collection)

	switch op.Kind {
	case query.KindFind:
		filter := optionalDoc(op.Args, 0)
		opts := options.Find().SetLimit(int64(maxDocs) + 1)
		if len(op.Args) > 1 {
			opts.SetProjection(docToBSON(op.Args[1]))
		}
		cursor, err := coll.Find(ctx, filter, opts)
		if err != nil {
			return nil, &ExecutionError{Message: err.Error()}
		}
		return drainCursor(ctx, cursor, maxDocs)

	case query.KindAggregate:
		cursor, err := coll.Aggregate(ctx, arrayToPipeline(op.Args[0]))
		if err != nil {
			return nil, &ExecutionError{Message: err.Error()}
		}
		return drainCursor(ctx, cursor, maxDocs)

	case query.KindCountDocuments:
		count, err := coll.CountDocuments(ctx, optionalDoc(op.Args, 0))
		if err != nil {
			return nil, &ExecutionError{Message: err.Error()}
		}
		return &Result{Kind: "count", Count: count}, nil

	case query.KindInsertOne:
		if _, err := coll.InsertOne(ctx, docToBSON(op.Args[0])); err != nil {
			return nil, &ExecutionError{Message: err.Error()}
		}
		return &Result{Kind: "ack", Ack: &Ack{InsertedCount: 1}}, nil

	case query.KindInsertMany:
		docs := make([]any, len(op.Args[0].Arr))
		for i, d := range op.Args[0].Arr {
			docs[i] = docToBSON(d)
		}
		res, err := coll.InsertMany(ctx, docs)
		if err != nil {
			return nil, &ExecutionError{Message: err.Error()}
		}
		return &Result{Kind: "ack", Ack: &Ack{InsertedCount: int64(len(res.InsertedIDs))}}, nil

	case query.KindUpdateOne, query.KindUpdateMany:
		filter, update := docToBSON(op.Args[0]), docToBSON(op.Args[1])
		var ures *mongo.UpdateResult
		var err error
		if op.Kind == query.KindUpdateOne {
			ures, err = coll.UpdateOne(ctx, filter, update)
		} else {
			ures, err = coll.UpdateMany(ctx, filter, update)
		}
		if err != nil {
			return nil, &ExecutionError{Message: err.Error()}
		}
		return &Result{Kind: "ack", Ack: &Ack{
			MatchedCount:  ures.MatchedCount,
			ModifiedCount: ures.ModifiedCount,
			UpsertedCount: ures.UpsertedCount,
		}}, nil

	case query.KindDeleteOne, query.KindDeleteMany:
		filter := docToBSON(op.Args[0])
		var dres *mongo.DeleteResult
		var err error
		if op.Kind == query.KindDeleteOne {
			dres, err = coll.DeleteOne(ctx, filter)
		} else {
			dres, err = coll.DeleteMany(ctx, filter)
		}
		if err != nil {
			return nil, &ExecutionError{Message: err.Error()}
		}
		return &Result{Kind: "ack", Ack: &Ack{DeletedCount: dres.DeletedCount}}, nil

	default:
		return nil, &ExecutionError{Message: fmt.Sprintf("unknown operation kind %q", op.Kind)}
	}
}

// optionalDoc returns the i-th argument as a bson document, or an empty
// filter when the argument was omitted.
func optionalDoc(args []query.Literal, i int) bson.D {
	if i < len(args) {
		return docToBSON(args[i])
	}
	return bson.D{}
}

type cursorLike interface {
	Next(ctx context.Context) bool
	Decode(val any) error
	Err() error
	Close(ctx context.Context) error
}

// drainCursor materializes at most maxDocs documents. Exceeding the cap is
// not an error: the result is truncated and flagged.
func drainCursor(ctx context.Context, cursor cursorLike, maxDocs int) (*Result, error) {
	defer cursor.Close(ctx)

	docs := make([]bson.M, 0)
	truncated := false
	for cursor.Next(ctx) {
		if len(docs) >= maxDocs {
			truncated = true
			break
		}
		var doc bson.M
		if err := cursor.Decode(&doc); err != nil {
			return nil, &ExecutionError{Message: err.Error()}
		}
		docs = append(docs, doc)
	}
	if err := cursor.Err(); err != nil {
		return nil, &ExecutionError{Message: err.Error()}
	}

	return &Result{Kind: "documents", Documents: docs, Truncated: truncated}, nil
}

