package target

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/SudityaSenaNimmala/Access-Requests/internal/query"
)

func TestToBSON_Scalars(t *testing.T) {
	assert.Equal(t, primitive.Null{}, toBSON(query.Null()))
	assert.Equal(t, true, toBSON(query.Bool(true)))
	assert.Equal(t, int64(42), toBSON(query.Int(42)))
	assert.Equal(t, 2.5, toBSON(query.Double(2.5)))
	assert.Equal(t, "hello", toBSON(query.String("hello")))
}

func TestToBSON_DateAndRegex(t *testing.T) {
	ts := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, primitive.NewDateTimeFromTime(ts), toBSON(query.Date(ts)))
	assert.Equal(t, primitive.Regex{Pattern: "^a", Options: "i"}, toBSON(query.Regex("^a", "i")))
}

func TestToBSON_DocumentPreservesOrder(t *testing.T) {
	doc := query.Document(
		query.Entry("z", query.Int(1)),
		query.Entry("a", query.Int(2)),
		query.Entry("m", query.Int(3)),
	)

	got := toBSON(doc)
	d, ok := got.(bson.D)
	require.True(t, ok, "document must convert to bson.D, got %T", got)
	require.Len(t, d, 3)
	assert.Equal(t, "z", d[0].Key)
	assert.Equal(t, "a", d[1].Key)
	assert.Equal(t, "m", d[2].Key)
}

func TestToBSON_Nested(t *testing.T) {
	lit := query.Document(
		query.Entry("tags", query.Array(query.String("a"), query.Int(1))),
		query.Entry("meta", query.Document(query.Entry("ok", query.Bool(false)))),
	)

	got := toBSON(lit).(bson.D)
	assert.Equal(t, bson.A{"a", int64(1)}, got[0].Value)
	assert.Equal(t, bson.D{{Key: "ok", Value: false}}, got[1].Value)
}

func TestArrayToPipeline(t *testing.T) {
	pipeline := arrayToPipeline(query.Array(
		query.Document(query.Entry("$match", query.Document(query.Entry("status", query.String("pending")))))),
	)
	require.Len(t, pipeline, 1)
	assert.Equal(t, "$match", pipeline[0][0].Key)
}

func TestOptionalDoc(t *testing.T) {
	args := []query.Literal{query.Document(query.Entry("a", query.Int(1)))}

	assert.Equal(t, bson.D{{Key: "a", Value: int64(1)}}, optionalDoc(args, 0))
	assert.Equal(t, bson.D{}, optionalDoc(args, 1))
	assert.Equal(t, bson.D{}, optionalDoc(nil, 0))
}
