package target

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/SudityaSenaNimmala/Access-Requests/internal/query"
)

// toBSON converts a parsed literal into the driver's native representation.
// Documents become bson.D to preserve key order, which operator documents
// rely on.
func toBSON(l query.Literal) any {
	switch l.Kind {
	case query.LiteralNull:
		return primitive.Null{}
	case query.LiteralBool:
		return l.Bool
	case query.LiteralInt:
		return l.Int
	case query.LiteralDouble:
		return l.Double
	case query.LiteralString:
		return l.Str
	case query.LiteralArray:
		arr := make(bson.A, len(l.Arr))
		for i, item := range l.Arr {
			arr[i] = toBSON(item)
		}
		return arr
	case query.LiteralDocument:
		return docToBSON(l)
	case query.LiteralDate:
		return primitive.NewDateTimeFromTime(l.Time)
	case query.LiteralRegex:
		return primitive.Regex{Pattern: l.Pattern, Options: l.Flags}
	default:
		return primitive.Null{}
	}
}

func docToBSON(l query.Literal) bson.D {
	doc := make(bson.D, len(l.Doc))
	for i, entry := range l.Doc {
		doc[i] = bson.E{Key: entry.Key, Value: toBSON(entry.Value)}
	}
	return doc
}

func arrayToPipeline(l query.Literal) mongo.Pipeline {
	stages := make(mongo.Pipeline, len(l.Arr))
	for i, stage := range l.Arr {
		stages[i] = docToBSON(stage)
	}
	return stages
}
