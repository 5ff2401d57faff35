// Package query parses MongoDB shell-style query strings into structured
// operations and classifies them for the approval policy. The parser accepts
// data literals only: documents, arrays, strings, numbers, booleans, null,
// ISODate/new Date calls, and /pattern/flags regexes. Executable expressions
// are rejected, so a parsed operation can be dispatched without evaluating
// user-controlled code.
package query

// Kind is the enumerated operation of a query. Dispatch elsewhere switches
// exhaustively on it.
type Kind string

const (
	KindFind           Kind = "find"
	KindAggregate      Kind = "aggregate"
	KindCountDocuments Kind = "countDocuments"
	KindInsertOne      Kind = "insertOne"
	KindInsertMany     Kind = "insertMany"
	KindUpdateOne      Kind = "updateOne"
	KindUpdateMany     Kind = "updateMany"
	KindDeleteOne      Kind = "deleteOne"
	KindDeleteMany     Kind = "deleteMany"
)

var kinds = map[string]Kind{
	"find":           KindFind,
	"aggregate":      KindAggregate,
	"countDocuments": KindCountDocuments,
	"insertOne":      KindInsertOne,
	"insertMany":     KindInsertMany,
	"updateOne":      KindUpdateOne,
	"updateMany":     KindUpdateMany,
	"deleteOne":      KindDeleteOne,
	"deleteMany":     KindDeleteMany,
}

// Operation is the parsed form of a query: the collection it targets, the
// operation kind, and its positional literal arguments.
type Operation struct {
	Collection string
	Kind       Kind
	Args       []Literal
}
