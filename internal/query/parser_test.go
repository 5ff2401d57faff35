package query

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, input string) *Operation {
	t.Helper()
	op, err := Parse(input)
	require.NoError(t, err)
	require.NotNil(t, op)
	return op
}

func parseErr(t *testing.T, input string) *ParseError {
	t.Helper()
	op, err := Parse(input)
	require.Error(t, err)
	require.Nil(t, op)
	var perr *ParseError
	require.True(t, errors.As(err, &perr), "expected *ParseError, got %T", err)
	return perr
}

func TestParse_SimpleFind(t *testing.T) {
	op := mustParse(t, `db.users.find({"status": "active"})`)

	assert.Equal(t, "users", op.Collection)
	assert.Equal(t, KindFind, op.Kind)
	require.Len(t, op.Args, 1)
	assert.Equal(t, Document(Entry("status", String("active"))), op.Args[0])
}

func TestParse_EmptyArgs(t *testing.T) {
	op := mustParse(t, `db.users.find()`)
	assert.Equal(t, KindFind, op.Kind)
	assert.Empty(t, op.Args)
}

func TestParse_DottedCollectionName(t *testing.T) {
	op := mustParse(t, `db.audit.events.countDocuments()`)
	assert.Equal(t, "audit.events", op.Collection)
	assert.Equal(t, KindCountDocuments, op.Kind)
}

func TestParse_AllLiteralForms(t *testing.T) {
	op := mustParse(t, `db.items.insertOne({
		name: 'widget',
		price: 19.99,
		qty: 3,
		big: 9e3,
		active: true,
		tags: ["a", "b"],
		meta: {nested: {deep: null}},
		added: ISODate("2024-06-01T12:30:00Z"),
		pattern: /^wid/i,
	})`)

	require.Len(t, op.Args, 1)
	doc := op.Args[0]
	require.Equal(t, LiteralDocument, doc.Kind)
	require.Len(t, doc.Doc, 9)

	assert.Equal(t, Entry("name", String("widget")), doc.Doc[0])
	assert.Equal(t, Entry("price", Double(19.99)), doc.Doc[1])
	assert.Equal(t, Entry("qty", Int(3)), doc.Doc[2])
	assert.Equal(t, Entry("big", Double(9000)), doc.Doc[3])
	assert.Equal(t, Entry("active", Bool(true)), doc.Doc[4])
	assert.Equal(t, Entry("tags", Array(String("a"), String("b"))), doc.Doc[5])
	assert.Equal(t, Entry("meta", Document(Entry("nested", Document(Entry("deep", Null()))))), doc.Doc[6])

	added := doc.Doc[7]
	assert.Equal(t, "added", added.Key)
	require.Equal(t, LiteralDate, added.Value.Kind)
	assert.Equal(t, time.Date(2024, 6, 1, 12, 30, 0, 0, time.UTC), added.Value.Time)

	assert.Equal(t, Entry("pattern", Regex("^wid", "i")), doc.Doc[8])
}

func TestParse_NegativeNumbersAndExponents(t *testing.T) {
	op := mustParse(t, `db.m.find({a: -40, b: -2.5, c: 1.2e-3})`)
	doc := op.Args[0]
	assert.Equal(t, Int(-40), doc.Doc[0].Value)
	assert.Equal(t, Double(-2.5), doc.Doc[1].Value)
	assert.Equal(t, Double(0.0012), doc.Doc[2].Value)
}

func TestParse_IntegerOverflowBecomesDouble(t *testing.T) {
	op := mustParse(t, `db.m.find({a: 99999999999999999999999999})`)
	assert.Equal(t, LiteralDouble, op.Args[0].Doc[0].Value.Kind)
}

func TestParse_OperatorKeysAndQuotedKeys(t *testing.T) {
	op := mustParse(t, `db.orders.updateMany({"total.amount": {$gte: 100}}, {$set: {flagged: true}})`)

	require.Len(t, op.Args, 2)
	filter := op.Args[0]
	assert.Equal(t, "total.amount", filter.Doc[0].Key)
	assert.Equal(t, "$gte", filter.Doc[0].Value.Doc[0].Key)
	update := op.Args[1]
	assert.Equal(t, "$set", update.Doc[0].Key)
}

func TestParse_AggregatePipeline(t *testing.T) {
	op := mustParse(t, `db.orders.aggregate([
		{$match: {status: "pending"}},
		{$group: {_id: "$customer", total: {$sum: "$amount"}}},
	])`)

	assert.Equal(t, KindAggregate, op.Kind)
	require.Len(t, op.Args, 1)
	require.Equal(t, LiteralArray, op.Args[0].Kind)
	assert.Len(t, op.Args[0].Arr, 2)
}

func TestParse_CommentsIgnored(t *testing.T) {
	op := mustParse(t, `
		// look up stale sessions
		db.sessions.find(
			/* inline filter */ {expired: true}, // projection follows
			{_id: 1}
		) // done
	`)

	assert.Equal(t, "sessions", op.Collection)
	require.Len(t, op.Args, 2)
}

func TestParse_NewDate(t *testing.T) {
	op := mustParse(t, `db.logs.deleteMany({ts: {$lt: new Date("2023-01-01")}})`)
	lt := op.Args[0].Doc[0].Value.Doc[0].Value
	require.Equal(t, LiteralDate, lt.Kind)
	assert.Equal(t, 2023, lt.Time.Year())
}

func TestParse_StringEscapes(t *testing.T) {
	op := mustParse(t, `db.m.find({a: "line1\nline2\t\"quoted\" é"})`)
	assert.Equal(t, "line1\nline2\t\"quoted\" é", op.Args[0].Doc[0].Value.Str)
}

func TestParse_SingleQuotedStrings(t *testing.T) {
	op := mustParse(t, `db.m.find({a: 'it\'s'})`)
	assert.Equal(t, "it's", op.Args[0].Doc[0].Value.Str)
}

func TestParse_EmptyQuery(t *testing.T) {
	for _, input := range []string{"", "   ", "\n\t", "// just a comment", "/* only */"} {
		perr := parseErr(t, input)
		assert.Equal(t, "empty query", perr.Msg, "input %q", input)
	}
}

func TestParse_WrongRootAccessor(t *testing.T) {
	perr := parseErr(t, `database.users.find()`)
	assert.Contains(t, perr.Msg, `"db" accessor`)
	assert.Equal(t, 0, perr.Pos)
}

func TestParse_UnsupportedOperation(t *testing.T) {
	perr := parseErr(t, `db.users.drop()`)
	assert.Equal(t, "unsupported operation: drop", perr.Msg)
	assert.Equal(t, 9, perr.Pos)

	perr = parseErr(t, `db.users.findOneAndDelete({})`)
	assert.Equal(t, "unsupported operation: findOneAndDelete", perr.Msg)

	perr = parseErr(t, `db.users.mapReduce({})`)
	assert.Contains(t, perr.Msg, "unsupported operation")
}

func TestParse_TrailingContent(t *testing.T) {
	perr := parseErr(t, `db.users.updateOne({}, {$set: {a: 1}}); DROP TABLE`)
	assert.Contains(t, perr.Msg, "trailing content")

	perr = parseErr(t, `db.users.find({}).limit(10)`)
	assert.Contains(t, perr.Msg, "trailing content")
}

func TestParse_UnterminatedString(t *testing.T) {
	perr := parseErr(t, `db.users.find({name: "alice})`)
	assert.Equal(t, "unterminated string", perr.Msg)
	assert.Equal(t, 21, perr.Pos)
}

func TestParse_UnbalancedBrackets(t *testing.T) {
	perr := parseErr(t, `db.users.find({name: "alice"`)
	assert.Contains(t, perr.Msg, "unterminated document")

	perr = parseErr(t, `db.users.aggregate([{$match: {}}`)
	assert.Contains(t, perr.Msg, "unterminated array")
}

func TestParse_ExecutableContentRejected(t *testing.T) {
	// Function literals and identifier references are not data literals.
	perr := parseErr(t, `db.users.find({$where: function() { return true }})`)
	assert.Contains(t, perr.Msg, "only data literals")

	perr = parseErr(t, `db.users.find({a: someVariable})`)
	assert.Contains(t, perr.Msg, "only data literals")
}

func TestParse_ArgumentShapes(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{`db.u.find({}, {}, {})`, "find takes at most"},
		{`db.u.find("nope")`, "must be documents"},
		{`db.u.countDocuments([])`, "must be a document"},
		{`db.u.aggregate({})`, "exactly one pipeline array"},
		{`db.u.aggregate([], [])`, "exactly one pipeline array"},
		{`db.u.aggregate(["notadoc"])`, "stages must be documents"},
		{`db.u.insertOne()`, "exactly one document"},
		{`db.u.insertOne([])`, "exactly one document"},
		{`db.u.insertMany([])`, "non-empty array"},
		{`db.u.insertMany({})`, "non-empty array"},
		{`db.u.updateOne({})`, "filter document and an update document"},
		{`db.u.updateMany({}, {}, {})`, "filter document and an update document"},
		{`db.u.deleteOne()`, "exactly one filter document"},
		{`db.u.deleteMany({}, {})`, "exactly one filter document"},
	}
	for _, tc := range cases {
		perr := parseErr(t, tc.input)
		assert.Contains(t, perr.Msg, tc.want, "input %q", tc.input)
	}
}

func TestParse_InvalidDateLiteral(t *testing.T) {
	perr := parseErr(t, `db.u.find({ts: ISODate("not-a-date")})`)
	assert.Contains(t, perr.Msg, "invalid date literal")

	perr = parseErr(t, `db.u.find({ts: ISODate(42)})`)
	assert.Contains(t, perr.Msg, "quoted timestamp")
}

func TestParse_UnsupportedConstructor(t *testing.T) {
	perr := parseErr(t, `db.u.insertOne({id: new ObjectId("abc")})`)
	assert.Contains(t, perr.Msg, "unsupported constructor")
}

func TestParse_UnterminatedRegex(t *testing.T) {
	perr := parseErr(t, `db.u.find({name: /abc})`)
	assert.Contains(t, perr.Msg, "unterminated regex")
}

func TestParse_UnterminatedBlockComment(t *testing.T) {
	perr := parseErr(t, `db.u.find() /* dangling`)
	assert.Contains(t, perr.Msg, "unterminated block comment")
}

func TestParse_MissingOperation(t *testing.T) {
	perr := parseErr(t, `db.find()`)
	assert.Contains(t, perr.Msg, "missing operation")
}

func TestParse_ErrorNeverPartial(t *testing.T) {
	// A failing parse returns a nil operation, never a partially populated one.
	op, err := Parse(`db.users.find({bad`)
	require.Error(t, err)
	assert.Nil(t, op)
}

func TestParseError_Error(t *testing.T) {
	err := &ParseError{Pos: 12, Msg: "boom"}
	assert.Equal(t, "parse error at offset 12: boom", err.Error())
}

func TestParse_AllKinds(t *testing.T) {
	inputs := map[Kind]string{
		KindFind:           `db.c.find({})`,
		KindAggregate:      `db.c.aggregate([{$match: {}}])`,
		KindCountDocuments: `db.c.countDocuments({})`,
		KindInsertOne:      `db.c.insertOne({a: 1})`,
		KindInsertMany:     `db.c.insertMany([{a: 1}, {a: 2}])`,
		KindUpdateOne:      `db.c.updateOne({a: 1}, {$set: {a: 2}})`,
		KindUpdateMany:     `db.c.updateMany({}, {$inc: {n: 1}})`,
		KindDeleteOne:      `db.c.deleteOne({a: 1})`,
		KindDeleteMany:     `db.c.deleteMany({})`,
	}
	for kind, input := range inputs {
		op := mustParse(t, input)
		assert.Equal(t, kind, op.Kind, "input %q", input)
		assert.Equal(t, "c", op.Collection)
	}
}
