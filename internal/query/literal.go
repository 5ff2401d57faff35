package query

import "time"

// LiteralKind tags the variant held by a Literal.
type LiteralKind uint8

const (
	LiteralNull LiteralKind = iota
	LiteralBool
	LiteralInt
	LiteralDouble
	LiteralString
	LiteralArray
	LiteralDocument
	LiteralDate
	LiteralRegex
)

// Literal is a structured data value appearing in a query's argument list.
// Exactly the field selected by Kind is meaningful. Documents keep their
// key order, which matters for operator documents like {$sort: {...}}.
type Literal struct {
	Kind    LiteralKind
	Bool    bool
	Int     int64
	Double  float64
	Str     string
	Arr     []Literal
	Doc     []DocEntry
	Time    time.Time
	Pattern string
	Flags   string
}

// DocEntry is one key/value pair of a document literal.
type DocEntry struct {
	Key   string
	Value Literal
}

func Null() Literal                { return Literal{Kind: LiteralNull} }
func Bool(b bool) Literal          { return Literal{Kind: LiteralBool, Bool: b} }
func Int(n int64) Literal          { return Literal{Kind: LiteralInt, Int: n} }
func Double(f float64) Literal     { return Literal{Kind: LiteralDouble, Double: f} }
func String(s string) Literal      { return Literal{Kind: LiteralString, Str: s} }
func Array(vs ...Literal) Literal  { return Literal{Kind: LiteralArray, Arr: vs} }
func Document(es ...DocEntry) Literal {
	return Literal{Kind: LiteralDocument, Doc: es}
}
func Date(t time.Time) Literal { return Literal{Kind: LiteralDate, Time: t} }
func Regex(pattern, flags string) Literal {
	return Literal{Kind: LiteralRegex, Pattern: pattern, Flags: flags}
}

// Entry builds a DocEntry; it keeps test fixtures terse.
func Entry(key string, value Literal) DocEntry {
	return DocEntry{Key: key, Value: value}
}
