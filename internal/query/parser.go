package query

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// ParseError reports a malformed or unsupported query. Pos is the byte
// offset of the offending input where one could be determined.
type ParseError struct {
	Pos int
	Msg string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at offset %d: %s", e.Pos, e.Msg)
}

// collectionRoot is the conventional shell accessor queries must start with.
const collectionRoot = "db"

// Parse turns a raw shell-style query string into an Operation. The input
// must contain exactly one call of the form db.<collection>.<kind>(args);
// whitespace and // or /* */ comments are ignored, anything else before or
// after the call fails.
func Parse(input string) (*Operation, error) {
	p := &parser{in: input}

	if err := p.skipSpace(); err != nil {
		return nil, err
	}
	if p.eof() {
		return nil, &ParseError{Pos: 0, Msg: "empty query"}
	}

	rootPos := p.pos
	root := p.ident()
	if root != collectionRoot {
		return nil, &ParseError{Pos: rootPos, Msg: fmt.Sprintf("query must start with the %q accessor", collectionRoot)}
	}

	// Dot-separated segments follow the root; the last one before the
	// opening parenthesis is the operation, the rest form the collection
	// name (dots inside collection names are legal).
	var segments []string
	var segmentPos []int
	for {
		if err := p.skipSpace(); err != nil {
			return nil, err
		}
		if !p.consume('.') {
			return nil, &ParseError{Pos: p.pos, Msg: "expected '.' after collection accessor"}
		}
		if err := p.skipSpace(); err != nil {
			return nil, err
		}
		segPos := p.pos
		seg := p.ident()
		if seg == "" {
			return nil, &ParseError{Pos: p.pos, Msg: "expected identifier after '.'"}
		}
		segments = append(segments, seg)
		segmentPos = append(segmentPos, segPos)

		if err := p.skipSpace(); err != nil {
			return nil, err
		}
		if p.peek() == '(' {
			break
		}
		if p.peek() != '.' {
			return nil, &ParseError{Pos: p.pos, Msg: "expected '.' or '(' after identifier"}
		}
	}

	if len(segments) < 2 {
		return nil, &ParseError{Pos: segmentPos[0], Msg: "missing operation: expected db.<collection>.<operation>(...)"}
	}

	opName := segments[len(segments)-1]
	opPos := segmentPos[len(segments)-1]
	collection := strings.Join(segments[:len(segments)-1], ".")

	kind, ok := kinds[opName]
	if !ok {
		return nil, &ParseError{Pos: opPos, Msg: fmt.Sprintf("unsupported operation: %s", opName)}
	}

	callPos := p.pos
	args, err := p.argList()
	if err != nil {
		return nil, err
	}

	if err := p.skipSpace(); err != nil {
		return nil, err
	}
	if !p.eof() {
		return nil, &ParseError{Pos: p.pos, Msg: "unexpected trailing content after query"}
	}

	if perr := validateArgs(kind, args, callPos); perr != nil {
		return nil, perr
	}

	return &Operation{Collection: collection, Kind: kind, Args: args}, nil
}

// validateArgs enforces the per-kind argument shape so that malformed calls
// fail at parse time rather than at the target store.
func validateArgs(kind Kind, args []Literal, pos int) *ParseError {
	fail := func(msg string) *ParseError { return &ParseError{Pos: pos, Msg: msg} }

	isDoc := func(l Literal) bool { return l.Kind == LiteralDocument }

	switch kind {
	case KindFind:
		if len(args) > 2 {
			return fail("find takes at most a filter and a projection document")
		}
		for _, a := range args {
			if !isDoc(a) {
				return fail("find arguments must be documents")
			}
		}
	case KindCountDocuments:
		if len(args) > 1 {
			return fail("countDocuments takes at most a filter document")
		}
		if len(args) == 1 && !isDoc(args[0]) {
			return fail("countDocuments filter must be a document")
		}
	case KindAggregate:
		if len(args) != 1 || args[0].Kind != LiteralArray {
			return fail("aggregate takes exactly one pipeline array")
		}
		for _, stage := range args[0].Arr {
			if !isDoc(stage) {
				return fail("aggregate pipeline stages must be documents")
			}
		}
	case KindInsertOne:
		if len(args) != 1 || !isDoc(args[0]) {
			return fail("insertOne takes exactly one document")
		}
	case KindInsertMany:
		if len(args) != 1 || args[0].Kind != LiteralArray || len(args[0].Arr) == 0 {
			return fail("insertMany takes exactly one non-empty array of documents")
		}
		for _, d := range args[0].Arr {
			if !isDoc(d) {
				return fail("insertMany array elements must be documents")
			}
		}
	case KindUpdateOne, KindUpdateMany:
		if len(args) != 2 || !isDoc(args[0]) || !isDoc(args[1]) {
			return fail(string(kind) + " takes exactly a filter document and an update document")
		}
	case KindDeleteOne, KindDeleteMany:
		if len(args) != 1 || !isDoc(args[0]) {
			return fail(string(kind) + " takes exactly one filter document")
		}
	}
	return nil
}

type parser struct {
	in  string
	pos int
}

func (p *parser) eof() bool {
	return p.pos >= len(p.in)
}

func (p *parser) peek() byte {
	if p.eof() {
		return 0
	}
	return p.in[p.pos]
}

func (p *parser) consume(ch byte) bool {
	if p.peek() == ch {
		p.pos++
		return true
	}
	return false
}

// skipSpace advances past whitespace and comments. An unterminated block
// comment is a parse failure.
func (p *parser) skipSpace() error {
	for !p.eof() {
		switch {
		case p.in[p.pos] == ' ' || p.in[p.pos] == '\t' || p.in[p.pos] == '\n' || p.in[p.pos] == '\r':
			p.pos++
		case strings.HasPrefix(p.in[p.pos:], "//"):
			end := strings.IndexByte(p.in[p.pos:], '\n')
			if end < 0 {
				p.pos = len(p.in)
			} else {
				p.pos += end + 1
			}
		case strings.HasPrefix(p.in[p.pos:], "/*"):
			start := p.pos
			end := strings.Index(p.in[p.pos+2:], "*/")
			if end < 0 {
				return &ParseError{Pos: start, Msg: "unterminated block comment"}
			}
			p.pos += 2 + end + 2
		default:
			return nil
		}
	}
	return nil
}

func isIdentStart(ch byte) bool {
	return ch == '_' || ch == '$' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentPart(ch byte) bool {
	return isIdentStart(ch) || (ch >= '0' && ch <= '9')
}

func (p *parser) ident() string {
	if p.eof() || !isIdentStart(p.in[p.pos]) {
		return ""
	}
	start := p.pos
	for !p.eof() && isIdentPart(p.in[p.pos]) {
		p.pos++
	}
	return p.in[start:p.pos]
}

// argList parses '(' value, value, ... ')'.
func (p *parser) argList() ([]Literal, error) {
	if !p.consume('(') {
		return nil, &ParseError{Pos: p.pos, Msg: "expected '('"}
	}
	var args []Literal
	for {
		if err := p.skipSpace(); err != nil {
			return nil, err
		}
		if p.consume(')') {
			return args, nil
		}
		if len(args) > 0 {
			if !p.consume(',') {
				return nil, &ParseError{Pos: p.pos, Msg: "expected ',' or ')' in argument list"}
			}
			if err := p.skipSpace(); err != nil {
				return nil, err
			}
			// Trailing comma before the closing parenthesis.
			if p.consume(')') {
				return args, nil
			}
		}
		v, err := p.value()
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}
}

func (p *parser) value() (Literal, error) {
	if err := p.skipSpace(); err != nil {
		return Literal{}, err
	}
	if p.eof() {
		return Literal{}, &ParseError{Pos: p.pos, Msg: "unexpected end of query, expected a value"}
	}

	switch ch := p.peek(); {
	case ch == '{':
		return p.document()
	case ch == '[':
		return p.array()
	case ch == '"' || ch == '\'':
		s, err := p.stringLit()
		if err != nil {
			return Literal{}, err
		}
		return String(s), nil
	case ch == '/':
		return p.regex()
	case ch == '-' || ch == '+' || (ch >= '0' && ch <= '9'):
		return p.number()
	case isIdentStart(ch):
		return p.word()
	default:
		return Literal{}, &ParseError{Pos: p.pos, Msg: fmt.Sprintf("unexpected character %q", ch)}
	}
}

// word handles keyword values: null, true, false, and the date constructors.
// Any other identifier is an expression reference the parser refuses.
func (p *parser) word() (Literal, error) {
	start := p.pos
	w := p.ident()
	switch w {
	case "null":
		return Null(), nil
	case "true":
		return Bool(true), nil
	case "false":
		return Bool(false), nil
	case "ISODate", "Date":
		return p.dateCall(start)
	case "new":
		if err := p.skipSpace(); err != nil {
			return Literal{}, err
		}
		ctorPos := p.pos
		ctor := p.ident()
		if ctor != "Date" && ctor != "ISODate" {
			return Literal{}, &ParseError{Pos: ctorPos, Msg: fmt.Sprintf("unsupported constructor: new %s", ctor)}
		}
		return p.dateCall(start)
	default:
		return Literal{}, &ParseError{Pos: start, Msg: fmt.Sprintf("unexpected identifier %q: only data literals are allowed", w)}
	}
}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// dateCall parses the ("...") part of an ISODate/new Date literal.
func (p *parser) dateCall(start int) (Literal, error) {
	if err := p.skipSpace(); err != nil {
		return Literal{}, err
	}
	if !p.consume('(') {
		return Literal{}, &ParseError{Pos: p.pos, Msg: "expected '(' in date literal"}
	}
	if err := p.skipSpace(); err != nil {
		return Literal{}, err
	}
	if p.peek() != '"' && p.peek() != '\'' {
		return Literal{}, &ParseError{Pos: p.pos, Msg: "date literal requires a quoted timestamp string"}
	}
	raw, err := p.stringLit()
	if err != nil {
		return Literal{}, err
	}
	if err := p.skipSpace(); err != nil {
		return Literal{}, err
	}
	if !p.consume(')') {
		return Literal{}, &ParseError{Pos: p.pos, Msg: "expected ')' after date literal"}
	}

	for _, layout := range dateLayouts {
		if t, perr := time.Parse(layout, raw); perr == nil {
			return Date(t.UTC()), nil
		}
	}
	return Literal{}, &ParseError{Pos: start, Msg: fmt.Sprintf("invalid date literal %q", raw)}
}

func (p *parser) document() (Literal, error) {
	p.pos++ // consume '{'
	var entries []DocEntry
	for {
		if err := p.skipSpace(); err != nil {
			return Literal{}, err
		}
		if p.eof() {
			return Literal{}, &ParseError{Pos: p.pos, Msg: "unterminated document: expected '}'"}
		}
		if p.consume('}') {
			return Document(entries...), nil
		}
		if len(entries) > 0 {
			if !p.consume(',') {
				return Literal{}, &ParseError{Pos: p.pos, Msg: "expected ',' or '}' in document"}
			}
			if err := p.skipSpace(); err != nil {
				return Literal{}, err
			}
			if p.consume('}') {
				return Document(entries...), nil
			}
		}

		var key string
		switch {
		case p.peek() == '"' || p.peek() == '\'':
			k, err := p.stringLit()
			if err != nil {
				return Literal{}, err
			}
			key = k
		case isIdentStart(p.peek()):
			key = p.ident()
		default:
			return Literal{}, &ParseError{Pos: p.pos, Msg: "expected document key"}
		}

		if err := p.skipSpace(); err != nil {
			return Literal{}, err
		}
		if !p.consume(':') {
			return Literal{}, &ParseError{Pos: p.pos, Msg: fmt.Sprintf("expected ':' after key %q", key)}
		}

		v, err := p.value()
		if err != nil {
			return Literal{}, err
		}
		entries = append(entries, DocEntry{Key: key, Value: v})
	}
}

func (p *parser) array() (Literal, error) {
	p.pos++ // consume '['
	var items []Literal
	for {
		if err := p.skipSpace(); err != nil {
			return Literal{}, err
		}
		if p.eof() {
			return Literal{}, &ParseError{Pos: p.pos, Msg: "unterminated array: expected ']'"}
		}
		if p.consume(']') {
			return Array(items...), nil
		}
		if len(items) > 0 {
			if !p.consume(',') {
				return Literal{}, &ParseError{Pos: p.pos, Msg: "expected ',' or ']' in array"}
			}
			if err := p.skipSpace(); err != nil {
				return Literal{}, err
			}
			if p.consume(']') {
				return Array(items...), nil
			}
		}
		v, err := p.value()
		if err != nil {
			return Literal{}, err
		}
		items = append(items, v)
	}
}

func (p *parser) stringLit() (string, error) {
	start := p.pos
	quote := p.in[p.pos]
	p.pos++
	var sb strings.Builder
	for {
		if p.eof() {
			return "", &ParseError{Pos: start, Msg: "unterminated string"}
		}
		ch := p.in[p.pos]
		switch ch {
		case quote:
			p.pos++
			return sb.String(), nil
		case '\\':
			p.pos++
			if p.eof() {
				return "", &ParseError{Pos: start, Msg: "unterminated string"}
			}
			esc := p.in[p.pos]
			switch esc {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			case 'b':
				sb.WriteByte('\b')
			case 'f':
				sb.WriteByte('\f')
			case '\\', '/', '"', '\'':
				sb.WriteByte(esc)
			case 'u':
				if p.pos+4 >= len(p.in) {
					return "", &ParseError{Pos: p.pos, Msg: "invalid unicode escape"}
				}
				code, err := strconv.ParseUint(p.in[p.pos+1:p.pos+5], 16, 32)
				if err != nil {
					return "", &ParseError{Pos: p.pos, Msg: "invalid unicode escape"}
				}
				sb.WriteRune(rune(code))
				p.pos += 4
			default:
				return "", &ParseError{Pos: p.pos, Msg: fmt.Sprintf("invalid escape sequence \\%c", esc)}
			}
			p.pos++
		default:
			_, size := utf8.DecodeRuneInString(p.in[p.pos:])
			sb.WriteString(p.in[p.pos : p.pos+size])
			p.pos += size
		}
	}
}

func (p *parser) number() (Literal, error) {
	start := p.pos
	if p.peek() == '-' || p.peek() == '+' {
		p.pos++
	}
	digits := 0
	for !p.eof() && p.in[p.pos] >= '0' && p.in[p.pos] <= '9' {
		p.pos++
		digits++
	}
	isFloat := false
	if !p.eof() && p.in[p.pos] == '.' {
		isFloat = true
		p.pos++
		for !p.eof() && p.in[p.pos] >= '0' && p.in[p.pos] <= '9' {
			p.pos++
			digits++
		}
	}
	if !p.eof() && (p.in[p.pos] == 'e' || p.in[p.pos] == 'E') {
		isFloat = true
		p.pos++
		if !p.eof() && (p.in[p.pos] == '-' || p.in[p.pos] == '+') {
			p.pos++
		}
		expDigits := 0
		for !p.eof() && p.in[p.pos] >= '0' && p.in[p.pos] <= '9' {
			p.pos++
			expDigits++
		}
		if expDigits == 0 {
			return Literal{}, &ParseError{Pos: start, Msg: "invalid number: missing exponent digits"}
		}
	}
	if digits == 0 {
		return Literal{}, &ParseError{Pos: start, Msg: "invalid number"}
	}

	raw := p.in[start:p.pos]
	if !isFloat {
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return Int(n), nil
		}
		// Falls through for integers beyond int64 range.
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return Literal{}, &ParseError{Pos: start, Msg: fmt.Sprintf("invalid number %q", raw)}
	}
	return Double(f), nil
}

func (p *parser) regex() (Literal, error) {
	start := p.pos
	p.pos++ // consume '/'
	var sb strings.Builder
	for {
		if p.eof() || p.in[p.pos] == '\n' {
			return Literal{}, &ParseError{Pos: start, Msg: "unterminated regex literal"}
		}
		ch := p.in[p.pos]
		if ch == '\\' && p.pos+1 < len(p.in) {
			sb.WriteByte(ch)
			sb.WriteByte(p.in[p.pos+1])
			p.pos += 2
			continue
		}
		if ch == '/' {
			p.pos++
			break
		}
		sb.WriteByte(ch)
		p.pos++
	}
	flagStart := p.pos
	for !p.eof() && p.in[p.pos] >= 'a' && p.in[p.pos] <= 'z' {
		p.pos++
	}
	return Regex(sb.String(), p.in[flagStart:p.pos]), nil
}
