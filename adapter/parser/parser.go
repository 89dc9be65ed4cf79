// Package parser reads filters written as short strings, as received from
// query strings or command line flags.
//
// A filter string is "field:value" or "field:op:value", where value is JSON
// or relaxed extended JSON. Without an operator the filter is an equality.
// Datetimes are written as extended JSON, {"$date":"2024-01-01T00:00:00Z"}.
package parser

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/vinicius-lino-figueiredo/gedoc/adapter/deserializer"
	"github.com/vinicius-lino-figueiredo/gedoc/domain"
	"github.com/vinicius-lino-figueiredo/gedoc/pkg/doc"
	"github.com/vinicius-lino-figueiredo/gedoc/pkg/query"
)

// Operators lists every operator name understood by [Parser].
var Operators = []string{
	"eq", "ne", "in", "nin", "gt", "gte", "lt", "lte",
	"ain", "anin", "aany", "aall", "aset", "anone",
	"size", "regex", "text",
}

// Transformer rewrites the value parsed for a field.
type Transformer func(doc.Value) (doc.Value, error)

// Parser builds filters from strings.
type Parser struct {
	permittedFields     map[string]struct{}
	permittedOperations map[string]struct{}
	replacements        map[string]string
	transformers        map[string]Transformer
}

// NewParser returns a parser accepting every field and operator.
func NewParser(options ...Option) *Parser {
	p := &Parser{
		replacements: make(map[string]string),
		transformers: make(map[string]Transformer),
	}
	for _, option := range options {
		option(p)
	}
	return p
}

// ForCollection returns a parser accepting fields plus _id, reading id as
// _id and 24 digit hexadecimal _id strings as ObjectIDs.
func ForCollection(fields ...string) *Parser {
	return NewParser(
		WithPermittedFields(slices.Concat(fields, []string{doc.IDField, "id"})...),
		WithReplacement("id", doc.IDField),
		WithTransformer(doc.IDField, ObjectIDTransformer),
	)
}

// ObjectIDTransformer converts hexadecimal strings into ObjectIDs and keeps
// every other value.
func ObjectIDTransformer(v doc.Value) (doc.Value, error) {
	s, ok := v.AsString()
	if !ok {
		return v, nil
	}
	id, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return v, domain.ErrInvalidArgument{Field: doc.IDField, Value: fmt.Sprintf("%q", s), Reason: "invalid ObjectID"}
	}
	return doc.OID(id), nil
}

// Parse AND-s the filters read from strs. No string yields a nil filter and
// a single one yields its own filter.
func (p *Parser) Parse(strs ...string) (query.Filter, error) {
	filters := make([]query.Filter, 0, len(strs))
	for _, s := range strs {
		f, err := p.ParseSingle(s)
		if err != nil {
			return nil, err
		}
		filters = append(filters, f)
	}
	return query.AndOf(filters...), nil
}

// ParseSingle reads a single filter string.
func (p *Parser) ParseSingle(s string) (query.Filter, error) {
	field, op, value, err := p.split(s)
	if err != nil {
		return nil, err
	}

	if r, ok := p.replacements[field]; ok {
		field = r
	}
	if p.permittedFields != nil {
		if _, ok := p.permittedFields[field]; !ok {
			return nil, domain.ErrInvalidArgument{Field: field, Reason: "field is not permitted in filters"}
		}
	}
	if p.permittedOperations != nil {
		if _, ok := p.permittedOperations[op]; !ok {
			return nil, domain.ErrInvalidArgument{Field: field, Operator: op, Reason: "operator is not permitted in filters"}
		}
	}

	raw, err := parseValue(value)
	if err != nil {
		return nil, domain.ErrInvalidArgument{Field: field, Operator: op, Value: value, Reason: err.Error()}
	}
	if op == "regex" {
		return p.regex(field, raw, value)
	}

	v, err := deserializer.ValueFromRaw(raw)
	if err != nil {
		return nil, domain.ErrInvalidArgument{Field: field, Operator: op, Value: value, Reason: err.Error()}
	}
	if t, ok := p.transformers[field]; ok {
		if v, err = p.transform(t, v); err != nil {
			return nil, err
		}
	}
	return p.build(field, op, value, v)
}

// split separates field, operator and value. The middle segment is an
// operator only when it is a bare word other than a JSON literal, so values
// may hold colons.
func (p *Parser) split(s string) (string, string, string, error) {
	parts := strings.SplitN(s, ":", 3)
	if len(parts) < 2 {
		return "", "", "", domain.ErrInvalidArgument{Value: fmt.Sprintf("%q", s), Reason: "invalid filter format"}
	}
	field := strings.TrimSpace(parts[0])
	if field == "" {
		return "", "", "", domain.ErrInvalidArgument{Value: fmt.Sprintf("%q", s), Reason: "missing field"}
	}
	if len(parts) == 3 {
		op := strings.TrimSpace(parts[1])
		if isOperator(op) {
			return field, op, parts[2], nil
		}
		return field, "eq", parts[1] + ":" + parts[2], nil
	}
	return field, "eq", parts[1], nil
}

func isOperator(s string) bool {
	switch s {
	case "", "true", "false", "null":
		return false
	}
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}

func (p *Parser) transform(t Transformer, v doc.Value) (doc.Value, error) {
	arr, ok := v.AsArray()
	if !ok {
		return t(v)
	}
	res := make([]doc.Value, len(arr))
	for n, e := range arr {
		var err error
		if res[n], err = t(e); err != nil {
			return doc.Null(), err
		}
	}
	return doc.Array(res...), nil
}

func (p *Parser) build(field, op, raw string, v doc.Value) (query.Filter, error) {
	invalid := func(reason string) error {
		return domain.ErrInvalidArgument{Field: field, Operator: op, Value: raw, Reason: reason}
	}
	array := func() ([]doc.Value, error) {
		arr, ok := v.AsArray()
		if !ok {
			return nil, invalid(fmt.Sprintf("value for %q must be an array", op))
		}
		return arr, nil
	}

	switch op {
	case "eq":
		return query.Eq{Path: field, Value: v}, nil
	case "ne":
		return query.Ne{Path: field, Value: v}, nil
	case "in", "nin":
		arr, err := array()
		if err != nil {
			return nil, err
		}
		if op == "in" {
			return query.In{Path: field, Values: arr}, nil
		}
		return query.Nin{Path: field, Values: arr}, nil
	case "gt":
		return query.Comp{Path: field, Op: query.GT, Value: v}, nil
	case "gte":
		return query.Comp{Path: field, Op: query.GTE, Value: v}, nil
	case "lt":
		return query.Comp{Path: field, Op: query.LT, Value: v}, nil
	case "lte":
		return query.Comp{Path: field, Op: query.LTE, Value: v}, nil
	case "ain":
		return query.ArrCont{Path: field, Value: v}, nil
	case "anin":
		return query.ArrNotCont{Path: field, Value: v}, nil
	case "aany", "aall", "aset", "anone":
		arr, err := array()
		if err != nil {
			return nil, err
		}
		return query.ArrComp{Path: field, Op: arrayOps[op], Values: arr}, nil
	case "size":
		n, ok := v.AsInt64()
		if !ok || n < 0 {
			return nil, invalid("size must be a non negative integer")
		}
		return query.ArrSize{Path: field, Size: int(n)}, nil
	case "text":
		s, ok := v.AsString()
		if !ok {
			return nil, invalid("text term must be a string")
		}
		return query.FieldText{Path: field, Term: s}, nil
	}
	return nil, invalid("unsupported operator")
}

var arrayOps = map[string]query.ArrayOp{
	"aany":  query.ArrAny,
	"aall":  query.ArrAll,
	"aset":  query.ArrSet,
	"anone": query.ArrNone,
}

// regex accepts a pattern string or an extended JSON regular expression.
func (p *Parser) regex(field string, raw bson.RawValue, value string) (query.Filter, error) {
	switch raw.Type {
	case bsontype.String:
		return query.Regex{Path: field, Pattern: raw.StringValue()}, nil
	case bsontype.Regex:
		pattern, options := raw.Regex()
		return query.Regex{Path: field, Pattern: pattern, Options: options}, nil
	}
	return nil, domain.ErrInvalidArgument{Field: field, Operator: "regex", Value: value, Reason: "pattern must be a string"}
}

// parseValue reads a single JSON or extended JSON value.
func parseValue(s string) (bson.RawValue, error) {
	var d bson.D
	if err := bson.UnmarshalExtJSON([]byte(`{"v":`+s+`}`), false, &d); err != nil {
		return bson.RawValue{}, err
	}
	if len(d) != 1 {
		return bson.RawValue{}, fmt.Errorf("expected a single value")
	}
	b, err := bson.Marshal(d)
	if err != nil {
		return bson.RawValue{}, err
	}
	return bson.Raw(b).LookupErr("v")
}

// Fields returns the permitted fields in lexical order, or nil when every
// field is permitted.
func (p *Parser) Fields() []string {
	if p.permittedFields == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(p.permittedFields))
}
